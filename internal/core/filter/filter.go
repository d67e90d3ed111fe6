package filter

import (
	"strings"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
)

// AllGenres is the dropdown sentinel that disables genre filtering.
const AllGenres = "All"

// Predicate decides whether a record takes part in an aggregation.
// Predicates must not mutate the record they are given.
type Predicate func(v1.Record) bool

// Filter returns the records accepted by p, in input order.
// The result is a fresh slice; an empty result is valid and not an error.
// A nil predicate accepts everything.
func Filter(records []v1.Record, p Predicate) []v1.Record {
	out := make([]v1.Record, 0, len(records))
	for _, r := range records {
		if p == nil || p(r) {
			out = append(out, r)
		}
	}
	return out
}

// All accepts every record.
func All() Predicate {
	return func(v1.Record) bool { return true }
}

// And accepts a record only if every non-nil predicate accepts it.
func And(ps ...Predicate) Predicate {
	return func(r v1.Record) bool {
		for _, p := range ps {
			if p != nil && !p(r) {
				return false
			}
		}
		return true
	}
}

// GenreIs matches records carrying genre g among their genres.
// The AllGenres sentinel and the empty string match everything.
func GenreIs(g string) Predicate {
	g = strings.TrimSpace(g)
	if g == "" || strings.EqualFold(g, AllGenres) {
		return All()
	}
	return func(r v1.Record) bool { return r.HasGenre(g) }
}

// LanguageIs matches records in language l (case-insensitive). Empty l matches everything.
func LanguageIs(l string) Predicate {
	l = strings.TrimSpace(l)
	if l == "" || strings.EqualFold(l, AllGenres) {
		return All()
	}
	return func(r v1.Record) bool { return strings.EqualFold(r.Language, l) }
}

// YearAtMost matches films that premiered in or before year y.
func YearAtMost(y int) Predicate {
	return func(r v1.Record) bool { return r.Year <= y }
}

// YearAtLeast matches films that premiered in or after year y.
func YearAtLeast(y int) Predicate {
	return func(r v1.Record) bool { return r.Year >= y }
}

// ScoreAbove matches records scoring strictly more than s.
func ScoreAbove(s float64) Predicate {
	return func(r v1.Record) bool { return r.Score > s }
}

// ScoreAtLeast matches records scoring s or more.
func ScoreAtLeast(s float64) Predicate {
	return func(r v1.Record) bool { return r.Score >= s }
}
