package aggregation

import (
	"fmt"
	"sort"
	"strconv"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/shopspring/decimal"
)

var decimalOne = decimal.NewFromInt(1)

// KeysFunc extracts the group keys of a record. A record contributes once to
// each distinct key returned; no keys means the record is skipped.
type KeysFunc func(v1.Record) []string

// ByGenre groups by primary genre.
func ByGenre(r v1.Record) []string {
	if r.Genre == "" {
		return nil
	}
	return []string{r.Genre}
}

// ByEachGenre groups a multi-genre record under every one of its genres.
func ByEachGenre(r v1.Record) []string {
	if len(r.Genres) == 0 {
		return ByGenre(r)
	}
	return r.Genres
}

// ByLanguage groups by language.
func ByLanguage(r v1.Record) []string {
	if r.Language == "" {
		return nil
	}
	return []string{r.Language}
}

// ByYear groups by premiere year.
func ByYear(r v1.Record) []string {
	if r.Year <= 0 {
		return nil
	}
	return []string{strconv.Itoa(r.Year)}
}

// CountBy counts records per key. Groups are ordered by first occurrence.
func CountBy(records []v1.Record, keys KeysFunc) []Group {
	groups, _ := GroupBy(records, keys, "", OpCount)
	return groups
}

// GroupBy reduces field per key with the named operator. Groups are ordered by
// the first occurrence of their key. Records whose field is missing or not
// numeric are excluded silently; count ignores field entirely.
func GroupBy(records []v1.Record, keys KeysFunc, field, op string) ([]Group, error) {
	reducer, ok := Operators[op]
	if !ok {
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
	if keys == nil {
		return nil, fmt.Errorf("keys function is required")
	}

	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		ks := keys(r)
		if len(ks) == 0 {
			continue
		}

		value := decimalOne
		if op != OpCount {
			v, ok := FieldValue(r, field)
			if !ok {
				continue
			}
			value = v
		}

		seen := make(map[string]struct{}, len(ks))
		for _, k := range ks {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}

			i, exists := index[k]
			if !exists {
				index[k] = len(groups)
				groups = append(groups, Group{Key: k, Value: reducer.Initial(value), Count: 1})
				continue
			}
			groups[i].Value = reducer.Apply(groups[i].Value, value)
			groups[i].Count++
		}
	}

	if fin, ok := reducer.(Finalizer); ok {
		for i := range groups {
			groups[i].Value = fin.Finalize(groups[i].Value, groups[i].Count)
		}
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups, nil
}

// SortByValueDesc returns a copy of groups ordered by descending value.
// Equal values keep their incoming (first-occurrence) order.
func SortByValueDesc(groups []Group) []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	return out
}

// Lookup returns the group with key k.
func Lookup(groups []Group, k string) (Group, bool) {
	for _, g := range groups {
		if g.Key == k {
			return g, true
		}
	}
	return Group{}, false
}
