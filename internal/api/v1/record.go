package v1

import (
	"fmt"
	"strings"
)

// Record is one row of the film dataset.
// Records are produced by the dataset schema step and never mutated afterwards;
// every pipeline stage treats them as values.
type Record struct {
	// Title is the film title. Required.
	Title string `json:"title"`

	// Genre is the primary genre: the first entry of Genres.
	// Empty when the source row had no genre.
	Genre string `json:"genre"`

	// Genres holds every genre of a multi-valued cell such as "Action/Comedy, Drama".
	// Entries are trimmed and never empty.
	Genres []string `json:"genres,omitempty"`

	// Score is the IMDB score, nominally in [0, 10].
	Score float64 `json:"score"`

	// Year is the premiere year.
	Year int `json:"year"`

	// Language is the original language of the film.
	Language string `json:"language,omitempty"`

	// Runtime is the running time in minutes.
	Runtime float64 `json:"runtime,omitempty"`
}

// Validate ensures the record has the attributes every slide relies on.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if r.Score < 0 {
		return fmt.Errorf("score must be >= 0, got %g", r.Score)
	}
	if r.Year < 0 {
		return fmt.Errorf("year must be >= 0, got %d", r.Year)
	}
	return nil
}

// HasGenre reports whether g is one of the record's genres (case-insensitive).
func (r *Record) HasGenre(g string) bool {
	for _, have := range r.Genres {
		if strings.EqualFold(have, g) {
			return true
		}
	}
	return strings.EqualFold(r.Genre, g) && r.Genre != ""
}

// SplitGenres splits a comma-joined genre cell into trimmed, non-empty genres.
// Duplicate entries are dropped; order of first appearance is kept.
func SplitGenres(cell string) []string {
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
