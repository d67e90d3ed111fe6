package dataset

import (
	"time"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/LydiaBrothers/filmslides/internal/core/aggregation"
)

// Dataset is one loaded snapshot of the film table. It is never modified
// after Load returns it; a reload produces a new Dataset.
type Dataset struct {
	Records []v1.Record

	Source            string
	LoadedAt          time.Time
	Read              int
	Excluded          int
	ExcludedBy        map[string]int
	SchemaFingerprint string
	Checksum          string
}

// Meta is the JSON summary of a Dataset.
type Meta struct {
	Source            string         `json:"source"`
	LoadedAt          time.Time      `json:"loaded_at"`
	Records           int            `json:"records"`
	Read              int            `json:"rows_read"`
	Excluded          int            `json:"rows_excluded"`
	ExcludedBy        map[string]int `json:"excluded_by,omitempty"`
	SchemaFingerprint string         `json:"schema_fingerprint"`
	Checksum          string         `json:"checksum"`
}

func (d *Dataset) Meta() Meta {
	return Meta{
		Source:            d.Source,
		LoadedAt:          d.LoadedAt,
		Records:           len(d.Records),
		Read:              d.Read,
		Excluded:          d.Excluded,
		ExcludedBy:        d.ExcludedBy,
		SchemaFingerprint: d.SchemaFingerprint,
		Checksum:          d.Checksum,
	}
}

// Genres returns every genre with its film count, most frequent first.
func (d *Dataset) Genres() []aggregation.Group {
	return aggregation.SortByValueDesc(aggregation.CountBy(d.Records, aggregation.ByEachGenre))
}

// Languages returns every language with its film count, most frequent first.
func (d *Dataset) Languages() []aggregation.Group {
	return aggregation.SortByValueDesc(aggregation.CountBy(d.Records, aggregation.ByLanguage))
}

// YearRange returns the earliest and latest premiere year.
func (d *Dataset) YearRange() (lo, hi int, ok bool) {
	for _, r := range d.Records {
		if r.Year <= 0 {
			continue
		}
		if !ok || r.Year < lo {
			lo = r.Year
		}
		if !ok || r.Year > hi {
			hi = r.Year
		}
		ok = true
	}
	return lo, hi, ok
}

// ScoreRange returns the lowest and highest score.
func (d *Dataset) ScoreRange() (lo, hi float64, ok bool) {
	for _, r := range d.Records {
		v, valid := aggregation.FloatValue(r, aggregation.FieldScore)
		if !valid {
			continue
		}
		if !ok || v < lo {
			lo = v
		}
		if !ok || v > hi {
			hi = v
		}
		ok = true
	}
	return lo, hi, ok
}
