package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/LydiaBrothers/filmslides/internal/core/aggregation"
)

// maxRowErrors caps how many exclusion details a parse keeps.
const maxRowErrors = 50

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// ParseResult is the outcome of typing a CSV through a Schema.
type ParseResult struct {
	Records    []v1.Record
	Read       int
	Excluded   int
	ExcludedBy map[string]int
	// Errors holds the first few exclusions for diagnostics.
	Errors []*RowError
}

func (p *ParseResult) exclude(e *RowError) {
	p.Excluded++
	p.ExcludedBy[e.Reason]++
	if len(p.Errors) < maxRowErrors {
		p.Errors = append(p.Errors, e)
	}
	slog.Debug("Excluded dataset row", "line", e.Line, "column", e.Column, "reason", e.Reason)
}

// Parse reads a CSV with a header row and builds one record per row that
// satisfies s. Rows that do not are excluded and counted, never returned as
// errors. An error is returned only when the input cannot be read at all or
// the header lacks a required column.
func Parse(r io.Reader, s *Schema) (*ParseResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty CSV: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index, err := bindHeader(header, s)
	if err != nil {
		return nil, err
	}

	res := &ParseResult{Records: []v1.Record{}, ExcludedBy: make(map[string]int)}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Read++
				res.exclude(&RowError{Line: pe.Line, Reason: ReasonInvalid, Value: pe.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		res.Read++

		line, _ := cr.FieldPos(0)
		rec, rowErr := typeRow(row, index, s)
		if rowErr != nil {
			rowErr.Line = line
			res.exclude(rowErr)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// bindHeader resolves every schema column to a header position.
func bindHeader(header []string, s *Schema) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		key := strings.ToLower(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	index := make(map[string]int, len(s.Columns))
	for _, field := range fieldOrder {
		col, ok := s.Columns[field]
		if !ok {
			continue
		}
		for _, name := range col.Headers(field) {
			if i, ok := pos[strings.ToLower(name)]; ok {
				index[field] = i
				break
			}
		}
		if _, ok := index[field]; !ok && col.Required {
			return nil, fmt.Errorf("required column %q not found in CSV header (tried %v)", field, col.Headers(field))
		}
	}
	return index, nil
}

func typeRow(row []string, index map[string]int, s *Schema) (v1.Record, *RowError) {
	var rec v1.Record
	for _, field := range fieldOrder {
		col, ok := s.Columns[field]
		if !ok {
			continue
		}
		i, ok := index[field]
		if !ok {
			continue
		}
		if i >= len(row) {
			if col.Required {
				return v1.Record{}, &RowError{Column: field, Reason: ReasonShortRow}
			}
			continue
		}

		cell := strings.TrimSpace(row[i])
		if cell == "" {
			if col.Required {
				return v1.Record{}, &RowError{Column: field, Reason: ReasonMissing}
			}
			continue
		}
		if err := assign(&rec, field, col, cell); err != nil {
			return v1.Record{}, err
		}
	}

	if err := rec.Validate(); err != nil {
		return v1.Record{}, &RowError{Reason: ReasonInvalid, Value: err.Error()}
	}
	return rec, nil
}

func assign(rec *v1.Record, field string, col *Column, cell string) *RowError {
	switch col.Type {
	case TypeString:
		setString(rec, field, cell)
	case TypeList:
		genres := v1.SplitGenres(cell)
		if len(genres) == 0 {
			if col.Required {
				return &RowError{Column: field, Reason: ReasonMissing, Value: cell}
			}
			return nil
		}
		rec.Genres = genres
		rec.Genre = genres[0]
	case TypeNumber:
		d, ok := aggregation.ParseDecimal(cell)
		if !ok {
			return &RowError{Column: field, Reason: ReasonNotNumeric, Value: cell}
		}
		f := d.InexactFloat64()
		if !col.inRange(f) {
			return &RowError{Column: field, Reason: ReasonOutOfRange, Value: cell}
		}
		setNumber(rec, field, f)
	case TypeYear:
		y, ok := parseYear(cell)
		if !ok {
			return &RowError{Column: field, Reason: ReasonNotNumeric, Value: cell}
		}
		if !col.inRange(float64(y)) {
			return &RowError{Column: field, Reason: ReasonOutOfRange, Value: cell}
		}
		rec.Year = y
	}
	return nil
}

func setString(rec *v1.Record, field, v string) {
	switch field {
	case FieldTitle:
		rec.Title = v
	case FieldGenre:
		rec.Genre = v
		rec.Genres = []string{v}
	case FieldLanguage:
		rec.Language = v
	}
}

func setNumber(rec *v1.Record, field string, v float64) {
	switch field {
	case FieldScore:
		rec.Score = v
	case FieldRuntime:
		rec.Runtime = v
	case FieldYear:
		rec.Year = int(v)
	}
}

// parseYear accepts a bare integer year or the first four-digit group of a
// date such as "August 5, 2019".
func parseYear(cell string) (int, bool) {
	if y, err := strconv.Atoi(cell); err == nil {
		return y, true
	}
	m := yearPattern.FindStringSubmatch(cell)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}

func (c *Column) inRange(v float64) bool {
	if c.Min != nil && v < *c.Min {
		return false
	}
	if c.Max != nil && v > *c.Max {
		return false
	}
	return true
}
