package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailed is returned when the dataset could not be fetched or
	// parsed. The cause is wrapped.
	ErrLoadFailed = errors.New("dataset load failed")
	// ErrNotReady is returned while the first load is still in flight.
	ErrNotReady = errors.New("dataset not loaded yet")
	// ErrUnknownSource is returned for an unsupported source type.
	ErrUnknownSource = errors.New("unknown dataset source")
)

// Exclusion reasons, used as metric labels and in Dataset.ExcludedBy.
const (
	ReasonMissing    = "missing"
	ReasonNotNumeric = "not_numeric"
	ReasonOutOfRange = "out_of_range"
	ReasonShortRow   = "short_row"
	ReasonInvalid    = "invalid"
)

// RowError explains why a CSV row was excluded.
type RowError struct {
	Line   int    `json:"line"`
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
	Value  string `json:"value,omitempty"`
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d: column %q: %s (%q)", e.Line, e.Column, e.Reason, e.Value)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
