package aggregation

import (
	"math"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/shopspring/decimal"
)

// Supported aggregation operators.
const (
	OpCount = "count"
	OpSum   = "sum"
	OpMin   = "min"
	OpMax   = "max"
	OpMean  = "mean"
)

// Numeric record fields understood by FieldValue.
const (
	FieldScore   = "score"
	FieldYear    = "year"
	FieldRuntime = "runtime"
)

// meanPrecision is the number of decimal places kept by the mean operator.
const meanPrecision = 4

// Group is one entry of a keyed aggregation.
type Group struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
	Count int64           `json:"count"` // records folded into Value
}

// Domain is a closed numeric interval [Lo, Hi].
type Domain struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Valid reports whether the domain is a non-empty finite interval.
func (d Domain) Valid() bool {
	return !math.IsNaN(d.Lo) && !math.IsNaN(d.Hi) &&
		!math.IsInf(d.Lo, 0) && !math.IsInf(d.Hi, 0) && d.Hi > d.Lo
}

// Contains reports whether v lies in [Lo, Hi].
func (d Domain) Contains(v float64) bool {
	return v >= d.Lo && v <= d.Hi
}

// Bucket is one histogram bin. It covers [Start, End), except for the last
// bucket of a histogram which also includes End.
type Bucket struct {
	Start   float64     `json:"start"`
	End     float64     `json:"end"`
	Count   int         `json:"count"`
	Members []v1.Record `json:"-"`
}
