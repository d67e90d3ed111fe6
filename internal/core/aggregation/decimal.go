package aggregation

import (
	"math"
	"strings"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/shopspring/decimal"
)

// FieldValue pulls a numeric field from a record by name.
// ok is false for unknown fields and for values that cannot take part in an
// aggregation (NaN, ±Inf); callers exclude such records silently.
func FieldValue(r v1.Record, field string) (decimal.Decimal, bool) {
	f, ok := FloatValue(r, field)
	if !ok {
		return decimal.Zero, false
	}
	if strings.EqualFold(field, FieldYear) {
		return decimal.NewFromInt(int64(r.Year)), true
	}
	return decimal.NewFromFloat(f), true
}

// FloatValue is FieldValue for callers that work in float64 (binning, layout).
func FloatValue(r v1.Record, field string) (float64, bool) {
	var v float64
	switch strings.ToLower(field) {
	case FieldScore:
		v = r.Score
	case FieldYear:
		v = float64(r.Year)
	case FieldRuntime:
		v = r.Runtime
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseDecimal coerces a CSV cell to a decimal.
// Returns ok=false if the cell is empty or not a number; the row is then excluded.
func ParseDecimal(cell string) (decimal.Decimal, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
