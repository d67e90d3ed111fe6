package aggregation

import (
	"math"
	"testing"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFieldValue(t *testing.T) {
	rec := v1.Record{Title: "x", Score: 7.25, Year: 2019, Runtime: 94}

	tests := []struct {
		name   string
		record v1.Record
		field  string
		want   decimal.Decimal
		wantOK bool
	}{
		{name: "score", record: rec, field: "score", want: decimal.RequireFromString("7.25"), wantOK: true},
		{name: "year", record: rec, field: "year", want: decimal.NewFromInt(2019), wantOK: true},
		{name: "case insensitive", record: rec, field: "Runtime", want: decimal.NewFromInt(94), wantOK: true},
		{name: "empty field name", record: rec, field: "", wantOK: false},
		{name: "unknown field", record: rec, field: "budget", wantOK: false},
		{name: "NaN score excluded", record: v1.Record{Title: "x", Score: math.NaN()}, field: "score", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FieldValue(tc.record, tc.field)
			require.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				require.True(t, tc.want.Equal(got), "want=%s got=%s", tc.want.String(), got.String())
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name   string
		cell   string
		want   decimal.Decimal
		wantOK bool
	}{
		{name: "decimal", cell: "6.4", want: decimal.RequireFromString("6.4"), wantOK: true},
		{name: "padded", cell: "  112 ", want: decimal.NewFromInt(112), wantOK: true},
		{name: "empty", cell: "", wantOK: false},
		{name: "blank", cell: "   ", wantOK: false},
		{name: "not a number", cell: "N/A", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDecimal(tc.cell)
			require.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				require.True(t, tc.want.Equal(got), "want=%s got=%s", tc.want.String(), got.String())
			}
		})
	}
}
