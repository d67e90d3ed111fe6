package annotate

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"github.com/shopspring/decimal"
)

// NoData is shown instead of a statistic that has no input.
const NoData = "no data"

// Stat is a computed statistic. OK is false when there was nothing to
// compute it from; Value is then zero and must not be drawn.
type Stat struct {
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

// Median returns the median of the finite values.
func Median(values []float64) Stat {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, v)
	}
	if len(xs) == 0 {
		return Stat{}
	}
	sort.Float64s(xs)
	s := stats.Sample{Xs: xs, Sorted: true}
	return Stat{Value: s.Quantile(0.5), OK: true}
}

// State remembers the last value seen per tracked key between redraws.
// It is treated as immutable: Delta returns a new State.
type State map[string]decimal.Decimal

// Change is the outcome of observing a value for a tracked key.
type Change struct {
	Key      string          `json:"key"`
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Delta    decimal.Decimal `json:"delta"`
	// HasPrevious is false on the first observation of Key.
	HasPrevious bool `json:"has_previous"`
}

// Delta compares current with the value last recorded for key and returns
// the change along with the next State. s is left untouched.
func Delta(s State, key string, current decimal.Decimal) (Change, State) {
	c := Change{Key: key, Current: current}
	if prev, ok := s[key]; ok {
		c.Previous = prev
		c.Delta = current.Sub(prev)
		c.HasPrevious = true
	}

	next := make(State, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	next[key] = current
	return c, next
}

// Label is the single callout drawn on a slide. A redraw replaces it.
type Label struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	// Marker is the position of the reference line, when there is one. It
	// is an x position unless Horizontal is set.
	Marker     float64 `json:"marker"`
	HasMarker  bool    `json:"has_marker"`
	Horizontal bool    `json:"horizontal,omitempty"`
}

// MedianLabel describes s as "<name>: <value>" at the position of the value
// on the x axis. Without data the label reads "<name>: no data" and sits at
// fallbackX with no marker.
func MedianLabel(name string, s Stat, x func(float64) float64, fallbackX, y float64) Label {
	if !s.OK {
		return Label{Text: fmt.Sprintf("%s: %s", name, NoData), X: fallbackX, Y: y}
	}
	px := x(s.Value)
	if math.IsNaN(px) || math.IsInf(px, 0) {
		return Label{Text: fmt.Sprintf("%s: %s", name, NoData), X: fallbackX, Y: y}
	}
	return Label{
		Text:      fmt.Sprintf("%s: %.2f", name, s.Value),
		X:         px,
		Y:         y,
		Marker:    px,
		HasMarker: true,
	}
}

// MedianLabelY is MedianLabel for a statistic plotted on the y axis: the
// label sits at (x, y(value)) with a horizontal marker, or at fallbackY
// without one.
func MedianLabelY(name string, s Stat, y func(float64) float64, x, fallbackY float64) Label {
	l := MedianLabel(name, s, y, fallbackY, x)
	l.X, l.Y = x, l.X
	l.Horizontal = l.HasMarker
	return l
}

// DeltaLabel describes c as "<key>: <current> (<signed delta>)", or just the
// current value on the first observation.
func DeltaLabel(c Change, x, y float64) Label {
	text := fmt.Sprintf("%s: %s", c.Key, c.Current.String())
	if c.HasPrevious {
		sign := "+"
		if c.Delta.IsNegative() {
			sign = ""
		}
		text = fmt.Sprintf("%s (%s%s)", text, sign, c.Delta.String())
	}
	return Label{Text: text, X: x, Y: y}
}

// Empty returns a label reading NoData at (x, y).
func Empty(x, y float64) Label {
	return Label{Text: NoData, X: x, Y: y}
}
