package layout

import (
	"github.com/aclements/go-moremath/scale"
)

// Linear maps a numeric domain onto a pixel range with an affine transform.
// Values outside the domain are extrapolated, never clamped.
type Linear struct {
	s          scale.Linear
	rMin, rMax float64
}

// NewLinear returns a scale mapping [d0, d1] onto [r0, r1]. Ranges may be
// inverted (r0 > r1), as for a y axis growing upwards.
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{
		s:    scale.Linear{Min: d0, Max: d1, Clamp: false},
		rMin: r0,
		rMax: r1,
	}
}

// Map returns the pixel position of v. A degenerate domain maps everything to
// the middle of the range.
func (l Linear) Map(v float64) float64 {
	if l.s.Min == l.s.Max {
		return (l.rMin + l.rMax) / 2
	}
	return l.rMin + l.s.Map(v)*(l.rMax-l.rMin)
}

// Domain returns the scale's domain bounds.
func (l Linear) Domain() (float64, float64) { return l.s.Min, l.s.Max }

// Range returns the scale's pixel bounds.
func (l Linear) Range() (float64, float64) { return l.rMin, l.rMax }

// Ticks returns at most max round values inside the domain for axis labels.
func (l Linear) Ticks(max int) []float64 {
	if max < 1 {
		return nil
	}
	lo, hi := l.s.Min, l.s.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return []float64{lo}
	}
	ls := scale.Linear{Min: lo, Max: hi}
	major, _ := ls.Ticks(scale.TickOptions{Max: max})
	return major
}
