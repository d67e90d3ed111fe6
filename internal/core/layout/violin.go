package layout

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
)

// defaultProfilePoints is the number of evaluation points of a density
// profile when the caller passes n <= 1.
const defaultProfilePoints = 50

// Profile is a kernel density estimate of one group's values, evaluated on
// n evenly spaced points between Lo and Hi.
type Profile struct {
	Key     string    `json:"key"`
	At      []float64 `json:"at"`
	Density []float64 `json:"density"`
	Peak    float64   `json:"peak"`
	N       int       `json:"n"`
}

// Violin estimates the density of values over [lo, hi]. With fewer than two
// distinct finite values there is nothing to smooth and the profile is flat
// zero; callers still get n evaluation points so shapes stay aligned.
func Violin(key string, values []float64, lo, hi float64, n int) Profile {
	if n <= 1 {
		n = defaultProfilePoints
	}

	var sample stats.Sample
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sample.Xs = append(sample.Xs, v)
	}

	p := Profile{
		Key:     key,
		At:      vec.Linspace(lo, hi, n),
		Density: make([]float64, n),
		N:       len(sample.Xs),
	}

	smin, smax := sample.Bounds()
	if len(sample.Xs) < 2 || smin == smax {
		return p
	}

	kde := stats.KDE{
		Sample:    sample,
		Bandwidth: stats.BandwidthScott(sample),
	}
	p.Density = vec.Map(kde.PDF, p.At)
	for _, d := range p.Density {
		if d > p.Peak {
			p.Peak = d
		}
	}
	return p
}

// Width returns the half width in pixels of the profile at index i when the
// largest peak across all drawn profiles is maxPeak and maps to halfWidth.
func (p Profile) Width(i int, maxPeak, halfWidth float64) float64 {
	if maxPeak <= 0 || i < 0 || i >= len(p.Density) {
		return 0
	}
	return p.Density[i] / maxPeak * halfWidth
}
