package layout

import (
	"hash/fnv"
	"math"
)

// Jitter returns a stable offset in [-spread, spread] for key. The same key
// always lands in the same place, so redrawing a scatter does not shuffle
// points that stayed on screen.
func Jitter(key string, spread float64) float64 {
	if spread <= 0 || math.IsNaN(spread) {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	u := float64(h.Sum32()) / math.MaxUint32
	return (2*u - 1) * spread
}
