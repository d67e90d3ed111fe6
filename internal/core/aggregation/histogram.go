package aggregation

import (
	"math"
	"sort"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
)

// Histogram bins the numeric field of each record into contiguous buckets
// covering d. Thresholds strictly inside (d.Lo, d.Hi) are the inner bucket
// edges; others are ignored. Bucket i is [edge_i, edge_i+1), a value equal to a
// threshold lands in the bucket that starts there, and the last bucket is
// closed so that d.Hi itself is counted.
//
// Records outside d or with a missing/non-numeric field are excluded silently.
// Buckets are ordered by Start ascending; empty input yields zero-count buckets.
// An invalid domain yields nil.
func Histogram(records []v1.Record, field string, d Domain, thresholds []float64) []Bucket {
	if !d.Valid() {
		return nil
	}
	inner := innerThresholds(d, thresholds)

	buckets := make([]Bucket, len(inner)+1)
	for i := range buckets {
		buckets[i].Start = d.Lo
		if i > 0 {
			buckets[i].Start = inner[i-1]
		}
		buckets[i].End = d.Hi
		if i < len(inner) {
			buckets[i].End = inner[i]
		}
	}

	for _, r := range records {
		v, ok := FloatValue(r, field)
		if !ok || !d.Contains(v) {
			continue
		}
		i := BucketFor(v, inner)
		buckets[i].Members = append(buckets[i].Members, r)
		buckets[i].Count++
	}
	return buckets
}

// BucketFor returns the index of the bucket holding v given sorted inner
// thresholds: the number of thresholds <= v.
func BucketFor(v float64, inner []float64) int {
	return sort.Search(len(inner), func(i int) bool { return inner[i] > v })
}

// InDomain counts records whose field is numeric and inside d.
func InDomain(records []v1.Record, field string, d Domain) int {
	n := 0
	for _, r := range records {
		if v, ok := FloatValue(r, field); ok && d.Contains(v) {
			n++
		}
	}
	return n
}

func innerThresholds(d Domain, thresholds []float64) []float64 {
	inner := make([]float64, 0, len(thresholds))
	for _, t := range thresholds {
		if t > d.Lo && t < d.Hi {
			inner = append(inner, t)
		}
	}
	sort.Float64s(inner)

	// Drop duplicates: a zero-width bucket could never hold a value.
	out := inner[:0]
	for _, t := range inner {
		if len(out) == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// NiceThresholds returns round tick values spanning d, about count of them,
// spaced 1, 2 or 5 times a power of ten. Only values strictly inside the
// domain are returned, ready for Histogram.
func NiceThresholds(d Domain, count int) []float64 {
	if count <= 0 || !d.Valid() {
		return nil
	}

	inc := tickIncrement(d.Lo, d.Hi, count)
	if inc == 0 || math.IsNaN(inc) || math.IsInf(inc, 0) {
		return nil
	}

	var ticks []float64
	if inc > 0 {
		i0, i1 := math.Ceil(d.Lo/inc), math.Floor(d.Hi/inc)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i*inc)
		}
	} else {
		// Negative increments encode 1/inc steps; dividing keeps ticks exact.
		inv := -inc
		i0, i1 := math.Ceil(d.Lo*inv), math.Floor(d.Hi*inv)
		for i := i0; i <= i1; i++ {
			ticks = append(ticks, i/inv)
		}
	}
	return innerThresholds(d, ticks)
}

func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / float64(count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}
