package aggregation

import (
	"math"
	"testing"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func scored(scores ...float64) []v1.Record {
	out := make([]v1.Record, len(scores))
	for i, s := range scores {
		out[i] = v1.Record{Title: "film", Score: s}
	}
	return out
}

func TestNiceThresholds(t *testing.T) {
	tests := []struct {
		name   string
		domain Domain
		count  int
		want   []float64
		wantN  int
	}{
		{name: "score axis like the page", domain: Domain{0, 10}, count: 40, wantN: 49},
		{name: "unit steps", domain: Domain{0, 10}, count: 10, want: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{name: "coarse", domain: Domain{0, 10}, count: 2, want: []float64{5}},
		{name: "years", domain: Domain{2014, 2021}, count: 7, want: []float64{2015, 2016, 2017, 2018, 2019, 2020}},
		{name: "zero count", domain: Domain{0, 10}, count: 0, want: nil},
		{name: "empty domain", domain: Domain{3, 3}, count: 5, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NiceThresholds(tc.domain, tc.count)
			if tc.wantN > 0 {
				require.Len(t, got, tc.wantN)
				require.Equal(t, 0.2, got[0])
				require.Equal(t, 9.8, got[len(got)-1])
				return
			}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestHistogram_Boundaries(t *testing.T) {
	d := Domain{Lo: 0, Hi: 10}
	buckets := Histogram(scored(0, 4.99, 5, 9.99, 10), FieldScore, d, []float64{5})
	require.Len(t, buckets, 2)

	require.Equal(t, 0.0, buckets[0].Start)
	require.Equal(t, 5.0, buckets[0].End)
	require.Equal(t, 2, buckets[0].Count, "0 and 4.99")

	require.Equal(t, 5.0, buckets[1].Start)
	require.Equal(t, 10.0, buckets[1].End)
	require.Equal(t, 3, buckets[1].Count, "threshold 5 goes up; domain max 10 is kept")
}

func TestHistogram_ExcludesOutOfDomainAndNonNumeric(t *testing.T) {
	d := Domain{Lo: 0, Hi: 10}
	records := append(scored(-1, 2, 11, math.NaN(), math.Inf(1)), v1.Record{Title: "x", Score: 3})
	buckets := Histogram(records, FieldScore, d, NiceThresholds(d, 10))

	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	require.Equal(t, 2, total)
	require.Equal(t, InDomain(records, FieldScore, d), total)
}

func TestHistogram_IgnoresThresholdsOutsideDomain(t *testing.T) {
	d := Domain{Lo: 0, Hi: 10}
	buckets := Histogram(scored(1, 9), FieldScore, d, []float64{-5, 0, 5, 5, 10, 20})
	require.Len(t, buckets, 2)
	require.Equal(t, 5.0, buckets[0].End)
}

func TestHistogram_EmptyInputGivesZeroBuckets(t *testing.T) {
	d := Domain{Lo: 0, Hi: 10}
	buckets := Histogram(nil, FieldScore, d, NiceThresholds(d, 40))
	require.Len(t, buckets, 50)
	for _, b := range buckets {
		require.Zero(t, b.Count)
		require.Empty(t, b.Members)
	}
}

func TestHistogram_InvalidDomain(t *testing.T) {
	require.Nil(t, Histogram(scored(1), FieldScore, Domain{Lo: 5, Hi: 1}, nil))
	require.Nil(t, Histogram(scored(1), FieldScore, Domain{Lo: math.NaN(), Hi: 1}, nil))
}

func TestHistogram_EveryRecordInExactlyOneBucket(t *testing.T) {
	d := Domain{Lo: 0, Hi: 10}
	var scores []float64
	for i := 0; i <= 200; i++ {
		scores = append(scores, float64(i)*0.05)
	}
	records := scored(scores...)
	for i := range records {
		records[i].Title = string(rune('A' + i%26))
		records[i].Year = i
	}

	buckets := Histogram(records, FieldScore, d, NiceThresholds(d, 40))

	seen := make(map[int]int)
	sum := 0
	for bi, b := range buckets {
		require.Equal(t, len(b.Members), b.Count)
		sum += b.Count
		for _, m := range b.Members {
			seen[m.Year]++
			require.GreaterOrEqual(t, m.Score, b.Start)
			if bi == len(buckets)-1 {
				require.LessOrEqual(t, m.Score, b.End)
			} else {
				require.Less(t, m.Score, b.End)
			}
		}
	}
	require.Equal(t, InDomain(records, FieldScore, d), sum)
	require.Len(t, seen, len(records))
	for _, n := range seen {
		require.Equal(t, 1, n)
	}

	for i := 1; i < len(buckets); i++ {
		require.Equal(t, buckets[i-1].End, buckets[i].Start, "buckets must be contiguous")
	}
}

func TestBucketFor(t *testing.T) {
	inner := []float64{2, 4, 6}
	require.Equal(t, 0, BucketFor(0, inner))
	require.Equal(t, 1, BucketFor(2, inner))
	require.Equal(t, 1, BucketFor(3.9, inner))
	require.Equal(t, 3, BucketFor(6, inner))
	require.Equal(t, 3, BucketFor(100, inner))
}
