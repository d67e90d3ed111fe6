package aggregation

import (
	"testing"

	v1 "github.com/LydiaBrothers/filmslides/internal/api/v1"
	"github.com/LydiaBrothers/filmslides/internal/core/filter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func films() []v1.Record {
	return []v1.Record{
		{Title: "a", Genre: "Documentary", Genres: []string{"Documentary"}, Score: 7.0, Year: 2019, Language: "English"},
		{Title: "b", Genre: "Drama", Genres: []string{"Drama", "Romance"}, Score: 6.0, Year: 2020, Language: "English"},
		{Title: "c", Genre: "Comedy", Genres: []string{"Comedy"}, Score: 5.0, Year: 2020, Language: "Spanish"},
		{Title: "d", Genre: "Drama", Genres: []string{"Drama"}, Score: 8.0, Year: 2021, Language: "Hindi"},
		{Title: "e", Genre: "Documentary", Genres: []string{"Documentary", "documentary"}, Score: 7.5, Year: 2021},
		{Title: "f", Genre: "Drama", Genres: []string{"Drama"}, Score: 6.5, Year: 2018, Language: "English"},
	}
}

func keysOf(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestCountBy_FirstOccurrenceOrder(t *testing.T) {
	groups := CountBy(films(), ByGenre)
	require.Equal(t, []string{"Documentary", "Drama", "Comedy"}, keysOf(groups))
	require.True(t, decimal.NewFromInt(2).Equal(groups[0].Value))
	require.True(t, decimal.NewFromInt(3).Equal(groups[1].Value))
	require.EqualValues(t, 3, groups[1].Count)
}

func TestCountBy_MultiValuedKeysCountOnce(t *testing.T) {
	groups := CountBy(films(), ByEachGenre)
	require.Equal(t, []string{"Documentary", "Drama", "Romance", "Comedy", "documentary"}, keysOf(groups))

	romance, ok := Lookup(groups, "Romance")
	require.True(t, ok)
	require.True(t, decimal.NewFromInt(1).Equal(romance.Value))
}

func TestCountBy_SkipsRecordsWithoutKey(t *testing.T) {
	groups := CountBy(films(), ByLanguage)
	require.Equal(t, []string{"English", "Spanish", "Hindi"}, keysOf(groups))

	english, _ := Lookup(groups, "English")
	require.EqualValues(t, 3, english.Count)
}

func TestCountBy_EmptyInput(t *testing.T) {
	groups := CountBy(nil, ByGenre)
	require.NotNil(t, groups)
	require.Empty(t, groups)
}

func TestGroupBy_Operators(t *testing.T) {
	tests := []struct {
		name string
		op   string
		want map[string]string
	}{
		{name: "max score", op: OpMax, want: map[string]string{"Documentary": "7.5", "Drama": "8", "Comedy": "5"}},
		{name: "min score", op: OpMin, want: map[string]string{"Documentary": "7", "Drama": "6", "Comedy": "5"}},
		{name: "sum score", op: OpSum, want: map[string]string{"Documentary": "14.5", "Drama": "20.5", "Comedy": "5"}},
		{name: "mean score", op: OpMean, want: map[string]string{"Documentary": "7.25", "Drama": "6.8333", "Comedy": "5"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			groups, err := GroupBy(films(), ByGenre, FieldScore, tc.op)
			require.NoError(t, err)
			require.Len(t, groups, len(tc.want))
			for _, g := range groups {
				want := decimal.RequireFromString(tc.want[g.Key])
				require.True(t, want.Equal(g.Value), "%s: want=%s got=%s", g.Key, want, g.Value)
			}
		})
	}
}

func TestGroupBy_Errors(t *testing.T) {
	_, err := GroupBy(films(), ByGenre, FieldScore, "median")
	require.Error(t, err)

	_, err = GroupBy(films(), nil, FieldScore, OpSum)
	require.Error(t, err)
}

func TestGroupBy_UnknownFieldExcludesSilently(t *testing.T) {
	groups, err := GroupBy(films(), ByGenre, "budget", OpSum)
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestSortByValueDesc_StableTies(t *testing.T) {
	groups := []Group{
		{Key: "Comedy", Value: decimal.NewFromInt(2)},
		{Key: "Drama", Value: decimal.NewFromInt(5)},
		{Key: "Action", Value: decimal.NewFromInt(2)},
		{Key: "Thriller", Value: decimal.NewFromInt(9)},
	}
	sorted := SortByValueDesc(groups)
	require.Equal(t, []string{"Thriller", "Drama", "Comedy", "Action"}, keysOf(sorted))
	require.Equal(t, "Comedy", groups[0].Key, "input must not be reordered")
}

func TestScenario_DramaOverSeven(t *testing.T) {
	dataset := []v1.Record{
		{Title: "x", Genre: "Drama", Genres: []string{"Drama"}, Score: 8.0},
		{Title: "y", Genre: "Comedy", Genres: []string{"Comedy"}, Score: 6.0},
	}
	groups := CountBy(filter.Filter(dataset, filter.ScoreAbove(7.0)), ByGenre)
	require.Len(t, groups, 1)
	require.Equal(t, "Drama", groups[0].Key)
	require.True(t, decimal.NewFromInt(1).Equal(groups[0].Value))

	_, ok := Lookup(groups, "Comedy")
	require.False(t, ok)
}

func TestAggregate_Deterministic(t *testing.T) {
	preds := []filter.Predicate{
		filter.All(),
		filter.ScoreAbove(6.2),
		filter.YearAtMost(2020),
		filter.GenreIs("Drama"),
	}
	for _, p := range preds {
		first := CountBy(filter.Filter(films(), p), ByEachGenre)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, CountBy(filter.Filter(films(), p), ByEachGenre))
		}
	}
}
