package v1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr string
	}{
		{name: "valid", record: Record{Title: "Enter the Anime", Score: 2.5, Year: 2019}},
		{name: "missing title", record: Record{Score: 7}, wantErr: "title is required"},
		{name: "blank title", record: Record{Title: "   ", Score: 7}, wantErr: "title is required"},
		{name: "negative score", record: Record{Title: "x", Score: -1}, wantErr: "score must be >= 0"},
		{name: "negative year", record: Record{Title: "x", Year: -2020}, wantErr: "year must be >= 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.record.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSplitGenres(t *testing.T) {
	require.Equal(t, []string{"Action", "Comedy"}, SplitGenres(" Action ,Comedy,"))
	require.Equal(t, []string{"Drama"}, SplitGenres("Drama, drama"))
	require.Empty(t, SplitGenres(" , "))
}

func TestRecord_HasGenre(t *testing.T) {
	r := Record{Title: "x", Genre: "Documentary", Genres: []string{"Documentary", "Music"}}
	require.True(t, r.HasGenre("music"))
	require.True(t, r.HasGenre("Documentary"))
	require.False(t, r.HasGenre("Drama"))

	empty := Record{Title: "y"}
	require.False(t, empty.HasGenre(""))
}
