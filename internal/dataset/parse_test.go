package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCSV = `Title,Genre,Premiere,Runtime,IMDB Score,Language
Enter the Anime,Documentary,"August 5, 2019",58,2.5,English/Japanese
Dark Forces,Thriller,"August 21, 2020",81,2.6,Spanish
The App,Science fiction/Drama,"December 26, 2019",79,2.6,Italian
Drive,"Action, Drama","November 1, 2019",147,N/A,Hindi
,Comedy,"May 1, 2020",90,5.5,English
Leyla Everlasting,Comedy,"December 4, 2020",112,5.1,Turkish
Bad Year,Drama,sometime,100,6.0,English
Too High,Drama,"May 1, 2020",100,11.2,English
Short Row,Drama
`

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()
	require.Equal(t, "netflix-originals", s.Name)
	require.Len(t, s.Fingerprint, 64)
	require.True(t, s.Columns[FieldScore].Required)
	require.Equal(t, TypeYear, s.Columns[FieldYear].Type)
	require.False(t, s.Columns[FieldRuntime].Required)
}

func TestParseSchema(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "shorthand",
			yaml: `
name: films
version: 1
columns:
  title: string!
  score: number
`,
		},
		{
			name:    "missing title",
			yaml:    "name: films\nversion: 1\ncolumns:\n  score: number\n",
			wantErr: `column "title" is required`,
		},
		{
			name:    "unknown field",
			yaml:    "name: films\nversion: 1\ncolumns:\n  title: string\n  budget: number\n",
			wantErr: "unknown record field",
		},
		{
			name:    "bad type",
			yaml:    "name: films\nversion: 1\ncolumns:\n  title: text\n",
			wantErr: "unsupported type",
		},
		{
			name:    "type not allowed for field",
			yaml:    "name: films\nversion: 1\ncolumns:\n  title: number\n",
			wantErr: "not allowed",
		},
		{
			name:    "min above max",
			yaml:    "name: films\nversion: 1\ncolumns:\n  title: string\n  score:\n    type: number\n    min: 5\n    max: 1\n",
			wantErr: "cannot exceed",
		},
		{
			name:    "version",
			yaml:    "name: films\ncolumns:\n  title: string\n",
			wantErr: "version must be >= 1",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ParseSchema([]byte(tc.yaml))
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, s.Fingerprint)
		})
	}
}

func TestParse_ExcludesBadRowsAndCountsThem(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleCSV), DefaultSchema())
	require.NoError(t, err)

	require.Equal(t, 9, res.Read)
	require.Len(t, res.Records, 4)
	require.Equal(t, 5, res.Excluded)
	require.Equal(t, map[string]int{
		ReasonNotNumeric: 2, // N/A score, "sometime" premiere
		ReasonMissing:    1, // empty title
		ReasonOutOfRange: 1, // 11.2 > max
		ReasonShortRow:   1,
	}, res.ExcludedBy)
	require.Len(t, res.Errors, 5)

	first := res.Records[0]
	require.Equal(t, "Enter the Anime", first.Title)
	require.Equal(t, "Documentary", first.Genre)
	require.Equal(t, 2019, first.Year)
	require.Equal(t, 2.5, first.Score)
	require.Equal(t, 58.0, first.Runtime)
	require.Equal(t, "English/Japanese", first.Language)
}

func TestParse_HeaderAliases(t *testing.T) {
	csv := "\ufeffSimplified Genre, title ,Premiere Year,Score\nDrama,Roma,2018,7.7\n"
	res, err := Parse(strings.NewReader(csv), DefaultSchema())
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Equal(t, "Roma", res.Records[0].Title)
	require.Equal(t, 2018, res.Records[0].Year)
	require.Equal(t, []string{"Drama"}, res.Records[0].Genres)
}

func TestParse_MultiValuedGenre(t *testing.T) {
	csv := "Title,Genre,Premiere Year,IMDB Score\nX,\"Action, Comedy, Action\",2020,6\n"
	res, err := Parse(strings.NewReader(csv), DefaultSchema())
	require.NoError(t, err)
	require.Equal(t, []string{"Action", "Comedy"}, res.Records[0].Genres)
	require.Equal(t, "Action", res.Records[0].Genre)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""), DefaultSchema())
	require.Error(t, err)

	_, err = Parse(strings.NewReader("Title,Genre\nRoma,Drama\n"), DefaultSchema())
	require.Error(t, err)
	require.Contains(t, err.Error(), `required column "score"`)
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		cell   string
		want   int
		wantOK bool
	}{
		{cell: "2019", want: 2019, wantOK: true},
		{cell: "August 5, 2019", want: 2019, wantOK: true},
		{cell: "2019-08-05", want: 2019, wantOK: true},
		{cell: "5/8/19", wantOK: false},
		{cell: "soon", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.cell, func(t *testing.T) {
			got, ok := parseYear(tc.cell)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.want, got)
		})
	}
}
