package slides

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestFileSystemRepository_Builtin(t *testing.T) {
	for _, dir := range []string{"", filepath.Join(t.TempDir(), "missing")} {
		repo, err := NewFileSystemRepository(dir)
		require.NoError(t, err)
		require.Empty(t, repo.Dir())

		defs, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, defs, 3)
		require.Equal(t, []string{"histogram", "bubbles", "violin"}, []string{defs[0].Name, defs[1].Name, defs[2].Name})

		h := defs[0]
		require.Equal(t, KindHistogram, h.Kind)
		require.Equal(t, 40, h.Bins)
		require.Equal(t, 750*time.Millisecond, h.Transition)
		require.Equal(t, "IMDB Score", h.XLabel)
		require.Len(t, h.Fingerprint, 64)
	}
}

func TestFileSystemRepository_Directory(t *testing.T) {
	dir := writeDefinitions(t, map[string]string{
		"a.yaml":     "name: runtime\nkind: histogram\nfield: Runtime\ndomain: [0, 240]\nbins: 12\n",
		"notes.txt":  "name: ignored\nkind: histogram\n",
		"empty.yaml": "# nothing here\n",
	})

	repo, err := NewFileSystemRepository(dir)
	require.NoError(t, err)
	require.Equal(t, dir, repo.Dir())

	defs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def, err := repo.Get(context.Background(), "runtime")
	require.NoError(t, err)
	require.Equal(t, "runtime", def.Title)
	require.Equal(t, "runtime", def.Field)
	require.Equal(t, 240.0, def.Domain.Hi)
	require.Zero(t, def.Transition)

	_, err = repo.Get(context.Background(), "histogram")
	require.ErrorIs(t, err, ErrUnknownSlide)
}

func TestFileSystemRepository_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "unsupported kind",
			files:   map[string]string{"a.yaml": "name: pie\nkind: pie\n"},
			wantErr: `unsupported kind "pie"`,
		},
		{
			name:    "unsupported field",
			files:   map[string]string{"a.yaml": "name: h\nkind: histogram\nfield: budget\n"},
			wantErr: `unsupported field "budget"`,
		},
		{
			name:    "domain shape",
			files:   map[string]string{"a.yaml": "name: h\nkind: histogram\ndomain: [1]\n"},
			wantErr: "domain must be [lo, hi]",
		},
		{
			name:    "empty domain",
			files:   map[string]string{"a.yaml": "name: h\nkind: histogram\ndomain: [5, 5]\n"},
			wantErr: "invalid domain",
		},
		{
			name:    "negative transition",
			files:   map[string]string{"a.yaml": "name: h\nkind: histogram\ntransition_ms: -1\n"},
			wantErr: "transition_ms must be >= 0",
		},
		{
			name:    "negative size",
			files:   map[string]string{"a.yaml": "name: b\nkind: bubbles\npadding: -2\n"},
			wantErr: "must not be negative",
		},
		{
			name: "duplicate",
			files: map[string]string{
				"a.yaml": "name: h\nkind: histogram\n",
				"b.yml":  "name: h\nkind: violin\n",
			},
			wantErr: "duplicate slide name",
		},
		{
			name:    "malformed yaml",
			files:   map[string]string{"a.yaml": "name: [\n"},
			wantErr: "parsing slide file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFileSystemRepository(writeDefinitions(t, tc.files))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestFileSystemRepository_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: h\n"), 0o644))

	_, err := NewFileSystemRepository(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is not a directory")
}
