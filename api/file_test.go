package api_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/metareg/api"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("owner: post\n"), 0o600))

	tcs := map[string]struct {
		path    string
		want    string
		wantErr string
	}{
		"regular file": {
			path: path,
			want: "owner: post\n",
		},
		"directory": {
			path:    dir,
			wantErr: "path is a directory",
		},
		"missing": {
			path:    filepath.Join(dir, "missing.yaml"),
			wantErr: "stat file",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := api.ReadFile(tc.path)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	doc := struct {
		Owner string   `json:"owner"`
		Names []string `json:"names"`
	}{
		Owner: "post",
		Names: []string{"title", "body"},
	}

	got, err := api.MarshalYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, "owner: post\nnames:\n  - title\n  - body\n", string(got))
}

func TestFindFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o700))

	want := filepath.Join(root, "a", ".metareg.yaml")
	require.NoError(t, os.WriteFile(want, []byte("{}"), 0o600))

	got, err := api.FindFile(nested, []string{"metareg.yaml", ".metareg.yaml"})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = api.FindFile(want, []string{".metareg.yaml"})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = api.FindFile(root, []string{"nothing-here-" + filepath.Base(root) + ".yaml"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = api.FindFile(filepath.Join(root, "missing"), []string{"x"})
	require.Error(t, err)
}

func TestWriteDefaultFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "registry.yaml")

	require.NoError(t, api.WriteDefaultFile(path, []byte("first"), false, "registry"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	// Existing files are kept unless forced.
	require.NoError(t, api.WriteDefaultFile(path, []byte("second"), false, "registry"))

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))

	require.NoError(t, api.WriteDefaultFile(path, []byte("third"), true, "registry"))

	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "third", string(got))

	backups, err := filepath.Glob(path + ".*.old")
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	err = api.WriteDefaultFile(dir, []byte("x"), false, "registry")
	require.ErrorContains(t, err, "path is a directory")
}
