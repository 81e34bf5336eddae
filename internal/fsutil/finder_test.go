package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.hcl"))
	touch(t, filepath.Join(dir, "a.hcl"))
	touch(t, filepath.Join(dir, "sub", "c.hcl"))
	touch(t, filepath.Join(dir, "skip.txt"))

	files, err := FindFilesByExtension(dir, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.hcl"),
		filepath.Join(dir, "b.hcl"),
		filepath.Join(dir, "sub", "c.hcl"),
	}, files)
}

func TestFindFilesByExtension_PanicsOnEmptyExtension(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "x.hcl")
	touch(t, single)
	touch(t, filepath.Join(dir, "y.txt"))

	files, err := CollectFiles([]string{single, dir, filepath.Join(dir, "y.txt")}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)

	_, err = CollectFiles([]string{filepath.Join(dir, "missing")}, ".hcl")
	require.Error(t, err)
}
