package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/fwojciec/sketchui"
	"github.com/fwojciec/sketchui/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSketches(t *testing.T) {
	t.Parallel()

	t.Run("default pattern finds images recursively", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "b.png"), pngHeader)
		writeFile(t, filepath.Join(dir, "nested", "deep", "a.jpg"), pngHeader)
		writeFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))

		got, err := fs.FindSketches(dir, "")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "b.png"),
			filepath.Join(dir, "nested", "deep", "a.jpg"),
		}, got)
	})

	t.Run("custom pattern", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "login.png"), pngHeader)
		writeFile(t, filepath.Join(dir, "dashboard.png"), pngHeader)

		got, err := fs.FindSketches(dir, "login*")
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "login.png")}, got)
	})

	t.Run("directories are skipped", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "dir.png", "inner.png"), pngHeader)

		got, err := fs.FindSketches(dir, "*.png")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()
		got, err := fs.FindSketches(t.TempDir(), "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := fs.FindSketches(t.TempDir(), "[")
		require.ErrorIs(t, err, sketchui.ErrValidation)
	})

	t.Run("root must be a directory", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "file.png")
		writeFile(t, path, pngHeader)
		_, err := fs.FindSketches(path, "")
		require.ErrorIs(t, err, sketchui.ErrValidation)
	})
}

func TestResolveSketches(t *testing.T) {
	t.Parallel()

	t.Run("plain path is returned unchanged", func(t *testing.T) {
		t.Parallel()
		got, err := fs.ResolveSketches("sketches/login.png")
		require.NoError(t, err)
		assert.Equal(t, []string{"sketches/login.png"}, got)
	})

	t.Run("glob is expanded", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "x", "one.png"), pngHeader)
		writeFile(t, filepath.Join(dir, "x", "two.png"), pngHeader)

		got, err := fs.ResolveSketches(filepath.Join(dir, "x", "*.png"))
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "x", "one.png"),
			filepath.Join(dir, "x", "two.png"),
		}, got)
	})
}
