package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBundle(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "scanA_0.jpeg"),
		filepath.Join(dir, "coords.csv"),
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("content of "+filepath.Base(f)), 0644))
	}

	bundlePath := filepath.Join(dir, "run.zip")
	require.NoError(t, NewBundler().CreateBundle(context.Background(), files, bundlePath))

	zr, err := zip.OpenReader(bundlePath)
	require.NoError(t, err)
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"scanA_0.jpeg", "coords.csv"}, names)
}

func TestCreateBundleMissingInput(t *testing.T) {
	dir := t.TempDir()

	err := NewBundler().CreateBundle(context.Background(), []string{filepath.Join(dir, "missing.jpeg")}, filepath.Join(dir, "run.zip"))
	assert.Error(t, err)
}

func TestCreateBundleCancelled(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "scanA_0.jpeg")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewBundler().CreateBundle(ctx, []string{file}, filepath.Join(dir, "run.zip"))
	assert.ErrorIs(t, err, context.Canceled)
}
