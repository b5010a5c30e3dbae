package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExtractor struct {
	inner Zip
	calls int
}

func (c *countingExtractor) Extract(ctx context.Context, archivePath, destDir string) (string, error) {
	c.calls++
	return c.inner.Extract(ctx, archivePath, destDir)
}

func TestCachedReusesExtraction(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "LC08_TEST.zip")
	writeZip(t, archive, map[string]string{"LC08_TEST_MTL.txt": metadata})
	dest := filepath.Join(t.TempDir(), "LC08_TEST")
	inner := &countingExtractor{}
	c := NewCached(inner, t.TempDir())

	root, err := c.Extract(context.Background(), archive, dest)
	require.NoError(t, err)
	again, err := c.Extract(context.Background(), archive, dest)
	require.NoError(t, err)

	assert.Equal(t, root, again)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedReextractsWhenMissing(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "LC08_TEST.zip")
	writeZip(t, archive, map[string]string{"LC08_TEST_MTL.txt": metadata})
	dest := filepath.Join(t.TempDir(), "LC08_TEST")
	inner := &countingExtractor{}
	c := NewCached(inner, t.TempDir())

	_, err := c.Extract(context.Background(), archive, dest)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dest))
	assert.False(t, extractionPresent(Extraction{Root: dest}))

	root, err := c.Extract(context.Background(), archive, dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "LC08_TEST_MTL.txt"))
	assert.Equal(t, 2, inner.calls)
}

func TestCachedReextractsChangedArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "LC08_TEST.zip")
	writeZip(t, archive, map[string]string{"LC08_TEST_MTL.txt": metadata})
	dest := filepath.Join(t.TempDir(), "LC08_TEST")
	inner := &countingExtractor{}
	c := NewCached(inner, t.TempDir())

	_, err := c.Extract(context.Background(), archive, dest)
	require.NoError(t, err)
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(archive, later, later))

	_, err = c.Extract(context.Background(), archive, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedMissingArchive(t *testing.T) {
	inner := &countingExtractor{}
	c := NewCached(inner, t.TempDir())

	_, err := c.Extract(context.Background(), filepath.Join(t.TempDir(), "none.zip"), t.TempDir())
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
