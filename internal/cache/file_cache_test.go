package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Root  string `json:"root"`
	Bands int    `json:"bands"`
}

func TestFileCacheSetGet(t *testing.T) {
	fc := NewFileCache[record](filepath.Join(t.TempDir(), "cache"))
	key := fc.GenerateKey("LC08_X.zip", int64(1024))

	_, ok := fc.Get(key)
	assert.False(t, ok)

	require.NoError(t, fc.Set(key, record{Root: "/extract/LC08_X", Bands: 11}))
	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, record{Root: "/extract/LC08_X", Bands: 11}, got)

	require.NoError(t, fc.Delete(key))
	_, ok = fc.Get(key)
	assert.False(t, ok)
	assert.NoError(t, fc.Delete(key))
}

func TestFileCacheGenerateKey(t *testing.T) {
	fc := NewFileCache[record](t.TempDir())
	a := fc.GenerateKey("a", 1)
	assert.Len(t, a, 40)
	assert.Equal(t, a, fc.GenerateKey("a", 1))
	assert.NotEqual(t, a, fc.GenerateKey("a", 2))
}

func TestFileCacheRejectsTamperedEntry(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache[record](dir)
	key := fc.GenerateKey("k")
	require.NoError(t, fc.Set(key, record{Root: "/a", Bands: 1}))

	path := filepath.Join(dir, key+".json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(data), `"/a"`, `"/b"`, 1)), 0644))

	_, ok := fc.Get(key)
	assert.False(t, ok)
}

func TestFileCacheDropsInvalidEntry(t *testing.T) {
	dir := t.TempDir()
	live := map[string]bool{"/a": true}
	fc := NewFileCache[record](dir, WithValidator(func(r record) bool { return live[r.Root] }))
	key := fc.GenerateKey("k")
	require.NoError(t, fc.Set(key, record{Root: "/a", Bands: 1}))

	_, ok := fc.Get(key)
	assert.True(t, ok)

	live["/a"] = false
	_, ok = fc.Get(key)
	assert.False(t, ok)
	assert.NoFileExists(t, filepath.Join(dir, key+".json"))
}

func TestFileCacheDropsCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache[record](dir)
	key := fc.GenerateKey("k")
	path := filepath.Join(dir, key+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, ok := fc.Get(key)
	assert.False(t, ok)
	assert.NoFileExists(t, path)
}

func TestFileCacheSetLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCache[record](dir)
	require.NoError(t, fc.Set(fc.GenerateKey("k"), record{Root: "/a"}))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
