package cache

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type CacheEntry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

type CacheService[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T) error
	GenerateKey(params ...interface{}) string
}

// Option configures a FileCache.
type Option[T any] func(*FileCache[T])

// WithValidator drops entries for which valid returns false, for records
// that point at state which can disappear behind the cache's back.
func WithValidator[T any](valid func(T) bool) Option[T] {
	return func(fc *FileCache[T]) { fc.valid = valid }
}

// FileCache keeps one JSON file per key. Unreadable, tampered or invalid
// entries are removed on lookup and reported as missing.
type FileCache[T any] struct {
	dir   string
	valid func(T) bool
}

func NewFileCache[T any](dir string, opts ...Option[T]) *FileCache[T] {
	fc := &FileCache[T]{dir: dir}
	for _, opt := range opts {
		opt(fc)
	}
	return fc
}

func (fc *FileCache[T]) GenerateKey(params ...interface{}) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprint(p)
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

func (fc *FileCache[T]) entryPath(key string) string {
	return filepath.Join(fc.dir, key+".json")
}

func (fc *FileCache[T]) Get(key string) (T, bool) {
	var zero T
	raw, err := os.ReadFile(fc.entryPath(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debug().Err(err).Str("key", key).Msg("cache entry unreadable")
		}
		return zero, false
	}

	var entry CacheEntry[T]
	switch {
	case json.Unmarshal(raw, &entry) != nil:
		log.Debug().Str("key", key).Msg("cache entry corrupt, dropping")
	case entry.Checksum != checksum(entry.Data):
		log.Debug().Str("key", key).Msg("cache entry checksum mismatch, dropping")
	case fc.valid != nil && !fc.valid(entry.Data):
		log.Debug().Str("key", key).Time("created_at", entry.CreatedAt).Msg("cache entry stale, dropping")
	default:
		return entry.Data, true
	}
	if err := fc.Delete(key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to drop cache entry")
	}
	return zero, false
}

// Set goes through a temp file and a rename, so Get never reads half an
// entry.
func (fc *FileCache[T]) Set(key string, data T) error {
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	raw, err := json.Marshal(CacheEntry[T]{Data: data, CreatedAt: time.Now(), Checksum: checksum(data)})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(fc.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fc.entryPath(key)); err != nil {
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

// Delete removes the entry for key. A missing entry is not an error.
func (fc *FileCache[T]) Delete(key string) error {
	if err := os.Remove(fc.entryPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func checksum(data any) string {
	raw, _ := json.Marshal(data)
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}
