package archive

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/forest-guardian/atcor/internal/cache"
	"github.com/forest-guardian/atcor/internal/mtl"
)

// Extraction records where an archive was unpacked.
type Extraction struct {
	Archive string    `json:"archive"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Root    string    `json:"root"`
}

// Cached skips extraction when the same archive, unchanged, was already
// unpacked to the same destination and its MTL file is still there.
type Cached struct {
	Extractor mtl.Extractor
	Cache     cache.CacheService[Extraction]
}

func NewCached(ex mtl.Extractor, dir string) Cached {
	return Cached{Extractor: ex, Cache: cache.NewFileCache[Extraction](dir, cache.WithValidator(extractionPresent))}
}

// extractionPresent reports whether the MTL file of rec is still on disk.
func extractionPresent(rec Extraction) bool {
	_, err := mtl.Locate(rec.Root)
	return err == nil
}

func (c Cached) Extract(ctx context.Context, archivePath, destDir string) (string, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return c.Extractor.Extract(ctx, archivePath, destDir)
	}
	key := c.Cache.GenerateKey(archivePath, destDir, info.Size(), info.ModTime().UnixNano())

	if rec, ok := c.Cache.Get(key); ok {
		log.Debug().Str("archive", archivePath).Str("root", rec.Root).Msg("reusing extracted archive")
		return rec.Root, nil
	}

	root, err := c.Extractor.Extract(ctx, archivePath, destDir)
	if err != nil {
		return "", err
	}
	rec := Extraction{Archive: archivePath, Size: info.Size(), ModTime: info.ModTime(), Root: root}
	if err := c.Cache.Set(key, rec); err != nil {
		log.Warn().Err(err).Str("archive", archivePath).Msg("failed to cache extraction")
	}
	return root, nil
}
