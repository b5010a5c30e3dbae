// Package archive unpacks the metadata archives shipped next to Landsat
// tiles.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrUnsafePath = errors.New("archive entry escapes destination")

// Zip extracts zip archives. It implements mtl.Extractor.
type Zip struct{}

// Extract unpacks archivePath into destDir. When the archive holds a top
// level directory named after itself, that directory is returned as the
// root, otherwise destDir is.
func (Zip) Extract(ctx context.Context, archivePath, destDir string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, archivePath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return "", err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return "", err
		}
	}
	log.Debug().Str("archive", archivePath).Int("entries", len(r.File)).Msg("archive extracted")

	base := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	nested := filepath.Join(destDir, base)
	if info, err := os.Stat(nested); err == nil && info.IsDir() {
		return nested, nil
	}
	return destDir, nil
}

func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return dst.Close()
}
