package mtl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/rs/zerolog/log"
)

var mtlFilePattern = regexp.MustCompile(`^(.*?)MTL\.txt$`)

// Extractor unpacks an archive below destDir and returns the directory
// holding its contents.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) (string, error)
}

// Locate returns the path of the MTL file in dir.
func Locate(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingConfiguration, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && mtlFilePattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("%w: no MTL file in %s", ErrMissingConfiguration, dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// ReadArchive extracts archivePath and parses the MTL file it ships. A
// missing archive is ErrMissingConfiguration.
func ReadArchive(ctx context.Context, ex Extractor, archivePath, destDir string) (Group, error) {
	root, err := ex.Extract(ctx, archivePath, destDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingConfiguration, archivePath, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", archivePath, err)
	}
	mtlPath, err := Locate(root)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", mtlPath).Msg("reading MTL metadata")
	return ParseFile(mtlPath)
}
