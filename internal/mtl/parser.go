package mtl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	directiveGroup    = "GROUP"
	directiveEndGroup = "END_GROUP"
	directiveEnd      = "END"
)

// Parse reads MTL text into a tree of groups mirroring its GROUP blocks.
func Parse(r io.Reader) (Group, error) {
	root := Group{}
	var path []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == directiveEnd {
			continue
		}

		key, raw, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		raw = strings.TrimSpace(raw)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedConfiguration, lineNo, line)
		}

		switch key {
		case directiveGroup:
			if raw == "" {
				return nil, fmt.Errorf("%w: line %d: unnamed group", ErrMalformedConfiguration, lineNo)
			}
			path = append(path, raw)
			if err := Set(root, path, Group{}); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		case directiveEndGroup:
			if len(path) == 0 {
				return nil, fmt.Errorf("%w: line %d: END_GROUP = %s without open group", ErrUnbalancedGroup, lineNo, raw)
			}
			if open := path[len(path)-1]; open != raw {
				log.Debug().Int("line", lineNo).Str("open", open).Str("closed", raw).Msg("END_GROUP name does not match open group")
			}
			path = path[:len(path)-1]
		default:
			keys := append(append([]string{}, path...), key)
			if err := Set(root, keys, Coerce(raw)); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	if len(path) > 0 {
		return nil, fmt.Errorf("%w: group %s is never closed", ErrUnbalancedGroup, pathString(path))
	}
	return root, nil
}

// ParseFile parses the MTL file at path.
func ParseFile(path string) (Group, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ErrMissingConfiguration, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
