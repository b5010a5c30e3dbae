// Package delivery wires the correction pipeline to the on-disk layout:
// it opens tiles, reads their metadata archives, corrects them and writes
// the products and sidecars.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/forest-guardian/atcor/internal/archive"
	"github.com/forest-guardian/atcor/internal/atcor"
	"github.com/forest-guardian/atcor/internal/dos"
	"github.com/forest-guardian/atcor/internal/mtl"
	"github.com/forest-guardian/atcor/internal/output"
	"github.com/forest-guardian/atcor/internal/raster"
)

// Opener opens the raster of a tile.
type Opener func(path string) (atcor.RasterSource, error)

type Config struct {
	InputDir   string
	ExtractDir string
	OutputDir  string

	// CacheDir remembers extracted archives across runs. Empty disables it.
	CacheDir string

	// Format is "netcdf" (default) or "gtiff".
	Format      string
	Workers     int
	TileWorkers int
	DarkObject  string

	Quicklook     bool
	QuicklookBand string
	Footprint     bool
	Report        bool

	// Quiet disables the batch progress bar.
	Quiet bool

	// Notify sends a Discord notification when a batch ends.
	Notify bool

	// Open, Sink and Extractor default to GDAL, the Format sink and zip.
	Open      Opener
	Sink      atcor.Sink
	Extractor mtl.Extractor
}

type Service struct {
	cfg          Config
	orchestrator *atcor.Orchestrator
	sink         atcor.Sink
	open         Opener
	extractor    mtl.Extractor
}

// TileResult lists what was written for one tile.
type TileResult struct {
	TileID   string
	Output   string
	Sidecars []string
	Bands    int
	Elapsed  time.Duration
}

func New(cfg Config) (*Service, error) {
	policy, err := dos.ParsePolicy(cfg.DarkObject)
	if err != nil {
		return nil, err
	}
	s := &Service{
		cfg:          cfg,
		orchestrator: atcor.New(atcor.Options{Workers: cfg.Workers, DarkObject: policy}),
		sink:         cfg.Sink,
		open:         cfg.Open,
		extractor:    cfg.Extractor,
	}
	if s.sink == nil {
		if s.sink, err = SinkFor(cfg.Format); err != nil {
			return nil, err
		}
	}
	if s.open == nil {
		s.open = openDataset
	}
	if s.extractor == nil {
		s.extractor = archive.Zip{}
	}
	if cfg.CacheDir != "" {
		s.extractor = archive.NewCached(s.extractor, cfg.CacheDir)
	}
	return s, nil
}

func openDataset(path string) (atcor.RasterSource, error) {
	ds, err := raster.Open(path)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// SinkFor maps a format name to its sink.
func SinkFor(format string) (atcor.Sink, error) {
	switch strings.ToLower(format) {
	case "", "netcdf", "nc":
		return raster.NetCDFSink{}, nil
	case "gtiff", "geotiff", "tif":
		return raster.GeoTIFFSink{}, nil
	}
	return nil, fmt.Errorf("unsupported output format %q", format)
}

func (s *Service) paths(tileID string) atcor.TilePaths {
	return atcor.TilePaths{TileID: tileID, InputDir: s.cfg.InputDir, OutputDir: s.cfg.OutputDir}
}

// CorrectTile corrects one tile and writes its product and the enabled
// sidecars. Nothing is written when correction fails.
func (s *Service) CorrectTile(ctx context.Context, tileID string) (TileResult, error) {
	start := time.Now()
	family, err := atcor.FamilyOf(tileID)
	if err != nil {
		return TileResult{}, err
	}
	paths := s.paths(tileID)

	src, err := s.open(paths.Raster())
	if err != nil {
		return TileResult{}, err
	}
	defer src.Close()

	var md mtl.Group
	if family == atcor.Landsat {
		md, err = mtl.ReadArchive(ctx, s.extractor, paths.Archive(), filepath.Join(s.cfg.ExtractDir, tileID))
		if err != nil {
			return TileResult{}, err
		}
	}

	product, err := s.orchestrator.Correct(ctx, atcor.Request{TileID: tileID, Source: src, Metadata: md})
	if err != nil {
		return TileResult{}, err
	}

	// The product goes last: its presence marks the tile as done.
	sidecars, err := s.writeSidecars(product)
	if err != nil {
		removeAll(sidecars)
		return TileResult{}, err
	}
	result := TileResult{TileID: tileID, Output: paths.Output(s.sink.Extension()), Sidecars: sidecars, Bands: len(product.Bands)}
	if err := s.sink.Write(ctx, product, result.Output); err != nil {
		removeAll(sidecars)
		return TileResult{}, fmt.Errorf("failed to write %s: %w", result.Output, err)
	}
	result.Elapsed = time.Since(start)

	log.Info().Str("tile", tileID).Str("output", result.Output).Dur("elapsed", result.Elapsed).Msg("product written")
	return result, nil
}

func (s *Service) writeSidecars(p *atcor.Product) ([]string, error) {
	var written []string
	if s.cfg.Quicklook {
		if band, ok := output.QuicklookBand(p, s.cfg.QuicklookBand); ok {
			path := output.QuicklookPath(s.cfg.OutputDir, p.TileID)
			if err := output.Quicklook(band, path); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	if s.cfg.Footprint {
		path := output.FootprintPath(s.cfg.OutputDir, p.TileID)
		if err := output.WriteFootprint(p, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if s.cfg.Report {
		path := output.ReportPath(s.cfg.OutputDir, p.TileID)
		if err := output.WriteReport(p, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func removeAll(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove sidecar")
		}
	}
}
