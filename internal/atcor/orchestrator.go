// Package atcor drives the per-band correction of a tile and assembles the
// gridded product handed to an output sink.
package atcor

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/forest-guardian/atcor/internal/dos"
	"github.com/forest-guardian/atcor/internal/mtl"
)

// Sentinel-2 L2A products store reflectance scaled by this factor.
const sentinel2Scale = 10000

type Options struct {
	// Workers bounds the number of bands corrected at once.
	Workers    int
	DarkObject dos.DarkObjectPolicy
	Logger     *zerolog.Logger
}

type Orchestrator struct {
	workers int
	dark    dos.DarkObjectPolicy
	logger  zerolog.Logger
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		workers: opts.Workers,
		dark:    opts.DarkObject,
		logger:  log.Logger,
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
	}
	if o.dark == nil {
		o.dark = dos.MinimumDN{}
	}
	if opts.Logger != nil {
		o.logger = *opts.Logger
	}
	return o
}

// Request is one tile to correct. Metadata is the parsed MTL document and
// is only required for Landsat tiles.
type Request struct {
	TileID   string
	Source   RasterSource
	Metadata mtl.Group
}

// Correct corrects every band of the request. Any band failure fails the
// whole tile and no product is returned.
func (o *Orchestrator) Correct(ctx context.Context, req Request) (*Product, error) {
	family, err := FamilyOf(req.TileID)
	if err != nil {
		return nil, err
	}
	if req.Source == nil {
		return nil, fmt.Errorf("%w: tile %s has no raster source", ErrRasterRead, req.TileID)
	}

	var calibration mtl.Group
	if family == Landsat {
		if req.Metadata == nil {
			return nil, fmt.Errorf("%w: tile %s has no MTL metadata", mtl.ErrMissingConfiguration, req.TileID)
		}
		if calibration, err = CalibrationRoot(req.Metadata); err != nil {
			return nil, err
		}
	}

	geo, err := req.Source.Georeference()
	if err != nil {
		return nil, fmt.Errorf("%w: georeference: %v", ErrRasterRead, err)
	}

	logger := o.logger.With().Str("tile", req.TileID).Str("family", family.String()).Logger()
	start := time.Now()

	n := req.Source.BandCount()
	bands := make([]CorrectedBand, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			band, err := o.correctBand(req.Source, i, family, calibration)
			if err != nil {
				return err
			}
			logger.Debug().Str("band", band.Name).Str("kind", band.Kind.String()).Msg("band corrected")
			bands[i] = band
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("tile %s: %w", req.TileID, err)
	}

	seen := make(map[string]struct{}, n)
	for _, b := range bands {
		if _, dup := seen[b.Name]; dup {
			return nil, fmt.Errorf("%w: %q in tile %s", ErrDuplicateBand, b.Name, req.TileID)
		}
		seen[b.Name] = struct{}{}
	}

	logger.Info().Int("bands", n).Dur("elapsed", time.Since(start)).Msg("tile corrected")

	return &Product{
		TileID:       req.TileID,
		Family:       family,
		Bands:        bands,
		Grid:         geo.BuildGrid(),
		Georeference: geo,
	}, nil
}

func (o *Orchestrator) correctBand(src RasterSource, i int, family SensorFamily, md mtl.Group) (CorrectedBand, error) {
	name, arr, err := src.ReadBand(i)
	if err != nil {
		return CorrectedBand{}, fmt.Errorf("%w: band %d: %v", ErrRasterRead, i+1, err)
	}
	band := CorrectedBand{Name: name, ID: BandID(name)}

	switch family {
	case Sentinel2:
		band.Kind = Scaled
		band.Data = dos.Rescale(arr, sentinel2Scale)
		return band, nil
	case Landsat:
		if IsThermal(band.ID) {
			p, err := ThermalParamsFor(md, band.ID)
			if err != nil {
				return CorrectedBand{}, err
			}
			band.Kind = Temperature
			band.Data, err = dos.BrightnessTemperature(arr, p)
			if err != nil {
				return CorrectedBand{}, fmt.Errorf("band %s: %w", band.ID, err)
			}
			return band, nil
		}
		p, err := ReflectiveParamsFor(md, band.ID)
		if err != nil {
			return CorrectedBand{}, err
		}
		band.Kind = Reflectance
		band.Data, err = dos.Reflectance(arr, p, o.dark)
		if err != nil {
			return CorrectedBand{}, fmt.Errorf("band %s: %w", band.ID, err)
		}
		return band, nil
	}
	return CorrectedBand{}, fmt.Errorf("%w: %s", ErrUnsupportedSensorFamily, family)
}
