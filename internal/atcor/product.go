package atcor

import (
	"context"
	"path/filepath"

	"github.com/forest-guardian/atcor/internal/dos"
)

// RasterSource is a multiband image with its georeference. Bands are
// numbered from 0.
type RasterSource interface {
	Georeference() (Georeference, error)
	BandCount() int
	ReadBand(i int) (description string, arr dos.Array, err error)
	Close() error
}

// Sink serializes a corrected product to path.
type Sink interface {
	Write(ctx context.Context, p *Product, path string) error
	Extension() string
}

// CorrectedBand is one output band, named after the source band
// description.
type CorrectedBand struct {
	Name string
	ID   string
	Kind BandKind
	Data dos.Array
}

// Product is everything a sink needs to write a corrected tile.
type Product struct {
	TileID       string
	Family       SensorFamily
	Bands        []CorrectedBand
	Grid         Grid
	Georeference Georeference
}

func (p *Product) Projection() string {
	return p.Georeference.Projection
}

// Band returns the band with the given descriptive name.
func (p *Product) Band(name string) (CorrectedBand, bool) {
	for _, b := range p.Bands {
		if b.Name == name {
			return b, true
		}
	}
	return CorrectedBand{}, false
}

// TilePaths follows the on-disk layout of a tile: <input>/<tile>.tif with
// its Landsat sidecar archive <input>/<tile>.zip, written to
// <output>/<tile>.<ext>.
type TilePaths struct {
	TileID    string
	InputDir  string
	OutputDir string
}

// RasterExt is the extension of tile rasters in the input directory.
const RasterExt = ".tif"

func (t TilePaths) Raster() string {
	return filepath.Join(t.InputDir, t.TileID+RasterExt)
}

func (t TilePaths) Archive() string {
	return filepath.Join(t.InputDir, t.TileID+".zip")
}

func (t TilePaths) Output(ext string) string {
	return filepath.Join(t.OutputDir, t.TileID+ext)
}
