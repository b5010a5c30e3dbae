package raster

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"

	"github.com/forest-guardian/atcor/internal/atcor"
	"github.com/forest-guardian/atcor/internal/utils"
)

// GeoTIFFSink writes a product as a float32 multiband GeoTIFF. Band
// descriptions carry the corrected band names.
type GeoTIFFSink struct {
	CreationOptions []string
}

func (GeoTIFFSink) Extension() string { return ".tif" }

func (s GeoTIFFSink) Write(ctx context.Context, p *atcor.Product, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(p.Bands) == 0 {
		return fmt.Errorf("product %s has no bands", p.TileID)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	register()

	tmpPath := path + ".tmp"
	var err error
	utils.ExecuteWithGDALLock(func() {
		err = s.write(p, tmpPath)
	})
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp GeoTIFF: %w", err)
	}
	return nil
}

func (s GeoTIFFSink) write(p *atcor.Product, path string) (err error) {
	opts := s.CreationOptions
	if opts == nil {
		opts = []string{"TILED=YES", "COMPRESS=DEFLATE"}
	}
	geo := p.Georeference
	ds, err := godal.Create(godal.GTiff, path, len(p.Bands), godal.Float32, geo.Cols, geo.Rows,
		godal.CreationOption(opts...))
	if err != nil {
		return fmt.Errorf("failed to create GeoTIFF %s: %w", path, err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close GeoTIFF: %w", cerr)
		}
	}()

	if err := ds.SetGeoTransform(geo.GeoTransform); err != nil {
		return fmt.Errorf("failed to set geotransform: %w", err)
	}
	if geo.Projection != "" {
		if err := ds.SetProjection(geo.Projection); err != nil {
			return fmt.Errorf("failed to set projection: %w", err)
		}
	}

	bands := ds.Bands()
	for i, b := range p.Bands {
		if b.Data.Rows != geo.Rows || b.Data.Cols != geo.Cols {
			return fmt.Errorf("band %s is %dx%d, raster is %dx%d", b.Name, b.Data.Rows, b.Data.Cols, geo.Rows, geo.Cols)
		}
		band := bands[i]
		if err := band.SetDescription(b.Name); err != nil {
			return fmt.Errorf("failed to set description of band %s: %w", b.Name, err)
		}
		if err := band.SetNoData(math.NaN()); err != nil {
			return fmt.Errorf("failed to set nodata of band %s: %w", b.Name, err)
		}
		if err := band.Write(0, 0, b.Data.Float32(), b.Data.Cols, b.Data.Rows); err != nil {
			return fmt.Errorf("failed to write band %s: %w", b.Name, err)
		}
	}
	return nil
}
