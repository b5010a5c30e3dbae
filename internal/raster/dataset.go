// Package raster reads multiband images through GDAL and writes corrected
// products as NetCDF or GeoTIFF.
package raster

import (
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"

	"github.com/forest-guardian/atcor/internal/atcor"
	"github.com/forest-guardian/atcor/internal/dos"
	"github.com/forest-guardian/atcor/internal/utils"
)

var registerOnce sync.Once

func register() {
	registerOnce.Do(godal.RegisterAll)
}

// Dataset is a GDAL raster opened for reading. It implements
// atcor.RasterSource.
type Dataset struct {
	path string
	ds   *godal.Dataset
}

var quietWarnings = godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
	if ec <= godal.CE_Warning {
		return nil
	}
	return fmt.Errorf("GDAL error %d: %s", code, msg)
})

// Open opens path with GDAL. Unreadable or unsupported files are reported
// as atcor.ErrRasterRead.
func Open(path string) (*Dataset, error) {
	register()
	var (
		ds  *godal.Dataset
		err error
	)
	utils.ExecuteWithGDALLock(func() {
		ds, err = godal.Open(path, quietWarnings)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", atcor.ErrRasterRead, path, err)
	}
	return &Dataset{path: path, ds: ds}, nil
}

// Wrap adapts an already opened GDAL dataset. The caller keeps ownership.
func Wrap(ds *godal.Dataset) *Dataset {
	return &Dataset{ds: ds}
}

func (d *Dataset) Georeference() (atcor.Georeference, error) {
	var (
		gt   [6]float64
		proj string
		st   godal.DatasetStructure
		err  error
	)
	utils.ExecuteWithGDALLock(func() {
		st = d.ds.Structure()
		proj = d.ds.Projection()
		gt, err = d.ds.GeoTransform()
	})
	if err != nil {
		return atcor.Georeference{}, fmt.Errorf("failed to get geotransform of %s: %w", d.path, err)
	}
	return atcor.NewGeoreference(gt, proj, st.SizeX, st.SizeY)
}

func (d *Dataset) BandCount() int {
	var n int
	utils.ExecuteWithGDALLock(func() {
		n = d.ds.Structure().NBands
	})
	return n
}

// ReadBand reads band i (0 based) as float64 DNs.
func (d *Dataset) ReadBand(i int) (string, dos.Array, error) {
	var (
		name string
		arr  dos.Array
		err  error
	)
	utils.ExecuteWithGDALLock(func() {
		bands := d.ds.Bands()
		if i < 0 || i >= len(bands) {
			err = fmt.Errorf("band %d out of range [0, %d)", i, len(bands))
			return
		}
		band := bands[i]
		name = band.Description()
		st := band.Structure()
		arr = dos.NewArray(st.SizeY, st.SizeX)
		err = band.Read(0, 0, arr.Data, st.SizeX, st.SizeY)
	})
	if err != nil {
		return "", dos.Array{}, fmt.Errorf("failed to read band %d of %s: %w", i+1, d.path, err)
	}
	if name == "" {
		name = fmt.Sprintf("B%d", i+1)
	}
	return name, arr, nil
}

func (d *Dataset) Close() error {
	var err error
	utils.ExecuteWithGDALLock(func() {
		err = d.ds.Close()
	})
	return err
}
