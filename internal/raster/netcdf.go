package raster

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/forest-guardian/atcor/internal/atcor"
)

const (
	netcdfDescription = "Atmospherically corrected bands"
	netcdfSource      = "atcor DOS1 correction"
	gridMappingVar    = "spatial_ref"
	bandUnits         = "rad"
)

// NetCDFSink writes a product as a NetCDF-4 file with lat/lon dimensions,
// one variable per band and a spatial_ref grid mapping variable.
type NetCDFSink struct {
	Now func() time.Time
}

func (NetCDFSink) Extension() string { return ".nc" }

// Write creates path atomically: the file is built next to path and only
// renamed into place once complete.
func (s NetCDFSink) Write(ctx context.Context, p *atcor.Product, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkVariableNames(p); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp NetCDF file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := s.write(p, tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp NetCDF file: %w", err)
	}
	return nil
}

func (s NetCDFSink) write(p *atcor.Product, path string) (err error) {
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close NetCDF file: %w", cerr)
		}
	}()

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	globals := map[string]string{
		"description": netcdfDescription,
		"history":     "Created " + now().Format(time.ANSIC),
		"source":      netcdfSource,
	}
	for k, v := range globals {
		if err := ds.Attr(k).WriteBytes([]byte(v)); err != nil {
			return fmt.Errorf("failed to write global attribute %s: %w", k, err)
		}
	}

	latDim, err := ds.AddDim("lat", uint64(len(p.Grid.Lats)))
	if err != nil {
		return fmt.Errorf("failed to add lat dimension: %w", err)
	}
	lonDim, err := ds.AddDim("lon", uint64(len(p.Grid.Lons)))
	if err != nil {
		return fmt.Errorf("failed to add lon dimension: %w", err)
	}

	lats, err := addCoordinate(ds, "lat", latDim, "latitude", "m north", "Y")
	if err != nil {
		return err
	}
	lons, err := addCoordinate(ds, "lon", lonDim, "longitude", "m east", "X")
	if err != nil {
		return err
	}

	vars := make([]netcdf.Var, len(p.Bands))
	for i, b := range p.Bands {
		if b.Data.Rows != len(p.Grid.Lats) || b.Data.Cols != len(p.Grid.Lons) {
			return fmt.Errorf("band %s is %dx%d, grid is %dx%d", b.Name, b.Data.Rows, b.Data.Cols, len(p.Grid.Lats), len(p.Grid.Lons))
		}
		v, err := ds.AddVar(b.ID, netcdf.FLOAT, []netcdf.Dim{latDim, lonDim})
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", b.ID, err)
		}
		if err := v.Attr("_FillValue").WriteFloat32s([]float32{float32(math.NaN())}); err != nil {
			return fmt.Errorf("failed to set fill value of %s: %w", b.ID, err)
		}
		if err := writeTextAttrs(v, map[string]string{
			"standard_name": b.Name,
			"units":         bandUnits,
			"grid_mapping":  gridMappingVar,
			"kind":          b.Kind.String(),
		}); err != nil {
			return fmt.Errorf("variable %s: %w", b.ID, err)
		}
		vars[i] = v
	}

	crs, err := ds.AddVar(gridMappingVar, netcdf.INT, nil)
	if err != nil {
		return fmt.Errorf("failed to add %s variable: %w", gridMappingVar, err)
	}
	if err := crs.Attr(gridMappingVar).WriteBytes([]byte(p.Projection())); err != nil {
		return fmt.Errorf("failed to write projection: %w", err)
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end NetCDF define mode: %w", err)
	}

	if err := lats.WriteFloat32s(toFloat32(p.Grid.Lats)); err != nil {
		return fmt.Errorf("failed to write lat: %w", err)
	}
	if err := lons.WriteFloat32s(toFloat32(p.Grid.Lons)); err != nil {
		return fmt.Errorf("failed to write lon: %w", err)
	}
	for i, b := range p.Bands {
		if err := vars[i].WriteFloat32s(b.Data.Float32()); err != nil {
			return fmt.Errorf("failed to write band %s: %w", b.Name, err)
		}
	}
	if err := crs.WriteInt32s([]int32{0}); err != nil {
		return fmt.Errorf("failed to write %s: %w", gridMappingVar, err)
	}
	return nil
}

func addCoordinate(ds netcdf.Dataset, name string, dim netcdf.Dim, standardName, units, axis string) (netcdf.Var, error) {
	v, err := ds.AddVar(name, netcdf.FLOAT, []netcdf.Dim{dim})
	if err != nil {
		return netcdf.Var{}, fmt.Errorf("failed to add %s variable: %w", name, err)
	}
	err = writeTextAttrs(v, map[string]string{
		"standard_name": standardName,
		"units":         units,
		"axis":          axis,
	})
	if err != nil {
		return netcdf.Var{}, fmt.Errorf("variable %s: %w", name, err)
	}
	return v, nil
}

func writeTextAttrs(v netcdf.Var, attrs map[string]string) error {
	for k, val := range attrs {
		if err := v.Attr(k).WriteBytes([]byte(val)); err != nil {
			return fmt.Errorf("failed to write attribute %s: %w", k, err)
		}
	}
	return nil
}

// checkVariableNames rejects products whose band identifiers would map to
// the same NetCDF variable.
func checkVariableNames(p *atcor.Product) error {
	seen := map[string]string{"lat": "", "lon": "", gridMappingVar: ""}
	for _, b := range p.Bands {
		if b.ID == "" {
			return fmt.Errorf("band %q has no identifier", b.Name)
		}
		if other, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: %q and %q both map to variable %s", atcor.ErrDuplicateBand, other, b.Name, b.ID)
		}
		seen[b.ID] = b.Name
	}
	return nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
