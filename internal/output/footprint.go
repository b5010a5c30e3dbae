package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/forest-guardian/atcor/internal/atcor"
)

func FootprintPath(dir, tileID string) string {
	return filepath.Join(dir, tileID+"_footprint.geojson")
}

// Footprint returns the tile outline as a closed polygon through the four
// raster corners, in the raster's own projection.
func Footprint(p *atcor.Product) *geojson.Feature {
	c := p.Georeference.Corners
	ring := orb.Ring{
		orb.Point{c[0].X, c[0].Y},
		orb.Point{c[1].X, c[1].Y},
		orb.Point{c[2].X, c[2].Y},
		orb.Point{c[3].X, c[3].Y},
		orb.Point{c[0].X, c[0].Y},
	}
	polygon := orb.Polygon{ring}

	f := geojson.NewFeature(polygon)
	f.Properties["tile"] = p.TileID
	f.Properties["family"] = p.Family.String()
	f.Properties["projection"] = p.Projection()
	f.Properties["bands"] = len(p.Bands)

	centroid, area := planar.CentroidArea(polygon)
	if area != 0 {
		f.Properties["centroid"] = []float64{centroid.X(), centroid.Y()}
		f.Properties["area"] = math.Abs(area)
	}
	return f
}

// WriteFootprint saves the footprint of p as a GeoJSON feature collection.
func WriteFootprint(p *atcor.Product, path string) error {
	fc := geojson.NewFeatureCollection()
	fc.Append(Footprint(p))

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode footprint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create footprint directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save footprint: %w", err)
	}
	return nil
}
