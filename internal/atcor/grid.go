package atcor

import "fmt"

// Point is a georeferenced coordinate in the raster's projection.
type Point struct {
	X, Y float64
}

// Georeference describes where a raster lies. Corners are filled by
// NewGeoreference and reused for the output grid.
type Georeference struct {
	GeoTransform [6]float64
	Projection   string
	Cols, Rows   int
	Corners      [4]Point
}

func NewGeoreference(gt [6]float64, projection string, cols, rows int) (Georeference, error) {
	if cols < 0 || rows < 0 {
		return Georeference{}, fmt.Errorf("invalid raster size %dx%d", cols, rows)
	}
	return Georeference{
		GeoTransform: gt,
		Projection:   projection,
		Cols:         cols,
		Rows:         rows,
		Corners:      Extent(gt, cols, rows),
	}, nil
}

// Apply maps pixel/line coordinates through the affine geotransform.
func Apply(gt [6]float64, px, py float64) Point {
	return Point{
		X: gt[0] + px*gt[1] + py*gt[2],
		Y: gt[3] + px*gt[4] + py*gt[5],
	}
}

// Extent returns the corners of a cols x rows raster in the order
// (0,0), (0,rows), (cols,rows), (cols,0): corner 0 and corner 2 are
// diagonally opposite.
func Extent(gt [6]float64, cols, rows int) [4]Point {
	c, r := float64(cols), float64(rows)
	return [4]Point{
		Apply(gt, 0, 0),
		Apply(gt, 0, r),
		Apply(gt, c, r),
		Apply(gt, c, 0),
	}
}

// Grid holds the 1-D coordinate axes of the output.
type Grid struct {
	Lats []float64
	Lons []float64
}

// BuildGrid interpolates the axes between opposite corners. It assumes a
// north-up raster: with a rotated geotransform the axes are shaped right
// but only approximate.
func (g Georeference) BuildGrid() Grid {
	lo, hi := g.Corners[0], g.Corners[2]
	return Grid{
		Lats: Linspace(lo.Y, hi.Y, g.Rows),
		Lons: Linspace(lo.X, hi.X, g.Cols),
	}
}

// Linspace returns n evenly spaced values from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
