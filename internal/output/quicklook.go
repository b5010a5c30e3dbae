// Package output writes the sidecar products of a corrected tile: a
// quicklook image, the footprint and a per band report.
package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/forest-guardian/atcor/internal/atcor"
)

// QuicklookPath is the PNG written next to a product.
func QuicklookPath(dir, tileID string) string {
	return filepath.Join(dir, tileID+"_quicklook.png")
}

// Quicklook renders one band as a gray ramp PNG. Reflectance bands map
// [0,1] to black..white, other kinds are stretched between their finite
// min and max. Non-finite pixels are black.
func Quicklook(b atcor.CorrectedBand, path string) error {
	if b.Data.Len() == 0 {
		return fmt.Errorf("band %s is empty", b.Name)
	}
	lo, hi := 0.0, 1.0
	if b.Kind != atcor.Reflectance {
		s := statsOf(b.Data.Data)
		lo, hi = s.Min, s.Max
	}
	span := hi - lo

	width, height := b.Data.Cols, b.Data.Rows
	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			value := b.Data.At(y, x)
			if math.IsNaN(value) || math.IsInf(value, 0) {
				continue
			}
			gray := 0.0
			if span > 0 {
				gray = (value - lo) / span
			}
			gray = math.Max(0, math.Min(1, gray))
			dc.SetRGB(gray, gray, gray)
			dc.SetPixel(x, y)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create quicklook directory: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save quicklook: %w", err)
	}
	return nil
}

// QuicklookBand picks the band used for the quicklook: the named band if
// present, else the first reflectance band, else the first band.
func QuicklookBand(p *atcor.Product, name string) (atcor.CorrectedBand, bool) {
	if len(p.Bands) == 0 {
		return atcor.CorrectedBand{}, false
	}
	if name != "" {
		if b, ok := p.Band(name); ok {
			return b, true
		}
		for _, b := range p.Bands {
			if b.ID == name {
				return b, true
			}
		}
	}
	for _, b := range p.Bands {
		if b.Kind == atcor.Reflectance {
			return b, true
		}
	}
	return p.Bands[0], true
}
