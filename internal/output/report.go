package output

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/forest-guardian/atcor/internal/atcor"
)

type BandStat struct {
	Band string  `csv:"band"`
	Name string  `csv:"name"`
	Kind string  `csv:"kind"`
	Rows int     `csv:"rows"`
	Cols int     `csv:"cols"`
	Min  float64 `csv:"min"`
	Max  float64 `csv:"max"`
	Mean float64 `csv:"mean"`
}

type stats struct {
	Min, Max, Mean float64
}

// statsOf ignores non-finite values. All fields are NaN when nothing is
// finite.
func statsOf(values []float64) stats {
	s := stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
		n++
	}
	if n == 0 {
		return stats{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
	}
	s.Mean = sum / float64(n)
	return s
}

func BandStats(p *atcor.Product) []BandStat {
	out := make([]BandStat, 0, len(p.Bands))
	for _, b := range p.Bands {
		s := statsOf(b.Data.Data)
		out = append(out, BandStat{
			Band: b.ID,
			Name: b.Name,
			Kind: b.Kind.String(),
			Rows: b.Data.Rows,
			Cols: b.Data.Cols,
			Min:  s.Min,
			Max:  s.Max,
			Mean: s.Mean,
		})
	}
	return out
}

func ReportPath(dir, tileID string) string {
	return filepath.Join(dir, tileID+"_report.csv")
}

// WriteReport saves the band statistics of p as CSV.
func WriteReport(p *atcor.Product, path string) error {
	rows := BandStats(p)
	if len(rows) == 0 {
		return fmt.Errorf("no bands to report for %s", p.TileID)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to save report to file: %w", err)
	}
	return nil
}
