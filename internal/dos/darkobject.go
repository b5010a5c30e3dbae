package dos

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// DarkObjectPolicy picks the DN whose radiance is taken as pure path
// radiance.
type DarkObjectPolicy interface {
	Estimate(arr Array) (float64, error)
	Name() string
}

// MinimumDN uses the darkest pixel of the band.
type MinimumDN struct{}

func (MinimumDN) Name() string { return "min" }

func (MinimumDN) Estimate(arr Array) (float64, error) {
	min := math.Inf(1)
	for _, v := range arr.Data {
		if v < min {
			min = v
		}
	}
	if math.IsInf(min, 1) {
		return 0, fmt.Errorf("%w: no finite pixel", ErrEmptyBand)
	}
	return min, nil
}

// Percentile uses the nearest-rank P-th percentile of the band, which is
// far less sensitive to isolated dead pixels than the minimum. IgnoreZero
// drops fill pixels before ranking.
type Percentile struct {
	P          float64
	IgnoreZero bool
}

func (p Percentile) Name() string {
	return "p" + strconv.FormatFloat(p.P, 'g', -1, 64)
}

func (p Percentile) Estimate(arr Array) (float64, error) {
	if p.P <= 0 || p.P > 100 {
		return 0, fmt.Errorf("percentile %v out of range (0, 100]", p.P)
	}
	values := make([]float64, 0, len(arr.Data))
	for _, v := range arr.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) || (p.IgnoreZero && v == 0) {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: no usable pixel", ErrEmptyBand)
	}
	slices.Sort(values)
	rank := int(math.Ceil(p.P / 100 * float64(len(values))))
	if rank < 1 {
		rank = 1
	}
	return values[rank-1], nil
}

// ParsePolicy reads "min" or "p<N>" (for example "p1" or "p0.5").
func ParsePolicy(s string) (DarkObjectPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "min":
		return MinimumDN{}, nil
	case strings.HasPrefix(s, "p"):
		v, err := strconv.ParseFloat(s[1:], 64)
		if err != nil || v <= 0 || v > 100 {
			return nil, fmt.Errorf("invalid dark object percentile %q", s)
		}
		return Percentile{P: v, IgnoreZero: true}, nil
	default:
		return nil, fmt.Errorf("unknown dark object policy %q", s)
	}
}
