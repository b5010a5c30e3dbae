// Package dos implements the DOS1 (dark object subtraction) atmospheric
// correction for reflective bands and the radiance to brightness
// temperature conversion for thermal bands.
package dos

import (
	"fmt"
	"math"
)

// Radiance converts a DN to at-sensor radiance.
func Radiance(ml, al, dn float64) float64 {
	return ml*dn + al
}

// PathRadiance returns Lp = Lmin - L1 for a band whose dark object DN is
// darkDN. L1 is the radiance of a 1% reflectance surface.
func PathRadiance(p ReflectiveParams, darkDN float64) float64 {
	lmin := Radiance(p.Ml, p.Al, darkDN)
	l1 := 0.01 * p.irradiance() / (math.Pi * p.EarthSunDistance * p.EarthSunDistance)
	return lmin - l1
}

// Reflectance applies DOS1 to a reflective band. The result has the shape of
// arr and every value lies in [0, 1]. A nil policy means MinimumDN.
func Reflectance(arr Array, p ReflectiveParams, policy DarkObjectPolicy) (Array, error) {
	if arr.Len() == 0 {
		return Array{}, ErrEmptyBand
	}
	if err := p.Validate(); err != nil {
		return Array{}, err
	}
	if policy == nil {
		policy = MinimumDN{}
	}
	darkDN, err := policy.Estimate(arr)
	if err != nil {
		return Array{}, fmt.Errorf("dark object (%s): %w", policy.Name(), err)
	}

	lp := PathRadiance(p, darkDN)
	scale := math.Pi * p.EarthSunDistance * p.EarthSunDistance / p.irradiance()

	return arr.Map(func(dn float64) float64 {
		lsr := Radiance(p.Ml, p.Al, dn) - lp
		return clamp(scale * lsr)
	}), nil
}

func clamp(sr float64) float64 {
	switch {
	case sr >= 1:
		return 1
	case sr < 0:
		return 0
	case math.IsNaN(sr):
		return 0
	}
	return sr
}

// BrightnessTemperature converts a thermal band to Kelvin. Pixels whose
// radiance is not strictly positive make the whole band fail.
func BrightnessTemperature(arr Array, p ThermalParams) (Array, error) {
	if arr.Len() == 0 {
		return Array{}, ErrEmptyBand
	}
	if err := p.Validate(); err != nil {
		return Array{}, err
	}

	out := NewArray(arr.Rows, arr.Cols)
	for i, dn := range arr.Data {
		l := Radiance(p.Ml, p.Al, dn)
		if !(l > 0) || math.IsInf(l, 0) {
			return Array{}, fmt.Errorf("%w: L=%v at pixel (%d, %d)", ErrNonPhysicalRadiance, l, i/arr.Cols, i%arr.Cols)
		}
		out.Data[i] = p.K2 / math.Log(p.K1/l+1)
	}
	return out, nil
}

// Rescale divides every DN by factor, without clamping. Sentinel-2 L2A
// products are stored as reflectance x 10000.
func Rescale(arr Array, factor float64) Array {
	return arr.Map(func(dn float64) float64 {
		return dn / factor
	})
}
