package dos

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNonPhysicalRadiance = errors.New("non-physical radiance")
	ErrInvalidParameters   = errors.New("invalid calibration parameters")
	ErrEmptyBand           = errors.New("empty band")
)

// Fixed terms of the DOS1 model: clear sky, no diffuse downwelling.
const (
	Tz = 1.0 // view path transmittance
	Ed = 0.0 // diffuse downwelling irradiance
	Tv = 1.0 // sun path transmittance
)

// ReflectiveParams are the calibration constants of one reflective band.
type ReflectiveParams struct {
	Ml               float64 // RADIANCE_MULT_BAND_n
	Al               float64 // RADIANCE_ADD_BAND_n
	RadianceMax      float64
	ReflectanceMax   float64
	EarthSunDistance float64 // astronomical units
	SunElevation     float64 // degrees
}

// Esun is the exo-atmospheric solar irradiance derived from the band's
// radiance and reflectance maxima.
func (p ReflectiveParams) Esun() float64 {
	return math.Pi * p.EarthSunDistance * p.EarthSunDistance * p.RadianceMax / p.ReflectanceMax
}

func (p ReflectiveParams) ZenithDeg() float64 {
	return 90 - p.SunElevation
}

func (p ReflectiveParams) cosZenith() float64 {
	return math.Cos(p.ZenithDeg() * math.Pi / 180)
}

// irradiance is the denominator term (Esun·cos z·Tz + Ed)·Tv.
func (p ReflectiveParams) irradiance() float64 {
	return (p.Esun()*p.cosZenith()*Tz + Ed) * Tv
}

func (p ReflectiveParams) Validate() error {
	for name, v := range map[string]float64{
		"Ml": p.Ml, "Al": p.Al, "radiance maximum": p.RadianceMax,
		"reflectance maximum": p.ReflectanceMax, "earth-sun distance": p.EarthSunDistance,
		"sun elevation": p.SunElevation,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidParameters, name, v)
		}
	}
	if p.ReflectanceMax == 0 {
		return fmt.Errorf("%w: reflectance maximum is zero", ErrInvalidParameters)
	}
	if p.EarthSunDistance <= 0 {
		return fmt.Errorf("%w: earth-sun distance %v", ErrInvalidParameters, p.EarthSunDistance)
	}
	if irr := p.irradiance(); irr == 0 || math.IsNaN(irr) || math.IsInf(irr, 0) || math.Abs(p.cosZenith()) < 1e-12 {
		return fmt.Errorf("%w: zero solar irradiance at zenith %v", ErrInvalidParameters, p.ZenithDeg())
	}
	return nil
}

// ThermalParams are the calibration constants of one TIRS band.
type ThermalParams struct {
	Ml float64
	Al float64
	K1 float64
	K2 float64
}

func (p ThermalParams) Validate() error {
	for name, v := range map[string]float64{"Ml": p.Ml, "Al": p.Al, "K1": p.K1, "K2": p.K2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidParameters, name, v)
		}
	}
	if p.K1 <= 0 {
		return fmt.Errorf("%w: K1 %v", ErrInvalidParameters, p.K1)
	}
	if p.K2 == 0 {
		return fmt.Errorf("%w: K2 is zero", ErrInvalidParameters)
	}
	return nil
}
