package dos

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var redBand = ReflectiveParams{
	Ml:               0.01,
	Al:               -0.05,
	RadianceMax:      700,
	ReflectanceMax:   0.5,
	EarthSunDistance: 1.0,
	SunElevation:     60,
}

var tirsBand10 = ThermalParams{
	Ml: 3.342e-4,
	Al: 0.1,
	K1: 774.8853,
	K2: 1321.0789,
}

func TestReflectanceRegression(t *testing.T) {
	arr := Array{Rows: 2, Cols: 2, Data: []float64{0, 200, 1000, 100000}}

	sr, err := Reflectance(arr, redBand, MinimumDN{})
	require.NoError(t, err)

	assert.InDelta(t, 0.01, sr.At(0, 0), 1e-9)
	assert.InDelta(t, 0.011649572197684645, sr.At(0, 1), 1e-6)
	assert.InDelta(t, 0.018247860988423226, sr.At(1, 0), 1e-6)
	assert.InDelta(t, 0.8347860988423227, sr.At(1, 1), 1e-6)
}

func TestReflectanceDerivedQuantities(t *testing.T) {
	assert.InDelta(t, 1400*math.Pi, redBand.Esun(), 1e-9)
	assert.Equal(t, 30.0, redBand.ZenithDeg())
	// Lmin = -0.05, L1 = 14 cos(30°)
	assert.InDelta(t, -0.05-14*math.Cos(math.Pi/6), PathRadiance(redBand, 0), 1e-9)
}

func TestReflectanceClampAndShape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		rows, cols := 1+rng.Intn(16), 1+rng.Intn(16)
		arr := NewArray(rows, cols)
		for j := range arr.Data {
			arr.Data[j] = rng.Float64() * 70000
		}
		p := redBand
		p.Ml = rng.Float64() * 0.05
		p.Al = -rng.Float64() * 80
		p.SunElevation = 5 + rng.Float64()*80

		sr, err := Reflectance(arr, p, nil)
		require.NoError(t, err)
		assert.Equal(t, rows, sr.Rows)
		assert.Equal(t, cols, sr.Cols)
		require.Len(t, sr.Data, rows*cols)
		for _, v := range sr.Data {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestReflectanceSaturatesAtOne(t *testing.T) {
	arr := Array{Rows: 1, Cols: 2, Data: []float64{0, 1e9}}
	sr, err := Reflectance(arr, redBand, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sr.Data[1])
}

func TestReflectanceDoesNotModifyInput(t *testing.T) {
	arr := Array{Rows: 1, Cols: 3, Data: []float64{10, 20, 30}}
	_, err := Reflectance(arr, redBand, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 30}, arr.Data)
}

func TestReflectanceInvalidParameters(t *testing.T) {
	arr := Array{Rows: 1, Cols: 1, Data: []float64{1}}

	tests := []struct {
		name string
		edit func(p *ReflectiveParams)
	}{
		{"zero reflectance maximum", func(p *ReflectiveParams) { p.ReflectanceMax = 0 }},
		{"zero distance", func(p *ReflectiveParams) { p.EarthSunDistance = 0 }},
		{"sun on the horizon", func(p *ReflectiveParams) { p.SunElevation = 0 }},
		{"nan multiplier", func(p *ReflectiveParams) { p.Ml = math.NaN() }},
		{"zero radiance maximum", func(p *ReflectiveParams) { p.RadianceMax = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := redBand
			tt.edit(&p)
			_, err := Reflectance(arr, p, nil)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

func TestReflectanceEmptyBand(t *testing.T) {
	_, err := Reflectance(Array{}, redBand, nil)
	assert.ErrorIs(t, err, ErrEmptyBand)
}

func TestReflectancePercentilePolicy(t *testing.T) {
	// one dead pixel at 0 drags the minimum down; the percentile ignores it
	arr := NewArray(10, 10)
	for i := range arr.Data {
		arr.Data[i] = 500 + float64(i)
	}
	arr.Data[0] = 0

	minSR, err := Reflectance(arr, redBand, MinimumDN{})
	require.NoError(t, err)
	pSR, err := Reflectance(arr, redBand, Percentile{P: 1, IgnoreZero: true})
	require.NoError(t, err)

	// the darkest real pixel maps to the 1% floor under the percentile policy
	assert.InDelta(t, 0.01, pSR.Data[1], 1e-9)
	assert.Greater(t, minSR.Data[1], pSR.Data[1])
}

func TestBrightnessTemperature(t *testing.T) {
	arr := Array{Rows: 1, Cols: 2, Data: []float64{20000, 30000}}

	tb, err := BrightnessTemperature(arr, tirsBand10)
	require.NoError(t, err)
	assert.InDelta(t, 278.3055634071797, tb.Data[0], 1e-6)
	assert.InDelta(t, 303.6549920661739, tb.Data[1], 1e-6)
	for _, v := range tb.Data {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestBrightnessTemperatureNotClamped(t *testing.T) {
	arr := Array{Rows: 1, Cols: 1, Data: []float64{65535}}
	tb, err := BrightnessTemperature(arr, tirsBand10)
	require.NoError(t, err)
	assert.Greater(t, tb.Data[0], 1.0)
}

func TestBrightnessTemperatureNonPhysical(t *testing.T) {
	tests := []struct {
		name string
		p    ThermalParams
		dn   float64
	}{
		{"zero radiance", ThermalParams{Ml: 1, Al: 0, K1: 774.8853, K2: 1321.0789}, 0},
		{"negative radiance", ThermalParams{Ml: 1, Al: -5, K1: 774.8853, K2: 1321.0789}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := Array{Rows: 1, Cols: 3, Data: []float64{100, tt.dn, 100}}
			_, err := BrightnessTemperature(arr, tt.p)
			assert.ErrorIs(t, err, ErrNonPhysicalRadiance)
			assert.Contains(t, err.Error(), "(0, 1)")
		})
	}
}

func TestBrightnessTemperatureInvalidParameters(t *testing.T) {
	arr := Array{Rows: 1, Cols: 1, Data: []float64{100}}
	_, err := BrightnessTemperature(arr, ThermalParams{Ml: 1, Al: 0.1, K1: 0, K2: 1})
	assert.ErrorIs(t, err, ErrInvalidParameters)
	_, err = BrightnessTemperature(arr, ThermalParams{Ml: 1, Al: 0.1, K1: 1, K2: 0})
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestRescale(t *testing.T) {
	arr := Array{Rows: 1, Cols: 3, Data: []float64{5000, 0, 12000}}
	out := Rescale(arr, 10000)
	assert.Equal(t, 0.5, out.Data[0])
	assert.Equal(t, 0.0, out.Data[1])
	assert.Equal(t, 1.2, out.Data[2])
}
