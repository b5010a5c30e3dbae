package atcor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/atcor/internal/mtl"
)

const testMTL = `GROUP = L1_METADATA_FILE
  GROUP = IMAGE_ATTRIBUTES
    SUN_ELEVATION = 60
    EARTH_SUN_DISTANCE = 1.0
  END_GROUP = IMAGE_ATTRIBUTES
  GROUP = MIN_MAX_RADIANCE
    RADIANCE_MAXIMUM_BAND_4 = 700
  END_GROUP = MIN_MAX_RADIANCE
  GROUP = MIN_MAX_REFLECTANCE
    REFLECTANCE_MAXIMUM_BAND_4 = 0.5
  END_GROUP = MIN_MAX_REFLECTANCE
  GROUP = RADIOMETRIC_RESCALING
    RADIANCE_MULT_BAND_4 = 1.0E-02
    RADIANCE_ADD_BAND_4 = -0.05
    RADIANCE_MULT_BAND_10 = 3.3420E-04
    RADIANCE_ADD_BAND_10 = 0.10000
  END_GROUP = RADIOMETRIC_RESCALING
  GROUP = TIRS_THERMAL_CONSTANTS
    K1_CONSTANT_BAND_10 = 774.8853
    K2_CONSTANT_BAND_10 = 1321.0789
  END_GROUP = TIRS_THERMAL_CONSTANTS
END_GROUP = L1_METADATA_FILE
END
`

func parseTestMTL(t *testing.T, text string) mtl.Group {
	t.Helper()
	doc, err := mtl.Parse(strings.NewReader(text))
	require.NoError(t, err)
	return doc
}

func calibrationOf(t *testing.T, text string) mtl.Group {
	t.Helper()
	root, err := CalibrationRoot(parseTestMTL(t, text))
	require.NoError(t, err)
	return root
}

func TestFamilyOf(t *testing.T) {
	f, err := FamilyOf("LC08_L1TP_042034_20190101")
	require.NoError(t, err)
	assert.Equal(t, Landsat, f)

	f, err = FamilyOf("S2A_MSIL2A_20190101")
	require.NoError(t, err)
	assert.Equal(t, Sentinel2, f)

	for _, id := range []string{"LE07_L1TP", "MOD09GA", "", "lc08_lower"} {
		_, err := FamilyOf(id)
		assert.ErrorIs(t, err, ErrUnsupportedSensorFamily, id)
	}
}

func TestBandID(t *testing.T) {
	assert.Equal(t, "SRB4", BandID("SRB4 Red (0.64-0.67um)"))
	assert.Equal(t, "B8", BandID("B8"))
	assert.Equal(t, "", BandID("   "))
}

func TestIsThermal(t *testing.T) {
	assert.True(t, IsThermal("SRB10"))
	assert.True(t, IsThermal("SRB11"))
	assert.False(t, IsThermal("SRB4"))
	assert.False(t, IsThermal("B8"))
	assert.False(t, IsThermal("NOPE"))
}

func TestReflectiveParamsFor(t *testing.T) {
	md := calibrationOf(t, testMTL)

	p, err := ReflectiveParamsFor(md, "SRB4")
	require.NoError(t, err)
	assert.Equal(t, 0.01, p.Ml)
	assert.Equal(t, -0.05, p.Al)
	assert.Equal(t, 700.0, p.RadianceMax)
	assert.Equal(t, 0.5, p.ReflectanceMax)
	assert.Equal(t, 1.0, p.EarthSunDistance)
	assert.Equal(t, 60.0, p.SunElevation)
}

func TestReflectiveParamsForMissingConstant(t *testing.T) {
	md := calibrationOf(t, testMTL)

	_, err := ReflectiveParamsFor(md, "SRB1")
	assert.ErrorIs(t, err, ErrMissingCalibrationConstant)
	assert.Contains(t, err.Error(), "RADIANCE_MULT_BAND_1")

	_, err = ReflectiveParamsFor(md, "SRB42")
	assert.ErrorIs(t, err, ErrUnknownBand)
}

func TestThermalParamsFor(t *testing.T) {
	md := calibrationOf(t, testMTL)

	p, err := ThermalParamsFor(md, "SRB10")
	require.NoError(t, err)
	assert.Equal(t, 3.342e-4, p.Ml)
	assert.Equal(t, 0.1, p.Al)
	assert.Equal(t, 774.8853, p.K1)
	assert.Equal(t, 1321.0789, p.K2)

	_, err = ThermalParamsFor(md, "SRB11")
	assert.ErrorIs(t, err, ErrMissingCalibrationConstant)
}

func TestThermalParamsForCollection2(t *testing.T) {
	text := `GROUP = LANDSAT_METADATA_FILE
  GROUP = RADIOMETRIC_RESCALING
    RADIANCE_MULT_BAND_10 = 3.3420E-04
    RADIANCE_ADD_BAND_10 = 0.10000
  END_GROUP = RADIOMETRIC_RESCALING
  GROUP = LEVEL1_THERMAL_CONSTANTS
    K1_CONSTANT_BAND_10 = 774.8853
    K2_CONSTANT_BAND_10 = 1321.0789
  END_GROUP = LEVEL1_THERMAL_CONSTANTS
END_GROUP = LANDSAT_METADATA_FILE
END
`
	md := calibrationOf(t, text)
	p, err := ThermalParamsFor(md, "SRB10")
	require.NoError(t, err)
	assert.Equal(t, 774.8853, p.K1)
}

func TestCalibrationRootMissing(t *testing.T) {
	_, err := CalibrationRoot(parseTestMTL(t, "GROUP = OTHER\nEND_GROUP = OTHER\n"))
	assert.ErrorIs(t, err, mtl.ErrMissingConfiguration)
}

func TestTilePaths(t *testing.T) {
	p := TilePaths{TileID: "LC08_X", InputDir: "/in", OutputDir: "/out"}
	assert.Equal(t, "/in/LC08_X.tif", p.Raster())
	assert.Equal(t, "/in/LC08_X.zip", p.Archive())
	assert.Equal(t, "/out/LC08_X.nc", p.Output(".nc"))
}
