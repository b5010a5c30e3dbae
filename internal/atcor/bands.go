package atcor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forest-guardian/atcor/internal/dos"
	"github.com/forest-guardian/atcor/internal/mtl"
)

var (
	ErrUnsupportedSensorFamily    = errors.New("unsupported sensor family")
	ErrMissingCalibrationConstant = errors.New("missing calibration constant")
	ErrUnknownBand                = errors.New("unknown band identifier")
	ErrDuplicateBand              = errors.New("duplicate band name")
	ErrRasterRead                 = errors.New("raster read failure")
)

// SensorFamily selects the correction route of a tile.
type SensorFamily int

const (
	Landsat SensorFamily = iota + 1
	Sentinel2
)

func (f SensorFamily) String() string {
	switch f {
	case Landsat:
		return "landsat"
	case Sentinel2:
		return "sentinel-2"
	default:
		return "unknown"
	}
}

// FamilyOf classifies a tile by the prefix of its identifier.
func FamilyOf(tileID string) (SensorFamily, error) {
	switch {
	case strings.HasPrefix(tileID, "LC"):
		return Landsat, nil
	case strings.HasPrefix(tileID, "S2"):
		return Sentinel2, nil
	}
	return 0, fmt.Errorf("%w: tile %q", ErrUnsupportedSensorFamily, tileID)
}

// BandKind tells what a corrected band holds.
type BandKind int

const (
	Reflectance BandKind = iota + 1
	Temperature
	Scaled
)

func (k BandKind) String() string {
	switch k {
	case Reflectance:
		return "reflectance"
	case Temperature:
		return "brightness_temperature"
	case Scaled:
		return "scaled_reflectance"
	default:
		return "unknown"
	}
}

type bandInfo struct {
	suffix  string
	thermal bool
}

// bandTable maps band identifiers of the input GeoTIFF to MTL key suffixes.
var bandTable = map[string]bandInfo{
	"SRB1":  {suffix: "BAND_1"},
	"SRB2":  {suffix: "BAND_2"},
	"SRB3":  {suffix: "BAND_3"},
	"SRB4":  {suffix: "BAND_4"},
	"SRB5":  {suffix: "BAND_5"},
	"SRB6":  {suffix: "BAND_6"},
	"SRB7":  {suffix: "BAND_7"},
	"B8":    {suffix: "BAND_8"},
	"SRB9":  {suffix: "BAND_9"},
	"SRB10": {suffix: "BAND_10", thermal: true},
	"SRB11": {suffix: "BAND_11", thermal: true},
}

// BandID is the first whitespace separated token of a band description.
func BandID(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func lookupBand(id string) (bandInfo, error) {
	info, ok := bandTable[id]
	if !ok {
		return bandInfo{}, fmt.Errorf("%w: %q", ErrUnknownBand, id)
	}
	return info, nil
}

// IsThermal reports whether the band takes the brightness temperature path.
func IsThermal(id string) bool {
	return bandTable[id].thermal
}

// Metadata groups of the calibration constants.
const (
	rootCollection1   = "L1_METADATA_FILE"
	rootCollection2   = "LANDSAT_METADATA_FILE"
	groupRescaling    = "RADIOMETRIC_RESCALING"
	groupRadiance     = "MIN_MAX_RADIANCE"
	groupReflectance  = "MIN_MAX_REFLECTANCE"
	groupImage        = "IMAGE_ATTRIBUTES"
	groupThermal      = "TIRS_THERMAL_CONSTANTS"
	groupThermalC2    = "LEVEL1_THERMAL_CONSTANTS"
	keyEarthSun       = "EARTH_SUN_DISTANCE"
	keySunElevation   = "SUN_ELEVATION"
	radianceMultFmt   = "RADIANCE_MULT_%s"
	radianceAddFmt    = "RADIANCE_ADD_%s"
	radianceMaxFmt    = "RADIANCE_MAXIMUM_%s"
	reflectanceMaxFmt = "REFLECTANCE_MAXIMUM_%s"
	k1Fmt             = "K1_CONSTANT_%s"
	k2Fmt             = "K2_CONSTANT_%s"
)

// CalibrationRoot returns the group holding the calibration groups of a
// parsed MTL file.
func CalibrationRoot(doc mtl.Group) (mtl.Group, error) {
	for _, root := range []string{rootCollection1, rootCollection2} {
		if g, err := mtl.GetGroup(doc, root); err == nil {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: neither %s nor %s group found", mtl.ErrMissingConfiguration, rootCollection1, rootCollection2)
}

type constantReader struct {
	md   mtl.Group
	band string
	err  error
}

func (r *constantReader) get(groups []string, key string) float64 {
	if r.err != nil {
		return 0
	}
	var lastErr error
	for _, g := range groups {
		v, err := mtl.FloatAt(r.md, g, key)
		if err == nil {
			return v
		}
		lastErr = err
	}
	r.err = fmt.Errorf("%w: band %s: %s.%s: %v", ErrMissingCalibrationConstant, r.band, strings.Join(groups, "|"), key, lastErr)
	return 0
}

// ReflectiveParamsFor resolves the DOS1 constants of band id from md.
func ReflectiveParamsFor(md mtl.Group, id string) (dos.ReflectiveParams, error) {
	info, err := lookupBand(id)
	if err != nil {
		return dos.ReflectiveParams{}, err
	}
	r := &constantReader{md: md, band: id}
	p := dos.ReflectiveParams{
		Ml:               r.get([]string{groupRescaling}, fmt.Sprintf(radianceMultFmt, info.suffix)),
		Al:               r.get([]string{groupRescaling}, fmt.Sprintf(radianceAddFmt, info.suffix)),
		RadianceMax:      r.get([]string{groupRadiance}, fmt.Sprintf(radianceMaxFmt, info.suffix)),
		ReflectanceMax:   r.get([]string{groupReflectance}, fmt.Sprintf(reflectanceMaxFmt, info.suffix)),
		EarthSunDistance: r.get([]string{groupImage}, keyEarthSun),
		SunElevation:     r.get([]string{groupImage}, keySunElevation),
	}
	return p, r.err
}

// ThermalParamsFor resolves the brightness temperature constants of band id.
func ThermalParamsFor(md mtl.Group, id string) (dos.ThermalParams, error) {
	info, err := lookupBand(id)
	if err != nil {
		return dos.ThermalParams{}, err
	}
	thermal := []string{groupThermal, groupThermalC2}
	r := &constantReader{md: md, band: id}
	p := dos.ThermalParams{
		Ml: r.get([]string{groupRescaling}, fmt.Sprintf(radianceMultFmt, info.suffix)),
		Al: r.get([]string{groupRescaling}, fmt.Sprintf(radianceAddFmt, info.suffix)),
		K1: r.get(thermal, fmt.Sprintf(k1Fmt, info.suffix)),
		K2: r.get(thermal, fmt.Sprintf(k2Fmt, info.suffix)),
	}
	return p, r.err
}
