package pricing

import (
	"fmt"
	"math"
)

const (
	// MaxPitch is the steepest rise-per-12 accepted as input. Anything
	// above it is rejected, not clamped.
	MaxPitch = 24.0

	// SteepPitchThreshold marks the rise-per-12 at which a roof carries a
	// steep surcharge.
	SteepPitchThreshold = 7.0

	defaultLengthFt      = 50.0
	defaultWidthFt       = 40.0
	eaveFeetPerDownspout = 40.0
	minDownspouts        = 2
)

// Dimensions are the raw intake measurements for a simple rectangular
// roof. Zero values are defaulted; negative values are rejected.
type Dimensions struct {
	LengthFt float64
	WidthFt  float64
	Pitch    float64 // rise per 12
	Stories  int

	SkylightCount int
	ChimneyCount  int
	PipeCount     int
	VentCount     int

	// GutterLengthFt, when zero, is derived from the eave length.
	GutterLengthFt float64
	// DownspoutCount, when zero, is derived from the eave length.
	DownspoutCount int
}

// SlopeMeasurement is one facet of a persisted roof sketch.
type SlopeMeasurement struct {
	Name     string
	Squares  float64
	EaveFt   float64
	RidgeFt  float64
	RakeFt   float64
	ValleyFt float64
	HipFt    float64
	Pitch    float64
}

// PitchMultiplier converts a plan-view area to true surface area for the
// given rise-per-12.
func PitchMultiplier(pitch float64) float64 {
	return math.Sqrt(1 + (pitch/12)*(pitch/12))
}

// ResolveFromDimensions derives RoofVariables from simple rectangular
// measurements. The rectangular approximation assumes a gable roof: the
// ridge runs the length of the building, eaves along both long sides and
// rakes up the four gable edges. Valleys and hips only exist in sketch
// data.
func ResolveFromDimensions(d Dimensions) (RoofVariables, error) {
	if d.LengthFt < 0 || d.WidthFt < 0 || d.GutterLengthFt < 0 {
		return RoofVariables{}, fmt.Errorf("resolve dimensions: %w", ErrNegativeMeasurement)
	}
	if d.SkylightCount < 0 || d.ChimneyCount < 0 || d.PipeCount < 0 || d.VentCount < 0 || d.DownspoutCount < 0 {
		return RoofVariables{}, fmt.Errorf("resolve dimensions: %w", ErrNegativeMeasurement)
	}
	if d.Pitch < 0 || d.Pitch > MaxPitch {
		return RoofVariables{}, fmt.Errorf("resolve dimensions: pitch %.1f/12: %w", d.Pitch, ErrPitchOutOfRange)
	}

	length := d.LengthFt
	width := d.WidthFt
	if length == 0 {
		length = defaultLengthFt
	}
	if width == 0 {
		width = defaultWidthFt
	}
	stories := d.Stories
	if stories <= 0 {
		stories = 1
	}

	factor := PitchMultiplier(d.Pitch)
	surface := length * width * factor

	v := RoofVariables{
		SquareFeet: surface,
		Squares:    surface / SquareFeetPerSquare,
		Perimeter:  2 * (length + width),
		Eave:       2 * length,
		Ridge:      length,
		// Four rake edges, each the slope length of half the width.
		Rake: 2 * width * factor,

		SkylightCount: d.SkylightCount,
		ChimneyCount:  d.ChimneyCount,
		PipeCount:     d.PipeCount,
		VentCount:     d.VentCount,

		Pitch:           d.Pitch,
		PitchMultiplier: factor,
		SteepCharge:     d.Pitch >= SteepPitchThreshold,
		Stories:         stories,
	}

	v.GutterFeet = d.GutterLengthFt
	if v.GutterFeet == 0 {
		v.GutterFeet = v.Eave
	}
	v.DownspoutCount = d.DownspoutCount
	if v.DownspoutCount == 0 {
		v.DownspoutCount = defaultDownspouts(v.Eave)
	}

	return v, nil
}

// ResolveFromSlopes derives RoofVariables by summing per-slope sketch
// records instead of approximating from outline dimensions. The feature
// counts and story count still come from the intake dimensions.
func ResolveFromSlopes(slopes []SlopeMeasurement, d Dimensions) (RoofVariables, error) {
	if len(slopes) == 0 {
		return ResolveFromDimensions(d)
	}

	v := RoofVariables{
		SkylightCount: d.SkylightCount,
		ChimneyCount:  d.ChimneyCount,
		PipeCount:     d.PipeCount,
		VentCount:     d.VentCount,
		Stories:       d.Stories,
	}
	if v.Stories <= 0 {
		v.Stories = 1
	}

	maxPitch := 0.0
	for _, s := range slopes {
		if s.Squares < 0 || s.EaveFt < 0 || s.RidgeFt < 0 || s.RakeFt < 0 || s.ValleyFt < 0 || s.HipFt < 0 {
			return RoofVariables{}, fmt.Errorf("resolve slope %q: %w", s.Name, ErrNegativeMeasurement)
		}
		if s.Pitch < 0 || s.Pitch > MaxPitch {
			return RoofVariables{}, fmt.Errorf("resolve slope %q: pitch %.1f/12: %w", s.Name, s.Pitch, ErrPitchOutOfRange)
		}

		v.Squares += s.Squares
		v.Eave += s.EaveFt
		v.Ridge += s.RidgeFt
		v.Rake += s.RakeFt
		v.Valley += s.ValleyFt
		v.Hip += s.HipFt
		if s.Pitch > maxPitch {
			maxPitch = s.Pitch
		}

		v.Slopes = append(v.Slopes, SlopeVariables{
			Name:    s.Name,
			Squares: s.Squares,
			Eave:    s.EaveFt,
			Ridge:   s.RidgeFt,
			Rake:    s.RakeFt,
			Pitch:   s.Pitch,
		})
	}

	v.SquareFeet = v.Squares * SquareFeetPerSquare
	v.Perimeter = v.Eave + v.Rake
	v.Pitch = maxPitch
	v.PitchMultiplier = PitchMultiplier(maxPitch)
	v.SteepCharge = maxPitch >= SteepPitchThreshold

	v.GutterFeet = d.GutterLengthFt
	if v.GutterFeet == 0 {
		v.GutterFeet = v.Eave
	}
	v.DownspoutCount = d.DownspoutCount
	if v.DownspoutCount == 0 {
		v.DownspoutCount = defaultDownspouts(v.Eave)
	}

	return v, nil
}

func defaultDownspouts(eaveFt float64) int {
	n := int(math.Ceil(eaveFt / eaveFeetPerDownspout))
	if n < minDownspouts {
		n = minDownspouts
	}
	return n
}
