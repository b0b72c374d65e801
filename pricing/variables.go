package pricing

// SquareFeetPerSquare is the roofing definition of one square.
const SquareFeetPerSquare = 100.0

// SlopeVariables holds the derived values for a single named roof slope.
type SlopeVariables struct {
	Name    string  `json:"name"`
	Squares float64 `json:"squares"`
	Eave    float64 `json:"eave"`
	Ridge   float64 `json:"ridge"`
	Rake    float64 `json:"rake"`
	Pitch   float64 `json:"pitch"`
}

// RoofVariables is the canonical derived-geometry set every estimate
// calculation reads from. All linear and area values are non-negative;
// when Slopes is populated the per-slope values sum to the whole-roof
// totals. Instances are value types and are never mutated after being
// attached to an estimate.
type RoofVariables struct {
	Squares    float64 `json:"squares"`
	SquareFeet float64 `json:"square_feet"`
	Perimeter  float64 `json:"perimeter"`
	Eave       float64 `json:"eave"`
	Ridge      float64 `json:"ridge"`
	Valley     float64 `json:"valley"`
	Hip        float64 `json:"hip"`
	Rake       float64 `json:"rake"`

	SkylightCount int `json:"skylight_count"`
	ChimneyCount  int `json:"chimney_count"`
	PipeCount     int `json:"pipe_count"`
	VentCount     int `json:"vent_count"`

	GutterFeet     float64 `json:"gutter_feet"`
	DownspoutCount int     `json:"downspout_count"`

	Pitch           float64 `json:"pitch"`
	PitchMultiplier float64 `json:"pitch_multiplier"`
	SteepCharge     bool    `json:"steep_charge"`
	Stories         int     `json:"stories"`

	Slopes []SlopeVariables `json:"slopes,omitempty"`
}

// ToMap exposes the variables under the symbolic names quantity formulas
// reference (e.g. "SQ * 1.1").
func (v RoofVariables) ToMap() map[string]float64 {
	return map[string]float64{
		"SQ":              v.Squares,
		"SF":              v.SquareFeet,
		"P":               v.Perimeter,
		"EAVE":            v.Eave,
		"R":               v.Ridge,
		"VAL":             v.Valley,
		"HIP":             v.Hip,
		"RAKE":            v.Rake,
		"SKYLIGHT_COUNT":  float64(v.SkylightCount),
		"CHIMNEY_COUNT":   float64(v.ChimneyCount),
		"PIPE_COUNT":      float64(v.PipeCount),
		"VENT_COUNT":      float64(v.VentCount),
		"GUTTER_LF":       v.GutterFeet,
		"DOWNSPOUT_COUNT": float64(v.DownspoutCount),
		"PITCH":           v.Pitch,
		"STORIES":         float64(v.Stories),
	}
}
