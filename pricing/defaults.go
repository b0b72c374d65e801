package pricing

import "github.com/peakcrest/roofline/utils"

// defaultRules is the built-in rule table used whenever the persisted
// rule set is empty. It is structurally identical to stored rules and is
// never mutated at runtime; DefaultRules returns a copy.
var defaultRules = []Rule{
	// Base rates per square foot by job type.
	{Key: "base_full_replacement", Category: CategoryJobType, Kind: RuleKindBaseRate, Label: "Full replacement", Match: JobTypeFullReplacement, BaseRate: 4.50, Unit: "sqft"},
	{Key: "base_partial_replacement", Category: CategoryJobType, Kind: RuleKindBaseRate, Label: "Partial replacement", Match: JobTypePartialReplacement, BaseRate: 5.25, Unit: "sqft"},
	{Key: "base_repair", Category: CategoryJobType, Kind: RuleKindBaseRate, Label: "Repair", Match: JobTypeRepair, BaseRate: 2.00, Unit: "sqft", MinCharge: utils.ToPtr(650.0)},
	{Key: "base_inspection", Category: CategoryJobType, Kind: RuleKindBaseRate, Label: "Inspection", Match: JobTypeInspection, BaseRate: 0.15, Unit: "sqft", MinCharge: utils.ToPtr(250.0)},

	// Material multipliers.
	{Key: "material_asphalt", Category: CategoryMaterial, Kind: RuleKindMultiplier, Label: "Asphalt shingles", Match: "asphalt_shingles", Multiplier: 1.0},
	{Key: "material_architectural", Category: CategoryMaterial, Kind: RuleKindMultiplier, Label: "Architectural shingles", Match: "architectural_shingles", Multiplier: 1.15},
	{Key: "material_metal", Category: CategoryMaterial, Kind: RuleKindMultiplier, Label: "Metal", Match: "metal", Multiplier: 2.2},
	{Key: "material_tile", Category: CategoryMaterial, Kind: RuleKindMultiplier, Label: "Tile", Match: "tile", Multiplier: 2.6},
	{Key: "material_slate", Category: CategoryMaterial, Kind: RuleKindMultiplier, Label: "Slate", Match: "slate", Multiplier: 3.5},
	{Key: "material_flat_membrane", Category: CategoryMaterial, Kind: RuleKindMultiplier, Label: "Flat / membrane", Match: "flat_membrane", Multiplier: 1.3},

	// Pitch surcharges by steepness bucket.
	{Key: "pitch_steep", Category: CategoryPitch, Kind: RuleKindMultiplier, Label: "Steep pitch (7/12+)", Match: PitchBucketSteep, Multiplier: 1.25},
	{Key: "pitch_very_steep", Category: CategoryPitch, Kind: RuleKindMultiplier, Label: "Very steep pitch (10/12+)", Match: PitchBucketVerySteep, Multiplier: 1.4},

	// Story-count multipliers.
	{Key: "story_two", Category: CategoryStory, Kind: RuleKindMultiplier, Label: "Two stories", Match: "2", Multiplier: 1.15},
	{Key: "story_three_plus", Category: CategoryStory, Kind: RuleKindMultiplier, Label: "Three or more stories", Match: "3", Multiplier: 1.3},

	// Timeline urgency multipliers.
	{Key: "urgency_this_week", Category: CategoryUrgency, Kind: RuleKindMultiplier, Label: "Needed this week", Match: "this_week", Multiplier: 1.2},
	{Key: "urgency_emergency", Category: CategoryUrgency, Kind: RuleKindMultiplier, Label: "Emergency", Match: "emergency", Multiplier: 1.5},

	// Feature flat fees.
	{Key: "feature_skylights", Category: CategoryFeature, Kind: RuleKindFlatFee, Label: "Skylight flashing", Match: "skylights", FlatFee: 350},
	{Key: "feature_chimneys", Category: CategoryFeature, Kind: RuleKindFlatFee, Label: "Chimney flashing", Match: "chimneys", FlatFee: 450},
	{Key: "feature_solar_panels", Category: CategoryFeature, Kind: RuleKindFlatFee, Label: "Solar panel detach/reset", Match: "solar_panels", FlatFee: 500},

	// Reported issue flat fees.
	{Key: "issue_active_leak", Category: CategoryIssue, Kind: RuleKindFlatFee, Label: "Active leak", Match: "active_leak", FlatFee: 300},
	{Key: "issue_missing_shingles", Category: CategoryIssue, Kind: RuleKindFlatFee, Label: "Missing shingles", Match: "missing_shingles", FlatFee: 250},
	{Key: "issue_storm_damage", Category: CategoryIssue, Kind: RuleKindFlatFee, Label: "Storm damage", Match: "storm_damage", FlatFee: 400},
	{Key: "issue_sagging", Category: CategoryIssue, Kind: RuleKindFlatFee, Label: "Sagging deck", Match: "sagging", FlatFee: 550},
	{Key: "issue_granule_loss", Category: CategoryIssue, Kind: RuleKindFlatFee, Label: "Granule loss", Match: "granule_loss", FlatFee: 150},
}

// DefaultRules returns the built-in fallback rule set. Callers receive a
// fresh slice so the table itself stays immutable.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}
