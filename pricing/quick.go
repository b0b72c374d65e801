package pricing

import "math"

// Job types understood by the quick engine. Unknown job types fall back
// to the full replacement base rate.
const (
	JobTypeFullReplacement    = "full_replacement"
	JobTypePartialReplacement = "partial_replacement"
	JobTypeRepair             = "repair"
	JobTypeInspection         = "inspection"
)

// Pitch buckets for the quick engine's pitch multiplier lookup.
const (
	PitchBucketSteep     = "steep"
	PitchBucketVerySteep = "very_steep"

	verySteepPitchThreshold = 10.0
)

// DefaultRoofSizeSqFt substitutes for a missing or non-positive roof
// size so the quick engine always produces a price.
const DefaultRoofSizeSqFt = 2000.0

const (
	lowTierFactor  = 0.85
	highTierFactor = 1.25

	// Informational material/labor split of the likely price.
	materialShare = 0.55
	laborShare    = 0.45
)

// QuickInput is the intake funnel's view of a job. Missing fields are
// substituted with documented defaults; the engine always produces a
// price. Rejecting genuinely malformed input (negative square footage)
// is the caller's job.
type QuickInput struct {
	JobType         string
	RoofSizeSqFt    float64
	RoofMaterial    string
	RoofPitch       float64 // rise per 12
	Stories         int
	HasSkylights    bool
	HasChimneys     bool
	HasSolarPanels  bool
	Issues          []string
	TimelineUrgency string
}

// Adjustment records one applied rule in application order.
type Adjustment struct {
	Category RuleCategory `json:"category"`
	RuleKey  string       `json:"rule_key"`
	Label    string       `json:"label"`
	Impact   float64      `json:"impact"`
}

// QuickResult is the three-tier output of the quick engine. PriceLow,
// PriceLikely and PriceHigh are rounded to whole currency units; the
// tier spread is fixed at -15%/+25% of the likely price.
type QuickResult struct {
	BaseCost     float64      `json:"base_cost"`
	MaterialCost float64      `json:"material_cost"`
	LaborCost    float64      `json:"labor_cost"`
	PriceLow     float64      `json:"price_low"`
	PriceLikely  float64      `json:"price_likely"`
	PriceHigh    float64      `json:"price_high"`
	Adjustments  []Adjustment `json:"adjustments"`
}

// CalculateQuick turns intake metadata plus a rule set into a three-tier
// price range. Stages run in a fixed order: base rate, then material,
// pitch, story and urgency multipliers, then feature and issue flat
// fees, then the job type's minimum-charge floor, then tiering. Rounding
// happens once at the end, so two calls with content-equal rule sets are
// bit-identical regardless of slice order.
//
// Only the base rate falls back to the built-in table when the given
// rule set has no entry for the job type, since a price must always
// exist. Multiplier and fee stages consult the given set alone: a rule
// set without, say, pitch rules prices with no pitch surcharge.
func CalculateQuick(in QuickInput, rules []Rule) QuickResult {
	idx := indexRules(rules)
	defaults := indexRules(defaultRules)

	jobType := in.JobType
	if jobType == "" {
		jobType = JobTypeFullReplacement
	}
	sqft := in.RoofSizeSqFt
	if sqft <= 0 {
		sqft = DefaultRoofSizeSqFt
	}

	baseRule, ok := idx.lookup(CategoryJobType, jobType)
	if !ok {
		baseRule, ok = defaults.lookup(CategoryJobType, jobType)
	}
	if !ok {
		baseRule, _ = defaults.lookup(CategoryJobType, JobTypeFullReplacement)
	}

	price := baseRule.BaseRate * sqft
	result := QuickResult{BaseCost: price}
	result.Adjustments = append(result.Adjustments, Adjustment{
		Category: CategoryJobType,
		RuleKey:  baseRule.Key,
		Label:    baseRule.Label,
		Impact:   price,
	})

	// Multiplicative stage, fixed category order.
	matches := map[RuleCategory]string{
		CategoryMaterial: in.RoofMaterial,
		CategoryPitch:    pitchBucket(in.RoofPitch),
		CategoryStory:    storyBucket(in.Stories),
		CategoryUrgency:  in.TimelineUrgency,
	}
	for _, category := range multiplierOrder {
		match := matches[category]
		if match == "" {
			continue
		}
		rule, ok := idx.lookup(category, match)
		if !ok || rule.Kind != RuleKindMultiplier || rule.Multiplier == 0 {
			continue
		}
		before := price
		price *= rule.Multiplier
		result.Adjustments = append(result.Adjustments, Adjustment{
			Category: category,
			RuleKey:  rule.Key,
			Label:    rule.Label,
			Impact:   price - before,
		})
	}

	// Additive stage: one flat fee per present feature, then per issue.
	features := make([]string, 0, 3)
	if in.HasSkylights {
		features = append(features, "skylights")
	}
	if in.HasChimneys {
		features = append(features, "chimneys")
	}
	if in.HasSolarPanels {
		features = append(features, "solar_panels")
	}
	for _, feature := range features {
		if rule, ok := idx.lookup(CategoryFeature, feature); ok && rule.Kind == RuleKindFlatFee {
			price += rule.FlatFee
			result.Adjustments = append(result.Adjustments, Adjustment{
				Category: CategoryFeature,
				RuleKey:  rule.Key,
				Label:    rule.Label,
				Impact:   rule.FlatFee,
			})
		}
	}
	for _, issue := range in.Issues {
		if rule, ok := idx.lookup(CategoryIssue, issue); ok && rule.Kind == RuleKindFlatFee {
			price += rule.FlatFee
			result.Adjustments = append(result.Adjustments, Adjustment{
				Category: CategoryIssue,
				RuleKey:  rule.Key,
				Label:    rule.Label,
				Impact:   rule.FlatFee,
			})
		}
	}

	// Floor enforcement runs after the additive stage so a minimum cannot
	// be bypassed by omitting fees.
	if baseRule.MinCharge != nil && price < *baseRule.MinCharge {
		floor := *baseRule.MinCharge
		result.Adjustments = append(result.Adjustments, Adjustment{
			Category: CategoryJobType,
			RuleKey:  baseRule.Key + "_minimum",
			Label:    baseRule.Label + " minimum charge",
			Impact:   floor - price,
		})
		price = floor
	}

	result.PriceLikely = math.Round(price)
	result.PriceLow = math.Round(result.PriceLikely * lowTierFactor)
	result.PriceHigh = math.Round(result.PriceLikely * highTierFactor)
	result.MaterialCost = math.Round(result.PriceLikely * materialShare)
	result.LaborCost = math.Round(result.PriceLikely * laborShare)

	return result
}

func pitchBucket(pitch float64) string {
	switch {
	case pitch >= verySteepPitchThreshold:
		return PitchBucketVerySteep
	case pitch >= SteepPitchThreshold:
		return PitchBucketSteep
	default:
		// Walkable roofs carry no pitch surcharge.
		return ""
	}
}

func storyBucket(stories int) string {
	switch {
	case stories >= 3:
		return "3"
	case stories == 2:
		return "2"
	default:
		return ""
	}
}
