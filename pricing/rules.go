package pricing

// RuleKind is the effect a pricing rule has on the running price.
type RuleKind string

const (
	RuleKindBaseRate   RuleKind = "base_rate"
	RuleKindMultiplier RuleKind = "multiplier"
	RuleKindFlatFee    RuleKind = "flat_fee"
)

// RuleCategory groups rules; within a category at most one rule applies
// per match value. Categories also fix the application order of the
// quick engine's multiplicative stage.
type RuleCategory string

const (
	CategoryJobType  RuleCategory = "job_type"
	CategoryMaterial RuleCategory = "material"
	CategoryPitch    RuleCategory = "pitch"
	CategoryStory    RuleCategory = "story"
	CategoryUrgency  RuleCategory = "urgency"
	CategoryFeature  RuleCategory = "feature"
	CategoryIssue    RuleCategory = "issue"
)

// multiplierOrder fixes the multiplicative stage order. Rounding only
// happens once at the end, so the result is deterministic even though
// intermediate rounding would not commute.
var multiplierOrder = []RuleCategory{CategoryMaterial, CategoryPitch, CategoryStory, CategoryUrgency}

// Rule is one named, categorized price adjustment. The same structure
// serves the persisted rule table and the built-in default set, so the
// interpreter never cares where a rule came from. Rule sets are
// read-only inputs to a calculation.
type Rule struct {
	Key      string       `json:"rule_key"`
	Category RuleCategory `json:"rule_category"`
	Kind     RuleKind     `json:"kind"`
	Label    string       `json:"label"`

	// Match is the distinguishing value within the category, e.g. the
	// roof material name for a material multiplier.
	Match string `json:"match_value"`

	BaseRate   float64 `json:"base_rate,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
	FlatFee    float64 `json:"flat_fee,omitempty"`

	MinCharge *float64 `json:"min_charge,omitempty"`
	MaxCharge *float64 `json:"max_charge,omitempty"`
}

// ruleIndex resolves lookups by (category, match). Building the index
// keys rules by content, which is what makes the quick engine
// insensitive to the order of the input slice.
type ruleIndex map[RuleCategory]map[string]Rule

func indexRules(rules []Rule) ruleIndex {
	idx := make(ruleIndex)
	for _, r := range rules {
		byMatch, ok := idx[r.Category]
		if !ok {
			byMatch = make(map[string]Rule)
			idx[r.Category] = byMatch
		}
		byMatch[r.Match] = r
	}
	return idx
}

func (idx ruleIndex) lookup(category RuleCategory, match string) (Rule, bool) {
	byMatch, ok := idx[category]
	if !ok {
		return Rule{}, false
	}
	r, ok := byMatch[match]
	return r, ok
}
