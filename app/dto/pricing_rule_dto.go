package dto

// AdminCreatePricingRuleRequest creates or replaces a quick-engine rule.
// Within a category at most one active rule may exist per match value.
type AdminCreatePricingRuleRequest struct {
	RuleKey      string `json:"rule_key" validate:"required,max=100"`
	RuleCategory string `json:"rule_category" validate:"required,oneof=job_type material pitch story urgency feature issue"`
	Kind         string `json:"kind" validate:"required,oneof=base_rate multiplier flat_fee"`
	Label        string `json:"label" validate:"required,max=255"`
	MatchValue   string `json:"match_value" validate:"required,max=100"`

	BaseRate   float64 `json:"base_rate" validate:"gte=0"`
	Unit       string  `json:"unit" validate:"omitempty,max=20"`
	Multiplier float64 `json:"multiplier" validate:"gte=0"`
	FlatFee    float64 `json:"flat_fee" validate:"gte=0"`

	MinCharge *float64 `json:"min_charge,omitempty" validate:"omitempty,gte=0"`
	MaxCharge *float64 `json:"max_charge,omitempty" validate:"omitempty,gte=0"`
}

type AdminUpdatePricingRuleRequest struct {
	RuleKey string `json:"rule_key" validate:"required,max=100"`

	Label      *string  `json:"label,omitempty" validate:"omitempty,max=255"`
	BaseRate   *float64 `json:"base_rate,omitempty" validate:"omitempty,gte=0"`
	Unit       *string  `json:"unit,omitempty" validate:"omitempty,max=20"`
	Multiplier *float64 `json:"multiplier,omitempty" validate:"omitempty,gte=0"`
	FlatFee    *float64 `json:"flat_fee,omitempty" validate:"omitempty,gte=0"`
	MinCharge  *float64 `json:"min_charge,omitempty" validate:"omitempty,gte=0"`
	MaxCharge  *float64 `json:"max_charge,omitempty" validate:"omitempty,gte=0"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// PricingRuleDTO is the external representation of a quick-engine rule.
type PricingRuleDTO struct {
	ID           uint   `json:"id"`
	RuleKey      string `json:"rule_key"`
	RuleCategory string `json:"rule_category"`
	Kind         string `json:"kind"`
	Label        string `json:"label"`
	MatchValue   string `json:"match_value"`

	BaseRate   float64 `json:"base_rate"`
	Unit       string  `json:"unit"`
	Multiplier float64 `json:"multiplier"`
	FlatFee    float64 `json:"flat_fee"`

	MinCharge *float64 `json:"min_charge,omitempty"`
	MaxCharge *float64 `json:"max_charge,omitempty"`

	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type AdminPricingRuleResponse struct {
	Message string         `json:"message"`
	Rule    PricingRuleDTO `json:"rule"`
}

type AdminListPricingRulesRequest struct {
	RuleCategory *string `json:"rule_category,omitempty" query:"rule_category" validate:"omitempty,oneof=job_type material pitch story urgency feature issue"`
	IsActive     *bool   `json:"is_active,omitempty" query:"is_active"`
}

type AdminListPricingRulesResponse struct {
	Message string           `json:"message"`
	Items   []PricingRuleDTO `json:"items"`
}
