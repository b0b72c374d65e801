package models

import (
	"time"

	"github.com/peakcrest/roofline/pricing"
)

// PricingRule is a persisted quick-engine rule. Rows are structurally
// identical to the built-in default set so the interpreter never cares
// which one it was handed. Within a category at most one active rule
// exists per match value.
// Table: pricing_rules
type PricingRule struct {
	ID uint `gorm:"primaryKey" json:"id"`

	RuleKey      string `gorm:"size:100;not null;uniqueIndex:uk_pricing_rules_rule_key" json:"rule_key"`
	RuleCategory string `gorm:"size:50;not null;index:idx_pricing_rules_category_match,priority:1" json:"rule_category"`
	Kind         string `gorm:"size:20;not null" json:"kind"`
	Label        string `gorm:"size:255;not null" json:"label"`
	MatchValue   string `gorm:"size:100;not null;index:idx_pricing_rules_category_match,priority:2" json:"match_value"`

	BaseRate   float64 `gorm:"type:numeric(10,4)" json:"base_rate"`
	Unit       string  `gorm:"size:20" json:"unit"`
	Multiplier float64 `gorm:"type:numeric(8,4)" json:"multiplier"`
	FlatFee    float64 `gorm:"type:numeric(10,2)" json:"flat_fee"`

	MinCharge *float64 `gorm:"type:numeric(10,2)" json:"min_charge,omitempty"`
	MaxCharge *float64 `gorm:"type:numeric(10,2)" json:"max_charge,omitempty"`

	// At most one active rule may exist per (category, match value);
	// enforced by the admin flow before writes.
	IsActive *bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (PricingRule) TableName() string {
	return "pricing_rules"
}

// ToEngineRule converts the row to the engine's rule representation.
func (r PricingRule) ToEngineRule() pricing.Rule {
	return pricing.Rule{
		Key:        r.RuleKey,
		Category:   pricing.RuleCategory(r.RuleCategory),
		Kind:       pricing.RuleKind(r.Kind),
		Label:      r.Label,
		Match:      r.MatchValue,
		BaseRate:   r.BaseRate,
		Unit:       r.Unit,
		Multiplier: r.Multiplier,
		FlatFee:    r.FlatFee,
		MinCharge:  r.MinCharge,
		MaxCharge:  r.MaxCharge,
	}
}

// PricingRuleFilter represents filter criteria for pricing rule queries
type PricingRuleFilter struct {
	RuleKey      *string `json:"rule_key,omitempty"`
	RuleCategory *string `json:"rule_category,omitempty"`
	MatchValue   *string `json:"match_value,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}
