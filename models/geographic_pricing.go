package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/peakcrest/roofline/pricing"
)

// GeographicPricing is a named pricing region. Lookup is by explicit id
// or by zip-code containment; the adjustment applied to an estimate is
// the arithmetic mean of the three multipliers.
// Table: geographic_pricing
type GeographicPricing struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name   string  `gorm:"size:255;not null;uniqueIndex:uk_geographic_pricing_name" json:"name"`
	State  string  `gorm:"size:2;not null;index:idx_geographic_pricing_state" json:"state"`
	County *string `gorm:"size:100" json:"county,omitempty"`

	ZipCodes pq.StringArray `gorm:"type:text[]" json:"zip_codes"`

	MaterialMultiplier  float64 `gorm:"type:numeric(6,4);not null;default:1.0" json:"material_multiplier"`
	LaborMultiplier     float64 `gorm:"type:numeric(6,4);not null;default:1.0" json:"labor_multiplier"`
	EquipmentMultiplier float64 `gorm:"type:numeric(6,4);not null;default:1.0" json:"equipment_multiplier"`

	IsActive *bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (GeographicPricing) TableName() string {
	return "geographic_pricing"
}

// Multipliers converts the row to the engine representation.
func (g GeographicPricing) Multipliers() pricing.GeoMultipliers {
	return pricing.GeoMultipliers{
		Material:  g.MaterialMultiplier,
		Labor:     g.LaborMultiplier,
		Equipment: g.EquipmentMultiplier,
	}
}

// GeographicPricingFilter represents filter criteria for region queries
type GeographicPricingFilter struct {
	Name     *string `json:"name,omitempty"`
	State    *string `json:"state,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
