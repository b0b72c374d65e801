package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuickEstimate is a persisted quick-engine result for a lead. Quick and
// detailed estimates are separate lines, each independently versioned:
// exactly one non-superseded row exists per lead at any time.
// Table: quick_estimates
type QuickEstimate struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_quick_estimates_uuid" json:"uuid"`
	LeadID uint      `gorm:"not null;index:idx_quick_estimates_lead_id;uniqueIndex:uk_quick_estimates_lead_version,priority:1" json:"lead_id"`

	JobType      string  `gorm:"size:50;not null" json:"job_type"`
	RoofSizeSqFt float64 `gorm:"type:numeric(10,2)" json:"roof_size_sqft"`

	BaseCost     float64 `gorm:"type:numeric(12,2);not null" json:"base_cost"`
	MaterialCost float64 `gorm:"type:numeric(12,2)" json:"material_cost"`
	LaborCost    float64 `gorm:"type:numeric(12,2)" json:"labor_cost"`
	PriceLow     float64 `gorm:"type:numeric(12,2);not null" json:"price_low"`
	PriceLikely  float64 `gorm:"type:numeric(12,2);not null" json:"price_likely"`
	PriceHigh    float64 `gorm:"type:numeric(12,2);not null" json:"price_high"`

	// Adjustments holds the applied rules in application order.
	Adjustments json.RawMessage `gorm:"type:jsonb" json:"adjustments"`

	// UsedDefaultRules records a ConfigurationFallback: the persisted
	// rule set was empty and the built-in table priced this estimate.
	UsedDefaultRules bool `gorm:"default:false" json:"used_default_rules"`

	// The (lead_id, version) unique index turns a concurrent version
	// race into a duplicate-key failure for the losing transaction.
	Version      int  `gorm:"not null;default:1;uniqueIndex:uk_quick_estimates_lead_version,priority:2" json:"version"`
	IsSuperseded bool `gorm:"not null;default:false;index:idx_quick_estimates_is_superseded" json:"is_superseded"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (QuickEstimate) TableName() string {
	return "quick_estimates"
}

// BeforeCreate ensures UUID is set for QuickEstimate
func (q *QuickEstimate) BeforeCreate(tx *gorm.DB) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	return nil
}

// QuickEstimateFilter represents filter criteria for quick estimate queries
type QuickEstimateFilter struct {
	LeadID       *uint `json:"lead_id,omitempty"`
	IsSuperseded *bool `json:"is_superseded,omitempty"`
}
