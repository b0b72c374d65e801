package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Detailed estimate statuses. Draft estimates may still have line items
// toggled; approved and sent are terminal for calculation purposes.
const (
	EstimateStatusDraft    = "draft"
	EstimateStatusApproved = "approved"
	EstimateStatusSent     = "sent"
)

// DetailedEstimate is a versioned snapshot of a full line-item estimate
// for one lead. Creating a new version marks all prior versions for the
// lead superseded in the same transaction that inserts the new row.
// Table: detailed_estimates
type DetailedEstimate struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UUID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_detailed_estimates_uuid" json:"uuid"`
	LeadID uint      `gorm:"not null;index:idx_detailed_estimates_lead_id;uniqueIndex:uk_detailed_estimates_lead_version,priority:1" json:"lead_id"`

	MacroID *uint `gorm:"index:idx_detailed_estimates_macro_id" json:"macro_id,omitempty"`

	Lines []EstimateLineItem `gorm:"foreignKey:EstimateID" json:"lines,omitempty"`

	TotalMaterial  float64 `gorm:"type:numeric(12,2);not null" json:"total_material"`
	TotalLabor     float64 `gorm:"type:numeric(12,2);not null" json:"total_labor"`
	TotalEquipment float64 `gorm:"type:numeric(12,2);not null" json:"total_equipment"`
	Subtotal       float64 `gorm:"type:numeric(12,2);not null" json:"subtotal"`

	OverheadPercent float64 `gorm:"type:numeric(5,2);not null" json:"overhead_percent"`
	OverheadAmount  float64 `gorm:"type:numeric(12,2);not null" json:"overhead_amount"`
	ProfitPercent   float64 `gorm:"type:numeric(5,2);not null" json:"profit_percent"`
	ProfitAmount    float64 `gorm:"type:numeric(12,2);not null" json:"profit_amount"`

	TaxableAmount float64 `gorm:"type:numeric(12,2);not null" json:"taxable_amount"`
	TaxPercent    float64 `gorm:"type:numeric(5,2);not null" json:"tax_percent"`
	TaxAmount     float64 `gorm:"type:numeric(12,2);not null" json:"tax_amount"`

	// TaxIncludesMarkup snapshots the tax policy the estimate was
	// computed under so inclusion toggles re-aggregate consistently.
	TaxIncludesMarkup bool `gorm:"not null;default:true" json:"tax_includes_markup"`

	GeographicRegionID   *uint   `json:"geographic_region_id,omitempty"`
	GeographicAdjustment float64 `gorm:"type:numeric(6,4);not null;default:1.0" json:"geographic_adjustment"`

	PriceLow    float64 `gorm:"type:numeric(12,2);not null" json:"price_low"`
	PriceLikely float64 `gorm:"type:numeric(12,2);not null" json:"price_likely"`
	PriceHigh   float64 `gorm:"type:numeric(12,2);not null" json:"price_high"`

	// The (lead_id, version) unique index is what makes concurrent
	// creations for one lead safe: the loser of a version race hits a
	// duplicate key instead of leaving two current estimates.
	Version      int    `gorm:"not null;default:1;uniqueIndex:uk_detailed_estimates_lead_version,priority:2" json:"version"`
	IsSuperseded bool   `gorm:"not null;default:false;index:idx_detailed_estimates_is_superseded" json:"is_superseded"`
	Status       string `gorm:"size:20;not null;default:draft" json:"status"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (DetailedEstimate) TableName() string {
	return "detailed_estimates"
}

// BeforeCreate ensures UUID is set for DetailedEstimate
func (d *DetailedEstimate) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the estimate status forbids content changes.
func (d *DetailedEstimate) IsTerminal() bool {
	return d.Status == EstimateStatusApproved || d.Status == EstimateStatusSent
}

// EstimateLineItem is one resolved line of a detailed estimate: the
// catalog item snapshot with computed quantities and total. Toggling
// IsIncluded is the only supported content mutation on a draft estimate.
// Table: estimate_line_items
type EstimateLineItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	EstimateID uint `gorm:"not null;index:idx_estimate_line_items_estimate_id" json:"estimate_id"`
	LineItemID uint `gorm:"not null" json:"line_item_id"`

	ItemCode  string `gorm:"size:50;not null" json:"item_code"`
	Name      string `gorm:"size:255;not null" json:"name"`
	Category  string `gorm:"size:50" json:"category"`
	UnitType  string `gorm:"size:30;not null" json:"unit_type"`
	GroupName string `gorm:"size:100" json:"group_name"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`

	Quantity          float64 `gorm:"type:numeric(12,4);not null" json:"quantity"`
	WasteFactor       float64 `gorm:"type:numeric(5,3);not null" json:"waste_factor"`
	QuantityWithWaste float64 `gorm:"type:numeric(12,4);not null" json:"quantity_with_waste"`

	MaterialUnitCost  float64 `gorm:"type:numeric(10,2);not null" json:"material_unit_cost"`
	LaborUnitCost     float64 `gorm:"type:numeric(10,2);not null" json:"labor_unit_cost"`
	EquipmentUnitCost float64 `gorm:"type:numeric(10,2);default:0" json:"equipment_unit_cost"`
	LineTotal         float64 `gorm:"type:numeric(12,2);not null" json:"line_total"`

	Taxable    bool `gorm:"default:true" json:"taxable"`
	IsOptional bool `gorm:"default:false" json:"is_optional"`
	IsIncluded bool `gorm:"default:true" json:"is_included"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (EstimateLineItem) TableName() string {
	return "estimate_line_items"
}

// DetailedEstimateFilter represents filter criteria for detailed estimate queries
type DetailedEstimateFilter struct {
	LeadID       *uint   `json:"lead_id,omitempty"`
	IsSuperseded *bool   `json:"is_superseded,omitempty"`
	Status       *string `json:"status,omitempty"`
}
