package models

import "time"

// LineItem is a catalog entry for one billable component. Entries are
// soft-deleted by clearing is_active and are never hard-deleted while an
// estimate references them.
// Table: line_items
type LineItem struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ItemCode string `gorm:"size:50;not null;uniqueIndex:uk_line_items_item_code" json:"item_code"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Category string `gorm:"size:50;index:idx_line_items_category" json:"category"`
	UnitType string `gorm:"size:30;not null" json:"unit_type"`

	MaterialUnitCost  float64 `gorm:"type:numeric(10,2);not null" json:"material_unit_cost"`
	LaborUnitCost     float64 `gorm:"type:numeric(10,2);not null" json:"labor_unit_cost"`
	EquipmentUnitCost float64 `gorm:"type:numeric(10,2);default:0" json:"equipment_unit_cost"`

	// QuantityFormula is a symbolic expression over the roof variables,
	// e.g. "SQ * 1.1" or "EAVE + RAKE".
	QuantityFormula    string  `gorm:"size:255;not null" json:"quantity_formula"`
	DefaultWasteFactor float64 `gorm:"type:numeric(5,3);default:1.0" json:"default_waste_factor"`

	Taxable  *bool `gorm:"default:true" json:"taxable"`
	IsActive *bool `gorm:"default:true;index:idx_line_items_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (LineItem) TableName() string {
	return "line_items"
}

// LineItemFilter represents filter criteria for line item queries
type LineItemFilter struct {
	ItemCode *string `json:"item_code,omitempty"`
	Category *string `json:"category,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
