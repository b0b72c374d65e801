package models

import "time"

// EstimateMacro is a reusable named template that expands into a
// predefined set of line items for a roof/job type.
// Table: estimate_macros
type EstimateMacro struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:255;not null;uniqueIndex:uk_estimate_macros_name" json:"name"`
	Description string `gorm:"size:1000" json:"description"`
	JobType     string `gorm:"size:50;index:idx_estimate_macros_job_type" json:"job_type"`
	RoofType    string `gorm:"size:50" json:"roof_type"`

	IsActive *bool `gorm:"default:true" json:"is_active"`

	Items []MacroLineItem `gorm:"foreignKey:MacroID" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (EstimateMacro) TableName() string {
	return "estimate_macros"
}

// MacroLineItem binds a catalog line item to a macro with optional
// overrides. A (macro, line item) pair is unique; adding the same item
// to a macro twice is a conflict.
// Table: macro_line_items
type MacroLineItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	MacroID    uint `gorm:"not null;uniqueIndex:uk_macro_line_items_pair,priority:1" json:"macro_id"`
	LineItemID uint `gorm:"not null;uniqueIndex:uk_macro_line_items_pair,priority:2" json:"line_item_id"`

	SortOrder int    `gorm:"default:0" json:"sort_order"`
	GroupName string `gorm:"size:100" json:"group_name"`

	// Overrides; nil means use the catalog value.
	QuantityFormulaOverride *string  `gorm:"size:255" json:"quantity_formula_override,omitempty"`
	WasteFactorOverride     *float64 `gorm:"type:numeric(5,3)" json:"waste_factor_override,omitempty"`
	MaterialCostOverride    *float64 `gorm:"type:numeric(10,2)" json:"material_cost_override,omitempty"`
	LaborCostOverride       *float64 `gorm:"type:numeric(10,2)" json:"labor_cost_override,omitempty"`

	IsOptional        *bool `gorm:"default:false" json:"is_optional"`
	SelectedByDefault *bool `gorm:"default:true" json:"selected_by_default"`

	LineItem LineItem `gorm:"foreignKey:LineItemID" json:"line_item,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (MacroLineItem) TableName() string {
	return "macro_line_items"
}

// EstimateMacroFilter represents filter criteria for macro queries
type EstimateMacroFilter struct {
	Name     *string `json:"name,omitempty"`
	JobType  *string `json:"job_type,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
