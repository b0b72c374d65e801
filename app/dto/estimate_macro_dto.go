package dto

// AdminCreateMacroRequest creates a reusable estimate template.
type AdminCreateMacroRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	JobType     string `json:"job_type" validate:"omitempty,oneof=full_replacement partial_replacement repair inspection"`
	RoofType    string `json:"roof_type" validate:"omitempty,max=50"`
}

// AdminAddMacroItemRequest binds a catalog line item to a macro. Adding
// the same item twice is a conflict and leaves the macro unchanged.
type AdminAddMacroItemRequest struct {
	MacroID  uint   `json:"macro_id" validate:"required,gt=0"`
	ItemCode string `json:"item_code" validate:"required,max=50"`

	SortOrder int    `json:"sort_order" validate:"gte=0"`
	GroupName string `json:"group_name" validate:"omitempty,max=100"`

	QuantityFormulaOverride *string  `json:"quantity_formula_override,omitempty" validate:"omitempty,max=255"`
	WasteFactorOverride     *float64 `json:"waste_factor_override,omitempty" validate:"omitempty,gte=1,lte=2"`
	MaterialCostOverride    *float64 `json:"material_cost_override,omitempty" validate:"omitempty,gte=0"`
	LaborCostOverride       *float64 `json:"labor_cost_override,omitempty" validate:"omitempty,gte=0"`

	IsOptional        *bool `json:"is_optional,omitempty"`
	SelectedByDefault *bool `json:"selected_by_default,omitempty"`
}

type AdminRemoveMacroItemRequest struct {
	MacroID  uint   `json:"macro_id" validate:"required,gt=0"`
	ItemCode string `json:"item_code" validate:"required,max=50"`
}

// MacroItemDTO is one line item association within a macro.
type MacroItemDTO struct {
	LineItemID uint   `json:"line_item_id"`
	ItemCode   string `json:"item_code"`
	Name       string `json:"name"`
	SortOrder  int    `json:"sort_order"`
	GroupName  string `json:"group_name,omitempty"`

	QuantityFormulaOverride *string  `json:"quantity_formula_override,omitempty"`
	WasteFactorOverride     *float64 `json:"waste_factor_override,omitempty"`
	MaterialCostOverride    *float64 `json:"material_cost_override,omitempty"`
	LaborCostOverride       *float64 `json:"labor_cost_override,omitempty"`

	IsOptional        bool `json:"is_optional"`
	SelectedByDefault bool `json:"selected_by_default"`
}

// EstimateMacroDTO is the external representation of a macro.
type EstimateMacroDTO struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	JobType     string         `json:"job_type,omitempty"`
	RoofType    string         `json:"roof_type,omitempty"`
	IsActive    bool           `json:"is_active"`
	Items       []MacroItemDTO `json:"items,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

type AdminEstimateMacroResponse struct {
	Message string           `json:"message"`
	Macro   EstimateMacroDTO `json:"macro"`
}

type AdminListEstimateMacrosRequest struct {
	JobType  *string `json:"job_type,omitempty" query:"job_type"`
	IsActive *bool   `json:"is_active,omitempty" query:"is_active"`
}

type AdminListEstimateMacrosResponse struct {
	Message string             `json:"message"`
	Items   []EstimateMacroDTO `json:"items"`
}

type AdminRemoveMacroItemResponse struct {
	Message  string `json:"message"`
	MacroID  uint   `json:"macro_id"`
	ItemCode string `json:"item_code"`
}
