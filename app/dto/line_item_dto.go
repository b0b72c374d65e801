package dto

// AdminCreateLineItemRequest adds a catalog entry. QuantityFormula is a
// symbolic expression over the roof variables, e.g. "SQ * 1.1".
type AdminCreateLineItemRequest struct {
	ItemCode string `json:"item_code" validate:"required,max=50"`
	Name     string `json:"name" validate:"required,max=255"`
	Category string `json:"category" validate:"omitempty,max=50"`
	UnitType string `json:"unit_type" validate:"required,max=30"`

	MaterialUnitCost  float64 `json:"material_unit_cost" validate:"gte=0"`
	LaborUnitCost     float64 `json:"labor_unit_cost" validate:"gte=0"`
	EquipmentUnitCost float64 `json:"equipment_unit_cost" validate:"gte=0"`

	QuantityFormula    string  `json:"quantity_formula" validate:"required,max=255"`
	DefaultWasteFactor float64 `json:"default_waste_factor" validate:"omitempty,gte=1,lte=2"`

	Taxable *bool `json:"taxable,omitempty"`
}

type AdminUpdateLineItemRequest struct {
	ItemCode string `json:"item_code" validate:"required,max=50"`

	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Category *string `json:"category,omitempty" validate:"omitempty,max=50"`
	UnitType *string `json:"unit_type,omitempty" validate:"omitempty,max=30"`

	MaterialUnitCost  *float64 `json:"material_unit_cost,omitempty" validate:"omitempty,gte=0"`
	LaborUnitCost     *float64 `json:"labor_unit_cost,omitempty" validate:"omitempty,gte=0"`
	EquipmentUnitCost *float64 `json:"equipment_unit_cost,omitempty" validate:"omitempty,gte=0"`

	QuantityFormula    *string  `json:"quantity_formula,omitempty" validate:"omitempty,max=255"`
	DefaultWasteFactor *float64 `json:"default_waste_factor,omitempty" validate:"omitempty,gte=1,lte=2"`

	Taxable *bool `json:"taxable,omitempty"`
}

// LineItemDTO is the external representation of a catalog entry.
type LineItemDTO struct {
	ID       uint   `json:"id"`
	ItemCode string `json:"item_code"`
	Name     string `json:"name"`
	Category string `json:"category"`
	UnitType string `json:"unit_type"`

	MaterialUnitCost  float64 `json:"material_unit_cost"`
	LaborUnitCost     float64 `json:"labor_unit_cost"`
	EquipmentUnitCost float64 `json:"equipment_unit_cost"`

	QuantityFormula    string  `json:"quantity_formula"`
	DefaultWasteFactor float64 `json:"default_waste_factor"`

	Taxable  bool `json:"taxable"`
	IsActive bool `json:"is_active"`

	CreatedAt string `json:"created_at"`
}

type AdminLineItemResponse struct {
	Message string      `json:"message"`
	Item    LineItemDTO `json:"item"`
}

type AdminListLineItemsRequest struct {
	Category *string `json:"category,omitempty" query:"category"`
	IsActive *bool   `json:"is_active,omitempty" query:"is_active"`
}

type AdminListLineItemsResponse struct {
	Message string        `json:"message"`
	Items   []LineItemDTO `json:"items"`
}

type AdminDeactivateLineItemResponse struct {
	Message  string `json:"message"`
	ItemCode string `json:"item_code"`
}
