package dto

// CreateDetailedEstimateRequest builds a full line-item estimate for a
// lead. Lines come from a macro expansion, an explicit item code list,
// or the whole active catalog when both are omitted.
type CreateDetailedEstimateRequest struct {
	LeadUUID string `json:"lead_uuid" validate:"required,uuid4"`

	MacroID   *uint    `json:"macro_id,omitempty" validate:"omitempty,gt=0"`
	ItemCodes []string `json:"item_codes,omitempty" validate:"omitempty,dive,max=50"`

	OverheadPercent float64 `json:"overhead_percent" validate:"gte=0,lte=50"`
	ProfitPercent   float64 `json:"profit_percent" validate:"gte=0,lte=50"`
	TaxPercent      float64 `json:"tax_percent" validate:"gte=0"`

	// TaxIncludesMarkup overrides the configured tax policy when set.
	TaxIncludesMarkup *bool `json:"tax_includes_markup,omitempty"`

	// Region resolution: explicit id wins, otherwise the lead's zip code
	// is looked up; no match means no geographic adjustment.
	RegionID *uint `json:"region_id,omitempty" validate:"omitempty,gt=0"`
}

// EstimateLineDTO is one resolved line of a detailed estimate.
type EstimateLineDTO struct {
	ID        uint   `json:"id"`
	ItemCode  string `json:"item_code"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	UnitType  string `json:"unit_type"`
	GroupName string `json:"group_name,omitempty"`
	SortOrder int    `json:"sort_order"`

	Quantity          float64 `json:"quantity"`
	WasteFactor       float64 `json:"waste_factor"`
	QuantityWithWaste float64 `json:"quantity_with_waste"`

	MaterialUnitCost  float64 `json:"material_unit_cost"`
	LaborUnitCost     float64 `json:"labor_unit_cost"`
	EquipmentUnitCost float64 `json:"equipment_unit_cost"`
	LineTotal         float64 `json:"line_total"`

	Taxable    bool `json:"taxable"`
	IsOptional bool `json:"is_optional"`
	IsIncluded bool `json:"is_included"`
}

// DetailedEstimateDTO is the external representation of a detailed
// estimate with all pricing layers.
type DetailedEstimateDTO struct {
	UUID     string `json:"uuid"`
	LeadUUID string `json:"lead_uuid"`
	MacroID  *uint  `json:"macro_id,omitempty"`

	Lines []EstimateLineDTO `json:"lines"`

	TotalMaterial  float64 `json:"total_material"`
	TotalLabor     float64 `json:"total_labor"`
	TotalEquipment float64 `json:"total_equipment"`
	Subtotal       float64 `json:"subtotal"`

	OverheadPercent float64 `json:"overhead_percent"`
	OverheadAmount  float64 `json:"overhead_amount"`
	ProfitPercent   float64 `json:"profit_percent"`
	ProfitAmount    float64 `json:"profit_amount"`

	TaxableAmount float64 `json:"taxable_amount"`
	TaxPercent    float64 `json:"tax_percent"`
	TaxAmount     float64 `json:"tax_amount"`

	GeographicRegionID   *uint   `json:"geographic_region_id,omitempty"`
	GeographicAdjustment float64 `json:"geographic_adjustment"`

	PriceLow    float64 `json:"price_low"`
	PriceLikely float64 `json:"price_likely"`
	PriceHigh   float64 `json:"price_high"`

	Version   int    `json:"version"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type CreateDetailedEstimateResponse struct {
	Message  string              `json:"message"`
	Estimate DetailedEstimateDTO `json:"estimate"`
}

type GetDetailedEstimateResponse struct {
	Message  string              `json:"message"`
	Estimate DetailedEstimateDTO `json:"estimate"`
}

// ToggleLineItemRequest flips the inclusion flag of one line on a draft
// estimate. Quantities and unit costs are untouched; only the totals and
// tier prices are recomputed.
type ToggleLineItemRequest struct {
	EstimateUUID string `json:"estimate_uuid" validate:"required,uuid4"`
	LineID       uint   `json:"line_id" validate:"required,gt=0"`
	Included     bool   `json:"included"`
}

type ToggleLineItemResponse struct {
	Message  string              `json:"message"`
	Estimate DetailedEstimateDTO `json:"estimate"`
}

// UpdateEstimateStatusRequest transitions a detailed estimate to
// approved or sent. Status changes never retrigger calculation.
type UpdateEstimateStatusRequest struct {
	EstimateUUID string `json:"estimate_uuid" validate:"required,uuid4"`
	Status       string `json:"status" validate:"required,oneof=approved sent"`
}

type UpdateEstimateStatusResponse struct {
	Message string `json:"message"`
	UUID    string `json:"uuid"`
	Status  string `json:"status"`
}
