package dto

// AdjustmentDTO is one applied pricing rule, in application order.
type AdjustmentDTO struct {
	Category string  `json:"category"`
	RuleKey  string  `json:"rule_key"`
	Label    string  `json:"label"`
	Impact   float64 `json:"impact"`
}

// CreateQuickEstimateRequest prices a lead with the quick engine and
// persists the result as the lead's current quick estimate.
type CreateQuickEstimateRequest struct {
	LeadUUID string `json:"lead_uuid" validate:"required,uuid4"`
}

// QuickEstimateDTO is the external representation of a quick estimate.
type QuickEstimateDTO struct {
	UUID     string `json:"uuid"`
	LeadUUID string `json:"lead_uuid"`

	JobType      string  `json:"job_type"`
	RoofSizeSqFt float64 `json:"roof_size_sqft"`

	BaseCost     float64 `json:"base_cost"`
	MaterialCost float64 `json:"material_cost"`
	LaborCost    float64 `json:"labor_cost"`
	PriceLow     float64 `json:"price_low"`
	PriceLikely  float64 `json:"price_likely"`
	PriceHigh    float64 `json:"price_high"`

	Adjustments []AdjustmentDTO `json:"adjustments"`

	UsedDefaultRules bool `json:"used_default_rules"`

	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
}

type CreateQuickEstimateResponse struct {
	Message  string           `json:"message"`
	Estimate QuickEstimateDTO `json:"estimate"`
}

type GetQuickEstimateResponse struct {
	Message  string           `json:"message"`
	Estimate QuickEstimateDTO `json:"estimate"`
}
