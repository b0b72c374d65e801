package dto

// AdminCreateRegionRequest creates a named pricing region. Zip codes are
// claimed exclusively in practice; overlapping claims resolve to the
// oldest region.
type AdminCreateRegionRequest struct {
	Name   string  `json:"name" validate:"required,max=255"`
	State  string  `json:"state" validate:"required,len=2"`
	County *string `json:"county,omitempty" validate:"omitempty,max=100"`

	ZipCodes []string `json:"zip_codes" validate:"required,min=1,dive,min=5,max=10"`

	MaterialMultiplier  float64 `json:"material_multiplier" validate:"required,gt=0,lte=5"`
	LaborMultiplier     float64 `json:"labor_multiplier" validate:"required,gt=0,lte=5"`
	EquipmentMultiplier float64 `json:"equipment_multiplier" validate:"required,gt=0,lte=5"`
}

type AdminUpdateRegionRequest struct {
	ID uint `json:"id" validate:"required,gt=0"`

	Name     *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	County   *string  `json:"county,omitempty" validate:"omitempty,max=100"`
	ZipCodes []string `json:"zip_codes,omitempty" validate:"omitempty,min=1,dive,min=5,max=10"`

	MaterialMultiplier  *float64 `json:"material_multiplier,omitempty" validate:"omitempty,gt=0,lte=5"`
	LaborMultiplier     *float64 `json:"labor_multiplier,omitempty" validate:"omitempty,gt=0,lte=5"`
	EquipmentMultiplier *float64 `json:"equipment_multiplier,omitempty" validate:"omitempty,gt=0,lte=5"`

	IsActive *bool `json:"is_active,omitempty"`
}

// RegionDTO is the external representation of a pricing region.
type RegionDTO struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	State  string  `json:"state"`
	County *string `json:"county,omitempty"`

	ZipCodes []string `json:"zip_codes"`

	MaterialMultiplier  float64 `json:"material_multiplier"`
	LaborMultiplier     float64 `json:"labor_multiplier"`
	EquipmentMultiplier float64 `json:"equipment_multiplier"`

	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type AdminRegionResponse struct {
	Message string    `json:"message"`
	Region  RegionDTO `json:"region"`
}

type AdminListRegionsResponse struct {
	Message string      `json:"message"`
	Items   []RegionDTO `json:"items"`
}

// ResolveRegionResponse answers a zip-code lookup; Region is nil when no
// active region claims the zip.
type ResolveRegionResponse struct {
	Message string     `json:"message"`
	Region  *RegionDTO `json:"region,omitempty"`
}
