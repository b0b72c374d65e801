package dto

// RoofSlopeInput is one facet of a sketched roof submitted with a lead.
type RoofSlopeInput struct {
	Name     string  `json:"name" validate:"required,max=50"`
	Squares  float64 `json:"squares" validate:"gte=0"`
	EaveFt   float64 `json:"eave_ft" validate:"gte=0"`
	RidgeFt  float64 `json:"ridge_ft" validate:"gte=0"`
	RakeFt   float64 `json:"rake_ft" validate:"gte=0"`
	ValleyFt float64 `json:"valley_ft" validate:"gte=0"`
	HipFt    float64 `json:"hip_ft" validate:"gte=0"`
	Pitch    float64 `json:"pitch" validate:"gte=0,lte=24"`
}

// CreateLeadRequest represents the intake payload: contact snapshot, job
// metadata and roof measurements.
type CreateLeadRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`

	AddressLine string `json:"address_line" validate:"omitempty,max=255"`
	City        string `json:"city" validate:"omitempty,max=100"`
	State       string `json:"state" validate:"omitempty,len=2"`
	ZipCode     string `json:"zip_code" validate:"omitempty,max=10"`

	JobType         string   `json:"job_type" validate:"omitempty,oneof=full_replacement partial_replacement repair inspection"`
	RoofMaterial    string   `json:"roof_material" validate:"omitempty,max=50"`
	RoofSizeSqFt    float64  `json:"roof_size_sqft" validate:"gte=0"`
	RoofPitch       float64  `json:"roof_pitch" validate:"gte=0,lte=24"`
	Stories         int      `json:"stories" validate:"gte=0,lte=10"`
	HasSkylights    bool     `json:"has_skylights"`
	HasChimneys     bool     `json:"has_chimneys"`
	HasSolarPanels  bool     `json:"has_solar_panels"`
	Issues          []string `json:"issues" validate:"omitempty,dive,max=50"`
	TimelineUrgency string   `json:"timeline_urgency" validate:"omitempty,oneof=flexible this_week emergency"`

	RoofLengthFt   float64 `json:"roof_length_ft" validate:"gte=0"`
	RoofWidthFt    float64 `json:"roof_width_ft" validate:"gte=0"`
	SkylightCount  int     `json:"skylight_count" validate:"gte=0"`
	ChimneyCount   int     `json:"chimney_count" validate:"gte=0"`
	PipeCount      int     `json:"pipe_count" validate:"gte=0"`
	VentCount      int     `json:"vent_count" validate:"gte=0"`
	GutterLengthFt float64 `json:"gutter_length_ft" validate:"gte=0"`
	DownspoutCount int     `json:"downspout_count" validate:"gte=0"`

	Slopes []RoofSlopeInput `json:"slopes,omitempty" validate:"omitempty,dive"`
}

type CreateLeadResponse struct {
	Message   string `json:"message"`
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	CreatedAt string `json:"created_at"`
}

// LeadDTO is the external representation of a lead.
type LeadDTO struct {
	ID        uint    `json:"id"`
	UUID      string  `json:"uuid"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`

	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`

	JobType         string   `json:"job_type"`
	RoofMaterial    string   `json:"roof_material"`
	RoofSizeSqFt    float64  `json:"roof_size_sqft"`
	RoofPitch       float64  `json:"roof_pitch"`
	Stories         int      `json:"stories"`
	HasSkylights    bool     `json:"has_skylights"`
	HasChimneys     bool     `json:"has_chimneys"`
	HasSolarPanels  bool     `json:"has_solar_panels"`
	Issues          []string `json:"issues"`
	TimelineUrgency string   `json:"timeline_urgency"`

	RoofLengthFt   float64 `json:"roof_length_ft"`
	RoofWidthFt    float64 `json:"roof_width_ft"`
	SkylightCount  int     `json:"skylight_count"`
	ChimneyCount   int     `json:"chimney_count"`
	PipeCount      int     `json:"pipe_count"`
	VentCount      int     `json:"vent_count"`
	GutterLengthFt float64 `json:"gutter_length_ft"`
	DownspoutCount int     `json:"downspout_count"`

	Slopes []RoofSlopeInput `json:"slopes,omitempty"`

	CreatedAt string `json:"created_at"`
}

type GetLeadResponse struct {
	Message string  `json:"message"`
	Lead    LeadDTO `json:"lead"`
}

type ListLeadsRequest struct {
	Page     int     `json:"page" query:"page" validate:"omitempty,gte=1"`
	PageSize int     `json:"page_size" query:"page_size" validate:"omitempty,gte=1,lte=100"`
	State    *string `json:"state,omitempty" query:"state" validate:"omitempty,len=2"`
	JobType  *string `json:"job_type,omitempty" query:"job_type"`
}

type ListLeadsResponse struct {
	Message string    `json:"message"`
	Items   []LeadDTO `json:"items"`
	Total   int64     `json:"total"`
}
