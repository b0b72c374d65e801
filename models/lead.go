// Package models contains domain entities and business models for the lead and estimation system
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Timeline urgency values captured by the intake funnel.
const (
	UrgencyFlexible  = "flexible"
	UrgencyThisWeek  = "this_week"
	UrgencyEmergency = "emergency"
)

// Lead is an intake record: contact snapshot, job metadata and the roof
// measurements the estimation engine reads. Lifecycle state transitions
// are handled elsewhere; the engine only consumes these columns.
type Lead struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_leads_uuid" json:"uuid"`

	FirstName string  `gorm:"size:100;not null" json:"first_name"`
	LastName  string  `gorm:"size:100;not null" json:"last_name"`
	Email     *string `gorm:"size:255" json:"email,omitempty"`
	Phone     *string `gorm:"size:30" json:"phone,omitempty"`

	AddressLine string `gorm:"size:255" json:"address_line"`
	City        string `gorm:"size:100" json:"city"`
	State       string `gorm:"size:2;index:idx_leads_state" json:"state"`
	ZipCode     string `gorm:"size:10;index:idx_leads_zip_code" json:"zip_code"`

	// Job metadata consumed by the quick pricing engine.
	JobType         string         `gorm:"size:50;not null;default:full_replacement" json:"job_type"`
	RoofMaterial    string         `gorm:"size:50" json:"roof_material"`
	RoofSizeSqFt    float64        `gorm:"type:numeric(10,2)" json:"roof_size_sqft"`
	RoofPitch       float64        `gorm:"type:numeric(4,1)" json:"roof_pitch"`
	Stories         int            `gorm:"default:1" json:"stories"`
	HasSkylights    bool           `gorm:"default:false" json:"has_skylights"`
	HasChimneys     bool           `gorm:"default:false" json:"has_chimneys"`
	HasSolarPanels  bool           `gorm:"default:false" json:"has_solar_panels"`
	Issues          pq.StringArray `gorm:"type:text[]" json:"issues"`
	TimelineUrgency string         `gorm:"size:30;default:flexible" json:"timeline_urgency"`

	// Simple outline measurements; per-slope detail lives in RoofSlope.
	RoofLengthFt   float64 `gorm:"type:numeric(8,2)" json:"roof_length_ft"`
	RoofWidthFt    float64 `gorm:"type:numeric(8,2)" json:"roof_width_ft"`
	SkylightCount  int     `gorm:"default:0" json:"skylight_count"`
	ChimneyCount   int     `gorm:"default:0" json:"chimney_count"`
	PipeCount      int     `gorm:"default:0" json:"pipe_count"`
	VentCount      int     `gorm:"default:0" json:"vent_count"`
	GutterLengthFt float64 `gorm:"type:numeric(8,2)" json:"gutter_length_ft"`
	DownspoutCount int     `gorm:"default:0" json:"downspout_count"`

	Slopes []RoofSlope `gorm:"foreignKey:LeadID" json:"slopes,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// BeforeCreate ensures UUID is set for Lead
func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	return nil
}

// RoofSlope is one facet of a sketched roof for a lead. When slope rows
// exist they take precedence over the lead's outline dimensions.
type RoofSlope struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	LeadID uint   `gorm:"not null;index:idx_roof_slopes_lead_id" json:"lead_id"`
	Name   string `gorm:"size:50;not null" json:"name"`

	Squares  float64 `gorm:"type:numeric(8,2);not null" json:"squares"`
	EaveFt   float64 `gorm:"type:numeric(8,2)" json:"eave_ft"`
	RidgeFt  float64 `gorm:"type:numeric(8,2)" json:"ridge_ft"`
	RakeFt   float64 `gorm:"type:numeric(8,2)" json:"rake_ft"`
	ValleyFt float64 `gorm:"type:numeric(8,2)" json:"valley_ft"`
	HipFt    float64 `gorm:"type:numeric(8,2)" json:"hip_ft"`
	Pitch    float64 `gorm:"type:numeric(4,1)" json:"pitch"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (RoofSlope) TableName() string {
	return "roof_slopes"
}

// LeadFilter represents filter criteria for lead queries
type LeadFilter struct {
	ID      *uint      `json:"id,omitempty"`
	UUID    *uuid.UUID `json:"uuid,omitempty"`
	State   *string    `json:"state,omitempty"`
	ZipCode *string    `json:"zip_code,omitempty"`
	JobType *string    `json:"job_type,omitempty"`
}
