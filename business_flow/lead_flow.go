// Package businessflow contains the core business logic and use cases for lead intake workflows
package businessflow

import (
	"context"
	"time"

	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/pricing"
	"github.com/peakcrest/roofline/repository"
	"github.com/peakcrest/roofline/utils"
	"gorm.io/gorm"
)

// LeadFlow handles the lead intake business logic
type LeadFlow interface {
	CreateLead(ctx context.Context, req *dto.CreateLeadRequest, metadata *ClientMetadata) (*dto.CreateLeadResponse, error)
	GetLead(ctx context.Context, leadUUID string) (*dto.GetLeadResponse, error)
	ListLeads(ctx context.Context, req *dto.ListLeadsRequest) (*dto.ListLeadsResponse, error)
}

// LeadFlowImpl implements the lead intake business flow
type LeadFlowImpl struct {
	leadRepo repository.LeadRepository
	db       *gorm.DB
}

// NewLeadFlow creates a new lead flow instance
func NewLeadFlow(leadRepo repository.LeadRepository, db *gorm.DB) LeadFlow {
	return &LeadFlowImpl{
		leadRepo: leadRepo,
		db:       db,
	}
}

// CreateLead stores an intake record with its measurements. The roof
// geometry is resolved once up front so malformed measurements are
// rejected at intake rather than at estimation time.
func (s *LeadFlowImpl) CreateLead(ctx context.Context, req *dto.CreateLeadRequest, metadata *ClientMetadata) (*dto.CreateLeadResponse, error) {
	lead := &models.Lead{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,

		AddressLine: req.AddressLine,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,

		JobType:         req.JobType,
		RoofMaterial:    req.RoofMaterial,
		RoofSizeSqFt:    req.RoofSizeSqFt,
		RoofPitch:       req.RoofPitch,
		Stories:         req.Stories,
		HasSkylights:    req.HasSkylights,
		HasChimneys:     req.HasChimneys,
		HasSolarPanels:  req.HasSolarPanels,
		Issues:          req.Issues,
		TimelineUrgency: req.TimelineUrgency,

		RoofLengthFt:   req.RoofLengthFt,
		RoofWidthFt:    req.RoofWidthFt,
		SkylightCount:  req.SkylightCount,
		ChimneyCount:   req.ChimneyCount,
		PipeCount:      req.PipeCount,
		VentCount:      req.VentCount,
		GutterLengthFt: req.GutterLengthFt,
		DownspoutCount: req.DownspoutCount,

		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if lead.JobType == "" {
		lead.JobType = pricing.JobTypeFullReplacement
	}
	if lead.TimelineUrgency == "" {
		lead.TimelineUrgency = models.UrgencyFlexible
	}
	if lead.Stories <= 0 {
		lead.Stories = 1
	}
	for _, slope := range req.Slopes {
		lead.Slopes = append(lead.Slopes, models.RoofSlope{
			Name:     slope.Name,
			Squares:  slope.Squares,
			EaveFt:   slope.EaveFt,
			RidgeFt:  slope.RidgeFt,
			RakeFt:   slope.RakeFt,
			ValleyFt: slope.ValleyFt,
			HipFt:    slope.HipFt,
			Pitch:    slope.Pitch,

			CreatedAt: utils.UTCNow(),
		})
	}

	if _, err := pricing.ResolveFromSlopes(leadSlopes(lead), leadDimensions(lead)); err != nil {
		return nil, NewBusinessError("MEASUREMENT_VALIDATION_FAILED", "Roof measurements are invalid", err)
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.leadRepo.Save(txCtx, lead)
	})
	if err != nil {
		return nil, NewBusinessError("LEAD_CREATION_FAILED", "Lead creation failed", err)
	}

	return &dto.CreateLeadResponse{
		Message:   "Lead created successfully",
		ID:        lead.ID,
		UUID:      lead.UUID.String(),
		CreatedAt: lead.CreatedAt.Format(time.RFC3339),
	}, nil
}

// GetLead returns a lead with its slope sketch.
func (s *LeadFlowImpl) GetLead(ctx context.Context, leadUUID string) (*dto.GetLeadResponse, error) {
	lead, err := getLead(ctx, s.leadRepo, leadUUID)
	if err != nil {
		return nil, NewBusinessError("LEAD_LOOKUP_FAILED", "Failed to lookup lead", err)
	}
	lead, err = s.leadRepo.WithSlopes(ctx, lead.ID)
	if err != nil {
		return nil, NewBusinessError("LEAD_LOOKUP_FAILED", "Failed to load lead measurements", err)
	}

	return &dto.GetLeadResponse{
		Message: "Lead retrieved successfully",
		Lead:    ToLeadDTO(*lead),
	}, nil
}

// ListLeads returns a page of leads, newest first.
func (s *LeadFlowImpl) ListLeads(ctx context.Context, req *dto.ListLeadsRequest) (*dto.ListLeadsResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := models.LeadFilter{
		State:   req.State,
		JobType: req.JobType,
	}
	total, err := s.leadRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LEAD_LIST_FAILED", "Failed to count leads", err)
	}

	rows, err := s.leadRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LEAD_LIST_FAILED", "Failed to list leads", err)
	}

	items := make([]dto.LeadDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToLeadDTO(*row))
	}

	return &dto.ListLeadsResponse{
		Message: "Leads retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}
