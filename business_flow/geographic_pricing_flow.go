// Package businessflow contains the core business logic and use cases for pricing region administration
package businessflow

import (
	"context"

	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/config"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/repository"
	"github.com/peakcrest/roofline/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// GeographicPricingFlow handles pricing region administration
type GeographicPricingFlow interface {
	CreateRegion(ctx context.Context, req *dto.AdminCreateRegionRequest, metadata *ClientMetadata) (*dto.AdminRegionResponse, error)
	UpdateRegion(ctx context.Context, req *dto.AdminUpdateRegionRequest, metadata *ClientMetadata) (*dto.AdminRegionResponse, error)
	ListRegions(ctx context.Context) (*dto.AdminListRegionsResponse, error)
	ResolveByZip(ctx context.Context, zipCode string) (*dto.ResolveRegionResponse, error)
}

// GeographicPricingFlowImpl implements the pricing region business flow
type GeographicPricingFlowImpl struct {
	regionRepo  repository.GeographicPricingRepository
	cacheConfig *config.CacheConfig
	rc          *redis.Client
	db          *gorm.DB
}

// NewGeographicPricingFlow creates a new pricing region flow instance
func NewGeographicPricingFlow(
	regionRepo repository.GeographicPricingRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) GeographicPricingFlow {
	return &GeographicPricingFlowImpl{
		regionRepo:  regionRepo,
		cacheConfig: cacheConfig,
		rc:          rc,
		db:          db,
	}
}

// CreateRegion adds a named pricing region.
func (s *GeographicPricingFlowImpl) CreateRegion(ctx context.Context, req *dto.AdminCreateRegionRequest, metadata *ClientMetadata) (*dto.AdminRegionResponse, error) {
	var region *models.GeographicPricing
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		exists, err := s.regionRepo.Exists(txCtx, models.GeographicPricingFilter{Name: utils.ToPtr(req.Name)})
		if err != nil {
			return err
		}
		if exists {
			return ErrRegionNameExists
		}

		region = &models.GeographicPricing{
			Name:   req.Name,
			State:  req.State,
			County: req.County,

			ZipCodes: req.ZipCodes,

			MaterialMultiplier:  req.MaterialMultiplier,
			LaborMultiplier:     req.LaborMultiplier,
			EquipmentMultiplier: req.EquipmentMultiplier,

			IsActive: utils.ToPtr(true),

			CreatedAt: utils.UTCNow(),
			UpdatedAt: utils.UTCNow(),
		}
		return s.regionRepo.Save(txCtx, region)
	})
	if err != nil {
		return nil, NewBusinessError("REGION_CREATION_FAILED", "Pricing region creation failed", err)
	}

	s.invalidateZipCache(ctx, region.ZipCodes)

	return &dto.AdminRegionResponse{
		Message: "Pricing region created successfully",
		Region:  ToRegionDTO(*region),
	}, nil
}

// UpdateRegion applies partial changes to a region and drops cached zip
// lookups the change may affect.
func (s *GeographicPricingFlowImpl) UpdateRegion(ctx context.Context, req *dto.AdminUpdateRegionRequest, metadata *ClientMetadata) (*dto.AdminRegionResponse, error) {
	if req.Name == nil && req.County == nil && len(req.ZipCodes) == 0 &&
		req.MaterialMultiplier == nil && req.LaborMultiplier == nil && req.EquipmentMultiplier == nil &&
		req.IsActive == nil {
		return nil, NewBusinessError("REGION_UPDATE_VALIDATION_FAILED", "Nothing to update", ErrRegionUpdateMissing)
	}

	region, err := s.regionRepo.ByID(ctx, req.ID)
	if err != nil {
		return nil, NewBusinessError("REGION_LOOKUP_FAILED", "Failed to lookup pricing region", err)
	}
	if region == nil {
		return nil, NewBusinessError("REGION_NOT_FOUND", "Pricing region not found", ErrRegionNotFound)
	}

	staleZips := append([]string{}, region.ZipCodes...)

	if req.Name != nil {
		region.Name = *req.Name
	}
	if req.County != nil {
		region.County = req.County
	}
	if len(req.ZipCodes) > 0 {
		region.ZipCodes = req.ZipCodes
		staleZips = append(staleZips, req.ZipCodes...)
	}
	if req.MaterialMultiplier != nil {
		region.MaterialMultiplier = *req.MaterialMultiplier
	}
	if req.LaborMultiplier != nil {
		region.LaborMultiplier = *req.LaborMultiplier
	}
	if req.EquipmentMultiplier != nil {
		region.EquipmentMultiplier = *req.EquipmentMultiplier
	}
	if req.IsActive != nil {
		region.IsActive = req.IsActive
	}
	region.UpdatedAt = utils.UTCNow()

	if err := s.regionRepo.Update(ctx, region); err != nil {
		return nil, NewBusinessError("REGION_UPDATE_FAILED", "Pricing region update failed", err)
	}

	s.invalidateZipCache(ctx, staleZips)

	return &dto.AdminRegionResponse{
		Message: "Pricing region updated successfully",
		Region:  ToRegionDTO(*region),
	}, nil
}

// ListRegions returns all active regions.
func (s *GeographicPricingFlowImpl) ListRegions(ctx context.Context) (*dto.AdminListRegionsResponse, error) {
	rows, err := s.regionRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("REGION_LIST_FAILED", "Failed to list pricing regions", err)
	}

	items := make([]dto.RegionDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToRegionDTO(*row))
	}

	return &dto.AdminListRegionsResponse{
		Message: "Pricing regions retrieved successfully",
		Items:   items,
	}, nil
}

// ResolveByZip answers which active region claims a zip code. No match
// is a successful answer with an empty region.
func (s *GeographicPricingFlowImpl) ResolveByZip(ctx context.Context, zipCode string) (*dto.ResolveRegionResponse, error) {
	region, err := s.regionRepo.ByZipCode(ctx, zipCode)
	if err != nil {
		return nil, NewBusinessError("REGION_LOOKUP_FAILED", "Failed to lookup pricing region", err)
	}
	if region == nil {
		return &dto.ResolveRegionResponse{
			Message: "No pricing region claims this zip code",
		}, nil
	}

	out := ToRegionDTO(*region)
	return &dto.ResolveRegionResponse{
		Message: "Pricing region resolved successfully",
		Region:  &out,
	}, nil
}

func (s *GeographicPricingFlowImpl) invalidateZipCache(ctx context.Context, zips []string) {
	if s.rc == nil || len(zips) == 0 {
		return
	}
	keys := make([]string, 0, len(zips))
	for _, zip := range zips {
		keys = append(keys, redisKey(*s.cacheConfig, utils.RegionZipCacheKeyPrefix+zip))
	}
	_ = s.rc.Del(ctx, keys...).Err()
}
