// Package businessflow contains the core business logic and use cases for quick estimation workflows
package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/config"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/pricing"
	"github.com/peakcrest/roofline/repository"
	"github.com/peakcrest/roofline/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// QuickEstimateFlow handles the quick estimation business logic
type QuickEstimateFlow interface {
	Calculate(ctx context.Context, req *dto.CreateQuickEstimateRequest, metadata *ClientMetadata) (*dto.CreateQuickEstimateResponse, error)
	GetCurrent(ctx context.Context, leadUUID string) (*dto.GetQuickEstimateResponse, error)
}

// QuickEstimateFlowImpl implements the quick estimation business flow
type QuickEstimateFlowImpl struct {
	leadRepo    repository.LeadRepository
	ruleRepo    repository.PricingRuleRepository
	quickRepo   repository.QuickEstimateRepository
	cacheConfig *config.CacheConfig
	rc          *redis.Client
	db          *gorm.DB
}

// NewQuickEstimateFlow creates a new quick estimation flow instance
func NewQuickEstimateFlow(
	leadRepo repository.LeadRepository,
	ruleRepo repository.PricingRuleRepository,
	quickRepo repository.QuickEstimateRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) QuickEstimateFlow {
	return &QuickEstimateFlowImpl{
		leadRepo:    leadRepo,
		ruleRepo:    ruleRepo,
		quickRepo:   quickRepo,
		cacheConfig: cacheConfig,
		rc:          rc,
		db:          db,
	}
}

// Calculate prices a lead with the quick engine and persists the result
// as the lead's current quick estimate, superseding prior versions.
func (s *QuickEstimateFlowImpl) Calculate(ctx context.Context, req *dto.CreateQuickEstimateRequest, metadata *ClientMetadata) (*dto.CreateQuickEstimateResponse, error) {
	lead, err := getLead(ctx, s.leadRepo, req.LeadUUID)
	if err != nil {
		return nil, NewBusinessError("LEAD_LOOKUP_FAILED", "Failed to lookup lead", err)
	}

	rules, usedDefaults := s.loadActiveRules(ctx)

	input := pricing.QuickInput{
		JobType:         lead.JobType,
		RoofSizeSqFt:    lead.RoofSizeSqFt,
		RoofMaterial:    lead.RoofMaterial,
		RoofPitch:       lead.RoofPitch,
		Stories:         lead.Stories,
		HasSkylights:    lead.HasSkylights,
		HasChimneys:     lead.HasChimneys,
		HasSolarPanels:  lead.HasSolarPanels,
		Issues:          lead.Issues,
		TimelineUrgency: lead.TimelineUrgency,
	}
	result := pricing.CalculateQuick(input, rules)

	adjustments, err := json.Marshal(result.Adjustments)
	if err != nil {
		return nil, NewBusinessError("QUICK_ESTIMATE_FAILED", "Failed to encode adjustments", err)
	}

	roofSize := lead.RoofSizeSqFt
	if roofSize <= 0 {
		roofSize = pricing.DefaultRoofSizeSqFt
	}

	estimate := &models.QuickEstimate{
		LeadID:       lead.ID,
		JobType:      input.JobType,
		RoofSizeSqFt: roofSize,

		BaseCost:     result.BaseCost,
		MaterialCost: result.MaterialCost,
		LaborCost:    result.LaborCost,
		PriceLow:     result.PriceLow,
		PriceLikely:  result.PriceLikely,
		PriceHigh:    result.PriceHigh,

		Adjustments:      adjustments,
		UsedDefaultRules: usedDefaults,

		CreatedAt: utils.UTCNow(),
	}

	if err := s.quickRepo.SupersedeAndInsert(ctx, estimate); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessError("QUICK_ESTIMATE_VERSION_CONFLICT", "A concurrent estimate creation won the version race", ErrEstimateVersionConflict)
		}
		return nil, NewBusinessError("QUICK_ESTIMATE_PERSIST_FAILED", "Failed to persist quick estimate", err)
	}

	return &dto.CreateQuickEstimateResponse{
		Message:  "Quick estimate created successfully",
		Estimate: ToQuickEstimateDTO(*estimate, lead.UUID.String()),
	}, nil
}

// GetCurrent returns the lead's non-superseded quick estimate.
func (s *QuickEstimateFlowImpl) GetCurrent(ctx context.Context, leadUUID string) (*dto.GetQuickEstimateResponse, error) {
	lead, err := getLead(ctx, s.leadRepo, leadUUID)
	if err != nil {
		return nil, NewBusinessError("LEAD_LOOKUP_FAILED", "Failed to lookup lead", err)
	}

	estimate, err := s.quickRepo.CurrentByLead(ctx, lead.ID)
	if err != nil {
		return nil, NewBusinessError("QUICK_ESTIMATE_LOOKUP_FAILED", "Failed to lookup quick estimate", err)
	}
	if estimate == nil {
		return nil, NewBusinessError("QUICK_ESTIMATE_NOT_FOUND", "No quick estimate exists for this lead", ErrQuickEstimateNotFound)
	}

	return &dto.GetQuickEstimateResponse{
		Message:  "Quick estimate retrieved successfully",
		Estimate: ToQuickEstimateDTO(*estimate, lead.UUID.String()),
	}, nil
}

// loadActiveRules returns the engine rule set: redis cache first, then
// the repository, then the built-in defaults when no persisted rule
// exists. The second return reports the defaults fallback.
func (s *QuickEstimateFlowImpl) loadActiveRules(ctx context.Context) ([]pricing.Rule, bool) {
	cacheKey := redisKey(*s.cacheConfig, utils.PricingRulesCacheKey)

	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var rules []pricing.Rule
			if err := json.Unmarshal(bs, &rules); err == nil && len(rules) > 0 {
				return rules, false
			}
		}
	}

	rows, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		log.Printf("quick estimate: loading pricing rules failed, using built-in defaults: %v", err)
		return pricing.DefaultRules(), true
	}
	if len(rows) == 0 {
		log.Printf("quick estimate: no active pricing rules configured, using built-in defaults")
		return pricing.DefaultRules(), true
	}

	rules := make([]pricing.Rule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, row.ToEngineRule())
	}

	if s.rc != nil {
		if bs, err := json.Marshal(rules); err == nil {
			ttl := s.cacheConfig.DefaultTTL
			if ttl <= 0 {
				ttl = utils.PricingRulesCacheTTL
			}
			_ = s.rc.Set(ctx, cacheKey, bs, ttl).Err()
		}
	}

	return rules, false
}
