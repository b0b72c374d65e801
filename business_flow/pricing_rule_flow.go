// Package businessflow contains the core business logic and use cases for pricing rule administration
package businessflow

import (
	"context"

	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/config"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/pricing"
	"github.com/peakcrest/roofline/repository"
	"github.com/peakcrest/roofline/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PricingRuleFlow handles quick-engine rule administration
type PricingRuleFlow interface {
	CreateRule(ctx context.Context, req *dto.AdminCreatePricingRuleRequest, metadata *ClientMetadata) (*dto.AdminPricingRuleResponse, error)
	UpdateRule(ctx context.Context, req *dto.AdminUpdatePricingRuleRequest, metadata *ClientMetadata) (*dto.AdminPricingRuleResponse, error)
	ListRules(ctx context.Context, req *dto.AdminListPricingRulesRequest) (*dto.AdminListPricingRulesResponse, error)
}

// PricingRuleFlowImpl implements the pricing rule business flow
type PricingRuleFlowImpl struct {
	ruleRepo    repository.PricingRuleRepository
	cacheConfig *config.CacheConfig
	rc          *redis.Client
	db          *gorm.DB
}

// NewPricingRuleFlow creates a new pricing rule flow instance
func NewPricingRuleFlow(
	ruleRepo repository.PricingRuleRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) PricingRuleFlow {
	return &PricingRuleFlowImpl{
		ruleRepo:    ruleRepo,
		cacheConfig: cacheConfig,
		rc:          rc,
		db:          db,
	}
}

// CreateRule adds an active rule. Within a category at most one active
// rule may exist per match value; a second one is a conflict.
func (s *PricingRuleFlowImpl) CreateRule(ctx context.Context, req *dto.AdminCreatePricingRuleRequest, metadata *ClientMetadata) (*dto.AdminPricingRuleResponse, error) {
	if err := validateRuleOperands(req.Kind, req.BaseRate, req.Multiplier, req.FlatFee); err != nil {
		return nil, NewBusinessError("RULE_VALIDATION_FAILED", "Rule operands do not match the rule kind", err)
	}

	var rule *models.PricingRule
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.ruleRepo.ByRuleKey(txCtx, req.RuleKey)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrPricingRuleKeyExists
		}

		active, err := s.ruleRepo.ActiveByCategoryAndMatch(txCtx, req.RuleCategory, req.MatchValue)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrActiveRuleConflict
		}

		rule = &models.PricingRule{
			RuleKey:      req.RuleKey,
			RuleCategory: req.RuleCategory,
			Kind:         req.Kind,
			Label:        req.Label,
			MatchValue:   req.MatchValue,

			BaseRate:   req.BaseRate,
			Unit:       req.Unit,
			Multiplier: req.Multiplier,
			FlatFee:    req.FlatFee,

			MinCharge: req.MinCharge,
			MaxCharge: req.MaxCharge,

			IsActive: utils.ToPtr(true),

			CreatedAt: utils.UTCNow(),
			UpdatedAt: utils.UTCNow(),
		}
		return s.ruleRepo.Save(txCtx, rule)
	})
	if err != nil {
		return nil, NewBusinessError("RULE_CREATION_FAILED", "Pricing rule creation failed", err)
	}

	s.invalidateRuleCache(ctx)

	return &dto.AdminPricingRuleResponse{
		Message: "Pricing rule created successfully",
		Rule:    ToPricingRuleDTO(*rule),
	}, nil
}

// UpdateRule applies partial changes to a rule. Re-activating a rule
// re-checks the one-active-per-(category, match) invariant.
func (s *PricingRuleFlowImpl) UpdateRule(ctx context.Context, req *dto.AdminUpdatePricingRuleRequest, metadata *ClientMetadata) (*dto.AdminPricingRuleResponse, error) {
	if req.Label == nil && req.BaseRate == nil && req.Unit == nil && req.Multiplier == nil &&
		req.FlatFee == nil && req.MinCharge == nil && req.MaxCharge == nil && req.IsActive == nil {
		return nil, NewBusinessError("RULE_UPDATE_VALIDATION_FAILED", "Nothing to update", ErrPricingRuleUpdateMissing)
	}

	var rule *models.PricingRule
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		rule, err = s.ruleRepo.ByRuleKey(txCtx, req.RuleKey)
		if err != nil {
			return err
		}
		if rule == nil {
			return ErrPricingRuleNotFound
		}

		if req.IsActive != nil && *req.IsActive && !utils.IsTrue(rule.IsActive) {
			active, err := s.ruleRepo.ActiveByCategoryAndMatch(txCtx, rule.RuleCategory, rule.MatchValue)
			if err != nil {
				return err
			}
			if active != nil && active.ID != rule.ID {
				return ErrActiveRuleConflict
			}
		}

		if req.Label != nil {
			rule.Label = *req.Label
		}
		if req.BaseRate != nil {
			rule.BaseRate = *req.BaseRate
		}
		if req.Unit != nil {
			rule.Unit = *req.Unit
		}
		if req.Multiplier != nil {
			rule.Multiplier = *req.Multiplier
		}
		if req.FlatFee != nil {
			rule.FlatFee = *req.FlatFee
		}
		if req.MinCharge != nil {
			rule.MinCharge = req.MinCharge
		}
		if req.MaxCharge != nil {
			rule.MaxCharge = req.MaxCharge
		}
		if req.IsActive != nil {
			rule.IsActive = req.IsActive
		}
		rule.UpdatedAt = utils.UTCNow()

		if err := validateRuleOperands(rule.Kind, rule.BaseRate, rule.Multiplier, rule.FlatFee); err != nil {
			return err
		}
		return s.ruleRepo.Update(txCtx, rule)
	})
	if err != nil {
		return nil, NewBusinessError("RULE_UPDATE_FAILED", "Pricing rule update failed", err)
	}

	s.invalidateRuleCache(ctx)

	return &dto.AdminPricingRuleResponse{
		Message: "Pricing rule updated successfully",
		Rule:    ToPricingRuleDTO(*rule),
	}, nil
}

// ListRules returns rules filtered by category and active flag.
func (s *PricingRuleFlowImpl) ListRules(ctx context.Context, req *dto.AdminListPricingRulesRequest) (*dto.AdminListPricingRulesResponse, error) {
	filter := models.PricingRuleFilter{
		RuleCategory: req.RuleCategory,
		IsActive:     req.IsActive,
	}
	rows, err := s.ruleRepo.ByFilter(ctx, filter, "rule_category, match_value", 0, 0)
	if err != nil {
		return nil, NewBusinessError("RULE_LIST_FAILED", "Failed to list pricing rules", err)
	}

	items := make([]dto.PricingRuleDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToPricingRuleDTO(*row))
	}

	return &dto.AdminListPricingRulesResponse{
		Message: "Pricing rules retrieved successfully",
		Items:   items,
	}, nil
}

// validateRuleOperands checks that the operand matching the kind is set.
func validateRuleOperands(kind string, baseRate, multiplier, flatFee float64) error {
	switch pricing.RuleKind(kind) {
	case pricing.RuleKindBaseRate:
		if baseRate <= 0 {
			return ErrPricingRuleKindMismatch
		}
	case pricing.RuleKindMultiplier:
		if multiplier <= 0 {
			return ErrPricingRuleKindMismatch
		}
	case pricing.RuleKindFlatFee:
		if flatFee <= 0 {
			return ErrPricingRuleKindMismatch
		}
	}
	return nil
}

func (s *PricingRuleFlowImpl) invalidateRuleCache(ctx context.Context) {
	if s.rc == nil {
		return
	}
	_ = s.rc.Del(ctx, redisKey(*s.cacheConfig, utils.PricingRulesCacheKey)).Err()
}
