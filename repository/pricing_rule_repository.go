package repository

import (
	"context"
	"errors"

	"github.com/peakcrest/roofline/models"
	"gorm.io/gorm"
)

// PricingRuleRepositoryImpl implements PricingRuleRepository
type PricingRuleRepositoryImpl struct {
	*BaseRepository[models.PricingRule, models.PricingRuleFilter]
}

// NewPricingRuleRepository creates a new repository for pricing rules
func NewPricingRuleRepository(db *gorm.DB) PricingRuleRepository {
	return &PricingRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PricingRule, models.PricingRuleFilter](db),
	}
}

// ByRuleKey retrieves a rule by its unique key.
func (r *PricingRuleRepositoryImpl) ByRuleKey(ctx context.Context, ruleKey string) (*models.PricingRule, error) {
	db := r.getDB(ctx)

	var rule models.PricingRule
	err := db.Where("rule_key = ?", ruleKey).Last(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListActive returns all active rules ordered by category then match value
// so content-equal rule sets always come back in the same order.
func (r *PricingRuleRepositoryImpl) ListActive(ctx context.Context) ([]*models.PricingRule, error) {
	db := r.getDB(ctx)

	var rows []*models.PricingRule
	err := db.Where("is_active = ?", true).
		Order("rule_category, match_value").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveByCategoryAndMatch returns the active rule for a (category, match)
// pair, or nil when none exists.
func (r *PricingRuleRepositoryImpl) ActiveByCategoryAndMatch(ctx context.Context, category, matchValue string) (*models.PricingRule, error) {
	db := r.getDB(ctx)

	var rule models.PricingRule
	err := db.Where("rule_category = ? AND match_value = ? AND is_active = ?", category, matchValue, true).
		Last(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PricingRuleRepositoryImpl) applyFilter(db *gorm.DB, filter models.PricingRuleFilter) *gorm.DB {
	if filter.RuleKey != nil {
		db = db.Where("rule_key = ?", *filter.RuleKey)
	}
	if filter.RuleCategory != nil {
		db = db.Where("rule_category = ?", *filter.RuleCategory)
	}
	if filter.MatchValue != nil {
		db = db.Where("match_value = ?", *filter.MatchValue)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves pricing rules based on filter criteria.
func (r *PricingRuleRepositoryImpl) ByFilter(ctx context.Context, filter models.PricingRuleFilter, orderBy string, limit, offset int) ([]*models.PricingRule, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PricingRule{}), filter)

	if orderBy == "" {
		orderBy = "rule_category, match_value"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PricingRule
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of pricing rules matching the filter.
func (r *PricingRuleRepositoryImpl) Count(ctx context.Context, filter models.PricingRuleFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PricingRule{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any pricing rule matching the filter exists.
func (r *PricingRuleRepositoryImpl) Exists(ctx context.Context, filter models.PricingRuleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
