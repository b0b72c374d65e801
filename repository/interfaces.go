// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/peakcrest/roofline/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// LeadRepository defines operations for leads and their roof sketches
type LeadRepository interface {
	Repository[models.Lead, models.LeadFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Lead, error)
	WithSlopes(ctx context.Context, leadID uint) (*models.Lead, error)
}

// PricingRuleRepository defines operations for quick-engine pricing rules
type PricingRuleRepository interface {
	Repository[models.PricingRule, models.PricingRuleFilter]
	ByRuleKey(ctx context.Context, ruleKey string) (*models.PricingRule, error)
	ListActive(ctx context.Context) ([]*models.PricingRule, error)
	ActiveByCategoryAndMatch(ctx context.Context, category, matchValue string) (*models.PricingRule, error)
}

// LineItemRepository defines operations for the line item catalog
type LineItemRepository interface {
	Repository[models.LineItem, models.LineItemFilter]
	ByItemCode(ctx context.Context, itemCode string) (*models.LineItem, error)
	ListActive(ctx context.Context) ([]*models.LineItem, error)
	Deactivate(ctx context.Context, id uint) error
}

// EstimateMacroRepository defines operations for estimate macros
type EstimateMacroRepository interface {
	Repository[models.EstimateMacro, models.EstimateMacroFilter]
	WithItems(ctx context.Context, macroID uint) (*models.EstimateMacro, error)
	AddItem(ctx context.Context, item *models.MacroLineItem) error
	RemoveItem(ctx context.Context, macroID, lineItemID uint) error
	PairExists(ctx context.Context, macroID, lineItemID uint) (bool, error)
}

// QuickEstimateRepository defines operations for quick estimate snapshots
type QuickEstimateRepository interface {
	Repository[models.QuickEstimate, models.QuickEstimateFilter]
	CurrentByLead(ctx context.Context, leadID uint) (*models.QuickEstimate, error)
	SupersedeAndInsert(ctx context.Context, estimate *models.QuickEstimate) error
}

// DetailedEstimateRepository defines operations for detailed estimate snapshots
type DetailedEstimateRepository interface {
	Repository[models.DetailedEstimate, models.DetailedEstimateFilter]
	ByUUID(ctx context.Context, uuid string) (*models.DetailedEstimate, error)
	CurrentByLead(ctx context.Context, leadID uint) (*models.DetailedEstimate, error)
	SupersedeAndInsert(ctx context.Context, estimate *models.DetailedEstimate) error
	UpdateLineInclusion(ctx context.Context, estimate *models.DetailedEstimate, line *models.EstimateLineItem) error
	UpdateStatus(ctx context.Context, estimateID uint, status string) error
}

// GeographicPricingRepository defines operations for pricing regions
type GeographicPricingRepository interface {
	Repository[models.GeographicPricing, models.GeographicPricingFilter]
	ByZipCode(ctx context.Context, zipCode string) (*models.GeographicPricing, error)
	ListActive(ctx context.Context) ([]*models.GeographicPricing, error)
}
