package repository

import (
	"context"
	"errors"

	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/utils"
	"gorm.io/gorm"
)

// DetailedEstimateRepositoryImpl implements DetailedEstimateRepository
type DetailedEstimateRepositoryImpl struct {
	*BaseRepository[models.DetailedEstimate, models.DetailedEstimateFilter]
}

// NewDetailedEstimateRepository creates a new repository for detailed estimates
func NewDetailedEstimateRepository(db *gorm.DB) DetailedEstimateRepository {
	return &DetailedEstimateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DetailedEstimate, models.DetailedEstimateFilter](db),
	}
}

// ByUUID retrieves a detailed estimate with its lines by public UUID.
func (r *DetailedEstimateRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.DetailedEstimate, error) {
	db := r.getDB(ctx)

	var estimate models.DetailedEstimate
	err := db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("estimate_line_items.sort_order, estimate_line_items.id")
	}).Where("uuid = ?", uuid).Last(&estimate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &estimate, nil
}

// CurrentByLead returns the single non-superseded detailed estimate for
// a lead with its lines, or nil when none exists yet.
func (r *DetailedEstimateRepositoryImpl) CurrentByLead(ctx context.Context, leadID uint) (*models.DetailedEstimate, error) {
	db := r.getDB(ctx)

	var estimate models.DetailedEstimate
	err := db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("estimate_line_items.sort_order, estimate_line_items.id")
	}).Where("lead_id = ? AND is_superseded = ?", leadID, false).
		Order("version DESC").
		First(&estimate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &estimate, nil
}

// SupersedeAndInsert closes out every prior estimate for the lead and
// inserts the new version in one transaction. The estimate's line items
// are inserted with it; nothing is persisted if any step fails.
//
// Under read committed two concurrent calls can both compute the same
// next version; the (lead_id, version) unique index makes the loser's
// insert fail with gorm.ErrDuplicatedKey, which callers treat as a
// retryable conflict. Exactly one non-superseded row per lead survives.
func (r *DetailedEstimateRepositoryImpl) SupersedeAndInsert(ctx context.Context, estimate *models.DetailedEstimate) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		tx := r.getDB(txCtx)

		var maxVersion int64
		err := tx.Model(&models.DetailedEstimate{}).
			Where("lead_id = ?", estimate.LeadID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error
		if err != nil {
			return err
		}

		err = tx.Model(&models.DetailedEstimate{}).
			Where("lead_id = ? AND is_superseded = ?", estimate.LeadID, false).
			Updates(map[string]any{"is_superseded": true, "updated_at": utils.UTCNow()}).Error
		if err != nil {
			return err
		}

		estimate.Version = int(maxVersion) + 1
		estimate.IsSuperseded = false
		return tx.Create(estimate).Error
	})
}

// UpdateLineInclusion persists a toggled inclusion flag together with
// the estimate's recomputed totals in one transaction.
func (r *DetailedEstimateRepositoryImpl) UpdateLineInclusion(ctx context.Context, estimate *models.DetailedEstimate, line *models.EstimateLineItem) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		tx := r.getDB(txCtx)

		err := tx.Model(&models.EstimateLineItem{}).
			Where("id = ?", line.ID).
			Update("is_included", line.IsIncluded).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.DetailedEstimate{}).
			Where("id = ?", estimate.ID).
			Updates(map[string]any{
				"total_material":  estimate.TotalMaterial,
				"total_labor":     estimate.TotalLabor,
				"total_equipment": estimate.TotalEquipment,
				"subtotal":        estimate.Subtotal,
				"overhead_amount": estimate.OverheadAmount,
				"profit_amount":   estimate.ProfitAmount,
				"taxable_amount":  estimate.TaxableAmount,
				"tax_amount":      estimate.TaxAmount,
				"price_low":       estimate.PriceLow,
				"price_likely":    estimate.PriceLikely,
				"price_high":      estimate.PriceHigh,
				"updated_at":      utils.UTCNow(),
			}).Error
	})
}

// UpdateStatus transitions an estimate's status. Status changes never
// retrigger calculation.
func (r *DetailedEstimateRepositoryImpl) UpdateStatus(ctx context.Context, estimateID uint, status string) error {
	db := r.getDB(ctx)

	return db.Model(&models.DetailedEstimate{}).
		Where("id = ?", estimateID).
		Updates(map[string]any{"status": status, "updated_at": utils.UTCNow()}).Error
}

// applyFilter applies filter conditions to the GORM query
func (r *DetailedEstimateRepositoryImpl) applyFilter(db *gorm.DB, filter models.DetailedEstimateFilter) *gorm.DB {
	if filter.LeadID != nil {
		db = db.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.IsSuperseded != nil {
		db = db.Where("is_superseded = ?", *filter.IsSuperseded)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	return db
}

// ByFilter retrieves detailed estimates based on filter criteria.
func (r *DetailedEstimateRepositoryImpl) ByFilter(ctx context.Context, filter models.DetailedEstimateFilter, orderBy string, limit, offset int) ([]*models.DetailedEstimate, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DetailedEstimate{}), filter)

	if orderBy == "" {
		orderBy = "version DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.DetailedEstimate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of detailed estimates matching the filter.
func (r *DetailedEstimateRepositoryImpl) Count(ctx context.Context, filter models.DetailedEstimateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DetailedEstimate{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any detailed estimate matching the filter exists.
func (r *DetailedEstimateRepositoryImpl) Exists(ctx context.Context, filter models.DetailedEstimateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
