package repository

import (
	"context"
	"errors"

	"github.com/peakcrest/roofline/models"
	"gorm.io/gorm"
)

// QuickEstimateRepositoryImpl implements QuickEstimateRepository
type QuickEstimateRepositoryImpl struct {
	*BaseRepository[models.QuickEstimate, models.QuickEstimateFilter]
}

// NewQuickEstimateRepository creates a new repository for quick estimates
func NewQuickEstimateRepository(db *gorm.DB) QuickEstimateRepository {
	return &QuickEstimateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.QuickEstimate, models.QuickEstimateFilter](db),
	}
}

// CurrentByLead returns the single non-superseded quick estimate for a
// lead, or nil when none exists yet.
func (r *QuickEstimateRepositoryImpl) CurrentByLead(ctx context.Context, leadID uint) (*models.QuickEstimate, error) {
	db := r.getDB(ctx)

	var estimate models.QuickEstimate
	err := db.Where("lead_id = ? AND is_superseded = ?", leadID, false).
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

// SupersedeAndInsert marks every prior quick estimate for the lead as
// superseded, assigns the next version number and inserts the new row,
// all in one transaction. When two calls race to the same version the
// (lead_id, version) unique index fails the second insert with
// gorm.ErrDuplicatedKey; callers retry or report a conflict, so at most
// one non-superseded row per lead ever exists.
func (r *QuickEstimateRepositoryImpl) SupersedeAndInsert(ctx context.Context, estimate *models.QuickEstimate) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		tx := r.getDB(txCtx)

		var maxVersion int64
		err := tx.Model(&models.QuickEstimate{}).
			Where("lead_id = ?", estimate.LeadID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error
		if err != nil {
			return err
		}

		err = tx.Model(&models.QuickEstimate{}).
			Where("lead_id = ? AND is_superseded = ?", estimate.LeadID, false).
			Update("is_superseded", true).Error
		if err != nil {
			return err
		}

		estimate.Version = int(maxVersion) + 1
		estimate.IsSuperseded = false
		return tx.Create(estimate).Error
	})
}

// applyFilter applies filter conditions to the GORM query
func (r *QuickEstimateRepositoryImpl) applyFilter(db *gorm.DB, filter models.QuickEstimateFilter) *gorm.DB {
	if filter.LeadID != nil {
		db = db.Where("lead_id = ?", *filter.LeadID)
	}
	if filter.IsSuperseded != nil {
		db = db.Where("is_superseded = ?", *filter.IsSuperseded)
	}
	return db
}

// ByFilter retrieves quick estimates based on filter criteria.
func (r *QuickEstimateRepositoryImpl) ByFilter(ctx context.Context, filter models.QuickEstimateFilter, orderBy string, limit, offset int) ([]*models.QuickEstimate, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.QuickEstimate{}), filter)

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

	var rows []*models.QuickEstimate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of quick estimates matching the filter.
func (r *QuickEstimateRepositoryImpl) Count(ctx context.Context, filter models.QuickEstimateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.QuickEstimate{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any quick estimate matching the filter exists.
func (r *QuickEstimateRepositoryImpl) Exists(ctx context.Context, filter models.QuickEstimateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
