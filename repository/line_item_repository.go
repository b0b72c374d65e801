package repository

import (
	"context"
	"errors"

	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/utils"
	"gorm.io/gorm"
)

// LineItemRepositoryImpl implements LineItemRepository
type LineItemRepositoryImpl struct {
	*BaseRepository[models.LineItem, models.LineItemFilter]
}

// NewLineItemRepository creates a new repository for catalog line items
func NewLineItemRepository(db *gorm.DB) LineItemRepository {
	return &LineItemRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LineItem, models.LineItemFilter](db),
	}
}

// ByItemCode retrieves a line item by its unique code.
func (r *LineItemRepositoryImpl) ByItemCode(ctx context.Context, itemCode string) (*models.LineItem, error) {
	db := r.getDB(ctx)

	var item models.LineItem
	err := db.Where("item_code = ?", itemCode).Last(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListActive returns all active catalog items.
func (r *LineItemRepositoryImpl) ListActive(ctx context.Context) ([]*models.LineItem, error) {
	db := r.getDB(ctx)

	var rows []*models.LineItem
	err := db.Where("is_active = ?", true).
		Order("category, item_code").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Deactivate soft-deletes a catalog item. Rows are never hard-deleted
// because estimate line items keep referencing them.
func (r *LineItemRepositoryImpl) Deactivate(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	return db.Model(&models.LineItem{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": utils.UTCNow()}).Error
}

// applyFilter applies filter conditions to the GORM query
func (r *LineItemRepositoryImpl) applyFilter(db *gorm.DB, filter models.LineItemFilter) *gorm.DB {
	if filter.ItemCode != nil {
		db = db.Where("item_code = ?", *filter.ItemCode)
	}
	if filter.Category != nil {
		db = db.Where("category = ?", *filter.Category)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves line items based on filter criteria.
func (r *LineItemRepositoryImpl) ByFilter(ctx context.Context, filter models.LineItemFilter, orderBy string, limit, offset int) ([]*models.LineItem, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LineItem{}), filter)

	if orderBy == "" {
		orderBy = "category, item_code"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.LineItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of line items matching the filter.
func (r *LineItemRepositoryImpl) Count(ctx context.Context, filter models.LineItemFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LineItem{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any line item matching the filter exists.
func (r *LineItemRepositoryImpl) Exists(ctx context.Context, filter models.LineItemFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
