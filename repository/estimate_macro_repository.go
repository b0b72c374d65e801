package repository

import (
	"context"
	"errors"

	"github.com/peakcrest/roofline/models"
	"gorm.io/gorm"
)

// EstimateMacroRepositoryImpl implements EstimateMacroRepository
type EstimateMacroRepositoryImpl struct {
	*BaseRepository[models.EstimateMacro, models.EstimateMacroFilter]
}

// NewEstimateMacroRepository creates a new repository for estimate macros
func NewEstimateMacroRepository(db *gorm.DB) EstimateMacroRepository {
	return &EstimateMacroRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EstimateMacro, models.EstimateMacroFilter](db),
	}
}

// WithItems retrieves a macro with its line item associations and their
// catalog entries preloaded, in sort order.
func (r *EstimateMacroRepositoryImpl) WithItems(ctx context.Context, macroID uint) (*models.EstimateMacro, error) {
	db := r.getDB(ctx)

	var macro models.EstimateMacro
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("macro_line_items.sort_order, macro_line_items.id")
	}).Preload("Items.LineItem").Last(&macro, macroID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &macro, nil
}

// AddItem appends a line item association to a macro. The unique
// (macro_id, line_item_id) index rejects duplicate pairs.
func (r *EstimateMacroRepositoryImpl) AddItem(ctx context.Context, item *models.MacroLineItem) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Create(item).Error
	return err
}

// RemoveItem deletes a (macro, line item) association.
func (r *EstimateMacroRepositoryImpl) RemoveItem(ctx context.Context, macroID, lineItemID uint) error {
	db := r.getDB(ctx)

	return db.Where("macro_id = ? AND line_item_id = ?", macroID, lineItemID).
		Delete(&models.MacroLineItem{}).Error
}

// PairExists reports whether the macro already references the line item.
func (r *EstimateMacroRepositoryImpl) PairExists(ctx context.Context, macroID, lineItemID uint) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.MacroLineItem{}).
		Where("macro_id = ? AND line_item_id = ?", macroID, lineItemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *EstimateMacroRepositoryImpl) applyFilter(db *gorm.DB, filter models.EstimateMacroFilter) *gorm.DB {
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.JobType != nil {
		db = db.Where("job_type = ?", *filter.JobType)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves macros based on filter criteria.
func (r *EstimateMacroRepositoryImpl) ByFilter(ctx context.Context, filter models.EstimateMacroFilter, orderBy string, limit, offset int) ([]*models.EstimateMacro, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EstimateMacro{}), filter)

	if orderBy == "" {
		orderBy = "name"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.EstimateMacro
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of macros matching the filter.
func (r *EstimateMacroRepositoryImpl) Count(ctx context.Context, filter models.EstimateMacroFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EstimateMacro{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any macro matching the filter exists.
func (r *EstimateMacroRepositoryImpl) Exists(ctx context.Context, filter models.EstimateMacroFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
