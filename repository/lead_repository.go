package repository

import (
	"context"
	"errors"

	"github.com/peakcrest/roofline/models"
	"gorm.io/gorm"
)

// LeadRepositoryImpl implements LeadRepository
type LeadRepositoryImpl struct {
	*BaseRepository[models.Lead, models.LeadFilter]
}

// NewLeadRepository creates a new repository for leads
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &LeadRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Lead, models.LeadFilter](db),
	}
}

// ByUUID retrieves a lead by its public UUID.
func (r *LeadRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Lead, error) {
	db := r.getDB(ctx)

	var lead models.Lead
	err := db.Where("uuid = ?", uuid).Last(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

// WithSlopes retrieves a lead with its roof sketch rows preloaded.
func (r *LeadRepositoryImpl) WithSlopes(ctx context.Context, leadID uint) (*models.Lead, error) {
	db := r.getDB(ctx)

	var lead models.Lead
	err := db.Preload("Slopes").Last(&lead, leadID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lead, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *LeadRepositoryImpl) applyFilter(db *gorm.DB, filter models.LeadFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.State != nil {
		db = db.Where("state = ?", *filter.State)
	}
	if filter.ZipCode != nil {
		db = db.Where("zip_code = ?", *filter.ZipCode)
	}
	if filter.JobType != nil {
		db = db.Where("job_type = ?", *filter.JobType)
	}
	return db
}

// ByFilter retrieves leads based on filter criteria.
func (r *LeadRepositoryImpl) ByFilter(ctx context.Context, filter models.LeadFilter, orderBy string, limit, offset int) ([]*models.Lead, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Lead{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Lead
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of leads matching the filter.
func (r *LeadRepositoryImpl) Count(ctx context.Context, filter models.LeadFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Lead{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any lead matching the filter exists.
func (r *LeadRepositoryImpl) Exists(ctx context.Context, filter models.LeadFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
