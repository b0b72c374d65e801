package repository

import (
	"context"
	"errors"

	"github.com/peakcrest/roofline/models"
	"gorm.io/gorm"
)

// GeographicPricingRepositoryImpl implements GeographicPricingRepository
type GeographicPricingRepositoryImpl struct {
	*BaseRepository[models.GeographicPricing, models.GeographicPricingFilter]
}

// NewGeographicPricingRepository creates a new repository for pricing regions
func NewGeographicPricingRepository(db *gorm.DB) GeographicPricingRepository {
	return &GeographicPricingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.GeographicPricing, models.GeographicPricingFilter](db),
	}
}

// ByZipCode returns the active region whose zip_codes array contains the
// given zip, or nil when no region claims it.
func (r *GeographicPricingRepositoryImpl) ByZipCode(ctx context.Context, zip string) (*models.GeographicPricing, error) {
	db := r.getDB(ctx)

	var region models.GeographicPricing
	err := db.Where("? = ANY(zip_codes) AND is_active = ?", zip, true).
		Order("id").
		First(&region).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &region, nil
}

// ListActive returns all active regions ordered by name.
func (r *GeographicPricingRepositoryImpl) ListActive(ctx context.Context) ([]*models.GeographicPricing, error) {
	db := r.getDB(ctx)

	var regions []*models.GeographicPricing
	err := db.Where("is_active = ?", true).
		Order("name").
		Find(&regions).Error
	if err != nil {
		return nil, err
	}
	return regions, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *GeographicPricingRepositoryImpl) applyFilter(db *gorm.DB, filter models.GeographicPricingFilter) *gorm.DB {
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.State != nil {
		db = db.Where("state = ?", *filter.State)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves pricing regions based on filter criteria.
func (r *GeographicPricingRepositoryImpl) ByFilter(ctx context.Context, filter models.GeographicPricingFilter, orderBy string, limit, offset int) ([]*models.GeographicPricing, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.GeographicPricing{}), filter)

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

	var rows []*models.GeographicPricing
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of pricing regions matching the filter.
func (r *GeographicPricingRepositoryImpl) Count(ctx context.Context, filter models.GeographicPricingFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.GeographicPricing{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any pricing region matching the filter exists.
func (r *GeographicPricingRepositoryImpl) Exists(ctx context.Context, filter models.GeographicPricingFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
