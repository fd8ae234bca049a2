package repository

import (
	"context"
	"errors"

	"github.com/bannerhive/bannerhive/models"
	"gorm.io/gorm"
)

// FeatureRepositoryImpl implements FeatureRepository interface
type FeatureRepositoryImpl struct {
	*BaseRepository[models.Feature, models.FeatureFilter]
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(db *gorm.DB) FeatureRepository {
	return &FeatureRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Feature, models.FeatureFilter](db),
	}
}

// ByID retrieves a feature by its ID
func (r *FeatureRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Feature, error) {
	db := r.getDB(ctx)
	var row models.Feature
	if err := db.Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *FeatureRepositoryImpl) applyFilter(query *gorm.DB, filter models.FeatureFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves features based on filter criteria
func (r *FeatureRepositoryImpl) ByFilter(ctx context.Context, filter models.FeatureFilter, orderBy string, limit, offset int) ([]*models.Feature, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Feature{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Feature
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of features matching the filter
func (r *FeatureRepositoryImpl) Count(ctx context.Context, filter models.FeatureFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Feature{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any feature matching the filter exists
func (r *FeatureRepositoryImpl) Exists(ctx context.Context, filter models.FeatureFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
