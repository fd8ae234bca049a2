package repository

import (
	"context"
	"errors"

	"github.com/bannerhive/bannerhive/models"
	"gorm.io/gorm"
)

// BannerTagFeatureRepositoryImpl implements BannerTagFeatureRepository interface
type BannerTagFeatureRepositoryImpl struct {
	*BaseRepository[models.BannerTagFeature, models.BannerTagFeatureFilter]
}

// NewBannerTagFeatureRepository creates a new association repository
func NewBannerTagFeatureRepository(db *gorm.DB) BannerTagFeatureRepository {
	return &BannerTagFeatureRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BannerTagFeature, models.BannerTagFeatureFilter](db),
	}
}

// ByID retrieves an association by its ID
func (r *BannerTagFeatureRepositoryImpl) ByID(ctx context.Context, id uint) (*models.BannerTagFeature, error) {
	db := r.getDB(ctx)
	var row models.BannerTagFeature
	if err := db.Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByBanner retrieves all associations of a banner
func (r *BannerTagFeatureRepositoryImpl) ListByBanner(ctx context.Context, bannerID uint) ([]*models.BannerTagFeature, error) {
	db := r.getDB(ctx)
	var rows []*models.BannerTagFeature
	if err := db.Model(&models.BannerTagFeature{}).Where("banner_id = ?", bannerID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByBanner removes every association of a banner
func (r *BannerTagFeatureRepositoryImpl) DeleteByBanner(ctx context.Context, bannerID uint) error {
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

	err = db.Where("banner_id = ?", bannerID).Delete(&models.BannerTagFeature{}).Error
	return err
}

// UpdateFeatureByBanner migrates every association of a banner to a new feature
func (r *BannerTagFeatureRepositoryImpl) UpdateFeatureByBanner(ctx context.Context, bannerID, featureID uint) error {
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

	err = db.Model(&models.BannerTagFeature{}).
		Where("banner_id = ?", bannerID).
		Update("feature_id", featureID).Error
	return err
}

func (r *BannerTagFeatureRepositoryImpl) applyFilter(query *gorm.DB, filter models.BannerTagFeatureFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.TagID != nil {
		query = query.Where("tag_id = ?", *filter.TagID)
	}
	if filter.BannerID != nil {
		query = query.Where("banner_id = ?", *filter.BannerID)
	}
	if filter.FeatureID != nil {
		query = query.Where("feature_id = ?", *filter.FeatureID)
	}
	return query
}

// ByFilter retrieves associations based on filter criteria
func (r *BannerTagFeatureRepositoryImpl) ByFilter(ctx context.Context, filter models.BannerTagFeatureFilter, orderBy string, limit, offset int) ([]*models.BannerTagFeature, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.BannerTagFeature{})

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

	var rows []*models.BannerTagFeature
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of associations matching the filter
func (r *BannerTagFeatureRepositoryImpl) Count(ctx context.Context, filter models.BannerTagFeatureFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.BannerTagFeature{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any association matching the filter exists
func (r *BannerTagFeatureRepositoryImpl) Exists(ctx context.Context, filter models.BannerTagFeatureFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
