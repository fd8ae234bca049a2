package repository

import (
	"context"
	"errors"

	"github.com/bannerhive/bannerhive/models"
	"gorm.io/gorm"
)

// BannerRepositoryImpl implements BannerRepository interface
type BannerRepositoryImpl struct {
	*BaseRepository[models.Banner, models.BannerFilter]
}

// NewBannerRepository creates a new banner repository
func NewBannerRepository(db *gorm.DB) BannerRepository {
	return &BannerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Banner, models.BannerFilter](db),
	}
}

// ByID retrieves a banner by its ID
func (r *BannerRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Banner, error) {
	db := r.getDB(ctx)
	var row models.Banner
	if err := db.Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ResolveActiveByTagAndFeature resolves the (tag, feature) pair to an active banner.
// The unique triple constraint does not prevent two banners sharing the same pair, so
// the newest updated_at wins deterministically.
func (r *BannerRepositoryImpl) ResolveActiveByTagAndFeature(ctx context.Context, tagID, featureID uint) (*models.Banner, error) {
	db := r.getDB(ctx)
	var row models.Banner
	err := db.Model(&models.Banner{}).
		Joins("JOIN banner_tag_features ON banner_tag_features.banner_id = banners.id").
		Where("banner_tag_features.tag_id = ? AND banner_tag_features.feature_id = ?", tagID, featureID).
		Where("banners.is_active = ?", true).
		Order("banners.updated_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Update persists changes to an existing banner row
func (r *BannerRepositoryImpl) Update(ctx context.Context, banner *models.Banner) error {
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

	err = db.Save(banner).Error
	return err
}

// Delete removes a banner row; association rows go with it via FK cascade
func (r *BannerRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.Banner{}, id).Error
	return err
}

func (r *BannerRepositoryImpl) applyFilter(query *gorm.DB, filter models.BannerFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("banners.id = ?", *filter.ID)
	}
	if filter.FeatureID != nil {
		query = query.Where("banners.feature_id = ?", *filter.FeatureID)
	}
	if filter.IsActive != nil {
		query = query.Where("banners.is_active = ?", *filter.IsActive)
	}
	if filter.TagID != nil {
		query = query.
			Joins("JOIN banner_tag_features ON banner_tag_features.banner_id = banners.id").
			Where("banner_tag_features.tag_id = ?", *filter.TagID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("banners.created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("banners.created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves banners based on filter criteria
func (r *BannerRepositoryImpl) ByFilter(ctx context.Context, filter models.BannerFilter, orderBy string, limit, offset int) ([]*models.Banner, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Banner{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "banners.id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Banner
	if err := query.Distinct("banners.*").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of banners matching the filter
func (r *BannerRepositoryImpl) Count(ctx context.Context, filter models.BannerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Banner{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Distinct("banners.id").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any banner matching the filter exists
func (r *BannerRepositoryImpl) Exists(ctx context.Context, filter models.BannerFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
