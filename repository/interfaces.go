// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/bannerhive/bannerhive/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// TagRepository defines operations for the tag registry
type TagRepository interface {
	Repository[models.Tag, models.TagFilter]
	ListByIDs(ctx context.Context, ids []uint) ([]*models.Tag, error)
}

// FeatureRepository defines operations for the feature registry
type FeatureRepository interface {
	Repository[models.Feature, models.FeatureFilter]
}

// BannerRepository defines operations for banners
type BannerRepository interface {
	Repository[models.Banner, models.BannerFilter]
	// ResolveActiveByTagAndFeature returns the active banner associated with the
	// (tag, feature) pair. When several banners are linked to the same pair under
	// different association rows, the most recently updated one wins.
	ResolveActiveByTagAndFeature(ctx context.Context, tagID, featureID uint) (*models.Banner, error)
	Update(ctx context.Context, banner *models.Banner) error
	Delete(ctx context.Context, id uint) error
}

// BannerTagFeatureRepository defines operations for the association index
type BannerTagFeatureRepository interface {
	Repository[models.BannerTagFeature, models.BannerTagFeatureFilter]
	ListByBanner(ctx context.Context, bannerID uint) ([]*models.BannerTagFeature, error)
	DeleteByBanner(ctx context.Context, bannerID uint) error
	UpdateFeatureByBanner(ctx context.Context, bannerID, featureID uint) error
}

// UserProfileRepository defines operations for banner-service consumer profiles
type UserProfileRepository interface {
	Repository[models.UserProfile, models.UserProfileFilter]
	ByUserID(ctx context.Context, userID uint) (*models.UserProfile, error)
	Update(ctx context.Context, profile *models.UserProfile) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
}
