package models

import "time"

// Feature represents the product surface dimension of the banner lookup key
// Table: features
// Deleting a feature cascades to its banners and their associations
type Feature struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_features_created_at" json:"created_at"`
}

func (Feature) TableName() string { return "features" }

// FeatureFilter represents filter criteria for feature queries
type FeatureFilter struct {
	ID            *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
