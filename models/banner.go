package models

import (
	"encoding/json"
	"time"
)

// Banner owns a JSON content document and belongs to exactly one feature.
// Table: banners
// updated_at advances on every content or activation change; created_at is immutable.
type Banner struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Content   json.RawMessage `gorm:"type:jsonb;not null;default:'{}'" json:"content"`
	IsActive  *bool           `gorm:"not null;default:true;index:idx_banners_is_active" json:"is_active"`
	FeatureID uint            `gorm:"not null;index:idx_banners_feature_id" json:"feature_id"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_banners_created_at" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Feature      *Feature           `gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE" json:"feature,omitempty"`
	Associations []BannerTagFeature `gorm:"foreignKey:BannerID" json:"associations,omitempty"`
}

func (Banner) TableName() string { return "banners" }

// BannerFilter represents filter criteria for banner queries
type BannerFilter struct {
	ID            *uint
	TagID         *uint
	FeatureID     *uint
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
