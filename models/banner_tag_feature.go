package models

// BannerTagFeature is the association index resolving (tag, feature) lookups to a banner.
// Table: banner_tag_features
// The (tag_id, banner_id, feature_id) triple is globally unique; rows exist only while all
// three referenced entities exist (FKs cascade on delete).
type BannerTagFeature struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TagID     uint `gorm:"not null;uniqueIndex:uk_banner_tag_feature;index:idx_btf_tag_feature,priority:1" json:"tag_id"`
	BannerID  uint `gorm:"not null;uniqueIndex:uk_banner_tag_feature" json:"banner_id"`
	FeatureID uint `gorm:"not null;uniqueIndex:uk_banner_tag_feature;index:idx_btf_tag_feature,priority:2" json:"feature_id"`

	// Relationships
	Tag     *Tag     `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
	Banner  *Banner  `gorm:"foreignKey:BannerID;constraint:OnDelete:CASCADE" json:"banner,omitempty"`
	Feature *Feature `gorm:"foreignKey:FeatureID;constraint:OnDelete:CASCADE" json:"feature,omitempty"`
}

func (BannerTagFeature) TableName() string { return "banner_tag_features" }

// BannerTagFeatureFilter represents filter criteria for association queries
type BannerTagFeatureFilter struct {
	ID        *uint
	TagID     *uint
	BannerID  *uint
	FeatureID *uint
}
