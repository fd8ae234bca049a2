package models

import (
	"encoding/json"
	"time"
)

// UserProfile is one banner-service consumer: a lookup-mode preference plus the
// per-(user, tag) resolution snapshot backing the last-revision consistency mode.
// Table: user_profiles
// UserID is the stable identifier supplied by the identity provider (1:1).
// LastTagID is a non-owning back-reference used only for revision comparison; it is
// nulled, not cascaded, when the tag goes away.
type UserProfile struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;uniqueIndex:uk_user_profiles_user_id" json:"user_id"`
	UseLastRevision *bool           `gorm:"not null;default:false" json:"use_last_revision"`
	LastTagID       *uint           `gorm:"index:idx_user_profiles_last_tag_id" json:"last_tag_id,omitempty"`
	LastFeatureID   *uint           `json:"last_feature_id,omitempty"`
	LastContent     json.RawMessage `gorm:"type:jsonb" json:"last_content,omitempty"`
	LastResolvedAt  *time.Time      `json:"last_resolved_at,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	LastTag *Tag `gorm:"foreignKey:LastTagID;constraint:OnDelete:SET NULL" json:"last_tag,omitempty"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// HasSnapshotFor reports whether the profile holds a usable snapshot for the given tag.
func (p *UserProfile) HasSnapshotFor(tagID uint) bool {
	return p.LastTagID != nil && *p.LastTagID == tagID && len(p.LastContent) > 0
}

// UserProfileFilter represents filter criteria for user profile queries
type UserProfileFilter struct {
	ID              *uint
	UserID          *uint
	UseLastRevision *bool
	LastTagID       *uint
}
