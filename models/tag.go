// Package models contains domain entities and business models for the banner service
package models

import "time"

// Tag represents an audience segment dimension of the banner lookup key
// Table: tags
// Rows are identity-only; a tag must not be deleted while referenced by a live association
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_tags_created_at" json:"created_at"`
}

func (Tag) TableName() string { return "tags" }

// TagFilter represents filter criteria for tag queries
type TagFilter struct {
	ID            *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
