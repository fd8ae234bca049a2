package dto

import "encoding/json"

// BannerDTO represents a full banner representation in responses
type BannerDTO struct {
	ID        uint            `json:"id"`
	Content   json.RawMessage `json:"content"`
	IsActive  bool            `json:"is_active"`
	FeatureID uint            `json:"feature_id"`
	TagIDs    []uint          `json:"tag_ids"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// ResolveBannerRequest represents a user's banner lookup for a (tag, feature) pair
type ResolveBannerRequest struct {
	UserID          uint  `json:"-"`
	TagID           *uint `json:"tag_id" validate:"omitempty,min=1"`
	FeatureID       *uint `json:"feature_id" validate:"omitempty,min=1"`
	UseLastRevision *bool `json:"use_last_revision,omitempty"`
}

// ResolveBannerResponse carries the resolved content and resolution provenance
type ResolveBannerResponse struct {
	Content      json.RawMessage `json:"content"`
	BannerID     *uint           `json:"banner_id,omitempty"`
	FromSnapshot bool            `json:"from_snapshot"`
	ResolvedAt   string          `json:"resolved_at"`
}

// CreateBannerRequest represents the request to create a new banner with its associations
type CreateBannerRequest struct {
	UserID    uint            `json:"-"`
	Content   json.RawMessage `json:"content" validate:"required"`
	FeatureID *uint           `json:"feature_id" validate:"required,min=1"`
	TagIDs    []uint          `json:"tag_ids" validate:"required,min=1,dive,min=1"`
	IsActive  *bool           `json:"is_active,omitempty"`
}

// CreateBannerResponse represents the response to create a new banner
type CreateBannerResponse struct {
	Message  string `json:"message"`
	BannerID uint   `json:"banner_id"`
}

// UpdateBannerRequest represents a partial banner update.
// Pointer fields distinguish "omitted" from "set"; a nil TagIDs preserves the
// current association set, a present one replaces it wholesale.
type UpdateBannerRequest struct {
	ID        uint            `json:"-"`
	UserID    uint            `json:"-"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsActive  *bool           `json:"is_active,omitempty"`
	FeatureID *uint           `json:"feature_id,omitempty" validate:"omitempty,min=1"`
	TagIDs    *[]uint         `json:"tag_ids,omitempty"`
}

// UpdateBannerResponse represents the response to update an existing banner
type UpdateBannerResponse struct {
	Message string    `json:"message"`
	Banner  BannerDTO `json:"banner"`
}

// GetBannerResponse represents the response to fetch one banner
type GetBannerResponse struct {
	Message string    `json:"message"`
	Banner  BannerDTO `json:"banner"`
}

// ListBannersRequest represents a paginated banner list request with optional filters
type ListBannersRequest struct {
	TagID     *uint `json:"tag_id,omitempty" validate:"omitempty,min=1"`
	FeatureID *uint `json:"feature_id,omitempty" validate:"omitempty,min=1"`
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
}

// ListBannersResponse represents a paginated list of banners
type ListBannersResponse struct {
	Message    string         `json:"message"`
	Items      []BannerDTO    `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}
