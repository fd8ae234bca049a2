package dto

// UserProfileDTO represents a banner-service consumer profile in responses
type UserProfileDTO struct {
	UserID          uint   `json:"user_id"`
	UseLastRevision bool   `json:"use_last_revision"`
	LastTagID       *uint  `json:"last_tag_id,omitempty"`
	LastFeatureID   *uint  `json:"last_feature_id,omitempty"`
	LastResolvedAt  string `json:"last_resolved_at,omitempty"`
}

// GetUserProfileResponse represents the response to fetch the caller's profile
type GetUserProfileResponse struct {
	Message string         `json:"message"`
	Profile UserProfileDTO `json:"profile"`
}

// UpdateUserProfileRequest updates the caller's lookup-mode preference
type UpdateUserProfileRequest struct {
	UserID          uint  `json:"-"`
	UseLastRevision *bool `json:"use_last_revision" validate:"required"`
}

// UpdateUserProfileResponse represents the response to a profile update
type UpdateUserProfileResponse struct {
	Message string         `json:"message"`
	Profile UserProfileDTO `json:"profile"`
}
