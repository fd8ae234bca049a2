package dto

// SeedRequest creates N identity rows in a dimension registry (tags or features)
type SeedRequest struct {
	UserID uint `json:"-"`
	Count  int  `json:"count" validate:"required,min=1,max=1000"`
}

// SeedResponse returns the ids created by a seed request
type SeedResponse struct {
	Message string `json:"message"`
	IDs     []uint `json:"ids"`
}

// RegistryItem is one identity row of a dimension registry
type RegistryItem struct {
	ID        uint   `json:"id"`
	CreatedAt string `json:"created_at"`
}

// ListRegistryRequest represents a paginated registry list request
type ListRegistryRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListRegistryResponse represents a paginated list of registry rows
type ListRegistryResponse struct {
	Message    string         `json:"message"`
	Items      []RegistryItem `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}
