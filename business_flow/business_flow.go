// Package businessflow contains the business logic for the banner service.
package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bannerhive/bannerhive/app/dto"
	"github.com/bannerhive/bannerhive/models"
	"github.com/bannerhive/bannerhive/repository"
	"github.com/bannerhive/bannerhive/utils"
)

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// ToBannerDTO converts a banner model plus its association rows to a response DTO
func ToBannerDTO(banner models.Banner, associations []*models.BannerTagFeature) dto.BannerDTO {
	tagIDs := make([]uint, 0, len(associations))
	for _, a := range associations {
		tagIDs = append(tagIDs, a.TagID)
	}

	return dto.BannerDTO{
		ID:        banner.ID,
		Content:   banner.Content,
		IsActive:  utils.IsTrue(banner.IsActive),
		FeatureID: banner.FeatureID,
		TagIDs:    tagIDs,
		CreatedAt: banner.CreatedAt.Format(time.RFC3339),
		UpdatedAt: banner.UpdatedAt.Format(time.RFC3339),
	}
}

// writeAuditLog appends an audit entry; failures are swallowed so the audit trail
// never fails the main operation.
func writeAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, userID *uint, action, description string, success bool, errMsg *string, metadata *ClientMetadata) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		ErrorMessage: errMsg,
		CreatedAt:    utils.UTCNow(),
	}

	if metadata != nil {
		if metadata.IPAddress != "" {
			entry.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			entry.UserAgent = &metadata.UserAgent
		}
		if metadata.RequestID != "" {
			entry.RequestID = &metadata.RequestID
		}
		if meta, err := json.Marshal(metadata); err == nil {
			entry.Metadata = meta
		}
	}

	// Audit writes run outside the caller's transaction so a rollback of the main
	// operation still leaves the failure on record.
	_ = auditRepo.Save(context.WithoutCancel(ctx), entry)
}
