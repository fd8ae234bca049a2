package businessflow

import (
	"context"
	"time"

	"github.com/bannerhive/bannerhive/app/dto"
	"github.com/bannerhive/bannerhive/models"
	"github.com/bannerhive/bannerhive/repository"
	"github.com/bannerhive/bannerhive/utils"
	"gorm.io/gorm"
)

// UserProfileFlow handles lookup-mode preference management for service consumers
type UserProfileFlow interface {
	GetProfile(ctx context.Context, userID uint) (*dto.GetUserProfileResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateUserProfileRequest, metadata *ClientMetadata) (*dto.UpdateUserProfileResponse, error)
}

type UserProfileFlowImpl struct {
	profileRepo repository.UserProfileRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

func NewUserProfileFlow(
	profileRepo repository.UserProfileRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) UserProfileFlow {
	return &UserProfileFlowImpl{
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// GetProfile retrieves the caller's profile
func (s *UserProfileFlowImpl) GetProfile(ctx context.Context, userID uint) (*dto.GetUserProfileResponse, error) {
	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to get user profile", err)
	}
	if profile == nil {
		return nil, ErrUserProfileNotFound
	}

	return &dto.GetUserProfileResponse{
		Message: "Profile retrieved successfully",
		Profile: toUserProfileDTO(profile),
	}, nil
}

// UpdateProfile upserts the caller's profile with the new lookup-mode preference
func (s *UserProfileFlowImpl) UpdateProfile(ctx context.Context, req *dto.UpdateUserProfileRequest, metadata *ClientMetadata) (*dto.UpdateUserProfileResponse, error) {
	var profile *models.UserProfile

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		profile, err = s.profileRepo.ByUserID(txCtx, req.UserID)
		if err != nil {
			return err
		}
		if profile == nil {
			useLast := req.UseLastRevision
			if useLast == nil {
				useLast = utils.ToPtr(false)
			}
			profile = &models.UserProfile{
				UserID:          req.UserID,
				UseLastRevision: useLast,
				CreatedAt:       utils.UTCNow(),
				UpdatedAt:       utils.UTCNow(),
			}
			return s.profileRepo.Save(txCtx, profile)
		}
		if req.UseLastRevision != nil {
			profile.UseLastRevision = req.UseLastRevision
		}
		profile.UpdatedAt = utils.UTCNow()
		return s.profileRepo.Update(txCtx, profile)
	})
	if err != nil {
		return nil, NewBusinessError("UPDATE_PROFILE_FAILED", "Failed to update user profile", err)
	}

	writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionProfileUpdated, "Profile preference updated", true, nil, metadata)

	return &dto.UpdateUserProfileResponse{
		Message: "Profile updated successfully",
		Profile: toUserProfileDTO(profile),
	}, nil
}

func toUserProfileDTO(profile *models.UserProfile) dto.UserProfileDTO {
	out := dto.UserProfileDTO{
		UserID:          profile.UserID,
		UseLastRevision: utils.IsTrue(profile.UseLastRevision),
		LastTagID:       profile.LastTagID,
		LastFeatureID:   profile.LastFeatureID,
	}
	if profile.LastResolvedAt != nil {
		out.LastResolvedAt = profile.LastResolvedAt.Format(time.RFC3339)
	}
	return out
}
