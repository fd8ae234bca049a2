package businessflow

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bannerhive/bannerhive/app/dto"
	"github.com/bannerhive/bannerhive/config"
	"github.com/bannerhive/bannerhive/models"
	"github.com/bannerhive/bannerhive/repository"
	"github.com/bannerhive/bannerhive/utils"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AdminBannerFlow provides use cases for banner administration
type AdminBannerFlow interface {
	CreateBanner(ctx context.Context, req *dto.CreateBannerRequest, metadata *ClientMetadata) (*dto.CreateBannerResponse, error)
	UpdateBanner(ctx context.Context, req *dto.UpdateBannerRequest, metadata *ClientMetadata) (*dto.UpdateBannerResponse, error)
	DeleteBanner(ctx context.Context, bannerID uint, userID uint, metadata *ClientMetadata) error
	ExportBanners(ctx context.Context) (string, []byte, error)
}

type AdminBannerFlowImpl struct {
	bannerRepo  repository.BannerRepository
	btfRepo     repository.BannerTagFeatureRepository
	tagRepo     repository.TagRepository
	featureRepo repository.FeatureRepository
	auditRepo   repository.AuditLogRepository
	cacheConfig *config.CacheConfig
	db          *gorm.DB
	rc          *redis.Client
}

func NewAdminBannerFlow(
	bannerRepo repository.BannerRepository,
	btfRepo repository.BannerTagFeatureRepository,
	tagRepo repository.TagRepository,
	featureRepo repository.FeatureRepository,
	auditRepo repository.AuditLogRepository,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
	rc *redis.Client,
) AdminBannerFlow {
	return &AdminBannerFlowImpl{
		bannerRepo:  bannerRepo,
		btfRepo:     btfRepo,
		tagRepo:     tagRepo,
		featureRepo: featureRepo,
		auditRepo:   auditRepo,
		cacheConfig: cacheConfig,
		db:          db,
		rc:          rc,
	}
}

// CreateBanner creates a banner and its (tag, feature) association rows atomically.
// A unique triple collision on any association rolls back the whole creation.
func (s *AdminBannerFlowImpl) CreateBanner(ctx context.Context, req *dto.CreateBannerRequest, metadata *ClientMetadata) (*dto.CreateBannerResponse, error) {
	if len(req.Content) == 0 {
		return nil, ErrContentRequired
	}
	if req.FeatureID == nil {
		return nil, ErrFeatureIDRequired
	}
	if len(req.TagIDs) == 0 {
		return nil, ErrTagsRequired
	}
	if hasDuplicateIDs(req.TagIDs) {
		return nil, ErrDuplicateTagInput
	}
	featureID := *req.FeatureID

	if err := s.checkReferences(ctx, req.TagIDs, featureID); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	banner := &models.Banner{
		Content:   req.Content,
		IsActive:  utils.ToPtr(isActive),
		FeatureID: featureID,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.bannerRepo.Save(txCtx, banner); err != nil {
			return err
		}

		associations := make([]*models.BannerTagFeature, 0, len(req.TagIDs))
		for _, tagID := range req.TagIDs {
			associations = append(associations, &models.BannerTagFeature{
				TagID:     tagID,
				BannerID:  banner.ID,
				FeatureID: featureID,
			})
		}
		if err := s.btfRepo.SaveBatch(txCtx, associations); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrAssociationConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		errMsg := err.Error()
		writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionBannerCreationFailed, "Banner creation failed", false, &errMsg, metadata)
		if IsAssociationConflict(err) {
			return nil, err
		}
		return nil, NewBusinessError("CREATE_BANNER_FAILED", "Failed to create banner", err)
	}

	s.invalidatePairs(ctx, req.TagIDs, featureID)
	bannerAdminWritesTotal.WithLabelValues("create").Inc()
	writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionBannerCreated, "Banner created", true, nil, metadata)

	return &dto.CreateBannerResponse{
		Message:  "Banner created successfully",
		BannerID: banner.ID,
	}, nil
}

// UpdateBanner applies a partial update to a banner.
//
// A present tag_ids replaces the association set wholesale. When feature_id
// changes and tag_ids is omitted, the existing association rows migrate to the
// new feature so the index stays consistent with banner ownership.
func (s *AdminBannerFlowImpl) UpdateBanner(ctx context.Context, req *dto.UpdateBannerRequest, metadata *ClientMetadata) (*dto.UpdateBannerResponse, error) {
	if req.ID == 0 {
		return nil, ErrBannerIDRequired
	}
	if len(req.Content) == 0 && req.IsActive == nil && req.FeatureID == nil && req.TagIDs == nil {
		return nil, ErrNoUpdateFields
	}
	if req.TagIDs != nil {
		if len(*req.TagIDs) == 0 {
			return nil, ErrTagsRequired
		}
		if hasDuplicateIDs(*req.TagIDs) {
			return nil, ErrDuplicateTagInput
		}
	}

	var (
		banner       *models.Banner
		stalePairs   [][2]uint
		associations []*models.BannerTagFeature
	)

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		banner, err = s.bannerRepo.ByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if banner == nil {
			return ErrBannerNotFound
		}

		existing, err := s.btfRepo.ListByBanner(txCtx, req.ID)
		if err != nil {
			return err
		}
		for _, a := range existing {
			stalePairs = append(stalePairs, [2]uint{a.TagID, a.FeatureID})
		}

		targetFeatureID := banner.FeatureID
		if req.FeatureID != nil {
			targetFeatureID = *req.FeatureID
			exists, err := s.featureRepo.Exists(txCtx, models.FeatureFilter{ID: req.FeatureID})
			if err != nil {
				return err
			}
			if !exists {
				return ErrFeatureNotFound
			}
		}

		if len(req.Content) > 0 {
			banner.Content = req.Content
		}
		if req.IsActive != nil {
			banner.IsActive = req.IsActive
		}
		banner.FeatureID = targetFeatureID
		banner.UpdatedAt = utils.UTCNow()
		if err := s.bannerRepo.Update(txCtx, banner); err != nil {
			return err
		}

		switch {
		case req.TagIDs != nil:
			if err := s.checkTagsExist(txCtx, *req.TagIDs); err != nil {
				return err
			}
			if err := s.btfRepo.DeleteByBanner(txCtx, req.ID); err != nil {
				return err
			}
			replacement := make([]*models.BannerTagFeature, 0, len(*req.TagIDs))
			for _, tagID := range *req.TagIDs {
				replacement = append(replacement, &models.BannerTagFeature{
					TagID:     tagID,
					BannerID:  req.ID,
					FeatureID: targetFeatureID,
				})
			}
			if err := s.btfRepo.SaveBatch(txCtx, replacement); err != nil {
				if repository.IsUniqueViolation(err) {
					return ErrAssociationConflict
				}
				return err
			}
		case req.FeatureID != nil:
			if err := s.btfRepo.UpdateFeatureByBanner(txCtx, req.ID, targetFeatureID); err != nil {
				if repository.IsUniqueViolation(err) {
					return ErrAssociationConflict
				}
				return err
			}
		}

		associations, err = s.btfRepo.ListByBanner(txCtx, req.ID)
		return err
	})
	if err != nil {
		errMsg := err.Error()
		writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionBannerUpdateFailed, "Banner update failed", false, &errMsg, metadata)
		if IsBannerNotFound(err) || IsFeatureNotFound(err) || IsTagNotFound(err) || IsAssociationConflict(err) {
			return nil, err
		}
		return nil, NewBusinessError("UPDATE_BANNER_FAILED", "Failed to update banner", err)
	}

	for _, p := range stalePairs {
		s.invalidatePairs(ctx, []uint{p[0]}, p[1])
	}
	for _, a := range associations {
		s.invalidatePairs(ctx, []uint{a.TagID}, a.FeatureID)
	}
	bannerAdminWritesTotal.WithLabelValues("update").Inc()
	writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionBannerUpdated, "Banner updated", true, nil, metadata)

	return &dto.UpdateBannerResponse{
		Message: "Banner updated successfully",
		Banner:  ToBannerDTO(*banner, associations),
	}, nil
}

// DeleteBanner removes a banner; association rows go with it via FK cascade
func (s *AdminBannerFlowImpl) DeleteBanner(ctx context.Context, bannerID uint, userID uint, metadata *ClientMetadata) error {
	if bannerID == 0 {
		return ErrBannerIDRequired
	}

	var stalePairs [][2]uint

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		banner, err := s.bannerRepo.ByID(txCtx, bannerID)
		if err != nil {
			return err
		}
		if banner == nil {
			return ErrBannerNotFound
		}

		existing, err := s.btfRepo.ListByBanner(txCtx, bannerID)
		if err != nil {
			return err
		}
		for _, a := range existing {
			stalePairs = append(stalePairs, [2]uint{a.TagID, a.FeatureID})
		}

		return s.bannerRepo.Delete(txCtx, bannerID)
	})
	if err != nil {
		errMsg := err.Error()
		writeAuditLog(ctx, s.auditRepo, &userID, models.AuditActionBannerDeleteFailed, "Banner delete failed", false, &errMsg, metadata)
		if IsBannerNotFound(err) {
			return err
		}
		return NewBusinessError("DELETE_BANNER_FAILED", "Failed to delete banner", err)
	}

	for _, p := range stalePairs {
		s.invalidatePairs(ctx, []uint{p[0]}, p[1])
	}
	bannerAdminWritesTotal.WithLabelValues("delete").Inc()
	writeAuditLog(ctx, s.auditRepo, &userID, models.AuditActionBannerDeleted, "Banner deleted", true, nil, metadata)

	return nil
}

// ExportBanners builds an Excel workbook of all banners with their associations
func (s *AdminBannerFlowImpl) ExportBanners(ctx context.Context) (string, []byte, error) {
	banners, err := s.bannerRepo.ByFilter(ctx, models.BannerFilter{}, "banners.id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_BANNERS_FAILED", "Failed to fetch banners", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"id", "feature_id", "tag_ids", "is_active", "content", "created_at", "updated_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, b := range banners {
		associations, err := s.btfRepo.ListByBanner(ctx, b.ID)
		if err != nil {
			return "", nil, NewBusinessError("EXPORT_BANNERS_FAILED", "Failed to fetch banner associations", err)
		}
		tagIDs := make([]string, 0, len(associations))
		for _, a := range associations {
			tagIDs = append(tagIDs, strconv.FormatUint(uint64(a.TagID), 10))
		}

		record := []any{
			b.ID,
			b.FeatureID,
			strings.Join(tagIDs, ","),
			utils.IsTrue(b.IsActive),
			string(b.Content),
			b.CreatedAt.UTC().Format(time.RFC3339),
			b.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := "banners.xlsx"
	return filename, buf.Bytes(), nil
}

// checkReferences verifies all referenced tags and the feature exist
func (s *AdminBannerFlowImpl) checkReferences(ctx context.Context, tagIDs []uint, featureID uint) error {
	if err := s.checkTagsExist(ctx, tagIDs); err != nil {
		return err
	}
	exists, err := s.featureRepo.Exists(ctx, models.FeatureFilter{ID: &featureID})
	if err != nil {
		return NewBusinessError("FEATURE_LOOKUP_FAILED", "Failed to look up feature", err)
	}
	if !exists {
		return ErrFeatureNotFound
	}
	return nil
}

func (s *AdminBannerFlowImpl) checkTagsExist(ctx context.Context, tagIDs []uint) error {
	tags, err := s.tagRepo.ListByIDs(ctx, tagIDs)
	if err != nil {
		return NewBusinessError("TAG_LOOKUP_FAILED", "Failed to look up tags", err)
	}
	if len(tags) != len(tagIDs) {
		return ErrTagNotFound
	}
	return nil
}

// invalidatePairs drops cached content for the given (tag, feature) pairs
func (s *AdminBannerFlowImpl) invalidatePairs(ctx context.Context, tagIDs []uint, featureID uint) {
	if s.rc == nil {
		return
	}
	keys := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		keys = append(keys, utils.BannerContentCacheKey(s.cacheConfig.RedisPrefix, tagID, featureID))
	}
	if len(keys) > 0 {
		_ = s.rc.Del(context.WithoutCancel(ctx), keys...).Err()
	}
}

func hasDuplicateIDs(ids []uint) bool {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
