package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bannerhive/bannerhive/app/dto"
	"github.com/bannerhive/bannerhive/config"
	"github.com/bannerhive/bannerhive/models"
	"github.com/bannerhive/bannerhive/repository"
	"github.com/bannerhive/bannerhive/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BannerFlow handles banner resolution and read access for service consumers
type BannerFlow interface {
	ResolveBanner(ctx context.Context, req *dto.ResolveBannerRequest, metadata *ClientMetadata) (*dto.ResolveBannerResponse, error)
	GetBanner(ctx context.Context, bannerID uint) (*dto.GetBannerResponse, error)
	ListBanners(ctx context.Context, req *dto.ListBannersRequest) (*dto.ListBannersResponse, error)
}

type BannerFlowImpl struct {
	bannerRepo  repository.BannerRepository
	btfRepo     repository.BannerTagFeatureRepository
	tagRepo     repository.TagRepository
	featureRepo repository.FeatureRepository
	profileRepo repository.UserProfileRepository
	auditRepo   repository.AuditLogRepository
	cacheConfig *config.CacheConfig
	db          *gorm.DB
	rc          *redis.Client
}

func NewBannerFlow(
	bannerRepo repository.BannerRepository,
	btfRepo repository.BannerTagFeatureRepository,
	tagRepo repository.TagRepository,
	featureRepo repository.FeatureRepository,
	profileRepo repository.UserProfileRepository,
	auditRepo repository.AuditLogRepository,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
	rc *redis.Client,
) BannerFlow {
	return &BannerFlowImpl{
		bannerRepo:  bannerRepo,
		btfRepo:     btfRepo,
		tagRepo:     tagRepo,
		featureRepo: featureRepo,
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
		cacheConfig: cacheConfig,
		db:          db,
		rc:          rc,
	}
}

// cachedResolution is the redis value for a resolved (tag, feature) pair
type cachedResolution struct {
	BannerID uint            `json:"banner_id"`
	Content  json.RawMessage `json:"content"`
}

// ResolveBanner returns the banner content for the caller's (tag, feature) pair.
//
// Unknown tag or feature ids are rejected before the snapshot is consulted.
// Past that, when the caller's profile has use_last_revision enabled and holds
// a snapshot for the requested tag, the snapshot is served as-is, even if the
// underlying banner has since been updated, deactivated, or deleted. Otherwise
// the lookup goes through the redis cache and falls back to the association
// index, and the fresh result is written back to the caller's snapshot.
func (s *BannerFlowImpl) ResolveBanner(ctx context.Context, req *dto.ResolveBannerRequest, metadata *ClientMetadata) (*dto.ResolveBannerResponse, error) {
	if req.TagID == nil {
		return nil, ErrTagIDRequired
	}
	if req.FeatureID == nil {
		return nil, ErrFeatureIDRequired
	}
	tagID, featureID := *req.TagID, *req.FeatureID

	exists, err := s.tagRepo.Exists(ctx, models.TagFilter{ID: &tagID})
	if err != nil {
		return nil, NewBusinessError("RESOLVE_BANNER_TAG_LOOKUP_FAILED", "Failed to look up tag", err)
	}
	if !exists {
		return nil, ErrTagNotFound
	}
	exists, err = s.featureRepo.Exists(ctx, models.FeatureFilter{ID: &featureID})
	if err != nil {
		return nil, NewBusinessError("RESOLVE_BANNER_FEATURE_LOOKUP_FAILED", "Failed to look up feature", err)
	}
	if !exists {
		return nil, ErrFeatureNotFound
	}

	profile, err := s.profileRepo.ByUserID(ctx, req.UserID)
	if err != nil {
		return nil, NewBusinessError("RESOLVE_BANNER_PROFILE_LOOKUP_FAILED", "Failed to load user profile", err)
	}
	if profile == nil {
		profile = &models.UserProfile{
			UserID:          req.UserID,
			UseLastRevision: utils.ToPtr(false),
			CreatedAt:       utils.UTCNow(),
			UpdatedAt:       utils.UTCNow(),
		}
		if err := s.profileRepo.Save(ctx, profile); err != nil {
			// Lost a race with a concurrent first request from the same user
			if repository.IsUniqueViolation(err) {
				profile, err = s.profileRepo.ByUserID(ctx, req.UserID)
				if err != nil || profile == nil {
					return nil, NewBusinessError("RESOLVE_BANNER_PROFILE_LOOKUP_FAILED", "Failed to load user profile", err)
				}
			} else {
				return nil, NewBusinessError("RESOLVE_BANNER_PROFILE_CREATE_FAILED", "Failed to create user profile", err)
			}
		}
	}

	useLast := utils.IsTrue(profile.UseLastRevision)
	if req.UseLastRevision != nil {
		useLast = *req.UseLastRevision
	}

	if useLast && profile.HasSnapshotFor(tagID) {
		bannerResolutionsTotal.WithLabelValues(resolutionSourceSnapshot).Inc()

		resolvedAt := utils.UTCNow()
		if profile.LastResolvedAt != nil {
			resolvedAt = *profile.LastResolvedAt
		}
		if req.UseLastRevision != nil && *req.UseLastRevision != utils.IsTrue(profile.UseLastRevision) {
			profile.UseLastRevision = req.UseLastRevision
			profile.UpdatedAt = utils.UTCNow()
			if err := s.profileRepo.Update(ctx, profile); err != nil {
				return nil, NewBusinessError("RESOLVE_BANNER_PROFILE_UPDATE_FAILED", "Failed to update user profile", err)
			}
		}

		writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionBannerResolved, "Banner served from last-revision snapshot", true, nil, metadata)

		return &dto.ResolveBannerResponse{
			Content:      profile.LastContent,
			FromSnapshot: true,
			ResolvedAt:   resolvedAt.Format(time.RFC3339),
		}, nil
	}

	resolved, source, err := s.lookupContent(ctx, tagID, featureID)
	if err != nil {
		if IsNoBannerForPair(err) {
			bannerResolutionMissesTotal.Inc()
			errMsg := err.Error()
			writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionBannerResolved, "No active banner for pair", false, &errMsg, metadata)
		}
		return nil, err
	}

	now := utils.UTCNow()
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		profile.LastTagID = &tagID
		profile.LastFeatureID = &featureID
		profile.LastContent = resolved.Content
		profile.LastResolvedAt = &now
		if req.UseLastRevision != nil {
			profile.UseLastRevision = req.UseLastRevision
		}
		profile.UpdatedAt = now
		return s.profileRepo.Update(txCtx, profile)
	})
	if err != nil {
		return nil, NewBusinessError("RESOLVE_BANNER_SNAPSHOT_WRITE_FAILED", "Failed to record resolution snapshot", err)
	}

	bannerResolutionsTotal.WithLabelValues(source).Inc()
	writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionBannerResolved, "Banner resolved", true, nil, metadata)

	return &dto.ResolveBannerResponse{
		Content:    resolved.Content,
		BannerID:   &resolved.BannerID,
		ResolvedAt: now.Format(time.RFC3339),
	}, nil
}

// lookupContent consults the redis cache first and falls back to the association index.
func (s *BannerFlowImpl) lookupContent(ctx context.Context, tagID, featureID uint) (*cachedResolution, string, error) {
	cacheKey := utils.BannerContentCacheKey(s.cacheConfig.RedisPrefix, tagID, featureID)

	if s.rc != nil {
		if raw, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(raw) > 0 {
			var cached cachedResolution
			if err := json.Unmarshal(raw, &cached); err == nil && cached.BannerID != 0 {
				return &cached, resolutionSourceCache, nil
			}
		}
	}

	banner, err := s.bannerRepo.ResolveActiveByTagAndFeature(ctx, tagID, featureID)
	if err != nil {
		return nil, "", NewBusinessError("RESOLVE_BANNER_QUERY_FAILED", "Failed to resolve banner", err)
	}
	if banner == nil {
		return nil, "", ErrNoBannerForPair
	}

	resolved := &cachedResolution{BannerID: banner.ID, Content: banner.Content}
	if s.rc != nil {
		if raw, err := json.Marshal(resolved); err == nil {
			_ = s.rc.Set(ctx, cacheKey, raw, utils.BannerContentCacheTTL).Err()
		}
	}

	return resolved, resolutionSourceDB, nil
}

// GetBanner retrieves one banner with its association rows
func (s *BannerFlowImpl) GetBanner(ctx context.Context, bannerID uint) (*dto.GetBannerResponse, error) {
	if bannerID == 0 {
		return nil, ErrBannerIDRequired
	}

	banner, err := s.bannerRepo.ByID(ctx, bannerID)
	if err != nil {
		return nil, NewBusinessError("GET_BANNER_FAILED", "Failed to get banner", err)
	}
	if banner == nil {
		return nil, ErrBannerNotFound
	}

	associations, err := s.btfRepo.ListByBanner(ctx, bannerID)
	if err != nil {
		return nil, NewBusinessError("GET_BANNER_FAILED", "Failed to get banner associations", err)
	}

	return &dto.GetBannerResponse{
		Message: "Banner retrieved successfully",
		Banner:  ToBannerDTO(*banner, associations),
	}, nil
}

// ListBanners returns a page of banners matching the optional tag/feature filters
func (s *BannerFlowImpl) ListBanners(ctx context.Context, req *dto.ListBannersRequest) (*dto.ListBannersResponse, error) {
	page, limit, err := normalizePage(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	filter := models.BannerFilter{
		TagID:     req.TagID,
		FeatureID: req.FeatureID,
	}

	total, err := s.bannerRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_BANNERS_FAILED", "Failed to count banners", err)
	}

	banners, err := s.bannerRepo.ByFilter(ctx, filter, "banners.id ASC", limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("LIST_BANNERS_FAILED", "Failed to list banners", err)
	}

	items := make([]dto.BannerDTO, 0, len(banners))
	for _, b := range banners {
		associations, err := s.btfRepo.ListByBanner(ctx, b.ID)
		if err != nil {
			return nil, NewBusinessError("LIST_BANNERS_FAILED", "Failed to list banner associations", err)
		}
		items = append(items, ToBannerDTO(*b, associations))
	}

	return &dto.ListBannersResponse{
		Message:    "Banners retrieved successfully",
		Items:      items,
		Pagination: paginationInfo(total, page, limit),
	}, nil
}
