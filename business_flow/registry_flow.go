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

// RegistryFlow manages the tag and feature dimension registries
type RegistryFlow interface {
	SeedTags(ctx context.Context, req *dto.SeedRequest, metadata *ClientMetadata) (*dto.SeedResponse, error)
	SeedFeatures(ctx context.Context, req *dto.SeedRequest, metadata *ClientMetadata) (*dto.SeedResponse, error)
	ListTags(ctx context.Context, req *dto.ListRegistryRequest) (*dto.ListRegistryResponse, error)
	ListFeatures(ctx context.Context, req *dto.ListRegistryRequest) (*dto.ListRegistryResponse, error)
}

type RegistryFlowImpl struct {
	tagRepo     repository.TagRepository
	featureRepo repository.FeatureRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

func NewRegistryFlow(
	tagRepo repository.TagRepository,
	featureRepo repository.FeatureRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) RegistryFlow {
	return &RegistryFlowImpl{
		tagRepo:     tagRepo,
		featureRepo: featureRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// SeedTags creates N identity rows in the tag registry
func (s *RegistryFlowImpl) SeedTags(ctx context.Context, req *dto.SeedRequest, metadata *ClientMetadata) (*dto.SeedResponse, error) {
	if req.Count < 1 || req.Count > 1000 {
		return nil, ErrSeedCountInvalid
	}

	rows := make([]*models.Tag, req.Count)
	for i := range rows {
		rows[i] = &models.Tag{CreatedAt: utils.UTCNow()}
	}
	if err := s.tagRepo.SaveBatch(ctx, rows); err != nil {
		return nil, NewBusinessError("SEED_TAGS_FAILED", "Failed to seed tags", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionTagsSeeded, "Tags seeded", true, nil, metadata)

	return &dto.SeedResponse{
		Message: "Tags created successfully",
		IDs:     ids,
	}, nil
}

// SeedFeatures creates N identity rows in the feature registry
func (s *RegistryFlowImpl) SeedFeatures(ctx context.Context, req *dto.SeedRequest, metadata *ClientMetadata) (*dto.SeedResponse, error) {
	if req.Count < 1 || req.Count > 1000 {
		return nil, ErrSeedCountInvalid
	}

	rows := make([]*models.Feature, req.Count)
	for i := range rows {
		rows[i] = &models.Feature{CreatedAt: utils.UTCNow()}
	}
	if err := s.featureRepo.SaveBatch(ctx, rows); err != nil {
		return nil, NewBusinessError("SEED_FEATURES_FAILED", "Failed to seed features", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	writeAuditLog(ctx, s.auditRepo, &req.UserID, models.AuditActionFeaturesSeeded, "Features seeded", true, nil, metadata)

	return &dto.SeedResponse{
		Message: "Features created successfully",
		IDs:     ids,
	}, nil
}

// ListTags returns a page of tag registry rows
func (s *RegistryFlowImpl) ListTags(ctx context.Context, req *dto.ListRegistryRequest) (*dto.ListRegistryResponse, error) {
	page, limit, err := normalizePage(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	total, err := s.tagRepo.Count(ctx, models.TagFilter{})
	if err != nil {
		return nil, NewBusinessError("LIST_TAGS_FAILED", "Failed to count tags", err)
	}
	rows, err := s.tagRepo.ByFilter(ctx, models.TagFilter{}, "id ASC", limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("LIST_TAGS_FAILED", "Failed to list tags", err)
	}

	items := make([]dto.RegistryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.RegistryItem{ID: r.ID, CreatedAt: r.CreatedAt.Format(time.RFC3339)})
	}

	return &dto.ListRegistryResponse{
		Message:    "Tags retrieved successfully",
		Items:      items,
		Pagination: paginationInfo(total, page, limit),
	}, nil
}

// ListFeatures returns a page of feature registry rows
func (s *RegistryFlowImpl) ListFeatures(ctx context.Context, req *dto.ListRegistryRequest) (*dto.ListRegistryResponse, error) {
	page, limit, err := normalizePage(req.Page, req.Limit)
	if err != nil {
		return nil, err
	}

	total, err := s.featureRepo.Count(ctx, models.FeatureFilter{})
	if err != nil {
		return nil, NewBusinessError("LIST_FEATURES_FAILED", "Failed to count features", err)
	}
	rows, err := s.featureRepo.ByFilter(ctx, models.FeatureFilter{}, "id ASC", limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("LIST_FEATURES_FAILED", "Failed to list features", err)
	}

	items := make([]dto.RegistryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.RegistryItem{ID: r.ID, CreatedAt: r.CreatedAt.Format(time.RFC3339)})
	}

	return &dto.ListRegistryResponse{
		Message:    "Features retrieved successfully",
		Items:      items,
		Pagination: paginationInfo(total, page, limit),
	}, nil
}

func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if limit == 0 {
		limit = utils.DefaultPageSize
	}
	if limit < 1 || limit > utils.MaxPageSize {
		return 0, 0, ErrInvalidPageSize
	}
	return page, limit, nil
}

func paginationInfo(total int64, page, limit int) dto.PaginationInfo {
	return dto.PaginationInfo{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
}
