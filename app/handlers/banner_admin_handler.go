package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/bannerhive/bannerhive/app/dto"
	businessflow "github.com/bannerhive/bannerhive/business_flow"
	"github.com/bannerhive/bannerhive/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AdminBannerHandlerInterface defines the contract for banner administration handlers.
type AdminBannerHandlerInterface interface {
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// AdminBannerHandler handles banner administration requests.
type AdminBannerHandler struct {
	adminFlow businessflow.AdminBannerFlow
	readFlow  businessflow.BannerFlow
	validator *validator.Validate
}

// NewAdminBannerHandler creates a new banner administration handler.
func NewAdminBannerHandler(adminFlow businessflow.AdminBannerFlow, readFlow businessflow.BannerFlow) *AdminBannerHandler {
	return &AdminBannerHandler{
		adminFlow: adminFlow,
		readFlow:  readFlow,
		validator: validator.New(),
	}
}

func (h *AdminBannerHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminBannerHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create creates a banner with its tag and feature associations.
// @Summary Create banner
// @Description Create a banner and associate it with tags and a feature (admin)
// @Tags Banner Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateBannerRequest true "Banner payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateBannerResponse} "Created"
// @Failure 400 {object} dto.APIResponse "Validation error or association conflict"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 404 {object} dto.APIResponse "Tag or feature not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/banner [post]
func (h *AdminBannerHandler) Create(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	var req dto.CreateBannerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	req.UserID = userID

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.adminFlow.CreateBanner(h.createRequestContext(c, "/api/v1/banner"), &req, metadata)
	if err != nil {
		return h.mapWriteError(c, err, "CREATE_BANNER_FAILED", "Failed to create banner")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Banner created successfully", res)
}

// Update applies a partial update to a banner.
// @Summary Update banner
// @Description Update banner content, activation, feature, or tag set (admin)
// @Tags Banner Admin
// @Accept json
// @Produce json
// @Param id path int true "Banner ID"
// @Param request body dto.UpdateBannerRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateBannerResponse} "Updated"
// @Failure 400 {object} dto.APIResponse "Validation error or association conflict"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 404 {object} dto.APIResponse "Banner, tag, or feature not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/banner/{id} [patch]
func (h *AdminBannerHandler) Update(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	bannerID, err := parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "id must be a positive integer", "VALIDATION_ERROR", nil)
	}

	var req dto.UpdateBannerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	req.ID = bannerID
	req.UserID = userID

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.adminFlow.UpdateBanner(h.createRequestContext(c, "/api/v1/banner/:id"), &req, metadata)
	if err != nil {
		return h.mapWriteError(c, err, "UPDATE_BANNER_FAILED", "Failed to update banner")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Banner updated successfully", res)
}

// Delete removes a banner and its associations.
// @Summary Delete banner
// @Description Delete a banner; association rows are removed with it (admin)
// @Tags Banner Admin
// @Produce json
// @Param id path int true "Banner ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 404 {object} dto.APIResponse "Banner not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/banner/{id} [delete]
func (h *AdminBannerHandler) Delete(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	bannerID, err := parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "id must be a positive integer", "VALIDATION_ERROR", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.adminFlow.DeleteBanner(h.createRequestContext(c, "/api/v1/banner/:id"), bannerID, userID, metadata); err != nil {
		return h.mapWriteError(c, err, "DELETE_BANNER_FAILED", "Failed to delete banner")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Banner deleted successfully", nil)
}

// Get retrieves one banner with its associations.
// @Summary Get banner
// @Description Get a banner by ID (admin)
// @Tags Banner Admin
// @Produce json
// @Param id path int true "Banner ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetBannerResponse} "Retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 404 {object} dto.APIResponse "Banner not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/banner/{id} [get]
func (h *AdminBannerHandler) Get(c fiber.Ctx) error {
	bannerID, err := parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "id must be a positive integer", "VALIDATION_ERROR", nil)
	}

	res, err := h.readFlow.GetBanner(h.createRequestContext(c, "/api/v1/banner/:id"), bannerID)
	if err != nil {
		if businessflow.IsBannerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get banner", "GET_BANNER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Banner retrieved successfully", res)
}

// List returns a page of banners, optionally filtered by tag and feature.
// @Summary List banners
// @Description List banners with optional tag and feature filters (admin)
// @Tags Banner Admin
// @Produce json
// @Param tag_id query int false "Tag ID filter"
// @Param feature_id query int false "Feature ID filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListBannersResponse} "Retrieved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/banner [get]
func (h *AdminBannerHandler) List(c fiber.Ctx) error {
	var req dto.ListBannersRequest
	if raw := c.Query("tag_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "tag_id must be a positive integer", "VALIDATION_ERROR", nil)
		}
		req.TagID = utils.ToPtr(uint(v))
	}
	if raw := c.Query("feature_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "feature_id must be a positive integer", "VALIDATION_ERROR", nil)
		}
		req.FeatureID = utils.ToPtr(uint(v))
	}
	req.Page = fiber.Query(c, "page", 1)
	req.Limit = fiber.Query(c, "limit", utils.DefaultPageSize)

	res, err := h.readFlow.ListBanners(h.createRequestContext(c, "/api/v1/banner"), &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list banners", "LIST_BANNERS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Banners retrieved successfully", res)
}

// Export downloads all banners as an Excel workbook.
// @Summary Export banners
// @Description Download all banners with their associations as xlsx (admin)
// @Tags Banner Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Workbook"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/banner/export [get]
func (h *AdminBannerHandler) Export(c fiber.Ctx) error {
	filename, data, err := h.adminFlow.ExportBanners(h.createRequestContext(c, "/api/v1/banner/export"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export banners", "EXPORT_BANNERS_FAILED", nil)
	}

	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Status(fiber.StatusOK).Send(data)
}

// mapWriteError translates flow errors from banner write operations to HTTP responses
func (h *AdminBannerHandler) mapWriteError(c fiber.Ctx, err error, fallbackCode, fallbackMsg string) error {
	switch {
	case businessflow.IsContentRequired(err),
		businessflow.IsFeatureIDRequired(err),
		businessflow.IsTagsRequired(err),
		businessflow.IsDuplicateTagInput(err),
		businessflow.IsBannerIDRequired(err),
		businessflow.IsNoUpdateFields(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	case businessflow.IsAssociationConflict(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "ASSOCIATION_CONFLICT", nil)
	case businessflow.IsTagNotFound(err), businessflow.IsFeatureNotFound(err), businessflow.IsBannerNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "NOT_FOUND", nil)
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMsg, fallbackCode, nil)
}

func (h *AdminBannerHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func parseIDParam(c fiber.Ctx) (uint, error) {
	v, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || v == 0 {
		if err == nil {
			err = strconv.ErrRange
		}
		return 0, err
	}
	return uint(v), nil
}
