package handlers

import (
	"context"
	"time"

	"github.com/bannerhive/bannerhive/app/dto"
	businessflow "github.com/bannerhive/bannerhive/business_flow"
	"github.com/bannerhive/bannerhive/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// RegistryHandlerInterface defines the contract for tag and feature registry handlers.
type RegistryHandlerInterface interface {
	SeedTags(c fiber.Ctx) error
	SeedFeatures(c fiber.Ctx) error
	ListTags(c fiber.Ctx) error
	ListFeatures(c fiber.Ctx) error
}

// RegistryHandler handles tag and feature registry requests.
type RegistryHandler struct {
	flow      businessflow.RegistryFlow
	validator *validator.Validate
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(flow businessflow.RegistryFlow) *RegistryHandler {
	return &RegistryHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *RegistryHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RegistryHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SeedTags creates a batch of tag registry rows.
// @Summary Seed tags
// @Description Create N tag identity rows (admin)
// @Tags Registry
// @Accept json
// @Produce json
// @Param request body dto.SeedRequest true "Seed payload"
// @Success 201 {object} dto.APIResponse{data=dto.SeedResponse} "Created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/tags [post]
func (h *RegistryHandler) SeedTags(c fiber.Ctx) error {
	return h.seed(c, "/api/v1/tags", h.flow.SeedTags)
}

// SeedFeatures creates a batch of feature registry rows.
// @Summary Seed features
// @Description Create N feature identity rows (admin)
// @Tags Registry
// @Accept json
// @Produce json
// @Param request body dto.SeedRequest true "Seed payload"
// @Success 201 {object} dto.APIResponse{data=dto.SeedResponse} "Created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/features [post]
func (h *RegistryHandler) SeedFeatures(c fiber.Ctx) error {
	return h.seed(c, "/api/v1/features", h.flow.SeedFeatures)
}

func (h *RegistryHandler) seed(c fiber.Ctx, endpoint string, fn func(context.Context, *dto.SeedRequest, *businessflow.ClientMetadata) (*dto.SeedResponse, error)) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	var req dto.SeedRequest
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
	res, err := fn(h.createRequestContext(c, endpoint), &req, metadata)
	if err != nil {
		if businessflow.IsSeedCountInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to seed registry", "SEED_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, res.Message, res)
}

// ListTags returns a page of tag registry rows.
// @Summary List tags
// @Description List tag identity rows (admin)
// @Tags Registry
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListRegistryResponse} "Retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/tags [get]
func (h *RegistryHandler) ListTags(c fiber.Ctx) error {
	return h.list(c, "/api/v1/tags", h.flow.ListTags)
}

// ListFeatures returns a page of feature registry rows.
// @Summary List features
// @Description List feature identity rows (admin)
// @Tags Registry
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListRegistryResponse} "Retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Admin required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/features [get]
func (h *RegistryHandler) ListFeatures(c fiber.Ctx) error {
	return h.list(c, "/api/v1/features", h.flow.ListFeatures)
}

func (h *RegistryHandler) list(c fiber.Ctx, endpoint string, fn func(context.Context, *dto.ListRegistryRequest) (*dto.ListRegistryResponse, error)) error {
	req := dto.ListRegistryRequest{
		Page:  fiber.Query(c, "page", 1),
		Limit: fiber.Query(c, "limit", utils.DefaultPageSize),
	}

	res, err := fn(h.createRequestContext(c, endpoint), &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list registry", "LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

func (h *RegistryHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
