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

// BannerHandlerInterface defines the contract for user-facing banner handlers.
type BannerHandlerInterface interface {
	Resolve(c fiber.Ctx) error
}

// BannerHandler handles banner resolution requests.
type BannerHandler struct {
	flow      businessflow.BannerFlow
	validator *validator.Validate
}

// NewBannerHandler creates a new banner handler.
func NewBannerHandler(flow businessflow.BannerFlow) *BannerHandler {
	return &BannerHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *BannerHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// Resolve returns the banner content for the caller's (tag, feature) pair.
// The body of a successful response is the banner's content document itself,
// not the standard envelope.
// @Summary Resolve banner content
// @Description Resolve the banner content for a (tag, feature) pair (authenticated)
// @Tags Banners
// @Produce json
// @Param tag_id query int true "Tag ID"
// @Param feature_id query int true "Feature ID"
// @Param use_last_revision query bool false "Serve the caller's last snapshot for this tag"
// @Success 200 {object} object "Banner content"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "No banner for pair"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/user_banner [get]
func (h *BannerHandler) Resolve(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}

	req := dto.ResolveBannerRequest{UserID: userID}
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
	if raw := c.Query("use_last_revision"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "use_last_revision must be a boolean", "VALIDATION_ERROR", nil)
		}
		req.UseLastRevision = &v
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}

	res, err := h.flow.ResolveBanner(h.createRequestContext(c, "/api/v1/user_banner"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsTagIDRequired(err), businessflow.IsFeatureIDRequired(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		case businessflow.IsTagNotFound(err), businessflow.IsFeatureNotFound(err), businessflow.IsNoBannerForPair(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve banner", "RESOLVE_BANNER_FAILED", nil)
	}

	if res.FromSnapshot {
		c.Set("X-From-Snapshot", "true")
	}
	c.Set("Content-Type", fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(res.Content)
}

func (h *BannerHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	if userID, ok := c.Locals("user_id").(uint); ok && userID != 0 {
		ctx = context.WithValue(ctx, utils.UserIDKey, userID)
	}
	return ctx
}
