package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/app/middleware"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/utils"
)

// QuickEstimateHandlerInterface defines the contract for quick estimate handlers
type QuickEstimateHandlerInterface interface {
	CreateQuickEstimate(c fiber.Ctx) error
	GetQuickEstimate(c fiber.Ctx) error
}

// QuickEstimateHandler handles quick estimate endpoints
type QuickEstimateHandler struct {
	flow businessflow.QuickEstimateFlow
}

func NewQuickEstimateHandler(flow businessflow.QuickEstimateFlow) QuickEstimateHandlerInterface {
	return &QuickEstimateHandler{flow: flow}
}

func (h *QuickEstimateHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *QuickEstimateHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateQuickEstimate prices a lead with the quick engine.
// @Summary Create Quick Estimate
// @Description Price a lead from its intake metadata and persist the result, superseding prior quick estimates
// @Tags Estimates
// @Produce json
// @Param uuid path string true "Lead UUID"
// @Success 201 {object} dto.APIResponse{data=dto.CreateQuickEstimateResponse}
// @Failure 404 {object} dto.APIResponse "Lead not found"
// @Failure 409 {object} dto.APIResponse "Concurrent creation conflict"
// @Failure 500 {object} dto.APIResponse "Estimation failed"
// @Router /api/v1/leads/{uuid}/quick-estimate [post]
func (h *QuickEstimateHandler) CreateQuickEstimate(c fiber.Ctx) error {
	req := dto.CreateQuickEstimateRequest{LeadUUID: c.Params("uuid")}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.Calculate(h.createRequestContext(c, "/api/v1/leads/:uuid/quick-estimate"), &req, metadata)
	if err != nil {
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		if businessflow.IsEstimateVersionConflict(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A concurrent estimate creation is in progress, retry the request", "QUICK_ESTIMATE_VERSION_CONFLICT", nil)
		}
		log.Println("Quick estimate creation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Quick estimate creation failed", "QUICK_ESTIMATE_FAILED", nil)
	}

	middleware.CountEstimate("quick")
	return h.SuccessResponse(c, fiber.StatusCreated, "Quick estimate created successfully", res)
}

// GetQuickEstimate returns the lead's current quick estimate.
// @Summary Get Quick Estimate
// @Description Retrieve the lead's non-superseded quick estimate
// @Tags Estimates
// @Produce json
// @Param uuid path string true "Lead UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetQuickEstimateResponse}
// @Failure 404 {object} dto.APIResponse "Lead or estimate not found"
// @Failure 500 {object} dto.APIResponse "Lookup failed"
// @Router /api/v1/leads/{uuid}/quick-estimate [get]
func (h *QuickEstimateHandler) GetQuickEstimate(c fiber.Ctx) error {
	res, err := h.flow.GetCurrent(h.createRequestContext(c, "/api/v1/leads/:uuid/quick-estimate"), c.Params("uuid"))
	if err != nil {
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		if businessflow.IsQuickEstimateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No quick estimate exists for this lead", "QUICK_ESTIMATE_NOT_FOUND", nil)
		}
		log.Println("Quick estimate lookup failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Quick estimate lookup failed", "QUICK_ESTIMATE_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Quick estimate retrieved successfully", res)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *QuickEstimateHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *QuickEstimateHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
