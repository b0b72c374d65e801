package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/peakcrest/roofline/app/dto"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/utils"
)

// LeadHandlerInterface defines the contract for lead intake handlers
type LeadHandlerInterface interface {
	CreateLead(c fiber.Ctx) error
	GetLead(c fiber.Ctx) error
	ListLeads(c fiber.Ctx) error
}

// LeadHandler handles lead intake endpoints
type LeadHandler struct {
	flow      businessflow.LeadFlow
	validator *validator.Validate
}

func NewLeadHandler(flow businessflow.LeadFlow) LeadHandlerInterface {
	return &LeadHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *LeadHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *LeadHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateLead stores an intake record with roof measurements.
// @Summary Create Lead
// @Description Store an intake record: contact snapshot, job metadata and roof measurements
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body dto.CreateLeadRequest true "Lead intake payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateLeadResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Creation failed"
// @Router /api/v1/leads [post]
func (h *LeadHandler) CreateLead(c fiber.Ctx) error {
	var req dto.CreateLeadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.CreateLead(h.createRequestContext(c, "/api/v1/leads"), &req, metadata)
	if err != nil {
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		if businessError, ok := err.(*businessflow.BusinessError); ok && businessError.Code == "MEASUREMENT_VALIDATION_FAILED" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Roof measurements are invalid", "MEASUREMENT_VALIDATION_FAILED", businessError.Error())
		}
		log.Println("Lead creation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Lead creation failed", "LEAD_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Lead created successfully", res)
}

// GetLead returns a lead with its slope sketch.
// @Summary Get Lead
// @Description Retrieve a lead by public UUID including its roof slopes
// @Tags Leads
// @Produce json
// @Param uuid path string true "Lead UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetLeadResponse}
// @Failure 404 {object} dto.APIResponse "Lead not found"
// @Failure 500 {object} dto.APIResponse "Lookup failed"
// @Router /api/v1/leads/{uuid} [get]
func (h *LeadHandler) GetLead(c fiber.Ctx) error {
	leadUUID := c.Params("uuid")

	res, err := h.flow.GetLead(h.createRequestContext(c, "/api/v1/leads/:uuid"), leadUUID)
	if err != nil {
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		log.Println("Lead lookup failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Lead lookup failed", "LEAD_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Lead retrieved successfully", res)
}

// ListLeads returns a page of leads, newest first.
// @Summary List Leads
// @Description List leads filtered by state and job type
// @Tags Leads
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param state query string false "Two-letter state code"
// @Param job_type query string false "Job type"
// @Success 200 {object} dto.APIResponse{data=dto.ListLeadsResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/leads [get]
func (h *LeadHandler) ListLeads(c fiber.Ctx) error {
	var req dto.ListLeadsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	res, err := h.flow.ListLeads(h.createRequestContext(c, "/api/v1/leads"), &req)
	if err != nil {
		log.Println("Lead list failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Lead list failed", "LEAD_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Leads retrieved successfully", res)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *LeadHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *LeadHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
