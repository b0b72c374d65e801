package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/app/middleware"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/utils"
)

// DetailedEstimateHandlerInterface defines the contract for detailed estimate handlers
type DetailedEstimateHandlerInterface interface {
	CreateDetailedEstimate(c fiber.Ctx) error
	GetDetailedEstimate(c fiber.Ctx) error
	ToggleLineItem(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	ExportXLSX(c fiber.Ctx) error
}

// DetailedEstimateHandler handles detailed estimate endpoints
type DetailedEstimateHandler struct {
	flow      businessflow.DetailedEstimateFlow
	validator *validator.Validate
}

func NewDetailedEstimateHandler(flow businessflow.DetailedEstimateFlow) DetailedEstimateHandlerInterface {
	return &DetailedEstimateHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *DetailedEstimateHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *DetailedEstimateHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateDetailedEstimate builds a full line-item estimate for a lead.
// @Summary Create Detailed Estimate
// @Description Resolve catalog lines (macro, explicit codes, or full catalog), price them, and persist a new estimate version
// @Tags Estimates
// @Accept json
// @Produce json
// @Param uuid path string true "Lead UUID"
// @Param request body dto.CreateDetailedEstimateRequest true "Estimation parameters"
// @Success 201 {object} dto.APIResponse{data=dto.CreateDetailedEstimateResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Lead, macro, item, or region not found"
// @Failure 409 {object} dto.APIResponse "Concurrent creation conflict"
// @Failure 500 {object} dto.APIResponse "Estimation failed"
// @Router /api/v1/leads/{uuid}/detailed-estimate [post]
func (h *DetailedEstimateHandler) CreateDetailedEstimate(c fiber.Ctx) error {
	var req dto.CreateDetailedEstimateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.LeadUUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.Create(h.createRequestContext(c, "/api/v1/leads/:uuid/detailed-estimate"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsLeadNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		case businessflow.IsMacroNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Estimate macro not found", "MACRO_NOT_FOUND", nil)
		case businessflow.IsLineItemNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Line item not found", "LINE_ITEM_NOT_FOUND", nil)
		case businessflow.IsLineItemInactive(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Line item is inactive", "LINE_ITEM_INACTIVE", nil)
		case businessflow.IsRegionNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Geographic region not found", "REGION_NOT_FOUND", nil)
		case businessflow.IsCatalogEmpty(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No active line items exist to price", "CATALOG_EMPTY", nil)
		case businessflow.IsEstimateVersionConflict(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "A concurrent estimate creation is in progress, retry the request", "ESTIMATE_VERSION_CONFLICT", nil)
		}
		if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "MEASUREMENT_VALIDATION_FAILED" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, be.Message, be.Code, be.Err.Error())
		}
		log.Println("Detailed estimate creation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Detailed estimate creation failed", "DETAILED_ESTIMATE_FAILED", nil)
	}

	middleware.CountEstimate("detailed")
	return h.SuccessResponse(c, fiber.StatusCreated, "Detailed estimate created successfully", res)
}

// GetDetailedEstimate returns the lead's current detailed estimate.
// @Summary Get Detailed Estimate
// @Description Retrieve the lead's non-superseded detailed estimate with all lines
// @Tags Estimates
// @Produce json
// @Param uuid path string true "Lead UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetDetailedEstimateResponse}
// @Failure 404 {object} dto.APIResponse "Lead or estimate not found"
// @Failure 500 {object} dto.APIResponse "Lookup failed"
// @Router /api/v1/leads/{uuid}/detailed-estimate [get]
func (h *DetailedEstimateHandler) GetDetailedEstimate(c fiber.Ctx) error {
	res, err := h.flow.GetCurrent(h.createRequestContext(c, "/api/v1/leads/:uuid/detailed-estimate"), c.Params("uuid"))
	if err != nil {
		if businessflow.IsLeadNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		if businessflow.IsDetailedEstimateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No detailed estimate exists for this lead", "DETAILED_ESTIMATE_NOT_FOUND", nil)
		}
		log.Println("Detailed estimate lookup failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Detailed estimate lookup failed", "DETAILED_ESTIMATE_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Detailed estimate retrieved successfully", res)
}

// ToggleLineItem flips one line's inclusion flag and reprices the estimate.
// @Summary Toggle Estimate Line
// @Description Include or exclude one line on a draft estimate and re-aggregate totals without re-evaluating quantities
// @Tags Estimates
// @Accept json
// @Produce json
// @Param uuid path string true "Estimate UUID"
// @Param request body dto.ToggleLineItemRequest true "Line toggle"
// @Success 200 {object} dto.APIResponse{data=dto.ToggleLineItemResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Estimate or line not found"
// @Failure 409 {object} dto.APIResponse "Estimate is not editable"
// @Router /api/v1/estimates/{uuid}/toggle-line [post]
func (h *DetailedEstimateHandler) ToggleLineItem(c fiber.Ctx) error {
	var req dto.ToggleLineItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.EstimateUUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.ToggleLineItem(h.createRequestContext(c, "/api/v1/estimates/:uuid/toggle-line"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsDetailedEstimateNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Detailed estimate not found", "DETAILED_ESTIMATE_NOT_FOUND", nil)
		case businessflow.IsEstimateLineNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Estimate line not found", "ESTIMATE_LINE_NOT_FOUND", nil)
		case businessflow.IsEstimateNotDraft(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Estimate is no longer editable", "ESTIMATE_NOT_DRAFT", nil)
		}
		log.Println("Estimate line toggle failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Estimate line toggle failed", "LINE_TOGGLE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Estimate line updated successfully", res)
}

// UpdateStatus transitions an estimate to approved or sent.
// @Summary Update Estimate Status
// @Description Transition a detailed estimate through draft, approved, and sent without recalculating prices
// @Tags Estimates
// @Accept json
// @Produce json
// @Param uuid path string true "Estimate UUID"
// @Param request body dto.UpdateEstimateStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateEstimateStatusResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Estimate not found"
// @Failure 409 {object} dto.APIResponse "Invalid status transition"
// @Router /api/v1/estimates/{uuid}/status [post]
func (h *DetailedEstimateHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.UpdateEstimateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.EstimateUUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.UpdateStatus(h.createRequestContext(c, "/api/v1/estimates/:uuid/status"), &req, metadata)
	if err != nil {
		if businessflow.IsDetailedEstimateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Detailed estimate not found", "DETAILED_ESTIMATE_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidStatusTransition(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Status transition is not allowed", "INVALID_STATUS_TRANSITION", nil)
		}
		log.Println("Estimate status update failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Estimate status update failed", "STATUS_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Estimate status updated successfully", res)
}

// ExportXLSX streams the estimate as an Excel workbook.
// @Summary Export Estimate XLSX
// @Description Download the detailed estimate as an Excel workbook with one row per line and the pricing summary
// @Tags Estimates
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param uuid path string true "Estimate UUID"
// @Success 200 {file} binary "XLSX workbook"
// @Failure 404 {object} dto.APIResponse "Estimate not found"
// @Failure 500 {object} dto.APIResponse "Export failed"
// @Router /api/v1/estimates/{uuid}/export.xlsx [get]
func (h *DetailedEstimateHandler) ExportXLSX(c fiber.Ctx) error {
	data, filename, err := h.flow.ExportXLSX(h.createRequestContext(c, "/api/v1/estimates/:uuid/export.xlsx"), c.Params("uuid"))
	if err != nil {
		if businessflow.IsDetailedEstimateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Detailed estimate not found", "DETAILED_ESTIMATE_NOT_FOUND", nil)
		}
		log.Println("Estimate export failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Estimate export failed", "ESTIMATE_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Set(fiber.HeaderContentLength, strconv.Itoa(len(data)))
	return c.Send(data)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *DetailedEstimateHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *DetailedEstimateHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
