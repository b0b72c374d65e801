package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/peakcrest/roofline/app/dto"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/utils"
)

// LineItemAdminHandlerInterface defines the contract for catalog administration
type LineItemAdminHandlerInterface interface {
	CreateLineItem(c fiber.Ctx) error
	UpdateLineItem(c fiber.Ctx) error
	ListLineItems(c fiber.Ctx) error
	DeactivateLineItem(c fiber.Ctx) error
}

// LineItemAdminHandler handles line item catalog admin endpoints
type LineItemAdminHandler struct {
	flow      businessflow.CatalogFlow
	validator *validator.Validate
}

func NewLineItemAdminHandler(flow businessflow.CatalogFlow) LineItemAdminHandlerInterface {
	return &LineItemAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *LineItemAdminHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *LineItemAdminHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateLineItem adds a catalog entry.
// @Summary Create Line Item
// @Description Add a catalog entry; the quantity formula is checked against the roof variables before saving
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.AdminCreateLineItemRequest true "Catalog entry"
// @Success 201 {object} dto.APIResponse{data=dto.AdminLineItemResponse}
// @Failure 400 {object} dto.APIResponse "Validation or formula error"
// @Failure 409 {object} dto.APIResponse "Item code already exists"
// @Security BearerAuth
// @Router /api/v1/admin/line-items [post]
func (h *LineItemAdminHandler) CreateLineItem(c fiber.Ctx) error {
	var req dto.AdminCreateLineItemRequest
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

	res, err := h.flow.CreateLineItem(h.createRequestContext(c, "/api/v1/admin/line-items"), &req, metadata)
	if err != nil {
		if businessflow.IsItemCodeExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Item code already exists", "ITEM_CODE_EXISTS", nil)
		}
		if businessflow.IsInvalidFormula(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Quantity formula is invalid", "INVALID_FORMULA", err.Error())
		}
		log.Println("Line item creation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Line item creation failed", "LINE_ITEM_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Line item created successfully", res)
}

// UpdateLineItem modifies an existing catalog entry.
// @Summary Update Line Item
// @Description Update catalog fields by item code; a changed quantity formula is re-checked
// @Tags Admin
// @Accept json
// @Produce json
// @Param item_code path string true "Item code"
// @Param request body dto.AdminUpdateLineItemRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLineItemResponse}
// @Failure 400 {object} dto.APIResponse "Validation or formula error"
// @Failure 404 {object} dto.APIResponse "Line item not found"
// @Security BearerAuth
// @Router /api/v1/admin/line-items/{item_code} [put]
func (h *LineItemAdminHandler) UpdateLineItem(c fiber.Ctx) error {
	var req dto.AdminUpdateLineItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.ItemCode = c.Params("item_code")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.UpdateLineItem(h.createRequestContext(c, "/api/v1/admin/line-items/:item_code"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsLineItemNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Line item not found", "LINE_ITEM_NOT_FOUND", nil)
		case businessflow.IsInvalidFormula(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Quantity formula is invalid", "INVALID_FORMULA", err.Error())
		case errors.Is(err, businessflow.ErrLineItemUpdateMissing):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "LINE_ITEM_UPDATE_MISSING", nil)
		}
		log.Println("Line item update failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Line item update failed", "LINE_ITEM_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Line item updated successfully", res)
}

// ListLineItems lists catalog entries with optional filters.
// @Summary List Line Items
// @Description List catalog entries filtered by category and activation
// @Tags Admin
// @Produce json
// @Param category query string false "Category"
// @Param is_active query bool false "Activation filter"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListLineItemsResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Security BearerAuth
// @Router /api/v1/admin/line-items [get]
func (h *LineItemAdminHandler) ListLineItems(c fiber.Ctx) error {
	var req dto.AdminListLineItemsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	res, err := h.flow.ListLineItems(h.createRequestContext(c, "/api/v1/admin/line-items"), &req)
	if err != nil {
		log.Println("Line item list failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Line item list failed", "LINE_ITEM_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Line items retrieved successfully", res)
}

// DeactivateLineItem soft-deletes a catalog entry. Existing estimates
// keep their snapshotted lines.
// @Summary Deactivate Line Item
// @Description Deactivate a catalog entry so new estimates stop resolving it
// @Tags Admin
// @Produce json
// @Param item_code path string true "Item code"
// @Success 200 {object} dto.APIResponse{data=dto.AdminDeactivateLineItemResponse}
// @Failure 404 {object} dto.APIResponse "Line item not found"
// @Security BearerAuth
// @Router /api/v1/admin/line-items/{item_code} [delete]
func (h *LineItemAdminHandler) DeactivateLineItem(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.DeactivateLineItem(h.createRequestContext(c, "/api/v1/admin/line-items/:item_code"), c.Params("item_code"), metadata)
	if err != nil {
		if businessflow.IsLineItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Line item not found", "LINE_ITEM_NOT_FOUND", nil)
		}
		log.Println("Line item deactivation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Line item deactivation failed", "LINE_ITEM_DEACTIVATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Line item deactivated successfully", res)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *LineItemAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *LineItemAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
