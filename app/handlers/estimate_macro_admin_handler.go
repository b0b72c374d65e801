package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/peakcrest/roofline/app/dto"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/utils"
)

// EstimateMacroAdminHandlerInterface defines the contract for macro administration
type EstimateMacroAdminHandlerInterface interface {
	CreateMacro(c fiber.Ctx) error
	GetMacro(c fiber.Ctx) error
	ListMacros(c fiber.Ctx) error
	AddItem(c fiber.Ctx) error
	RemoveItem(c fiber.Ctx) error
}

// EstimateMacroAdminHandler handles estimate macro admin endpoints
type EstimateMacroAdminHandler struct {
	flow      businessflow.EstimateMacroFlow
	validator *validator.Validate
}

func NewEstimateMacroAdminHandler(flow businessflow.EstimateMacroFlow) EstimateMacroAdminHandlerInterface {
	return &EstimateMacroAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *EstimateMacroAdminHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *EstimateMacroAdminHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateMacro creates a reusable estimate template.
// @Summary Create Estimate Macro
// @Description Create a named template that detailed estimates can expand into line items
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.AdminCreateMacroRequest true "Macro definition"
// @Success 201 {object} dto.APIResponse{data=dto.AdminEstimateMacroResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Macro name already exists"
// @Security BearerAuth
// @Router /api/v1/admin/macros [post]
func (h *EstimateMacroAdminHandler) CreateMacro(c fiber.Ctx) error {
	var req dto.AdminCreateMacroRequest
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

	res, err := h.flow.CreateMacro(h.createRequestContext(c, "/api/v1/admin/macros"), &req, metadata)
	if err != nil {
		if businessflow.IsMacroNameExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Macro name already exists", "MACRO_NAME_EXISTS", nil)
		}
		log.Println("Macro creation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Macro creation failed", "MACRO_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Macro created successfully", res)
}

// GetMacro returns one macro with its item associations.
// @Summary Get Estimate Macro
// @Description Retrieve a macro and its ordered line item associations
// @Tags Admin
// @Produce json
// @Param id path int true "Macro ID"
// @Success 200 {object} dto.APIResponse{data=dto.AdminEstimateMacroResponse}
// @Failure 404 {object} dto.APIResponse "Macro not found"
// @Security BearerAuth
// @Router /api/v1/admin/macros/{id} [get]
func (h *EstimateMacroAdminHandler) GetMacro(c fiber.Ctx) error {
	macroID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || macroID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid macro id", "INVALID_REQUEST", nil)
	}

	res, err := h.flow.GetMacro(h.createRequestContext(c, "/api/v1/admin/macros/:id"), uint(macroID))
	if err != nil {
		if businessflow.IsMacroNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Macro not found", "MACRO_NOT_FOUND", nil)
		}
		log.Println("Macro lookup failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Macro lookup failed", "MACRO_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Macro retrieved successfully", res)
}

// ListMacros lists macros with optional filters.
// @Summary List Estimate Macros
// @Description List macros filtered by job type and activation
// @Tags Admin
// @Produce json
// @Param job_type query string false "Job type"
// @Param is_active query bool false "Activation filter"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListEstimateMacrosResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Security BearerAuth
// @Router /api/v1/admin/macros [get]
func (h *EstimateMacroAdminHandler) ListMacros(c fiber.Ctx) error {
	var req dto.AdminListEstimateMacrosRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	res, err := h.flow.ListMacros(h.createRequestContext(c, "/api/v1/admin/macros"), &req)
	if err != nil {
		log.Println("Macro list failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Macro list failed", "MACRO_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Macros retrieved successfully", res)
}

// AddItem attaches a catalog line item to a macro.
// @Summary Add Macro Item
// @Description Attach a line item to a macro with optional per-macro overrides; duplicates are rejected and leave the macro unchanged
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Macro ID"
// @Param request body dto.AdminAddMacroItemRequest true "Item association"
// @Success 200 {object} dto.APIResponse{data=dto.AdminEstimateMacroResponse}
// @Failure 400 {object} dto.APIResponse "Validation or formula error"
// @Failure 404 {object} dto.APIResponse "Macro or line item not found"
// @Failure 409 {object} dto.APIResponse "Item already attached"
// @Security BearerAuth
// @Router /api/v1/admin/macros/{id}/items [post]
func (h *EstimateMacroAdminHandler) AddItem(c fiber.Ctx) error {
	var req dto.AdminAddMacroItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	macroID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || macroID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid macro id", "INVALID_REQUEST", nil)
	}
	req.MacroID = uint(macroID)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.AddItem(h.createRequestContext(c, "/api/v1/admin/macros/:id/items"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsMacroNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Macro not found", "MACRO_NOT_FOUND", nil)
		case businessflow.IsLineItemNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Line item not found", "LINE_ITEM_NOT_FOUND", nil)
		case businessflow.IsMacroItemDuplicate(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Line item is already attached to this macro", "MACRO_ITEM_DUPLICATE", nil)
		case businessflow.IsInvalidFormula(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Quantity formula override is invalid", "INVALID_FORMULA", err.Error())
		}
		log.Println("Macro item addition failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Macro item addition failed", "MACRO_ITEM_ADD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Macro item added successfully", res)
}

// RemoveItem detaches a line item from a macro.
// @Summary Remove Macro Item
// @Description Detach a line item from a macro by item code
// @Tags Admin
// @Produce json
// @Param id path int true "Macro ID"
// @Param item_code path string true "Item code"
// @Success 200 {object} dto.APIResponse{data=dto.AdminRemoveMacroItemResponse}
// @Failure 404 {object} dto.APIResponse "Macro or association not found"
// @Security BearerAuth
// @Router /api/v1/admin/macros/{id}/items/{item_code} [delete]
func (h *EstimateMacroAdminHandler) RemoveItem(c fiber.Ctx) error {
	macroID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || macroID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid macro id", "INVALID_REQUEST", nil)
	}
	req := dto.AdminRemoveMacroItemRequest{
		MacroID:  uint(macroID),
		ItemCode: c.Params("item_code"),
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.RemoveItem(h.createRequestContext(c, "/api/v1/admin/macros/:id/items/:item_code"), &req, metadata)
	if err != nil {
		if businessflow.IsMacroNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Macro not found", "MACRO_NOT_FOUND", nil)
		}
		if businessflow.IsMacroItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Line item is not attached to this macro", "MACRO_ITEM_NOT_FOUND", nil)
		}
		log.Println("Macro item removal failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Macro item removal failed", "MACRO_ITEM_REMOVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Macro item removed successfully", res)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *EstimateMacroAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *EstimateMacroAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
