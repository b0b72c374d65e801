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

// PricingRuleAdminHandlerInterface defines the contract for quick-engine rule administration
type PricingRuleAdminHandlerInterface interface {
	CreateRule(c fiber.Ctx) error
	UpdateRule(c fiber.Ctx) error
	ListRules(c fiber.Ctx) error
}

// PricingRuleAdminHandler handles pricing rule admin endpoints
type PricingRuleAdminHandler struct {
	flow      businessflow.PricingRuleFlow
	validator *validator.Validate
}

func NewPricingRuleAdminHandler(flow businessflow.PricingRuleFlow) PricingRuleAdminHandlerInterface {
	return &PricingRuleAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *PricingRuleAdminHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *PricingRuleAdminHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateRule adds a quick-engine pricing rule.
// @Summary Create Pricing Rule
// @Description Add a quick-engine rule; at most one active rule may exist per category and match value
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.AdminCreatePricingRuleRequest true "Rule definition"
// @Success 201 {object} dto.APIResponse{data=dto.AdminPricingRuleResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Key or category conflict"
// @Security BearerAuth
// @Router /api/v1/admin/pricing-rules [post]
func (h *PricingRuleAdminHandler) CreateRule(c fiber.Ctx) error {
	var req dto.AdminCreatePricingRuleRequest
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

	res, err := h.flow.CreateRule(h.createRequestContext(c, "/api/v1/admin/pricing-rules"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsPricingRuleKeyExists(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Rule key already exists", "RULE_KEY_EXISTS", nil)
		case businessflow.IsActiveRuleConflict(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "An active rule already exists for this category and match value", "ACTIVE_RULE_CONFLICT", nil)
		case businessflow.IsPricingRuleKindMismatch(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Rule operands do not match the rule kind", "RULE_KIND_MISMATCH", nil)
		}
		log.Println("Pricing rule creation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Pricing rule creation failed", "RULE_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Pricing rule created successfully", res)
}

// UpdateRule modifies rates, charges, or activation of an existing rule.
// @Summary Update Pricing Rule
// @Description Update rule fields by rule key; reactivation rechecks the category conflict
// @Tags Admin
// @Accept json
// @Produce json
// @Param rule_key path string true "Rule key"
// @Param request body dto.AdminUpdatePricingRuleRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.AdminPricingRuleResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Rule not found"
// @Failure 409 {object} dto.APIResponse "Category conflict"
// @Security BearerAuth
// @Router /api/v1/admin/pricing-rules/{rule_key} [put]
func (h *PricingRuleAdminHandler) UpdateRule(c fiber.Ctx) error {
	var req dto.AdminUpdatePricingRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.RuleKey = c.Params("rule_key")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.UpdateRule(h.createRequestContext(c, "/api/v1/admin/pricing-rules/:rule_key"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsPricingRuleNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Pricing rule not found", "RULE_NOT_FOUND", nil)
		case businessflow.IsActiveRuleConflict(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "An active rule already exists for this category and match value", "ACTIVE_RULE_CONFLICT", nil)
		case businessflow.IsPricingRuleKindMismatch(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Rule operands do not match the rule kind", "RULE_KIND_MISMATCH", nil)
		case errors.Is(err, businessflow.ErrPricingRuleUpdateMissing):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "RULE_UPDATE_MISSING", nil)
		}
		log.Println("Pricing rule update failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Pricing rule update failed", "RULE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Pricing rule updated successfully", res)
}

// ListRules lists quick-engine rules with optional filters.
// @Summary List Pricing Rules
// @Description List quick-engine rules filtered by category and activation
// @Tags Admin
// @Produce json
// @Param rule_category query string false "Rule category"
// @Param is_active query bool false "Activation filter"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListPricingRulesResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Security BearerAuth
// @Router /api/v1/admin/pricing-rules [get]
func (h *PricingRuleAdminHandler) ListRules(c fiber.Ctx) error {
	var req dto.AdminListPricingRulesRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.ListRules(h.createRequestContext(c, "/api/v1/admin/pricing-rules"), &req)
	if err != nil {
		log.Println("Pricing rule list failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Pricing rule list failed", "RULE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Pricing rules retrieved successfully", res)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *PricingRuleAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PricingRuleAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
