package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/peakcrest/roofline/app/dto"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/utils"
)

// RegionAdminHandlerInterface defines the contract for pricing region administration
type RegionAdminHandlerInterface interface {
	CreateRegion(c fiber.Ctx) error
	UpdateRegion(c fiber.Ctx) error
	ListRegions(c fiber.Ctx) error
	ResolveByZip(c fiber.Ctx) error
}

// RegionAdminHandler handles geographic pricing admin endpoints
type RegionAdminHandler struct {
	flow      businessflow.GeographicPricingFlow
	validator *validator.Validate
}

func NewRegionAdminHandler(flow businessflow.GeographicPricingFlow) RegionAdminHandlerInterface {
	return &RegionAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *RegionAdminHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *RegionAdminHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateRegion creates a named pricing region.
// @Summary Create Pricing Region
// @Description Create a region claiming zip codes with cost multipliers for material, labor, and equipment
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.AdminCreateRegionRequest true "Region definition"
// @Success 201 {object} dto.APIResponse{data=dto.AdminRegionResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Region name already exists"
// @Security BearerAuth
// @Router /api/v1/admin/regions [post]
func (h *RegionAdminHandler) CreateRegion(c fiber.Ctx) error {
	var req dto.AdminCreateRegionRequest
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

	res, err := h.flow.CreateRegion(h.createRequestContext(c, "/api/v1/admin/regions"), &req, metadata)
	if err != nil {
		if businessflow.IsRegionNameExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Region name already exists", "REGION_NAME_EXISTS", nil)
		}
		log.Println("Region creation failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Region creation failed", "REGION_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Region created successfully", res)
}

// UpdateRegion modifies an existing pricing region.
// @Summary Update Pricing Region
// @Description Update region fields by id; changed zip codes invalidate the resolution cache
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Region ID"
// @Param request body dto.AdminUpdateRegionRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.AdminRegionResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Region not found"
// @Security BearerAuth
// @Router /api/v1/admin/regions/{id} [put]
func (h *RegionAdminHandler) UpdateRegion(c fiber.Ctx) error {
	var req dto.AdminUpdateRegionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	regionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || regionID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid region id", "INVALID_REQUEST", nil)
	}
	req.ID = uint(regionID)

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	res, err := h.flow.UpdateRegion(h.createRequestContext(c, "/api/v1/admin/regions/:id"), &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsRegionNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Region not found", "REGION_NOT_FOUND", nil)
		case businessflow.IsRegionNameExists(err):
			return h.ErrorResponse(c, fiber.StatusConflict, "Region name already exists", "REGION_NAME_EXISTS", nil)
		case errors.Is(err, businessflow.ErrRegionUpdateMissing):
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "REGION_UPDATE_MISSING", nil)
		}
		log.Println("Region update failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Region update failed", "REGION_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Region updated successfully", res)
}

// ListRegions lists active pricing regions.
// @Summary List Pricing Regions
// @Description List all active pricing regions ordered by name
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminListRegionsResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Security BearerAuth
// @Router /api/v1/admin/regions [get]
func (h *RegionAdminHandler) ListRegions(c fiber.Ctx) error {
	res, err := h.flow.ListRegions(h.createRequestContext(c, "/api/v1/admin/regions"))
	if err != nil {
		log.Println("Region list failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Region list failed", "REGION_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Regions retrieved successfully", res)
}

// ResolveByZip answers which region claims a zip code. No match is a
// success with a null region, not an error.
// @Summary Resolve Region By Zip
// @Description Resolve which active region claims a zip code; ties go to the oldest region
// @Tags Admin
// @Produce json
// @Param zip path string true "Zip code"
// @Success 200 {object} dto.APIResponse{data=dto.ResolveRegionResponse}
// @Failure 500 {object} dto.APIResponse "Lookup failed"
// @Security BearerAuth
// @Router /api/v1/admin/regions/resolve/{zip} [get]
func (h *RegionAdminHandler) ResolveByZip(c fiber.Ctx) error {
	res, err := h.flow.ResolveByZip(h.createRequestContext(c, "/api/v1/admin/regions/resolve/:zip"), c.Params("zip"))
	if err != nil {
		log.Println("Region resolution failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Region resolution failed", "REGION_RESOLVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Region resolved successfully", res)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *RegionAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *RegionAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
