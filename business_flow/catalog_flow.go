// Package businessflow contains the core business logic and use cases for catalog administration
package businessflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/pricing"
	"github.com/peakcrest/roofline/repository"
	"github.com/peakcrest/roofline/utils"
	"gorm.io/gorm"
)

// CatalogFlow handles line item catalog administration
type CatalogFlow interface {
	CreateLineItem(ctx context.Context, req *dto.AdminCreateLineItemRequest, metadata *ClientMetadata) (*dto.AdminLineItemResponse, error)
	UpdateLineItem(ctx context.Context, req *dto.AdminUpdateLineItemRequest, metadata *ClientMetadata) (*dto.AdminLineItemResponse, error)
	ListLineItems(ctx context.Context, req *dto.AdminListLineItemsRequest) (*dto.AdminListLineItemsResponse, error)
	DeactivateLineItem(ctx context.Context, itemCode string, metadata *ClientMetadata) (*dto.AdminDeactivateLineItemResponse, error)
}

// CatalogFlowImpl implements the catalog business flow
type CatalogFlowImpl struct {
	lineItemRepo repository.LineItemRepository
	db           *gorm.DB
}

// NewCatalogFlow creates a new catalog flow instance
func NewCatalogFlow(lineItemRepo repository.LineItemRepository, db *gorm.DB) CatalogFlow {
	return &CatalogFlowImpl{
		lineItemRepo: lineItemRepo,
		db:           db,
	}
}

// CreateLineItem adds a catalog entry. The quantity formula is parsed
// against the roof variable names before anything is persisted.
func (s *CatalogFlowImpl) CreateLineItem(ctx context.Context, req *dto.AdminCreateLineItemRequest, metadata *ClientMetadata) (*dto.AdminLineItemResponse, error) {
	if err := checkFormula(req.QuantityFormula); err != nil {
		return nil, NewBusinessError("LINE_ITEM_VALIDATION_FAILED", "Quantity formula is invalid", err)
	}

	var item *models.LineItem
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.lineItemRepo.ByItemCode(txCtx, req.ItemCode)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrItemCodeExists
		}

		waste := req.DefaultWasteFactor
		if waste < 1 {
			waste = 1
		}

		item = &models.LineItem{
			ItemCode: req.ItemCode,
			Name:     req.Name,
			Category: req.Category,
			UnitType: req.UnitType,

			MaterialUnitCost:  req.MaterialUnitCost,
			LaborUnitCost:     req.LaborUnitCost,
			EquipmentUnitCost: req.EquipmentUnitCost,

			QuantityFormula:    req.QuantityFormula,
			DefaultWasteFactor: waste,

			Taxable:  req.Taxable,
			IsActive: utils.ToPtr(true),

			CreatedAt: utils.UTCNow(),
			UpdatedAt: utils.UTCNow(),
		}
		if item.Taxable == nil {
			item.Taxable = utils.ToPtr(true)
		}
		return s.lineItemRepo.Save(txCtx, item)
	})
	if err != nil {
		return nil, NewBusinessError("LINE_ITEM_CREATION_FAILED", "Line item creation failed", err)
	}

	return &dto.AdminLineItemResponse{
		Message: "Line item created successfully",
		Item:    ToLineItemDTO(*item),
	}, nil
}

// UpdateLineItem applies partial changes to a catalog entry. Estimates
// already priced keep their snapshot; only future estimates see updates.
func (s *CatalogFlowImpl) UpdateLineItem(ctx context.Context, req *dto.AdminUpdateLineItemRequest, metadata *ClientMetadata) (*dto.AdminLineItemResponse, error) {
	if req.Name == nil && req.Category == nil && req.UnitType == nil &&
		req.MaterialUnitCost == nil && req.LaborUnitCost == nil && req.EquipmentUnitCost == nil &&
		req.QuantityFormula == nil && req.DefaultWasteFactor == nil && req.Taxable == nil {
		return nil, NewBusinessError("LINE_ITEM_UPDATE_VALIDATION_FAILED", "Nothing to update", ErrLineItemUpdateMissing)
	}
	if req.QuantityFormula != nil {
		if err := checkFormula(*req.QuantityFormula); err != nil {
			return nil, NewBusinessError("LINE_ITEM_VALIDATION_FAILED", "Quantity formula is invalid", err)
		}
	}

	item, err := s.lineItemRepo.ByItemCode(ctx, req.ItemCode)
	if err != nil {
		return nil, NewBusinessError("LINE_ITEM_LOOKUP_FAILED", "Failed to lookup line item", err)
	}
	if item == nil {
		return nil, NewBusinessError("LINE_ITEM_NOT_FOUND", "Line item not found", ErrLineItemNotFound)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.UnitType != nil {
		item.UnitType = *req.UnitType
	}
	if req.MaterialUnitCost != nil {
		item.MaterialUnitCost = *req.MaterialUnitCost
	}
	if req.LaborUnitCost != nil {
		item.LaborUnitCost = *req.LaborUnitCost
	}
	if req.EquipmentUnitCost != nil {
		item.EquipmentUnitCost = *req.EquipmentUnitCost
	}
	if req.QuantityFormula != nil {
		item.QuantityFormula = *req.QuantityFormula
	}
	if req.DefaultWasteFactor != nil {
		item.DefaultWasteFactor = *req.DefaultWasteFactor
	}
	if req.Taxable != nil {
		item.Taxable = req.Taxable
	}
	item.UpdatedAt = utils.UTCNow()

	if err := s.lineItemRepo.Update(ctx, item); err != nil {
		return nil, NewBusinessError("LINE_ITEM_UPDATE_FAILED", "Line item update failed", err)
	}

	return &dto.AdminLineItemResponse{
		Message: "Line item updated successfully",
		Item:    ToLineItemDTO(*item),
	}, nil
}

// ListLineItems returns catalog entries filtered by category and active flag.
func (s *CatalogFlowImpl) ListLineItems(ctx context.Context, req *dto.AdminListLineItemsRequest) (*dto.AdminListLineItemsResponse, error) {
	filter := models.LineItemFilter{
		Category: req.Category,
		IsActive: req.IsActive,
	}
	rows, err := s.lineItemRepo.ByFilter(ctx, filter, "item_code", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LINE_ITEM_LIST_FAILED", "Failed to list line items", err)
	}

	items := make([]dto.LineItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToLineItemDTO(*row))
	}

	return &dto.AdminListLineItemsResponse{
		Message: "Line items retrieved successfully",
		Items:   items,
	}, nil
}

// DeactivateLineItem soft-deletes a catalog entry. Existing estimates
// keep their line snapshots; macro expansions skip the entry from now on.
func (s *CatalogFlowImpl) DeactivateLineItem(ctx context.Context, itemCode string, metadata *ClientMetadata) (*dto.AdminDeactivateLineItemResponse, error) {
	item, err := s.lineItemRepo.ByItemCode(ctx, itemCode)
	if err != nil {
		return nil, NewBusinessError("LINE_ITEM_LOOKUP_FAILED", "Failed to lookup line item", err)
	}
	if item == nil {
		return nil, NewBusinessError("LINE_ITEM_NOT_FOUND", "Line item not found", ErrLineItemNotFound)
	}

	if err := s.lineItemRepo.Deactivate(ctx, item.ID); err != nil {
		return nil, NewBusinessError("LINE_ITEM_UPDATE_FAILED", "Line item deactivation failed", err)
	}

	return &dto.AdminDeactivateLineItemResponse{
		Message:  "Line item deactivated successfully",
		ItemCode: itemCode,
	}, nil
}

// checkFormula parses the formula against zero-valued roof variables so
// syntax errors and unknown identifiers are caught at write time. Only
// division by zero is tolerated here since the probe variables are all
// zero.
func checkFormula(formula string) error {
	vars := pricing.RoofVariables{}.ToMap()
	if _, err := pricing.Evaluate(formula, vars); err != nil && !errors.Is(err, pricing.ErrDivisionByZero) {
		return fmt.Errorf("%w: %v", ErrInvalidFormula, err)
	}
	return nil
}
