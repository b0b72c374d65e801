// Package businessflow contains the core business logic and use cases for estimate macro administration
package businessflow

import (
	"context"

	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/repository"
	"github.com/peakcrest/roofline/utils"
	"gorm.io/gorm"
)

// EstimateMacroFlow handles estimate macro administration
type EstimateMacroFlow interface {
	CreateMacro(ctx context.Context, req *dto.AdminCreateMacroRequest, metadata *ClientMetadata) (*dto.AdminEstimateMacroResponse, error)
	GetMacro(ctx context.Context, macroID uint) (*dto.AdminEstimateMacroResponse, error)
	ListMacros(ctx context.Context, req *dto.AdminListEstimateMacrosRequest) (*dto.AdminListEstimateMacrosResponse, error)
	AddItem(ctx context.Context, req *dto.AdminAddMacroItemRequest, metadata *ClientMetadata) (*dto.AdminEstimateMacroResponse, error)
	RemoveItem(ctx context.Context, req *dto.AdminRemoveMacroItemRequest, metadata *ClientMetadata) (*dto.AdminRemoveMacroItemResponse, error)
}

// EstimateMacroFlowImpl implements the estimate macro business flow
type EstimateMacroFlowImpl struct {
	macroRepo    repository.EstimateMacroRepository
	lineItemRepo repository.LineItemRepository
	db           *gorm.DB
}

// NewEstimateMacroFlow creates a new estimate macro flow instance
func NewEstimateMacroFlow(
	macroRepo repository.EstimateMacroRepository,
	lineItemRepo repository.LineItemRepository,
	db *gorm.DB,
) EstimateMacroFlow {
	return &EstimateMacroFlowImpl{
		macroRepo:    macroRepo,
		lineItemRepo: lineItemRepo,
		db:           db,
	}
}

// CreateMacro creates an empty template; items are attached afterwards.
func (s *EstimateMacroFlowImpl) CreateMacro(ctx context.Context, req *dto.AdminCreateMacroRequest, metadata *ClientMetadata) (*dto.AdminEstimateMacroResponse, error) {
	var macro *models.EstimateMacro
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		exists, err := s.macroRepo.Exists(txCtx, models.EstimateMacroFilter{Name: utils.ToPtr(req.Name)})
		if err != nil {
			return err
		}
		if exists {
			return ErrMacroNameExists
		}

		macro = &models.EstimateMacro{
			Name:        req.Name,
			Description: req.Description,
			JobType:     req.JobType,
			RoofType:    req.RoofType,

			IsActive: utils.ToPtr(true),

			CreatedAt: utils.UTCNow(),
			UpdatedAt: utils.UTCNow(),
		}
		return s.macroRepo.Save(txCtx, macro)
	})
	if err != nil {
		return nil, NewBusinessError("MACRO_CREATION_FAILED", "Estimate macro creation failed", err)
	}

	return &dto.AdminEstimateMacroResponse{
		Message: "Estimate macro created successfully",
		Macro:   ToEstimateMacroDTO(*macro),
	}, nil
}

// GetMacro returns a macro with its item associations.
func (s *EstimateMacroFlowImpl) GetMacro(ctx context.Context, macroID uint) (*dto.AdminEstimateMacroResponse, error) {
	macro, err := s.macroRepo.WithItems(ctx, macroID)
	if err != nil {
		return nil, NewBusinessError("MACRO_LOOKUP_FAILED", "Failed to lookup estimate macro", err)
	}
	if macro == nil {
		return nil, NewBusinessError("MACRO_NOT_FOUND", "Estimate macro not found", ErrMacroNotFound)
	}

	return &dto.AdminEstimateMacroResponse{
		Message: "Estimate macro retrieved successfully",
		Macro:   ToEstimateMacroDTO(*macro),
	}, nil
}

// ListMacros returns macros filtered by job type and active flag.
func (s *EstimateMacroFlowImpl) ListMacros(ctx context.Context, req *dto.AdminListEstimateMacrosRequest) (*dto.AdminListEstimateMacrosResponse, error) {
	filter := models.EstimateMacroFilter{
		JobType:  req.JobType,
		IsActive: req.IsActive,
	}
	rows, err := s.macroRepo.ByFilter(ctx, filter, "name", 0, 0)
	if err != nil {
		return nil, NewBusinessError("MACRO_LIST_FAILED", "Failed to list estimate macros", err)
	}

	items := make([]dto.EstimateMacroDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToEstimateMacroDTO(*row))
	}

	return &dto.AdminListEstimateMacrosResponse{
		Message: "Estimate macros retrieved successfully",
		Items:   items,
	}, nil
}

// AddItem attaches a catalog line item to a macro. A duplicate
// (macro, line item) pair is a conflict and leaves the macro's item set
// unchanged.
func (s *EstimateMacroFlowImpl) AddItem(ctx context.Context, req *dto.AdminAddMacroItemRequest, metadata *ClientMetadata) (*dto.AdminEstimateMacroResponse, error) {
	var macro *models.EstimateMacro
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		macro, err = s.macroRepo.WithItems(txCtx, req.MacroID)
		if err != nil {
			return err
		}
		if macro == nil {
			return ErrMacroNotFound
		}

		item, err := s.lineItemRepo.ByItemCode(txCtx, req.ItemCode)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrLineItemNotFound
		}

		duplicate, err := s.macroRepo.PairExists(txCtx, macro.ID, item.ID)
		if err != nil {
			return err
		}
		if duplicate {
			return ErrMacroItemDuplicate
		}

		assoc := &models.MacroLineItem{
			MacroID:    macro.ID,
			LineItemID: item.ID,

			SortOrder: req.SortOrder,
			GroupName: req.GroupName,

			QuantityFormulaOverride: req.QuantityFormulaOverride,
			WasteFactorOverride:     req.WasteFactorOverride,
			MaterialCostOverride:    req.MaterialCostOverride,
			LaborCostOverride:       req.LaborCostOverride,

			IsOptional:        req.IsOptional,
			SelectedByDefault: req.SelectedByDefault,

			CreatedAt: utils.UTCNow(),
		}
		if assoc.IsOptional == nil {
			assoc.IsOptional = utils.ToPtr(false)
		}
		// Optional items start unselected unless the admin says otherwise.
		if assoc.SelectedByDefault == nil {
			assoc.SelectedByDefault = utils.ToPtr(!*assoc.IsOptional)
		}
		if req.QuantityFormulaOverride != nil {
			if err := checkFormula(*req.QuantityFormulaOverride); err != nil {
				return err
			}
		}
		if err := s.macroRepo.AddItem(txCtx, assoc); err != nil {
			return err
		}

		macro, err = s.macroRepo.WithItems(txCtx, req.MacroID)
		return err
	})
	if err != nil {
		return nil, NewBusinessError("MACRO_ITEM_ADD_FAILED", "Failed to add line item to macro", err)
	}

	return &dto.AdminEstimateMacroResponse{
		Message: "Line item added to macro successfully",
		Macro:   ToEstimateMacroDTO(*macro),
	}, nil
}

// RemoveItem detaches a catalog line item from a macro.
func (s *EstimateMacroFlowImpl) RemoveItem(ctx context.Context, req *dto.AdminRemoveMacroItemRequest, metadata *ClientMetadata) (*dto.AdminRemoveMacroItemResponse, error) {
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		macro, err := s.macroRepo.ByID(txCtx, req.MacroID)
		if err != nil {
			return err
		}
		if macro == nil {
			return ErrMacroNotFound
		}

		item, err := s.lineItemRepo.ByItemCode(txCtx, req.ItemCode)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrLineItemNotFound
		}

		attached, err := s.macroRepo.PairExists(txCtx, macro.ID, item.ID)
		if err != nil {
			return err
		}
		if !attached {
			return ErrMacroItemNotFound
		}

		return s.macroRepo.RemoveItem(txCtx, macro.ID, item.ID)
	})
	if err != nil {
		return nil, NewBusinessError("MACRO_ITEM_REMOVE_FAILED", "Failed to remove line item from macro", err)
	}

	return &dto.AdminRemoveMacroItemResponse{
		Message:  "Line item removed from macro successfully",
		MacroID:  req.MacroID,
		ItemCode: req.ItemCode,
	}, nil
}
