// Package businessflow contains the core business logic and use cases for detailed estimation workflows
package businessflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/config"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/pricing"
	"github.com/peakcrest/roofline/repository"
	"github.com/peakcrest/roofline/utils"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// DetailedEstimateFlow handles the detailed estimation business logic
type DetailedEstimateFlow interface {
	Create(ctx context.Context, req *dto.CreateDetailedEstimateRequest, metadata *ClientMetadata) (*dto.CreateDetailedEstimateResponse, error)
	GetCurrent(ctx context.Context, leadUUID string) (*dto.GetDetailedEstimateResponse, error)
	ToggleLineItem(ctx context.Context, req *dto.ToggleLineItemRequest, metadata *ClientMetadata) (*dto.ToggleLineItemResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateEstimateStatusRequest, metadata *ClientMetadata) (*dto.UpdateEstimateStatusResponse, error)
	ExportXLSX(ctx context.Context, estimateUUID string) ([]byte, string, error)
}

// DetailedEstimateFlowImpl implements the detailed estimation business flow
type DetailedEstimateFlowImpl struct {
	leadRepo      repository.LeadRepository
	lineItemRepo  repository.LineItemRepository
	macroRepo     repository.EstimateMacroRepository
	detailedRepo  repository.DetailedEstimateRepository
	regionRepo    repository.GeographicPricingRepository
	pricingConfig config.PricingConfig
	cacheConfig   *config.CacheConfig
	rc            *redis.Client
	db            *gorm.DB
}

// NewDetailedEstimateFlow creates a new detailed estimation flow instance
func NewDetailedEstimateFlow(
	leadRepo repository.LeadRepository,
	lineItemRepo repository.LineItemRepository,
	macroRepo repository.EstimateMacroRepository,
	detailedRepo repository.DetailedEstimateRepository,
	regionRepo repository.GeographicPricingRepository,
	db *gorm.DB,
	rc *redis.Client,
	pricingConfig config.PricingConfig,
	cacheConfig *config.CacheConfig,
) DetailedEstimateFlow {
	return &DetailedEstimateFlowImpl{
		leadRepo:      leadRepo,
		lineItemRepo:  lineItemRepo,
		macroRepo:     macroRepo,
		detailedRepo:  detailedRepo,
		regionRepo:    regionRepo,
		pricingConfig: pricingConfig,
		cacheConfig:   cacheConfig,
		rc:            rc,
		db:            db,
	}
}

// Create builds a full line-item estimate for a lead and persists it as
// the lead's current detailed estimate, superseding prior versions in
// the same transaction that inserts the new one.
func (s *DetailedEstimateFlowImpl) Create(ctx context.Context, req *dto.CreateDetailedEstimateRequest, metadata *ClientMetadata) (*dto.CreateDetailedEstimateResponse, error) {
	lead, err := getLead(ctx, s.leadRepo, req.LeadUUID)
	if err != nil {
		return nil, NewBusinessError("LEAD_LOOKUP_FAILED", "Failed to lookup lead", err)
	}
	lead, err = s.leadRepo.WithSlopes(ctx, lead.ID)
	if err != nil {
		return nil, NewBusinessError("LEAD_LOOKUP_FAILED", "Failed to load lead measurements", err)
	}

	vars, err := pricing.ResolveFromSlopes(leadSlopes(lead), leadDimensions(lead))
	if err != nil {
		return nil, NewBusinessError("MEASUREMENT_VALIDATION_FAILED", "Roof measurements are invalid", err)
	}

	lines, err := s.resolveLines(ctx, req)
	if err != nil {
		return nil, err
	}

	region, err := s.resolveRegion(ctx, req.RegionID, lead.ZipCode)
	if err != nil {
		return nil, err
	}

	tax := pricing.TaxPolicy{IncludeMarkup: s.pricingConfig.TaxIncludesMarkup}
	if req.TaxIncludesMarkup != nil {
		tax.IncludeMarkup = *req.TaxIncludesMarkup
	}

	input := pricing.DetailedInput{
		Lines: lines,
		Vars:  vars.ToMap(),

		OverheadPercent: req.OverheadPercent,
		ProfitPercent:   req.ProfitPercent,
		TaxPercent:      req.TaxPercent,
		Tax:             tax,
	}
	if region != nil {
		geo := region.Multipliers()
		input.Geo = &geo
	}

	result, err := pricing.ComputeDetailed(input)
	if err != nil {
		return nil, NewBusinessError("ESTIMATE_COMPUTATION_FAILED", "Estimate computation failed", err)
	}

	estimate := s.toEstimateModel(lead, req, region, tax, result)
	if err := s.detailedRepo.SupersedeAndInsert(ctx, estimate); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessError("ESTIMATE_VERSION_CONFLICT", "A concurrent estimate creation won the version race", ErrEstimateVersionConflict)
		}
		return nil, NewBusinessError("ESTIMATE_PERSIST_FAILED", "Failed to persist detailed estimate", err)
	}

	return &dto.CreateDetailedEstimateResponse{
		Message:  "Detailed estimate created successfully",
		Estimate: ToDetailedEstimateDTO(*estimate, lead.UUID.String()),
	}, nil
}

// GetCurrent returns the lead's non-superseded detailed estimate.
func (s *DetailedEstimateFlowImpl) GetCurrent(ctx context.Context, leadUUID string) (*dto.GetDetailedEstimateResponse, error) {
	lead, err := getLead(ctx, s.leadRepo, leadUUID)
	if err != nil {
		return nil, NewBusinessError("LEAD_LOOKUP_FAILED", "Failed to lookup lead", err)
	}

	estimate, err := s.detailedRepo.CurrentByLead(ctx, lead.ID)
	if err != nil {
		return nil, NewBusinessError("ESTIMATE_LOOKUP_FAILED", "Failed to lookup detailed estimate", err)
	}
	if estimate == nil {
		return nil, NewBusinessError("ESTIMATE_NOT_FOUND", "No detailed estimate exists for this lead", ErrDetailedEstimateNotFound)
	}

	return &dto.GetDetailedEstimateResponse{
		Message:  "Detailed estimate retrieved successfully",
		Estimate: ToDetailedEstimateDTO(*estimate, lead.UUID.String()),
	}, nil
}

// ToggleLineItem flips one line's inclusion flag on a draft estimate and
// re-aggregates the totals. Quantities and unit costs are untouched.
func (s *DetailedEstimateFlowImpl) ToggleLineItem(ctx context.Context, req *dto.ToggleLineItemRequest, metadata *ClientMetadata) (*dto.ToggleLineItemResponse, error) {
	estimate, err := s.getEstimate(ctx, req.EstimateUUID)
	if err != nil {
		return nil, err
	}
	if estimate.IsTerminal() {
		return nil, NewBusinessError("ESTIMATE_NOT_DRAFT", "Only draft estimates can be modified", ErrEstimateNotDraft)
	}

	var target *models.EstimateLineItem
	for i := range estimate.Lines {
		if estimate.Lines[i].ID == req.LineID {
			target = &estimate.Lines[i]
			break
		}
	}
	if target == nil {
		return nil, NewBusinessError("ESTIMATE_LINE_NOT_FOUND", "Line item not found on estimate", ErrEstimateLineNotFound)
	}

	leadUUID := s.leadUUIDFor(ctx, estimate.LeadID)

	if target.IsIncluded == req.Included {
		return &dto.ToggleLineItemResponse{
			Message:  "Line item inclusion unchanged",
			Estimate: ToDetailedEstimateDTO(*estimate, leadUUID),
		}, nil
	}
	target.IsIncluded = req.Included

	result := pricing.RepriceLines(
		toComputedLines(estimate.Lines),
		estimate.OverheadPercent,
		estimate.ProfitPercent,
		estimate.TaxPercent,
		pricing.TaxPolicy{IncludeMarkup: estimate.TaxIncludesMarkup},
		estimate.GeographicAdjustment,
	)
	applyTotals(estimate, result)

	if err := s.detailedRepo.UpdateLineInclusion(ctx, estimate, target); err != nil {
		return nil, NewBusinessError("ESTIMATE_PERSIST_FAILED", "Failed to persist line item toggle", err)
	}

	return &dto.ToggleLineItemResponse{
		Message:  "Line item inclusion updated successfully",
		Estimate: ToDetailedEstimateDTO(*estimate, leadUUID),
	}, nil
}

// UpdateStatus transitions a draft estimate to approved or sent, and an
// approved estimate to sent. Status changes never retrigger calculation.
func (s *DetailedEstimateFlowImpl) UpdateStatus(ctx context.Context, req *dto.UpdateEstimateStatusRequest, metadata *ClientMetadata) (*dto.UpdateEstimateStatusResponse, error) {
	estimate, err := s.getEstimate(ctx, req.EstimateUUID)
	if err != nil {
		return nil, err
	}

	allowed := false
	switch req.Status {
	case models.EstimateStatusApproved:
		allowed = estimate.Status == models.EstimateStatusDraft
	case models.EstimateStatusSent:
		allowed = estimate.Status == models.EstimateStatusDraft || estimate.Status == models.EstimateStatusApproved
	}
	if !allowed {
		return nil, NewBusinessErrorf("INVALID_STATUS_TRANSITION", "Cannot transition estimate from %s to %s", ErrInvalidStatusTransition, estimate.Status, req.Status)
	}

	if err := s.detailedRepo.UpdateStatus(ctx, estimate.ID, req.Status); err != nil {
		return nil, NewBusinessError("ESTIMATE_PERSIST_FAILED", "Failed to update estimate status", err)
	}

	return &dto.UpdateEstimateStatusResponse{
		Message: "Estimate status updated successfully",
		UUID:    estimate.UUID.String(),
		Status:  req.Status,
	}, nil
}

// ExportXLSX renders the estimate as a spreadsheet and returns the file
// bytes with a suggested filename.
func (s *DetailedEstimateFlowImpl) ExportXLSX(ctx context.Context, estimateUUID string) ([]byte, string, error) {
	estimate, err := s.getEstimate(ctx, estimateUUID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Estimate"
	f.SetSheetName("Sheet1", sheet)

	rows := [][]any{
		{"Estimate", estimate.UUID.String()},
		{"Version", estimate.Version},
		{"Status", estimate.Status},
		{},
		{"Item Code", "Name", "Group", "Unit", "Quantity", "Waste", "Qty w/ Waste", "Material", "Labor", "Equipment", "Line Total", "Taxable", "Included"},
	}
	for _, line := range estimate.Lines {
		rows = append(rows, []any{
			line.ItemCode, line.Name, line.GroupName, line.UnitType,
			line.Quantity, line.WasteFactor, line.QuantityWithWaste,
			line.MaterialUnitCost, line.LaborUnitCost, line.EquipmentUnitCost,
			line.LineTotal, line.Taxable, line.IsIncluded,
		})
	}
	rows = append(rows,
		[]any{},
		[]any{"Total Material", estimate.TotalMaterial},
		[]any{"Total Labor", estimate.TotalLabor},
		[]any{"Total Equipment", estimate.TotalEquipment},
		[]any{"Subtotal", estimate.Subtotal},
		[]any{fmt.Sprintf("Overhead (%.2f%%)", estimate.OverheadPercent), estimate.OverheadAmount},
		[]any{fmt.Sprintf("Profit (%.2f%%)", estimate.ProfitPercent), estimate.ProfitAmount},
		[]any{fmt.Sprintf("Tax (%.2f%%)", estimate.TaxPercent), estimate.TaxAmount},
		[]any{"Geographic Adjustment", estimate.GeographicAdjustment},
		[]any{},
		[]any{"Price Low", estimate.PriceLow},
		[]any{"Price Likely", estimate.PriceLikely},
		[]any{"Price High", estimate.PriceHigh},
	)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, "", NewBusinessError("ESTIMATE_EXPORT_FAILED", "Failed to render estimate workbook", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", NewBusinessError("ESTIMATE_EXPORT_FAILED", "Failed to render estimate workbook", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", NewBusinessError("ESTIMATE_EXPORT_FAILED", "Failed to write estimate workbook", err)
	}

	filename := fmt.Sprintf("estimate_%s_v%d.xlsx", estimate.UUID.String(), estimate.Version)
	return buf.Bytes(), filename, nil
}

// resolveLines builds the engine line inputs from a macro expansion, an
// explicit item code list, or the whole active catalog.
func (s *DetailedEstimateFlowImpl) resolveLines(ctx context.Context, req *dto.CreateDetailedEstimateRequest) ([]pricing.LineInput, error) {
	if req.MacroID != nil {
		return s.linesFromMacro(ctx, *req.MacroID)
	}
	if len(req.ItemCodes) > 0 {
		return s.linesFromCodes(ctx, req.ItemCodes)
	}

	items, err := s.lineItemRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("CATALOG_LOOKUP_FAILED", "Failed to load line item catalog", err)
	}
	if len(items) == 0 {
		return nil, NewBusinessError("CATALOG_EMPTY", "No active line items configured", ErrCatalogEmpty)
	}

	lines := make([]pricing.LineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, lineFromCatalog(item, true, false))
	}
	return lines, nil
}

func (s *DetailedEstimateFlowImpl) linesFromMacro(ctx context.Context, macroID uint) ([]pricing.LineInput, error) {
	macro, err := s.macroRepo.WithItems(ctx, macroID)
	if err != nil {
		return nil, NewBusinessError("MACRO_LOOKUP_FAILED", "Failed to lookup estimate macro", err)
	}
	if macro == nil || !utils.IsTrue(macro.IsActive) {
		return nil, NewBusinessError("MACRO_NOT_FOUND", "Estimate macro not found", ErrMacroNotFound)
	}
	if len(macro.Items) == 0 {
		return nil, NewBusinessError("MACRO_EMPTY", "Estimate macro has no line items", ErrMacroEmpty)
	}

	items := make([]models.MacroLineItem, len(macro.Items))
	copy(items, macro.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })

	lines := make([]pricing.LineInput, 0, len(items))
	for _, assoc := range items {
		item := assoc.LineItem
		if !utils.IsTrue(item.IsActive) {
			// Deactivated catalog entries silently drop out of expansions.
			log.Printf("detailed estimate: macro %d skips inactive line item %s", macroID, item.ItemCode)
			continue
		}

		optional := utils.IsTrue(assoc.IsOptional)
		included := !optional
		if assoc.SelectedByDefault != nil {
			included = *assoc.SelectedByDefault
		}
		line := lineFromCatalog(&item, included, optional)
		line.Group = assoc.GroupName

		if assoc.QuantityFormulaOverride != nil {
			line.QuantityFormula = *assoc.QuantityFormulaOverride
		}
		if assoc.WasteFactorOverride != nil {
			line.WasteFactor = *assoc.WasteFactorOverride
		}
		if assoc.MaterialCostOverride != nil {
			line.MaterialUnitCost = *assoc.MaterialCostOverride
		}
		if assoc.LaborCostOverride != nil {
			line.LaborUnitCost = *assoc.LaborCostOverride
		}

		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, NewBusinessError("MACRO_EMPTY", "Estimate macro resolved no active line items", ErrNoLinesResolved)
	}
	return lines, nil
}

func (s *DetailedEstimateFlowImpl) linesFromCodes(ctx context.Context, codes []string) ([]pricing.LineInput, error) {
	lines := make([]pricing.LineInput, 0, len(codes))
	for _, code := range codes {
		item, err := s.lineItemRepo.ByItemCode(ctx, code)
		if err != nil {
			return nil, NewBusinessError("CATALOG_LOOKUP_FAILED", "Failed to lookup line item", err)
		}
		if item == nil {
			return nil, NewBusinessErrorf("LINE_ITEM_NOT_FOUND", "Line item %s not found", ErrLineItemNotFound, code)
		}
		if !utils.IsTrue(item.IsActive) {
			return nil, NewBusinessErrorf("LINE_ITEM_INACTIVE", "Line item %s is inactive", ErrLineItemInactive, code)
		}
		lines = append(lines, lineFromCatalog(item, true, false))
	}
	return lines, nil
}

// resolveRegion picks the pricing region: explicit id wins, otherwise
// the lead's zip code is looked up through the cache. No match means no
// geographic adjustment.
func (s *DetailedEstimateFlowImpl) resolveRegion(ctx context.Context, regionID *uint, zipCode string) (*models.GeographicPricing, error) {
	if regionID != nil {
		region, err := s.regionRepo.ByID(ctx, *regionID)
		if err != nil {
			return nil, NewBusinessError("REGION_LOOKUP_FAILED", "Failed to lookup pricing region", err)
		}
		if region == nil || !utils.IsTrue(region.IsActive) {
			return nil, NewBusinessError("REGION_NOT_FOUND", "Pricing region not found", ErrRegionNotFound)
		}
		return region, nil
	}

	if zipCode == "" {
		return nil, nil
	}

	cacheKey := redisKey(*s.cacheConfig, utils.RegionZipCacheKeyPrefix+zipCode)
	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var region models.GeographicPricing
			if err := json.Unmarshal(bs, &region); err == nil && region.ID != 0 {
				return &region, nil
			}
		}
	}

	region, err := s.regionRepo.ByZipCode(ctx, zipCode)
	if err != nil {
		return nil, NewBusinessError("REGION_LOOKUP_FAILED", "Failed to lookup pricing region", err)
	}
	if region == nil {
		return nil, nil
	}

	if s.rc != nil {
		if bs, err := json.Marshal(region); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, utils.RegionZipCacheTTL).Err()
		}
	}
	return region, nil
}

func (s *DetailedEstimateFlowImpl) getEstimate(ctx context.Context, estimateUUID string) (*models.DetailedEstimate, error) {
	estimate, err := s.detailedRepo.ByUUID(ctx, estimateUUID)
	if err != nil {
		return nil, NewBusinessError("ESTIMATE_LOOKUP_FAILED", "Failed to lookup detailed estimate", err)
	}
	if estimate == nil {
		return nil, NewBusinessError("ESTIMATE_NOT_FOUND", "Detailed estimate not found", ErrDetailedEstimateNotFound)
	}
	return estimate, nil
}

func (s *DetailedEstimateFlowImpl) leadUUIDFor(ctx context.Context, leadID uint) string {
	lead, err := s.leadRepo.ByID(ctx, leadID)
	if err != nil || lead == nil {
		return ""
	}
	return lead.UUID.String()
}

func (s *DetailedEstimateFlowImpl) toEstimateModel(lead *models.Lead, req *dto.CreateDetailedEstimateRequest, region *models.GeographicPricing, tax pricing.TaxPolicy, result pricing.DetailedResult) *models.DetailedEstimate {
	estimate := &models.DetailedEstimate{
		LeadID:  lead.ID,
		MacroID: req.MacroID,

		TotalMaterial:  result.TotalMaterial,
		TotalLabor:     result.TotalLabor,
		TotalEquipment: result.TotalEquipment,
		Subtotal:       result.Subtotal,

		OverheadPercent: req.OverheadPercent,
		OverheadAmount:  result.OverheadAmount,
		ProfitPercent:   req.ProfitPercent,
		ProfitAmount:    result.ProfitAmount,

		TaxableAmount:     result.TaxableAmount,
		TaxPercent:        req.TaxPercent,
		TaxAmount:         result.TaxAmount,
		TaxIncludesMarkup: tax.IncludeMarkup,

		GeographicAdjustment: result.GeoFactor,

		PriceLow:    result.PriceLow,
		PriceLikely: result.PriceLikely,
		PriceHigh:   result.PriceHigh,

		Status: models.EstimateStatusDraft,

		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if region != nil {
		estimate.GeographicRegionID = utils.ToPtr(region.ID)
	}

	for i, line := range result.Lines {
		estimate.Lines = append(estimate.Lines, models.EstimateLineItem{
			ItemCode:  line.ItemCode,
			Name:      line.Name,
			Category:  line.Category,
			UnitType:  line.UnitType,
			GroupName: line.Group,
			SortOrder: i,

			Quantity:          line.Quantity,
			WasteFactor:       line.WasteFactor,
			QuantityWithWaste: line.QuantityWithWaste,

			MaterialUnitCost:  line.MaterialUnitCost,
			LaborUnitCost:     line.LaborUnitCost,
			EquipmentUnitCost: line.EquipmentUnitCost,
			LineTotal:         line.LineTotal,

			Taxable:    line.Taxable,
			IsOptional: line.Optional,
			IsIncluded: line.Included,
		})
	}
	return estimate
}

func lineFromCatalog(item *models.LineItem, included, optional bool) pricing.LineInput {
	waste := item.DefaultWasteFactor
	if waste < 1 {
		waste = 1
	}
	return pricing.LineInput{
		ItemCode: item.ItemCode,
		Name:     item.Name,
		Category: item.Category,
		UnitType: item.UnitType,

		QuantityFormula: item.QuantityFormula,
		WasteFactor:     waste,

		MaterialUnitCost:  item.MaterialUnitCost,
		LaborUnitCost:     item.LaborUnitCost,
		EquipmentUnitCost: item.EquipmentUnitCost,

		Taxable:  item.Taxable == nil || *item.Taxable,
		Optional: optional,
		Included: included,
	}
}

func toComputedLines(lines []models.EstimateLineItem) []pricing.ComputedLine {
	out := make([]pricing.ComputedLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, pricing.ComputedLine{
			LineInput: pricing.LineInput{
				ItemCode: line.ItemCode,
				Name:     line.Name,
				Category: line.Category,
				UnitType: line.UnitType,
				Group:    line.GroupName,

				WasteFactor: line.WasteFactor,

				MaterialUnitCost:  line.MaterialUnitCost,
				LaborUnitCost:     line.LaborUnitCost,
				EquipmentUnitCost: line.EquipmentUnitCost,

				Taxable:  line.Taxable,
				Optional: line.IsOptional,
				Included: line.IsIncluded,
			},
			Quantity:          line.Quantity,
			QuantityWithWaste: line.QuantityWithWaste,
			LineTotal:         line.LineTotal,
		})
	}
	return out
}

func applyTotals(estimate *models.DetailedEstimate, result pricing.DetailedResult) {
	estimate.TotalMaterial = result.TotalMaterial
	estimate.TotalLabor = result.TotalLabor
	estimate.TotalEquipment = result.TotalEquipment
	estimate.Subtotal = result.Subtotal
	estimate.OverheadAmount = result.OverheadAmount
	estimate.ProfitAmount = result.ProfitAmount
	estimate.TaxableAmount = result.TaxableAmount
	estimate.TaxAmount = result.TaxAmount
	estimate.PriceLow = result.PriceLow
	estimate.PriceLikely = result.PriceLikely
	estimate.PriceHigh = result.PriceHigh
}
