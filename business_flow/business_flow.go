// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/peakcrest/roofline/app/dto"
	"github.com/peakcrest/roofline/config"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/pricing"
	"github.com/peakcrest/roofline/repository"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for request tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func redisKey(cfg config.CacheConfig, key string) string {
	if cfg.RedisPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", cfg.RedisPrefix, key)
}

// getLead fetches a lead by public UUID and maps missing rows to the
// not-found sentinel.
func getLead(ctx context.Context, repo repository.LeadRepository, leadUUID string) (*models.Lead, error) {
	if leadUUID == "" {
		return nil, ErrLeadUUIDRequired
	}
	lead, err := repo.ByUUID(ctx, leadUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// leadDimensions converts intake measurement columns to the geometry
// resolver's input.
func leadDimensions(lead *models.Lead) pricing.Dimensions {
	return pricing.Dimensions{
		LengthFt: lead.RoofLengthFt,
		WidthFt:  lead.RoofWidthFt,
		Pitch:    lead.RoofPitch,
		Stories:  lead.Stories,

		SkylightCount: lead.SkylightCount,
		ChimneyCount:  lead.ChimneyCount,
		PipeCount:     lead.PipeCount,
		VentCount:     lead.VentCount,

		GutterLengthFt: lead.GutterLengthFt,
		DownspoutCount: lead.DownspoutCount,
	}
}

func leadSlopes(lead *models.Lead) []pricing.SlopeMeasurement {
	if len(lead.Slopes) == 0 {
		return nil
	}
	slopes := make([]pricing.SlopeMeasurement, 0, len(lead.Slopes))
	for _, s := range lead.Slopes {
		slopes = append(slopes, pricing.SlopeMeasurement{
			Name:     s.Name,
			Squares:  s.Squares,
			EaveFt:   s.EaveFt,
			RidgeFt:  s.RidgeFt,
			RakeFt:   s.RakeFt,
			ValleyFt: s.ValleyFt,
			HipFt:    s.HipFt,
			Pitch:    s.Pitch,
		})
	}
	return slopes
}

// ToLeadDTO converts a lead model to its external representation
func ToLeadDTO(lead models.Lead) dto.LeadDTO {
	out := dto.LeadDTO{
		ID:        lead.ID,
		UUID:      lead.UUID.String(),
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,

		AddressLine: lead.AddressLine,
		City:        lead.City,
		State:       lead.State,
		ZipCode:     lead.ZipCode,

		JobType:         lead.JobType,
		RoofMaterial:    lead.RoofMaterial,
		RoofSizeSqFt:    lead.RoofSizeSqFt,
		RoofPitch:       lead.RoofPitch,
		Stories:         lead.Stories,
		HasSkylights:    lead.HasSkylights,
		HasChimneys:     lead.HasChimneys,
		HasSolarPanels:  lead.HasSolarPanels,
		Issues:          lead.Issues,
		TimelineUrgency: lead.TimelineUrgency,

		RoofLengthFt:   lead.RoofLengthFt,
		RoofWidthFt:    lead.RoofWidthFt,
		SkylightCount:  lead.SkylightCount,
		ChimneyCount:   lead.ChimneyCount,
		PipeCount:      lead.PipeCount,
		VentCount:      lead.VentCount,
		GutterLengthFt: lead.GutterLengthFt,
		DownspoutCount: lead.DownspoutCount,

		CreatedAt: lead.CreatedAt.Format(time.RFC3339),
	}
	for _, s := range lead.Slopes {
		out.Slopes = append(out.Slopes, dto.RoofSlopeInput{
			Name:     s.Name,
			Squares:  s.Squares,
			EaveFt:   s.EaveFt,
			RidgeFt:  s.RidgeFt,
			RakeFt:   s.RakeFt,
			ValleyFt: s.ValleyFt,
			HipFt:    s.HipFt,
			Pitch:    s.Pitch,
		})
	}
	return out
}

// ToQuickEstimateDTO converts a quick estimate model to its external representation
func ToQuickEstimateDTO(estimate models.QuickEstimate, leadUUID string) dto.QuickEstimateDTO {
	out := dto.QuickEstimateDTO{
		UUID:     estimate.UUID.String(),
		LeadUUID: leadUUID,

		JobType:      estimate.JobType,
		RoofSizeSqFt: estimate.RoofSizeSqFt,

		BaseCost:     estimate.BaseCost,
		MaterialCost: estimate.MaterialCost,
		LaborCost:    estimate.LaborCost,
		PriceLow:     estimate.PriceLow,
		PriceLikely:  estimate.PriceLikely,
		PriceHigh:    estimate.PriceHigh,

		UsedDefaultRules: estimate.UsedDefaultRules,

		Version:   estimate.Version,
		CreatedAt: estimate.CreatedAt.Format(time.RFC3339),
	}
	if len(estimate.Adjustments) > 0 {
		var adjustments []pricing.Adjustment
		if err := json.Unmarshal(estimate.Adjustments, &adjustments); err == nil {
			out.Adjustments = ToAdjustmentDTOs(adjustments)
		}
	}
	return out
}

// ToAdjustmentDTOs converts engine adjustments preserving application order
func ToAdjustmentDTOs(adjustments []pricing.Adjustment) []dto.AdjustmentDTO {
	out := make([]dto.AdjustmentDTO, 0, len(adjustments))
	for _, a := range adjustments {
		out = append(out, dto.AdjustmentDTO{
			Category: string(a.Category),
			RuleKey:  a.RuleKey,
			Label:    a.Label,
			Impact:   a.Impact,
		})
	}
	return out
}

// ToDetailedEstimateDTO converts a detailed estimate model to its external representation
func ToDetailedEstimateDTO(estimate models.DetailedEstimate, leadUUID string) dto.DetailedEstimateDTO {
	out := dto.DetailedEstimateDTO{
		UUID:     estimate.UUID.String(),
		LeadUUID: leadUUID,
		MacroID:  estimate.MacroID,

		TotalMaterial:  estimate.TotalMaterial,
		TotalLabor:     estimate.TotalLabor,
		TotalEquipment: estimate.TotalEquipment,
		Subtotal:       estimate.Subtotal,

		OverheadPercent: estimate.OverheadPercent,
		OverheadAmount:  estimate.OverheadAmount,
		ProfitPercent:   estimate.ProfitPercent,
		ProfitAmount:    estimate.ProfitAmount,

		TaxableAmount: estimate.TaxableAmount,
		TaxPercent:    estimate.TaxPercent,
		TaxAmount:     estimate.TaxAmount,

		GeographicRegionID:   estimate.GeographicRegionID,
		GeographicAdjustment: estimate.GeographicAdjustment,

		PriceLow:    estimate.PriceLow,
		PriceLikely: estimate.PriceLikely,
		PriceHigh:   estimate.PriceHigh,

		Version:   estimate.Version,
		Status:    estimate.Status,
		CreatedAt: estimate.CreatedAt.Format(time.RFC3339),
	}
	for _, line := range estimate.Lines {
		out.Lines = append(out.Lines, dto.EstimateLineDTO{
			ID:        line.ID,
			ItemCode:  line.ItemCode,
			Name:      line.Name,
			Category:  line.Category,
			UnitType:  line.UnitType,
			GroupName: line.GroupName,
			SortOrder: line.SortOrder,

			Quantity:          line.Quantity,
			WasteFactor:       line.WasteFactor,
			QuantityWithWaste: line.QuantityWithWaste,

			MaterialUnitCost:  line.MaterialUnitCost,
			LaborUnitCost:     line.LaborUnitCost,
			EquipmentUnitCost: line.EquipmentUnitCost,
			LineTotal:         line.LineTotal,

			Taxable:    line.Taxable,
			IsOptional: line.IsOptional,
			IsIncluded: line.IsIncluded,
		})
	}
	return out
}

// ToPricingRuleDTO converts a pricing rule model to its external representation
func ToPricingRuleDTO(rule models.PricingRule) dto.PricingRuleDTO {
	return dto.PricingRuleDTO{
		ID:           rule.ID,
		RuleKey:      rule.RuleKey,
		RuleCategory: rule.RuleCategory,
		Kind:         rule.Kind,
		Label:        rule.Label,
		MatchValue:   rule.MatchValue,

		BaseRate:   rule.BaseRate,
		Unit:       rule.Unit,
		Multiplier: rule.Multiplier,
		FlatFee:    rule.FlatFee,

		MinCharge: rule.MinCharge,
		MaxCharge: rule.MaxCharge,

		IsActive:  rule.IsActive == nil || *rule.IsActive,
		CreatedAt: rule.CreatedAt.Format(time.RFC3339),
	}
}

// ToLineItemDTO converts a line item model to its external representation
func ToLineItemDTO(item models.LineItem) dto.LineItemDTO {
	return dto.LineItemDTO{
		ID:       item.ID,
		ItemCode: item.ItemCode,
		Name:     item.Name,
		Category: item.Category,
		UnitType: item.UnitType,

		MaterialUnitCost:  item.MaterialUnitCost,
		LaborUnitCost:     item.LaborUnitCost,
		EquipmentUnitCost: item.EquipmentUnitCost,

		QuantityFormula:    item.QuantityFormula,
		DefaultWasteFactor: item.DefaultWasteFactor,

		Taxable:  item.Taxable == nil || *item.Taxable,
		IsActive: item.IsActive == nil || *item.IsActive,

		CreatedAt: item.CreatedAt.Format(time.RFC3339),
	}
}

// ToEstimateMacroDTO converts a macro model with its associations
func ToEstimateMacroDTO(macro models.EstimateMacro) dto.EstimateMacroDTO {
	out := dto.EstimateMacroDTO{
		ID:          macro.ID,
		Name:        macro.Name,
		Description: macro.Description,
		JobType:     macro.JobType,
		RoofType:    macro.RoofType,
		IsActive:    macro.IsActive == nil || *macro.IsActive,
		CreatedAt:   macro.CreatedAt.Format(time.RFC3339),
	}
	for _, item := range macro.Items {
		out.Items = append(out.Items, dto.MacroItemDTO{
			LineItemID: item.LineItemID,
			ItemCode:   item.LineItem.ItemCode,
			Name:       item.LineItem.Name,
			SortOrder:  item.SortOrder,
			GroupName:  item.GroupName,

			QuantityFormulaOverride: item.QuantityFormulaOverride,
			WasteFactorOverride:     item.WasteFactorOverride,
			MaterialCostOverride:    item.MaterialCostOverride,
			LaborCostOverride:       item.LaborCostOverride,

			IsOptional:        item.IsOptional != nil && *item.IsOptional,
			SelectedByDefault: item.SelectedByDefault == nil || *item.SelectedByDefault,
		})
	}
	return out
}

// ToRegionDTO converts a pricing region model to its external representation
func ToRegionDTO(region models.GeographicPricing) dto.RegionDTO {
	return dto.RegionDTO{
		ID:     region.ID,
		Name:   region.Name,
		State:  region.State,
		County: region.County,

		ZipCodes: region.ZipCodes,

		MaterialMultiplier:  region.MaterialMultiplier,
		LaborMultiplier:     region.LaborMultiplier,
		EquipmentMultiplier: region.EquipmentMultiplier,

		IsActive:  region.IsActive == nil || *region.IsActive,
		CreatedAt: region.CreatedAt.Format(time.RFC3339),
	}
}
