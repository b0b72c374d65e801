// Package testing provides test utilities and database setup for testing the estimation system
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/pricing"
	"github.com/peakcrest/roofline/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestLead creates a lead with simple outline measurements and no slope rows
func (tf *TestFixtures) CreateTestLead() (*models.Lead, error) {
	suffix := rand.Intn(10000000)
	email := fmt.Sprintf("jane.homeowner.%d@example.com", suffix)
	phone := fmt.Sprintf("+1303555%04d", rand.Intn(10000))

	lead := &models.Lead{
		UUID:            uuid.New(),
		FirstName:       "Jane",
		LastName:        "Homeowner",
		Email:           &email,
		Phone:           &phone,
		AddressLine:     "42 Shingle Court",
		City:            "Denver",
		State:           "CO",
		ZipCode:         "80203",
		JobType:         "full_replacement",
		RoofMaterial:    "asphalt_shingle",
		RoofSizeSqFt:    2400,
		RoofPitch:       6,
		Stories:         2,
		TimelineUrgency: models.UrgencyFlexible,
		RoofLengthFt:    60,
		RoofWidthFt:     40,
		SkylightCount:   1,
		ChimneyCount:    1,
		PipeCount:       3,
		VentCount:       2,
		GutterLengthFt:  120,
		DownspoutCount:  4,
		Issues:          pq.StringArray{"missing_shingles"},
	}

	if err := tf.DB.DB.Create(lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create test lead: %w", err)
	}

	return lead, nil
}

// CreateTestLeadWithSlopes creates a lead plus per-slope measurement rows
func (tf *TestFixtures) CreateTestLeadWithSlopes() (*models.Lead, error) {
	lead, err := tf.CreateTestLead()
	if err != nil {
		return nil, err
	}

	slopes := []*models.RoofSlope{
		{LeadID: lead.ID, Name: "front", Squares: 12, EaveFt: 40, RidgeFt: 40, RakeFt: 24, Pitch: 6},
		{LeadID: lead.ID, Name: "back", Squares: 12, EaveFt: 40, RakeFt: 24, ValleyFt: 14, Pitch: 8},
	}

	for _, slope := range slopes {
		if err := tf.DB.DB.Create(slope).Error; err != nil {
			return nil, fmt.Errorf("failed to create test roof slope: %w", err)
		}
	}

	lead.Slopes = nil
	if err := tf.DB.DB.Preload("Slopes").First(lead, lead.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload test lead: %w", err)
	}

	return lead, nil
}

// SeedDefaultPricingRules persists the built-in quick-engine rule set
func (tf *TestFixtures) SeedDefaultPricingRules() ([]*models.PricingRule, error) {
	var rows []*models.PricingRule
	for _, rule := range pricing.DefaultRules() {
		row := &models.PricingRule{
			RuleKey:      rule.Key,
			RuleCategory: string(rule.Category),
			Kind:         string(rule.Kind),
			Label:        rule.Label,
			MatchValue:   rule.Match,
			BaseRate:     rule.BaseRate,
			Unit:         rule.Unit,
			Multiplier:   rule.Multiplier,
			FlatFee:      rule.FlatFee,
			MinCharge:    rule.MinCharge,
			MaxCharge:    rule.MaxCharge,
			IsActive:     utils.ToPtr(true),
		}
		if err := tf.DB.DB.Create(row).Error; err != nil {
			return nil, fmt.Errorf("failed to seed pricing rule %s: %w", rule.Key, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CreateTestLineItem creates an active catalog entry with a unique item code
func (tf *TestFixtures) CreateTestLineItem(itemCode, formula string) (*models.LineItem, error) {
	item := &models.LineItem{
		ItemCode:           itemCode,
		Name:               fmt.Sprintf("Test item %s", itemCode),
		Category:           "roofing",
		UnitType:           "square",
		MaterialUnitCost:   95,
		LaborUnitCost:      60,
		EquipmentUnitCost:  5,
		QuantityFormula:    formula,
		DefaultWasteFactor: 1.1,
		Taxable:            utils.ToPtr(true),
		IsActive:           utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test line item: %w", err)
	}

	return item, nil
}

// SeedCatalog creates a small active catalog covering the common roof variables
func (tf *TestFixtures) SeedCatalog() ([]*models.LineItem, error) {
	specs := []struct {
		code    string
		formula string
	}{
		{"SHINGLE_ARCH", "SQ"},
		{"UNDERLAYMENT_SYN", "SQ"},
		{"DRIP_EDGE", "EAVE + RAKE"},
		{"RIDGE_CAP", "RIDGE + HIP"},
		{"TEAR_OFF", "SQ"},
	}

	var items []*models.LineItem
	for _, spec := range specs {
		item, err := tf.CreateTestLineItem(spec.code, spec.formula)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CreateTestMacro creates a macro binding the given catalog entries in order
func (tf *TestFixtures) CreateTestMacro(name string, items []*models.LineItem) (*models.EstimateMacro, error) {
	macro := &models.EstimateMacro{
		Name:        name,
		Description: "Full replacement template for testing",
		JobType:     "full_replacement",
		RoofType:    "asphalt_shingle",
		IsActive:    utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(macro).Error; err != nil {
		return nil, fmt.Errorf("failed to create test macro: %w", err)
	}

	for i, item := range items {
		binding := &models.MacroLineItem{
			MacroID:           macro.ID,
			LineItemID:        item.ID,
			SortOrder:         i,
			GroupName:         "base",
			IsOptional:        utils.ToPtr(false),
			SelectedByDefault: utils.ToPtr(true),
		}
		if err := tf.DB.DB.Create(binding).Error; err != nil {
			return nil, fmt.Errorf("failed to bind line item %s to macro: %w", item.ItemCode, err)
		}
	}

	if err := tf.DB.DB.Preload("Items.LineItem").First(macro, macro.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload test macro: %w", err)
	}

	return macro, nil
}

// CreateTestRegion creates an active pricing region covering the given zip codes
func (tf *TestFixtures) CreateTestRegion(name string, zipCodes ...string) (*models.GeographicPricing, error) {
	region := &models.GeographicPricing{
		Name:                name,
		State:               "CO",
		ZipCodes:            pq.StringArray(zipCodes),
		MaterialMultiplier:  1.05,
		LaborMultiplier:     1.15,
		EquipmentMultiplier: 1.0,
		IsActive:            utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(region).Error; err != nil {
		return nil, fmt.Errorf("failed to create test region: %w", err)
	}

	return region, nil
}
