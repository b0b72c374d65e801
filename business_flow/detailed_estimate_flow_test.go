// Package businessflow_test contains integration tests for the detailed estimation flow
package businessflow_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/peakcrest/roofline/app/dto"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/config"
	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/repository"
	testingutil "github.com/peakcrest/roofline/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetailedEstimateFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leadRepo := repository.NewLeadRepository(testDB.DB)
		lineItemRepo := repository.NewLineItemRepository(testDB.DB)
		macroRepo := repository.NewEstimateMacroRepository(testDB.DB)
		detailedRepo := repository.NewDetailedEstimateRepository(testDB.DB)
		regionRepo := repository.NewGeographicPricingRepository(testDB.DB)

		pricingConfig := config.PricingConfig{TaxIncludesMarkup: true}
		flow := businessflow.NewDetailedEstimateFlow(
			leadRepo, lineItemRepo, macroRepo, detailedRepo, regionRepo,
			testDB.DB, nil, pricingConfig, testCacheConfig(),
		)

		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		createRequest := func(leadUUID string) *dto.CreateDetailedEstimateRequest {
			return &dto.CreateDetailedEstimateRequest{
				LeadUUID:        leadUUID,
				OverheadPercent: 10,
				ProfitPercent:   15,
				TaxPercent:      7,
			}
		}

		t.Run("CreateFromActiveCatalog", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			items, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			resp, err := flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.NoError(t, err)

			est := resp.Estimate
			assert.Len(t, est.Lines, len(items))
			assert.Equal(t, models.EstimateStatusDraft, est.Status)
			assert.Equal(t, 1, est.Version)
			assert.Greater(t, est.Subtotal, 0.0)
			assert.Greater(t, est.OverheadAmount, 0.0)
			assert.Greater(t, est.ProfitAmount, 0.0)
			assert.Greater(t, est.TaxAmount, 0.0)
			assert.Less(t, est.PriceLow, est.PriceLikely)
			assert.Greater(t, est.PriceHigh, est.PriceLikely)

			for _, line := range est.Lines {
				assert.Greater(t, line.Quantity, 0.0)
				assert.GreaterOrEqual(t, line.QuantityWithWaste, line.Quantity)
				assert.True(t, line.IsIncluded)
			}
		})

		t.Run("CreateFromMacro", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			items, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			macro, err := fixtures.CreateTestMacro("Full Replacement Asphalt", items[:3])
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLeadWithSlopes()
			require.NoError(t, err)

			req := createRequest(lead.UUID.String())
			req.MacroID = &macro.ID

			resp, err := flow.Create(ctx, req, metadata)
			require.NoError(t, err)

			assert.Len(t, resp.Estimate.Lines, 3)
			require.NotNil(t, resp.Estimate.MacroID)
			assert.Equal(t, macro.ID, *resp.Estimate.MacroID)
		})

		t.Run("OptionalMacroItemStaysOutOfTotals", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			items, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			macro, err := fixtures.CreateTestMacro("Replacement With Upsell", items[:2])
			require.NoError(t, err)

			err = testDB.DB.Model(&models.MacroLineItem{}).
				Where("macro_id = ? AND line_item_id = ?", macro.ID, items[1].ID).
				Updates(map[string]any{"is_optional": true, "selected_by_default": false}).Error
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLeadWithSlopes()
			require.NoError(t, err)

			req := createRequest(lead.UUID.String())
			req.MacroID = &macro.ID

			resp, err := flow.Create(ctx, req, metadata)
			require.NoError(t, err)
			require.Len(t, resp.Estimate.Lines, 2)

			includedTotal := 0.0
			for _, line := range resp.Estimate.Lines {
				if line.ItemCode == items[1].ItemCode {
					assert.False(t, line.IsIncluded)
					assert.Positive(t, line.LineTotal)
					continue
				}
				assert.True(t, line.IsIncluded)
				includedTotal += line.LineTotal
			}
			assert.InDelta(t, includedTotal, resp.Estimate.Subtotal, 0.01)
		})

		t.Run("ConcurrentCreationKeepsOneCurrentEstimate", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			const workers = 6
			errs := make([]error, workers)
			start := make(chan struct{})
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, errs[i] = flow.Create(testingutil.CreateTestContext(), createRequest(lead.UUID.String()), metadata)
				}(i)
			}
			close(start)
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.True(t, businessflow.IsEstimateVersionConflict(err), "unexpected error: %v", err)
			}
			require.GreaterOrEqual(t, succeeded, 1)

			superseded := false
			count, err := detailedRepo.Count(ctx, models.DetailedEstimateFilter{LeadID: &lead.ID, IsSuperseded: &superseded})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("CreateWithRegionFromZipCode", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			region, err := fixtures.CreateTestRegion("Denver Metro", "80203", "80204")
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			resp, err := flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.NoError(t, err)

			require.NotNil(t, resp.Estimate.GeographicRegionID)
			assert.Equal(t, region.ID, *resp.Estimate.GeographicRegionID)
			// Mean of 1.05, 1.15, 1.0
			assert.InDelta(t, 1.0667, resp.Estimate.GeographicAdjustment, 0.001)
		})

		t.Run("UnknownItemCode", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			req := createRequest(lead.UUID.String())
			req.ItemCodes = []string{"SHINGLE_ARCH", "NO_SUCH_CODE"}

			_, err = flow.Create(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsLineItemNotFound(err))
		})

		t.Run("EmptyCatalog", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			_, err = flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsCatalogEmpty(err))
		})

		t.Run("RecalculationSupersedesPriorVersion", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			first, err := flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, first.Estimate.Version)

			second, err := flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.NoError(t, err)
			assert.Equal(t, 2, second.Estimate.Version)

			current, err := flow.GetCurrent(ctx, lead.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, second.Estimate.UUID, current.Estimate.UUID)
		})

		t.Run("ToggleLineItemKeepsQuantities", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			created, err := flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.NoError(t, err)

			target := created.Estimate.Lines[0]
			resp, err := flow.ToggleLineItem(ctx, &dto.ToggleLineItemRequest{
				EstimateUUID: created.Estimate.UUID,
				LineID:       target.ID,
				Included:     false,
			}, metadata)
			require.NoError(t, err)

			assert.Less(t, resp.Estimate.Subtotal, created.Estimate.Subtotal)
			assert.InDelta(t, created.Estimate.Subtotal-target.LineTotal, resp.Estimate.Subtotal, 0.01)

			var toggled *dto.EstimateLineDTO
			for i := range resp.Estimate.Lines {
				if resp.Estimate.Lines[i].ID == target.ID {
					toggled = &resp.Estimate.Lines[i]
				}
			}
			require.NotNil(t, toggled)
			assert.False(t, toggled.IsIncluded)
			assert.Equal(t, target.Quantity, toggled.Quantity)
			assert.Equal(t, target.QuantityWithWaste, toggled.QuantityWithWaste)
			assert.Equal(t, target.LineTotal, toggled.LineTotal)
		})

		t.Run("ToggleRejectedAfterSend", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			created, err := flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.NoError(t, err)

			_, err = flow.UpdateStatus(ctx, &dto.UpdateEstimateStatusRequest{
				EstimateUUID: created.Estimate.UUID,
				Status:       models.EstimateStatusSent,
			}, metadata)
			require.NoError(t, err)

			_, err = flow.ToggleLineItem(ctx, &dto.ToggleLineItemRequest{
				EstimateUUID: created.Estimate.UUID,
				LineID:       created.Estimate.Lines[0].ID,
				Included:     false,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEstimateNotDraft(err))
		})

		t.Run("StatusTransitions", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			created, err := flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.NoError(t, err)

			approved, err := flow.UpdateStatus(ctx, &dto.UpdateEstimateStatusRequest{
				EstimateUUID: created.Estimate.UUID,
				Status:       models.EstimateStatusApproved,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.EstimateStatusApproved, approved.Status)

			sent, err := flow.UpdateStatus(ctx, &dto.UpdateEstimateStatusRequest{
				EstimateUUID: created.Estimate.UUID,
				Status:       models.EstimateStatusSent,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.EstimateStatusSent, sent.Status)

			_, err = flow.UpdateStatus(ctx, &dto.UpdateEstimateStatusRequest{
				EstimateUUID: created.Estimate.UUID,
				Status:       models.EstimateStatusApproved,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidStatusTransition(err))
		})

		t.Run("EstimateNotFound", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.ToggleLineItem(ctx, &dto.ToggleLineItemRequest{
				EstimateUUID: uuid.New().String(),
				LineID:       1,
				Included:     false,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDetailedEstimateNotFound(err))
		})

		t.Run("ExportXLSX", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedCatalog()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			created, err := flow.Create(ctx, createRequest(lead.UUID.String()), metadata)
			require.NoError(t, err)

			data, filename, err := flow.ExportXLSX(ctx, created.Estimate.UUID)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
			assert.Contains(t, filename, created.Estimate.UUID)
			assert.Contains(t, filename, ".xlsx")

			f, err := excelize.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			defer f.Close()

			rows, err := f.GetRows("Estimate")
			require.NoError(t, err)
			assert.Greater(t, len(rows), len(created.Estimate.Lines))
		})

		return nil
	})
	require.NoError(t, err)
}
