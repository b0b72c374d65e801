// Package businessflow_test contains integration tests for the quick estimation flow
package businessflow_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/peakcrest/roofline/app/dto"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/config"
	"github.com/peakcrest/roofline/repository"
	testingutil "github.com/peakcrest/roofline/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCacheConfig() *config.CacheConfig {
	return &config.CacheConfig{Enabled: false, RedisPrefix: "roofline_test"}
}

func TestQuickEstimateFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leadRepo := repository.NewLeadRepository(testDB.DB)
		ruleRepo := repository.NewPricingRuleRepository(testDB.DB)
		quickRepo := repository.NewQuickEstimateRepository(testDB.DB)

		flow := businessflow.NewQuickEstimateFlow(leadRepo, ruleRepo, quickRepo, testDB.DB, nil, testCacheConfig())

		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("FallsBackToDefaultRulesWhenNoneConfigured", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			resp, err := flow.Calculate(ctx, &dto.CreateQuickEstimateRequest{LeadUUID: lead.UUID.String()}, metadata)
			require.NoError(t, err)

			assert.True(t, resp.Estimate.UsedDefaultRules)
			assert.Equal(t, 1, resp.Estimate.Version)
			assert.Equal(t, lead.UUID.String(), resp.Estimate.LeadUUID)
			assert.Greater(t, resp.Estimate.PriceLikely, 0.0)
			assert.Less(t, resp.Estimate.PriceLow, resp.Estimate.PriceLikely)
			assert.Greater(t, resp.Estimate.PriceHigh, resp.Estimate.PriceLikely)
			assert.NotEmpty(t, resp.Estimate.Adjustments)
		})

		t.Run("UsesPersistedRulesWhenConfigured", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := fixtures.SeedDefaultPricingRules()
			require.NoError(t, err)

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			resp, err := flow.Calculate(ctx, &dto.CreateQuickEstimateRequest{LeadUUID: lead.UUID.String()}, metadata)
			require.NoError(t, err)

			assert.False(t, resp.Estimate.UsedDefaultRules)
			assert.Greater(t, resp.Estimate.PriceLikely, 0.0)
		})

		t.Run("RecalculationSupersedesPriorVersion", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			first, err := flow.Calculate(ctx, &dto.CreateQuickEstimateRequest{LeadUUID: lead.UUID.String()}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, first.Estimate.Version)

			second, err := flow.Calculate(ctx, &dto.CreateQuickEstimateRequest{LeadUUID: lead.UUID.String()}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 2, second.Estimate.Version)
			assert.NotEqual(t, first.Estimate.UUID, second.Estimate.UUID)

			current, err := flow.GetCurrent(ctx, lead.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, second.Estimate.UUID, current.Estimate.UUID)
			assert.Equal(t, 2, current.Estimate.Version)

			// Exactly one non-superseded row per lead
			var count int64
			err = testDB.DB.Table("quick_estimates").
				Where("lead_id = ? AND is_superseded = false", lead.ID).
				Count(&count).Error
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("MissingRoofSizeUsesDefault", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(lead).Update("roof_size_sq_ft", 0).Error)

			resp, err := flow.Calculate(ctx, &dto.CreateQuickEstimateRequest{LeadUUID: lead.UUID.String()}, metadata)
			require.NoError(t, err)

			assert.Equal(t, 2000.0, resp.Estimate.RoofSizeSqFt)
			assert.Greater(t, resp.Estimate.PriceLikely, 0.0)
		})

		t.Run("LeadNotFound", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.Calculate(ctx, &dto.CreateQuickEstimateRequest{LeadUUID: uuid.New().String()}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsLeadNotFound(err))
		})

		t.Run("GetCurrentWithoutEstimate", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			_, err = flow.GetCurrent(ctx, lead.UUID.String())
			require.Error(t, err)
			assert.True(t, businessflow.IsQuickEstimateNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
