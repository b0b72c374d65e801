// Package businessflow_test contains integration tests for the pricing rule admin flow
package businessflow_test

import (
	"testing"

	"github.com/peakcrest/roofline/app/dto"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/repository"
	testingutil "github.com/peakcrest/roofline/testing"
	"github.com/peakcrest/roofline/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingRuleFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ruleRepo := repository.NewPricingRuleRepository(testDB.DB)

		flow := businessflow.NewPricingRuleFlow(ruleRepo, testDB.DB, nil, testCacheConfig())

		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		baseRateRule := func(key, match string) *dto.AdminCreatePricingRuleRequest {
			return &dto.AdminCreatePricingRuleRequest{
				RuleKey:      key,
				RuleCategory: "job_type",
				Kind:         "base_rate",
				Label:        "Full replacement base rate",
				MatchValue:   match,
				BaseRate:     7.5,
				Unit:         "sqft",
			}
		}

		t.Run("CreateRule", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			resp, err := flow.CreateRule(ctx, baseRateRule("job_full_replacement", "full_replacement"), metadata)
			require.NoError(t, err)

			assert.Equal(t, "job_full_replacement", resp.Rule.RuleKey)
			assert.True(t, resp.Rule.IsActive)
			assert.Equal(t, 7.5, resp.Rule.BaseRate)
		})

		t.Run("DuplicateRuleKey", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateRule(ctx, baseRateRule("job_full_replacement", "full_replacement"), metadata)
			require.NoError(t, err)

			_, err = flow.CreateRule(ctx, baseRateRule("job_full_replacement", "repair"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPricingRuleKeyExists(err))
		})

		t.Run("SecondActiveRulePerMatchIsConflict", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateRule(ctx, baseRateRule("job_full_replacement", "full_replacement"), metadata)
			require.NoError(t, err)

			_, err = flow.CreateRule(ctx, baseRateRule("job_full_replacement_v2", "full_replacement"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsActiveRuleConflict(err))
		})

		t.Run("KindOperandMismatch", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			req := baseRateRule("job_bad", "repair")
			req.BaseRate = 0

			_, err := flow.CreateRule(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPricingRuleKindMismatch(err))
		})

		t.Run("UpdateRule", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateRule(ctx, baseRateRule("job_full_replacement", "full_replacement"), metadata)
			require.NoError(t, err)

			resp, err := flow.UpdateRule(ctx, &dto.AdminUpdatePricingRuleRequest{
				RuleKey:  "job_full_replacement",
				BaseRate: utils.ToPtr(8.25),
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 8.25, resp.Rule.BaseRate)
		})

		t.Run("UpdateWithNoFields", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.UpdateRule(ctx, &dto.AdminUpdatePricingRuleRequest{RuleKey: "job_full_replacement"}, metadata)
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrPricingRuleUpdateMissing)
		})

		t.Run("ReactivationConflictsWithCurrentActiveRule", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateRule(ctx, baseRateRule("job_v1", "full_replacement"), metadata)
			require.NoError(t, err)

			_, err = flow.UpdateRule(ctx, &dto.AdminUpdatePricingRuleRequest{
				RuleKey:  "job_v1",
				IsActive: utils.ToPtr(false),
			}, metadata)
			require.NoError(t, err)

			_, err = flow.CreateRule(ctx, baseRateRule("job_v2", "full_replacement"), metadata)
			require.NoError(t, err)

			_, err = flow.UpdateRule(ctx, &dto.AdminUpdatePricingRuleRequest{
				RuleKey:  "job_v1",
				IsActive: utils.ToPtr(true),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsActiveRuleConflict(err))
		})

		t.Run("ListRulesByCategory", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateRule(ctx, baseRateRule("job_full_replacement", "full_replacement"), metadata)
			require.NoError(t, err)

			_, err = flow.CreateRule(ctx, &dto.AdminCreatePricingRuleRequest{
				RuleKey:      "material_metal",
				RuleCategory: "material",
				Kind:         "multiplier",
				Label:        "Metal roof multiplier",
				MatchValue:   "metal",
				Multiplier:   1.6,
			}, metadata)
			require.NoError(t, err)

			resp, err := flow.ListRules(ctx, &dto.AdminListPricingRulesRequest{RuleCategory: utils.ToPtr("material")})
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "material_metal", resp.Items[0].RuleKey)
		})

		return nil
	})
	require.NoError(t, err)
}
