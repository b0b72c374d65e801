// Package businessflow_test contains integration tests for the estimate macro flow
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

func TestEstimateMacroFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		macroRepo := repository.NewEstimateMacroRepository(testDB.DB)
		lineItemRepo := repository.NewLineItemRepository(testDB.DB)

		flow := businessflow.NewEstimateMacroFlow(macroRepo, lineItemRepo, testDB.DB)

		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("CreateMacro", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			resp, err := flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{
				Name:        "Full Replacement Asphalt",
				Description: "Standard asphalt shingle tear-off and replace",
				JobType:     "full_replacement",
				RoofType:    "asphalt_shingle",
			}, metadata)
			require.NoError(t, err)

			assert.NotZero(t, resp.Macro.ID)
			assert.True(t, resp.Macro.IsActive)
			assert.Empty(t, resp.Macro.Items)
		})

		t.Run("DuplicateMacroName", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			req := &dto.AdminCreateMacroRequest{Name: "Full Replacement Asphalt"}
			_, err := flow.CreateMacro(ctx, req, metadata)
			require.NoError(t, err)

			_, err = flow.CreateMacro(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMacroNameExists(err))
		})

		t.Run("AddItemWithOverrides", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			item, err := fixtures.CreateTestLineItem("SHINGLE_ARCH", "SQ")
			require.NoError(t, err)

			created, err := flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{Name: "Repair Small"}, metadata)
			require.NoError(t, err)

			resp, err := flow.AddItem(ctx, &dto.AdminAddMacroItemRequest{
				MacroID:             created.Macro.ID,
				ItemCode:            item.ItemCode,
				SortOrder:           1,
				GroupName:           "base",
				WasteFactorOverride: utils.ToPtr(1.25),
				IsOptional:          utils.ToPtr(true),
			}, metadata)
			require.NoError(t, err)

			require.Len(t, resp.Macro.Items, 1)
			assert.Equal(t, item.ItemCode, resp.Macro.Items[0].ItemCode)
			require.NotNil(t, resp.Macro.Items[0].WasteFactorOverride)
			assert.Equal(t, 1.25, *resp.Macro.Items[0].WasteFactorOverride)
			assert.True(t, resp.Macro.Items[0].IsOptional)
		})

		t.Run("OptionalItemDefaultsToUnselected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			item, err := fixtures.CreateTestLineItem("RIDGE_VENT", "RIDGE")
			require.NoError(t, err)

			created, err := flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{Name: "Ventilation Upgrade"}, metadata)
			require.NoError(t, err)

			resp, err := flow.AddItem(ctx, &dto.AdminAddMacroItemRequest{
				MacroID:    created.Macro.ID,
				ItemCode:   item.ItemCode,
				IsOptional: utils.ToPtr(true),
			}, metadata)
			require.NoError(t, err)

			require.Len(t, resp.Macro.Items, 1)
			assert.True(t, resp.Macro.Items[0].IsOptional)
			assert.False(t, resp.Macro.Items[0].SelectedByDefault)
		})

		t.Run("RequiredItemDefaultsToSelected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			item, err := fixtures.CreateTestLineItem("UNDERLAYMENT_SYN", "SQ")
			require.NoError(t, err)

			created, err := flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{Name: "Base Layers"}, metadata)
			require.NoError(t, err)

			resp, err := flow.AddItem(ctx, &dto.AdminAddMacroItemRequest{
				MacroID:  created.Macro.ID,
				ItemCode: item.ItemCode,
			}, metadata)
			require.NoError(t, err)

			require.Len(t, resp.Macro.Items, 1)
			assert.False(t, resp.Macro.Items[0].IsOptional)
			assert.True(t, resp.Macro.Items[0].SelectedByDefault)
		})

		t.Run("DuplicateItemLeavesMacroUnchanged", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			item, err := fixtures.CreateTestLineItem("DRIP_EDGE", "EAVE + RAKE")
			require.NoError(t, err)

			created, err := flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{Name: "Edge Work"}, metadata)
			require.NoError(t, err)

			addReq := &dto.AdminAddMacroItemRequest{MacroID: created.Macro.ID, ItemCode: item.ItemCode}
			_, err = flow.AddItem(ctx, addReq, metadata)
			require.NoError(t, err)

			_, err = flow.AddItem(ctx, addReq, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMacroItemDuplicate(err))

			current, err := flow.GetMacro(ctx, created.Macro.ID)
			require.NoError(t, err)
			assert.Len(t, current.Macro.Items, 1)
		})

		t.Run("InvalidFormulaOverrideRejected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			item, err := fixtures.CreateTestLineItem("RIDGE_CAP", "RIDGE + HIP")
			require.NoError(t, err)

			created, err := flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{Name: "Ridge Work"}, metadata)
			require.NoError(t, err)

			_, err = flow.AddItem(ctx, &dto.AdminAddMacroItemRequest{
				MacroID:                 created.Macro.ID,
				ItemCode:                item.ItemCode,
				QuantityFormulaOverride: utils.ToPtr("RIDGE +"),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidFormula(err))
		})

		t.Run("RemoveItem", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			item, err := fixtures.CreateTestLineItem("TEAR_OFF", "SQ")
			require.NoError(t, err)

			created, err := flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{Name: "Tear Off Only"}, metadata)
			require.NoError(t, err)

			_, err = flow.AddItem(ctx, &dto.AdminAddMacroItemRequest{MacroID: created.Macro.ID, ItemCode: item.ItemCode}, metadata)
			require.NoError(t, err)

			_, err = flow.RemoveItem(ctx, &dto.AdminRemoveMacroItemRequest{MacroID: created.Macro.ID, ItemCode: item.ItemCode}, metadata)
			require.NoError(t, err)

			current, err := flow.GetMacro(ctx, created.Macro.ID)
			require.NoError(t, err)
			assert.Empty(t, current.Macro.Items)

			_, err = flow.RemoveItem(ctx, &dto.AdminRemoveMacroItemRequest{MacroID: created.Macro.ID, ItemCode: item.ItemCode}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsMacroItemNotFound(err))
		})

		t.Run("ListMacrosByJobType", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{Name: "Replace A", JobType: "full_replacement"}, metadata)
			require.NoError(t, err)
			_, err = flow.CreateMacro(ctx, &dto.AdminCreateMacroRequest{Name: "Repair B", JobType: "repair"}, metadata)
			require.NoError(t, err)

			resp, err := flow.ListMacros(ctx, &dto.AdminListEstimateMacrosRequest{JobType: utils.ToPtr("repair")})
			require.NoError(t, err)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "Repair B", resp.Items[0].Name)
		})

		return nil
	})
	require.NoError(t, err)
}
