// Package businessflow_test contains integration tests for the line item catalog flow
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

func TestCatalogFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		lineItemRepo := repository.NewLineItemRepository(testDB.DB)

		flow := businessflow.NewCatalogFlow(lineItemRepo, testDB.DB)

		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		createRequest := func(itemCode string) *dto.AdminCreateLineItemRequest {
			return &dto.AdminCreateLineItemRequest{
				ItemCode:           itemCode,
				Name:               "Architectural shingles",
				Category:           "roofing",
				UnitType:           "square",
				MaterialUnitCost:   95,
				LaborUnitCost:      60,
				QuantityFormula:    "SQ * 1.05",
				DefaultWasteFactor: 1.1,
			}
		}

		t.Run("CreateLineItem", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			resp, err := flow.CreateLineItem(ctx, createRequest("SHINGLE_ARCH"), metadata)
			require.NoError(t, err)

			assert.Equal(t, "SHINGLE_ARCH", resp.Item.ItemCode)
			assert.True(t, resp.Item.IsActive)
			assert.True(t, resp.Item.Taxable)
		})

		t.Run("DuplicateItemCode", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateLineItem(ctx, createRequest("SHINGLE_ARCH"), metadata)
			require.NoError(t, err)

			_, err = flow.CreateLineItem(ctx, createRequest("SHINGLE_ARCH"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsItemCodeExists(err))
		})

		t.Run("InvalidQuantityFormula", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			req := createRequest("BAD_FORMULA")
			req.QuantityFormula = "SQ * * 2"

			_, err := flow.CreateLineItem(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidFormula(err))
		})

		t.Run("UnknownVariableInFormula", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			req := createRequest("BAD_VAR")
			req.QuantityFormula = "BOGUS * 2"

			_, err := flow.CreateLineItem(ctx, req, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidFormula(err))
		})

		t.Run("UpdateLineItem", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateLineItem(ctx, createRequest("SHINGLE_ARCH"), metadata)
			require.NoError(t, err)

			resp, err := flow.UpdateLineItem(ctx, &dto.AdminUpdateLineItemRequest{
				ItemCode:         "SHINGLE_ARCH",
				MaterialUnitCost: utils.ToPtr(105.0),
				QuantityFormula:  utils.ToPtr("SQ * 1.08"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, 105.0, resp.Item.MaterialUnitCost)
			assert.Equal(t, "SQ * 1.08", resp.Item.QuantityFormula)
		})

		t.Run("UpdateWithNoFields", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.UpdateLineItem(ctx, &dto.AdminUpdateLineItemRequest{ItemCode: "SHINGLE_ARCH"}, metadata)
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrLineItemUpdateMissing)
		})

		t.Run("DeactivateLineItem", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateLineItem(ctx, createRequest("SHINGLE_ARCH"), metadata)
			require.NoError(t, err)

			resp, err := flow.DeactivateLineItem(ctx, "SHINGLE_ARCH", metadata)
			require.NoError(t, err)
			assert.Equal(t, "SHINGLE_ARCH", resp.ItemCode)

			list, err := flow.ListLineItems(ctx, &dto.AdminListLineItemsRequest{IsActive: utils.ToPtr(true)})
			require.NoError(t, err)
			assert.Empty(t, list.Items)

			_, err = flow.DeactivateLineItem(ctx, "NO_SUCH_CODE", metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsLineItemNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
