// Package businessflow_test contains integration tests for the pricing region flow
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

func TestGeographicPricingFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		regionRepo := repository.NewGeographicPricingRepository(testDB.DB)

		flow := businessflow.NewGeographicPricingFlow(regionRepo, testDB.DB, nil, testCacheConfig())

		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		createRequest := func(name string, zips ...string) *dto.AdminCreateRegionRequest {
			return &dto.AdminCreateRegionRequest{
				Name:                name,
				State:               "CO",
				ZipCodes:            zips,
				MaterialMultiplier:  1.05,
				LaborMultiplier:     1.15,
				EquipmentMultiplier: 1.0,
			}
		}

		t.Run("CreateRegion", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			resp, err := flow.CreateRegion(ctx, createRequest("Denver Metro", "80203", "80204"), metadata)
			require.NoError(t, err)

			assert.NotZero(t, resp.Region.ID)
			assert.Equal(t, "Denver Metro", resp.Region.Name)
			assert.True(t, resp.Region.IsActive)
		})

		t.Run("DuplicateRegionName", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.CreateRegion(ctx, createRequest("Denver Metro", "80203"), metadata)
			require.NoError(t, err)

			_, err = flow.CreateRegion(ctx, createRequest("Denver Metro", "80301"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsRegionNameExists(err))
		})

		t.Run("ResolveByZip", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			created, err := flow.CreateRegion(ctx, createRequest("Denver Metro", "80203", "80204"), metadata)
			require.NoError(t, err)

			resp, err := flow.ResolveByZip(ctx, "80204")
			require.NoError(t, err)
			require.NotNil(t, resp.Region)
			assert.Equal(t, created.Region.ID, resp.Region.ID)

			// Unclaimed zip resolves to no region, not an error
			resp, err = flow.ResolveByZip(ctx, "99999")
			require.NoError(t, err)
			assert.Nil(t, resp.Region)
		})

		t.Run("DeactivatedRegionNotResolved", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			created, err := flow.CreateRegion(ctx, createRequest("Denver Metro", "80203"), metadata)
			require.NoError(t, err)

			_, err = flow.UpdateRegion(ctx, &dto.AdminUpdateRegionRequest{
				ID:       created.Region.ID,
				IsActive: utils.ToPtr(false),
			}, metadata)
			require.NoError(t, err)

			resp, err := flow.ResolveByZip(ctx, "80203")
			require.NoError(t, err)
			assert.Nil(t, resp.Region)
		})

		t.Run("UpdateRegion", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			created, err := flow.CreateRegion(ctx, createRequest("Denver Metro", "80203"), metadata)
			require.NoError(t, err)

			resp, err := flow.UpdateRegion(ctx, &dto.AdminUpdateRegionRequest{
				ID:              created.Region.ID,
				LaborMultiplier: utils.ToPtr(1.3),
				ZipCodes:        []string{"80203", "80205"},
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1.3, resp.Region.LaborMultiplier)
			assert.Contains(t, resp.Region.ZipCodes, "80205")
		})

		t.Run("UpdateWithNoFields", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.UpdateRegion(ctx, &dto.AdminUpdateRegionRequest{ID: 1}, metadata)
			require.Error(t, err)
			assert.ErrorIs(t, err, businessflow.ErrRegionUpdateMissing)
		})

		t.Run("UpdateMissingRegion", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.UpdateRegion(ctx, &dto.AdminUpdateRegionRequest{
				ID:   12345,
				Name: utils.ToPtr("Nowhere"),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsRegionNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
