// Package businessflow_test contains integration tests for the lead intake flow
package businessflow_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/peakcrest/roofline/app/dto"
	businessflow "github.com/peakcrest/roofline/business_flow"
	"github.com/peakcrest/roofline/repository"
	testingutil "github.com/peakcrest/roofline/testing"
	"github.com/peakcrest/roofline/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		leadRepo := repository.NewLeadRepository(testDB.DB)

		flow := businessflow.NewLeadFlow(leadRepo, testDB.DB)

		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		intakeRequest := func() *dto.CreateLeadRequest {
			email := "jane.homeowner@example.com"
			return &dto.CreateLeadRequest{
				FirstName:    "Jane",
				LastName:     "Homeowner",
				Email:        &email,
				AddressLine:  "42 Shingle Court",
				City:         "Denver",
				State:        "CO",
				ZipCode:      "80203",
				JobType:      "full_replacement",
				RoofMaterial: "asphalt_shingle",
				RoofSizeSqFt: 2400,
				RoofPitch:    6,
				Stories:      2,
				RoofLengthFt: 60,
				RoofWidthFt:  40,
			}
		}

		t.Run("CreateLead", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			resp, err := flow.CreateLead(ctx, intakeRequest(), metadata)
			require.NoError(t, err)

			assert.NotZero(t, resp.ID)
			assert.NotEmpty(t, resp.UUID)

			got, err := flow.GetLead(ctx, resp.UUID)
			require.NoError(t, err)
			assert.Equal(t, "Jane", got.Lead.FirstName)
			assert.Equal(t, "80203", got.Lead.ZipCode)
			assert.Equal(t, 2400.0, got.Lead.RoofSizeSqFt)
		})

		t.Run("DefaultsAppliedAtIntake", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			req := intakeRequest()
			req.JobType = ""
			req.TimelineUrgency = ""
			req.Stories = 0

			resp, err := flow.CreateLead(ctx, req, metadata)
			require.NoError(t, err)

			got, err := flow.GetLead(ctx, resp.UUID)
			require.NoError(t, err)
			assert.Equal(t, "full_replacement", got.Lead.JobType)
			assert.Equal(t, "flexible", got.Lead.TimelineUrgency)
			assert.Equal(t, 1, got.Lead.Stories)
		})

		t.Run("CreateLeadWithSlopes", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			req := intakeRequest()
			req.Slopes = []dto.RoofSlopeInput{
				{Name: "front", Squares: 12, EaveFt: 40, RidgeFt: 40, RakeFt: 24, Pitch: 6},
				{Name: "back", Squares: 12, EaveFt: 40, RakeFt: 24, ValleyFt: 14, Pitch: 8},
			}

			resp, err := flow.CreateLead(ctx, req, metadata)
			require.NoError(t, err)

			got, err := flow.GetLead(ctx, resp.UUID)
			require.NoError(t, err)
			assert.Len(t, got.Lead.Slopes, 2)
		})

		t.Run("MalformedMeasurementsRejected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			req := intakeRequest()
			req.Slopes = []dto.RoofSlopeInput{
				{Name: "front", Squares: 12, Pitch: 30},
			}

			_, err := flow.CreateLead(ctx, req, metadata)
			require.Error(t, err)

			be, ok := err.(*businessflow.BusinessError)
			require.True(t, ok)
			assert.Equal(t, "MEASUREMENT_VALIDATION_FAILED", be.Code)
		})

		t.Run("GetMissingLead", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			_, err := flow.GetLead(ctx, uuid.New().String())
			require.Error(t, err)
			assert.True(t, businessflow.IsLeadNotFound(err))
		})

		t.Run("ListLeadsPagination", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			for i := 0; i < 5; i++ {
				req := intakeRequest()
				if i%2 == 0 {
					req.JobType = "repair"
				}
				_, err := flow.CreateLead(ctx, req, metadata)
				require.NoError(t, err)
			}

			resp, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{Page: 1, PageSize: 2})
			require.NoError(t, err)
			assert.Len(t, resp.Items, 2)
			assert.Equal(t, int64(5), resp.Total)

			filtered, err := flow.ListLeads(ctx, &dto.ListLeadsRequest{JobType: utils.ToPtr("repair")})
			require.NoError(t, err)
			assert.Equal(t, int64(3), filtered.Total)
		})

		return nil
	})
	require.NoError(t, err)
}
