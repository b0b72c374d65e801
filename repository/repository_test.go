// Package repository_test contains integration tests for the data access layer
package repository_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/peakcrest/roofline/models"
	"github.com/peakcrest/roofline/repository"
	testingutil "github.com/peakcrest/roofline/testing"
	"github.com/peakcrest/roofline/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLeadRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewLeadRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUUID", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, lead.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, lead.ID, found.ID)

			missing, err := repo.ByUUID(ctx, "11111111-2222-4333-8444-555555555555")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("WithSlopesPreloadsSketch", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLeadWithSlopes()
			require.NoError(t, err)

			found, err := repo.WithSlopes(ctx, lead.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Len(t, found.Slopes, 2)
		})

		t.Run("FilterByJobTypeAndState", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			rows, err := repo.ByFilter(ctx, models.LeadFilter{JobType: utils.ToPtr(lead.JobType)}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 1)

			rows, err = repo.ByFilter(ctx, models.LeadFilter{State: utils.ToPtr("TX")}, "", 0, 0)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestQuickEstimateRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewQuickEstimateRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("SupersedeAndInsertNumbersVersions", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			first := &models.QuickEstimate{LeadID: lead.ID, JobType: lead.JobType, BaseCost: 10000, PriceLow: 9000, PriceLikely: 10000, PriceHigh: 12000}
			require.NoError(t, repo.SupersedeAndInsert(ctx, first))
			assert.Equal(t, 1, first.Version)
			assert.False(t, first.IsSuperseded)

			second := &models.QuickEstimate{LeadID: lead.ID, JobType: lead.JobType, BaseCost: 11000, PriceLow: 9900, PriceLikely: 11000, PriceHigh: 13200}
			require.NoError(t, repo.SupersedeAndInsert(ctx, second))
			assert.Equal(t, 2, second.Version)

			current, err := repo.CurrentByLead(ctx, lead.ID)
			require.NoError(t, err)
			require.NotNil(t, current)
			assert.Equal(t, second.ID, current.ID)

			count, err := repo.Count(ctx, models.QuickEstimateFilter{
				LeadID:       &lead.ID,
				IsSuperseded: utils.ToPtr(false),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("ConcurrentInsertsKeepOneCurrentEstimate", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			const workers = 8
			errs := make([]error, workers)
			start := make(chan struct{})
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					estimate := &models.QuickEstimate{LeadID: lead.ID, JobType: lead.JobType, BaseCost: 10000, PriceLow: 9000, PriceLikely: 10000, PriceHigh: 12000}
					errs[i] = repo.SupersedeAndInsert(testingutil.CreateTestContext(), estimate)
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
				// Losers of the version race must surface as duplicate
				// keys, never as a second current row.
				assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "unexpected error: %v", err)
			}
			require.GreaterOrEqual(t, succeeded, 1)

			count, err := repo.Count(ctx, models.QuickEstimateFilter{
				LeadID:       &lead.ID,
				IsSuperseded: utils.ToPtr(false),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			current, err := repo.CurrentByLead(ctx, lead.ID)
			require.NoError(t, err)
			require.NotNil(t, current)
			assert.Equal(t, succeeded, current.Version)
		})

		t.Run("CurrentByLeadWithoutRows", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			current, err := repo.CurrentByLead(ctx, lead.ID)
			require.NoError(t, err)
			assert.Nil(t, current)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDetailedEstimateRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewDetailedEstimateRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		newEstimate := func(leadID uint) *models.DetailedEstimate {
			return &models.DetailedEstimate{
				LeadID:   leadID,
				Subtotal: 15000,
				Status:   models.EstimateStatusDraft,
				Lines: []models.EstimateLineItem{
					{ItemCode: "SHINGLE_ARCH", Name: "Architectural shingles", UnitType: "square", Quantity: 24, WasteFactor: 1.1, QuantityWithWaste: 26.4, LineTotal: 4200, Taxable: true, IsIncluded: true},
					{ItemCode: "TEAR_OFF", Name: "Tear off", UnitType: "square", Quantity: 24, WasteFactor: 1, QuantityWithWaste: 24, LineTotal: 1800, Taxable: true, IsIncluded: true},
				},
			}
		}

		t.Run("SupersedeAndInsertCarriesLines", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			first := newEstimate(lead.ID)
			require.NoError(t, repo.SupersedeAndInsert(ctx, first))
			assert.Equal(t, 1, first.Version)

			second := newEstimate(lead.ID)
			require.NoError(t, repo.SupersedeAndInsert(ctx, second))
			assert.Equal(t, 2, second.Version)

			current, err := repo.CurrentByLead(ctx, lead.ID)
			require.NoError(t, err)
			require.NotNil(t, current)
			assert.Equal(t, second.ID, current.ID)
			assert.Len(t, current.Lines, 2)

			byUUID, err := repo.ByUUID(ctx, second.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, byUUID)
			assert.Len(t, byUUID.Lines, 2)
		})

		t.Run("ConcurrentInsertsKeepOneCurrentEstimate", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			const workers = 8
			errs := make([]error, workers)
			start := make(chan struct{})
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					errs[i] = repo.SupersedeAndInsert(testingutil.CreateTestContext(), newEstimate(lead.ID))
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
				assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "unexpected error: %v", err)
			}
			require.GreaterOrEqual(t, succeeded, 1)

			count, err := repo.Count(ctx, models.DetailedEstimateFilter{
				LeadID:       &lead.ID,
				IsSuperseded: utils.ToPtr(false),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			current, err := repo.CurrentByLead(ctx, lead.ID)
			require.NoError(t, err)
			require.NotNil(t, current)
			assert.Equal(t, succeeded, current.Version)
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			lead, err := fixtures.CreateTestLead()
			require.NoError(t, err)

			estimate := newEstimate(lead.ID)
			require.NoError(t, repo.SupersedeAndInsert(ctx, estimate))

			require.NoError(t, repo.UpdateStatus(ctx, estimate.ID, models.EstimateStatusApproved))

			reloaded, err := repo.ByUUID(ctx, estimate.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.EstimateStatusApproved, reloaded.Status)
		})

		return nil
	})
	require.NoError(t, err)
}
