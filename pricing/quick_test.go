package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateQuick(t *testing.T) {
	rules := DefaultRules()

	t.Run("BaseRateTimesArea", func(t *testing.T) {
		result := CalculateQuick(QuickInput{
			JobType:      JobTypeFullReplacement,
			RoofSizeSqFt: 2000,
			RoofMaterial: "asphalt_shingles",
		}, rules)

		assert.InDelta(t, 9000, result.BaseCost, 1e-9) // $4.50/sqft * 2000
		assert.InDelta(t, 9000, result.PriceLikely, 1e-9)
		require.NotEmpty(t, result.Adjustments)
		first := result.Adjustments[0]
		assert.Equal(t, CategoryJobType, first.Category)
		assert.InDelta(t, 9000, first.Impact, 1e-9)
	})

	t.Run("TierSpread", func(t *testing.T) {
		result := CalculateQuick(QuickInput{JobType: JobTypeFullReplacement, RoofSizeSqFt: 1777}, rules)
		assert.Less(t, result.PriceLow, result.PriceLikely)
		assert.Less(t, result.PriceLikely, result.PriceHigh)
		assert.InDelta(t, result.PriceLikely*0.85, result.PriceLow, 0.5)
		assert.InDelta(t, result.PriceLikely*1.25, result.PriceHigh, 0.5)
	})

	t.Run("MetalMoreThanDoublesAsphalt", func(t *testing.T) {
		asphalt := CalculateQuick(QuickInput{JobType: JobTypeFullReplacement, RoofSizeSqFt: 2000, RoofMaterial: "asphalt_shingles"}, rules)
		metal := CalculateQuick(QuickInput{JobType: JobTypeFullReplacement, RoofSizeSqFt: 2000, RoofMaterial: "metal"}, rules)
		assert.Greater(t, metal.PriceLikely, 2*asphalt.PriceLikely)
	})

	t.Run("MultiplierStacking", func(t *testing.T) {
		result := CalculateQuick(QuickInput{
			JobType:         JobTypeFullReplacement,
			RoofSizeSqFt:    2000,
			RoofMaterial:    "metal",
			RoofPitch:       8,
			Stories:         2,
			TimelineUrgency: "emergency",
		}, rules)

		want := 9000.0 * 2.2 * 1.25 * 1.15 * 1.5
		assert.InDelta(t, want, result.PriceLikely, 1)
		// Base plus four multiplier adjustments, in category order.
		require.Len(t, result.Adjustments, 5)
		assert.Equal(t, CategoryMaterial, result.Adjustments[1].Category)
		assert.Equal(t, CategoryPitch, result.Adjustments[2].Category)
		assert.Equal(t, CategoryStory, result.Adjustments[3].Category)
		assert.Equal(t, CategoryUrgency, result.Adjustments[4].Category)
	})

	t.Run("FlatFeesIndependentOfMultipliers", func(t *testing.T) {
		for _, material := range []string{"asphalt_shingles", "metal", "slate"} {
			plain := CalculateQuick(QuickInput{JobType: JobTypeFullReplacement, RoofSizeSqFt: 2000, RoofMaterial: material}, rules)
			withFeatures := CalculateQuick(QuickInput{
				JobType:      JobTypeFullReplacement,
				RoofSizeSqFt: 2000,
				RoofMaterial: material,
				HasSkylights: true,
				HasChimneys:  true,
			}, rules)
			assert.InDelta(t, 800, withFeatures.PriceLikely-plain.PriceLikely, 1e-9, "material %s", material)
		}
	})

	t.Run("IssueFees", func(t *testing.T) {
		result := CalculateQuick(QuickInput{
			JobType:      JobTypeFullReplacement,
			RoofSizeSqFt: 2000,
			Issues:       []string{"active_leak", "storm_damage", "not_a_known_issue"},
		}, rules)
		assert.InDelta(t, 9700, result.PriceLikely, 1e-9) // 9000 + 300 + 400, unknown issue ignored
	})

	t.Run("RepairMinimumChargeFloor", func(t *testing.T) {
		result := CalculateQuick(QuickInput{JobType: JobTypeRepair, RoofSizeSqFt: 100}, rules)
		assert.GreaterOrEqual(t, result.PriceLikely, 650.0)

		// The floor applies after flat fees, so fees cannot be dodged.
		withFee := CalculateQuick(QuickInput{JobType: JobTypeRepair, RoofSizeSqFt: 100, HasSkylights: true}, rules)
		assert.InDelta(t, 650, withFee.PriceLikely, 1e-9) // 200 + 350 still under the floor
	})

	t.Run("MissingIntakeDefaults", func(t *testing.T) {
		result := CalculateQuick(QuickInput{}, rules)
		assert.InDelta(t, 9000, result.PriceLikely, 1e-9) // full_replacement, 2000 sqft
	})

	t.Run("EmptyRuleSetStillPrices", func(t *testing.T) {
		result := CalculateQuick(QuickInput{JobType: JobTypeFullReplacement, RoofSizeSqFt: 2000}, nil)
		assert.InDelta(t, 9000, result.PriceLikely, 1e-9)
	})

	t.Run("DeterministicAcrossRuleOrder", func(t *testing.T) {
		input := QuickInput{
			JobType:         JobTypeFullReplacement,
			RoofSizeSqFt:    2450,
			RoofMaterial:    "tile",
			RoofPitch:       10,
			Stories:         3,
			HasSolarPanels:  true,
			Issues:          []string{"missing_shingles"},
			TimelineUrgency: "this_week",
		}

		reversed := make([]Rule, len(rules))
		for i, r := range rules {
			reversed[len(rules)-1-i] = r
		}

		assert.Equal(t, CalculateQuick(input, rules), CalculateQuick(input, reversed))
	})
}

func TestPitchBucket(t *testing.T) {
	assert.Equal(t, "", pitchBucket(4))
	assert.Equal(t, "", pitchBucket(6.9))
	assert.Equal(t, PitchBucketSteep, pitchBucket(7))
	assert.Equal(t, PitchBucketSteep, pitchBucket(9.5))
	assert.Equal(t, PitchBucketVerySteep, pitchBucket(10))
	assert.Equal(t, PitchBucketVerySteep, pitchBucket(24))
}
