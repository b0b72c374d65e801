package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFromDimensions(t *testing.T) {
	t.Run("RectangularApproximation", func(t *testing.T) {
		v, err := ResolveFromDimensions(Dimensions{
			LengthFt: 50,
			WidthFt:  40,
			Pitch:    6,
			Stories:  1,
		})
		require.NoError(t, err)

		factor := math.Sqrt(1 + (6.0/12)*(6.0/12))
		assert.InDelta(t, 2000*factor, v.SquareFeet, 1e-9)
		assert.InDelta(t, v.SquareFeet/100, v.Squares, 1e-9)
		assert.InDelta(t, 180, v.Perimeter, 1e-9)
		assert.InDelta(t, 100, v.Eave, 1e-9)
		assert.InDelta(t, 50, v.Ridge, 1e-9)
		assert.InDelta(t, 80*factor, v.Rake, 1e-9)
		assert.Zero(t, v.Valley)
		assert.Zero(t, v.Hip)
		assert.False(t, v.SteepCharge)
		assert.InDelta(t, factor, v.PitchMultiplier, 1e-9)
	})

	t.Run("GutterDerivedFromEave", func(t *testing.T) {
		v, err := ResolveFromDimensions(Dimensions{LengthFt: 60, WidthFt: 30, Pitch: 4})
		require.NoError(t, err)
		assert.InDelta(t, v.Eave, v.GutterFeet, 1e-9)
		assert.Equal(t, 3, v.DownspoutCount) // 120ft of eave / 40ft per downspout
	})

	t.Run("ExplicitGutterAndDownspouts", func(t *testing.T) {
		v, err := ResolveFromDimensions(Dimensions{
			LengthFt:       50,
			WidthFt:        40,
			GutterLengthFt: 88,
			DownspoutCount: 5,
		})
		require.NoError(t, err)
		assert.InDelta(t, 88, v.GutterFeet, 1e-9)
		assert.Equal(t, 5, v.DownspoutCount)
	})

	t.Run("SteepClassification", func(t *testing.T) {
		flat, err := ResolveFromDimensions(Dimensions{LengthFt: 50, WidthFt: 40, Pitch: 6.9})
		require.NoError(t, err)
		assert.False(t, flat.SteepCharge)

		steep, err := ResolveFromDimensions(Dimensions{LengthFt: 50, WidthFt: 40, Pitch: 7})
		require.NoError(t, err)
		assert.True(t, steep.SteepCharge)
		assert.Greater(t, steep.PitchMultiplier, 1.0)

		steeper, err := ResolveFromDimensions(Dimensions{LengthFt: 50, WidthFt: 40, Pitch: 12})
		require.NoError(t, err)
		assert.Greater(t, steeper.PitchMultiplier, steep.PitchMultiplier)
	})

	t.Run("PitchAboveCapRejected", func(t *testing.T) {
		_, err := ResolveFromDimensions(Dimensions{LengthFt: 50, WidthFt: 40, Pitch: 24.5})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPitchOutOfRange)
	})

	t.Run("NegativeMeasurementRejected", func(t *testing.T) {
		_, err := ResolveFromDimensions(Dimensions{LengthFt: -1, WidthFt: 40})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNegativeMeasurement)
	})

	t.Run("MissingDimensionsDefaulted", func(t *testing.T) {
		v, err := ResolveFromDimensions(Dimensions{})
		require.NoError(t, err)
		assert.InDelta(t, 2000, v.SquareFeet, 1e-9)
		assert.Equal(t, 1, v.Stories)
	})
}

func TestResolveFromSlopes(t *testing.T) {
	slopes := []SlopeMeasurement{
		{Name: "front", Squares: 12, EaveFt: 48, RidgeFt: 40, RakeFt: 30, Pitch: 6},
		{Name: "back", Squares: 14, EaveFt: 52, RidgeFt: 40, RakeFt: 30, ValleyFt: 16, Pitch: 9},
	}

	t.Run("SlopesSumToTotals", func(t *testing.T) {
		v, err := ResolveFromSlopes(slopes, Dimensions{Stories: 2, SkylightCount: 1})
		require.NoError(t, err)

		assert.InDelta(t, 26, v.Squares, 1e-9)
		assert.InDelta(t, 2600, v.SquareFeet, 1e-9)
		assert.InDelta(t, 100, v.Eave, 1e-9)
		assert.InDelta(t, 80, v.Ridge, 1e-9)
		assert.InDelta(t, 60, v.Rake, 1e-9)
		assert.InDelta(t, 16, v.Valley, 1e-9)
		assert.Equal(t, 1, v.SkylightCount)
		assert.Equal(t, 2, v.Stories)
		require.Len(t, v.Slopes, 2)

		var sq, eave float64
		for _, s := range v.Slopes {
			sq += s.Squares
			eave += s.Eave
		}
		assert.InDelta(t, v.Squares, sq, 1e-9)
		assert.InDelta(t, v.Eave, eave, 1e-9)
	})

	t.Run("SteepFlagFollowsSteepestSlope", func(t *testing.T) {
		v, err := ResolveFromSlopes(slopes, Dimensions{})
		require.NoError(t, err)
		assert.True(t, v.SteepCharge)
		assert.InDelta(t, 9, v.Pitch, 1e-9)
	})

	t.Run("SlopePitchAboveCapRejected", func(t *testing.T) {
		bad := []SlopeMeasurement{{Name: "tower", Squares: 4, Pitch: 30}}
		_, err := ResolveFromSlopes(bad, Dimensions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPitchOutOfRange)
	})

	t.Run("EmptySketchFallsBackToDimensions", func(t *testing.T) {
		v, err := ResolveFromSlopes(nil, Dimensions{LengthFt: 50, WidthFt: 40})
		require.NoError(t, err)
		assert.InDelta(t, 2000, v.SquareFeet, 1e-9)
	})
}
