package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVars() map[string]float64 {
	return map[string]float64{
		"SQ":   20,
		"EAVE": 100,
		"R":    50,
	}
}

func shingleLine() LineInput {
	return LineInput{
		ItemCode:         "SHNG-ARCH",
		Name:             "Architectural shingles",
		Category:         "roofing",
		UnitType:         "square",
		QuantityFormula:  "SQ",
		WasteFactor:      1.1,
		MaterialUnitCost: 100,
		LaborUnitCost:    50,
		Taxable:          true,
		Included:         true,
	}
}

func TestComputeDetailed(t *testing.T) {
	t.Run("SingleLine", func(t *testing.T) {
		result, err := ComputeDetailed(DetailedInput{
			Lines:           []LineInput{shingleLine()},
			Vars:            testVars(),
			OverheadPercent: 10,
			ProfitPercent:   10,
			TaxPercent:      8,
			Tax:             DefaultTaxPolicy(),
		})
		require.NoError(t, err)

		require.Len(t, result.Lines, 1)
		line := result.Lines[0]
		assert.InDelta(t, 20, line.Quantity, 1e-9)
		assert.InDelta(t, 22, line.QuantityWithWaste, 1e-9)
		assert.InDelta(t, 3300, line.LineTotal, 1e-9)

		assert.InDelta(t, 2200, result.TotalMaterial, 1e-9)
		assert.InDelta(t, 1100, result.TotalLabor, 1e-9)
		assert.Zero(t, result.TotalEquipment)
		assert.InDelta(t, 3300, result.Subtotal, 1e-9)

		assert.InDelta(t, 330, result.OverheadAmount, 1e-9)
		// Profit applies on top of subtotal plus overhead.
		assert.InDelta(t, 363, result.ProfitAmount, 1e-9)
		// Everything is taxable here, so markup pro-rates in fully.
		assert.InDelta(t, 3993, result.TaxableAmount, 1e-9)
		assert.InDelta(t, 319.44, result.TaxAmount, 1e-9)

		assert.InDelta(t, 1.0, result.GeoFactor, 1e-9)
		assert.InDelta(t, 4312, result.PriceLikely, 1e-9) // round(3300+330+363+319.44)
		assert.InDelta(t, 3665, result.PriceLow, 1e-9)
		assert.InDelta(t, 5390, result.PriceHigh, 1e-9)
	})

	t.Run("OptionalLineExcludedFromTotals", func(t *testing.T) {
		optional := LineInput{
			ItemCode:         "GUT-ALU",
			Name:             "Aluminum gutters",
			UnitType:         "linear_foot",
			QuantityFormula:  "EAVE",
			WasteFactor:      1.05,
			MaterialUnitCost: 6,
			LaborUnitCost:    4,
			Optional:         true,
			Included:         false,
		}
		result, err := ComputeDetailed(DetailedInput{
			Lines: []LineInput{shingleLine(), optional},
			Vars:  testVars(),
		})
		require.NoError(t, err)

		require.Len(t, result.Lines, 2)
		excluded := result.Lines[1]
		// Quantities are still computed for display even while excluded.
		assert.InDelta(t, 100, excluded.Quantity, 1e-9)
		assert.InDelta(t, 105, excluded.QuantityWithWaste, 1e-9)
		assert.InDelta(t, 1050, excluded.LineTotal, 1e-9)
		assert.InDelta(t, 3300, result.Subtotal, 1e-9)
	})

	t.Run("TogglingInclusionOnlyMovesTotals", func(t *testing.T) {
		line := shingleLine()
		off := line
		off.Included = false

		with, err := ComputeDetailed(DetailedInput{Lines: []LineInput{line}, Vars: testVars()})
		require.NoError(t, err)
		without, err := ComputeDetailed(DetailedInput{Lines: []LineInput{off}, Vars: testVars()})
		require.NoError(t, err)

		assert.InDelta(t, with.Lines[0].Quantity, without.Lines[0].Quantity, 1e-9)
		assert.InDelta(t, with.Lines[0].QuantityWithWaste, without.Lines[0].QuantityWithWaste, 1e-9)
		assert.InDelta(t, with.Subtotal-with.Lines[0].LineTotal, without.Subtotal, 1e-9)
	})

	t.Run("GeographicAdjustmentIsMeanOfMultipliers", func(t *testing.T) {
		geo := &GeoMultipliers{Material: 1.15, Labor: 1.45, Equipment: 1.10}
		assert.InDelta(t, 3.70/3, geo.Factor(), 1e-9)

		base, err := ComputeDetailed(DetailedInput{Lines: []LineInput{shingleLine()}, Vars: testVars()})
		require.NoError(t, err)
		adjusted, err := ComputeDetailed(DetailedInput{Lines: []LineInput{shingleLine()}, Vars: testVars(), Geo: geo})
		require.NoError(t, err)

		assert.InDelta(t, geo.Factor(), adjusted.GeoFactor, 1e-9)
		assert.InDelta(t, base.Subtotal*geo.Factor(), adjusted.PriceLikely, 1)
	})

	t.Run("MarkupExcludedFromTaxBaseWhenPolicySaysSo", func(t *testing.T) {
		result, err := ComputeDetailed(DetailedInput{
			Lines:           []LineInput{shingleLine()},
			Vars:            testVars(),
			OverheadPercent: 10,
			ProfitPercent:   10,
			TaxPercent:      8,
			Tax:             TaxPolicy{IncludeMarkup: false},
		})
		require.NoError(t, err)
		assert.InDelta(t, 3300, result.TaxableAmount, 1e-9)
		assert.InDelta(t, 264, result.TaxAmount, 1e-9)
	})

	t.Run("NonTaxableLineStaysOutOfTaxBase", func(t *testing.T) {
		labor := LineInput{
			ItemCode:        "TEAR-OFF",
			Name:            "Tear-off",
			UnitType:        "square",
			QuantityFormula: "SQ",
			WasteFactor:     1,
			LaborUnitCost:   60,
			Included:        true,
		}
		result, err := ComputeDetailed(DetailedInput{
			Lines:      []LineInput{labor},
			Vars:       testVars(),
			TaxPercent: 8,
			Tax:        DefaultTaxPolicy(),
		})
		require.NoError(t, err)
		assert.Zero(t, result.TaxableAmount)
		assert.Zero(t, result.TaxAmount)
	})

	t.Run("PercentBoundsRejectedNotClamped", func(t *testing.T) {
		_, err := ComputeDetailed(DetailedInput{OverheadPercent: 50.1})
		assert.ErrorIs(t, err, ErrOverheadOutOfRange)

		_, err = ComputeDetailed(DetailedInput{ProfitPercent: 50.1})
		assert.ErrorIs(t, err, ErrProfitOutOfRange)

		_, err = ComputeDetailed(DetailedInput{OverheadPercent: -1})
		assert.ErrorIs(t, err, ErrOverheadOutOfRange)

		_, err = ComputeDetailed(DetailedInput{TaxPercent: -0.1})
		assert.ErrorIs(t, err, ErrTaxOutOfRange)
	})

	t.Run("UnknownFormulaVariableFailsWholeCalculation", func(t *testing.T) {
		bad := shingleLine()
		bad.QuantityFormula = "SQ * RIDGE_CAP_LF"
		_, err := ComputeDetailed(DetailedInput{Lines: []LineInput{shingleLine(), bad}, Vars: testVars()})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownVariable)
	})

	t.Run("WasteFactorBelowOneTreatedAsNone", func(t *testing.T) {
		line := shingleLine()
		line.WasteFactor = 0
		result, err := ComputeDetailed(DetailedInput{Lines: []LineInput{line}, Vars: testVars()})
		require.NoError(t, err)
		assert.InDelta(t, result.Lines[0].Quantity, result.Lines[0].QuantityWithWaste, 1e-9)
	})
}
