package pricing

import (
	"fmt"
	"math"
)

const (
	maxOverheadPercent = 50.0
	maxProfitPercent   = 50.0
)

// TaxPolicy controls how the taxable base is derived. Taxability of the
// markup layer varies by jurisdiction, so it is configuration rather
// than a fixed formula: when IncludeMarkup is set, overhead and profit
// are pro-rated into the tax base by the taxable share of the subtotal.
type TaxPolicy struct {
	IncludeMarkup bool `json:"include_markup"`
}

// DefaultTaxPolicy pro-rates markup into the tax base.
func DefaultTaxPolicy() TaxPolicy {
	return TaxPolicy{IncludeMarkup: true}
}

// GeoMultipliers are a region's three cost-category multipliers. The
// adjustment applied to an estimate is their arithmetic mean, multiplied
// into the final price.
type GeoMultipliers struct {
	Material  float64 `json:"material_multiplier"`
	Labor     float64 `json:"labor_multiplier"`
	Equipment float64 `json:"equipment_multiplier"`
}

// Factor is the mean of the three multipliers.
func (g GeoMultipliers) Factor() float64 {
	return (g.Material + g.Labor + g.Equipment) / 3
}

// LineInput is one resolved catalog line before quantity computation.
// Cost overrides from a macro association are applied by the caller
// before the line reaches the calculator.
type LineInput struct {
	ItemCode string `json:"item_code"`
	Name     string `json:"name"`
	Category string `json:"category"`
	UnitType string `json:"unit_type"`
	Group    string `json:"group,omitempty"`

	QuantityFormula string  `json:"quantity_formula"`
	WasteFactor     float64 `json:"waste_factor"`

	MaterialUnitCost  float64 `json:"material_unit_cost"`
	LaborUnitCost     float64 `json:"labor_unit_cost"`
	EquipmentUnitCost float64 `json:"equipment_unit_cost"`

	Taxable  bool `json:"taxable"`
	Optional bool `json:"optional"`
	Included bool `json:"included"`
}

// ComputedLine is a line with its resolved quantities and total.
type ComputedLine struct {
	LineInput
	Quantity          float64 `json:"quantity"`
	QuantityWithWaste float64 `json:"quantity_with_waste"`
	LineTotal         float64 `json:"line_total"`
}

// DetailedInput is everything the detailed calculator needs. Percents
// are expressed as 0-100 values and validated before any computation.
type DetailedInput struct {
	Lines []LineInput
	Vars  map[string]float64

	OverheadPercent float64
	ProfitPercent   float64
	TaxPercent      float64
	Tax             TaxPolicy

	// Geo is nil when no region applies; the factor then defaults to 1.
	Geo *GeoMultipliers
}

// DetailedResult keeps full precision on every aggregate; only the
// three-tier prices are rounded, at the very end.
type DetailedResult struct {
	Lines []ComputedLine `json:"lines"`

	TotalMaterial  float64 `json:"total_material"`
	TotalLabor     float64 `json:"total_labor"`
	TotalEquipment float64 `json:"total_equipment"`
	Subtotal       float64 `json:"subtotal"`

	OverheadAmount float64 `json:"overhead_amount"`
	ProfitAmount   float64 `json:"profit_amount"`
	TaxableAmount  float64 `json:"taxable_amount"`
	TaxAmount      float64 `json:"tax_amount"`

	GeoFactor float64 `json:"geographic_adjustment"`

	PriceLow    float64 `json:"price_low"`
	PriceLikely float64 `json:"price_likely"`
	PriceHigh   float64 `json:"price_high"`
}

// ComputeDetailed evaluates quantities, aggregates included lines and
// layers overhead, profit, tax and the geographic adjustment in that
// fixed order. It either returns a complete, internally consistent
// result or an error with nothing partially applied.
func ComputeDetailed(in DetailedInput) (DetailedResult, error) {
	if in.OverheadPercent < 0 || in.OverheadPercent > maxOverheadPercent {
		return DetailedResult{}, fmt.Errorf("overhead %.2f%%: %w", in.OverheadPercent, ErrOverheadOutOfRange)
	}
	if in.ProfitPercent < 0 || in.ProfitPercent > maxProfitPercent {
		return DetailedResult{}, fmt.Errorf("profit %.2f%%: %w", in.ProfitPercent, ErrProfitOutOfRange)
	}
	if in.TaxPercent < 0 {
		return DetailedResult{}, fmt.Errorf("tax %.2f%%: %w", in.TaxPercent, ErrTaxOutOfRange)
	}

	lines := make([]ComputedLine, 0, len(in.Lines))
	for _, line := range in.Lines {
		quantity, err := Evaluate(line.QuantityFormula, in.Vars)
		if err != nil {
			return DetailedResult{}, fmt.Errorf("line %s: %w", line.ItemCode, err)
		}
		waste := line.WasteFactor
		if waste < 1 {
			waste = 1
		}

		computed := ComputedLine{
			LineInput:         line,
			Quantity:          quantity,
			QuantityWithWaste: quantity * waste,
		}
		unitCost := line.MaterialUnitCost + line.LaborUnitCost + line.EquipmentUnitCost
		computed.LineTotal = computed.QuantityWithWaste * unitCost
		lines = append(lines, computed)
	}

	geoFactor := 1.0
	if in.Geo != nil {
		geoFactor = in.Geo.Factor()
	}

	return RepriceLines(lines, in.OverheadPercent, in.ProfitPercent, in.TaxPercent, in.Tax, geoFactor), nil
}

// RepriceLines aggregates already-computed lines into a full result.
// Quantities and line totals are taken as stored, so toggling a line's
// inclusion flag and re-aggregating leaves every quantity intact.
func RepriceLines(lines []ComputedLine, overheadPercent, profitPercent, taxPercent float64, tax TaxPolicy, geoFactor float64) DetailedResult {
	result := DetailedResult{Lines: lines}

	taxableSubtotal := 0.0
	for _, line := range lines {
		// Optional lines sit in the list but stay out of the totals
		// until their inclusion flag is toggled on.
		if !line.Included {
			continue
		}
		result.TotalMaterial += line.QuantityWithWaste * line.MaterialUnitCost
		result.TotalLabor += line.QuantityWithWaste * line.LaborUnitCost
		result.TotalEquipment += line.QuantityWithWaste * line.EquipmentUnitCost
		if line.Taxable {
			taxableSubtotal += line.LineTotal
		}
	}

	result.Subtotal = result.TotalMaterial + result.TotalLabor + result.TotalEquipment

	result.OverheadAmount = result.Subtotal * overheadPercent / 100
	result.ProfitAmount = (result.Subtotal + result.OverheadAmount) * profitPercent / 100

	result.TaxableAmount = taxableSubtotal
	if tax.IncludeMarkup && result.Subtotal > 0 {
		taxableShare := taxableSubtotal / result.Subtotal
		result.TaxableAmount += (result.OverheadAmount + result.ProfitAmount) * taxableShare
	}
	result.TaxAmount = result.TaxableAmount * taxPercent / 100

	result.GeoFactor = geoFactor

	likely := (result.Subtotal + result.OverheadAmount + result.ProfitAmount + result.TaxAmount) * geoFactor
	result.PriceLikely = math.Round(likely)
	result.PriceLow = math.Round(result.PriceLikely * lowTierFactor)
	result.PriceHigh = math.Round(result.PriceLikely * highTierFactor)

	return result
}
