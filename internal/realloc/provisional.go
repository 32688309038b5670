// Package realloc computes item weights: provisional values from the product
// catalog, then a two-phase reallocation that spreads the shipment's measured
// totals across the items exactly.
package realloc

import (
	"intrastat-assistant/constants"
	"intrastat-assistant/internal/entity"
	"intrastat-assistant/internal/refdata"
)

// FillProvisionalWeights sets the provisional net weight on every item in
// place. Non-product and codeless lines get N/A, products missing from the
// catalog get NOT_FOUND, lines with an unparseable quantity get
// QUANTITY_ERROR.
func FillProvisionalWeights(items []entity.LineItem, table *refdata.WeightTable) {
	for i := range items {
		items[i].Provisional = provisionalWeight(&items[i], table)
	}
}

func provisionalWeight(it *entity.LineItem, table *refdata.WeightTable) entity.Weight {
	if it.PageFailed || !it.IsProduct || it.RawCode == "" {
		return entity.Tagged(constants.TagNotApplicable)
	}
	unit, ok := table.UnitWeight(it.RawCode)
	if !ok {
		return entity.Tagged(constants.TagNotFound)
	}
	if !it.QuantityOK {
		return entity.Tagged(constants.TagQuantityError)
	}
	qty, _ := it.Quantity.Float64()
	return entity.Kilograms(qty * unit)
}
