package costing

import (
	"fmt"
	"math"
)

// Item is a recipe ingredient as stored on the recipe: a name and the
// free-text quantity string the model produced.
type Item struct {
	Name     string
	Quantity string
}

// PriceItem prices a single recipe ingredient against the table.
// It short-circuits on the first applicable failure and never returns
// an error: every miss is a LineItem with a reason.
func PriceItem(item Item, table PriceTable) LineItem {
	line := LineItem{Name: item.Name, QuantityString: item.Quantity}

	if item.Name == "" {
		line.Reason = ReasonMissingName
		line.Message = "ingredient has no name"
		return line
	}

	parsed := ParseQuantity(item.Quantity)
	if !parsed.HasValue() || parsed.Unit == "" || IsNonQuantitative(parsed.Unit) {
		line.Reason = ReasonParseError
		line.Message = fmt.Sprintf("could not parse quantity %q", item.Quantity)
		return line
	}

	rec, ok := table.Lookup(item.Name)
	if !ok {
		line.Reason = ReasonNotFound
		line.Message = "ingredient not found in price table"
		return line
	}

	quantity := parsed.Value
	recipeUnit := NormalizeUnit(parsed.Unit)
	dbUnit := NormalizeUnit(rec.Unit)
	if recipeUnit != dbUnit {
		quantity = Convert(parsed.Value, parsed.Unit, rec.Unit)
		if math.IsNaN(quantity) {
			line.Reason = ReasonUnitMismatch
			line.Message = fmt.Sprintf("no conversion from %q to %q", recipeUnit, dbUnit)
			return line
		}
	}

	cost := quantity * rec.PricePerUnit
	if math.IsNaN(cost) {
		line.Reason = ReasonInvalidCost
		line.Message = "computed cost is not a number"
		return line
	}

	line.Priced = true
	line.Cost = round(cost, 4)
	line.ResolvedUnit = dbUnit
	line.ResolvedQuantity = quantity
	return line
}

// PriceAll runs the deterministic pass over a full ingredient list.
// The pass is pure over its inputs: the same list and table always
// produce the same line items and subtotal.
func PriceAll(items []Item, table PriceTable) Result {
	result := Result{Items: make([]LineItem, 0, len(items))}
	for _, item := range items {
		line := PriceItem(item, table)
		if line.Priced {
			result.Subtotal += line.Cost
		}
		result.Items = append(result.Items, line)
	}
	return result
}

func round(v float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(v*shift) / shift
}

// Round2 rounds to two decimals, the precision used for user-facing totals.
func Round2(v float64) float64 {
	return round(v, 2)
}
