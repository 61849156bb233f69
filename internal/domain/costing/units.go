package costing

import (
	"math"
	"strings"
)

// NormalizeUnit collapses unit spelling variants to their canonical
// token ("g", "kg", "ml", "l", "el", "tl", "stuks"). Unknown units pass
// through unchanged so price-table entries with exotic units still
// compare against themselves. Empty input normalizes to empty.
func NormalizeUnit(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	switch unit {
	case "gram", "gr":
		return "g"
	case "kilogram":
		return "kg"
	case "milliliter":
		return "ml"
	case "liter":
		return "l"
	case "eetlepel", "eetlepels":
		return "el"
	case "theelepel", "theelepels":
		return "tl"
	case "st", "stk", "stuk", "plakje", "plakjes":
		return "stuks"
	}
	return unit
}

// Convert converts value from one unit to another. Units are normalized
// first; identical or missing units return the value unchanged. Only
// metric weight (g/kg) and volume (ml/l) pairs are supported. Any other
// differing pair returns NaN: spoon-to-metric and volume-to-weight
// conversions are deliberately not implemented, so such mismatches fall
// through to AI estimation instead of producing a made-up price.
func Convert(value float64, from, to string) float64 {
	fromUnit := NormalizeUnit(from)
	toUnit := NormalizeUnit(to)

	if fromUnit == "" || toUnit == "" || fromUnit == toUnit {
		return value
	}

	switch {
	case fromUnit == "g" && toUnit == "kg":
		return value / 1000
	case fromUnit == "kg" && toUnit == "g":
		return value * 1000
	case fromUnit == "ml" && toUnit == "l":
		return value / 1000
	case fromUnit == "l" && toUnit == "ml":
		return value * 1000
	}

	return math.NaN()
}
