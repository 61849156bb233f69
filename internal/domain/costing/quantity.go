// Package costing implements deterministic ingredient pricing: parsing
// free-text quantities, normalizing and converting units, and matching
// recipe ingredients against a priced ingredient table.
package costing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParsedQuantity is the result of parsing a free-text quantity string
// such as "250 g" or "2 stuks". Value is NaN when no amount could be
// parsed. Unit is empty when the string carries no recognizable unit.
type ParsedQuantity struct {
	Value float64
	Unit  string
}

// HasValue reports whether a numeric amount was parsed.
func (q ParsedQuantity) HasValue() bool {
	return !math.IsNaN(q.Value)
}

// leadingNumber matches the numeric token at the start of a quantity
// string, allowing both comma and dot as decimal separator. A token
// with multiple separators ("1,5,0") does not survive ParseFloat and
// the item falls through to AI estimation.
var leadingNumber = regexp.MustCompile(`^[\d.,]+`)

// nonQuantitative holds phrases that deliberately carry no amount.
// They parse to a NaN value with the phrase as unit, so callers can
// tell "intentionally unpriceable" apart from garbage input.
var nonQuantitative = map[string]bool{
	"snufje":     true,
	"naar smaak": true,
	"beetje":     true,
}

// IsNonQuantitative reports whether unit is one of the unpriceable phrases.
func IsNonQuantitative(unit string) bool {
	return nonQuantitative[unit]
}

// ParseQuantity parses a recipe quantity string into an amount and a
// canonical unit token.
//
// Rules, in order:
//   - empty input parses to {NaN, ""}
//   - a string that is exactly a non-quantitative phrase ("snufje",
//     "naar smaak", "beetje") parses to {NaN, phrase}
//   - otherwise a leading numeric token is required; comma decimals are
//     accepted ("0,5 kg")
//   - the remainder is collapsed through the unit synonym table; unknown
//     units pass through unchanged
//   - a missing unit defaults to "stuks" for whole numbers only; a bare
//     decimal without a unit stays unitless
func ParseQuantity(s string) ParsedQuantity {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ParsedQuantity{Value: math.NaN()}
	}

	num := leadingNumber.FindString(s)
	if num == "" {
		if nonQuantitative[s] {
			return ParsedQuantity{Value: math.NaN(), Unit: s}
		}
		return ParsedQuantity{Value: math.NaN()}
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", "."), 64)
	if err != nil {
		return ParsedQuantity{Value: math.NaN()}
	}

	unit := strings.TrimSpace(s[len(num):])
	switch unit {
	case "g", "gram":
		unit = "g"
	case "kg", "kilogram":
		unit = "kg"
	case "l", "liter":
		unit = "l"
	case "ml", "milliliter":
		unit = "ml"
	case "el", "eetlepel", "eetlepels":
		unit = "el"
	case "tl", "theelepel", "theelepels":
		unit = "tl"
	case "st", "stk", "stuk", "stuks":
		unit = "stuks"
	case "":
		if value == math.Trunc(value) {
			unit = "stuks"
		}
		// A bare decimal without a unit is ambiguous: "1,5" of what?
		// It stays unitless and fails deterministic pricing downstream.
	}

	return ParsedQuantity{Value: value, Unit: unit}
}
