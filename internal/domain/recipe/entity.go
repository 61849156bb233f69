// Package recipe defines the recipe payload produced by the text
// generation collaborator and stored on a generation task.
package recipe

import "strings"

// Ingredient is one recipe ingredient. Quantity is free text exactly as
// the model wrote it ("250 g", "2 stuks", "snufje"); parsing it is the
// costing domain's job.
type Ingredient struct {
	Name     string `json:"naam"`
	Quantity string `json:"hoeveelheid"`
}

// Recipe is the structured payload of a generated recipe. JSON tags
// follow the generation prompt's contract, which asks for Dutch keys.
type Recipe struct {
	Title        string       `json:"naam"`
	Description  string       `json:"beschrijving"`
	Ingredients  []Ingredient `json:"ingredienten"`
	Instructions []string     `json:"instructies"`
}

// Validate checks the minimal structural contract a generated recipe
// must satisfy before it is persisted.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrMissingTitle
	}
	if len(r.Ingredients) == 0 {
		return ErrNoIngredients
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return ErrUnnamedIngredient
		}
	}
	if len(r.Instructions) == 0 {
		return ErrNoInstructions
	}
	return nil
}
