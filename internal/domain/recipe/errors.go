package recipe

import "errors"

var (
	ErrMissingTitle      = errors.New("recipe has no title")
	ErrNoIngredients     = errors.New("recipe has no ingredients")
	ErrUnnamedIngredient = errors.New("recipe ingredient has no name")
	ErrNoInstructions    = errors.New("recipe has no instructions")
)
