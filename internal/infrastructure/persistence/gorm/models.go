// Package gorm provides GORM model definitions and repository implementations.
package gorm

import (
	"time"

	"github.com/google/uuid"
)

// TaskModel is the GORM model for recipe-generation tasks.
type TaskModel struct {
	ID     uuid.UUID `gorm:"type:char(36);primaryKey"`
	Idea   string    `gorm:"type:text;not null"`
	Model  string    `gorm:"type:varchar(100)"`
	Status string    `gorm:"type:varchar(20);not null;index"`

	RecipeJSON string `gorm:"column:recipe_json;type:text"`

	CostBreakdown   string   `gorm:"column:cost_breakdown;type:text"`
	CalculationType string   `gorm:"column:calculation_type;type:varchar(20)"`
	EstimatedCost   *float64 `gorm:"column:estimated_cost"`
	RefinedText     string   `gorm:"column:refined_text;type:text"`

	ErrorMessage string `gorm:"column:error_message;type:text"`

	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// TableName overrides the table name
func (TaskModel) TableName() string {
	return "tasks"
}

// IngredientModel is the GORM model for priced ingredients. Names keep
// their casing for display; repository queries compare on LOWER(name),
// backed by a functional unique index in the migrations.
type IngredientModel struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"`
	Name         string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	Unit         string  `gorm:"type:varchar(20);not null"`
	PricePerUnit float64 `gorm:"column:price_per_unit;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name
func (IngredientModel) TableName() string {
	return "ingredients"
}
