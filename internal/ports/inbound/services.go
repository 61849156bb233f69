// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases the HTTP layer and the worker drive.
package inbound

import (
	"context"
	"time"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/recipe"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/google/uuid"
)

// RecipeService covers the recipe-generation task lifecycle.
type RecipeService interface {
	// StartGeneration enqueues a pending task for the worker and
	// returns its id immediately.
	StartGeneration(ctx context.Context, idea, model string) (uuid.UUID, error)

	// GenerateRecipe runs generation synchronously: one AI round trip,
	// persisted as a completed task.
	GenerateRecipe(ctx context.Context, idea, model string) (*TaskDTO, error)

	GetTask(ctx context.Context, id uuid.UUID) (*TaskDTO, error)
	ListTasks(ctx context.Context, offset, limit int) ([]*TaskDTO, int, error)

	// RefineRecipe asks the model to rework a completed task's recipe
	// and breakdown according to a user request, overwriting the task's
	// refined text.
	RefineRecipe(ctx context.Context, id uuid.UUID, request string) (*TaskDTO, error)
}

// CostService produces cost breakdown reports for completed tasks.
type CostService interface {
	GetCostBreakdown(ctx context.Context, taskID uuid.UUID) (*CostBreakdownDTO, error)
}

// IngredientService manages the priced ingredient store.
type IngredientService interface {
	ListIngredients(ctx context.Context) ([]costing.PriceRecord, error)
	AddIngredient(ctx context.Context, rec costing.PriceRecord) error
	UpdateIngredient(ctx context.Context, rec costing.PriceRecord) error
	DeleteIngredient(ctx context.Context, name string) error
}

// TaskDTO is the external representation of a generation task.
type TaskDTO struct {
	ID              uuid.UUID            `json:"task_id"`
	Idea            string               `json:"idea"`
	Model           string               `json:"model"`
	Status          task.Status          `json:"status"`
	Recipe          *recipe.Recipe       `json:"recipe,omitempty"`
	RefinedText     string               `json:"refined_text,omitempty"`
	CostBreakdown   string               `json:"cost_breakdown,omitempty"`
	CalculationType task.CalculationType `json:"cost_calculation_type,omitempty"`
	EstimatedCost   *float64             `json:"estimated_cost,omitempty"`
	ErrorMessage    string               `json:"error_message,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// CostBreakdownDTO is one cost report. TotalCost is nil when no total
// could be established ("unknown", deliberately distinct from zero).
type CostBreakdownDTO struct {
	TaskID          uuid.UUID            `json:"task_id"`
	CalculationType task.CalculationType `json:"calculation_type"`
	Text            string               `json:"breakdown"`
	TotalCost       *float64             `json:"total_cost"`
	Items           []LineItemDTO        `json:"items"`
}

// LineItemDTO is the per-ingredient outcome inside a breakdown report.
type LineItemDTO struct {
	Name           string   `json:"name"`
	QuantityString string   `json:"quantity_string"`
	Status         string   `json:"status"`
	Cost           *float64 `json:"cost,omitempty"`
	ResolvedUnit   string   `json:"resolved_unit,omitempty"`
	Message        string   `json:"message,omitempty"`
}
