// Package task models the recipe-generation task record: one row per
// generation job, carrying the idea, the generated recipe payload, and
// the latest cost breakdown.
package task

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/recipe"
	"github.com/google/uuid"
)

// Status is the lifecycle state of a generation task. Workers claim
// pending tasks by a conditional pending→processing update, so a task
// is processed by at most one worker.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// CalculationType records how the persisted cost breakdown was
// produced: fully from the price table, fully AI-estimated, a hybrid of
// both, or a hybrid whose AI half failed.
type CalculationType string

const (
	CalculationDB             CalculationType = "db"
	CalculationAI             CalculationType = "ai"
	CalculationHybrid         CalculationType = "hybrid"
	CalculationHybridAIFailed CalculationType = "hybrid_ai_failed"
)

var ErrNotFound = errors.New("task not found")

// Task is one recipe-generation job. RecipeJSON holds the generated
// recipe payload as the model returned it; the breakdown fields hold
// the most recent cost report and are overwritten by each new request.
type Task struct {
	ID         uuid.UUID
	Idea       string
	Model      string
	Status     Status
	RecipeJSON string

	CostBreakdown   string
	CalculationType CalculationType
	EstimatedCost   *float64
	RefinedText     string

	ErrorMessage string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// New creates a pending task for an idea.
func New(idea, model string) *Task {
	return &Task{
		ID:        uuid.New(),
		Idea:      idea,
		Model:     model,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Recipe decodes the stored recipe payload. It fails when the task has
// not completed generation yet or the payload is malformed.
func (t *Task) Recipe() (recipe.Recipe, error) {
	var r recipe.Recipe
	if t.RecipeJSON == "" {
		return r, errors.New("task has no recipe payload")
	}
	if err := json.Unmarshal([]byte(t.RecipeJSON), &r); err != nil {
		return r, err
	}
	return r, nil
}

// Complete stores the generated recipe payload and marks the task done.
func (t *Task) Complete(recipeJSON string) {
	now := time.Now().UTC()
	t.RecipeJSON = recipeJSON
	t.Status = StatusCompleted
	t.FinishedAt = &now
	t.ErrorMessage = ""
}

// Fail marks the task as terminally failed.
func (t *Task) Fail(reason string) {
	now := time.Now().UTC()
	t.Status = StatusFailed
	t.ErrorMessage = reason
	t.FinishedAt = &now
}
