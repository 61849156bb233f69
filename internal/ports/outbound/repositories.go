// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces the application uses to reach external systems.
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/recipe"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/google/uuid"
)

var (
	// ErrNoPendingTasks signals an empty queue to the polling worker.
	ErrNoPendingTasks = errors.New("no pending tasks")
	// ErrTaskClaimed signals that another worker claimed the task first.
	ErrTaskClaimed = errors.New("task already claimed")

	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrIngredientExists   = errors.New("ingredient already exists")

	// ErrCacheMiss is returned by CacheRepository.Get for absent keys.
	ErrCacheMiss = errors.New("cache miss")
)

// TaskRepository persists recipe-generation task records.
type TaskRepository interface {
	Create(ctx context.Context, t *task.Task) error
	Update(ctx context.Context, t *task.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	List(ctx context.Context, offset, limit int) ([]*task.Task, int, error)

	// ClaimPending atomically claims the oldest pending task by a
	// conditional pending→processing update. ErrNoPendingTasks when the
	// queue is empty; ErrTaskClaimed when another worker won the race.
	ClaimPending(ctx context.Context) (*task.Task, error)

	// FindCompletedWithoutCost lists completed tasks that have no
	// deterministic cost yet, for the batch costing sweep.
	FindCompletedWithoutCost(ctx context.Context, limit int) ([]*task.Task, error)

	// SaveBreakdown overwrites the task's cost report. Each breakdown
	// request replaces the previous one; no history is kept.
	SaveBreakdown(ctx context.Context, id uuid.UUID, text string, calcType task.CalculationType, total *float64) error

	// SaveEstimatedCost writes the deterministic total from the batch sweep.
	SaveEstimatedCost(ctx context.Context, id uuid.UUID, total float64) error
}

// IngredientPriceRepository persists the priced ingredient store.
// Names are unique case-insensitively.
type IngredientPriceRepository interface {
	FindAll(ctx context.Context) ([]costing.PriceRecord, error)
	FindByName(ctx context.Context, name string) (costing.PriceRecord, error)
	Create(ctx context.Context, rec costing.PriceRecord) error
	Update(ctx context.Context, rec costing.PriceRecord) error
	Delete(ctx context.Context, name string) error
}

// CacheRepository is the byte-oriented cache the AI response cache sits on.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// AIService is the text-generation collaborator. GenerateRecipe uses
// the JSON-object response mode; the estimate methods use free text.
// Implementations return ErrAIUnavailable when no credentials are
// configured; callers on the costing path must degrade, not crash.
type AIService interface {
	GenerateRecipe(ctx context.Context, idea, model string) (string, error)
	EstimateCostBreakdown(ctx context.Context, r recipe.Recipe) (string, error)
	EstimateItemsCost(ctx context.Context, items []costing.LineItem) (float64, error)
	RefineRecipe(ctx context.Context, recipeJSON, breakdownText, request string) (string, error)
}

// ErrAIUnavailable marks a misconfigured (credential-less) AI collaborator.
var ErrAIUnavailable = errors.New("ai service not configured")
