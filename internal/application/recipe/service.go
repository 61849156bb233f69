// Package recipe provides the application layer for recipe generation.
// This implements the use cases defined in the inbound ports.
package recipe

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/recipe"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/cache"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	apperrors "github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements the recipe-generation use cases.
type Service struct {
	tasks     outbound.TaskRepository
	aiService outbound.AIService
	aiCache   *cache.PromptCache
	logger    *zap.Logger
}

// NewService creates a new recipe service.
func NewService(
	tasks outbound.TaskRepository,
	aiService outbound.AIService,
	aiCache *cache.PromptCache,
	logger *zap.Logger,
) inbound.RecipeService {
	return &Service{
		tasks:     tasks,
		aiService: aiService,
		aiCache:   aiCache,
		logger:    logger.Named("recipe-service"),
	}
}

// StartGeneration enqueues a pending generation task for the worker.
func (s *Service) StartGeneration(ctx context.Context, idea, model string) (uuid.UUID, error) {
	t := task.New(idea, model)

	if err := s.tasks.Create(ctx, t); err != nil {
		return uuid.Nil, apperrors.NewDatabaseError("create task", err)
	}

	s.logger.Info("Generation task enqueued",
		zap.String("task_id", t.ID.String()),
		zap.String("idea", idea),
	)

	return t.ID, nil
}

// GenerateRecipe runs generation synchronously: one AI round trip,
// persisted as a completed task. Identical ideas hit the prompt cache
// instead of the model.
func (s *Service) GenerateRecipe(ctx context.Context, idea, model string) (*inbound.TaskDTO, error) {
	t := task.New(idea, model)

	recipeJSON, err := s.generate(ctx, idea, model)
	if err != nil {
		if errors.Is(err, outbound.ErrAIUnavailable) {
			return nil, apperrors.NewAIUnavailableError()
		}
		t.Fail(err.Error())
		if createErr := s.tasks.Create(ctx, t); createErr != nil {
			s.logger.Error("Failed to persist failed task", zap.Error(createErr))
		}
		return nil, apperrors.NewExternalServiceError("openai", err)
	}

	t.Complete(recipeJSON)

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, apperrors.NewDatabaseError("create task", err)
	}

	s.logger.Info("Recipe generated",
		zap.String("task_id", t.ID.String()),
		zap.String("idea", idea),
	)

	return s.taskToDTO(t), nil
}

// generate returns the recipe JSON for an idea, consulting the prompt
// cache first. The cached value is the validated JSON payload.
func (s *Service) generate(ctx context.Context, idea, model string) (string, error) {
	type payload struct {
		Idea  string `json:"idea"`
		Model string `json:"model"`
	}

	key, keyErr := s.aiCache.Key("generate", payload{Idea: idea, Model: model})
	if keyErr == nil {
		if cached, err := s.aiCache.Get(ctx, "generate", key); err == nil {
			return cached, nil
		}
	}

	recipeJSON, err := s.aiService.GenerateRecipe(ctx, idea, model)
	if err != nil {
		return "", err
	}

	var r recipe.Recipe
	if err := json.Unmarshal([]byte(recipeJSON), &r); err != nil {
		return "", errors.New("model returned malformed recipe JSON")
	}
	if err := r.Validate(); err != nil {
		return "", err
	}

	if keyErr == nil {
		s.aiCache.Set(ctx, "generate", key, recipeJSON)
	}

	return recipeJSON, nil
}

// GetTask returns a task by id.
func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*inbound.TaskDTO, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return nil, apperrors.NewTaskNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find task", err)
	}

	return s.taskToDTO(t), nil
}

// ListTasks returns tasks newest first.
func (s *Service) ListTasks(ctx context.Context, offset, limit int) ([]*inbound.TaskDTO, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	tasks, total, err := s.tasks.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("list tasks", err)
	}

	dtos := make([]*inbound.TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = s.taskToDTO(t)
	}

	return dtos, total, nil
}

// RefineRecipe reworks a completed task's recipe and breakdown
// according to a user request. The refined text replaces any previous
// refinement on the task.
func (s *Service) RefineRecipe(ctx context.Context, id uuid.UUID, request string) (*inbound.TaskDTO, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return nil, apperrors.NewTaskNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("find task", err)
	}

	if t.Status != task.StatusCompleted {
		return nil, apperrors.NewTaskNotCompletedError(id.String())
	}

	refined, err := s.refine(ctx, t, request)
	if err != nil {
		if errors.Is(err, outbound.ErrAIUnavailable) {
			return nil, apperrors.NewAIUnavailableError()
		}
		return nil, apperrors.NewExternalServiceError("openai", err)
	}

	t.RefinedText = refined
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, apperrors.NewDatabaseError("update task", err)
	}

	s.logger.Info("Recipe refined",
		zap.String("task_id", t.ID.String()),
		zap.String("request", request),
	)

	return s.taskToDTO(t), nil
}

func (s *Service) refine(ctx context.Context, t *task.Task, request string) (string, error) {
	type payload struct {
		TaskID    string `json:"task_id"`
		Request   string `json:"request"`
		Recipe    string `json:"recipe"`
		Breakdown string `json:"breakdown"`
	}

	key, keyErr := s.aiCache.Key("refine", payload{
		TaskID:    t.ID.String(),
		Request:   request,
		Recipe:    t.RecipeJSON,
		Breakdown: t.CostBreakdown,
	})
	if keyErr == nil {
		if cached, err := s.aiCache.Get(ctx, "refine", key); err == nil {
			return cached, nil
		}
	}

	refined, err := s.aiService.RefineRecipe(ctx, t.RecipeJSON, t.CostBreakdown, request)
	if err != nil {
		return "", err
	}

	if keyErr == nil {
		s.aiCache.Set(ctx, "refine", key, refined)
	}

	return refined, nil
}

// taskToDTO converts a domain task to its external representation.
func (s *Service) taskToDTO(t *task.Task) *inbound.TaskDTO {
	dto := &inbound.TaskDTO{
		ID:              t.ID,
		Idea:            t.Idea,
		Model:           t.Model,
		Status:          t.Status,
		RefinedText:     t.RefinedText,
		CostBreakdown:   t.CostBreakdown,
		CalculationType: t.CalculationType,
		EstimatedCost:   t.EstimatedCost,
		ErrorMessage:    t.ErrorMessage,
		CreatedAt:       t.CreatedAt,
	}

	if t.RecipeJSON != "" {
		if r, err := t.Recipe(); err == nil {
			dto.Recipe = &r
		}
	}

	return dto
}
