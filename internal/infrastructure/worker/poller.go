// Package worker provides the background task poller: it claims
// pending generation tasks, runs the AI round trip, and periodically
// backfills deterministic cost estimates.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	costservice "github.com/Rul1an/broodjes-ai-mvp-sub000/internal/application/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/recipe"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/cache"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/config"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var tasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "broodjes_worker_tasks_processed_total",
	Help: "Number of generation tasks processed by outcome.",
}, []string{"outcome"})

// Poller claims and processes pending generation tasks.
type Poller struct {
	config      *config.Config
	tasks       outbound.TaskRepository
	aiService   outbound.AIService
	aiCache     *cache.PromptCache
	costService *costservice.Service
	logger      *zap.Logger
}

// NewPoller creates a new task poller.
func NewPoller(
	cfg *config.Config,
	tasks outbound.TaskRepository,
	aiService outbound.AIService,
	aiCache *cache.PromptCache,
	costService *costservice.Service,
	logger *zap.Logger,
) *Poller {
	return &Poller{
		config:      cfg,
		tasks:       tasks,
		aiService:   aiService,
		aiCache:     aiCache,
		costService: costService,
		logger:      logger.Named("worker"),
	}
}

// Run polls until the context is cancelled. Each tick drains the
// pending queue, then runs the cost sweep when enabled.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Worker started",
		zap.Duration("poll_interval", p.config.Worker.PollInterval),
		zap.Bool("cost_sweep", p.config.Worker.CostSweep),
	)

	ticker := time.NewTicker(p.config.Worker.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Worker stopped")
			return
		case <-ticker.C:
			p.drainQueue(ctx)

			if p.config.Worker.CostSweep {
				if _, err := p.costService.SweepPendingCosts(ctx, p.config.Worker.SweepBatch); err != nil {
					p.logger.Error("Cost sweep failed", zap.Error(err))
				}
			}
		}
	}
}

// drainQueue claims tasks until the queue is empty.
func (p *Poller) drainQueue(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		t, err := p.tasks.ClaimPending(ctx)
		if err != nil {
			if errors.Is(err, outbound.ErrNoPendingTasks) {
				return
			}
			if errors.Is(err, outbound.ErrTaskClaimed) {
				// Lost the race, try the next one.
				continue
			}
			p.logger.Error("Failed to claim task", zap.Error(err))
			return
		}

		p.process(ctx, t)
	}
}

// process runs one generation round trip for a claimed task.
func (p *Poller) process(ctx context.Context, t *task.Task) {
	p.logger.Info("Processing task",
		zap.String("task_id", t.ID.String()),
		zap.String("idea", t.Idea),
	)

	recipeJSON, err := p.generate(ctx, t.Idea, t.Model)
	if err != nil {
		t.Fail(err.Error())
		tasksProcessed.WithLabelValues("failed").Inc()
		p.logger.Warn("Task failed",
			zap.String("task_id", t.ID.String()),
			zap.Error(err),
		)
	} else {
		t.Complete(recipeJSON)
		tasksProcessed.WithLabelValues("completed").Inc()
		p.logger.Info("Task completed", zap.String("task_id", t.ID.String()))
	}

	if err := p.tasks.Update(ctx, t); err != nil {
		p.logger.Error("Failed to persist task outcome",
			zap.String("task_id", t.ID.String()),
			zap.Error(err),
		)
	}
}

// generate produces and validates the recipe JSON for an idea,
// consulting the prompt cache first.
func (p *Poller) generate(ctx context.Context, idea, model string) (string, error) {
	type payload struct {
		Idea  string `json:"idea"`
		Model string `json:"model"`
	}

	key, keyErr := p.aiCache.Key("generate", payload{Idea: idea, Model: model})
	if keyErr == nil {
		if cached, err := p.aiCache.Get(ctx, "generate", key); err == nil {
			return cached, nil
		}
	}

	recipeJSON, err := p.aiService.GenerateRecipe(ctx, idea, model)
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
		p.aiCache.Set(ctx, "generate", key, recipeJSON)
	}

	return recipeJSON, nil
}
