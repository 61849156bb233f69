package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	costservice "github.com/Rul1an/broodjes-ai-mvp-sub000/internal/application/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/recipe"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/cache"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/config"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/memory"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testRecipeJSON = `{
	"naam": "Broodje Ham",
	"beschrijving": "Simpel broodje ham",
	"ingredienten": [{"naam": "ham", "hoeveelheid": "30 g"}],
	"instructies": ["Beleg het broodje."]
}`

type queueRepo struct {
	pending []*task.Task
	updated map[uuid.UUID]*task.Task
}

func newQueueRepo(pending ...*task.Task) *queueRepo {
	return &queueRepo{pending: pending, updated: make(map[uuid.UUID]*task.Task)}
}

func (r *queueRepo) Create(ctx context.Context, t *task.Task) error { return nil }

func (r *queueRepo) Update(ctx context.Context, t *task.Task) error {
	r.updated[t.ID] = t
	return nil
}

func (r *queueRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return nil, task.ErrNotFound
}

func (r *queueRepo) List(ctx context.Context, offset, limit int) ([]*task.Task, int, error) {
	return nil, 0, nil
}

func (r *queueRepo) ClaimPending(ctx context.Context) (*task.Task, error) {
	if len(r.pending) == 0 {
		return nil, outbound.ErrNoPendingTasks
	}
	t := r.pending[0]
	r.pending = r.pending[1:]
	t.Status = task.StatusProcessing
	return t, nil
}

func (r *queueRepo) FindCompletedWithoutCost(ctx context.Context, limit int) ([]*task.Task, error) {
	return nil, nil
}

func (r *queueRepo) SaveBreakdown(ctx context.Context, id uuid.UUID, text string, calcType task.CalculationType, total *float64) error {
	return nil
}

func (r *queueRepo) SaveEstimatedCost(ctx context.Context, id uuid.UUID, total float64) error {
	return nil
}

type stubAI struct {
	recipeJSON string
	err        error
	calls      int
}

func (s *stubAI) GenerateRecipe(ctx context.Context, idea, model string) (string, error) {
	s.calls++
	return s.recipeJSON, s.err
}

func (s *stubAI) EstimateCostBreakdown(ctx context.Context, r recipe.Recipe) (string, error) {
	return "", outbound.ErrAIUnavailable
}

func (s *stubAI) EstimateItemsCost(ctx context.Context, items []costing.LineItem) (float64, error) {
	return 0, outbound.ErrAIUnavailable
}

func (s *stubAI) RefineRecipe(ctx context.Context, recipeJSON, breakdownText, request string) (string, error) {
	return "", outbound.ErrAIUnavailable
}

type emptyPriceRepo struct{}

func (emptyPriceRepo) FindAll(ctx context.Context) ([]costing.PriceRecord, error) { return nil, nil }
func (emptyPriceRepo) FindByName(ctx context.Context, name string) (costing.PriceRecord, error) {
	return costing.PriceRecord{}, outbound.ErrIngredientNotFound
}
func (emptyPriceRepo) Create(ctx context.Context, rec costing.PriceRecord) error { return nil }
func (emptyPriceRepo) Update(ctx context.Context, rec costing.PriceRecord) error { return nil }
func (emptyPriceRepo) Delete(ctx context.Context, name string) error             { return nil }

func newTestPoller(repo *queueRepo, ai *stubAI) *Poller {
	cfg := &config.Config{}
	cfg.Worker.PollInterval = 10 * time.Millisecond
	cfg.Worker.SweepBatch = 10

	promptCache := cache.NewPromptCache(memory.NewCacheRepository(), 0, zap.NewNop())
	costSvc := costservice.NewService(repo, emptyPriceRepo{}, ai, promptCache, zap.NewNop())

	return NewPoller(cfg, repo, ai, promptCache, costSvc, zap.NewNop())
}

func TestDrainQueueCompletesTask(t *testing.T) {
	tk := task.New("broodje ham", "gpt-4o-mini")
	repo := newQueueRepo(tk)
	ai := &stubAI{recipeJSON: testRecipeJSON}
	p := newTestPoller(repo, ai)

	p.drainQueue(context.Background())

	updated, ok := repo.updated[tk.ID]
	require.True(t, ok)
	assert.Equal(t, task.StatusCompleted, updated.Status)
	assert.Equal(t, testRecipeJSON, updated.RecipeJSON)
	assert.Equal(t, 1, ai.calls)
}

func TestDrainQueueFailsTaskOnAIError(t *testing.T) {
	tk := task.New("broodje ham", "gpt-4o-mini")
	repo := newQueueRepo(tk)
	ai := &stubAI{err: errors.New("rate limited")}
	p := newTestPoller(repo, ai)

	p.drainQueue(context.Background())

	updated, ok := repo.updated[tk.ID]
	require.True(t, ok)
	assert.Equal(t, task.StatusFailed, updated.Status)
	assert.Equal(t, "rate limited", updated.ErrorMessage)
}

func TestDrainQueueRejectsInvalidRecipe(t *testing.T) {
	tk := task.New("broodje ham", "gpt-4o-mini")
	repo := newQueueRepo(tk)
	ai := &stubAI{recipeJSON: `{"naam": "Broodje", "ingredienten": []}`}
	p := newTestPoller(repo, ai)

	p.drainQueue(context.Background())

	updated, ok := repo.updated[tk.ID]
	require.True(t, ok)
	assert.Equal(t, task.StatusFailed, updated.Status)
}

func TestDrainQueueProcessesAllPending(t *testing.T) {
	first := task.New("broodje ham", "gpt-4o-mini")
	second := task.New("broodje kaas", "gpt-4o-mini")
	repo := newQueueRepo(first, second)
	ai := &stubAI{recipeJSON: testRecipeJSON}
	p := newTestPoller(repo, ai)

	p.drainQueue(context.Background())

	assert.Len(t, repo.updated, 2)
}

func TestDrainQueueCachesIdenticalIdeas(t *testing.T) {
	first := task.New("broodje ham", "gpt-4o-mini")
	second := task.New("broodje ham", "gpt-4o-mini")
	repo := newQueueRepo(first, second)
	ai := &stubAI{recipeJSON: testRecipeJSON}
	p := newTestPoller(repo, ai)

	p.drainQueue(context.Background())

	assert.Len(t, repo.updated, 2)
	assert.Equal(t, 1, ai.calls, "second identical idea should hit the prompt cache")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := newQueueRepo()
	p := newTestPoller(repo, &stubAI{recipeJSON: testRecipeJSON})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
