package costing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/recipe"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/cache"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/memory"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	apperrors "github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*task.Task

	savedBreakdowns map[uuid.UUID]savedBreakdown
	savedCosts      map[uuid.UUID]float64
	breakdownErr    error
	costErr         error
	withoutCost     []*task.Task
}

type savedBreakdown struct {
	text     string
	calcType task.CalculationType
	total    *float64
}

func newFakeTaskRepo(tasks ...*task.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{
		tasks:           make(map[uuid.UUID]*task.Task),
		savedBreakdowns: make(map[uuid.UUID]savedBreakdown),
		savedCosts:      make(map[uuid.UUID]float64),
	}
	for _, t := range tasks {
		repo.tasks[t.ID] = t
	}
	return repo
}

func (r *fakeTaskRepo) Create(ctx context.Context, t *task.Task) error {
	r.tasks[t.ID] = t
	return nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, t *task.Task) error {
	if _, ok := r.tasks[t.ID]; !ok {
		return task.ErrNotFound
	}
	r.tasks[t.ID] = t
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	return t, nil
}

func (r *fakeTaskRepo) List(ctx context.Context, offset, limit int) ([]*task.Task, int, error) {
	return nil, len(r.tasks), nil
}

func (r *fakeTaskRepo) ClaimPending(ctx context.Context) (*task.Task, error) {
	return nil, outbound.ErrNoPendingTasks
}

func (r *fakeTaskRepo) FindCompletedWithoutCost(ctx context.Context, limit int) ([]*task.Task, error) {
	if limit < len(r.withoutCost) {
		return r.withoutCost[:limit], nil
	}
	return r.withoutCost, nil
}

func (r *fakeTaskRepo) SaveBreakdown(ctx context.Context, id uuid.UUID, text string, calcType task.CalculationType, total *float64) error {
	if r.breakdownErr != nil {
		return r.breakdownErr
	}
	r.savedBreakdowns[id] = savedBreakdown{text: text, calcType: calcType, total: total}
	return nil
}

func (r *fakeTaskRepo) SaveEstimatedCost(ctx context.Context, id uuid.UUID, total float64) error {
	if r.costErr != nil {
		return r.costErr
	}
	r.savedCosts[id] = total
	return nil
}

type fakePriceRepo struct {
	records []costing.PriceRecord
	err     error
}

func (r *fakePriceRepo) FindAll(ctx context.Context) ([]costing.PriceRecord, error) {
	return r.records, r.err
}

func (r *fakePriceRepo) FindByName(ctx context.Context, name string) (costing.PriceRecord, error) {
	for _, rec := range r.records {
		if rec.Name == name {
			return rec, nil
		}
	}
	return costing.PriceRecord{}, outbound.ErrIngredientNotFound
}

func (r *fakePriceRepo) Create(ctx context.Context, rec costing.PriceRecord) error { return nil }
func (r *fakePriceRepo) Update(ctx context.Context, rec costing.PriceRecord) error { return nil }
func (r *fakePriceRepo) Delete(ctx context.Context, name string) error             { return nil }

type fakeAIService struct {
	breakdownText string
	breakdownErr  error
	itemsEstimate float64
	itemsErr      error

	itemsCalls     int
	breakdownCalls int
}

func (s *fakeAIService) GenerateRecipe(ctx context.Context, idea, model string) (string, error) {
	return "", outbound.ErrAIUnavailable
}

func (s *fakeAIService) EstimateCostBreakdown(ctx context.Context, r recipe.Recipe) (string, error) {
	s.breakdownCalls++
	return s.breakdownText, s.breakdownErr
}

func (s *fakeAIService) EstimateItemsCost(ctx context.Context, items []costing.LineItem) (float64, error) {
	s.itemsCalls++
	return s.itemsEstimate, s.itemsErr
}

func (s *fakeAIService) RefineRecipe(ctx context.Context, recipeJSON, breakdownText, request string) (string, error) {
	return "", outbound.ErrAIUnavailable
}

func newTestService(tasks *fakeTaskRepo, prices *fakePriceRepo, ai *fakeAIService) *Service {
	promptCache := cache.NewPromptCache(memory.NewCacheRepository(), 0, zap.NewNop())
	return NewService(tasks, prices, ai, promptCache, zap.NewNop())
}

func completedTask(t *testing.T, ingredients []recipe.Ingredient) *task.Task {
	t.Helper()

	r := recipe.Recipe{
		Title:        "Broodje Gezond",
		Description:  "Een simpel broodje",
		Ingredients:  ingredients,
		Instructions: []string{"Beleg het broodje."},
	}
	payload, err := json.Marshal(r)
	require.NoError(t, err)

	tk := task.New("broodje gezond", "gpt-4o-mini")
	tk.Complete(string(payload))
	return tk
}

func sandwichPrices() []costing.PriceRecord {
	return []costing.PriceRecord{
		{Name: "boter", Unit: "g", PricePerUnit: 0.01},
		{Name: "wit brood", Unit: "stuks", PricePerUnit: 1.20},
		{Name: "jonge kaas", Unit: "g", PricePerUnit: 0.0095},
	}
}

func TestGetCostBreakdownFullyPriced(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Boter", Quantity: "20 g"},
		{Name: "wit brood", Quantity: "2 stuks"},
	})
	tasks := newFakeTaskRepo(tk)
	ai := &fakeAIService{}
	svc := newTestService(tasks, &fakePriceRepo{records: sandwichPrices()}, ai)

	report, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, task.CalculationDB, report.CalculationType)
	require.NotNil(t, report.TotalCost)
	assert.InDelta(t, 2.60, *report.TotalCost, 0.0001)
	assert.Contains(t, report.Text, "**Totaal Geschat:** €2.60")
	assert.Zero(t, ai.itemsCalls, "fully priced breakdown must not call AI")

	require.Len(t, report.Items, 2)
	assert.Equal(t, "ok", report.Items[0].Status)
	require.NotNil(t, report.Items[0].Cost)
	assert.InDelta(t, 0.20, *report.Items[0].Cost, 0.0001)
	assert.Equal(t, "g", report.Items[0].ResolvedUnit)

	saved, ok := tasks.savedBreakdowns[tk.ID]
	require.True(t, ok, "report should be persisted on the task")
	assert.Equal(t, task.CalculationDB, saved.calcType)
	require.NotNil(t, saved.total)
	assert.InDelta(t, 2.60, *saved.total, 0.0001)
}

func TestGetCostBreakdownHybrid(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Boter", Quantity: "20 g"},
		{Name: "Zout", Quantity: "snufje"},
	})
	tasks := newFakeTaskRepo(tk)
	ai := &fakeAIService{itemsEstimate: 0.05}
	svc := newTestService(tasks, &fakePriceRepo{records: sandwichPrices()}, ai)

	report, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, task.CalculationHybrid, report.CalculationType)
	require.NotNil(t, report.TotalCost)
	assert.InDelta(t, 0.25, *report.TotalCost, 0.0001)
	assert.Equal(t, 1, ai.itemsCalls)
	assert.Contains(t, report.Text, "Geschat door AI")
	assert.Contains(t, report.Text, "**Totaal Geschat:** €0.25")

	require.Len(t, report.Items, 2)
	assert.Equal(t, "ok", report.Items[0].Status)
	assert.Equal(t, string(costing.ReasonParseError), report.Items[1].Status)
	assert.Nil(t, report.Items[1].Cost)
}

func TestGetCostBreakdownHybridAIFailure(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Boter", Quantity: "20 g"},
		{Name: "Zout", Quantity: "snufje"},
	})
	tasks := newFakeTaskRepo(tk)
	ai := &fakeAIService{itemsErr: errors.New("rate limited")}
	svc := newTestService(tasks, &fakePriceRepo{records: sandwichPrices()}, ai)

	report, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, task.CalculationHybridAIFailed, report.CalculationType)
	require.NotNil(t, report.TotalCost)
	assert.InDelta(t, 0.20, *report.TotalCost, 0.0001, "total must contain only the deterministic subtotal")
	assert.Contains(t, report.Text, "AI-schatting is mislukt")
}

func TestGetCostBreakdownHybridUsesPromptCache(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Boter", Quantity: "20 g"},
		{Name: "Zout", Quantity: "snufje"},
	})
	tasks := newFakeTaskRepo(tk)
	ai := &fakeAIService{itemsEstimate: 0.05}
	svc := newTestService(tasks, &fakePriceRepo{records: sandwichPrices()}, ai)

	first, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)
	second, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, ai.itemsCalls, "identical failed items should hit the prompt cache")
	assert.Equal(t, task.CalculationHybrid, second.CalculationType)
	require.NotNil(t, second.TotalCost)
	assert.Equal(t, *first.TotalCost, *second.TotalCost)
}

func TestGetCostBreakdownAIOnly(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Truffel", Quantity: "een beetje"},
	})
	tasks := newFakeTaskRepo(tk)
	ai := &fakeAIService{
		breakdownText: "## Geschatte Kosten Opbouw:\n- Truffel (een beetje): €4.50\n- **Totaal Geschat:** €4.50",
	}
	svc := newTestService(tasks, &fakePriceRepo{}, ai)

	report, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, task.CalculationAI, report.CalculationType)
	require.NotNil(t, report.TotalCost)
	assert.InDelta(t, 4.50, *report.TotalCost, 0.0001)
	assert.Equal(t, ai.breakdownText, report.Text)
}

func TestGetCostBreakdownAIOnlyFailure(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Truffel", Quantity: "een beetje"},
	})
	tasks := newFakeTaskRepo(tk)
	ai := &fakeAIService{breakdownErr: outbound.ErrAIUnavailable}
	svc := newTestService(tasks, &fakePriceRepo{}, ai)

	report, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, task.CalculationAI, report.CalculationType)
	assert.Nil(t, report.TotalCost, "an unknown total stays nil, never zero")
	assert.Contains(t, report.Text, "Kostenopbouw kon niet worden berekend")
}

func TestGetCostBreakdownAIOnlyUsesPromptCache(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Truffel", Quantity: "een beetje"},
	})
	tasks := newFakeTaskRepo(tk)
	ai := &fakeAIService{
		breakdownText: "- **Totaal Geschat:** €4.50",
	}
	svc := newTestService(tasks, &fakePriceRepo{}, ai)

	_, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)
	_, err = svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, ai.breakdownCalls, "second request should hit the prompt cache")
}

func TestGetCostBreakdownEmptyIngredientList(t *testing.T) {
	r := recipe.Recipe{Title: "Leeg"}
	payload, err := json.Marshal(r)
	require.NoError(t, err)

	tk := task.New("leeg", "gpt-4o-mini")
	tk.Complete(string(payload))

	tasks := newFakeTaskRepo(tk)
	ai := &fakeAIService{}
	svc := newTestService(tasks, &fakePriceRepo{}, ai)

	report, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, task.CalculationDB, report.CalculationType)
	require.NotNil(t, report.TotalCost)
	assert.Equal(t, 0.0, *report.TotalCost)
	assert.Contains(t, report.Text, "Geen ingrediënten")
	assert.Zero(t, ai.breakdownCalls)
	assert.Zero(t, ai.itemsCalls)
}

func TestGetCostBreakdownTaskNotFound(t *testing.T) {
	svc := newTestService(newFakeTaskRepo(), &fakePriceRepo{}, &fakeAIService{})

	_, err := svc.GetCostBreakdown(context.Background(), uuid.New())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeTaskNotFound, appErr.Code)
}

func TestGetCostBreakdownTaskNotCompleted(t *testing.T) {
	tk := task.New("broodje", "gpt-4o-mini")
	svc := newTestService(newFakeTaskRepo(tk), &fakePriceRepo{}, &fakeAIService{})

	_, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeTaskNotCompleted, appErr.Code)
}

func TestGetCostBreakdownPersistFailureStillReturnsReport(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Boter", Quantity: "20 g"},
	})
	tasks := newFakeTaskRepo(tk)
	tasks.breakdownErr = errors.New("disk full")
	svc := newTestService(tasks, &fakePriceRepo{records: sandwichPrices()}, &fakeAIService{})

	report, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)
	require.NotNil(t, report.TotalCost)
	assert.InDelta(t, 0.20, *report.TotalCost, 0.0001)
}

func TestGetCostBreakdownDeterministic(t *testing.T) {
	tk := completedTask(t, []recipe.Ingredient{
		{Name: "Boter", Quantity: "20 g"},
		{Name: "jonge kaas", Quantity: "40 g"},
	})
	tasks := newFakeTaskRepo(tk)
	svc := newTestService(tasks, &fakePriceRepo{records: sandwichPrices()}, &fakeAIService{})

	first, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)
	second, err := svc.GetCostBreakdown(context.Background(), tk.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, *first.TotalCost, *second.TotalCost)
}

func TestSweepPendingCosts(t *testing.T) {
	fullyPriced := completedTask(t, []recipe.Ingredient{
		{Name: "Boter", Quantity: "20 g"},
		{Name: "wit brood", Quantity: "1 stuks"},
	})
	partial := completedTask(t, []recipe.Ingredient{
		{Name: "Boter", Quantity: "20 g"},
		{Name: "Zout", Quantity: "snufje"},
	})
	tasks := newFakeTaskRepo(fullyPriced, partial)
	tasks.withoutCost = []*task.Task{fullyPriced, partial}

	ai := &fakeAIService{}
	svc := newTestService(tasks, &fakePriceRepo{records: sandwichPrices()}, ai)

	updated, err := svc.SweepPendingCosts(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, updated)
	assert.InDelta(t, 1.40, tasks.savedCosts[fullyPriced.ID], 0.0001)
	_, partialWritten := tasks.savedCosts[partial.ID]
	assert.False(t, partialWritten, "sweep must skip tasks with unpriceable items")
	assert.Zero(t, ai.itemsCalls, "sweep never calls AI")
}

func TestSweepPendingCostsEmptyQueue(t *testing.T) {
	tasks := newFakeTaskRepo()
	svc := newTestService(tasks, &fakePriceRepo{}, &fakeAIService{})

	updated, err := svc.SweepPendingCosts(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
