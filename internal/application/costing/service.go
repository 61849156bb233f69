// Package costing provides the application layer for cost breakdown
// reports: deterministic pricing against the ingredient store, AI
// estimation for the remainder, and composition into one report.
package costing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/cache"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	apperrors "github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var breakdownsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "broodjes_cost_breakdowns_total",
	Help: "Number of cost breakdown reports by calculation type.",
}, []string{"calculation_type"})

// Service implements the cost breakdown use cases.
type Service struct {
	tasks     outbound.TaskRepository
	prices    outbound.IngredientPriceRepository
	aiService outbound.AIService
	aiCache   *cache.PromptCache
	logger    *zap.Logger
}

// NewService creates a new costing service.
func NewService(
	tasks outbound.TaskRepository,
	prices outbound.IngredientPriceRepository,
	aiService outbound.AIService,
	aiCache *cache.PromptCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		tasks:     tasks,
		prices:    prices,
		aiService: aiService,
		aiCache:   aiCache,
		logger:    logger.Named("costing-service"),
	}
}

var _ inbound.CostService = (*Service)(nil)

// GetCostBreakdown computes a fresh cost report for a completed task.
// The report is persisted onto the task best-effort; a persistence
// failure is logged and the computed report is returned anyway.
func (s *Service) GetCostBreakdown(ctx context.Context, taskID uuid.UUID) (*inbound.CostBreakdownDTO, error) {
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return nil, apperrors.NewTaskNotFoundError(taskID.String())
		}
		return nil, apperrors.NewDatabaseError("find task", err)
	}

	if t.Status != task.StatusCompleted {
		return nil, apperrors.NewTaskNotCompletedError(taskID.String())
	}

	r, err := t.Recipe()
	if err != nil {
		return nil, apperrors.NewInternalError("task recipe payload is unreadable")
	}

	records, err := s.prices.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("load price table", err)
	}
	table := costing.NewPriceTable(records)

	items := make([]costing.Item, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		items[i] = costing.Item{Name: ing.Name, Quantity: ing.Quantity}
	}

	result := costing.PriceAll(items, table)

	report := s.compose(ctx, t, result)
	breakdownsTotal.WithLabelValues(string(report.CalculationType)).Inc()

	// Persist best-effort. Last write wins; no history is kept.
	if err := s.tasks.SaveBreakdown(ctx, t.ID, report.Text, report.CalculationType, report.TotalCost); err != nil {
		s.logger.Warn("Failed to persist cost breakdown",
			zap.String("task_id", t.ID.String()),
			zap.Error(err),
		)
	}

	report.TaskID = t.ID
	report.Items = itemsToDTO(result.Items)

	return report, nil
}

// compose merges deterministic and AI results into one report. The
// outcome shape depends only on the counts of priced and failed items.
func (s *Service) compose(ctx context.Context, t *task.Task, result costing.Result) *inbound.CostBreakdownDTO {
	priced := result.PricedItems()
	failed := result.FailedItems()

	switch {
	case len(priced) > 0 && len(failed) == 0:
		total := costing.Round2(result.Subtotal)
		return &inbound.CostBreakdownDTO{
			CalculationType: task.CalculationDB,
			Text:            renderDBReport(priced, total),
			TotalCost:       &total,
		}

	case len(priced) == 0 && len(failed) > 0:
		return s.composeAIOnly(ctx, t)

	case len(priced) > 0 && len(failed) > 0:
		return s.composeHybrid(ctx, result, priced, failed)

	default:
		// Empty ingredient list: a db report with a zero total.
		total := 0.0
		return &inbound.CostBreakdownDTO{
			CalculationType: task.CalculationDB,
			Text:            "## Geschatte Kosten Opbouw:\n- Geen ingrediënten om te berekenen.\n- **Totaal Geschat:** €0.00",
			TotalCost:       &total,
		}
	}
}

// composeAIOnly asks the model for a full-recipe estimate. The total is
// extracted from the reply text; a failed call degrades to a
// placeholder report with an unknown total.
func (s *Service) composeAIOnly(ctx context.Context, t *task.Task) *inbound.CostBreakdownDTO {
	text, err := s.fullEstimate(ctx, t)
	if err != nil {
		s.logger.Warn("Full-recipe AI estimate failed",
			zap.String("task_id", t.ID.String()),
			zap.Error(err),
		)
		return &inbound.CostBreakdownDTO{
			CalculationType: task.CalculationAI,
			Text:            "Kostenopbouw kon niet worden berekend: geen enkel ingrediënt staat in de prijslijst en de AI-schatting is niet beschikbaar.",
			TotalCost:       nil,
		}
	}

	dto := &inbound.CostBreakdownDTO{
		CalculationType: task.CalculationAI,
		Text:            text,
	}
	if total, ok := costing.ExtractEstimatedTotal(text); ok {
		dto.TotalCost = &total
	}

	return dto
}

// composeHybrid prices what it can and asks the model for one aggregate
// estimate over the rest. An AI failure yields the distinct
// hybrid_ai_failed type with the deterministic subtotal only.
func (s *Service) composeHybrid(ctx context.Context, result costing.Result, priced, failed []costing.LineItem) *inbound.CostBreakdownDTO {
	dbSubtotal := result.Subtotal

	estimate, err := s.partialEstimate(ctx, failed)
	if err != nil {
		s.logger.Warn("Partial AI estimate failed", zap.Error(err))
		total := costing.Round2(dbSubtotal)
		return &inbound.CostBreakdownDTO{
			CalculationType: task.CalculationHybridAIFailed,
			Text:            renderHybridFailedReport(priced, failed, total),
			TotalCost:       &total,
		}
	}

	total := costing.Round2(dbSubtotal + estimate)
	return &inbound.CostBreakdownDTO{
		CalculationType: task.CalculationHybrid,
		Text:            renderHybridReport(priced, failed, estimate, total),
		TotalCost:       &total,
	}
}

// fullEstimate returns the model's full-recipe breakdown text,
// consulting the prompt cache first.
func (s *Service) fullEstimate(ctx context.Context, t *task.Task) (string, error) {
	r, err := t.Recipe()
	if err != nil {
		return "", err
	}

	key, keyErr := s.aiCache.Key("estimate", t.RecipeJSON)
	if keyErr == nil {
		if cached, err := s.aiCache.Get(ctx, "estimate", key); err == nil {
			return cached, nil
		}
	}

	text, err := s.aiService.EstimateCostBreakdown(ctx, r)
	if err != nil {
		return "", err
	}

	if keyErr == nil {
		s.aiCache.Set(ctx, "estimate", key, text)
	}

	return text, nil
}

// partialEstimate returns the model's aggregate estimate for the items
// that missed deterministic pricing, consulting the prompt cache first.
// The cached value is the numeric reply.
func (s *Service) partialEstimate(ctx context.Context, failed []costing.LineItem) (float64, error) {
	type failedItem struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
		Reason   string `json:"reason"`
	}

	payload := make([]failedItem, len(failed))
	for i, item := range failed {
		payload[i] = failedItem{
			Name:     item.Name,
			Quantity: item.QuantityString,
			Reason:   string(item.Reason),
		}
	}

	key, keyErr := s.aiCache.Key("estimate-items", payload)
	if keyErr == nil {
		if cached, err := s.aiCache.Get(ctx, "estimate-items", key); err == nil {
			if estimate, err := strconv.ParseFloat(cached, 64); err == nil {
				return estimate, nil
			}
		}
	}

	estimate, err := s.aiService.EstimateItemsCost(ctx, failed)
	if err != nil {
		return 0, err
	}

	if keyErr == nil {
		s.aiCache.Set(ctx, "estimate-items", key, strconv.FormatFloat(estimate, 'f', -1, 64))
	}

	return estimate, nil
}

// SweepPendingCosts backfills the estimated cost of completed tasks
// that have none yet. Only fully deterministic results are written:
// when any item fails to price, the task is left for a later breakdown
// request to resolve with AI help.
func (s *Service) SweepPendingCosts(ctx context.Context, batch int) (int, error) {
	tasks, err := s.tasks.FindCompletedWithoutCost(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("fetch tasks without cost: %w", err)
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	records, err := s.prices.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load price table: %w", err)
	}
	table := costing.NewPriceTable(records)

	updated := 0
	for _, t := range tasks {
		r, err := t.Recipe()
		if err != nil {
			s.logger.Warn("Skipping task with unreadable recipe",
				zap.String("task_id", t.ID.String()),
				zap.Error(err),
			)
			continue
		}

		items := make([]costing.Item, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			items[i] = costing.Item{Name: ing.Name, Quantity: ing.Quantity}
		}

		result := costing.PriceAll(items, table)
		if len(result.FailedItems()) > 0 || len(result.PricedItems()) == 0 {
			continue
		}

		total := costing.Round2(result.Subtotal)
		if err := s.tasks.SaveEstimatedCost(ctx, t.ID, total); err != nil {
			s.logger.Error("Failed to save estimated cost",
				zap.String("task_id", t.ID.String()),
				zap.Error(err),
			)
			continue
		}
		updated++
	}

	s.logger.Info("Cost sweep finished",
		zap.Int("candidates", len(tasks)),
		zap.Int("updated", updated),
	)

	return updated, nil
}

func renderDBReport(priced []costing.LineItem, total float64) string {
	var b strings.Builder
	b.WriteString("## Geschatte Kosten Opbouw:\n")
	for _, item := range priced {
		fmt.Fprintf(&b, "- %s (%s): €%.2f\n", item.Name, item.QuantityString, item.Cost)
	}
	fmt.Fprintf(&b, "- **Totaal Geschat:** €%.2f", total)
	return b.String()
}

func renderHybridReport(priced, failed []costing.LineItem, estimate, total float64) string {
	var b strings.Builder
	b.WriteString("## Geschatte Kosten Opbouw:\n")
	for _, item := range priced {
		fmt.Fprintf(&b, "- %s (%s): €%.2f\n", item.Name, item.QuantityString, item.Cost)
	}
	b.WriteString("\nGeschat door AI (niet in prijslijst):\n")
	for _, item := range failed {
		fmt.Fprintf(&b, "- %s (%s): %s\n", displayName(item), item.QuantityString, item.Reason)
	}
	fmt.Fprintf(&b, "- AI-schatting voor bovenstaande items: €%.2f\n", estimate)
	fmt.Fprintf(&b, "\n- **Totaal Geschat:** €%.2f (berekend + AI-schatting)", total)
	return b.String()
}

func renderHybridFailedReport(priced, failed []costing.LineItem, total float64) string {
	var b strings.Builder
	b.WriteString("## Geschatte Kosten Opbouw:\n")
	for _, item := range priced {
		fmt.Fprintf(&b, "- %s (%s): €%.2f\n", item.Name, item.QuantityString, item.Cost)
	}
	b.WriteString("\nNiet te berekenen:\n")
	for _, item := range failed {
		fmt.Fprintf(&b, "- %s (%s): %s\n", displayName(item), item.QuantityString, item.Reason)
	}
	b.WriteString("\nLet op: AI-schatting is mislukt; het totaal bevat alleen de berekende items.\n")
	fmt.Fprintf(&b, "- **Totaal Geschat:** €%.2f", total)
	return b.String()
}

func displayName(item costing.LineItem) string {
	if item.Name == "" {
		return "Onbekend"
	}
	return item.Name
}

func itemsToDTO(items []costing.LineItem) []inbound.LineItemDTO {
	dtos := make([]inbound.LineItemDTO, len(items))
	for i, item := range items {
		dto := inbound.LineItemDTO{
			Name:           item.Name,
			QuantityString: item.QuantityString,
			Message:        item.Message,
		}
		if item.Priced {
			cost := item.Cost
			dto.Status = "ok"
			dto.Cost = &cost
			dto.ResolvedUnit = item.ResolvedUnit
		} else {
			dto.Status = string(item.Reason)
		}
		dtos[i] = dto
	}
	return dtos
}
