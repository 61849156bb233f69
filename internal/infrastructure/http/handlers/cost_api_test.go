package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	apperrors "github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCostService struct {
	dto *inbound.CostBreakdownDTO
	err error
}

func (s *stubCostService) GetCostBreakdown(ctx context.Context, taskID uuid.UUID) (*inbound.CostBreakdownDTO, error) {
	return s.dto, s.err
}

func newCostRouter(svc inbound.CostService) http.Handler {
	h := NewCostHandlers(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/v1/tasks/{id}/cost-breakdown", h.GetBreakdown)
	return r
}

func TestGetBreakdownHandler(t *testing.T) {
	id := uuid.New()
	total := 2.60
	svc := &stubCostService{
		dto: &inbound.CostBreakdownDTO{
			TaskID:          id,
			CalculationType: task.CalculationDB,
			Text:            "## Geschatte Kosten Opbouw:\n- **Totaal Geschat:** €2.60",
			TotalCost:       &total,
			Items: []inbound.LineItemDTO{
				{Name: "boter", QuantityString: "20 g", Status: "ok"},
			},
		},
	}
	router := newCostRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id.String()+"/cost-breakdown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp inbound.CostBreakdownDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, task.CalculationDB, resp.CalculationType)
	require.NotNil(t, resp.TotalCost)
	assert.Equal(t, 2.60, *resp.TotalCost)
	require.Len(t, resp.Items, 1)
}

func TestGetBreakdownHandlerUnknownTotal(t *testing.T) {
	id := uuid.New()
	svc := &stubCostService{
		dto: &inbound.CostBreakdownDTO{
			TaskID:          id,
			CalculationType: task.CalculationAI,
			Text:            "Kostenopbouw kon niet worden berekend.",
			TotalCost:       nil,
		},
	}
	router := newCostRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id.String()+"/cost-breakdown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "null", string(resp["total_cost"]), "an unknown total serializes as null, not 0")
}

func TestGetBreakdownHandlerInvalidID(t *testing.T) {
	router := newCostRouter(&stubCostService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/nope/cost-breakdown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBreakdownHandlerTaskNotCompleted(t *testing.T) {
	id := uuid.New()
	router := newCostRouter(&stubCostService{err: apperrors.NewTaskNotCompletedError(id.String())})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+id.String()+"/cost-breakdown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
