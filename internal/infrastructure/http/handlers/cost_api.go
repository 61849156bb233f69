package handlers

import (
	"net/http"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	"go.uber.org/zap"
)

// CostHandlers handles cost breakdown requests.
type CostHandlers struct {
	costService inbound.CostService
	logger      *zap.Logger
}

// NewCostHandlers creates a new cost handlers instance.
func NewCostHandlers(costService inbound.CostService, logger *zap.Logger) *CostHandlers {
	return &CostHandlers{
		costService: costService,
		logger:      logger,
	}
}

// GetBreakdown handles GET /api/v1/tasks/{id}/cost-breakdown. Each call
// computes a fresh report against the current price table.
func (h *CostHandlers) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.costService.GetCostBreakdown(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto)
}
