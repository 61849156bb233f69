package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	apperrors "github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IngredientHandlers handles the priced ingredient store endpoints.
type IngredientHandlers struct {
	ingredientService inbound.IngredientService
	logger            *zap.Logger
}

// NewIngredientHandlers creates a new ingredient handlers instance.
func NewIngredientHandlers(ingredientService inbound.IngredientService, logger *zap.Logger) *IngredientHandlers {
	return &IngredientHandlers{
		ingredientService: ingredientService,
		logger:            logger,
	}
}

type ingredientRequest struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// List handles GET /api/v1/ingredients.
func (h *IngredientHandlers) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.ingredientService.ListIngredients(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ingredients": records,
		"total":       len(records),
	})
}

// Create handles POST /api/v1/ingredients.
func (h *IngredientHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}

	rec := costing.PriceRecord{Name: req.Name, Unit: req.Unit, PricePerUnit: req.PricePerUnit}
	if err := h.ingredientService.AddIngredient(r.Context(), rec); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// Update handles PUT /api/v1/ingredients/{name}.
func (h *IngredientHandlers) Update(w http.ResponseWriter, r *http.Request) {
	name, err := parseIngredientName(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}

	rec := costing.PriceRecord{Name: name, Unit: req.Unit, PricePerUnit: req.PricePerUnit}
	if err := h.ingredientService.UpdateIngredient(r.Context(), rec); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/v1/ingredients/{name}.
func (h *IngredientHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	name, err := parseIngredientName(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.ingredientService.DeleteIngredient(r.Context(), name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func parseIngredientName(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" {
		return "", apperrors.NewBadRequestError("invalid ingredient name")
	}
	return name, nil
}
