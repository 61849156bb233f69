package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	apperrors "github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskHandlers handles recipe-generation task requests.
type TaskHandlers struct {
	recipeService inbound.RecipeService
	logger        *zap.Logger
}

// NewTaskHandlers creates a new task handlers instance.
func NewTaskHandlers(recipeService inbound.RecipeService, logger *zap.Logger) *TaskHandlers {
	return &TaskHandlers{
		recipeService: recipeService,
		logger:        logger,
	}
}

type generateRequest struct {
	Idea  string `json:"idea"`
	Model string `json:"model"`
}

func (req *generateRequest) validate() error {
	req.Idea = strings.TrimSpace(req.Idea)
	if req.Idea == "" {
		return apperrors.NewValidationError("idea is required")
	}
	if len(req.Idea) > 500 {
		return apperrors.NewValidationError("idea must be at most 500 characters")
	}
	return nil
}

// Generate handles POST /api/v1/recipes: synchronous generation.
func (h *TaskHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipeService.GenerateRecipe(r.Context(), req.Idea, req.Model)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto)
}

// GenerateStart handles POST /api/v1/recipes/generate-start: enqueue a
// task for the background worker and return its id immediately.
func (h *TaskHandlers) GenerateStart(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, err := h.recipeService.StartGeneration(r.Context(), req.Idea, req.Model)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": id.String(),
		"status":  "pending",
	})
}

// GetTask handles GET /api/v1/tasks/{id}: task status plus the recipe
// once generation completed.
func (h *TaskHandlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	dto, err := h.recipeService.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

// ListTasks handles GET /api/v1/tasks with offset/limit pagination.
func (h *TaskHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tasks, total, err := h.recipeService.ListTasks(r.Context(), offset, limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": total,
	})
}

type refineRequest struct {
	Request string `json:"request"`
}

// Refine handles POST /api/v1/tasks/{id}/refine.
func (h *TaskHandlers) Refine(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperrors.NewBadRequestError("invalid JSON body"))
		return
	}
	req.Request = strings.TrimSpace(req.Request)
	if req.Request == "" {
		writeError(w, r, h.logger, apperrors.NewValidationError("request is required"))
		return
	}

	dto, err := h.recipeService.RefineRecipe(r.Context(), id, req.Request)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto)
}

func parseTaskID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequestError("invalid task id")
	}
	return id, nil
}
