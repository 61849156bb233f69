package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskRepository implements the task repository interface using GORM.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) outbound.TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	model := TaskToModel(t)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// Update saves the full task record.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	model := TaskToModel(t)

	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return task.ErrNotFound
	}

	return nil
}

// FindByID finds a task by ID.
func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	var model TaskModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, result.Error
	}

	return ModelToTask(&model), nil
}

// List returns tasks ordered newest first, with the total count.
func (r *TaskRepository) List(ctx context.Context, offset, limit int) ([]*task.Task, int, error) {
	var models []TaskModel
	var total int64

	countResult := r.db.WithContext(ctx).Model(&TaskModel{}).Count(&total)
	if countResult.Error != nil {
		return nil, 0, countResult.Error
	}

	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	tasks := make([]*task.Task, len(models))
	for i := range models {
		tasks[i] = ModelToTask(&models[i])
	}

	return tasks, int(total), nil
}

// ClaimPending claims the oldest pending task with a conditional
// pending→processing update. The status check in the WHERE clause makes
// the claim atomic: of two racing workers only one sees RowsAffected=1.
func (r *TaskRepository) ClaimPending(ctx context.Context) (*task.Task, error) {
	var model TaskModel

	result := r.db.WithContext(ctx).
		Where("status = ?", string(task.StatusPending)).
		Order("created_at ASC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNoPendingTasks
		}
		return nil, result.Error
	}

	now := time.Now().UTC()
	claim := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ? AND status = ?", model.ID, string(task.StatusPending)).
		Updates(map[string]interface{}{
			"status":     string(task.StatusProcessing),
			"started_at": now,
		})
	if claim.Error != nil {
		return nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		return nil, outbound.ErrTaskClaimed
	}

	model.Status = string(task.StatusProcessing)
	model.StartedAt = &now

	return ModelToTask(&model), nil
}

// FindCompletedWithoutCost lists completed tasks that have no estimated
// cost yet, oldest first.
func (r *TaskRepository) FindCompletedWithoutCost(ctx context.Context, limit int) ([]*task.Task, error) {
	var models []TaskModel

	result := r.db.WithContext(ctx).
		Where("status = ? AND estimated_cost IS NULL", string(task.StatusCompleted)).
		Order("created_at ASC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	tasks := make([]*task.Task, len(models))
	for i := range models {
		tasks[i] = ModelToTask(&models[i])
	}

	return tasks, nil
}

// SaveBreakdown overwrites the task's cost report. Last write wins.
func (r *TaskRepository) SaveBreakdown(ctx context.Context, id uuid.UUID, text string, calcType task.CalculationType, total *float64) error {
	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"cost_breakdown":   text,
			"calculation_type": string(calcType),
			"estimated_cost":   total,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return task.ErrNotFound
	}

	return nil
}

// SaveEstimatedCost writes the deterministic total from the batch sweep.
func (r *TaskRepository) SaveEstimatedCost(ctx context.Context, id uuid.UUID, total float64) error {
	result := r.db.WithContext(ctx).
		Model(&TaskModel{}).
		Where("id = ?", id).
		Update("estimated_cost", total)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return task.ErrNotFound
	}

	return nil
}
