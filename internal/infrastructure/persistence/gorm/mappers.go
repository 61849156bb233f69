package gorm

import (
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/task"
)

// TaskToModel converts a domain task to its GORM model.
func TaskToModel(t *task.Task) *TaskModel {
	return &TaskModel{
		ID:              t.ID,
		Idea:            t.Idea,
		Model:           t.Model,
		Status:          string(t.Status),
		RecipeJSON:      t.RecipeJSON,
		CostBreakdown:   t.CostBreakdown,
		CalculationType: string(t.CalculationType),
		EstimatedCost:   t.EstimatedCost,
		RefinedText:     t.RefinedText,
		ErrorMessage:    t.ErrorMessage,
		CreatedAt:       t.CreatedAt,
		StartedAt:       t.StartedAt,
		FinishedAt:      t.FinishedAt,
	}
}

// ModelToTask converts a GORM model to a domain task.
func ModelToTask(m *TaskModel) *task.Task {
	return &task.Task{
		ID:              m.ID,
		Idea:            m.Idea,
		Model:           m.Model,
		Status:          task.Status(m.Status),
		RecipeJSON:      m.RecipeJSON,
		CostBreakdown:   m.CostBreakdown,
		CalculationType: task.CalculationType(m.CalculationType),
		EstimatedCost:   m.EstimatedCost,
		RefinedText:     m.RefinedText,
		ErrorMessage:    m.ErrorMessage,
		CreatedAt:       m.CreatedAt,
		StartedAt:       m.StartedAt,
		FinishedAt:      m.FinishedAt,
	}
}

// PriceToModel converts a price record to its GORM model. Casing is
// preserved; uniqueness and lookups are case-insensitive at the query.
func PriceToModel(rec costing.PriceRecord) *IngredientModel {
	return &IngredientModel{
		Name:         rec.Name,
		Unit:         rec.Unit,
		PricePerUnit: rec.PricePerUnit,
	}
}

// ModelToPrice converts a GORM model to a price record.
func ModelToPrice(m *IngredientModel) costing.PriceRecord {
	return costing.PriceRecord{
		Name:         m.Name,
		Unit:         m.Unit,
		PricePerUnit: m.PricePerUnit,
	}
}
