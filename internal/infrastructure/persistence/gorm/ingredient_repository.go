package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	"gorm.io/gorm"
)

// IngredientRepository implements the priced ingredient store using GORM.
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient price repository.
func NewIngredientRepository(db *gorm.DB) outbound.IngredientPriceRepository {
	return &IngredientRepository{db: db}
}

// FindAll returns every price record, ordered by name.
func (r *IngredientRepository) FindAll(ctx context.Context) ([]costing.PriceRecord, error) {
	var models []IngredientModel

	result := r.db.WithContext(ctx).Order("name ASC").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	records := make([]costing.PriceRecord, len(models))
	for i := range models {
		records[i] = ModelToPrice(&models[i])
	}

	return records, nil
}

// FindByName looks up a price record case-insensitively.
func (r *IngredientRepository) FindByName(ctx context.Context, name string) (costing.PriceRecord, error) {
	var model IngredientModel

	result := r.db.WithContext(ctx).First(&model, "LOWER(name) = ?", strings.ToLower(name))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return costing.PriceRecord{}, outbound.ErrIngredientNotFound
		}
		return costing.PriceRecord{}, result.Error
	}

	return ModelToPrice(&model), nil
}

// Create inserts a new price record. Duplicate names are rejected.
func (r *IngredientRepository) Create(ctx context.Context, rec costing.PriceRecord) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&IngredientModel{}).
		Where("LOWER(name) = ?", strings.ToLower(rec.Name)).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return outbound.ErrIngredientExists
	}

	result := r.db.WithContext(ctx).Create(PriceToModel(rec))
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// Update changes the unit and price of an existing record.
func (r *IngredientRepository) Update(ctx context.Context, rec costing.PriceRecord) error {
	result := r.db.WithContext(ctx).
		Model(&IngredientModel{}).
		Where("LOWER(name) = ?", strings.ToLower(rec.Name)).
		Updates(map[string]interface{}{
			"unit":           rec.Unit,
			"price_per_unit": rec.PricePerUnit,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return outbound.ErrIngredientNotFound
	}

	return nil
}

// Delete removes a price record by name.
func (r *IngredientRepository) Delete(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Delete(&IngredientModel{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return outbound.ErrIngredientNotFound
	}

	return nil
}
