// Package ingredient provides the application layer for the priced
// ingredient store.
package ingredient

import (
	"context"
	"errors"
	"strings"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	apperrors "github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/errors"
	"go.uber.org/zap"
)

// Service implements the ingredient use cases.
type Service struct {
	prices outbound.IngredientPriceRepository
	logger *zap.Logger
}

// NewService creates a new ingredient service.
func NewService(prices outbound.IngredientPriceRepository, logger *zap.Logger) inbound.IngredientService {
	return &Service{
		prices: prices,
		logger: logger.Named("ingredient-service"),
	}
}

// ListIngredients returns every price record.
func (s *Service) ListIngredients(ctx context.Context) ([]costing.PriceRecord, error) {
	records, err := s.prices.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list ingredients", err)
	}
	return records, nil
}

// AddIngredient creates a new price record. Names are unique
// case-insensitively; the unit is normalized before storage so lookups
// and recipe quantities compare against the same token.
func (s *Service) AddIngredient(ctx context.Context, rec costing.PriceRecord) error {
	if err := validate(&rec); err != nil {
		return err
	}

	if err := s.prices.Create(ctx, rec); err != nil {
		if errors.Is(err, outbound.ErrIngredientExists) {
			return apperrors.NewIngredientExistsError(rec.Name)
		}
		return apperrors.NewDatabaseError("create ingredient", err)
	}

	s.logger.Info("Ingredient added",
		zap.String("name", rec.Name),
		zap.String("unit", rec.Unit),
		zap.Float64("price_per_unit", rec.PricePerUnit),
	)

	return nil
}

// UpdateIngredient changes the unit and price of an existing record.
func (s *Service) UpdateIngredient(ctx context.Context, rec costing.PriceRecord) error {
	if err := validate(&rec); err != nil {
		return err
	}

	if err := s.prices.Update(ctx, rec); err != nil {
		if errors.Is(err, outbound.ErrIngredientNotFound) {
			return apperrors.NewIngredientNotFoundError(rec.Name)
		}
		return apperrors.NewDatabaseError("update ingredient", err)
	}

	s.logger.Info("Ingredient updated",
		zap.String("name", rec.Name),
		zap.Float64("price_per_unit", rec.PricePerUnit),
	)

	return nil
}

// DeleteIngredient removes a price record by name.
func (s *Service) DeleteIngredient(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("ingredient name is required")
	}

	if err := s.prices.Delete(ctx, name); err != nil {
		if errors.Is(err, outbound.ErrIngredientNotFound) {
			return apperrors.NewIngredientNotFoundError(name)
		}
		return apperrors.NewDatabaseError("delete ingredient", err)
	}

	s.logger.Info("Ingredient deleted", zap.String("name", name))

	return nil
}

func validate(rec *costing.PriceRecord) error {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return apperrors.NewValidationError("ingredient name is required")
	}
	if rec.PricePerUnit < 0 {
		return apperrors.NewValidationError("price_per_unit must not be negative")
	}

	rec.Unit = costing.NormalizeUnit(rec.Unit)
	if rec.Unit == "" {
		return apperrors.NewValidationError("unit is required")
	}

	return nil
}
