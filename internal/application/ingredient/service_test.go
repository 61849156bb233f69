package ingredient

import (
	"context"
	"strings"
	"testing"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/domain/costing"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/outbound"
	apperrors "github.com/Rul1an/broodjes-ai-mvp-sub000/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePriceRepo struct {
	records map[string]costing.PriceRecord
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{records: make(map[string]costing.PriceRecord)}
}

func (r *fakePriceRepo) FindAll(ctx context.Context) ([]costing.PriceRecord, error) {
	all := make([]costing.PriceRecord, 0, len(r.records))
	for _, rec := range r.records {
		all = append(all, rec)
	}
	return all, nil
}

func (r *fakePriceRepo) FindByName(ctx context.Context, name string) (costing.PriceRecord, error) {
	rec, ok := r.records[strings.ToLower(name)]
	if !ok {
		return costing.PriceRecord{}, outbound.ErrIngredientNotFound
	}
	return rec, nil
}

func (r *fakePriceRepo) Create(ctx context.Context, rec costing.PriceRecord) error {
	key := strings.ToLower(rec.Name)
	if _, ok := r.records[key]; ok {
		return outbound.ErrIngredientExists
	}
	r.records[key] = rec
	return nil
}

func (r *fakePriceRepo) Update(ctx context.Context, rec costing.PriceRecord) error {
	key := strings.ToLower(rec.Name)
	if _, ok := r.records[key]; !ok {
		return outbound.ErrIngredientNotFound
	}
	r.records[key] = rec
	return nil
}

func (r *fakePriceRepo) Delete(ctx context.Context, name string) error {
	key := strings.ToLower(name)
	if _, ok := r.records[key]; !ok {
		return outbound.ErrIngredientNotFound
	}
	delete(r.records, key)
	return nil
}

func TestAddIngredientNormalizesUnit(t *testing.T) {
	repo := newFakePriceRepo()
	svc := NewService(repo, zap.NewNop())

	err := svc.AddIngredient(context.Background(), costing.PriceRecord{
		Name:         "  Boter  ",
		Unit:         "gram",
		PricePerUnit: 0.01,
	})
	require.NoError(t, err)

	rec, ok := repo.records["boter"]
	require.True(t, ok)
	assert.Equal(t, "Boter", rec.Name)
	assert.Equal(t, "g", rec.Unit, "unit synonyms collapse to the canonical token")
}

func TestAddIngredientDuplicate(t *testing.T) {
	repo := newFakePriceRepo()
	svc := NewService(repo, zap.NewNop())

	rec := costing.PriceRecord{Name: "Boter", Unit: "g", PricePerUnit: 0.01}
	require.NoError(t, svc.AddIngredient(context.Background(), rec))

	err := svc.AddIngredient(context.Background(), costing.PriceRecord{
		Name: "boter", Unit: "g", PricePerUnit: 0.02,
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeIngredientExists, appErr.Code)
}

func TestAddIngredientValidation(t *testing.T) {
	svc := NewService(newFakePriceRepo(), zap.NewNop())

	tests := []struct {
		name string
		rec  costing.PriceRecord
	}{
		{"empty name", costing.PriceRecord{Name: "   ", Unit: "g", PricePerUnit: 0.01}},
		{"negative price", costing.PriceRecord{Name: "boter", Unit: "g", PricePerUnit: -1}},
		{"empty unit", costing.PriceRecord{Name: "boter", Unit: "", PricePerUnit: 0.01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AddIngredient(context.Background(), tt.rec)
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
		})
	}
}

func TestAddIngredientZeroPriceAllowed(t *testing.T) {
	svc := NewService(newFakePriceRepo(), zap.NewNop())

	err := svc.AddIngredient(context.Background(), costing.PriceRecord{
		Name: "kraanwater", Unit: "ml", PricePerUnit: 0,
	})
	assert.NoError(t, err)
}

func TestUpdateIngredientNotFound(t *testing.T) {
	svc := NewService(newFakePriceRepo(), zap.NewNop())

	err := svc.UpdateIngredient(context.Background(), costing.PriceRecord{
		Name: "boter", Unit: "g", PricePerUnit: 0.02,
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeIngredientNotFound, appErr.Code)
}

func TestUpdateIngredient(t *testing.T) {
	repo := newFakePriceRepo()
	svc := NewService(repo, zap.NewNop())

	require.NoError(t, svc.AddIngredient(context.Background(), costing.PriceRecord{
		Name: "boter", Unit: "g", PricePerUnit: 0.01,
	}))
	require.NoError(t, svc.UpdateIngredient(context.Background(), costing.PriceRecord{
		Name: "boter", Unit: "kg", PricePerUnit: 9.50,
	}))

	rec := repo.records["boter"]
	assert.Equal(t, "kg", rec.Unit)
	assert.Equal(t, 9.50, rec.PricePerUnit)
}

func TestDeleteIngredient(t *testing.T) {
	repo := newFakePriceRepo()
	svc := NewService(repo, zap.NewNop())

	require.NoError(t, svc.AddIngredient(context.Background(), costing.PriceRecord{
		Name: "boter", Unit: "g", PricePerUnit: 0.01,
	}))
	require.NoError(t, svc.DeleteIngredient(context.Background(), "Boter"))
	assert.Empty(t, repo.records)

	err := svc.DeleteIngredient(context.Background(), "boter")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeIngredientNotFound, appErr.Code)
}

func TestDeleteIngredientEmptyName(t *testing.T) {
	svc := NewService(newFakePriceRepo(), zap.NewNop())

	err := svc.DeleteIngredient(context.Background(), "  ")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
}
