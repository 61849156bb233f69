package sqlite_test

import (
	"testing"

	gormRepo "github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/gorm"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormLogger "gorm.io/gorm/logger"
)

func TestSeedDatabase(t *testing.T) {
	db, err := sqlite.SetupDatabase(":memory:", gormLogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, sqlite.SeedDatabase(db))

	var count int64
	require.NoError(t, db.Model(&gormRepo.IngredientModel{}).Count(&count).Error)
	assert.Greater(t, count, int64(0))

	var boter gormRepo.IngredientModel
	require.NoError(t, db.Where("name = ?", "boter").First(&boter).Error)
	assert.Equal(t, "g", boter.Unit)
	assert.Equal(t, 0.01, boter.PricePerUnit)

	// Seeding an already populated database is a no-op.
	require.NoError(t, sqlite.SeedDatabase(db))
	var after int64
	require.NoError(t, db.Model(&gormRepo.IngredientModel{}).Count(&after).Error)
	assert.Equal(t, count, after)
}
