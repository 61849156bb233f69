// Package sqlite provides SQLite database setup for development and tests.
package sqlite

import (
	"fmt"

	gormModels "github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/persistence/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDatabase creates and configures the SQLite database.
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&gormModels.TaskModel{},
		&gormModels.IngredientModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase populates the price table with a starter set of
// sandwich ingredients. Prices for g and ml entries are per single
// gram or milliliter.
func SeedDatabase(db *gorm.DB) error {
	var count int64
	db.Model(&gormModels.IngredientModel{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	seed := []gormModels.IngredientModel{
		{Name: "wit brood", Unit: "stuks", PricePerUnit: 1.20},
		{Name: "bruin brood", Unit: "stuks", PricePerUnit: 1.40},
		{Name: "pistolet", Unit: "stuks", PricePerUnit: 0.45},
		{Name: "boter", Unit: "g", PricePerUnit: 0.0100},
		{Name: "jonge kaas", Unit: "g", PricePerUnit: 0.0095},
		{Name: "oude kaas", Unit: "g", PricePerUnit: 0.0140},
		{Name: "ham", Unit: "g", PricePerUnit: 0.0120},
		{Name: "kipfilet", Unit: "g", PricePerUnit: 0.0135},
		{Name: "tomaat", Unit: "stuks", PricePerUnit: 0.40},
		{Name: "komkommer", Unit: "stuks", PricePerUnit: 0.90},
		{Name: "sla", Unit: "stuks", PricePerUnit: 1.10},
		{Name: "ei", Unit: "stuks", PricePerUnit: 0.35},
		{Name: "mayonaise", Unit: "g", PricePerUnit: 0.0055},
		{Name: "mosterd", Unit: "g", PricePerUnit: 0.0060},
		{Name: "melk", Unit: "ml", PricePerUnit: 0.0012},
		{Name: "olijfolie", Unit: "ml", PricePerUnit: 0.0080},
	}

	for _, ing := range seed {
		if err := db.Create(&ing).Error; err != nil {
			return fmt.Errorf("failed to seed ingredient %q: %w", ing.Name, err)
		}
	}

	return nil
}
