package db

import (
	"fmt"

	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/logging"
	gormModels "f3-nation/regionsync/internal/models/gorm"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitServingStore opens the serving store handle shared by every pipeline
// stage of every run
func InitServingStore(cfg config.ServingConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported serving store driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to serving store (%s): %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// A single connection keeps :memory: and file databases consistent
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logging.Info("Connected to serving store via GORM", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates the regions, workouts and seed_runs tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&gormModels.Region{}, &gormModels.Workout{}, &gormModels.SeedRun{}); err != nil {
		return fmt.Errorf("failed to migrate serving store: %w", err)
	}
	return nil
}
