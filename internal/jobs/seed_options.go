package jobs

import (
	"time"

	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/logging"
	"f3-nation/regionsync/internal/providers"
	"f3-nation/regionsync/internal/services"
)

// SeedOptions tunes one seed pass
type SeedOptions struct {
	Force        bool
	BatchSize    int
	MaxBatches   int // 0 = until the warehouse is exhausted
	UpdatedAfter *time.Time
	After        *providers.Cursor
	Concurrency  int
	FreshWindow  time.Duration
}

// RegionSeedOptions reads the region pass settings from cfg. Regions are
// always scanned in full.
func RegionSeedOptions(cfg config.SeedConfig) SeedOptions {
	return SeedOptions{
		Force:       cfg.Force,
		BatchSize:   cfg.RegionBatchSize,
		Concurrency: cfg.WorkoutUpsertConcurrency,
		FreshWindow: cfg.EntityFreshWindow,
	}
}

// WorkoutSeedOptions reads the workout pass settings from cfg. An
// unparseable updated-after floor or resume cursor is dropped with a warning.
func WorkoutSeedOptions(cfg config.SeedConfig) SeedOptions {
	opts := SeedOptions{
		Force:       cfg.Force,
		BatchSize:   cfg.WorkoutBatchSize,
		MaxBatches:  cfg.WorkoutMaxBatches,
		Concurrency: cfg.WorkoutUpsertConcurrency,
		FreshWindow: cfg.EntityFreshWindow,
	}

	if cfg.WorkoutUpdatedAfter != "" {
		floor, err := services.ParseInstant(cfg.WorkoutUpdatedAfter)
		if err != nil {
			logging.Warn("Ignoring invalid WORKOUT_SEED_UPDATED_AFTER",
				"value", cfg.WorkoutUpdatedAfter,
				"error", err,
			)
		} else {
			opts.UpdatedAfter = &floor
		}
	}

	if cfg.WorkoutAfterCursor != "" {
		after, err := providers.DecodeCursor(cfg.WorkoutAfterCursor)
		if err != nil {
			logging.Warn("Ignoring invalid WORKOUT_SEED_AFTER_CURSOR",
				"value", cfg.WorkoutAfterCursor,
				"error", err,
			)
		} else {
			opts.After = after
		}
	}
	return opts
}

func (o SeedOptions) withDefaults(batchSize int) SeedOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = batchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = constants.DefaultUpsertConcurrency
	}
	if o.FreshWindow <= 0 {
		o.FreshWindow = constants.DefaultEntityFreshWindow
	}
	return o
}
