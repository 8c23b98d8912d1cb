package jobs

import (
	"context"
	"fmt"
	"time"

	"f3-nation/regionsync/internal/constants"
	runctx "f3-nation/regionsync/internal/context"
	"f3-nation/regionsync/internal/db/repositories"
	"f3-nation/regionsync/internal/metrics"
	"f3-nation/regionsync/internal/models/entities"
	"f3-nation/regionsync/internal/models/gorm"
	"f3-nation/regionsync/internal/providers"
	"f3-nation/regionsync/internal/services"
)

// SkipCounts tallies rejected rows by reason
type SkipCounts map[constants.SkipReason]int

func (s SkipCounts) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Strings keys the counts by reason name for JSON output
func (s SkipCounts) Strings() map[string]int {
	if len(s) == 0 {
		return nil
	}
	out := make(map[string]int, len(s))
	for reason, n := range s {
		out[string(reason)] = n
	}
	return out
}

// WorkoutSeedResult counts one workout pass
type WorkoutSeedResult struct {
	Seeded  int
	Skipped SkipCounts
	Batches int
	Capped  bool
}

// WorkoutSeedJob copies active warehouse events whose AO and region are
// active into the serving store. Regions must be seeded first.
type WorkoutSeedJob struct {
	warehouse   providers.WarehouseProvider
	regionRepo  *repositories.RegionRepo
	workoutRepo *repositories.WorkoutRepo
	metrics     *metrics.MetricsRegistry
	now         func() time.Time
}

// NewWorkoutSeedJob creates a new workout seed job instance
func NewWorkoutSeedJob(
	warehouse providers.WarehouseProvider,
	regionRepo *repositories.RegionRepo,
	workoutRepo *repositories.WorkoutRepo,
	metricsReg *metrics.MetricsRegistry,
) *WorkoutSeedJob {
	return &WorkoutSeedJob{
		warehouse:   warehouse,
		regionRepo:  regionRepo,
		workoutRepo: workoutRepo,
		metrics:     metricsReg,
		now:         time.Now,
	}
}

// Run scans events after an optional updated-after floor, validates each
// row and upserts the accepted ones batch by batch.
func (j *WorkoutSeedJob) Run(ctx context.Context, opts SeedOptions) (WorkoutSeedResult, error) {
	log := runctx.Logger(ctx)
	opts = opts.withDefaults(constants.DefaultWorkoutBatchSize)

	result := WorkoutSeedResult{Skipped: SkipCounts{}}
	now := j.now()

	lastIngested, err := j.workoutRepo.LoadIngestionMap(ctx)
	if err != nil {
		return result, err
	}
	regionIDs, err := j.regionRepo.ListIDs(ctx)
	if err != nil {
		return result, err
	}

	transformer := &services.WorkoutTransformer{
		KnownRegionIDs: regionIDs,
		LastIngested:   lastIngested,
		Force:          opts.Force,
		Window:         opts.FreshWindow,
		Now:            now,
		IngestedAt:     services.CurrentIngestedAt(now),
	}

	floor := "none"
	if opts.UpdatedAfter != nil {
		floor = services.FormatInstant(*opts.UpdatedAfter)
	}
	log.Infow("Seeding workouts",
		"batch_size", opts.BatchSize,
		"updated_after", floor,
		"after_cursor", opts.After.Encode(),
		"max_batches", opts.MaxBatches,
		"concurrency", opts.Concurrency,
		"regions", len(regionIDs),
	)

	stats, err := providers.ScanBatches(ctx,
		providers.ScanOptions{
			BatchSize:    opts.BatchSize,
			MaxBatches:   opts.MaxBatches,
			UpdatedAfter: opts.UpdatedAfter,
			After:        opts.After,
		},
		j.warehouse.FetchWorkoutBatch,
		providers.WorkoutCursor,
		func(ctx context.Context, batch int, rows []entities.WorkoutRow) error {
			workouts := make([]gorm.Workout, 0, len(rows))
			skipped := SkipCounts{}
			for _, row := range rows {
				w, reason := transformer.Transform(row)
				if reason != constants.SkipNone {
					skipped[reason]++
					continue
				}
				workouts = append(workouts, *w)
			}

			if len(workouts) > 0 {
				if err := j.workoutRepo.UpsertBatch(ctx, workouts, opts.Concurrency); err != nil {
					return fmt.Errorf("failed to upsert workout batch %d: %w", batch, err)
				}
			}

			result.Seeded += len(workouts)
			for reason, n := range skipped {
				result.Skipped[reason] += n
				j.metrics.AddRows(constants.EntityWorkout, "skipped_"+string(reason), n)
			}
			j.metrics.IncBatches(constants.EntityWorkout)
			j.metrics.AddRows(constants.EntityWorkout, "seeded", len(workouts))

			log.Infow("Workout batch processed",
				"batch", batch,
				"upserted", len(workouts),
				"skipped", skipped.Total(),
				"skip_reasons", skipped.Strings(),
			)
			return nil
		},
	)
	result.Batches = stats.Batches
	result.Capped = stats.Capped

	if stats.Stalled {
		log.Warnw("Workout cursor did not advance, stopping to avoid repeat batches", "cursor", stats.LastCursor.Encode())
	}
	if stats.Capped {
		// the cursor resumes the scan via WORKOUT_SEED_AFTER_CURSOR
		log.Infow("Stopping after max batches", "batches", stats.Batches, "cursor", stats.LastCursor.Encode())
	}
	if err != nil {
		return result, err
	}

	log.Infow("Done seeding workouts",
		"upserted", result.Seeded,
		"skipped", result.Skipped.Total(),
		"batches", result.Batches,
	)
	return result, nil
}
