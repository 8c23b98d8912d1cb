package jobs

import (
	"context"
	"fmt"
	"strconv"
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

// RegionSeedResult counts one region pass
type RegionSeedResult struct {
	Seeded       int
	SkippedFresh int
	Batches      int
}

// RegionSeedJob copies active warehouse regions into the serving store
type RegionSeedJob struct {
	warehouse  providers.WarehouseProvider
	regionRepo *repositories.RegionRepo
	metrics    *metrics.MetricsRegistry
	now        func() time.Time
}

// NewRegionSeedJob creates a new region seed job instance
func NewRegionSeedJob(
	warehouse providers.WarehouseProvider,
	regionRepo *repositories.RegionRepo,
	metricsReg *metrics.MetricsRegistry,
) *RegionSeedJob {
	return &RegionSeedJob{
		warehouse:  warehouse,
		regionRepo: regionRepo,
		metrics:    metricsReg,
		now:        time.Now,
	}
}

// Run scans regions batch by batch, skipping rows written within the fresh
// window unless forced, and upserts the rest.
func (j *RegionSeedJob) Run(ctx context.Context, opts SeedOptions) (RegionSeedResult, error) {
	log := runctx.Logger(ctx)
	opts = opts.withDefaults(constants.DefaultRegionBatchSize)

	var result RegionSeedResult
	now := j.now()
	ingestedAt := services.CurrentIngestedAt(now)

	lastIngested, err := j.regionRepo.LoadIngestionMap(ctx)
	if err != nil {
		return result, err
	}

	log.Infow("Seeding regions",
		"batch_size", opts.BatchSize,
		"force", opts.Force,
		"known", len(lastIngested),
	)

	stats, err := providers.ScanBatches(ctx,
		providers.ScanOptions{BatchSize: opts.BatchSize, MaxBatches: opts.MaxBatches, UpdatedAfter: opts.UpdatedAfter},
		j.warehouse.FetchRegionBatch,
		providers.RegionCursor,
		func(ctx context.Context, batch int, rows []entities.RegionRow) error {
			regions := make([]gorm.Region, 0, len(rows))
			skipped := 0
			for _, row := range rows {
				id := strconv.FormatInt(row.ID, 10)
				if !opts.Force && services.IsFresh(lastIngested[id], opts.FreshWindow, now) {
					skipped++
					continue
				}
				regions = append(regions, services.TransformRegion(row, ingestedAt))
			}

			if len(regions) > 0 {
				if err := j.regionRepo.UpsertBatch(ctx, regions, opts.Concurrency); err != nil {
					return fmt.Errorf("failed to upsert region batch %d: %w", batch, err)
				}
			}

			result.Seeded += len(regions)
			result.SkippedFresh += skipped
			j.metrics.IncBatches(constants.EntityRegion)
			j.metrics.AddRows(constants.EntityRegion, "seeded", len(regions))
			j.metrics.AddRows(constants.EntityRegion, "skipped_"+string(constants.SkipFresh), skipped)

			log.Infow("Region batch processed",
				"batch", batch,
				"upserted", len(regions),
				"skipped", skipped,
			)
			return nil
		},
	)
	result.Batches = stats.Batches

	if stats.Stalled {
		log.Warnw("Region cursor did not advance, stopping scan", "cursor", stats.LastCursor.Encode())
	}
	if err != nil {
		return result, err
	}

	log.Infow("Done seeding regions",
		"upserted", result.Seeded,
		"skipped_fresh", result.SkippedFresh,
		"batches", result.Batches,
	)
	return result, nil
}
