package jobs

import (
	"context"

	runctx "f3-nation/regionsync/internal/context"
	"f3-nation/regionsync/internal/db/repositories"
	"f3-nation/regionsync/internal/models/dtos"
	"f3-nation/regionsync/internal/services"
)

// EnrichJob derives each region's address, map center and zoom from its
// workouts
type EnrichJob struct {
	regionRepo  *repositories.RegionRepo
	workoutRepo *repositories.WorkoutRepo
}

// NewEnrichJob creates a new enrichment job instance
func NewEnrichJob(regionRepo *repositories.RegionRepo, workoutRepo *repositories.WorkoutRepo) *EnrichJob {
	return &EnrichJob{
		regionRepo:  regionRepo,
		workoutRepo: workoutRepo,
	}
}

// Run updates every region and returns how many were written
func (j *EnrichJob) Run(ctx context.Context) (int, error) {
	log := runctx.Logger(ctx)

	regions, err := j.regionRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	places, err := j.workoutRepo.ListPlaces(ctx)
	if err != nil {
		return 0, err
	}
	byRegion := make(map[string][]dtos.WorkoutPlace)
	for _, p := range places {
		byRegion[p.RegionID] = append(byRegion[p.RegionID], p)
	}

	enriched := 0
	for i, region := range regions {
		if err := ctx.Err(); err != nil {
			return enriched, err
		}

		g := services.ComputeRegionGeometry(region, byRegion[region.ID])
		if err := j.regionRepo.UpdateGeometry(ctx, region.ID, g); err != nil {
			return enriched, err
		}
		enriched++

		log.Debugw("Enriched region",
			"index", i+1,
			"of", len(regions),
			"name", region.Name,
			"workouts", len(byRegion[region.ID]),
			"zoom", g.Zoom,
		)
	}

	log.Infow("Done enriching regions", "regions", enriched)
	return enriched, nil
}
