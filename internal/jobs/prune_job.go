package jobs

import (
	"context"
	"fmt"

	"f3-nation/regionsync/internal/constants"
	runctx "f3-nation/regionsync/internal/context"
	"f3-nation/regionsync/internal/db/repositories"
	"f3-nation/regionsync/internal/metrics"
	"f3-nation/regionsync/internal/providers"
)

// PrunedWorkout is one removed workout and why it went
type PrunedWorkout struct {
	ID     string
	Name   string
	Reason constants.PruneReason
}

// RegionPruneResult lists regions removed because the warehouse no longer
// has them as active regions
type RegionPruneResult struct {
	Names            []string
	WorkoutsCascaded int64
}

// WorkoutPruneResult lists removed workouts with their reasons
type WorkoutPruneResult struct {
	Removed []PrunedWorkout
}

// Names returns removed workout names in deletion order
func (r WorkoutPruneResult) Names() []string {
	names := make([]string, len(r.Removed))
	for i, w := range r.Removed {
		names[i] = w.Name
	}
	return names
}

// PruneJob removes serving rows whose warehouse source is gone or inactive
type PruneJob struct {
	warehouse   providers.WarehouseProvider
	regionRepo  *repositories.RegionRepo
	workoutRepo *repositories.WorkoutRepo
	metrics     *metrics.MetricsRegistry
}

// NewPruneJob creates a new prune job instance
func NewPruneJob(
	warehouse providers.WarehouseProvider,
	regionRepo *repositories.RegionRepo,
	workoutRepo *repositories.WorkoutRepo,
	metricsReg *metrics.MetricsRegistry,
) *PruneJob {
	return &PruneJob{
		warehouse:   warehouse,
		regionRepo:  regionRepo,
		workoutRepo: workoutRepo,
		metrics:     metricsReg,
	}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// PruneRegions deletes every serving region that is not an active warehouse
// region, together with its workouts.
func (j *PruneJob) PruneRegions(ctx context.Context) (RegionPruneResult, error) {
	log := runctx.Logger(ctx)
	var result RegionPruneResult

	activeIDs, err := j.warehouse.ActiveRegionIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load active regions: %w", err)
	}
	active := toSet(activeIDs)

	refs, err := j.regionRepo.ListRefs(ctx)
	if err != nil {
		return result, err
	}

	for _, ref := range refs {
		if _, ok := active[ref.ID]; ok {
			continue
		}

		workouts, err := j.regionRepo.DeleteWithWorkouts(ctx, ref.ID)
		if err != nil {
			return result, err
		}
		log.Infow("Removed region",
			"id", ref.ID,
			"name", ref.Name,
			"workouts_removed", workouts,
		)
		result.Names = append(result.Names, ref.Name)
		result.WorkoutsCascaded += workouts
	}

	j.metrics.AddRows(constants.EntityRegion, "pruned", len(result.Names))
	log.Infow("Pruned regions", "removed", len(result.Names), "active_in_warehouse", len(active))
	return result, nil
}

// PruneWorkouts deletes workouts whose event is not active in the warehouse
// or whose region is not in the serving store. A missing region is reported
// in preference to inactivity.
func (j *PruneJob) PruneWorkouts(ctx context.Context) (WorkoutPruneResult, error) {
	log := runctx.Logger(ctx)
	var result WorkoutPruneResult

	activeIDs, err := j.warehouse.ActiveEventIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load active events: %w", err)
	}
	active := toSet(activeIDs)

	regionIDs, err := j.regionRepo.ListIDs(ctx)
	if err != nil {
		return result, err
	}

	refs, err := j.workoutRepo.ListRefs(ctx)
	if err != nil {
		return result, err
	}

	var ids []string
	for _, ref := range refs {
		_, inRegion := regionIDs[ref.RegionID]
		_, isActive := active[ref.ID]

		var reason constants.PruneReason
		switch {
		case ref.RegionID == "" || !inRegion:
			reason = constants.PruneMissingRegion
		case !isActive:
			reason = constants.PruneInactive
		default:
			continue
		}

		log.Debugw("Removing workout",
			"id", ref.ID,
			"name", ref.Name,
			"reason", reason,
		)
		ids = append(ids, ref.ID)
		result.Removed = append(result.Removed, PrunedWorkout{ID: ref.ID, Name: ref.Name, Reason: reason})
	}

	if len(ids) > 0 {
		if _, err := j.workoutRepo.DeleteByIDs(ctx, ids); err != nil {
			return WorkoutPruneResult{}, err
		}
	}

	j.metrics.AddRows(constants.EntityWorkout, "pruned", len(result.Removed))
	log.Infow("Pruned workouts", "removed", len(result.Removed), "active_in_warehouse", len(active))
	return result, nil
}
