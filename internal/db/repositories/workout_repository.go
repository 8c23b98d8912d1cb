package repositories

import (
	"context"
	"fmt"
	"time"

	"f3-nation/regionsync/internal/constants"
	"f3-nation/regionsync/internal/models/dtos"
	"f3-nation/regionsync/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var workoutUpsertColumns = []string{
	"region_id", "name", "time", "type", "types", "group", "notes",
	"latitude", "longitude", "city", "state", "zip", "country",
	"location", "last_ingested_at",
}

const deleteChunkSize = 500

// WorkoutRef identifies a serving-store workout for pruning and reporting
type WorkoutRef struct {
	ID       string
	Name     string
	RegionID string
}

// WorkoutRepo handles workouts table operations
type WorkoutRepo struct {
	db *gormlib.DB
}

// NewWorkoutRepo creates a new workout repository
func NewWorkoutRepo(db *gormlib.DB) *WorkoutRepo {
	return &WorkoutRepo{db: db}
}

// LoadIngestionMap returns last_ingested_at keyed by workout id
func (r *WorkoutRepo) LoadIngestionMap(ctx context.Context) (map[string]*time.Time, error) {
	var rows []struct {
		ID             string
		LastIngestedAt *time.Time
	}

	err := r.db.WithContext(ctx).
		Model(&gorm.Workout{}).
		Select("id, last_ingested_at").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load workout ingestion map: %w", err)
	}

	out := make(map[string]*time.Time, len(rows))
	for _, row := range rows {
		out[row.ID] = row.LastIngestedAt
	}
	return out, nil
}

// ListRefs returns id, name and region id of every workout
func (r *WorkoutRepo) ListRefs(ctx context.Context) ([]WorkoutRef, error) {
	var refs []WorkoutRef

	err := r.db.WithContext(ctx).
		Model(&gorm.Workout{}).
		Select("id, name, region_id").
		Order("id ASC").
		Scan(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	return refs, nil
}

// ListPlaces returns the location fields enrichment needs, ordered by
// region and then id so tie-breaks are stable between runs.
func (r *WorkoutRepo) ListPlaces(ctx context.Context) ([]dtos.WorkoutPlace, error) {
	var places []dtos.WorkoutPlace

	err := r.db.WithContext(ctx).
		Model(&gorm.Workout{}).
		Select("id, region_id, city, state, zip, country, latitude, longitude").
		Order("region_id ASC, id ASC").
		Scan(&places).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workout places: %w", err)
	}
	return places, nil
}

// UpsertBatch inserts or updates every workout, concurrency writes at a time
// ON CONFLICT (id) DO UPDATE
func (r *WorkoutRepo) UpsertBatch(ctx context.Context, workouts []gorm.Workout, concurrency int) error {
	return upsertConcurrently(ctx, workouts, concurrency, func(ctx context.Context, workout *gorm.Workout) error {
		err := r.db.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(workoutUpsertColumns),
			}).
			Create(workout).Error
		if err != nil {
			return &WriteError{Entity: constants.EntityWorkout, ID: workout.ID, Name: workout.Name, Err: err}
		}
		return nil
	})
}

// DeleteByIDs removes workouts in chunks and returns the number removed
func (r *WorkoutRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	var removed int64

	for start := 0; start < len(ids); start += deleteChunkSize {
		end := start + deleteChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		res := r.db.WithContext(ctx).
			Where("id IN ?", ids[start:end]).
			Delete(&gorm.Workout{})
		if res.Error != nil {
			return removed, fmt.Errorf("failed to delete workouts: %w", res.Error)
		}
		removed += res.RowsAffected
	}

	return removed, nil
}
