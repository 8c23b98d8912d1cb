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

// regionUpsertColumns leaves city/state/zip/country/latitude/longitude/zoom
// out so values written by enrichment survive a re-seed.
var regionUpsertColumns = []string{
	"slug", "name", "description", "website", "image", "email",
	"facebook", "twitter", "instagram", "last_ingested_at",
}

// RegionRef identifies a serving-store region for pruning and reporting
type RegionRef struct {
	ID   string
	Name string
}

// RegionRepo handles regions table operations
type RegionRepo struct {
	db *gormlib.DB
}

// NewRegionRepo creates a new region repository
func NewRegionRepo(db *gormlib.DB) *RegionRepo {
	return &RegionRepo{db: db}
}

// LoadIngestionMap returns last_ingested_at keyed by region id
func (r *RegionRepo) LoadIngestionMap(ctx context.Context) (map[string]*time.Time, error) {
	var rows []struct {
		ID             string
		LastIngestedAt *time.Time
	}

	err := r.db.WithContext(ctx).
		Model(&gorm.Region{}).
		Select("id, last_ingested_at").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load region ingestion map: %w", err)
	}

	out := make(map[string]*time.Time, len(rows))
	for _, row := range rows {
		out[row.ID] = row.LastIngestedAt
	}
	return out, nil
}

// ListIDs returns the set of region ids present in the serving store
func (r *RegionRepo) ListIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string

	err := r.db.WithContext(ctx).
		Model(&gorm.Region{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list region ids: %w", err)
	}

	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// ListRefs returns id and name of every region ordered by name
func (r *RegionRepo) ListRefs(ctx context.Context) ([]RegionRef, error) {
	var refs []RegionRef

	err := r.db.WithContext(ctx).
		Model(&gorm.Region{}).
		Select("id, name").
		Order("name ASC").
		Scan(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	return refs, nil
}

// GetAll returns every region ordered by name
func (r *RegionRepo) GetAll(ctx context.Context) ([]gorm.Region, error) {
	var regions []gorm.Region

	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&regions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load regions: %w", err)
	}
	return regions, nil
}

// UpsertBatch inserts or updates every region, concurrency writes at a time
// ON CONFLICT (id) DO UPDATE
func (r *RegionRepo) UpsertBatch(ctx context.Context, regions []gorm.Region, concurrency int) error {
	return upsertConcurrently(ctx, regions, concurrency, func(ctx context.Context, region *gorm.Region) error {
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(regionUpsertColumns),
			}).
			Create(region).Error
		if err != nil {
			return &WriteError{Entity: constants.EntityRegion, ID: region.ID, Name: region.Name, Err: err}
		}
		return nil
	})
}

// DeleteWithWorkouts removes a region and its workouts in one transaction,
// workouts first so none ever references a missing region.
func (r *RegionRepo) DeleteWithWorkouts(ctx context.Context, regionID string) (int64, error) {
	var workoutsRemoved int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		res := tx.Where("region_id = ?", regionID).Delete(&gorm.Workout{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete workouts of region %s: %w", regionID, res.Error)
		}
		workoutsRemoved = res.RowsAffected

		if err := tx.Where("id = ?", regionID).Delete(&gorm.Region{}).Error; err != nil {
			return fmt.Errorf("failed to delete region %s: %w", regionID, err)
		}
		return nil
	})

	return workoutsRemoved, err
}

// UpdateGeometry writes the enrichment-owned columns of one region
func (r *RegionRepo) UpdateGeometry(ctx context.Context, regionID string, g dtos.RegionGeometry) error {
	err := r.db.WithContext(ctx).
		Model(&gorm.Region{}).
		Where("id = ?", regionID).
		Updates(map[string]interface{}{
			"city":      g.City,
			"state":     g.State,
			"zip":       g.Zip,
			"country":   g.Country,
			"latitude":  g.Latitude,
			"longitude": g.Longitude,
			"zoom":      g.Zoom,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update geometry of region %s: %w", regionID, err)
	}
	return nil
}
