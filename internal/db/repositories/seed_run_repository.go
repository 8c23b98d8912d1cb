package repositories

import (
	"context"
	"errors"
	"time"

	"f3-nation/regionsync/internal/models/gorm"

	gormlib "gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedRunRepo persists the completion timestamp of named sync jobs
type SeedRunRepo struct {
	db *gormlib.DB
}

// NewSeedRunRepo creates a new seed run repository
func NewSeedRunRepo(db *gormlib.DB) *SeedRunRepo {
	return &SeedRunRepo{db: db}
}

// GetLastIngestedAt returns nil when the key has never completed
func (r *SeedRunRepo) GetLastIngestedAt(ctx context.Context, key string) (*time.Time, error) {
	var run gorm.SeedRun

	err := r.db.WithContext(ctx).
		Where(&gorm.SeedRun{Key: key}).
		First(&run).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &run.LastIngestedAt, nil
}

// RecordRun sets last_ingested_at for key
// ON CONFLICT (key) DO UPDATE
func (r *SeedRunRepo) RecordRun(ctx context.Context, key string, at time.Time) error {
	run := gorm.SeedRun{
		Key:            key,
		LastIngestedAt: at.UTC(),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_ingested_at"}),
		}).
		Create(&run).Error
}
