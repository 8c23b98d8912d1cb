package jobs

import (
	"context"
	"time"

	"f3-nation/regionsync/internal/db/repositories"
	"f3-nation/regionsync/internal/services"
)

// FreshnessTracker guards named sync keys with a time window
type FreshnessTracker struct {
	seedRunRepo *repositories.SeedRunRepo
	window      time.Duration
}

func NewFreshnessTracker(seedRunRepo *repositories.SeedRunRepo, window time.Duration) *FreshnessTracker {
	return &FreshnessTracker{
		seedRunRepo: seedRunRepo,
		window:      window,
	}
}

// LastRun returns when key last completed, nil if never
func (t *FreshnessTracker) LastRun(ctx context.Context, key string) (*time.Time, error) {
	return t.seedRunRepo.GetLastIngestedAt(ctx, key)
}

// IsFresh reports whether key completed within the window before now, along
// with the recorded time.
func (t *FreshnessTracker) IsFresh(ctx context.Context, key string, now time.Time) (bool, *time.Time, error) {
	last, err := t.LastRun(ctx, key)
	if err != nil {
		return false, nil, err
	}
	return services.IsFresh(last, t.window, now), last, nil
}

// Record marks key as completed at at
func (t *FreshnessTracker) Record(ctx context.Context, key string, at time.Time) error {
	return t.seedRunRepo.RecordRun(ctx, key, at)
}
