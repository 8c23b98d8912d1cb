package providers

import (
	"context"
	"errors"
	"fmt"

	"f3-nation/regionsync/internal/config"
	"f3-nation/regionsync/internal/models/entities"
)

// ErrMalformedRow is returned when a warehouse row cannot be decoded into
// its typed shape (missing id or updated timestamp).
var ErrMalformedRow = errors.New("malformed warehouse row")

// WarehouseProvider is the read-only view of the authoritative warehouse
type WarehouseProvider interface {
	// ActiveRegionIDs returns ids of orgs of type region that are active
	ActiveRegionIDs(ctx context.Context) ([]string, error)

	// ActiveEventIDs returns ids of active events whose AO and parent region
	// are both active
	ActiveEventIDs(ctx context.Context) ([]string, error)

	// FetchRegionBatch returns active regions after q.Cursor in (updated, id) order
	FetchRegionBatch(ctx context.Context, q BatchQuery) ([]entities.RegionRow, error)

	// FetchWorkoutBatch returns active events after q.Cursor in (updated, id)
	// order, joined with AO, parent region, location and event types
	FetchWorkoutBatch(ctx context.Context, q BatchQuery) ([]entities.WorkoutRow, error)

	// Close releases the underlying connection
	Close() error

	// GetProviderType returns the provider type identifier
	GetProviderType() string
}

// RegionCursor is the scan position of a region row
func RegionCursor(row entities.RegionRow) Cursor {
	return Cursor{Updated: row.Updated, ID: row.ID}
}

// WorkoutCursor is the scan position of a workout row
func WorkoutCursor(row entities.WorkoutRow) Cursor {
	return Cursor{Updated: row.Updated, ID: row.ID}
}

// NewWarehouseProvider returns the reader for the configured warehouse driver.
// Connections are opened lazily on first query and reused afterwards.
func NewWarehouseProvider(cfg config.WarehouseConfig) (WarehouseProvider, error) {
	switch cfg.Driver {
	case "bigquery":
		return NewBigQueryProvider(cfg)
	case "postgres":
		return NewPostgresProvider(cfg.PostgresURL), nil
	default:
		return nil, fmt.Errorf("%w: unsupported warehouse driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}
