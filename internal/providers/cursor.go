package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cursor marks the last warehouse row of a batch. Scans resume strictly
// after it in (Updated, ID) order.
type Cursor struct {
	Updated time.Time
	ID      int64
}

// After reports whether c sorts strictly after other
func (c Cursor) After(other Cursor) bool {
	if c.Updated.Equal(other.Updated) {
		return c.ID > other.ID
	}
	return c.Updated.After(other.Updated)
}

// Equal compares instants, not time.Location
func (c Cursor) Equal(other Cursor) bool {
	return c.Updated.Equal(other.Updated) && c.ID == other.ID
}

func (c Cursor) String() string {
	return fmt.Sprintf("updated=%s id=%d", c.Updated.UTC().Format(time.RFC3339Nano), c.ID)
}

// Encode serialises the cursor for logs and checkpoints
func (c *Cursor) Encode() string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%d", c.Updated.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode; empty means no cursor
func DecodeCursor(token string) (*Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, err
	}
	return &Cursor{Updated: ts, ID: id}, nil
}

// BatchQuery selects up to BatchSize rows after Cursor and at/after
// UpdatedAfter, ordered by (updated, id).
type BatchQuery struct {
	Cursor       *Cursor
	BatchSize    int
	UpdatedAfter *time.Time
}

// ScanOptions bound one cursor scan
type ScanOptions struct {
	BatchSize    int
	MaxBatches   int // 0 = unbounded
	UpdatedAfter *time.Time
	After        *Cursor // resume strictly after this row
}

// ScanStats describes how a scan ended
type ScanStats struct {
	Batches    int
	Rows       int
	LastCursor *Cursor
	Stalled    bool
	Capped     bool
}

// ScanBatches pulls batches from fetch until the warehouse is exhausted, the
// cursor stops advancing, or MaxBatches is reached, handing each batch to
// visit before fetching the next. Stalling is a clean stop, not an error.
func ScanBatches[T any](
	ctx context.Context,
	opts ScanOptions,
	fetch func(ctx context.Context, q BatchQuery) ([]T, error),
	cursorOf func(row T) Cursor,
	visit func(ctx context.Context, batchNumber int, rows []T) error,
) (ScanStats, error) {
	var stats ScanStats
	if opts.BatchSize <= 0 {
		return stats, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}

	cursor := opts.After
	for {
		if opts.MaxBatches > 0 && stats.Batches >= opts.MaxBatches {
			stats.Capped = true
			return stats, nil
		}

		rows, err := fetch(ctx, BatchQuery{
			Cursor:       cursor,
			BatchSize:    opts.BatchSize,
			UpdatedAfter: opts.UpdatedAfter,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to fetch batch %d: %w", stats.Batches+1, err)
		}
		if len(rows) == 0 {
			return stats, nil
		}

		next, advanced := Advance(cursor, cursorOf(rows[len(rows)-1]))

		stats.Batches++
		stats.Rows += len(rows)
		if err := visit(ctx, stats.Batches, rows); err != nil {
			return stats, err
		}

		if !advanced {
			stats.Stalled = true
			return stats, nil
		}
		cursor = next
		stats.LastCursor = next

		if len(rows) < opts.BatchSize {
			return stats, nil
		}
	}
}

// Advance returns the cursor for the next batch and whether it moved forward
// from prev. A cursor that fails to advance ends the scan.
func Advance(prev *Cursor, last Cursor) (*Cursor, bool) {
	if prev != nil && !last.After(*prev) {
		return prev, false
	}
	next := last
	return &next, true
}
