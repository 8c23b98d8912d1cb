package repositories

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// WriteError names the record whose write broke a batch so the batch can be
// diagnosed or retried.
type WriteError struct {
	Entity string
	ID     string
	Name   string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to upsert %s %s (%s): %v", e.Entity, e.ID, e.Name, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// upsertConcurrently runs write for every item with at most concurrency
// writes in flight and returns the first failure.
func upsertConcurrently[T any](ctx context.Context, items []T, concurrency int, write func(ctx context.Context, item *T) error) error {
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range items {
		item := &items[i]
		g.Go(func() error {
			return write(gctx, item)
		})
	}
	return g.Wait()
}
