package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every element of in using at most workers goroutines and
// returns the results in input order. The first error cancels ctx for the
// remaining calls and is returned. workers <= 0 means unbounded.
func Map[T any, R any](ctx context.Context, in []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	out := make([]R, len(in))
	for idx, value := range in {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, value)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForEach runs action for each element concurrently and returns the first error.
func ForEach[T any](ctx context.Context, in []T, workers int, action func(context.Context, T) error) error {
	_, err := Map(ctx, in, workers, func(ctx context.Context, v T) (struct{}, error) {
		return struct{}{}, action(ctx, v)
	})
	return err
}
