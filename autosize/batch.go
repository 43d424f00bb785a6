package autosize

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds ResolveAll when the caller passes a
// non-positive limit.
const DefaultConcurrency = 4

// Outcome is the result of resolving one path in a batch. Exactly one of
// Resolution and Err is set.
type Outcome struct {
	Path       string
	Resolution *Resolution
	Err        error
}

// ResolveAll resolves each path independently with at most concurrency
// lookups in flight. Outcomes are returned in input order. A failing path
// does not stop the others; a cancelled ctx fails the paths that had not
// started yet with ctx.Err().
func (r *Resolver) ResolveAll(ctx context.Context, paths []string, concurrency int) []Outcome {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	outcomes := make([]Outcome, len(paths))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			outcomes[i].Path = path

			if err := ctx.Err(); err != nil {
				outcomes[i].Err = err
				return nil
			}

			res, err := r.Resolve(ctx, path)
			outcomes[i].Resolution = res
			outcomes[i].Err = err
			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}
