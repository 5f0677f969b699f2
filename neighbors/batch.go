package neighbors

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/scigo-neighbors/core/parallel"
	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
)

// SearchKNNBatch runs SearchKNN for every query on up to workers goroutines
// (0 means runtime.NumCPU()). Results are returned in query order. The first
// failing query cancels the remaining ones and its error is returned.
// c must not be mutated while the batch runs.
func SearchKNNBatch(ctx context.Context, c Collection, queries []vector.Vec, k, workers int) ([][]Neighbor, error) {
	return searchBatch(ctx, queries, workers, func(q vector.Vec) ([]Neighbor, error) {
		return c.SearchKNN(q, k)
	})
}

// SearchRadiusBatch is SearchKNNBatch for range queries.
func SearchRadiusBatch(ctx context.Context, c Collection, queries []vector.Vec, radius float64, workers int) ([][]Neighbor, error) {
	return searchBatch(ctx, queries, workers, func(q vector.Vec) ([]Neighbor, error) {
		return c.SearchRadius(q, radius)
	})
}

func searchBatch(ctx context.Context, queries []vector.Vec, workers int, search func(vector.Vec) ([]Neighbor, error)) ([][]Neighbor, error) {
	out := make([][]Neighbor, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel.Workers(workers))

	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := search(q)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
