package neighbors

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

func TestSearchBatch_MatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(51, 52))
	vecs := randomDense(rng, 400, 3)
	queries := randomDense(rng, 64, 3)

	tree, err := NewBallTree(vecs, distance.Euclidean{}, WithLeafSize(8))
	require.NoError(t, err)

	knn, err := SearchKNNBatch(context.Background(), tree, queries, 5, 4)
	require.NoError(t, err)
	radius, err := SearchRadiusBatch(context.Background(), tree, queries, 0.5, 0)
	require.NoError(t, err)
	require.Len(t, knn, len(queries))
	require.Len(t, radius, len(queries))

	for i, q := range queries {
		want, err := tree.SearchKNN(q, 5)
		require.NoError(t, err)
		assert.Equal(t, want, knn[i])
		want, err = tree.SearchRadius(q, 0.5)
		require.NoError(t, err)
		assert.Equal(t, want, radius[i])
	}
}

func TestSearchBatch_PropagatesErrors(t *testing.T) {
	rng := rand.New(rand.NewPCG(53, 54))
	vecs := randomDense(rng, 50, 3)
	ls, err := NewLinearScan(vecs, distance.Euclidean{})
	require.NoError(t, err)

	queries := randomDense(rng, 10, 3)
	queries[6] = vector.NewDense([]float64{1, 2})
	_, err = SearchKNNBatch(context.Background(), ls, queries, 3, 2)
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim), "%v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SearchRadiusBatch(ctx, ls, randomDense(rng, 5, 3), 1, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
