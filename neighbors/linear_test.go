package neighbors

import (
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/internal/metrics"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

func line(xs ...float64) []vector.Vec {
	out := make([]vector.Vec, len(xs))
	for i, x := range xs {
		out[i] = vector.NewDense([]float64{x})
	}
	return out
}

func TestLinearScan_OrderAndTies(t *testing.T) {
	ls, err := NewLinearScan(line(3, 1, -1, 1, 0), distance.Euclidean{})
	require.NoError(t, err)
	q := vector.NewDense([]float64{0})

	res, err := ls.SearchKNN(q, 3)
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{Index: 4, Dist: 0}, {Index: 1, Dist: 1}, {Index: 2, Dist: 1}}, res)

	// 同距離の3点のうち小さいインデックスが優先される
	res, err = ls.SearchKNN(q, 2)
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{Index: 4, Dist: 0}, {Index: 1, Dist: 1}}, res)

	res, err = ls.SearchKNN(q, 100)
	require.NoError(t, err)
	assert.Len(t, res, 5)
	assert.Equal(t, 0, res[4].Index)
}

func TestLinearScan_RadiusIsInclusive(t *testing.T) {
	ls, err := NewLinearScan(line(3, 1, -1, 1, 0), distance.Euclidean{})
	require.NoError(t, err)
	q := vector.NewDense([]float64{0})

	res, err := ls.SearchRadius(q, 1)
	require.NoError(t, err)
	assert.Equal(t, []Neighbor{{Index: 4, Dist: 0}, {Index: 1, Dist: 1}, {Index: 2, Dist: 1}, {Index: 3, Dist: 1}}, res)

	res, err = ls.SearchRadius(vector.NewDense([]float64{10}), 1)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestLinearScan_InsertAndClone(t *testing.T) {
	ls, err := NewLinearScan(nil, distance.Cosine{})
	require.NoError(t, err)
	assert.Equal(t, 0, ls.Dim())

	idx, err := ls.Insert(vector.NewDense([]float64{1, 0}))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 2, ls.Dim())

	clone := ls.Clone()
	idx, err = clone.Insert(vector.NewDense([]float64{0, 1}))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, ls.Len())
	assert.Equal(t, 2, clone.Len())

	_, err = ls.Insert(vector.NewDense([]float64{1, 2, 3}))
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))
}

func TestLinearScan_Errors(t *testing.T) {
	ls, err := NewLinearScan(line(1, 2), distance.Euclidean{})
	require.NoError(t, err)

	var ve *errors.ValidationError
	_, err = ls.SearchKNN(vector.NewDense([]float64{0}), -1)
	assert.True(t, errors.As(err, &ve))
	_, err = ls.SearchRadius(vector.NewDense([]float64{0}), -0.5)
	assert.True(t, errors.As(err, &ve))

	var dim *errors.DimensionError
	_, err = ls.SearchRadius(vector.NewDense([]float64{0, 0}), 1)
	assert.True(t, errors.As(err, &dim))

	// 未学習の距離関数は空のコレクションでは使えない
	_, err = NewLinearScan(nil, distance.NewMahalanobis())
	var nt *errors.NotTrainedError
	assert.True(t, errors.As(err, &nt))
}

func TestLinearScan_TrainsOwnMetricCopy(t *testing.T) {
	rng := rand.New(rand.NewPCG(41, 42))
	vecs := randomDense(rng, 50, 3)
	m := distance.NewNormalizedEuclidean()

	ls, err := NewLinearScan(vecs, m)
	require.NoError(t, err)
	assert.True(t, m.NeedsTraining(), "caller's metric must stay untouched")
	assert.False(t, ls.Metric().NeedsTraining())
}

func TestCollections_RecordMetrics(t *testing.T) {
	rng := rand.New(rand.NewPCG(43, 44))
	vecs := randomDense(rng, 500, 3)

	builds := testutil.ToFloat64(metrics.BuildsTotal.WithLabelValues(metrics.CollectionBallTree, metrics.BuildMode(false)))
	queries := testutil.ToFloat64(metrics.QueriesTotal.WithLabelValues(metrics.CollectionBallTree, metrics.QueryKNN))
	treeEvals := testutil.ToFloat64(metrics.DistanceEvaluationsTotal.WithLabelValues(metrics.CollectionBallTree))
	linearEvals := testutil.ToFloat64(metrics.DistanceEvaluationsTotal.WithLabelValues(metrics.CollectionLinear))

	tree, err := NewBallTree(vecs, distance.Euclidean{}, WithLeafSize(5))
	require.NoError(t, err)
	ls, err := NewLinearScan(vecs, distance.Euclidean{})
	require.NoError(t, err)

	_, err = tree.SearchKNN(vecs[0], 3)
	require.NoError(t, err)
	_, err = ls.SearchKNN(vecs[0], 3)
	require.NoError(t, err)

	assert.Equal(t, builds+1, testutil.ToFloat64(metrics.BuildsTotal.WithLabelValues(metrics.CollectionBallTree, metrics.BuildMode(false))))
	assert.Equal(t, queries+1, testutil.ToFloat64(metrics.QueriesTotal.WithLabelValues(metrics.CollectionBallTree, metrics.QueryKNN)))
	assert.Equal(t, linearEvals+500, testutil.ToFloat64(metrics.DistanceEvaluationsTotal.WithLabelValues(metrics.CollectionLinear)))

	// 枝刈りにより木は全点より少ない距離計算で済む
	evals := testutil.ToFloat64(metrics.DistanceEvaluationsTotal.WithLabelValues(metrics.CollectionBallTree)) - treeEvals
	assert.Greater(t, evals, 0.0)
	assert.Less(t, evals, 500.0)
}
