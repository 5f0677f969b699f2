package neighbors

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

func randomDense(rng *rand.Rand, n, d int) []vector.Vec {
	out := make([]vector.Vec, n)
	for i := range out {
		v := make([]float64, d)
		for j := range v {
			v[j] = rng.NormFloat64()
		}
		out[i] = vector.NewDense(v)
	}
	return out
}

func randomSparse(rng *rand.Rand, n, d int, density float64) []vector.Vec {
	out := make([]vector.Vec, n)
	for i := range out {
		var idx []int
		var val []float64
		for j := 0; j < d; j++ {
			if rng.Float64() < density {
				idx = append(idx, j)
				val = append(val, rng.NormFloat64())
			}
		}
		s, err := vector.NewSparse(d, idx, val)
		if err != nil {
			panic(err)
		}
		out[i] = s
	}
	return out
}

// withTies appends exact duplicates and scaled copies, which produce equal
// distances under every metric or under cosine.
func withTies(vecs []vector.Vec) []vector.Vec {
	out := append([]vector.Vec(nil), vecs...)
	for i := 0; i < 5 && i < len(vecs); i++ {
		out = append(out, vecs[i].Clone())
	}
	if d, ok := vecs[0].(*vector.Dense); ok {
		scaled := make([]float64, d.Len())
		for j, x := range d.Values() {
			scaled[j] = 2 * x
		}
		out = append(out, vector.NewDense(scaled))
	}
	return out
}

// testMetrics returns one instance of every metric, trainable ones trained
// on vecs.
func testMetrics(t *testing.T, vecs []vector.Vec) []distance.Metric {
	t.Helper()
	errors.SetWarningHandler(func(error) {})
	ne := distance.NewNormalizedEuclidean()
	require.NoError(t, ne.Train(vecs, false))
	mh := distance.NewMahalanobis()
	require.NoError(t, mh.Train(vecs, false))
	mk, err := distance.NewMinkowski(3)
	require.NoError(t, err)
	return []distance.Metric{
		distance.Euclidean{}, distance.Cosine{}, distance.Manhattan{},
		distance.Chebyshev{}, mk, ne, mh,
	}
}

// requireSameResults checks that c answers exactly like ref for every query.
func requireSameResults(t *testing.T, ref, c Collection, queries []vector.Vec, ks []int) {
	t.Helper()
	for qi, q := range queries {
		for _, k := range ks {
			want, err := ref.SearchKNN(q, k)
			require.NoError(t, err)
			got, err := c.SearchKNN(q, k)
			require.NoError(t, err)
			require.Equal(t, want, got, "query %d k=%d", qi, k)

			r := want[len(want)-1].Dist
			want, err = ref.SearchRadius(q, r)
			require.NoError(t, err)
			got, err = c.SearchRadius(q, r)
			require.NoError(t, err)
			require.Equal(t, want, got, "query %d radius=%g", qi, r)
		}
		want, err := ref.SearchRadius(q, 0)
		require.NoError(t, err)
		got, err := c.SearchRadius(q, 0)
		require.NoError(t, err)
		require.Equal(t, want, got, "query %d radius=0", qi)
	}
}

// mixedQueries returns some stored vectors and some fresh ones.
func mixedQueries(rng *rand.Rand, vecs []vector.Vec, fresh []vector.Vec, n int) []vector.Vec {
	qs := make([]vector.Vec, 0, n+len(fresh))
	for i := 0; i < n; i++ {
		qs = append(qs, vecs[rng.IntN(len(vecs))])
	}
	return append(qs, fresh...)
}
