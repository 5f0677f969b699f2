package distance

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

func randomVecs(rng *rand.Rand, n, d int, sparse bool) []vector.Vec {
	out := make([]vector.Vec, n)
	for i := range out {
		if !sparse {
			v := make([]float64, d)
			for j := range v {
				v[j] = rng.NormFloat64()
			}
			out[i] = vector.NewDense(v)
			continue
		}
		var idx []int
		var val []float64
		for j := 0; j < d; j++ {
			if rng.Float64() < 0.3 {
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

func trainedMetrics(t *testing.T, vecs []vector.Vec) []Metric {
	t.Helper()
	errors.SetWarningHandler(func(error) {})
	ne := NewNormalizedEuclidean()
	require.NoError(t, ne.Train(vecs, false))
	mh := NewMahalanobis()
	require.NoError(t, mh.Train(vecs, false))
	mk, err := NewMinkowski(3)
	require.NoError(t, err)
	return []Metric{Euclidean{}, Cosine{}, Manhattan{}, Chebyshev{}, mk, ne, mh}
}

func TestMetricAxioms(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	vecs := randomVecs(rng, 30, 5, false)

	for _, m := range trainedMetrics(t, vecs) {
		t.Run(m.String(), func(t *testing.T) {
			assert.True(t, m.IsSymmetric())
			assert.True(t, m.IsSubadditive())
			assert.False(t, m.NeedsTraining())
			for i := 0; i < len(vecs); i++ {
				assert.InDelta(t, 0, m.Dist(vecs[i], vecs[i]), 1e-12)
				for j := 0; j < len(vecs); j++ {
					dij := m.Dist(vecs[i], vecs[j])
					assert.GreaterOrEqual(t, dij, 0.0)
					assert.LessOrEqual(t, dij, m.MetricBound())
					assert.InDelta(t, dij, m.Dist(vecs[j], vecs[i]), 1e-12)
					k := (i + j) % len(vecs)
					assert.LessOrEqual(t, dij, m.Dist(vecs[i], vecs[k])+m.Dist(vecs[k], vecs[j])+1e-9)
				}
			}
		})
	}
}

func TestAccelerationMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for _, sparse := range []bool{false, true} {
		vecs := randomVecs(rng, 40, 8, sparse)
		// 重複ベクトルと零ベクトルを含める
		vecs = append(vecs, vecs[0].Clone(), vector.Zeros(8))

		for _, m := range []Metric{Euclidean{}, Cosine{}} {
			acc, ok := m.(Accelerator)
			require.True(t, ok)
			require.True(t, m.SupportsAcceleration())

			serial := acc.AccelerationCache(vecs, 1)
			par := acc.AccelerationCache(vecs, 4)
			require.Equal(t, len(vecs), serial.Len())
			for i := range vecs {
				assert.Equal(t, serial.Row(i), par.Row(i))
			}

			for i := range vecs {
				assert.Equal(t, 0.0, acc.DistIndexed(i, i, vecs, serial), "%s i==j", m)
				for j := range vecs {
					want := m.Dist(vecs[i], vecs[j])
					assert.InDelta(t, want, acc.DistIndexed(i, j, vecs, serial), 1e-9)
					assert.InDelta(t, want, acc.DistQuery(i, vecs[j], acc.QueryInfo(vecs[j]), vecs, serial), 1e-9)
					assert.InDelta(t, want, IndexedDist(m, i, j, vecs, serial), 1e-9)
				}
			}
			// 元の 0 番目とその複製は距離 0
			last := len(vecs) - 2
			assert.Equal(t, 0.0, acc.DistIndexed(0, last, vecs, serial))
		}
	}
}

func TestCosineValues(t *testing.T) {
	c := Cosine{}
	x := vector.NewDense([]float64{1, 0})
	y := vector.NewDense([]float64{0, 2})
	z := vector.Zeros(2)

	assert.Equal(t, 0.0, c.Dist(x, vector.NewDense([]float64{3, 0})))
	assert.InDelta(t, 1, c.Dist(x, vector.NewDense([]float64{-1, 0})), 1e-12)
	assert.InDelta(t, math.Sqrt2/2, c.Dist(x, y), 1e-12)
	assert.InDelta(t, 0.5, c.Dist(x, z), 1e-12)
	assert.Equal(t, 0.0, c.Dist(z, z))
	assert.False(t, c.IsIndiscernible())
	assert.Equal(t, 1.0, c.MetricBound())
}

func TestHelpersWithoutAcceleration(t *testing.T) {
	vecs := []vector.Vec{vector.NewDense([]float64{0, 0}), vector.NewDense([]float64{3, 4})}
	m := Manhattan{}
	assert.Nil(t, BuildCache(m, vecs, 1))
	assert.Nil(t, QueryInfo(m, vecs[0]))
	assert.Equal(t, 7.0, IndexedDist(m, 0, 1, vecs, nil))
	assert.Equal(t, 7.0, QueryDist(m, 1, vecs[0], nil, vecs, nil))
	assert.Equal(t, 7.0, InfoDist(m, vecs[0], nil, vecs[1], nil))

	e := Euclidean{}
	cache := BuildCache(e, vecs, 1)
	require.NotNil(t, cache)
	assert.Equal(t, 5.0, QueryDist(e, 1, vecs[0], QueryInfo(e, vecs[0]), vecs, cache))
	assert.Equal(t, 5.0, InfoDist(e, vecs[0], QueryInfo(e, vecs[0]), vecs[1], QueryInfo(e, vecs[1])))
}

func TestBuildCacheWorkers(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	vecs := randomVecs(rng, 3*parallelCacheMin, 6, false)
	serial := BuildCache(Euclidean{}, vecs, 1)
	for _, workers := range []int{2, 3, 16} {
		par := BuildCache(Euclidean{}, vecs, workers)
		require.Equal(t, serial.Len(), par.Len())
		for i := range vecs {
			require.Equal(t, serial.Row(i), par.Row(i), "workers=%d row %d", workers, i)
		}
	}

	c := serial.Clone()
	c.Truncate(10)
	assert.Equal(t, 10, c.Len())
	c.Append([]float64{42})
	assert.Equal(t, []float64{42}, c.Row(10))
	assert.Equal(t, serial.Row(10), BuildCache(Euclidean{}, vecs, 1).Row(10))
}

func recoverErr(fn func()) (err error) {
	defer errors.Recover(&err, "test")
	fn()
	return nil
}

func TestDimensionMismatchPanics(t *testing.T) {
	a := vector.NewDense([]float64{1, 2})
	b := vector.NewDense([]float64{1, 2, 3})
	for _, m := range []Metric{Euclidean{}, Cosine{}, Manhattan{}, Chebyshev{}, Minkowski{P: 2}} {
		err := recoverErr(func() { m.Dist(a, b) })
		var dim *errors.DimensionError
		assert.True(t, errors.As(err, &dim), m.String())
	}

	e := Euclidean{}
	err := recoverErr(func() { e.DistInfo(a, e.QueryInfo(a), b, e.QueryInfo(b)) })
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))
}

func TestTrainableLifecycle(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	vecs := randomVecs(rng, 50, 3, false)

	for _, m := range []Trainer{NewNormalizedEuclidean(), NewMahalanobis()} {
		t.Run(m.String(), func(t *testing.T) {
			assert.True(t, IsTrainable(m))
			assert.True(t, m.NeedsTraining())
			assert.Error(t, EnsureTrained(m, "Dist"))

			err := recoverErr(func() { m.Dist(vecs[0], vecs[1]) })
			var nt *errors.NotTrainedError
			require.True(t, errors.As(err, &nt))

			clone := m.Clone()
			require.NoError(t, Train(m, vecs, false))
			assert.False(t, m.NeedsTraining())
			assert.NoError(t, EnsureTrained(m, "Dist"))
			assert.True(t, clone.NeedsTraining(), "clone taken before training stays untrained")

			trainedClone := m.Clone()
			assert.Equal(t, m.Dist(vecs[0], vecs[1]), trainedClone.Dist(vecs[0], vecs[1]))

			// 再学習は状態を置き換える
			scaled := make([]vector.Vec, len(vecs))
			for i, v := range vecs {
				vv := v.Clone().(*vector.Dense)
				for j := range vv.Values() {
					vv.Values()[j] *= 10
				}
				scaled[i] = vv
			}
			before := m.Dist(vecs[0], vecs[1])
			require.NoError(t, Train(m, scaled, false))
			assert.NotEqual(t, before, m.Dist(vecs[0], vecs[1]))
			assert.Equal(t, before, trainedClone.Dist(vecs[0], vecs[1]))

			err = recoverErr(func() { m.Dist(vector.Zeros(2), vector.Zeros(2)) })
			var dim *errors.DimensionError
			assert.True(t, errors.As(err, &dim))
		})
	}
	assert.False(t, IsTrainable(Euclidean{}))
	assert.NoError(t, Train(Euclidean{}, vecs, false))
}

func TestMahalanobis(t *testing.T) {
	// 各軸の分散が異なる独立データでは正規化ユークリッドとほぼ一致する
	rng := rand.New(rand.NewPCG(7, 8))
	vecs := make([]vector.Vec, 2000)
	for i := range vecs {
		vecs[i] = vector.NewDense([]float64{rng.NormFloat64(), 5 * rng.NormFloat64()})
	}
	m := NewMahalanobis()
	require.NoError(t, m.Train(vecs, false))
	assert.Equal(t, 0.0, m.Ridge())

	a := vector.NewDense([]float64{0, 0})
	assert.InDelta(t, 1, m.Dist(a, vector.NewDense([]float64{1, 0})), 0.1)
	assert.InDelta(t, 1, m.Dist(a, vector.NewDense([]float64{0, 5})), 0.1)
}

func TestMahalanobisSingular(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	// 2次元目が1次元目の定数倍なので共分散は特異
	vecs := []vector.Vec{
		vector.NewDense([]float64{1, 2}),
		vector.NewDense([]float64{2, 4}),
		vector.NewDense([]float64{3, 6}),
	}
	m := NewMahalanobis()
	require.NoError(t, m.Train(vecs, false))
	assert.Greater(t, m.Ridge(), 0.0)
	require.NotEmpty(t, warnings)
	var w *errors.SingularCovarianceWarning
	assert.True(t, errors.As(warnings[0], &w))
	assert.False(t, math.IsNaN(m.Dist(vecs[0], vecs[2])))

	single := NewMahalanobis()
	require.NoError(t, single.Train(vecs[:1], false))
	assert.Equal(t, 0.0, single.Dist(vecs[0], vecs[0]))
}

func TestMahalanobisNearCollinear(t *testing.T) {
	errors.SetWarningHandler(func(error) {})

	// 3軸がほぼ一直線上に並ぶので共分散の条件数は 1e14 を超える
	rng := rand.New(rand.NewPCG(9, 10))
	vecs := make([]vector.Vec, 1500)
	for i := range vecs {
		x := rng.NormFloat64()
		vecs[i] = vector.NewDense([]float64{
			x,
			x + 1e-7*rng.NormFloat64(),
			2*x + 1e-7*rng.NormFloat64(),
		})
	}
	m := NewMahalanobis()
	require.NoError(t, m.Train(vecs, false))
	assert.Greater(t, m.Ridge(), 0.0)
	assert.LessOrEqual(t, m.Cond(), maxCond)

	for i := 0; i < 5000; i++ {
		a, b, c := vecs[rng.IntN(len(vecs))], vecs[rng.IntN(len(vecs))], vecs[rng.IntN(len(vecs))]
		ab, bc, ac := m.Dist(a, b), m.Dist(b, c), m.Dist(a, c)
		require.LessOrEqual(t, ac, ab+bc+1e-9*(1+ab+bc), "triangle %d", i)
		require.Equal(t, ab, m.Dist(b, a))
	}
	assert.Equal(t, 0.0, m.Dist(vecs[0], vecs[0]))
}

func TestMinkowskiValidation(t *testing.T) {
	_, err := NewMinkowski(0.5)
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
	_, err = NewMinkowski(math.NaN())
	assert.Error(t, err)

	err = recoverErr(func() { Minkowski{P: 0.5}.Dist(vector.Zeros(1), vector.Zeros(1)) })
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "Minkowski(p=3)", Minkowski{P: 3}.String())
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"euclidean", "Euclidean"},
		{" L2 ", "Euclidean"},
		{"cosine", "Cosine"},
		{"manhattan", "Manhattan"},
		{"chebyshev", "Chebyshev"},
		{"minkowski", "Minkowski(p=3)"},
		{"minkowski:1.5", "Minkowski(p=1.5)"},
		{"normalized_euclidean", "NormalizedEuclidean"},
		{"mahalanobis", "Mahalanobis"},
	}
	for _, tt := range tests {
		m, err := ByName(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, m.String())
	}

	for _, bad := range []string{"hamming", "minkowski:x", "minkowski:0.5", "minkowskix"} {
		m, err := ByName(bad)
		assert.Error(t, err, bad)
		assert.Nil(t, m)
	}
	assert.NotEmpty(t, Names())
}

func TestCache(t *testing.T) {
	c := NewCache(2, 2)
	copy(c.Row(1), []float64{3, 4})
	c.Append([]float64{5, 6})
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Stride())
	assert.Equal(t, []float64{5, 6}, c.Row(2))

	cl := c.Clone()
	cl.Row(1)[0] = 100
	assert.Equal(t, 3.0, c.Row(1)[0])
	assert.Panics(t, func() { c.Append([]float64{1}) })

	var nilCache *Cache
	assert.Nil(t, nilCache.Clone())
	assert.Equal(t, 0, nilCache.Len())

	// 行への append は隣の行を上書きしない
	row := c.Row(0)
	_ = append(row, 42)
	assert.Equal(t, 3.0, c.Row(1)[0])
}
