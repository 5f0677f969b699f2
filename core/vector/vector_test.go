package vector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

func mustSparse(t *testing.T, n int, idx []int, val []float64) *Sparse {
	t.Helper()
	s, err := NewSparse(n, idx, val)
	require.NoError(t, err)
	return s
}

func TestNewSparse_Validation(t *testing.T) {
	tests := []struct {
		name string
		n    int
		idx  []int
		val  []float64
	}{
		{"length mismatch", 4, []int{0, 1}, []float64{1}},
		{"out of range", 4, []int{0, 4}, []float64{1, 2}},
		{"negative index", 4, []int{-1}, []float64{1}},
		{"unsorted", 4, []int{2, 1}, []float64{1, 2}},
		{"duplicate", 4, []int{1, 1}, []float64{1, 2}},
		{"negative length", -1, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSparse(tt.n, tt.idx, tt.val)
			assert.Error(t, err)
		})
	}

	_, err := NewSparse(4, []int{0, 1}, []float64{1})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestSparseAccess(t *testing.T) {
	s := mustSparse(t, 5, []int{1, 3}, []float64{2, -4})
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 2, s.NNZ())
	assert.True(t, s.IsSparse())
	assert.Equal(t, 0.0, s.At(0))
	assert.Equal(t, 2.0, s.At(1))
	assert.Equal(t, -4.0, s.At(3))

	var seen []int
	s.Do(func(i int, _ float64) { seen = append(seen, i) })
	assert.Equal(t, []int{1, 3}, seen)
}

func TestClone_Independent(t *testing.T) {
	d := NewDense([]float64{1, 2, 3})
	c := d.Clone().(*Dense)
	c.SetAt(0, 100)
	assert.Equal(t, 1.0, d.At(0))

	s := mustSparse(t, 3, []int{2}, []float64{5})
	sc := s.Clone().(*Sparse)
	sc.Values()[0] = 7
	assert.Equal(t, 5.0, s.At(2))
}

func TestDot_MixedRepresentations(t *testing.T) {
	a := NewDense([]float64{1, 0, 2, 0, 3})
	b := NewDense([]float64{0, 4, 1, 0, 2})
	as := mustSparse(t, 5, []int{0, 2, 4}, []float64{1, 2, 3})
	bs := mustSparse(t, 5, []int{1, 2, 4}, []float64{4, 1, 2})

	want := 8.0
	assert.Equal(t, want, Dot(a, b))
	assert.Equal(t, want, Dot(as, b))
	assert.Equal(t, want, Dot(a, bs))
	assert.Equal(t, want, Dot(as, bs))
	assert.Equal(t, 14.0, SquaredNorm(as))
	assert.InDelta(t, math.Sqrt(14), Norm(a), 1e-15)
}

func TestDistance_MixedRepresentations(t *testing.T) {
	a := NewDense([]float64{1, 0, 2, 0, 3})
	b := NewDense([]float64{0, 4, 1, 0, 2})
	as := mustSparse(t, 5, []int{0, 2, 4}, []float64{1, 2, 3})
	bs := mustSparse(t, 5, []int{1, 2, 4}, []float64{4, 1, 2})

	tests := []struct {
		p    float64
		want float64
	}{
		{1, 7},
		{2, math.Sqrt(19)},
		{3, math.Pow(1+64+1+1, 1.0/3)},
		{math.Inf(1), 4},
	}
	for _, tt := range tests {
		for _, pair := range [][2]Vec{{a, b}, {as, b}, {a, bs}, {as, bs}} {
			assert.InDelta(t, tt.want, Distance(pair[0], pair[1], tt.p), 1e-12, "p=%v", tt.p)
		}
	}
}

func TestDiffAndMean(t *testing.T) {
	a := NewDense([]float64{1, 2})
	s := mustSparse(t, 2, []int{1}, []float64{4})

	assert.Equal(t, []float64{1, -2}, Diff(a, s).Values())
	assert.Equal(t, []float64{-1, 2}, Diff(s, a).Values())

	vecs := []Vec{a, s, NewDense([]float64{5, 0})}
	assert.Equal(t, []float64{2, 2}, Mean(vecs, nil).Values())
	assert.Equal(t, []float64{3, 1}, Mean(vecs, []int{0, 2}).Values())
	assert.Nil(t, Mean(vecs, []int{}))
}

func TestMatrixBridge(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	vecs := FromMatrix(m)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float64{3, 4}, vecs[1].(*Dense).Values())

	// FromMatrix copies rows
	m.Set(1, 0, 100)
	assert.Equal(t, 3.0, vecs[1].At(0))

	back := ToMatrix(vecs)
	assert.True(t, mat.Equal(back, mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})))
	assert.Equal(t, 2, NewDense([]float64{1, 2}).VecDense().Len())
}

func TestToMatrix_WarnsOnSparse(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(func(error) {})

	s := mustSparse(t, 2, []int{0}, []float64{1})
	m := ToMatrix([]Vec{s, NewDense([]float64{0, 1})})
	assert.Equal(t, 1.0, m.At(0, 0))
	require.Len(t, warned, 1)
	var conv *errors.DataConversionWarning
	assert.True(t, errors.As(warned[0], &conv))
}

func TestCheckFinite(t *testing.T) {
	assert.NoError(t, CheckFinite("test", NewDense([]float64{1, 2}), 0))
	err := CheckFinite("test", NewDense([]float64{1, math.NaN()}), 3)
	var numErr *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &numErr))
	assert.Equal(t, 3, numErr.Index)
	assert.Error(t, CheckFinite("test", mustSparse(t, 4, []int{2}, []float64{math.Inf(1)}), -1))
}
