// Package vector は近傍探索で扱う密ベクトルと疎ベクトルを提供します。
//
// コレクション内のベクトルは挿入順のインデックスで識別されます。
// 疎ベクトルは非ゼロ要素のみを保持し、それ以外の要素は0として扱われます。
package vector

import (
	"slices"

	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Vec は固定長の実数列を表すインターフェース
type Vec interface {
	// Len はベクトルの長さ（次元数）を返す
	Len() int
	// At はi番目の要素を返す
	At(i int) float64
	// NNZ は保持している要素数を返す（密ベクトルでは Len と同じ）
	NNZ() int
	// IsSparse は疎表現かどうかを返す
	IsSparse() bool
	// Do は保持している要素をインデックスの昇順で fn に渡す
	Do(fn func(i int, v float64))
	// Clone は独立したコピーを返す
	Clone() Vec
}

// Dense は連続した []float64 で値を保持する密ベクトル
type Dense struct {
	data []float64
}

// NewDense は data をそのまま保持する密ベクトルを作成する。data はコピーされない。
func NewDense(data []float64) *Dense {
	return &Dense{data: data}
}

// Zeros は長さ n のゼロベクトルを作成する
func Zeros(n int) *Dense {
	return &Dense{data: make([]float64, n)}
}

func (d *Dense) Len() int         { return len(d.data) }
func (d *Dense) At(i int) float64 { return d.data[i] }
func (d *Dense) NNZ() int         { return len(d.data) }
func (d *Dense) IsSparse() bool   { return false }

// Values は内部の値スライスを返す（コピーではない）
func (d *Dense) Values() []float64 { return d.data }

// SetAt はi番目の要素を v に設定する
func (d *Dense) SetAt(i int, v float64) { d.data[i] = v }

func (d *Dense) Do(fn func(i int, v float64)) {
	for i, v := range d.data {
		fn(i, v)
	}
}

func (d *Dense) Clone() Vec {
	return &Dense{data: slices.Clone(d.data)}
}

// VecDense は同じ領域を共有する gonum の *mat.VecDense を返す
func (d *Dense) VecDense() *mat.VecDense {
	if len(d.data) == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(len(d.data), d.data)
}

// Sparse は非ゼロ要素のインデックスと値だけを保持する疎ベクトル
type Sparse struct {
	n   int
	idx []int
	val []float64
}

// NewSparse は長さ n の疎ベクトルを作成する。
// idx は昇順かつ重複なしで [0, n) の範囲に収まっている必要がある。
// idx と val はコピーされない。
func NewSparse(n int, idx []int, val []float64) (*Sparse, error) {
	if n < 0 {
		return nil, errors.NewValidationError("n", "length must be non-negative", n)
	}
	if len(idx) != len(val) {
		return nil, errors.NewDimensionError("NewSparse", len(idx), len(val), 1)
	}
	for k, i := range idx {
		if i < 0 || i >= n {
			return nil, errors.NewValueError("NewSparse", "index out of range")
		}
		if k > 0 && idx[k-1] >= i {
			return nil, errors.NewValueError("NewSparse", "indices must be strictly increasing")
		}
	}
	return &Sparse{n: n, idx: idx, val: val}, nil
}

func (s *Sparse) Len() int       { return s.n }
func (s *Sparse) NNZ() int       { return len(s.idx) }
func (s *Sparse) IsSparse() bool { return true }

// Indices は保持しているインデックスを返す
func (s *Sparse) Indices() []int { return s.idx }

// Values は保持している値を返す
func (s *Sparse) Values() []float64 { return s.val }

func (s *Sparse) At(i int) float64 {
	if i < 0 || i >= s.n {
		panic(errors.NewValueError("Sparse.At", "index out of range"))
	}
	if k, found := slices.BinarySearch(s.idx, i); found {
		return s.val[k]
	}
	return 0
}

func (s *Sparse) Do(fn func(i int, v float64)) {
	for k, i := range s.idx {
		fn(i, s.val[k])
	}
}

func (s *Sparse) Clone() Vec {
	return &Sparse{n: s.n, idx: slices.Clone(s.idx), val: slices.Clone(s.val)}
}

// SameLength は a と b の長さが等しいかを返す
func SameLength(a, b Vec) bool {
	return a.Len() == b.Len()
}

// FromMatrix は行列の各行を密ベクトルとして返す
func FromMatrix(m mat.Matrix) []Vec {
	r, _ := m.Dims()
	out := make([]Vec, r)
	for i := 0; i < r; i++ {
		out[i] = NewDense(mat.Row(nil, i, m))
	}
	return out
}

// ToMatrix はベクトル群を n×d の行列に積み上げる。
// 疎ベクトルが含まれる場合は密に展開し、DataConversionWarning を出す。
func ToMatrix(vecs []Vec) *mat.Dense {
	if len(vecs) == 0 {
		return &mat.Dense{}
	}
	d := vecs[0].Len()
	if d == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(vecs), d, nil)
	sparse := false
	for r, v := range vecs {
		if v.IsSparse() {
			sparse = true
		}
		v.Do(func(i int, x float64) {
			m.Set(r, i, x)
		})
	}
	if sparse {
		errors.Warn(errors.NewDataConversionWarning("sparse", "dense", "statistics require a dense matrix"))
	}
	return m
}

// CheckFinite は保持している値に NaN や Inf が含まれていないかを検査する
func CheckFinite(op string, v Vec, index int) error {
	_, vals := stored(v)
	return errors.CheckNumericalStability(op, vals, index)
}
