package vector

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// stored は v が保持する要素を返す。密ベクトルの場合 idx は nil で、
// vals の位置がそのままインデックスになる。
func stored(v Vec) (idx []int, vals []float64) {
	switch t := v.(type) {
	case *Dense:
		return nil, t.data
	case *Sparse:
		return t.idx, t.val
	}
	if !v.IsSparse() {
		vals = make([]float64, 0, v.Len())
		v.Do(func(_ int, x float64) { vals = append(vals, x) })
		return nil, vals
	}
	idx = make([]int, 0, v.NNZ())
	vals = make([]float64, 0, v.NNZ())
	v.Do(func(i int, x float64) {
		idx = append(idx, i)
		vals = append(vals, x)
	})
	return idx, vals
}

// Merge は a と b の保持要素の和集合をインデックス昇順に走査し、
// 各位置の値の組を fn に渡す。どちらにも保持されていない位置は両方0なので渡さない。
func Merge(a, b Vec, fn func(x, y float64)) {
	ai, av := stored(a)
	bi, bv := stored(b)
	at := func(k int) int {
		if ai == nil {
			return k
		}
		return ai[k]
	}
	bt := func(k int) int {
		if bi == nil {
			return k
		}
		return bi[k]
	}

	p, q := 0, 0
	for p < len(av) && q < len(bv) {
		i, j := at(p), bt(q)
		switch {
		case i == j:
			fn(av[p], bv[q])
			p++
			q++
		case i < j:
			fn(av[p], 0)
			p++
		default:
			fn(0, bv[q])
			q++
		}
	}
	for ; p < len(av); p++ {
		fn(av[p], 0)
	}
	for ; q < len(bv); q++ {
		fn(0, bv[q])
	}
}

// Dot は内積 a·b を返す。長さの検査は呼び出し側で行う。
func Dot(a, b Vec) float64 {
	ad, aok := a.(*Dense)
	bd, bok := b.(*Dense)
	if aok && bok {
		return floats.Dot(ad.data, bd.data)
	}
	// 疎ベクトル側だけを走査する
	if aok && b.IsSparse() {
		return sparseDot(b, ad.data)
	}
	if bok && a.IsSparse() {
		return sparseDot(a, bd.data)
	}
	sum := 0.0
	Merge(a, b, func(x, y float64) { sum += x * y })
	return sum
}

func sparseDot(s Vec, dense []float64) float64 {
	sum := 0.0
	s.Do(func(i int, v float64) { sum += v * dense[i] })
	return sum
}

// SquaredNorm は ‖v‖² を返す
func SquaredNorm(v Vec) float64 {
	if d, ok := v.(*Dense); ok {
		return floats.Dot(d.data, d.data)
	}
	sum := 0.0
	v.Do(func(_ int, x float64) { sum += x * x })
	return sum
}

// Norm は ‖v‖ を返す
func Norm(v Vec) float64 {
	return math.Sqrt(SquaredNorm(v))
}

// Distance は Lp 距離 ‖a-b‖_p を返す。p は1以上、または +Inf。
func Distance(a, b Vec, p float64) float64 {
	ad, aok := a.(*Dense)
	bd, bok := b.(*Dense)
	if aok && bok {
		return floats.Distance(ad.data, bd.data, p)
	}

	switch {
	case math.IsInf(p, 1):
		m := 0.0
		Merge(a, b, func(x, y float64) {
			if d := math.Abs(x - y); d > m {
				m = d
			}
		})
		return m
	case p == 1:
		sum := 0.0
		Merge(a, b, func(x, y float64) { sum += math.Abs(x - y) })
		return sum
	case p == 2:
		sum := 0.0
		Merge(a, b, func(x, y float64) {
			d := x - y
			sum += d * d
		})
		return math.Sqrt(sum)
	default:
		sum := 0.0
		Merge(a, b, func(x, y float64) { sum += math.Pow(math.Abs(x-y), p) })
		return math.Pow(sum, 1/p)
	}
}

// Diff は a-b を密ベクトルとして返す
func Diff(a, b Vec) *Dense {
	out := make([]float64, a.Len())
	ad, aok := a.(*Dense)
	bd, bok := b.(*Dense)
	if aok && bok {
		floats.SubTo(out, ad.data, bd.data)
		return NewDense(out)
	}
	a.Do(func(i int, v float64) { out[i] += v })
	b.Do(func(i int, v float64) { out[i] -= v })
	return NewDense(out)
}

// Mean は idx が指すベクトルの重心を返す。idx が nil の場合は全ベクトルを使う。
// 対象が空の場合は nil を返す。
func Mean(vecs []Vec, idx []int) *Dense {
	n := len(idx)
	if idx == nil {
		n = len(vecs)
	}
	if n == 0 {
		return nil
	}
	at := func(k int) Vec {
		if idx == nil {
			return vecs[k]
		}
		return vecs[idx[k]]
	}

	sum := make([]float64, at(0).Len())
	for k := 0; k < n; k++ {
		v := at(k)
		if d, ok := v.(*Dense); ok {
			floats.Add(sum, d.data)
			continue
		}
		v.Do(func(i int, x float64) { sum[i] += x })
	}
	floats.Scale(1/float64(n), sum)
	return NewDense(sum)
}
