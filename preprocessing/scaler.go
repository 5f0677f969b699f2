// Package preprocessing はベクトル集合に対する前処理を提供します。
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scigo-neighbors/core/model"
	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// StandardScaler はscikit-learn互換の標準化スケーラー
// ベクトルの各次元を平均0、標準偏差1に変換する
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各次元の平均値
	Mean []float64

	// Scale は各次元の標準偏差（0に近い場合は1）
	Scale []float64

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// パラメータ:
//   - withMean: 平均を引くかどうか
//   - withStd: 標準偏差で割るかどうか
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	err := scaler.Fit(vecs)
//	scaled, err := scaler.Transform(vecs[0])
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit はベクトル集合から各次元の平均と母標準偏差を計算する。
// 再学習は以前の統計量を置き換える。
func (s *StandardScaler) Fit(vecs []vector.Vec) error {
	if len(vecs) == 0 || vecs[0].Len() == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	d := vecs[0].Len()
	for i, v := range vecs {
		if v.Len() != d {
			return errors.NewDimensionError("StandardScaler.Fit", d, v.Len(), 1)
		}
		if err := vector.CheckFinite("StandardScaler.Fit", v, i); err != nil {
			return err
		}
	}

	X := vector.ToMatrix(vecs)
	mean := make([]float64, d)
	scale := make([]float64, d)
	col := make([]float64, len(vecs))
	for j := 0; j < d; j++ {
		mat.Col(col, j, X)
		m, std := stat.PopMeanStdDev(col, nil)
		if s.WithMean {
			mean[j] = m
		}
		scale[j] = 1.0
		if s.WithStd && std >= 1e-8 {
			scale[j] = std
		}
	}

	s.Mean = mean
	s.Scale = scale
	s.SetFitted(d)
	return nil
}

// Transform は学習済みの統計情報を使ってベクトルを標準化する。
// 戻り値は常に密ベクトル。
func (s *StandardScaler) Transform(v vector.Vec) (vector.Vec, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotTrainedError("StandardScaler", "Transform")
	}
	if v.Len() != s.NFeatures() {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures(), v.Len(), 1)
	}

	out := make([]float64, v.Len())
	for j := range out {
		out[j] = -s.Mean[j] / s.Scale[j]
	}
	v.Do(func(j int, x float64) {
		out[j] = (x - s.Mean[j]) / s.Scale[j]
	})
	return vector.NewDense(out), nil
}

// InverseTransform は標準化されたベクトルを元のスケールに戻す
func (s *StandardScaler) InverseTransform(v vector.Vec) (vector.Vec, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotTrainedError("StandardScaler", "InverseTransform")
	}
	if v.Len() != s.NFeatures() {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures(), v.Len(), 1)
	}

	out := make([]float64, v.Len())
	copy(out, s.Mean)
	v.Do(func(j int, x float64) {
		out[j] = x*s.Scale[j] + s.Mean[j]
	})
	return vector.NewDense(out), nil
}

// Clone は学習状態を含めた独立したコピーを返す
func (s *StandardScaler) Clone() *StandardScaler {
	c := *s
	c.Mean = append([]float64(nil), s.Mean...)
	c.Scale = append([]float64(nil), s.Scale...)
	return &c
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures())
}

var _ model.Transformer = (*StandardScaler)(nil)

// scaledDiffSquared は Σ((a_j-b_j)/scale_j)² を返す。平均は差を取ると消えるので使わない。
func (s *StandardScaler) scaledDiffSquared(a, b vector.Vec) float64 {
	sum := 0.0
	diff := vector.Diff(a, b).Values()
	for j, d := range diff {
		z := d / s.Scale[j]
		sum += z * z
	}
	return sum
}

// ScaledDistance は標準化後の空間でのユークリッド距離を返す。
// 学習済みで次元が一致していることは呼び出し側が保証する。
func (s *StandardScaler) ScaledDistance(a, b vector.Vec) float64 {
	return math.Sqrt(s.scaledDiffSquared(a, b))
}
