package distance

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scigo-neighbors/core/model"
	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/log"
)

const (
	// 対角成分に加える正則化量の初期値（平均分散に対する比）
	ridgeStart = 1e-10
	ridgeSteps = 12
	// 条件数がこれを超える共分散も特異として正則化する
	maxCond = 1e10
)

// Mahalanobis is sqrt((a-b)ᵀ Σ⁻¹ (a-b)) where Σ is the sample covariance of
// the training vectors. The distance is evaluated as ‖L⁻¹(a-b)‖ with Σ = LLᵀ,
// so it is a Euclidean norm of a linear map. A singular or ill-conditioned
// covariance is regularized by adding a small multiple of the identity, and a
// SingularCovarianceWarning is raised.
type Mahalanobis struct {
	model.BaseEstimator
	lower *mat.TriDense // Cholesky factor L of the (regularized) covariance
	cond  float64
	ridge float64
}

// NewMahalanobis returns an untrained Mahalanobis metric.
func NewMahalanobis() *Mahalanobis {
	return &Mahalanobis{}
}

// Train estimates the covariance of vecs and stores its Cholesky factor.
func (m *Mahalanobis) Train(vecs []vector.Vec, _ bool) error {
	if len(vecs) == 0 || vecs[0].Len() == 0 {
		return errors.NewModelError("Mahalanobis.Train", "empty data", errors.ErrEmptyData)
	}
	d := vecs[0].Len()
	for i, v := range vecs {
		if v.Len() != d {
			return errors.NewDimensionError("Mahalanobis.Train", d, v.Len(), 1)
		}
		if err := vector.CheckFinite("Mahalanobis.Train", v, i); err != nil {
			return err
		}
	}

	cov := mat.NewSymDense(d, nil)
	if len(vecs) > 1 {
		stat.CovarianceMatrix(cov, vector.ToMatrix(vecs), nil)
	}

	var chol mat.Cholesky
	ridge := 0.0
	if !chol.Factorize(cov) || chol.Cond() > maxCond {
		scale := math.Max(mat.Trace(cov)/float64(d), 1)
		ridge = ridgeStart * scale
		regularized := mat.NewSymDense(d, nil)
		ok := false
		for step := 0; step < ridgeSteps; step++ {
			regularized.CopySym(cov)
			for i := 0; i < d; i++ {
				regularized.SetSym(i, i, cov.At(i, i)+ridge)
			}
			if chol.Factorize(regularized) && chol.Cond() <= maxCond {
				ok = true
				break
			}
			ridge *= 10
		}
		if !ok {
			return errors.NewNumericalInstabilityError("Mahalanobis.Train", []float64{ridge}, -1)
		}
		errors.Warn(errors.NewSingularCovarianceWarning(m.String(), ridge))
	}

	lower := mat.NewTriDense(d, mat.Lower, nil)
	chol.LTo(lower)

	m.lower = lower
	m.cond = chol.Cond()
	m.ridge = ridge
	m.SetFitted(d)

	log.GetLoggerWithName("distance").Debug("metric trained",
		log.MetricNameKey, m.String(),
		log.OperationKey, log.OperationTrain,
		log.SamplesKey, len(vecs),
		log.FeaturesKey, d,
		"ridge", ridge,
	)
	return nil
}

func (m *Mahalanobis) IsTrained() bool { return m.IsFitted() }

// Ridge returns the diagonal regularization applied during training, 0 if none.
func (m *Mahalanobis) Ridge() float64 { return m.ridge }

// Cond returns the condition number estimate of the covariance used.
func (m *Mahalanobis) Cond() float64 { return m.cond }

func (m *Mahalanobis) Dist(a, b vector.Vec) float64 {
	if !m.IsFitted() {
		panic(errors.NewNotTrainedError(m.String(), "Dist"))
	}
	CheckDims("Mahalanobis.Dist", a, b)
	if a.Len() != m.NFeatures() {
		panic(errors.NewDimensionError("Mahalanobis.Dist", m.NFeatures(), a.Len(), 1))
	}
	// L y = a-b を前進代入で解く（Diff は新しいスライスを返す）
	y := vector.Diff(a, b).Values()
	blas64.Trsv(blas.NoTrans, m.lower.RawTriangular(), blas64.Vector{N: len(y), Data: y, Inc: 1})
	return floats.Norm(y, 2)
}

func (m *Mahalanobis) IsSymmetric() bool          { return true }
func (m *Mahalanobis) IsSubadditive() bool        { return true }
func (m *Mahalanobis) IsIndiscernible() bool      { return true }
func (m *Mahalanobis) MetricBound() float64       { return math.Inf(1) }
func (m *Mahalanobis) SupportsAcceleration() bool { return false }
func (m *Mahalanobis) NeedsTraining() bool        { return !m.IsFitted() }
func (m *Mahalanobis) String() string             { return "Mahalanobis" }

func (m *Mahalanobis) Clone() Metric {
	c := &Mahalanobis{BaseEstimator: m.BaseEstimator, cond: m.cond, ridge: m.ridge}
	if m.lower != nil {
		n, _ := m.lower.Triangle()
		c.lower = mat.NewTriDense(n, mat.Lower, nil)
		c.lower.Copy(m.lower)
	}
	return c
}
