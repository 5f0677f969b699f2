package distance

import (
	"math"

	"github.com/YuminosukeSato/scigo-neighbors/core/model"
	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/log"
	"github.com/YuminosukeSato/scigo-neighbors/preprocessing"
)

// NormalizedEuclidean is the Euclidean distance after dividing every
// dimension by its standard deviation in the training sample. Constant
// dimensions are left unscaled.
type NormalizedEuclidean struct {
	model.BaseEstimator
	scaler *preprocessing.StandardScaler
}

// NewNormalizedEuclidean returns an untrained normalized Euclidean metric.
func NewNormalizedEuclidean() *NormalizedEuclidean {
	return &NormalizedEuclidean{}
}

// Train fits the per-dimension standard deviations on vecs.
func (m *NormalizedEuclidean) Train(vecs []vector.Vec, _ bool) error {
	scaler := preprocessing.NewStandardScaler(false, true)
	if err := scaler.Fit(vecs); err != nil {
		return errors.Wrap(err, "NormalizedEuclidean.Train")
	}
	m.scaler = scaler
	m.SetFitted(scaler.NFeatures())

	log.GetLoggerWithName("distance").Debug("metric trained",
		log.MetricNameKey, m.String(),
		log.OperationKey, log.OperationTrain,
		log.SamplesKey, len(vecs),
		log.FeaturesKey, scaler.NFeatures(),
	)
	return nil
}

func (m *NormalizedEuclidean) IsTrained() bool { return m.IsFitted() }

// Scale returns the trained per-dimension standard deviations.
func (m *NormalizedEuclidean) Scale() []float64 {
	if m.scaler == nil {
		return nil
	}
	return m.scaler.Scale
}

func (m *NormalizedEuclidean) Dist(a, b vector.Vec) float64 {
	if !m.IsFitted() {
		panic(errors.NewNotTrainedError(m.String(), "Dist"))
	}
	CheckDims("NormalizedEuclidean.Dist", a, b)
	if a.Len() != m.NFeatures() {
		panic(errors.NewDimensionError("NormalizedEuclidean.Dist", m.NFeatures(), a.Len(), 1))
	}
	return m.scaler.ScaledDistance(a, b)
}

func (m *NormalizedEuclidean) IsSymmetric() bool          { return true }
func (m *NormalizedEuclidean) IsSubadditive() bool        { return true }
func (m *NormalizedEuclidean) IsIndiscernible() bool      { return true }
func (m *NormalizedEuclidean) MetricBound() float64       { return math.Inf(1) }
func (m *NormalizedEuclidean) SupportsAcceleration() bool { return false }
func (m *NormalizedEuclidean) NeedsTraining() bool        { return !m.IsFitted() }
func (m *NormalizedEuclidean) String() string             { return "NormalizedEuclidean" }

func (m *NormalizedEuclidean) Clone() Metric {
	c := &NormalizedEuclidean{BaseEstimator: m.BaseEstimator}
	if m.scaler != nil {
		c.scaler = m.scaler.Clone()
	}
	return c
}
