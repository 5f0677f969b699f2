package distance

import (
	"math"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
)

// cancellationTol is the relative size below which an expanded squared
// distance is considered dominated by rounding and recomputed directly.
const cancellationTol = 1e-6

// Euclidean is the L2 distance. Its cache row is the squared norm, which
// turns a distance into one dot product via ‖a-b‖² = ‖a‖² + ‖b‖² - 2a·b.
type Euclidean struct{}

// NewEuclidean returns the Euclidean metric.
func NewEuclidean() Euclidean { return Euclidean{} }

func (Euclidean) Dist(a, b vector.Vec) float64 {
	CheckDims("Euclidean.Dist", a, b)
	return vector.Distance(a, b, 2)
}

func (Euclidean) IsSymmetric() bool          { return true }
func (Euclidean) IsSubadditive() bool        { return true }
func (Euclidean) IsIndiscernible() bool      { return true }
func (Euclidean) MetricBound() float64       { return math.Inf(1) }
func (Euclidean) SupportsAcceleration() bool { return true }
func (Euclidean) NeedsTraining() bool        { return false }
func (e Euclidean) Clone() Metric            { return e }
func (Euclidean) String() string             { return "Euclidean" }

func (Euclidean) AccelerationCache(vecs []vector.Vec, workers int) *Cache {
	return buildCache(vecs, 1, workers, func(v vector.Vec, row []float64) {
		row[0] = vector.SquaredNorm(v)
	})
}

func (Euclidean) QueryInfo(v vector.Vec) []float64 {
	return []float64{vector.SquaredNorm(v)}
}

func (Euclidean) DistIndexed(i, j int, vecs []vector.Vec, cache *Cache) float64 {
	if i == j {
		return 0
	}
	return expandedEuclidean(vecs[i], cache.Row(i)[0], vecs[j], cache.Row(j)[0])
}

func (Euclidean) DistQuery(i int, q vector.Vec, qi []float64, vecs []vector.Vec, cache *Cache) float64 {
	return expandedEuclidean(vecs[i], cache.Row(i)[0], q, qi[0])
}

func (Euclidean) DistInfo(a vector.Vec, ai []float64, b vector.Vec, bi []float64) float64 {
	return expandedEuclidean(a, ai[0], b, bi[0])
}

func expandedEuclidean(a vector.Vec, na float64, b vector.Vec, nb float64) float64 {
	CheckDims("Euclidean.Dist", a, b)
	d2 := na + nb - 2*vector.Dot(a, b)
	if d2 <= cancellationTol*(na+nb) {
		// 近い点では桁落ちするので直接計算する
		return vector.Distance(a, b, 2)
	}
	return math.Sqrt(d2)
}
