package distance

import (
	"math"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
)

// Cosine is the angular dissimilarity ‖a/‖a‖ - b/‖b‖‖ / 2, the half chord
// between the two vectors projected on the unit sphere. It ranges over
// [0, 1] and obeys the triangle inequality. Zero vectors project to the
// origin, so their distance to any non-zero vector is 1/2. Parallel vectors
// are at distance 0, hence the metric is not indiscernible.
//
// The cache row is the norm.
type Cosine struct{}

// NewCosine returns the cosine metric.
func NewCosine() Cosine { return Cosine{} }

func (Cosine) Dist(a, b vector.Vec) float64 {
	CheckDims("Cosine.Dist", a, b)
	return directCosine(a, vector.Norm(a), b, vector.Norm(b))
}

func (Cosine) IsSymmetric() bool          { return true }
func (Cosine) IsSubadditive() bool        { return true }
func (Cosine) IsIndiscernible() bool      { return false }
func (Cosine) MetricBound() float64       { return 1 }
func (Cosine) SupportsAcceleration() bool { return true }
func (Cosine) NeedsTraining() bool        { return false }
func (c Cosine) Clone() Metric            { return c }
func (Cosine) String() string             { return "Cosine" }

func (Cosine) AccelerationCache(vecs []vector.Vec, workers int) *Cache {
	return buildCache(vecs, 1, workers, func(v vector.Vec, row []float64) {
		row[0] = vector.Norm(v)
	})
}

func (Cosine) QueryInfo(v vector.Vec) []float64 {
	return []float64{vector.Norm(v)}
}

func (Cosine) DistIndexed(i, j int, vecs []vector.Vec, cache *Cache) float64 {
	if i == j {
		return 0
	}
	return expandedCosine(vecs[i], cache.Row(i)[0], vecs[j], cache.Row(j)[0])
}

func (Cosine) DistQuery(i int, q vector.Vec, qi []float64, vecs []vector.Vec, cache *Cache) float64 {
	return expandedCosine(vecs[i], cache.Row(i)[0], q, qi[0])
}

func (Cosine) DistInfo(a vector.Vec, ai []float64, b vector.Vec, bi []float64) float64 {
	return expandedCosine(a, ai[0], b, bi[0])
}

func unitScale(norm float64) float64 {
	if norm > 0 {
		return 1 / norm
	}
	return 0
}

func directCosine(a vector.Vec, na float64, b vector.Vec, nb float64) float64 {
	sa, sb := unitScale(na), unitScale(nb)
	sum := 0.0
	vector.Merge(a, b, func(x, y float64) {
		d := x*sa - y*sb
		sum += d * d
	})
	return math.Sqrt(sum) / 2
}

func expandedCosine(a vector.Vec, na float64, b vector.Vec, nb float64) float64 {
	CheckDims("Cosine.Dist", a, b)
	if na == 0 || nb == 0 {
		return directCosine(a, na, b, nb)
	}
	// ‖â‖ = ‖b̂‖ = 1
	u := 2 - 2*vector.Dot(a, b)/(na*nb)
	if u <= cancellationTol {
		return directCosine(a, na, b, nb)
	}
	return math.Sqrt(min(u, 4)) / 2
}
