// Package distance provides the distance metrics used by the neighbor search
// collections.
//
// Every metric implements Metric. A metric may additionally be accelerable
// (Accelerator), reusing per-vector cached summaries such as norms, and may be
// trainable (Trainer), fitting parameters from a data sample before first use.
// Callers ask for these capabilities through SupportsAcceleration and
// NeedsTraining and go through the package helpers below, which are the only
// place the extension interfaces are resolved.
//
// Distance functions are hot paths and return a bare float64. Misuse (vectors
// of different length, an untrained trainable metric) panics with the typed
// error from pkg/errors; the collections validate their inputs eagerly and
// recover those panics at their API boundary.
package distance

import (
	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// Metric is a distance function together with its declared algebraic properties.
type Metric interface {
	// Dist returns the distance between a and b, which must have equal length.
	Dist(a, b vector.Vec) float64

	// IsSymmetric reports whether Dist(a, b) == Dist(b, a).
	IsSymmetric() bool
	// IsSubadditive reports whether the triangle inequality holds.
	IsSubadditive() bool
	// IsIndiscernible reports whether Dist(a, b) == 0 implies a == b.
	IsIndiscernible() bool
	// MetricBound returns the largest value Dist can take, +Inf if unbounded.
	MetricBound() float64

	// SupportsAcceleration reports whether the metric implements Accelerator.
	SupportsAcceleration() bool
	// NeedsTraining reports whether the metric must be trained before use.
	// It is false for metrics that are not trainable and for trained ones.
	NeedsTraining() bool

	// Clone returns an independent copy, including any trained state.
	Clone() Metric
	String() string
}

// Accelerator is implemented by metrics that can reuse cached per-vector
// summaries. Every method returns the same value as Dist on the underlying
// vectors, up to floating-point rounding.
type Accelerator interface {
	Metric

	// AccelerationCache computes one cache row per vector. With workers above
	// one the rows are computed in contiguous blocks on that many goroutines.
	AccelerationCache(vecs []vector.Vec, workers int) *Cache
	// QueryInfo computes the cache row of a single vector.
	QueryInfo(v vector.Vec) []float64

	// DistIndexed returns the distance between vecs[i] and vecs[j].
	DistIndexed(i, j int, vecs []vector.Vec, cache *Cache) float64
	// DistQuery returns the distance between vecs[i] and q whose row is qi.
	DistQuery(i int, q vector.Vec, qi []float64, vecs []vector.Vec, cache *Cache) float64
	// DistInfo returns the distance between two vectors given their rows.
	DistInfo(a vector.Vec, ai []float64, b vector.Vec, bi []float64) float64
}

// Trainer is implemented by metrics whose parameters are fitted from data.
type Trainer interface {
	Metric

	// Train fits the metric on vecs. Re-training replaces the previous state.
	Train(vecs []vector.Vec, parallel bool) error
	// IsTrained reports whether Train has succeeded.
	IsTrained() bool
}

func accelerator(m Metric) (Accelerator, bool) {
	if !m.SupportsAcceleration() {
		return nil, false
	}
	a, ok := m.(Accelerator)
	return a, ok
}

// IsTrainable reports whether m has a training step at all.
func IsTrainable(m Metric) bool {
	_, ok := m.(Trainer)
	return ok
}

// Train trains m on vecs if it is trainable. It is a no-op otherwise.
func Train(m Metric, vecs []vector.Vec, parallel bool) error {
	if t, ok := m.(Trainer); ok {
		return t.Train(vecs, parallel)
	}
	return nil
}

// EnsureTrained returns a *NotTrainedError if m still needs training.
func EnsureTrained(m Metric, method string) error {
	if m.NeedsTraining() {
		return errors.NewNotTrainedError(m.String(), method)
	}
	return nil
}

// BuildCache returns the acceleration cache of vecs, or nil if m is not accelerable.
func BuildCache(m Metric, vecs []vector.Vec, workers int) *Cache {
	if a, ok := accelerator(m); ok {
		return a.AccelerationCache(vecs, workers)
	}
	return nil
}

// QueryInfo returns the cache row of v, or nil if m is not accelerable.
func QueryInfo(m Metric, v vector.Vec) []float64 {
	if a, ok := accelerator(m); ok {
		return a.QueryInfo(v)
	}
	return nil
}

// IndexedDist returns the distance between vecs[i] and vecs[j], using the
// cache when there is one.
func IndexedDist(m Metric, i, j int, vecs []vector.Vec, cache *Cache) float64 {
	if cache != nil {
		if a, ok := accelerator(m); ok {
			return a.DistIndexed(i, j, vecs, cache)
		}
	}
	return m.Dist(vecs[i], vecs[j])
}

// QueryDist returns the distance between vecs[i] and q.
func QueryDist(m Metric, i int, q vector.Vec, qi []float64, vecs []vector.Vec, cache *Cache) float64 {
	if cache != nil && qi != nil {
		if a, ok := accelerator(m); ok {
			return a.DistQuery(i, q, qi, vecs, cache)
		}
	}
	return m.Dist(vecs[i], q)
}

// InfoDist returns the distance between a and b given their optional rows.
func InfoDist(m Metric, a vector.Vec, ai []float64, b vector.Vec, bi []float64) float64 {
	if ai != nil && bi != nil {
		if acc, ok := accelerator(m); ok {
			return acc.DistInfo(a, ai, b, bi)
		}
	}
	return m.Dist(a, b)
}

// CheckDims panics with a *DimensionError if a and b differ in length.
func CheckDims(op string, a, b vector.Vec) {
	if !vector.SameLength(a, b) {
		panic(errors.NewDimensionError(op, a.Len(), b.Len(), 1))
	}
}
