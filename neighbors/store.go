package neighbors

import (
	"math"
	"slices"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// store is the vector list, metric and acceleration cache shared by both
// collections.
type store struct {
	vecs   []vector.Vec
	metric distance.Metric
	cache  *distance.Cache
	dim    int
}

// newStore validates vecs, clones the metric, trains the clone when it needs
// training and builds the acceleration cache, on up to workers goroutines
// when parallel is set.
func newStore(op string, vecs []vector.Vec, metric distance.Metric, parallel bool, workers int) (store, error) {
	if metric == nil {
		return store{}, errors.NewValidationError("metric", "must not be nil", nil)
	}
	dim := 0
	for i, v := range vecs {
		if v == nil {
			return store{}, errors.NewValidationError("vectors", "must not contain nil", i)
		}
		if i == 0 {
			dim = v.Len()
		} else if v.Len() != dim {
			return store{}, errors.NewDimensionError(op, dim, v.Len(), 1)
		}
		if err := vector.CheckFinite(op, v, i); err != nil {
			return store{}, err
		}
	}

	m := metric.Clone()
	if m.NeedsTraining() {
		if len(vecs) == 0 {
			// 学習データがないので未学習のまま使うことはできない
			return store{}, errors.NewNotTrainedError(m.String(), op)
		}
		if err := distance.Train(m, vecs, parallel); err != nil {
			return store{}, errors.Wrapf(err, "%s: train metric", op)
		}
	}
	if err := distance.EnsureTrained(m, op); err != nil {
		return store{}, err
	}

	s := store{
		vecs:   slices.Clip(slices.Clone(vecs)),
		metric: m,
		dim:    dim,
	}
	if !parallel {
		workers = 1
	}
	s.cache = distance.BuildCache(m, s.vecs, workers)
	return s, nil
}

func (s *store) Len() int                { return len(s.vecs) }
func (s *store) Dim() int                { return s.dim }
func (s *store) Vector(i int) vector.Vec { return s.vecs[i] }
func (s *store) Metric() distance.Metric { return s.metric }

func (s *store) queryInfo(q vector.Vec) []float64 {
	return distance.QueryInfo(s.metric, q)
}

// dist is the distance between stored vector i and q. Every search path and
// every radius goes through it so that all collections agree bit for bit.
func (s *store) dist(i int, q vector.Vec, qi []float64) float64 {
	return distance.QueryDist(s.metric, i, q, qi, s.vecs, s.cache)
}

func (s *store) validateVector(op string, v vector.Vec) error {
	if v == nil {
		return errors.NewValidationError("vector", "must not be nil", nil)
	}
	if len(s.vecs) > 0 && v.Len() != s.dim {
		return errors.NewDimensionError(op, s.dim, v.Len(), 1)
	}
	return vector.CheckFinite(op, v, -1)
}

func validateK(k int) error {
	if k <= 0 {
		return errors.NewValidationError("k", "must be positive", k)
	}
	return nil
}

func validateRadius(r float64) error {
	if math.IsNaN(r) || r < 0 {
		return errors.NewValidationError("radius", "must be a non-negative number", r)
	}
	return nil
}

// appendVector stores v and its cache row, returning the new index. The row
// is computed before anything is stored, so a panicking metric leaves s as it
// was.
func (s *store) appendVector(v vector.Vec) int {
	var row []float64
	if s.cache != nil {
		row = distance.QueryInfo(s.metric, v)
	}
	if len(s.vecs) == 0 {
		s.dim = v.Len()
	}
	s.vecs = append(s.vecs, v)
	if s.cache != nil {
		s.cache.Append(row)
	}
	return len(s.vecs) - 1
}

// truncate drops every vector from index n on, undoing appendVector.
func (s *store) truncate(n int) {
	clear(s.vecs[n:])
	s.vecs = s.vecs[:n]
	if s.cache != nil {
		s.cache.Truncate(n)
	}
	if n == 0 {
		s.dim = 0
	}
}

func (s *store) clone() store {
	return store{
		vecs:   slices.Clip(slices.Clone(s.vecs)),
		metric: s.metric.Clone(),
		cache:  s.cache.Clone(),
		dim:    s.dim,
	}
}
