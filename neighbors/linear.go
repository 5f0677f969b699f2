package neighbors

import (
	"time"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/internal/metrics"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/log"
)

// LinearScan answers queries by computing the distance to every vector. It
// is the reference the BallTree is checked against and is adequate for
// small collections.
type LinearScan struct {
	store
	opts options
}

var _ Collection = (*LinearScan)(nil)

// NewLinearScan builds a linear scan over vecs. Only WithParallel (cache
// construction) and WithLogger affect it; the remaining options are validated
// and ignored.
func NewLinearScan(vecs []vector.Vec, metric distance.Metric, opts ...Option) (_ *LinearScan, err error) {
	defer errors.Recover(&err, "NewLinearScan")
	start := time.Now()

	o, err := buildOptions("neighbors.linear", opts)
	if err != nil {
		return nil, err
	}
	s, err := newStore("NewLinearScan", vecs, metric, o.parallel, o.workers)
	if err != nil {
		o.logger.Error("linear scan construction failed", err, log.OperationKey, log.OperationBuild)
		return nil, err
	}

	metrics.BuildsTotal.WithLabelValues(metrics.CollectionLinear, metrics.BuildMode(o.parallel)).Inc()
	metrics.BuildDurationSeconds.WithLabelValues(metrics.CollectionLinear).Observe(time.Since(start).Seconds())
	o.logger.Debug("linear scan built",
		log.OperationKey, log.OperationBuild,
		log.MetricNameKey, s.metric.String(),
		log.SamplesKey, s.Len(),
		log.FeaturesKey, s.dim,
	)
	return &LinearScan{store: s, opts: o}, nil
}

// all returns the distance from q to every vector, sorted.
func (l *LinearScan) all(q vector.Vec) []Neighbor {
	qi := l.queryInfo(q)
	out := make([]Neighbor, len(l.vecs))
	for i := range l.vecs {
		out[i] = Neighbor{Index: i, Dist: l.dist(i, q, qi)}
	}
	metrics.DistanceEvaluationsTotal.WithLabelValues(metrics.CollectionLinear).Add(float64(len(out)))
	sortNeighbors(out)
	return out
}

// SearchRadius implements Collection.
func (l *LinearScan) SearchRadius(q vector.Vec, radius float64) (_ []Neighbor, err error) {
	defer errors.Recover(&err, "LinearScan.SearchRadius")
	if err := validateRadius(radius); err != nil {
		return nil, err
	}
	if err := l.validateVector("LinearScan.SearchRadius", q); err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues(metrics.CollectionLinear, metrics.QueryRadius).Inc()

	all := l.all(q)
	n := 0
	for n < len(all) && all[n].Dist <= radius {
		n++
	}
	return all[:n:n], nil
}

// SearchKNN implements Collection.
func (l *LinearScan) SearchKNN(q vector.Vec, k int) (_ []Neighbor, err error) {
	defer errors.Recover(&err, "LinearScan.SearchKNN")
	if err := validateK(k); err != nil {
		return nil, err
	}
	if err := l.validateVector("LinearScan.SearchKNN", q); err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues(metrics.CollectionLinear, metrics.QueryKNN).Inc()

	all := l.all(q)
	if k < len(all) {
		all = all[:k:k]
	}
	return all, nil
}

// Insert implements Collection.
func (l *LinearScan) Insert(v vector.Vec) (idx int, err error) {
	defer func() {
		if err != nil {
			idx = -1
		}
	}()
	defer errors.Recover(&err, "LinearScan.Insert")
	if err := l.validateVector("LinearScan.Insert", v); err != nil {
		return -1, err
	}
	idx = l.appendVector(v)
	metrics.InsertsTotal.WithLabelValues(metrics.CollectionLinear).Inc()
	return idx, nil
}

// Clone returns a deep copy that can be mutated independently.
func (l *LinearScan) Clone() *LinearScan {
	return &LinearScan{store: l.clone(), opts: l.opts}
}

// CloneCollection implements Collection.
func (l *LinearScan) CloneCollection() Collection {
	return l.Clone()
}
