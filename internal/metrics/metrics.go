// Package metrics exposes Prometheus collectors for the neighbor search
// collections.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for the collection label.
const (
	CollectionBallTree = "balltree"
	CollectionLinear   = "linear"
)

// =============================================================================
// Construction Metrics
// =============================================================================

var (
	// BuildsTotal counts completed batch constructions
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scigo_neighbors_builds_total",
			Help: "Total number of collection constructions",
		},
		[]string{"collection", "mode"}, // "balltree", "linear" | "serial", "parallel"
	)

	// BuildDurationSeconds measures batch construction latency
	BuildDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scigo_neighbors_build_duration_seconds",
			Help:    "Time spent constructing a collection",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"collection"},
	)

	// InsertsTotal counts single-vector insertions
	InsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scigo_neighbors_inserts_total",
			Help: "Total number of vectors inserted incrementally",
		},
		[]string{"collection"},
	)

	// LeafSplitsTotal counts leaves split after an insertion overflowed them
	LeafSplitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scigo_neighbors_leaf_splits_total",
			Help: "Total number of ball tree leaves split by insertion",
		},
	)
)

// =============================================================================
// Query Metrics
// =============================================================================

var (
	// QueriesTotal counts queries by collection and type
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scigo_neighbors_queries_total",
			Help: "Total number of neighbor queries",
		},
		[]string{"collection", "type"}, // "knn" | "radius"
	)

	// DistanceEvaluationsTotal counts point distance evaluations done by queries
	DistanceEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scigo_neighbors_distance_evaluations_total",
			Help: "Total number of distance evaluations performed by queries",
		},
		[]string{"collection"},
	)

	// NodesPrunedTotal counts ball tree subtrees skipped by the pruning bound
	NodesPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scigo_neighbors_nodes_pruned_total",
			Help: "Total number of ball tree nodes pruned during queries",
		},
	)
)

// Query type label values.
const (
	QueryKNN    = "knn"
	QueryRadius = "radius"
)

// BuildMode returns the mode label of a construction.
func BuildMode(parallel bool) string {
	if parallel {
		return "parallel"
	}
	return "serial"
}
