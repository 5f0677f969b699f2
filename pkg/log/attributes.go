// Package log defines standard attribute keys for neighbor search operations.
//
// Keys follow a hierarchical naming convention (e.g. "tree.leaf_size",
// "data.samples") so that log pipelines can filter on them.

package log

// Operation context
const (
	// ComponentKey identifies which component is logging.
	// Examples: "neighbors.balltree", "neighbors.linear", "distance"
	ComponentKey = "ml.component"

	// OperationKey specifies the operation being performed.
	// Standard values: "build", "insert", "search_knn", "search_radius", "train"
	OperationKey = "ml.operation"

	// MetricNameKey identifies the distance metric in use.
	MetricNameKey = "metric.name"
)

// Data shape
const (
	// SamplesKey indicates the number of vectors in the collection.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the vector dimension.
	FeaturesKey = "data.features"

	// SparseKey reports whether the input contains sparse vectors.
	SparseKey = "data.sparse"

	// QueriesKey indicates the number of queries in a batch.
	QueriesKey = "data.queries"
)

// Tree structure and configuration
const (
	// LeafSizeKey records the maximum number of points per leaf.
	LeafSizeKey = "tree.leaf_size"

	// NodesKey records the number of nodes in the tree.
	NodesKey = "tree.nodes"

	// DepthKey records the depth of the tree.
	DepthKey = "tree.depth"

	// PivotSelectionKey records the split pivot strategy.
	PivotSelectionKey = "tree.pivot_selection"

	// ConstructionKey records the partition method.
	ConstructionKey = "tree.construction"

	// CenterKey records how node centers are chosen.
	CenterKey = "tree.center"

	// ParallelKey records whether construction ran in parallel.
	ParallelKey = "tree.parallel"

	// WorkersKey records the number of workers used.
	WorkersKey = "tree.workers"

	// LeafPointsKey records the number of points in a leaf being split.
	LeafPointsKey = "tree.leaf_points"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// DistanceEvalsKey records the number of distance evaluations performed.
	DistanceEvalsKey = "perf.distance_evals"
)

// Error context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationBuild        = "build"
	OperationInsert       = "insert"
	OperationSearchKNN    = "search_knn"
	OperationSearchRadius = "search_radius"
	OperationTrain        = "train"
	OperationClone        = "clone"

	ErrorNotTrained        = "NOT_TRAINED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidParameter  = "INVALID_PARAMETER"
	ErrorNonFinite         = "NON_FINITE"
)
