package neighbors

import (
	"runtime"
	"strings"

	"github.com/YuminosukeSato/scigo-neighbors/config"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/log"
)

// PivotSelection chooses the two vectors a node is split around.
type PivotSelection int

const (
	// PivotFurthestPair picks the member farthest from the node center, then
	// the member farthest from that one.
	PivotFurthestPair PivotSelection = iota
	// PivotRandom picks two distinct members at random.
	PivotRandom
)

func (p PivotSelection) String() string {
	switch p {
	case PivotFurthestPair:
		return "furthest_pair"
	case PivotRandom:
		return "random"
	}
	return "unknown"
}

// ParsePivotSelection parses "furthest_pair" or "random".
func ParsePivotSelection(s string) (PivotSelection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "furthest_pair", "furthest-pair", "furthest":
		return PivotFurthestPair, nil
	case "random":
		return PivotRandom, nil
	}
	return 0, errors.NewValidationError("pivot_selection", "unknown pivot selection", s)
}

// Construction decides how a node's members are divided between its pivots.
type Construction int

const (
	// ConstructNearestPivot assigns every member to its nearer pivot.
	ConstructNearestPivot Construction = iota
	// ConstructMedianSplit orders members by d(x, a) - d(x, b) and cuts at
	// the median, giving children of equal size.
	ConstructMedianSplit
)

func (c Construction) String() string {
	switch c {
	case ConstructNearestPivot:
		return "nearest_pivot"
	case ConstructMedianSplit:
		return "median_split"
	}
	return "unknown"
}

// ParseConstruction parses "nearest_pivot" or "median_split".
func ParseConstruction(s string) (Construction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest_pivot", "nearest-pivot", "nearest":
		return ConstructNearestPivot, nil
	case "median_split", "median-split", "median":
		return ConstructMedianSplit, nil
	}
	return 0, errors.NewValidationError("construction", "unknown construction method", s)
}

// Center decides the pivot stored on a node.
type Center int

const (
	// CenterCentroid uses the mean of the members.
	CenterCentroid Center = iota
	// CenterMedoid uses the member nearest to the mean.
	CenterMedoid
)

func (c Center) String() string {
	switch c {
	case CenterCentroid:
		return "centroid"
	case CenterMedoid:
		return "medoid"
	}
	return "unknown"
}

// ParseCenter parses "centroid" or "medoid".
func ParseCenter(s string) (Center, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "centroid", "mean":
		return CenterCentroid, nil
	case "medoid":
		return CenterMedoid, nil
	}
	return 0, errors.NewValidationError("center", "unknown center", s)
}

const (
	DefaultLeafSize      = 40
	DefaultForkThreshold = 256
	DefaultSeed          = 1
)

type options struct {
	leafSize       int
	pivotSelection PivotSelection
	construction   Construction
	center         Center
	parallel       bool
	workers        int
	forkThreshold  int
	seed           uint64
	logger         log.Logger
}

// Option configures a collection.
type Option func(*options)

func defaultOptions() options {
	return options{
		leafSize:       DefaultLeafSize,
		pivotSelection: PivotFurthestPair,
		construction:   ConstructNearestPivot,
		center:         CenterCentroid,
		workers:        runtime.NumCPU(),
		forkThreshold:  DefaultForkThreshold,
		seed:           DefaultSeed,
	}
}

func (o *options) validate() error {
	if o.leafSize <= 0 {
		return errors.NewValidationError("leaf_size", "must be positive", o.leafSize)
	}
	if o.pivotSelection.String() == "unknown" {
		return errors.NewValidationError("pivot_selection", "unknown pivot selection", int(o.pivotSelection))
	}
	if o.construction.String() == "unknown" {
		return errors.NewValidationError("construction", "unknown construction method", int(o.construction))
	}
	if o.center.String() == "unknown" {
		return errors.NewValidationError("center", "unknown center", int(o.center))
	}
	if o.workers <= 0 {
		return errors.NewValidationError("workers", "must be positive", o.workers)
	}
	if o.forkThreshold <= 0 {
		return errors.NewValidationError("fork_threshold", "must be positive", o.forkThreshold)
	}
	return nil
}

func buildOptions(component string, opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return o, err
	}
	if o.logger == nil {
		o.logger = log.GetLoggerWithName(component)
	}
	return o, nil
}

// WithLeafSize sets the maximum number of vectors per leaf (default 40).
func WithLeafSize(n int) Option {
	return func(o *options) { o.leafSize = n }
}

// WithPivotSelection sets the split pivot strategy (default PivotFurthestPair).
func WithPivotSelection(p PivotSelection) Option {
	return func(o *options) { o.pivotSelection = p }
}

// WithConstruction sets the partition method (default ConstructNearestPivot).
func WithConstruction(c Construction) Option {
	return func(o *options) { o.construction = c }
}

// WithCenter sets how node pivots are chosen (default CenterCentroid).
func WithCenter(c Center) Option {
	return func(o *options) { o.center = c }
}

// WithParallel enables parallel construction and cache building.
func WithParallel(parallel bool) Option {
	return func(o *options) { o.parallel = parallel }
}

// WithWorkers bounds the number of goroutines used by parallel construction.
// Zero selects runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		if n == 0 {
			n = runtime.NumCPU()
		}
		o.workers = n
	}
}

// WithForkThreshold sets the minimum subtree size built on its own goroutine.
func WithForkThreshold(n int) Option {
	return func(o *options) { o.forkThreshold = n }
}

// WithSeed seeds the random pivot selection.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger; the default is the global provider's logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// OptionsFromConfig converts a loaded configuration into options.
func OptionsFromConfig(cfg config.Config) ([]Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pivot, err := ParsePivotSelection(cfg.PivotSelection)
	if err != nil {
		return nil, err
	}
	construction, err := ParseConstruction(cfg.Construction)
	if err != nil {
		return nil, err
	}
	center, err := ParseCenter(cfg.Center)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithLeafSize(cfg.LeafSize),
		WithPivotSelection(pivot),
		WithConstruction(construction),
		WithCenter(center),
		WithParallel(cfg.Parallel),
		WithWorkers(cfg.Workers),
		WithForkThreshold(cfg.ForkThreshold),
		WithSeed(cfg.Seed),
	}, nil
}
