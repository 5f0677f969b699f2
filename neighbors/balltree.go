package neighbors

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/internal/metrics"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/log"
)

// BallTree is a binary tree of nested balls over a vector collection.
//
// Construction splits the members of every node around two pivots chosen by
// the PivotSelection strategy, divides them by the Construction method and
// recurses until at most leafSize vectors remain. Queries descend the tree
// and skip any ball whose lower distance bound to the query, by the triangle
// inequality, exceeds the current search threshold.
type BallTree struct {
	store
	opts options
	root *node
}

var _ Collection = (*BallTree)(nil)

// NewBallTree builds a ball tree over vecs. The metric is cloned, and the
// clone is trained on vecs if it needs training. An empty vecs gives an empty
// tree that can be grown with Insert.
//
// Example:
//
//	tree, err := neighbors.NewBallTree(vecs, distance.Euclidean{},
//	    neighbors.WithLeafSize(10),
//	    neighbors.WithParallel(true),
//	)
//	if err != nil {
//	    return err
//	}
//	nearest, err := tree.SearchKNN(q, 5)
func NewBallTree(vecs []vector.Vec, metric distance.Metric, opts ...Option) (_ *BallTree, err error) {
	defer errors.Recover(&err, "NewBallTree")
	start := time.Now()

	o, err := buildOptions("neighbors.balltree", opts)
	if err != nil {
		return nil, err
	}
	s, err := newStore("NewBallTree", vecs, metric, o.parallel, o.workers)
	if err != nil {
		o.logger.Error("ball tree construction failed", err, log.OperationKey, log.OperationBuild)
		return nil, err
	}

	t := &BallTree{store: s, opts: o}
	if len(t.vecs) > 0 {
		perm := make([]int, len(t.vecs))
		for i := range perm {
			perm[i] = i
		}
		t.root, err = newBuilder(&t.store, o, o.parallel).build(perm, o.seed)
		if err != nil {
			o.logger.Error("ball tree construction failed", err, log.OperationKey, log.OperationBuild)
			return nil, errors.Wrap(err, "NewBallTree")
		}
	}

	elapsed := time.Since(start)
	metrics.BuildsTotal.WithLabelValues(metrics.CollectionBallTree, metrics.BuildMode(o.parallel)).Inc()
	metrics.BuildDurationSeconds.WithLabelValues(metrics.CollectionBallTree).Observe(elapsed.Seconds())
	if o.logger.Enabled(context.Background(), log.LevelDebug) {
		o.logger.Debug("ball tree built",
			log.OperationKey, log.OperationBuild,
			log.MetricNameKey, t.metric.String(),
			log.SamplesKey, t.Len(),
			log.FeaturesKey, t.dim,
			log.LeafSizeKey, o.leafSize,
			log.PivotSelectionKey, o.pivotSelection.String(),
			log.ConstructionKey, o.construction.String(),
			log.CenterKey, o.center.String(),
			log.ParallelKey, o.parallel,
			log.NodesKey, t.NodeCount(),
			log.DepthKey, t.Depth(),
			log.DurationMsKey, elapsed.Milliseconds(),
		)
	}
	return t, nil
}

// LeafSize returns the configured maximum number of vectors per leaf.
func (t *BallTree) LeafSize() int { return t.opts.leafSize }

// Insert adds v to the tree without rebuilding it. The vector descends
// towards the nearer child pivot, enlarging every ball on its path that does
// not yet cover it. A leaf that overflows is rebuilt as a subtree with the
// same pivot selection and construction method as a batch build. If Insert
// fails, the tree is left as it was and -1 is returned.
func (t *BallTree) Insert(v vector.Vec) (idx int, err error) {
	// 途中で失敗したら追加前の状態に戻す。Recover より先に登録するので
	// パニックも err に変換された後でここに来る
	var undo []func()
	defer func() {
		if err != nil {
			for i := len(undo) - 1; i >= 0; i-- {
				undo[i]()
			}
			idx = -1
		}
	}()
	defer errors.Recover(&err, "BallTree.Insert")
	if err := t.validateVector("BallTree.Insert", v); err != nil {
		return -1, err
	}

	pos := t.appendVector(v)
	undo = append(undo, func() { t.truncate(pos) })
	seed := t.opts.seed ^ (uint64(pos) * pcgStream)

	b := newBuilder(&t.store, t.opts, false)
	if t.root == nil {
		root, err := b.build([]int{pos}, seed)
		if err != nil {
			return -1, err
		}
		t.root = root
		metrics.InsertsTotal.WithLabelValues(metrics.CollectionBallTree).Inc()
		return pos, nil
	}

	n := t.root
	for {
		if d := t.dist(pos, n.pivot, n.pivotInfo); d > n.radius {
			grown, old := n, n.radius
			undo = append(undo, func() { grown.radius = old })
			n.radius = d
		}
		if n.isLeaf() {
			break
		}
		dl := t.dist(pos, n.left.pivot, n.left.pivotInfo)
		dr := t.dist(pos, n.right.pivot, n.right.pivotInfo)
		if dl <= dr {
			n = n.left
		} else {
			n = n.right
		}
	}

	// build は points をその場で並べ替えるので、元のスライスとは別の配列に追加する
	leaf, points := n, n.points
	undo = append(undo, func() { leaf.points = points })
	n.points = append(slices.Clip(n.points), pos)
	if len(n.points) > t.opts.leafSize {
		sub, err := b.build(n.points, seed)
		if err != nil {
			return -1, err
		}
		*n = *sub
		metrics.LeafSplitsTotal.Inc()
		t.opts.logger.Debug("leaf split",
			log.OperationKey, log.OperationInsert,
			log.LeafPointsKey, len(sub.left.points)+len(sub.right.points),
		)
	}
	metrics.InsertsTotal.WithLabelValues(metrics.CollectionBallTree).Inc()
	return pos, nil
}

// Clone returns a deep copy: nodes, cache and metric are copied, so either
// tree can be mutated without affecting the other. Stored vectors are shared,
// as they are never modified.
func (t *BallTree) Clone() *BallTree {
	return &BallTree{
		store: t.clone(),
		opts:  t.opts,
		root:  cloneNode(t.root),
	}
}

// CloneCollection implements Collection.
func (t *BallTree) CloneCollection() Collection {
	return t.Clone()
}

func cloneNode(n *node) *node {
	if n == nil {
		return nil
	}
	c := &node{
		pivot:     n.pivot.Clone(),
		pivotInfo: append([]float64(nil), n.pivotInfo...),
		radius:    n.radius,
		left:      cloneNode(n.left),
		right:     cloneNode(n.right),
	}
	if n.points != nil {
		c.points = append([]int(nil), n.points...)
	}
	return c
}

// Depth returns the number of levels, 0 for an empty tree.
func (t *BallTree) Depth() int {
	var depth func(n *node) int
	depth = func(n *node) int {
		if n == nil {
			return 0
		}
		return 1 + max(depth(n.left), depth(n.right))
	}
	return depth(t.root)
}

// NodeCount returns the number of nodes, leaves included.
func (t *BallTree) NodeCount() int {
	var count func(n *node) int
	count = func(n *node) int {
		if n == nil {
			return 0
		}
		return 1 + count(n.left) + count(n.right)
	}
	return count(t.root)
}

// Validate checks the structure of the tree: every vector appears in exactly
// one leaf, no leaf exceeds the leaf size, internal nodes have two children,
// and every vector lies within the radius of each of its ancestors.
func (t *BallTree) Validate() error {
	if t.root == nil {
		if t.Len() != 0 {
			return errors.NewValueError("BallTree.Validate", "empty tree holds vectors")
		}
		return nil
	}
	seen := make([]bool, t.Len())
	if _, err := t.validateNode(t.root, seen); err != nil {
		return err
	}
	for i, ok := range seen {
		if !ok {
			return errors.NewValueError("BallTree.Validate", fmt.Sprintf("vector %d is in no leaf", i))
		}
	}
	return nil
}

// validateNode returns the members of the subtree of n.
func (t *BallTree) validateNode(n *node, seen []bool) ([]int, error) {
	var members []int
	if n.isLeaf() {
		if n.right != nil {
			return nil, errors.NewValueError("BallTree.Validate", "node with a single child")
		}
		if len(n.points) == 0 || len(n.points) > t.opts.leafSize {
			return nil, errors.NewValueError("BallTree.Validate",
				fmt.Sprintf("leaf holds %d points, leaf size is %d", len(n.points), t.opts.leafSize))
		}
		for _, i := range n.points {
			if seen[i] {
				return nil, errors.NewValueError("BallTree.Validate", fmt.Sprintf("vector %d is in two leaves", i))
			}
			seen[i] = true
		}
		members = n.points
	} else {
		if n.right == nil || n.points != nil {
			return nil, errors.NewValueError("BallTree.Validate", "malformed internal node")
		}
		left, err := t.validateNode(n.left, seen)
		if err != nil {
			return nil, err
		}
		right, err := t.validateNode(n.right, seen)
		if err != nil {
			return nil, err
		}
		members = append(append(make([]int, 0, len(left)+len(right)), left...), right...)
	}

	for _, i := range members {
		if d := t.dist(i, n.pivot, n.pivotInfo); d > n.radius {
			return nil, errors.NewValueError("BallTree.Validate",
				fmt.Sprintf("vector %d at distance %g outside radius %g", i, d, n.radius))
		}
	}
	return members, nil
}
