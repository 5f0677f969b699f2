package neighbors

import (
	"container/heap"
	"math"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/internal/metrics"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// pruneSlack widens the pruning bound, relative to the distances involved,
// so that rounding in the pivot and radius distances never prunes a ball
// that holds a qualifying vector.
const pruneSlack = 1e-9

// accumulator collects candidates offered by leaf scans.
type accumulator interface {
	offer(idx int, d float64)
	// threshold is the distance beyond which candidates are useless.
	threshold() float64
}

// radiusAccumulator keeps every candidate within r.
type radiusAccumulator struct {
	r   float64
	out []Neighbor
}

func (a *radiusAccumulator) offer(idx int, d float64) {
	if d <= a.r {
		a.out = append(a.out, Neighbor{Index: idx, Dist: d})
	}
}

func (a *radiusAccumulator) threshold() float64 { return a.r }

func (a *radiusAccumulator) result() []Neighbor {
	if a.out == nil {
		return []Neighbor{}
	}
	sortNeighbors(a.out)
	return a.out
}

// knnAccumulator keeps the k best candidates in a bounded max-heap.
type knnAccumulator struct {
	k int
	h neighborHeap
}

func newKNNAccumulator(k, n int) *knnAccumulator {
	return &knnAccumulator{k: k, h: make(neighborHeap, 0, min(k, n))}
}

func (a *knnAccumulator) offer(idx int, d float64) {
	c := Neighbor{Index: idx, Dist: d}
	if len(a.h) < a.k {
		heap.Push(&a.h, c)
		return
	}
	if compareNeighbors(c, a.h[0]) < 0 {
		a.h[0] = c
		heap.Fix(&a.h, 0)
	}
}

// threshold is +Inf until k candidates are held; nothing can be pruned before.
func (a *knnAccumulator) threshold() float64 {
	if len(a.h) < a.k {
		return math.Inf(1)
	}
	return a.h[0].Dist
}

func (a *knnAccumulator) result() []Neighbor {
	out := []Neighbor(a.h)
	sortNeighbors(out)
	return out
}

// step is the state of the traversal at a node.
type step int

const (
	// stepDescend visits both children, nearer pivot first.
	stepDescend step = iota
	// stepPrune skips the node and its whole subtree.
	stepPrune
	// stepLeafScan offers every member of a leaf to the accumulator.
	stepLeafScan
)

// traversal is one query over a tree.
type traversal struct {
	t   *BallTree
	q   vector.Vec
	qi  []float64
	acc accumulator

	evals  int
	pruned int
}

func (s *traversal) pivotDist(n *node) float64 {
	s.evals++
	return distance.InfoDist(s.t.metric, s.q, s.qi, n.pivot, n.pivotInfo)
}

func (s *traversal) classify(n *node, dPivot float64) step {
	bound := dPivot - n.radius
	if bound > s.acc.threshold()+pruneSlack*(1+dPivot+n.radius) {
		return stepPrune
	}
	if n.isLeaf() {
		return stepLeafScan
	}
	return stepDescend
}

func (s *traversal) visit(n *node, dPivot float64) {
	switch s.classify(n, dPivot) {
	case stepPrune:
		s.pruned++
	case stepLeafScan:
		for _, i := range n.points {
			s.acc.offer(i, s.t.dist(i, s.q, s.qi))
		}
		s.evals += len(n.points)
	case stepDescend:
		dl, dr := s.pivotDist(n.left), s.pivotDist(n.right)
		if dl <= dr {
			s.visit(n.left, dl)
			s.visit(n.right, dr)
		} else {
			s.visit(n.right, dr)
			s.visit(n.left, dl)
		}
	}
}

func (t *BallTree) search(q vector.Vec, acc accumulator) {
	if t.root == nil {
		return
	}
	s := &traversal{t: t, q: q, qi: t.queryInfo(q), acc: acc}
	s.visit(t.root, s.pivotDist(t.root))

	metrics.DistanceEvaluationsTotal.WithLabelValues(metrics.CollectionBallTree).Add(float64(s.evals))
	metrics.NodesPrunedTotal.Add(float64(s.pruned))
}

// SearchRadius implements Collection.
func (t *BallTree) SearchRadius(q vector.Vec, radius float64) (_ []Neighbor, err error) {
	defer errors.Recover(&err, "BallTree.SearchRadius")
	if err := validateRadius(radius); err != nil {
		return nil, err
	}
	if err := t.validateVector("BallTree.SearchRadius", q); err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues(metrics.CollectionBallTree, metrics.QueryRadius).Inc()

	acc := &radiusAccumulator{r: radius}
	t.search(q, acc)
	return acc.result(), nil
}

// SearchKNN implements Collection.
func (t *BallTree) SearchKNN(q vector.Vec, k int) (_ []Neighbor, err error) {
	defer errors.Recover(&err, "BallTree.SearchKNN")
	if err := validateK(k); err != nil {
		return nil, err
	}
	if err := t.validateVector("BallTree.SearchKNN", q); err != nil {
		return nil, err
	}
	metrics.QueriesTotal.WithLabelValues(metrics.CollectionBallTree, metrics.QueryKNN).Inc()

	acc := newKNNAccumulator(k, t.Len())
	t.search(q, acc)
	return acc.result(), nil
}
