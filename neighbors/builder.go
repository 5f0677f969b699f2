package neighbors

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

// pcgStream is the fixed second word of every node's PCG state.
const pcgStream = 0x9e3779b97f4a7c15

// node is a ball: every vector of its subtree lies within radius of pivot.
// Leaves hold their member indices in points; internal nodes have exactly
// two children.
type node struct {
	pivot     vector.Vec
	pivotInfo []float64
	radius    float64

	left, right *node
	points      []int
}

func (n *node) isLeaf() bool { return n.left == nil }

// builder constructs subtrees top-down over disjoint sub-slices of one index
// permutation. Each call owns its slice, so concurrent calls never share
// mutable state.
type builder struct {
	*store
	opts options
	sem  *semaphore.Weighted // nil for serial construction
}

func newBuilder(s *store, opts options, parallel bool) *builder {
	b := &builder{store: s, opts: opts}
	if parallel && opts.workers > 1 {
		// 呼び出し元のゴルーチンも1つのワーカーとして数える
		b.sem = semaphore.NewWeighted(int64(opts.workers - 1))
	}
	return b
}

// build returns the subtree over points. The randomness of a node comes only
// from its seed, and children seeds are drawn by the parent, so the tree is
// the same whether or not subtrees run concurrently.
func (b *builder) build(points []int, seed uint64) (_ *node, err error) {
	defer errors.Recover(&err, "BallTree.build")

	n := b.newNode(points)
	if len(points) <= b.opts.leafSize {
		n.points = points
		return n, nil
	}

	rng := rand.New(rand.NewPCG(seed, pcgStream))
	left, right := b.split(n, points, rng)
	leftSeed, rightSeed := rng.Uint64(), rng.Uint64()

	var g errgroup.Group
	buildLeft := func() (err error) {
		n.left, err = b.build(left, leftSeed)
		return err
	}
	if b.fork(len(points)) {
		g.Go(func() error {
			defer b.sem.Release(1)
			return buildLeft()
		})
	} else if err := buildLeft(); err != nil {
		return nil, err
	}

	var rightErr error
	n.right, rightErr = b.build(right, rightSeed)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if rightErr != nil {
		return nil, rightErr
	}
	return n, nil
}

// fork reports whether a subtree of size n should be built on its own
// goroutine. It never blocks: without a free slot the caller builds inline.
func (b *builder) fork(n int) bool {
	return b.sem != nil && n >= b.opts.forkThreshold && b.sem.TryAcquire(1)
}

// newNode computes the pivot and the covering radius of points.
func (b *builder) newNode(points []int) *node {
	centroid := vector.Mean(b.vecs, points)
	n := &node{pivot: centroid}
	n.pivotInfo = b.queryInfo(centroid)

	if b.opts.center == CenterMedoid {
		best, bestDist := -1, 0.0
		for _, i := range points {
			d := b.dist(i, centroid, n.pivotInfo)
			if best < 0 || d < bestDist || (d == bestDist && i < best) {
				best, bestDist = i, d
			}
		}
		n.pivot = b.vecs[best]
		n.pivotInfo = b.queryInfo(n.pivot)
	}

	for _, i := range points {
		if d := b.dist(i, n.pivot, n.pivotInfo); d > n.radius {
			n.radius = d
		}
	}
	return n
}

// split reorders points in place and returns the two halves as capped
// sub-slices.
func (b *builder) split(n *node, points []int, rng *rand.Rand) (left, right []int) {
	a, c := b.selectPivots(n, points, rng)

	var mid int
	switch b.opts.construction {
	case ConstructMedianSplit:
		mid = b.medianSplit(points, a, c)
	default:
		mid = b.nearestPivotSplit(points, a, c)
	}
	if mid == 0 || mid == len(points) {
		// 全点が片側に寄った（重複点など）場合は半分に分ける
		mid = len(points) / 2
	}
	return points[:mid:mid], points[mid:len(points):len(points)]
}

// selectPivots returns the collection indices of the two split pivots.
func (b *builder) selectPivots(n *node, points []int, rng *rand.Rand) (int, int) {
	switch b.opts.pivotSelection {
	case PivotRandom:
		i := rng.IntN(len(points))
		j := rng.IntN(len(points) - 1)
		if j >= i {
			j++
		}
		return points[i], points[j]
	default:
		a := points[0]
		farthest := -1.0
		for _, i := range points {
			if d := b.dist(i, n.pivot, n.pivotInfo); d > farthest {
				a, farthest = i, d
			}
		}
		c := a
		farthest = -1.0
		for _, i := range points {
			if d := distance.IndexedDist(b.metric, a, i, b.vecs, b.cache); d > farthest {
				c, farthest = i, d
			}
		}
		return a, c
	}
}

// nearestPivotSplit moves the members closer to a (ties included) to the
// front, keeping their relative order, and returns their count.
func (b *builder) nearestPivotSplit(points []int, a, c int) int {
	near := make([]int, 0, len(points))
	far := make([]int, 0, len(points)/2)
	for _, i := range points {
		da := distance.IndexedDist(b.metric, a, i, b.vecs, b.cache)
		dc := distance.IndexedDist(b.metric, c, i, b.vecs, b.cache)
		if da <= dc {
			near = append(near, i)
		} else {
			far = append(far, i)
		}
	}
	copy(points, near)
	copy(points[len(near):], far)
	return len(near)
}

// medianSplit sorts members by d(x, a) - d(x, c), then by index, and cuts in
// the middle.
func (b *builder) medianSplit(points []int, a, c int) int {
	type keyed struct {
		idx int
		key float64
	}
	ks := make([]keyed, len(points))
	for k, i := range points {
		da := distance.IndexedDist(b.metric, a, i, b.vecs, b.cache)
		dc := distance.IndexedDist(b.metric, c, i, b.vecs, b.cache)
		ks[k] = keyed{idx: i, key: da - dc}
	}
	slices.SortFunc(ks, func(x, y keyed) int {
		if r := cmp.Compare(x.key, y.key); r != 0 {
			return r
		}
		return cmp.Compare(x.idx, y.idx)
	})
	for k := range ks {
		points[k] = ks[k].idx
	}
	return len(points) / 2
}
