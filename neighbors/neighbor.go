// Package neighbors implements exact nearest-neighbor search over vector
// collections: an exhaustive LinearScan used as ground truth, and a BallTree
// index supporting bulk (optionally parallel) construction, incremental
// insertion, range and k-nearest-neighbor queries, and deep cloning.
//
// Results are ordered by ascending distance, ties broken by ascending
// collection index. Both collections order results the same way, so for any
// metric and query a BallTree returns exactly what a LinearScan over the same
// vectors returns.
//
// Queries are read-only and may run concurrently on the same collection.
// Insert mutates the collection and must not run concurrently with any other
// operation on it.
package neighbors

import (
	"cmp"
	"slices"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
)

// Neighbor is one search result: the collection index of a vector and its
// distance to the query.
type Neighbor struct {
	Index int
	Dist  float64
}

// Collection is a set of indexed vectors answering range and k-NN queries.
type Collection interface {
	// Len returns the number of vectors.
	Len() int
	// Dim returns the vector length, 0 while the collection is empty.
	Dim() int
	// Vector returns the vector stored at index i.
	Vector(i int) vector.Vec
	// Metric returns the collection's own (possibly trained) metric.
	Metric() distance.Metric

	// SearchRadius returns every vector within radius of q (inclusive).
	SearchRadius(q vector.Vec, radius float64) ([]Neighbor, error)
	// SearchKNN returns the k vectors closest to q, or all of them if the
	// collection holds fewer than k.
	SearchKNN(q vector.Vec, k int) ([]Neighbor, error)
	// Insert appends v and returns its index. On error it returns -1 and
	// the collection is unchanged.
	Insert(v vector.Vec) (int, error)

	// CloneCollection returns an independent deep copy.
	CloneCollection() Collection
}

func compareNeighbors(a, b Neighbor) int {
	if c := cmp.Compare(a.Dist, b.Dist); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

func sortNeighbors(ns []Neighbor) {
	slices.SortFunc(ns, compareNeighbors)
}

// neighborHeap is a max-heap on (Dist, Index): the root is the worst kept
// candidate.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return compareNeighbors(h[i], h[j]) > 0 }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x any)        { *h = append(*h, x.(Neighbor)) }

func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
