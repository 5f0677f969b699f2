package distance

import (
	"slices"

	"github.com/YuminosukeSato/scigo-neighbors/core/parallel"
	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
)

// Cache holds a fixed-width row of float64 summaries per vector, stored in
// one contiguous block.
type Cache struct {
	stride int
	data   []float64
}

// NewCache returns a zeroed cache of n rows of width stride.
func NewCache(n, stride int) *Cache {
	return &Cache{stride: stride, data: make([]float64, n*stride)}
}

// Row returns the row of vector i. The returned slice aliases the cache.
func (c *Cache) Row(i int) []float64 {
	lo := i * c.stride
	return c.data[lo : lo+c.stride : lo+c.stride]
}

// Len returns the number of rows.
func (c *Cache) Len() int {
	if c == nil || c.stride == 0 {
		return 0
	}
	return len(c.data) / c.stride
}

// Stride returns the row width.
func (c *Cache) Stride() int {
	return c.stride
}

// Append adds a row for a newly inserted vector.
func (c *Cache) Append(row []float64) {
	if len(row) != c.stride {
		panic("distance: cache row width mismatch")
	}
	c.data = append(c.data, row...)
}

// Truncate keeps the first n rows.
func (c *Cache) Truncate(n int) {
	c.data = c.data[:n*c.stride]
}

// Clone returns a deep copy. Clone of a nil cache is nil.
func (c *Cache) Clone() *Cache {
	if c == nil {
		return nil
	}
	return &Cache{stride: c.stride, data: slices.Clone(c.data)}
}

// 行数がこれ以下なら並列化しない
const parallelCacheMin = 256

// buildCache fills one row per vector with fill on up to workers goroutines.
// Blocks are disjoint, so the parallel path needs no synchronization beyond
// the final join.
func buildCache(vecs []vector.Vec, stride, workers int, fill func(v vector.Vec, row []float64)) *Cache {
	c := NewCache(len(vecs), stride)
	work := func(start, end int) {
		for i := start; i < end; i++ {
			fill(vecs[i], c.Row(i))
		}
	}
	if workers <= 1 {
		work(0, len(vecs))
	} else {
		parallel.ParallelizeWithThreshold(len(vecs), parallelCacheMin, workers, work)
	}
	return c
}
