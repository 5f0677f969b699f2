// Package scigo is the root of scigo-neighbors, an exact nearest-neighbor
// search library for Go designed for backend services that need similarity
// lookups without an external vector database.
//
// # Features
//
//   - Ball tree index with batch, parallel and incremental construction
//   - Exact k-nearest-neighbor and range queries, identical to a linear scan
//   - Dense and sparse vectors
//   - Euclidean, cosine, Manhattan, Chebyshev, Minkowski, normalized
//     Euclidean and Mahalanobis distances, with norm caching where possible
//   - Structured errors, zerolog logging and Prometheus counters
//
// # Installation
//
//	go get github.com/YuminosukeSato/scigo-neighbors
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scigo-neighbors/core/vector"
//	    "github.com/YuminosukeSato/scigo-neighbors/distance"
//	    "github.com/YuminosukeSato/scigo-neighbors/neighbors"
//	)
//
//	func main() {
//	    vecs := []vector.Vec{
//	        vector.NewDense([]float64{0, 0}),
//	        vector.NewDense([]float64{1, 0}),
//	        vector.NewDense([]float64{0, 3}),
//	    }
//
//	    tree, err := neighbors.NewBallTree(vecs, distance.NewEuclidean(),
//	        neighbors.WithLeafSize(10),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    nearest, err := tree.SearchKNN(vector.NewDense([]float64{1, 2}), 2)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(nearest) // [{2 1.414...} {1 2}]
//	}
//
// # Packages
//
//   - neighbors: LinearScan and BallTree collections, batch queries
//   - distance: distance metrics and the acceleration cache
//   - core/vector: dense and sparse vectors
//   - core/parallel: block-parallel helpers
//   - core/model: fitted state shared by trainable components
//   - preprocessing: StandardScaler used by the normalized Euclidean metric
//   - config: SCIGO_* environment configuration
//   - pkg/errors, pkg/log: error types and structured logging
//   - cmd/spatialbench: benchmark and verification CLI
//
// # Configuration
//
// Collection defaults can be loaded from the environment:
//
//	cfg, err := config.Load() // SCIGO_LEAF_SIZE, SCIGO_PARALLEL, ...
//	opts, err := neighbors.OptionsFromConfig(*cfg)
//	tree, err := neighbors.NewBallTree(vecs, metric, opts...)
//
// # License
//
// scigo-neighbors is released under the MIT License.
package scigo
