package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scigo-neighbors/core/vector"
	"github.com/YuminosukeSato/scigo-neighbors/distance"
	"github.com/YuminosukeSato/scigo-neighbors/neighbors"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
	"github.com/YuminosukeSato/scigo-neighbors/pkg/log"
)

type runFlags struct {
	n         int
	dim       int
	density   float64
	metric    string
	leafSizes []int
	k         int
	queries   int
	parallel  bool
	seed      uint64
	plotPath  string
}

var rf runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build trees over random vectors and time queries",
	Args:  cobra.NoArgs,
	RunE:  runBench,
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&rf.n, "n", 10000, "Number of indexed vectors")
	f.IntVar(&rf.dim, "dim", 8, "Vector dimension")
	f.Float64Var(&rf.density, "density", 0, "Fraction of non-zero coordinates; 0 generates dense vectors")
	f.StringVar(&rf.metric, "metric", "", "Distance metric (default SCIGO_METRIC)")
	f.IntSliceVar(&rf.leafSizes, "leaf-sizes", []int{10, 40, 100}, "Leaf sizes to benchmark")
	f.IntVar(&rf.k, "k", 10, "Neighbors per k-NN query")
	f.IntVar(&rf.queries, "queries", 500, "Number of queries")
	f.BoolVar(&rf.parallel, "parallel", false, "Build trees in parallel (default SCIGO_PARALLEL)")
	f.Uint64Var(&rf.seed, "seed", 0, "Data generation seed (default SCIGO_SEED)")
	f.StringVar(&rf.plotPath, "plot", "", "Write a timing chart to this PNG/SVG/PDF file")
	rootCmd.AddCommand(runCmd)
}

// result is the timing of one collection.
type result struct {
	name     string
	leafSize int
	build    time.Duration
	knn      time.Duration
	radius   time.Duration
	nodes    int
	depth    int
	mismatch int
}

func runBench(cmd *cobra.Command, args []string) error {
	if rf.n <= 0 || rf.dim <= 0 || rf.queries <= 0 || rf.k <= 0 {
		return errors.NewValidationError("n/dim/queries/k", "must be positive", []int{rf.n, rf.dim, rf.queries, rf.k})
	}
	if rf.density < 0 || rf.density > 1 {
		return errors.NewValidationError("density", "must be in [0, 1]", rf.density)
	}
	metricName := cfg.Metric
	if rf.metric != "" {
		metricName = rf.metric
	}
	metric, err := distance.ByName(metricName)
	if err != nil {
		return err
	}
	opts, err := neighbors.OptionsFromConfig(*cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("parallel") {
		opts = append(opts, neighbors.WithParallel(rf.parallel))
	}
	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = rf.seed
	}

	logger := log.GetLoggerWithName("spatialbench")
	rng := rand.New(rand.NewPCG(seed, 0))
	vecs, err := generate(rng, rf.n, rf.dim, rf.density)
	if err != nil {
		return err
	}
	queries, err := generate(rng, rf.queries, rf.dim, rf.density)
	if err != nil {
		return err
	}
	logger.Info("generated vectors",
		log.SamplesKey, rf.n,
		log.FeaturesKey, rf.dim,
		log.SparseKey, rf.density > 0,
		log.QueriesKey, rf.queries,
		log.MetricNameKey, metric.String(),
	)

	ctx := cmd.Context()

	start := time.Now()
	ref, err := neighbors.NewLinearScan(vecs, metric, opts...)
	if err != nil {
		return err
	}
	base := result{name: "linear", build: time.Since(start)}
	wantKNN, radius, err := timeQueries(ctx, ref, queries, &base)
	if err != nil {
		return err
	}
	wantRadius, err := neighbors.SearchRadiusBatch(ctx, ref, queries, radius, 0)
	if err != nil {
		return err
	}
	results := []result{base}

	for _, leafSize := range rf.leafSizes {
		start := time.Now()
		tree, err := neighbors.NewBallTree(vecs, metric, append(slices.Clone(opts), neighbors.WithLeafSize(leafSize))...)
		if err != nil {
			return errors.Wrapf(err, "leaf size %d", leafSize)
		}
		r := result{
			name:     "balltree",
			leafSize: leafSize,
			build:    time.Since(start),
			nodes:    tree.NodeCount(),
			depth:    tree.Depth(),
		}
		gotKNN, _, err := timeQueries(ctx, tree, queries, &r)
		if err != nil {
			return err
		}
		gotRadius, err := neighbors.SearchRadiusBatch(ctx, tree, queries, radius, 0)
		if err != nil {
			return err
		}
		for i := range queries {
			if !slices.Equal(wantKNN[i], gotKNN[i]) || !slices.Equal(wantRadius[i], gotRadius[i]) {
				r.mismatch++
			}
		}
		if r.mismatch > 0 {
			logger.Error("ball tree disagrees with linear scan",
				log.LeafSizeKey, leafSize,
				"mismatched_queries", r.mismatch,
			)
		}
		logger.Info("benchmarked ball tree",
			log.LeafSizeKey, leafSize,
			log.NodesKey, r.nodes,
			log.DepthKey, r.depth,
			log.DurationMsKey, r.build.Milliseconds(),
		)
		results = append(results, r)
	}

	printResults(cmd, results)
	if rf.plotPath != "" {
		if err := plotResults(rf.plotPath, results); err != nil {
			return err
		}
		logger.Info("wrote timing chart", "path", rf.plotPath)
	}
	for _, r := range results {
		if r.mismatch > 0 {
			return errors.Newf("%s (leaf size %d) returned wrong results for %d queries", r.name, r.leafSize, r.mismatch)
		}
	}
	return nil
}

// timeQueries runs the k-NN batch and a range batch at the median k-th
// distance, recording both durations. The radius is returned so every
// collection is queried with the same one.
func timeQueries(ctx context.Context, c neighbors.Collection, queries []vector.Vec, r *result) ([][]neighbors.Neighbor, float64, error) {
	start := time.Now()
	knn, err := neighbors.SearchKNNBatch(ctx, c, queries, rf.k, 0)
	if err != nil {
		return nil, 0, err
	}
	r.knn = time.Since(start)

	kth := make([]float64, 0, len(knn))
	for _, res := range knn {
		if len(res) > 0 {
			kth = append(kth, res[len(res)-1].Dist)
		}
	}
	slices.Sort(kth)
	radius := 0.0
	if len(kth) > 0 {
		radius = kth[len(kth)/2]
	}

	start = time.Now()
	if _, err := neighbors.SearchRadiusBatch(ctx, c, queries, radius, 0); err != nil {
		return nil, 0, err
	}
	r.radius = time.Since(start)
	return knn, radius, nil
}

func generate(rng *rand.Rand, n, dim int, density float64) ([]vector.Vec, error) {
	out := make([]vector.Vec, n)
	for i := range out {
		if density == 0 {
			v := make([]float64, dim)
			for j := range v {
				v[j] = rng.NormFloat64()
			}
			out[i] = vector.NewDense(v)
			continue
		}
		var idx []int
		var val []float64
		for j := 0; j < dim; j++ {
			if rng.Float64() < density {
				idx = append(idx, j)
				val = append(val, rng.NormFloat64())
			}
		}
		s, err := vector.NewSparse(dim, idx, val)
		if err != nil {
			return nil, errors.Wrapf(err, "generate vector %d", i)
		}
		out[i] = s
	}
	return out, nil
}

func printResults(cmd *cobra.Command, results []result) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLLECTION\tLEAF\tNODES\tDEPTH\tBUILD\tKNN\tRADIUS\tMISMATCH")
	for _, r := range results {
		leaf := "-"
		if r.leafSize > 0 {
			leaf = fmt.Sprint(r.leafSize)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%d\n",
			r.name, leaf, r.nodes, r.depth,
			r.build.Round(time.Microsecond), r.knn.Round(time.Microsecond), r.radius.Round(time.Microsecond),
			r.mismatch)
	}
	w.Flush()
}
