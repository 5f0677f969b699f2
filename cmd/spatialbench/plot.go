package main

import (
	"cmp"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/scigo-neighbors/pkg/errors"
)

type series struct {
	name string
	xys  plotter.XYs
}

// plotResults draws build and query time against leaf size. The linear scan
// has no leaf size and is drawn as a flat reference line.
func plotResults(path string, results []result) error {
	var linear *result
	var build, knn, radius plotter.XYs
	for i := range results {
		r := &results[i]
		if r.leafSize == 0 {
			linear = r
			continue
		}
		x := float64(r.leafSize)
		build = append(build, plotter.XY{X: x, Y: ms(r.build.Seconds())})
		knn = append(knn, plotter.XY{X: x, Y: ms(r.knn.Seconds())})
		radius = append(radius, plotter.XY{X: x, Y: ms(r.radius.Seconds())})
	}
	if len(build) == 0 {
		return errors.New("plot: no ball tree results")
	}

	all := []series{{"build", build}, {"k-NN queries", knn}, {"range queries", radius}}
	for _, s := range all {
		slices.SortFunc(s.xys, func(a, b plotter.XY) int { return cmp.Compare(a.X, b.X) })
	}
	if linear != nil {
		lo, hi := build[0].X, build[len(build)-1].X
		y := ms(linear.knn.Seconds())
		all = append(all, series{"linear k-NN", plotter.XYs{{X: lo, Y: y}, {X: hi, Y: y}}})
	}

	p := plot.New()
	p.Title.Text = "Ball tree timings"
	p.X.Label.Text = "leaf size"
	p.Y.Label.Text = "time (ms)"

	for i, s := range all {
		l, err := plotter.NewLine(s.xys)
		if err != nil {
			return errors.Wrapf(err, "plot: %s", s.name)
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i)
		p.Add(l)
		p.Legend.Add(s.name, l)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "plot: save %s", path)
	}
	return nil
}

func ms(seconds float64) float64 { return seconds * 1000 }
