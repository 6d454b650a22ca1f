package main

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/stojg/gradient/regression"
)

const imageFormat = "png"

// w/h - A4 (1:1.414)
const (
	plotWidth  = 1024
	plotHeight = 1024 * (1 / 1.414)
)

var runColors = []color.RGBA{
	{R: 90, G: 180, B: 234, A: 255},
	{R: 0, G: 240, B: 108, A: 255},
	{R: 240, G: 120, B: 20, A: 255},
	{R: 180, G: 60, B: 200, A: 255},
	{R: 230, G: 30, B: 60, A: 255},
	{R: 120, G: 120, B: 120, A: 255},
}

type xy struct{ x, y []float64 }

func (a xy) Len() int                { return len(a.x) }
func (a xy) XY(i int) (x, y float64) { return a.x[i], a.y[i] }

// namedPlot is a chart and the file name it is stored under.
type namedPlot struct {
	name string
	plot *plot.Plot
}

// buildPlots returns the convergence chart for every problem and, for a
// single feature, the fitted line and the cost surface.
func buildPlots(p *problem, results []result, base *baseline) ([]namedPlot, error) {
	var plots []namedPlot

	conv, err := plotConvergence(results)
	if err != nil {
		return nil, err
	}
	plots = append(plots, namedPlot{name: "convergence." + imageFormat, plot: conv})

	if len(p.columns) != 1 {
		return plots, nil
	}
	r, ok := best(results)
	if !ok {
		return plots, nil
	}

	fitted, err := plotFit(p, r, base)
	if err != nil {
		return nil, err
	}
	plots = append(plots, namedPlot{name: "fit." + imageFormat, plot: fitted})

	surface, err := plotCostSurface(p, r)
	if err != nil {
		return nil, err
	}
	plots = append(plots, namedPlot{name: "surface." + imageFormat, plot: surface})
	return plots, nil
}

// plotConvergence draws log10(cost) per iteration for every learning rate.
// Iterates whose cost is zero or not finite are left out.
func plotConvergence(results []result) (*plot.Plot, error) {
	p := newPlot("cost per iteration")
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "log10 cost"

	for i, r := range results {
		data := xy{}
		for it, c := range r.Trajectory.Costs {
			if !(c > 0) || math.IsInf(c, 0) {
				continue
			}
			data.x = append(data.x, float64(it+1))
			data.y = append(data.y, math.Log10(c))
		}
		if data.Len() == 0 {
			continue
		}
		l, err := plotter.NewLine(data)
		if err != nil {
			return nil, fmt.Errorf("could not create cost line: %v", err)
		}
		l.Color = runColors[i%len(runColors)]
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("alpha %v (%d iterations)", r.Alpha, r.Iterations()), l)
	}
	return p, nil
}

func plotFit(p *problem, r result, base *baseline) (*plot.Plot, error) {
	pl := newPlot("fitted regression line")
	pl.X.Label.Text = p.features[0]
	pl.Y.Label.Text = "target"

	s, err := plotter.NewScatter(xy{x: p.columns[0], y: p.truth})
	if err != nil {
		return nil, fmt.Errorf("could not create scatter plot: %v", err)
	}
	s.GlyphStyle.Shape = draw.CrossGlyph{}
	s.GlyphStyle.Color = runColors[0]
	pl.Add(s)
	pl.Legend.Add("data", s)

	// the regression line theta0 + theta1*x
	line, err := addRegressionLine(pl, s, r.Theta[1], r.Theta[0])
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 20, G: 100, B: 240, A: 255}
	pl.Legend.Add(fmt.Sprintf("gradient descent, alpha %v", r.Alpha), line)

	if base != nil {
		ols, err := addRegressionLine(pl, s, base.Slope, base.Intercept)
		if err != nil {
			return nil, err
		}
		ols.Color = color.RGBA{R: 20, G: 240, B: 80, A: 255}
		ols.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		pl.Legend.Add("least squares", ols)
	}

	// a centroid shows the mean of all scatter points and must fall on the regression line
	xMean, xStdDev := stat.MeanStdDev(p.columns[0], nil)
	yMean, yStdDev := stat.MeanStdDev(p.truth, nil)
	if err := addCentroid(pl, xMean, yMean); err != nil {
		return nil, err
	}

	addLabel(pl, fmt.Sprintf("%s mean: %0.1f (stddev: %0.1f)", p.features[0], xMean, xStdDev))
	addLabel(pl, fmt.Sprintf("target mean: %0.1f (stddev: %0.1f)", yMean, yStdDev))
	addLabel(pl, fmt.Sprintf("rmse: %0.1f", r.RMSE))
	addLabel(pl, fmt.Sprintf("data points: %d", len(p.truth)))
	return pl, nil
}

// costSurface is the cost over an intercept/slope grid in standardized units.
type costSurface struct {
	intercepts, slopes, costs []float64
}

func (g costSurface) Dims() (c, r int)    { return len(g.intercepts), len(g.slopes) }
func (g costSurface) Z(c, r int) float64  { return g.costs[c*len(g.slopes)+r] }
func (g costSurface) X(c int) float64     { return g.intercepts[c] }
func (g costSurface) Y(r int) float64     { return g.slopes[r] }

func (g costSurface) levels() []float64 {
	sorted := append([]float64(nil), g.costs...)
	sort.Float64s(sorted)
	var out []float64
	for _, q := range []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9} {
		out = append(out, stat.Quantile(q, stat.Empirical, sorted, nil))
	}
	return out
}

const surfaceSteps = 41

func newCostSurface(p *problem, center []float64, span float64) (costSurface, error) {
	g := costSurface{
		intercepts: floats.Span(make([]float64, surfaceSteps), center[0]-span, center[0]+span),
		slopes:     floats.Span(make([]float64, surfaceSteps), center[1]-span, center[1]+span),
	}
	costs, err := regression.CostGrid(p.scaled, p.truth, regression.Mesh(g.intercepts, g.slopes))
	if err != nil {
		return costSurface{}, err
	}
	g.costs = costs
	return g, nil
}

// plotCostSurface draws cost contours around the final iterate and the path
// the optimizer took to reach it.
func plotCostSurface(p *problem, r result) (*plot.Plot, error) {
	final := r.Trajectory.Final()
	span := 0.0
	for _, theta := range r.Trajectory.Thetas {
		span = math.Max(span, math.Max(math.Abs(theta[0]-final[0]), math.Abs(theta[1]-final[1])))
	}
	if span == 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		span = math.Max(1, math.Abs(final[1]))
	}
	span *= 1.1

	g, err := newCostSurface(p, final, span)
	if err != nil {
		return nil, err
	}

	pl := newPlot(fmt.Sprintf("cost surface, alpha %v", r.Alpha))
	pl.X.Label.Text = "intercept (standardized)"
	pl.Y.Label.Text = fmt.Sprintf("%s coefficient (standardized)", p.features[0])
	pl.Add(plotter.NewContour(g, g.levels(), palette.Heat(10, 1)))

	path := xy{}
	for _, theta := range r.Trajectory.Thetas {
		path.x = append(path.x, theta[0])
		path.y = append(path.y, theta[1])
	}
	l, err := plotter.NewLine(path)
	if err != nil {
		return nil, fmt.Errorf("could not create descent path: %v", err)
	}
	l.Color = color.RGBA{R: 20, G: 100, B: 240, A: 255}
	pl.Add(l)
	pl.Legend.Add(fmt.Sprintf("descent path (%d iterations)", r.Iterations()), l)

	if err := addCentroid(pl, final[0], final[1]); err != nil {
		return nil, err
	}
	return pl, nil
}

func newPlot(label string) *plot.Plot {
	p := plot.New()
	p.Title.Text = label
	p.Legend.Left = true
	p.Legend.Top = true
	return p
}

func addLabel(p *plot.Plot, text string) {
	p.Legend.Add(text)
}

func addRegressionLine(p *plot.Plot, s *plotter.Scatter, m, c float64) (*plotter.Line, error) {
	min, max, _, _ := s.DataRange()
	l, err := plotter.NewLine(plotter.XYs{
		{X: min, Y: min*m + c}, {X: max, Y: max*m + c},
	})
	if err != nil {
		return l, fmt.Errorf("could not create regression line: %v", err)
	}
	p.Add(l)
	return l, nil
}

func addCentroid(p *plot.Plot, x, y float64) error {
	centroid, err := plotter.NewScatter(xy{x: []float64{x}, y: []float64{y}})
	if err != nil {
		return fmt.Errorf("could not create scatter: %v", err)
	}
	centroid.GlyphStyle.Shape = draw.CircleGlyph{}
	centroid.GlyphStyle.Radius = 4.0
	p.Add(centroid)
	return nil
}

func writePlot(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(plotWidth, plotHeight, imageFormat)
	if err != nil {
		return fmt.Errorf("could not create writer: %v", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("could not write plot: %v", err)
	}
	return nil
}

func savePlots(dir string, plots []namedPlot) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create %s: %v", dir, err)
	}
	var paths []string
	for _, np := range plots {
		path := filepath.Join(dir, np.name)
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("could not create %s: %v", path, err)
		}
		if err := writePlot(f, np.plot); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("could not close output file %v", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
