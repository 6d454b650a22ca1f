package main

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/stojg/gradient/dataset"
	"github.com/stojg/gradient/regression"
)

// problem is a dataset prepared for gradient descent: the standardized
// design matrix the optimizer sees and the raw one used for reporting.
type problem struct {
	features []string
	columns  [][]float64
	truth    []float64
	stats    []regression.Statistics
	scaled   *mat.Dense
	raw      *mat.Dense
}

func newProblem(features []string, columns [][]float64, truth []float64) (*problem, error) {
	scaler := &regression.Scaler{}
	scaledColumns, err := scaler.FitTransform(columns)
	if err != nil {
		return nil, errors.WithMessage(err, "could not standardize features")
	}
	scaled, err := dataset.DesignMatrix(scaledColumns)
	if err != nil {
		return nil, err
	}
	raw, err := dataset.DesignMatrix(columns)
	if err != nil {
		return nil, err
	}
	return &problem{
		features: features,
		columns:  columns,
		truth:    truth,
		stats:    scaler.Stats,
		scaled:   scaled,
		raw:      raw,
	}, nil
}

// result is the outcome of one learning rate.
type result struct {
	Alpha      float64
	Trajectory *regression.Trajectory
	// Theta is the final iterate in the units of the original features.
	Theta     []float64
	Cost      float64
	RMSE      float64
	Diverged  bool
	Exhausted bool
}

func (r result) Iterations() int { return r.Trajectory.Iterations() }

// sweep runs one descent per learning rate in parallel. Results are ordered
// by learning rate, largest first.
func sweep(ctx context.Context, p *problem, cfg Config) ([]result, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]result, len(cfg.Alphas))
	for i, alpha := range cfg.Alphas {
		i, alpha := i, alpha
		g.Go(func() error {
			r, err := p.descend(ctx, alpha, cfg)
			if err != nil {
				return errors.WithMessagef(err, "learning rate %v", alpha)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(a, b int) bool { return results[a].Alpha > results[b].Alpha })
	return results, nil
}

func (p *problem) descend(ctx context.Context, alpha float64, cfg Config) (result, error) {
	start, err := cfg.startingTheta(len(p.columns) + 1)
	if err != nil {
		return result{}, err
	}
	d, err := regression.NewDescent(p.scaled, p.truth, start, cfg.descentOptions(alpha)...)
	if err != nil {
		return result{}, err
	}

	traj := &regression.Trajectory{}
	for d.Next() {
		if err := ctx.Err(); err != nil {
			return result{}, errors.WithStack(err)
		}
		traj.Thetas = append(traj.Thetas, d.Theta())
		traj.Costs = append(traj.Costs, d.Cost())
	}
	traj.Converged = d.Converged()

	r := result{Alpha: alpha, Trajectory: traj}
	if err := d.Err(); err != nil {
		if !errors.Is(err, regression.ErrDiverged) {
			return result{}, err
		}
		r.Diverged = true
		log.WithField("alpha", alpha).WithError(err).Warn("stopped diverging run")
	}
	if traj.Iterations() == 0 {
		return r, nil
	}
	r.Exhausted = !traj.Converged && !r.Diverged && traj.Iterations() == cfg.MaxIterations
	r.Cost = traj.Costs[len(traj.Costs)-1]

	if r.Theta, err = regression.Unscale(traj.Final(), p.stats); err != nil {
		return result{}, err
	}
	predictions, err := regression.Predict(p.raw, r.Theta)
	if err != nil {
		return result{}, err
	}
	if r.RMSE, err = regression.RMSE(predictions, p.truth); err != nil {
		return result{}, err
	}
	return r, nil
}

// best is the finished run with the lowest RMSE.
func best(results []result) (result, bool) {
	var out result
	found := false
	for _, r := range results {
		if r.Diverged || r.Trajectory == nil || r.Iterations() == 0 || math.IsNaN(r.RMSE) || math.IsInf(r.RMSE, 0) {
			continue
		}
		if !found || r.RMSE < out.RMSE {
			out, found = r, true
		}
	}
	return out, found
}

func report(results []result, base *baseline) {
	for _, r := range results {
		fields := log.Fields{
			"alpha":      r.Alpha,
			"iterations": r.Iterations(),
			"converged":  r.Trajectory.Converged,
			"cost":       r.Cost,
			"rmse":       r.RMSE,
			"theta":      r.Theta,
		}
		entry := log.WithFields(fields)
		switch {
		case r.Diverged:
			entry.Warn("gradient descent diverged")
		case r.Exhausted:
			entry.Warn("gradient descent reached the iteration cap without converging")
		default:
			entry.Info("gradient descent converged")
		}
	}
	if base != nil {
		log.WithFields(log.Fields{
			"intercept": base.Intercept,
			"slope":     base.Slope,
			"rmse":      base.RMSE,
			"r2":        base.RSquared,
		}).Info("ordinary least squares")
	}
}
