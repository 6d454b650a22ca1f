package main

import (
	"gonum.org/v1/gonum/stat"

	"github.com/stojg/gradient/regression"
)

// baseline is the closed form least squares fit of a single feature, used to
// judge the gradient descent runs.
type baseline struct {
	Intercept float64
	Slope     float64
	RMSE      float64
	RSquared  float64
}

func linearRegression(x, y []float64) (m, c float64) {
	c, m = stat.LinearRegression(x, y, nil, false)
	return m, c
}

// olsBaseline returns nil unless the problem has exactly one feature.
func olsBaseline(p *problem) (*baseline, error) {
	if len(p.columns) != 1 {
		return nil, nil
	}
	m, c := linearRegression(p.columns[0], p.truth)
	predictions, err := regression.Predict(p.raw, []float64{c, m})
	if err != nil {
		return nil, err
	}
	rmse, err := regression.RMSE(predictions, p.truth)
	if err != nil {
		return nil, err
	}
	r2, err := regression.RSquared(predictions, p.truth)
	if err != nil {
		return nil, err
	}
	return &baseline{Intercept: c, Slope: m, RMSE: rmse, RSquared: r2}, nil
}
