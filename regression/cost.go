package regression

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Cost is the halved mean squared error,
//
//	cost = 1/(2M) * sum((p - t)^2)
//
// so that its derivative is (1/M) * sum(error * feature).
func Cost(predictions, truth []float64) (float64, error) {
	if err := checkPairs(predictions, truth); err != nil {
		return 0, err
	}
	return computeCost(predictions, truth), nil
}

// CostGrid returns the cost of every parameter vector in thetas against the
// same features and truth. Only the example axis is reduced.
func CostGrid(features mat.Matrix, truth []float64, thetas [][]float64) ([]float64, error) {
	r, _ := features.Dims()
	if len(truth) != r {
		return nil, errors.Wrapf(ErrShapeMismatch, "features have %d rows, truth has %d values", r, len(truth))
	}
	predictions, err := PredictGrid(features, thetas)
	if err != nil {
		return nil, err
	}
	costs := make([]float64, len(thetas))
	column := make([]float64, r)
	for k := range thetas {
		mat.Col(column, k, predictions)
		costs[k] = computeCost(column, truth)
	}
	return costs, nil
}

// Mesh returns every (intercept, slope) pair of a 2-D grid. Slopes vary
// fastest: pair i*len(slopes)+j is {intercepts[i], slopes[j]}.
func Mesh(intercepts, slopes []float64) [][]float64 {
	out := make([][]float64, 0, len(intercepts)*len(slopes))
	for _, b := range intercepts {
		for _, m := range slopes {
			out = append(out, []float64{b, m})
		}
	}
	return out
}

// RMSE is the root mean squared error of predictions against actual values.
func RMSE(predictions, actual []float64) (float64, error) {
	if err := checkPairs(predictions, actual); err != nil {
		return 0, err
	}
	return math.Sqrt(computeSSE(predictions, actual) / float64(len(actual))), nil
}

func computeCost(predictions, truth []float64) float64 {
	return computeSSE(predictions, truth) / (2 * float64(len(truth)))
}

func computeSSE(predictions, truth []float64) float64 {
	s := 0.0
	for i := range truth {
		d := predictions[i] - truth[i]
		s += d * d
	}
	return s
}

func checkPairs(predictions, truth []float64) error {
	if len(truth) == 0 {
		return errors.Wrap(ErrShapeMismatch, "no values")
	}
	if len(predictions) != len(truth) {
		return errors.Wrapf(ErrShapeMismatch, "%d predictions for %d values", len(predictions), len(truth))
	}
	return nil
}
