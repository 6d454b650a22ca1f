package regression

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Statistics are the mean and sample standard deviation of one feature.
type Statistics struct {
	Mean   float64
	StdDev float64
}

// Standardize returns (value - mean) / stddev for every value of column.
func Standardize(column []float64) ([]float64, Statistics, error) {
	s, err := describe(column)
	if err != nil {
		return nil, Statistics{}, err
	}
	return s.apply(column), s, nil
}

func describe(column []float64) (Statistics, error) {
	if len(column) < 2 {
		return Statistics{}, errors.Wrapf(ErrShapeMismatch, "need at least 2 values to standardize, got %d", len(column))
	}
	mean, std := stat.MeanStdDev(column, nil)
	if !(std > 0) || math.IsInf(std, 0) {
		return Statistics{}, errors.Wrapf(ErrInvalidParameter, "standard deviation %v cannot be used for scaling", std)
	}
	return Statistics{Mean: mean, StdDev: std}, nil
}

func (s Statistics) apply(column []float64) []float64 {
	out := make([]float64, len(column))
	for i, v := range column {
		out[i] = (v - s.Mean) / s.StdDev
	}
	return out
}

// Scaler standardizes a set of feature columns with statistics learned by Fit.
type Scaler struct {
	Stats []Statistics
}

// Fit learns per-column statistics.
func (s *Scaler) Fit(columns [][]float64) error {
	stats := make([]Statistics, len(columns))
	for j, column := range columns {
		st, err := describe(column)
		if err != nil {
			return errors.WithMessagef(err, "feature %d", j)
		}
		stats[j] = st
	}
	s.Stats = stats
	return nil
}

// Transform standardizes columns with the fitted statistics. The input is
// not modified.
func (s *Scaler) Transform(columns [][]float64) ([][]float64, error) {
	if len(columns) != len(s.Stats) {
		return nil, errors.Wrapf(ErrShapeMismatch, "scaler fitted on %d features, got %d", len(s.Stats), len(columns))
	}
	out := make([][]float64, len(columns))
	for j, column := range columns {
		out[j] = s.Stats[j].apply(column)
	}
	return out, nil
}

// FitTransform is Fit followed by Transform.
func (s *Scaler) FitTransform(columns [][]float64) ([][]float64, error) {
	if err := s.Fit(columns); err != nil {
		return nil, err
	}
	return s.Transform(columns)
}

// Unscale converts parameters fitted on standardized features into the
// intercept and slopes of the original features. theta is not modified.
func Unscale(theta []float64, stats []Statistics) ([]float64, error) {
	if len(theta) != len(stats)+1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "theta has %d entries for %d features", len(theta), len(stats))
	}
	out := make([]float64, len(theta))
	out[0] = theta[0]
	for j, s := range stats {
		out[j+1] = theta[j+1] / s.StdDev
		out[0] -= theta[j+1] * s.Mean / s.StdDev
	}
	return out, nil
}

// Scale is the inverse of Unscale.
func Scale(theta []float64, stats []Statistics) ([]float64, error) {
	if len(theta) != len(stats)+1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "theta has %d entries for %d features", len(theta), len(stats))
	}
	out := make([]float64, len(theta))
	out[0] = theta[0]
	for j, s := range stats {
		out[j+1] = theta[j+1] * s.StdDev
		out[0] += theta[j+1] * s.Mean
	}
	return out, nil
}
