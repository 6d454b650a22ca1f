package regression

import (
	"gonum.org/v1/gonum/stat"
)

// SSE is the sum of squared errors.
func SSE(predictions, truth []float64) (float64, error) {
	if err := checkPairs(predictions, truth); err != nil {
		return 0, err
	}
	return computeSSE(predictions, truth), nil
}

// SST is the total sum of squares around the mean of truth.
func SST(truth []float64) float64 {
	m := stat.Mean(truth, nil)
	s := 0.0
	for _, y := range truth {
		d := y - m
		s += d * d
	}
	return s
}

// SSR is the sum of squares explained by the regression.
func SSR(predictions, truth []float64) (float64, error) {
	if err := checkPairs(predictions, truth); err != nil {
		return 0, err
	}
	mean := stat.Mean(truth, nil)
	s := 0.0
	for i := range truth {
		d := predictions[i] - mean
		s += d * d
	}
	return s, nil
}

// RSquared is the coefficient of determination, 1 - SSE/SST. A constant
// truth vector has no variance to explain and yields 0.
func RSquared(predictions, truth []float64) (float64, error) {
	sse, err := SSE(predictions, truth)
	if err != nil {
		return 0, err
	}
	sst := SST(truth)
	if sst == 0 {
		return 0, nil
	}
	return 1 - sse/sst, nil
}
