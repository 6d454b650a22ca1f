package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestStandardize(t *testing.T) {
	column := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	scaled, stats, err := Standardize(column)
	require.NoError(t, err)

	assert.Equal(t, 5.0, stats.Mean)
	assert.InDelta(t, stat.StdDev(column, nil), stats.StdDev, 1e-15)
	mean, std := stat.MeanStdDev(scaled, nil)
	assert.InDelta(t, 0, mean, 1e-12)
	assert.InDelta(t, 1, std, 1e-12)
	assert.Equal(t, []float64{2, 4, 4, 4, 5, 5, 7, 9}, column)
}

func TestStandardize_Invalid(t *testing.T) {
	tests := map[string]struct {
		column   []float64
		expected error
	}{
		"empty":    {column: nil, expected: ErrShapeMismatch},
		"single":   {column: []float64{1}, expected: ErrShapeMismatch},
		"constant": {column: []float64{3, 3, 3}, expected: ErrInvalidParameter},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Standardize(tc.column)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestScaler(t *testing.T) {
	columns := [][]float64{{1, 2, 3}, {10, 30, 20}}
	s := &Scaler{}
	out, err := s.FitTransform(columns)
	require.NoError(t, err)
	require.Len(t, s.Stats, 2)
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, out[0], 1e-12)
	assert.InDeltaSlice(t, []float64{-1, 1, 0}, out[1], 1e-12)

	_, err = s.Transform(columns[:1])
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = s.Fit([][]float64{{1, 2}, {5, 5}})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestUnscale(t *testing.T) {
	sizes := []float64{1000, 1500, 2000, 2500}
	prices := make([]float64, len(sizes))
	for i, s := range sizes {
		prices[i] = 50000 + 100*s
	}
	scaled, stats, err := Standardize(sizes)
	require.NoError(t, err)

	traj, err := mustDescent(t, design(scaled), prices, []float64{0, 0}, WithMaxIterations(5000)).Run()
	require.NoError(t, err)

	theta := traj.Final()
	before := append([]float64(nil), theta...)
	unscaled, err := Unscale(theta, []Statistics{stats})
	require.NoError(t, err)
	assert.Equal(t, before, theta)
	assert.InDeltaSlice(t, []float64{50000, 100}, unscaled, 1e-6)
}

func TestScale_InvertsUnscale(t *testing.T) {
	stats := []Statistics{{Mean: 3, StdDev: 2}, {Mean: -10, StdDev: 0.5}}
	theta := []float64{7, 1.5, -4}

	unscaled, err := Unscale(theta, stats)
	require.NoError(t, err)
	roundTrip, err := Scale(unscaled, stats)
	require.NoError(t, err)
	assert.InDeltaSlice(t, theta, roundTrip, 1e-12)

	_, err = Unscale(theta, stats[:1])
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = Scale(theta[:2], stats)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}
