// Package regression fits linear models by batch gradient descent and
// provides the prediction, cost and scaling helpers around it.
package regression

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Predict returns features·theta, one prediction per row of features.
func Predict(features mat.Matrix, theta []float64) ([]float64, error) {
	r, c := features.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "features are %dx%d", r, c)
	}
	if c != len(theta) {
		return nil, errors.Wrapf(ErrShapeMismatch, "features have %d columns, theta has %d entries", c, len(theta))
	}
	return predict(features, mat.NewVecDense(c, theta)).RawVector().Data, nil
}

// PredictGrid evaluates every parameter vector in thetas against the same
// features. Column k of the result holds the predictions of thetas[k].
func PredictGrid(features mat.Matrix, thetas [][]float64) (*mat.Dense, error) {
	r, c := features.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "features are %dx%d", r, c)
	}
	if len(thetas) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "no parameter vectors to evaluate")
	}
	params := mat.NewDense(c, len(thetas), nil)
	for k, theta := range thetas {
		if len(theta) != c {
			return nil, errors.Wrapf(ErrShapeMismatch, "features have %d columns, theta %d has %d entries", c, k, len(theta))
		}
		params.SetCol(k, theta)
	}
	out := mat.NewDense(r, len(thetas), nil)
	out.Mul(features, params)
	return out, nil
}

// Gradient returns the gradient of Cost with respect to theta,
// (1/M)·Xᵀ(Xθ − y).
func Gradient(features mat.Matrix, truth, theta []float64) ([]float64, error) {
	if err := checkDims(features, truth, theta); err != nil {
		return nil, err
	}
	g := gradient(features, mat.NewVecDense(len(truth), truth), mat.NewVecDense(len(theta), theta))
	return g.RawVector().Data, nil
}

func predict(features mat.Matrix, theta mat.Vector) *mat.VecDense {
	r, _ := features.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(features, theta)
	return out
}

// gradient uses a single prediction snapshot for every coefficient.
func gradient(features mat.Matrix, truth, theta mat.Vector) *mat.VecDense {
	m, n := features.Dims()
	residual := predict(features, theta)
	residual.SubVec(residual, truth)
	g := mat.NewVecDense(n, nil)
	g.MulVec(features.T(), residual)
	g.ScaleVec(1/float64(m), g)
	return g
}

func checkDims(features mat.Matrix, truth, theta []float64) error {
	r, c := features.Dims()
	switch {
	case r == 0 || c == 0:
		return errors.Wrapf(ErrShapeMismatch, "features are %dx%d", r, c)
	case len(truth) != r:
		return errors.Wrapf(ErrShapeMismatch, "features have %d rows, truth has %d values", r, len(truth))
	case len(theta) != c:
		return errors.Wrapf(ErrShapeMismatch, "features have %d columns, theta has %d entries", c, len(theta))
	}
	return nil
}
