package regression

import "github.com/pkg/errors"

var (
	// ErrShapeMismatch is returned when matrix, vector or target dimensions disagree.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidParameter is returned for out of range learning rates, iteration caps and tolerances.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDiverged is only returned when the divergence guard is enabled.
	ErrDiverged = errors.New("gradient descent diverged")
)
