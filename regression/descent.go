package regression

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Defaults used by NewDescent when no Option overrides them.
const (
	DefaultLearningRate  = 0.1
	DefaultMaxIterations = 1000
)

// Option configures a Descent.
type Option func(*Descent)

// WithLearningRate sets the step size alpha.
func WithLearningRate(alpha float64) Option {
	return func(d *Descent) { d.alpha = alpha }
}

// WithMaxIterations caps the number of iterates a run can produce.
func WithMaxIterations(n int) Option {
	return func(d *Descent) { d.maxIterations = n }
}

// WithTolerance stops the run once no coefficient moves by more than tol
// between consecutive iterates. Zero, the default, requires exact equality.
func WithTolerance(tol float64) Option {
	return func(d *Descent) { d.tolerance = tol }
}

// WithDivergenceGuard stops the run with ErrDiverged as soon as an iterate or
// its cost is NaN or infinite. Without it a diverging run only ends at the
// iteration cap.
func WithDivergenceGuard() Option {
	return func(d *Descent) { d.guard = true }
}

// Descent is a batch gradient descent run over a fixed feature matrix and
// target vector. Iterates are pulled one at a time with Next, like a
// bufio.Scanner:
//
//	d, err := regression.NewDescent(x, y, start)
//	...
//	for d.Next() {
//		theta := d.Theta()
//	}
//	if err := d.Err(); err != nil {
//		...
//	}
//
// A Descent is not restartable and not safe for concurrent use.
type Descent struct {
	features *mat.Dense
	truth    *mat.VecDense

	alpha         float64
	maxIterations int
	tolerance     float64
	guard         bool

	theta      *mat.VecDense
	cost       float64
	costKnown  bool
	iterations int
	converged  bool
	done       bool
	err        error
}

// NewDescent validates its inputs and prepares a run starting from
// startingTheta. The features must carry the bias column; features, truth
// and startingTheta are copied.
func NewDescent(features mat.Matrix, truth, startingTheta []float64, opts ...Option) (*Descent, error) {
	d := &Descent{
		alpha:         DefaultLearningRate,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	if err := checkDims(features, truth, startingTheta); err != nil {
		return nil, err
	}
	if _, c := features.Dims(); c < 2 {
		return nil, errors.Wrapf(ErrShapeMismatch, "features need a bias column and at least one feature, got %d columns", c)
	}

	d.features = mat.DenseCopyOf(features)
	d.truth = mat.NewVecDense(len(truth), append([]float64(nil), truth...))
	d.theta = mat.NewVecDense(len(startingTheta), append([]float64(nil), startingTheta...))
	return d, nil
}

func (d *Descent) validate() error {
	if !(d.alpha > 0) || math.IsInf(d.alpha, 1) {
		return errors.Wrapf(ErrInvalidParameter, "learning rate %v must be positive and finite", d.alpha)
	}
	if d.maxIterations <= 0 {
		return errors.Wrapf(ErrInvalidParameter, "max iterations %d must be positive", d.maxIterations)
	}
	if !(d.tolerance >= 0) {
		return errors.Wrapf(ErrInvalidParameter, "tolerance %v must not be negative", d.tolerance)
	}
	return nil
}

// Next computes the next iterate. It returns false once the previous iterate
// converged, the iteration cap was reached or the divergence guard tripped.
func (d *Descent) Next() bool {
	if d.done {
		return false
	}

	next := mat.NewVecDense(d.theta.Len(), nil)
	next.AddScaledVec(d.theta, -d.alpha, gradient(d.features, d.truth, d.theta))
	d.iterations++

	if d.guard {
		c := computeCost(predict(d.features, next).RawVector().Data, d.truth.RawVector().Data)
		if !finite(next.RawVector().Data) || math.IsNaN(c) || math.IsInf(c, 0) {
			d.err = errors.Wrapf(ErrDiverged, "iteration %d with learning rate %v", d.iterations, d.alpha)
			d.done = true
			return false
		}
		d.cost, d.costKnown = c, true
	} else {
		d.costKnown = false
	}

	d.converged = d.same(next, d.theta)
	d.theta = next
	d.done = d.converged || d.iterations >= d.maxIterations
	return true
}

func (d *Descent) same(a, b *mat.VecDense) bool {
	if d.tolerance == 0 {
		return floats.Equal(a.RawVector().Data, b.RawVector().Data)
	}
	return floats.Distance(a.RawVector().Data, b.RawVector().Data, math.Inf(1)) <= d.tolerance
}

// Theta returns a copy of the last iterate, or nil before the first call to
// Next.
func (d *Descent) Theta() []float64 {
	if d.iterations == 0 {
		return nil
	}
	return append([]float64(nil), d.theta.RawVector().Data...)
}

// Cost returns the cost of the last iterate.
func (d *Descent) Cost() float64 {
	if !d.costKnown {
		d.cost = computeCost(predict(d.features, d.theta).RawVector().Data, d.truth.RawVector().Data)
		d.costKnown = true
	}
	return d.cost
}

// Iterations is the number of iterates produced so far.
func (d *Descent) Iterations() int { return d.iterations }

// Converged reports whether the last iterate matched the one before it.
func (d *Descent) Converged() bool { return d.converged }

// Err returns ErrDiverged when the divergence guard stopped the run.
func (d *Descent) Err() error { return d.err }

// Run drains the remaining iterates into a Trajectory.
func (d *Descent) Run() (*Trajectory, error) {
	t := &Trajectory{}
	for d.Next() {
		t.Thetas = append(t.Thetas, d.Theta())
		t.Costs = append(t.Costs, d.Cost())
	}
	t.Converged = d.Converged()
	return t, d.Err()
}

// Trajectory is every iterate of a run together with its cost.
type Trajectory struct {
	Thetas    [][]float64
	Costs     []float64
	Converged bool
}

// Final is the last iterate, or nil for an empty trajectory.
func (t *Trajectory) Final() []float64 {
	if len(t.Thetas) == 0 {
		return nil
	}
	return t.Thetas[len(t.Thetas)-1]
}

// Iterations is the number of iterates in the trajectory.
func (t *Trajectory) Iterations() int { return len(t.Thetas) }

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
