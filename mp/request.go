// Package mp defines the generic model and solution messages accepted and
// produced by the bridge in package solve.
//
// The types are plain data carriers: no validation happens here. A
// ModelRequest describes a problem of the form
//
//	Minimize (or Maximize): c · x + Offset + 0.5 * x' * Q * x
//	Subject to:             RowLower ≤ A·x ≤ RowUpper
//	And:                    ColLower ≤ x ≤ ColUpper
//
// with A given row by row as sparse coefficient lists and Q given as the
// upper triangle of a symmetric matrix.
package mp

import (
	"math"
	"time"
)

// ObjectiveSense selects the optimization direction of a request.
type ObjectiveSense int

const (
	// Minimize is the default sense of a zero-valued request.
	Minimize ObjectiveSense = iota
	Maximize
)

// String returns a human-readable sense name.
func (s ObjectiveSense) String() string {
	switch s {
	case Minimize:
		return "minimize"
	case Maximize:
		return "maximize"
	default:
		return "unknown"
	}
}

// ModelRequest is a solver-independent description of a linear or quadratic
// optimization problem plus the options for solving it.
type ModelRequest struct {
	// Name optionally identifies the model in logs and diagnostics.
	Name string `json:"name,omitempty"`

	// Sense selects minimization (default) or maximization.
	Sense ObjectiveSense `json:"sense,omitempty"`

	// ObjectiveOffset is a constant added to the objective function.
	ObjectiveOffset float64 `json:"objective_offset,omitempty"`

	// Variables defines the columns of the model, in order. Constraint and
	// quadratic indexes refer to positions in this slice.
	Variables []Variable `json:"variables"`

	// Constraints defines the rows of the model, in order.
	Constraints []Constraint `json:"constraints,omitempty"`

	// QuadraticObjective lists the upper-triangular entries of Q in the
	// objective term 0.5 * x' * Q * x. Entries with Var1 > Var2 are
	// normalized during conversion.
	QuadraticObjective []QuadraticTerm `json:"quadratic_objective,omitempty"`

	// RelaxIntegerVariables requests the continuous relaxation: integrality
	// flags are dropped and bounds are kept as declared. Without it, a
	// request containing integer variables is rejected.
	RelaxIntegerVariables bool `json:"relax_integer_variables,omitempty"`

	// Options tunes the solve. Zero values select solver defaults.
	Options SolverOptions `json:"options"`
}

// Variable is one column of the model.
type Variable struct {
	// Name optionally identifies the variable in diagnostics.
	Name string `json:"name,omitempty"`

	// LowerBound of the variable. Use NegInf() for no lower bound.
	LowerBound float64 `json:"lower_bound"`

	// UpperBound of the variable. Use Inf() for no upper bound.
	UpperBound float64 `json:"upper_bound"`

	// ObjectiveCoefficient is the linear objective coefficient.
	ObjectiveCoefficient float64 `json:"objective_coefficient,omitempty"`

	// Integer marks the variable as integral. The bridge itself never
	// enforces integrality; see ModelRequest.RelaxIntegerVariables.
	Integer bool `json:"integer,omitempty"`
}

// Constraint is one row of the model: LowerBound ≤ sum(Coefficients · x) ≤ UpperBound.
type Constraint struct {
	// Name optionally identifies the constraint in diagnostics.
	Name string `json:"name,omitempty"`

	// LowerBound of the row. Use NegInf() for no lower bound.
	LowerBound float64 `json:"lower_bound"`

	// UpperBound of the row. Use Inf() for no upper bound.
	UpperBound float64 `json:"upper_bound"`

	// VarIndexes lists the variables with nonzero coefficients in this row.
	// Parallel with Coefficients.
	VarIndexes []int `json:"var_indexes,omitempty"`

	// Coefficients holds the coefficient for each entry of VarIndexes.
	Coefficients []float64 `json:"coefficients,omitempty"`
}

// QuadraticTerm is one upper-triangular entry of the symmetric objective
// matrix Q. For a term like 0.5*x_i*Q_ij*x_j, set {Var1: i, Var2: j,
// Coefficient: Q_ij}; off-diagonal entries are mirrored implicitly.
type QuadraticTerm struct {
	Var1        int     `json:"var1"`
	Var2        int     `json:"var2"`
	Coefficient float64 `json:"coefficient"`
}

// SolverOptions carries the per-solve parameters extracted from a request and
// handed to the solver. Zero values mean "solver default".
type SolverOptions struct {
	// TimeLimit caps wall-clock solve time. Zero means no limit.
	TimeLimit time.Duration `json:"time_limit,omitempty"`

	// IterationLimit caps solver iterations. Zero selects the solver default.
	IterationLimit int `json:"iteration_limit,omitempty"`

	// RelativeTolerance is the relative convergence tolerance.
	RelativeTolerance float64 `json:"relative_tolerance,omitempty"`

	// AbsoluteTolerance is the absolute convergence tolerance.
	AbsoluteTolerance float64 `json:"absolute_tolerance,omitempty"`

	// Workers is the number of goroutines for solver-internal kernels.
	// Zero or one means single-threaded.
	Workers int `json:"workers,omitempty"`

	// Verbosity raises solver log output. Zero is quiet.
	Verbosity int `json:"verbosity,omitempty"`
}

// NumVariables returns the number of variables in the request.
func (r *ModelRequest) NumVariables() int {
	return len(r.Variables)
}

// NumConstraints returns the number of constraints in the request.
func (r *ModelRequest) NumConstraints() int {
	return len(r.Constraints)
}

// NumNonzeros returns the structural entry count of the request: the sum of
// per-constraint coefficient list lengths plus the quadratic term count.
// Explicit zeros are counted; they are only dropped during conversion.
func (r *ModelRequest) NumNonzeros() int {
	n := len(r.QuadraticObjective)
	for i := range r.Constraints {
		n += len(r.Constraints[i].VarIndexes)
	}
	return n
}

// Inf returns positive infinity, suitable for unbounded variable bounds.
func Inf() float64 {
	return math.Inf(1)
}

// NegInf returns negative infinity, suitable for unbounded variable bounds.
func NegInf() float64 {
	return math.Inf(-1)
}
