package qp

// TerminationReason states why a solve stopped. Every reason is an in-band
// verdict: a solver that stops for any of these returns a nil error together
// with an Outcome carrying the reason.
type TerminationReason int

const (
	ReasonUnspecified TerminationReason = iota

	// ReasonOptimal: the iterate satisfies the optimality criteria.
	ReasonOptimal

	// ReasonInfeasible: a certificate of primal infeasibility was found.
	ReasonInfeasible

	// ReasonUnbounded: an improving ray was found; the objective is
	// unbounded below (in minimization form) over the feasible region.
	ReasonUnbounded

	// ReasonNumericalError: iterates degenerated (NaN or infinity).
	ReasonNumericalError

	// ReasonIterationLimit: the iteration limit was reached.
	ReasonIterationLimit

	// ReasonTimeLimit: the wall-clock limit was reached.
	ReasonTimeLimit

	// ReasonInterrupted: the context was cancelled or its deadline passed.
	ReasonInterrupted
)

// String returns a human-readable reason name.
func (r TerminationReason) String() string {
	switch r {
	case ReasonUnspecified:
		return "unspecified"
	case ReasonOptimal:
		return "optimal"
	case ReasonInfeasible:
		return "infeasible"
	case ReasonUnbounded:
		return "unbounded"
	case ReasonNumericalError:
		return "numerical error"
	case ReasonIterationLimit:
		return "iteration limit"
	case ReasonTimeLimit:
		return "time limit"
	case ReasonInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// IsLimit returns true for reasons that stop a solve from the outside:
// iteration limit, time limit or interruption.
func (r TerminationReason) IsLimit() bool {
	return r == ReasonIterationLimit || r == ReasonTimeLimit || r == ReasonInterrupted
}

// Outcome is what a solver hands back after working on a Program.
type Outcome struct {
	// Reason states why the solve stopped.
	Reason TerminationReason

	// PrimalSolution is the final primal point, one entry per variable.
	// Empty when the solver computed none.
	PrimalSolution []float64

	// DualSolution holds one multiplier per constraint row; positive means
	// the lower row bound is active, negative the upper. Empty when none
	// was computed.
	DualSolution []float64

	// ReducedCosts holds c + Qx − Aᵀy at the final point, one entry per
	// variable. Empty when none was computed.
	ReducedCosts []float64

	// Objective is the objective value at PrimalSolution, in minimization
	// form.
	Objective float64

	// PrimalFeasible reports whether PrimalSolution satisfies the
	// constraints within the feasibility tolerances. Limit-stopped solves
	// with a feasible iterate still carry a usable point.
	PrimalFeasible bool

	// Log describes the solve for diagnostics; it travels serialized in
	// mp.SolutionResponse.SolverInfo.
	Log SolveLog
}

// HasSolution returns true if the outcome carries a primal point worth
// reporting: proved optimal, or stopped at a limit while primal feasible.
// An optimal model without variables counts; its primal point is empty.
func (o *Outcome) HasSolution() bool {
	return o.Reason == ReasonOptimal || (o.Reason.IsLimit() && o.PrimalFeasible)
}
