package mp

// ResponseStatus classifies the outcome reported in a SolutionResponse.
//
// Every status is an in-band solver verdict about the model, not a pipeline
// failure: a response with StatusInfeasible is a successful bridge run whose
// answer is "this model has no feasible point".
type ResponseStatus int

const (
	StatusUnspecified ResponseStatus = iota

	// StatusOptimal: the solver proved optimality within tolerances.
	StatusOptimal

	// StatusFeasible: a limit or interruption stopped the solve, but the
	// reported primal point satisfies the constraints within tolerances.
	StatusFeasible

	// StatusInfeasible: the solver found a certificate that no feasible
	// point exists.
	StatusInfeasible

	// StatusUnbounded: the solver found an improving ray; the objective is
	// unbounded over the feasible region.
	StatusUnbounded

	// StatusNumericalFailure: the solve broke down numerically before
	// reaching a verdict.
	StatusNumericalFailure

	// StatusNotSolved: a limit or interruption stopped the solve with no
	// feasible point to report.
	StatusNotSolved
)

// String returns a human-readable status name.
func (s ResponseStatus) String() string {
	switch s {
	case StatusUnspecified:
		return "unspecified"
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusNumericalFailure:
		return "numerical failure"
	case StatusNotSolved:
		return "not solved"
	default:
		return "unknown"
	}
}

// SolutionResponse carries the result of bridging and solving a ModelRequest.
//
// Vector lengths always match the originating request: VariableValues and
// ReducedCosts have one entry per variable, DualValues one entry per
// constraint, whatever the status. ObjectiveValue is expressed in the
// request's objective sense.
type SolutionResponse struct {
	// Status is the solver verdict.
	Status ResponseStatus `json:"status"`

	// StatusDetail elaborates on Status in human-readable form.
	StatusDetail string `json:"status_detail,omitempty"`

	// ObjectiveValue at the reported primal point, in the request's sense.
	// Zero when no primal point was computed.
	ObjectiveValue float64 `json:"objective_value"`

	// VariableValues is the primal point, one entry per request variable.
	VariableValues []float64 `json:"variable_values,omitempty"`

	// DualValues holds one dual multiplier per request constraint. Positive
	// means the lower row bound is active, negative the upper. For
	// maximization requests duals keep the solver's minimization convention.
	DualValues []float64 `json:"dual_values,omitempty"`

	// ReducedCosts holds one reduced cost per request variable, in the
	// solver's minimization convention.
	ReducedCosts []float64 `json:"reduced_costs,omitempty"`

	// SolverInfo is the serialized solve log produced by the solver; decode
	// it with qp.UnmarshalSolveLog. Present on every response.
	SolverInfo []byte `json:"solver_info,omitempty"`
}

// IsOptimal returns true if the solver proved optimality.
func (r *SolutionResponse) IsOptimal() bool {
	return r.Status == StatusOptimal
}

// HasSolution returns true if VariableValues holds a feasible primal point
// (optimal or stopped-while-feasible).
func (r *SolutionResponse) HasSolution() bool {
	return r.Status == StatusOptimal || r.Status == StatusFeasible
}

// Value returns the solution value for a variable by index.
// Returns 0 if the index is out of range.
func (r *SolutionResponse) Value(index int) float64 {
	if index < 0 || index >= len(r.VariableValues) {
		return 0
	}
	return r.VariableValues[index]
}
