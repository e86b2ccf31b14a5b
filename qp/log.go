package qp

import "time"

// SolveLog is the structured diagnostic record of one solve. Solvers fill it
// and the bridge attaches its serialized form to every response.
//
// Objective values and residuals in the log are in the solver's minimization
// convention, also for maximization requests: the log describes what the
// solver saw, not the request.
type SolveLog struct {
	// Version of the library that produced the log. UnmarshalSolveLog
	// checks it against the running binary.
	Version string

	// SolveID tags the solve; it matches the solve_id field of the bridge's
	// log lines.
	SolveID string

	// Reason mirrors Outcome.Reason.
	Reason TerminationReason

	// Iterations is the total iteration count at termination.
	Iterations int

	// SolveTime is the wall-clock duration of the solve.
	SolveTime time.Duration

	// ObjectiveValue, PrimalResidual, DualResidual and Gap describe the
	// final iterate.
	ObjectiveValue float64
	PrimalResidual float64
	DualResidual   float64
	Gap            float64

	// Problem dimensions as the solver received them.
	NumVariables   int
	NumConstraints int
	NumNonzeros    int

	// RelaxedIntegers is the number of integrality flags dropped by the
	// relaxation policy before the solver ran.
	RelaxedIntegers int

	// History holds periodic convergence snapshots, oldest first.
	History []IterationStats
}

// IterationStats is one convergence snapshot.
type IterationStats struct {
	Iteration      int
	Elapsed        time.Duration
	Objective      float64
	PrimalResidual float64
	DualResidual   float64
	Gap            float64
}
