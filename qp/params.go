package qp

import "time"

// Defaults applied by Params.WithDefaults.
const (
	DefaultIterationLimit    = 200_000
	DefaultRelativeTolerance = 1e-6
	DefaultAbsoluteTolerance = 1e-6
	DefaultCheckInterval     = 64
)

// Params carries the per-solve parameters handed to a solver. The zero value
// is usable; zero fields select the defaults above.
type Params struct {
	// SolveID tags the solve in logs and in the SolveLog. Assigned by the
	// caller; solvers generate one when it is empty.
	SolveID string

	// TimeLimit caps wall-clock time. Zero means no limit.
	TimeLimit time.Duration

	// IterationLimit caps iterations. Zero selects DefaultIterationLimit.
	IterationLimit int

	// RelativeTolerance and AbsoluteTolerance control termination; see the
	// solver documentation for the exact criteria they enter.
	RelativeTolerance float64
	AbsoluteTolerance float64

	// CheckInterval is the number of iterations between termination checks.
	// Zero selects DefaultCheckInterval.
	CheckInterval int

	// Workers is the goroutine count for matrix kernels. Zero or one runs
	// single-threaded.
	Workers int

	// Verbosity raises solver log output. Zero is quiet, 1 logs a summary,
	// 2 logs every termination check.
	Verbosity int
}

// WithDefaults returns a copy of p with zero fields replaced by defaults.
func (p Params) WithDefaults() Params {
	if p.IterationLimit == 0 {
		p.IterationLimit = DefaultIterationLimit
	}
	if p.RelativeTolerance == 0 {
		p.RelativeTolerance = DefaultRelativeTolerance
	}
	if p.AbsoluteTolerance == 0 {
		p.AbsoluteTolerance = DefaultAbsoluteTolerance
	}
	if p.CheckInterval == 0 {
		p.CheckInterval = DefaultCheckInterval
	}
	if p.Workers == 0 {
		p.Workers = 1
	}
	return p
}
