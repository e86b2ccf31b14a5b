// Package saddle bridges generic linear and quadratic optimization model
// messages to an in-process first-order solver.
//
// The bridge lives in the solve package: it validates an mp.ModelRequest,
// applies the integrality relaxation policy, transcribes the model to a
// sparse qp.Program in minimization form, invokes a solver through the
// solve.Solver interface and maps the outcome back to an
// mp.SolutionResponse. The firstorder package provides the default solver, a
// restarted primal-dual hybrid gradient method.
package saddle

import "github.com/blang/semver/v4"

// Version of the library. Serialized solve logs embed it; see
// qp.UnmarshalSolveLog.
var Version = semver.MustParse("0.3.0")
