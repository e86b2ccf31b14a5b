// Package solve bridges generic model requests to a quadratic-program
// solver. One call to Model runs the whole pipeline: guard the request's
// size and shape, apply the integrality relaxation policy, transcribe the
// model into the internal minimization form, invoke a solver through the
// Solver interface, and map the outcome back onto the request as an
// mp.SolutionResponse.
//
// Failures of the pipeline itself (bad input, unsupported integrality,
// malformed models, solver breakage) are returned as *Error. Verdicts about
// the model (infeasible, unbounded, numerical breakdown, limit hits) are not
// failures: they come back as a response with the matching status.
package solve

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/saddleopt/saddle/firstorder"
	"github.com/saddleopt/saddle/logger"
	"github.com/saddleopt/saddle/mp"
	"github.com/saddleopt/saddle/qp"
)

// Solver is the narrow boundary to the numerical method. Implementations
// return an error only when solving could not run at all; everything the
// solver concludes about the model travels in the Outcome.
//
// Implementations must honor ctx and must be safe for concurrent use.
type Solver interface {
	Solve(ctx context.Context, prog *qp.Program, params qp.Params) (*qp.Outcome, error)
}

var _ Solver = (*firstorder.Solver)(nil)

// Option configures one bridge call.
type Option func(*config)

type config struct {
	solver Solver
	limits Limits
	log    zerolog.Logger
	logSet bool
}

func defaultConfig() *config {
	return &config{
		solver: firstorder.New(),
		limits: DefaultLimits(),
	}
}

// WithSolver routes the call to a custom solver implementation instead of
// the default firstorder solver.
func WithSolver(s Solver) Option {
	return func(c *config) {
		c.solver = s
	}
}

// WithLimits overrides the request size limits for this call.
func WithLimits(l Limits) Option {
	return func(c *config) {
		c.limits = l
	}
}

// WithLogger sends this call's log output through l instead of the package
// logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.log = l
		c.logSet = true
	}
}

// Model solves req and returns the response.
//
//	resp, err := solve.Model(ctx, req)
//	if err != nil {
//		// the pipeline failed; KindOf(err) says where
//	}
//	if resp.HasSolution() {
//		fmt.Println(resp.ObjectiveValue, resp.VariableValues)
//	}
//
// Model is safe for concurrent use. Cancelling ctx stops the solver and
// yields a response (StatusFeasible or StatusNotSolved), not an error.
func Model(ctx context.Context, req *mp.ModelRequest, opts ...Option) (*mp.SolutionResponse, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	log := logger.Logger()
	if cfg.logSet {
		log = cfg.log
	}

	if err := checkRequest(req, cfg.limits); err != nil {
		return nil, err
	}

	solveID := uuid.NewString()
	lctx := log.With().Str("solve_id", solveID)
	if req.Name != "" {
		lctx = lctx.Str("model", req.Name)
	}
	log = lctx.Logger()

	relaxed, err := resolveIntegrality(req, log)
	if err != nil {
		return nil, err
	}

	prog, err := buildProgram(req)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("variables", prog.NumVariables).
		Int("constraints", prog.NumConstraints).
		Int("nonzeros", prog.Constraints.NNZ()).
		Bool("quadratic", prog.IsQuadratic()).
		Stringer("sense", req.Sense).
		Msg("model converted")

	outcome, err := invoke(ctx, cfg.solver, prog, extractParams(req.Options, solveID))
	if err != nil {
		return nil, err
	}
	outcome.Log.RelaxedIntegers = relaxed

	resp, err := buildResponse(req, outcome)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Stringer("status", resp.Status).
		Int("iterations", outcome.Log.Iterations).
		Dur("took", outcome.Log.SolveTime).
		Msg("solve finished")
	return resp, nil
}

// extractParams copies the request options into solver parameters, leaving
// zero fields for the solver's own defaults.
func extractParams(o mp.SolverOptions, solveID string) qp.Params {
	return qp.Params{
		SolveID:           solveID,
		TimeLimit:         o.TimeLimit,
		IterationLimit:    o.IterationLimit,
		RelativeTolerance: o.RelativeTolerance,
		AbsoluteTolerance: o.AbsoluteTolerance,
		Workers:           o.Workers,
		Verbosity:         o.Verbosity,
	}
}

// invoke calls the solver exactly once and normalizes its failure modes: an
// error is wrapped as a solver-invocation failure, and a nil outcome without
// an error is an inconsistency. The outcome is never reordered or mutated
// here.
func invoke(ctx context.Context, s Solver, prog *qp.Program, params qp.Params) (*qp.Outcome, error) {
	outcome, err := s.Solve(ctx, prog, params)
	if err != nil {
		return nil, wrapError(KindSolverInvocation, "Invoke", err)
	}
	if outcome == nil {
		return nil, newError(KindInternalInconsistency, "Invoke", "solver returned no outcome and no error")
	}
	return outcome, nil
}
