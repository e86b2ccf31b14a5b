// Package firstorder implements a restarted primal-dual hybrid gradient
// (PDHG) solver for the sparse quadratic programs in package qp.
//
// The method maintains a primal iterate x and a dual iterate y (one
// multiplier per constraint row, positive when the lower bound is active,
// negative when the upper bound is active) and alternates projected gradient
// steps on both. Running averages of the iterates are kept between restarts;
// at every termination check the better of the current point and the average
// (by KKT residuals) becomes the candidate, and the iteration restarts from
// it when the average wins. Infeasible and unbounded problems are detected
// through ray certificates extracted from the iterates.
//
// The solver is pure Go, deterministic for a fixed worker count, and safe
// for concurrent use: all state lives on the call stack.
package firstorder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/saddleopt/saddle"
	"github.com/saddleopt/saddle/logger"
	"github.com/saddleopt/saddle/qp"
)

// Solver solves qp.Programs with restarted PDHG. The zero value is ready to
// use; New is provided for symmetry with the rest of the module.
type Solver struct{}

// New returns a ready-to-use solver.
func New() *Solver {
	return &Solver{}
}

// Solve runs the method on prog until an optimality or infeasibility
// verdict, a limit, or cancellation. Every verdict is in-band: the returned
// error is non-nil only for unusable input (nil or shape-invalid programs).
func (s *Solver) Solve(ctx context.Context, prog *qp.Program, params qp.Params) (*qp.Outcome, error) {
	if prog == nil {
		return nil, errors.New("firstorder: nil program")
	}
	if err := prog.Validate(); err != nil {
		return nil, fmt.Errorf("firstorder: invalid program: %w", err)
	}
	p := params.WithDefaults()
	if p.SolveID == "" {
		p.SolveID = uuid.NewString()
	}

	log := logger.Logger().With().Str("solve_id", p.SolveID).Logger()
	if p.Verbosity >= 1 {
		log.Debug().
			Int("variables", prog.NumVariables).
			Int("constraints", prog.NumConstraints).
			Int("nonzeros", prog.Constraints.NNZ()).
			Bool("quadratic", prog.IsQuadratic()).
			Msg("firstorder solve start")
	}

	if prog.NumVariables == 0 {
		return emptyModelOutcome(prog, p), nil
	}

	st := newState(prog, p, log)
	return st.run(ctx), nil
}

// emptyModelOutcome settles a model without variables directly: every row
// reduces to l ≤ 0 ≤ u.
func emptyModelOutcome(prog *qp.Program, p qp.Params) *qp.Outcome {
	reason := qp.ReasonOptimal
	for i := 0; i < prog.NumConstraints; i++ {
		if prog.ConstraintLower[i] > 0 || prog.ConstraintUpper[i] < 0 {
			reason = qp.ReasonInfeasible
			break
		}
	}
	o := &qp.Outcome{
		Reason:         reason,
		PrimalSolution: []float64{},
		DualSolution:   make([]float64, prog.NumConstraints),
		ReducedCosts:   []float64{},
		Objective:      prog.ObjectiveOffset,
		PrimalFeasible: reason == qp.ReasonOptimal,
		Log: qp.SolveLog{
			Version:        saddle.Version.String(),
			SolveID:        p.SolveID,
			Reason:         reason,
			NumConstraints: prog.NumConstraints,
		},
	}
	if reason != qp.ReasonOptimal {
		o.Objective = 0
		o.PrimalSolution = nil
		o.DualSolution = nil
		o.ReducedCosts = nil
	}
	return o
}

// state is the per-call workspace of one solve.
type state struct {
	prog *qp.Program
	p    qp.Params
	log  zerolog.Logger

	n, m    int
	at      qp.Matrix // Aᵀ, for sharded transpose products
	eta     float64   // primal and dual step size
	rhsNorm float64   // scale of the finite row bounds
	objNorm float64   // scale of the linear objective

	x, y         []float64
	xNext, yNext []float64
	xTilde       []float64 // reflected primal point
	xSum, ySum   []float64 // running averages since the last restart
	avgCount     int

	// window baselines for ray extraction
	xPrev, yPrev []float64

	// scratch
	ax  []float64 // length m
	aty []float64 // length n
	qx  []float64 // length n

	// average candidate buffers, reused between checks
	xAvg, yAvg []float64

	// ray candidate buffers for certificate extraction
	rayM []float64
	rayN []float64

	start        time.Time
	history      []qp.IterationStats
	snapshotMask int // append a snapshot every (mask+1) checks
	checks       int
}

func newState(prog *qp.Program, p qp.Params, log zerolog.Logger) *state {
	n, m := prog.NumVariables, prog.NumConstraints
	st := &state{
		prog:   prog,
		p:      p,
		log:    log,
		n:      n,
		m:      m,
		at:     prog.Constraints.Transpose(),
		x:      make([]float64, n),
		y:      make([]float64, m),
		xNext:  make([]float64, n),
		yNext:  make([]float64, m),
		xTilde: make([]float64, n),
		xSum:   make([]float64, n),
		ySum:   make([]float64, m),
		xPrev:  make([]float64, n),
		yPrev:  make([]float64, m),
		ax:     make([]float64, m),
		aty:    make([]float64, n),
		qx:     make([]float64, n),
		xAvg:   make([]float64, n),
		yAvg:   make([]float64, m),
		rayM:   make([]float64, m),
		rayN:   make([]float64, n),
		start:  time.Now(),
	}
	st.eta = stepSize(prog)
	st.rhsNorm = rowBoundNorm(prog)
	st.objNorm = floats.Norm(prog.Objective, 2)

	// start from the projected origin
	for j := 0; j < n; j++ {
		st.x[j] = clamp(0, prog.VariableLower[j], prog.VariableUpper[j])
	}
	copy(st.xPrev, st.x)
	return st
}

// stepSize picks τ = σ = η satisfying 1/η − η‖A‖² ≥ ‖Q‖/2 with a 0.9 safety
// factor, using the cheap deterministic bounds ‖A‖₂ ≤ √(‖A‖₁·‖A‖∞) and
// ‖Q‖₂ ≤ max mirrored row sum.
func stepSize(prog *qp.Program) float64 {
	normA := math.Sqrt(prog.Constraints.MaxAbsColSum() * prog.Constraints.MaxAbsRowSum())
	normQ := symUpperMaxRowSum(&prog.ObjectiveMatrix)

	var eta float64
	switch {
	case normA == 0 && normQ == 0:
		eta = 1
	case normA == 0:
		eta = 2 / normQ
	default:
		eta = (-normQ/2 + math.Sqrt(normQ*normQ/4+4*normA*normA)) / (2 * normA * normA)
	}
	return 0.9 * eta
}

// symUpperMaxRowSum bounds the spectral norm of the symmetric matrix whose
// upper triangle is stored in m, by its largest mirrored absolute row sum.
func symUpperMaxRowSum(m *qp.Matrix) float64 {
	if m.NNZ() == 0 {
		return 0
	}
	sums := make([]float64, m.Cols)
	for i := 0; i < m.Rows; i++ {
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			j := m.ColIndex[k]
			v := math.Abs(m.Value[k])
			sums[i] += v
			if j != i {
				sums[j] += v
			}
		}
	}
	var max float64
	for _, s := range sums {
		if s > max {
			max = s
		}
	}
	return max
}

// rowBoundNorm measures the scale of the finite row bounds, used in the
// relative feasibility threshold.
func rowBoundNorm(prog *qp.Program) float64 {
	var ss float64
	for i := 0; i < prog.NumConstraints; i++ {
		var v float64
		if l := prog.ConstraintLower[i]; !math.IsInf(l, -1) {
			v = math.Abs(l)
		}
		if u := prog.ConstraintUpper[i]; !math.IsInf(u, 1) && math.Abs(u) > v {
			v = math.Abs(u)
		}
		ss += v * v
	}
	return math.Sqrt(ss)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// run is the main loop: checkpoints every CheckInterval iterations, a PDHG
// step otherwise.
func (st *state) run(ctx context.Context) *qp.Outcome {
	iter := 0
	for {
		if iter%st.p.CheckInterval == 0 {
			if out := st.checkpoint(ctx, iter); out != nil {
				return out
			}
		}
		if iter >= st.p.IterationLimit {
			ev := st.bestCandidate()
			return st.finish(qp.ReasonIterationLimit, ev, iter)
		}
		st.step()
		iter++
	}
}

// step performs one PDHG iteration:
//
//	x⁺ = proj_box(x − η(c + Qx − Aᵀy))
//	y⁺ per row from x̃ = 2x⁺ − x with the two-sided bound rule
func (st *state) step() {
	prog := st.prog

	st.mul(&st.at, st.y, st.aty)
	quadratic := prog.IsQuadratic()
	if quadratic {
		prog.ObjectiveMatrix.SymUpperMulVec(st.x, st.qx)
	}
	for j := 0; j < st.n; j++ {
		g := prog.Objective[j] - st.aty[j]
		if quadratic {
			g += st.qx[j]
		}
		xn := clamp(st.x[j]-st.eta*g, prog.VariableLower[j], prog.VariableUpper[j])
		st.xTilde[j] = 2*xn - st.x[j]
		st.xNext[j] = xn
	}

	st.mul(&prog.Constraints, st.xTilde, st.ax)
	for i := 0; i < st.m; i++ {
		a := st.ax[i]
		yl := st.y[i] + st.eta*(prog.ConstraintLower[i]-a)
		yu := st.y[i] + st.eta*(prog.ConstraintUpper[i]-a)
		switch {
		case yl > 0:
			st.yNext[i] = yl
		case yu < 0:
			st.yNext[i] = yu
		default:
			st.yNext[i] = 0
		}
	}

	st.x, st.xNext = st.xNext, st.x
	st.y, st.yNext = st.yNext, st.y
	floats.Add(st.xSum, st.x)
	floats.Add(st.ySum, st.y)
	st.avgCount++
}

// mul computes dst = mat·x, sharding rows across workers when asked to.
func (st *state) mul(mat *qp.Matrix, x, dst []float64) {
	workers := st.p.Workers
	if workers <= 1 || mat.Rows < 2*workers {
		mat.MulVec(x, dst)
		return
	}
	var g errgroup.Group
	chunk := (mat.Rows + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, mat.Rows)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			mat.MulVecRange(lo, hi, x, dst)
			return nil
		})
	}
	// the shards cannot fail; Wait only joins them
	_ = g.Wait()
}

// checkpoint runs the termination logic. It returns a finished outcome or
// nil to continue iterating.
func (st *state) checkpoint(ctx context.Context, iter int) *qp.Outcome {
	st.checks++

	// degenerated iterates trump everything else
	if !finiteSlice(st.x) || !finiteSlice(st.y) {
		return st.finish(qp.ReasonNumericalError, evalResult{}, iter)
	}

	ev := st.bestCandidate()

	if ctx.Err() != nil {
		return st.finish(qp.ReasonInterrupted, ev, iter)
	}
	if st.p.TimeLimit > 0 && time.Since(st.start) > st.p.TimeLimit {
		return st.finish(qp.ReasonTimeLimit, ev, iter)
	}
	if ev.optimal {
		return st.finish(qp.ReasonOptimal, ev, iter)
	}
	if st.dualRayFound(iter) {
		return st.finish(qp.ReasonInfeasible, ev, iter)
	}
	if st.primalRayFound(iter) {
		return st.finish(qp.ReasonUnbounded, ev, iter)
	}

	// restart from the average when it scored better
	if ev.fromAverage {
		copy(st.x, ev.x)
		copy(st.y, ev.y)
		zero(st.xSum)
		zero(st.ySum)
		st.avgCount = 0
	}

	st.snapshot(iter, ev)
	if st.p.Verbosity >= 2 {
		st.log.Debug().
			Int("iteration", iter).
			Float64("objective", ev.obj).
			Float64("primal_residual", ev.primalRes).
			Float64("dual_residual", ev.dualRes).
			Float64("gap", ev.gap).
			Bool("restarted", ev.fromAverage).
			Msg("firstorder check")
	}

	copy(st.xPrev, st.x)
	copy(st.yPrev, st.y)
	return nil
}

// snapshot appends a convergence record, thinning the history when it grows
// past 1024 entries so long solves keep bounded logs.
func (st *state) snapshot(iter int, ev evalResult) {
	if st.snapshotMask != 0 && st.checks&st.snapshotMask != 0 {
		return
	}
	if len(st.history) >= 1024 {
		kept := st.history[:0]
		for i := 1; i < len(st.history); i += 2 {
			kept = append(kept, st.history[i])
		}
		st.history = kept
		st.snapshotMask = st.snapshotMask<<1 | 1
	}
	st.history = append(st.history, qp.IterationStats{
		Iteration:      iter,
		Elapsed:        time.Since(st.start),
		Objective:      ev.obj,
		PrimalResidual: ev.primalRes,
		DualResidual:   ev.dualRes,
		Gap:            ev.gap,
	})
}

// finish assembles the outcome for the chosen candidate.
func (st *state) finish(reason qp.TerminationReason, ev evalResult, iter int) *qp.Outcome {
	elapsed := time.Since(st.start)
	out := &qp.Outcome{
		Reason:         reason,
		Objective:      ev.obj,
		PrimalFeasible: ev.feasible,
		Log: qp.SolveLog{
			Version:        saddle.Version.String(),
			SolveID:        st.p.SolveID,
			Reason:         reason,
			Iterations:     iter,
			SolveTime:      elapsed,
			ObjectiveValue: ev.obj,
			PrimalResidual: ev.primalRes,
			DualResidual:   ev.dualRes,
			Gap:            ev.gap,
			NumVariables:   st.n,
			NumConstraints: st.m,
			NumNonzeros:    st.prog.Constraints.NNZ(),
			History:        st.history,
		},
	}

	if reason == qp.ReasonNumericalError {
		if st.p.Verbosity >= 1 {
			st.log.Debug().Int("iteration", iter).Msg("firstorder stopped on numerical error")
		}
		out.Objective = 0
		out.PrimalFeasible = false
		return out
	}

	out.PrimalSolution = append([]float64(nil), ev.x...)
	out.DualSolution = append([]float64(nil), ev.y...)
	out.ReducedCosts = st.reducedCosts(ev.x, ev.y)

	if st.p.Verbosity >= 1 {
		st.log.Debug().
			Int("iteration", iter).
			Dur("took", elapsed).
			Stringer("reason", reason).
			Float64("objective", ev.obj).
			Msg("firstorder solve done")
	}
	return out
}

// reducedCosts computes c + Qx − Aᵀy into a fresh slice.
func (st *state) reducedCosts(x, y []float64) []float64 {
	r := make([]float64, st.n)
	st.mul(&st.at, y, st.aty)
	if st.prog.IsQuadratic() {
		st.prog.ObjectiveMatrix.SymUpperMulVec(x, st.qx)
		for j := 0; j < st.n; j++ {
			r[j] = st.prog.Objective[j] + st.qx[j] - st.aty[j]
		}
		return r
	}
	for j := 0; j < st.n; j++ {
		r[j] = st.prog.Objective[j] - st.aty[j]
	}
	return r
}

func finiteSlice(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}
