package solve

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/saddleopt/saddle/mp"
	"github.com/saddleopt/saddle/qp"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// stubSolver returns a canned outcome and records how it was invoked.
type stubSolver struct {
	calls      int
	outcome    *qp.Outcome
	err        error
	lastProg   *qp.Program
	lastParams qp.Params
}

func (s *stubSolver) Solve(_ context.Context, prog *qp.Program, params qp.Params) (*qp.Outcome, error) {
	s.calls++
	s.lastProg = prog
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	if s.outcome == nil {
		return nil, nil
	}
	out := *s.outcome // Model mutates the log; keep the canned outcome pristine
	return &out, nil
}

func optimalOutcome(n, m int) *qp.Outcome {
	return &qp.Outcome{
		Reason:         qp.ReasonOptimal,
		PrimalSolution: make([]float64, n),
		DualSolution:   make([]float64, m),
		ReducedCosts:   make([]float64, n),
		PrimalFeasible: true,
		Log:            qp.SolveLog{Reason: qp.ReasonOptimal},
	}
}

// lpRequest is a basic linear programming problem.
//
//	Min    f  =  x_0 +  x_1 + 3
//	s.t.                x_1 <= 7
//	       5 <=  x_0 + 2x_1 <= 15
//	       6 <= 3x_0 + 2x_1
//	0 <= x_0 <= 4; 1 <= x_1
func lpRequest() *mp.ModelRequest {
	return &mp.ModelRequest{
		Name:            "lp",
		ObjectiveOffset: 3,
		Variables: []mp.Variable{
			{Name: "x0", LowerBound: 0, UpperBound: 4, ObjectiveCoefficient: 1},
			{Name: "x1", LowerBound: 1, UpperBound: mp.Inf(), ObjectiveCoefficient: 1},
		},
		Constraints: []mp.Constraint{
			{LowerBound: mp.NegInf(), UpperBound: 7, VarIndexes: []int{1}, Coefficients: []float64{1}},
			{LowerBound: 5, UpperBound: 15, VarIndexes: []int{0, 1}, Coefficients: []float64{1, 2}},
			{LowerBound: 6, UpperBound: mp.Inf(), VarIndexes: []int{0, 1}, Coefficients: []float64{3, 2}},
		},
	}
}

func TestLP(t *testing.T) {
	resp, err := Model(context.Background(), lpRequest())
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if !resp.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", resp.Status)
	}
	if !almostEqual(resp.VariableValues[0], 0.5, 0.01) {
		t.Errorf("x0 = %f, expected 0.5", resp.VariableValues[0])
	}
	if !almostEqual(resp.VariableValues[1], 2.25, 0.01) {
		t.Errorf("x1 = %f, expected 2.25", resp.VariableValues[1])
	}
	if !almostEqual(resp.ObjectiveValue, 5.75, 0.01) {
		t.Errorf("Objective = %f, expected 5.75", resp.ObjectiveValue)
	}

	wantDuals := []float64{0, 0.25, 0.25}
	for i, want := range wantDuals {
		if !almostEqual(resp.DualValues[i], want, 0.01) {
			t.Errorf("dual %d = %f, expected %f", i, resp.DualValues[i], want)
		}
	}
}

// TestLPMaximize solves the same model with a maximization objective. Dual
// values and reduced costs keep the minimization convention; only the
// objective value is reported in the request's sense.
func TestLPMaximize(t *testing.T) {
	req := lpRequest()
	req.Sense = mp.Maximize

	resp, err := Model(context.Background(), req)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if !resp.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", resp.Status)
	}
	if !almostEqual(resp.VariableValues[0], 4.0, 0.01) {
		t.Errorf("x0 = %f, expected 4.0", resp.VariableValues[0])
	}
	if !almostEqual(resp.VariableValues[1], 5.5, 0.01) {
		t.Errorf("x1 = %f, expected 5.5", resp.VariableValues[1])
	}
	if !almostEqual(resp.ObjectiveValue, 12.5, 0.01) {
		t.Errorf("Objective = %f, expected 12.5", resp.ObjectiveValue)
	}
	// x_0 + 2x_1 is active at its upper bound 15.
	if !almostEqual(resp.DualValues[1], -0.5, 0.01) {
		t.Errorf("dual 1 = %f, expected -0.5", resp.DualValues[1])
	}
}

// TestQP tests a quadratic programming problem.
//
//	minimize -x_1 - 3x_2 + (1/2)(2x_0^2 - 2x_0x_2 + 0.2x_1^2 + 2x_2^2)
//	subject to x_0 + x_2 <= 2
func TestQP(t *testing.T) {
	free := func(c float64) mp.Variable {
		return mp.Variable{LowerBound: mp.NegInf(), UpperBound: mp.Inf(), ObjectiveCoefficient: c}
	}
	req := &mp.ModelRequest{
		Variables: []mp.Variable{free(0), free(-1), free(-3)},
		Constraints: []mp.Constraint{
			{LowerBound: mp.NegInf(), UpperBound: 2, VarIndexes: []int{0, 2}, Coefficients: []float64{1, 1}},
		},
		QuadraticObjective: []mp.QuadraticTerm{
			{Var1: 0, Var2: 0, Coefficient: 2},
			{Var1: 0, Var2: 2, Coefficient: -1},
			{Var1: 1, Var2: 1, Coefficient: 0.2},
			{Var1: 2, Var2: 2, Coefficient: 2},
		},
	}

	resp, err := Model(context.Background(), req)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if !resp.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", resp.Status)
	}
	if !almostEqual(resp.VariableValues[0], 0.5, 0.01) {
		t.Errorf("x0 = %f, expected 0.5", resp.VariableValues[0])
	}
	if !almostEqual(resp.VariableValues[1], 5.0, 0.01) {
		t.Errorf("x1 = %f, expected 5.0", resp.VariableValues[1])
	}
	if !almostEqual(resp.VariableValues[2], 1.5, 0.01) {
		t.Errorf("x2 = %f, expected 1.5", resp.VariableValues[2])
	}
	if !almostEqual(resp.ObjectiveValue, -5.25, 0.01) {
		t.Errorf("Objective = %f, expected -5.25", resp.ObjectiveValue)
	}
}

// TestOriginOptimal tests a model whose start iterate is already optimal.
//
//	Min    f  =  x_0 + x_1   s.t.   x_0 + x_1 <= 10,   x >= 0
func TestOriginOptimal(t *testing.T) {
	req := &mp.ModelRequest{
		Variables: []mp.Variable{
			{LowerBound: 0, UpperBound: mp.Inf(), ObjectiveCoefficient: 1},
			{LowerBound: 0, UpperBound: mp.Inf(), ObjectiveCoefficient: 1},
		},
		Constraints: []mp.Constraint{
			{LowerBound: mp.NegInf(), UpperBound: 10, VarIndexes: []int{0, 1}, Coefficients: []float64{1, 1}},
		},
	}

	resp, err := Model(context.Background(), req)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if !resp.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", resp.Status)
	}
	if !almostEqual(resp.ObjectiveValue, 0, 1e-6) {
		t.Errorf("Objective = %f, expected 0", resp.ObjectiveValue)
	}
	for j, v := range resp.VariableValues {
		if !almostEqual(v, 0, 1e-6) {
			t.Errorf("x%d = %f, expected 0", j, v)
		}
	}
	if !almostEqual(resp.DualValues[0], 0, 1e-6) {
		t.Errorf("dual = %f, expected 0", resp.DualValues[0])
	}
	// The slack row leaves the reduced costs at the objective coefficients.
	for j, rc := range resp.ReducedCosts {
		if !almostEqual(rc, 1, 1e-6) {
			t.Errorf("reduced cost %d = %f, expected 1", j, rc)
		}
	}
	// The attached log decodes and reflects the verdict.
	log, err := qp.UnmarshalSolveLog(resp.SolverInfo)
	if err != nil {
		t.Fatalf("UnmarshalSolveLog failed: %v", err)
	}
	if log.Reason != qp.ReasonOptimal {
		t.Errorf("log reason = %s, expected optimal", log.Reason)
	}
}

// TestInfeasible tests detection of infeasible models.
func TestInfeasible(t *testing.T) {
	req := &mp.ModelRequest{
		Variables: []mp.Variable{{LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1}},
		Constraints: []mp.Constraint{
			{LowerBound: 5, UpperBound: mp.Inf(), VarIndexes: []int{0}, Coefficients: []float64{1}},
			{LowerBound: mp.NegInf(), UpperBound: 3, VarIndexes: []int{0}, Coefficients: []float64{1}},
		},
	}

	resp, err := Model(context.Background(), req)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if resp.Status != mp.StatusInfeasible {
		t.Errorf("Expected infeasible, got %s", resp.Status)
	}
	if resp.HasSolution() {
		t.Errorf("Expected no solution on an infeasible model")
	}
	if resp.ObjectiveValue != 0 {
		t.Errorf("Objective = %f, expected 0", resp.ObjectiveValue)
	}
	if len(resp.VariableValues) != 1 || len(resp.DualValues) != 2 {
		t.Errorf("vector lengths = %d/%d, expected 1/2",
			len(resp.VariableValues), len(resp.DualValues))
	}
	if len(resp.SolverInfo) == 0 {
		t.Errorf("Expected solver info on a diagnostic verdict")
	}
}

// TestUnbounded tests detection of an unbounded objective.
func TestUnbounded(t *testing.T) {
	req := &mp.ModelRequest{
		Sense: mp.Maximize,
		Variables: []mp.Variable{
			{LowerBound: 1, UpperBound: mp.Inf(), ObjectiveCoefficient: 1},
		},
	}

	resp, err := Model(context.Background(), req)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if resp.Status != mp.StatusUnbounded {
		t.Errorf("Expected unbounded, got %s", resp.Status)
	}
	if resp.HasSolution() {
		t.Errorf("Expected no solution on an unbounded model")
	}
}

// TestEmptyModel tests that a model without variables reports the offset.
func TestEmptyModel(t *testing.T) {
	req := &mp.ModelRequest{Sense: mp.Maximize, ObjectiveOffset: 5}

	resp, err := Model(context.Background(), req)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if !resp.IsOptimal() {
		t.Fatalf("Expected optimal for empty model, got %s", resp.Status)
	}
	if !almostEqual(resp.ObjectiveValue, 5, 1e-9) {
		t.Errorf("Objective = %f, expected 5", resp.ObjectiveValue)
	}
	if len(resp.VariableValues) != 0 || len(resp.DualValues) != 0 || len(resp.ReducedCosts) != 0 {
		t.Errorf("Expected empty solution vectors")
	}
}

// TestRelaxedIntegers solves the continuous relaxation of an integer model.
// Relaxation drops integrality and keeps bounds: the optimum is fractional.
func TestRelaxedIntegers(t *testing.T) {
	req := lpRequest()
	req.Sense = mp.Maximize
	req.Variables[0].Integer = true
	req.Variables[1].Integer = true
	req.RelaxIntegerVariables = true

	resp, err := Model(context.Background(), req, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if !resp.IsOptimal() {
		t.Fatalf("Expected optimal, got %s", resp.Status)
	}
	if !almostEqual(resp.VariableValues[1], 5.5, 0.01) {
		t.Errorf("x1 = %f, expected the fractional 5.5", resp.VariableValues[1])
	}
	if !almostEqual(resp.ObjectiveValue, 12.5, 0.01) {
		t.Errorf("Objective = %f, expected 12.5", resp.ObjectiveValue)
	}

	log, err := qp.UnmarshalSolveLog(resp.SolverInfo)
	if err != nil {
		t.Fatalf("UnmarshalSolveLog failed: %v", err)
	}
	if log.RelaxedIntegers != 2 {
		t.Errorf("RelaxedIntegers = %d, expected 2", log.RelaxedIntegers)
	}
}

// TestIntegerRejected verifies that integer variables without the relaxation
// flag fail before the solver runs.
func TestIntegerRejected(t *testing.T) {
	req := lpRequest()
	req.Variables[1].Integer = true

	stub := &stubSolver{outcome: optimalOutcome(2, 3)}
	_, err := Model(context.Background(), req, WithSolver(stub))
	if err == nil {
		t.Fatalf("Expected an error for an integer model without relaxation")
	}
	if KindOf(err) != KindIntegralityNotSupported {
		t.Errorf("KindOf(err) = %s, expected %s", KindOf(err), KindIntegralityNotSupported)
	}
	if stub.calls != 0 {
		t.Errorf("solver ran %d times, expected 0", stub.calls)
	}
}

// TestFeasibleOnIterationLimit stops a solve early with a feasible iterate.
//
//	Min    f  = -x   over   0 <= x <= 4
func TestFeasibleOnIterationLimit(t *testing.T) {
	req := &mp.ModelRequest{
		Variables: []mp.Variable{{LowerBound: 0, UpperBound: 4, ObjectiveCoefficient: -1}},
		Options:   mp.SolverOptions{IterationLimit: 1},
	}

	resp, err := Model(context.Background(), req)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if resp.Status != mp.StatusFeasible {
		t.Fatalf("Expected feasible, got %s", resp.Status)
	}
	if !resp.HasSolution() {
		t.Errorf("Expected a usable solution at the iteration limit")
	}
	// one projected gradient step from 0 with unit objective and step 0.9
	if !almostEqual(resp.VariableValues[0], 0.9, 1e-9) {
		t.Errorf("x = %f, expected 0.9", resp.VariableValues[0])
	}
	if !almostEqual(resp.ObjectiveValue, -0.9, 1e-9) {
		t.Errorf("Objective = %f, expected -0.9", resp.ObjectiveValue)
	}
}

// TestNotSolvedOnIterationLimit stops a solve early while still infeasible.
func TestNotSolvedOnIterationLimit(t *testing.T) {
	req := lpRequest()
	req.Options.IterationLimit = 1

	resp, err := Model(context.Background(), req)
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	if resp.Status != mp.StatusNotSolved {
		t.Fatalf("Expected not solved, got %s", resp.Status)
	}
	if resp.HasSolution() {
		t.Errorf("Expected no usable solution")
	}
	if resp.ObjectiveValue != 0 {
		t.Errorf("Objective = %f, expected 0", resp.ObjectiveValue)
	}
	// the last iterate is still reported for diagnostics
	if len(resp.VariableValues) != 2 {
		t.Errorf("len(VariableValues) = %d, expected 2", len(resp.VariableValues))
	}
}

// TestInterrupted cancels the context before solving. Cancellation is a
// verdict, not an error.
func TestInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := Model(ctx, lpRequest())
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}
	if resp.Status != mp.StatusNotSolved {
		t.Errorf("Expected not solved, got %s", resp.Status)
	}
}

// TestSolverInfo decodes the solve log attached to a response.
func TestSolverInfo(t *testing.T) {
	resp, err := Model(context.Background(), lpRequest())
	if err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	log, err := qp.UnmarshalSolveLog(resp.SolverInfo)
	if err != nil {
		t.Fatalf("UnmarshalSolveLog failed: %v", err)
	}
	if log.SolveID == "" {
		t.Errorf("Expected a solve ID in the log")
	}
	if log.Reason != qp.ReasonOptimal {
		t.Errorf("Reason = %s, expected optimal", log.Reason)
	}
	if log.NumVariables != 2 || log.NumConstraints != 3 || log.NumNonzeros != 5 {
		t.Errorf("log reports %dx%d/%d, expected 2x3/5",
			log.NumVariables, log.NumConstraints, log.NumNonzeros)
	}
	if log.SolveTime <= 0 {
		t.Errorf("SolveTime = %v, expected > 0", log.SolveTime)
	}
}

// TestOptionsPassThrough checks that request options reach the solver as
// parameters.
func TestOptionsPassThrough(t *testing.T) {
	req := lpRequest()
	req.Options = mp.SolverOptions{
		TimeLimit:         42,
		IterationLimit:    7,
		RelativeTolerance: 1e-4,
		AbsoluteTolerance: 1e-5,
		Workers:           3,
		Verbosity:         2,
	}

	stub := &stubSolver{outcome: optimalOutcome(2, 3)}
	if _, err := Model(context.Background(), req, WithSolver(stub)); err != nil {
		t.Fatalf("Model failed: %v", err)
	}

	p := stub.lastParams
	if p.TimeLimit != 42 || p.IterationLimit != 7 || p.Workers != 3 || p.Verbosity != 2 {
		t.Errorf("params = %+v do not match the request options", p)
	}
	if p.RelativeTolerance != 1e-4 || p.AbsoluteTolerance != 1e-5 {
		t.Errorf("tolerances = %g/%g, expected 1e-4/1e-5", p.RelativeTolerance, p.AbsoluteTolerance)
	}
	if p.SolveID == "" {
		t.Errorf("Expected a generated solve ID")
	}
}

// TestSolverFailure wraps a solver error as an invocation failure.
func TestSolverFailure(t *testing.T) {
	cause := errors.New("kernel exploded")
	stub := &stubSolver{err: cause}

	_, err := Model(context.Background(), lpRequest(), WithSolver(stub))
	if err == nil {
		t.Fatalf("Expected an error from a failing solver")
	}
	if KindOf(err) != KindSolverInvocation {
		t.Errorf("KindOf(err) = %s, expected %s", KindOf(err), KindSolverInvocation)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Expected the cause to be wrapped")
	}
}

// TestNilOutcome treats a solver returning neither outcome nor error as an
// internal inconsistency.
func TestNilOutcome(t *testing.T) {
	stub := &stubSolver{}

	_, err := Model(context.Background(), lpRequest(), WithSolver(stub))
	if err == nil {
		t.Fatalf("Expected an error for a nil outcome")
	}
	if KindOf(err) != KindInternalInconsistency {
		t.Errorf("KindOf(err) = %s, expected %s", KindOf(err), KindInternalInconsistency)
	}
}

// Benchmarks

func BenchmarkModel(b *testing.B) {
	req := &mp.ModelRequest{
		Variables: []mp.Variable{
			{LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1},
			{LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1},
		},
		Constraints: []mp.Constraint{
			{LowerBound: 1, UpperBound: 5, VarIndexes: []int{0, 1}, Coefficients: []float64{1, 1}},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Model(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
