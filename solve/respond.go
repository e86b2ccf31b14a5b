package solve

import (
	"fmt"

	"github.com/saddleopt/saddle/mp"
	"github.com/saddleopt/saddle/qp"
)

// buildResponse maps a solver outcome back onto the request's shape. Vectors
// are copied verbatim; only empty vectors are padded with zeros to the
// request's dimensions, and a non-empty vector of the wrong length is a
// solver bug reported as an inconsistency rather than propagated. The
// serialized solve log is attached to every response, diagnostic verdicts
// included.
func buildResponse(req *mp.ModelRequest, outcome *qp.Outcome) (*mp.SolutionResponse, error) {
	const op = "Respond"

	status, err := responseStatus(outcome)
	if err != nil {
		return nil, err
	}

	resp := &mp.SolutionResponse{
		Status:       status,
		StatusDetail: fmt.Sprintf("%s after %d iterations", outcome.Reason, outcome.Log.Iterations),
	}

	n, m := req.NumVariables(), req.NumConstraints()
	if resp.VariableValues, err = padVector(op, "primal solution", outcome.PrimalSolution, n); err != nil {
		return nil, err
	}
	if resp.DualValues, err = padVector(op, "dual solution", outcome.DualSolution, m); err != nil {
		return nil, err
	}
	if resp.ReducedCosts, err = padVector(op, "reduced costs", outcome.ReducedCosts, n); err != nil {
		return nil, err
	}

	// the only other place the sense scaling is applied; see senseScale
	if outcome.HasSolution() {
		resp.ObjectiveValue = senseScale(req.Sense) * outcome.Objective
	}

	info, err := outcome.Log.MarshalBinary()
	if err != nil {
		return nil, wrapError(KindInternalInconsistency, op, err)
	}
	resp.SolverInfo = info

	return resp, nil
}

// responseStatus maps termination reasons onto response statuses. The
// mapping is total over the documented reasons; anything else means the
// solver broke its contract.
func responseStatus(outcome *qp.Outcome) (mp.ResponseStatus, error) {
	switch outcome.Reason {
	case qp.ReasonOptimal:
		return mp.StatusOptimal, nil
	case qp.ReasonInfeasible:
		return mp.StatusInfeasible, nil
	case qp.ReasonUnbounded:
		return mp.StatusUnbounded, nil
	case qp.ReasonNumericalError:
		return mp.StatusNumericalFailure, nil
	case qp.ReasonIterationLimit, qp.ReasonTimeLimit, qp.ReasonInterrupted:
		if outcome.PrimalFeasible && len(outcome.PrimalSolution) > 0 {
			return mp.StatusFeasible, nil
		}
		return mp.StatusNotSolved, nil
	default:
		return mp.StatusUnspecified, newError(KindInternalInconsistency, "Respond", "solver reported reason %s", outcome.Reason)
	}
}

// padVector returns a copy of v, or a zero vector of length n when v is
// empty.
func padVector(op, what string, v []float64, n int) ([]float64, error) {
	switch len(v) {
	case n:
		out := make([]float64, n)
		copy(out, v)
		return out, nil
	case 0:
		return make([]float64, n), nil
	default:
		return nil, newError(KindInternalInconsistency, op, "%s has length %d, want %d", what, len(v), n)
	}
}
