package solve

import (
	"fmt"
	"math"
	"strconv"

	"github.com/saddleopt/saddle/mp"
)

// Limits bounds the size of requests the bridge accepts. A request exactly
// at a limit passes; one entry over fails before any transformation work.
type Limits struct {
	MaxVariables   int
	MaxConstraints int

	// MaxNonzeros caps the structural entry count of the request, counting
	// constraint coefficients (including explicit zeros) and quadratic
	// terms.
	MaxNonzeros int

	// BoundTolerance is how far a lower bound may exceed an upper bound
	// before the pair is rejected as empty.
	BoundTolerance float64
}

// DefaultLimits returns the limits used when a call does not override them.
func DefaultLimits() Limits {
	return Limits{
		MaxVariables:   10_000_000,
		MaxConstraints: 10_000_000,
		MaxNonzeros:    100_000_000,
		BoundTolerance: 1e-9,
	}
}

// checkRequest rejects nil, oversized or structurally broken requests in one
// O(input) pass, before the bridge builds anything.
func checkRequest(req *mp.ModelRequest, lim Limits) error {
	const op = "Guard"

	if req == nil {
		return newError(KindInvalidInput, op, "nil request")
	}
	n := req.NumVariables()
	if n > lim.MaxVariables {
		return newError(KindInvalidInput, op, "too many variables: %d > %d", n, lim.MaxVariables)
	}
	if m := req.NumConstraints(); m > lim.MaxConstraints {
		return newError(KindInvalidInput, op, "too many constraints: %d > %d", m, lim.MaxConstraints)
	}
	if nnz := req.NumNonzeros(); nnz > lim.MaxNonzeros {
		return newError(KindInvalidInput, op, "too many nonzeros: %d > %d", nnz, lim.MaxNonzeros)
	}

	for j := range req.Variables {
		v := &req.Variables[j]
		if err := checkBounds("variable", j, v.Name, v.LowerBound, v.UpperBound, lim.BoundTolerance); err != nil {
			return err
		}
	}
	for i := range req.Constraints {
		c := &req.Constraints[i]
		if len(c.VarIndexes) != len(c.Coefficients) {
			return newError(KindInvalidInput, op, "constraint %d: %d indexes vs %d coefficients",
				i, len(c.VarIndexes), len(c.Coefficients))
		}
		for _, j := range c.VarIndexes {
			if j < 0 || j >= n {
				return newError(KindInvalidInput, op, "constraint %d: variable index %d out of range [0, %d)", i, j, n)
			}
		}
		if err := checkBounds("constraint", i, c.Name, c.LowerBound, c.UpperBound, lim.BoundTolerance); err != nil {
			return err
		}
	}
	for k := range req.QuadraticObjective {
		t := &req.QuadraticObjective[k]
		if t.Var1 < 0 || t.Var1 >= n || t.Var2 < 0 || t.Var2 >= n {
			return newError(KindInvalidInput, op, "quadratic term %d: variable index out of range [0, %d)", k, n)
		}
	}

	return checkOptions(req.Options)
}

// checkBounds rejects NaN bounds, bound intervals that are empty by
// construction (lower = +∞ or upper = −∞), and crossed bound pairs beyond
// the tolerance. A pair crossed within the tolerance passes unchanged.
func checkBounds(what string, idx int, name string, lower, upper, tol float64) error {
	const op = "Guard"
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return newError(KindInvalidInput, op, "%s %s: NaN bound", what, describe(idx, name))
	}
	if math.IsInf(lower, 1) || math.IsInf(upper, -1) {
		return newError(KindInvalidInput, op, "%s %s: bound interval [%g, %g] is empty", what, describe(idx, name), lower, upper)
	}
	if lower > upper+tol {
		return newError(KindInvalidInput, op, "%s %s: lower bound %g exceeds upper bound %g", what, describe(idx, name), lower, upper)
	}
	return nil
}

func describe(idx int, name string) string {
	if name != "" {
		return fmt.Sprintf("%d (%s)", idx, name)
	}
	return strconv.Itoa(idx)
}

func checkOptions(o mp.SolverOptions) error {
	const op = "Guard"
	if o.TimeLimit < 0 {
		return newError(KindInvalidInput, op, "negative time limit %s", o.TimeLimit)
	}
	if o.IterationLimit < 0 {
		return newError(KindInvalidInput, op, "negative iteration limit %d", o.IterationLimit)
	}
	if o.RelativeTolerance < 0 || o.AbsoluteTolerance < 0 {
		return newError(KindInvalidInput, op, "negative tolerance")
	}
	if o.Workers < 0 {
		return newError(KindInvalidInput, op, "negative worker count %d", o.Workers)
	}
	return nil
}
