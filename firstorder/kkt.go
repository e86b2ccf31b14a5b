package firstorder

import (
	"math"
)

// evalResult captures the KKT measures of one candidate point. x and y are
// views into solver buffers; finish copies them before they are reused.
type evalResult struct {
	x, y []float64

	obj, dualObj            float64
	primalRes, dualRes, gap float64

	feasible    bool // primal residual within tolerance
	optimal     bool // all three optimality criteria hold
	fromAverage bool // candidate is the running average, not the iterate
	score       float64
}

// bestCandidate evaluates the current iterate and, once averaging has
// progressed, the running average, and returns the better-scoring one.
func (st *state) bestCandidate() evalResult {
	cur := st.evaluate(st.x, st.y)
	if st.avgCount == 0 {
		return cur
	}
	inv := 1 / float64(st.avgCount)
	for j := range st.xAvg {
		st.xAvg[j] = st.xSum[j] * inv
	}
	for i := range st.yAvg {
		st.yAvg[i] = st.ySum[i] * inv
	}
	avg := st.evaluate(st.xAvg, st.yAvg)
	avg.fromAverage = true
	if avg.score < cur.score {
		return avg
	}
	return cur
}

// evaluate computes objective, dual objective, residuals and the combined
// score at (x, y).
//
// The dual objective follows the bound structure: row multipliers pay the
// row bound they push against, reduced costs assignable to a finite variable
// bound pay that bound, and the unassignable remainder is the dual residual.
// For quadratic programs the standard −½xᵀQx correction applies.
func (st *state) evaluate(x, y []float64) evalResult {
	prog := st.prog
	p := st.p

	// primal residual: row violations only, the box holds by projection
	st.mul(&prog.Constraints, x, st.ax)
	var pr2 float64
	for i := 0; i < st.m; i++ {
		a := st.ax[i]
		var v float64
		if l := prog.ConstraintLower[i]; a < l {
			v = l - a
		}
		if u := prog.ConstraintUpper[i]; a > u {
			v = a - u
		}
		pr2 += v * v
	}
	primalRes := math.Sqrt(pr2)

	// fills st.qx with Qx when the program is quadratic
	obj := prog.ObjectiveValue(x, st.qx)

	st.mul(&st.at, y, st.aty)
	quadratic := prog.IsQuadratic()
	var dr2, boxTerm, xQx float64
	for j := 0; j < st.n; j++ {
		r := prog.Objective[j] - st.aty[j]
		if quadratic {
			r += st.qx[j]
			xQx += st.qx[j] * x[j]
		}
		switch {
		case r > 0 && !math.IsInf(prog.VariableLower[j], -1):
			boxTerm += prog.VariableLower[j] * r
		case r < 0 && !math.IsInf(prog.VariableUpper[j], 1):
			boxTerm += prog.VariableUpper[j] * r
		default:
			dr2 += r * r
		}
	}
	dualRes := math.Sqrt(dr2)

	dualObj := prog.ObjectiveOffset + boxTerm - 0.5*xQx
	for i := 0; i < st.m; i++ {
		switch yi := y[i]; {
		case yi > 0:
			dualObj += prog.ConstraintLower[i] * yi
		case yi < 0:
			dualObj += prog.ConstraintUpper[i] * yi
		}
	}

	gap := math.Abs(obj - dualObj)

	ev := evalResult{
		x: x, y: y,
		obj: obj, dualObj: dualObj,
		primalRes: primalRes, dualRes: dualRes, gap: gap,
	}
	ev.feasible = primalRes <= p.AbsoluteTolerance+p.RelativeTolerance*st.rhsNorm
	dualOK := dualRes <= p.AbsoluteTolerance+p.RelativeTolerance*st.objNorm
	gapOK := gap <= p.AbsoluteTolerance+p.RelativeTolerance*(math.Abs(obj)+math.Abs(dualObj))
	ev.optimal = ev.feasible && dualOK && gapOK

	gapScore := gap / (1 + math.Abs(obj) + math.Abs(dualObj))
	if math.IsNaN(gapScore) {
		gapScore = math.Inf(1)
	}
	ev.score = primalRes/(1+st.rhsNorm) + dualRes/(1+st.objNorm) + gapScore
	return ev
}
