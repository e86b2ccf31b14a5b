package firstorder

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Certificate extraction. When a problem has no feasible point the dual
// iterates diverge along a Farkas ray; when the objective is unbounded the
// primal iterates diverge along an improving recession direction. Both
// checks normalize a candidate to unit infinity norm, drop components below
// the absolute tolerance, and then verify the certificate conditions
// exactly. A rejected candidate only postpones detection; an accepted one is
// a proof up to the dropped components.

// dualRayFound tests the window difference of the dual iterate and the dual
// iterate itself for a certificate of primal infeasibility.
func (st *state) dualRayFound(iter int) bool {
	if st.m == 0 || iter == 0 {
		return false
	}
	floats.SubTo(st.rayM, st.y, st.yPrev)
	if st.certifyDualRay() {
		return true
	}
	copy(st.rayM, st.y)
	return st.certifyDualRay()
}

// certifyDualRay checks the candidate λ in st.rayM:
//
//	L(λ) + B(−Aᵀλ) > ε
//
// with L(λ) = Σᵢ λᵢ⁺·lᵢ − λᵢ⁻·uᵢ over rows, B(μ) = Σⱼ μⱼ⁺·lbⱼ − μⱼ⁻·ubⱼ
// over the box, and every paid bound finite. Any feasible x satisfies
// λᵀAx ≥ L(λ) and (−Aᵀλ)ᵀx ≥ B(−Aᵀλ), and the two sides sum to zero, so a
// positive total proves there is no feasible x. st.rayM is normalized in
// place; st.aty is clobbered.
func (st *state) certifyDualRay() bool {
	lambda := st.rayM
	eps := st.p.AbsoluteTolerance
	if !normalizeRay(lambda, eps) {
		return false
	}

	prog := st.prog
	var total float64
	for i, li := range lambda {
		switch {
		case li > 0:
			l := prog.ConstraintLower[i]
			if math.IsInf(l, -1) {
				return false
			}
			total += l * li
		case li < 0:
			u := prog.ConstraintUpper[i]
			if math.IsInf(u, 1) {
				return false
			}
			total += u * li
		}
	}

	st.mul(&st.at, lambda, st.aty)
	for j := 0; j < st.n; j++ {
		mu := -st.aty[j]
		switch {
		case mu > eps:
			lb := prog.VariableLower[j]
			if math.IsInf(lb, -1) {
				return false
			}
			total += lb * mu
		case mu < -eps:
			ub := prog.VariableUpper[j]
			if math.IsInf(ub, 1) {
				return false
			}
			total += ub * mu
		}
	}
	return total > eps
}

// primalRayFound tests the window difference of the primal iterate and the
// iterate itself for an improving recession direction, which certifies an
// unbounded objective.
func (st *state) primalRayFound(iter int) bool {
	if iter == 0 {
		return false
	}
	floats.SubTo(st.rayN, st.x, st.xPrev)
	if st.certifyPrimalRay() {
		return true
	}
	copy(st.rayN, st.x)
	return st.certifyPrimalRay()
}

// certifyPrimalRay checks the candidate d in st.rayN: d must recede inside
// the box (dⱼ > 0 only with ubⱼ = +∞, dⱼ < 0 only with lbⱼ = −∞) and inside
// the rows ((Ad)ᵢ > 0 only with uᵢ = +∞, (Ad)ᵢ < 0 only with lᵢ = −∞), leave
// the quadratic term flat (Qd ≈ 0), and improve the objective (cᵀd < −ε).
// st.rayN is normalized in place; st.ax and st.qx are clobbered.
func (st *state) certifyPrimalRay() bool {
	d := st.rayN
	eps := st.p.AbsoluteTolerance
	if !normalizeRay(d, eps) {
		return false
	}

	prog := st.prog
	for j, dj := range d {
		switch {
		case dj > 0:
			if !math.IsInf(prog.VariableUpper[j], 1) {
				return false
			}
		case dj < 0:
			if !math.IsInf(prog.VariableLower[j], -1) {
				return false
			}
		}
	}

	st.mul(&prog.Constraints, d, st.ax)
	for i := 0; i < st.m; i++ {
		switch w := st.ax[i]; {
		case w > eps:
			if !math.IsInf(prog.ConstraintUpper[i], 1) {
				return false
			}
		case w < -eps:
			if !math.IsInf(prog.ConstraintLower[i], -1) {
				return false
			}
		}
	}

	if prog.IsQuadratic() {
		prog.ObjectiveMatrix.SymUpperMulVec(d, st.qx)
		for _, q := range st.qx {
			if math.Abs(q) > eps {
				return false
			}
		}
	}

	return floats.Dot(prog.Objective, d) < -eps
}

// normalizeRay scales v to unit infinity norm and zeroes components at or
// below eps. It reports false for a vanishing candidate.
func normalizeRay(v []float64, eps float64) bool {
	max := floats.Norm(v, math.Inf(1))
	if max == 0 || math.IsNaN(max) || math.IsInf(max, 0) {
		return false
	}
	inv := 1 / max
	for i := range v {
		v[i] *= inv
		if math.Abs(v[i]) <= eps {
			v[i] = 0
		}
	}
	return true
}
