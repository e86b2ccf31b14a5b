// Package qp defines the solver-native form of a linear or quadratic
// program, the parameters and outcome of a solve, and the serializable solve
// log.
//
// A Program is always a minimization:
//
//	Minimize:    Objective · x + ObjectiveOffset + 0.5 * x' * Q * x
//	Subject to:  ConstraintLower ≤ Constraints·x ≤ ConstraintUpper
//	And:         VariableLower ≤ x ≤ VariableUpper
//
// where Q is the symmetric matrix whose upper triangle is stored in
// ObjectiveMatrix. Maximization requests are transcribed into this form by
// the converter in package solve.
package qp

import (
	"fmt"
)

// Program is a sparse quadratic program in minimization form.
//
// All slices are dense and sized exactly by NumVariables/NumConstraints;
// producing anything else is a bug in the producer, and Validate reports it.
type Program struct {
	NumVariables   int
	NumConstraints int

	// Objective holds the linear objective coefficients, one per variable.
	Objective []float64

	// ObjectiveOffset is a constant added to the objective function.
	ObjectiveOffset float64

	// ObjectiveMatrix stores the upper triangle of the symmetric quadratic
	// objective matrix Q. Empty for purely linear programs.
	ObjectiveMatrix Matrix

	// VariableLower and VariableUpper are the variable bounds.
	VariableLower []float64
	VariableUpper []float64

	// ConstraintLower and ConstraintUpper are the row bounds.
	ConstraintLower []float64
	ConstraintUpper []float64

	// Constraints is the constraint matrix A.
	Constraints Matrix

	// VariableNames and ConstraintNames are optional; either empty or full
	// length. They exist only for diagnostics.
	VariableNames   []string
	ConstraintNames []string
}

// IsQuadratic returns true if the program has a nonempty quadratic objective.
func (p *Program) IsQuadratic() bool {
	return p.ObjectiveMatrix.NNZ() > 0
}

// Validate checks the shape invariants of the program: vector lengths,
// matrix dimensions, CSR consistency and upper-triangularity of the
// objective matrix. Solvers call it defensively before iterating; a failure
// indicates a bug in whoever assembled the program.
func (p *Program) Validate() error {
	if p.NumVariables < 0 || p.NumConstraints < 0 {
		return fmt.Errorf("negative dimensions %d x %d", p.NumConstraints, p.NumVariables)
	}
	for _, v := range []struct {
		name string
		n    int
	}{
		{"Objective", len(p.Objective)},
		{"VariableLower", len(p.VariableLower)},
		{"VariableUpper", len(p.VariableUpper)},
	} {
		if v.n != p.NumVariables {
			return fmt.Errorf("%s has length %d, want %d", v.name, v.n, p.NumVariables)
		}
	}
	if len(p.ConstraintLower) != p.NumConstraints {
		return fmt.Errorf("ConstraintLower has length %d, want %d", len(p.ConstraintLower), p.NumConstraints)
	}
	if len(p.ConstraintUpper) != p.NumConstraints {
		return fmt.Errorf("ConstraintUpper has length %d, want %d", len(p.ConstraintUpper), p.NumConstraints)
	}
	if len(p.VariableNames) != 0 && len(p.VariableNames) != p.NumVariables {
		return fmt.Errorf("VariableNames has length %d, want 0 or %d", len(p.VariableNames), p.NumVariables)
	}
	if len(p.ConstraintNames) != 0 && len(p.ConstraintNames) != p.NumConstraints {
		return fmt.Errorf("ConstraintNames has length %d, want 0 or %d", len(p.ConstraintNames), p.NumConstraints)
	}

	if p.Constraints.Rows != p.NumConstraints || p.Constraints.Cols != p.NumVariables {
		return fmt.Errorf("constraint matrix is %d x %d, want %d x %d",
			p.Constraints.Rows, p.Constraints.Cols, p.NumConstraints, p.NumVariables)
	}
	if err := p.Constraints.validate(); err != nil {
		return fmt.Errorf("constraint matrix: %w", err)
	}

	if p.ObjectiveMatrix.NNZ() > 0 || p.ObjectiveMatrix.Rows > 0 {
		if p.ObjectiveMatrix.Rows != p.NumVariables || p.ObjectiveMatrix.Cols != p.NumVariables {
			return fmt.Errorf("objective matrix is %d x %d, want %d x %d",
				p.ObjectiveMatrix.Rows, p.ObjectiveMatrix.Cols, p.NumVariables, p.NumVariables)
		}
		if err := p.ObjectiveMatrix.validate(); err != nil {
			return fmt.Errorf("objective matrix: %w", err)
		}
		if err := p.ObjectiveMatrix.validateUpperTriangular(); err != nil {
			return fmt.Errorf("objective matrix: %w", err)
		}
	}
	return nil
}

// ObjectiveValue evaluates Objective·x + ObjectiveOffset + 0.5*x'Qx at x.
// scratch must have length NumVariables when the program is quadratic; it is
// overwritten.
func (p *Program) ObjectiveValue(x, scratch []float64) float64 {
	v := p.ObjectiveOffset
	for j, c := range p.Objective {
		v += c * x[j]
	}
	if p.IsQuadratic() {
		p.ObjectiveMatrix.SymUpperMulVec(x, scratch)
		for j, q := range scratch {
			v += 0.5 * q * x[j]
		}
	}
	return v
}
