package solve

import (
	"math"
	"sort"

	"github.com/saddleopt/saddle/mp"
	"github.com/saddleopt/saddle/qp"
)

// senseScale maps objective values between the request's sense and the
// solver's minimization form: +1 for minimization, −1 for maximization.
// It is applied exactly twice in the bridge: once by buildProgram on the way
// in, once by buildResponse on the way out. Nothing else negates.
func senseScale(s mp.ObjectiveSense) float64 {
	if s == mp.Maximize {
		return -1
	}
	return 1
}

// buildProgram transcribes a guarded request into the solver-native
// minimization form: dense bound and objective vectors, the constraint
// matrix in CSR, and the quadratic objective as an upper-triangular CSR.
// Bounds are copied unchanged; only objective data is scaled by the sense.
func buildProgram(req *mp.ModelRequest) (*qp.Program, error) {
	const op = "Convert"

	n, m := req.NumVariables(), req.NumConstraints()
	scale := senseScale(req.Sense)

	if !isFinite(req.ObjectiveOffset) {
		return nil, newError(KindMalformedModel, op, "objective offset is %g", req.ObjectiveOffset)
	}

	prog := &qp.Program{
		NumVariables:    n,
		NumConstraints:  m,
		Objective:       make([]float64, n),
		ObjectiveOffset: scale * req.ObjectiveOffset,
		VariableLower:   make([]float64, n),
		VariableUpper:   make([]float64, n),
		ConstraintLower: make([]float64, m),
		ConstraintUpper: make([]float64, m),
	}

	varNamed := false
	for j := range req.Variables {
		v := &req.Variables[j]
		if !isFinite(v.ObjectiveCoefficient) {
			return nil, newError(KindMalformedModel, op, "variable %d: objective coefficient is %g", j, v.ObjectiveCoefficient)
		}
		prog.Objective[j] = scale * v.ObjectiveCoefficient
		prog.VariableLower[j] = v.LowerBound
		prog.VariableUpper[j] = v.UpperBound
		if v.Name != "" {
			varNamed = true
		}
	}

	rowNamed := false
	for i := range req.Constraints {
		c := &req.Constraints[i]
		prog.ConstraintLower[i] = c.LowerBound
		prog.ConstraintUpper[i] = c.UpperBound
		if c.Name != "" {
			rowNamed = true
		}
	}

	var err error
	if prog.Constraints, err = buildConstraintMatrix(req); err != nil {
		return nil, err
	}
	if prog.ObjectiveMatrix, err = buildObjectiveMatrix(req, scale); err != nil {
		return nil, err
	}

	// names ride along only when someone bothered to set them
	if varNamed {
		prog.VariableNames = make([]string, n)
		for j := range req.Variables {
			prog.VariableNames[j] = req.Variables[j].Name
		}
	}
	if rowNamed {
		prog.ConstraintNames = make([]string, m)
		for i := range req.Constraints {
			prog.ConstraintNames[i] = req.Constraints[i].Name
		}
	}

	return prog, nil
}

type entry struct {
	col int
	val float64
}

// buildConstraintMatrix assembles the CSR constraint matrix row by row.
// Entries are sorted by column within each row, explicit zeros are dropped,
// and a duplicate column inside a row is rejected rather than merged.
func buildConstraintMatrix(req *mp.ModelRequest) (qp.Matrix, error) {
	const op = "Convert"

	m := req.NumConstraints()
	mat := qp.Matrix{
		Rows:     m,
		Cols:     req.NumVariables(),
		RowStart: make([]int, m+1),
	}

	var row []entry
	for i := range req.Constraints {
		c := &req.Constraints[i]
		row = row[:0]
		for k, j := range c.VarIndexes {
			v := c.Coefficients[k]
			if !isFinite(v) {
				return qp.Matrix{}, newError(KindMalformedModel, op, "constraint %d: coefficient for variable %d is %g", i, j, v)
			}
			if v == 0 {
				continue
			}
			row = append(row, entry{col: j, val: v})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].col < row[b].col })
		for k := range row {
			if k > 0 && row[k].col == row[k-1].col {
				return qp.Matrix{}, newError(KindMalformedModel, op, "constraint %d: duplicate entry for variable %d", i, row[k].col)
			}
			mat.ColIndex = append(mat.ColIndex, row[k].col)
			mat.Value = append(mat.Value, row[k].val)
		}
		mat.RowStart[i+1] = len(mat.Value)
	}
	return mat, nil
}

type triplet struct {
	i, j int
	val  float64
}

// buildObjectiveMatrix assembles the quadratic objective as an
// upper-triangular CSR. Below-diagonal input is mirrored up front, so a term
// given as (2,0) and another as (0,2) collide and are rejected as
// duplicates.
func buildObjectiveMatrix(req *mp.ModelRequest, scale float64) (qp.Matrix, error) {
	const op = "Convert"

	terms := make([]triplet, 0, len(req.QuadraticObjective))
	for k := range req.QuadraticObjective {
		t := &req.QuadraticObjective[k]
		if !isFinite(t.Coefficient) {
			return qp.Matrix{}, newError(KindMalformedModel, op, "quadratic term %d: coefficient is %g", k, t.Coefficient)
		}
		if t.Coefficient == 0 {
			continue
		}
		i, j := t.Var1, t.Var2
		if i > j {
			i, j = j, i
		}
		terms = append(terms, triplet{i: i, j: j, val: scale * t.Coefficient})
	}
	if len(terms) == 0 {
		return qp.Matrix{}, nil
	}

	sort.Slice(terms, func(a, b int) bool {
		if terms[a].i != terms[b].i {
			return terms[a].i < terms[b].i
		}
		return terms[a].j < terms[b].j
	})

	n := req.NumVariables()
	mat := qp.Matrix{
		Rows:     n,
		Cols:     n,
		RowStart: make([]int, n+1),
		ColIndex: make([]int, 0, len(terms)),
		Value:    make([]float64, 0, len(terms)),
	}
	for k := range terms {
		t := &terms[k]
		if k > 0 && t.i == terms[k-1].i && t.j == terms[k-1].j {
			return qp.Matrix{}, newError(KindMalformedModel, op, "duplicate quadratic term for variables %d and %d", t.i, t.j)
		}
		mat.RowStart[t.i+1]++
		mat.ColIndex = append(mat.ColIndex, t.j)
		mat.Value = append(mat.Value, t.val)
	}
	for i := 1; i <= n; i++ {
		mat.RowStart[i] += mat.RowStart[i-1]
	}
	return mat, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
