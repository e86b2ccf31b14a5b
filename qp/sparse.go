package qp

import (
	"fmt"
	"math"
)

// Matrix is a sparse matrix in compressed sparse row form.
//
// Row i owns the entries ColIndex[RowStart[i]:RowStart[i+1]] and
// Value[RowStart[i]:RowStart[i+1]], with column indexes strictly increasing
// inside a row. RowStart always has Rows+1 elements, even for empty rows, so
// kernels can slice blindly.
type Matrix struct {
	Rows, Cols int
	RowStart   []int
	ColIndex   []int
	Value      []float64
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	return len(m.Value)
}

// MulVec computes dst = M·x. dst must have length Rows; it is overwritten.
func (m *Matrix) MulVec(x, dst []float64) {
	for i := 0; i < m.Rows; i++ {
		var sum float64
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			sum += m.Value[k] * x[m.ColIndex[k]]
		}
		dst[i] = sum
	}
}

// MulVecRange computes dst[lo:hi] = (M·x)[lo:hi] for a row range. It is the
// kernel behind sharded multiplication; dst must have length Rows.
func (m *Matrix) MulVecRange(lo, hi int, x, dst []float64) {
	for i := lo; i < hi; i++ {
		var sum float64
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			sum += m.Value[k] * x[m.ColIndex[k]]
		}
		dst[i] = sum
	}
}

// MulTransVec computes dst = Mᵀ·y. dst must have length Cols; it is
// overwritten.
func (m *Matrix) MulTransVec(y, dst []float64) {
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < m.Rows; i++ {
		yi := y[i]
		if yi == 0 {
			continue
		}
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			dst[m.ColIndex[k]] += m.Value[k] * yi
		}
	}
}

// SymUpperMulVec computes dst = Q·x where the receiver stores the upper
// triangle of the symmetric matrix Q: every off-diagonal entry (i, j, v)
// contributes v·x[j] to row i and v·x[i] to row j. dst must have length
// Cols; it is overwritten. A zero-value matrix zeroes dst.
func (m *Matrix) SymUpperMulVec(x, dst []float64) {
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < m.Rows; i++ {
		xi := x[i]
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			j := m.ColIndex[k]
			v := m.Value[k]
			dst[i] += v * x[j]
			if j != i {
				dst[j] += v * xi
			}
		}
	}
}

// Transpose returns Mᵀ as a new CSR matrix. Column indexes stay strictly
// increasing within rows because the source is scanned in row-major order.
func (m *Matrix) Transpose() Matrix {
	t := Matrix{
		Rows:     m.Cols,
		Cols:     m.Rows,
		RowStart: make([]int, m.Cols+1),
		ColIndex: make([]int, len(m.ColIndex)),
		Value:    make([]float64, len(m.Value)),
	}
	for _, j := range m.ColIndex {
		t.RowStart[j+1]++
	}
	for j := 0; j < m.Cols; j++ {
		t.RowStart[j+1] += t.RowStart[j]
	}
	next := make([]int, m.Cols)
	copy(next, t.RowStart[:m.Cols])
	for i := 0; i < m.Rows; i++ {
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			j := m.ColIndex[k]
			t.ColIndex[next[j]] = i
			t.Value[next[j]] = m.Value[k]
			next[j]++
		}
	}
	return t
}

// MaxAbsRowSum returns the infinity norm of the matrix.
func (m *Matrix) MaxAbsRowSum() float64 {
	var max float64
	for i := 0; i < m.Rows; i++ {
		var sum float64
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			sum += math.Abs(m.Value[k])
		}
		if sum > max {
			max = sum
		}
	}
	return max
}

// MaxAbsColSum returns the 1-norm of the matrix.
func (m *Matrix) MaxAbsColSum() float64 {
	sums := make([]float64, m.Cols)
	for k, j := range m.ColIndex {
		sums[j] += math.Abs(m.Value[k])
	}
	var max float64
	for _, sum := range sums {
		if sum > max {
			max = sum
		}
	}
	return max
}

// validate checks CSR consistency: RowStart length and monotonicity, entry
// counts, and strictly increasing in-range column indexes per row.
func (m *Matrix) validate() error {
	if m.Rows == 0 && m.RowStart == nil && len(m.ColIndex) == 0 && len(m.Value) == 0 {
		return nil // zero value
	}
	if len(m.RowStart) != m.Rows+1 {
		return fmt.Errorf("RowStart has length %d, want %d", len(m.RowStart), m.Rows+1)
	}
	if m.RowStart[0] != 0 {
		return fmt.Errorf("RowStart[0] = %d, want 0", m.RowStart[0])
	}
	if len(m.ColIndex) != len(m.Value) {
		return fmt.Errorf("ColIndex and Value lengths differ: %d vs %d", len(m.ColIndex), len(m.Value))
	}
	if m.RowStart[m.Rows] != len(m.Value) {
		return fmt.Errorf("RowStart[%d] = %d, want %d", m.Rows, m.RowStart[m.Rows], len(m.Value))
	}
	for i := 0; i < m.Rows; i++ {
		if m.RowStart[i] > m.RowStart[i+1] {
			return fmt.Errorf("RowStart not monotone at row %d", i)
		}
		prev := -1
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			j := m.ColIndex[k]
			if j < 0 || j >= m.Cols {
				return fmt.Errorf("column index %d out of range at row %d", j, i)
			}
			if j <= prev {
				return fmt.Errorf("column indexes not strictly increasing at row %d", i)
			}
			prev = j
		}
	}
	return nil
}

// validateUpperTriangular checks every stored entry satisfies col ≥ row.
func (m *Matrix) validateUpperTriangular() error {
	for i := 0; i < m.Rows; i++ {
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			if m.ColIndex[k] < i {
				return fmt.Errorf("entry (%d, %d) below the diagonal", i, m.ColIndex[k])
			}
		}
	}
	return nil
}
