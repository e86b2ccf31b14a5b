package qp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testMatrix returns the 2x3 matrix
//
//	[ 1  0  2 ]
//	[ 0  3  0 ]
func testMatrix() Matrix {
	return Matrix{
		Rows:     2,
		Cols:     3,
		RowStart: []int{0, 2, 3},
		ColIndex: []int{0, 2, 1},
		Value:    []float64{1, 2, 3},
	}
}

func TestMulVec(t *testing.T) {
	m := testMatrix()
	dst := make([]float64, 2)
	m.MulVec([]float64{1, 2, 3}, dst)
	require.Equal(t, []float64{7, 6}, dst)
}

func TestMulVecRange(t *testing.T) {
	m := testMatrix()
	dst := []float64{-1, -1}
	m.MulVecRange(1, 2, []float64{1, 2, 3}, dst)
	require.Equal(t, []float64{-1, 6}, dst, "rows outside the range stay untouched")
}

func TestMulTransVec(t *testing.T) {
	m := testMatrix()
	dst := make([]float64, 3)
	m.MulTransVec([]float64{1, 2}, dst)
	require.Equal(t, []float64{1, 6, 2}, dst)
}

func TestSymUpperMulVec(t *testing.T) {
	// upper triangle of [[2, -1], [-1, 3]]
	q := Matrix{
		Rows:     2,
		Cols:     2,
		RowStart: []int{0, 2, 3},
		ColIndex: []int{0, 1, 1},
		Value:    []float64{2, -1, 3},
	}
	dst := make([]float64, 2)
	q.SymUpperMulVec([]float64{1, 2}, dst)
	require.Equal(t, []float64{0, 5}, dst, "off-diagonal entries must be mirrored")
}

func TestTranspose(t *testing.T) {
	m := testMatrix()
	tr := m.Transpose()

	require.Equal(t, Matrix{
		Rows:     3,
		Cols:     2,
		RowStart: []int{0, 1, 2, 3},
		ColIndex: []int{0, 1, 0},
		Value:    []float64{1, 3, 2},
	}, tr)
	require.NoError(t, tr.validate())

	back := tr.Transpose()
	require.Equal(t, m, back)
}

func TestMatrixNorms(t *testing.T) {
	// [ 1 -4 ]
	// [ 2  0 ]
	m := Matrix{
		Rows:     2,
		Cols:     2,
		RowStart: []int{0, 2, 3},
		ColIndex: []int{0, 1, 0},
		Value:    []float64{1, -4, 2},
	}
	require.Equal(t, 5.0, m.MaxAbsRowSum())
	require.Equal(t, 4.0, m.MaxAbsColSum())
}

func TestMatrixValidate(t *testing.T) {
	valid := testMatrix()
	require.NoError(t, valid.validate())
	require.NoError(t, (&Matrix{}).validate(), "the zero value is a valid empty matrix")

	cases := map[string]Matrix{
		"row start length": {Rows: 2, Cols: 2, RowStart: []int{0, 1}},
		"row start origin": {Rows: 1, Cols: 2, RowStart: []int{1, 1}},
		"entry count": {
			Rows: 1, Cols: 2, RowStart: []int{0, 2},
			ColIndex: []int{0}, Value: []float64{1},
		},
		"value length": {
			Rows: 1, Cols: 2, RowStart: []int{0, 1},
			ColIndex: []int{0, 1}, Value: []float64{1},
		},
		"monotonicity": {
			Rows: 2, Cols: 2, RowStart: []int{0, 1, 0},
			ColIndex: []int{0}, Value: []float64{1},
		},
		"column range": {
			Rows: 1, Cols: 2, RowStart: []int{0, 1},
			ColIndex: []int{2}, Value: []float64{1},
		},
		"column order": {
			Rows: 1, Cols: 3, RowStart: []int{0, 2},
			ColIndex: []int{1, 0}, Value: []float64{1, 2},
		},
		"duplicate column": {
			Rows: 1, Cols: 3, RowStart: []int{0, 2},
			ColIndex: []int{1, 1}, Value: []float64{1, 2},
		},
	}
	for name, m := range cases {
		require.Error(t, m.validate(), name)
	}
}

func TestValidateUpperTriangular(t *testing.T) {
	require.NoError(t, (&Matrix{
		Rows: 2, Cols: 2, RowStart: []int{0, 2, 3},
		ColIndex: []int{0, 1, 1}, Value: []float64{1, 2, 3},
	}).validateUpperTriangular())

	below := Matrix{
		Rows: 2, Cols: 2, RowStart: []int{0, 0, 1},
		ColIndex: []int{0}, Value: []float64{1},
	}
	require.Error(t, below.validateUpperTriangular())
}
