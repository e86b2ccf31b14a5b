package mp

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNumNonzeros(t *testing.T) {
	req := &ModelRequest{
		Variables: []Variable{{}, {}},
		Constraints: []Constraint{
			{VarIndexes: []int{0, 1}, Coefficients: []float64{1, 0}},
			{VarIndexes: []int{1}, Coefficients: []float64{2}},
		},
		QuadraticObjective: []QuadraticTerm{{Var1: 0, Var2: 0, Coefficient: 1}},
	}

	require.Equal(t, 2, req.NumVariables())
	require.Equal(t, 2, req.NumConstraints())
	require.Equal(t, 4, req.NumNonzeros(), "explicit zeros count as structural entries")
}

func TestInfHelpers(t *testing.T) {
	require.True(t, math.IsInf(Inf(), 1))
	require.True(t, math.IsInf(NegInf(), -1))
}

func TestObjectiveSenseString(t *testing.T) {
	require.Equal(t, "minimize", Minimize.String())
	require.Equal(t, "maximize", Maximize.String())
	require.Equal(t, "unknown", ObjectiveSense(3).String())
}

func TestResponsePredicates(t *testing.T) {
	optimal := &SolutionResponse{Status: StatusOptimal, VariableValues: []float64{1, 2}}
	require.True(t, optimal.IsOptimal())
	require.True(t, optimal.HasSolution())
	require.Equal(t, 2.0, optimal.Value(1))
	require.Zero(t, optimal.Value(2), "out-of-range indexes read as zero")
	require.Zero(t, optimal.Value(-1))

	feasible := &SolutionResponse{Status: StatusFeasible}
	require.False(t, feasible.IsOptimal())
	require.True(t, feasible.HasSolution())

	infeasible := &SolutionResponse{Status: StatusInfeasible}
	require.False(t, infeasible.IsOptimal())
	require.False(t, infeasible.HasSolution())
}

func TestResponseStatusString(t *testing.T) {
	for status, want := range map[ResponseStatus]string{
		StatusUnspecified:      "unspecified",
		StatusOptimal:          "optimal",
		StatusFeasible:         "feasible",
		StatusInfeasible:       "infeasible",
		StatusUnbounded:        "unbounded",
		StatusNumericalFailure: "numerical failure",
		StatusNotSolved:        "not solved",
		ResponseStatus(42):     "unknown",
	} {
		require.Equal(t, want, status.String())
	}
}

// TestRequestJSON pins the wire naming of the request message.
func TestRequestJSON(t *testing.T) {
	req := &ModelRequest{
		Variables: []Variable{{LowerBound: 0, UpperBound: 4}},
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"variables":[{"lower_bound":0,"upper_bound":4}],"options":{}}`, string(data))

	var back ModelRequest
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, *req, back)
}
