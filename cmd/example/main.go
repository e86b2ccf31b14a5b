package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/saddleopt/saddle/mp"
	"github.com/saddleopt/saddle/qp"
	"github.com/saddleopt/saddle/solve"
)

func main() {
	// Minimize: x + y
	// Subject to: x + y >= 1, 0 <= x,y <= 10
	minimize := &mp.ModelRequest{
		Name: "demo-min",
		Variables: []mp.Variable{
			{Name: "x", LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1},
			{Name: "y", LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1},
		},
		Constraints: []mp.Constraint{
			{Name: "cover", LowerBound: 1, UpperBound: mp.Inf(), VarIndexes: []int{0, 1}, Coefficients: []float64{1, 1}},
		},
	}

	// The same feasible set, maximizing instead.
	maximize := &mp.ModelRequest{
		Name:  "demo-max",
		Sense: mp.Maximize,
		Variables: []mp.Variable{
			{Name: "x", LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1},
			{Name: "y", LowerBound: 0, UpperBound: 10, ObjectiveCoefficient: 1},
		},
		Constraints: []mp.Constraint{
			{Name: "cover", LowerBound: 1, UpperBound: mp.Inf(), VarIndexes: []int{0, 1}, Coefficients: []float64{1, 1}},
		},
	}

	ctx := context.Background()
	responses := make([]*mp.SolutionResponse, 2)

	g, ctx := errgroup.WithContext(ctx)
	for i, req := range []*mp.ModelRequest{minimize, maximize} {
		i, req := i, req // pin per-iteration values for the goroutine under go <1.22 semantics
		g.Go(func() error {
			resp, err := solve.Model(ctx, req)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}

	for i, name := range []string{"minimize", "maximize"} {
		resp := responses[i]
		fmt.Printf("%s: status=%s\n", name, resp.Status)
		if resp.HasSolution() {
			fmt.Printf("  x = %.2f, y = %.2f\n", resp.Value(0), resp.Value(1))
			fmt.Printf("  objective = %.2f\n", resp.ObjectiveValue)
		}

		info, err := qp.UnmarshalSolveLog(resp.SolverInfo)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  solver: %s in %d iterations (%s, library %s)\n",
			info.Reason, info.Iterations, info.SolveTime, info.Version)
	}
}
