// Package solver wraps a linear-program solver behind a small interface.
// The clearing code owns problem formulation and result interpretation;
// this package owns nothing but the solve itself.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Problem is a linear program in bounded form:
//
//	minimize   C·x
//	subject to A·x = B
//	           Lower ≤ x ≤ Upper
//
// Rows of A are equality constraints only; inequalities are expressed
// through variable bounds. Lower bounds must be finite; upper bounds may
// be +Inf. A variable with Lower == Upper is fixed.
type Problem struct {
	C     []float64
	A     *mat.Dense
	B     []float64
	Lower []float64
	Upper []float64
}

// Solution is an optimal solution of a Problem.
type Solution struct {
	// Objective is the optimal value of C·x.
	Objective float64

	// X holds the optimal variable values, in Problem column order.
	X []float64

	// Duals holds the shadow price of each equality row: the rate of
	// change of Objective per unit increase of B[i].
	Duals []float64
}

// Solver solves one Problem. Implementations must honor ctx cancellation.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

var (
	// ErrInfeasible reports that no assignment satisfies the constraints.
	ErrInfeasible = errors.New("linear program is infeasible")

	// ErrUnbounded reports that the objective can decrease without limit.
	// With finite variable bounds this indicates a formulation bug.
	ErrUnbounded = errors.New("linear program is unbounded")
)

// NumericalError wraps solver trouble that is neither genuine
// infeasibility nor unboundedness, so callers can log it distinctly.
type NumericalError struct {
	Err error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("solver numerical failure: %v", e.Err)
}

func (e *NumericalError) Unwrap() error { return e.Err }

func (p *Problem) validate() error {
	if p == nil || p.A == nil {
		return errors.New("nil problem")
	}
	m, n := p.A.Dims()
	if len(p.C) != n || len(p.Lower) != n || len(p.Upper) != n {
		return fmt.Errorf("column count mismatch: A is %dx%d, C=%d, bounds=%d/%d",
			m, n, len(p.C), len(p.Lower), len(p.Upper))
	}
	if len(p.B) != m {
		return fmt.Errorf("row count mismatch: A has %d rows, B=%d", m, len(p.B))
	}
	for j := 0; j < n; j++ {
		if math.IsInf(p.Lower[j], 0) || math.IsNaN(p.Lower[j]) {
			return fmt.Errorf("variable %d: lower bound must be finite", j)
		}
		if math.IsNaN(p.Upper[j]) || math.IsInf(p.Upper[j], -1) {
			return fmt.Errorf("variable %d: bad upper bound", j)
		}
		if p.Upper[j] < p.Lower[j] {
			return fmt.Errorf("variable %d: upper bound %g below lower bound %g",
				j, p.Upper[j], p.Lower[j])
		}
		if math.IsNaN(p.C[j]) || math.IsInf(p.C[j], 0) {
			return fmt.Errorf("variable %d: objective coefficient must be finite", j)
		}
	}
	return nil
}
