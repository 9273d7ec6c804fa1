package solver

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// zeroRowTol decides when an all-zero constraint row counts as satisfied.
const zeroRowTol = 1e-9

// DefaultTieBreak is the dual-objective perturbation applied to bound
// rows. Among multiple dual optima it selects the one with the smallest
// congestion duals, so a flow that merely touches its limit without
// separating the zones yields equal zonal prices.
const DefaultTieBreak = 1e-6

// Simplex solves bounded-form Problems with gonum's dense simplex.
//
// gonum's lp.Simplex returns only the primal solution, so shadow prices
// are obtained by solving the explicit dual program with the same
// routine. Both solves are deterministic for fixed inputs.
type Simplex struct {
	// Tol is the pivot tolerance forwarded to gonum; 0 uses its default.
	Tol float64

	// TieBreak perturbs the dual objective on bound rows. Zero disables
	// the tie-break and degenerate problems may return any dual vertex.
	TieBreak float64
}

func NewSimplex() *Simplex {
	return &Simplex{TieBreak: DefaultTieBreak}
}

// Solve runs the primal and dual simplex in a worker goroutine so the
// caller's deadline is honored. A deterministic LP gains nothing from
// retrying, so a timeout is terminal for the problem.
func (s *Simplex) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("malformed problem: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, &NumericalError{Err: err}
	}

	type outcome struct {
		sol *Solution
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		sol, err := s.solve(p)
		ch <- outcome{sol: sol, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &NumericalError{Err: ctx.Err()}
	case o := <-ch:
		return o.sol, o.err
	}
}

func (s *Simplex) solve(p *Problem) (*Solution, error) {
	std, err := toStandardForm(p)
	if err != nil {
		return nil, err
	}

	_, x, err := lp.Simplex(std.c, std.a, std.b, s.Tol, nil)
	if err != nil {
		return nil, mapSimplexErr(err)
	}

	duals, err := s.solveDual(std)
	if err != nil {
		return nil, err
	}

	sol := &Solution{
		X:     std.recoverX(p, x),
		Duals: std.recoverDuals(p, duals),
	}
	obj := 0.0
	for j, v := range sol.X {
		obj += p.C[j] * v
	}
	sol.Objective = obj
	return sol, nil
}

// standardForm is the gonum shape of a bounded Problem:
// minimize c·y subject to a·y = b, y ≥ 0.
//
// Variables are shifted by their lower bound; finite upper bounds become
// slack rows; fixed variables are folded into the right-hand side.
// All-zero balance rows with a zero RHS are dropped (their dual is 0);
// a nonzero RHS on such a row is an immediate infeasibility.
type standardForm struct {
	a *mat.Dense
	b []float64
	c []float64

	colOf    []int // original variable -> std column, -1 if fixed
	rowOf    []int // original row -> active std row, -1 if dropped
	numBound int   // count of bound rows, appended after balance rows
}

func toStandardForm(p *Problem) (*standardForm, error) {
	m, n := p.A.Dims()

	colOf := make([]int, n)
	var kept, bounded []int
	for j := 0; j < n; j++ {
		if p.Upper[j] == p.Lower[j] {
			colOf[j] = -1
			continue
		}
		colOf[j] = len(kept)
		kept = append(kept, j)
		if !isInf(p.Upper[j]) {
			bounded = append(bounded, j)
		}
	}
	if len(kept) == 0 {
		return nil, &NumericalError{Err: errors.New("no free variables")}
	}

	// Shifted RHS of the balance rows.
	shifted := make([]float64, m)
	for i := 0; i < m; i++ {
		v := p.B[i]
		for j := 0; j < n; j++ {
			v -= p.A.At(i, j) * p.Lower[j]
		}
		shifted[i] = v
	}

	// Drop empty balance rows; reject unsatisfiable ones.
	rowOf := make([]int, m)
	var active []int
	for i := 0; i < m; i++ {
		empty := true
		for _, j := range kept {
			if p.A.At(i, j) != 0 {
				empty = false
				break
			}
		}
		if empty {
			if abs(shifted[i]) > zeroRowTol {
				return nil, fmt.Errorf("row %d requires %g with no free variables: %w",
					i, shifted[i], ErrInfeasible)
			}
			rowOf[i] = -1
			continue
		}
		rowOf[i] = len(active)
		active = append(active, i)
	}

	rows := len(active) + len(bounded)
	cols := len(kept) + len(bounded)
	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	for r, i := range active {
		for _, j := range kept {
			a.Set(r, colOf[j], p.A.At(i, j))
		}
		b[r] = shifted[i]
	}
	for k, j := range bounded {
		r := len(active) + k
		a.Set(r, colOf[j], 1)
		a.Set(r, len(kept)+k, 1)
		b[r] = p.Upper[j] - p.Lower[j]
	}
	for _, j := range kept {
		c[colOf[j]] = p.C[j]
	}

	return &standardForm{
		a:        a,
		b:        b,
		c:        c,
		colOf:    colOf,
		rowOf:    rowOf,
		numBound: len(bounded),
	}, nil
}

// solveDual returns the shadow prices of the standard-form rows.
//
// With a tie-break configured, the bound rows of the dual objective are
// perturbed first so that among multiple dual optima the least-congested
// one wins. A unique dual optimum needs no tie-break, and the perturbed
// program can fail to solve where the unperturbed one does not, so any
// perturbed-solve failure falls back to the plain dual.
func (s *Simplex) solveDual(std *standardForm) ([]float64, error) {
	if s.TieBreak > 0 {
		bhat := make([]float64, len(std.b))
		copy(bhat, std.b)
		for r := len(std.b) - std.numBound; r < len(std.b); r++ {
			bhat[r] += s.TieBreak
		}
		if u, err := s.dualSimplex(bhat, std); err == nil {
			return u, nil
		}
	}
	return s.dualSimplex(std.b, std)
}

// dualSimplex solves max bhat·u subject to aᵀ·u ≤ c (u free) by splitting
// u into positive and negative parts and adding one slack per column of a.
func (s *Simplex) dualSimplex(bhat []float64, std *standardForm) ([]float64, error) {
	rows, cols := std.a.Dims()

	da := mat.NewDense(cols, 2*rows+cols, nil)
	dc := make([]float64, 2*rows+cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := std.a.At(i, j)
			da.Set(j, i, v)
			da.Set(j, rows+i, -v)
		}
		dc[i] = -bhat[i]
		dc[rows+i] = bhat[i]
	}
	for j := 0; j < cols; j++ {
		da.Set(j, 2*rows+j, 1)
	}

	_, x, err := lp.Simplex(dc, da, std.c, s.Tol, nil)
	if err != nil {
		// The primal already solved, so a failing dual is numerical
		// trouble, not a property of the market problem.
		return nil, &NumericalError{Err: fmt.Errorf("dual solve: %w", err)}
	}

	u := make([]float64, rows)
	for i := 0; i < rows; i++ {
		u[i] = x[i] - x[rows+i]
	}
	return u, nil
}

func (std *standardForm) recoverX(p *Problem, x []float64) []float64 {
	out := make([]float64, len(p.Lower))
	for j := range out {
		out[j] = p.Lower[j]
		if std.colOf[j] >= 0 {
			out[j] += x[std.colOf[j]]
		}
	}
	return out
}

func (std *standardForm) recoverDuals(p *Problem, u []float64) []float64 {
	out := make([]float64, len(p.B))
	for i := range out {
		if std.rowOf[i] >= 0 {
			out[i] = u[std.rowOf[i]]
		}
	}
	return out
}

func mapSimplexErr(err error) error {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return ErrInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return ErrUnbounded
	default:
		return &NumericalError{Err: err}
	}
}

func isInf(v float64) bool { return v > 1e300 }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
