// SPDX-License-Identifier: MIT

package transport

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/solution"
)

// simplexTol is the reduced-cost tolerance passed to lp.Simplex.
const simplexTol = 1e-10

// lpShape returns the dimensions of the standard-form transportation LP over
// p open locations and n customers.
func lpShape(p, n int) (rows, cols int) {
	return n + p, p*n + p
}

// solveSimplex solves the transportation LP in standard form:
//
//	minimize   Σ d(l,c) · x[l,c]
//	s.t.       Σ_l x[l,c]          = demand(c)    for every customer
//	           Σ_c x[l,c] + s[l]   = capacity(l)  for every open location
//	           x, s ≥ 0
//
// The constraint matrix is totally unimodular, so the optimal basic solution
// is integral; quantities are rounded to absorb floating-point noise.
//
// Column x[l,c] sits at index i·n + j (i, j the positions of l and c); the
// slack of location i at p·n + i.
func solveSimplex(inst instance.Instance, locs, custs []int) (solution.SolverResult, error) {
	p, n := len(locs), len(custs)
	rows, cols := lpShape(p, n)
	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)

	for j, cust := range custs {
		b[j] = float64(inst.Demand(cust))
	}
	for i, loc := range locs {
		for j, cust := range custs {
			k := i*n + j
			c[k] = inst.RealDistance(loc, cust)
			a.Set(j, k, 1)
			a.Set(n+i, k, 1)
		}
		a.Set(n+i, p*n+i, 1)
		b[n+i] = float64(inst.Capacity(loc))
	}

	_, x, err := lp.Simplex(c, a, b, simplexTol, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return solution.SolverResult{Feasible: false}, nil
	case err != nil:
		return solution.SolverResult{}, fmt.Errorf("transport: simplex: %w", err)
	}

	out := make(map[int][]solution.Assignment, n)
	for j, cust := range custs {
		for i, loc := range locs {
			k := i*n + j
			if q := int(math.Round(x[k])); q > 0 {
				out[cust] = append(out[cust], solution.Assignment{
					Location: loc,
					Quantity: q,
					Cost:     float64(q) * c[k],
				})
			}
		}
	}
	return solution.SolverResult{Feasible: true, Assignments: out}, nil
}
