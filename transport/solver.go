// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/solution"
)

// ErrBinaryUnsupported is returned for single-sourcing (relaxed=false) requests.
var ErrBinaryUnsupported = errors.New("transport: single-sourcing assignment is not supported")

// DefaultMaxDenseCells bounds the constraint matrix Auto hands to the simplex
// method (8 MiB of float64).
const DefaultMaxDenseCells = 1 << 20

// Method selects the algorithm behind a Solver.
type Method int

const (
	// Auto uses Simplex while the dense constraint matrix stays within
	// DefaultMaxDenseCells and Flow otherwise. A simplex numeric failure is
	// retried with Flow.
	Auto Method = iota
	// Simplex solves the transportation LP with gonum's simplex method.
	Simplex
	// Flow runs successive-shortest-path min-cost flow.
	Flow
)

func (m Method) String() string {
	switch m {
	case Auto:
		return "auto"
	case Simplex:
		return "simplex"
	case Flow:
		return "flow"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Solver solves the relaxed assignment subproblem exactly.
//
// Ctx, when non-nil, is checked before every solve and polled by Flow once
// per augmentation and inside every shortest-path search; cancellation aborts
// the solve with ctx.Err().
type Solver struct {
	Ctx    context.Context
	Method Method
}

var _ solution.AssignmentSolver = Solver{}

// SolveAssignment implements solution.AssignmentSolver.
func (s Solver) SolveAssignment(inst instance.Instance, open solution.OpenSet, relaxed bool) (solution.SolverResult, error) {
	if !relaxed {
		return solution.SolverResult{}, ErrBinaryUnsupported
	}
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return solution.SolverResult{}, err
	}

	locs := open.IDs()
	custs := inst.Customers()
	switch s.Method {
	case Simplex:
		return solveSimplex(inst, locs, custs)
	case Flow:
		return solveFlow(ctx, inst, locs, custs)
	}

	if rows, cols := lpShape(len(locs), len(custs)); rows*cols <= DefaultMaxDenseCells {
		res, err := solveSimplex(inst, locs, custs)
		if err == nil {
			return res, nil
		}
	}
	return solveFlow(ctx, inst, locs, custs)
}
