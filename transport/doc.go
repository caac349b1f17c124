// SPDX-License-Identifier: MIT

// Package transport provides an exact solver for the relaxed assignment
// subproblem: with the open set fixed, route every customer's demand to open
// locations (splitting allowed) within capacity at minimum Σ quantity ×
// distance.
//
// Solver implements solution.AssignmentSolver and backs the Relaxed
// evaluation mode. Small problems go to gonum's simplex method (the
// transportation matrix is totally unimodular, so the LP optimum is
// integral); large ones to successive-shortest-path min-cost flow, whose
// memory stays linear in p·|C|:
//
//	ev, _ := solution.Relaxed.Evaluator(transport.Solver{})
//	sol, err := ev.Evaluate(inst, open)
//
// The single-sourcing variant is a mixed-integer program and is not provided;
// requesting it returns ErrBinaryUnsupported.
package transport
