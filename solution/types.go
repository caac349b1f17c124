// SPDX-License-Identifier: MIT

package solution

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/pmedian/instance"
)

// Sentinel errors.
var (
	// ErrUnknownMode is returned by ParseMode for an unrecognized tag.
	ErrUnknownMode = errors.New("solution: unknown evaluation mode")

	// ErrNoSolver is returned when a solver-backed mode is requested without
	// an AssignmentSolver.
	ErrNoSolver = errors.New("solution: mode requires an assignment solver")

	// ErrInvalidSwap is returned by Swap when the outgoing location is not open
	// or the incoming one already is.
	ErrInvalidSwap = errors.New("solution: invalid swap")

	// ErrDuplicateLocation is returned by NewOpenSet for repeated IDs.
	ErrDuplicateLocation = errors.New("solution: duplicate location in open set")

	// Audit failures reported by Verify.
	ErrCapacityShortfall = errors.New("solution: open capacity below total demand")
	ErrOverCapacity      = errors.New("solution: location usage exceeds capacity")
	ErrOverDemand        = errors.New("solution: customer satisfaction exceeds demand")
	ErrUnsatisfied       = errors.New("solution: customer demand not fully served")
	ErrInconsistent      = errors.New("solution: usage or satisfaction disagrees with assignments")
)

// Mode selects an evaluation strategy.
type Mode int

const (
	// Heuristic is the urgency-priority greedy capacitated assignment.
	Heuristic Mode = iota
	// Naive routes every customer to its nearest open location, ignoring capacity.
	Naive
	// Relaxed delegates to an AssignmentSolver with split demand allowed.
	Relaxed
	// Exact delegates to an AssignmentSolver with single sourcing.
	Exact
)

// String returns the tag accepted by ParseMode.
func (m Mode) String() string {
	switch m {
	case Heuristic:
		return "heuristic"
	case Naive:
		return "naive"
	case Relaxed:
		return "GAPrelax"
	case Exact:
		return "GAP"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps an evaluation tag to a Mode. "PMP" is an alias of "naive".
func ParseMode(tag string) (Mode, error) {
	switch tag {
	case "heuristic":
		return Heuristic, nil
	case "naive", "PMP":
		return Naive, nil
	case "GAPrelax", "relaxed":
		return Relaxed, nil
	case "GAP", "exact":
		return Exact, nil
	}
	return 0, fmt.Errorf("%q: %w", tag, ErrUnknownMode)
}

// Reason explains why a solution is infeasible.
type Reason int

const (
	// ReasonNone marks a feasible solution.
	ReasonNone Reason = iota
	// ReasonCapacity: open capacity is below total demand. No assignment is computed.
	ReasonCapacity
	// ReasonAssignment: some demand could not be placed, or (naive mode) the
	// nearest routing overflows a location.
	ReasonAssignment
	// ReasonSolver: the external assignment solver reported no solution.
	ReasonSolver
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonCapacity:
		return "capacity"
	case ReasonAssignment:
		return "assignment"
	case ReasonSolver:
		return "solver"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Assignment is one (location, quantity, cost) triple of a customer's service
// list. Cost is Quantity × RealDistance(Location, customer).
type Assignment struct {
	Location int
	Quantity int
	Cost     float64
}

// SolverResult is what an AssignmentSolver returns. Usage, satisfaction and
// the objective are derived from Assignments by the caller.
type SolverResult struct {
	Feasible    bool
	Assignments map[int][]Assignment
}

// AssignmentSolver solves the assignment subproblem for a fixed open set.
// relaxed=true allows customers to split demand; false asks for single
// sourcing.
type AssignmentSolver interface {
	SolveAssignment(inst instance.Instance, open OpenSet, relaxed bool) (SolverResult, error)
}
