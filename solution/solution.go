// SPDX-License-Identifier: MIT

package solution

import (
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/pmedian/instance"
)

// Solution is the result of evaluating one open set: per-location usage,
// per-customer satisfaction, the assignment triples and the objective.
//
// Contracts:
//   - Objective() == Σ Quantity × RealDistance over all triples, always.
//   - Feasible() implies every customer is fully served and, except in
//     naive mode, no location exceeds its capacity.
//   - A Solution is replaced wholesale on every swap; the setters exist for
//     solvers and tests, and panic on contract violations.
type Solution struct {
	inst instance.Instance
	open OpenSet
	mode Mode

	usage        map[int]int
	satisfaction map[int]int
	assignments  map[int][]Assignment

	objective float64
	feasible  bool
	reason    Reason
	totalCap  int
}

// newEmpty allocates a zeroed solution for open.
func newEmpty(inst instance.Instance, open OpenSet, mode Mode) *Solution {
	s := &Solution{
		inst:         inst,
		open:         open,
		mode:         mode,
		usage:        make(map[int]int, open.Len()),
		satisfaction: make(map[int]int),
		assignments:  make(map[int][]Assignment),
	}
	for _, loc := range open.ids {
		s.usage[loc] = 0
		s.totalCap += inst.Capacity(loc)
	}
	for _, c := range inst.Customers() {
		s.satisfaction[c] = 0
	}
	return s
}

// Open returns the evaluated open set.
func (s *Solution) Open() OpenSet { return s.open }

// Mode returns the strategy that produced the solution.
func (s *Solution) Mode() Mode { return s.mode }

// Objective returns Σ Quantity × RealDistance over all triples.
func (s *Solution) Objective() float64 { return s.objective }

// Feasible reports whether the assignment serves every customer within capacity.
func (s *Solution) Feasible() bool { return s.feasible }

// Reason explains infeasibility; ReasonNone when feasible.
func (s *Solution) Reason() Reason { return s.reason }

// Score is the objective of a feasible solution and +Inf otherwise.
func (s *Solution) Score() float64 {
	if !s.feasible {
		return math.Inf(1)
	}
	return s.objective
}

// TotalCapacity is Σ capacity over the open set.
func (s *Solution) TotalCapacity() int { return s.totalCap }

// Shortfall returns the open capacity and the total demand it must cover.
func (s *Solution) Shortfall() (capacity, demand int) {
	return s.totalCap, s.inst.TotalDemand()
}

// Usage returns the quantity assigned to loc (0 for closed locations).
func (s *Solution) Usage(loc int) int { return s.usage[loc] }

// Satisfaction returns the served demand of cust.
func (s *Solution) Satisfaction(cust int) int { return s.satisfaction[cust] }

// Assignments returns a copy of cust's service list.
func (s *Solution) Assignments(cust int) []Assignment {
	return slices.Clone(s.assignments[cust])
}

// Instance returns the instance the solution was evaluated on.
func (s *Solution) Instance() instance.Instance { return s.inst }

// SetLocationUsage overwrites the usage of an open location.
// Panics if loc is closed or usage is outside [0, capacity].
func (s *Solution) SetLocationUsage(loc, usage int) {
	if !s.open.Contains(loc) {
		panic(fmt.Sprintf("solution: usage set on closed location %d", loc))
	}
	if c := s.inst.Capacity(loc); usage < 0 || usage > c {
		panic(fmt.Sprintf("solution: usage %d of location %d outside [0,%d]", usage, loc, c))
	}
	s.usage[loc] = usage
}

// SetCustomerSatisfaction overwrites the served demand of cust.
// Panics if sat is outside [0, demand].
func (s *Solution) SetCustomerSatisfaction(cust, sat int) {
	if d := s.inst.Demand(cust); sat < 0 || sat > d {
		panic(fmt.Sprintf("solution: satisfaction %d of customer %d outside [0,%d]", sat, cust, d))
	}
	s.satisfaction[cust] = sat
}

// SetAssignments replaces cust's service list and recomputes the objective.
// Costs are rewritten from the instance so the objective stays consistent.
func (s *Solution) SetAssignments(cust int, as []Assignment) {
	list := make([]Assignment, len(as))
	for i, a := range as {
		if !s.open.Contains(a.Location) {
			panic(fmt.Sprintf("solution: customer %d assigned to closed location %d", cust, a.Location))
		}
		list[i] = Assignment{
			Location: a.Location,
			Quantity: a.Quantity,
			Cost:     float64(a.Quantity) * s.inst.RealDistance(a.Location, cust),
		}
	}
	s.assignments[cust] = list
	s.recomputeObjective()
}

// Swap replaces out by in and re-evaluates the new open set from scratch
// with ev. On an invalid swap it returns the receiver and ErrInvalidSwap.
func (s *Solution) Swap(out, in int, ev Evaluator) (*Solution, error) {
	next, ok := s.open.Swap(out, in)
	if !ok {
		return s, fmt.Errorf("%d -> %d on %v: %w", out, in, s.open, ErrInvalidSwap)
	}
	return ev.Evaluate(s.inst, next)
}

// Verify audits the solution against the instance. It returns nil only for a
// feasible, internally consistent solution.
func (s *Solution) Verify() error {
	if s.totalCap < s.inst.TotalDemand() {
		return fmt.Errorf("%d < %d: %w", s.totalCap, s.inst.TotalDemand(), ErrCapacityShortfall)
	}

	usage := make(map[int]int, len(s.usage))
	for cust, list := range s.assignments {
		served := 0
		for _, a := range list {
			usage[a.Location] += a.Quantity
			served += a.Quantity
		}
		if served != s.satisfaction[cust] {
			return fmt.Errorf("customer %d: served %d, recorded %d: %w", cust, served, s.satisfaction[cust], ErrInconsistent)
		}
	}

	for _, loc := range s.open.ids {
		if usage[loc] != s.usage[loc] {
			return fmt.Errorf("location %d: assigned %d, recorded %d: %w", loc, usage[loc], s.usage[loc], ErrInconsistent)
		}
		if c := s.inst.Capacity(loc); s.usage[loc] > c {
			return fmt.Errorf("location %d: %d > %d: %w", loc, s.usage[loc], c, ErrOverCapacity)
		}
	}

	for _, cust := range s.inst.Customers() {
		d, sat := s.inst.Demand(cust), s.satisfaction[cust]
		switch {
		case sat > d:
			return fmt.Errorf("customer %d: %d > %d: %w", cust, sat, d, ErrOverDemand)
		case sat < d:
			return fmt.Errorf("customer %d: %d < %d: %w", cust, sat, d, ErrUnsatisfied)
		}
	}

	return nil
}

func (s *Solution) recomputeObjective() {
	// Instance order keeps the float sum reproducible.
	obj := 0.0
	for _, cust := range s.inst.Customers() {
		for _, a := range s.assignments[cust] {
			obj += float64(a.Quantity) * s.inst.RealDistance(a.Location, cust)
		}
	}
	s.objective = obj
}
