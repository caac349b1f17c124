// SPDX-License-Identifier: MIT

package solution

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/pmedian/instance"
)

// Evaluator turns an open set into a Solution. Implementations are pure: the
// same (instance, open set) always yields the same Solution.
type Evaluator interface {
	Evaluate(inst instance.Instance, open OpenSet) (*Solution, error)
}

// Evaluator returns the strategy for m. Relaxed and Exact need solver.
func (m Mode) Evaluator(solver AssignmentSolver) (Evaluator, error) {
	switch m {
	case Heuristic:
		return Greedy{}, nil
	case Naive:
		return NaiveEvaluator{}, nil
	case Relaxed, Exact:
		if solver == nil {
			return nil, fmt.Errorf("%s: %w", m, ErrNoSolver)
		}
		return External{Solver: solver, Relaxed: m == Relaxed}, nil
	}
	return nil, fmt.Errorf("%s: %w", m, ErrUnknownMode)
}

// Evaluate evaluates open with the strategy selected by mode.
func Evaluate(inst instance.Instance, open OpenSet, mode Mode, solver AssignmentSolver) (*Solution, error) {
	ev, err := mode.Evaluator(solver)
	if err != nil {
		return nil, err
	}
	return ev.Evaluate(inst, open)
}

// Greedy is the urgency-priority capacitated assignment.
//
// Algorithm:
//  1. Reject open sets whose total capacity is below total demand.
//  2. For every unsatisfied customer compute its urgency |d(l1) − d(l2)|,
//     l1 and l2 being the two closest open locations with spare capacity
//     (0 when only l1 exists).
//  3. Serve customers by decreasing urgency (stable), each from its closest
//     location with spare capacity, splitting demand when a location fills.
//  4. The first time a customer's demand has to be split, abandon the pass
//     and go back to 2. A location filled exactly does not end the pass.
//
// Exact distance ties resolve to the highest location ID.
//
// Complexity: O(R · |C| · p) where R ≤ p+1 is the number of passes.
type Greedy struct{}

// Evaluate implements Evaluator. It never returns an error.
func (Greedy) Evaluate(inst instance.Instance, open OpenSet) (*Solution, error) {
	s := newEmpty(inst, open, Heuristic)
	if s.totalCap < inst.TotalDemand() {
		s.reason = ReasonCapacity
		return s, nil
	}

	g := newGreedyState(inst, open)
	if !g.run() {
		s.reason = ReasonAssignment
	} else {
		s.feasible = true
	}
	g.export(s)
	s.recomputeObjective()

	return s, nil
}

type urgency struct {
	cust  int // index into greedyState.custs
	value float64
}

type greedyState struct {
	inst  instance.Instance
	locs  []int // ascending
	caps  []int
	used  []int
	custs []int
	rem   []int
	lists [][]Assignment
}

func newGreedyState(inst instance.Instance, open OpenSet) *greedyState {
	g := &greedyState{
		inst:  inst,
		locs:  open.ids,
		caps:  make([]int, open.Len()),
		used:  make([]int, open.Len()),
		custs: inst.Customers(),
	}
	for i, loc := range g.locs {
		g.caps[i] = inst.Capacity(loc)
	}
	g.rem = make([]int, len(g.custs))
	g.lists = make([][]Assignment, len(g.custs))
	for j, c := range g.custs {
		g.rem[j] = inst.Demand(c)
	}
	return g
}

// closest returns the index of the nearest open location with spare capacity,
// skipping index skip, or -1. Ties go to the later (higher ID) location.
func (g *greedyState) closest(j, skip int) int {
	best, at := math.Inf(1), -1
	cust := g.custs[j]
	for i, loc := range g.locs {
		if i == skip || g.used[i] >= g.caps[i] {
			continue
		}
		if d := g.inst.RealDistance(loc, cust); d <= best {
			best, at = d, i
		}
	}
	return at
}

// urgencies ranks unsatisfied customers; ok is false when one of them has no
// location with spare capacity left.
func (g *greedyState) urgencies() (out []urgency, ok bool) {
	for j := range g.custs {
		if g.rem[j] == 0 {
			continue
		}
		l1 := g.closest(j, -1)
		if l1 < 0 {
			return nil, false
		}
		u := 0.0
		if l2 := g.closest(j, l1); l2 >= 0 {
			c := g.custs[j]
			u = math.Abs(g.inst.RealDistance(g.locs[l1], c) - g.inst.RealDistance(g.locs[l2], c))
		}
		out = append(out, urgency{cust: j, value: u})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].value > out[b].value })
	return out, true
}

// run executes the passes; false means some demand could not be placed.
func (g *greedyState) run() bool {
	for {
		order, ok := g.urgencies()
		if !ok {
			return false
		}
		if len(order) == 0 {
			return true
		}
		if !g.pass(order) {
			return false
		}
	}
}

// pass serves customers in order until one has to be split.
func (g *greedyState) pass(order []urgency) bool {
	for _, u := range order {
		j := u.cust
		for g.rem[j] > 0 {
			i := g.closest(j, -1)
			if i < 0 {
				return false
			}
			spare := g.caps[i] - g.used[i]
			split := g.rem[j] > spare
			q := min(g.rem[j], spare)
			g.used[i] += q
			g.rem[j] -= q
			loc := g.locs[i]
			g.lists[j] = append(g.lists[j], Assignment{
				Location: loc,
				Quantity: q,
				Cost:     float64(q) * g.inst.RealDistance(loc, g.custs[j]),
			})
			if split {
				return true
			}
		}
	}
	return true
}

func (g *greedyState) export(s *Solution) {
	for i, loc := range g.locs {
		s.usage[loc] = g.used[i]
	}
	for j, c := range g.custs {
		s.satisfaction[c] = g.inst.Demand(c) - g.rem[j]
		if len(g.lists[j]) > 0 {
			s.assignments[c] = g.lists[j]
		}
	}
}

// NaiveEvaluator sends each customer's whole demand to its nearest open
// location by weighted distance, ignoring capacity. The result is feasible
// only if that routing happens to respect every capacity.
type NaiveEvaluator struct{}

// Evaluate implements Evaluator. It never returns an error.
func (NaiveEvaluator) Evaluate(inst instance.Instance, open OpenSet) (*Solution, error) {
	s := newEmpty(inst, open, Naive)
	for _, c := range inst.Customers() {
		best, at := math.Inf(1), 0
		for _, loc := range open.ids {
			if d := inst.WeightedDistance(loc, c); d <= best {
				best, at = d, loc
			}
		}
		dem := inst.Demand(c)
		s.usage[at] += dem
		s.satisfaction[c] = dem
		s.assignments[c] = []Assignment{{Location: at, Quantity: dem, Cost: best}}
	}
	s.recomputeObjective()

	switch {
	case s.totalCap < inst.TotalDemand():
		s.reason = ReasonCapacity
	case overflows(s):
		s.reason = ReasonAssignment
	default:
		s.feasible = true
	}
	return s, nil
}

func overflows(s *Solution) bool {
	for _, loc := range s.open.ids {
		if s.usage[loc] > s.inst.Capacity(loc) {
			return true
		}
	}
	return false
}

// External delegates assignment to an AssignmentSolver.
type External struct {
	Solver  AssignmentSolver
	Relaxed bool
}

// Evaluate implements Evaluator. Solver errors are returned wrapped; a
// capacity shortfall is reported without calling the solver.
func (e External) Evaluate(inst instance.Instance, open OpenSet) (*Solution, error) {
	mode := Exact
	if e.Relaxed {
		mode = Relaxed
	}
	s := newEmpty(inst, open, mode)
	if s.totalCap < inst.TotalDemand() {
		s.reason = ReasonCapacity
		return s, nil
	}

	res, err := e.Solver.SolveAssignment(inst, open, e.Relaxed)
	if err != nil {
		return nil, fmt.Errorf("solution: %s solve of %v: %w", mode, open, err)
	}
	if !res.Feasible {
		s.reason = ReasonSolver
		return s, nil
	}

	stray := false
	for cust, list := range res.Assignments {
		out := make([]Assignment, 0, len(list))
		for _, a := range list {
			if a.Quantity == 0 {
				continue
			}
			if !open.Contains(a.Location) {
				stray = true
				continue
			}
			s.usage[a.Location] += a.Quantity
			s.satisfaction[cust] += a.Quantity
			out = append(out, Assignment{
				Location: a.Location,
				Quantity: a.Quantity,
				Cost:     float64(a.Quantity) * inst.RealDistance(a.Location, cust),
			})
		}
		if len(out) > 0 {
			s.assignments[cust] = out
		}
	}
	s.recomputeObjective()

	if stray || s.Verify() != nil {
		s.reason = ReasonSolver
	} else {
		s.feasible = true
	}
	return s, nil
}
