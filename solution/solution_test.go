// SPDX-License-Identifier: MIT

package solution_test

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/solution"
	"github.com/stretchr/testify/require"
)

// threeLocations: capacities [5,5,5], demands [7,3], location 3 far away.
func threeLocations(t *testing.T) *instance.Dense {
	t.Helper()
	d, err := instance.NewDense(2,
		[]instance.Location{{ID: 1, Capacity: 5}, {ID: 2, Capacity: 5}, {ID: 3, Capacity: 5}},
		[]instance.Customer{{ID: 1, Demand: 7}, {ID: 2, Demand: 3}},
		[][]float64{
			{1, 2},
			{4, 3},
			{10, 10},
		})
	require.NoError(t, err)
	return d
}

// objectiveFromTriples recomputes Σ quantity × distance independently.
func objectiveFromTriples(inst instance.Instance, s *solution.Solution) float64 {
	sum := 0.0
	for _, c := range inst.Customers() {
		for _, a := range s.Assignments(c) {
			sum += float64(a.Quantity) * inst.RealDistance(a.Location, c)
		}
	}
	return sum
}

// TestGreedy_ThreeLocations: customer 1 is the most urgent, fills location 1
// and is split onto location 2 after the urgencies are recomputed.
func TestGreedy_ThreeLocations(t *testing.T) {
	inst := threeLocations(t)
	s, err := solution.Evaluate(inst, solution.MustOpenSet(1, 2), solution.Heuristic, nil)
	require.NoError(t, err)

	require.True(t, s.Feasible())
	require.Equal(t, solution.ReasonNone, s.Reason())
	require.NoError(t, s.Verify())

	require.Equal(t, []solution.Assignment{
		{Location: 1, Quantity: 5, Cost: 5},
		{Location: 2, Quantity: 2, Cost: 8},
	}, s.Assignments(1))
	require.Equal(t, []solution.Assignment{{Location: 2, Quantity: 3, Cost: 9}}, s.Assignments(2))

	require.Equal(t, 5, s.Usage(1))
	require.Equal(t, 5, s.Usage(2))
	require.Equal(t, 7, s.Satisfaction(1))
	require.Equal(t, 3, s.Satisfaction(2))
	require.Equal(t, 22.0, s.Objective())
	require.Equal(t, 22.0, s.Score())
	require.Equal(t, 10, s.TotalCapacity())
}

// TestGreedy_ExactFillKeepsPass: customer 1 fills location 1 exactly, so the
// pass goes on in the first urgency order (1, 3, 2) and customer 3 takes
// location 2 before customer 2 gets to it.
func TestGreedy_ExactFillKeepsPass(t *testing.T) {
	inst, err := instance.NewDense(3,
		[]instance.Location{{ID: 1, Capacity: 5}, {ID: 2, Capacity: 3}, {ID: 3, Capacity: 10}},
		[]instance.Customer{{ID: 1, Demand: 5}, {ID: 2, Demand: 3}, {ID: 3, Demand: 3}},
		[][]float64{
			{0, 0, 0},
			{100, 1, 10},
			{100, 50, 12},
		})
	require.NoError(t, err)

	s, err := solution.Greedy{}.Evaluate(inst, solution.MustOpenSet(1, 2, 3))
	require.NoError(t, err)
	require.True(t, s.Feasible())
	require.NoError(t, s.Verify())

	require.Equal(t, []solution.Assignment{{Location: 1, Quantity: 5, Cost: 0}}, s.Assignments(1))
	require.Equal(t, []solution.Assignment{{Location: 2, Quantity: 3, Cost: 30}}, s.Assignments(3))
	require.Equal(t, []solution.Assignment{{Location: 3, Quantity: 3, Cost: 150}}, s.Assignments(2))
	require.Equal(t, 180.0, s.Objective())
}

func TestGreedy_CapacityShortfall(t *testing.T) {
	inst := threeLocations(t)
	s, err := solution.Greedy{}.Evaluate(inst, solution.MustOpenSet(3))
	require.NoError(t, err)

	require.False(t, s.Feasible())
	require.Equal(t, solution.ReasonCapacity, s.Reason())
	require.True(t, math.IsInf(s.Score(), 1))
	require.Equal(t, 0.0, s.Objective())
	require.Empty(t, s.Assignments(1))
	require.Equal(t, 0, s.Usage(3))

	capacity, demand := s.Shortfall()
	require.Equal(t, 5, capacity)
	require.Equal(t, 10, demand)
	require.ErrorIs(t, s.Verify(), solution.ErrCapacityShortfall)
}

// TestGreedy_RandomInstances checks the capacity, demand and objective
// invariants on random feasible instances.
func TestGreedy_RandomInstances(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		nl, nc := 3+rng.Intn(5), 2+rng.Intn(12)
		locs := make([]instance.Location, nl)
		for i := range locs {
			locs[i] = instance.Location{ID: 100 + i, Capacity: rng.Intn(30)}
		}
		custs := make([]instance.Customer, nc)
		for j := range custs {
			custs[j] = instance.Customer{ID: j, Demand: rng.Intn(8)}
		}
		dist := make([][]float64, nl)
		for i := range dist {
			dist[i] = make([]float64, nc)
			for j := range dist[i] {
				dist[i][j] = float64(rng.Intn(50))
			}
		}
		inst, err := instance.NewDense(2, locs, custs, dist)
		require.NoError(t, err)

		open := solution.MustOpenSet(locs[0].ID, locs[1].ID)
		s, err := solution.Greedy{}.Evaluate(inst, open)
		require.NoError(t, err)
		require.InDelta(t, objectiveFromTriples(inst, s), s.Objective(), 1e-9)

		if s.TotalCapacity() < inst.TotalDemand() {
			require.Equal(t, solution.ReasonCapacity, s.Reason())
			continue
		}
		require.True(t, s.Feasible(), "round %d", round)
		require.NoError(t, s.Verify(), "round %d", round)
		for _, loc := range open.IDs() {
			require.LessOrEqual(t, s.Usage(loc), inst.Capacity(loc))
		}

		again, err := solution.Greedy{}.Evaluate(inst, open)
		require.NoError(t, err)
		require.Equal(t, s.Objective(), again.Objective())
	}
}

func TestNaive(t *testing.T) {
	inst := threeLocations(t)
	s, err := solution.NaiveEvaluator{}.Evaluate(inst, solution.MustOpenSet(1, 2))
	require.NoError(t, err)

	// Both customers pick location 1, which overflows.
	require.Equal(t, 10, s.Usage(1))
	require.Equal(t, 13.0, s.Objective())
	require.False(t, s.Feasible())
	require.Equal(t, solution.ReasonAssignment, s.Reason())
	require.ErrorIs(t, s.Verify(), solution.ErrOverCapacity)
	require.Equal(t, []solution.Assignment{{Location: 1, Quantity: 7, Cost: 7}}, s.Assignments(1))
}

// TestNaive_TieGoesToHighestID pins the ascending scan with the <= rule.
func TestNaive_TieGoesToHighestID(t *testing.T) {
	inst, err := instance.NewDense(2,
		[]instance.Location{{ID: 9, Capacity: 10}, {ID: 4, Capacity: 10}},
		[]instance.Customer{{ID: 1, Demand: 2}},
		[][]float64{{3}, {3}})
	require.NoError(t, err)

	s, err := solution.NaiveEvaluator{}.Evaluate(inst, solution.MustOpenSet(4, 9))
	require.NoError(t, err)
	require.True(t, s.Feasible())
	require.Equal(t, 9, s.Assignments(1)[0].Location)

	g, err := solution.Greedy{}.Evaluate(inst, solution.MustOpenSet(4, 9))
	require.NoError(t, err)
	require.Equal(t, 9, g.Assignments(1)[0].Location)
}

func TestSwap(t *testing.T) {
	inst := threeLocations(t)
	s, err := solution.Greedy{}.Evaluate(inst, solution.MustOpenSet(1, 2))
	require.NoError(t, err)

	next, err := s.Swap(1, 3, solution.Greedy{})
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, next.Open().IDs())
	require.InDelta(t, objectiveFromTriples(inst, next), next.Objective(), 1e-9)
	require.Equal(t, []int{1, 2}, s.Open().IDs(), "receiver untouched")

	same, err := s.Swap(3, 1, solution.Greedy{})
	require.ErrorIs(t, err, solution.ErrInvalidSwap)
	require.Same(t, s, same)

	same, err = s.Swap(1, 2, solution.Greedy{})
	require.ErrorIs(t, err, solution.ErrInvalidSwap)
	require.Same(t, s, same)
}

func TestSetters(t *testing.T) {
	inst := threeLocations(t)
	s, err := solution.Greedy{}.Evaluate(inst, solution.MustOpenSet(1, 2))
	require.NoError(t, err)

	require.Panics(t, func() { s.SetLocationUsage(1, 6) })
	require.Panics(t, func() { s.SetLocationUsage(3, 1) })
	require.Panics(t, func() { s.SetCustomerSatisfaction(2, 4) })
	require.Panics(t, func() { s.SetAssignments(2, []solution.Assignment{{Location: 3, Quantity: 1}}) })

	s.SetAssignments(2, []solution.Assignment{{Location: 1, Quantity: 3}})
	require.Equal(t, 5.0+8.0+6.0, s.Objective())
	require.Equal(t, 6.0, s.Assignments(2)[0].Cost)
	require.ErrorIs(t, s.Verify(), solution.ErrInconsistent)

	s.SetLocationUsage(1, 5)
	s.SetCustomerSatisfaction(2, 3)
}

func TestParseMode(t *testing.T) {
	cases := map[string]solution.Mode{
		"heuristic": solution.Heuristic,
		"naive":     solution.Naive,
		"PMP":       solution.Naive,
		"GAPrelax":  solution.Relaxed,
		"GAP":       solution.Exact,
	}
	for tag, want := range cases {
		got, err := solution.ParseMode(tag)
		require.NoError(t, err, tag)
		require.Equal(t, want, got)
	}

	_, err := solution.ParseMode("CPLEX")
	require.ErrorIs(t, err, solution.ErrUnknownMode)

	_, err = solution.Relaxed.Evaluator(nil)
	require.ErrorIs(t, err, solution.ErrNoSolver)
	_, err = solution.Mode(42).Evaluator(nil)
	require.ErrorIs(t, err, solution.ErrUnknownMode)
}

type fakeSolver struct {
	res solution.SolverResult
	err error
}

func (f fakeSolver) SolveAssignment(instance.Instance, solution.OpenSet, bool) (solution.SolverResult, error) {
	return f.res, f.err
}

func TestExternal(t *testing.T) {
	inst := threeLocations(t)
	open := solution.MustOpenSet(1, 2)

	ok := fakeSolver{res: solution.SolverResult{
		Feasible: true,
		Assignments: map[int][]solution.Assignment{
			1: {{Location: 1, Quantity: 4}, {Location: 2, Quantity: 3}},
			2: {{Location: 1, Quantity: 1}, {Location: 2, Quantity: 2}},
		},
	}}
	s, err := solution.Evaluate(inst, open, solution.Relaxed, ok)
	require.NoError(t, err)
	require.True(t, s.Feasible())
	require.Equal(t, solution.Relaxed, s.Mode())
	require.Equal(t, 4.0+12.0+2.0+6.0, s.Objective())
	require.Equal(t, 5, s.Usage(1))

	bad := fakeSolver{res: solution.SolverResult{Feasible: false}}
	s, err = solution.Evaluate(inst, open, solution.Exact, bad)
	require.NoError(t, err)
	require.Equal(t, solution.ReasonSolver, s.Reason())

	over := fakeSolver{res: solution.SolverResult{
		Feasible:    true,
		Assignments: map[int][]solution.Assignment{1: {{Location: 1, Quantity: 7}}, 2: {{Location: 2, Quantity: 3}}},
	}}
	s, err = solution.Evaluate(inst, open, solution.Relaxed, over)
	require.NoError(t, err)
	require.False(t, s.Feasible())

	boom := errors.New("boom")
	_, err = solution.Evaluate(inst, open, solution.Relaxed, fakeSolver{err: boom})
	require.ErrorIs(t, err, boom)

	// Shortfall is detected before the solver is consulted.
	s, err = solution.Evaluate(inst, solution.MustOpenSet(3), solution.Relaxed, fakeSolver{err: boom})
	require.NoError(t, err)
	require.Equal(t, solution.ReasonCapacity, s.Reason())
}

func TestWriteAssignment(t *testing.T) {
	inst := threeLocations(t)
	s, err := solution.Greedy{}.Evaluate(inst, solution.MustOpenSet(2, 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.WriteAssignment(&buf))
	require.Equal(t, `OBJECTIVE
22

P LOCATIONS
1
2

LOCATION USAGES
location (usage/capacity)
1 (5/5)
2 (5/5)

CUSTOMER ASSIGNMENTS
customer (demand) -> location (assigned demand)
1 (7) -> 1 (5) 2 (2)
2 (3) -> 2 (3)
`, buf.String())
}
