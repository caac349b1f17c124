// SPDX-License-Identifier: MIT

package transport_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/solution"
	"github.com/katalvlaran/pmedian/transport"
	"github.com/stretchr/testify/require"
)

// bruteForce enumerates every integral split of three customers between two
// locations and returns the cheapest feasible cost (+Inf if none).
func bruteForce(capA, capB int, dem [3]int, dA, dB [3]float64) float64 {
	best := math.Inf(1)
	for x0 := 0; x0 <= dem[0]; x0++ {
		for x1 := 0; x1 <= dem[1]; x1++ {
			for x2 := 0; x2 <= dem[2]; x2++ {
				x := [3]int{x0, x1, x2}
				useA, useB, cost := 0, 0, 0.0
				for j := range x {
					useA += x[j]
					useB += dem[j] - x[j]
					cost += float64(x[j])*dA[j] + float64(dem[j]-x[j])*dB[j]
				}
				if useA <= capA && useB <= capB && cost < best {
					best = cost
				}
			}
		}
	}
	return best
}

// TestSolver_MatchesBruteForce compares every backend's optimum with
// exhaustive enumeration on random tiny instances.
func TestSolver_MatchesBruteForce(t *testing.T) {
	for _, m := range []transport.Method{transport.Auto, transport.Simplex, transport.Flow} {
		t.Run(m.String(), func(t *testing.T) {
			matchesBruteForce(t, transport.Solver{Method: m})
		})
	}
}

func matchesBruteForce(t *testing.T, solver transport.Solver) {
	t.Helper()
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 60; round++ {
		var dem [3]int
		var dA, dB [3]float64
		for j := 0; j < 3; j++ {
			dem[j] = 1 + rng.Intn(5)
			dA[j] = float64(rng.Intn(20))
			dB[j] = float64(rng.Intn(20))
		}
		capA, capB := rng.Intn(12), rng.Intn(12)

		inst, err := instance.NewDense(2,
			[]instance.Location{{ID: 1, Capacity: capA}, {ID: 2, Capacity: capB}},
			[]instance.Customer{{ID: 10, Demand: dem[0]}, {ID: 11, Demand: dem[1]}, {ID: 12, Demand: dem[2]}},
			[][]float64{dA[:], dB[:]})
		require.NoError(t, err)

		res, err := solver.SolveAssignment(inst, solution.MustOpenSet(1, 2), true)
		require.NoError(t, err)

		want := bruteForce(capA, capB, dem, dA, dB)
		if math.IsInf(want, 1) {
			require.False(t, res.Feasible, "round %d", round)
			continue
		}
		require.True(t, res.Feasible, "round %d", round)

		got, served := 0.0, 0
		for _, list := range res.Assignments {
			for _, a := range list {
				got += a.Cost
				served += a.Quantity
			}
		}
		require.InDelta(t, want, got, 1e-9, "round %d", round)
		require.Equal(t, dem[0]+dem[1]+dem[2], served, "round %d", round)
	}
}

// TestSolver_RelaxedEvaluator runs the solver through the Relaxed mode and
// checks it never loses to the greedy heuristic.
func TestSolver_RelaxedEvaluator(t *testing.T) {
	inst, err := instance.NewDense(2,
		[]instance.Location{{ID: 1, Capacity: 5}, {ID: 2, Capacity: 5}, {ID: 3, Capacity: 5}},
		[]instance.Customer{{ID: 1, Demand: 4}, {ID: 2, Demand: 4}, {ID: 3, Demand: 2}},
		[][]float64{
			{1, 1, 9},
			{2, 6, 1},
			{9, 9, 9},
		})
	require.NoError(t, err)
	open := solution.MustOpenSet(1, 2)

	relaxed, err := solution.Evaluate(inst, open, solution.Relaxed, transport.Solver{})
	require.NoError(t, err)
	require.True(t, relaxed.Feasible())
	require.NoError(t, relaxed.Verify())

	greedy, err := solution.Evaluate(inst, open, solution.Heuristic, nil)
	require.NoError(t, err)
	require.True(t, greedy.Feasible())
	require.LessOrEqual(t, relaxed.Objective(), greedy.Objective()+1e-9)
}

func TestSolver_Binary(t *testing.T) {
	inst, err := instance.NewDense(1,
		[]instance.Location{{ID: 1, Capacity: 5}},
		[]instance.Customer{{ID: 1, Demand: 1}},
		[][]float64{{1}})
	require.NoError(t, err)

	_, err = transport.Solver{}.SolveAssignment(inst, solution.MustOpenSet(1), false)
	require.ErrorIs(t, err, transport.ErrBinaryUnsupported)

	_, err = solution.Evaluate(inst, solution.MustOpenSet(1), solution.Exact, transport.Solver{})
	require.ErrorIs(t, err, transport.ErrBinaryUnsupported)
}

// TestSolver_BackendsAgree checks simplex and flow reach the same optimum
// on a larger instance.
func TestSolver_BackendsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	locs := make([]instance.Location, 6)
	for i := range locs {
		locs[i] = instance.Location{ID: i + 1, Capacity: 10 + rng.Intn(20)}
	}
	custs := make([]instance.Customer, 15)
	for j := range custs {
		custs[j] = instance.Customer{ID: 100 + j, Demand: 1 + rng.Intn(6)}
	}
	dist := make([][]float64, len(locs))
	for i := range dist {
		dist[i] = make([]float64, len(custs))
		for j := range dist[i] {
			dist[i][j] = float64(rng.Intn(100))
		}
	}
	inst, err := instance.NewDense(4, locs, custs, dist)
	require.NoError(t, err)
	open := solution.MustOpenSet(1, 3, 4, 6)

	cost := func(m transport.Method) float64 {
		s, err := solution.Evaluate(inst, open, solution.Relaxed, transport.Solver{Method: m})
		require.NoError(t, err)
		require.True(t, s.Feasible(), m.String())
		require.NoError(t, s.Verify(), m.String())
		return s.Objective()
	}
	require.InDelta(t, cost(transport.Flow), cost(transport.Simplex), 1e-6)
}

func TestSolver_Cancelled(t *testing.T) {
	inst, err := instance.NewDense(1,
		[]instance.Location{{ID: 1, Capacity: 5}},
		[]instance.Customer{{ID: 1, Demand: 1}},
		[][]float64{{1}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, m := range []transport.Method{transport.Auto, transport.Simplex, transport.Flow} {
		_, err = transport.Solver{Ctx: ctx, Method: m}.SolveAssignment(inst, solution.MustOpenSet(1), true)
		require.ErrorIs(t, err, context.Canceled, m.String())
	}
}
