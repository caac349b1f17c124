// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"math"

	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/solution"
)

// solveFlow runs min-cost flow on source → location (capacity, cost 0) →
// customer (demand, cost dist) → sink (demand, cost 0). Successive shortest
// augmenting paths with a queue-based Bellman-Ford search yield a
// minimum-cost maximum flow; the result is feasible iff the flow saturates
// total demand.
//
// Complexity: O(A · V · E) with A augmentations (A ≤ total demand), V = p+|C|+2,
// E = O(p·|C|). Integral capacities give integral quantities.
func solveFlow(ctx context.Context, inst instance.Instance, locs, custs []int) (solution.SolverResult, error) {
	n := newNetwork(len(locs) + len(custs) + 2)
	src, sink := 0, len(locs)+len(custs)+1

	// arcs[i][j] is the index of the loc i → cust j arc in n.adj[1+i].
	arcs := make([][]int, len(locs))
	for i, loc := range locs {
		n.addArc(src, 1+i, inst.Capacity(loc), 0)
		arcs[i] = make([]int, len(custs))
		for j, c := range custs {
			arcs[i][j] = n.addArc(1+i, 1+len(locs)+j, inst.Demand(c), inst.RealDistance(loc, c))
		}
	}
	for j, c := range custs {
		n.addArc(1+len(locs)+j, sink, inst.Demand(c), 0)
	}

	flow, err := n.minCostFlow(ctx, src, sink)
	if err != nil {
		return solution.SolverResult{}, err
	}
	if flow < inst.TotalDemand() {
		return solution.SolverResult{Feasible: false}, nil
	}

	out := make(map[int][]solution.Assignment, len(custs))
	for j, c := range custs {
		for i, loc := range locs {
			a := n.adj[1+i][arcs[i][j]]
			if q := a.flow; q > 0 {
				out[c] = append(out[c], solution.Assignment{
					Location: loc,
					Quantity: q,
					Cost:     float64(q) * a.cost,
				})
			}
		}
	}
	return solution.SolverResult{Feasible: true, Assignments: out}, nil
}

type arc struct {
	to   int
	cap  int // residual capacity
	flow int
	cost float64
	rev  int // index of the reverse arc in adj[to]
}

type network struct {
	adj [][]arc
}

func newNetwork(n int) *network { return &network{adj: make([][]arc, n)} }

// addArc adds u→v with its zero-capacity reverse arc and returns the index of
// the forward arc in adj[u].
func (n *network) addArc(u, v, capacity int, cost float64) int {
	n.adj[u] = append(n.adj[u], arc{to: v, cap: capacity, cost: cost, rev: len(n.adj[v])})
	n.adj[v] = append(n.adj[v], arc{to: u, cap: 0, cost: -cost, rev: len(n.adj[u]) - 1})
	return len(n.adj[u]) - 1
}

// minCostFlow pushes as much flow as possible from src to sink along
// successive cheapest paths and returns the total pushed.
func (n *network) minCostFlow(ctx context.Context, src, sink int) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		prevNode, prevArc, ok, err := n.shortestPath(ctx, src, sink)
		if err != nil {
			return total, err
		}
		if !ok {
			return total, nil
		}

		// bottleneck
		push := math.MaxInt
		for v := sink; v != src; v = prevNode[v] {
			push = min(push, n.adj[prevNode[v]][prevArc[v]].cap)
		}
		for v := sink; v != src; v = prevNode[v] {
			a := &n.adj[prevNode[v]][prevArc[v]]
			a.cap -= push
			a.flow += push
			r := &n.adj[v][a.rev]
			r.cap += push
			r.flow -= push
		}
		total += push
	}
}

// shortestPath runs SPFA over arcs with residual capacity.
func (n *network) shortestPath(ctx context.Context, src, sink int) (prevNode, prevArc []int, ok bool, err error) {
	const eps = 1e-12

	V := len(n.adj)
	dist := make([]float64, V)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	prevNode = make([]int, V)
	prevArc = make([]int, V)
	inQueue := make([]bool, V)

	dist[src] = 0
	queue := []int{src}
	inQueue[src] = true
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, nil, false, ctx.Err()
		default:
		}
		u := queue[0]
		queue = queue[1:]
		inQueue[u] = false
		for k, a := range n.adj[u] {
			if a.cap <= 0 {
				continue
			}
			if nd := dist[u] + a.cost; nd < dist[a.to]-eps {
				dist[a.to] = nd
				prevNode[a.to] = u
				prevArc[a.to] = k
				if !inQueue[a.to] {
					inQueue[a.to] = true
					queue = append(queue, a.to)
				}
			}
		}
	}
	return prevNode, prevArc, !math.IsInf(dist[sink], 1), nil
}
