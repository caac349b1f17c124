// SPDX-License-Identifier: MIT

package localsearch

import (
	"context"
	"math/rand"
	"sort"

	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/solution"
)

// HighestCapacity opens the p locations with the largest capacities; equal
// capacities prefer the higher ID.
func HighestCapacity(inst instance.Instance) solution.OpenSet {
	locs := inst.Locations()
	sort.SliceStable(locs, func(a, b int) bool {
		ca, cb := inst.Capacity(locs[a]), inst.Capacity(locs[b])
		if ca != cb {
			return ca > cb
		}
		return locs[a] > locs[b]
	})
	return solution.MustOpenSet(locs[:inst.P()]...)
}

// Random opens p distinct locations drawn uniformly with rng. A nil rng uses
// the default seed.
func Random(inst instance.Instance, rng *rand.Rand) solution.OpenSet {
	if rng == nil {
		rng = RandFromSeed(0)
	}
	locs := inst.Locations()
	ShuffleInts(locs, rng)
	return solution.MustOpenSet(locs[:inst.P()]...)
}

// Solve runs capacitated local search from the highest-capacity start.
func (e *Engine) Solve(ctx context.Context) (Result, error) {
	return e.Run(ctx, HighestCapacity(e.inst))
}

// SolveUncapacitated runs uncapacitated local search from a random start
// drawn with seed.
func (e *Engine) SolveUncapacitated(ctx context.Context, seed int64) (Result, error) {
	return e.RunUncapacitated(ctx, Random(e.inst, RandFromSeed(seed)))
}
