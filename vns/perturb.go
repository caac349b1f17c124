// SPDX-License-Identifier: MIT

package vns

import (
	"fmt"

	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/localsearch"
	"github.com/katalvlaran/pmedian/solution"
)

// Perturb swaps k open locations for k closed ones, both drawn uniformly
// without replacement from a stream seeded by seed. When capacitated is set
// the perturbed set must still cover total demand.
//
// On error open is returned unchanged.
func Perturb(inst instance.Instance, open solution.OpenSet, k int, seed int64, capacitated bool) (solution.OpenSet, error) {
	closed := closedOf(inst, open)
	if err := checkK(open, closed, k); err != nil {
		return open, err
	}
	rng := localsearch.RandFromSeed(seed)
	outs := open.IDs()
	localsearch.ShuffleInts(outs, rng)
	localsearch.ShuffleInts(closed, rng)
	return apply(inst, open, outs[:k], closed[:k], capacitated)
}

// PerturbCover is Perturb with replacements restricted to the subarea of the
// location they replace. inst must implement instance.SubareaLookup. A dropped
// location without an untaken same-subarea candidate stays open; the call
// fails only when no swap survives.
func PerturbCover(inst instance.Instance, open solution.OpenSet, k int, seed int64, capacitated bool) (solution.OpenSet, error) {
	sub, ok := inst.(instance.SubareaLookup)
	if !ok {
		return open, ErrNoSubareas
	}
	closed := closedOf(inst, open)
	if err := checkK(open, closed, k); err != nil {
		return open, err
	}
	rng := localsearch.RandFromSeed(seed)
	outs := open.IDs()
	localsearch.ShuffleInts(outs, rng)

	taken := make(map[int]bool, k)
	var drop, add []int
	for _, out := range outs[:k] {
		tag, ok := sub.Subarea(out)
		if !ok {
			continue
		}
		var cands []int
		for _, c := range closed {
			if t, ok := sub.Subarea(c); ok && t == tag && !taken[c] {
				cands = append(cands, c)
			}
		}
		if len(cands) == 0 {
			continue
		}
		in := cands[rng.Intn(len(cands))]
		taken[in] = true
		drop = append(drop, out)
		add = append(add, in)
	}
	if len(drop) == 0 {
		return open, fmt.Errorf("k=%d: %w", k, ErrNoSubareaMatch)
	}
	return apply(inst, open, drop, add, capacitated)
}

func checkK(open solution.OpenSet, closed []int, k int) error {
	if k < 1 || open.Len() < k || len(closed) < k {
		return fmt.Errorf("k=%d, %d open, %d closed: %w", k, open.Len(), len(closed), ErrTooFewLocations)
	}
	return nil
}

// closedOf lists the locations of inst outside open, in instance order.
func closedOf(inst instance.Instance, open solution.OpenSet) []int {
	var closed []int
	for _, l := range inst.Locations() {
		if !open.Contains(l) {
			closed = append(closed, l)
		}
	}
	return closed
}

func apply(inst instance.Instance, open solution.OpenSet, drop, add []int, capacitated bool) (solution.OpenSet, error) {
	if capacitated {
		total := 0
		for _, id := range open.IDs() {
			total += inst.Capacity(id)
		}
		for i := range drop {
			total += inst.Capacity(add[i]) - inst.Capacity(drop[i])
		}
		if total < inst.TotalDemand() {
			return open, fmt.Errorf("capacity %d, demand %d: %w", total, inst.TotalDemand(), ErrNoCapacity)
		}
	}
	next := open
	for i := range drop {
		next, _ = next.Swap(drop[i], add[i])
	}
	return next, nil
}
