// SPDX-License-Identifier: MIT

// Package cache deduplicates evaluated solutions by their open set.
//
// A Cache is append-only for the lifetime of one search run: entries are
// indexed in insertion order and never removed, and each distinct open set is
// stored at most once. Keys are xxhash digests of the canonical (ascending)
// location IDs; colliding sets share a bucket and are told apart with
// OpenSet.Equal.
//
// A Cache is not safe for concurrent use; each run owns its own.
package cache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/katalvlaran/pmedian/solution"
)

// Cache stores solutions keyed by open set.
type Cache struct {
	entries []*solution.Solution
	buckets map[uint64][]int
	scratch []byte
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{buckets: make(map[uint64][]int)}
}

// Len returns the number of stored solutions.
func (c *Cache) Len() int { return len(c.entries) }

// Lookup returns the index of open, if stored.
func (c *Cache) Lookup(open solution.OpenSet) (int, bool) {
	for _, i := range c.buckets[c.key(open)] {
		if c.entries[i].Open().Equal(open) {
			return i, true
		}
	}
	return -1, false
}

// Objective returns the objective of entry i.
func (c *Cache) Objective(i int) float64 { return c.entries[i].Objective() }

// Solution returns entry i.
func (c *Cache) Solution(i int) *solution.Solution { return c.entries[i] }

// AddUnique stores sol unless its open set is already present. It reports
// whether sol was added.
func (c *Cache) AddUnique(sol *solution.Solution) bool {
	open := sol.Open()
	h := c.key(open)
	for _, i := range c.buckets[h] {
		if c.entries[i].Open().Equal(open) {
			return false
		}
	}
	c.buckets[h] = append(c.buckets[h], len(c.entries))
	c.entries = append(c.entries, sol)
	return true
}

func (c *Cache) key(open solution.OpenSet) uint64 {
	b := c.scratch[:0]
	for i := 0; i < open.Len(); i++ {
		b = binary.LittleEndian.AppendUint64(b, uint64(open.At(i)))
	}
	c.scratch = b
	return xxhash.Sum64(b)
}
