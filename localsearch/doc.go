// SPDX-License-Identifier: MIT

// Package localsearch implements single-swap local search for the
// capacitated and uncapacitated p-median problems.
//
// A move closes one open location and opens one closed location. The
// capacitated search (Engine.Run) filters moves in three tiers:
//
//	capacity admissible? ── no ──► skip
//	      │ yes
//	cached set? ── yes ──► adopt if better by > Tolerance
//	      │ no
//	naive bound better by > Tolerance? ── no ──► skip        (LB1)
//	      │ yes
//	confirm evaluation better by > Tolerance? ── yes ──► candidate  (LB2)
//
// Sweeps use first improvement over closed locations and best improvement
// over the open set for a fixed closed location. Accepted moves are rebuilt
// from scratch and inserted into the run's cache.
//
// Determinism: given the same instance, start set and Config (and no time
// limit) the search visits the same sequence of sets. Time limits and
// cancellation are polled after every closed location, so a run returns
// promptly with the best solution found so far.
//
// Initial sets: HighestCapacity (capacitated default) and Random.
package localsearch
