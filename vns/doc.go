// SPDX-License-Identifier: MIT

// Package vns wraps swap local search in a variable neighborhood search.
//
// Each outer iteration perturbs the incumbent by k simultaneous random swaps
// and hands the result to a budgeted localsearch.Engine:
//
//	incumbent ─► Perturb(k) ─► local search ─► better? ── yes ──► incumbent, k = KStart
//	                                               │ no
//	                                               └──► k++ (k > KMax stops)
//
// Perturbations draw from a stream seeded by DeriveSeed(Seed, iteration), so
// a run is reproducible for a fixed Seed when no time limit interferes. The
// cover variant replaces each dropped location with a closed location from
// the same subarea.
//
// A VNS shares its cache with the inner engine; neither is safe for
// concurrent use.
package vns
