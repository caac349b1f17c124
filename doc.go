// Package pmedian is a toolkit of heuristics for the p-median problem and
// its capacitated variant: open p of the candidate locations so that serving
// every customer's demand costs as little as possible.
//
// What is in the box?
//
//	• Instances: validated distance, demand and capacity tables + file loader
//	• Evaluation: urgency greedy, naive nearest-location, relaxed transportation
//	• Search: swap local search with a solution cache and two lower-bound tiers
//	• VNS: randomized k-swap perturbation around the local search
//	• Reports: progress CSV, SQLite/Postgres, YAML summaries, Prometheus textfile
//
// Packages:
//
//	instance/     Instance interface, Dense implementation, Load
//	solution/     OpenSet, Solution, evaluators, Verify, text dump
//	transport/    transportation LP solver: gonum simplex, min-cost flow (relaxed mode)
//	cache/        per-run store of evaluated open sets
//	localsearch/  swap local search engine and start heuristics
//	vns/          variable neighborhood search
//	report/       progress sinks and result files
//	metrics/      Prometheus collectors
//	config/       flags, pmedian.yaml and PMEDIAN_* environment
//	cmd/pmedian   command line front end
//
// Quick picture, p = 2:
//
//	 c1   c2         c5
//	   \  |          |
//	    [L1]  L2   [L4]──c6
//	   /             |
//	 c3   c4         c7
//
// Two locations open, every customer routed to an open one within capacity.
package pmedian
