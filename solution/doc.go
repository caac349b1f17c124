// SPDX-License-Identifier: MIT

// Package solution evaluates capacitated p-median solutions.
//
// An OpenSet is a canonical (sorted, immutable) set of open locations. An
// Evaluator turns an OpenSet into a *Solution holding per-location usage,
// per-customer satisfaction, the (location, quantity, cost) assignment triples
// and the objective Σ quantity × distance.
//
// Strategies are a closed enum (Mode):
//
//	Heuristic  urgency-priority greedy, capacity aware          (Greedy)
//	Naive      nearest open location, capacity ignored           (NaiveEvaluator)
//	Relaxed    transportation solve via an AssignmentSolver      (External)
//	Exact      single-sourcing solve via an AssignmentSolver     (External)
//
// Infeasibility is data, not an error: Feasible, Reason and Shortfall describe
// it, and Score maps infeasible solutions to +Inf so searches can compare
// plain numbers. Errors are reserved for configuration problems (unknown
// mode, missing solver, invalid swap) and solver failures. The low-level
// setters panic on contract violations.
//
// Evaluation is side-effect free and deterministic: locations are scanned in
// ascending ID order and customers in instance order.
package solution
