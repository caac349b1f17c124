// SPDX-License-Identifier: MIT

package localsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/pmedian/cache"
	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/report"
	"github.com/katalvlaran/pmedian/solution"
)

// Engine runs swap local search on one instance with one cache.
// An Engine is not safe for concurrent use.
type Engine struct {
	inst    instance.Instance
	cache   *cache.Cache
	cfg     Config
	confirm solution.Evaluator
	probe   solution.Evaluator
}

// New validates cfg and binds the engine to inst and c. A nil cache gets a
// fresh one.
func New(inst instance.Instance, c *cache.Cache, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	confirm, err := cfg.Confirm.Evaluator(cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	if c == nil {
		c = cache.New()
	}
	return &Engine{
		inst:    inst,
		cache:   c,
		cfg:     cfg,
		confirm: confirm,
		probe:   solution.NaiveEvaluator{},
	}, nil
}

// Cache returns the engine's solution cache.
func (e *Engine) Cache() *cache.Cache { return e.cache }

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// WithOffset returns a copy of e sharing its cache whose runs start with the
// given elapsed offset and sweep cap.
func (e *Engine) WithOffset(offset time.Duration, maxIterations int) *Engine {
	cp := *e
	cp.cfg.ElapsedOffset = offset
	cp.cfg.MaxIterations = maxIterations
	return &cp
}

// Run performs capacitated swap local search from start.
//
// Each sweep scans the closed locations in instance order; for a fixed
// closed location it tries every open one as the outgoing location and keeps
// the best swap (best improvement over the open set). The first closed
// location yielding an improvement ends the sweep (first improvement over
// locations): the winner is rebuilt from scratch, cached, and a new sweep
// starts from it.
//
// A swap (out → in) is examined only if the resulting open capacity still
// covers total demand. It is then answered, in order, by:
//  1. the cache: a stored set improving on the candidate by more than
//     Tolerance is adopted without evaluation;
//  2. the naive lower bound (LB1): unless it beats the candidate by more than
//     Tolerance the swap is dropped;
//  3. the confirm evaluation (LB2), which must itself beat the candidate by
//     more than Tolerance.
//
// Termination (checked after every closed location): local optimum, sweep
// cap, time limit, or ctx cancellation. The best solution so far is always
// returned; err is non-nil only for start/evaluation failures. An evaluation
// that fails with context.Canceled or context.DeadlineExceeded (a solver
// bound to a cancelled context) ends the run as StopCancelled with a nil err.
//
// Complexity per sweep: O((|L|-p) · p) probes, each O(|C|·p) for LB1 and
// O(p·|C|·p) for the heuristic LB2.
func (e *Engine) Run(ctx context.Context, start solution.OpenSet) (Result, error) {
	if err := e.checkStart(start); err != nil {
		return Result{}, err
	}
	began := time.Now()
	res := Result{}

	best, err := e.confirm.Evaluate(e.inst, start)
	if err != nil {
		return res, err
	}
	res.Evaluations++
	res.Best = best
	e.cache.AddUnique(best)
	e.record(best.Objective(), 0, began)

	demand := e.inst.TotalDemand()
	locations := e.inst.Locations()
	log := e.cfg.Logger.With().Str("search", "capacitated").Logger()

	for {
		if e.cfg.MaxIterations > 0 && res.Iterations >= e.cfg.MaxIterations {
			return e.finish(res, StopIterations, began), nil
		}
		res.Iterations++

		open := best.Open()
		outs := open.IDs()
		totalCap := best.TotalCapacity()
		improved := false

		for _, in := range locations {
			if open.Contains(in) {
				continue
			}
			cand := best
			capIn := e.inst.Capacity(in)
			for _, out := range outs {
				if totalCap-e.inst.Capacity(out)+capIn < demand {
					continue
				}
				next, _ := open.Swap(out, in)
				res.Probes++

				if i, ok := e.cache.Lookup(next); ok {
					res.CacheHits++
					if hit := e.cache.Solution(i); cand.Score()-hit.Score() > e.cfg.Tolerance {
						cand = hit
						improved = true
					}
					continue
				}

				lb, err := e.probe.Evaluate(e.inst, next)
				if err != nil {
					return e.abort(res, err, began)
				}
				res.LowerBounds++
				if !(cand.Score()-lb.Objective() > e.cfg.Tolerance) {
					continue
				}

				full, err := e.confirm.Evaluate(e.inst, next)
				if err != nil {
					return e.abort(res, err, began)
				}
				res.Evaluations++
				if cand.Score()-full.Score() > e.cfg.Tolerance {
					cand = full
					improved = true
				}
			}

			if improved {
				rebuilt, err := e.confirm.Evaluate(e.inst, cand.Open())
				if err != nil {
					return e.abort(res, err, began)
				}
				res.Evaluations++
				res.Moves++
				log.Debug().
					Int("sweep", res.Iterations).
					Float64("from", best.Objective()).
					Float64("to", rebuilt.Objective()).
					Stringer("open", rebuilt.Open()).
					Msg("swap accepted")
				best = rebuilt
				res.Best = best
				e.cache.AddUnique(best)
				e.record(best.Objective(), res.Iterations, began)
			}

			if stop, ok := e.interrupted(ctx, began); ok {
				return e.finish(res, stop, began), nil
			}
			if improved {
				break
			}
		}

		if !improved {
			return e.finish(res, StopLocalOptimum, began), nil
		}
	}
}

// RunUncapacitated performs swap local search on the naive (nearest
// location, capacity ignored) objective. There is no capacity admissibility
// check, no cache and no lower-bound stage; sweep and termination rules
// match Run.
func (e *Engine) RunUncapacitated(ctx context.Context, start solution.OpenSet) (Result, error) {
	if err := e.checkStart(start); err != nil {
		return Result{}, err
	}
	began := time.Now()
	res := Result{}

	best, err := e.probe.Evaluate(e.inst, start)
	if err != nil {
		return res, err
	}
	res.Evaluations++
	res.Best = best
	e.record(best.Objective(), 0, began)

	locations := e.inst.Locations()
	log := e.cfg.Logger.With().Str("search", "uncapacitated").Logger()

	for {
		if e.cfg.MaxIterations > 0 && res.Iterations >= e.cfg.MaxIterations {
			return e.finish(res, StopIterations, began), nil
		}
		res.Iterations++

		open := best.Open()
		outs := open.IDs()
		improved := false

		for _, in := range locations {
			if open.Contains(in) {
				continue
			}
			cand := best
			for _, out := range outs {
				next, _ := open.Swap(out, in)
				res.Probes++
				s, err := e.probe.Evaluate(e.inst, next)
				if err != nil {
					return e.abort(res, err, began)
				}
				res.Evaluations++
				if cand.Objective()-s.Objective() > e.cfg.Tolerance {
					cand = s
					improved = true
				}
			}

			if improved {
				rebuilt, err := e.probe.Evaluate(e.inst, cand.Open())
				if err != nil {
					return e.abort(res, err, began)
				}
				res.Evaluations++
				res.Moves++
				log.Debug().
					Int("sweep", res.Iterations).
					Float64("from", best.Objective()).
					Float64("to", rebuilt.Objective()).
					Msg("swap accepted")
				best = rebuilt
				res.Best = best
				e.record(best.Objective(), res.Iterations, began)
			}

			if stop, ok := e.interrupted(ctx, began); ok {
				return e.finish(res, stop, began), nil
			}
			if improved {
				break
			}
		}

		if !improved {
			return e.finish(res, StopLocalOptimum, began), nil
		}
	}
}

func (e *Engine) checkStart(start solution.OpenSet) error {
	return CheckStart(e.inst, start)
}

// CheckStart reports ErrBadStart unless start opens exactly p locations of
// inst.
func CheckStart(inst instance.Instance, start solution.OpenSet) error {
	if start.Len() != inst.P() {
		return fmt.Errorf("%d open, p=%d: %w", start.Len(), inst.P(), ErrBadStart)
	}
	known := make(map[int]struct{}, len(inst.Locations()))
	for _, l := range inst.Locations() {
		known[l] = struct{}{}
	}
	for _, id := range start.IDs() {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("location %d: %w", id, ErrBadStart)
		}
	}
	return nil
}

// interrupted polls the time budget and ctx.
func (e *Engine) interrupted(ctx context.Context, began time.Time) (StopReason, bool) {
	if e.cfg.TimeLimit > 0 && e.cfg.ElapsedOffset+time.Since(began) >= e.cfg.TimeLimit {
		return StopTimeLimit, true
	}
	select {
	case <-ctx.Done():
		return StopCancelled, true
	default:
	}
	return 0, false
}

// abort ends a run on an evaluation error.
func (e *Engine) abort(res Result, err error, began time.Time) (Result, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return e.finish(res, StopCancelled, began), nil
	}
	return e.finish(res, StopLocalOptimum, began), err
}

func (e *Engine) finish(res Result, stop StopReason, began time.Time) Result {
	res.Stop = stop
	res.Elapsed = time.Since(began)
	e.cfg.Logger.Info().
		Stringer("stop", stop).
		Float64("objective", res.Best.Objective()).
		Bool("feasible", res.Best.Feasible()).
		Int("sweeps", res.Iterations).
		Int("moves", res.Moves).
		Int("cache", e.cache.Len()).
		Dur("elapsed", res.Elapsed).
		Msg("local search finished")
	return res
}

func (e *Engine) record(objective float64, iteration int, began time.Time) {
	if e.cfg.Sink == nil {
		return
	}
	r := report.Record{
		Objective: objective,
		Iteration: iteration,
		CacheSize: e.cache.Len(),
		Elapsed:   e.cfg.ElapsedOffset + time.Since(began),
	}
	if err := e.cfg.Sink.Record(r); err != nil {
		e.cfg.Logger.Warn().Err(err).Msg("progress record dropped")
	}
}
