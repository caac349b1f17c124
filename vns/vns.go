// SPDX-License-Identifier: MIT

package vns

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/pmedian/cache"
	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/localsearch"
	"github.com/katalvlaran/pmedian/report"
	"github.com/katalvlaran/pmedian/solution"
)

// VNS runs variable neighborhood search on one instance.
type VNS struct {
	inst   instance.Instance
	cfg    Config
	engine *localsearch.Engine
	inner  int
}

// New validates cfg and builds the inner engine over c (a fresh cache when
// nil).
func New(inst instance.Instance, c *cache.Cache, cfg Config) (*VNS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	inner := cfg.Search.MaxIterations
	if inner == 0 {
		inner = DefaultInnerIterations
	}
	search := cfg.Search
	if search.TimeLimit == 0 {
		search.TimeLimit = cfg.TimeLimit
	}
	e, err := localsearch.New(inst, c, search)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	return &VNS{inst: inst, cfg: cfg, engine: e, inner: inner}, nil
}

// Cache returns the cache shared with the inner engine.
func (v *VNS) Cache() *cache.Cache { return v.engine.Cache() }

// Solve runs capacitated VNS from the highest-capacity start.
func (v *VNS) Solve(ctx context.Context) (Result, error) {
	return v.Run(ctx, localsearch.HighestCapacity(v.inst))
}

// SolveUncapacitated runs uncapacitated VNS from a random start drawn with
// the configured seed.
func (v *VNS) SolveUncapacitated(ctx context.Context) (Result, error) {
	return v.RunUncapacitated(ctx, localsearch.Random(v.inst, localsearch.RandFromSeed(v.cfg.Seed)))
}

// Run performs capacitated VNS from start. The incumbent is compared by
// Score, so any feasible solution beats an infeasible one.
func (v *VNS) Run(ctx context.Context, start solution.OpenSet) (Result, error) {
	return v.run(ctx, start, true)
}

// RunUncapacitated performs VNS on the naive objective.
func (v *VNS) RunUncapacitated(ctx context.Context, start solution.OpenSet) (Result, error) {
	return v.run(ctx, start, false)
}

// KRange returns the effective [KStart, KMax] for a run.
func (v *VNS) KRange(capacitated bool) (kStart, kMax int) {
	p := v.inst.P()
	kStart, kMax = v.cfg.KStart, v.cfg.KMax
	if kMax == 0 {
		kMax = max(1, p/2)
	}
	if kStart == 0 {
		kStart = 1
		if capacitated {
			kStart = max(1, p/4)
		}
	}
	return min(kStart, kMax), kMax
}

func (v *VNS) run(ctx context.Context, start solution.OpenSet, capacitated bool) (Result, error) {
	if err := localsearch.CheckStart(v.inst, start); err != nil {
		return Result{}, err
	}
	began := time.Now()
	log := v.cfg.Logger.With().Str("search", "vns").Bool("capacitated", capacitated).Logger()

	best, err := v.evaluate(start, capacitated)
	if err != nil {
		return Result{}, err
	}
	kStart, kMax := v.KRange(capacitated)
	res := Result{Best: best, K: kStart}
	v.record(best, 0, began)

	better := func(a, b *solution.Solution) bool { return a.Score() < b.Score() }
	if !capacitated {
		better = func(a, b *solution.Solution) bool { return a.Objective() < b.Objective() }
	}
	perturb := Perturb
	if v.cfg.Cover {
		perturb = PerturbCover
	}

	for {
		if v.cfg.MaxIterations > 0 && res.Iterations >= v.cfg.MaxIterations {
			return v.finish(log, res, StopIterations, began), nil
		}
		if stop, ok := v.interrupted(ctx, began); ok {
			return v.finish(log, res, stop, began), nil
		}
		res.Iterations++

		seed := localsearch.DeriveSeed(v.cfg.Seed, uint64(res.Iterations))
		next, err := perturb(v.inst, best.Open(), res.K, seed, capacitated)
		if err != nil {
			log.Warn().Err(err).Int("iteration", res.Iterations).Int("k", res.K).Msg("perturbation skipped")
		}

		inner := v.engine.WithOffset(time.Since(began), v.inner)
		var lr localsearch.Result
		if capacitated {
			lr, err = inner.Run(ctx, next)
		} else {
			lr, err = inner.RunUncapacitated(ctx, next)
		}
		if err != nil {
			return v.finish(log, res, StopCancelled, began), err
		}
		res.Sweeps += lr.Iterations
		res.Evaluations += lr.Evaluations
		res.LowerBounds += lr.LowerBounds
		res.CacheHits += lr.CacheHits

		if better(lr.Best, best) {
			log.Debug().
				Int("iteration", res.Iterations).
				Int("k", res.K).
				Float64("from", best.Objective()).
				Float64("to", lr.Best.Objective()).
				Msg("incumbent improved")
			best = lr.Best
			res.Best = best
			res.Improvements++
			res.K = kStart
			v.record(best, res.Iterations, began)
		} else {
			res.K++
		}

		if lr.Stop == localsearch.StopCancelled {
			return v.finish(log, res, StopCancelled, began), nil
		}
		if res.K > kMax {
			return v.finish(log, res, StopNeighborhoods, began), nil
		}
	}
}

// evaluate builds the start solution and seeds the cache with it.
func (v *VNS) evaluate(start solution.OpenSet, capacitated bool) (*solution.Solution, error) {
	if !capacitated {
		return solution.NaiveEvaluator{}.Evaluate(v.inst, start)
	}
	s, err := solution.Evaluate(v.inst, start, v.cfg.Search.Confirm, v.cfg.Search.Solver)
	if err != nil {
		return nil, err
	}
	v.Cache().AddUnique(s)
	return s, nil
}

func (v *VNS) interrupted(ctx context.Context, began time.Time) (StopReason, bool) {
	if v.cfg.TimeLimit > 0 && time.Since(began) >= v.cfg.TimeLimit {
		return StopTimeLimit, true
	}
	select {
	case <-ctx.Done():
		return StopCancelled, true
	default:
	}
	return 0, false
}

func (v *VNS) finish(log zerolog.Logger, res Result, stop StopReason, began time.Time) Result {
	res.Stop = stop
	res.Elapsed = time.Since(began)
	res.CacheSize = v.Cache().Len()
	log.Info().
		Stringer("stop", stop).
		Float64("objective", res.Best.Objective()).
		Bool("feasible", res.Best.Feasible()).
		Int("iterations", res.Iterations).
		Int("improvements", res.Improvements).
		Int("k", res.K).
		Int("cache", res.CacheSize).
		Dur("elapsed", res.Elapsed).
		Msg("vns finished")
	return res
}

func (v *VNS) record(best *solution.Solution, iteration int, began time.Time) {
	if v.cfg.Sink == nil {
		return
	}
	r := report.Record{
		Objective: best.Objective(),
		Iteration: iteration,
		CacheSize: v.Cache().Len(),
		Elapsed:   time.Since(began),
	}
	if err := v.cfg.Sink.Record(r); err != nil {
		v.cfg.Logger.Warn().Err(err).Msg("progress record dropped")
	}
}
