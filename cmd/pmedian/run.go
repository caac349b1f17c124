// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/pmedian/cache"
	"github.com/katalvlaran/pmedian/config"
	"github.com/katalvlaran/pmedian/instance"
	"github.com/katalvlaran/pmedian/localsearch"
	"github.com/katalvlaran/pmedian/metrics"
	"github.com/katalvlaran/pmedian/report"
	"github.com/katalvlaran/pmedian/solution"
	"github.com/katalvlaran/pmedian/vns"
)

// outcome is the result of one start.
type outcome struct {
	best       *solution.Solution
	seed       int64
	iterations int
	cacheSize  int
	stop       string
	stats      metrics.RunStats
}

// run solves inst cfg.Runs times in parallel (start i > 0 reseeded with
// DeriveSeed) and writes the best result. Only start 0 reports progress.
func run(ctx context.Context, cfg config.Config, inst instance.Instance, logger zerolog.Logger) error {
	method := cfg.RunMethod()
	runID := uuid.New()
	logger = logger.With().Str("run", runID.String()).Str("method", string(method)).Logger()
	began := time.Now()
	// Reports outlive an interrupt so the best solution found is still stored.
	persist := context.WithoutCancel(ctx)

	out, err := openSinks(persist, cfg, inst, runID)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing reports")
		}
	}()

	starts := make([]outcome, cfg.Runs)
	g, gctx := errgroup.WithContext(ctx)
	for i := range starts {
		seed := cfg.Seed
		if i > 0 {
			seed = localsearch.DeriveSeed(cfg.Seed, uint64(i))
		}
		var sink report.Sink
		if i == 0 {
			sink = out.progress
		}
		g.Go(func() error {
			o, err := solve(gctx, cfg, inst, method, seed, sink, logger.With().Int("start", i).Logger())
			if err != nil {
				return fmt.Errorf("start %d: %w", i, err)
			}
			starts[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	best := pickBest(starts, method.Capacitated())
	elapsed := time.Since(began)
	ev := solution.Naive.String()
	if method.Capacitated() {
		ev = best.best.Mode().String()
	}

	msg := logger.Info()
	if !best.best.Feasible() {
		msg = logger.Warn().Stringer("reason", best.best.Reason())
	}
	msg.Float64("objective", best.best.Objective()).
		Bool("feasible", best.best.Feasible()).
		Stringer("open", best.best.Open()).
		Int64("seed", best.seed).
		Str("stop", best.stop).
		Dur("elapsed", elapsed).
		Msg("best solution")

	if err := writeAssignment(cfg.AssignmentPath(), best.best); err != nil {
		return err
	}

	row := report.ResultRow{
		RunID:      runID,
		Customers:  len(inst.Customers()),
		Locations:  len(inst.Locations()),
		P:          inst.P(),
		Method:     string(method),
		Eval:       ev,
		Objective:  best.best.Objective(),
		Iterations: best.iterations,
		Seconds:    elapsed.Seconds(),
	}
	if err := report.AppendResult(cfg.ResultsPath(), row); err != nil {
		return err
	}
	if out.db != nil {
		if err := out.db.WriteResult(persist, row); err != nil {
			return err
		}
	}

	if cfg.Summary != "" {
		s := report.Summary{
			RunID:      runID.String(),
			Method:     string(method),
			Eval:       ev,
			P:          inst.P(),
			Objective:  best.best.Objective(),
			Feasible:   best.best.Feasible(),
			Iterations: best.iterations,
			CacheSize:  best.cacheSize,
			Seconds:    elapsed.Seconds(),
			Stop:       best.stop,
			Open:       best.best.Open().IDs(),
		}
		if err := writeSummary(cfg.Summary, s); err != nil {
			return err
		}
	}

	if cfg.Metrics != "" {
		for _, o := range starts {
			metrics.ObserveRun(string(method), o.stats)
		}
		if err := metrics.WriteTextfile(cfg.Metrics); err != nil {
			return err
		}
	}
	return nil
}

// solve runs one start of method.
func solve(ctx context.Context, cfg config.Config, inst instance.Instance, method config.Method, seed int64, sink report.Sink, log zerolog.Logger) (outcome, error) {
	if method.VNS() {
		vc := cfg.VNS(ctx, log, seed)
		vc.Sink = sink
		v, err := vns.New(inst, cache.New(), vc)
		if err != nil {
			return outcome{}, err
		}
		var res vns.Result
		if method.Capacitated() {
			res, err = v.Solve(ctx)
		} else {
			res, err = v.SolveUncapacitated(ctx)
		}
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			best:       res.Best,
			seed:       seed,
			iterations: res.Iterations,
			cacheSize:  res.CacheSize,
			stop:       res.Stop.String(),
			stats: metrics.RunStats{
				Sweeps:      res.Sweeps,
				Confirms:    res.Evaluations,
				LowerBounds: res.LowerBounds,
				CacheHits:   res.CacheHits,
				Elapsed:     res.Elapsed,
				Stop:        res.Stop.String(),
			},
		}, nil
	}

	lc := cfg.Search(ctx, log)
	lc.Sink = sink
	e, err := localsearch.New(inst, cache.New(), lc)
	if err != nil {
		return outcome{}, err
	}
	var res localsearch.Result
	if method.Capacitated() {
		res, err = e.Solve(ctx)
	} else {
		res, err = e.SolveUncapacitated(ctx, seed)
	}
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		best:       res.Best,
		seed:       seed,
		iterations: res.Iterations,
		cacheSize:  e.Cache().Len(),
		stop:       res.Stop.String(),
		stats: metrics.RunStats{
			Sweeps:      res.Iterations,
			Confirms:    res.Evaluations,
			LowerBounds: res.LowerBounds,
			CacheHits:   res.CacheHits,
			Elapsed:     res.Elapsed,
			Stop:        res.Stop.String(),
		},
	}, nil
}

// pickBest returns the start with the lowest score (capacitated) or
// objective; ties keep the earlier start.
func pickBest(starts []outcome, capacitated bool) outcome {
	key := func(o outcome) float64 {
		if capacitated {
			return o.best.Score()
		}
		return o.best.Objective()
	}
	best := starts[0]
	for _, o := range starts[1:] {
		if key(o) < key(best) {
			best = o
		}
	}
	return best
}

// sinks owns the progress outputs of a run.
type sinks struct {
	progress report.Sink
	throttle *report.Throttle
	csv      *report.CSVSink
	db       *report.SQLSink
}

func openSinks(ctx context.Context, cfg config.Config, inst instance.Instance, runID uuid.UUID) (*sinks, error) {
	s := &sinks{}
	var fan []report.Sink
	if cfg.Reports != "" {
		path := report.ProgressPath(cfg.Reports, cfg.Method, cfg.Service, inst.P())
		csv, err := report.OpenCSV(path)
		if err != nil {
			return nil, err
		}
		s.csv = csv
		fan = append(fan, csv)
	}
	if cfg.DBDriver != "" {
		db, err := report.OpenSQL(ctx, cfg.DBDriver, cfg.DBSource, runID)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.db = db
		fan = append(fan, db)
	}
	if cfg.Metrics != "" {
		fan = append(fan, metrics.Progress(cfg.Method))
	}
	if len(fan) == 0 {
		return s, nil
	}
	s.throttle = report.NewThrottle(report.Multi(fan...), cfg.ReportInterval, 1)
	s.progress = s.throttle
	return s, nil
}

// Close flushes the throttle and closes the files and database.
func (s *sinks) Close() error {
	var errs []error
	if s.throttle != nil {
		errs = append(errs, s.throttle.Flush())
	}
	if s.csv != nil {
		errs = append(errs, s.csv.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func writeAssignment(path string, best *solution.Solution) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create dirs: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := best.WriteAssignment(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeSummary(path string, s report.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteSummary(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
