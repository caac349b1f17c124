// SPDX-License-Identifier: MIT

package localsearch

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/pmedian/report"
	"github.com/katalvlaran/pmedian/solution"
)

// Sentinel errors.
var (
	// ErrBadConfig is returned by Config.Validate and New.
	ErrBadConfig = errors.New("localsearch: invalid config")

	// ErrBadStart is returned when the start set does not open exactly p
	// locations of the instance.
	ErrBadStart = errors.New("localsearch: start set must open p instance locations")
)

// DefaultTolerance is the minimum objective decrease counted as an improvement.
const DefaultTolerance = 1e-6

// Config holds the knobs of one search run. It is copied into the Engine and
// never mutated afterwards.
type Config struct {
	// Tolerance: a move improves only if it lowers the objective by more than this.
	Tolerance float64
	// MaxIterations caps the number of sweeps; 0 means no cap.
	MaxIterations int
	// TimeLimit caps ElapsedOffset + wall-clock time of the run; 0 means no cap.
	TimeLimit time.Duration
	// ElapsedOffset is time already spent by an enclosing search.
	ElapsedOffset time.Duration
	// Confirm is the expensive evaluation that confirms a move (LB2).
	Confirm solution.Mode
	// Solver backs the Relaxed and Exact confirm modes.
	Solver solution.AssignmentSolver
	// Logger receives improvements (Debug) and termination (Info).
	Logger zerolog.Logger
	// Sink receives an anytime progress record per accepted move; nil disables.
	Sink report.Sink
}

// DefaultConfig returns heuristic confirmation, DefaultTolerance, no caps and
// a disabled logger.
func DefaultConfig() Config {
	return Config{
		Tolerance: DefaultTolerance,
		Confirm:   solution.Heuristic,
		Logger:    zerolog.Nop(),
	}
}

// Validate checks ranges and that Confirm can be built.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.Tolerance) || c.Tolerance < 0:
		return fmt.Errorf("tolerance %v: %w", c.Tolerance, ErrBadConfig)
	case c.MaxIterations < 0:
		return fmt.Errorf("max iterations %d: %w", c.MaxIterations, ErrBadConfig)
	case c.TimeLimit < 0:
		return fmt.Errorf("time limit %v: %w", c.TimeLimit, ErrBadConfig)
	case c.ElapsedOffset < 0:
		return fmt.Errorf("elapsed offset %v: %w", c.ElapsedOffset, ErrBadConfig)
	}
	if _, err := c.Confirm.Evaluator(c.Solver); err != nil {
		return fmt.Errorf("confirm mode: %w: %w", ErrBadConfig, err)
	}
	return nil
}

// StopReason tells why a run ended.
type StopReason int

const (
	// StopLocalOptimum: a full sweep found no improving swap.
	StopLocalOptimum StopReason = iota
	// StopIterations: MaxIterations sweeps were run.
	StopIterations
	// StopTimeLimit: the time budget ran out.
	StopTimeLimit
	// StopCancelled: the context was cancelled.
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopLocalOptimum:
		return "local-optimum"
	case StopIterations:
		return "iterations"
	case StopTimeLimit:
		return "time-limit"
	case StopCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Result is the outcome of a run.
type Result struct {
	Best *solution.Solution
	// Iterations is the number of sweeps started.
	Iterations int
	// Moves is the number of accepted swaps.
	Moves int
	// Evaluations counts confirm (LB2) evaluations, rebuilds included.
	Evaluations int
	// LowerBounds counts naive (LB1) probes.
	LowerBounds int
	// Probes counts capacity-admissible swaps examined.
	Probes int
	// CacheHits counts probes answered by the cache.
	CacheHits int
	// Elapsed is the wall-clock time of the run, ElapsedOffset excluded.
	Elapsed time.Duration
	Stop    StopReason
}
