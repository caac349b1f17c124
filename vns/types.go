// SPDX-License-Identifier: MIT

package vns

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/pmedian/localsearch"
	"github.com/katalvlaran/pmedian/report"
	"github.com/katalvlaran/pmedian/solution"
)

// Sentinel errors.
var (
	// ErrBadConfig is returned by Config.Validate and New.
	ErrBadConfig = errors.New("vns: invalid config")

	// ErrTooFewLocations: the open or the closed side has fewer than k
	// locations.
	ErrTooFewLocations = errors.New("vns: fewer than k locations to swap")

	// ErrNoCapacity: the perturbed set would not cover total demand.
	ErrNoCapacity = errors.New("vns: perturbation short on capacity")

	// ErrNoSubareas: cover perturbation on an instance without subarea tags.
	ErrNoSubareas = errors.New("vns: instance has no subareas")

	// ErrNoSubareaMatch: no dropped location had a same-subarea replacement.
	ErrNoSubareaMatch = errors.New("vns: no same-subarea replacement")
)

// DefaultInnerIterations is the sweep budget of each inner local search.
const DefaultInnerIterations = 200

// Config parameterizes a VNS run.
type Config struct {
	// Search configures the inner engine. Search.MaxIterations is the inner
	// sweep budget (0 means DefaultInnerIterations) and Search.TimeLimit
	// defaults to TimeLimit.
	Search localsearch.Config
	// MaxIterations caps outer iterations; 0 means no cap.
	MaxIterations int
	// TimeLimit caps the whole run; 0 means no cap.
	TimeLimit time.Duration
	// KStart is the initial neighborhood size. 0 means max(1, p/4) for
	// capacitated runs and 1 for uncapacitated ones.
	KStart int
	// KMax is the largest neighborhood tried; 0 means max(1, p/2).
	KMax int
	// Cover restricts replacements to the dropped location's subarea.
	Cover bool
	// Seed drives every perturbation; 0 behaves as 1.
	Seed   int64
	Logger zerolog.Logger
	// Sink receives a record per improvement of the incumbent; nil disables.
	Sink report.Sink
}

// DefaultConfig returns a heuristic-confirm inner search and default
// neighborhoods.
func DefaultConfig() Config {
	return Config{
		Search: localsearch.DefaultConfig(),
		Seed:   1,
		Logger: zerolog.Nop(),
	}
}

// Validate checks ranges and the inner search config.
func (c Config) Validate() error {
	switch {
	case c.MaxIterations < 0:
		return fmt.Errorf("max iterations %d: %w", c.MaxIterations, ErrBadConfig)
	case c.TimeLimit < 0:
		return fmt.Errorf("time limit %v: %w", c.TimeLimit, ErrBadConfig)
	case c.KStart < 0 || c.KMax < 0:
		return fmt.Errorf("k range [%d, %d]: %w", c.KStart, c.KMax, ErrBadConfig)
	case c.KMax > 0 && c.KStart > c.KMax:
		return fmt.Errorf("k start %d above k max %d: %w", c.KStart, c.KMax, ErrBadConfig)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	return nil
}

// StopReason tells why a run ended.
type StopReason int

const (
	// StopNeighborhoods: k grew past KMax.
	StopNeighborhoods StopReason = iota
	// StopIterations: MaxIterations outer iterations were run.
	StopIterations
	// StopTimeLimit: the time budget ran out.
	StopTimeLimit
	// StopCancelled: the context was cancelled.
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopNeighborhoods:
		return "neighborhoods"
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
	// Iterations is the number of outer iterations started.
	Iterations int
	// Improvements counts accepted incumbents after the start.
	Improvements int
	// Sweeps sums the sweeps of every inner search.
	Sweeps int
	// Evaluations, LowerBounds and CacheHits sum the matching counters of
	// every inner search.
	Evaluations int
	LowerBounds int
	CacheHits   int
	// K is the neighborhood size when the run ended.
	K int
	// CacheSize is the number of cached solutions at the end.
	CacheSize int
	Elapsed   time.Duration
	Stop      StopReason
}
