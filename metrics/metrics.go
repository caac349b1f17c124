// SPDX-License-Identifier: MIT

// Package metrics exposes search statistics as Prometheus collectors on a
// dedicated registry. The command line tool dumps them with WriteTextfile at
// the end of a run so node_exporter's textfile collector can pick them up.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/katalvlaran/pmedian/report"
)

var (
	// Registry is the dedicated registry of this module.
	Registry = prometheus.NewRegistry()

	// Evaluations counts solution evaluations by method and kind
	// (confirm, lower_bound, cache_hit).
	Evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pmedian_evaluations_total", Help: "Solution evaluations by kind."},
		[]string{"method", "kind"},
	)
	// Sweeps counts local search sweeps.
	Sweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pmedian_sweeps_total", Help: "Local search sweeps."},
		[]string{"method"},
	)
	// BestObjective is the latest objective reported by a progress record.
	BestObjective = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "pmedian_best_objective", Help: "Best objective seen so far."},
		[]string{"method"},
	)
	// CacheSize is the latest solution cache size reported by a progress record.
	CacheSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "pmedian_cache_size", Help: "Distinct open sets stored in the solution cache."},
		[]string{"method"},
	)
	// RunDuration records wall-clock run durations in seconds.
	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "pmedian_run_duration_seconds", Help: "Search run duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.01, 4, 10)},
		[]string{"method"},
	)
	// Runs counts finished runs by stop reason.
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pmedian_runs_total", Help: "Finished search runs by stop reason."},
		[]string{"method", "stop"},
	)
)

var regOnce sync.Once

// RegisterDefault registers the collectors (plus Go and process collectors)
// on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Evaluations)
		Registry.MustRegister(Sweeps)
		Registry.MustRegister(BestObjective)
		Registry.MustRegister(CacheSize)
		Registry.MustRegister(RunDuration)
		Registry.MustRegister(Runs)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// RunStats summarizes one finished search.
type RunStats struct {
	Sweeps      int
	Confirms    int
	LowerBounds int
	CacheHits   int
	Elapsed     time.Duration
	Stop        string
}

// ObserveRun adds a finished run to the collectors.
func ObserveRun(method string, st RunStats) {
	Sweeps.WithLabelValues(method).Add(float64(st.Sweeps))
	Evaluations.WithLabelValues(method, "confirm").Add(float64(st.Confirms))
	Evaluations.WithLabelValues(method, "lower_bound").Add(float64(st.LowerBounds))
	Evaluations.WithLabelValues(method, "cache_hit").Add(float64(st.CacheHits))
	RunDuration.WithLabelValues(method).Observe(st.Elapsed.Seconds())
	Runs.WithLabelValues(method, st.Stop).Inc()
}

// Progress returns a sink that mirrors progress records into the gauges.
func Progress(method string) report.Sink {
	obj := BestObjective.WithLabelValues(method)
	size := CacheSize.WithLabelValues(method)
	return report.SinkFunc(func(r report.Record) error {
		obj.Set(r.Objective)
		size.Set(float64(r.CacheSize))
		return nil
	})
}

// WriteTextfile writes Registry in the Prometheus text format to path.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}
