// SPDX-License-Identifier: MIT

// Package report is the observational side channel of a search run.
//
// Searches emit anytime progress through a Sink: (objective, iteration,
// cache size, elapsed). Sinks never feed back into the algorithm; a failing
// Record is logged by the caller and the search continues.
//
// Implementations:
//
//	CSVSink   "objective;iteration;cacheSize;seconds" lines in reports/*.csv
//	Throttle  rate-limits another sink (golang.org/x/time/rate)
//	SQLSink   progress and results tables in SQLite or Postgres
//
// AppendResult writes the one-line outcome of a run to a results CSV and
// WriteSummary renders it as YAML.
package report
