// SPDX-License-Identifier: MIT

package report_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/pmedian/report"
	"github.com/stretchr/testify/require"
)

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	s := report.NewCSVSink(&buf)
	require.NoError(t, s.Record(report.Record{Objective: 12.5, Iteration: 3, CacheSize: 7, Elapsed: 1500 * time.Millisecond}))
	require.NoError(t, s.Close())
	require.Equal(t, "12.500000000000000;3;7;1.500000000000000\n", buf.String())
}

func TestOpenCSV_Appends(t *testing.T) {
	path := report.ProgressPath(filepath.Join(t.TempDir(), "reports"), "TB_CPMP", "", 4)
	require.True(t, strings.HasSuffix(path, filepath.Join("reports", "report_TB_CPMP_p_4.csv")))

	for i := 0; i < 2; i++ {
		s, err := report.OpenCSV(path)
		require.NoError(t, err)
		require.NoError(t, s.Record(report.Record{Objective: 1, Iteration: i}))
		require.NoError(t, s.Close())
	}
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 2)
}

func TestProgressPath_Service(t *testing.T) {
	require.Equal(t, filepath.Join("r", "report_VNS_CPMP_schools_p_10.csv"), report.ProgressPath("r", "VNS_CPMP", "schools", 10))
}

func TestMulti(t *testing.T) {
	var got []float64
	collect := report.SinkFunc(func(r report.Record) error {
		got = append(got, r.Objective)
		return nil
	})
	boom := errors.New("boom")
	failing := report.SinkFunc(func(report.Record) error { return boom })

	s := report.Multi(collect, nil, failing)
	err := s.Record(report.Record{Objective: 4})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []float64{4}, got)

	require.NoError(t, report.Multi().Record(report.Record{}))
}

// TestThrottle: with a one-hour interval only the first record passes; Flush
// delivers the latest dropped one.
func TestThrottle(t *testing.T) {
	var got []int
	next := report.SinkFunc(func(r report.Record) error {
		got = append(got, r.Iteration)
		return nil
	})
	th := report.NewThrottle(next, time.Hour, 1)
	for i := 1; i <= 5; i++ {
		require.NoError(t, th.Record(report.Record{Iteration: i}))
	}
	require.Equal(t, []int{1}, got)

	require.NoError(t, th.Flush())
	require.Equal(t, []int{1, 5}, got)
	require.NoError(t, th.Flush())
	require.Equal(t, []int{1, 5}, got)

	unlimited := report.NewThrottle(next, 0, 1)
	for i := 0; i < 3; i++ {
		require.NoError(t, unlimited.Record(report.Record{Iteration: 10 + i}))
	}
	require.Equal(t, []int{1, 5, 10, 11, 12}, got)
}

func TestAppendResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out_results_TB_CPMP.csv")
	id := uuid.MustParse("7f2c1c8e-3c1a-4c1e-9e55-2d1f2b0a9f10")
	row := report.ResultRow{
		RunID: id, Customers: 10, Locations: 5, P: 2, Method: "TB_CPMP", Eval: "heuristic",
		Objective: 22, Iterations: 3, Seconds: 0.25,
	}
	require.NoError(t, report.AppendResult(path, row))
	require.NoError(t, report.AppendResult(path, row))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "10;5;2;TB_CPMP;heuristic;22.000000000000000;3;0.25", lines[0])
	require.NotContains(t, lines[1], id.String())
}

func TestSummaryYAML(t *testing.T) {
	in := report.Summary{
		RunID: "r1", Method: "VNS_CPMP", Eval: "heuristic", P: 3, Objective: 10.5,
		Feasible: true, Iterations: 4, CacheSize: 9, Seconds: 1.25, Stop: "local-optimum",
		Open: []int{1, 4, 9},
	}
	var buf bytes.Buffer
	require.NoError(t, report.WriteSummary(&buf, in))
	require.Contains(t, buf.String(), "open: [1, 4, 9]")
	require.Contains(t, buf.String(), "method: VNS_CPMP")

	out, err := report.ReadSummary(&buf)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestSQLSink_SQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "bench.db")
	id := uuid.New()

	s, err := report.OpenSQL(ctx, "sqlite", dsn, id)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.Equal(t, id, s.RunID())

	require.NoError(t, s.Record(report.Record{Objective: 30, Iteration: 0, CacheSize: 1, Elapsed: time.Second}))
	require.NoError(t, s.Record(report.Record{Objective: 25, Iteration: 1, CacheSize: 2, Elapsed: 2 * time.Second}))
	require.NoError(t, s.WriteResult(ctx, report.ResultRow{P: 2, Method: "TB_CPMP", Eval: "heuristic", Objective: 25}))

	got, err := s.Progress(ctx)
	require.NoError(t, err)
	require.Equal(t, []report.Record{
		{Objective: 30, Iteration: 0, CacheSize: 1, Elapsed: time.Second},
		{Objective: 25, Iteration: 1, CacheSize: 2, Elapsed: 2 * time.Second},
	}, got)

	// Re-opening keeps existing tables.
	again, err := report.OpenSQL(ctx, "sqlite", dsn, uuid.New())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestOpenSQL_UnknownDriver(t *testing.T) {
	_, err := report.OpenSQL(context.Background(), "mysql", "x", uuid.New())
	require.ErrorIs(t, err, report.ErrUnknownDriver)
}
