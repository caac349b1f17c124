// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// CSVSink appends "objective;iteration;cacheSize;seconds" lines, floats in
// fixed notation with 15 decimals.
type CSVSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewCSVSink writes to w.
func NewCSVSink(w io.Writer) *CSVSink { return &CSVSink{w: w} }

// OpenCSV opens (creating parents, appending) the progress file at path.
func OpenCSV(path string) (*CSVSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("report: create dirs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	return &CSVSink{w: f, closer: f}, nil
}

// ProgressPath is the conventional progress file name for a run:
// <dir>/report_<method>_<service>_p_<p>.csv. An empty service is omitted.
func ProgressPath(dir, method, service string, p int) string {
	parts := []string{"report", method}
	if service != "" {
		parts = append(parts, service)
	}
	parts = append(parts, "p", strconv.Itoa(p))
	return filepath.Join(dir, strings.Join(parts, "_")+".csv")
}

// Record implements Sink.
func (s *CSVSink) Record(r Record) error {
	line := strconv.FormatFloat(r.Objective, 'f', 15, 64) + ";" +
		strconv.Itoa(r.Iteration) + ";" +
		strconv.Itoa(r.CacheSize) + ";" +
		strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 15, 64) + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, line)
	return err
}

// Close closes the underlying file when the sink owns one.
func (s *CSVSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
