// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ResultRow is the one-line outcome of a run. RunID keys the SQL results
// table and is not part of the CSV line.
type ResultRow struct {
	RunID      uuid.UUID
	Customers  int
	Locations  int
	P          int
	Method     string
	Eval       string
	Objective  float64
	Iterations int
	Seconds    float64
}

// String renders the row as
// "customers;locations;p;method;eval;objective;iterations;seconds".
func (r ResultRow) String() string {
	return strings.Join([]string{
		strconv.Itoa(r.Customers),
		strconv.Itoa(r.Locations),
		strconv.Itoa(r.P),
		r.Method,
		r.Eval,
		strconv.FormatFloat(r.Objective, 'f', 15, 64),
		strconv.Itoa(r.Iterations),
		strconv.FormatFloat(r.Seconds, 'f', -1, 64),
	}, ";")
}

// AppendResult appends row to the results file at path, creating it if needed.
func AppendResult(path string, row ResultRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("report: create dirs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", path, err)
	}
	if _, err := io.WriteString(f, row.String()+"\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return f.Close()
}

// Summary is the YAML document written at the end of a run.
type Summary struct {
	RunID      string  `yaml:"run_id"`
	Method     string  `yaml:"method"`
	Eval       string  `yaml:"eval"`
	P          int     `yaml:"p"`
	Objective  float64 `yaml:"objective"`
	Feasible   bool    `yaml:"feasible"`
	Iterations int     `yaml:"iterations"`
	CacheSize  int     `yaml:"cache_size"`
	Seconds    float64 `yaml:"seconds"`
	Stop       string  `yaml:"stop"`
	Open       []int   `yaml:"open,flow"`
}

// WriteSummary encodes s as YAML.
func WriteSummary(w io.Writer, s Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("report: encode summary: %w", err)
	}
	return enc.Close()
}

// ReadSummary decodes a document written by WriteSummary.
func ReadSummary(r io.Reader) (Summary, error) {
	var s Summary
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return Summary{}, fmt.Errorf("report: decode summary: %w", err)
	}
	return s, nil
}
