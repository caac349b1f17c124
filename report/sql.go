// SPDX-License-Identifier: MIT

package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver "pgx"
	_ "modernc.org/sqlite"             // pure go sqlite driver "sqlite"
)

// ErrUnknownDriver is returned by OpenSQL for drivers other than "sqlite" and "pgx".
var ErrUnknownDriver = errors.New("report: unknown sql driver")

const schema = `
CREATE TABLE IF NOT EXISTS progress (
	run_id     TEXT NOT NULL,
	objective  DOUBLE PRECISION NOT NULL,
	iteration  INTEGER NOT NULL,
	cache_size INTEGER NOT NULL,
	seconds    DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id     TEXT PRIMARY KEY,
	customers  INTEGER NOT NULL,
	locations  INTEGER NOT NULL,
	p          INTEGER NOT NULL,
	method     TEXT NOT NULL,
	eval       TEXT NOT NULL,
	objective  DOUBLE PRECISION NOT NULL,
	iterations INTEGER NOT NULL,
	seconds    DOUBLE PRECISION NOT NULL
)`

// SQLSink stores progress records and results rows of one run in a SQL
// database: a local SQLite file ("sqlite") or a shared Postgres ("pgx").
type SQLSink struct {
	db     *sql.DB
	driver string
	runID  uuid.UUID
	ctx    context.Context
}

// OpenSQL opens dsn with driver, creates the tables if missing and returns a
// sink tagging every row with runID.
func OpenSQL(ctx context.Context, driver, dsn string, runID uuid.UUID) (*SQLSink, error) {
	if driver != "sqlite" && driver != "pgx" {
		return nil, fmt.Errorf("%q: %w", driver, ErrUnknownDriver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("report: ping %s: %w", driver, err)
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("report: create tables: %w", err)
		}
	}
	return &SQLSink{db: db, driver: driver, runID: runID, ctx: ctx}, nil
}

// RunID returns the identifier stamped on every row.
func (s *SQLSink) RunID() uuid.UUID { return s.runID }

// Record implements Sink.
func (s *SQLSink) Record(r Record) error {
	_, err := s.db.ExecContext(s.ctx,
		s.rebind(`INSERT INTO progress (run_id, objective, iteration, cache_size, seconds) VALUES (?,?,?,?,?)`),
		s.runID.String(), r.Objective, r.Iteration, r.CacheSize, r.Elapsed.Seconds())
	if err != nil {
		return fmt.Errorf("report: insert progress: %w", err)
	}
	return nil
}

// WriteResult stores row under the sink's run ID.
func (s *SQLSink) WriteResult(ctx context.Context, row ResultRow) error {
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO results (run_id, customers, locations, p, method, eval, objective, iterations, seconds) VALUES (?,?,?,?,?,?,?,?,?)`),
		s.runID.String(), row.Customers, row.Locations, row.P, row.Method, row.Eval, row.Objective, row.Iterations, row.Seconds)
	if err != nil {
		return fmt.Errorf("report: insert result: %w", err)
	}
	return nil
}

// Progress returns the stored records of the sink's run ordered by iteration.
func (s *SQLSink) Progress(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT objective, iteration, cache_size, seconds FROM progress WHERE run_id = ? ORDER BY iteration, cache_size`),
		s.runID.String())
	if err != nil {
		return nil, fmt.Errorf("report: select progress: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			r   Record
			sec float64
		)
		if err := rows.Scan(&r.Objective, &r.Iteration, &r.CacheSize, &sec); err != nil {
			return nil, fmt.Errorf("report: scan: %w", err)
		}
		r.Elapsed = secondsToDuration(sec)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database handle.
func (s *SQLSink) Close() error { return s.db.Close() }

// rebind turns '?' placeholders into '$n' for postgres.
func (s *SQLSink) rebind(q string) string {
	if s.driver != "pgx" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
