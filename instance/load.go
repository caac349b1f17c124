// SPDX-License-Identifier: MIT

package instance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrSyntax is returned (wrapped with file and line) for a malformed input line.
var ErrSyntax = errors.New("instance: syntax error")

// Files names the three plain-text inputs of a problem.
//
// Formats (whitespace separated, '#' starts a comment, blank lines ignored):
//
//	Distances:  loc cust distance
//	Weights:    cust demand
//	Capacities: loc capacity [subarea]
//
// Weights declares the customers and Capacities the locations, both in file
// order. Distances must cover every (loc, cust) pair exactly once.
type Files struct {
	Distances  string
	Weights    string
	Capacities string
}

// Load reads the three files named by f and builds a Dense instance opening p
// locations.
func Load(f Files, p int) (*Dense, error) {
	custs, err := openAndParse(f.Weights, ParseCustomers)
	if err != nil {
		return nil, err
	}
	locs, err := openAndParse(f.Capacities, ParseLocations)
	if err != nil {
		return nil, err
	}

	dist, err := openAndParse(f.Distances, func(r io.Reader) ([][]float64, error) {
		return ParseDistances(r, locs, custs)
	})
	if err != nil {
		return nil, err
	}

	return NewDense(p, locs, custs, dist)
}

// ParseDistances reads "loc cust distance" lines into a table indexed like
// locs × custs. Every pair must appear exactly once.
func ParseDistances(r io.Reader, locs []Location, custs []Customer) ([][]float64, error) {
	li := make(map[int]int, len(locs))
	for i, l := range locs {
		li[l.ID] = i
	}
	ci := make(map[int]int, len(custs))
	for j, c := range custs {
		ci[c.ID] = j
	}

	dist := make([][]float64, len(locs))
	seen := make([][]bool, len(locs))
	for i := range dist {
		dist[i] = make([]float64, len(custs))
		seen[i] = make([]bool, len(custs))
	}

	filled := 0
	err := scanLines(r, func(line int, fields []string) error {
		if len(fields) != 3 {
			return fmt.Errorf("line %d: want 3 fields, got %d: %w", line, len(fields), ErrSyntax)
		}
		loc, err := atoi(line, fields[0])
		if err != nil {
			return err
		}
		cust, err := atoi(line, fields[1])
		if err != nil {
			return err
		}
		x, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("line %d: %q: %w", line, fields[2], ErrSyntax)
		}
		i, ok := li[loc]
		if !ok {
			return fmt.Errorf("line %d: location %d: %w", line, loc, ErrUnknownID)
		}
		j, ok := ci[cust]
		if !ok {
			return fmt.Errorf("line %d: customer %d: %w", line, cust, ErrUnknownID)
		}
		if seen[i][j] {
			return fmt.Errorf("line %d: pair (%d,%d): %w", line, loc, cust, ErrDuplicateID)
		}
		seen[i][j] = true
		dist[i][j] = x
		filled++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if want := len(locs) * len(custs); filled != want {
		return nil, fmt.Errorf("%d of %d distance pairs given: %w", filled, want, ErrDimensionMismatch)
	}

	return dist, nil
}

// ParseCustomers reads "cust demand" lines.
func ParseCustomers(r io.Reader) ([]Customer, error) {
	var out []Customer
	err := scanLines(r, func(line int, fields []string) error {
		if len(fields) != 2 {
			return fmt.Errorf("line %d: want 2 fields, got %d: %w", line, len(fields), ErrSyntax)
		}
		id, err := atoi(line, fields[0])
		if err != nil {
			return err
		}
		dem, err := atoi(line, fields[1])
		if err != nil {
			return err
		}
		out = append(out, Customer{ID: id, Demand: dem})
		return nil
	})
	return out, err
}

// ParseLocations reads "loc capacity [subarea]" lines.
func ParseLocations(r io.Reader) ([]Location, error) {
	var out []Location
	err := scanLines(r, func(line int, fields []string) error {
		if len(fields) != 2 && len(fields) != 3 {
			return fmt.Errorf("line %d: want 2 or 3 fields, got %d: %w", line, len(fields), ErrSyntax)
		}
		id, err := atoi(line, fields[0])
		if err != nil {
			return err
		}
		cp, err := atoi(line, fields[1])
		if err != nil {
			return err
		}
		l := Location{ID: id, Capacity: cp}
		if len(fields) == 3 {
			l.Subarea = fields[2]
		}
		out = append(out, l)
		return nil
	})
	return out, err
}

func openAndParse[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	fh, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("instance: %w", err)
	}
	defer fh.Close()

	v, err := parse(fh)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func scanLines(r io.Reader, fn func(line int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if k := strings.IndexByte(text, '#'); k >= 0 {
			text = text[:k]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	return sc.Err()
}

func atoi(line int, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %d: %q: %w", line, s, ErrSyntax)
	}
	return v, nil
}
