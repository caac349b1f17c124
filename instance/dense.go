// SPDX-License-Identifier: MIT

package instance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dense is an in-memory Instance backed by a row-major |L|×|C| distance table
// (row = location, column = customer).
//
// Complexity quicksheet:
//   - NewDense: O(|L|·|C|) validation + copy.
//   - Capacity/Demand/RealDistance/WeightedDistance: O(1) (one map lookup per ID).
type Dense struct {
	p int

	locIDs  []int
	custIDs []int
	locIdx  map[int]int
	custIdx map[int]int

	capacity []int
	demand   []int
	subarea  []string

	totalDemand int
	dist        *mat.Dense
}

// Compile-time assertions.
var (
	_ Instance      = (*Dense)(nil)
	_ SubareaLookup = (*Dense)(nil)
)

// NewDense validates its inputs and builds a Dense instance.
// dist[i][j] is the distance between locs[i] and custs[j].
//
// Errors: ErrBadP, ErrNoLocations, ErrNoCustomers, ErrDimensionMismatch,
// ErrNegative, ErrNaNInf, ErrDuplicateID (wrapped with the offending position).
func NewDense(p int, locs []Location, custs []Customer, dist [][]float64) (*Dense, error) {
	if len(locs) == 0 {
		return nil, ErrNoLocations
	}
	if len(custs) == 0 {
		return nil, ErrNoCustomers
	}
	if p < 1 || p > len(locs) {
		return nil, fmt.Errorf("p=%d with %d locations: %w", p, len(locs), ErrBadP)
	}
	if len(dist) != len(locs) {
		return nil, fmt.Errorf("%d distance rows for %d locations: %w", len(dist), len(locs), ErrDimensionMismatch)
	}

	d := &Dense{
		p:        p,
		locIDs:   make([]int, len(locs)),
		custIDs:  make([]int, len(custs)),
		locIdx:   make(map[int]int, len(locs)),
		custIdx:  make(map[int]int, len(custs)),
		capacity: make([]int, len(locs)),
		demand:   make([]int, len(custs)),
		subarea:  make([]string, len(locs)),
	}

	for i, l := range locs {
		if _, dup := d.locIdx[l.ID]; dup {
			return nil, fmt.Errorf("location %d: %w", l.ID, ErrDuplicateID)
		}
		if l.Capacity < 0 {
			return nil, fmt.Errorf("capacity of location %d: %w", l.ID, ErrNegative)
		}
		d.locIdx[l.ID] = i
		d.locIDs[i] = l.ID
		d.capacity[i] = l.Capacity
		d.subarea[i] = l.Subarea
	}
	for j, c := range custs {
		if _, dup := d.custIdx[c.ID]; dup {
			return nil, fmt.Errorf("customer %d: %w", c.ID, ErrDuplicateID)
		}
		if c.Demand < 0 {
			return nil, fmt.Errorf("demand of customer %d: %w", c.ID, ErrNegative)
		}
		d.custIdx[c.ID] = j
		d.custIDs[j] = c.ID
		d.demand[j] = c.Demand
		d.totalDemand += c.Demand
	}

	// Flatten into the gonum buffer, validating each cell on the way.
	cols := len(custs)
	buf := make([]float64, len(locs)*cols)
	for i, row := range dist {
		if len(row) != cols {
			return nil, fmt.Errorf("distance row %d has %d columns, want %d: %w", i, len(row), cols, ErrDimensionMismatch)
		}
		for j, x := range row {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("dist(%d,%d): %w", d.locIDs[i], d.custIDs[j], ErrNaNInf)
			}
			if x < 0 {
				return nil, fmt.Errorf("dist(%d,%d): %w", d.locIDs[i], d.custIDs[j], ErrNegative)
			}
			buf[i*cols+j] = x
		}
	}
	d.dist = mat.NewDense(len(locs), cols, buf)

	return d, nil
}

// Locations returns a copy of the location IDs in construction order.
func (d *Dense) Locations() []int { return append([]int(nil), d.locIDs...) }

// Customers returns a copy of the customer IDs in construction order.
func (d *Dense) Customers() []int { return append([]int(nil), d.custIDs...) }

// P returns the number of locations to open.
func (d *Dense) P() int { return d.p }

// TotalDemand returns Σ demand.
func (d *Dense) TotalDemand() int { return d.totalDemand }

// Capacity returns the capacity of loc.
func (d *Dense) Capacity(loc int) int { return d.capacity[d.loc(loc)] }

// Demand returns the demand of cust.
func (d *Dense) Demand(cust int) int { return d.demand[d.cust(cust)] }

// RealDistance returns dist(loc, cust).
func (d *Dense) RealDistance(loc, cust int) float64 {
	return d.dist.At(d.loc(loc), d.cust(cust))
}

// WeightedDistance returns demand(cust) × dist(loc, cust).
func (d *Dense) WeightedDistance(loc, cust int) float64 {
	j := d.cust(cust)
	return float64(d.demand[j]) * d.dist.At(d.loc(loc), j)
}

// Subarea returns the subarea tag of loc, if any.
func (d *Dense) Subarea(loc int) (string, bool) {
	s := d.subarea[d.loc(loc)]
	return s, s != ""
}

// Distances exposes the underlying table as a read-only gonum matrix.
func (d *Dense) Distances() mat.Matrix { return d.dist }

func (d *Dense) loc(id int) int {
	i, ok := d.locIdx[id]
	if !ok {
		panic(fmt.Sprintf("instance: unknown location %d", id))
	}
	return i
}

func (d *Dense) cust(id int) int {
	j, ok := d.custIdx[id]
	if !ok {
		panic(fmt.Sprintf("instance: unknown customer %d", id))
	}
	return j
}
