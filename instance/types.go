// SPDX-License-Identifier: MIT

package instance

import "errors"

// Sentinel errors returned by NewDense and Load. Match them with errors.Is;
// loaders wrap them with file/line context.
var (
	// ErrNoLocations is returned when the candidate location list is empty.
	ErrNoLocations = errors.New("instance: no candidate locations")

	// ErrNoCustomers is returned when the customer list is empty.
	ErrNoCustomers = errors.New("instance: no customers")

	// ErrBadP is returned when p is not in [1, len(locations)].
	ErrBadP = errors.New("instance: p out of range")

	// ErrDimensionMismatch is returned when the distance table does not have
	// one row per location and one column per customer.
	ErrDimensionMismatch = errors.New("instance: dimension mismatch")

	// ErrNegative is returned for a negative capacity, demand or distance.
	ErrNegative = errors.New("instance: negative value")

	// ErrNaNInf is returned for a NaN or infinite distance.
	ErrNaNInf = errors.New("instance: NaN or Inf distance")

	// ErrDuplicateID is returned when a location or customer ID repeats.
	ErrDuplicateID = errors.New("instance: duplicate id")

	// ErrUnknownID is returned by Load when a file references an ID that the
	// other files never declared.
	ErrUnknownID = errors.New("instance: unknown id")
)

// Instance is the read-only view of a problem consumed by the solvers.
//
// Contracts:
//   - Locations and Customers return the IDs in a fixed order; callers may rely
//     on that order being identical between calls.
//   - Capacity, Demand and distances are non-negative.
//   - Passing an unknown ID to any lookup panics.
type Instance interface {
	// Locations returns the candidate location IDs.
	Locations() []int
	// Customers returns the customer IDs.
	Customers() []int
	// P is the number of locations to open.
	P() int
	// Capacity of a location.
	Capacity(loc int) int
	// Demand of a customer.
	Demand(cust int) int
	// TotalDemand is the sum of all customer demands.
	TotalDemand() int
	// RealDistance is the plain distance between a location and a customer.
	RealDistance(loc, cust int) float64
	// WeightedDistance is Demand(cust) × RealDistance(loc, cust).
	WeightedDistance(loc, cust int) float64
}

// SubareaLookup is implemented by instances that tag locations with a spatial
// subarea. The cover-mode perturbation in package vns requires it.
type SubareaLookup interface {
	// Subarea returns the tag of loc and whether loc carries one.
	Subarea(loc int) (string, bool)
}

// Location describes one candidate facility.
type Location struct {
	ID       int
	Capacity int
	Subarea  string // optional; empty means untagged
}

// Customer describes one demand point.
type Customer struct {
	ID     int
	Demand int
}
