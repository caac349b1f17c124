// SPDX-License-Identifier: MIT

// Package instance holds the read-only data of a capacitated p-median problem:
// candidate facility locations with capacities, customers with demands, and the
// location→customer distance table.
//
// The search packages (solution, localsearch, vns) only consume the Instance
// interface; Dense is the in-memory implementation used by the command line tool
// and by tests, and Load builds a Dense from the three plain-text input files.
//
// Lookups are pure. Asking for an ID that is not part of the instance is a
// programming error and panics; everything user-controlled (constructor
// arguments, file contents) is reported through the sentinel errors below.
//
//	locations ──capacity──┐
//	                      ├── dist(loc, cust) ──► weighted = demand × dist
//	customers ──demand────┘
package instance
