// SPDX-License-Identifier: MIT

package report

import (
	"errors"
	"time"
)

// Record is one anytime progress sample.
type Record struct {
	Objective float64
	Iteration int
	CacheSize int
	Elapsed   time.Duration
}

// Sink receives progress records. Sinks are observational: searches log a
// failing Record and carry on.
type Sink interface {
	Record(r Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Record) error

// Record implements Sink.
func (f SinkFunc) Record(r Record) error { return f(r) }

// Discard drops every record.
var Discard Sink = SinkFunc(func(Record) error { return nil })

// Multi fans a record out to every non-nil sink and joins their errors.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return Discard
	case 1:
		return live[0]
	}
	return SinkFunc(func(r Record) error {
		var errs []error
		for _, s := range live {
			if err := s.Record(r); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
