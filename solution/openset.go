// SPDX-License-Identifier: MIT

package solution

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// OpenSet is an immutable set of open location IDs kept in ascending order.
// The zero value is the empty set.
type OpenSet struct {
	ids []int
}

// NewOpenSet canonicalizes ids. Duplicates are rejected with ErrDuplicateLocation.
func NewOpenSet(ids []int) (OpenSet, error) {
	s := slices.Clone(ids)
	slices.Sort(s)
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			return OpenSet{}, fmt.Errorf("location %d: %w", s[i], ErrDuplicateLocation)
		}
	}
	return OpenSet{ids: s}, nil
}

// MustOpenSet is NewOpenSet that panics on error.
func MustOpenSet(ids ...int) OpenSet {
	s, err := NewOpenSet(ids)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of open locations.
func (s OpenSet) Len() int { return len(s.ids) }

// Contains reports whether loc is open. O(log p).
func (s OpenSet) Contains(loc int) bool {
	_, ok := slices.BinarySearch(s.ids, loc)
	return ok
}

// IDs returns a copy of the open locations in ascending order.
func (s OpenSet) IDs() []int { return slices.Clone(s.ids) }

// At returns the i-th smallest open location.
func (s OpenSet) At(i int) int { return s.ids[i] }

// Swap returns the set with out replaced by in. ok is false (and s is returned
// unchanged) when out is not open or in already is.
func (s OpenSet) Swap(out, in int) (OpenSet, bool) {
	i, found := slices.BinarySearch(s.ids, out)
	if !found || s.Contains(in) {
		return s, false
	}
	next := slices.Delete(slices.Clone(s.ids), i, i+1)
	j, _ := slices.BinarySearch(next, in)
	return OpenSet{ids: slices.Insert(next, j, in)}, true
}

// Equal reports whether both sets hold the same locations.
func (s OpenSet) Equal(o OpenSet) bool { return slices.Equal(s.ids, o.ids) }

// String renders the set as "{1 4 7}".
func (s OpenSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range s.ids {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(id))
	}
	b.WriteByte('}')
	return b.String()
}
