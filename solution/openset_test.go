// SPDX-License-Identifier: MIT

package solution_test

import (
	"testing"

	"github.com/katalvlaran/pmedian/solution"
	"github.com/stretchr/testify/require"
)

func TestOpenSet(t *testing.T) {
	s, err := solution.NewOpenSet([]int{7, 1, 4})
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	require.Equal(t, []int{1, 4, 7}, s.IDs())
	require.Equal(t, 4, s.At(1))
	require.Equal(t, "{1 4 7}", s.String())
	require.True(t, s.Contains(4))
	require.False(t, s.Contains(5))

	other := solution.MustOpenSet(4, 7, 1)
	require.True(t, s.Equal(other))

	_, err = solution.NewOpenSet([]int{1, 2, 1})
	require.ErrorIs(t, err, solution.ErrDuplicateLocation)
	require.Panics(t, func() { solution.MustOpenSet(3, 3) })

	require.Equal(t, "{}", solution.OpenSet{}.String())
}

func TestOpenSet_Swap(t *testing.T) {
	s := solution.MustOpenSet(1, 4, 7)

	next, ok := s.Swap(4, 9)
	require.True(t, ok)
	require.Equal(t, []int{1, 7, 9}, next.IDs())
	require.Equal(t, []int{1, 4, 7}, s.IDs(), "original unchanged")

	next, ok = s.Swap(7, 0)
	require.True(t, ok)
	require.Equal(t, []int{0, 1, 4}, next.IDs())

	_, ok = s.Swap(5, 9)
	require.False(t, ok)
	_, ok = s.Swap(1, 7)
	require.False(t, ok)
}

// TestOpenSet_NewCopiesInput guards against aliasing the caller's slice.
func TestOpenSet_NewCopiesInput(t *testing.T) {
	in := []int{3, 2}
	s, err := solution.NewOpenSet(in)
	require.NoError(t, err)
	in[0] = 99
	require.Equal(t, []int{2, 3}, s.IDs())
}
