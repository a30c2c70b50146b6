package util

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	s := Stack[int]{}
	_, ok := s.Pop()
	assert.False(t, ok)

	for v := range Reverse([]int{1, 2, 3}) {
		s.Push(v)
	}
	assert.Equal(t, 3, s.Len())

	var popped []int
	for {
		v, ok := s.Pop()
		if !ok {
			break
		}
		popped = append(popped, v)
	}
	assert.Equal(t, []int{1, 2, 3}, popped)
}

func TestReverseStops(t *testing.T) {
	assert.Equal(t, []int{3, 2, 1}, slices.Collect(Reverse([]int{1, 2, 3})))
	for v := range Reverse([]int{1, 2, 3}) {
		assert.Equal(t, 3, v)
		break
	}
	assert.Empty(t, slices.Collect(Reverse[int](nil)))
}
