package slices

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	assert.Nil(t, Map([]int(nil), strconv.Itoa))
	assert.Equal(t, []string{"1", "2", "3"}, Map([]int{1, 2, 3}, strconv.Itoa))
}

func TestIndicesFunc(t *testing.T) {
	isEven := func(i int) bool { return i%2 == 0 }
	assert.Equal(t, []int{1, 3}, IndicesFunc([]int{1, 2, 3, 4}, isEven))
	assert.Nil(t, IndicesFunc([]int{1, 3}, isEven))
}

func TestCountFunc(t *testing.T) {
	assert.Equal(t, 2, CountFunc([]string{"a", "", "b"}, func(s string) bool { return s != "" }))
	assert.Equal(t, 0, CountFunc([]string{}, func(s string) bool { return true }))
}

func TestAllFunc(t *testing.T) {
	positive := func(i int) bool { return i > 0 }
	assert.True(t, AllFunc([]int{}, positive))
	assert.True(t, AllFunc([]int{1, 2}, positive))
	assert.False(t, AllFunc([]int{1, 0}, positive))
}

func TestFlatten(t *testing.T) {
	tests := map[string]struct {
		input    [][]int
		expected []int
	}{
		"nil":         {input: nil, expected: nil},
		"empty":       {input: [][]int{}, expected: []int{}},
		"single":      {input: [][]int{{1, 2}}, expected: []int{1, 2}},
		"with gaps":   {input: [][]int{{1}, {}, {2, 3}}, expected: []int{1, 2, 3}},
		"all empties": {input: [][]int{{}, {}}, expected: []int{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Flatten(tc.input))
		})
	}
}

func TestRepeat(t *testing.T) {
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, Repeat(3, 0.5))
	assert.Equal(t, []float64{}, Repeat(0, 0.5))
}
