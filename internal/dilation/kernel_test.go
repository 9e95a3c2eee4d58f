package dilation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKernel(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected Kernel
		err      bool
	}{
		"rectangular":  {input: "2x3", expected: Kernel{X: 2, Y: 3}},
		"upper case":   {input: " 4X4 ", expected: Kernel{X: 4, Y: 4}},
		"square":       {input: "3", expected: Kernel{X: 3, Y: 3}},
		"too small":    {input: "1x2", err: true},
		"not a number": {input: "ax2", err: true},
		"three axes":   {input: "2x2x2", err: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			k, err := ParseKernel(tc.input)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, k)
		})
	}
}

func TestParseOperation(t *testing.T) {
	for _, op := range []Operation{Max, Min, Mean} {
		parsed, err := ParseOperation(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, parsed)
	}
	_, err := ParseOperation("median")
	assert.Error(t, err)
}

func TestOperation_DefaultFill(t *testing.T) {
	assert.True(t, math.IsInf(Max.DefaultFill(), -1))
	assert.True(t, math.IsInf(Min.DefaultFill(), 1))
	assert.Equal(t, 0.0, Mean.DefaultFill())
}

func TestKernel_Contains(t *testing.T) {
	k := Kernel{X: 2, Y: 3}
	assert.True(t, k.Contains(Cell{X: 1, Y: 2}))
	assert.False(t, k.Contains(Cell{X: 2, Y: 0}))
	assert.False(t, k.Contains(Cell{X: 0, Y: -1}))
}
