package pspp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVariableNumericDefaults(t *testing.T) {
	v := NewVariable("age", 0)
	assert.True(t, v.IsNumeric())
	assert.Equal(t, AlignRight, v.Alignment)
	assert.Equal(t, "age", v.Name())
	assert.Equal(t, 1, v.Slots())
}

func TestNewVariableStringDefaults(t *testing.T) {
	v := NewVariable("name", 10)
	assert.False(t, v.IsNumeric())
	assert.Equal(t, AlignLeft, v.Alignment)
	assert.Equal(t, 10, v.Width)
}

func TestVariableSlotsCeilsToEightByteUnits(t *testing.T) {
	assert.Equal(t, 1, NewVariable("a", 0).Slots())
	assert.Equal(t, 1, NewVariable("b", 3).Slots())
	assert.Equal(t, 1, NewVariable("c", 8).Slots())
	assert.Equal(t, 2, NewVariable("d", 9).Slots())
	assert.Equal(t, 3, NewVariable("e", 17).Slots())
}

func TestVariableSystemAndScratch(t *testing.T) {
	assert.True(t, NewVariable("$sys", 0).System())
	assert.False(t, NewVariable("ordinary", 0).System())
	assert.True(t, NewVariable("#scratch", 0).Scratch())
	assert.False(t, NewVariable("ordinary", 0).Scratch())
}

func TestVariableClone(t *testing.T) {
	v := NewVariable("score", 0)
	v.Label = "Test Score"
	v.ValueLabels = map[string]string{"1": "low"}

	clone := v.Clone()
	clone.Label = "changed"
	clone.ValueLabels["1"] = "mutated"

	assert.Equal(t, "Test Score", v.Label)
	assert.Equal(t, "low", v.ValueLabels["1"], "cloning must deep-copy value labels")
}

func TestMissingValuesContainsDiscrete(t *testing.T) {
	mv := MissingValues{Discrete: []Value{NewNumericValue(8), NewNumericValue(9)}}
	assert.True(t, mv.Contains(NewNumericValue(8)))
	assert.False(t, mv.Contains(NewNumericValue(7)))
	assert.False(t, mv.Empty())
}

func TestMissingValuesContainsClosedRange(t *testing.T) {
	mv := MissingValues{HasRange: true, RangeLow: 1, RangeHigh: 5}
	assert.True(t, mv.Contains(NewNumericValue(3)))
	assert.False(t, mv.Contains(NewNumericValue(6)))
}

func TestMissingValuesContainsOpenEndedRange(t *testing.T) {
	mv := MissingValues{HasRange: true, RangeLow: Lowest, RangeHigh: 0}
	assert.True(t, mv.Contains(NewNumericValue(-1000)))
	assert.False(t, mv.Contains(NewNumericValue(1)))

	mv2 := MissingValues{HasRange: true, RangeLow: 0, RangeHigh: Highest}
	assert.True(t, mv2.Contains(NewNumericValue(1000)))
	assert.False(t, mv2.Contains(NewNumericValue(-1)))
}

func TestMissingValuesEmpty(t *testing.T) {
	assert.True(t, MissingValues{}.Empty())
	assert.False(t, (MissingValues{HasRange: true}).Empty())
}
