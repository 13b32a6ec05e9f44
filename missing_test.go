package pspp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMissingValueSpecDiscreteList(t *testing.T) {
	mv, err := ParseMissingValueSpec("1, 2, 3")
	require.NoError(t, err)
	require.Len(t, mv.Discrete, 3)
	assert.True(t, mv.Contains(NewNumericValue(2)))
	assert.False(t, mv.HasRange)
}

func TestParseMissingValueSpecTooManyDiscreteValues(t *testing.T) {
	_, err := ParseMissingValueSpec("1, 2, 3, 4")
	assert.Error(t, err)
}

func TestParseMissingValueSpecClosedRange(t *testing.T) {
	mv, err := ParseMissingValueSpec("1 THRU 5")
	require.NoError(t, err)
	assert.True(t, mv.HasRange)
	assert.Equal(t, 1.0, mv.RangeLow)
	assert.Equal(t, 5.0, mv.RangeHigh)
	assert.True(t, mv.Contains(NewNumericValue(3)))
}

func TestParseMissingValueSpecLowestThru(t *testing.T) {
	mv, err := ParseMissingValueSpec("LOWEST THRU 5")
	require.NoError(t, err)
	assert.Equal(t, Lowest, mv.RangeLow)
	assert.Equal(t, 5.0, mv.RangeHigh)
}

func TestParseMissingValueSpecThruHighest(t *testing.T) {
	mv, err := ParseMissingValueSpec("1 THRU HIGHEST")
	require.NoError(t, err)
	assert.Equal(t, 1.0, mv.RangeLow)
	assert.Equal(t, Highest, mv.RangeHigh)
}

func TestParseMissingValueSpecRejectsSecondRange(t *testing.T) {
	_, err := ParseMissingValueSpec("1 THRU 5, 6 THRU 9")
	assert.Error(t, err)
}

func TestParseMissingValueSpecRejectsMalformedNumber(t *testing.T) {
	_, err := ParseMissingValueSpec("abc")
	assert.Error(t, err)
}

func TestParseMissingValueSpecMixedDiscreteAndRange(t *testing.T) {
	mv, err := ParseMissingValueSpec("99, 1 THRU 5")
	require.NoError(t, err)
	require.Len(t, mv.Discrete, 1)
	assert.True(t, mv.HasRange)
}
