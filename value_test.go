package pspp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNumericValue(t *testing.T) {
	v := NewNumericValue(3.5)
	assert.False(t, v.IsText)
	assert.Equal(t, 3.5, v.Num)
}

func TestNewStringValuePadsWithSpaces(t *testing.T) {
	v := NewStringValue("ab", 5)
	assert.True(t, v.IsText)
	assert.Equal(t, "ab   ", string(v.Str))
	assert.Equal(t, 5, v.Width)
}

func TestNewStringValueTruncatesOverlongInput(t *testing.T) {
	v := NewStringValue("abcdef", 3)
	assert.Equal(t, "abc", string(v.Str))
}

func TestValueIsSysmis(t *testing.T) {
	assert.True(t, NewNumericValue(Sysmis).IsSysmis())
	assert.False(t, NewNumericValue(0).IsSysmis())
	assert.False(t, NewStringValue("x", 1).IsSysmis())
}

func TestValueEqual(t *testing.T) {
	a := NewNumericValue(1.5)
	b := NewNumericValue(1.5)
	c := NewNumericValue(2.5)
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	s1 := NewStringValue("hi", 4)
	s2 := NewStringValue("hi", 4)
	s3 := NewStringValue("bye", 4)
	assert.True(t, s1.Equal(s2))
	assert.False(t, s1.Equal(s3))
	assert.False(t, a.Equal(s1))
}

func TestValueCloneIsIndependent(t *testing.T) {
	v := NewStringValue("hi", 4)
	clone := v.Clone()
	clone.Str[0] = 'X'
	assert.NotEqual(t, string(v.Str), string(clone.Str))
}
