package pspp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCaseIsNotNull(t *testing.T) {
	c := NewCase(3)
	assert.False(t, c.Null())
	assert.Equal(t, 3, c.ValueCount())
}

func TestZeroCaseIsNull(t *testing.T) {
	var c Case
	assert.True(t, c.Null())
}

func TestCaseSetAndAt(t *testing.T) {
	c := NewCase(2)
	c.SetAt(0, NewNumericValue(42))
	c.SetAt(1, NewStringValue("hi", 4))

	assert.Equal(t, 42.0, c.At(0).Num)
	assert.Equal(t, "hi  ", string(c.At(1).Str))
}

func TestCaseSetAndGetByVariable(t *testing.T) {
	v := NewVariable("x", 0)
	v.CaseIndex = 0
	c := NewCase(1)
	c.Set(v, NewNumericValue(7))
	assert.Equal(t, 7.0, c.Num(v))
}

func TestCaseCloneCopyOnWrite(t *testing.T) {
	c := NewCase(1)
	c.SetAt(0, NewNumericValue(1))

	clone := c.Clone()
	assert.Equal(t, int32(2), c.RefCount())

	clone.SetAt(0, NewNumericValue(2))

	assert.Equal(t, 1.0, c.At(0).Num, "mutating a clone must not affect the original")
	assert.Equal(t, 2.0, clone.At(0).Num)
}

func TestCaseMoveNullifiesSource(t *testing.T) {
	c := NewCase(1)
	moved := c.Move()
	assert.True(t, c.Null())
	assert.False(t, moved.Null())
}

func TestCaseCopyFrom(t *testing.T) {
	src := NewCase(3)
	src.SetAt(0, NewNumericValue(1))
	src.SetAt(1, NewNumericValue(2))
	src.SetAt(2, NewNumericValue(3))

	dst := NewCase(3)
	dst.CopyFrom(1, src, 0, 2)

	assert.Equal(t, 0.0, dst.At(0).Num)
	assert.Equal(t, 1.0, dst.At(1).Num)
	assert.Equal(t, 2.0, dst.At(2).Num)
}

func TestCaseResize(t *testing.T) {
	c := NewCase(2)
	c.SetAt(0, NewNumericValue(5))
	c.Resize(4)
	assert.Equal(t, 4, c.ValueCount())
	assert.Equal(t, 5.0, c.At(0).Num)
}
