package pspp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComparatorAscending(t *testing.T) {
	d := NewDictionary()
	age, _ := d.AddVar("age", 0)

	c1 := NewCase(d.NextValueIndex())
	c1.Set(age, NewNumericValue(30))
	c2 := NewCase(d.NextValueIndex())
	c2.Set(age, NewNumericValue(20))

	cmp := NewComparator(age)
	assert.Equal(t, 1, cmp.Compare(c1, c2))
	assert.Equal(t, -1, cmp.Compare(c2, c1))
	assert.Equal(t, 0, cmp.Compare(c1, c1))
}

func TestComparatorDescending(t *testing.T) {
	d := NewDictionary()
	age, _ := d.AddVar("age", 0)

	c1 := NewCase(d.NextValueIndex())
	c1.Set(age, NewNumericValue(30))
	c2 := NewCase(d.NextValueIndex())
	c2.Set(age, NewNumericValue(20))

	cmp := &Comparator{Keys: []SortKey{{Var: age, Descending: true}}}
	assert.Equal(t, -1, cmp.Compare(c1, c2))
}

func TestComparatorMultiKeyTiebreak(t *testing.T) {
	d := NewDictionary()
	group, _ := d.AddVar("group", 0)
	name, _ := d.AddVar("name", 8)

	c1 := NewCase(d.NextValueIndex())
	c1.Set(group, NewNumericValue(1))
	c1.Set(name, NewStringValue("bob", 8))

	c2 := NewCase(d.NextValueIndex())
	c2.Set(group, NewNumericValue(1))
	c2.Set(name, NewStringValue("ann", 8))

	cmp := NewComparator(group, name)
	assert.Equal(t, 1, cmp.Compare(c1, c2), "same group, names should break the tie")
}

func TestComparatorStrings(t *testing.T) {
	d := NewDictionary()
	name, _ := d.AddVar("name", 8)

	c1 := NewCase(d.NextValueIndex())
	c1.Set(name, NewStringValue("abc", 8))
	c2 := NewCase(d.NextValueIndex())
	c2.Set(name, NewStringValue("abd", 8))

	cmp := NewComparator(name)
	assert.Equal(t, -1, cmp.Compare(c1, c2))
}
