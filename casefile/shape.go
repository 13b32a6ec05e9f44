package casefile

import "github.com/mstgnz/pspp"

// Shape describes the fixed per-slot layout of every case in a Casefile:
// one entry per value slot, 0 for numeric, N>0 for a string of N bytes.
// Because every case in a casefile shares one dictionary, the on-disk
// record size implied by a Shape is constant, which is what lets the disk
// buffer be sized to an exact multiple of the case width (§4.7).
type Shape struct {
	Widths []int
}

// NewShapeFromDictionary derives a Shape from a dictionary's variables,
// indexed by each variable's CaseIndex.
func NewShapeFromDictionary(d *pspp.Dictionary) Shape {
	widths := make([]int, d.NextValueIndex())
	for _, v := range d.Vars() {
		widths[v.CaseIndex] = v.Width
	}
	return Shape{Widths: widths}
}

// RecordSize returns the fixed number of bytes one serialized case
// occupies on disk under this shape.
func (s Shape) RecordSize() int {
	n := 0
	for _, w := range s.Widths {
		if w == 0 {
			n += 8 // float64
		} else {
			n += w
		}
	}
	return n
}

// ValueCount returns the number of value slots per case.
func (s Shape) ValueCount() int { return len(s.Widths) }
