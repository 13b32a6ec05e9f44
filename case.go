package pspp

import "sync/atomic"

// caseData is the shared, reference-counted backing store for a Case.
type caseData struct {
	values   []Value
	refCount int32
}

// Case is a reference-counted, copy-on-write fixed-width record (§3, §4.6).
// The zero Case is a "null case" end-of-file marker (Null reports true).
type Case struct {
	data *caseData
}

// NewCase allocates a case with n value slots, all numeric zero.
func NewCase(n int) Case {
	return Case{data: &caseData{values: make([]Value, n), refCount: 1}}
}

// Null reports whether c is the distinguished "no value here" marker.
func (c Case) Null() bool { return c.data == nil }

// ValueCount returns the number of value slots.
func (c Case) ValueCount() int {
	if c.Null() {
		return 0
	}
	return len(c.data.values)
}

// Clone returns a new Case sharing the same backing store, bumping the
// refcount (copy-on-write).
func (c Case) Clone() Case {
	if c.Null() {
		return c
	}
	atomic.AddInt32(&c.data.refCount, 1)
	return Case{data: c.data}
}

// RefCount reports the current share count.
func (c Case) RefCount() int32 {
	if c.Null() {
		return 0
	}
	return atomic.LoadInt32(&c.data.refCount)
}

// Release decrements the refcount; callers that track ownership explicitly
// may use this to free a Case proactively. The zero value is safe to
// ignore if refcounting is left to the garbage collector.
func (c Case) Release() {
	if c.Null() {
		return
	}
	atomic.AddInt32(&c.data.refCount, -1)
}

// unshare makes c's backing store private if it is shared, copying values.
func (c *Case) unshare() {
	if c.Null() {
		return
	}
	if atomic.LoadInt32(&c.data.refCount) <= 1 {
		return
	}
	nv := make([]Value, len(c.data.values))
	copy(nv, c.data.values)
	atomic.AddInt32(&c.data.refCount, -1)
	c.data = &caseData{values: nv, refCount: 1}
}

// Move transfers ownership of c's backing store to the returned Case,
// nullifying c.
func (c *Case) Move() Case {
	m := Case{data: c.data}
	c.data = nil
	return m
}

// At returns the value at the given absolute slot index.
func (c Case) At(idx int) Value {
	return c.data.values[idx]
}

// Num returns the numeric value of variable v (case_num).
func (c Case) Num(v *Variable) float64 {
	return c.data.values[v.CaseIndex].Num
}

// Str returns the string bytes of variable v (case_str).
func (c Case) Str(v *Variable) []byte {
	return c.data.values[v.CaseIndex].Str
}

// Data returns the raw Value for variable v (case_data).
func (c Case) Data(v *Variable) Value {
	return c.data.values[v.CaseIndex]
}

// SetAt writes a value at an absolute slot index, triggering
// copy-on-write if the backing store is shared.
func (c *Case) SetAt(idx int, v Value) {
	c.unshare()
	c.data.values[idx] = v
}

// Set writes the value for variable v into c, triggering copy-on-write if
// necessary.
func (c *Case) Set(v *Variable, val Value) {
	c.SetAt(v.CaseIndex, val)
}

// CopyFrom copies cnt values from src starting at srcOfs into dst starting
// at dstOfs, triggering a private copy of dst if it is shared
// (case_copy).
func (dst *Case) CopyFrom(dstOfs int, src Case, srcOfs, cnt int) {
	dst.unshare()
	copy(dst.data.values[dstOfs:dstOfs+cnt], src.data.values[srcOfs:srcOfs+cnt])
}

// Resize grows or shrinks the case to n value slots, preserving existing
// values (and copy-on-write semantics).
func (c *Case) Resize(n int) {
	c.unshare()
	if n == len(c.data.values) {
		return
	}
	nv := make([]Value, n)
	copy(nv, c.data.values)
	c.data.values = nv
}

// Values returns the full backing slice; callers must not retain it across
// a later mutating call on this or any cloned Case.
func (c Case) Values() []Value {
	if c.Null() {
		return nil
	}
	return c.data.values
}
