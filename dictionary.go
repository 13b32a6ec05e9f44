package pspp

import (
	"fmt"
	"strings"
)

// DictCallbacks are purely informational notifications fired in mutation
// order; implementations must never re-enter mutation on the same
// Dictionary (§4.5).
type DictCallbacks struct {
	OnVarAdded     func(d *Dictionary, v *Variable)
	OnVarDeleted   func(d *Dictionary, name string, dictIndex int)
	OnVarChanged   func(d *Dictionary, v *Variable)
	OnWeightChanged func(d *Dictionary)
	OnFilterChanged func(d *Dictionary)
	OnSplitChanged  func(d *Dictionary)
}

// Dictionary is an ordered, name-indexed schema of Variables (§3, §4.5).
type Dictionary struct {
	vars      []*Variable
	byName    map[string]int // lowercased name -> index in vars
	nextValue int             // total width in 8-byte slots of one case

	Weight *Variable
	Filter *Variable
	Split  []*Variable

	Label     string
	Documents []string // 80-byte lines, no terminator

	Vectors map[string][]*Variable

	CaseLimit int // 0 = unlimited

	Callbacks DictCallbacks
}

// ErrDuplicateName is returned by AddVar/Rename when a name collides
// case-insensitively with an existing variable.
type ErrDuplicateName struct{ Name string }

func (e ErrDuplicateName) Error() string {
	return fmt.Sprintf("dictionary: duplicate variable name %q", e.Name)
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		byName:  make(map[string]int),
		Vectors: make(map[string][]*Variable),
	}
}

func normName(s string) string { return strings.ToLower(s) }

// AddVar appends a new variable of the given width and returns it.
func (d *Dictionary) AddVar(name string, width int) (*Variable, error) {
	key := normName(name)
	if _, exists := d.byName[key]; exists {
		return nil, ErrDuplicateName{name}
	}
	v := NewVariable(name, width)
	v.CaseIndex = d.nextValue
	v.DictIndex = len(d.vars)
	d.vars = append(d.vars, v)
	d.byName[key] = v.DictIndex
	d.nextValue += v.Slots()
	if d.Callbacks.OnVarAdded != nil {
		d.Callbacks.OnVarAdded(d, v)
	}
	return v, nil
}

// Lookup finds a variable by name, case-insensitively.
func (d *Dictionary) Lookup(name string) (*Variable, bool) {
	idx, ok := d.byName[normName(name)]
	if !ok {
		return nil, false
	}
	return d.vars[idx], true
}

// Vars returns the dictionary's variables in order. The returned slice must
// not be mutated by callers.
func (d *Dictionary) Vars() []*Variable { return d.vars }

// Count returns the number of variables.
func (d *Dictionary) Count() int { return len(d.vars) }

// NextValueIndex returns the total width in 8-byte slots of one case.
func (d *Dictionary) NextValueIndex() int { return d.nextValue }

// reindex recomputes DictIndex/CaseIndex for all variables after a
// structural change (delete/reorder).
func (d *Dictionary) reindex() {
	d.byName = make(map[string]int, len(d.vars))
	ofs := 0
	for i, v := range d.vars {
		v.DictIndex = i
		v.CaseIndex = ofs
		ofs += v.Slots()
		d.byName[normName(v.name)] = i
	}
	d.nextValue = ofs
}

// DeleteVar removes a variable, also removing it from weight/filter/split
// and any vector that references it.
func (d *Dictionary) DeleteVar(name string) error {
	idx, ok := d.byName[normName(name)]
	if !ok {
		return fmt.Errorf("dictionary: no such variable %q", name)
	}
	v := d.vars[idx]
	if d.Weight == v {
		d.Weight = nil
		if d.Callbacks.OnWeightChanged != nil {
			d.Callbacks.OnWeightChanged(d)
		}
	}
	if d.Filter == v {
		d.Filter = nil
		if d.Callbacks.OnFilterChanged != nil {
			d.Callbacks.OnFilterChanged(d)
		}
	}
	changed := false
	newSplit := d.Split[:0:0]
	for _, s := range d.Split {
		if s != v {
			newSplit = append(newSplit, s)
		} else {
			changed = true
		}
	}
	d.Split = newSplit
	if changed && d.Callbacks.OnSplitChanged != nil {
		d.Callbacks.OnSplitChanged(d)
	}
	for vecName, elems := range d.Vectors {
		kept := elems[:0:0]
		for _, e := range elems {
			if e != v {
				kept = append(kept, e)
			}
		}
		d.Vectors[vecName] = kept
	}

	d.vars = append(d.vars[:idx], d.vars[idx+1:]...)
	d.reindex()
	if v.AuxDestroy != nil {
		v.AuxDestroy(v.Aux)
	}
	if d.Callbacks.OnVarDeleted != nil {
		d.Callbacks.OnVarDeleted(d, v.name, idx)
	}
	return nil
}

// ReorderVar moves the variable currently at index `from` to index `to`.
func (d *Dictionary) ReorderVar(from, to int) error {
	if from < 0 || from >= len(d.vars) || to < 0 || to >= len(d.vars) {
		return fmt.Errorf("dictionary: index out of range")
	}
	v := d.vars[from]
	d.vars = append(d.vars[:from], d.vars[from+1:]...)
	d.vars = append(d.vars[:to], append([]*Variable{v}, d.vars[to:]...)...)
	d.reindex()
	return nil
}

// Rename changes a single variable's name.
func (d *Dictionary) Rename(oldName, newName string) error {
	idx, ok := d.byName[normName(oldName)]
	if !ok {
		return fmt.Errorf("dictionary: no such variable %q", oldName)
	}
	newKey := normName(newName)
	if existingIdx, exists := d.byName[newKey]; exists && existingIdx != idx {
		return ErrDuplicateName{newName}
	}
	v := d.vars[idx]
	delete(d.byName, normName(v.name))
	v.name = newName
	d.byName[newKey] = idx
	if d.Callbacks.OnVarChanged != nil {
		d.Callbacks.OnVarChanged(d, v)
	}
	return nil
}

// RenameBatch renames multiple variables atomically: either all renames
// succeed (honoring the fact that renames may "swap" names through a
// temporary state) or none do.
func (d *Dictionary) RenameBatch(pairs map[string]string) error {
	seen := make(map[string]bool, len(pairs))
	for _, newName := range pairs {
		key := normName(newName)
		if seen[key] {
			return ErrDuplicateName{newName}
		}
		seen[key] = true
	}
	// Validate every pair before mutating anything.
	renamed := make(map[string]bool, len(pairs))
	for oldName := range pairs {
		if _, ok := d.byName[normName(oldName)]; !ok {
			return fmt.Errorf("dictionary: no such variable %q", oldName)
		}
		renamed[normName(oldName)] = true
	}
	for _, newName := range pairs {
		key := normName(newName)
		if _, exists := d.byName[key]; exists && !renamed[key] {
			return ErrDuplicateName{newName}
		}
	}
	// Stage into temporary unique names first so a<->b swaps do not
	// collide mid-batch, mirroring dictionary.c's two-phase rename.
	type staged struct {
		v       *Variable
		newName string
	}
	var stagedList []staged
	for oldName, newName := range pairs {
		idx, ok := d.byName[normName(oldName)]
		if !ok {
			return fmt.Errorf("dictionary: no such variable %q", oldName)
		}
		v := d.vars[idx]
		stagedList = append(stagedList, staged{v, newName})
		delete(d.byName, normName(v.name))
		v.name = fmt.Sprintf("#renaming#%d", idx)
	}
	for _, s := range stagedList {
		s.v.name = s.newName
		d.byName[normName(s.newName)] = s.v.DictIndex
	}
	return nil
}

// SetWeight sets the weight variable; it must be numeric and a member of
// this dictionary.
func (d *Dictionary) SetWeight(v *Variable) error {
	if v != nil {
		if !v.IsNumeric() {
			return fmt.Errorf("dictionary: weight variable must be numeric")
		}
		if !d.owns(v) {
			return fmt.Errorf("dictionary: weight variable is not a member")
		}
	}
	d.Weight = v
	if d.Callbacks.OnWeightChanged != nil {
		d.Callbacks.OnWeightChanged(d)
	}
	return nil
}

// SetFilter sets the filter variable; it must be numeric and a member.
func (d *Dictionary) SetFilter(v *Variable) error {
	if v != nil {
		if !v.IsNumeric() {
			return fmt.Errorf("dictionary: filter variable must be numeric")
		}
		if !d.owns(v) {
			return fmt.Errorf("dictionary: filter variable is not a member")
		}
	}
	d.Filter = v
	if d.Callbacks.OnFilterChanged != nil {
		d.Callbacks.OnFilterChanged(d)
	}
	return nil
}

// SetSplit sets the split variable list; all must be members.
func (d *Dictionary) SetSplit(vars []*Variable) error {
	for _, v := range vars {
		if !d.owns(v) {
			return fmt.Errorf("dictionary: split variable is not a member")
		}
	}
	d.Split = append([]*Variable(nil), vars...)
	if d.Callbacks.OnSplitChanged != nil {
		d.Callbacks.OnSplitChanged(d)
	}
	return nil
}

func (d *Dictionary) owns(v *Variable) bool {
	if v.DictIndex < 0 || v.DictIndex >= len(d.vars) {
		return false
	}
	return d.vars[v.DictIndex] == v
}

// AddDocumentLine appends an 80-byte (truncated/space-padded) document
// line.
func (d *Dictionary) AddDocumentLine(line string) {
	if len(line) > 80 {
		line = line[:80]
	}
	for len(line) < 80 {
		line += " "
	}
	d.Documents = append(d.Documents, line)
}

// CreateVector registers a named tuple of variables.
func (d *Dictionary) CreateVector(name string, vars []*Variable) error {
	for _, v := range vars {
		if !d.owns(v) {
			return fmt.Errorf("dictionary: vector element is not a member")
		}
	}
	if d.Vectors == nil {
		d.Vectors = make(map[string][]*Variable)
	}
	d.Vectors[name] = append([]*Variable(nil), vars...)
	return nil
}

// Clone makes a deep copy of the dictionary, including variables (but not
// callbacks, which are never copied).
func (d *Dictionary) Clone() *Dictionary {
	nd := NewDictionary()
	nd.nextValue = d.nextValue
	nd.Label = d.Label
	nd.Documents = append([]string(nil), d.Documents...)
	nd.CaseLimit = d.CaseLimit

	idxByOld := make(map[*Variable]*Variable, len(d.vars))
	for _, v := range d.vars {
		nv := v.Clone()
		nd.vars = append(nd.vars, nv)
		nd.byName[normName(nv.name)] = nv.DictIndex
		idxByOld[v] = nv
	}
	if d.Weight != nil {
		nd.Weight = idxByOld[d.Weight]
	}
	if d.Filter != nil {
		nd.Filter = idxByOld[d.Filter]
	}
	for _, s := range d.Split {
		nd.Split = append(nd.Split, idxByOld[s])
	}
	for name, elems := range d.Vectors {
		var nelems []*Variable
		for _, e := range elems {
			nelems = append(nelems, idxByOld[e])
		}
		nd.Vectors[name] = nelems
	}
	return nd
}

// Clear removes all variables and resets derived state, leaving callbacks
// intact.
func (d *Dictionary) Clear() {
	d.vars = nil
	d.byName = make(map[string]int)
	d.nextValue = 0
	d.Weight = nil
	d.Filter = nil
	d.Split = nil
	d.Documents = nil
	d.Vectors = make(map[string][]*Variable)
}

// CompactRun describes one contiguous run of value slots to copy when
// rebuilding a case after dictionary changes (§4.5 Compactor).
type CompactRun struct {
	SrcIndex int
	DstIndex int
	Count    int
}

// Compactor is a plan produced by Compact() for O(runs) case rebuilding.
type Compactor struct {
	Runs      []CompactRun
	NewValueCount int
}

// Apply rebuilds dst (sized to NewValueCount) from src according to the
// compactor's runs.
func (c *Compactor) Apply(dst, src []Value) {
	for _, r := range c.Runs {
		copy(dst[r.DstIndex:r.DstIndex+r.Count], src[r.SrcIndex:r.SrcIndex+r.Count])
	}
}

// Compact reassigns CaseIndex contiguously, skipping scratch variables,
// and returns a Compactor describing how to rebuild existing cases.
func (d *Dictionary) Compact() *Compactor {
	var runs []CompactRun
	dst := 0
	var runStartSrc, runStartDst, runLen int
	flush := func() {
		if runLen > 0 {
			runs = append(runs, CompactRun{runStartSrc, runStartDst, runLen})
			runLen = 0
		}
	}
	for _, v := range d.vars {
		if v.Scratch() {
			flush()
			continue
		}
		n := v.Slots()
		if runLen > 0 && v.CaseIndex == runStartSrc+runLen && dst == runStartDst+runLen {
			runLen += n
		} else {
			flush()
			runStartSrc, runStartDst, runLen = v.CaseIndex, dst, n
		}
		v.CaseIndex = dst
		dst += n
	}
	flush()

	kept := d.vars[:0:0]
	for _, v := range d.vars {
		if !v.Scratch() {
			kept = append(kept, v)
		}
	}
	d.vars = kept
	d.nextValue = dst
	d.byName = make(map[string]int, len(d.vars))
	for i, v := range d.vars {
		v.DictIndex = i
		d.byName[normName(v.name)] = i
	}
	return &Compactor{Runs: runs, NewValueCount: dst}
}

// AssignShortNames assigns unique <=8-byte uppercase short names, stable
// across runs (§4.5):
//  1. names <= 8 bytes claim themselves verbatim;
//  2. pre-existing non-colliding short names are kept;
//  3. the rest truncate to 8 bytes, disambiguating with _A.._Z, _AA.. on
//     collision.
func (d *Dictionary) AssignShortNames() {
	used := make(map[string]bool)

	for _, v := range d.vars {
		if len(v.name) <= 8 {
			sn := strings.ToUpper(v.name)
			if !used[sn] {
				v.shortName = sn
				used[sn] = true
			}
		}
	}
	// Preserve any already-assigned short names that don't collide.
	for _, v := range d.vars {
		if len(v.name) <= 8 || v.shortName == "" {
			continue
		}
		if used[v.shortName] {
			v.shortName = ""
		} else {
			used[v.shortName] = true
		}
	}

	for _, v := range d.vars {
		if v.shortName != "" {
			continue
		}
		base := strings.ToUpper(v.name)
		if len(base) > 8 {
			base = base[:8]
		}
		if !used[base] {
			v.shortName = base
			used[base] = true
			continue
		}
		v.shortName = disambiguate(base, used)
		used[v.shortName] = true
	}
}

// disambiguate appends _A, _B, ..., _AA, _AB, ... truncating the base
// further as needed so the result stays within 8 bytes.
func disambiguate(base string, used map[string]bool) string {
	for n := 1; ; n++ {
		suffix := "_" + base26(n)
		maxBase := 8 - len(suffix)
		if maxBase < 0 {
			maxBase = 0
		}
		b := base
		if len(b) > maxBase {
			b = b[:maxBase]
		}
		cand := b + suffix
		if !used[cand] {
			return cand
		}
	}
}

// base26 renders n (1-based) as A, B, ..., Z, AA, AB, ... .
func base26(n int) string {
	var s []byte
	for n > 0 {
		n--
		s = append([]byte{byte('A' + n%26)}, s...)
		n /= 26
	}
	return string(s)
}
