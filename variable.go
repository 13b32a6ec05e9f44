package pspp

import (
	"strings"

	"github.com/mstgnz/pspp/format"
)

// Measure classifies a variable's level of measurement.
type Measure int

const (
	MeasureNominal Measure = iota + 1
	MeasureOrdinal
	MeasureScale
)

// Alignment controls how a variable's formatted values are justified for
// display.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCentre
)

// MissingValues describes up to three discrete missing values and/or one
// closed range (with an open end expressed via pspp.Lowest/pspp.Highest).
type MissingValues struct {
	Discrete   []Value
	HasRange   bool
	RangeLow   float64
	RangeHigh  float64
	RangeIsStr bool // ranges only apply to numeric variables; kept for symmetry
}

// Contains reports whether v is one of the discrete missing values or
// falls within the missing range.
func (m MissingValues) Contains(v Value) bool {
	for _, d := range m.Discrete {
		if d.Equal(v) {
			return true
		}
	}
	if m.HasRange && !v.IsText {
		lo, hi := m.RangeLow, m.RangeHigh
		if lo == Lowest {
			return v.Num <= hi
		}
		if hi == Highest {
			return v.Num >= lo
		}
		return v.Num >= lo && v.Num <= hi
	}
	return false
}

// Empty reports whether no discrete values or range has been set.
func (m MissingValues) Empty() bool {
	return len(m.Discrete) == 0 && !m.HasRange
}

// Variable describes one column of a Dictionary: its name, storage width,
// formats, labels, and other per-column metadata (§3).
type Variable struct {
	name      string // case-preserving; uniqueness is case-insensitive
	shortName string // <= 8 bytes, assigned for SAV compatibility

	Width int // 0 = numeric; N>0 = string of width N

	PrintFormat format.Spec
	WriteFormat format.Spec

	Label string

	// ValueLabels maps an encoded value (numbers as %g, strings as their
	// raw bytes) to a description. Keys respect Width for string vars.
	ValueLabels map[string]string

	Missing MissingValues

	Measure   Measure
	DispWidth int
	Alignment Alignment

	CaseIndex int // slot offset within a Case
	DictIndex int // position within the owning Dictionary

	// Aux is an opaque per-variable scratch slot used by procedures built
	// on top of the data layer; AuxDestroy is invoked (if non-nil) when
	// the variable is deleted from its dictionary.
	Aux        any
	AuxDestroy func(any)
}

// NewVariable constructs a Variable with sane defaults; it is not attached
// to any Dictionary until added via Dictionary.AddVar.
func NewVariable(name string, width int) *Variable {
	v := &Variable{
		name:      name,
		Width:     width,
		Measure:   MeasureNominal,
		Alignment: AlignRight,
		DispWidth: 8,
	}
	if width > 0 {
		v.Alignment = AlignLeft
		v.PrintFormat = format.Spec{Type: format.A, Width: width}
		v.WriteFormat = v.PrintFormat
	} else {
		v.PrintFormat = format.Spec{Type: format.F, Width: 8, Decimals: 2}
		v.WriteFormat = v.PrintFormat
	}
	return v
}

// Name returns the variable's display name.
func (v *Variable) Name() string { return v.name }

// ShortName returns the <=8-byte uppercase name assigned by
// Dictionary.AssignShortNames, or "" if not yet assigned.
func (v *Variable) ShortName() string { return v.shortName }

// IsNumeric reports whether the variable stores numbers.
func (v *Variable) IsNumeric() bool { return v.Width == 0 }

// Slots returns the number of 8-byte storage slots the variable occupies
// in a Case: 1 for numeric, ceil(Width/8) for string.
func (v *Variable) Slots() int {
	if v.Width == 0 {
		return 1
	}
	return (v.Width + 7) / 8
}

// System reports whether the variable's name begins with '$'.
func (v *Variable) System() bool { return strings.HasPrefix(v.name, "$") }

// Scratch reports whether the variable's name begins with '#'. Scratch
// variables are dropped on compaction and excluded from SAV/POR output.
func (v *Variable) Scratch() bool { return strings.HasPrefix(v.name, "#") }

// Clone deep-copies the variable (used by Dictionary.Clone).
func (v *Variable) Clone() *Variable {
	c := *v
	c.ValueLabels = make(map[string]string, len(v.ValueLabels))
	for k, val := range v.ValueLabels {
		c.ValueLabels[k] = val
	}
	c.Missing.Discrete = append([]Value(nil), v.Missing.Discrete...)
	c.Aux = nil
	c.AuxDestroy = nil
	return &c
}
