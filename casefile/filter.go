package casefile

import "github.com/mstgnz/pspp"

// MissingClass selects which kinds of missing value cause SkipCase to
// report a case should be dropped (grounded on original_source
// src/data/casefilter.c).
type MissingClass int

const (
	// MissingNone never skips a case.
	MissingNone MissingClass = iota
	// MissingUser skips cases with a user-missing value on any included
	// variable.
	MissingUser
	// MissingSystem skips cases with the system-missing value on any
	// included numeric variable.
	MissingSystem
	// MissingAny skips on either user- or system-missing.
	MissingAny
)

// CaseFilter decides whether a case should be excluded from a procedure
// based on the missing-value status of a chosen set of variables.
type CaseFilter struct {
	Vars  []*pspp.Variable
	Class MissingClass
}

// NewCaseFilter builds a CaseFilter over vars with the given class.
func NewCaseFilter(class MissingClass, vars ...*pspp.Variable) *CaseFilter {
	return &CaseFilter{Vars: vars, Class: class}
}

// SkipCase reports whether c should be excluded under the filter's class.
func (f *CaseFilter) SkipCase(c pspp.Case) bool {
	if f.Class == MissingNone {
		return false
	}
	for _, v := range f.Vars {
		val := c.Data(v)
		if f.Class == MissingSystem || f.Class == MissingAny {
			if v.IsNumeric() && val.IsSysmis() {
				return true
			}
		}
		if f.Class == MissingUser || f.Class == MissingAny {
			if v.Missing.Contains(val) {
				return true
			}
		}
	}
	return false
}
