// Package schema compares two Dictionaries and reports the variable-level
// differences between them — added, removed, or modified columns —
// adapted from teacher's schema/compare.go (SchemaComparer's table/
// column/index/constraint diff), collapsed to the single level of
// structure a Dictionary has (no indexes or constraints, just typed
// variables).
package schema

import (
	"fmt"

	"github.com/mstgnz/pspp"
)

// ChangeType classifies one Difference.
type ChangeType string

const (
	Added    ChangeType = "add"
	Removed  ChangeType = "remove"
	Modified ChangeType = "modify"
)

// Difference describes one variable-level change between a source and
// target Dictionary.
type Difference struct {
	VarName     string
	Change      ChangeType
	Source      *pspp.Variable
	Target      *pspp.Variable
	Description string
}

// Diff compares source against target and reports every added,
// removed, or modified variable, in source-then-target-only order
// (mirroring teacher's compareColumns two-pass walk).
func Diff(source, target *pspp.Dictionary) []Difference {
	var diffs []Difference

	seen := make(map[string]bool, source.Count())
	for _, sv := range source.Vars() {
		seen[sv.Name()] = true
		tv, ok := target.Lookup(sv.Name())
		if !ok {
			diffs = append(diffs, Difference{
				VarName: sv.Name(), Change: Removed, Source: sv,
				Description: fmt.Sprintf("variable %s is not present in target", sv.Name()),
			})
			continue
		}
		if !variablesEqual(sv, tv) {
			diffs = append(diffs, Difference{
				VarName: sv.Name(), Change: Modified, Source: sv, Target: tv,
				Description: fmt.Sprintf("variable %s differs between source and target", sv.Name()),
			})
		}
	}
	for _, tv := range target.Vars() {
		if seen[tv.Name()] {
			continue
		}
		diffs = append(diffs, Difference{
			VarName: tv.Name(), Change: Added, Target: tv,
			Description: fmt.Sprintf("variable %s is new in target", tv.Name()),
		})
	}
	return diffs
}

// variablesEqual reports whether two variables have the same
// observable schema: width, print/write formats, and label. Value
// labels and missing-value declarations are intentionally excluded —
// those are data-dictionary annotations, not structural type changes.
func variablesEqual(a, b *pspp.Variable) bool {
	return a.Width == b.Width &&
		a.PrintFormat == b.PrintFormat &&
		a.WriteFormat == b.WriteFormat &&
		a.Label == b.Label
}
