package datalist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/format"
)

// RepeatingSpec describes one REPEATING DATA group: STARTS= gives the
// 1-based column where the first occurrence begins, CONTINUED= the
// column where occurrence 2..n resume on following physical records,
// and ID (optional) identifies a field that must match across
// occurrences belonging to the same case. Grounded on original_source
// src/repeating-data.c.
type RepeatingSpec struct {
	StartsCol    int
	ContinuedCol int
	IDField      *FieldSpec // optional; nil if no ID= clause
	OccurFields  []FieldSpec
	RecordWidth  int // physical record length, for CONTINUED= column math
}

// RepeatingReader reads REPEATING DATA cases: one physical case yields a
// fixed or count-driven number of occurrences, each producing one
// pspp.Case built from OccurFields at shifting column offsets.
type RepeatingReader struct {
	r          *bufio.Reader
	spec       RepeatingSpec
	dict       *pspp.Dictionary
	vars       []*pspp.Variable
	countField *FieldSpec // optional variable in the outer record giving occurrence count
	countVar   *pspp.Variable
	fixedCount int
}

// NewRepeatingReader builds a RepeatingReader. If countField is non-nil,
// the outer record carries the occurrence count for REPEATING DATA (the
// usual case); otherwise fixedCount occurrences are read from every
// record.
func NewRepeatingReader(r io.Reader, spec RepeatingSpec, countField *FieldSpec, fixedCount int) (*RepeatingReader, error) {
	dict := pspp.NewDictionary()
	vars := make([]*pspp.Variable, len(spec.OccurFields))
	for i, f := range spec.OccurFields {
		v, err := dict.AddVar(f.Name, f.Width())
		if err != nil {
			return nil, err
		}
		v.PrintFormat = f.Format
		v.WriteFormat = f.Format
		vars[i] = v
	}
	rr := &RepeatingReader{r: bufio.NewReader(r), spec: spec, dict: dict, vars: vars, countField: countField, fixedCount: fixedCount}
	if countField != nil {
		v, err := dict.AddVar(countField.Name, countField.Width())
		if err != nil {
			return nil, err
		}
		rr.countVar = v
	}
	return rr, nil
}

func (rr *RepeatingReader) Dict() *pspp.Dictionary { return rr.dict }

// ReadOccurrences reads one outer record (the STARTS= record plus as
// many CONTINUED= records as occurrences demand) and returns every
// occurrence as a separate pspp.Case, or nil at end of file.
func (rr *RepeatingReader) ReadOccurrences() ([]pspp.Case, error) {
	first, err := rr.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	first = strings.TrimRight(first, "\r\n")
	if err == io.EOF && first == "" {
		return nil, nil
	}

	count := rr.fixedCount
	if rr.countField != nil {
		field := columnSlice(first, rr.countField.FirstCol, rr.countField.LastCol)
		res, derr := format.DataIn([]byte(field), rr.countField.Format, format.BigEndian, 0)
		if derr != nil {
			return nil, fmt.Errorf("datalist: repeating-data occurrence count: %w", derr)
		}
		count = int(res.Num)
	}
	if count < 0 {
		return nil, fmt.Errorf("datalist: negative occurrence count %d", count)
	}

	perRecord := occurrencesPerRecord(rr.spec)
	records := []string{first}
	needed := (count + perRecord - 1) / perRecord
	for len(records) < needed {
		line, err := rr.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		records = append(records, line)
		if err == io.EOF {
			break
		}
	}
	if id := rr.spec.IDField; id != nil {
		want := columnSlice(first, id.FirstCol, id.LastCol)
		for i, rec := range records[1:] {
			if got := columnSlice(rec, id.FirstCol, id.LastCol); got != want {
				return nil, fmt.Errorf("datalist: repeating-data ID %q on continuation record %d does not match %q", got, i+2, want)
			}
		}
	}

	cases := make([]pspp.Case, 0, count)
	for occ := 0; occ < count; occ++ {
		recIdx := occ / perRecord
		slot := occ % perRecord
		if recIdx >= len(records) {
			break
		}
		base := rr.spec.StartsCol
		if recIdx > 0 {
			base = rr.spec.ContinuedCol
		}
		shift := slot * occurrenceWidth(rr.spec)
		c := pspp.NewCase(rr.dict.NextValueIndex())
		for i, f := range rr.spec.OccurFields {
			firstCol := base + shift + (f.FirstCol - rr.spec.StartsCol)
			lastCol := firstCol + (f.LastCol - f.FirstCol)
			field := columnSlice(records[recIdx], firstCol, lastCol)
			res, err := format.DataIn([]byte(field), f.Format, format.BigEndian, 0)
			if err != nil {
				return nil, fmt.Errorf("datalist: repeating-data field %s: %w", f.Name, err)
			}
			c.Set(rr.vars[i], resultToValue(res, rr.vars[i].Width))
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// occurrenceWidth is the column span of one occurrence group, derived
// from the first and last OccurFields.
func occurrenceWidth(spec RepeatingSpec) int {
	if len(spec.OccurFields) == 0 {
		return 0
	}
	last := spec.OccurFields[0]
	for _, f := range spec.OccurFields {
		if f.LastCol > last.LastCol {
			last = f
		}
	}
	return last.LastCol - spec.StartsCol + 1
}

// occurrencesPerRecord is how many occurrence groups fit between
// STARTS= and the end of the physical record; the same count is used for
// CONTINUED= records.
func occurrencesPerRecord(spec RepeatingSpec) int {
	w := occurrenceWidth(spec)
	if w <= 0 || spec.RecordWidth <= 0 {
		return 1
	}
	avail := spec.RecordWidth - spec.StartsCol + 1
	n := avail / w
	if n < 1 {
		n = 1
	}
	return n
}

// ParseColumnRef parses a "STARTS=12" / "CONTINUED=1" style clause,
// returning the column number.
func ParseColumnRef(clause string) (int, error) {
	parts := strings.SplitN(clause, "=", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("datalist: malformed clause %q", clause)
	}
	return strconv.Atoi(strings.TrimSpace(parts[1]))
}
