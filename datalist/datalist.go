// Package datalist implements the DATA LIST text-file case reader: FIXED
// (column-addressed, possibly multi-record), FREE (delimiter-separated),
// and LIST (one record per case) modes, a FORTRAN-like format-group
// grammar, and REPEATING DATA. Grounded on original_source
// src/data-list.c and src/repeating-data.c.
package datalist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/format"
	"github.com/mstgnz/pspp/logger"
)

// Mode selects how records map to fields.
type Mode int

const (
	Fixed Mode = iota
	Free
	List
)

// FieldSpec describes one variable's source location and format.
type FieldSpec struct {
	Name     string
	Rec      int // 1-based record number within a case (FIXED only)
	FirstCol int // 1-based, inclusive (FIXED only)
	LastCol  int // 1-based, inclusive (FIXED only)
	Format   format.Spec
}

// Width returns the variable's Case storage width implied by Format.
func (f FieldSpec) Width() int { return format.VarWidth(f.Format) }

// Reader reads cases from a delimited text source per Mode.
type Reader struct {
	r      *bufio.Reader
	mode   Mode
	fields []FieldSpec
	dict   *pspp.Dictionary
	vars   []*pspp.Variable
	records int // FIXED: number of physical records per case (RECORDS=n)
	log    *logger.Logger
}

// UseLogger attaches a logger; readFixed and readDelimited warn through
// it when a field fails to parse before returning the error.
func (r *Reader) UseLogger(l *logger.Logger) { r.log = l }

// New builds a Reader. For Fixed mode, records is the number of physical
// lines consumed per case (defaulting to the highest FieldSpec.Rec).
func New(r io.Reader, mode Mode, fields []FieldSpec, records int) (*Reader, error) {
	dict := pspp.NewDictionary()
	vars := make([]*pspp.Variable, len(fields))
	maxRec := 1
	for i, f := range fields {
		v, err := dict.AddVar(f.Name, f.Width())
		if err != nil {
			return nil, err
		}
		v.PrintFormat = f.Format
		v.WriteFormat = f.Format
		vars[i] = v
		if f.Rec > maxRec {
			maxRec = f.Rec
		}
	}
	if records == 0 {
		records = maxRec
	}
	return &Reader{r: bufio.NewReader(r), mode: mode, fields: fields, dict: dict, vars: vars, records: records}, nil
}

// Dict returns the dictionary built from the field specs.
func (r *Reader) Dict() *pspp.Dictionary { return r.dict }

// ReadCase reads one case, or the null Case at end of file.
func (r *Reader) ReadCase() (pspp.Case, error) {
	switch r.mode {
	case Fixed:
		return r.readFixed()
	case List:
		return r.readDelimited(true)
	default:
		return r.readDelimited(false)
	}
}

func (r *Reader) readFixed() (pspp.Case, error) {
	lines := make([]string, r.records)
	gotAny := false
	for i := 0; i < r.records; i++ {
		line, err := r.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return pspp.Case{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if err == io.EOF && line == "" {
			if !gotAny {
				return pspp.Case{}, nil
			}
			break
		}
		gotAny = true
		lines[i] = line
	}
	if !gotAny {
		return pspp.Case{}, nil
	}
	c := pspp.NewCase(r.dict.NextValueIndex())
	for i, f := range r.fields {
		rec := f.Rec - 1
		if rec < 0 {
			rec = 0
		}
		var field string
		if rec < len(lines) {
			field = columnSlice(lines[rec], f.FirstCol, f.LastCol)
		}
		res, err := format.DataIn([]byte(field), f.Format, format.BigEndian, 0)
		if err != nil {
			if r.log != nil {
				r.log.Warn("field failed to parse", map[string]interface{}{
					"field": f.Name, "record": f.Rec, "column": f.FirstCol, "value": field,
				})
			}
			return pspp.Case{}, fmt.Errorf("datalist: field %s: %w", f.Name, err)
		}
		c.Set(r.vars[i], resultToValue(res, r.vars[i].Width))
	}
	return c, nil
}

// columnSlice extracts 1-based inclusive columns [first, last] from line,
// space-padding if the line is shorter than requested.
func columnSlice(line string, first, last int) string {
	if first < 1 {
		first = 1
	}
	if last < first {
		return ""
	}
	b := make([]byte, last-first+1)
	for i := range b {
		b[i] = ' '
	}
	for col := first; col <= last; col++ {
		if col-1 < len(line) {
			b[col-first] = line[col-1]
		}
	}
	return string(b)
}

// readDelimited implements FREE (fields may span records) and LIST (one
// record per case, missing trailing fields default to blank/SYSMIS).
func (r *Reader) readDelimited(oneRecordPerCase bool) (pspp.Case, error) {
	var tokens []string
	if oneRecordPerCase {
		line, err := r.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return pspp.Case{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if err == io.EOF && line == "" {
			return pspp.Case{}, nil
		}
		tokens = tokenizeDelimited(line)
	} else {
		var err error
		tokens, err = r.readTokensAcrossRecords(len(r.fields))
		if err != nil {
			return pspp.Case{}, err
		}
		if tokens == nil {
			return pspp.Case{}, nil
		}
	}

	c := pspp.NewCase(r.dict.NextValueIndex())
	for i, f := range r.fields {
		var tok string
		if i < len(tokens) {
			tok = tokens[i]
		}
		res, err := format.DataIn([]byte(tok), f.Format, format.BigEndian, 0)
		if err != nil {
			if r.log != nil {
				r.log.Warn("field failed to parse", map[string]interface{}{
					"field": f.Name, "token": tok,
				})
			}
			return pspp.Case{}, fmt.Errorf("datalist: field %s: %w", f.Name, err)
		}
		c.Set(r.vars[i], resultToValue(res, r.vars[i].Width))
	}
	return c, nil
}

// resultToValue converts a format.Result into a pspp.Value at the
// variable's declared width.
func resultToValue(res format.Result, width int) pspp.Value {
	if res.IsText {
		return pspp.Value{Str: res.Str, Width: width, IsText: true}
	}
	return pspp.NewNumericValue(res.Num)
}

func (r *Reader) readTokensAcrossRecords(want int) ([]string, error) {
	var tokens []string
	for len(tokens) < want {
		line, err := r.r.ReadString('\n')
		if err == io.EOF && line == "" {
			if len(tokens) == 0 {
				return nil, nil
			}
			break
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		tokens = append(tokens, tokenizeDelimited(line)...)
	}
	return tokens, nil
}

// tokenizeDelimited splits a line on whitespace/commas, honoring ' and "
// quoted fields that may contain embedded separators (§4.12 FREE mode).
func tokenizeDelimited(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := byte(0)
	hasCur := false
	flush := func() {
		if hasCur {
			tokens = append(tokens, cur.String())
			cur.Reset()
			hasCur = false
		}
	}
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inQuote != 0 {
			if ch == inQuote {
				inQuote = 0
			} else {
				cur.WriteByte(ch)
			}
			continue
		}
		switch {
		case ch == '\'' || ch == '"':
			inQuote = ch
			hasCur = true
		case ch == ',' || ch == ' ' || ch == '\t':
			flush()
		default:
			cur.WriteByte(ch)
			hasCur = true
		}
	}
	flush()
	return tokens
}
