// Package por implements the SPSS Portable File (.por) reader: the
// 464-byte header with its character-set translation table, the base-30
// token grammar used for every value in the file, and the dictionary and
// case records that follow. Grounded on original_source
// src/data/por-file-reader.c.
package por

import (
	"fmt"
	"io"
	"strings"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/format"
	"github.com/mstgnz/pspp/logger"
	"github.com/mstgnz/pspp/perr"
)

// ReadInfo captures the descriptive fields carried in a portable file's
// version/date record, mirroring struct pfm_read_info.
type ReadInfo struct {
	CreationDate string
	CreationTime string
	Product      string
	Subproduct   string
}

// Reader reads a dictionary and cases from a Portable File.
type Reader struct {
	s       *scanner
	dict    *pspp.Dictionary
	widths  []int
	Info    ReadInfo
	log     *logger.Logger
}

// UseLogger attaches a logger; readVariables warns through it when a
// variable's print/write format code isn't one this package recognizes.
func (r *Reader) UseLogger(l *logger.Logger) { r.log = l }

// Open parses the header, version/date record, variable records, and
// value-label records, leaving the Reader positioned at the first case.
func Open(r io.Reader) (*Reader, error) {
	pr := &Reader{s: newScanner(r), dict: pspp.NewDictionary()}
	if err := pr.readHeader(); err != nil {
		return nil, err
	}
	if err := pr.readVersionData(); err != nil {
		return nil, err
	}
	if err := pr.readVariables(); err != nil {
		return nil, err
	}
	for {
		m, err := pr.s.match('D')
		if err != nil {
			return nil, err
		}
		if !m {
			break
		}
		if err := pr.readValueLabel(); err != nil {
			return nil, err
		}
	}
	m, err := pr.s.match('F')
	if err != nil {
		return nil, err
	}
	if !m {
		return nil, fmt.Errorf("portable file: data record expected")
	}
	return pr, nil
}

func (r *Reader) readHeader() error {
	for i := 0; i < 200; i++ {
		if err := r.s.advance(); err != nil {
			return err
		}
	}
	for i := 0; i < 64; i++ {
		if err := r.s.advance(); err != nil {
			return err
		}
	}
	var trans [256]byte
	for i := 64; i < 256; i++ {
		if err := r.s.advance(); err != nil {
			return err
		}
		c := r.s.cc
		if trans[c] == 0 {
			trans[c] = portableToLocal[i]
		}
	}
	r.s.trans = trans
	r.s.transReady = true
	if err := r.s.advance(); err != nil {
		return err
	}

	const sig = "SPSSPORT"
	for i := 0; i < len(sig); i++ {
		m, err := r.s.match(sig[i])
		if err != nil {
			return err
		}
		if !m {
			return perr.New(perr.CategoryCorruption, perr.SeverityFatal,
				"not a portable file (bad signature)", nil)
		}
	}
	return nil
}

func (r *Reader) readVersionData() error {
	if m, err := r.s.match('A'); err != nil {
		return err
	} else if !m {
		return fmt.Errorf("portable file: unrecognized version code")
	}
	date, err := r.s.readString()
	if err != nil {
		return err
	}
	timeStr, err := r.s.readString()
	if err != nil {
		return err
	}
	if m, err := r.s.match('1'); err != nil {
		return err
	} else if m {
		if r.Info.Product, err = r.s.readString(); err != nil {
			return err
		}
	}
	if m, err := r.s.match('2'); err != nil {
		return err
	} else if m {
		if _, err := r.s.readString(); err != nil { // author, unused
			return err
		}
	}
	if m, err := r.s.match('3'); err != nil {
		return err
	} else if m {
		if r.Info.Subproduct, err = r.s.readString(); err != nil {
			return err
		}
	}
	if len(date) != 8 {
		return fmt.Errorf("portable file: bad date string length %d", len(date))
	}
	if len(timeStr) != 6 {
		return fmt.Errorf("portable file: bad time string length %d", len(timeStr))
	}
	r.Info.CreationDate = fmt.Sprintf("%s %s %s", date[6:8], date[4:6], date[0:4])
	r.Info.CreationTime = fmt.Sprintf("%s:%s:%s", timeStr[0:2], timeStr[2:4], timeStr[4:6])
	return nil
}

func (r *Reader) readVariables() error {
	if m, err := r.s.match('4'); err != nil {
		return err
	} else if !m {
		return fmt.Errorf("portable file: expected variable count record")
	}
	n, err := r.s.readInt()
	if err != nil {
		return err
	}
	if n <= 0 {
		return fmt.Errorf("portable file: invalid number of variables %d", n)
	}
	if _, err := r.s.readInt(); err != nil { // unknown purpose, typically 161
		return err
	}

	var weightName string
	if m, err := r.s.match('6'); err != nil {
		return err
	} else if m {
		if weightName, err = r.s.readString(); err != nil {
			return err
		}
	}

	r.widths = make([]int, n)
	for i := 0; i < n; i++ {
		if m, err := r.s.match('7'); err != nil {
			return err
		} else if !m {
			return fmt.Errorf("portable file: expected variable record")
		}
		width, err := r.s.readInt()
		if err != nil {
			return err
		}
		if width < 0 || width > 255 {
			return fmt.Errorf("portable file: bad width %d", width)
		}
		r.widths[i] = width

		name, err := r.s.readString()
		if err != nil {
			return err
		}
		name = strings.ToUpper(name)

		var fmts [6]int
		for j := 0; j < 6; j++ {
			if fmts[j], err = r.s.readInt(); err != nil {
				return err
			}
		}

		v, err := r.dict.AddVar(name, width)
		if err != nil {
			return err
		}
		r.warnUnknownFmt(name, "print", fmts[0])
		r.warnUnknownFmt(name, "write", fmts[3])
		v.PrintFormat = format.Spec{Type: format.Type(translateFmt(fmts[0])), Width: fmts[1], Decimals: fmts[2]}
		v.WriteFormat = format.Spec{Type: format.Type(translateFmt(fmts[3])), Width: fmts[4], Decimals: fmts[5]}

		if m, err := r.s.match('B'); err != nil {
			return err
		} else if m {
			lo, err := r.s.readFloat()
			if err != nil {
				return err
			}
			hi, err := r.s.readFloat()
			if err != nil {
				return err
			}
			v.Missing.HasRange, v.Missing.RangeLow, v.Missing.RangeHigh = true, lo, hi
		} else if m, err := r.s.match('A'); err != nil {
			return err
		} else if m {
			lo, err := r.s.readFloat()
			if err != nil {
				return err
			}
			v.Missing.HasRange, v.Missing.RangeLow, v.Missing.RangeHigh = true, lo, pspp.Highest
		} else if m, err := r.s.match('9'); err != nil {
			return err
		} else if m {
			hi, err := r.s.readFloat()
			if err != nil {
				return err
			}
			v.Missing.HasRange, v.Missing.RangeLow, v.Missing.RangeHigh = true, pspp.Lowest, hi
		}

		for {
			m, err := r.s.match('8')
			if err != nil {
				return err
			}
			if !m {
				break
			}
			val, err := r.parseValue(v)
			if err != nil {
				return err
			}
			v.Missing.Discrete = append(v.Missing.Discrete, val)
		}

		if m, err := r.s.match('C'); err != nil {
			return err
		} else if m {
			if v.Label, err = r.s.readString(); err != nil {
				return err
			}
		}
	}

	if weightName != "" {
		wv, ok := r.dict.Lookup(weightName)
		if !ok {
			return fmt.Errorf("portable file: weighting variable %s not present", weightName)
		}
		if err := r.dict.SetWeight(wv); err != nil {
			return err
		}
	}
	return nil
}

// translateFmt maps a portable-file format code onto this module's
// format.Type via reverseSpssCode (format.go) — the same numeric
// assignment sav's records.go uses, since both formats pack print/write
// specs with original_source's single formats[] table. Go can't export
// sav's unexported table across packages, so the assignment is
// reproduced here rather than shared.
func translateFmt(code int) int {
	t, ok := reverseSpssCode[int32(code)]
	if !ok {
		return int(format.F)
	}
	return int(t)
}

// warnUnknownFmt logs when a variable's format code falls outside
// reverseSpssCode, so translateFmt's fallback to format.F is visible
// instead of silently substituted.
func (r *Reader) warnUnknownFmt(varName, which string, code int) {
	if r.log == nil {
		return
	}
	if _, ok := reverseSpssCode[int32(code)]; ok {
		return
	}
	r.log.Warn("unrecognized portable file format code, defaulting to F", map[string]interface{}{
		"variable": varName,
		"which":    which,
		"code":     code,
	})
}

func (r *Reader) parseValue(v *pspp.Variable) (pspp.Value, error) {
	if v.IsNumeric() {
		f, err := r.s.readFloat()
		if err != nil {
			return pspp.Value{}, err
		}
		return pspp.NewNumericValue(f), nil
	}
	s, err := r.s.readString()
	if err != nil {
		return pspp.Value{}, err
	}
	return pspp.NewStringValue(s, v.Width), nil
}

func (r *Reader) readValueLabel() error {
	nv, err := r.s.readInt()
	if err != nil {
		return err
	}
	vars := make([]*pspp.Variable, nv)
	for i := 0; i < nv; i++ {
		name, err := r.s.readString()
		if err != nil {
			return err
		}
		v, ok := r.dict.Lookup(name)
		if !ok {
			return fmt.Errorf("portable file: unknown variable %s in value label record", name)
		}
		vars[i] = v
	}
	nLabels, err := r.s.readInt()
	if err != nil {
		return err
	}
	for i := 0; i < nLabels; i++ {
		val, err := r.parseValue(vars[0])
		if err != nil {
			return err
		}
		label, err := r.s.readString()
		if err != nil {
			return err
		}
		for _, v := range vars {
			if v.ValueLabels == nil {
				v.ValueLabels = map[string]string{}
			}
			v.ValueLabels[valueKey(val)] = label
		}
	}
	return nil
}

func valueKey(v pspp.Value) string {
	if v.IsText {
		return string(v.Str)
	}
	return fmt.Sprintf("%g", v.Num)
}

// Dict returns the dictionary parsed from the portable file's header.
func (r *Reader) Dict() *pspp.Dictionary { return r.dict }

// ReadCase reads the next case, or the null Case at end of file ('Z').
func (r *Reader) ReadCase() (pspp.Case, error) {
	if r.s.cc == 'Z' {
		return pspp.Case{}, nil
	}
	c := pspp.NewCase(r.dict.NextValueIndex())
	for _, v := range r.dict.Vars() {
		val, err := r.parseValue(v)
		if err != nil {
			return pspp.Case{}, err
		}
		c.Set(v, val)
	}
	return c, nil
}
