// Package format implements PSPP-compatible format specifiers: parsing,
// validation, and the input/output format conversion described in
// original_source/src/format.c.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Type enumerates the format specifier types (§4.1).
type Type int

const (
	F Type = iota
	COMMA
	DOT
	DOLLAR
	PCT
	E
	N
	Z
	IB
	PIB
	PIBHEX
	P
	PK
	RB
	RBHEX
	AHEX
	A
	DATE
	ADATE
	EDATE
	SDATE
	JDATE
	QYR
	MOYR
	WKYR
	DATETIME
	TIME
	DTIME
	WKDAY
	MONTH
	CCA
	CCB
	CCC
	CCD
	CCE
	X
	T
	numTypes
)

// Category is a bitset of format capability flags.
type Category int

const (
	CatBlanksSysmis Category = 1 << iota // all-whitespace input means SYSMIS
	CatEvenWidth                         // width must be even
	CatString                            // string input/output format
	CatShiftDecimal                      // decimal point auto-shifts on output
	CatOutputOnly                        // not usable as an input format
)

// Desc describes one format type's bounds and behavior.
type Desc struct {
	Name          string
	NArgs         int // 1 = width only; 2 = width.decimals
	IMinW, IMaxW  int
	OMinW, OMaxW  int
	Cat           Category
	Output        Type // output-fallback type used when parsing this as input
}

// Descs is indexed by Type and mirrors original_source's `formats[]` table.
var Descs = [numTypes]Desc{
	F:        {"F", 2, 1, 40, 1, 40, 0, F},
	COMMA:    {"COMMA", 2, 1, 40, 1, 40, 0, COMMA},
	DOT:      {"DOT", 2, 1, 40, 1, 40, 0, DOT},
	DOLLAR:   {"DOLLAR", 2, 1, 40, 2, 40, 0, DOLLAR},
	PCT:      {"PCT", 2, 1, 40, 1, 40, 0, PCT},
	E:        {"E", 2, 6, 40, 6, 40, 0, E},
	N:        {"N", 2, 1, 40, 1, 40, CatBlanksSysmis, N},
	Z:        {"Z", 2, 1, 40, 1, 40, 0, Z},
	IB:       {"IB", 2, 1, 8, 1, 8, CatEvenWidth, F},
	PIB:      {"PIB", 2, 1, 8, 1, 8, 0, F},
	PIBHEX:   {"PIBHEX", 1, 2, 16, 2, 21, CatEvenWidth, PIBHEX},
	P:        {"P", 2, 1, 16, 1, 16, 0, F},
	PK:       {"PK", 2, 1, 16, 1, 16, 0, F},
	RB:       {"RB", 1, 2, 8, 2, 8, 0, F},
	RBHEX:    {"RBHEX", 1, 4, 16, 4, 16, CatEvenWidth, RBHEX},
	AHEX:     {"AHEX", 1, 2, 254, 2, 254, CatString | CatEvenWidth, AHEX},
	A:        {"A", 1, 1, 255, 1, 255, CatString, A},
	DATE:     {"DATE", 1, 9, 20, 9, 20, 0, DATE},
	ADATE:    {"ADATE", 1, 8, 10, 8, 10, 0, ADATE},
	EDATE:    {"EDATE", 1, 8, 10, 8, 10, 0, EDATE},
	SDATE:    {"SDATE", 1, 8, 10, 8, 10, 0, SDATE},
	JDATE:    {"JDATE", 1, 5, 7, 5, 7, 0, JDATE},
	QYR:      {"QYR", 1, 4, 8, 4, 8, 0, QYR},
	MOYR:     {"MOYR", 1, 6, 8, 6, 8, 0, MOYR},
	WKYR:     {"WKYR", 1, 8, 10, 8, 10, 0, WKYR},
	DATETIME: {"DATETIME", 2, 17, 40, 17, 40, 0, DATETIME},
	TIME:     {"TIME", 2, 5, 40, 5, 40, 0, TIME},
	DTIME:    {"DTIME", 2, 8, 40, 8, 40, 0, DTIME},
	WKDAY:    {"WKDAY", 1, 2, 20, 2, 20, 0, WKDAY},
	MONTH:    {"MONTH", 1, 3, 20, 3, 20, 0, MONTH},
	CCA:      {"CCA", 2, 1, 40, 1, 40, CatOutputOnly, F},
	CCB:      {"CCB", 2, 1, 40, 1, 40, CatOutputOnly, F},
	CCC:      {"CCC", 2, 1, 40, 1, 40, CatOutputOnly, F},
	CCD:      {"CCD", 2, 1, 40, 1, 40, CatOutputOnly, F},
	CCE:      {"CCE", 2, 1, 40, 1, 40, CatOutputOnly, F},
	X:        {"X", 1, 0, 255, 0, 255, 0, X},
	T:        {"T", 1, 0, 100000, 0, 100000, 0, T},
}

// Spec is a parsed format specifier: type, width, implied decimal places.
type Spec struct {
	Type     Type
	Width    int
	Decimals int
}

func (s Spec) String() string {
	d := Descs[s.Type]
	if d.NArgs >= 2 {
		return fmt.Sprintf("%s%d.%d", d.Name, s.Width, s.Decimals)
	}
	return fmt.Sprintf("%s%d", d.Name, s.Width)
}

// byName maps uppercase format names to their Type. Parse looks up the
// whole leading non-digit run, so e.g. "DATETIME" never matches "DATE".
var byName = func() map[string]Type {
	m := make(map[string]Type, numTypes)
	for t := Type(0); t < numTypes; t++ {
		m[Descs[t].Name] = t
	}
	return m
}()

// Parse parses a textual format specifier such as "F8.2" or "A16".
func Parse(s string) (Spec, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	name := s[:i]
	t, ok := byName[name]
	if !ok {
		return Spec{}, fmt.Errorf("format: %q is not a valid data format", s)
	}
	rest := s[i:]
	parts := strings.SplitN(rest, ".", 2)
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return Spec{}, fmt.Errorf("format: %q does not specify a width", s)
	}
	d := 0
	if len(parts) == 2 {
		if parts[1] == "" {
			d = 0
		} else if dv, err := strconv.Atoi(parts[1]); err == nil {
			d = dv
		} else {
			return Spec{}, fmt.Errorf("format: %q has an invalid decimals part", s)
		}
	}
	return Spec{Type: t, Width: w, Decimals: d}, nil
}

// MustParse is Parse, panicking on error; useful for package-level literals.
func MustParse(s string) Spec {
	sp, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sp
}

// CheckInput validates spec as an input format (original_source
// check_input_specifier).
func CheckInput(spec Spec) error {
	if spec.Type == X || spec.Type == T {
		return nil
	}
	d := Descs[spec.Type]
	if d.Cat&CatOutputOnly != 0 {
		return fmt.Errorf("format %s may not be used as an input format", d.Name)
	}
	if spec.Width < d.IMinW || spec.Width > d.IMaxW {
		return fmt.Errorf("input format %s specifies a bad width %d: requires %d..%d",
			spec, spec.Width, d.IMinW, d.IMaxW)
	}
	if d.Cat&CatEvenWidth != 0 && spec.Width%2 != 0 {
		return fmt.Errorf("input format %s specifies an odd width %d but requires even width", spec, spec.Width)
	}
	if d.NArgs > 1 && (spec.Decimals < 0 || spec.Decimals > 16) {
		return fmt.Errorf("input format %s specifies a bad number of implied decimals %d", spec, spec.Decimals)
	}
	return nil
}

// CheckOutput validates spec as an output format (original_source
// check_output_specifier).
func CheckOutput(spec Spec) error {
	if spec.Type == X || spec.Type == T {
		return nil
	}
	d := Descs[spec.Type]
	if spec.Width < d.OMinW || spec.Width > d.OMaxW {
		return fmt.Errorf("output format %s specifies a bad width %d: requires %d..%d",
			spec, spec.Width, d.OMinW, d.OMaxW)
	}
	if spec.Decimals > 1 && (spec.Type == F || spec.Type == COMMA || spec.Type == DOLLAR) &&
		spec.Width < d.OMinW+1+spec.Decimals {
		return fmt.Errorf("output format %s requires minimum width %d to allow %d decimal places",
			d.Name, d.OMinW+1+spec.Decimals, spec.Decimals)
	}
	if d.Cat&CatEvenWidth != 0 && spec.Width%2 != 0 {
		return fmt.Errorf("output format %s specifies an odd width %d but requires even width", spec, spec.Width)
	}
	if d.NArgs > 1 && (spec.Decimals < 0 || spec.Decimals > 16) {
		return fmt.Errorf("output format %s specifies a bad number of implied decimals %d", spec, spec.Decimals)
	}
	return nil
}

// CheckString verifies that a string variable of width min can be
// displayed with format f (original_source check_string_specifier).
func CheckString(f Spec, minLen int) error {
	if (f.Type == A && minLen > f.Width) || (f.Type == AHEX && minLen*2 > f.Width) {
		return fmt.Errorf("can't display a string variable of width %d with format specifier %s", minLen, f)
	}
	return nil
}

// pibhexMap mirrors original_source's static map in convert_fmt_ItoO.
var pibhexMap = [...]int{4, 6, 9, 11, 14, 16, 18, 21}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ConvertItoO maps an input spec to the corresponding output spec,
// expanding width as each type requires (original_source
// convert_fmt_ItoO).
func ConvertItoO(input Spec) Spec {
	d := Descs[input.Type]
	out := Spec{Type: d.Output, Width: input.Width, Decimals: input.Decimals}
	if out.Width > Descs[out.Type].OMaxW {
		out.Width = Descs[out.Type].OMaxW
	}

	switch input.Type {
	case F, N:
		if out.Decimals > 1 && out.Width < 2+out.Decimals {
			out.Width = 2 + out.Decimals
		}
	case E:
		out.Width = maxInt(maxInt(input.Width, input.Decimals+7), 10)
		out.Decimals = maxInt(input.Decimals, 3)
	case COMMA, DOT:
		// nothing necessary
	case DOLLAR, PCT:
		if out.Width < 2 {
			out.Width = 2
		}
	case PIBHEX:
		idx := input.Width/2 - 1
		if idx >= 0 && idx < len(pibhexMap) {
			out.Width = pibhexMap[idx]
		}
	case RBHEX:
		out.Width, out.Decimals = 8, 2
	case IB, PIB, P, PK, RB:
		if input.Decimals < 1 {
			out.Width, out.Decimals = 8, 2
		} else {
			out.Width = 9 + input.Decimals
		}
	case AHEX:
		out.Width = input.Width / 2
	case QYR:
		if out.Width < 6 {
			out.Width = 6
		}
	case WKYR:
		if out.Width < 8 {
			out.Width = 8
		}
	}
	return out
}

// VarWidth returns the Case storage width implied by an input format
// specifier (original_source get_format_var_width): 0 for numeric.
func VarWidth(spec Spec) int {
	switch spec.Type {
	case AHEX:
		return spec.Width * 2
	case A:
		return spec.Width
	default:
		return 0
	}
}

// IsString reports whether t is a string-category format.
func IsString(t Type) bool { return Descs[t].Cat&CatString != 0 }
