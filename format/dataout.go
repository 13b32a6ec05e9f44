package format

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mstgnz/pspp/calendar"
)

// monthAbbrev mirrors original_source's month abbreviation table.
var monthAbbrev = [...]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

var wkdayNames = [...]string{"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY",
	"THURSDAY", "FRIDAY", "SATURDAY"}

// CCTemplate holds one CCA..CCE rendering template: literal prefix/suffix
// text wrapped around the formatted digits, with a separate neg_prefix/
// neg_suffix substituted for the plain '-' sign on negative values.
// Grounded on original_source's struct set_cust_currency and try_CCx
// (src/data-out.c).
type CCTemplate struct {
	Prefix, Suffix       string
	NegPrefix, NegSuffix string
}

// DataOut formats v per spec into a buffer of exactly spec.Width bytes
// (§4.4). Decimal/grouping characters are taken from dec/group (typically
// '.' and ',' from process-wide settings). cc supplies the CCA..CCE
// templates, indexed 0..4 by spec.Type-CCA; omit it (or leave gaps) for
// specs that never use a custom-currency format.
func DataOut(v Result, spec Spec, dec, group byte, cc ...CCTemplate) []byte {
	if spec.Type == A {
		return padString(v.Str, spec.Width)
	}
	if spec.Type == AHEX {
		return []byte(strings.ToUpper(hexEncodeUpper(v.Str)))
	}
	if !v.IsText && v.Num == -math.MaxFloat64 {
		return sysmisOut(spec.Width)
	}

	switch spec.Type {
	case F, COMMA, DOT, DOLLAR, PCT, E:
		return formatNumeric(v.Num, spec, dec, group)
	case N:
		return formatN(v.Num, spec)
	case Z:
		return formatZ(v.Num, spec)
	case IB:
		return formatIB(v.Num, spec, true)
	case PIB:
		return formatIB(v.Num, spec, false)
	case PIBHEX:
		return formatHexInt(v.Num, spec)
	case P:
		return formatPacked(v.Num, spec, true)
	case PK:
		return formatPacked(v.Num, spec, false)
	case RB:
		return formatRB(v.Num, spec)
	case RBHEX:
		return formatRBHex(v.Num)
	case DATE, ADATE, EDATE, SDATE, JDATE, QYR, MOYR, WKYR:
		return formatDate(v.Num, spec)
	case TIME, DTIME:
		return formatTime(v.Num, spec, spec.Type == DTIME)
	case DATETIME:
		return formatDatetime(v.Num, spec)
	case WKDAY:
		return formatWkday(v.Num, spec)
	case MONTH:
		return formatMonth(v.Num, spec)
	case CCA, CCB, CCC, CCD, CCE:
		idx := int(spec.Type - CCA)
		var tmpl CCTemplate
		if idx < len(cc) {
			tmpl = cc[idx]
		}
		return formatCC(v.Num, spec, dec, group, tmpl)
	default:
		return starsOut(spec.Width)
	}
}

// formatCC renders a CCA..CCE value: the digits are grouped like COMMA,
// and tmpl's affixes replace the ordinary '-' sign on negative values
// (neg_prefix/neg_suffix instead) per try_CCx.
func formatCC(v float64, spec Spec, dec, group byte, tmpl CCTemplate) []byte {
	neg := v < 0
	av := math.Abs(v)

	affixLen := len(tmpl.Prefix) + len(tmpl.Suffix)
	if neg {
		affixLen += len(tmpl.NegPrefix) + len(tmpl.NegSuffix)
	}
	w := spec.Width - affixLen
	if w <= 0 {
		return starsOut(spec.Width)
	}

	s, fits := formatF(av, w, spec.Decimals)
	if !fits {
		return starsOut(spec.Width)
	}
	digits := applyDecimalChar(s, dec)
	digits = interleaveGrouping(digits, w, group, numTypes) // numTypes: never DOLLAR/PCT, so no affix added here

	var b strings.Builder
	if neg {
		b.WriteString(tmpl.NegPrefix)
	}
	b.WriteString(tmpl.Prefix)
	b.WriteString(digits)
	b.WriteString(tmpl.Suffix)
	if neg {
		b.WriteString(tmpl.NegSuffix)
	}

	if out, ok := rightAlign(b.String(), spec.Width); ok {
		return out
	}
	return starsOut(spec.Width)
}

func padString(s []byte, width int) []byte {
	out := make([]byte, width)
	for i := range out {
		out[i] = ' '
	}
	copy(out, s)
	return out
}

func starsOut(width int) []byte {
	b := make([]byte, width)
	for i := range b {
		b[i] = '*'
	}
	return b
}

func sysmisOut(width int) []byte {
	b := make([]byte, width)
	for i := range b {
		b[i] = ' '
	}
	if width > 0 {
		b[width-1] = '.'
	}
	return b
}

func rightAlign(s string, width int) ([]byte, bool) {
	if len(s) > width {
		return nil, false
	}
	b := make([]byte, width)
	for i := range b {
		b[i] = ' '
	}
	copy(b[width-len(s):], s)
	return b, true
}

// formatF renders v as a plain fixed-point string with d decimals,
// choosing the number of digits via the uniform magnitude test described
// in §4.4 (whether the value fits in the requested width at all).
func formatF(v float64, w, d int) (string, bool) {
	s := strconv.FormatFloat(v, 'f', d, 64)
	if len(s) > w {
		return s, false
	}
	return s, true
}

func formatNumeric(v float64, spec Spec, dec, group byte) []byte {
	w, d := spec.Width, spec.Decimals

	s, fits := formatF(v, w, d)
	if fits {
		out := applyDecimalChar(s, dec)
		if spec.Type == COMMA || spec.Type == DOT || spec.Type == DOLLAR || spec.Type == PCT {
			out = interleaveGrouping(out, w, group, spec.Type)
		}
		if b, ok := rightAlign(out, w); ok {
			return b
		}
	}

	// Fall back to E format.
	es := strconv.FormatFloat(v, 'e', maxInt(d, 2), 64)
	es = toPsppExponent(es)
	if len(es) <= w {
		if b, ok := rightAlign(es, w); ok {
			return b
		}
	}
	// Compress "1.00E+100" -> "1.00+100" by dropping the E.
	compact := strings.Replace(es, "E", "", 1)
	if len(compact) <= w {
		if b, ok := rightAlign(compact, w); ok {
			return b
		}
	}
	return starsOut(w)
}

// toPsppExponent turns Go's "1.23e+05" into PSPP style "1.23E+005"-ish;
// kept deliberately simple (two-or-more exponent digits, explicit sign).
func toPsppExponent(s string) string {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s
	}
	mantissa := s[:idx]
	exp := s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	for len(exp) < 2 {
		exp = "0" + exp
	}
	return mantissa + "E" + sign + exp
}

func applyDecimalChar(s string, dec byte) string {
	if dec == '.' {
		return s
	}
	return strings.Replace(s, ".", string(dec), 1)
}

// interleaveGrouping inserts group every three digits left of the decimal
// point, reserving a leading slot for '$' (DOLLAR) and trailing for '%'
// (PCT); if there isn't enough room the grouping chars are dropped first
// (§4.4).
func interleaveGrouping(s string, width int, group byte, t Type) string {
	neg := strings.HasPrefix(s, "-")
	body := s
	if neg {
		body = body[1:]
	}
	intPart := body
	fracPart := ""
	if idx := strings.IndexAny(body, ".,"); idx >= 0 {
		intPart = body[:idx]
		fracPart = body[idx:]
	}

	var grouped strings.Builder
	n := len(intPart)
	for i, c := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			grouped.WriteByte(group)
		}
		grouped.WriteRune(c)
	}
	out := grouped.String() + fracPart
	if neg {
		out = "-" + out
	}
	if t == DOLLAR {
		out = "$" + out
	}
	if t == PCT {
		out = out + "%"
	}
	if len(out) > width {
		// drop grouping separators first
		out = strings.ReplaceAll(grouped.String(), string(group), "") + fracPart
		if neg {
			out = "-" + out
		}
		if t == DOLLAR {
			out = "$" + out
		}
		if t == PCT {
			out = out + "%"
		}
	}
	return out
}

func formatN(v float64, spec Spec) []byte {
	w := spec.Width
	iv := int64(math.Round(v))
	if iv < 0 {
		return starsOut(w)
	}
	s := strconv.FormatInt(iv, 10)
	if len(s) > w {
		return starsOut(w)
	}
	b := make([]byte, w)
	for i := range b {
		b[i] = '0'
	}
	copy(b[w-len(s):], s)
	return b
}

func formatZ(v float64, spec Spec) []byte {
	w := spec.Width
	neg := v < 0
	iv := int64(math.Round(math.Abs(v) * math.Pow10(spec.Decimals)))
	s := strconv.FormatInt(iv, 10)
	for len(s) < w {
		s = "0" + s
	}
	if len(s) > w {
		return starsOut(w)
	}
	out := make([]byte, w)
	for i := 0; i < w-1; i++ {
		out[i] = 0xF0 | (s[i] - '0')
	}
	last := s[w-1] - '0'
	if neg {
		out[w-1] = 0xD0 | last
	} else {
		out[w-1] = 0xC0 | last
	}
	return out
}

func formatIB(v float64, spec Spec, signed bool) []byte {
	w := spec.Width
	scaled := int64(math.Round(v * math.Pow10(spec.Decimals)))
	out := make([]byte, w)
	u := uint64(scaled)
	for i := w - 1; i >= 0; i-- {
		out[i] = byte(u)
		u >>= 8
	}
	return out
}

func formatHexInt(v float64, spec Spec) []byte {
	u := uint64(int64(v))
	s := strconv.FormatUint(u, 16)
	s = strings.ToUpper(s)
	for len(s) < spec.Width {
		s = "0" + s
	}
	return []byte(s[len(s)-spec.Width:])
}

func formatPacked(v float64, spec Spec, hasSign bool) []byte {
	neg := v < 0
	scaled := int64(math.Round(math.Abs(v) * math.Pow10(spec.Decimals)))
	digits := strconv.FormatInt(scaled, 10)
	needed := spec.Width * 2
	if hasSign {
		needed--
	}
	for len(digits) < needed {
		digits = "0" + digits
	}
	if hasSign {
		digits = digits + signNibbleDigit(neg)
	}
	out := make([]byte, spec.Width)
	for i := 0; i < spec.Width; i++ {
		hi := digits[i*2] - '0'
		lo := digits[i*2+1]
		var loNibble byte
		if lo >= '0' && lo <= '9' {
			loNibble = lo - '0'
		} else {
			loNibble = lo // sign nibble already numeric 0xD/0xC encoded as char below
		}
		out[i] = hi<<4 | loNibble
	}
	return out
}

func signNibbleDigit(neg bool) string {
	if neg {
		return string(rune(0xD))
	}
	return string(rune(0xC))
}

func formatRB(v float64, spec Spec) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, math.Float64bits(v))
	return out
}

func formatRBHex(v float64) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, math.Float64bits(v))
	return []byte(strings.ToUpper(hexEncodeUpper(raw)))
}

func hexEncodeUpper(b []byte) string {
	const hex = "0123456789ABCDEF"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hex[c>>4]
		out[i*2+1] = hex[c&0xF]
	}
	return string(out)
}

func formatDate(v float64, spec Spec) []byte {
	jd := int(math.Round(v / 86400))
	y, m, d := calendar.FromJulian(jd)
	w := spec.Width
	longYear := w >= 10

	yearStr := func() string {
		if longYear {
			return fmt.Sprintf("%04d", y)
		}
		return fmt.Sprintf("%02d", y%100)
	}

	switch spec.Type {
	case DATE:
		s := fmt.Sprintf("%02d-%s-%s", d, monthAbbrev[m-1], yearStr())
		b, _ := leftAlignPad(s, w)
		return b
	case ADATE:
		s := fmt.Sprintf("%02d/%02d/%s", m, d, yearStr())
		b, _ := leftAlignPad(s, w)
		return b
	case EDATE:
		s := fmt.Sprintf("%02d.%02d.%s", d, m, yearStr())
		b, _ := leftAlignPad(s, w)
		return b
	case SDATE:
		s := fmt.Sprintf("%s/%02d/%02d", yearStr(), m, d)
		b, _ := leftAlignPad(s, w)
		return b
	case JDATE:
		doy := calendar.DayOfYear(jd)
		s := fmt.Sprintf("%s%03d", yearStr(), doy)
		b, _ := leftAlignPad(s, w)
		return b
	case QYR:
		q := (m-1)/3 + 1
		s := fmt.Sprintf("%d Q %s", q, yearStr())
		b, _ := leftAlignPad(s, w)
		return b
	case MOYR:
		s := fmt.Sprintf("%s %s", monthAbbrev[m-1], yearStr())
		b, _ := leftAlignPad(s, w)
		return b
	case WKYR:
		doy := calendar.DayOfYear(jd)
		wk := (doy-1)/7 + 1
		s := fmt.Sprintf("%02d WK %s", wk, yearStr())
		b, _ := leftAlignPad(s, w)
		return b
	}
	return starsOut(w)
}

func leftAlignPad(s string, w int) ([]byte, bool) {
	if len(s) > w {
		return starsOut(w), false
	}
	b := make([]byte, w)
	for i := range b {
		b[i] = ' '
	}
	copy(b, s)
	return b, true
}

func formatTime(v float64, spec Spec, withDays bool) []byte {
	w := spec.Width
	neg := v < 0
	av := math.Abs(v)
	days := 0
	if withDays {
		days = int(av / 86400)
		av -= float64(days) * 86400
	}
	hh := int(av / 3600)
	av -= float64(hh) * 3600
	mm := int(av / 60)
	ss := av - float64(mm)*60

	var s string
	if spec.Decimals > 0 {
		s = fmt.Sprintf("%02d:%0*.*f", mm, 3+spec.Decimals, spec.Decimals, ss)
		s = fmt.Sprintf("%02d:%s", hh, s)
	} else {
		s = fmt.Sprintf("%02d:%02d:%02.0f", hh, mm, ss)
	}
	if withDays {
		s = fmt.Sprintf("%d %s", days, s)
	}
	if neg {
		s = "-" + s
	}
	b, _ := leftAlignPad(s, w)
	return b
}

func formatDatetime(v float64, spec Spec) []byte {
	jd := int(v / 86400)
	secs := v - float64(jd)*86400
	y, m, d := calendar.FromJulian(jd)
	hh := int(secs / 3600)
	secs -= float64(hh) * 3600
	mm := int(secs / 60)
	ss := secs - float64(mm)*60
	s := fmt.Sprintf("%02d-%s-%04d %02d:%02d:%02.0f", d, monthAbbrev[m-1], y, hh, mm, ss)
	b, _ := leftAlignPad(s, spec.Width)
	return b
}

func formatWkday(v float64, spec Spec) []byte {
	idx := int(v) - 1
	if idx < 0 || idx > 6 {
		return starsOut(spec.Width)
	}
	return padString([]byte(wkdayNames[idx]), spec.Width)
}

func formatMonth(v float64, spec Spec) []byte {
	idx := int(v) - 1
	if idx < 0 || idx > 11 {
		return starsOut(spec.Width)
	}
	names := [...]string{"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
		"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER"}
	return padString([]byte(names[idx]), spec.Width)
}

// NumToString is the num_to_string convenience formatter (§4.4): formats
// in F, optionally trimming trailing zeros (legacy behavior switch).
func NumToString(v float64, w, d int, trimTrailingZeros bool) string {
	s := strconv.FormatFloat(v, 'f', d, 64)
	if trimTrailingZeros && strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
