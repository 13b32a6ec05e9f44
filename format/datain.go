package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mstgnz/pspp/calendar"
)

// ParseFlags mirrors original_source's fmt_parse_flags used to relax
// data-in's error behavior.
type ParseFlags int

const (
	AllowXT ParseFlags = 1 << iota
	IgnoreErrors
)

// Result is what data-in produces: either a numeric or string Value.
type Result struct {
	Num    float64
	Str    []byte
	IsText bool
}

func numResult(n float64) Result        { return Result{Num: n} }
func strResult(s []byte) Result         { return Result{Str: s, IsText: true} }
func sysmisResult() Result              { return numResult(-math.MaxFloat64) }
func blankResult(width int) Result      { b := bytes.Repeat([]byte{' '}, width); return strResult(b) }

// byteOrder selects which endianness IB/PIB/RB binary fields are read in;
// the SAV reader supplies this based on the file's machine-integer-info
// record (§4.8 byte order via layout_code sign).
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// DataIn converts the byte slice field (already trimmed to the field's
// column range) into a Result per spec, per §4.3.
func DataIn(field []byte, spec Spec, order ByteOrder, flags ParseFlags) (Result, error) {
	switch spec.Type {
	case F, COMMA, DOT, DOLLAR, PCT, E:
		return parseNumeric(field, spec)
	case N:
		return parseN(field, spec)
	case Z:
		return parseZ(field, spec)
	case IB:
		return parseIB(field, spec, order, true)
	case PIB:
		return parseIB(field, spec, order, false)
	case PIBHEX:
		return parseHexInt(field, spec)
	case P:
		return parsePacked(field, spec, true)
	case PK:
		return parsePacked(field, spec, false)
	case RB:
		return parseRB(field, spec, order)
	case RBHEX:
		return parseRBHex(field, spec)
	case AHEX:
		return parseAHex(field, spec)
	case A:
		return parseA(field, spec)
	case DATE, ADATE, EDATE, SDATE, JDATE, QYR, MOYR, WKYR:
		return parseDate(field, spec)
	case TIME:
		return parseTime(field, spec, false)
	case DTIME:
		return parseTime(field, spec, true)
	case DATETIME:
		return parseDatetime(field, spec)
	case WKDAY:
		return parseWkday(field)
	case MONTH:
		return parseMonth(field)
	default:
		return Result{}, fmt.Errorf("data-in: unsupported format type %s", Descs[spec.Type].Name)
	}
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' && c != 0 {
			return false
		}
	}
	return true
}

func trimSpace(b []byte) []byte {
	return bytes.TrimSpace(b)
}

// parseNumeric handles F/COMMA/DOT/DOLLAR/PCT/E per the grouping and
// decimal-character rules described in §4.3.
func parseNumeric(field []byte, spec Spec) (Result, error) {
	if isBlank(field) {
		return sysmisResult(), nil
	}
	grouping, decimal := byte(','), byte('.')
	if spec.Type == DOT {
		grouping, decimal = '.', ','
	}

	s := trimSpace(field)
	if spec.Type == DOLLAR && len(s) > 0 && s[0] == '$' {
		s = s[1:]
	}
	trailingPct := false
	if spec.Type == PCT && len(s) > 0 && s[len(s)-1] == '%' {
		s = s[:len(s)-1]
		trailingPct = true
	}
	_ = trailingPct

	var b strings.Builder
	sawDot := false
	explicitDecimals := 0
	countingDecimals := false
	i := 0
	n := len(s)

	if i < n && (s[i] == '+' || s[i] == '-') {
		b.WriteByte(s[i])
		i++
	}
	for i < n {
		c := s[i]
		if c == grouping {
			i++
			continue
		}
		if c == decimal {
			if sawDot {
				return Result{}, fmt.Errorf("data-in: %s: multiple decimal points", spec)
			}
			sawDot = true
			countingDecimals = true
			b.WriteByte('.')
			i++
			continue
		}
		if c >= '0' && c <= '9' {
			b.WriteByte(c)
			if countingDecimals {
				explicitDecimals++
			}
			i++
			continue
		}
		if c == 'e' || c == 'E' || c == 'd' || c == 'D' ||
			(spec.Type == E && (c == '+' || c == '-') && b.Len() > 0) {
			break
		}
		if c == ' ' || c == '\t' {
			break
		}
		return Result{}, fmt.Errorf("data-in: %s: invalid character %q", spec, c)
	}

	mantissa := b.String()
	exponent := 0
	hasExp := false
	if i < n {
		rest := s[i:]
		rest = bytes.TrimLeft(rest, " \t")
		if len(rest) > 0 && (rest[0] == 'e' || rest[0] == 'E' || rest[0] == 'd' || rest[0] == 'D') {
			rest = rest[1:]
			hasExp = true
		} else if spec.Type == E && len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
			hasExp = true
		}
		if hasExp {
			ev, err := strconv.Atoi(strings.TrimSpace(string(rest)))
			if err != nil {
				return Result{}, fmt.Errorf("data-in: %s: bad exponent", spec)
			}
			exponent = ev
			i = n
		}
	}
	if i < n && !isBlank(s[i:]) {
		return Result{}, fmt.Errorf("data-in: %s: trailing garbage %q", spec, s[i:])
	}

	if mantissa == "" || mantissa == "-" || mantissa == "+" {
		return Result{}, fmt.Errorf("data-in: %s: not a number", spec)
	}
	v, err := strconv.ParseFloat(mantissa, 64)
	if err != nil {
		return Result{}, fmt.Errorf("data-in: %s: not a number: %v", spec, err)
	}
	if !sawDot {
		// implied decimals from the format shift the value, and any
		// explicit exponent further shifts it (§4.3: "If no explicit
		// decimal point, implied decimals are subtracted from the
		// exponent").
		exponent -= spec.Decimals
	} else if spec.Decimals > 0 {
		// an explicit decimal point overrides implied decimals.
	}
	v *= math.Pow10(exponent)
	if math.IsInf(v, 0) {
		return Result{}, fmt.Errorf("data-in: %s: overflow", spec)
	}
	return numResult(v), nil
}

func parseN(field []byte, spec Spec) (Result, error) {
	s := field
	for _, c := range s {
		if c < '0' || c > '9' {
			return Result{}, fmt.Errorf("data-in: N: non-digit %q", c)
		}
	}
	v, err := strconv.ParseFloat(string(s), 64)
	if err != nil {
		return Result{}, fmt.Errorf("data-in: N: %v", err)
	}
	if spec.Decimals > 0 {
		v /= math.Pow10(spec.Decimals)
	}
	return numResult(v), nil
}

func parseZ(field []byte, spec Spec) (Result, error) {
	if isBlank(field) {
		return sysmisResult(), nil
	}
	n := len(field)
	neg := false
	var digits strings.Builder
	for i, b := range field {
		hi := b & 0xF0
		lo := b & 0x0F
		if i == n-1 {
			if hi != 0xC0 && hi != 0xD0 {
				if b == '.' {
					continue
				}
				return Result{}, fmt.Errorf("data-in: Z: bad sign nibble")
			}
			if hi == 0xD0 {
				neg = true
			}
			digits.WriteByte('0' + lo)
			continue
		}
		if hi != 0xF0 {
			if b == ' ' {
				continue
			}
			return Result{}, fmt.Errorf("data-in: Z: bad digit byte %x", b)
		}
		digits.WriteByte('0' + lo)
	}
	v, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return Result{}, fmt.Errorf("data-in: Z: %v", err)
	}
	if neg {
		v = -v
	}
	if spec.Decimals > 0 {
		v /= math.Pow10(spec.Decimals)
	}
	return numResult(v), nil
}

func reversed(b []byte) []byte {
	r := make([]byte, len(b))
	for i, c := range b {
		r[len(b)-1-i] = c
	}
	return r
}

func parseIB(field []byte, spec Spec, order ByteOrder, signed bool) (Result, error) {
	b := field
	if order == LittleEndian {
		b = reversed(b)
	}
	var u uint64
	for _, c := range b {
		u = u<<8 | uint64(c)
	}
	var v float64
	if signed {
		bits := uint(len(b) * 8)
		sv := int64(u)
		if bits < 64 && u&(1<<(bits-1)) != 0 {
			sv = int64(u) - int64(1<<bits)
		}
		v = float64(sv)
	} else {
		v = float64(u)
	}
	if spec.Decimals > 0 {
		v /= math.Pow10(spec.Decimals)
	}
	return numResult(v), nil
}

func parseHexInt(field []byte, spec Spec) (Result, error) {
	s := strings.TrimSpace(string(field))
	if len(s)%2 != 0 {
		return Result{}, fmt.Errorf("data-in: PIBHEX: odd length")
	}
	u, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return Result{}, fmt.Errorf("data-in: PIBHEX: %v", err)
	}
	return numResult(float64(u)), nil
}

func parsePacked(field []byte, spec Spec, hasSign bool) (Result, error) {
	var digits strings.Builder
	neg := false
	n := len(field)
	for i, b := range field {
		hi := b >> 4 & 0xF
		lo := b & 0xF
		if hasSign && i == n-1 {
			digits.WriteByte('0' + hi)
			if lo == 0xD {
				neg = true
			}
			continue
		}
		digits.WriteByte('0' + hi)
		digits.WriteByte('0' + lo)
	}
	v, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		return Result{}, fmt.Errorf("data-in: packed: %v", err)
	}
	if neg {
		v = -v
	}
	if spec.Decimals > 0 {
		v /= math.Pow10(spec.Decimals)
	}
	return numResult(v), nil
}

func parseRB(field []byte, spec Spec, order ByteOrder) (Result, error) {
	if len(field) < 8 {
		return Result{}, fmt.Errorf("data-in: RB: short field")
	}
	b := field[:8]
	var bits uint64
	if order == LittleEndian {
		bits = binary.LittleEndian.Uint64(b)
	} else {
		bits = binary.BigEndian.Uint64(b)
	}
	return numResult(math.Float64frombits(bits)), nil
}

func parseRBHex(field []byte, spec Spec) (Result, error) {
	s := strings.TrimSpace(string(field))
	raw, err := hexDecode(s)
	if err != nil || len(raw) < 8 {
		return Result{}, fmt.Errorf("data-in: RBHEX: bad hex")
	}
	bits := binary.BigEndian.Uint64(raw[:8])
	return numResult(math.Float64frombits(bits)), nil
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd length")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}

func parseAHex(field []byte, spec Spec) (Result, error) {
	s := strings.TrimSpace(string(field))
	if len(s)%2 != 0 {
		return Result{}, fmt.Errorf("data-in: AHEX: odd length")
	}
	raw, err := hexDecode(s)
	if err != nil {
		return Result{}, fmt.Errorf("data-in: AHEX: %v", err)
	}
	return strResult(raw), nil
}

func parseA(field []byte, spec Spec) (Result, error) {
	out := make([]byte, spec.Width)
	for i := range out {
		out[i] = ' '
	}
	copy(out, field)
	return strResult(out), nil
}

// monthNames and romanMonths are the English month names and Roman
// numerals that parseMonthToken maps case-insensitively to 1..12, per §4.3.
var monthNames = [...]string{"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december"}
var romanMonths = [...]string{"i", "ii", "iii", "iv", "v", "vi", "vii", "viii", "ix", "x", "xi", "xii"}

func parseMonthToken(tok string) (int, bool) {
	tok = strings.ToLower(tok)
	if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= 12 {
		return n, true
	}
	for i, r := range romanMonths {
		if tok == r {
			return i + 1, true
		}
	}
	for i, name := range monthNames {
		if strings.HasPrefix(name, tok) && len(tok) >= 3 {
			return i + 1, true
		}
	}
	return 0, false
}

func normalizeYear(y int) (int, error) {
	switch {
	case y >= 0 && y <= 199:
		return 1900 + y, nil
	case y >= 1582 && y <= 19999:
		return y, nil
	default:
		return 0, fmt.Errorf("year %d out of range", y)
	}
}

const dateDelims = "-/,. \t"

func tokenizeDate(s string) []string {
	var toks []string
	var cur strings.Builder
	for _, c := range s {
		if strings.ContainsRune(dateDelims, c) {
			if cur.Len() > 0 {
				toks = append(toks, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(c)
	}
	if cur.Len() > 0 {
		toks = append(toks, cur.String())
	}
	return toks
}

func daySecondsJulian(jd int) float64 {
	return float64(jd) * 86400
}

func parseDate(field []byte, spec Spec) (Result, error) {
	if isBlank(field) {
		return sysmisResult(), nil
	}
	s := strings.TrimSpace(string(field))
	toks := tokenizeDate(s)

	var y, m, d int
	var err error

	switch spec.Type {
	case DATE, ADATE, EDATE, SDATE:
		if len(toks) < 3 {
			return Result{}, fmt.Errorf("data-in: %s: expected 3 date components", spec)
		}
		order := [3]string{"d", "m", "y"}
		switch spec.Type {
		case ADATE:
			order = [3]string{"m", "d", "y"}
		case EDATE:
			order = [3]string{"d", "m", "y"}
		case SDATE:
			order = [3]string{"y", "m", "d"}
		}
		vals := map[string]int{}
		for i, role := range order {
			tok := toks[i]
			if role == "m" {
				mv, ok := parseMonthToken(tok)
				if !ok {
					return Result{}, fmt.Errorf("data-in: %s: bad month %q", spec, tok)
				}
				vals[role] = mv
			} else {
				iv, e := strconv.Atoi(tok)
				if e != nil {
					return Result{}, fmt.Errorf("data-in: %s: bad %s %q", spec, role, tok)
				}
				vals[role] = iv
			}
		}
		y, m, d = vals["y"], vals["m"], vals["d"]
		y, err = normalizeYear(y)
		if err != nil {
			return Result{}, fmt.Errorf("data-in: %s: %v", spec, err)
		}
		jd := calendar.ToJulian(y, m, d)
		return numResult(daySecondsJulian(jd)), nil
	case JDATE:
		if len(toks) < 1 {
			return Result{}, fmt.Errorf("data-in: JDATE: empty")
		}
		digits := toks[0]
		if len(digits) < 5 {
			return Result{}, fmt.Errorf("data-in: JDATE: too short")
		}
		yearLen := len(digits) - 3
		yv, e1 := strconv.Atoi(digits[:yearLen])
		dv, e2 := strconv.Atoi(digits[yearLen:])
		if e1 != nil || e2 != nil {
			return Result{}, fmt.Errorf("data-in: JDATE: bad number")
		}
		y, err = normalizeYear(yv)
		if err != nil {
			return Result{}, fmt.Errorf("data-in: JDATE: %v", err)
		}
		jd := calendar.ToJulian(y, 1, 1) + dv - 1
		return numResult(daySecondsJulian(jd)), nil
	case QYR:
		if len(toks) < 2 {
			return Result{}, fmt.Errorf("data-in: QYR: expected quarter and year")
		}
		qTok := strings.TrimSuffix(strings.ToLower(toks[0]), "q")
		q, e := strconv.Atoi(qTok)
		if e != nil || q < 1 || q > 4 {
			return Result{}, fmt.Errorf("data-in: QYR: bad quarter")
		}
		yv, e2 := strconv.Atoi(toks[1])
		if e2 != nil {
			return Result{}, fmt.Errorf("data-in: QYR: bad year")
		}
		y, err = normalizeYear(yv)
		if err != nil {
			return Result{}, fmt.Errorf("data-in: QYR: %v", err)
		}
		m = (q-1)*3 + 1
		jd := calendar.ToJulian(y, m, 1)
		return numResult(daySecondsJulian(jd)), nil
	case MOYR:
		if len(toks) < 2 {
			return Result{}, fmt.Errorf("data-in: MOYR: expected month and year")
		}
		mv, ok := parseMonthToken(toks[0])
		if !ok {
			return Result{}, fmt.Errorf("data-in: MOYR: bad month")
		}
		yv, e := strconv.Atoi(toks[1])
		if e != nil {
			return Result{}, fmt.Errorf("data-in: MOYR: bad year")
		}
		y, err = normalizeYear(yv)
		if err != nil {
			return Result{}, fmt.Errorf("data-in: MOYR: %v", err)
		}
		jd := calendar.ToJulian(y, mv, 1)
		return numResult(daySecondsJulian(jd)), nil
	case WKYR:
		if len(toks) < 2 {
			return Result{}, fmt.Errorf("data-in: WKYR: expected week and year")
		}
		wTok := strings.TrimSuffix(strings.ToLower(toks[0]), "wk")
		w, e := strconv.Atoi(wTok)
		if e != nil || w < 1 || w > 53 {
			return Result{}, fmt.Errorf("data-in: WKYR: bad week")
		}
		yv, e2 := strconv.Atoi(toks[1])
		if e2 != nil {
			return Result{}, fmt.Errorf("data-in: WKYR: bad year")
		}
		y, err = normalizeYear(yv)
		if err != nil {
			return Result{}, fmt.Errorf("data-in: WKYR: %v", err)
		}
		jd := calendar.ToJulian(y, 1, 1) + (w-1)*7
		return numResult(daySecondsJulian(jd)), nil
	}
	return Result{}, fmt.Errorf("data-in: unhandled date format %s", spec)
}

func parseTimeComponents(s string) (sign float64, hours, minutes int, seconds float64, err error) {
	sign = 1
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	toks := strings.FieldsFunc(s, func(r rune) bool { return r == ':' })
	if len(toks) < 2 {
		err = fmt.Errorf("expected HH:MM[:SS.sss]")
		return
	}
	hours, err = strconv.Atoi(toks[0])
	if err != nil {
		return
	}
	minutes, err = strconv.Atoi(toks[1])
	if err != nil {
		return
	}
	if len(toks) >= 3 {
		seconds, err = strconv.ParseFloat(toks[2], 64)
		if err != nil {
			return
		}
	}
	return
}

func parseTime(field []byte, spec Spec, withDays bool) (Result, error) {
	if isBlank(field) {
		return sysmisResult(), nil
	}
	s := strings.TrimSpace(string(field))
	days := 0
	if withDays {
		idx := strings.IndexAny(s, " \t")
		if idx < 0 {
			return Result{}, fmt.Errorf("data-in: DTIME: expected leading day count")
		}
		dv, err := strconv.Atoi(s[:idx])
		if err != nil {
			return Result{}, fmt.Errorf("data-in: DTIME: bad day count")
		}
		days = dv
		s = strings.TrimSpace(s[idx:])
	}
	sign, hh, mm, ss, err := parseTimeComponents(s)
	if err != nil {
		return Result{}, fmt.Errorf("data-in: TIME: %v", err)
	}
	total := sign * (float64(days)*86400 + float64(hh)*3600 + float64(mm)*60 + ss)
	return numResult(total), nil
}

func parseDatetime(field []byte, spec Spec) (Result, error) {
	if isBlank(field) {
		return sysmisResult(), nil
	}
	s := strings.TrimSpace(string(field))
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return Result{}, fmt.Errorf("data-in: DATETIME: expected date and time parts")
	}
	dateStr := s[:idx]
	timeStr := strings.TrimSpace(s[idx:])

	dateRes, err := parseDate([]byte(dateStr), Spec{Type: DATE})
	if err != nil {
		return Result{}, err
	}
	timeRes, err := parseTime([]byte(timeStr), Spec{Type: TIME}, false)
	if err != nil {
		return Result{}, err
	}
	return numResult(dateRes.Num + timeRes.Num), nil
}

func parseWkday(field []byte) (Result, error) {
	s := strings.ToLower(strings.TrimSpace(string(field)))
	if len(s) < 2 {
		return Result{}, fmt.Errorf("data-in: WKDAY: too short")
	}
	prefixes := []string{"su", "mo", "tu", "we", "th", "fr", "sa"}
	for i, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return numResult(float64(i + 1)), nil
		}
	}
	return Result{}, fmt.Errorf("data-in: WKDAY: unrecognized weekday %q", s)
}

func parseMonth(field []byte) (Result, error) {
	s := strings.TrimSpace(string(field))
	if mv, ok := parseMonthToken(s); ok {
		return numResult(float64(mv)), nil
	}
	return Result{}, fmt.Errorf("data-in: MONTH: unrecognized month %q", s)
}
