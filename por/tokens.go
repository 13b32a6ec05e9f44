package por

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// scanner is the Portable File's character-at-a-time reader: it applies
// the 256-byte translation table built from the file header and skips
// CR/LF exactly like original_source's advance(). Rather than the
// original's setjmp/longjmp "bail out of the whole read" strategy, a
// scanner sets poisoned on the first error and every subsequent call
// becomes a no-op that keeps returning that same error (§9 open
// question: replace longjmp with an idiomatic error value).
type scanner struct {
	r     *bufio.Reader
	trans [256]byte
	transReady bool
	cc    byte

	poisoned bool
	err      error
}

func newScanner(r io.Reader) *scanner {
	return &scanner{r: bufio.NewReaderSize(r, 4096)}
}

// fail poisons the scanner and returns its error for the caller to
// propagate; once poisoned, advance is a permanent no-op.
func (s *scanner) fail(format string, args ...any) error {
	if !s.poisoned {
		s.poisoned = true
		s.err = fmt.Errorf("portable file corrupt: "+format, args...)
	}
	return s.err
}

func (s *scanner) advance() error {
	if s.poisoned {
		return s.err
	}
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return s.fail("unexpected end of file")
		}
		if b == '\r' || b == '\n' {
			continue
		}
		if s.transReady {
			b = s.trans[b]
		}
		s.cc = b
		return nil
	}
}

func (s *scanner) match(c byte) (bool, error) {
	if s.poisoned {
		return false, s.err
	}
	if s.cc == c {
		return true, s.advance()
	}
	return false, nil
}

// readFloat parses the base-30 floating-point syntax described by
// original_source's read_float: optional leading spaces, '*' for
// system-missing, an optional '-', base-30 digits with an optional '.',
// an optional signed base-30 exponent, and a terminating '/'.
func (s *scanner) readFloat() (float64, error) {
	for {
		m, err := s.match(' ')
		if err != nil {
			return 0, err
		}
		if !m {
			break
		}
	}
	if m, err := s.match('*'); err != nil {
		return 0, err
	} else if m {
		if err := s.advance(); err != nil {
			return 0, err
		}
		return sysmis, nil
	}

	negative, err := s.match('-')
	if err != nil {
		return 0, err
	}

	num := 0.0
	exponent := 0
	gotDot := false
	gotDigit := false
	for {
		digit := base30Value(s.cc)
		if digit != -1 {
			gotDigit = true
			if num > math.MaxFloat64*(1.0/30.0) {
				exponent++
			} else {
				num = num*30.0 + float64(digit)
			}
			if gotDot {
				exponent--
			}
		} else if !gotDot && s.cc == '.' {
			gotDot = true
		} else {
			break
		}
		if err := s.advance(); err != nil {
			return 0, err
		}
	}
	if !gotDigit {
		return 0, s.fail("number expected")
	}

	if s.cc == '+' || s.cc == '-' {
		negExp := s.cc == '-'
		if err := s.advance(); err != nil {
			return 0, err
		}
		exp := 0
		for {
			digit := base30Value(s.cc)
			if digit == -1 {
				break
			}
			exp = exp*30 + digit
			if err := s.advance(); err != nil {
				return 0, err
			}
		}
		if negExp {
			exp = -exp
		}
		exponent += exp
	}

	if m, err := s.match('/'); err != nil {
		return 0, err
	} else if !m {
		return 0, s.fail("missing numeric terminator")
	}

	if exponent < 0 {
		num *= math.Pow(30.0, float64(exponent))
	} else if exponent > 0 {
		num *= math.Pow(30.0, float64(exponent))
	}
	if negative {
		num = -num
	}
	return num, nil
}

// sysmis mirrors original_source's SYSMIS sentinel. It has the same value
// as pspp.Sysmis, so parseValue passes it into a pspp.Value unchanged.
const sysmis = -math.MaxFloat64

func (s *scanner) readInt() (int, error) {
	f, err := s.readFloat()
	if err != nil {
		return 0, err
	}
	if math.Floor(f) != f {
		return 0, s.fail("invalid integer")
	}
	return int(f), nil
}

// readString reads a length-prefixed string: a base-30 integer length
// followed by exactly that many raw (already-translated) characters.
func (s *scanner) readString() (string, error) {
	n, err := s.readInt()
	if err != nil {
		return "", err
	}
	if n < 0 || n > 255 {
		return "", s.fail("bad string length %d", n)
	}
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = s.cc
		if err := s.advance(); err != nil {
			return "", err
		}
	}
	return string(b), nil
}
