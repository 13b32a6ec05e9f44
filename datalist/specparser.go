package datalist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mstgnz/pspp/format"
)

// ParseFormatGroup expands a FORTRAN-like format-group grammar (§4.12) —
// "fmt1, count*fmt2, (nested), X, T(col), /" — into one FieldSpec per
// name in varNames, assigning record numbers and column ranges as the
// grammar implies. Grounded on original_source src/data-list.c's
// parse_fixed_arrangement/dls_fixed_table driver, which walks the same
// grammar to lay out fixed-column fields.
func ParseFormatGroup(varNames []string, grammar string) ([]FieldSpec, error) {
	toks, err := lexFormatGroup(grammar)
	if err != nil {
		return nil, err
	}
	p := &groupParser{toks: toks, names: varNames, col: 1, rec: 1}
	if err := p.parseGroups(); err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("datalist: unexpected %q in format group", p.toks[p.pos])
	}
	if p.nameIdx != len(varNames) {
		return nil, fmt.Errorf("datalist: format group describes %d variable(s), expected %d", p.nameIdx, len(varNames))
	}
	return p.out, nil
}

type groupParser struct {
	toks    []string
	pos     int
	names   []string
	nameIdx int
	col     int
	rec     int
	out     []FieldSpec
}

// parseGroups consumes comma/space-separated items until ")" or end of
// input, per FORTRAN-style format-group nesting.
func (p *groupParser) parseGroups() error {
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		if tok == ")" {
			return nil
		}
		if tok == "/" {
			p.pos++
			p.rec++
			p.col = 1
			continue
		}
		count := 1
		if n, ok := repeatCount(tok); ok {
			count = n
			p.pos++
			if p.pos >= len(p.toks) {
				return fmt.Errorf("datalist: format group ends after repeat count %d*", count)
			}
			tok = p.toks[p.pos]
		}
		switch {
		case tok == "(":
			p.pos++
			for i := 0; i < count; i++ {
				save := p.pos
				if err := p.parseGroups(); err != nil {
					return err
				}
				if i < count-1 {
					p.pos = save
				}
			}
			if p.pos >= len(p.toks) || p.toks[p.pos] != ")" {
				return fmt.Errorf("datalist: missing closing parenthesis in format group")
			}
			p.pos++
		default:
			p.pos++
			for i := 0; i < count; i++ {
				if err := p.applySpec(tok); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// applySpec interprets one format-spec token: X skips columns, T jumps to
// an absolute column, and anything else consumes the next variable name
// and occupies spec.Width columns of the current record.
func (p *groupParser) applySpec(specTok string) error {
	spec, err := format.Parse(specTok)
	if err != nil {
		return fmt.Errorf("datalist: %w", err)
	}
	switch spec.Type {
	case format.X:
		p.col += spec.Width
		return nil
	case format.T:
		p.col = spec.Width
		return nil
	}
	if p.nameIdx >= len(p.names) {
		return fmt.Errorf("datalist: format group names more fields than variables supplied")
	}
	name := p.names[p.nameIdx]
	p.nameIdx++
	p.out = append(p.out, FieldSpec{
		Name:     name,
		Rec:      p.rec,
		FirstCol: p.col,
		LastCol:  p.col + spec.Width - 1,
		Format:   spec,
	})
	p.col += spec.Width
	return nil
}

// repeatCount reports whether tok is a "N*" repeat-count token.
func repeatCount(tok string) (int, bool) {
	if !strings.HasSuffix(tok, "*") {
		return 0, false
	}
	n, err := strconv.Atoi(tok[:len(tok)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// lexFormatGroup tokenizes the grammar into "(", ")", "/", "N*" repeat
// markers, and format-spec words like "F8.2" or "T5".
func lexFormatGroup(s string) ([]string, error) {
	var toks []string
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case c == '(' || c == ')' || c == '/':
			toks = append(toks, string(c))
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j < len(s) && s[j] == '*' {
				toks = append(toks, s[i:j+1])
				i = j + 1
			} else {
				return nil, fmt.Errorf("datalist: bare number %q in format group (expected N*)", s[i:j])
			}
		case isAlpha(c):
			j := i
			for j < len(s) && isAlpha(s[j]) {
				j++
			}
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j < len(s) && s[j] == '.' {
				j++
				for j < len(s) && s[j] >= '0' && s[j] <= '9' {
					j++
				}
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			return nil, fmt.Errorf("datalist: unexpected character %q in format group", c)
		}
	}
	return toks, nil
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
