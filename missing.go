package pspp

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseMissingValueSpec parses a small range grammar for missing-value and
// recode specifications (supplemental, grounded on original_source
// src/range-prs.c): "LOWEST THRU 5", "1 THRU HIGHEST", "1, 2, 3",
// "1 THRU 5", or a mix of up to 3 discrete values plus a range.
func ParseMissingValueSpec(s string) (MissingValues, error) {
	var mv MissingValues
	parts := strings.Split(s, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		upper := strings.ToUpper(p)
		if strings.Contains(upper, "THRU") {
			if mv.HasRange {
				return MissingValues{}, fmt.Errorf("range-prs: only one range is allowed")
			}
			bits := strings.SplitN(upper, "THRU", 2)
			if len(bits) != 2 {
				return MissingValues{}, fmt.Errorf("range-prs: malformed range %q", p)
			}
			lo, err := parseBound(strings.TrimSpace(bits[0]), Lowest)
			if err != nil {
				return MissingValues{}, err
			}
			hi, err := parseBound(strings.TrimSpace(bits[1]), Highest)
			if err != nil {
				return MissingValues{}, err
			}
			mv.HasRange = true
			mv.RangeLow = lo
			mv.RangeHigh = hi
			continue
		}
		if len(mv.Discrete) >= 3 {
			return MissingValues{}, fmt.Errorf("range-prs: at most 3 discrete missing values are allowed")
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return MissingValues{}, fmt.Errorf("range-prs: %q is not a number: %w", p, err)
		}
		mv.Discrete = append(mv.Discrete, NewNumericValue(v))
	}
	return mv, nil
}

func parseBound(tok string, openValue float64) (float64, error) {
	switch strings.ToUpper(tok) {
	case "LOWEST":
		return Lowest, nil
	case "HIGHEST":
		return Highest, nil
	case "":
		return openValue, nil
	default:
		return strconv.ParseFloat(tok, 64)
	}
}
