package pspp

// SortKey orders comparisons by one variable, ascending unless Descending.
type SortKey struct {
	Var        *Variable
	Descending bool
}

// Comparator compares cases by an ordered list of variables (supplemental,
// grounded on original_source src/data/case-ordering.h).
type Comparator struct {
	Keys []SortKey
}

// NewComparator builds a Comparator over the given ascending sort keys.
func NewComparator(vars ...*Variable) *Comparator {
	keys := make([]SortKey, len(vars))
	for i, v := range vars {
		keys[i] = SortKey{Var: v}
	}
	return &Comparator{Keys: keys}
}

// Compare returns -1, 0, or 1 comparing a and b over the comparator's
// keys in order.
func (c *Comparator) Compare(a, b Case) int {
	for _, k := range c.Keys {
		av, bv := a.Data(k.Var), b.Data(k.Var)
		var cmp int
		switch {
		case av.IsText:
			cmp = compareBytes(av.Str, bv.Str)
		case av.Num < bv.Num:
			cmp = -1
		case av.Num > bv.Num:
			cmp = 1
		default:
			cmp = 0
		}
		if k.Descending {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
