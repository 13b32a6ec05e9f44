package por

// portableToLocal maps each of the 256 translated portable-file character
// codes onto its local-charset rune, mirroring original_source
// src/data/por-file-reader.c's portable_to_local table.
const portableToLocal = "" +
	"                                                                " +
	"0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz ." +
	"<(+|&[]!$*);^-/|,%_>?`:$@'=\"      ~-   0123456789   -() {}\\     " +
	"                                                                "

// base30Digits is the alphabet used by read_float/read_int.
const base30Digits = "0123456789ABCDEFGHIJKLMNOPQRST"

// base30Value returns the value of base-30 digit c, or -1 if c is not one.
func base30Value(c byte) int {
	for i := 0; i < len(base30Digits); i++ {
		if base30Digits[i] == c {
			return i
		}
	}
	return -1
}
