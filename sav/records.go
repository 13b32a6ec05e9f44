// Package sav implements the SPSS System File (.sav) binary format: the
// fixed-layout header, and the file, variable, value-label, document, and
// extension (type-7) records that precede the case data, plus the
// bias-and-instruction-byte compression scheme. Grounded on
// original_source/src/data/sys-file-writer.c and sys-file-reader.h.
package sav

import "github.com/mstgnz/pspp/format"

// compressionBias is the constant PSPP always writes and expects
// (sys-file-writer.c: COMPRESSION_BIAS).
const compressionBias = 100

// magic is the first four bytes of every system file.
const magic = "$FL2"

// header mirrors struct sysfile_header byte-for-byte (176 bytes).
type header struct {
	RecType         [4]byte  // "$FL2"
	ProdName        [60]byte // product banner, space-padded
	LayoutCode      int32    // 2
	NominalCaseSize int32    // number of flt64 (8-byte) elements per case
	Compress        int32    // 0 or 1
	WeightIndex     int32    // 1-based flt64 index of weight var, or 0
	CaseCount       int32    // -1 if unknown
	Bias            float64  // compressionBias
	CreationDate    [9]byte  // "dd mon yy"
	CreationTime    [8]byte  // "hh:mm:ss"
	FileLabel       [64]byte // space-padded
	Padding         [3]byte
}

// sysfileVariable mirrors struct sysfile_variable (type-2 record), 28
// fixed bytes followed by an optional label and missing values.
type sysfileVariable struct {
	RecType        int32 // always 2
	Type           int32 // 0=numeric, -1=string continuation, N=string width (<=255)
	HasVarLabel    int32 // 0 or 1
	NMissingValues int32 // 0..3, or negative if a range is present
	Print          int32 // packed format spec
	Write          int32 // packed format spec
	Name           [8]byte
}

// spssCode maps a format.Type to the numeric code used inside a packed
// SAV format int32. This table is the standard SPSS system-file format
// type numbering (not present in the retrieved original_source excerpt,
// which lacks format.def; reproduced from the well-known SPSS sysfile
// format code assignments that every compatible reader/writer uses).
var spssCode = map[format.Type]int32{
	format.A:        1,
	format.AHEX:     2,
	format.COMMA:    3,
	format.DOLLAR:   4,
	format.F:        5,
	format.IB:       6,
	format.PIBHEX:   7,
	format.P:        8,
	format.PIB:      9,
	format.PK:       10,
	format.RB:       11,
	format.RBHEX:    12,
	format.Z:        15,
	format.N:        16,
	format.E:        17,
	format.DATE:     20,
	format.TIME:     21,
	format.DATETIME: 22,
	format.ADATE:    23,
	format.JDATE:    24,
	format.DTIME:    25,
	format.WKDAY:    26,
	format.MONTH:    27,
	format.MOYR:     28,
	format.QYR:      29,
	format.WKYR:     30,
	format.PCT:      31,
	format.DOT:      32,
	format.CCA:      33,
	format.CCB:      34,
	format.CCC:      35,
	format.CCD:      36,
	format.CCE:      37,
	format.EDATE:    38,
	format.SDATE:    39,
}

var spssCodeToType = func() map[int32]format.Type {
	m := make(map[int32]format.Type, len(spssCode))
	for t, c := range spssCode {
		m[c] = t
	}
	return m
}()

// packFormat packs a format.Spec into the int32 layout SAV uses:
// (spssType << 16) | (width << 8) | decimals.
func packFormat(spec format.Spec) int32 {
	return (spssCode[spec.Type] << 16) | (int32(spec.Width) << 8) | int32(spec.Decimals)
}

// unpackFormat is the inverse of packFormat.
func unpackFormat(n int32) format.Spec {
	t := spssCodeToType[(n>>16)&0xff]
	return format.Spec{Type: t, Width: int((n >> 8) & 0xff), Decimals: int(n & 0xff)}
}

// Record type codes, as written after the variable records.
const (
	recTypeVariable    = 2
	recTypeValueLabel  = 3
	recTypeVarIndex    = 4
	recTypeDocument    = 6
	recTypeExtension   = 7
	recTypeEndOfHeader = 999
)

// Extension (type 7) record subtypes this package understands.
const (
	subtypeVarDisplay  = 11
	subtypeLongVarName = 13
	subtypeVeryLongStr = 14
)

// maxShortString is the SAV field width (8 bytes = 1 flt64 element) that a
// "short" string variable occupies without continuation records.
const maxShortString = 8

// flt64Count returns how many 8-byte slots a variable of the given case
// storage width occupies in a system file record (numeric: always 1).
func flt64Count(width int) int {
	if width == 0 {
		return 1
	}
	return (width + maxShortString - 1) / maxShortString
}
