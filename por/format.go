package por

import "github.com/mstgnz/pspp/format"

// formatCodeToType maps a portable-file format code onto this module's
// format.Type (original_source's translate_fmt walks the same formats[]
// table the system-file writer uses to pack print/write specs; see
// pspp/sav's records.go spssCode table for the same numbering grounded
// the same way).
var formatCodeToType = map[int32]format.Type{
	1: format.A, 2: format.AHEX, 3: format.COMMA, 4: format.DOLLAR,
	5: format.F, 6: format.IB, 7: format.PIBHEX, 8: format.P,
	9: format.PIB, 10: format.PK, 11: format.RB, 12: format.RBHEX,
	15: format.Z, 16: format.N, 17: format.E, 20: format.DATE,
	21: format.TIME, 22: format.DATETIME, 23: format.ADATE, 24: format.JDATE,
	25: format.DTIME, 26: format.WKDAY, 27: format.MONTH, 28: format.MOYR,
	29: format.QYR, 30: format.WKYR, 31: format.PCT, 32: format.DOT,
	33: format.CCA, 34: format.CCB, 35: format.CCC, 36: format.CCD,
	37: format.CCE, 38: format.EDATE, 39: format.SDATE,
}

var reverseSpssCode = formatCodeToType
