// Package zip implements just enough of the ZIP container format to
// support the compressed system file (.zsav) container: a STORED-method
// writer (matching original_source's zip_writer_create/zip_writer_add,
// which never compresses its own output) and a reader that additionally
// understands DEFLATE members (original_source's zip-reader.c dispatches
// on the method code via its decompressors[] table; this package covers
// the STORED and DEFLATE entries of that table). Grounded on
// original_source/src/libpspp/zip-writer.c and zip-reader.c.
package zip

const (
	magicLocalHeader   = 0x04034b50
	magicCentralDir    = 0x02014b50
	magicEndOfCentral  = 0x06054b50
	magicDataDescriptor = 0x08074b50
)

const (
	methodStored  = 0
	methodDeflate = 8
)

// member records one ZIP entry's central-directory metadata, used by both
// Writer (to build the trailing central directory) and Reader (to list
// and randomly access entries).
type member struct {
	name    string
	offset  uint32
	size    uint32 // uncompressed size
	csize   uint32 // compressed size (== size for STORED)
	crc     uint32
	method  uint16
}
