package zip

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/mstgnz/pspp/logger"
	"github.com/mstgnz/pspp/perr"
	"github.com/mstgnz/pspp/telemetry"
)

// Reader parses a ZIP container's central directory and gives random
// access to each member's uncompressed content, transparently inflating
// DEFLATE members (original_source zip-reader.c's decompressors[] table).
// Every member's content is verified against its stored CRC32 before it
// is handed back, matching zip-reader.c's check_crc.
type Reader struct {
	ra      io.ReaderAt
	members []member
	metrics *telemetry.Metrics
	log     *logger.Logger
}

// OpenReader scans ra's central directory (found by walking backward from
// the end-of-central-directory record) and returns a Reader.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	eocd, err := findEOCD(ra, size)
	if err != nil {
		return nil, err
	}
	nEntries := binary.LittleEndian.Uint16(eocd[10:12])
	dirSize := binary.LittleEndian.Uint32(eocd[12:16])
	dirStart := binary.LittleEndian.Uint32(eocd[16:20])

	buf := make([]byte, dirSize)
	if _, err := ra.ReadAt(buf, int64(dirStart)); err != nil {
		return nil, fmt.Errorf("zip: reading central directory: %w", err)
	}

	r := &Reader{ra: ra}
	off := 0
	for i := 0; i < int(nEntries); i++ {
		if off+46 > len(buf) {
			return nil, fmt.Errorf("zip: truncated central directory")
		}
		if binary.LittleEndian.Uint32(buf[off:off+4]) != magicCentralDir {
			return nil, perr.New(perr.CategoryCorruption, perr.SeverityFatal, "bad central directory signature", nil)
		}
		method := binary.LittleEndian.Uint16(buf[off+10 : off+12])
		crc := binary.LittleEndian.Uint32(buf[off+16 : off+20])
		csize := binary.LittleEndian.Uint32(buf[off+20 : off+24])
		usize := binary.LittleEndian.Uint32(buf[off+24 : off+28])
		nameLen := int(binary.LittleEndian.Uint16(buf[off+28 : off+30]))
		extraLen := int(binary.LittleEndian.Uint16(buf[off+30 : off+32]))
		commentLen := int(binary.LittleEndian.Uint16(buf[off+32 : off+34]))
		localOffset := binary.LittleEndian.Uint32(buf[off+42 : off+46])
		nameStart := off + 46
		name := string(buf[nameStart : nameStart+nameLen])
		r.members = append(r.members, member{
			name: name, offset: localOffset, size: usize, csize: csize,
			crc: crc, method: method,
		})
		off = nameStart + nameLen + extraLen + commentLen
	}
	return r, nil
}

func findEOCD(ra io.ReaderAt, size int64) ([22]byte, error) {
	var buf [22]byte
	maxScan := int64(22 + 65536)
	if maxScan > size {
		maxScan = size
	}
	tail := make([]byte, maxScan)
	if _, err := ra.ReadAt(tail, size-maxScan); err != nil && err != io.EOF {
		return buf, fmt.Errorf("zip: reading trailer: %w", err)
	}
	for i := len(tail) - 22; i >= 0; i-- {
		if binary.LittleEndian.Uint32(tail[i:i+4]) == magicEndOfCentral {
			copy(buf[:], tail[i:i+22])
			return buf, nil
		}
	}
	return buf, perr.New(perr.CategoryCorruption, perr.SeverityFatal, "end-of-central-directory record not found", nil)
}

// UseMetrics attaches a counter collector; CRC32 mismatches detected by
// readMember increment its ZIPCRCFailures counter. Optional: a Reader
// with no attached Metrics still verifies CRCs, it just doesn't record
// the failure anywhere but the returned error.
func (r *Reader) UseMetrics(m *telemetry.Metrics) { r.metrics = m }

// UseLogger attaches a logger; readMember warns through it alongside any
// attached Metrics when a member fails its CRC32 check.
func (r *Reader) UseLogger(l *logger.Logger) { r.log = l }

// Names lists every member's path within the archive.
func (r *Reader) Names() []string {
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.name
	}
	return names
}

// Open returns the uncompressed content of the named member.
func (r *Reader) Open(name string) ([]byte, error) {
	for _, m := range r.members {
		if m.name == name {
			return r.readMember(m)
		}
	}
	return nil, fmt.Errorf("zip: no such member %q", name)
}

func (r *Reader) readMember(m member) ([]byte, error) {
	var lhdr [30]byte
	if _, err := r.ra.ReadAt(lhdr[:], int64(m.offset)); err != nil {
		return nil, fmt.Errorf("zip: reading local header: %w", err)
	}
	if binary.LittleEndian.Uint32(lhdr[0:4]) != magicLocalHeader {
		return nil, perr.New(perr.CategoryCorruption, perr.SeverityFatal, "bad local file header signature", nil)
	}
	nameLen := int(binary.LittleEndian.Uint16(lhdr[26:28]))
	extraLen := int(binary.LittleEndian.Uint16(lhdr[28:30]))
	dataStart := int64(m.offset) + 30 + int64(nameLen) + int64(extraLen)

	raw := make([]byte, m.csize)
	if _, err := r.ra.ReadAt(raw, dataStart); err != nil {
		return nil, fmt.Errorf("zip: reading member data: %w", err)
	}

	var out []byte
	switch m.method {
	case methodStored:
		out = raw
	case methodDeflate:
		inflated, err := inflateRaw(raw, int(m.size))
		if err != nil {
			return nil, err
		}
		out = inflated
	default:
		return nil, fmt.Errorf("zip: unsupported compression method %d", m.method)
	}

	if got := crc32.ChecksumIEEE(out); got != m.crc {
		if r.metrics != nil {
			r.metrics.IncrementZIPCRCFailures()
		}
		if r.log != nil {
			r.log.Error("zip member failed CRC32 check", map[string]interface{}{
				"member": m.name,
				"got":    fmt.Sprintf("%08x", got),
				"want":   fmt.Sprintf("%08x", m.crc),
			})
		}
		return nil, perr.New(perr.CategoryCorruption, perr.SeverityFatal,
			fmt.Sprintf("zip: member %q failed CRC32 check: got %08x, want %08x", m.name, got, m.crc), nil)
	}
	return out, nil
}

// bytesReaderAt adapts a []byte to io.ReaderAt for tests/small in-memory
// archives.
func BytesReaderAt(b []byte) io.ReaderAt { return bytes.NewReader(b) }
