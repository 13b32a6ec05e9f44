package zip

import (
	"encoding/binary"
	"hash/crc32"
	"io"
	"time"
)

// Writer appends STORED (uncompressed) members to a ZIP container,
// tracking each member's offset/size/crc to emit the trailing central
// directory on Close, exactly as zip_writer_add/zip_writer_close do.
type Writer struct {
	w        io.Writer
	offset   uint32
	members  []member
	dosDate  uint16
	dosTime  uint16
	clock    func() time.Time
}

// NewWriter wraps w. The clock is sampled once for every member's
// modification timestamp, matching the original's one-timestamp-per-file
// behavior.
func NewWriter(w io.Writer) *Writer {
	now := time.Now()
	return &Writer{w: w, dosDate: dosDate(now), dosTime: dosTimeOf(now)}
}

func dosDate(t time.Time) uint16 {
	return uint16(t.Day() + (int(t.Month()) << 5) + ((t.Year() - 1980) << 9))
}

func dosTimeOf(t time.Time) uint16 {
	return uint16(t.Second()/2 + (t.Minute() << 5) + (t.Hour() << 11))
}

type countingWriter struct {
	w io.Writer
	n uint32
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint32(n)
	return n, err
}

// Add writes one STORED member with the given name and full content.
func (zw *Writer) Add(name string, data []byte) error {
	crc := crc32.ChecksumIEEE(data)
	offset := zw.offset
	if err := zw.putLocalHeader(name, crc, uint32(len(data))); err != nil {
		return err
	}
	if _, err := zw.w.Write(data); err != nil {
		return err
	}
	zw.offset += uint32(len(data))
	zw.members = append(zw.members, member{
		name: name, offset: offset, size: uint32(len(data)),
		csize: uint32(len(data)), crc: crc, method: methodStored,
	})
	return nil
}

func (zw *Writer) putLocalHeader(name string, crc, size uint32) error {
	var hdr [30]byte
	binary.LittleEndian.PutUint32(hdr[0:4], magicLocalHeader)
	binary.LittleEndian.PutUint16(hdr[4:6], 10) // version needed
	binary.LittleEndian.PutUint16(hdr[6:8], 0)  // flags
	binary.LittleEndian.PutUint16(hdr[8:10], methodStored)
	binary.LittleEndian.PutUint16(hdr[10:12], zw.dosTime)
	binary.LittleEndian.PutUint16(hdr[12:14], zw.dosDate)
	binary.LittleEndian.PutUint32(hdr[14:18], crc)
	binary.LittleEndian.PutUint32(hdr[18:22], size)
	binary.LittleEndian.PutUint32(hdr[22:26], size)
	binary.LittleEndian.PutUint16(hdr[26:28], uint16(len(name)))
	binary.LittleEndian.PutUint16(hdr[28:30], 0)
	if _, err := zw.w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := io.WriteString(zw.w, name)
	zw.offset += 30 + uint32(len(name))
	return err
}

// Close writes the central directory and end-of-central-directory record.
func (zw *Writer) Close() error {
	dirStart := zw.offset
	cw := &countingWriter{w: zw.w}
	for _, m := range zw.members {
		if err := zw.putCentralEntry(cw, m); err != nil {
			return err
		}
	}
	zw.offset += cw.n
	dirSize := zw.offset - dirStart

	var eocd [22]byte
	binary.LittleEndian.PutUint32(eocd[0:4], magicEndOfCentral)
	binary.LittleEndian.PutUint16(eocd[4:6], 0)
	binary.LittleEndian.PutUint16(eocd[6:8], 0)
	binary.LittleEndian.PutUint16(eocd[8:10], uint16(len(zw.members)))
	binary.LittleEndian.PutUint16(eocd[10:12], uint16(len(zw.members)))
	binary.LittleEndian.PutUint32(eocd[12:16], dirSize)
	binary.LittleEndian.PutUint32(eocd[16:20], dirStart)
	binary.LittleEndian.PutUint16(eocd[20:22], 0)
	_, err := zw.w.Write(eocd[:])
	return err
}

func (zw *Writer) putCentralEntry(w io.Writer, m member) error {
	var hdr [46]byte
	binary.LittleEndian.PutUint32(hdr[0:4], magicCentralDir)
	binary.LittleEndian.PutUint16(hdr[4:6], 63)
	binary.LittleEndian.PutUint16(hdr[6:8], 10)
	binary.LittleEndian.PutUint16(hdr[8:10], 0)
	binary.LittleEndian.PutUint16(hdr[10:12], methodStored)
	binary.LittleEndian.PutUint16(hdr[12:14], zw.dosTime)
	binary.LittleEndian.PutUint16(hdr[14:16], zw.dosDate)
	binary.LittleEndian.PutUint32(hdr[16:20], m.crc)
	binary.LittleEndian.PutUint32(hdr[20:24], m.size)
	binary.LittleEndian.PutUint32(hdr[24:28], m.size)
	binary.LittleEndian.PutUint16(hdr[28:30], uint16(len(m.name)))
	binary.LittleEndian.PutUint32(hdr[42:46], m.offset)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, m.name)
	return err
}
