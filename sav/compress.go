package sav

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// Compression works in groups of up to 8 instruction bytes ("an
// instruction octet") followed by whatever raw flt64 elements those
// instructions required. Per instruction byte:
//
//	0           unused / end of octet padding
//	1..251      a biased integer: the instruction byte is
//	            value + compressionBias (covers small integers cheaply)
//	252         end of compressed data
//	253         the next 8 raw bytes are the literal element value
//	254         the element is 8 ASCII spaces (a blank string field)
//	255         the element is the numeric system-missing value
//
// Grounded on original_source/src/data/sys-file-writer.c's
// write_compressed_data/put_instruction/put_element.
const (
	instrEOF       = 252
	instrRaw       = 253
	instrSpaces    = 254
	instrSysmis    = 255
	instrMinBiased = 1
	instrMaxBiased = 251
)

// compressWriter buffers one instruction octet (8 bytes) plus the raw
// flt64 elements it refers to, flushing whenever the octet fills.
type compressWriter struct {
	w        *bufio.Writer
	instrs   [8]byte
	n        int
	elements [][8]byte
}

func newCompressWriter(w io.Writer) *compressWriter {
	return &compressWriter{w: bufio.NewWriterSize(w, 4096)}
}

func (c *compressWriter) flush() error {
	if c.n == 0 {
		return nil
	}
	if _, err := c.w.Write(c.instrs[:]); err != nil {
		return err
	}
	for _, e := range c.elements {
		if _, err := c.w.Write(e[:]); err != nil {
			return err
		}
	}
	for i := range c.instrs {
		c.instrs[i] = 0
	}
	c.n = 0
	c.elements = c.elements[:0]
	return nil
}

func (c *compressWriter) putInstr(b byte) error {
	c.instrs[c.n] = b
	c.n++
	if c.n == 8 {
		return c.flush()
	}
	return nil
}

// WriteNumeric compresses one numeric element.
func (c *compressWriter) WriteNumeric(f float64, sysmis bool) error {
	if sysmis {
		return c.putInstr(instrSysmis)
	}
	bits := int64(f) + int64(compressionBias)
	if float64(int64(f)) == f && bits >= instrMinBiased && bits <= instrMaxBiased {
		return c.putInstr(byte(bits))
	}
	return c.writeRaw(f)
}

// WriteElementBytes compresses one raw 8-byte string element.
func (c *compressWriter) WriteElementBytes(b [8]byte) error {
	if b == ([8]byte{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}) {
		return c.putInstr(instrSpaces)
	}
	return c.writeRawBytes(b)
}

func (c *compressWriter) writeRaw(f float64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	return c.writeRawBytes(b)
}

func (c *compressWriter) writeRawBytes(b [8]byte) error {
	if err := c.putInstr(instrRaw); err != nil {
		return err
	}
	c.elements = append(c.elements, b)
	return nil
}

// Close writes the EOF instruction and flushes all buffered data.
func (c *compressWriter) Close() error {
	if err := c.putInstr(instrEOF); err != nil {
		return err
	}
	if err := c.flush(); err != nil {
		return err
	}
	return c.w.Flush()
}

// compressReader is the mirror-image decompressor.
type compressReader struct {
	r      *bufio.Reader
	instrs [8]byte
	idx    int
	eof    bool
}

func newCompressReader(r io.Reader) *compressReader {
	return &compressReader{r: bufio.NewReaderSize(r, 4096), idx: 8}
}

func (c *compressReader) nextInstr() (byte, error) {
	if c.idx == 8 {
		if _, err := io.ReadFull(c.r, c.instrs[:]); err != nil {
			return 0, err
		}
		c.idx = 0
	}
	b := c.instrs[c.idx]
	c.idx++
	return b, nil
}

// ReadElement returns one decompressed element: raw is the 8-byte payload
// (valid for both numeric and string elements), and sysmis/eof flag the
// two special outcomes.
func (c *compressReader) ReadElement() (raw [8]byte, sysmis, eof bool, err error) {
	for {
		instr, err := c.nextInstr()
		if err != nil {
			return raw, false, false, err
		}
		switch {
		case instr == 0:
			continue
		case instr == instrEOF:
			return raw, false, true, nil
		case instr == instrRaw:
			if _, err := io.ReadFull(c.r, raw[:]); err != nil {
				return raw, false, false, err
			}
			return raw, false, false, nil
		case instr == instrSpaces:
			for i := range raw {
				raw[i] = ' '
			}
			return raw, false, false, nil
		case instr == instrSysmis:
			return raw, true, false, nil
		default:
			f := float64(int(instr) - compressionBias)
			binary.LittleEndian.PutUint64(raw[:], math.Float64bits(f))
			return raw, false, false, nil
		}
	}
}
