package sav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/mstgnz/pspp"
)

// Writer writes cases from a Dictionary to a SPSS System File.
type Writer struct {
	w          io.Writer
	dict       *pspp.Dictionary
	compress   bool
	flt64Count int
	cw         *compressWriter
	closed     bool
}

// Options controls how a Writer serializes a file.
type Options struct {
	Compress bool
}

// DefaultOptions matches sfm_writer_default_options: compressed output.
func DefaultOptions() Options { return Options{Compress: true} }

// NewWriter assigns short names on dict (mutating it, as the original
// writer does) and writes the complete header section, leaving w
// positioned to receive case data via WriteCase.
func NewWriter(w io.Writer, dict *pspp.Dictionary, opts Options) (*Writer, error) {
	dict.AssignShortNames()

	sw := &Writer{w: w, dict: dict, compress: opts.Compress}
	for _, v := range dict.Vars() {
		sw.flt64Count += flt64Count(v.Width)
	}

	if err := sw.writeHeader(); err != nil {
		return nil, err
	}
	if err := sw.writeVariableRecords(); err != nil {
		return nil, err
	}
	if err := sw.writeValueLabels(); err != nil {
		return nil, err
	}
	if err := sw.writeDocuments(); err != nil {
		return nil, err
	}
	if err := sw.writeDisplayParameters(); err != nil {
		return nil, err
	}
	if err := sw.writeLongVarNames(); err != nil {
		return nil, err
	}
	if err := sw.writeEndOfHeader(); err != nil {
		return nil, err
	}

	if sw.compress {
		sw.cw = newCompressWriter(w)
	}
	return sw, nil
}

func (w *Writer) writeHeader() error {
	var hdr header
	copy(hdr.RecType[:], magic)
	prod := "@(#) SPSS DATA FILE pspp-go"
	copy(hdr.ProdName[:], padRight(prod, len(hdr.ProdName)))
	hdr.LayoutCode = 2
	hdr.NominalCaseSize = int32(w.flt64Count)
	if w.compress {
		hdr.Compress = 1
	}
	if wv := w.dict.Weight; wv != nil {
		idx := int32(1)
		for _, v := range w.dict.Vars() {
			if v == wv {
				break
			}
			idx += int32(flt64Count(v.Width))
		}
		hdr.WeightIndex = idx
	}
	hdr.CaseCount = -1
	hdr.Bias = compressionBias

	now := sysfileTime()
	copy(hdr.CreationDate[:], padRight(now.Format("02 Jan 06"), len(hdr.CreationDate)))
	copy(hdr.CreationTime[:], padRight(now.Format("15:04:05"), len(hdr.CreationTime)))
	copy(hdr.FileLabel[:], padRight(w.dict.Label, len(hdr.FileLabel)))

	var buf bytes.Buffer
	fields := []any{
		hdr.RecType, hdr.ProdName, hdr.LayoutCode, hdr.NominalCaseSize,
		hdr.Compress, hdr.WeightIndex, hdr.CaseCount, hdr.Bias,
		hdr.CreationDate, hdr.CreationTime, hdr.FileLabel, hdr.Padding,
	}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	_, err := w.w.Write(buf.Bytes())
	return err
}

// sysfileTime is a seam so tests can avoid depending on wall-clock time;
// production callers get the real clock.
var sysfileTime = time.Now

func padRight(s string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	copy(b, s)
	if len(s) > n {
		copy(b, s[:n])
	}
	return b
}

func (w *Writer) writeVariableRecords() error {
	for _, v := range w.dict.Vars() {
		if err := w.writeOneVariable(v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeOneVariable(v *pspp.Variable) error {
	var sv sysfileVariable
	sv.RecType = recTypeVariable
	width := v.Width
	if width > 255 {
		width = 255
	}
	sv.Type = int32(width)
	if v.Label != "" {
		sv.HasVarLabel = 1
	}

	nm, missingBytes, err := w.encodeMissing(v)
	if err != nil {
		return err
	}
	sv.NMissingValues = int32(nm)
	sv.Print = packFormat(v.PrintFormat)
	sv.Write = packFormat(v.WriteFormat)
	copy(sv.Name[:], padRight(v.ShortName(), len(sv.Name)))

	if err := w.writeFixed(sv); err != nil {
		return err
	}
	if v.Label != "" {
		if err := w.writeLabel(v.Label); err != nil {
			return err
		}
	}
	if len(missingBytes) > 0 {
		if _, err := w.w.Write(missingBytes); err != nil {
			return err
		}
	}

	// Continuation records for strings wider than one flt64 slot.
	if v.IsNumeric() {
		return nil
	}
	cont := flt64Count(v.Width) - 1
	var blank sysfileVariable
	blank.RecType = recTypeVariable
	blank.Type = -1
	for i := 0; i < cont; i++ {
		if err := w.writeFixed(blank); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeFixed(sv sysfileVariable) error {
	var buf bytes.Buffer
	fields := []any{sv.RecType, sv.Type, sv.HasVarLabel, sv.NMissingValues, sv.Print, sv.Write, sv.Name}
	for _, f := range fields {
		if err := binary.Write(&buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	_, err := w.w.Write(buf.Bytes())
	return err
}

func (w *Writer) writeLabel(label string) error {
	if len(label) > 255 {
		label = label[:255]
	}
	extLen := roundUp(len(label), 4)
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(len(label)))
	b := make([]byte, extLen)
	copy(b, label)
	for i := len(label); i < extLen; i++ {
		b[i] = ' '
	}
	buf.Write(b)
	_, err := w.w.Write(buf.Bytes())
	return err
}

func roundUp(n, mult int) int {
	if n%mult == 0 {
		return n
	}
	return n + (mult - n%mult)
}

// encodeMissing returns the SAV n_missing_values field (negated when a
// range is present, per write_variable) and the little-endian flt64
// payload bytes that follow the variable record.
func (w *Writer) encodeMissing(v *pspp.Variable) (int, []byte, error) {
	mv := v.Missing
	var buf bytes.Buffer
	n := 0
	if mv.HasRange {
		lo, hi := mv.RangeLow, mv.RangeHigh
		if lo == pspp.Lowest {
			lo = math.Nextafter(-math.MaxFloat64, 0) // second-lowest flt64, per sys-file-writer.c
		}
		if hi == pspp.Highest {
			hi = math.MaxFloat64
		}
		binary.Write(&buf, binary.LittleEndian, lo)
		binary.Write(&buf, binary.LittleEndian, hi)
		n += 2
	}
	for _, d := range mv.Discrete {
		if v.IsNumeric() {
			binary.Write(&buf, binary.LittleEndian, d.Num)
		} else {
			var b [8]byte
			for i := range b {
				b[i] = ' '
			}
			copy(b[:], d.Str)
			buf.Write(b[:])
		}
		n++
	}
	if mv.HasRange {
		n = -n
	}
	return n, buf.Bytes(), nil
}

func (w *Writer) writeValueLabels() error {
	for idx, v := range w.dict.Vars() {
		if len(v.ValueLabels) == 0 {
			continue
		}
		var buf bytes.Buffer
		binary.Write(&buf, binary.LittleEndian, int32(recTypeValueLabel))
		binary.Write(&buf, binary.LittleEndian, int32(len(v.ValueLabels)))
		for key, label := range v.ValueLabels {
			if v.IsNumeric() {
				var f float64
				fmt.Sscanf(key, "%g", &f)
				binary.Write(&buf, binary.LittleEndian, f)
			} else {
				var b [8]byte
				for i := range b {
					b[i] = ' '
				}
				copy(b[:], key)
				buf.Write(b[:])
			}
			l := label
			if len(l) > 255 {
				l = l[:255]
			}
			buf.WriteByte(byte(len(l)))
			buf.WriteString(l)
			pad := roundUp(len(l)+1, 8) - (len(l) + 1)
			for i := 0; i < pad; i++ {
				buf.WriteByte(' ')
			}
		}
		if _, err := w.w.Write(buf.Bytes()); err != nil {
			return err
		}

		var idxBuf bytes.Buffer
		binary.Write(&idxBuf, binary.LittleEndian, int32(recTypeVarIndex))
		binary.Write(&idxBuf, binary.LittleEndian, int32(1))
		binary.Write(&idxBuf, binary.LittleEndian, int32(idx+1))
		if _, err := w.w.Write(idxBuf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeDocuments() error {
	if len(w.dict.Documents) == 0 {
		return nil
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(recTypeDocument))
	binary.Write(&buf, binary.LittleEndian, int32(len(w.dict.Documents)))
	for _, line := range w.dict.Documents {
		buf.Write(padRight(line, 80))
	}
	_, err := w.w.Write(buf.Bytes())
	return err
}

func (w *Writer) writeDisplayParameters() error {
	vars := w.dict.Vars()
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(recTypeExtension))
	binary.Write(&buf, binary.LittleEndian, int32(subtypeVarDisplay))
	binary.Write(&buf, binary.LittleEndian, int32(4))
	binary.Write(&buf, binary.LittleEndian, int32(len(vars)*3))
	for _, v := range vars {
		binary.Write(&buf, binary.LittleEndian, int32(v.Measure))
		binary.Write(&buf, binary.LittleEndian, int32(v.DispWidth))
		binary.Write(&buf, binary.LittleEndian, int32(v.Alignment))
	}
	_, err := w.w.Write(buf.Bytes())
	return err
}

func (w *Writer) writeLongVarNames() error {
	vars := w.dict.Vars()
	var names bytes.Buffer
	for i, v := range vars {
		if i > 0 {
			names.WriteByte('\t')
		}
		fmt.Fprintf(&names, "%s=%s", v.ShortName(), v.Name())
	}
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(recTypeExtension))
	binary.Write(&buf, binary.LittleEndian, int32(subtypeLongVarName))
	binary.Write(&buf, binary.LittleEndian, int32(1))
	binary.Write(&buf, binary.LittleEndian, int32(names.Len()))
	buf.Write(names.Bytes())
	_, err := w.w.Write(buf.Bytes())
	return err
}

func (w *Writer) writeEndOfHeader() error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(recTypeEndOfHeader))
	binary.Write(&buf, binary.LittleEndian, int32(0))
	_, err := w.w.Write(buf.Bytes())
	return err
}

// WriteCase appends one case's data, in dictionary variable order.
func (w *Writer) WriteCase(c pspp.Case) error {
	if w.closed {
		return fmt.Errorf("sav: write after Close")
	}
	for _, v := range w.dict.Vars() {
		val := c.Data(v)
		if v.IsNumeric() {
			if err := w.writeNumericSlot(val); err != nil {
				return err
			}
			continue
		}
		if err := w.writeStringSlots(val, v.Width); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeNumericSlot(val pspp.Value) error {
	sysmis := val.IsSysmis()
	if w.cw != nil {
		return w.cw.WriteNumeric(val.Num, sysmis)
	}
	return binary.Write(w.w, binary.LittleEndian, val.Num)
}

func (w *Writer) writeStringSlots(val pspp.Value, width int) error {
	n := flt64Count(width)
	for i := 0; i < n; i++ {
		var b [8]byte
		for j := range b {
			b[j] = ' '
		}
		start := i * 8
		if start < len(val.Str) {
			copy(b[:], val.Str[start:])
		}
		if w.cw != nil {
			if err := w.cw.WriteElementBytes(b); err != nil {
				return err
			}
		} else if _, err := w.w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// Close finalizes the compression stream, if any.
func (w *Writer) Close() error {
	w.closed = true
	if w.cw != nil {
		return w.cw.Close()
	}
	return nil
}
