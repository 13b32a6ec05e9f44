package sav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/logger"
	"github.com/mstgnz/pspp/perr"
)

// Reader reads cases and dictionary metadata from a SPSS System File.
type Reader struct {
	r        *bufio.Reader
	dict     *pspp.Dictionary
	compress bool
	cr       *compressReader
	log      *logger.Logger

	// slots holds one entry per on-disk flt64 slot: the Variable it
	// belongs to (nil for a string-continuation slot) and whether this
	// slot starts a new variable's value.
	slots []readerSlot
}

// UseLogger attaches a logger; readExtension warns through it whenever
// it skips a type-7 record subtype this package doesn't interpret.
func (r *Reader) UseLogger(l *logger.Logger) { r.log = l }

type readerSlot struct {
	v     *pspp.Variable
	first bool // true if this is the first slot of v (holds its value)
}

// Open parses the header and all metadata records, building a Dictionary,
// and returns a Reader positioned at the start of the case data.
func Open(r io.Reader) (*Reader, error) {
	sr := &Reader{r: bufio.NewReaderSize(r, 65536), dict: pspp.NewDictionary()}
	var hdr header
	if err := sr.readHeader(&hdr); err != nil {
		return nil, err
	}
	sr.compress = hdr.Compress != 0

	type rawVar struct {
		sv    sysfileVariable
		label string
		miss  []float64
	}
	var raws []rawVar
	longNames := map[string]string{}

loop:
	for {
		recType, err := sr.readInt32()
		if err != nil {
			return nil, err
		}
		switch recType {
		case recTypeVariable:
			sv, err := sr.readVariableRecord()
			if err != nil {
				return nil, err
			}
			rv := rawVar{sv: sv}
			if sv.HasVarLabel != 0 {
				lbl, err := sr.readLabel()
				if err != nil {
					return nil, err
				}
				rv.label = lbl
			}
			n := int(sv.NMissingValues)
			if n < 0 {
				n = -n
			}
			for i := 0; i < n; i++ {
				var f float64
				if err := binary.Read(sr.r, binary.LittleEndian, &f); err != nil {
					return nil, err
				}
				rv.miss = append(rv.miss, f)
			}
			raws = append(raws, rv)
		case recTypeValueLabel:
			if err := sr.skipValueLabelRecord(); err != nil {
				return nil, err
			}
		case recTypeDocument:
			if err := sr.readDocuments(); err != nil {
				return nil, err
			}
		case recTypeExtension:
			ln, err := sr.readExtension()
			if err != nil {
				return nil, err
			}
			if ln != nil {
				for k, v := range ln {
					longNames[k] = v
				}
			}
		case recTypeEndOfHeader:
			if _, err := sr.readInt32(); err != nil { // filler
				return nil, err
			}
			break loop
		default:
			return nil, fmt.Errorf("sav: unrecognized record type %d", recType)
		}
	}

	sr.buildDictionary(raws, longNames)

	if sr.compress {
		sr.cr = newCompressReader(sr.r)
	}
	return sr, nil
}

func (r *Reader) readHeader(hdr *header) error {
	fields := []any{
		&hdr.RecType, &hdr.ProdName, &hdr.LayoutCode, &hdr.NominalCaseSize,
		&hdr.Compress, &hdr.WeightIndex, &hdr.CaseCount, &hdr.Bias,
		&hdr.CreationDate, &hdr.CreationTime, &hdr.FileLabel, &hdr.Padding,
	}
	for _, f := range fields {
		if err := binary.Read(r.r, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("sav: reading header: %w", err)
		}
	}
	if string(hdr.RecType[:]) != magic {
		return perr.New(perr.CategoryCorruption, perr.SeverityFatal,
			"not a system file", nil).WithContext("magic", string(hdr.RecType[:]))
	}
	return nil
}

func (r *Reader) readInt32() (int32, error) {
	var n int32
	err := binary.Read(r.r, binary.LittleEndian, &n)
	return n, err
}

func (r *Reader) readVariableRecord() (sysfileVariable, error) {
	var sv sysfileVariable
	fields := []any{&sv.Type, &sv.HasVarLabel, &sv.NMissingValues, &sv.Print, &sv.Write, &sv.Name}
	for _, f := range fields {
		if err := binary.Read(r.r, binary.LittleEndian, f); err != nil {
			return sv, err
		}
	}
	sv.RecType = recTypeVariable
	return sv, nil
}

func (r *Reader) readLabel() (string, error) {
	var n int32
	if err := binary.Read(r.r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	extLen := roundUp(int(n), 4)
	b := make([]byte, extLen)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return "", err
	}
	return string(b[:n]), nil
}

func (r *Reader) skipValueLabelRecord() error {
	n, err := r.readInt32()
	if err != nil {
		return err
	}
	for i := int32(0); i < n; i++ {
		var buf [8]byte
		if _, err := io.ReadFull(r.r, buf[:]); err != nil {
			return err
		}
		var lenByte [1]byte
		if _, err := io.ReadFull(r.r, lenByte[:]); err != nil {
			return err
		}
		labelLen := int(lenByte[0])
		rest := roundUp(labelLen+1, 8) - 1
		if _, err := io.CopyN(io.Discard, r.r, int64(rest)); err != nil {
			return err
		}
	}
	// Followed by a type-4 variable-index record.
	recType, err := r.readInt32()
	if err != nil {
		return err
	}
	if recType != recTypeVarIndex {
		return fmt.Errorf("sav: expected record type 4 after value labels, got %d", recType)
	}
	nVars, err := r.readInt32()
	if err != nil {
		return err
	}
	_, err = io.CopyN(io.Discard, r.r, int64(nVars)*4)
	return err
}

func (r *Reader) readDocuments() error {
	n, err := r.readInt32()
	if err != nil {
		return err
	}
	buf := make([]byte, 80)
	for i := int32(0); i < n; i++ {
		if _, err := io.ReadFull(r.r, buf); err != nil {
			return err
		}
		r.dict.Documents = append(r.dict.Documents, strings.TrimRight(string(buf), " "))
	}
	return nil
}

// readExtension reads one type-7 record, honoring the subtypes this
// package understands and skipping the rest; it returns a short-name ->
// long-name map when it reads the long-variable-names subtype.
func (r *Reader) readExtension() (map[string]string, error) {
	subtype, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	elemSize, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	nElem, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	total := int64(elemSize) * int64(nElem)

	if subtype == subtypeLongVarName {
		b := make([]byte, total)
		if _, err := io.ReadFull(r.r, b); err != nil {
			return nil, err
		}
		m := map[string]string{}
		for _, pair := range strings.Split(string(b), "\t") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) == 2 {
				m[kv[0]] = kv[1]
			}
		}
		return m, nil
	}

	if r.log != nil {
		r.log.Warn("skipping unrecognized system file extension record", map[string]interface{}{
			"record_type": recTypeExtension,
			"subtype":     subtype,
			"offset":      total,
		})
	}
	_, err = io.CopyN(io.Discard, r.r, total)
	return nil, err
}

func (r *Reader) buildDictionary(raws []struct {
	sv    sysfileVariable
	label string
	miss  []float64
}, longNames map[string]string) {
	for _, rv := range raws {
		if rv.sv.Type == -1 {
			// String continuation slot: extends the previous variable.
			r.slots = append(r.slots, readerSlot{v: nil, first: false})
			continue
		}
		shortName := strings.TrimRight(string(rv.sv.Name[:]), " ")
		name := shortName
		if ln, ok := longNames[shortName]; ok {
			name = ln
		}
		width := int(rv.sv.Type)
		v, err := r.dict.AddVar(name, width)
		if err != nil {
			// Duplicate short name collapsed after long-name substitution;
			// fall back to the short name, which AssignShortNames already
			// guaranteed unique at write time.
			v, err = r.dict.AddVar(shortName, width)
			if err != nil {
				continue
			}
		}
		v.Label = rv.label
		v.PrintFormat = unpackFormat(rv.sv.Print)
		v.WriteFormat = unpackFormat(rv.sv.Write)

		n := int(rv.sv.NMissingValues)
		hasRange := n < 0
		if hasRange {
			n = -n
		}
		idx := 0
		if hasRange {
			lo, hi := rv.miss[0], rv.miss[1]
			if lo <= -math.MaxFloat64/2 {
				lo = pspp.Lowest
			}
			if hi >= math.MaxFloat64/2 {
				hi = pspp.Highest
			}
			v.Missing.HasRange = true
			v.Missing.RangeLow = lo
			v.Missing.RangeHigh = hi
			idx = 2
		}
		for ; idx < n; idx++ {
			v.Missing.Discrete = append(v.Missing.Discrete, pspp.NewNumericValue(rv.miss[idx]))
		}

		r.slots = append(r.slots, readerSlot{v: v, first: true})

		for i := 1; i < flt64Count(width); i++ {
			r.slots = append(r.slots, readerSlot{v: v, first: false})
		}
	}
}

// Dict returns the dictionary parsed from the file header.
func (r *Reader) Dict() *pspp.Dictionary { return r.dict }

// ReadCase reads the next case, or returns the null Case at end of file.
func (r *Reader) ReadCase() (pspp.Case, error) {
	c := pspp.NewCase(r.dict.NextValueIndex())
	gotAny := false
	strBufs := map[*pspp.Variable][]byte{}
	strOffsets := map[*pspp.Variable]int{}

	for _, slot := range r.slots {
		raw, sysmis, eof, err := r.readSlotBytes()
		if err != nil {
			if err == io.EOF && !gotAny {
				return pspp.Case{}, nil
			}
			return pspp.Case{}, err
		}
		if eof {
			if !gotAny {
				return pspp.Case{}, nil
			}
			return pspp.Case{}, fmt.Errorf("sav: unexpected end of compressed data mid-case")
		}
		gotAny = true
		if slot.v == nil {
			continue
		}
		if slot.v.IsNumeric() {
			var f float64
			if sysmis {
				f = pspp.Sysmis
			} else {
				f = math.Float64frombits(leUint64(raw))
			}
			c.Set(slot.v, pspp.NewNumericValue(f))
			continue
		}
		if slot.first {
			b := make([]byte, slot.v.Width)
			for i := range b {
				b[i] = ' '
			}
			n := copy(b, raw[:])
			strBufs[slot.v] = b
			strOffsets[slot.v] = n
		} else {
			b := strBufs[slot.v]
			off := strOffsets[slot.v]
			strOffsets[slot.v] = off + copy(b[off:], raw[:])
		}
	}
	for v, b := range strBufs {
		c.Set(v, pspp.Value{Str: b, Width: v.Width, IsText: true})
	}
	if !gotAny {
		return pspp.Case{}, nil
	}
	return c, nil
}

func leUint64(b [8]byte) uint64 {
	return binary.LittleEndian.Uint64(b[:])
}

func (r *Reader) readSlotBytes() (raw [8]byte, sysmis, eof bool, err error) {
	if r.cr != nil {
		return r.cr.ReadElement()
	}
	_, err = io.ReadFull(r.r, raw[:])
	if err == io.EOF {
		return raw, false, true, nil
	}
	return raw, false, false, err
}
