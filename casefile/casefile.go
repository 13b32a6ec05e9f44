// Package casefile implements the sequential case store described in
// §4.7: an append-only log of cases during a Writing phase, sealed into a
// Reading phase on first reader open, spilling from memory to a temp file
// past a configurable workspace byte budget.
package casefile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/logger"
	"github.com/mstgnz/pspp/perr"
)

// State is a Casefile's lifecycle phase.
type State int

const (
	Writing State = iota
	Reading
)

// minDiskBufferSize is the minimum disk write-buffer size (§4.7: "never
// smaller than 8 KiB").
const minDiskBufferSize = 8 * 1024

// Casefile is a sequential store of cases with a fixed value-count. See
// the package doc for the lifecycle.
type Casefile struct {
	mu    sync.Mutex
	shape Shape

	state State

	mem *blockStore

	workspaceBudget int64 // bytes; 0 forces immediate spill
	memBytes        int64

	tempDir  string
	tempFile *os.File
	tempPath string
	writer   *bufio.Writer
	recSize  int

	onDisk bool

	readers       []*reader
	destructiveOpened bool

	sealed bool

	log *logger.Logger
}

// UseLogger attaches a logger; spillLocked logs through it whenever the
// workspace budget forces a spill to disk.
func (cf *Casefile) UseLogger(l *logger.Logger) { cf.log = l }

// New creates a Casefile for the given Shape. workspaceBudget is the
// in-memory byte budget before cases spill to a temp file; tempDir is
// where spill files are created (akin to the TMPDIR setting, §6).
func New(shape Shape, workspaceBudget int64, tempDir string) *Casefile {
	return &Casefile{
		shape:           shape,
		mem:             newBlockStore(),
		workspaceBudget: workspaceBudget,
		tempDir:         tempDir,
		recSize:         shape.RecordSize(),
	}
}

// caseBytes estimates the memory footprint of one case for the workspace
// budget check.
func (cf *Casefile) caseBytes() int64 {
	return int64(cf.recSize) + 64 // rough per-case overhead
}

// Append adds a case to the casefile. It is an error to append after any
// reader has been opened.
func (cf *Casefile) Append(c pspp.Case) error {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.sealed {
		return fmt.Errorf("casefile: cannot append after a reader has been opened")
	}
	if cf.onDisk {
		return cf.writeDisk(c)
	}
	cf.mem.append(c)
	cf.memBytes += cf.caseBytes()
	if cf.workspaceBudget >= 0 && cf.memBytes > cf.workspaceBudget {
		if err := cf.spillLocked(); err != nil {
			return err
		}
	}
	return nil
}

// spillLocked flushes all in-memory cases to a temp file; caller must hold
// cf.mu.
func (cf *Casefile) spillLocked() error {
	if cf.onDisk {
		return nil
	}
	if err := cf.ensureTempFileLocked(); err != nil {
		return err
	}
	n := cf.mem.len()
	for i := 0; i < n; i++ {
		if err := cf.encodeCase(cf.writer, cf.mem.at(i)); err != nil {
			return err
		}
	}
	cf.mem.clear()
	cf.onDisk = true
	if cf.log != nil {
		cf.log.Info("casefile spilled to disk", map[string]interface{}{
			"cases":    n,
			"temp_path": cf.tempPath,
			"workspace_budget": cf.workspaceBudget,
		})
	}
	return nil
}

func (cf *Casefile) ensureTempFileLocked() error {
	if cf.tempFile != nil {
		return nil
	}
	var f *os.File
	var err error
	if cf.tempPath != "" {
		// Reopen the spill file closed by Sleep and keep appending to it.
		f, err = os.OpenFile(cf.tempPath, os.O_WRONLY|os.O_APPEND, 0)
	} else {
		f, err = os.CreateTemp(cf.tempDir, "pspp-casefile-*.tmp")
	}
	if err != nil {
		return perr.New(perr.CategoryIO, perr.SeverityFatal, "casefile: create temp file", err)
	}
	cf.tempFile = f
	cf.tempPath = f.Name()
	// Smallest multiple of the record size that is at least 8 KiB.
	bufSize := minDiskBufferSize
	if cf.recSize > 0 {
		bufSize = ((minDiskBufferSize + cf.recSize - 1) / cf.recSize) * cf.recSize
	}
	cf.writer = bufio.NewWriterSize(f, bufSize)
	return nil
}

func (cf *Casefile) writeDisk(c pspp.Case) error {
	if err := cf.ensureTempFileLocked(); err != nil {
		return err
	}
	return cf.encodeCase(cf.writer, c)
}

// encodeCase serializes one case to w using the casefile's fixed shape:
// each numeric slot as a big-endian float64, each string slot as exactly
// Width raw bytes.
func (cf *Casefile) encodeCase(w io.Writer, c pspp.Case) error {
	values := c.Values()
	var buf [8]byte
	for i, width := range cf.shape.Widths {
		if width == 0 {
			var f float64
			if i < len(values) && !values[i].IsText {
				f = values[i].Num
			}
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
		} else {
			b := make([]byte, width)
			for j := range b {
				b[j] = ' '
			}
			if i < len(values) && values[i].IsText {
				copy(b, values[i].Str)
			}
			if _, err := w.Write(b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cf *Casefile) decodeCase(r io.Reader) (pspp.Case, error) {
	c := pspp.NewCase(len(cf.shape.Widths))
	var buf [8]byte
	for i, width := range cf.shape.Widths {
		if width == 0 {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return pspp.Case{}, err
			}
			f := math.Float64frombits(binary.BigEndian.Uint64(buf[:]))
			c.SetAt(i, pspp.NewNumericValue(f))
		} else {
			b := make([]byte, width)
			if _, err := io.ReadFull(r, b); err != nil {
				return pspp.Case{}, err
			}
			c.SetAt(i, pspp.Value{Str: b, Width: width, IsText: true})
		}
	}
	return c, nil
}

// ToDisk forces all in-memory cases to a temp file, destroys the
// in-memory copies, and re-seats every live reader to its equivalent disk
// offset (§4.7).
func (cf *Casefile) ToDisk() error {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.onDisk {
		return nil
	}
	// spillLocked writes every case from the first one onward, so each
	// in-flight reader's "cases consumed so far" position maps directly
	// to a record index in the temp file. A sealed casefile takes no more
	// appends, so the spilled records are flushed now for readers to see.
	if err := cf.spillLocked(); err != nil {
		return err
	}
	if cf.sealed {
		return cf.writer.Flush()
	}
	return nil
}

// Sleep closes the temp file descriptor and frees the write buffer so the
// process can have many idle casefiles within file-descriptor limits
// (§4.7). The casefile is reopened transparently on the next access.
func (cf *Casefile) Sleep() error {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.writer != nil {
		if err := cf.writer.Flush(); err != nil {
			return err
		}
		cf.writer = nil
	}
	if cf.tempFile != nil {
		if err := cf.tempFile.Close(); err != nil {
			return err
		}
		cf.tempFile = nil
	}
	return nil
}

// seal transitions Writing -> Reading: flushes any pending write buffer.
func (cf *Casefile) seal() error {
	if cf.sealed {
		return nil
	}
	cf.sealed = true
	cf.state = Reading
	if cf.writer != nil {
		return cf.writer.Flush()
	}
	return nil
}

// Len returns the number of cases appended so far.
func (cf *Casefile) Len() int {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.onDisk {
		return cf.diskCaseCount()
	}
	return cf.mem.len()
}

func (cf *Casefile) diskCaseCount() int {
	if cf.recSize == 0 {
		return 0
	}
	if cf.writer != nil {
		if err := cf.writer.Flush(); err != nil {
			return 0
		}
	}
	fi, err := os.Stat(cf.tempPath)
	if err != nil {
		return 0
	}
	return int(fi.Size()) / cf.recSize
}

// Open returns a new non-destructive Casereader positioned at the start of
// the casefile. Opening any reader seals the casefile against further
// appends.
func (cf *Casefile) Open() (*reader, error) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.destructiveOpened {
		return nil, fmt.Errorf("casefile: cannot open a reader while a destructive reader is open")
	}
	if err := cf.seal(); err != nil {
		return nil, err
	}
	r := &reader{cf: cf}
	cf.readers = append(cf.readers, r)
	return r, nil
}

// OpenDestructive returns a reader allowed to move rather than copy cases
// out of in-memory storage; at most one may be open at a time, and it
// conflicts with any other reader.
func (cf *Casefile) OpenDestructive() (*reader, error) {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	if cf.destructiveOpened {
		return nil, fmt.Errorf("casefile: a destructive reader is already open")
	}
	if len(cf.readers) > 0 {
		return nil, fmt.Errorf("casefile: cannot open a destructive reader while other readers are open")
	}
	if err := cf.seal(); err != nil {
		return nil, err
	}
	cf.destructiveOpened = true
	r := &reader{cf: cf, destructive: true}
	cf.readers = append(cf.readers, r)
	return r, nil
}

// Close releases all resources; temp files are removed.
func (cf *Casefile) Close() error {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	var err error
	if cf.tempFile != nil {
		err = cf.tempFile.Close()
	}
	if cf.tempPath != "" {
		_ = os.Remove(cf.tempPath)
	}
	return err
}
