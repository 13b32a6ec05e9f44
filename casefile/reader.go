package casefile

import (
	"bufio"
	"io"
	"os"

	"github.com/mstgnz/pspp"
)

// reader is a Casereader: a sequential cursor over a Casefile's cases.
// Multiple non-destructive readers may be open concurrently, each with its
// own independent position; at most one destructive reader may be open,
// and never alongside another reader (enforced by Casefile.OpenDestructive).
type reader struct {
	cf          *Casefile
	pos         int // cases consumed so far
	destructive bool

	diskFile *os.File
	diskBuf  *bufio.Reader
	diskOff  int64

	err error
}

// ReadCase returns the next case, or the null Case at end of file.
func (r *reader) ReadCase() (pspp.Case, error) {
	if r.err != nil {
		return pspp.Case{}, r.err
	}
	r.cf.mu.Lock()
	onDisk := r.cf.onDisk
	r.cf.mu.Unlock()

	if !onDisk {
		return r.readMemory()
	}
	return r.readDisk()
}

func (r *reader) readMemory() (pspp.Case, error) {
	r.cf.mu.Lock()
	defer r.cf.mu.Unlock()
	if r.pos >= r.cf.mem.len() {
		return pspp.Case{}, nil
	}
	c := r.cf.mem.at(r.pos)
	if r.destructive {
		// Hand over the backing store directly rather than cloning.
		r.cf.mem.set(r.pos, pspp.Case{})
	} else {
		c = c.Clone()
	}
	r.pos++
	return c, nil
}

func (r *reader) readDisk() (pspp.Case, error) {
	if err := r.ensureDiskFile(); err != nil {
		r.err = err
		return pspp.Case{}, err
	}
	c, err := r.cf.decodeCase(r.diskBuf)
	if err == io.EOF {
		return pspp.Case{}, nil
	}
	if err != nil {
		r.err = err
		return pspp.Case{}, err
	}
	r.pos++
	r.diskOff += int64(r.cf.recSize)
	return c, nil
}

// ensureDiskFile opens (or reopens after Casefile.Sleep) this reader's own
// file handle and seeks it to the byte offset implied by r.pos: the temp
// file holds every case from the first one, whether it was spilled by the
// workspace budget or by Casefile.ToDisk.
func (r *reader) ensureDiskFile() error {
	wantOff := int64(r.pos) * int64(r.cf.recSize)
	if r.diskFile != nil && r.diskOff == wantOff {
		return nil
	}
	if r.diskFile == nil {
		f, err := os.Open(r.cf.tempPath)
		if err != nil {
			return err
		}
		r.diskFile = f
	}
	if _, err := r.diskFile.Seek(wantOff, io.SeekStart); err != nil {
		return err
	}
	r.diskOff = wantOff
	r.diskBuf = bufio.NewReader(r.diskFile)
	return nil
}

// Error returns the first error encountered while reading, if any.
func (r *reader) Error() error { return r.err }

// Pos reports how many cases this reader has consumed so far.
func (r *reader) Pos() int { return r.pos }

// Close releases this reader's disk file handle, if any, and removes it
// from its Casefile's active-reader list.
func (r *reader) Close() error {
	r.cf.mu.Lock()
	for i, rr := range r.cf.readers {
		if rr == r {
			r.cf.readers = append(r.cf.readers[:i], r.cf.readers[i+1:]...)
			break
		}
	}
	if r.destructive {
		r.cf.destructiveOpened = false
	}
	r.cf.mu.Unlock()
	if r.diskFile != nil {
		return r.diskFile.Close()
	}
	return nil
}
