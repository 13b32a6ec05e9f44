// Package anyfile autodetects and opens SPSS data files regardless of
// format, grounded on original_source's any-reader dispatch (pfm_detect
// alongside the system file's "$FL2"/"$FL3" magic check in
// src/data/sys-file-reader.c and file-type detection conventions).
package anyfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/logger"
	"github.com/mstgnz/pspp/por"
	"github.com/mstgnz/pspp/sav"
)

// Format identifies which on-disk layout a data file uses.
type Format int

const (
	Unknown Format = iota
	SystemFile
	PortableFile
)

// Detect peeks at the first bytes of r to decide its format without
// consuming the stream irrecoverably; callers must pass the same
// underlying data to Open afterward (or reuse the bufio.Reader Detect
// returns).
func Detect(r io.Reader) (Format, *bufio.Reader, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return Unknown, br, err
	}
	if string(head) == "$FL2" {
		return SystemFile, br, nil
	}

	// A portable file starts with up to 200 "vanity" characters (often
	// spaces or a banner) before an embedded "SPSSPORT" signature within
	// the first 464 bytes; sniff for it the way pfm_detect does.
	window, err := br.Peek(464)
	if err != nil && err != io.EOF {
		return Unknown, br, err
	}
	if containsPortableSignature(window) {
		return PortableFile, br, nil
	}
	return Unknown, br, nil
}

func containsPortableSignature(b []byte) bool {
	const sig = "SPSSPORT"
	for i := 0; i+len(sig) <= len(b); i++ {
		if string(b[i:i+len(sig)]) == sig {
			return true
		}
	}
	return false
}

// AnyReader presents a format-agnostic facade over sav.Reader/por.Reader.
type AnyReader struct {
	format Format
	sav    *sav.Reader
	por    *por.Reader
}

// Open detects the file's format and opens the matching reader.
func Open(r io.Reader) (*AnyReader, error) {
	f, br, err := Detect(r)
	if err != nil {
		return nil, err
	}
	switch f {
	case SystemFile:
		sr, err := sav.Open(br)
		if err != nil {
			return nil, err
		}
		return &AnyReader{format: f, sav: sr}, nil
	case PortableFile:
		pr, err := por.Open(br)
		if err != nil {
			return nil, err
		}
		return &AnyReader{format: f, por: pr}, nil
	default:
		return nil, fmt.Errorf("anyfile: unrecognized data file format")
	}
}

// Format reports which concrete format was detected.
func (a *AnyReader) Format() Format { return a.format }

// UseLogger attaches a logger to whichever concrete reader this
// AnyReader wraps, so format-specific warnings (unrecognized system
// file extension records, unrecognized portable file format codes)
// surface during conversion.
func (a *AnyReader) UseLogger(l *logger.Logger) {
	if a.sav != nil {
		a.sav.UseLogger(l)
	}
	if a.por != nil {
		a.por.UseLogger(l)
	}
}

// Dict returns the parsed dictionary.
func (a *AnyReader) Dict() *pspp.Dictionary {
	if a.sav != nil {
		return a.sav.Dict()
	}
	return a.por.Dict()
}

// ReadCase reads the next case, or the null Case at end of file.
func (a *AnyReader) ReadCase() (pspp.Case, error) {
	if a.sav != nil {
		return a.sav.ReadCase()
	}
	return a.por.ReadCase()
}
