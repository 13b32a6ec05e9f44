package anyfile

import (
	"fmt"
	"io"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/sav"
)

// AnyWriter dispatches WriteCase to the writer for a chosen target
// Format. Unlike reading, writing can't be autodetected: the caller picks
// the format. Only SystemFile is implemented as a writer target (this
// module's por package is read-only, matching the original's read-only
// treatment of legacy portable files as an import format).
type AnyWriter struct {
	sav *sav.Writer
}

// Create opens a writer for the given format.
func Create(w io.Writer, format Format, dict *pspp.Dictionary) (*AnyWriter, error) {
	switch format {
	case SystemFile:
		sw, err := sav.NewWriter(w, dict, sav.DefaultOptions())
		if err != nil {
			return nil, err
		}
		return &AnyWriter{sav: sw}, nil
	default:
		return nil, fmt.Errorf("anyfile: writing format %v is not supported", format)
	}
}

// WriteCase appends one case.
func (a *AnyWriter) WriteCase(c pspp.Case) error { return a.sav.WriteCase(c) }

// Close finalizes the output stream.
func (a *AnyWriter) Close() error { return a.sav.Close() }
