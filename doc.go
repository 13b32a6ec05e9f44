/*
Package pspp provides the core data layer of an SPSS-compatible statistics
tool: a typed-column dictionary, reference-counted case storage, codecs for
System (SAV) and Portable (POR) files, a fixed-/free-format text reader, and
a typesetting engine with a PostScript device driver.

Basic Usage:

	import (
		"github.com/mstgnz/pspp"
		"github.com/mstgnz/pspp/format"
	)

	dict := pspp.NewDictionary()
	v, err := dict.AddVar("age", 0)
	if err != nil {
		// handle error
	}
	v.PrintFormat = format.MustParse("F8.2")

Reading and writing System files:

	import "github.com/mstgnz/pspp/sav"

	f, err := os.Open("data.sav")
	if err != nil {
		// handle error
	}
	defer f.Close()

	r, err := sav.Open(f)
	if err != nil {
		// handle error
	}

	dict := r.Dict()
	for {
		c, err := r.ReadCase()
		if err != nil {
			// handle error
		}
		if c.Null() {
			break
		}
		_ = c
	}

Error Handling:

Errors carry a source location and a severity (fatal, procedural, warning,
note) through the perr package:

	if err != nil {
		var de *perr.DataError
		if errors.As(err, &de) {
			// inspect de.Severity, de.Location
		}
	}

Logging:

	import "github.com/mstgnz/pspp/logger"

	log := logger.NewLogger(logger.Config{Level: logger.INFO})
	log.Info("opened system file", map[string]interface{}{"path": "data.sav"})

Thread Safety:

The core data layer is single-threaded and cooperative (see the design
notes on concurrency): a Casefile may be read by multiple independent
Casereaders, but Dictionary, Case and Casefile mutation are not internally
synchronized. Callers embedding the library under goroutines must serialize
access themselves.
*/
package pspp
