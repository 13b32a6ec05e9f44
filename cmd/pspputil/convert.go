package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mstgnz/pspp"
	"github.com/mstgnz/pspp/anyfile"
	"github.com/mstgnz/pspp/catalog"
	"github.com/mstgnz/pspp/format"
	"github.com/mstgnz/pspp/logger"
	"github.com/mstgnz/pspp/schema"
	"github.com/mstgnz/pspp/settings"
	"github.com/mstgnz/pspp/telemetry"
)

// convertOutputPath mirrors teacher's createOutputPath (cmd/sqlmapper/
// main.go): same directory, input basename with the target suffix
// appended before the extension.
func convertOutputPath(inputPath, to string) string {
	dir := filepath.Dir(inputPath)
	filename := filepath.Base(inputPath)
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", name, to, ext))
}

// targetFormat maps a CLI "-to" value onto an anyfile.Format; only
// "sav" is currently writable (anyfile.Create's restriction).
func targetFormat(to string) (anyfile.Format, error) {
	switch strings.ToLower(to) {
	case "sav", "":
		return anyfile.SystemFile, nil
	default:
		return anyfile.Unknown, fmt.Errorf("pspputil: unsupported target format %q (only sav)", to)
	}
}

// convertJob converts or summarizes one input file; it implements
// Task so the worker pool (worker.go) can run many of these
// concurrently, one file per goroutine.
type convertJob struct {
	ctx        context.Context
	path       string
	to         string // empty means summarize only
	metrics    *telemetry.Metrics
	log        *logger.Logger     // may be nil
	store      *catalog.Store     // may be nil
	settings   *settings.Settings // may be nil; non-nil enables -show-sample
	showSample bool
}

func (j *convertJob) Execute() error {
	start := time.Now()
	err := j.run()
	if j.metrics != nil {
		j.metrics.RecordProcessTime(time.Since(start))
		j.metrics.IncrementFilesProcessed()
		if err != nil {
			j.metrics.IncrementFilesFailed()
		}
	}
	if err != nil && j.log != nil {
		j.log.Error("file conversion failed", map[string]interface{}{
			"path": j.path, "to": j.to, "error": err.Error(),
		})
	}
	return err
}

func (j *convertJob) run() error {
	in, err := os.Open(j.path)
	if err != nil {
		return fmt.Errorf("pspputil: open %s: %w", j.path, err)
	}
	defer in.Close()

	ar, err := anyfile.Open(in)
	if err != nil {
		return fmt.Errorf("pspputil: %s: %w", j.path, err)
	}
	if j.log != nil {
		ar.UseLogger(j.log)
	}

	var eventID int64
	if j.store != nil {
		kind := catalog.KindSystemFile
		if ar.Format() == anyfile.PortableFile {
			kind = catalog.KindPortableFile
		}
		eventID, err = j.store.RecordOpen(j.ctx, kind, j.path, ar.Dict().Count())
		if err != nil {
			return err
		}
		j.diffAgainstCatalog(ar.Dict())
	}

	fmt.Printf("%s: %d variables, format=%v\n", j.path, ar.Dict().Count(), ar.Format())

	if j.to == "" {
		return j.countCases(ar, eventID)
	}
	return j.convert(ar, eventID)
}

// diffAgainstCatalog compares dict against the schema catalog last saved
// for j.path, logs every added/removed/modified variable, then saves
// dict's current shape as the new baseline. A missing prior entry (first
// time this path is seen) is not a difference — it's just recorded.
func (j *convertJob) diffAgainstCatalog(dict *pspp.Dictionary) {
	prev, ok, err := j.store.LastSchema(j.ctx, j.path)
	if err != nil {
		if j.log != nil {
			j.log.Warn("catalog: failed to load previous schema", map[string]interface{}{
				"path": j.path, "error": err.Error(),
			})
		}
	} else if ok {
		diffs := schema.Diff(catalog.DictionaryFromSnapshot(prev), dict)
		for _, d := range diffs {
			if j.log != nil {
				j.log.Info("dictionary schema changed since last catalog entry", map[string]interface{}{
					"path": j.path, "variable": d.VarName, "change": string(d.Change), "detail": d.Description,
				})
			}
		}
	}

	if err := j.store.SaveSchema(j.ctx, j.path, catalog.SnapshotDictionary(dict)); err != nil && j.log != nil {
		j.log.Warn("catalog: failed to save schema snapshot", map[string]interface{}{
			"path": j.path, "error": err.Error(),
		})
	}
}

func (j *convertJob) countCases(ar *anyfile.AnyReader, eventID int64) error {
	n := 0
	for {
		c, err := ar.ReadCase()
		if err != nil {
			return err
		}
		if c.Null() {
			break
		}
		if n == 0 && j.showSample && j.settings != nil {
			j.printSample(ar, c)
		}
		n++
		if j.metrics != nil {
			j.metrics.IncrementCasesRead()
		}
	}
	fmt.Printf("%s: %d cases\n", j.path, n)
	if j.store != nil {
		return j.store.RecordClose(j.ctx, eventID, n, nil)
	}
	return nil
}

// printSample renders one case's values through j.settings, exercising
// DOLLAR/COMMA/CCA..CCE grouping and affixes with the process-wide
// decimal/grouping characters and custom-currency templates (§4.4, §5)
// instead of each variable's raw stored bytes.
func (j *convertJob) printSample(ar *anyfile.AnyReader, c pspp.Case) {
	fmt.Printf("%s: sample case:\n", j.path)
	for _, v := range ar.Dict().Vars() {
		val := c.Data(v)
		res := format.Result{Num: val.Num, Str: val.Str, IsText: val.IsText}
		out := j.settings.FormatValue(res, v.PrintFormat)
		fmt.Printf("  %s = %q\n", v.Name(), strings.TrimRight(string(out), " "))
	}
}

func (j *convertJob) convert(ar *anyfile.AnyReader, eventID int64) error {
	format, err := targetFormat(j.to)
	if err != nil {
		return err
	}

	outPath := convertOutputPath(j.path, j.to)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("pspputil: create %s: %w", outPath, err)
	}
	defer out.Close()

	aw, err := anyfile.Create(out, format, ar.Dict())
	if err != nil {
		return err
	}

	n := 0
	for {
		c, err := ar.ReadCase()
		if err != nil {
			return err
		}
		if c.Null() {
			break
		}
		if err := aw.WriteCase(c); err != nil {
			return err
		}
		n++
		if j.metrics != nil {
			j.metrics.IncrementCasesRead()
			j.metrics.IncrementCasesWritten()
		}
	}
	if err := aw.Close(); err != nil {
		return err
	}

	fmt.Printf("%s: wrote %d cases to %s\n", j.path, n, outPath)
	if j.store != nil {
		return j.store.RecordClose(j.ctx, eventID, n, nil)
	}
	return nil
}
