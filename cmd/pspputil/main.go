// Command pspputil opens SPSS system/portable files, prints a
// dictionary summary, and optionally converts to another format —
// singly or, with -dir, as a concurrent batch. Adapted from teacher's
// cmd/sqlmapper/main.go flag-parsed single-purpose CLI, extended with
// the worker pool (worker.go, from parser/worker.go) for batch mode
// and wired through registry/telemetry/catalog per SPEC_FULL §2.1.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mstgnz/pspp/catalog"
	"github.com/mstgnz/pspp/logger"
	"github.com/mstgnz/pspp/registry"
	"github.com/mstgnz/pspp/settings"
	"github.com/mstgnz/pspp/telemetry"
)

// jobDeps bundles a convertJob's shared, optional collaborators so
// runSingle/runBatch don't pass a growing parameter list.
type jobDeps struct {
	metrics    *telemetry.Metrics
	log        *logger.Logger
	store      *catalog.Store
	settings   *settings.Settings
	showSample bool
}

func main() {
	filePath := flag.String("file", "", "path to a single SPSS data file")
	dir := flag.String("dir", "", "directory of SPSS data files to process concurrently")
	to := flag.String("to", "", "target format to convert to (sav); omit to only summarize")
	workers := flag.Int("workers", 4, "worker count for -dir batch mode")
	catalogDriver := flag.String("catalog-driver", "", "optional catalog database driver (mysql, postgres)")
	catalogDSN := flag.String("catalog-dsn", "", "optional catalog database DSN")
	settingsFile := flag.String("settings", "", "optional YAML settings file (decimal/grouping chars, CCA..CCE templates)")
	showSample := flag.Bool("show-sample", false, "print the first case's values formatted through settings")
	flag.Parse()

	if *filePath == "" && *dir == "" {
		fmt.Println("usage: pspputil -file=<path> [-to=sav]")
		fmt.Println("       pspputil -dir=<path> [-to=sav] [-workers=4]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()
	reg := registry.New()
	metrics := telemetry.New()
	if err := reg.Register(metrics); err != nil {
		fmt.Println("pspputil:", err)
		os.Exit(1)
	}

	log := logger.NewLogger(logger.Config{
		Level:  logger.WARN,
		Format: logger.TEXT,
		Context: map[string]interface{}{"component": "pspputil"},
	})
	if err := reg.Register(log); err != nil {
		fmt.Println("pspputil:", err)
		os.Exit(1)
	}

	var store *catalog.Store
	if *catalogDriver != "" {
		var err error
		store, err = catalog.Open(ctx, catalog.Config{Driver: *catalogDriver, DSN: *catalogDSN})
		if err != nil {
			fmt.Println("pspputil: catalog:", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := reg.Register(store); err != nil {
			fmt.Println("pspputil:", err)
			os.Exit(1)
		}
	}

	var resolved *telemetry.Metrics
	if err := reg.Resolve(&resolved); err != nil {
		fmt.Println("pspputil:", err)
		os.Exit(1)
	}
	var resolvedLog *logger.Logger
	if err := reg.Resolve(&resolvedLog); err != nil {
		fmt.Println("pspputil:", err)
		os.Exit(1)
	}

	var stg *settings.Settings
	if *settingsFile != "" {
		var err error
		stg, err = settings.LoadFile(*settingsFile)
		if err != nil {
			fmt.Println("pspputil: settings:", err)
			os.Exit(1)
		}
	} else {
		stg = settings.Default()
	}
	deps := jobDeps{metrics: resolved, log: resolvedLog, store: store, settings: stg, showSample: *showSample}

	var err error
	if *filePath != "" {
		err = runSingle(ctx, *filePath, *to, deps)
	} else {
		err = runBatch(ctx, *dir, *to, *workers, deps)
	}
	if err != nil {
		fmt.Println("pspputil:", err)
		os.Exit(1)
	}

	snap := metrics.Snapshot()
	fmt.Printf("summary: files=%d failed=%d cases_read=%d cases_written=%d\n",
		snap.FilesProcessed, snap.FilesFailed, snap.CasesRead, snap.CasesWritten)
}

func runSingle(ctx context.Context, path, to string, deps jobDeps) error {
	job := &convertJob{
		ctx: ctx, path: path, to: to,
		metrics: deps.metrics, log: deps.log, store: deps.store,
		settings: deps.settings, showSample: deps.showSample,
	}
	return job.Execute()
}

func runBatch(ctx context.Context, dir, to string, workers int, deps jobDeps) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	pool := NewWorkerPool(workers, len(entries))
	pool.Start(ctx)

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		job := &convertJob{
			ctx:        ctx,
			path:       filepath.Join(dir, e.Name()),
			to:         to,
			metrics:    deps.metrics,
			log:        deps.log,
			store:      deps.store,
			settings:   deps.settings,
			showSample: deps.showSample,
		}
		if err := pool.Submit(job); err != nil {
			fmt.Println("pspputil:", err)
		}
	}

	pool.Stop()
	return nil
}
