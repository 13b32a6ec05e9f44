// Package telemetry collects process-wide counters for batch
// conversion work: cases read/written, data-in parse errors, casefile
// spill events, ZIP CRC failures. Adapted from teacher's
// monitoring/metrics.go MetricsCollector — same atomic-counter-plus-
// map shape, renamed fields for the data-layer domain in place of
// object-processing-pipeline fields.
package telemetry

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects counters for one process's file conversions.
type Metrics struct {
	casesRead        int64
	casesWritten     int64
	parseErrors      int64
	casefileSpills   int64
	zipCRCFailures   int64
	filesProcessed   int64
	filesFailed      int64
	totalProcessTime int64

	parseErrorsByField      map[string]int64
	parseErrorsByFieldMutex sync.RWMutex
}

// New creates an empty Metrics collector.
func New() *Metrics {
	return &Metrics{parseErrorsByField: make(map[string]int64)}
}

func (m *Metrics) IncrementCasesRead()    { atomic.AddInt64(&m.casesRead, 1) }
func (m *Metrics) IncrementCasesWritten() { atomic.AddInt64(&m.casesWritten, 1) }
func (m *Metrics) IncrementCasefileSpills() { atomic.AddInt64(&m.casefileSpills, 1) }
func (m *Metrics) IncrementZIPCRCFailures() { atomic.AddInt64(&m.zipCRCFailures, 1) }
func (m *Metrics) IncrementFilesProcessed() { atomic.AddInt64(&m.filesProcessed, 1) }
func (m *Metrics) IncrementFilesFailed()    { atomic.AddInt64(&m.filesFailed, 1) }

// RecordProcessTime adds duration to the running total process time
// across all files converted this run.
func (m *Metrics) RecordProcessTime(d time.Duration) {
	atomic.AddInt64(&m.totalProcessTime, int64(d))
}

// RecordParseError increments the overall parse-error counter and the
// per-field-label breakdown (the field label comes from perr.Location,
// §7).
func (m *Metrics) RecordParseError(fieldLabel string) {
	atomic.AddInt64(&m.parseErrors, 1)
	m.parseErrorsByFieldMutex.Lock()
	m.parseErrorsByField[fieldLabel]++
	m.parseErrorsByFieldMutex.Unlock()
}

// CasesRead, CasesWritten, ParseErrors, CasefileSpills, ZIPCRCFailures,
// FilesProcessed, FilesFailed return the corresponding running totals.
func (m *Metrics) CasesRead() int64        { return atomic.LoadInt64(&m.casesRead) }
func (m *Metrics) CasesWritten() int64     { return atomic.LoadInt64(&m.casesWritten) }
func (m *Metrics) ParseErrors() int64      { return atomic.LoadInt64(&m.parseErrors) }
func (m *Metrics) CasefileSpills() int64   { return atomic.LoadInt64(&m.casefileSpills) }
func (m *Metrics) ZIPCRCFailures() int64   { return atomic.LoadInt64(&m.zipCRCFailures) }
func (m *Metrics) FilesProcessed() int64   { return atomic.LoadInt64(&m.filesProcessed) }
func (m *Metrics) FilesFailed() int64      { return atomic.LoadInt64(&m.filesFailed) }

// AverageProcessTime returns the mean per-file conversion time.
func (m *Metrics) AverageProcessTime() time.Duration {
	n := atomic.LoadInt64(&m.filesProcessed)
	if n == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&m.totalProcessTime) / n)
}

// FailureRate returns the fraction of processed files that failed, as
// a percentage.
func (m *Metrics) FailureRate() float64 {
	n := atomic.LoadInt64(&m.filesProcessed)
	if n == 0 {
		return 0
	}
	failed := atomic.LoadInt64(&m.filesFailed)
	return float64(failed) / float64(n) * 100
}

// Snapshot returns a point-in-time copy of every counter, suitable for
// the CLI's summary output or JSON logging.
type Snapshot struct {
	CasesRead        int64
	CasesWritten     int64
	ParseErrors      int64
	CasefileSpills   int64
	ZIPCRCFailures   int64
	FilesProcessed   int64
	FilesFailed      int64
	ParseErrorsByField map[string]int64
}

func (m *Metrics) Snapshot() Snapshot {
	m.parseErrorsByFieldMutex.RLock()
	byField := make(map[string]int64, len(m.parseErrorsByField))
	for k, v := range m.parseErrorsByField {
		byField[k] = v
	}
	m.parseErrorsByFieldMutex.RUnlock()

	return Snapshot{
		CasesRead:          m.CasesRead(),
		CasesWritten:       m.CasesWritten(),
		ParseErrors:        m.ParseErrors(),
		CasefileSpills:     m.CasefileSpills(),
		ZIPCRCFailures:     m.ZIPCRCFailures(),
		FilesProcessed:     m.FilesProcessed(),
		FilesFailed:        m.FilesFailed(),
		ParseErrorsByField: byField,
	}
}
