package txnimport

import (
	"log"
	"time"
)

// Statter is the interface that stats collectors must implement to get stats
// out of an import.
type Statter interface {
	Count(name string, value int64, rate float64, tags ...string)
	Gauge(name string, value float64, rate float64, tags ...string)
	Timing(name string, value time.Duration, rate float64, tags ...string)
}

// Names of the stats emitted by the Importer.
const (
	StatRowsRead      = "rows_read"
	StatRowsSkipped   = "rows_skipped"
	StatDocsIndexed   = "docs_indexed"
	StatDocsFailed    = "docs_failed"
	StatBatches       = "batches"
	StatBatchesFailed = "batches_failed"
	StatBulkDuration  = "bulk_duration"
	StatVerified      = "docs_verified"
)

// NopStatter does nothing.
type NopStatter struct{}

// Count does nothing.
func (NopStatter) Count(name string, value int64, rate float64, tags ...string) {}

// Gauge does nothing.
func (NopStatter) Gauge(name string, value float64, rate float64, tags ...string) {}

// Timing does nothing.
func (NopStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {}

// MultiStatter fans every stat out to each of its Statters.
type MultiStatter []Statter

func (m MultiStatter) Count(name string, value int64, rate float64, tags ...string) {
	for _, s := range m {
		s.Count(name, value, rate, tags...)
	}
}

func (m MultiStatter) Gauge(name string, value float64, rate float64, tags ...string) {
	for _, s := range m {
		s.Gauge(name, value, rate, tags...)
	}
}

func (m MultiStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	for _, s := range m {
		s.Timing(name, value, rate, tags...)
	}
}

// Logger is the interface that loggers must implement to get import logs.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// NopLogger logs nothing.
type NopLogger struct{}

// Printf does nothing.
func (NopLogger) Printf(format string, v ...interface{}) {}

// Debugf does nothing.
func (NopLogger) Debugf(format string, v ...interface{}) {}

// Errorf does nothing.
func (NopLogger) Errorf(format string, v ...interface{}) {}

// StdLogger only prints on Printf and Errorf.
type StdLogger struct {
	*log.Logger
}

// Printf implements Logger interface.
func (s StdLogger) Printf(format string, v ...interface{}) {
	s.Logger.Printf(format, v...)
}

// Debugf implements Logger interface, but prints nothing.
func (StdLogger) Debugf(format string, v ...interface{}) {}

// Errorf implements Logger interface.
func (s StdLogger) Errorf(format string, v ...interface{}) {
	s.Logger.Printf("ERROR: "+format, v...)
}

// VerboseLogger prints on Printf, Debugf and Errorf.
type VerboseLogger struct {
	*log.Logger
}

// Printf implements Logger interface.
func (s VerboseLogger) Printf(format string, v ...interface{}) {
	s.Logger.Printf(format, v...)
}

// Debugf implements Logger interface.
func (s VerboseLogger) Debugf(format string, v ...interface{}) {
	s.Logger.Printf(format, v...)
}

// Errorf implements Logger interface.
func (s VerboseLogger) Errorf(format string, v ...interface{}) {
	s.Logger.Printf("ERROR: "+format, v...)
}
