// Copyright 2024 Block, Inc.

// Package chartline is a runtime for periodic metric collectors that report
// to a monitoring host through a line-oriented text protocol on stdout.
// A collector implements the Collector contract; the runner package schedules
// it, and the protocol package encodes and serializes its output.
package chartline

import (
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
	"time"
)

const VERSION = "0.0.0"

var SHA = ""

// Dataset maps metric name to value for one collection cycle. A dataset is
// produced fresh each cycle by a data source and never persisted between
// cycles.
type Dataset map[string]float64

// Collector is the contract every collector implements. The runner calls
// Check and Create once before scheduling starts; either failing prevents
// the collector from ever being scheduled. Update is called once per cycle
// with the elapsed time since the previous cycle started.
type Collector interface {
	// ID returns the collector id used as the metric namespace prefix,
	// like "phpfpm". It is supplied at construction, not derived from
	// the Go type.
	ID() string

	// Check does one-time setup and validation.
	Check() error

	// Create emits the initial chart and dimension registrations.
	Create() error

	// Update performs one collection cycle, emitting a begin/set/end
	// block per active chart. A non-nil error counts as one cycle
	// failure against the retry budget.
	Update(elapsed time.Duration) error
}

// Base provides failing defaults for the Collector contract. Embed it so a
// collector that omits a required method fails fast at check/create time
// instead of silently producing no output.
type Base struct {
	CollectorId string
}

func (b Base) ID() string { return b.CollectorId }

func (b Base) Check() error {
	return ErrNotImplemented{CollectorId: b.CollectorId, Op: "check"}
}

func (b Base) Create() error {
	return ErrNotImplemented{CollectorId: b.CollectorId, Op: "create"}
}

func (b Base) Update(elapsed time.Duration) error {
	return ErrNotImplemented{CollectorId: b.CollectorId, Op: "update"}
}

// Dimension algorithms understood by the monitoring host. An invalid
// algorithm is silently corrected to Absolute by the protocol encoder.
const (
	Absolute             = "absolute"
	Incremental          = "incremental"
	PercentOfAbsolute    = "percentage-of-absolute-row"
	PercentOfIncremental = "percentage-of-incremental-row"
)

// ValidAlgorithm returns true if algo is one of the four dimension algorithms.
func ValidAlgorithm(algo string) bool {
	switch algo {
	case Absolute, Incremental, PercentOfAbsolute, PercentOfIncremental:
		return true
	}
	return false
}

var (
	Debugging = false
	debugLog  = log.New(os.Stderr, "DEBUG ", log.LstdFlags|log.Lmicroseconds)
)

func Debug(msg string, v ...interface{}) {
	if !Debugging {
		return
	}
	_, file, line, _ := runtime.Caller(1)
	msg = fmt.Sprintf("%s:%d %s", path.Base(file), line, msg)
	debugLog.Printf(msg, v...)
}

func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
