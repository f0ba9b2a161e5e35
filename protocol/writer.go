// Copyright 2024 Block, Inc.

// Package protocol encodes chart, dimension, and value declarations into the
// line-oriented text statements read by the monitoring host:
//
//	CHART <id> <name> <title> <units> <family> <category> <type> <priority> <update_every>
//	DIMENSION <id> <name> <algorithm> <multiplier> <divisor> [hidden]
//	BEGIN <chart_id> [<microseconds>]
//	SET <dimension_id> = <integer_value>
//	END
//
// Statements accumulate in a per-writer buffer and are flushed atomically by
// Commit to a shared serialized Output.
package protocol

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/event"
)

// Writer builds and buffers protocol statements for one collector. It is not
// safe for concurrent use; each collector owns exactly one Writer and drives
// it from its own runner goroutine. Only Commit touches shared state, and the
// Output serializes that.
type Writer struct {
	collectorId string
	out         *Output
	event       event.CollectorReceiver
	// --
	buf    bytes.Buffer
	charts map[string]bool
	dims   map[string]bool
}

func NewWriter(collectorId string, out *Output) *Writer {
	return &Writer{
		collectorId: collectorId,
		out:         out,
		event:       event.CollectorReceiver{CollectorId: collectorId},
		charts:      map[string]bool{},
		dims:        map[string]bool{},
	}
}

// line appends one statement. Every field is space-separated; a field
// containing a space is wrapped in single quotes, and an empty field is
// rendered as the two-character token ''.
func (w *Writer) line(instruction string, fields ...string) {
	w.buf.WriteString(instruction)
	for _, f := range fields {
		if f == "" {
			f = "''"
		} else if strings.Contains(f, " ") {
			f = "'" + f + "'"
		}
		w.buf.WriteByte(' ')
		w.buf.WriteString(f)
	}
	w.buf.WriteByte('\n')
}

// Chart registers id and appends a CHART statement. The id must be registered
// before any Begin references it. Integer fields always render as digits;
// zero is a valid priority, not an empty field.
func (w *Writer) Chart(id, name, title, units, family, category, chartType string, priority, updateEvery int) {
	w.charts[id] = true
	w.line("CHART", id, name, title, units, family, category, chartType,
		strconv.Itoa(priority), strconv.Itoa(updateEvery))
}

// Dimension registers id and appends a DIMENSION statement. An empty name
// defaults to id. An invalid algorithm is corrected to absolute; a zero
// multiplier or divisor is corrected to 1. Corrections are logged, not fatal.
func (w *Writer) Dimension(id, name, algo string, mul, div int, hidden bool) {
	if name == "" {
		name = id
	}
	if !chartline.ValidAlgorithm(algo) {
		w.event.Errorf(event.PROTO_INVALID_DIMENSION, "dimension %s: invalid algorithm %q, using %s", id, algo, chartline.Absolute)
		algo = chartline.Absolute
	}
	if mul == 0 {
		w.event.Errorf(event.PROTO_INVALID_DIMENSION, "dimension %s: multiplier is zero, using 1", id)
		mul = 1
	}
	if div == 0 {
		w.event.Errorf(event.PROTO_INVALID_DIMENSION, "dimension %s: divisor is zero, using 1", id)
		div = 1
	}
	w.dims[id] = true
	if hidden {
		w.line("DIMENSION", id, name, algo, strconv.Itoa(mul), strconv.Itoa(div), "hidden")
	} else {
		w.line("DIMENSION", id, name, algo, strconv.Itoa(mul), strconv.Itoa(div))
	}
}

// Begin appends a BEGIN statement for a previously registered chart. A
// non-positive elapsed interval is omitted from the statement, which the
// host treats as "no previous cycle" (the first cycle).
func (w *Writer) Begin(chartId string, elapsed time.Duration) error {
	if !w.charts[chartId] {
		w.event.Errorf(event.PROTO_INVALID_CHART, "begin: chart %s not registered", chartId)
		return fmt.Errorf("begin: chart %s not registered", chartId)
	}
	if micro := elapsed.Microseconds(); micro > 0 {
		w.line("BEGIN", chartId, strconv.FormatInt(micro, 10))
	} else {
		w.line("BEGIN", chartId)
	}
	return nil
}

// Set appends a SET statement for a previously registered dimension. The
// value truncates toward zero like the original integer coercion; NaN and
// infinities cannot be coerced and are dropped.
func (w *Writer) Set(dimId string, value float64) error {
	if !w.dims[dimId] {
		w.event.Errorf(event.PROTO_INVALID_DIMENSION, "set: dimension %s not registered", dimId)
		return fmt.Errorf("set: dimension %s not registered", dimId)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		w.event.Errorf(event.PROTO_INVALID_VALUE, "set: dimension %s: non-numeric value %v", dimId, value)
		return fmt.Errorf("set: dimension %s: non-numeric value %v", dimId, value)
	}
	w.line("SET", dimId, "=", strconv.FormatInt(int64(value), 10))
	return nil
}

// End appends the statement terminating a begin/set block.
func (w *Writer) End() {
	w.line("END")
}

// Discard drops the accumulated buffer without writing it. The runner calls
// this on cycle failure so a partial block is never visible to the host.
func (w *Writer) Discard() {
	w.buf.Reset()
}

// Commit atomically flushes the accumulated buffer to the shared output and
// clears it. The buffer is cleared even if the write fails; a half-written
// block cannot be retried without interleaving.
func (w *Writer) Commit() error {
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.out.Write(w.buf.Bytes())
	w.buf.Reset()
	if err != nil {
		w.event.Errorf(event.PROTO_COMMIT_ERROR, "commit: %s", err)
		return err
	}
	return nil
}
