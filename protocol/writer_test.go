// Copyright 2024 Block, Inc.

package protocol

import (
	"bytes"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/chartline/chartline"
)

func newTestWriter() (*Writer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewWriter("test", NewOutput(out)), out
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestChartStatement(t *testing.T) {
	w, out := newTestWriter()

	w.Chart("apache_local.requests", "", "Apache Requests", "requests/s", "requests", "", "line", 90000, 1)
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	got := lines(out.String())
	expect := []string{
		"CHART apache_local.requests '' 'Apache Requests' requests/s requests '' line 90000 1",
	}
	if diff := deep.Equal(got, expect); diff != nil {
		t.Error(diff)
	}
}

func TestZeroPriority(t *testing.T) {
	w, out := newTestWriter()

	// Zero is a valid priority and must render as the digit, not as the
	// empty-field token.
	w.Chart("c1", "", "t", "u", "", "", "line", 0, 1)
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	got := lines(out.String())
	expect := []string{
		"CHART c1 '' t u '' '' line 0 1",
	}
	if diff := deep.Equal(got, expect); diff != nil {
		t.Error(diff)
	}
}

func TestQuoting(t *testing.T) {
	w, out := newTestWriter()

	// A field containing a space is wrapped in single quotes; an empty
	// field is rendered as the two-character token ''.
	w.Chart("c1", "", "", "", "", "", "line", 1, 1)
	w.Dimension("d1", "has space", chartline.Absolute, 1, 1, false)
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	got := lines(out.String())
	expect := []string{
		"CHART c1 '' '' '' '' '' line 1 1",
		"DIMENSION d1 'has space' absolute 1 1",
	}
	if diff := deep.Equal(got, expect); diff != nil {
		t.Error(diff)
	}
}

func TestDimensionCorrections(t *testing.T) {
	w, out := newTestWriter()

	// Invalid algorithm becomes absolute; zero multiplier/divisor become 1;
	// empty name defaults to the id; hidden appends the literal marker.
	w.Dimension("d1", "", "bogus", 0, 0, true)
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	got := lines(out.String())
	expect := []string{
		"DIMENSION d1 d1 absolute 1 1 hidden",
	}
	if diff := deep.Equal(got, expect); diff != nil {
		t.Error(diff)
	}
}

func TestBegin(t *testing.T) {
	w, out := newTestWriter()

	// Unregistered chart: error, nothing buffered
	if err := w.Begin("nope", 0); err == nil {
		t.Error("Begin on unregistered chart: err is nil, expected error")
	}
	if w.buf.Len() != 0 {
		t.Errorf("buffer not empty after failed Begin: %q", w.buf.String())
	}

	w.Chart("c1", "", "t", "u", "", "", "line", 1, 1)
	if err := w.Begin("c1", 1500*time.Microsecond); err != nil {
		t.Fatal(err)
	}
	if err := w.Begin("c1", 0); err != nil { // first cycle: no elapsed interval
		t.Fatal(err)
	}
	w.Commit()

	got := lines(out.String())
	expect := []string{
		"CHART c1 '' t u '' '' line 1 1",
		"BEGIN c1 1500",
		"BEGIN c1",
	}
	if diff := deep.Equal(got, expect); diff != nil {
		t.Error(diff)
	}
}

func TestSet(t *testing.T) {
	w, out := newTestWriter()

	// Unregistered dimension: error, buffer unchanged
	if err := w.Set("nope", 1); err == nil {
		t.Error("Set on unregistered dimension: err is nil, expected error")
	}
	if w.buf.Len() != 0 {
		t.Errorf("buffer not empty after failed Set: %q", w.buf.String())
	}

	w.Dimension("d1", "", chartline.Absolute, 1, 1, false)
	n := w.buf.Len()

	// Non-coercible values: error, statement dropped
	if err := w.Set("d1", math.NaN()); err == nil {
		t.Error("Set NaN: err is nil, expected error")
	}
	if err := w.Set("d1", math.Inf(1)); err == nil {
		t.Error("Set +Inf: err is nil, expected error")
	}
	if w.buf.Len() != n {
		t.Errorf("buffer changed after failed Set: %q", w.buf.String())
	}

	// Values truncate toward zero
	if err := w.Set("d1", 5.9); err != nil {
		t.Fatal(err)
	}
	w.Commit()

	got := lines(out.String())
	expect := []string{
		"DIMENSION d1 d1 absolute 1 1",
		"SET d1 = 5",
	}
	if diff := deep.Equal(got, expect); diff != nil {
		t.Error(diff)
	}
}

func TestCommitClearsBuffer(t *testing.T) {
	w, out := newTestWriter()

	w.Chart("c1", "", "t", "u", "", "", "line", 1, 1)
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}
	n := out.Len()

	// Nothing buffered: commit writes nothing
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}
	if out.Len() != n {
		t.Errorf("second Commit wrote %d bytes, expected 0", out.Len()-n)
	}
}

func TestDiscard(t *testing.T) {
	w, out := newTestWriter()

	w.Chart("c1", "", "t", "u", "", "", "line", 1, 1)
	w.Discard()
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("output after Discard+Commit: %q, expected nothing", out.String())
	}
}

func TestConcurrentCommitNoInterleaving(t *testing.T) {
	out := &bytes.Buffer{}
	shared := NewOutput(out)

	// Two collectors committing concurrently must never interleave
	// statements from one block inside another's.
	const blocks = 100
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		w := NewWriter(id, shared)
		w.Chart("c"+id, "", "t", "u", "", "", "line", 1, 1)
		w.Dimension("d"+id, "", chartline.Absolute, 1, 1, false)
		if err := w.Commit(); err != nil {
			t.Fatal(err)
		}

		wg.Add(1)
		go func(w *Writer, id string) {
			defer wg.Done()
			for i := 0; i < blocks; i++ {
				w.Begin("c"+id, 0)
				w.Set("d"+id, float64(i))
				w.End()
				w.Commit()
			}
		}(w, id)
	}
	wg.Wait()

	got := lines(out.String())
	got = got[4:] // skip the two chart/dimension headers
	if len(got) != 2*blocks*3 {
		t.Fatalf("got %d statement lines, expected %d", len(got), 2*blocks*3)
	}
	for i := 0; i < len(got); i += 3 {
		begin, set, end := got[i], got[i+1], got[i+2]
		if !strings.HasPrefix(begin, "BEGIN c") {
			t.Fatalf("line %d: %q, expected BEGIN", i, begin)
		}
		id := strings.TrimPrefix(begin, "BEGIN c")
		if !strings.HasPrefix(set, "SET d"+id+" = ") {
			t.Fatalf("line %d: %q, expected SET d%s (block started %q)", i+1, set, id, begin)
		}
		if end != "END" {
			t.Fatalf("line %d: %q, expected END", i+2, end)
		}
	}
}
