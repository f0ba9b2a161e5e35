// Copyright 2024 Block, Inc.

package example

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/protocol"
)

func TestExample(t *testing.T) {
	out := &bytes.Buffer{}
	w := protocol.NewWriter("example", protocol.NewOutput(out))

	e := New(chartline.Config{UpdateEvery: 1, Priority: 1000, Retries: 3}, w)
	if err := e.Check(); err != nil {
		t.Fatal(err)
	}
	if err := e.Create(); err != nil {
		t.Fatal(err)
	}
	if err := e.Update(0); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, expect := range []string{
		"CHART example_local.random ",
		"DIMENSION random1 ",
		"BEGIN example_local.random",
		"SET random1 = ",
		"END",
	} {
		if !strings.Contains(got, expect) {
			t.Errorf("output missing %q:\n%s", expect, got)
		}
	}
}
