// Copyright 2024 Block, Inc.

package phpfpm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/protocol"
)

func TestChartsValid(t *testing.T) {
	if err := charts().Validate(); err != nil {
		t.Error(err)
	}
}

func TestNewRequiresURL(t *testing.T) {
	out := &bytes.Buffer{}
	w := protocol.NewWriter("phpfpm", protocol.NewOutput(out))

	_, err := New(chartline.Config{UpdateEvery: 1, Retries: 3}, w)
	if err == nil {
		t.Fatal("New without url: err is nil, expected ConfigError")
	}
	if _, ok := err.(chartline.ConfigError); !ok {
		t.Errorf("err = %q (%T), expected ConfigError", err, err)
	}
	if !strings.Contains(err.Error(), "url") {
		t.Errorf("err = %q, expected it to name the url key", err)
	}
}
