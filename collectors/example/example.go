// Copyright 2024 Block, Inc.

// Package example is a built-in collector that emits random values. It is
// the smallest complete implementation of the collector contract and exists
// for trying out the runtime without a real data source.
package example

import (
	"math/rand"
	"time"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/protocol"
)

type Example struct {
	chartline.Base
	cfg    chartline.Config
	writer *protocol.Writer
	// --
	chartId string
	rnd     *rand.Rand
}

var _ chartline.Collector = &Example{}

func New(cfg chartline.Config, w *protocol.Writer) *Example {
	name := cfg.OverrideName
	if name == "" {
		name = "local"
	}
	return &Example{
		Base:   chartline.Base{CollectorId: "example"},
		cfg:    cfg,
		writer: w,
		// --
		chartId: "example_" + name + ".random",
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *Example) Check() error {
	return nil
}

func (e *Example) Create() error {
	e.writer.Chart(e.chartId, "", "A random number", "random number", "random",
		"", "line", e.cfg.Priority, e.cfg.UpdateEvery)
	e.writer.Dimension("random1", "random 1", chartline.Absolute, 1, 1, false)
	return nil
}

func (e *Example) Update(elapsed time.Duration) error {
	if err := e.writer.Begin(e.chartId, elapsed); err != nil {
		return err
	}
	e.writer.Set("random1", float64(e.rnd.Intn(100)))
	e.writer.End()
	return nil
}
