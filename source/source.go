// Copyright 2024 Block, Inc.

// Package source implements the dynamic-chart-derivation pattern for
// collectors backed by a refreshable key-value dataset. The declared chart
// table is the superset; the emitted chart and dimension set is derived from
// whatever metrics a fetched dataset actually contains, so one collector
// adapts to whatever the upstream version or configuration exposes.
package source

import (
	"fmt"
	"time"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/event"
	"github.com/chartline/chartline/protocol"
)

// DataSource produces one fresh dataset per call. The concrete transport
// (HTTP, a file, a socket) is the source's business; the collector only
// cares that Fetch returns a dataset or fails.
type DataSource interface {
	Fetch() (chartline.Dataset, error)
}

// FetchError wraps a data source failure during a cycle. It counts as one
// cycle failure against the runner's retry budget.
type FetchError struct {
	Err error
}

func (e FetchError) Error() string { return "fetch: " + e.Err.Error() }
func (e FetchError) Unwrap() error { return e.Err }

// activeChart is one chart activated during Create: its full id and the
// create-time subset of declared dimensions that matched the trial dataset.
// Update emits only these dimensions, and only when present in the cycle's
// dataset.
type activeChart struct {
	id   string
	dims []chartline.Dim
}

// Collector implements the chartline.Collector contract for any DataSource.
// Concrete collectors supply a chart table and a source; everything else
// (subsetting, emission order, priorities) is handled here.
type Collector struct {
	cfg    chartline.Config
	charts chartline.Charts
	src    DataSource
	writer *protocol.Writer
	// --
	collectorId string
	name        string
	active      []activeChart
	event       event.CollectorReceiver
}

type CollectorArgs struct {
	// CollectorId is the metric namespace prefix, like "phpfpm" (required).
	CollectorId string
	Config      chartline.Config
	Charts      chartline.Charts
	Source      DataSource
	Writer      *protocol.Writer
}

func NewCollector(args CollectorArgs) (*Collector, error) {
	if args.CollectorId == "" {
		return nil, chartline.ConfigError{Key: "collector_id", Reason: "required"}
	}
	if err := args.Charts.Validate(); err != nil {
		return nil, err
	}
	name := args.Config.OverrideName
	if name == "" {
		name = "local"
	}
	return &Collector{
		cfg:    args.Config,
		charts: args.Charts,
		src:    args.Source,
		writer: args.Writer,
		// --
		collectorId: args.CollectorId,
		name:        name,
		event:       event.CollectorReceiver{CollectorId: args.CollectorId},
	}, nil
}

var _ chartline.Collector = &Collector{}

func (c *Collector) ID() string { return c.collectorId }

// Check verifies the data source with one trial fetch. It succeeds only if
// the source yields a dataset. The instance name ("local" unless
// override_name is set) was resolved at construction.
func (c *Collector) Check() error {
	if c.src == nil {
		return chartline.ConfigError{Key: "url", Reason: "no data source configured"}
	}
	data, err := c.src.Fetch()
	if err != nil {
		c.event.Errorf(event.SOURCE_FETCH_ERROR, "check: %s", err)
		return FetchError{Err: err}
	}
	if data == nil {
		return fmt.Errorf("check: source returned no dataset")
	}
	return nil
}

// Create fetches one live dataset and, per declared chart in order, emits a
// CHART statement plus only the DIMENSION statements whose name is a key in
// that dataset. A chart with zero matching dimensions is dropped entirely:
// no statement, and it is excluded from the active set Update works from.
func (c *Collector) Create() error {
	data, err := c.src.Fetch()
	if err != nil {
		c.event.Errorf(event.SOURCE_FETCH_ERROR, "create: %s", err)
		return FetchError{Err: err}
	}

	c.active = nil
	idx := 0
	for _, chartName := range c.charts.Order {
		def := c.charts.Defs[chartName]

		dims := make([]chartline.Dim, 0, len(def.Dims))
		for _, dim := range def.Dims {
			if _, ok := data[dim.Name]; ok {
				dims = append(dims, dim)
			}
		}
		if len(dims) == 0 {
			chartline.Debug("%s: chart %s: no dimensions in dataset, dropping", c.collectorId, chartName)
			continue
		}

		chartId := c.collectorId + "_" + c.name + "." + chartName
		c.writer.Chart(chartId, "", def.Title, def.Units, def.Family, def.Category,
			def.Type, c.cfg.Priority+idx, c.cfg.UpdateEvery)
		for _, dim := range dims {
			c.writer.Dimension(dim.Name, dim.DisplayName, dim.Algo, dim.Mul, dim.Div, dim.Hidden)
		}

		c.active = append(c.active, activeChart{id: chartId, dims: dims})
		idx++
	}

	if idx == 0 {
		c.event.Errorf(event.SOURCE_NO_CHARTS, "no chart matched any dataset metric")
		return fmt.Errorf("create: no chart matched any dataset metric")
	}
	return nil
}

// Update fetches a fresh dataset and emits one begin/set/end block per active
// chart with at least one dimension present this cycle. A chart whose
// dimensions are all absent emits nothing for the cycle, not an empty block.
func (c *Collector) Update(elapsed time.Duration) error {
	data, err := c.src.Fetch()
	if err != nil {
		c.event.Errorf(event.SOURCE_FETCH_ERROR, "update: %s", err)
		return FetchError{Err: err}
	}
	if data == nil {
		return fmt.Errorf("update: source returned no dataset")
	}

	for _, chart := range c.active {
		present := make([]chartline.Dim, 0, len(chart.dims))
		for _, dim := range chart.dims {
			if _, ok := data[dim.Name]; ok {
				present = append(present, dim)
			}
		}
		if len(present) == 0 {
			continue
		}
		if err := c.writer.Begin(chart.id, elapsed); err != nil {
			return err
		}
		for _, dim := range present {
			c.writer.Set(dim.Name, data[dim.Name]) // drop-on-error per statement
		}
		c.writer.End()
	}
	return nil
}
