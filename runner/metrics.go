// Copyright 2024 Block, Inc.

package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Runner self-instrumentation. The host binary can expose these via
// promhttp; they observe the runtime itself, not collected metrics.
var (
	cycleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chartline_cycles_total",
		Help: "Total collection cycles by collector and status (ok, error, fatal).",
	}, []string{"collector", "status"})

	cycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chartline_cycle_duration_seconds",
		Help:    "Processing latency of successful cycles by collector.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collector"})
)
