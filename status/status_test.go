// Copyright 2024 Block, Inc.

package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chartline/chartline/status"
)

func TestCollectorStatus(t *testing.T) {
	status.Reset()

	// Empty status when nothing has been reported
	got := status.ReportCollectors()
	expect := map[string]map[string]string{}
	assert.Equal(t, expect, got)

	status.Collector("c1", status.RUNNER, "idle")
	status.Collector("c1", status.RUNNER_CYCLE, "collecting")
	status.Collector("c2", status.RUNNER, "backoff; %d retries left", 2)

	got = status.ReportCollectors()
	expect = map[string]map[string]string{
		"c1": {
			status.RUNNER:       "idle",
			status.RUNNER_CYCLE: "collecting",
		},
		"c2": {
			status.RUNNER: "backoff; 2 retries left",
		},
	}
	assert.Equal(t, expect, got)

	// Re-reporting a component replaces its message
	status.Collector("c1", status.RUNNER, "terminated: retries exhausted")
	got = status.ReportCollectors()
	assert.Equal(t, "terminated: retries exhausted", got["c1"][status.RUNNER])

	// Removing one component does not affect the others
	status.RemoveComponent("c1", status.RUNNER_CYCLE)
	got = status.ReportCollectors()
	expect = map[string]map[string]string{
		"c1": {
			status.RUNNER: "terminated: retries exhausted",
		},
		"c2": {
			status.RUNNER: "backoff; 2 retries left",
		},
	}
	assert.Equal(t, expect, got)

	// Removing is idempotent
	status.RemoveComponent("c1", status.RUNNER_CYCLE)
	assert.Equal(t, expect, status.ReportCollectors())

	status.RemoveCollector("c1")
	got = status.ReportCollectors()
	if _, ok := got["c1"]; ok {
		t.Error("c1 still reported after RemoveCollector")
	}
}

func TestRuntimeStatus(t *testing.T) {
	status.Reset()

	status.Runtime("host", "running since %s", "2024-05-01T12:00:00Z")
	got := status.ReportRuntime()
	expect := map[string]string{
		"host": "running since 2024-05-01T12:00:00Z",
	}
	assert.Equal(t, expect, got)
}
