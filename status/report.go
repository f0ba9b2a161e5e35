// Copyright 2024 Block, Inc.

package status

// Report is the structured status the host binary serves via GET /status.
type Report struct {
	Started        string            // ISO timestamp (UTC)
	Uptime         int64             // seconds
	CollectorCount uint              // number of collectors running
	Runtime        map[string]string // runtime components
	Collectors     map[string]map[string]string
	Version        string
}
