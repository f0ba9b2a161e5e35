// Copyright 2024 Block, Inc.

// Package phpfpm collects metrics from a php-fpm status page served as JSON
// (pm.status_path with ?json). It is a thin chart table over the dynamic
// source derivation: whichever status fields the running php-fpm version
// exposes determine the charts actually emitted.
package phpfpm

import (
	"time"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/protocol"
	"github.com/chartline/chartline/source"
)

func New(cfg chartline.Config, w *protocol.Writer) (chartline.Collector, error) {
	if cfg.URL == "" {
		return nil, chartline.ConfigError{Key: "url", Reason: "required for phpfpm"}
	}
	src := source.NewHTTP(cfg.URL, time.Duration(cfg.UpdateEvery)*time.Second, source.ParseJSON)
	return source.NewCollector(source.CollectorArgs{
		CollectorId: "phpfpm",
		Config:      cfg,
		Charts:      charts(),
		Source:      src,
		Writer:      w,
	})
}

// charts is the declared superset; dimensions are matched against the
// normalized JSON field names of the status page ("accepted conn" becomes
// accepted_conn, and so on).
func charts() chartline.Charts {
	return chartline.Charts{
		Order: []string{"connections", "requests", "performance"},
		Defs: map[string]chartline.Chart{
			"connections": {
				Title:  "PHP-FPM Active Connections",
				Units:  "connections",
				Family: "phpfpm",
				Type:   "line",
				Dims: []chartline.Dim{
					{Name: "active_processes", DisplayName: "active"},
					{Name: "max_active_processes", DisplayName: "max active"},
					{Name: "idle_processes", DisplayName: "idle"},
				},
			},
			"requests": {
				Title:  "PHP-FPM Requests",
				Units:  "requests/s",
				Family: "phpfpm",
				Type:   "line",
				Dims: []chartline.Dim{
					{Name: "accepted_conn", DisplayName: "requests", Algo: chartline.Incremental},
				},
			},
			"performance": {
				Title:  "PHP-FPM Performance",
				Units:  "status",
				Family: "phpfpm",
				Type:   "line",
				Dims: []chartline.Dim{
					{Name: "max_children_reached", DisplayName: "max children reached"},
					{Name: "slow_requests", DisplayName: "slow requests", Algo: chartline.Incremental},
				},
			},
		},
	}
}
