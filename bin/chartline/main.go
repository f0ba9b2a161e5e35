// Copyright 2024 Block, Inc.

// chartline runs a set of collector instances declared in a YAML file and
// streams their output protocol to stdout for the monitoring host. This is
// a reference host; real deployments embed the runtime behind their own
// plugin loader.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v2"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/collectors"
	"github.com/chartline/chartline/event"
	"github.com/chartline/chartline/protocol"
	"github.com/chartline/chartline/runner"
	"github.com/chartline/chartline/status"
)

var options struct {
	Config          string `arg:"--config,env:CHARTLINE_CONFIG" default:"chartline.yaml" help:"instances config file"`
	Listen          string `arg:"--listen,env:CHARTLINE_LISTEN" help:"addr for /metrics and /status (off if empty)"`
	Debug           bool   `arg:"--debug,env:CHARTLINE_DEBUG" help:"print debug to stderr"`
	PrintCollectors bool   `arg:"--print-collectors" help:"list registered collectors and exit"`
	Version         bool   `arg:"--version" help:"print version and exit"`
}

// hostConfig declares the collector instances to run. Every key other than
// "collector" passes through to the runtime config for that instance.
type hostConfig struct {
	Collectors map[string]instanceConfig `yaml:"collectors"`
}

type instanceConfig struct {
	Collector string            `yaml:"collector"`
	Options   map[string]string `yaml:",inline"`
}

func main() {
	arg.MustParse(&options)

	if options.Version {
		fmt.Println("chartline " + chartline.VERSION)
		return
	}
	if options.PrintCollectors {
		fmt.Println(strings.Join(collectors.List(), "\n"))
		return
	}
	if options.Debug {
		chartline.Debugging = true
	}

	event.Sendf(event.BOOT, "chartline %s", chartline.VERSION)
	startTime := time.Now()

	event.Sendf(event.BOOT_CONFIG_LOADING, options.Config)
	bytes, err := os.ReadFile(options.Config)
	if err != nil {
		event.Errorf(event.BOOT_CONFIG_ERROR, "cannot read config file: %s", err)
		os.Exit(1)
	}
	var cfg hostConfig
	if err := yaml.Unmarshal(bytes, &cfg); err != nil {
		event.Errorf(event.BOOT_CONFIG_ERROR, "cannot decode YAML in %s: %s", options.Config, err)
		os.Exit(1)
	}
	event.Sendf(event.BOOT_CONFIG_LOADED, "%d collector instances", len(cfg.Collectors))

	// One stop channel closed at shutdown stops every runner; each runner
	// closes its own done channel on clean return.
	stopChan := make(chan struct{})
	doneChans := []chan struct{}{}

	started := uint(0)
	for name, inst := range cfg.Collectors {
		ccfg, err := chartline.ConfigFromOptions(inst.Options)
		if err != nil {
			event.Errorf(event.BOOT_CONFIG_ERROR, "%s: %s", name, err)
			continue
		}
		w := protocol.NewWriter(name, protocol.Stdout)
		c, err := collectors.Make(inst.Collector, collectors.FactoryArgs{Config: ccfg, Writer: w})
		if err != nil {
			event.Errorf(event.BOOT_CONFIG_ERROR, "%s: %s", name, err)
			continue
		}
		r := runner.NewRunner(runner.RunnerArgs{Collector: c, Config: ccfg, Writer: w, Name: name})
		if err := r.Prepare(); err != nil {
			// Prepare already sent the check/create error event
			continue
		}
		doneChan := make(chan struct{})
		doneChans = append(doneChans, doneChan)
		go r.Run(stopChan, doneChan)
		started++
	}
	if started == 0 {
		event.Errorf(event.BOOT_CONFIG_ERROR, "no collector started")
		os.Exit(1)
	}

	if options.Listen != "" {
		go listen(options.Listen, startTime, started)
	}

	status.Runtime("host", "running since %s", chartline.FormatTime(startTime))
	event.Sendf(event.HOST_RUN, "%d collectors running", started)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	event.Send(event.HOST_SHUTDOWN)
	close(stopChan)
	for _, doneChan := range doneChans {
		<-doneChan
	}
}

// listen serves runner self-metrics and instantaneous status. This is for
// the operator, not the monitoring host; the host only reads stdout.
func listen(addr string, startTime time.Time, n uint) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		report := status.Report{
			Started:        chartline.FormatTime(startTime),
			Uptime:         int64(time.Since(startTime).Seconds()),
			CollectorCount: n,
			Runtime:        status.ReportRuntime(),
			Collectors:     status.ReportCollectors(),
			Version:        chartline.VERSION,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("http.ListenAndServe failed: %s", err)
	}
}
