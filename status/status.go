// Copyright 2024 Block, Inc.

// Package status provides real-time instantaneous status of every runtime
// component. The host binary reports it via GET /status and on demand.
package status

import (
	"fmt"
	"sync"
)

// Component names reported by the runner for each collector.
const (
	RUNNER       = "runner"
	RUNNER_CYCLE = "runner-cycle"
)

type status struct {
	*sync.Mutex
	runtime    map[string]string
	collectors map[string]map[string]string
}

var s = &status{
	Mutex:      &sync.Mutex{},
	runtime:    map[string]string{},
	collectors: map[string]map[string]string{}, // collectorId => component
}

func Runtime(component, msg string, args ...interface{}) {
	s.Lock()
	s.runtime[component] = fmt.Sprintf(msg, args...)
	s.Unlock()
}

func Collector(collectorId, component string, msg string, args ...interface{}) {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.collectors[collectorId]; !ok {
		s.collectors[collectorId] = map[string]string{}
	}
	s.collectors[collectorId][component] = fmt.Sprintf(msg, args...)
}

func RemoveComponent(collectorId, component string) {
	s.Lock()
	m, ok := s.collectors[collectorId]
	if ok {
		delete(m, component)
	}
	s.Unlock()
}

func RemoveCollector(collectorId string) {
	s.Lock()
	delete(s.collectors, collectorId)
	s.Unlock()
}

func ReportRuntime() map[string]string {
	s.Lock()
	defer s.Unlock()
	status := map[string]string{}
	for k, v := range s.runtime {
		status[k] = v
	}
	return status
}

func ReportCollectors() map[string]map[string]string {
	s.Lock()
	defer s.Unlock()
	status := map[string]map[string]string{}
	for id, components := range s.collectors {
		m := map[string]string{}
		for k, v := range components {
			m[k] = v
		}
		status[id] = m
	}
	return status
}

// Reset clears all status. It is used for testing.
func Reset() {
	s.Lock()
	s.runtime = map[string]string{}
	s.collectors = map[string]map[string]string{}
	s.Unlock()
}
