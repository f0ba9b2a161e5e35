// Copyright 2024 Block, Inc.

// Package runner drives one collector through repeated timed cycles. Each
// collector owns one independent Runner goroutine; the only shared resource
// between runners is the protocol output, which serializes commits itself.
package runner

import (
	"fmt"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/event"
	"github.com/chartline/chartline/protocol"
	"github.com/chartline/chartline/status"
)

// timetable governs when the next cycle is due. The invariant after every
// successful cycle is next = now - (now mod freq) + freq, aligned to freq
// boundaries regardless of per-cycle latency, so N successful cycles advance
// next by exactly N*freq (no cumulative drift).
type timetable struct {
	last time.Time
	next time.Time
	freq time.Duration
}

func newTimetable(now time.Time, freq time.Duration) timetable {
	return timetable{
		last: now,
		next: nextTick(now, freq),
		freq: freq,
	}
}

func nextTick(now time.Time, freq time.Duration) time.Time {
	return now.Truncate(freq).Add(freq)
}

// Runner executes one collector: Check and Create once via Prepare, then
// Update per cycle in Run until retries are exhausted, a fault escapes the
// contract, or the host stops it.
//
// Retry policy: the budget is fixed at construction (Config.Retries). A
// private retriesLeft counter, owned exclusively by the Runner goroutine,
// decrements on each consecutive cycle failure and resets to the full budget
// on success. Reaching zero terminates the collector permanently. No other
// component reads or writes retry state.
type Runner struct {
	collector chartline.Collector
	cfg       chartline.Config
	writer    *protocol.Writer
	// --
	name        string
	freq        time.Duration
	maxRetries  int
	retriesLeft int
	tt          timetable
	selfChart   string
	event       event.CollectorReceiver
}

type RunnerArgs struct {
	Collector chartline.Collector
	Config    chartline.Config
	Writer    *protocol.Writer

	// Name is the instance name, unique per runner. The host can run the
	// same collector many times (different targets, different intervals),
	// so the runner's self-chart, status entries, and metric labels key on
	// the instance, never the collector. Empty defaults to Collector.ID().
	Name string

	// Freq overrides Config.UpdateEvery. This is only set for testing;
	// do not set outside testing.
	Freq time.Duration
}

func NewRunner(args RunnerArgs) *Runner {
	name := args.Name
	if name == "" {
		name = args.Collector.ID()
	}
	freq := args.Freq
	if freq == 0 {
		freq = time.Duration(args.Config.UpdateEvery) * time.Second
	}
	return &Runner{
		collector: args.Collector,
		cfg:       args.Config,
		writer:    args.Writer,
		// --
		name:        name,
		freq:        freq,
		maxRetries:  args.Config.Retries,
		retriesLeft: args.Config.Retries,
		tt:          newTimetable(time.Now(), freq),
		selfChart:   "chartline.run_time_" + name,
		event:       event.CollectorReceiver{CollectorId: name},
	}
}

// Prepare runs the one-time Check and Create contract calls and registers the
// runner's own run_time chart. An error (or a panic in collector code) means
// the collector is never scheduled; do not call Run after Prepare fails.
func (r *Runner) Prepare() error {
	status.Collector(r.name, status.RUNNER, "checking")
	if err := r.call(r.collector.Check); err != nil {
		r.writer.Discard()
		r.event.Errorf(event.RUNNER_CHECK_ERROR, "check: %s", err)
		status.Collector(r.name, status.RUNNER, "check failed: %s", err)
		return fmt.Errorf("check %s: %s", r.name, err)
	}

	status.Collector(r.name, status.RUNNER, "creating charts")
	if err := r.call(r.collector.Create); err != nil {
		r.writer.Discard()
		r.event.Errorf(event.RUNNER_CREATE_ERROR, "create: %s", err)
		status.Collector(r.name, status.RUNNER, "create failed: %s", err)
		return fmt.Errorf("create %s: %s", r.name, err)
	}

	// Processing latency of each successful cycle is reported as a chart of
	// its own, alongside the collector's charts.
	r.writer.Chart(r.selfChart, "", "Execution time for "+r.name, "ms",
		"chartline", "chartline.run_time", "line", 145000, r.cfg.UpdateEvery)
	r.writer.Dimension("run_time", "run time", chartline.Absolute, 1, 1, false)

	if err := r.writer.Commit(); err != nil {
		return fmt.Errorf("create %s: commit: %s", r.name, err)
	}
	return nil
}

// Run runs the scheduling loop; it's a blocking call. It returns cleanly in
// every case: retries exhausted, a fault that escaped the contract, or
// stopChan closed by the host at shutdown. It never propagates a crash.
func (r *Runner) Run(stopChan, doneChan chan struct{}) error {
	defer close(doneChan)

	r.event.Send(event.RUNNER_START)
	status.Collector(r.name, status.RUNNER, "started at %s", chartline.FormatTime(time.Now()))

	// Failed cycles retry after one freq interval without advancing next.
	retryWait := backoff.NewConstantBackOff(r.freq)

	for {
		// Not due yet? Suspend until due without invoking collection.
		now := time.Now()
		if wait := r.tt.next.Sub(now); wait > 0 {
			status.Collector(r.name, status.RUNNER, "idle; next cycle at %s", chartline.FormatTime(r.tt.next))
			select {
			case <-stopChan:
				r.stop()
				return nil
			case <-time.After(wait):
			}
		}
		select {
		case <-stopChan:
			r.stop()
			return nil
		default:
		}

		ok, fatal := r.cycle()
		if fatal {
			status.Collector(r.name, status.RUNNER, "terminated: unhandled fault")
			return nil
		}
		if ok {
			r.retriesLeft = r.maxRetries
			continue
		}

		// Cycle failed: burn one retry. next is left unadvanced so the
		// retried cycle still belongs to the same schedule slot.
		r.retriesLeft--
		if r.retriesLeft <= 0 {
			r.event.Errorf(event.RUNNER_RETRIES_EXHAUSTED, "no more retries (%d consecutive failures), exiting", r.maxRetries)
			status.Collector(r.name, status.RUNNER, "terminated: retries exhausted")
			return nil
		}
		r.event.Sendf(event.RUNNER_RETRY, "cycle failed, %d retries left", r.retriesLeft)
		status.Collector(r.name, status.RUNNER, "backoff; %d retries left", r.retriesLeft)
		select {
		case <-stopChan:
			r.stop()
			return nil
		case <-time.After(retryWait.NextBackOff()):
		}
	}
}

// cycle invokes one Update and, on success, recomputes the timetable and
// emits the run_time self-chart. fatal is true only when a fault escaped the
// contract (a panic); that bypasses the retry counter entirely.
func (r *Runner) cycle() (ok, fatal bool) {
	t0 := time.Now()
	sinceLast := t0.Sub(r.tt.last)
	status.Collector(r.name, status.RUNNER_CYCLE, "collecting since %s", chartline.FormatTime(r.tt.last))

	err := r.call(func() error { return r.collector.Update(sinceLast) })
	if err != nil {
		r.writer.Discard() // never commit a partial block
		if _, escaped := err.(panicError); escaped {
			cycleTotal.WithLabelValues(r.name, "fatal").Inc()
			return false, true
		}
		r.event.Errorf(event.RUNNER_UPDATE_ERROR, "update: %s", err)
		cycleTotal.WithLabelValues(r.name, "error").Inc()
		return false, false
	}

	if err := r.writer.Commit(); err != nil {
		cycleTotal.WithLabelValues(r.name, "error").Inc()
		return false, false
	}

	t1 := time.Now()
	r.tt.next = nextTick(t1, r.tt.freq)

	// Report this cycle's processing latency on the runner's own chart.
	r.writer.Begin(r.selfChart, sinceLast)
	r.writer.Set("run_time", float64(t1.Sub(t0).Milliseconds()))
	r.writer.End()
	r.writer.Commit()

	r.tt.last = t0
	cycleTotal.WithLabelValues(r.name, "ok").Inc()
	cycleDuration.WithLabelValues(r.name).Observe(t1.Sub(t0).Seconds())
	status.Collector(r.name, status.RUNNER_CYCLE, "last cycle at %s in %s", chartline.FormatTime(t0), t1.Sub(t0))
	chartline.Debug("%s: cycle done in %s", r.name, t1.Sub(t0))
	return true, false
}

// panicError marks a fault that escaped the contract. It is fatal and
// bypasses retry accounting.
type panicError struct {
	p interface{}
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.p)
}

// call invokes one contract operation, converting a panic in collector code
// into a panicError after logging the stack.
func (r *Runner) call(op func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			b := make([]byte, 4096)
			n := runtime.Stack(b, false)
			r.event.Errorf(event.RUNNER_PANIC, "PANIC: %s: %v\n%s", r.name, p, string(b[0:n]))
			err = panicError{p: p}
		}
	}()
	return op()
}

func (r *Runner) stop() {
	r.event.Send(event.RUNNER_STOP)
	status.Collector(r.name, status.RUNNER, "stopped at %s", chartline.FormatTime(time.Now()))
}
