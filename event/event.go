// Copyright 2024 Block, Inc.

// Package event provides a simple event stream in lieu of standard logging.
package event

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/chartline/chartline"
)

// Event is something that happened in the runtime. Events replace traditional
// logging. All parts of the runtime send detailed events about what's happening.
type Event struct {
	Ts          time.Time
	Event       string
	CollectorId string
	Message     string
	Error       bool
}

// A Receiver sends events to a destination. Use Tee to send events to multiple
// destinations. Implementations must be non-blocking; callers expect this.
type Receiver interface {
	// Recv receives one event asynchronously. It must not block.
	// A specific implementation determines what is done with the event:
	// logged, emitted to a pseudo metric, and so on.
	Recv(Event)
}

// SetReceiver sets the receiver used to handle events. The default receiver
// is Log. To override the default, call this function before starting any
// runner.
func SetReceiver(r Receiver, override bool) {
	if receiver != nil && !override {
		return
	}
	receiver = r
}

// receiver is the private package Receiver that the public functions below
// use. It defaults to a Log type receiver, but users can call SetReceiver
// to override.
var receiver Receiver = Log{}

var subscribers = []Receiver{}
var submux = &sync.Mutex{}

func Subscribe(r Receiver) {
	submux.Lock()
	subscribers = append(subscribers, r)
	submux.Unlock()
}

func RemoveSubscribers() {
	submux.Lock()
	subscribers = []Receiver{}
	submux.Unlock()
}

// Send sends an event with no additional message.
// This is a convenience function for Sendf.
// Non-collector parts of the runtime use this function.
func Send(eventName string) {
	send(Event{Ts: time.Now(), Event: eventName})
}

// Sendf sends an event and formatted message.
// Non-collector parts of the runtime use this function.
func Sendf(eventName string, msg string, args ...interface{}) {
	send(Event{
		Ts:      time.Now(),
		Event:   eventName,
		Message: fmt.Sprintf(msg, args...),
	})
}

// Errorf sends an event flagged as an error with a formatted message.
func Errorf(eventName string, msg string, args ...interface{}) {
	send(Event{
		Ts:      time.Now(),
		Event:   eventName,
		Message: fmt.Sprintf(msg, args...),
		Error:   true,
	})
}

func send(e Event) {
	receiver.Recv(e)
	submux.Lock()
	for _, s := range subscribers {
		s.Recv(e)
	}
	submux.Unlock()
}

// --------------------------------------------------------------------------

// CollectorReceiver is a Receiver bound to a single collector. Collectors and
// their runners use this type to send events with the collector ID.
type CollectorReceiver struct {
	CollectorId string
}

var _ Receiver = CollectorReceiver{}

func (s CollectorReceiver) Recv(e Event) {
	send(e)
}

// Send sends an event with no additional message from the collector.
// This is a convenience function for Sendf.
func (s CollectorReceiver) Send(eventName string) {
	send(Event{Ts: time.Now(), Event: eventName, CollectorId: s.CollectorId})
}

// Sendf sends an event and formatted message from the collector.
func (s CollectorReceiver) Sendf(eventName string, msg string, args ...interface{}) {
	send(Event{
		Ts:          time.Now(),
		Event:       eventName,
		Message:     fmt.Sprintf(msg, args...),
		CollectorId: s.CollectorId,
	})
}

func (s CollectorReceiver) Errorf(eventName string, msg string, args ...interface{}) {
	send(Event{
		Ts:          time.Now(),
		Event:       eventName,
		Message:     fmt.Sprintf(msg, args...),
		CollectorId: s.CollectorId,
		Error:       true,
	})
}

// --------------------------------------------------------------------------

var stderr = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)

// Log is the default Receiver that uses the Go built-in log package to print
// events to STDERR. STDOUT belongs to the output protocol, so all events,
// error or not, go to STDERR. Call SetReceiver to override this default.
type Log struct {
	All bool
}

func (s Log) Recv(e Event) {
	// Always print error events
	if e.Error {
		stderr.Printf("[%-25s] [%s] ERROR: %s", e.Event, e.CollectorId, e.Message)
		return
	}

	// Log all events?
	if s.All {
		stderr.Printf("[%-25s] [%s] %s", e.Event, e.CollectorId, e.Message)
		return
	}

	// If debugging, print all events
	if chartline.Debugging {
		stderr.Printf("[%-25s] [%s] %s", e.Event, e.CollectorId, e.Message)
		return
	}
}

// --------------------------------------------------------------------------

// Tee connects multiple Receiver, like the Unix tee command. It implements
// Receiver. On Tee.Recv, it copies the event to a real receiver: Tee.Receiver.
// Then it copies the event to Tee.Out, if Out is not nil. To "pipe fit"
// multiple Tee together, use another Tee for Out.
//
//	  event --> Tee.Recv --> Tee.Out.Recv // second
//				   |
//	            +-> Tee.Receiver.Recv // first
type Tee struct {
	Receiver Receiver
	Out      Receiver
}

func (t Tee) Recv(e Event) {
	t.Receiver.Recv(e)
	if t.Out != nil {
		t.Out.Recv(e)
	}
}
