// Copyright 2024 Block, Inc.

// Package collectors is the host integration point: a registry of collector
// factories keyed by collector name. The built-in collectors are registered
// in an init function; users plug in new collectors by registering their own
// factory before building instances.
package collectors

import (
	"fmt"
	"sync"

	"github.com/chartline/chartline"
	"github.com/chartline/chartline/collectors/example"
	"github.com/chartline/chartline/collectors/phpfpm"
	"github.com/chartline/chartline/event"
	"github.com/chartline/chartline/protocol"
)

// FactoryArgs are passed to a Factory to make one collector instance.
type FactoryArgs struct {
	Config chartline.Config
	Writer *protocol.Writer
}

// Factory makes one or more collectors by name.
type Factory interface {
	Make(name string, args FactoryArgs) (chartline.Collector, error)
}

// Register registers a factory that makes one or more collectors by name.
func Register(name string, f Factory) error {
	r.Lock()
	defer r.Unlock()
	_, ok := r.factory[name]
	if ok {
		return fmt.Errorf("%s already registered", name)
	}
	r.factory[name] = f
	event.Sendf(event.REGISTER_COLLECTOR, name)
	return nil
}

// Remove removes the collector factory for the given name. This is used for
// testing, but it can also be used to remove (or override) built-in
// collectors.
func Remove(name string) {
	r.Lock()
	defer r.Unlock()
	delete(r.factory, name)
	chartline.Debug("removed collector %s", name)
}

// List lists all registered collector names.
func List() []string {
	r.Lock()
	defer r.Unlock()
	names := []string{}
	for k := range r.factory {
		names = append(names, k)
	}
	return names
}

// Exists returns true if a collector with the name has been registered.
func Exists(name string) bool {
	r.Lock()
	defer r.Unlock()
	_, ok := r.factory[name]
	return ok
}

// Make makes a collector using a previously registered factory.
func Make(name string, args FactoryArgs) (chartline.Collector, error) {
	r.Lock()
	defer r.Unlock()
	f, ok := r.factory[name]
	if !ok {
		return nil, fmt.Errorf("invalid collector: %s (no factory registered)", name)
	}
	return f.Make(name, args)
}

// --------------------------------------------------------------------------

// Register built-in collectors using the built-in factory.
func init() {
	for _, name := range builtinCollectors {
		Register(name, f)
	}
}

// repo holds registered factories. There's a single package instance below.
type repo struct {
	*sync.Mutex
	factory map[string]Factory
}

var r = &repo{
	Mutex:   &sync.Mutex{},
	factory: map[string]Factory{},
}

// factory makes all built-in collectors. There's a single package instance
// below, registered in the init func above.
type factory struct{}

var _ Factory = factory{}

var f = factory{}

func (f factory) Make(name string, args FactoryArgs) (chartline.Collector, error) {
	switch name {
	case "example":
		return example.New(args.Config, args.Writer), nil
	case "phpfpm":
		return phpfpm.New(args.Config, args.Writer)
	}
	return nil, fmt.Errorf("invalid collector: %s", name)
}

// List of built-in collectors. To add one, add its name here, and add the
// same name in the switch statement above (in factory.Make).
var builtinCollectors = []string{
	"example",
	"phpfpm",
}
