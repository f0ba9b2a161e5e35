// Copyright 2024 Block, Inc.

package chartline

import (
	"fmt"
)

// ErrNotImplemented is returned by the Base defaults when a collector omits
// a required contract method.
type ErrNotImplemented struct {
	CollectorId string
	Op          string
}

func (e ErrNotImplemented) Error() string {
	return fmt.Sprintf("collector %s does not implement %s()", e.CollectorId, e.Op)
}

// ConfigError reports missing or invalid required configuration. It is fatal:
// a collector with a ConfigError never enters scheduling.
type ConfigError struct {
	Key    string
	Value  string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s (%s)", e.Key, e.Value, e.Reason)
}
