// Copyright 2024 Block, Inc.

package protocol

import (
	"io"
	"os"
	"sync"
)

// Output is the shared serialized channel that collectors commit statement
// blocks to. A single mutex guarantees that one commit's entire block is
// written without interleaving from a concurrently committing collector.
type Output struct {
	mu *sync.Mutex
	w  io.Writer
}

func NewOutput(w io.Writer) *Output {
	return &Output{
		mu: &sync.Mutex{},
		w:  w,
	}
}

// Stdout is the process-wide output read by the monitoring host. Every
// collector in the process commits through it.
var Stdout = NewOutput(os.Stdout)

var _ io.Writer = &Output{}

// Write writes one complete statement block. It holds the output lock for
// the whole write, so blocks from concurrent committers never interleave.
func (o *Output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}
