// Copyright 2024 Block, Inc.

package mock

import (
	"time"

	"github.com/chartline/chartline"
)

var _ chartline.Collector = Collector{}

type Collector struct {
	IdFunc     func() string
	CheckFunc  func() error
	CreateFunc func() error
	UpdateFunc func(elapsed time.Duration) error
}

func (c Collector) ID() string {
	if c.IdFunc != nil {
		return c.IdFunc()
	}
	return "test"
}

func (c Collector) Check() error {
	if c.CheckFunc != nil {
		return c.CheckFunc()
	}
	return nil
}

func (c Collector) Create() error {
	if c.CreateFunc != nil {
		return c.CreateFunc()
	}
	return nil
}

func (c Collector) Update(elapsed time.Duration) error {
	if c.UpdateFunc != nil {
		return c.UpdateFunc(elapsed)
	}
	return nil
}
