// Copyright 2024 Block, Inc.

package mock

import (
	"github.com/chartline/chartline"
	"github.com/chartline/chartline/source"
)

var _ source.DataSource = &DataSource{}

// DataSource replays a fixed sequence of datasets. The last entry repeats
// once the sequence is exhausted.
type DataSource struct {
	FetchFunc func() (chartline.Dataset, error)
	Datasets  []chartline.Dataset

	Calls int
}

func (s *DataSource) Fetch() (chartline.Dataset, error) {
	s.Calls++
	if s.FetchFunc != nil {
		return s.FetchFunc()
	}
	if len(s.Datasets) == 0 {
		return nil, nil
	}
	i := s.Calls - 1
	if i >= len(s.Datasets) {
		i = len(s.Datasets) - 1
	}
	return s.Datasets[i], nil
}
