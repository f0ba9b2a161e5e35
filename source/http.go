// Copyright 2024 Block, Inc.

package source

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chartline/chartline"
)

// ParseFunc turns the raw bytes of one fetch into a dataset.
type ParseFunc func([]byte) (chartline.Dataset, error)

// HTTP is a DataSource that fetches raw bytes from a URL and parses them
// with a collector-supplied ParseFunc. HTTP is one consumer of the dynamic
// derivation, not a requirement of it.
type HTTP struct {
	url    string
	client *http.Client
	parse  ParseFunc
}

func NewHTTP(url string, timeout time.Duration, parse ParseFunc) *HTTP {
	return &HTTP{
		url:    url,
		client: &http.Client{Timeout: timeout},
		parse:  parse,
	}
}

func (h *HTTP) Fetch() (chartline.Dataset, error) {
	resp, err := h.client.Get(h.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: response code %d", h.url, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return h.parse(raw)
}

// ParseJSON parses a flat JSON object into a dataset, keeping numeric fields
// and ignoring the rest. Spaces in keys are normalized to underscores so
// sources like the php-fpm status page ("accepted conn") yield well-formed
// dimension names.
func ParseJSON(raw []byte) (chartline.Dataset, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("cannot decode JSON: %s", err)
	}
	data := chartline.Dataset{}
	for k, v := range fields {
		n, ok := v.(float64)
		if !ok {
			continue
		}
		data[strings.ReplaceAll(k, " ", "_")] = n
	}
	return data, nil
}
