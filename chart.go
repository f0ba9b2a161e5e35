// Copyright 2024 Block, Inc.

package chartline

import (
	"fmt"
	"regexp"
)

// Chart declares one chart: its display options and the ordered dimensions
// it can emit. For dynamic-source collectors the declared dimensions are the
// superset; the live set is filtered against each fetched dataset.
type Chart struct {
	// Name is the chart name within the collector, like "connections".
	// The full chart id sent to the host is "<collectorId>_<instance>.<name>".
	Name string `yaml:"-"`

	Title  string `yaml:"title"`
	Units  string `yaml:"units"`
	Family string `yaml:"family,omitempty"`

	// Category groups the chart in the host UI, like "web" (optional).
	Category string `yaml:"category,omitempty"`

	// Type is the render type: "line", "area", or "stacked".
	// Empty defaults to "line" on the host side.
	Type string `yaml:"type,omitempty"`

	// Dims are the declared dimensions in emission order (required).
	Dims []Dim `yaml:"dims"`
}

// Dim declares one dimension of a chart. Name doubles as the dataset key the
// dimension is matched against.
type Dim struct {
	Name string `yaml:"name"`

	// DisplayName is shown by the host; empty means Name.
	DisplayName string `yaml:"display_name,omitempty"`

	// Algo is one of the algorithm constants; empty or invalid input is
	// corrected to Absolute by the protocol encoder.
	Algo string `yaml:"algo,omitempty"`

	// Mul and Div scale the value; zero is corrected to 1.
	Mul int `yaml:"mul,omitempty"`
	Div int `yaml:"div,omitempty"`

	Hidden bool `yaml:"hidden,omitempty"`
}

// Charts is the static chart definition table of a collector: an ordered list
// of chart names controlling creation and emission order, plus the definition
// of each. Supplied at construction and immutable thereafter.
type Charts struct {
	Order []string         `yaml:"order"`
	Defs  map[string]Chart `yaml:"defs"`
}

const namePattern = `^[a-zA-Z0-9_.-]+$`

var validNameRegex = regexp.MustCompile(namePattern)

func (c Charts) Validate() error {
	if len(c.Order) == 0 {
		return fmt.Errorf("charts: empty order")
	}
	seen := map[string]bool{}
	for _, name := range c.Order {
		if seen[name] {
			return fmt.Errorf("charts: duplicate chart in order: %s", name)
		}
		seen[name] = true

		chart, ok := c.Defs[name]
		if !ok {
			return fmt.Errorf("charts: %s in order but not defined", name)
		}
		if !validNameRegex.MatchString(name) {
			return fmt.Errorf("charts: invalid chart name: %s (does not match /%s/)", name, namePattern)
		}
		if len(chart.Dims) == 0 {
			return fmt.Errorf("charts: %s: no dimensions", name)
		}
		dims := map[string]bool{}
		for _, dim := range chart.Dims {
			if dim.Name == "" {
				return fmt.Errorf("charts: %s: dimension with empty name", name)
			}
			if dims[dim.Name] {
				return fmt.Errorf("charts: %s: duplicate dimension: %s", name, dim.Name)
			}
			dims[dim.Name] = true
		}
	}
	return nil
}
