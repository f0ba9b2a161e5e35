// Copyright 2024 Block, Inc.

package chartline

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	DEFAULT_UPDATE_EVERY = 1      // seconds
	DEFAULT_PRIORITY     = 140000 // host chart menu ordering
	DEFAULT_RETRIES      = 10     // consecutive cycle failures before terminating
)

// Config is the per-collector runtime configuration supplied by the host as
// a key-value mapping. The runtime consumes update_every, priority, retries,
// override_name, and url; every other key passes through untouched in Options
// for the concrete collector.
type Config struct {
	UpdateEvery  int    `yaml:"update_every"`
	Priority     int    `yaml:"priority"`
	Retries      int    `yaml:"retries"`
	OverrideName string `yaml:"override_name,omitempty"`

	// URL is the target resource descriptor for dynamic-source collectors.
	URL string `yaml:"url,omitempty"`

	// Options holds all keys the runtime does not consume.
	Options map[string]string `yaml:",inline"`
}

func DefaultConfig() Config {
	return Config{
		UpdateEvery: DEFAULT_UPDATE_EVERY,
		Priority:    DEFAULT_PRIORITY,
		Retries:     DEFAULT_RETRIES,
		Options:     map[string]string{},
	}
}

// ConfigFromOptions builds a Config from the raw key-value mapping supplied
// by the host. Consumed keys are removed from the passthrough options; an
// unparsable consumed value is a ConfigError.
func ConfigFromOptions(opts map[string]string) (Config, error) {
	cfg := DefaultConfig()
	for k, v := range opts {
		switch k {
		case "update_every":
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, ConfigError{Key: k, Value: v, Reason: "integer seconds required"}
			}
			cfg.UpdateEvery = n
		case "priority":
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, ConfigError{Key: k, Value: v, Reason: "integer required"}
			}
			cfg.Priority = n
		case "retries":
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, ConfigError{Key: k, Value: v, Reason: "integer required"}
			}
			cfg.Retries = n
		case "override_name":
			cfg.OverrideName = v
		case "url":
			cfg.URL = v
		default:
			cfg.Options[k] = v
		}
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.UpdateEvery < 1 {
		return ConfigError{Key: "update_every", Value: strconv.Itoa(c.UpdateEvery), Reason: "must be >= 1"}
	}
	if c.Priority < 0 {
		return ConfigError{Key: "priority", Value: strconv.Itoa(c.Priority), Reason: "must be >= 0"}
	}
	if c.Retries < 1 {
		return ConfigError{Key: "retries", Value: strconv.Itoa(c.Retries), Reason: "must be >= 1"}
	}
	return nil
}

// LoadConfig reads one collector config from a YAML file, overlaying cfg.
func LoadConfig(filePath string, cfg Config) (Config, error) {
	file, err := filepath.Abs(filePath)
	if err != nil {
		return Config{}, err
	}
	Debug("config file: %s (%s)", filePath, file)

	bytes, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %s", err)
	}

	if err := yaml.Unmarshal(bytes, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot decode YAML in %s: %s", file, err)
	}

	return cfg, cfg.Validate()
}
