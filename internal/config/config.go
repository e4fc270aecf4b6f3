// Package config implements eelc's persisted configuration file and the
// flag/config precedence rule: an explicit command-line flag always
// wins over the value loaded from -config, which in turn wins over the
// struct's zero-value default.
//
// Patterned on internal/cli.Config/LoadConfig/SaveConfig
// (JSON-backed, tolerant of a missing file), generalized from its
// generic Verbose/Debug/WorkDir fields to eelc's own flag set
// (§6 "CLI").
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config mirrors every persistable eelc flag from §6. File is
// deliberately excluded — the input path is always a positional/required
// flag, never something worth persisting across runs.
type Config struct {
	Target  string `json:"target"`
	Test    bool   `json:"test"`
	Watch   bool   `json:"watch"`
	Verbose bool   `json:"verbose"`
	Debug   bool   `json:"debug"`
	JSON    bool   `json:"json"`
}

// Load reads path and returns a Config; a missing file yields the zero
// Config (every field its type's default) rather than an error, the way
// a first run with no saved preferences should behave.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %q: %w", path, err)
	}
	return nil
}

// ApplyFlagOverrides merges cfg with whatever the user actually typed on
// the command line. flagSet reports, per flag name, whether it was
// explicitly set — an explicitly-set flag always overrides the loaded
// config; an unset one defers to whatever Load already populated.
func (c *Config) ApplyFlagOverrides(target string, targetSet bool, test, testSet, watch, watchSet, verbose, verboseSet, debug, debugSet, jsonOut, jsonSet bool) {
	if targetSet {
		c.Target = target
	}
	if testSet {
		c.Test = test
	}
	if watchSet {
		c.Watch = watch
	}
	if verboseSet {
		c.Verbose = verbose
	}
	if debugSet {
		c.Debug = debug
	}
	if jsonSet {
		c.JSON = jsonOut
	}
}
