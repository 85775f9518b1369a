// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable Load reads the config path from.
const EnvironmentVariable = "IPFW_CONFIG"

// Log formats accepted in log.format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the forwarder configuration.
type Config struct {
	// Listen is the address to accept connections on, as host:port.
	Listen string `yaml:"listen"`

	// Target is the address every accepted connection is forwarded to.
	Target string `yaml:"target"`

	// V6Only restricts the listener to IPv6 traffic. Listen must then
	// be an IPv6 address.
	V6Only bool `yaml:"v6_only"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is a slog level name: debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`

	// Format selects the slog handler: text or json.
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the configuration used before any file or flag is
// applied. Listen and Target have no defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Load loads configuration from the file named by IPFW_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your ipfw.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path on top of
// Default. Unknown keys are rejected so that a misspelled option fails
// loudly instead of being ignored.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in the addresses.
func (c *Config) expandVariables() {
	c.Listen = expandVars(c.Listen)
	c.Target = expandVars(c.Target)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, fmt.Errorf("listen address is required"))
	}
	if c.Target == "" {
		errs = append(errs, fmt.Errorf("target address is required"))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	formats := []string{FormatText, FormatJSON}
	if !slices.Contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel returns the configured level, or slog.LevelInfo if Level
// does not parse. Call Validate first to reject bad values.
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
