// Package config holds the settings shared by the carving binaries.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config holds the carving configuration.
type Config struct {
	Seed          int64  `json:"seed"`
	Preset        string `json:"preset"`         // YAML path, empty for the built-in preset
	GeneratorType string `json:"generator_type"` // "default" or "flat"
	FlatHeight    int    `json:"flat_height"`
	Dimension     int    `json:"dimension"`
	Radius        int    `json:"radius"` // chunks carved around the origin
	Workers       int    `json:"workers"`
	Shuffle       bool   `json:"shuffle"`
	Index         string `json:"index"`  // sqlite path, empty disables
	Export        string `json:"export"` // region directory, empty disables
	Listen        string `json:"listen"` // preview server address
	LogLevel      string `json:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GeneratorType: "default",
		FlatHeight:    64,
		Radius:        4,
		Workers:       4,
		Listen:        ":8080",
		LogLevel:      "info",
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["preset"] {
		cfg.Preset = fromFile.Preset
	}
	if !explicitFlags["generator"] {
		cfg.GeneratorType = fromFile.GeneratorType
	}
	if !explicitFlags["flat-height"] {
		cfg.FlatHeight = fromFile.FlatHeight
	}
	if !explicitFlags["dimension"] {
		cfg.Dimension = fromFile.Dimension
	}
	if !explicitFlags["radius"] {
		cfg.Radius = fromFile.Radius
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["shuffle"] {
		cfg.Shuffle = fromFile.Shuffle
	}
	if !explicitFlags["index"] {
		cfg.Index = fromFile.Index
	}
	if !explicitFlags["export"] {
		cfg.Export = fromFile.Export
	}
	if !explicitFlags["listen"] {
		cfg.Listen = fromFile.Listen
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}

// Load reads a JSON config file on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically using a temp file + rename.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Validate reports settings no binary can run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.GeneratorType {
	case "default", "flat":
	default:
		errs = append(errs, fmt.Errorf("unknown generator %q", c.GeneratorType))
	}
	if c.GeneratorType == "flat" && (c.FlatHeight < 4 || c.FlatHeight > 255) {
		errs = append(errs, fmt.Errorf("flat height %d outside [4,255]", c.FlatHeight))
	}
	if c.Radius < 0 {
		errs = append(errs, fmt.Errorf("negative radius %d", c.Radius))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
