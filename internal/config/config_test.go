package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestMergeKeepsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Radius = 2

	file := DefaultConfig()
	file.Seed = 99
	file.Radius = 10
	file.Preset = "caves.yaml"

	Merge(cfg, file, map[string]bool{"seed": true})

	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7 (explicit flag)", cfg.Seed)
	}
	if cfg.Radius != 10 {
		t.Errorf("Radius = %d, want 10 (from file)", cfg.Radius)
	}
	if cfg.Preset != "caves.yaml" {
		t.Errorf("Preset = %q, want caves.yaml", cfg.Preset)
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(missing): %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}

	cfg.Seed = -42
	cfg.GeneratorType = "flat"
	cfg.Shuffle = true
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"seed": 5}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 5 || cfg.Workers != 4 || cfg.GeneratorType != "default" {
		t.Errorf("Load = %+v, want seed 5 over defaults", cfg)
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"seed":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load succeeded on truncated JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"generator", func(c *Config) { c.GeneratorType = "amplified" }, "unknown generator"},
		{"flat height", func(c *Config) { c.GeneratorType = "flat"; c.FlatHeight = 2 }, "flat height"},
		{"radius", func(c *Config) { c.Radius = -1 }, "negative radius"},
		{"workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	l, err := cfg.Level()
	if err != nil {
		t.Fatalf("Level: %v", err)
	}
	if l != slog.LevelDebug {
		t.Errorf("Level = %v, want DEBUG", l)
	}
}
