package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate, got: %v", err)
	}
	if len(cfg.Patterns) != 4 {
		t.Errorf("Expected 4 default patterns, got %d", len(cfg.Patterns))
	}
	if cfg.Pipeline.BatchSize != 100 {
		t.Errorf("Expected default batch size 100, got %d", cfg.Pipeline.BatchSize)
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	// 1. Write a partial config file
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
patterns: [GET, POST]
pipeline:
  batch_size: 25
scatter:
  transport: nats
  nats_url: nats://broker:4222
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	// 2. Load it
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// 3. Overridden values come from the file, the rest keep their defaults
	if len(cfg.Patterns) != 2 || cfg.Patterns[0] != "GET" || cfg.Patterns[1] != "POST" {
		t.Errorf("Unexpected patterns: %v", cfg.Patterns)
	}
	if cfg.Pipeline.BatchSize != 25 {
		t.Errorf("Expected batch size 25, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.QueueSize != 4 {
		t.Errorf("Expected default queue size 4, got %d", cfg.Pipeline.QueueSize)
	}
	if cfg.Scatter.Transport != "nats" || cfg.Scatter.NATSURL != "nats://broker:4222" {
		t.Errorf("Unexpected scatter config: %+v", cfg.Scatter)
	}
	if cfg.Scatter.SubjectPrefix != "payloadscan" {
		t.Errorf("Expected default subject prefix, got '%s'", cfg.Scatter.SubjectPrefix)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty pattern", "patterns: [http, '']"},
		{"no patterns", "patterns: []"},
		{"bad backend", "capture: {backend: afpacket}"},
		{"zero batch", "pipeline: {batch_size: 0}"},
		{"zero chunk", "scan: {min_chunk: 0}"},
		{"bad transport", "scatter: {transport: mpi}"},
		{"bad format", "output: {format: csv}"},
		{"bad log level", "log: {level: verbose}"},
		{"broken yaml", "patterns: [http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("Parse(%q) should fail", tt.yaml)
			}
		})
	}
}
