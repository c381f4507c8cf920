package config

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPatterns are the target strings counted when the config file does not list any.
var DefaultPatterns = []string{"http", "Linux", "NOTIFY", "LOCATION"}

// CaptureConfig selects how the capture file is read.
type CaptureConfig struct {
	// Backend is "pcapgo" (pure Go) or "libpcap" (requires the libpcap build tag).
	Backend string `yaml:"backend"`
}

// ScanConfig holds the settings of the data-parallel scan strategy.
type ScanConfig struct {
	MinChunk int `yaml:"min_chunk"`
}

// PipelineConfig holds the settings of the bounded-batch pipeline strategy.
type PipelineConfig struct {
	BatchSize int `yaml:"batch_size"`
	QueueSize int `yaml:"queue_size"`
}

// ScatterConfig holds the settings of the scatter strategy and its transport.
type ScatterConfig struct {
	Transport     string `yaml:"transport"`
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// LogConfig holds the logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// OutputConfig selects the report format.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Patterns []string       `yaml:"patterns"`
	Capture  CaptureConfig  `yaml:"capture"`
	Scan     ScanConfig     `yaml:"scan"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Scatter  ScatterConfig  `yaml:"scatter"`
	Log      LogConfig      `yaml:"log"`
	Output   OutputConfig   `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Patterns: append([]string(nil), DefaultPatterns...),
		Capture:  CaptureConfig{Backend: "pcapgo"},
		Scan:     ScanConfig{MinChunk: 1},
		Pipeline: PipelineConfig{BatchSize: 100, QueueSize: 4},
		Scatter: ScatterConfig{
			Transport:     "chan",
			NATSURL:       "nats://127.0.0.1:4222",
			SubjectPrefix: "payloadscan",
		},
		Log:    LogConfig{Level: "info"},
		Output: OutputConfig{Format: "text"},
	}
}

// LoadConfig reads the configuration from a YAML file on top of the defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if len(c.Patterns) == 0 {
		return fmt.Errorf("at least one pattern is required")
	}
	for i, p := range c.Patterns {
		if p == "" {
			return fmt.Errorf("pattern %d is empty", i)
		}
	}
	switch c.Capture.Backend {
	case "pcapgo", "libpcap":
	default:
		return fmt.Errorf("unknown capture backend '%s'", c.Capture.Backend)
	}
	if c.Scan.MinChunk < 1 {
		return fmt.Errorf("scan.min_chunk must be at least 1, got %d", c.Scan.MinChunk)
	}
	if c.Pipeline.BatchSize < 1 {
		return fmt.Errorf("pipeline.batch_size must be at least 1, got %d", c.Pipeline.BatchSize)
	}
	if c.Pipeline.QueueSize < 0 {
		return fmt.Errorf("pipeline.queue_size must not be negative, got %d", c.Pipeline.QueueSize)
	}
	switch c.Scatter.Transport {
	case "chan":
	case "nats":
		if c.Scatter.NATSURL == "" {
			return fmt.Errorf("scatter.nats_url is required for the nats transport")
		}
		if c.Scatter.SubjectPrefix == "" {
			return fmt.Errorf("scatter.subject_prefix is required for the nats transport")
		}
	default:
		return fmt.Errorf("unknown scatter transport '%s'", c.Scatter.Transport)
	}
	switch c.Output.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("unknown output format '%s'", c.Output.Format)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("unknown log level '%s'", c.Log.Level)
	}
	return nil
}
