// Package config holds the limits and switches of a runtime instance. A
// configuration is usually read from a YAML document shipped with the host
// application:
//
//	stack_size: 1024
//	max_call_depth: 64
//	max_prototype_depth: 100
//	capture_traces: true
//	regex_timeout: 1s
//	log_level: info
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultStackSize         = 1024
	DefaultMaxCallDepth      = 64
	DefaultMaxPrototypeDepth = 100
	DefaultRegexTimeout      = time.Second
)

// Config represents the runtime configuration document.
type Config struct {
	// StackSize is the number of value slots in the runtime stack.
	StackSize int `yaml:"stack_size"`

	// MaxCallDepth bounds nested calls (script and native).
	MaxCallDepth int `yaml:"max_call_depth"`

	// MaxPrototypeDepth bounds prototype chain walks during property lookup.
	MaxPrototypeDepth int `yaml:"max_prototype_depth"`

	// CaptureTraces enables stack trace capture when an error is raised.
	// Disabling it makes raising cheaper; errors still carry kind and message.
	CaptureTraces bool `yaml:"capture_traces"`

	// RegexTimeout bounds a single regular expression match. Zero disables
	// the limit.
	RegexTimeout time.Duration `yaml:"regex_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when none is supplied.
func Default() *Config {
	return &Config{
		StackSize:         DefaultStackSize,
		MaxCallDepth:      DefaultMaxCallDepth,
		MaxPrototypeDepth: DefaultMaxPrototypeDepth,
		CaptureTraces:     true,
		RegexTimeout:      DefaultRegexTimeout,
		LogLevel:          "info",
	}
}

// Parse decodes a YAML document on top of the defaults, so omitted keys keep
// their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing runtime config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading runtime config: %w", err)
	}
	return Parse(data)
}

// Validate checks that the limits are usable.
func (c *Config) Validate() error {
	if c.StackSize < 16 {
		return fmt.Errorf("stack_size must be at least 16, got %d", c.StackSize)
	}
	if c.MaxCallDepth < 1 {
		return fmt.Errorf("max_call_depth must be positive, got %d", c.MaxCallDepth)
	}
	if c.MaxPrototypeDepth < 1 {
		return fmt.Errorf("max_prototype_depth must be positive, got %d", c.MaxPrototypeDepth)
	}
	if c.RegexTimeout < 0 {
		return fmt.Errorf("regex_timeout must not be negative, got %s", c.RegexTimeout)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}
