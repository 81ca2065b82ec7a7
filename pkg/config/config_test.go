package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.StackSize != DefaultStackSize || cfg.MaxCallDepth != DefaultMaxCallDepth {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.CaptureTraces {
		t.Errorf("expected trace capture on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("max_call_depth: 8\ncapture_traces: false\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.MaxCallDepth != 8 {
		t.Errorf("expected max_call_depth 8, got %d", cfg.MaxCallDepth)
	}
	if cfg.CaptureTraces {
		t.Errorf("expected capture_traces false")
	}
	if cfg.StackSize != DefaultStackSize {
		t.Errorf("expected omitted stack_size to keep default, got %d", cfg.StackSize)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "stack_size: [", "parsing runtime config"},
		{"small stack", "stack_size: 2", "stack_size"},
		{"zero depth", "max_call_depth: 0", "max_call_depth"},
		{"zero proto depth", "max_prototype_depth: 0", "max_prototype_depth"},
		{"bad level", "log_level: loud", "log_level"},
		{"negative regex timeout", "regex_timeout: -1s", "regex_timeout"},
		{"bad regex timeout", "regex_timeout: soon", "parsing runtime config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatalf("expected error for %q", tt.doc)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseRegexTimeout(t *testing.T) {
	tests := []struct {
		doc  string
		want time.Duration
	}{
		{"", DefaultRegexTimeout},
		{"regex_timeout: 250ms", 250 * time.Millisecond},
		{"regex_timeout: 0s", 0},
	}
	for _, tt := range tests {
		cfg, err := Parse([]byte(tt.doc))
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.doc, err)
		}
		if cfg.RegexTimeout != tt.want {
			t.Errorf("Parse(%q).RegexTimeout = %s, want %s", tt.doc, cfg.RegexTimeout, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\nstack_size: 64\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StackSize != 64 {
		t.Errorf("expected stack_size 64, got %d", cfg.StackSize)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Level())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
