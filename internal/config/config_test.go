package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load = %#v, want defaults %#v", cfg, Default())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoad_ParsesAndTrimsTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
[device]
filter = "  USB Serial  "
baud = 9600
read_timeout_ms = 250

[plot]
labels = [" roll ", "pitch", "", "yaw"]
window = 30
delimiter = ";"
interval_ms = 40
mode = "BAR"

[[transform.replace]]
from = "Quaternion:"
to = ""

[[transform.replace]]
from = "nan"
to = "0.0"

[log]
file = "~/linescope.log"
level = "DEBUG"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Device != "USB Serial" {
		t.Fatalf("Device = %q, want %q", cfg.Device, "USB Serial")
	}
	if cfg.Baud != 9600 || cfg.ReadTimeout != 250*time.Millisecond {
		t.Fatalf("Baud/ReadTimeout = %d/%v, want 9600/250ms", cfg.Baud, cfg.ReadTimeout)
	}
	if want := []string{"roll", "pitch", "yaw"}; !reflect.DeepEqual(cfg.Labels, want) {
		t.Fatalf("Labels = %v, want %v", cfg.Labels, want)
	}
	if cfg.Window != 30 || cfg.Delimiter != ';' || cfg.Interval != 40*time.Millisecond {
		t.Fatalf("Window/Delimiter/Interval = %d/%q/%v", cfg.Window, cfg.Delimiter, cfg.Interval)
	}
	if cfg.Mode != ModeBar {
		t.Fatalf("Mode = %q, want %q", cfg.Mode, ModeBar)
	}
	if len(cfg.Replace) != 2 || cfg.Replace[1] != (Replacement{From: "nan", To: "0.0"}) {
		t.Fatalf("Replace = %#v", cfg.Replace)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(`
device:
  file: /tmp/capture.csv
plot:
  labels: [a, b]
  window: 3
  delimiter: tab
metrics:
  listen: "127.0.0.1:9464"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.File != "/tmp/capture.csv" {
		t.Fatalf("File = %q, want /tmp/capture.csv", cfg.File)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(cfg.Labels, want) {
		t.Fatalf("Labels = %v, want %v", cfg.Labels, want)
	}
	if cfg.Window != 3 || cfg.Delimiter != '\t' {
		t.Fatalf("Window/Delimiter = %d/%q, want 3/tab", cfg.Window, cfg.Delimiter)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("MetricsAddr = %q", cfg.MetricsAddr)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
[plot]
labels = ["  "]
window = 0
mode = ""
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Labels, defaultLabels) {
		t.Fatalf("Labels = %v, want %v", cfg.Labels, defaultLabels)
	}
	if cfg.Window != defaultWindow || cfg.Mode != ModeLine {
		t.Fatalf("Window/Mode = %d/%q, want defaults", cfg.Window, cfg.Mode)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`[plot`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_BadDelimiterFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[plot]\ndelimiter = \"::\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "single character") {
		t.Fatalf("Load error = %v, want single character error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no labels", func(c *Config) { c.Labels = nil }, "at least one label"},
		{"duplicate labels", func(c *Config) { c.Labels = []string{"a", "a"} }, "duplicate label"},
		{"zero window", func(c *Config) { c.Window = 0 }, "window"},
		{"zero interval", func(c *Config) { c.Interval = 0 }, "interval"},
		{"numeric delimiter", func(c *Config) { c.Delimiter = '.' }, "delimiter"},
		{"unknown mode", func(c *Config) { c.Mode = "pie" }, "unknown mode"},
		{"no baud for serial", func(c *Config) { c.Baud = 0 }, "baud"},
		{"no baud for file", func(c *Config) { c.Baud = 0; c.File = "/tmp/x" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{"tab", '\t', false},
		{"space", ' ', false},
		{"|", '|', false},
		{"", 0, true},
		{",,", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDelimiter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseDelimiter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLabels(t *testing.T) {
	got := ParseLabels(" a, b ,,c ")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseLabels = %v, want %v", got, want)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
