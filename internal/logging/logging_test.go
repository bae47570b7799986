package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linescope.log")

	logger, cleanup, err := Setup(path, "debug")
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	Component(logger, "acquire").Debug("row dropped", "reason", "transform")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "component=acquire") || !strings.Contains(out, "row dropped") {
		t.Fatalf("log file = %q, want the debug record with its component", out)
	}
}

func TestSetup_EmptyPathDiscards(t *testing.T) {
	logger, cleanup, err := Setup("", "")
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	defer cleanup()
	if logger == nil {
		t.Fatal("Setup returned nil logger")
	}
	logger.Info("nowhere")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponent_NilLogger(t *testing.T) {
	if Component(nil, "x") == nil {
		t.Fatal("Component(nil) returned nil")
	}
}
