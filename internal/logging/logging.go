// Package logging configures the process logger. The terminal belongs to the
// chart, so log records only ever go to a file.
package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Setup returns a logger for the whole process.
// If filename is empty, logging is disabled.
// If filename is set, slog records, the stdlib logger and Bubble Tea's own
// debug output all go to that file.
func Setup(filename, level string) (logger *slog.Logger, cleanup func(), err error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	if filename == "" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.SetOutput(io.Discard)
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	tf, err := tea.LogToFile(filename, "tea")
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	cleanup = func() {
		tf.Close()
		f.Close()
	}
	return logger, cleanup, nil
}

// ParseLevel maps a config level name onto a slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", level)
}

// Component tags a logger with the subsystem it belongs to. A nil logger
// yields one that discards everything, so components can log unconditionally.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger.With("component", name)
}
