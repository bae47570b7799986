package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Mode selects how samples are drawn.
type Mode string

const (
	ModeLine Mode = "line"
	ModeBar  Mode = "bar"
)

// Replacement is one literal substitution applied to every received line
// before it is buffered.
type Replacement struct {
	From string `toml:"from" yaml:"from"`
	To   string `toml:"to" yaml:"to"`
}

// Config captures everything linescope needs at startup. It is read once and
// never reloaded.
type Config struct {
	// Device is the substring matched against serial port descriptions.
	Device      string
	Baud        int
	ReadTimeout time.Duration
	// File streams rows from a capture file or named pipe instead of a
	// serial port when set.
	File string

	Labels    []string
	Window    int
	Delimiter rune
	Interval  time.Duration
	Mode      Mode
	Replace   []Replacement

	LogFile     string
	LogLevel    string
	MetricsAddr string
}

const (
	defaultConfigPath  = "~/.config/linescope/config.toml"
	defaultBaud        = 115200
	defaultReadTimeout = 100 * time.Millisecond
	defaultWindow      = 100
	defaultDelimiter   = ','
	defaultInterval    = 10 * time.Millisecond
	defaultLogLevel    = "info"
)

var defaultLabels = []string{"data_a", "data_b", "data_c", "data_d"}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Baud:        defaultBaud,
		ReadTimeout: defaultReadTimeout,
		Labels:      append([]string(nil), defaultLabels...),
		Window:      defaultWindow,
		Delimiter:   defaultDelimiter,
		Interval:    defaultInterval,
		Mode:        ModeLine,
		LogLevel:    defaultLogLevel,
	}
}

type rawConfig struct {
	Device struct {
		Filter        string `toml:"filter" yaml:"filter"`
		Baud          int    `toml:"baud" yaml:"baud"`
		ReadTimeoutMS int    `toml:"read_timeout_ms" yaml:"read_timeout_ms"`
		File          string `toml:"file" yaml:"file"`
	} `toml:"device" yaml:"device"`
	Plot struct {
		Labels     []string `toml:"labels" yaml:"labels"`
		Window     int      `toml:"window" yaml:"window"`
		Delimiter  string   `toml:"delimiter" yaml:"delimiter"`
		IntervalMS int      `toml:"interval_ms" yaml:"interval_ms"`
		Mode       string   `toml:"mode" yaml:"mode"`
	} `toml:"plot" yaml:"plot"`
	Transform struct {
		Replace []Replacement `toml:"replace" yaml:"replace"`
	} `toml:"transform" yaml:"transform"`
	Log struct {
		File  string `toml:"file" yaml:"file"`
		Level string `toml:"level" yaml:"level"`
	} `toml:"log" yaml:"log"`
	Metrics struct {
		Listen string `toml:"listen" yaml:"listen"`
	} `toml:"metrics" yaml:"metrics"`
}

// Load locates and parses the config, falling back to defaults when missing.
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.apply(raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	c.Device = strings.TrimSpace(raw.Device.Filter)
	if raw.Device.Baud > 0 {
		c.Baud = raw.Device.Baud
	}
	if raw.Device.ReadTimeoutMS > 0 {
		c.ReadTimeout = time.Duration(raw.Device.ReadTimeoutMS) * time.Millisecond
	}
	if file := strings.TrimSpace(raw.Device.File); file != "" {
		c.File = mustExpand(file)
	}

	if labels := trimLabels(raw.Plot.Labels); len(labels) > 0 {
		c.Labels = labels
	}
	if raw.Plot.Window > 0 {
		c.Window = raw.Plot.Window
	}
	if raw.Plot.Delimiter != "" {
		delim, err := ParseDelimiter(raw.Plot.Delimiter)
		if err != nil {
			return err
		}
		c.Delimiter = delim
	}
	if raw.Plot.IntervalMS > 0 {
		c.Interval = time.Duration(raw.Plot.IntervalMS) * time.Millisecond
	}
	if mode := strings.TrimSpace(raw.Plot.Mode); mode != "" {
		c.Mode = Mode(strings.ToLower(mode))
	}

	c.Replace = append([]Replacement(nil), raw.Transform.Replace...)

	if logFile := strings.TrimSpace(raw.Log.File); logFile != "" {
		c.LogFile = mustExpand(logFile)
	}
	if level := strings.TrimSpace(raw.Log.Level); level != "" {
		c.LogLevel = strings.ToLower(level)
	}
	c.MetricsAddr = strings.TrimSpace(raw.Metrics.Listen)
	return nil
}

// Validate reports the first setting that cannot drive a plot.
func (c Config) Validate() error {
	if len(c.Labels) == 0 {
		return fmt.Errorf("at least one label is required")
	}
	seen := make(map[string]bool, len(c.Labels))
	for _, label := range c.Labels {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("labels must not be empty")
		}
		if seen[label] {
			return fmt.Errorf("duplicate label %q", label)
		}
		seen[label] = true
	}
	if c.Window < 1 {
		return fmt.Errorf("window must be at least 1, got %d", c.Window)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	if c.Delimiter == 0 || c.Delimiter == '\n' || c.Delimiter == '.' || c.Delimiter == '-' {
		return fmt.Errorf("delimiter %q cannot separate numeric fields", c.Delimiter)
	}
	switch c.Mode {
	case ModeLine, ModeBar:
	default:
		return fmt.Errorf("unknown mode %q (want line or bar)", c.Mode)
	}
	if c.File == "" && c.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", c.Baud)
	}
	return nil
}

// ParseDelimiter accepts a single character, or the names "tab" and "space".
func ParseDelimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "tab", `\t`:
		return '\t', nil
	case "space":
		return ' ', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}

// ParseLabels splits a comma separated label list.
func ParseLabels(value string) []string {
	return trimLabels(strings.Split(value, ","))
}

func trimLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// DefaultPath returns the config path used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
