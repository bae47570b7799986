package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/linescope/internal/config"
	"github.com/five82/linescope/internal/source"
	"github.com/five82/linescope/internal/state"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig_AppliesOverrides(t *testing.T) {
	path := writeFile(t, "config.toml", "[plot]\nlabels = [\"x\", \"y\"]\nwindow = 50\n")

	cfg, err := LoadConfig(Options{
		ConfigPath: path,
		Configure: func(c *config.Config) {
			c.Window = 10
			c.Mode = config.ModeBar
		},
	})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Window != 10 || cfg.Mode != config.ModeBar {
		t.Fatalf("overrides not applied: window=%d mode=%s", cfg.Window, cfg.Mode)
	}
	if strings.Join(cfg.Labels, ",") != "x,y" {
		t.Fatalf("labels = %v", cfg.Labels)
	}
}

func TestRun_InvalidConfigFailsBeforeUI(t *testing.T) {
	path := writeFile(t, "config.toml", "[plot]\nmode = \"scatter\"\n")

	err := Run(context.Background(), Options{ConfigPath: path})
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("Run error = %v, want invalid config", err)
	}
}

func TestRun_BadTransformFailsBeforeUI(t *testing.T) {
	path := writeFile(t, "config.toml", "[[transform.replace]]\nfrom = \"\"\nto = \"x\"\n")

	err := Run(context.Background(), Options{ConfigPath: path, PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})
	if err == nil || !strings.Contains(err.Error(), "invalid transform") {
		t.Fatalf("Run error = %v, want invalid transform", err)
	}
}

func TestRun_BusyMetricsAddressFailsBeforeUI(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	err = Run(context.Background(), Options{
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
		Configure: func(c *config.Config) {
			c.MetricsAddr = busy.Addr().String()
		},
	})
	if err == nil || !strings.Contains(err.Error(), "metrics listener") {
		t.Fatalf("Run error = %v, want metrics listener failure", err)
	}
}

func TestOpenSource_File(t *testing.T) {
	path := writeFile(t, "capture.csv", "1,2\n")
	cfg := config.Default()
	cfg.File = path
	status := &state.Store{}

	src := openSource(cfg, Options{}, status, discard)
	defer src.Close()

	line, err := src.ReadLine(context.Background())
	if err != nil || line != "1,2" {
		t.Fatalf("ReadLine = %q, %v", line, err)
	}
	snap := status.Snapshot()
	if !snap.Connected || snap.Source != path {
		t.Fatalf("status = %+v", snap)
	}
}

func TestOpenSource_MissingFileIsQuiescent(t *testing.T) {
	cfg := config.Default()
	cfg.File = filepath.Join(t.TempDir(), "missing.csv")
	status := &state.Store{}

	src := openSource(cfg, Options{}, status, discard)

	if src.IsOpen() {
		t.Fatal("placeholder source should be closed")
	}
	if src.Name() != cfg.File {
		t.Fatalf("Name = %q", src.Name())
	}
	var devErr *source.DeviceError
	if !errors.As(status.Snapshot().LastError, &devErr) {
		t.Fatalf("status error = %v, want DeviceError", status.Snapshot().LastError)
	}
}

func TestOpenSource_NoMatchingPort(t *testing.T) {
	cfg := config.Default()
	cfg.Device = "COM11"
	status := &state.Store{}
	enumerate := func() ([]source.PortInfo, error) {
		return []source.PortInfo{{Name: "/dev/ttyS0"}}, nil
	}

	src := openSource(cfg, Options{Enumerate: enumerate}, status, discard)

	if src.IsOpen() || src.Name() != "COM11" {
		t.Fatalf("got open=%v name=%q", src.IsOpen(), src.Name())
	}
	var noMatch *source.NoMatchError
	if !errors.As(status.Snapshot().LastError, &noMatch) {
		t.Fatalf("status error = %v, want NoMatchError", status.Snapshot().LastError)
	}
}

func TestBuildTransform(t *testing.T) {
	transform, err := buildTransform(nil)
	if err != nil || transform != nil {
		t.Fatalf("empty rules: %v, %v", transform != nil, err)
	}

	transform, err = buildTransform([]config.Replacement{
		{From: "Quaternion:", To: ""},
		{From: "nan", To: "0.0"},
	})
	if err != nil {
		t.Fatalf("buildTransform: %v", err)
	}
	got, err := transform("Quaternion:1,nan,3")
	if err != nil || got != "1,0.0,3" {
		t.Fatalf("transform = %q, %v", got, err)
	}
}

func TestListPorts(t *testing.T) {
	var buf bytes.Buffer
	err := ListPorts(&buf, func() ([]source.PortInfo, error) {
		return []source.PortInfo{
			{Name: "/dev/ttyUSB0", Product: "CP2102", USB: true, VID: "10c4", PID: "ea60"},
			{Name: "/dev/ttyS0"},
		}, nil
	})
	if err != nil {
		t.Fatalf("ListPorts: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"/dev/ttyUSB0", "CP2102", "10c4:ea60", "/dev/ttyS0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := ListPorts(&buf, func() ([]source.PortInfo, error) { return nil, nil }); err != nil {
		t.Fatalf("ListPorts empty: %v", err)
	}
	if !strings.Contains(buf.String(), "no serial ports") {
		t.Fatalf("empty output = %q", buf.String())
	}
}
