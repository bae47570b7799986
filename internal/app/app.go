package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/five82/linescope/internal/acquire"
	"github.com/five82/linescope/internal/config"
	"github.com/five82/linescope/internal/logging"
	"github.com/five82/linescope/internal/metrics"
	"github.com/five82/linescope/internal/prefs"
	"github.com/five82/linescope/internal/render"
	"github.com/five82/linescope/internal/source"
	"github.com/five82/linescope/internal/state"
	"github.com/five82/linescope/internal/ui"
)

// Options configure the linescope application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/linescope/prefs.toml

	// Configure applies command-line overrides on top of the loaded file.
	Configure func(*config.Config)

	// Pace delays each row read from a file source, to replay a capture
	// at roughly its recorded rate. Ignored for serial ports.
	Pace time.Duration

	// Enumerate lists serial ports; nil uses the operating system.
	Enumerate source.Enumerator
}

// LoadConfig reads the config file, applies overrides and validates the result.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.Configure != nil {
		opts.Configure(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Run boots the chart until the user quits or the context is cancelled.
// A device that cannot be found or opened does not end the run: the chart
// starts anyway and the header shows why no data arrives.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	userPrefs := prefs.Load(opts.PrefsPath)

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	var ln net.Listener
	if cfg.MetricsAddr != "" {
		if ln, err = metrics.Listen(cfg.MetricsAddr); err != nil {
			return err
		}
		defer func() { _ = ln.Close() }()
	}

	transform, err := buildTransform(cfg.Replace)
	if err != nil {
		return fmt.Errorf("invalid transform: %w", err)
	}

	status := &state.Store{}
	src := openSource(cfg, opts, status, logger)
	defer func() { _ = src.Close() }()

	acq := acquire.New(src, acquire.Options{
		Transform: transform,
		Logger:    logger,
		Metrics:   m,
		Status:    status,
	})
	if err := acq.Start(); err != nil {
		return fmt.Errorf("start acquisition: %w", err)
	}

	canvas := ui.NewCanvas(ui.CanvasOptions{
		Labels:     cfg.Labels,
		Mode:       render.Mode(cfg.Mode),
		Theme:      ui.GetTheme(userPrefs.Theme),
		HideLegend: userPrefs.HideLegend,
	})
	renderer, err := render.New(acq, canvas, render.Options{
		Labels:    cfg.Labels,
		Capacity:  cfg.Window,
		Delimiter: cfg.Delimiter,
		Interval:  cfg.Interval,
		Mode:      render.Mode(cfg.Mode),
		Logger:    logger,
		Metrics:   m,
	})
	if err != nil {
		_ = acq.Stop()
		return fmt.Errorf("init renderer: %w", err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Warn("shutdown", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if ln != nil {
		g.Go(func() error {
			// A listener that dies mid-run must not take the chart down.
			if err := metrics.Serve(gctx, ln, registry, logger); err != nil {
				logger.Error("metrics stopped", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		// The metrics listener has nothing to serve once the chart is gone.
		defer cancel()
		return ui.Run(ui.Options{
			Context:   gctx,
			Canvas:    canvas,
			Renderer:  renderer,
			Store:     status,
			Device:    src.Name(),
			Prefs:     userPrefs,
			PrefsPath: opts.PrefsPath,
			Logger:    logger,
		})
	})

	return g.Wait()
}

// openSource opens the configured file or serial port. On failure it records
// the error in status and returns a source that never yields rows.
func openSource(cfg config.Config, opts Options, status *state.Store, logger *slog.Logger) source.LineSource {
	var (
		src   source.LineSource
		err   error
		label = cfg.Device
	)

	if cfg.File != "" {
		label = cfg.File
		src, err = source.OpenFile(cfg.File, source.ReaderOptions{Pace: opts.Pace})
	} else {
		enumerate := opts.Enumerate
		if enumerate == nil {
			enumerate = source.SerialPorts
		}
		src, err = source.Connect(cfg.Device, source.SerialOptions{
			Baud:        cfg.Baud,
			ReadTimeout: cfg.ReadTimeout,
		}, enumerate)
	}

	if err != nil {
		if source.IsSetupError(err) {
			logger.Warn("no data source", "source", label, "error", err)
		} else {
			logger.Error("no data source", "source", label, "error", err)
		}
		status.Fail(err)
		if label == "" {
			label = "serial"
		}
		return source.Closed{Label: label}
	}

	logger.Info("source opened", "source", src.Name())
	status.Connect(src.Name())
	return src
}

func buildTransform(rules []config.Replacement) (acquire.Transform, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	oldnew := make([]string, 0, 2*len(rules))
	for _, r := range rules {
		oldnew = append(oldnew, r.From, r.To)
	}
	return acquire.Replace(oldnew...)
}
