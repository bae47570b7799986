package render

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/five82/linescope/internal/acquire"
	"github.com/five82/linescope/internal/logging"
	"github.com/five82/linescope/internal/metrics"
	"github.com/five82/linescope/internal/window"
)

// ErrStopped is returned by operations on a renderer that has been closed.
var ErrStopped = errors.New("renderer stopped")

// Acquisition is the producer side the renderer drains on every tick.
type Acquisition interface {
	Running() bool
	Drain() []string
	Stop() error
}

// Mode selects how the window is drawn.
type Mode string

const (
	ModeLine Mode = "line"
	ModeBar  Mode = "bar"
)

// State is the renderer lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	defaultCapacity = 100
	defaultInterval = 10 * time.Millisecond
	boundsMargin    = 0.05
)

// Options configure a Renderer. Labels is required.
type Options struct {
	Labels    []string
	Capacity  int // samples kept per field in line mode
	Delimiter rune
	Interval  time.Duration
	Mode      Mode
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

func (o *Options) applyDefaults() error {
	if len(o.Labels) == 0 {
		return errors.New("at least one label is required")
	}
	if o.Capacity == 0 {
		o.Capacity = defaultCapacity
	}
	if o.Capacity < 0 {
		return fmt.Errorf("capacity must be positive, got %d", o.Capacity)
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Interval == 0 {
		o.Interval = defaultInterval
	}
	if o.Interval < 0 {
		return fmt.Errorf("interval must be positive, got %s", o.Interval)
	}
	switch o.Mode {
	case "":
		o.Mode = ModeLine
	case ModeLine:
	case ModeBar:
		o.Capacity = 1
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
	return nil
}

// Stats are counters kept by the renderer for display.
type Stats struct {
	Ticks       uint64 // ticks that drained at least one row
	RowsApplied uint64
	ParseErrors uint64
	Frames      uint64
	LastError   error
}

// Renderer drains the acquisition buffer on a timer, keeps the sliding
// window and commits frames to a Surface. All methods run on the surface's
// event loop; Renderer is not safe for concurrent use.
type Renderer struct {
	acq     Acquisition
	surface Surface
	blitter *Blitter
	window  *window.Window
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics

	state State
	next  uint64 // synthetic index of the next pushed row

	xSet   bool
	xLo    float64
	xHi    float64
	stats  Stats
	labels []string
}

// New wires a renderer to acq and surface and starts the render timer.
func New(acq Acquisition, surface Surface, opts Options) (*Renderer, error) {
	if acq == nil || surface == nil {
		return nil, errors.New("renderer needs an acquisition and a surface")
	}
	if err := opts.applyDefaults(); err != nil {
		return nil, err
	}
	w, err := window.New(opts.Labels, opts.Capacity)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		acq:     acq,
		surface: surface,
		window:  w,
		opts:    opts,
		logger:  logging.Component(opts.Logger, "render"),
		metrics: opts.Metrics,
		labels:  w.Labels(),
		state:   StateIdle,
	}

	surface.OnClick(func() { _ = r.TogglePause() })
	surface.OnClose(func() { _ = r.Close() })
	r.pushSeries(w.Snapshot())
	r.blitter = NewBlitter(surface, r.labels...)
	surface.Every(opts.Interval, r.Tick)

	r.state = StateRunning
	r.logger.Info("renderer started",
		"mode", string(opts.Mode),
		"labels", r.labels,
		"capacity", opts.Capacity,
		"interval", opts.Interval,
	)
	return r, nil
}

// State returns the lifecycle state.
func (r *Renderer) State() State { return r.state }

// Mode returns the drawing mode.
func (r *Renderer) Mode() Mode { return r.opts.Mode }

// Labels returns the tracked fields in declaration order.
func (r *Renderer) Labels() []string { return append([]string(nil), r.labels...) }

// Stats returns a copy of the render counters.
func (r *Renderer) Stats() Stats { return r.stats }

// Snapshot copies the current window, including samples pushed while paused.
func (r *Renderer) Snapshot() window.Snapshot { return r.window.Snapshot() }

// TogglePause flips between running and paused.
func (r *Renderer) TogglePause() error {
	switch r.state {
	case StateRunning:
		r.state = StatePaused
	case StatePaused:
		r.state = StateRunning
	case StateStopped:
		return ErrStopped
	default:
		return nil
	}
	r.logger.Debug("pause toggled", "state", r.state.String())
	return nil
}

// Close stops acquisition and releases the surface. Only the first call has
// any effect.
func (r *Renderer) Close() error {
	if r.state == StateStopped {
		return nil
	}
	r.state = StateStopped

	err := r.acq.Stop()
	if errors.Is(err, acquire.ErrNotRunning) {
		err = nil
	}
	r.surface.Release()
	r.logger.Info("renderer stopped",
		"rows", r.stats.RowsApplied,
		"parse_errors", r.stats.ParseErrors,
		"frames", r.stats.Frames,
	)
	if err != nil {
		return fmt.Errorf("stop acquisition: %w", err)
	}
	return nil
}

// Tick drains buffered rows into the window and, unless paused, commits a
// frame. It never blocks on I/O.
func (r *Renderer) Tick() {
	if r.state != StateRunning && r.state != StatePaused {
		return
	}
	if !r.acq.Running() {
		return
	}
	rows := r.acq.Drain()
	if len(rows) == 0 {
		return
	}
	r.stats.Ticks++
	r.metrics.Drained(len(rows))

	var last []float64
	for _, row := range rows {
		if strings.TrimSpace(row) == "" {
			continue
		}
		values, err := ParseRow(row, r.opts.Delimiter, len(r.labels))
		if err != nil {
			r.stats.ParseErrors++
			r.stats.LastError = err
			r.metrics.RowDropped(metrics.ReasonParse)
			r.logger.Debug("row dropped", "error", err)
			continue
		}
		r.window.PushRow(values, float64(r.next))
		r.next++
		r.stats.RowsApplied++
		last = values
	}

	if r.state == StatePaused || last == nil {
		return
	}
	r.commit(last)
}

func (r *Renderer) commit(last []float64) {
	var lo, hi float64
	if r.opts.Mode == ModeBar {
		lo, hi = minMax(last)
	} else {
		lo, hi = r.window.Bounds()
	}
	if hi > lo {
		margin := (hi - lo) * boundsMargin
		r.surface.SetYLim(lo-margin, hi+margin)
	}

	if r.opts.Mode == ModeLine {
		oldest, newest := r.window.IndexRange()
		if oldest != newest && (!r.xSet || oldest != r.xLo || newest != r.xHi) {
			r.surface.SetXLim(oldest, newest)
			r.xSet, r.xLo, r.xHi = true, oldest, newest
		}
	}

	r.pushSeries(r.window.Snapshot())
	r.blitter.Update()
	r.stats.Frames++
	r.metrics.FrameCommitted()
}

func (r *Renderer) pushSeries(snap window.Snapshot) {
	for _, label := range r.labels {
		r.surface.SetSeries(label, snap.Index, snap.Fields[label])
	}
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
