// Package metrics exposes pipeline counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons used as the "reason" label of RowsDropped.
const (
	ReasonTransform = "transform"
	ReasonParse     = "parse"
)

// Metrics groups the collectors touched by the acquisition goroutine and the
// render tick. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RowsRead    prometheus.Counter
	RowsDropped *prometheus.CounterVec
	RowsDrained prometheus.Counter
	ReadErrors  prometheus.Counter
	Ticks       prometheus.Counter
	Frames      prometheus.Counter
	LastBatch   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "linescope",
			Name:      "rows_read_total",
			Help:      "Non-empty lines appended to the shared buffer.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linescope",
			Name:      "rows_dropped_total",
			Help:      "Rows discarded at the row boundary, by reason.",
		}, []string{"reason"}),
		RowsDrained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "linescope",
			Name:      "rows_drained_total",
			Help:      "Rows handed from the shared buffer to the renderer.",
		}),
		ReadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "linescope",
			Name:      "read_errors_total",
			Help:      "Errors returned by the line source while it stayed open.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "linescope",
			Name:      "render_ticks_total",
			Help:      "Render timer firings that drained at least one row.",
		}),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "linescope",
			Name:      "frames_committed_total",
			Help:      "Frames blitted to the display surface.",
		}),
		LastBatch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "linescope",
			Name:      "last_drain_rows",
			Help:      "Number of rows returned by the most recent drain.",
		}),
	}
	for _, c := range []prometheus.Collector{m.RowsRead, m.RowsDropped, m.RowsDrained, m.ReadErrors, m.Ticks, m.Frames, m.LastBatch} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	// Pre-create the label values so they are exported as zero.
	m.RowsDropped.WithLabelValues(ReasonTransform)
	m.RowsDropped.WithLabelValues(ReasonParse)
	return m, nil
}

// RowRead counts a row appended by the acquisition goroutine.
func (m *Metrics) RowRead() {
	if m == nil {
		return
	}
	m.RowsRead.Inc()
}

// RowDropped counts a row discarded for reason.
func (m *Metrics) RowDropped(reason string) {
	if m == nil {
		return
	}
	m.RowsDropped.WithLabelValues(reason).Inc()
}

// ReadError counts a read failure on a source that is still open.
func (m *Metrics) ReadError() {
	if m == nil {
		return
	}
	m.ReadErrors.Inc()
}

// Drained records the size of one drain batch.
func (m *Metrics) Drained(n int) {
	if m == nil {
		return
	}
	m.RowsDrained.Add(float64(n))
	m.LastBatch.Set(float64(n))
	m.Ticks.Inc()
}

// FrameCommitted counts a blit.
func (m *Metrics) FrameCommitted() {
	if m == nil {
		return
	}
	m.Frames.Inc()
}

// Listen binds addr for Serve. Binding up front lets a busy or malformed
// address fail startup instead of surfacing once the chart is running.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	return ln, nil
}

// Serve exposes /metrics from gatherer on ln until ctx is cancelled. It
// closes ln.
func Serve(ctx context.Context, ln net.Listener, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if logger != nil {
		logger.Info("serving metrics", "addr", ln.Addr().String())
	}
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics listener: %w", err)
	}
	return nil
}
