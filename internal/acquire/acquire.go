package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/linescope/internal/logging"
	"github.com/five82/linescope/internal/metrics"
	"github.com/five82/linescope/internal/source"
	"github.com/five82/linescope/internal/state"
)

// Lifecycle misuse errors.
var (
	ErrAlreadyRunning = errors.New("acquirer already running")
	ErrNotRunning     = errors.New("acquirer was never started")
)

// Options configure an Acquirer. Every field is optional.
type Options struct {
	Transform Transform
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Status    *state.Store
}

// Acquirer reads lines from a source on a background goroutine and buffers
// them until the renderer drains them.
type Acquirer struct {
	src       source.LineSource
	transform Transform
	logger    *slog.Logger
	metrics   *metrics.Metrics
	status    *state.Store

	running atomic.Bool

	lifecycle sync.Mutex
	started   bool
	cancel    context.CancelFunc
	done      chan struct{}

	mu   sync.Mutex
	rows []string
}

// New creates an Acquirer for src. Call Start to begin reading.
func New(src source.LineSource, opts Options) *Acquirer {
	status := opts.Status
	if status == nil {
		status = &state.Store{}
	}
	return &Acquirer{
		src:       src,
		transform: opts.Transform,
		logger:    logging.Component(opts.Logger, "acquire"),
		metrics:   opts.Metrics,
		status:    status,
	}
}

// Start launches the read goroutine. It returns ErrAlreadyRunning when the
// previous run has not been stopped.
func (a *Acquirer) Start() error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if a.running.Load() {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.started = true
	a.running.Store(true)

	a.logger.Info("acquisition started", "source", a.src.Name())
	go a.run(ctx, a.done)
	return nil
}

// Stop clears the run flag and waits for the read goroutine to exit. At most
// one in-flight read finishes first; once Stop returns the buffer is no longer
// written. Calling Stop again is a no-op.
func (a *Acquirer) Stop() error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	if !a.started {
		return ErrNotRunning
	}
	if a.running.Swap(false) {
		a.logger.Info("stopping acquisition")
	}
	a.cancel()
	<-a.done
	return nil
}

// Running reports the run flag. It stays set after the source closes on its
// own so rows already buffered are still drained.
func (a *Acquirer) Running() bool {
	return a.running.Load()
}

// Drain returns every buffered row in append order and empties the buffer.
// Only one goroutine may drain.
func (a *Acquirer) Drain() []string {
	a.mu.Lock()
	rows := a.rows
	a.rows = nil
	a.mu.Unlock()
	return rows
}

func (a *Acquirer) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for a.running.Load() && a.src.IsOpen() {
		line, err := a.src.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, source.ErrClosed) || ctx.Err() != nil || !a.src.IsOpen() {
				break
			}
			a.metrics.ReadError()
			a.status.ReadFailed(err)
			a.logger.Warn("read failed", "error", err)
			continue
		}
		if line == "" {
			continue
		}
		a.accept(line)
	}

	if !a.src.IsOpen() {
		a.status.SourceEnded()
		a.logger.Info("source closed", "source", a.src.Name())
	}
}

func (a *Acquirer) accept(line string) {
	row, err := a.apply(line)
	if err != nil {
		a.metrics.RowDropped(metrics.ReasonTransform)
		a.status.TransformFailed(err)
		a.logger.Debug("row dropped", "error", err)
		return
	}

	a.mu.Lock()
	a.rows = append(a.rows, row)
	a.mu.Unlock()

	a.metrics.RowRead()
	a.status.RowRead(time.Now())
}

// apply runs the transform, turning both errors and panics into a
// *TransformError so one bad line never takes the goroutine down.
func (a *Acquirer) apply(line string) (row string, err error) {
	if a.transform == nil {
		return line, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &TransformError{Row: line, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	out, terr := a.transform(line)
	if terr != nil {
		return "", &TransformError{Row: line, Err: terr}
	}
	return out, nil
}
