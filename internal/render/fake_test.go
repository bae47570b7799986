package render

import (
	"time"
)

// recordingSurface is an in-memory Surface that logs every call.
type recordingSurface struct {
	calls  []string
	series map[string][2][]float64

	xlim, ylim         [2]float64
	xlimSet, ylimSet   int
	background         bool
	chromeChanged      bool
	frames             int
	released           bool
	interval           time.Duration
	tick               func()
	draws, clicks, off []func()
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{series: make(map[string][2][]float64)}
}

func (s *recordingSurface) record(call string) { s.calls = append(s.calls, call) }

func (s *recordingSurface) Redraw() {
	s.record("redraw")
	for _, fn := range s.draws {
		fn()
	}
}

func (s *recordingSurface) CopyBackground() {
	s.record("copy")
	s.background = true
	s.chromeChanged = false
}

func (s *recordingSurface) RestoreBackground() bool {
	s.record("restore")
	return s.background && !s.chromeChanged
}

func (s *recordingSurface) DrawArtist(name string) { s.record("draw:" + name) }
func (s *recordingSurface) Blit()                  { s.record("blit") }

func (s *recordingSurface) FlushEvents() {
	s.record("flush")
	s.frames++
}

func (s *recordingSurface) OnDraw(fn func())  { s.draws = append(s.draws, fn) }
func (s *recordingSurface) OnClick(fn func()) { s.clicks = append(s.clicks, fn) }
func (s *recordingSurface) OnClose(fn func()) { s.off = append(s.off, fn) }

func (s *recordingSurface) SetSeries(name string, x, y []float64) {
	s.series[name] = [2][]float64{x, y}
}

func (s *recordingSurface) SetXLim(lo, hi float64) {
	s.xlimSet++
	if s.xlim != [2]float64{lo, hi} {
		s.chromeChanged = true
	}
	s.xlim = [2]float64{lo, hi}
}

func (s *recordingSurface) SetYLim(lo, hi float64) {
	s.ylimSet++
	if s.ylim != [2]float64{lo, hi} {
		s.chromeChanged = true
	}
	s.ylim = [2]float64{lo, hi}
}

func (s *recordingSurface) Every(interval time.Duration, fn func()) {
	s.interval = interval
	s.tick = fn
}

func (s *recordingSurface) Release() {
	s.record("release")
	s.released = true
}

func (s *recordingSurface) click() {
	for _, fn := range s.clicks {
		fn()
	}
}

func (s *recordingSurface) close() {
	for _, fn := range s.off {
		fn()
	}
}

func (s *recordingSurface) resetCalls() { s.calls = nil }

// scriptedAcquisition hands out one queued batch per Drain.
type scriptedAcquisition struct {
	running bool
	batches [][]string
	drains  int
	stops   int
	stopErr error
}

func (a *scriptedAcquisition) Running() bool { return a.running }

func (a *scriptedAcquisition) Drain() []string {
	a.drains++
	if len(a.batches) == 0 {
		return nil
	}
	batch := a.batches[0]
	a.batches = a.batches[1:]
	return batch
}

func (a *scriptedAcquisition) Stop() error {
	a.stops++
	a.running = false
	return a.stopErr
}

func (a *scriptedAcquisition) queue(rows ...string) {
	a.batches = append(a.batches, rows)
}
