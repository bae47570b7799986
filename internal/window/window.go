package window

import (
	"errors"
	"fmt"
	"math"
)

// IndexName is reserved for the synthetic sample counter.
const IndexName = "index"

var (
	ErrCapacity = errors.New("window capacity must be at least 1")
	ErrNoLabels = errors.New("window needs at least one label")
)

// ring is a fixed-size buffer of float64 values. head points at the oldest.
type ring struct {
	values []float64
	head   int
}

func newRing(capacity int) *ring {
	return &ring{values: make([]float64, capacity)}
}

// push evicts the oldest value and appends v as the newest.
func (r *ring) push(v float64) {
	r.values[r.head] = v
	r.head = (r.head + 1) % len(r.values)
}

func (r *ring) at(i int) float64 {
	return r.values[(r.head+i)%len(r.values)]
}

func (r *ring) newest() float64 {
	return r.at(len(r.values) - 1)
}

func (r *ring) appendTo(dst []float64) []float64 {
	dst = append(dst, r.values[r.head:]...)
	return append(dst, r.values[:r.head]...)
}

// Window holds the last Capacity samples of every tracked field plus the
// synthetic index. Each ring always holds exactly Capacity values, oldest
// first; unfilled slots read as zero.
type Window struct {
	labels   []string
	fields   map[string]*ring
	index    *ring
	capacity int
}

// New creates a Window for labels, all rings zero-filled.
func New(labels []string, capacity int) (*Window, error) {
	if capacity < 1 {
		return nil, ErrCapacity
	}
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	w := &Window{
		labels:   append([]string(nil), labels...),
		fields:   make(map[string]*ring, len(labels)),
		index:    newRing(capacity),
		capacity: capacity,
	}
	for _, label := range labels {
		switch {
		case label == "":
			return nil, errors.New("window label must not be empty")
		case label == IndexName:
			return nil, fmt.Errorf("window label %q is reserved", label)
		}
		if _, dup := w.fields[label]; dup {
			return nil, fmt.Errorf("duplicate window label %q", label)
		}
		w.fields[label] = newRing(capacity)
	}
	return w, nil
}

// Push appends one sample. Only tracked fields present in values advance;
// the index always does. Unknown keys are ignored.
func (w *Window) Push(values map[string]float64, index float64) {
	for label, v := range values {
		if r, ok := w.fields[label]; ok {
			r.push(v)
		}
	}
	w.index.push(index)
}

// PushRow pushes values in label order. A short row only advances the
// fields it covers.
func (w *Window) PushRow(values []float64, index float64) {
	for i, v := range values {
		if i >= len(w.labels) {
			break
		}
		w.fields[w.labels[i]].push(v)
	}
	w.index.push(index)
}

// Snapshot is a copy of the window contents, oldest first.
type Snapshot struct {
	Index  []float64
	Fields map[string][]float64
}

// Snapshot copies every ring.
func (w *Window) Snapshot() Snapshot {
	s := Snapshot{
		Index:  w.index.appendTo(make([]float64, 0, w.capacity)),
		Fields: make(map[string][]float64, len(w.fields)),
	}
	for label, r := range w.fields {
		s.Fields[label] = r.appendTo(make([]float64, 0, w.capacity))
	}
	return s
}

// Labels returns the tracked field names in declaration order.
func (w *Window) Labels() []string {
	return append([]string(nil), w.labels...)
}

func (w *Window) Capacity() int { return w.capacity }

// Series returns a copy of one field, or of the index for IndexName.
func (w *Window) Series(label string) ([]float64, bool) {
	if label == IndexName {
		return w.index.appendTo(make([]float64, 0, w.capacity)), true
	}
	r, ok := w.fields[label]
	if !ok {
		return nil, false
	}
	return r.appendTo(make([]float64, 0, w.capacity)), true
}

// Latest returns the newest value of a field.
func (w *Window) Latest(label string) (float64, bool) {
	if label == IndexName {
		return w.index.newest(), true
	}
	r, ok := w.fields[label]
	if !ok {
		return 0, false
	}
	return r.newest(), true
}

// Bounds returns the minimum and maximum over every tracked field.
func (w *Window) Bounds() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range w.fields {
		for _, v := range r.values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

// IndexRange returns the oldest and newest index values.
func (w *Window) IndexRange() (oldest, newest float64) {
	return w.index.at(0), w.index.newest()
}
