package acquire

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/linescope/internal/source"
	"github.com/five82/linescope/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanSource yields lines pushed into its channel. Closing the channel ends
// the stream the way EOF does on a file.
type chanSource struct {
	lines chan string
	open  atomic.Bool
	reads atomic.Int64
}

func newChanSource(buffer int) *chanSource {
	s := &chanSource{lines: make(chan string, buffer)}
	s.open.Store(true)
	return s
}

func (s *chanSource) ReadLine(ctx context.Context) (string, error) {
	s.reads.Add(1)
	select {
	case line, ok := <-s.lines:
		if !ok {
			s.open.Store(false)
			return "", source.ErrClosed
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *chanSource) IsOpen() bool { return s.open.Load() }
func (s *chanSource) Close() error { s.open.Store(false); return nil }
func (s *chanSource) Name() string { return "chan" }

func drainUntil(t *testing.T, a *Acquirer, want int) []string {
	t.Helper()
	var got []string
	require.Eventually(t, func() bool {
		got = append(got, a.Drain()...)
		return len(got) >= want
	}, 2*time.Second, time.Millisecond)
	return got
}

func TestAcquirer_Lifecycle(t *testing.T) {
	src := newChanSource(0)
	a := New(src, Options{})

	assert.ErrorIs(t, a.Stop(), ErrNotRunning)
	assert.False(t, a.Running())

	require.NoError(t, a.Start())
	assert.True(t, a.Running())
	assert.ErrorIs(t, a.Start(), ErrAlreadyRunning)

	require.NoError(t, a.Stop())
	assert.False(t, a.Running())
	require.NoError(t, a.Stop(), "second stop is a no-op")

	require.NoError(t, a.Start(), "restart after stop")
	require.NoError(t, a.Stop())
}

func TestAcquirer_DeliversRowsInOrderExactlyOnce(t *testing.T) {
	const total = 5000
	src := newChanSource(64)
	a := New(src, Options{})
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Stop() })

	go func() {
		for i := 0; i < total; i++ {
			src.lines <- strconv.Itoa(i)
		}
	}()

	got := drainUntil(t, a, total)
	require.Len(t, got, total)
	for i, row := range got {
		require.Equal(t, strconv.Itoa(i), row)
	}
	assert.Empty(t, a.Drain())
}

func TestAcquirer_StopUnblocksPendingRead(t *testing.T) {
	src := newChanSource(0)
	a := New(src, Options{})
	require.NoError(t, a.Start())

	require.Eventually(t, func() bool { return src.reads.Load() > 0 }, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		_ = a.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return while a read was pending")
	}

	select {
	case src.lines <- "late":
		t.Fatal("reader still consuming after stop")
	default:
	}
	assert.Empty(t, a.Drain())
}

func TestAcquirer_SourceEndKeepsRunFlag(t *testing.T) {
	src := newChanSource(4)
	status := &state.Store{}
	a := New(src, Options{Status: status})
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Stop() })

	src.lines <- "1,2"
	src.lines <- "3,4"
	close(src.lines)

	require.Eventually(t, func() bool { return status.Snapshot().SourceEnded }, 2*time.Second, time.Millisecond)
	assert.True(t, a.Running(), "buffered rows must stay drainable")
	assert.Equal(t, []string{"1,2", "3,4"}, a.Drain())
	assert.Equal(t, uint64(2), status.Snapshot().RowsRead)
}

func TestAcquirer_DiscardsEmptyLines(t *testing.T) {
	src := newChanSource(4)
	a := New(src, Options{})
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Stop() })

	src.lines <- ""
	src.lines <- "1"
	src.lines <- ""
	src.lines <- "2"

	assert.Equal(t, []string{"1", "2"}, drainUntil(t, a, 2))
}

func TestAcquirer_TransformFailuresDropRow(t *testing.T) {
	transform := func(row string) (string, error) {
		switch row {
		case "bad":
			return "", errors.New("rejected")
		case "panic":
			panic("boom")
		}
		return strings.ToUpper(row), nil
	}

	src := newChanSource(4)
	status := &state.Store{}
	a := New(src, Options{Transform: transform, Status: status})
	require.NoError(t, a.Start())
	t.Cleanup(func() { _ = a.Stop() })

	src.lines <- "a"
	src.lines <- "bad"
	src.lines <- "panic"
	src.lines <- "b"

	assert.Equal(t, []string{"A", "B"}, drainUntil(t, a, 2))

	snap := status.Snapshot()
	assert.Equal(t, uint64(2), snap.TransformErrors)
	var terr *TransformError
	require.ErrorAs(t, snap.LastError, &terr)
	assert.Equal(t, "panic", terr.Row)
}

// flakySource fails every other read without closing.
type flakySource struct {
	mu    sync.Mutex
	calls int
}

func (f *flakySource) ReadLine(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	time.Sleep(time.Millisecond)
	if n%2 == 1 {
		return "", errors.New("framing error")
	}
	return strconv.Itoa(n), nil
}

func (f *flakySource) IsOpen() bool { return true }
func (f *flakySource) Close() error { return nil }
func (f *flakySource) Name() string { return "flaky" }

func TestAcquirer_ReadErrorsDoNotStopLoop(t *testing.T) {
	status := &state.Store{}
	a := New(&flakySource{}, Options{Status: status})
	require.NoError(t, a.Start())

	got := drainUntil(t, a, 3)
	require.NoError(t, a.Stop())

	assert.Equal(t, []string{"2", "4", "6"}, got[:3])
	assert.GreaterOrEqual(t, status.Snapshot().ReadErrors, uint64(3))
}

func TestAcquirer_ClosedSourceIsQuiescent(t *testing.T) {
	status := &state.Store{}
	a := New(source.Closed{Label: "COM11"}, Options{Status: status})
	require.NoError(t, a.Start())

	require.Eventually(t, func() bool { return status.Snapshot().SourceEnded }, time.Second, time.Millisecond)
	assert.Empty(t, a.Drain())
	require.NoError(t, a.Stop())
}
