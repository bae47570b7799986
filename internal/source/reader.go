package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// ReaderOptions configure a Reader.
type ReaderOptions struct {
	// Pace spaces successive lines apart, for replaying a capture file at
	// roughly the rate it was recorded. Zero streams as fast as possible.
	Pace time.Duration
}

// Reader reads lines from a file, named pipe or any other byte stream.
type Reader struct {
	name    string
	rc      io.ReadCloser
	scanner *bufio.Scanner
	pace    time.Duration
	last    time.Time

	open      atomic.Bool
	closeOnce sync.Once
}

// NewReader wraps rc. name is shown in the UI.
func NewReader(name string, rc io.ReadCloser, opts ReaderOptions) *Reader {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	r := &Reader{name: name, rc: rc, scanner: scanner, pace: opts.Pace}
	r.open.Store(true)
	return r
}

// OpenFile opens a capture file or FIFO at path.
func OpenFile(path string, opts ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DeviceError{Port: path, Op: "open", Err: err}
	}
	return NewReader(path, f, opts), nil
}

// ReadLine blocks until a line is available. At end of stream the reader
// closes itself and reports the source closed. Cancelling ctx closes the
// stream, which is the only way to interrupt a read on an idle pipe.
func (r *Reader) ReadLine(ctx context.Context) (string, error) {
	if !r.IsOpen() {
		return "", ErrClosed
	}
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	release := context.AfterFunc(ctx, func() { _ = r.Close() })
	ok := r.scanner.Scan()
	release()
	if !ok {
		err := r.scanner.Err()
		_ = r.Close()
		if cerr := ctx.Err(); cerr != nil {
			return "", cerr
		}
		if err != nil {
			return "", &DeviceError{Port: r.name, Op: "read", Err: err}
		}
		return "", ErrClosed
	}
	r.last = time.Now()
	return cleanLine(r.scanner.Bytes()), nil
}

func (r *Reader) wait(ctx context.Context) error {
	if r.pace <= 0 || r.last.IsZero() {
		return ctx.Err()
	}
	delay := r.pace - time.Since(r.last)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsOpen reports whether more lines may follow.
func (r *Reader) IsOpen() bool {
	return r.open.Load()
}

// Close releases the underlying stream. Safe to call more than once.
func (r *Reader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.open.Store(false)
		if cerr := r.rc.Close(); cerr != nil {
			err = fmt.Errorf("close %s: %w", r.name, cerr)
		}
	})
	return err
}

// Name returns the stream name.
func (r *Reader) Name() string {
	return r.name
}
