package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// LineSource is a stream of text lines. ReadLine blocks for at most one read
// timeout and may return an empty line when nothing complete arrived, which
// gives the caller a chance to re-check whether it should keep reading.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
	IsOpen() bool
	Close() error
	Name() string
}

// ErrClosed is returned by ReadLine once the source has no more data.
var ErrClosed = errors.New("source closed")

// ErrNoDeviceFound is returned by Discover when no port is enumerable at all.
var ErrNoDeviceFound = errors.New("no serial port is available")

// NoMatchError is returned by Discover when ports exist but none of their
// descriptions contain the filter.
type NoMatchError struct {
	Filter    string
	Available []string
}

func (e *NoMatchError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no port name including %q found", e.Filter)
	}
	return fmt.Sprintf("no port name including %q found (available: %s)", e.Filter, strings.Join(e.Available, ", "))
}

// DeviceError reports a failure opening or talking to a device.
type DeviceError struct {
	Port string
	Op   string
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// IsSetupError reports whether err came from locating or opening a device.
func IsSetupError(err error) bool {
	var noMatch *NoMatchError
	var device *DeviceError
	return errors.Is(err, ErrNoDeviceFound) || errors.As(err, &noMatch) || errors.As(err, &device)
}

// Closed is a LineSource that never yields rows. It stands in for a device
// that could not be opened so the display stays up but quiescent.
type Closed struct {
	Label string
}

func (c Closed) ReadLine(context.Context) (string, error) { return "", ErrClosed }
func (c Closed) IsOpen() bool                             { return false }
func (c Closed) Close() error                             { return nil }
func (c Closed) Name() string                             { return c.Label }

