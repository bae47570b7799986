// Package source opens the byte streams linescope reads telemetry from.
//
// # Overview
//
// A LineSource hands out one text line per ReadLine call. Two
// implementations exist:
//
//   - Serial: a serial port opened through go.bug.st/serial, located by a
//     substring of its description (device path, USB product string or
//     serial number)
//   - Reader: any io.ReadCloser, typically a capture file being replayed or
//     a named pipe fed by another process
//
// Closed is a placeholder used when no device could be opened; the chart
// still starts and stays responsive, it just never receives rows.
//
// # Discovery
//
// Discover walks the enumerated ports in order and returns the first whose
// description contains the filter:
//
//	info, err := source.Discover("CP2102", source.SerialPorts)
//	switch {
//	case errors.Is(err, source.ErrNoDeviceFound):
//		// nothing plugged in
//	case errors.As(err, &noMatch):
//		// ports exist, none matched; noMatch.Available lists them
//	}
//
// # Read Timeouts
//
// Serial ports are opened with a read timeout (100ms by default). When the
// timeout expires before a full line arrived, ReadLine returns an empty
// string and a nil error. The acquisition loop discards empty lines and
// re-checks its run flag, which bounds how long a stop request waits.
//
// # Line Cleanup
//
// Lines have surrounding whitespace (including the CR of CRLF endings)
// removed, invalid UTF-8 bytes dropped, and are capped at 1MB when a
// newline never arrives.
//
// # Errors
//
//   - ErrNoDeviceFound: nothing enumerable
//   - *NoMatchError: ports exist but none match the filter
//   - *DeviceError: open, configure or read failed (wraps the cause)
//
// A source that reached end of stream or lost its device reports
// IsOpen() == false, and ReadLine then returns ErrClosed.
package source
