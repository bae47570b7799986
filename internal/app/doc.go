// Package app wires linescope together.
//
// # Overview
//
// Run is the composition root. It loads configuration, sets up logging and
// metrics, opens the data source, and starts the acquisition goroutine,
// the renderer and the terminal UI.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> LoadConfig()        file + CLI overrides, validated
//	       ├─────> logging.Setup()     file logger (never the terminal)
//	       ├─────> metrics.New()       private prometheus registry
//	       ├─────> metrics.Listen()    bind --metrics-addr before the UI
//	       ├─────> openSource()        capture file or serial port
//	       ├─────> acquire.Start()     background read loop
//	       ├─────> render.New()        window, blitter, render timer
//	       └─────> errgroup
//	                 ├─> ui.Run()        blocks until quit or ctx done
//	                 └─> metrics.Serve() only with a listen address; errors are logged
//
// # Missing Devices
//
// When no port matches the device filter, or the port or file cannot be
// opened, Run logs the error, records it in the status store and carries
// on with a closed placeholder source. The chart comes up empty and the
// header explains why. Configuration errors, by contrast, are returned
// before the terminal is touched.
//
// # Shutdown
//
// Quitting the UI fires the canvas close callbacks, which close the
// renderer; that stops acquisition and waits for the read goroutine. The
// deferred calls in Run repeat the close (a no-op by then), close the
// source and flush the log file. A cancelled context takes the same path.
package app
