// Package acquire runs the background read loop that feeds the chart.
//
// # Overview
//
// An Acquirer owns one goroutine that pulls lines from a source.LineSource,
// runs the optional Transform and appends the result to a shared buffer.
// The renderer empties that buffer on every tick with Drain.
//
//	acquisition goroutine            UI event loop
//	┌──────────────────┐             ┌──────────────┐
//	│ src.ReadLine()   │             │ tick         │
//	│ transform        │  append     │   Drain()    │
//	│ buffer ──────────┼──(mutex)───→│   parse/push │
//	└──────────────────┘             └──────────────┘
//
// Drain swaps the buffer for an empty one under the mutex, so every row is
// returned exactly once and in append order. A row appended while a drain
// is in progress lands in that batch or the next one.
//
// # Lifecycle
//
// Start sets the run flag before spawning the goroutine and refuses a
// second start with ErrAlreadyRunning. Stop clears the flag, cancels the
// read context and waits for the goroutine to exit; after it returns the
// buffer is never written again. Stop before any Start is ErrNotRunning.
//
// When the source closes on its own the goroutine exits but the run flag
// stays set, so rows still in the buffer are drained and drawn.
//
// # Transforms
//
// A Transform rewrites a raw line before it is buffered. Errors and panics
// both become a *TransformError; the row is dropped and counted and the
// loop carries on. Replace builds the common case of literal substitutions:
//
//	strip, _ := acquire.Replace("Quaternion:", "", "nan", "0.0")
package acquire
