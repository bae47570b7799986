// Package render turns buffered rows into chart frames.
//
// # Overview
//
// The Renderer is driven by a repeating timer armed on the Surface. Each
// tick runs on the display's event loop and does the same steps:
//
//  1. drain the acquisition buffer (nothing buffered: return)
//  2. parse each row with ParseRow; bad rows are counted and dropped
//  3. push parsed rows into the sliding window with a synthetic index
//  4. when paused, stop here
//  5. recompute axis bounds, hand the series to the surface and commit
//     through the Blitter
//
// Pausing only freezes the display. History keeps advancing, so resuming
// shows everything that arrived in the meantime.
//
// # Lifecycle
//
//	Idle ──New──→ Running ⇄ Paused
//	                 │         │
//	                 └─Close───┴──→ Stopped
//
// Close stops the acquisition, waiting for its goroutine, then releases
// the surface. Ticks after Close are no-ops.
//
// # Axis Bounds
//
// In line mode the y range spans every sample in the window plus 5% on each
// side, and the x range follows the oldest and newest index. Bar mode keeps
// one sample per field and scales y to the last row. A zero-width range is
// never applied.
//
// # Double Buffering
//
// Blitter keeps a cached background (axes, ticks, legend) and on each
// commit restores it, draws only the series artists, then blits the
// changed region. Whenever the canvas repaints its chrome it fires the draw
// callbacks and the Blitter recaptures. If no background is cached when a
// commit happens, Update forces that repaint first, so the first frame is
// complete.
package render
