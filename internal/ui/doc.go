// Package ui provides the terminal display for linescope.
//
// # Architecture Overview
//
// Two pieces live here:
//
//   - Canvas: a render.Surface backed by a cell grid. It paints the chart
//     chrome (legend, y ticks, axes, x range) and has drawille rasterize
//     line series into braille dots, or draws eighth-block bars in bar mode.
//   - Model: the Bubble Tea program hosting the canvas, with a header bar
//     showing device, renderer state and counters, and a key help footer.
//
// # Frames
//
// Canvas keeps a back grid that the renderer draws into and the text of
// the last published frame. A structural redraw (resize, theme change,
// legend toggle, axis limit change) repaints the chrome and fires the draw
// callbacks so the renderer's Blitter can recapture its background. Blit
// compares each row with what was shown last time and re-renders only the
// rows that differ; FlushEvents publishes the result, which View returns.
//
// # Event Flow
//
//  1. Run creates the Model and starts the program with mouse support
//  2. WindowSizeMsg resizes the canvas (minus header and footer rows)
//  3. tickMsg runs the renderer tick armed through Canvas.Every, then
//     schedules the next tick; only one tick is ever pending
//  4. A left click on the chart or p/space fires the click callbacks
//     (pause/resume); q, esc and ctrl+c fire the close callbacks and quit
//  5. Context cancellation ends the program; Run still fires the close
//     callbacks so acquisition stops
//
// Everything runs on the Bubble Tea event loop, so the canvas and the
// renderer need no locking. Acquisition status is read from state.Store.
//
// # Keyboard Shortcuts
//
//   - p, space: pause/resume drawing
//   - L: toggle legend
//   - T: cycle theme (saved to prefs)
//   - ?: toggle help
//   - q, esc, ctrl+c: quit
package ui
