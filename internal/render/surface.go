package render

import "time"

// Canvas is the drawing target the Blitter drives.
type Canvas interface {
	// Redraw repaints the static chrome and fires the draw callbacks.
	Redraw()
	// CopyBackground caches the current frame as the background.
	CopyBackground()
	// RestoreBackground copies the cached background back into the frame.
	// It reports false when there is none, or the chrome changed since the
	// copy was taken.
	RestoreBackground() bool
	// DrawArtist draws one managed artist on top of the current frame.
	DrawArtist(name string)
	// Blit pushes the changed region of the frame to the display.
	Blit()
	// FlushEvents publishes the frame and handles pending display events.
	FlushEvents()
	// OnDraw registers a callback fired by every structural redraw.
	OnDraw(fn func())
}

// Surface is everything the Renderer needs from a display.
type Surface interface {
	Canvas

	SetSeries(name string, x, y []float64)
	SetXLim(lo, hi float64)
	SetYLim(lo, hi float64)

	// OnClick registers a callback for a pointer press on the display.
	OnClick(fn func())
	// OnClose registers a callback for the display being closed.
	OnClose(fn func())
	// Every arms a repeating timer on the display's event loop. fn is never
	// run concurrently with itself or with the other callbacks.
	Every(interval time.Duration, fn func())
	// Release frees display resources. Callbacks no longer fire afterwards.
	Release()
}
