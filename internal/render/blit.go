package render

// Blitter redraws a fixed set of artists over a cached background, so a
// commit only touches what changed instead of repainting the chrome.
type Blitter struct {
	canvas  Canvas
	artists []string
	stale   bool
}

// NewBlitter subscribes to canvas draw events. artists are drawn in order.
func NewBlitter(c Canvas, artists ...string) *Blitter {
	b := &Blitter{
		canvas:  c,
		artists: append([]string(nil), artists...),
		stale:   true,
	}
	c.OnDraw(b.onDraw)
	return b
}

func (b *Blitter) onDraw() {
	b.canvas.CopyBackground()
	b.stale = false
	b.drawArtists()
}

func (b *Blitter) drawArtists() {
	for _, name := range b.artists {
		b.canvas.DrawArtist(name)
	}
}

// Invalidate drops the cached background; the next Update recaptures it.
func (b *Blitter) Invalidate() {
	b.stale = true
}

// Update commits one frame. Without a usable background it first forces a
// structural redraw so the frame is never blank.
func (b *Blitter) Update() {
	if b.stale || !b.canvas.RestoreBackground() {
		b.canvas.Redraw()
		if b.stale {
			// Canvas did not fire the draw callbacks.
			b.canvas.CopyBackground()
			b.stale = false
		}
		b.canvas.RestoreBackground()
	}
	b.drawArtists()
	b.canvas.Blit()
	b.canvas.FlushEvents()
}
