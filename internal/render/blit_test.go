package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlitter_DrawEventRecapturesAndDrawsArtists(t *testing.T) {
	surface := newRecordingSurface()
	NewBlitter(surface, "a", "b")

	surface.Redraw()

	assert.Equal(t, []string{"redraw", "copy", "draw:a", "draw:b"}, surface.calls)
}

func TestBlitter_InvalidateForcesRedraw(t *testing.T) {
	surface := newRecordingSurface()
	b := NewBlitter(surface, "a")

	b.Update()
	surface.resetCalls()
	b.Update()
	assert.Equal(t, []string{"restore", "draw:a", "blit", "flush"}, surface.calls)

	surface.resetCalls()
	b.Invalidate()
	b.Update()
	assert.Equal(t, []string{"redraw", "copy", "draw:a", "restore", "draw:a", "blit", "flush"}, surface.calls)
}

// silentCanvas never fires draw callbacks.
type silentCanvas struct{ *recordingSurface }

func (c silentCanvas) Redraw() { c.record("redraw") }

func TestBlitter_CapturesWhenCanvasStaysSilent(t *testing.T) {
	surface := silentCanvas{newRecordingSurface()}
	b := NewBlitter(surface)

	b.Update()

	assert.Equal(t, []string{"redraw", "copy", "restore", "blit", "flush"}, surface.calls)
	assert.Equal(t, 1, surface.frames)
}
