package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
	plot "github.com/chriskim06/drawille-go"
)

const brailleBase = 0x2800

// linePlotter rasterizes one series at a time with drawille and hands back
// the braille dot bits per cell, so the canvas can colour and merge them.
//
// drawille scales whatever it is filled with to the plot height. To pin
// that scale to the axis limits, every series is normalized to 0..1 and
// filled next to a guide series spanning exactly 0..1. The guide's own
// dots, rendered once per size, are then masked out of the result.
type linePlotter struct {
	w, h   int
	guideN int
	guide  [][]uint8
}

func newLinePlotter(w, h int) *linePlotter {
	return &linePlotter{w: w, h: h}
}

// dots returns an h x w grid of braille bits for ys drawn against lo..hi.
func (p *linePlotter) dots(ys []float64, lo, hi float64) [][]uint8 {
	if len(ys) == 0 || p.w < 1 || p.h < 1 {
		return nil
	}
	norm := normalize(ys, lo, hi)
	if len(norm) == 1 {
		norm = append(norm, norm[0])
	}
	n := len(norm)

	guide := guideSeries(n)
	if p.guide == nil || p.guideN != n {
		p.guide = p.raster([][]float64{guide})
		p.guideN = n
	}
	grid := p.raster([][]float64{norm, guide})
	maskDots(grid, p.guide)
	return grid
}

func (p *linePlotter) raster(data [][]float64) [][]uint8 {
	canvas := plot.NewCanvas(p.w, p.h)
	canvas.NumDataPoints = len(data[0])
	canvas.ShowAxis = false
	canvas.LineColors = make([]plot.Color, len(data))
	canvas.Fill(data)
	return brailleDots(canvas.String(), p.w, p.h)
}

// guideSeries starts at 1 and stays at 0, so it spans the full range while
// keeping to the left edge and the bottom row.
func guideSeries(n int) []float64 {
	guide := make([]float64, n)
	guide[0] = 1
	return guide
}

// normalize maps ys onto 0..1 against lo..hi, clamping values outside the
// limits. An empty range puts everything mid-height.
func normalize(ys []float64, lo, hi float64) []float64 {
	out := make([]float64, len(ys))
	for i, v := range ys {
		if hi <= lo {
			out[i] = 0.5
			continue
		}
		out[i] = math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
	}
	return out
}

// brailleDots reads the dot bits back out of rendered plot text. Anything
// that is not a braille rune counts as empty.
func brailleDots(s string, w, h int) [][]uint8 {
	grid := make([][]uint8, h)
	lines := strings.Split(ansi.Strip(s), "\n")
	for y := range grid {
		grid[y] = make([]uint8, w)
		if y >= len(lines) {
			continue
		}
		x := 0
		for _, r := range lines[y] {
			if x >= w {
				break
			}
			if r >= brailleBase && r <= brailleBase+0xff {
				grid[y][x] = uint8(r - brailleBase)
			}
			x++
		}
	}
	return grid
}

// maskDots clears from grid every dot set in mask.
func maskDots(grid, mask [][]uint8) {
	for y := range grid {
		if y >= len(mask) {
			return
		}
		for x := range grid[y] {
			if x < len(mask[y]) {
				grid[y][x] &^= mask[y][x]
			}
		}
	}
}
