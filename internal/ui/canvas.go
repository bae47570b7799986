package ui

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/linescope/internal/render"
)

// Cell styles below styleSeries are chrome; styleSeries+i is field i.
const (
	styleBlank uint8 = iota
	styleAxis
	styleTick
	styleLegend
	styleSeries
)

var eighths = []rune(" ▁▂▃▄▅▆▇█")

type cell struct {
	ch    rune
	style uint8
	dots  uint8
}

type rect struct{ x, y, w, h int }

type series struct{ x, y []float64 }

// CanvasOptions configure a Canvas.
type CanvasOptions struct {
	Labels     []string
	Mode       render.Mode
	Theme      Theme
	HideLegend bool
}

// Canvas is a render.Surface drawn on a terminal cell grid. Line series
// are rasterized by drawille into braille dots, bars with eighth blocks.
//
// The frame being built (back) is separate from the text last published
// (frame). Blit renders only the rows whose cells changed since the
// previous blit and FlushEvents swaps the result in.
type Canvas struct {
	labels     []string
	slots      map[string]int
	mode       render.Mode
	theme      Theme
	styles     []lipgloss.Style
	hideLegend bool

	width, height int
	plot          rect
	tooSmall      bool
	plotter       *linePlotter

	xlo, xhi float64
	ylo, yhi float64
	series   map[string]series

	back       [][]cell
	background [][]cell
	bgValid    bool

	shown     [][]cell
	lines     []string
	frame     string
	frames    uint64
	dirtyRows int

	drawFns  []func()
	clickFns []func()
	closeFns []func()
	interval time.Duration
	tickFn   func()
	released bool
	closed   bool
}

var _ render.Surface = (*Canvas)(nil)

// NewCanvas returns an empty canvas. It draws nothing until Resize.
func NewCanvas(opts CanvasOptions) *Canvas {
	c := &Canvas{
		labels:     append([]string(nil), opts.Labels...),
		slots:      make(map[string]int, len(opts.Labels)),
		mode:       opts.Mode,
		hideLegend: opts.HideLegend,
		xlo:        0,
		xhi:        1,
		ylo:        0,
		yhi:        1,
		series:     make(map[string]series, len(opts.Labels)),
	}
	if c.mode == "" {
		c.mode = render.ModeLine
	}
	for i, label := range c.labels {
		c.slots[label] = i
	}
	c.applyTheme(opts.Theme)
	return c
}

func (c *Canvas) applyTheme(t Theme) {
	if t.Name == "" {
		t = GetTheme("")
	}
	c.theme = t
	bg := lipgloss.Color(t.Background)
	base := lipgloss.NewStyle().Background(bg)
	c.styles = []lipgloss.Style{
		styleBlank:  base,
		styleAxis:   base.Foreground(lipgloss.Color(t.Border)),
		styleTick:   base.Foreground(lipgloss.Color(t.Muted)),
		styleLegend: base.Foreground(lipgloss.Color(t.Text)),
	}
	for i := range c.labels {
		c.styles = append(c.styles, base.Foreground(lipgloss.Color(t.SeriesColor(i))))
	}
}

// Resize sets the canvas size in cells and repaints everything.
func (c *Canvas) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == c.width && height == c.height && c.back != nil {
		return
	}
	c.width, c.height = width, height
	c.back = newGrid(width, height)
	c.background = nil
	c.bgValid = false
	c.shown = nil
	c.lines = make([]string, height)
	c.refresh()
}

// SetTheme switches palettes and repaints everything.
func (c *Canvas) SetTheme(t Theme) {
	c.applyTheme(t)
	c.shown = nil
	c.refresh()
}

// SetLegendHidden toggles the legend row.
func (c *Canvas) SetLegendHidden(hidden bool) {
	if hidden == c.hideLegend {
		return
	}
	c.hideLegend = hidden
	c.refresh()
}

// LegendHidden reports whether the legend row is hidden.
func (c *Canvas) LegendHidden() bool { return c.hideLegend }

// refresh is a structural redraw followed by a full commit, used when the
// display itself changed and the renderer may not commit again soon.
func (c *Canvas) refresh() {
	if c.back == nil {
		return
	}
	c.Redraw()
	if !c.bgValid {
		// Nobody subscribed to draw events; show the chrome alone.
		c.CopyBackground()
	}
	c.Blit()
	c.FlushEvents()
}

// Redraw repaints the chrome and fires the draw callbacks.
func (c *Canvas) Redraw() {
	c.paintChrome()
	c.bgValid = false
	for _, fn := range slices.Clone(c.drawFns) {
		fn()
	}
}

// CopyBackground caches the current back frame.
func (c *Canvas) CopyBackground() {
	c.background = cloneGrid(c.background, c.back)
	c.bgValid = true
}

// RestoreBackground resets the back frame to the cached background.
func (c *Canvas) RestoreBackground() bool {
	if !c.bgValid || len(c.background) != len(c.back) {
		return false
	}
	for y := range c.back {
		copy(c.back[y], c.background[y])
	}
	return true
}

// DrawArtist draws one field on top of the back frame.
func (c *Canvas) DrawArtist(name string) {
	slot, ok := c.slots[name]
	if !ok || c.tooSmall || c.back == nil {
		return
	}
	s := c.series[name]
	if c.mode == render.ModeBar {
		c.drawBar(slot, s)
		return
	}
	c.drawLine(slot, s)
}

// Blit re-renders the rows that differ from the previous blit.
func (c *Canvas) Blit() {
	if len(c.shown) != len(c.back) {
		c.shown = make([][]cell, len(c.back))
	}
	c.dirtyRows = 0
	for y, row := range c.back {
		if c.shown[y] != nil && slices.Equal(c.shown[y], row) {
			continue
		}
		c.lines[y] = c.renderRow(row)
		c.shown[y] = append(c.shown[y][:0], row...)
		c.dirtyRows++
	}
}

// FlushEvents publishes the blitted rows as the visible frame.
func (c *Canvas) FlushEvents() {
	c.frame = strings.Join(c.lines, "\n")
	c.frames++
}

// OnDraw registers a structural redraw callback.
func (c *Canvas) OnDraw(fn func()) {
	if !c.released {
		c.drawFns = append(c.drawFns, fn)
	}
}

// OnClick registers a pointer press callback.
func (c *Canvas) OnClick(fn func()) {
	if !c.released {
		c.clickFns = append(c.clickFns, fn)
	}
}

// OnClose registers a close callback.
func (c *Canvas) OnClose(fn func()) {
	if !c.released {
		c.closeFns = append(c.closeFns, fn)
	}
}

// Every arms the render timer. The hosting program drives it with Tick.
func (c *Canvas) Every(interval time.Duration, fn func()) {
	if c.released {
		return
	}
	c.interval = interval
	c.tickFn = fn
}

// SetSeries replaces the data for one field.
func (c *Canvas) SetSeries(name string, x, y []float64) {
	c.series[name] = series{x: x, y: y}
}

// SetXLim sets the x range. A change invalidates the cached background.
func (c *Canvas) SetXLim(lo, hi float64) {
	if lo == c.xlo && hi == c.xhi {
		return
	}
	c.xlo, c.xhi = lo, hi
	c.bgValid = false
}

// SetYLim sets the y range. A change invalidates the cached background.
func (c *Canvas) SetYLim(lo, hi float64) {
	if lo == c.ylo && hi == c.yhi {
		return
	}
	c.ylo, c.yhi = lo, hi
	c.bgValid = false
}

// Release disarms the timer and drops every callback.
func (c *Canvas) Release() {
	c.released = true
	c.tickFn = nil
	c.drawFns = nil
	c.clickFns = nil
	c.closeFns = nil
}

// Tick runs the armed timer callback once.
func (c *Canvas) Tick() {
	if fn := c.tickFn; fn != nil && !c.released {
		fn()
	}
}

// TickInterval reports the armed interval, or false when nothing is armed.
func (c *Canvas) TickInterval() (time.Duration, bool) {
	if c.tickFn == nil || c.released || c.interval <= 0 {
		return 0, false
	}
	return c.interval, true
}

// Click fires the click callbacks.
func (c *Canvas) Click() {
	for _, fn := range slices.Clone(c.clickFns) {
		fn()
	}
}

// Close fires the close callbacks once.
func (c *Canvas) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for _, fn := range slices.Clone(c.closeFns) {
		fn()
	}
}

// View returns the last published frame.
func (c *Canvas) View() string { return c.frame }

// Frames counts published frames.
func (c *Canvas) Frames() uint64 { return c.frames }

// DirtyRows is the number of rows the last Blit re-rendered.
func (c *Canvas) DirtyRows() int { return c.dirtyRows }

func (c *Canvas) paintChrome() {
	for y := range c.back {
		for x := range c.back[y] {
			c.back[y][x] = cell{ch: ' '}
		}
	}

	top := 0
	if !c.hideLegend {
		top = 1
	}
	ticks := c.yTicks()
	labelW := 0
	for _, t := range ticks {
		labelW = max(labelW, len(t))
	}

	c.plot = rect{x: labelW + 1, y: top, w: c.width - labelW - 1, h: c.height - top - 2}
	c.tooSmall = c.plot.w < 2 || c.plot.h < 1
	if c.tooSmall {
		if c.height > 0 {
			c.putText(0, 0, ansi.Truncate("terminal too small", c.width, ""), styleTick)
		}
		return
	}

	if !c.hideLegend {
		c.paintLegend()
	}

	// y axis with top, middle and bottom ticks
	axisX := c.plot.x - 1
	for y := c.plot.y; y < c.plot.y+c.plot.h; y++ {
		c.back[y][axisX] = cell{ch: '│', style: styleAxis}
	}
	rows := []int{c.plot.y, c.plot.y + c.plot.h - 1}
	if c.plot.h >= 3 {
		rows = append(rows, c.plot.y+(c.plot.h-1)/2)
	}
	for i, y := range rows {
		label := ticks[i]
		c.putText(labelW-len(label), y, label, styleTick)
		c.back[y][axisX] = cell{ch: '┤', style: styleAxis}
	}

	// x axis
	axisY := c.plot.y + c.plot.h
	c.back[axisY][axisX] = cell{ch: '└', style: styleAxis}
	for x := c.plot.x; x < c.width; x++ {
		c.back[axisY][x] = cell{ch: '─', style: styleAxis}
	}
	c.paintXLabels(axisY + 1)
}

// yTicks returns labels for the top, bottom and middle rows.
func (c *Canvas) yTicks() []string {
	return []string{
		formatTick(c.yhi),
		formatTick(c.ylo),
		formatTick(c.ylo + (c.yhi-c.ylo)/2),
	}
}

func (c *Canvas) paintLegend() {
	x := c.plot.x
	for i, label := range c.labels {
		entry := "● " + label
		if x+len([]rune(entry)) > c.width {
			break
		}
		c.putText(x, 0, "●", styleSeries+uint8(i))
		x = c.putText(x+2, 0, label, styleLegend) + 2
	}
}

func (c *Canvas) paintXLabels(y int) {
	if c.mode == render.ModeBar {
		slotW := c.plot.w / max(1, len(c.labels))
		if slotW == 0 {
			return
		}
		for i, label := range c.labels {
			label = ansi.Truncate(label, slotW, "")
			start := c.plot.x + i*slotW + (slotW-len([]rune(label)))/2
			c.putText(start, y, label, styleTick)
		}
		return
	}
	lo, hi := formatTick(c.xlo), formatTick(c.xhi)
	c.putText(c.plot.x, y, lo, styleTick)
	if right := c.width - len(hi); right > c.plot.x+len(lo) {
		c.putText(right, y, hi, styleTick)
	}
}

// putText writes s at (x, y), clipped to the grid, and returns the column
// after the last rune.
func (c *Canvas) putText(x, y int, s string, style uint8) int {
	if y < 0 || y >= len(c.back) {
		return x
	}
	for _, r := range s {
		if x >= 0 && x < c.width {
			c.back[y][x] = cell{ch: r, style: style}
		}
		x++
	}
	return x
}

func (c *Canvas) drawLine(slot int, s series) {
	if c.plotter == nil || c.plotter.w != c.plot.w || c.plotter.h != c.plot.h {
		c.plotter = newLinePlotter(c.plot.w, c.plot.h)
	}
	for y, row := range c.plotter.dots(s.y, c.ylo, c.yhi) {
		for x, bits := range row {
			if bits != 0 {
				c.setDots(x, y, bits, slot)
			}
		}
	}
}

// setDots merges braille bits into the plot cell at (x, y). Chrome text is
// never overwritten.
func (c *Canvas) setDots(x, y int, bits uint8, slot int) {
	cx, cy := c.plot.x+x, c.plot.y+y
	if cx < 0 || cy < 0 || cy >= len(c.back) || cx >= len(c.back[cy]) {
		return
	}
	cl := &c.back[cy][cx]
	if cl.ch != ' ' && cl.dots == 0 {
		return
	}
	cl.dots |= bits
	cl.ch = rune(brailleBase + int(cl.dots))
	cl.style = styleSeries + uint8(slot)
}

func (c *Canvas) drawBar(slot int, s series) {
	if len(s.y) == 0 {
		return
	}
	slotW := c.plot.w / max(1, len(c.labels))
	if slotW == 0 {
		return
	}
	barW := max(1, slotW-1)
	left := c.plot.x + slot*slotW + (slotW-barW)/2

	frac := 0.0
	if c.yhi > c.ylo {
		frac = (s.y[len(s.y)-1] - c.ylo) / (c.yhi - c.ylo)
	}
	total := int(math.Round(math.Max(0, math.Min(1, frac)) * float64(c.plot.h*8)))
	full, rem := total/8, total%8

	bottom := c.plot.y + c.plot.h - 1
	style := styleSeries + uint8(slot)
	for x := left; x < left+barW; x++ {
		for i := 0; i < full; i++ {
			c.back[bottom-i][x] = cell{ch: eighths[8], style: style}
		}
		if rem > 0 && full < c.plot.h {
			c.back[bottom-full][x] = cell{ch: eighths[rem], style: style}
		}
	}
}

func (c *Canvas) renderRow(row []cell) string {
	var b strings.Builder
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i].style == row[start].style {
			continue
		}
		run := make([]rune, 0, i-start)
		for _, cl := range row[start:i] {
			run = append(run, cl.ch)
		}
		b.WriteString(c.style(row[start].style).Render(string(run)))
		start = i
	}
	return b.String()
}

func (c *Canvas) style(s uint8) lipgloss.Style {
	if int(s) < len(c.styles) {
		return c.styles[s]
	}
	return c.styles[styleBlank]
}

func newGrid(width, height int) [][]cell {
	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
	}
	return grid
}

func cloneGrid(dst, src [][]cell) [][]cell {
	if len(dst) != len(src) {
		dst = make([][]cell, len(src))
	}
	for y := range src {
		dst[y] = append(dst[y][:0], src[y]...)
	}
	return dst
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
