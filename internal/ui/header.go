package ui

import (
	"errors"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/five82/linescope/internal/render"
	"github.com/five82/linescope/internal/source"
	"github.com/five82/linescope/internal/state"
)

// stallAfter is how long a connected source may stay silent before the
// header flags it.
const stallAfter = 2 * time.Second

// renderHeader renders the status bar: device, renderer state and counters.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newBgStyle(m.theme.Surface)
	compact := m.width < 100

	snap := state.Snapshot{}
	if m.store != nil {
		snap = m.store.Snapshot()
	}
	var stats render.Stats
	status := render.StateIdle
	if m.renderer != nil {
		stats = m.renderer.Stats()
		status = m.renderer.State()
	}

	device := snap.Source
	if device == "" {
		device = m.device
	}
	limit := 40
	if compact {
		limit = 20
	}

	parts := []string{
		bg.Render("linescope", styles.Logo),
		bg.Render(truncateMiddle(device, limit), styles.Text),
		styles.StatusStyle(status.String()).Render(stateBadge(status)),
		bg.Render("rows", styles.MutedText) + bg.Spaces(1) +
			bg.Render(formatCount(stats.RowsApplied), styles.Text),
	}

	if dropped := snap.TransformErrors + stats.ParseErrors; dropped > 0 {
		parts = append(parts,
			bg.Render("dropped", styles.MutedText)+bg.Spaces(1)+
				bg.Render(formatCount(dropped), styles.WarningText))
	}
	if !compact && snap.ReadErrors > 0 {
		parts = append(parts,
			bg.Render("read errors", styles.MutedText)+bg.Spaces(1)+
				bg.Render(formatCount(snap.ReadErrors), styles.WarningText))
	}
	if note, tone := sourceNote(snap, m.now()); note != "" {
		style := styles.InfoText
		switch tone {
		case toneLive:
			style = styles.SuccessText
		case toneWarn:
			style = styles.WarningText
		case toneFail:
			style = styles.DangerText
		}
		parts = append(parts, bg.Render(note, style))
	}

	content := bg.Join(parts, "  ")
	return styles.Header.Width(m.width).Render(ansi.Truncate(content, max(0, m.width-2), "…"))
}

func stateBadge(s render.State) string {
	switch s {
	case render.StateRunning:
		return "RUNNING"
	case render.StatePaused:
		return "PAUSED"
	case render.StateStopped:
		return "STOPPED"
	default:
		return "IDLE"
	}
}

type noteTone int

const (
	toneInfo noteTone = iota
	toneLive
	toneWarn
	toneFail
)

// sourceNote describes the state of the source for the header.
func sourceNote(snap state.Snapshot, now time.Time) (string, noteTone) {
	switch {
	case !snap.Connected && snap.LastError != nil:
		return classifySourceError(snap.LastError), toneFail
	case snap.SourceEnded:
		return "source closed", toneWarn
	case snap.Stalled(now, stallAfter):
		return "no data", toneWarn
	case snap.Connected && snap.LastRowAt.IsZero():
		return "waiting for data", toneInfo
	case snap.Connected:
		return "live", toneLive
	}
	return "", toneInfo
}

func classifySourceError(err error) string {
	var noMatch *source.NoMatchError
	var device *source.DeviceError
	switch {
	case errors.Is(err, source.ErrNoDeviceFound):
		return "no serial ports found"
	case errors.As(err, &noMatch):
		return "no port matching " + noMatch.Filter
	case errors.As(err, &device):
		return "device " + device.Op + " failed"
	default:
		return "source error"
	}
}

// renderFooter renders the short key help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	m.help.Styles.ShortKey = m.help.Styles.ShortKey.Foreground(styles.WarningText.GetForeground())
	m.help.Width = max(0, m.width-2)
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}
