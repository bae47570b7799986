package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bgStyle renders header and footer segments on a solid bar color. Styling
// each word separately keeps the reset codes between segments from leaving
// holes in the bar.
type bgStyle struct {
	bg    lipgloss.Color
	space string
}

func newBgStyle(color string) bgStyle {
	bg := lipgloss.Color(color)
	return bgStyle{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// Render styles text, including its spaces, on the bar color.
func (b bgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return styled.Render(text)
	}
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

// Spaces returns n styled spaces.
func (b bgStyle) Spaces(n int) string {
	return strings.Repeat(b.space, n)
}

// Join joins rendered parts with a styled separator.
func (b bgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, lipgloss.NewStyle().Background(b.bg).Render(sep))
}
