package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the chart.
type keyMap struct {
	Pause        key.Binding
	Quit         key.Binding
	Help         key.Binding
	CycleTheme   key.Binding
	ToggleLegend key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "Pause/resume"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ToggleLegend: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle legend"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.CycleTheme, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.ToggleLegend, k.CycleTheme},
		{k.Help, k.Quit},
	}
}
