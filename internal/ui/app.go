package ui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/linescope/internal/logging"
	"github.com/five82/linescope/internal/prefs"
	"github.com/five82/linescope/internal/render"
	"github.com/five82/linescope/internal/state"
)

// Rows taken by the header and footer bars.
const (
	headerHeight = 1
	footerHeight = 1
)

// Controller is the renderer as seen by the UI.
type Controller interface {
	State() render.State
	Stats() render.Stats
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Canvas    *Canvas
	Renderer  Controller
	Store     *state.Store
	Device    string
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	canvas    *Canvas
	renderer  Controller
	store     *state.Store
	device    string
	prefs     prefs.Prefs
	prefsPath string
	logger    *slog.Logger
	clock     func() time.Time

	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	quitting bool
}

// New creates a new Bubble Tea model around an already wired canvas.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:       ctx,
		canvas:    opts.Canvas,
		renderer:  opts.Renderer,
		store:     opts.Store,
		device:    opts.Device,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		logger:    logging.Component(opts.Logger, "ui"),
		clock:     time.Now,
		theme:     GetTheme(opts.Prefs.Theme),
		keys:      DefaultKeyMap(),
		help:      help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.tickCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft &&
			msg.Y >= headerHeight && msg.Y < m.height-footerHeight {
			m.canvas.Click()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.canvas.Resize(msg.Width, max(0, msg.Height-headerHeight-footerHeight))
		m.ready = true
		return m, nil

	case tickMsg:
		// Re-armed only after the tick ran, so ticks never overlap.
		m.canvas.Tick()
		return m, m.tickCmd()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderHeader() + "\n" + m.canvas.View() + "\n" + m.renderFooter()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp && !key.Matches(msg, m.keys.Quit) {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.canvas.Close()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Pause):
		m.canvas.Click()

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.canvas.SetTheme(m.theme)
		m.prefs.Theme = m.theme.Name
		m.savePrefs()

	case key.Matches(msg, m.keys.ToggleLegend):
		m.prefs.HideLegend = !m.prefs.HideLegend
		m.canvas.SetLegendHidden(m.prefs.HideLegend)
		m.savePrefs()
	}
	return m, nil
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences failed", "path", m.prefsPath, "error", err)
	}
}

func (m Model) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}

// Messages

type tickMsg time.Time

// Commands

func (m Model) tickCmd() tea.Cmd {
	interval, ok := m.canvas.TickInterval()
	if !ok {
		return nil
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until it exits. The close
// callbacks always fire, whether the user quit or ctx was cancelled.
func Run(opts Options) error {
	m := New(opts)
	defer m.canvas.Close()

	p := tea.NewProgram(m,
		tea.WithContext(m.ctx),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
