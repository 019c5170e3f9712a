package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/oneearth/internal/state"
	"github.com/five82/oneearth/internal/theme"
)

const defaultPollTick = time.Second

// Options configures the UI.
type Options struct {
	Context context.Context
	Store   *state.Store
	Theme   *theme.Store
	// Refetch requests an immediate refresh of every query. It runs off the
	// UI goroutine.
	Refetch   func()
	PollTick  time.Duration
	Origin    string
	HealthURL string
	SiteURL   string
	Days      int
	Logger    *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	themes    *theme.Store
	refetch   func()
	pollTick  time.Duration
	origin    string
	healthURL string
	siteURL   string
	days      int
	logger    *zap.Logger
	now       func() time.Time

	// UI state
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	spinning bool
	palette  Palette
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultPollTick
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		themes:    opts.Theme,
		refetch:   opts.Refetch,
		pollTick:  pollTick,
		origin:    opts.Origin,
		healthURL: opts.HealthURL,
		siteURL:   opts.SiteURL,
		days:      opts.Days,
		logger:    logger,
		now:       time.Now,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		spinning:  true,
		palette:   PaletteFor(opts.Theme.IsDark()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		m.spinner.Tick,
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = m.now()
		if m.snapshot.Pending() && !m.spinning {
			m.spinning = true
			return m, m.spinner.Tick
		}
		return m, nil

	case spinner.TickMsg:
		if !m.snapshot.Pending() && m.ready {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case systemThemeMsg:
		// Explicit modes ignore the system signal; IsDark resolves that.
		m.palette = PaletteFor(m.themes.IsDark())
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refetchCmd()

	case key.Matches(msg, m.keys.CycleTheme):
		m.setMode(m.themes.Mode().Next())
		return m, nil

	case key.Matches(msg, m.keys.Light):
		m.setMode(theme.Light)
		return m, nil

	case key.Matches(msg, m.keys.Dark):
		m.setMode(theme.Dark)
		return m, nil

	case key.Matches(msg, m.keys.System):
		m.setMode(theme.System)
		return m, nil
	}

	return m, nil
}

func (m *Model) setMode(mode theme.Mode) {
	m.themes.SetMode(mode)
	m.palette = PaletteFor(m.themes.IsDark())
	m.logger.Debug("theme mode changed",
		zap.String("mode", mode.String()),
		zap.String("scheme", m.themes.ColorScheme()))
}

func (m Model) refetchCmd() tea.Cmd {
	if m.refetch == nil {
		return nil
	}
	refetch := m.refetch
	return func() tea.Msg {
		refetch()
		return nil
	}
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// renderMain renders the full dashboard.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderTile())
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))

	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type systemThemeMsg struct {
	dark bool
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))

	stop := opts.Theme.WatchSystem(func(dark bool) {
		p.Send(systemThemeMsg{dark: dark})
	})
	defer stop()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
