package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/deltacrown/crownwatch/internal/events"
	"github.com/deltacrown/crownwatch/internal/notify"
	"github.com/deltacrown/crownwatch/internal/prefs"
	"github.com/deltacrown/crownwatch/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewDiagnostics
)

const (
	maxFeedEntries = 50
	diagLines      = 200
	toastTTL       = 8 * time.Second
)

// Sync is the part of a live sync the UI drives on focus changes.
type Sync interface {
	Name() string
	Suspend()
	Resume()
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Bus       *events.Bus
	Center    *notify.Center
	Bell      *notify.Bell
	Focus     *notify.Focus
	Syncs     []Sync
	Title     string
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
	LogPath   string
	// SuspendWhenHidden releases sync connections while the terminal is
	// unfocused.
	SuspendWhenHidden bool
	Logger            *zap.Logger
}

type feedEntry struct {
	at   time.Time
	name string
	text string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx               context.Context
	store             *state.Store
	center            *notify.Center
	bell              *notify.Bell
	focus             *notify.Focus
	title             string
	prefsPath         string
	logPath           string
	pollTick          time.Duration
	suspendWhenHidden bool
	logger            *zap.Logger

	events      <-chan events.Event
	unsubscribe func()

	// UI state
	theme       Theme
	keys        keyMap
	help        help.Model
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	vis         *visibility
	suspended   bool

	// Data state
	snapshot state.Snapshot
	feed     []feedEntry
	toasts   []notify.Toast
	prompt   bool
	logLines []string
	logErr   error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = 500 * time.Millisecond
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		ctx:               ctx,
		store:             opts.Store,
		center:            opts.Center,
		bell:              opts.Bell,
		focus:             opts.Focus,
		title:             opts.Title,
		prefsPath:         prefsPath,
		logPath:           opts.LogPath,
		pollTick:          pollTick,
		suspendWhenHidden: opts.SuspendWhenHidden,
		logger:            logger,
		theme:             GetTheme(themeName),
		keys:              DefaultKeyMap(),
		help:              help.New(),
		currentView:       ViewDashboard,
		unsubscribe:       func() {},
		vis:               &visibility{syncs: opts.Syncs},
	}
	if opts.Bus != nil {
		m.events, m.unsubscribe = opts.Bus.Subscribe(32)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.events != nil {
		cmds = append(cmds, waitEventCmd(m.events))
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

	case tea.FocusMsg:
		return m.handleFocus(true)

	case tea.BlurMsg:
		return m.handleFocus(false)

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case eventMsg:
		m.pushFeed(events.Event(msg))
		return m, waitEventCmd(m.events)

	case logTailMsg:
		m.logLines = []string(msg)
		m.logErr = nil
		return m, nil

	case logErrorMsg:
		m.logErr = msg.err
		return m, nil

	case visibilityMsg:
		m.suspended = msg.suspended
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

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.prompt && m.center != nil {
		switch {
		case key.Matches(msg, m.keys.Allow):
			m.answerPrompt(true)
			return m, nil
		case key.Matches(msg, m.keys.Deny):
			m.answerPrompt(false)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		name := m.theme.Name
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = name })
		return m, nil

	case key.Matches(msg, m.keys.ToggleSound):
		if m.bell != nil {
			on := !m.bell.Enabled()
			m.bell.SetEnabled(on)
			m.savePrefs(func(p *prefs.Prefs) { p.Sound = on })
		}
		return m, nil

	case key.Matches(msg, m.keys.Diagnostics):
		m.currentView = ViewDiagnostics
		return m, readLogCmd(m.logPath)

	case key.Matches(msg, m.keys.ClearFeed):
		m.feed = nil
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewDashboard
		return m, nil
	}

	return m, nil
}

func (m *Model) answerPrompt(granted bool) {
	m.prompt = false
	if err := m.center.Answer(granted); err != nil {
		m.logger.Warn("save notification permission failed", zap.Error(err))
	}
}

func (m Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Update(m.prefsPath, fn); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

func (m Model) handleFocus(focused bool) (tea.Model, tea.Cmd) {
	if m.focus != nil {
		m.focus.Set(focused)
	}
	if !m.suspendWhenHidden || len(m.vis.syncs) == 0 {
		return m, nil
	}
	m.vis.hidden.Store(!focused)
	return m, visibilityCmd(m.vis)
}

func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.center != nil {
		m.center.Expire(now, toastTTL)
		m.toasts = m.center.Toasts()
		m.prompt = m.center.PendingRequest()
	}
	if m.currentView == ViewDiagnostics {
		cmds = append(cmds, readLogCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) pushFeed(ev events.Event) {
	m.feed = append(m.feed, feedEntry{at: ev.At, name: ev.Name, text: describeEvent(ev)})
	if over := len(m.feed) - maxFeedEntries; over > 0 {
		m.feed = append(m.feed[:0], m.feed[over:]...)
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	defer m.unsubscribe()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}
