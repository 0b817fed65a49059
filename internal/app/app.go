package app

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/screencheck/screencheck/internal/media"
	"github.com/screencheck/screencheck/internal/preview"
	"github.com/screencheck/screencheck/internal/screenshare"
	"github.com/screencheck/screencheck/internal/theme"
	"github.com/screencheck/screencheck/internal/views/debug"
	"github.com/screencheck/screencheck/internal/views/landing"
	"github.com/screencheck/screencheck/internal/views/screentest"
	"github.com/screencheck/screencheck/internal/views/status"
)

// Route identifies the active page.
type Route int

const (
	RouteHome Route = iota
	RouteScreenTest
)

func (r Route) String() string {
	if r == RouteScreenTest {
		return "screen-test"
	}
	return "home"
}

// Bubble Tea messages.
type (
	probeMsg struct{ cap media.Capability }

	// captureResultMsg carries a finished capture request back to the loop.
	// The session is carried along so a result for a session that was
	// already left can still be applied, which releases its stream.
	captureResultMsg struct {
		session *screenshare.Session
		outcome screenshare.Outcome
	}

	// sessionChangedMsg reports a transition that happened off the loop,
	// such as the capture source going away.
	sessionChangedMsg struct{ session *screenshare.Session }
)

// Option configures the root model.
type Option func(*Model)

// WithLogger sets the logger used by the model and the components it
// creates.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithFrameRate sets the ideal capture frame rate for every session.
func WithFrameRate(fps float64) Option {
	return func(m *Model) { m.frameRate = fps }
}

// WithMaxPreviewFPS caps the preview refresh rate.
func WithMaxPreviewFPS(fps float64) Option {
	return func(m *Model) { m.maxPreviewFPS = fps }
}

// visit is the state owned by one stay on the screen test route.
type visit struct {
	session *screenshare.Session
	changed chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// Model is the root Bubble Tea model.
type Model struct {
	devices media.MediaDevices
	ctx     context.Context
	cancel  context.CancelFunc
	log     *log.Logger

	frameRate     float64
	maxPreviewFPS float64

	keys   KeyMap
	help   help.Model
	width  int
	height int

	route     Route
	showDebug bool
	visit     *visit
	lastState screenshare.State

	// Sub-views.
	preview   *preview.Surface
	statusBar status.Model
	landing   landing.Model
	screen    screentest.Model
	debug     debug.Model
}

// New creates the root model capturing through devices.
func New(devices media.MediaDevices, opts ...Option) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		devices: devices,
		ctx:     ctx,
		cancel:  cancel,
		log:     log.New(io.Discard),
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
	for _, o := range opts {
		o(&m)
	}
	m.preview = preview.New(
		preview.WithLogger(m.log.WithPrefix("preview")),
		preview.WithMaxFPS(m.maxPreviewFPS),
	)
	m.statusBar = status.New(devices.Name())
	m.landing = landing.New(devices.Name())
	m.screen = screentest.New()
	m.debug = debug.New()
	m.updateKeys()
	return m
}

// Init runs the capability probe.
func (m Model) Init() tea.Cmd {
	devices, ctx := m.devices, m.ctx
	return func() tea.Msg {
		return probeMsg{cap: devices.Probe(ctx)}
	}
}

// Route returns the active page.
func (m Model) Route() Route { return m.route }

// Session returns the session of the current screen test visit, or nil.
func (m Model) Session() *screenshare.Session {
	if m.visit == nil {
		return nil
	}
	return m.visit.session
}

// Keys returns the key bindings with their current enabled state.
func (m Model) Keys() KeyMap { return m.keys }

// Close releases everything the model holds. Call it on the final model
// after the program exits. Safe to call more than once.
func (m *Model) Close() {
	m.leave()
	m.cancel()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.landing.SetWidth(msg.Width)
		m.screen.Width = msg.Width
		m.help.Width = msg.Width
		m.preview.Resize(previewSize(msg.Width, msg.Height))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case probeMsg:
		m.landing.SetCapability(msg.cap)
		m.statusBar.Host = msg.cap.Host.String()
		if msg.cap.Supported {
			m.debug.Addf(debug.KindProbe, "%s: capture supported", m.devices.Name())
		} else {
			m.debug.Addf(debug.KindProbe, "%s: capture unsupported: %s", m.devices.Name(), msg.cap.Reason)
		}
		m.log.Info("capability probe", "provider", m.devices.Name(), "supported", msg.cap.Supported, "reason", msg.cap.Reason, "host", msg.cap.Host.String())
		m.updateKeys()
		return m, nil

	case captureResultMsg:
		if !msg.session.Apply(msg.outcome) {
			return m, nil
		}
		if err := msg.outcome.Err; err != nil {
			m.debug.Add(debug.KindErr, err.Error())
		}
		if m.visit == nil || msg.session != m.visit.session {
			return m, nil
		}
		return m, m.sync()

	case sessionChangedMsg:
		if m.visit == nil || msg.session != m.visit.session {
			return m, nil
		}
		return m, tea.Batch(m.sync(), m.waitChange())

	case preview.FrameMsg:
		return m, m.preview.Apply(msg)
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.leave()
		m.cancel()
		return m, tea.Quit
	}

	if m.showDebug {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.showDebug = false
		case key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
		m.updateKeys()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Debug):
		m.showDebug = true
		m.updateKeys()
		return m, nil

	case key.Matches(msg, m.keys.Start):
		if m.route == RouteHome {
			return m, m.enter()
		}
		return m, m.start()

	case key.Matches(msg, m.keys.Stop):
		m.visit.session.Stop()
		return m, m.sync()

	case key.Matches(msg, m.keys.Back):
		m.leave()
		m.route = RouteHome
		m.statusBar.Route = m.route.String()
		m.statusBar.Generation = 0
		m.statusBar.State = screenshare.Idle.String()
		m.debug.Add(debug.KindNav, "-> home")
		m.updateKeys()
		return m, nil
	}

	return m, nil
}

// enter opens the screen test route with a fresh session.
func (m *Model) enter() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	v := &visit{
		session: screenshare.New(m.devices,
			screenshare.WithLogger(m.log.WithPrefix("session")),
			screenshare.WithFrameRate(m.frameRate),
		),
		changed: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	v.session.OnChange(func(screenshare.Snapshot) {
		select {
		case v.changed <- struct{}{}:
		default:
		}
	})

	m.visit = v
	m.route = RouteScreenTest
	m.lastState = screenshare.Idle
	m.screen = screentest.New()
	m.screen.Width = m.width
	m.statusBar.Route = m.route.String()
	m.debug.Add(debug.KindNav, "-> screen-test")
	return tea.Batch(m.sync(), m.waitChange())
}

// leave tears down the current visit: the preview lets go of the track
// first, then the session releases the stream.
func (m *Model) leave() {
	if m.visit == nil {
		return
	}
	m.preview.Unbind()
	m.visit.session.Dispose()
	m.visit.cancel()
	m.visit = nil
}

// start begins a capture request and runs it off the loop.
func (m *Model) start() tea.Cmd {
	v := m.visit
	ticket := v.session.Begin()
	acquire := func() tea.Msg {
		return captureResultMsg{session: v.session, outcome: v.session.Acquire(v.ctx, ticket)}
	}
	return tea.Batch(m.sync(), acquire)
}

// waitChange waits for the next transition of the current session.
func (m Model) waitChange() tea.Cmd {
	v := m.visit
	if v == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-v.ctx.Done():
			return nil
		case <-v.changed:
			return sessionChangedMsg{session: v.session}
		}
	}
}

// sync pulls the session snapshot into the views and binds or unbinds the
// preview to match it.
func (m *Model) sync() tea.Cmd {
	if m.visit == nil {
		return nil
	}
	snap := m.visit.session.Snapshot()

	if snap.State != m.lastState {
		m.debug.Addf(debug.KindState, "%s -> %s (request #%d)", m.lastState, snap.State, snap.Generation)
		m.lastState = snap.State
	}
	m.statusBar.State = snap.State.String()
	m.statusBar.Generation = snap.Generation

	cmds := []tea.Cmd{m.screen.SetSnapshot(snap)}

	if track := snap.VideoTrack(); snap.State == screenshare.Granted && track != nil {
		before := m.preview.Binding()
		if id := m.preview.Bind(track); id != before {
			m.debug.Addf(debug.KindFrame, "preview bound to %s", track.Label())
			cmds = append(cmds, m.preview.Next())
		}
	} else if m.preview.Bound() {
		m.preview.Unbind()
		m.debug.Add(debug.KindFrame, "preview unbound")
	}

	m.updateKeys()
	return tea.Batch(cmds...)
}

// updateKeys enables exactly the actions the current page and state offer.
func (m *Model) updateKeys() {
	k := &m.keys
	k.Up.SetEnabled(m.showDebug)
	k.Down.SetEnabled(m.showDebug)
	k.Escape.SetEnabled(m.showDebug)
	k.Debug.SetEnabled(!m.showDebug)

	if m.showDebug {
		k.Start.SetEnabled(false)
		k.Stop.SetEnabled(false)
		k.Back.SetEnabled(false)
		return
	}

	if m.route == RouteHome || m.visit == nil {
		k.Start.SetEnabled(m.landing.CanStart())
		k.Start.SetHelp("enter", "start screen test")
		k.Stop.SetEnabled(false)
		k.Back.SetEnabled(false)
		return
	}

	state := m.visit.session.State()
	k.Back.SetEnabled(true)
	k.Stop.SetEnabled(state == screenshare.Granted)
	k.Start.SetEnabled(state != screenshare.Requesting && state != screenshare.Granted)
	switch state {
	case screenshare.Idle:
		k.Start.SetHelp("enter", "start sharing")
	case screenshare.Ended:
		k.Start.SetHelp("enter", "retry screen test")
	default:
		k.Start.SetHelp("enter", "retry")
	}
}

// previewSize fits the preview pane under the status bar, the granted
// header and the help line.
func previewSize(width, height int) (cols, rows int) {
	return max(width-6, 8), max(height-12, 4)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch {
	case m.showDebug:
		body = m.debug.View(m.width, m.height-4)
	case m.route == RouteScreenTest:
		body = m.screen.View(m.preview)
	default:
		body = m.landing.View()
	}

	sections := []string{
		m.statusBar.View(),
		"",
		body,
		"",
		theme.StyleDimmed.Render("  ") + m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
