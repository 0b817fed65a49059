// Package screentest renders the screen test route: one layout per
// session state plus the live preview while sharing.
package screentest

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/screencheck/screencheck/internal/preview"
	"github.com/screencheck/screencheck/internal/screenshare"
	"github.com/screencheck/screencheck/internal/theme"
)

// User-facing copy, one block per state.
const (
	IdleMessage       = "Press enter to start sharing your screen. A permission picker will appear."
	RequestingMessage = "Waiting for permission... Please select a screen to share."
	CancelledMessage  = "You cancelled the screen picker."
	DeniedMessage     = "Permission to share screen was denied."
	DeniedHint        = "Please check your system or desktop settings and make sure screen recording permissions are enabled."
	ErrorMessage      = "An unknown error occurred while trying to share the screen."
	ActiveTitle       = "Screen Stream Active"
	EndedTitle        = "Screen sharing stopped"
	EndedMessage      = "The screen capture session has ended."
)

// Button labels.
const (
	LabelStart      = "Start Screen Share"
	LabelRequesting = "Requesting..."
	LabelTryAgain   = "Try Again"
	LabelRetry      = "Retry Request"
	LabelRetryError = "Retry"
	LabelStop       = "Stop Sharing"
	LabelRetryTest  = "Retry Screen Test"
	LabelHome       = "Back to Home"
)

// Model holds the screen test view state.
type Model struct {
	Width int

	snap    screenshare.Snapshot
	spinner spinner.Model
	pulse   pulse
}

// New creates a screen test view in the idle state.
func New() Model {
	return Model{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.ColorRequesting)),
		),
		pulse: newPulse(),
	}
}

// State returns the session state the view is showing.
func (m Model) State() screenshare.State { return m.snap.State }

// SetSnapshot switches the view to snap and returns any animation command
// the new state needs.
func (m *Model) SetSnapshot(snap screenshare.Snapshot) tea.Cmd {
	prev := m.snap.State
	m.snap = snap
	if snap.State == prev {
		return nil
	}

	var cmds []tea.Cmd
	if snap.State == screenshare.Requesting {
		cmds = append(cmds, m.spinner.Tick)
	}
	if snap.State == screenshare.Granted {
		cmds = append(cmds, m.pulse.start())
	} else if prev == screenshare.Granted {
		m.pulse.stop()
	}
	return tea.Batch(cmds...)
}

// Update advances the spinner and the live indicator.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.snap.State != screenshare.Requesting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case PulseMsg:
		return m, m.pulse.update(msg)
	}
	return m, nil
}

// View renders the current state. The preview surface is only drawn while
// sharing.
func (m Model) View(p *preview.Surface) string {
	var lines []string
	switch m.snap.State {
	case screenshare.Idle:
		lines = []string{
			glyph(screenshare.Idle),
			IdleMessage,
			"",
			button("enter", LabelStart, true),
		}

	case screenshare.Requesting:
		lines = []string{
			m.spinner.View() + " " + lipgloss.NewStyle().Foreground(theme.ColorRequesting).Render(RequestingMessage),
			"",
			button("", LabelRequesting, false),
		}

	case screenshare.Cancelled:
		lines = []string{
			glyph(screenshare.Cancelled),
			CancelledMessage,
			"",
			button("enter", LabelTryAgain, true),
		}

	case screenshare.Denied:
		lines = []string{
			glyph(screenshare.Denied),
			lipgloss.NewStyle().Bold(true).Foreground(theme.ColorDenied).Render(DeniedMessage),
			theme.StyleDimmed.Render(DeniedHint),
			"",
			button("enter", LabelRetry, true),
		}

	case screenshare.Error:
		lines = []string{
			glyph(screenshare.Error),
			lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(ErrorMessage),
			"",
			button("enter", LabelRetryError, true),
		}

	case screenshare.Granted:
		return m.viewGranted(p)

	case screenshare.Ended:
		lines = []string{
			glyph(screenshare.Ended),
			theme.StyleHeader.Render(EndedTitle),
			theme.StyleDimmed.Render(EndedMessage),
			"",
			button("enter", LabelRetryTest, true) + "  " + button("h", LabelHome, true),
		}
	}

	for i, l := range lines {
		lines[i] = "  " + l
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewGranted(p *preview.Surface) string {
	title := m.pulse.view() + " " + lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGranted).Render(ActiveTitle)

	var details string
	if md := m.snap.Metadata; md != nil {
		surface := md.DisplaySurface.String()
		parts := []string{"Type: " + theme.StyleHeader.Render(SurfaceName(surface)) + " " + theme.SurfaceBadge(surface)}
		if res := md.Resolution(); res != "" {
			parts = append(parts, "Resolution: "+theme.StyleHeader.Render(res))
		}
		if md.FrameRate > 0 {
			parts = append(parts, fmt.Sprintf("Rate: %s", theme.StyleHeader.Render(fmt.Sprintf("%.0f fps", md.FrameRate))))
		}
		details = theme.StyleDimmed.Render(strings.Join(parts, "   "))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, title, details),
		"    ",
		button("s", LabelStop, true),
	)

	cols, _ := p.Size()
	frame := theme.StyleBorder.Width(cols).Render(p.View())

	sections := []string{header, frame}
	if c := p.Caption(); c != "" {
		sections = append(sections, c)
	}
	for i, s := range sections {
		sections[i] = lipgloss.NewStyle().MarginLeft(2).Render(s)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SurfaceName capitalises a display surface name for display.
func SurfaceName(s string) string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func glyph(s screenshare.State) string {
	name := s.String()
	return lipgloss.NewStyle().Foreground(theme.StateColor(name)).Render(theme.StateGlyph(name))
}

func button(keyName, label string, enabled bool) string {
	if !enabled {
		return theme.StyleButtonDisabled.Render(label)
	}
	btn := theme.StyleButton.Render(label)
	if keyName == "" {
		return btn
	}
	return theme.StyleDimmed.Render(keyName) + " " + btn
}
