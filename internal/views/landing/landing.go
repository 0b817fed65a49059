// Package landing renders the home route: intro, host details and the
// capture capability check.
package landing

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/screencheck/screencheck/internal/media"
	"github.com/screencheck/screencheck/internal/theme"
)

const intro = `# Screen Share Test

A terminal check of screen capture permissions, stream lifecycle
management and live preview.

Press **enter** to open the screen test. The provider asks for
permission, then shows what it captured until you stop sharing or the
source goes away.
`

// UnsupportedMessage is shown when the provider cannot capture at all.
const UnsupportedMessage = "Screen sharing is not supported here."

// Model holds the landing view state.
type Model struct {
	Width    int
	Provider string

	probed bool
	cap    media.Capability

	rendered string
}

// New creates a landing view for the named provider.
func New(provider string) Model {
	return Model{Provider: provider}
}

// SetCapability records the probe result.
func (m *Model) SetCapability(c media.Capability) {
	m.cap = c
	m.probed = true
}

// Probed reports whether the capability probe finished.
func (m Model) Probed() bool { return m.probed }

// CanStart reports whether the screen test may be opened. Until the probe
// answers the action stays enabled, matching a browser that has not yet
// been checked.
func (m Model) CanStart() bool {
	return !m.probed || m.cap.Supported
}

// Capability returns the last probe result.
func (m Model) Capability() media.Capability { return m.cap }

// SetWidth sets the page width and re-renders the intro for it.
func (m *Model) SetWidth(width int) {
	m.Width = width
	m.rendered = renderIntro(max(width, 40) - 4)
}

// View renders the landing page.
func (m Model) View() string {
	intro := m.rendered
	if intro == "" {
		intro = renderIntro(max(m.Width, 40) - 4)
	}

	sections := []string{intro}

	if m.probed {
		host := theme.StyleDimmed.Render("host: ") + m.cap.Host.String()
		provider := theme.StyleDimmed.Render("provider: ") + m.Provider
		sections = append(sections, "  "+provider, "  "+host, "")
	} else {
		sections = append(sections, theme.StyleDimmed.Render("  checking capture support…"), "")
	}

	if m.probed && !m.cap.Supported {
		msg := UnsupportedMessage
		if m.cap.Reason != "" {
			msg += " " + m.cap.Reason
		}
		sections = append(sections, "  "+theme.StyleBanner.Render("! "+msg), "")
	}

	if m.CanStart() {
		sections = append(sections, "  "+theme.StyleButton.Render("Start Screen Test"))
	} else {
		sections = append(sections, "  "+theme.StyleButtonDisabled.Render("Start Screen Test"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderIntro renders the markdown intro wrapped at wrap columns.
func renderIntro(wrap int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return intro
	}
	out, err := r.Render(intro)
	if err != nil {
		return intro
	}
	return strings.TrimRight(out, "\n")
}
