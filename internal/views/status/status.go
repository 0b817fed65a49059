package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/screencheck/screencheck/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Provider   string
	Route      string
	State      string
	Generation uint64
	Host       string
	Width      int
}

// New creates a status bar model for the named provider.
func New(provider string) Model {
	return Model{Provider: provider, Route: "home", State: "idle"}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	stateStr := lipgloss.NewStyle().
		Foreground(theme.StateColor(m.State)).
		Render(theme.StateGlyph(m.State) + " " + m.State)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := theme.StyleHeader.Render("screencheck") + sep +
		m.Provider + sep +
		m.Route + sep +
		stateStr
	if m.Generation > 0 {
		content += sep + theme.StyleDimmed.Render(fmt.Sprintf("request #%d", m.Generation))
	}
	if m.Host != "" {
		content += sep + theme.StyleDimmed.Render(m.Host)
	}

	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)

	return bar
}
