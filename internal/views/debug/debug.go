// Package debug provides a scrollable event log overlay for session
// transitions, capture errors and navigation.
package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/screencheck/screencheck/internal/theme"
)

const maxEntries = 200

// Event kinds.
const (
	KindState = "st"
	KindNav   = "nav"
	KindErr   = "err"
	KindProbe = "cap"
	KindFrame = "prv"
)

// Entry is a single event log line.
type Entry struct {
	Time    time.Time
	Kind    string
	Message string
}

// Model holds debug log state.
type Model struct {
	Entries []Entry
	Offset  int // scroll offset (from bottom)
	now     func() time.Time
}

// New creates an empty debug model.
func New() Model {
	return Model{now: time.Now}
}

// Add appends a log entry and caps the buffer.
func (m *Model) Add(kind, message string) {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	m.Entries = append(m.Entries, Entry{Time: now(), Kind: kind, Message: message})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	// Follow the tail on new entries.
	m.Offset = 0
}

// Addf is Add with formatting.
func (m *Model) Addf(kind, format string, args ...any) {
	m.Add(kind, fmt.Sprintf(format, args...))
}

// ScrollUp moves the viewport toward older entries.
func (m *Model) ScrollUp(n int) {
	m.Offset = min(m.Offset+n, max(len(m.Entries)-1, 0))
}

// ScrollDown moves the viewport toward the newest entry.
func (m *Model) ScrollDown(n int) {
	m.Offset = max(m.Offset-n, 0)
}

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
}

// View renders the log as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := max(width-4, 20)
	visible := max(height-6, 3)

	title := theme.StyleHeader.Render(" EVENT LOG ")
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))

	if len(m.Entries) == 0 {
		body := theme.StyleDimmed.Render("  No events recorded yet.")
		return panelStyle(innerW).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help))
	}

	end := max(len(m.Entries)-m.Offset, 0)
	start := max(end-visible, 0)

	lines := make([]string, 0, end-start)
	for _, e := range m.Entries[start:end] {
		ts := theme.StyleDimmed.Render(e.Time.Format("15:04:05.000"))
		kind := lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(4).Render(e.Kind)
		// Timestamp and kind take 18 cells of the padded panel.
		msg := ansi.Truncate(e.Message, innerW-22, "...")
		lines = append(lines, ts+" "+kind+" "+msg)
	}

	more := ""
	if m.Offset > 0 {
		more = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"), more, help)
	return panelStyle(innerW).Render(content)
}

func kindColor(kind string) lipgloss.Color {
	switch kind {
	case KindState:
		return theme.ColorAccent
	case KindErr:
		return theme.ColorDanger
	case KindNav:
		return theme.ColorRequesting
	case KindProbe:
		return theme.ColorWarning
	case KindFrame:
		return theme.ColorGranted
	default:
		return theme.ColorDimmed
	}
}
