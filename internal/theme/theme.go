// Package theme provides the Lip Gloss color palette and reusable styles
// for the screencheck TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Session state colors.
var (
	ColorIdle       = lipgloss.Color("#9ca3af")
	ColorRequesting = lipgloss.Color("#7c3aed")
	ColorGranted    = lipgloss.Color("#16a34a")
	ColorCancelled  = lipgloss.Color("#d97706")
	ColorDenied     = lipgloss.Color("#dc2626")
	ColorEnded      = lipgloss.Color("#2563eb")
	ColorErrored    = lipgloss.Color("#b91c1c")
	ColorDefault    = lipgloss.Color("#9ca3af")
)

// Surface badge colors.
var (
	ColorMonitor = lipgloss.Color("#06b6d4")
	ColorWindow  = lipgloss.Color("#a855f7")
	ColorBrowser = lipgloss.Color("#4285f4")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorAccent  = lipgloss.Color("#3b82f6")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// StateColor returns the Lip Gloss color for a session state name.
func StateColor(state string) lipgloss.Color {
	switch state {
	case "idle":
		return ColorIdle
	case "requesting":
		return ColorRequesting
	case "granted":
		return ColorGranted
	case "cancelled":
		return ColorCancelled
	case "denied":
		return ColorDenied
	case "ended":
		return ColorEnded
	case "error":
		return ColorErrored
	default:
		return ColorDefault
	}
}

// StateGlyph returns a Unicode glyph representing a session state.
func StateGlyph(state string) string {
	switch state {
	case "idle":
		return "○"
	case "requesting":
		return "◌"
	case "granted":
		return "●"
	case "cancelled":
		return "↩"
	case "denied":
		return "⊘"
	case "ended":
		return "■"
	case "error":
		return "✗"
	default:
		return "·"
	}
}

// SurfaceBadge returns a colored badge for a display surface name.
func SurfaceBadge(surface string) string {
	switch surface {
	case "monitor":
		return lipgloss.NewStyle().Foreground(ColorMonitor).Render("[screen]")
	case "window":
		return lipgloss.NewStyle().Foreground(ColorWindow).Render("[window]")
	case "browser":
		return lipgloss.NewStyle().Foreground(ColorBrowser).Render("[tab]")
	default:
		return lipgloss.NewStyle().Foreground(ColorDefault).Render("[?]")
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleButton = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright).
			Background(ColorAccent).
			Padding(0, 2)

	StyleButtonDisabled = lipgloss.NewStyle().
				Foreground(ColorDimmed).
				Background(ColorBg).
				Padding(0, 2)

	StyleBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright).
			Background(ColorDanger).
			Padding(0, 1)
)
