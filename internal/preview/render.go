package preview

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/screencheck/screencheck/internal/theme"
)

const halfBlock = "▀"

// View renders the current frame, or a placeholder sized to the grid.
func (s *Surface) View() string {
	switch {
	case s.cur == nil:
		return s.placeholder("no source")
	case s.err != nil:
		return s.placeholder("source stopped")
	case s.img == nil:
		return s.placeholder("waiting for first frame…")
	}
	return lipgloss.PlaceHorizontal(s.cols, lipgloss.Center, Render(s.img))
}

// Caption is the frame counter line shown under the picture.
func (s *Surface) Caption() string {
	if s.img == nil {
		return ""
	}
	b := s.img.Bounds()
	return theme.StyleDimmed.Render(fmt.Sprintf("frame %d  %.1f fps  %dx%d px", s.seq, s.fps, b.Dx(), b.Dy()))
}

func (s *Surface) placeholder(text string) string {
	return lipgloss.NewStyle().
		Width(s.cols).
		Height(s.rows).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorDimmed).
		Render(text)
}

// Render draws img with one cell per column and two pixel rows per line.
// An odd last row is drawn against the terminal background.
func Render(img *image.RGBA) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hex(img, x, y))
			if y+1 < b.Max.Y {
				style = style.Background(hex(img, x, y+1))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

func hex(img *image.RGBA, x, y int) lipgloss.Color {
	c := img.RGBAAt(x, y)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
