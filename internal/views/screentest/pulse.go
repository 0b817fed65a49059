package screentest

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/screencheck/screencheck/internal/theme"
)

const pulseFPS = 30

// PulseMsg advances the live indicator animation.
type PulseMsg struct{ tag int }

// pulse drives the "stream active" dot with a spring that bounces between
// dim and bright.
type pulse struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
	active bool
	tag    int
}

func newPulse() pulse {
	return pulse{
		spring: harmonica.NewSpring(harmonica.FPS(pulseFPS), 4.0, 0.35),
		target: 1,
	}
}

// start begins a new tick chain. Older chains stop at their next tick.
func (p *pulse) start() tea.Cmd {
	p.active = true
	p.tag++
	return p.tick()
}

func (p *pulse) stop() {
	p.active = false
	p.tag++
	p.pos, p.vel, p.target = 0, 0, 1
}

func (p *pulse) tick() tea.Cmd {
	tag := p.tag
	return tea.Tick(time.Second/pulseFPS, func(time.Time) tea.Msg {
		return PulseMsg{tag: tag}
	})
}

func (p *pulse) update(msg PulseMsg) tea.Cmd {
	if !p.active || msg.tag != p.tag {
		return nil
	}
	p.pos, p.vel = p.spring.Update(p.pos, p.vel, p.target)
	if math.Abs(p.pos-p.target) < 0.05 && math.Abs(p.vel) < 0.5 {
		p.target = 1 - p.target
	}
	return p.tick()
}

func (p pulse) view() string {
	c := theme.ColorGranted
	switch {
	case p.pos > 0.66:
		c = theme.ColorHealthy
	case p.pos < 0.33:
		c = theme.ColorDimmed
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}
