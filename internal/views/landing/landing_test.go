package landing

import (
	"strings"
	"testing"

	"github.com/screencheck/screencheck/internal/media"
)

func TestCanStart(t *testing.T) {
	tests := []struct {
		name   string
		probed bool
		cap    media.Capability
		want   bool
	}{
		{"before probe", false, media.Capability{}, true},
		{"supported", true, media.Capability{Supported: true}, true},
		{"unsupported", true, media.Capability{Reason: "no display"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("desktop")
			if tt.probed {
				m.SetCapability(tt.cap)
			}
			if m.Probed() != tt.probed {
				t.Errorf("Probed() = %v, want %v", m.Probed(), tt.probed)
			}
			if got := m.Capability(); got != tt.cap {
				t.Errorf("Capability() = %+v, want %+v", got, tt.cap)
			}
			if got := m.CanStart(); got != tt.want {
				t.Errorf("CanStart() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewUnsupported(t *testing.T) {
	m := New("desktop")
	m.SetWidth(90)
	m.SetCapability(media.Capability{
		Reason: "no graphical session",
		Host:   media.HostInfo{OS: "linux", Arch: "amd64"},
	})

	v := m.View()
	for _, want := range []string{UnsupportedMessage, "no graphical session", "linux / amd64", "desktop", "Start Screen Test"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewBeforeProbe(t *testing.T) {
	m := New("simulated")
	v := m.View()
	if !strings.Contains(v, "checking capture support") {
		t.Error("view should say the probe is running")
	}
	if strings.Contains(v, UnsupportedMessage) {
		t.Error("no banner before the probe answers")
	}
}
