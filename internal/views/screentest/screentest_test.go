package screentest

import (
	"strings"
	"testing"

	"github.com/screencheck/screencheck/internal/media"
	"github.com/screencheck/screencheck/internal/preview"
	"github.com/screencheck/screencheck/internal/screenshare"
)

func TestViewPerState(t *testing.T) {
	granted := &screenshare.Metadata{DisplaySurface: media.SurfaceMonitor, Width: 1920, Height: 1080}

	tests := []struct {
		state   screenshare.State
		meta    *screenshare.Metadata
		want    []string
		notWant []string
	}{
		{screenshare.Idle, nil, []string{IdleMessage, LabelStart}, []string{LabelStop}},
		{screenshare.Requesting, nil, []string{RequestingMessage, LabelRequesting}, []string{LabelStart}},
		{screenshare.Cancelled, nil, []string{CancelledMessage, LabelTryAgain}, nil},
		{screenshare.Denied, nil, []string{DeniedMessage, DeniedHint, LabelRetry}, nil},
		{screenshare.Error, nil, []string{ErrorMessage, LabelRetryError}, nil},
		{screenshare.Granted, granted, []string{ActiveTitle, "Monitor", "1920x1080", LabelStop, "no source"}, []string{LabelStart}},
		{screenshare.Ended, nil, []string{EndedTitle, EndedMessage, LabelRetryTest, LabelHome}, []string{LabelStop}},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			m := New()
			m.SetSnapshot(screenshare.Snapshot{State: tt.state, Metadata: tt.meta})
			v := m.View(preview.New())
			for _, s := range tt.want {
				if !strings.Contains(v, s) {
					t.Errorf("view missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(v, s) {
					t.Errorf("view should not contain %q", s)
				}
			}
		})
	}
}

func TestGrantedWithoutResolution(t *testing.T) {
	m := New()
	m.SetSnapshot(screenshare.Snapshot{
		State:    screenshare.Granted,
		Metadata: &screenshare.Metadata{DisplaySurface: media.SurfaceUnknown},
	})
	v := m.View(preview.New())
	if !strings.Contains(v, "Unknown") {
		t.Error("unknown surface should render as Unknown")
	}
	if strings.Contains(v, "Resolution") {
		t.Error("resolution should be omitted when not reported")
	}
}

func TestGrantedSurfaceBadge(t *testing.T) {
	tests := []struct {
		surface media.DisplaySurface
		badge   string
	}{
		{media.SurfaceMonitor, "[screen]"},
		{media.SurfaceWindow, "[window]"},
		{media.SurfaceBrowser, "[tab]"},
		{media.SurfaceUnknown, "[?]"},
	}
	for _, tt := range tests {
		t.Run(tt.surface.String(), func(t *testing.T) {
			m := New()
			m.SetSnapshot(screenshare.Snapshot{
				State:    screenshare.Granted,
				Metadata: &screenshare.Metadata{DisplaySurface: tt.surface, Width: 1280, Height: 720},
			})
			if v := m.View(preview.New()); !strings.Contains(v, tt.badge) {
				t.Errorf("granted view missing badge %q", tt.badge)
			}
		})
	}
}

func TestSurfaceName(t *testing.T) {
	tests := map[string]string{
		"monitor": "Monitor",
		"window":  "Window",
		"":        "Unknown",
	}
	for in, want := range tests {
		if got := SurfaceName(in); got != want {
			t.Errorf("SurfaceName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetSnapshotAnimations(t *testing.T) {
	m := New()
	if cmd := m.SetSnapshot(screenshare.Snapshot{State: screenshare.Requesting}); cmd == nil {
		t.Error("requesting should start the spinner")
	}
	if cmd := m.SetSnapshot(screenshare.Snapshot{State: screenshare.Requesting}); cmd != nil {
		t.Error("same state should not restart animations")
	}
	if cmd := m.SetSnapshot(screenshare.Snapshot{State: screenshare.Granted}); cmd == nil {
		t.Error("granted should start the live indicator")
	}
	if !m.pulse.active {
		t.Fatal("pulse should be active while granted")
	}
	m.SetSnapshot(screenshare.Snapshot{State: screenshare.Ended})
	if m.pulse.active {
		t.Error("pulse should stop when sharing ends")
	}
}

func TestPulseIgnoresOldChains(t *testing.T) {
	p := newPulse()
	p.start()
	old := PulseMsg{tag: p.tag}
	p.start()
	if p.update(old) != nil {
		t.Error("tick from a superseded chain should not re-arm")
	}
	if p.update(PulseMsg{tag: p.tag}) == nil {
		t.Error("current chain should re-arm")
	}
	if p.pos == 0 {
		t.Error("spring should move toward its target")
	}
}
