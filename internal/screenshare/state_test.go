package screenshare

import (
	"encoding/json"
	"testing"

	"github.com/screencheck/screencheck/internal/media"
)

func TestStateText(t *testing.T) {
	tests := []struct {
		state State
		text  string
	}{
		{Idle, "idle"},
		{Requesting, "requesting"},
		{Granted, "granted"},
		{Cancelled, "cancelled"},
		{Denied, "denied"},
		{Ended, "ended"},
		{Error, "error"},
	}
	for _, tt := range tests {
		if tt.state.String() != tt.text {
			t.Errorf("String() = %q, want %q", tt.state.String(), tt.text)
		}
		var back State
		if err := back.UnmarshalText([]byte(tt.text)); err != nil || back != tt.state {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", tt.text, back, err, tt.state)
		}
	}

	if State(99).String() != "unknown" {
		t.Errorf("State(99).String() = %q, want unknown", State(99).String())
	}
	var s State
	if err := s.UnmarshalText([]byte("paused")); err == nil {
		t.Error("UnmarshalText(paused) should fail")
	}
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(map[string]State{"state": Granted})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `{"state":"granted"}` {
		t.Errorf("Marshal = %s", data)
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		terminal bool
	}{
		{Idle, false},
		{Requesting, false},
		{Granted, false},
		{Cancelled, true},
		{Denied, true},
		{Ended, true},
		{Error, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("%v.IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestMetadataResolution(t *testing.T) {
	if got := (Metadata{Width: 1920, Height: 1080}).Resolution(); got != "1920x1080" {
		t.Errorf("Resolution() = %q, want 1920x1080", got)
	}
	if got := (Metadata{DisplaySurface: media.SurfaceWindow}).Resolution(); got != "" {
		t.Errorf("Resolution() without size = %q, want empty", got)
	}
}
