package screenshare

import (
	"fmt"

	"github.com/screencheck/screencheck/internal/media"
)

// State is the screen share session state. Exactly one is active.
type State int

const (
	Idle State = iota
	Requesting
	Granted
	Cancelled
	Denied
	Ended
	Error
)

var stateNames = map[State]string{
	Idle:       "idle",
	Requesting: "requesting",
	Granted:    "granted",
	Cancelled:  "cancelled",
	Denied:     "denied",
	Ended:      "ended",
	Error:      "error",
}

var stateFromName = map[string]State{
	"idle":       Idle,
	"requesting": Requesting,
	"granted":    Granted,
	"cancelled":  Cancelled,
	"denied":     Denied,
	"ended":      Ended,
	"error":      Error,
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(data []byte) error {
	v, ok := stateFromName[string(data)]
	if !ok {
		return fmt.Errorf("unknown screen share state %q", data)
	}
	*s = v
	return nil
}

// IsTerminal reports whether the state is a dead end that only an explicit
// retry leaves.
func (s State) IsTerminal() bool {
	return s == Cancelled || s == Denied || s == Ended || s == Error
}

// Metadata is the capture description taken once per successful grant.
// Width and Height are zero when the provider could not report them.
type Metadata struct {
	DisplaySurface media.DisplaySurface
	Width          int
	Height         int
	FrameRate      float64
	Label          string
}

// Resolution formats the capture size, or returns "" when unknown.
func (m Metadata) Resolution() string {
	if m.Width <= 0 || m.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

func metadataFrom(track media.VideoTrack) Metadata {
	st := track.Settings()
	return Metadata{
		DisplaySurface: st.DisplaySurface,
		Width:          st.Width,
		Height:         st.Height,
		FrameRate:      st.FrameRate,
		Label:          track.Label(),
	}
}
