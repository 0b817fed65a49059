// Package media provides browser-style screen capture primitives in Go:
// a MediaDevices provider with GetDisplayMedia, MediaStream, and VideoTrack
// with settings, pull-based frames and an ended event.
//
// Two providers are included. Desktop grabs a real display; Simulated
// renders a synthetic test pattern behind a scripted permission picker,
// which is useful on headless machines and in tests.
package media

import (
	"context"
	"image"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"
)

// DisplaySurface describes what a display capture is showing.
type DisplaySurface string

const (
	SurfaceUnknown DisplaySurface = ""
	SurfaceMonitor DisplaySurface = "monitor"
	SurfaceWindow  DisplaySurface = "window"
	SurfaceBrowser DisplaySurface = "browser"
)

func (s DisplaySurface) String() string {
	if s == SurfaceUnknown {
		return "unknown"
	}
	return string(s)
}

// ParseDisplaySurface maps a config or settings string onto a surface kind.
// Unrecognised values map to SurfaceUnknown.
func ParseDisplaySurface(s string) DisplaySurface {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monitor", "screen":
		return SurfaceMonitor
	case "window", "application":
		return SurfaceWindow
	case "browser", "tab":
		return SurfaceBrowser
	default:
		return SurfaceUnknown
	}
}

// DisplayMediaOptions configures GetDisplayMedia.
type DisplayMediaOptions struct {
	Video DisplayVideoOptions
	Audio bool // No provider captures audio; the flag is accepted and ignored.
}

// DisplayVideoOptions configures display capture video.
type DisplayVideoOptions struct {
	FrameRate float64 // Ideal frame rate, best effort. 0 = provider default.
}

// DefaultFrameRate is the ideal capture rate requested when none is set.
const DefaultFrameRate = 30

// DefaultDisplayMediaOptions requests video at the default ideal frame rate
// and no audio.
func DefaultDisplayMediaOptions() DisplayMediaOptions {
	return DisplayMediaOptions{
		Video: DisplayVideoOptions{FrameRate: DefaultFrameRate},
		Audio: false,
	}
}

func (o DisplayVideoOptions) frameInterval() time.Duration {
	fps := o.FrameRate
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return time.Duration(float64(time.Second) / fps)
}

// TrackState represents the state of a track.
type TrackState int

const (
	TrackStateLive  TrackState = iota // Track is producing frames
	TrackStateEnded                   // Track has ended and will not produce again
)

func (s TrackState) String() string {
	switch s {
	case TrackStateLive:
		return "live"
	case TrackStateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// VideoTrackSettings describes the actual settings of a running capture.
// Zero Width/Height mean the provider could not report them.
type VideoTrackSettings struct {
	DisplaySurface DisplaySurface
	Width          int
	Height         int
	FrameRate      float64
}

// Frame is a single captured video frame.
type Frame struct {
	Image     *image.RGBA
	Seq       uint64
	Timestamp time.Duration // since the track started
}

// VideoTrack is a single display capture track.
type VideoTrack interface {
	// ID returns the unique identifier for this track.
	ID() string

	// Kind returns the track kind. Display capture tracks report
	// webrtc.RTPCodecTypeVideo; anything else is skipped by consumers.
	Kind() webrtc.RTPCodecType

	// Label returns a human-readable label for the capture source.
	Label() string

	// State returns the current track state.
	State() TrackState

	// Settings returns the actual capture settings.
	Settings() VideoTrackSettings

	// ReadFrame blocks until the next frame is due and returns it. The
	// frame is only valid until the next ReadFrame call. Returns an error
	// wrapping ErrTrackEnded once the track has ended.
	ReadFrame(ctx context.Context) (*Frame, error)

	// OnEnded sets the callback fired when the track ends by itself (the
	// capture source went away). Stop never fires it. Passing nil detaches.
	OnEnded(callback func())

	// Stop ends the track and releases the capture source. Idempotent.
	Stop()
}

// MediaStream is a collection of capture tracks.
type MediaStream interface {
	// ID returns the unique identifier for this stream.
	ID() string

	// Active reports whether any track is still live.
	Active() bool

	// GetVideoTracks returns the stream's video tracks.
	GetVideoTracks() []VideoTrack

	// Close stops every track.
	Close() error
}

// PrimaryVideoTrack returns the first track of s whose kind is video, or
// nil when there is none.
func PrimaryVideoTrack(s MediaStream) VideoTrack {
	if s == nil {
		return nil
	}
	for _, t := range s.GetVideoTracks() {
		if t.Kind() == webrtc.RTPCodecTypeVideo {
			return t
		}
	}
	return nil
}

// Capability is the result of probing a provider for screen capture.
type Capability struct {
	Supported bool
	Reason    string // why capture is unavailable; empty when supported
	Host      HostInfo
}

// MediaDevices is a screen capture provider (like navigator.mediaDevices).
type MediaDevices interface {
	// Name identifies the provider in logs and the status bar.
	Name() string

	// Probe reports whether the provider can capture at all.
	Probe(ctx context.Context) Capability

	// GetDisplayMedia asks for permission and returns a MediaStream with a
	// display capture video track. Failures are *CaptureError values or
	// the context's error.
	GetDisplayMedia(ctx context.Context, options DisplayMediaOptions) (MediaStream, error)
}
