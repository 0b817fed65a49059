package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// PickerOutcome is what the simulated permission picker answers.
type PickerOutcome string

const (
	PickerGrant       PickerOutcome = "grant"
	PickerCancel      PickerOutcome = "cancel"
	PickerDeny        PickerOutcome = "deny"
	PickerError       PickerOutcome = "error"
	PickerUnsupported PickerOutcome = "unsupported"
)

// ParsePickerOutcome validates a picker outcome name.
func ParsePickerOutcome(s string) (PickerOutcome, error) {
	switch o := PickerOutcome(strings.ToLower(strings.TrimSpace(s))); o {
	case PickerGrant, PickerCancel, PickerDeny, PickerError, PickerUnsupported:
		return o, nil
	case "":
		return PickerGrant, nil
	default:
		return "", fmt.Errorf("unknown picker outcome %q", s)
	}
}

// SimulatedConfig scripts the simulated provider.
type SimulatedConfig struct {
	Outcome     PickerOutcome
	PickerDelay time.Duration  // time the picker stays open
	EndAfter    time.Duration  // 0 = the share never ends by itself
	Surface     DisplaySurface // reported display surface
	Width       int
	Height      int
}

// DefaultSimulatedConfig grants a 1920x1080 monitor capture after a short
// picker delay.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		Outcome:     PickerGrant,
		PickerDelay: 800 * time.Millisecond,
		Surface:     SurfaceMonitor,
		Width:       1920,
		Height:      1080,
	}
}

// Simulated is a provider backed by a synthetic test pattern and a
// scripted picker.
type Simulated struct {
	cfg SimulatedConfig
	log *log.Logger
}

// NewSimulated creates a simulated provider.
func NewSimulated(cfg SimulatedConfig, logger *log.Logger) *Simulated {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Outcome == "" {
		cfg.Outcome = PickerGrant
	}
	return &Simulated{cfg: cfg, log: logger}
}

func (s *Simulated) Name() string { return "simulated" }

// Probe implements MediaDevices.
func (s *Simulated) Probe(ctx context.Context) Capability {
	c := Capability{Host: LookupHost(ctx)}
	if s.cfg.Outcome == PickerUnsupported {
		c.Reason = "screen capture is not available on this platform"
		return c
	}
	c.Supported = true
	return c
}

// GetDisplayMedia implements MediaDevices.
func (s *Simulated) GetDisplayMedia(ctx context.Context, options DisplayMediaOptions) (MediaStream, error) {
	if s.cfg.PickerDelay > 0 {
		timer := time.NewTimer(s.cfg.PickerDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch s.cfg.Outcome {
	case PickerCancel:
		return nil, NewCaptureError(NotAllowedError, OriginUser, "Permission denied by user")
	case PickerDeny:
		return nil, NewCaptureError(NotAllowedError, OriginSystem, "Permission denied by system")
	case PickerError:
		return nil, NewCaptureError(NotReadableError, OriginUnknown, "Could not start video source")
	case PickerUnsupported:
		return nil, NewCaptureError(NotSupportedError, OriginUnknown, "getDisplayMedia is not supported")
	}

	src := newPatternSource(s.cfg.Width, s.cfg.Height)
	settings := VideoTrackSettings{
		DisplaySurface: s.cfg.Surface,
		Width:          src.width,
		Height:         src.height,
		FrameRate:      frameRateOrDefault(options.Video.FrameRate),
	}
	label := fmt.Sprintf("test pattern (%dx%d)", src.width, src.height)
	track := newCaptureTrack(label, settings, options.Video.frameInterval(), src.next)
	if s.cfg.EndAfter > 0 {
		track.endAfter(s.cfg.EndAfter)
	}

	s.log.Info("simulated capture granted", "surface", settings.DisplaySurface, "width", settings.Width, "height", settings.Height, "end_after", s.cfg.EndAfter)
	return NewMediaStream(track), nil
}
