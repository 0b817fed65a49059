package media

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/charmbracelet/log"
	"github.com/kbinani/screenshot"
)

// Desktop captures a physical display. There is no picker: a request is
// granted as soon as the first grab succeeds.
type Desktop struct {
	display int
	log     *log.Logger
}

// NewDesktop creates a provider capturing the given display index.
func NewDesktop(display int, logger *log.Logger) *Desktop {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Desktop{display: display, log: logger}
}

func (d *Desktop) Name() string { return "desktop" }

// Probe implements MediaDevices.
func (d *Desktop) Probe(ctx context.Context) Capability {
	c := Capability{Host: LookupHost(ctx)}

	if !hasGraphicalSession() {
		c.Reason = "no graphical session: DISPLAY and WAYLAND_DISPLAY are unset"
		return c
	}
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		c.Reason = "no active displays reported"
		return c
	}
	if d.display >= n {
		c.Reason = fmt.Sprintf("display %d not found (%d active)", d.display, n)
		return c
	}

	c.Supported = true
	return c
}

// GetDisplayMedia implements MediaDevices.
func (d *Desktop) GetDisplayMedia(ctx context.Context, options DisplayMediaOptions) (MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := screenshot.NumActiveDisplays()
	if d.display >= n {
		return nil, &CaptureError{
			Name:    NotFoundError,
			Message: fmt.Sprintf("display %d not available", d.display),
			Err:     ErrNoDisplay,
		}
	}

	bounds := screenshot.GetDisplayBounds(d.display)
	if bounds.Empty() {
		return nil, &CaptureError{
			Name:    NotReadableError,
			Message: fmt.Sprintf("display %d reports empty bounds", d.display),
		}
	}

	// A first grab separates "no permission" from "works"; the OS refuses
	// here when screen recording is blocked.
	if _, err := screenshot.CaptureRect(bounds); err != nil {
		return nil, &CaptureError{
			Name:    NotAllowedError,
			Origin:  OriginSystem,
			Message: "permission denied by system",
			Err:     err,
		}
	}

	settings := VideoTrackSettings{
		DisplaySurface: SurfaceMonitor,
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
		FrameRate:      frameRateOrDefault(options.Video.FrameRate),
	}
	label := fmt.Sprintf("display %d (%dx%d)", d.display, settings.Width, settings.Height)

	track := newCaptureTrack(label, settings, options.Video.frameInterval(), func() (*image.RGBA, error) {
		return screenshot.CaptureRect(bounds)
	})

	d.log.Info("display capture started", "display", d.display, "width", settings.Width, "height", settings.Height, "fps", settings.FrameRate)
	return NewMediaStream(track), nil
}

func frameRateOrDefault(fps float64) float64 {
	if fps <= 0 {
		return DefaultFrameRate
	}
	return fps
}
