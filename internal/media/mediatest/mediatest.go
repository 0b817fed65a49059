// Package mediatest provides scripted media providers and tracks for tests.
package mediatest

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"

	"github.com/screencheck/screencheck/internal/media"
)

// Track is a controllable media.VideoTrack.
type Track struct {
	id       string
	kind     webrtc.RTPCodecType
	settings media.VideoTrackSettings
	frame    *image.RGBA
	done     chan struct{}

	mu      sync.Mutex
	state   media.TrackState
	stops   int
	onEnded func()
	seq     uint64
}

// NewTrack creates a live track with the given settings.
func NewTrack(settings media.VideoTrackSettings) *Track {
	w, h := settings.Width, settings.Height
	if w <= 0 {
		w = 16
	}
	if h <= 0 {
		h = 9
	}
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(frame.Pix); i += 4 {
		frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2], frame.Pix[i+3] = 40, 200, 120, 255
	}
	return &Track{
		id:       uuid.NewString(),
		kind:     webrtc.RTPCodecTypeVideo,
		settings: settings,
		frame:    frame,
		done:     make(chan struct{}),
	}
}

func (t *Track) ID() string                         { return t.id }
func (t *Track) Kind() webrtc.RTPCodecType          { return t.kind }
func (t *Track) Label() string                      { return "fake " + t.settings.DisplaySurface.String() }
func (t *Track) Settings() media.VideoTrackSettings { return t.settings }

func (t *Track) State() media.TrackState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Track) OnEnded(callback func()) {
	t.mu.Lock()
	t.onEnded = callback
	t.mu.Unlock()
}

// SetKind overrides the kind the track reports. Set it before handing the
// track out.
func (t *Track) SetKind(kind webrtc.RTPCodecType) { t.kind = kind }

// HasEndedHandler reports whether an ended callback is attached.
func (t *Track) HasEndedHandler() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.onEnded != nil
}

func (t *Track) ReadFrame(ctx context.Context) (*media.Frame, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, media.ErrTrackEnded
	case <-time.After(2 * time.Millisecond):
	}
	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.mu.Unlock()
	return &media.Frame{Image: t.frame, Seq: seq}, nil
}

// Stop counts every call so tests can detect double releases.
func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
	if t.state != media.TrackStateEnded {
		t.state = media.TrackStateEnded
		close(t.done)
	}
}

// Stops returns how many times Stop was called.
func (t *Track) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

// End simulates the capture source going away: the track ends and the
// ended callback runs synchronously on the caller's goroutine.
func (t *Track) End() {
	t.mu.Lock()
	if t.state != media.TrackStateEnded {
		t.state = media.TrackStateEnded
		close(t.done)
	}
	cb := t.onEnded
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Fill paints every pixel of the track's frame with c.
func (t *Track) Fill(c color.RGBA) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < len(t.frame.Pix); i += 4 {
		t.frame.Pix[i], t.frame.Pix[i+1], t.frame.Pix[i+2], t.frame.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// Result scripts the answer to one GetDisplayMedia call.
type Result struct {
	Settings media.VideoTrackSettings
	Err      error
	Gate     chan struct{} // when set, the request blocks until it is closed

	// Leading lists kinds of extra tracks placed ahead of the capture track
	// in the granted stream.
	Leading []webrtc.RTPCodecType
}

// Grant scripts a successful request.
func Grant(surface media.DisplaySurface, width, height int) Result {
	return Result{Settings: media.VideoTrackSettings{
		DisplaySurface: surface,
		Width:          width,
		Height:         height,
		FrameRate:      media.DefaultFrameRate,
	}}
}

// Fail scripts a failed request.
func Fail(err error) Result {
	return Result{Err: err}
}

// Devices is a scripted media.MediaDevices. Results are consumed in order;
// once the script runs out every request is granted as a 1280x720 monitor.
type Devices struct {
	Unsupported bool

	mu       sync.Mutex
	script   []Result
	tracks   []*Track
	requests []media.DisplayMediaOptions
}

// NewDevices creates a provider answering with the given results.
func NewDevices(results ...Result) *Devices {
	return &Devices{script: results}
}

// Push appends results to the script.
func (d *Devices) Push(results ...Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script = append(d.script, results...)
}

func (d *Devices) Name() string { return "fake" }

func (d *Devices) Probe(ctx context.Context) media.Capability {
	if d.Unsupported {
		return media.Capability{Reason: "capture disabled in test"}
	}
	return media.Capability{Supported: true}
}

func (d *Devices) GetDisplayMedia(ctx context.Context, options media.DisplayMediaOptions) (media.MediaStream, error) {
	d.mu.Lock()
	d.requests = append(d.requests, options)
	res := Grant(media.SurfaceMonitor, 1280, 720)
	if len(d.script) > 0 {
		res = d.script[0]
		d.script = d.script[1:]
	}
	d.mu.Unlock()

	if res.Gate != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-res.Gate:
		}
	}
	if res.Err != nil {
		return nil, res.Err
	}

	var tracks []media.VideoTrack
	d.mu.Lock()
	for _, kind := range res.Leading {
		t := NewTrack(res.Settings)
		t.SetKind(kind)
		d.tracks = append(d.tracks, t)
		tracks = append(tracks, t)
	}
	track := NewTrack(res.Settings)
	d.tracks = append(d.tracks, track)
	tracks = append(tracks, track)
	d.mu.Unlock()
	return media.NewMediaStream(tracks...), nil
}

// Tracks returns every track handed out so far, oldest first.
func (d *Devices) Tracks() []*Track {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Track, len(d.tracks))
	copy(out, d.tracks)
	return out
}

// Requests returns the options of every request received.
func (d *Devices) Requests() []media.DisplayMediaOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]media.DisplayMediaOptions, len(d.requests))
	copy(out, d.requests)
	return out
}

// Live counts tracks that have not been stopped or ended.
func (d *Devices) Live() int {
	n := 0
	for _, t := range d.Tracks() {
		if t.State() == media.TrackStateLive {
			n++
		}
	}
	return n
}
