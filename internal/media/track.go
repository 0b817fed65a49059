package media

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// grabFunc produces the next frame image for a capture track.
type grabFunc func() (*image.RGBA, error)

// captureTrack is a VideoTrack that pulls frames from a grabFunc at a
// fixed interval.
type captureTrack struct {
	id       string
	label    string
	settings VideoTrackSettings
	grab     grabFunc
	interval time.Duration

	state   atomic.Int32
	seq     atomic.Uint64
	started time.Time
	done    chan struct{}

	mu       sync.Mutex
	next     time.Time
	endedCb  func()
	lost     bool // ended by the source rather than Stop
	fired    bool
	endTimer *time.Timer
	once     sync.Once
}

func newCaptureTrack(label string, settings VideoTrackSettings, interval time.Duration, grab grabFunc) *captureTrack {
	now := time.Now()
	t := &captureTrack{
		id:       uuid.NewString(),
		label:    label,
		settings: settings,
		grab:     grab,
		interval: interval,
		started:  now,
		next:     now,
		done:     make(chan struct{}),
	}
	t.state.Store(int32(TrackStateLive))
	return t
}

func (t *captureTrack) ID() string                   { return t.id }
func (t *captureTrack) Kind() webrtc.RTPCodecType    { return webrtc.RTPCodecTypeVideo }
func (t *captureTrack) Label() string                { return t.label }
func (t *captureTrack) State() TrackState            { return TrackState(t.state.Load()) }
func (t *captureTrack) Settings() VideoTrackSettings { return t.settings }

// endAfter ends the track by itself after d, as if the source went away.
func (t *captureTrack) endAfter(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endTimer = time.AfterFunc(d, t.end)
}

// OnEnded fires callback right away when the source is already gone.
func (t *captureTrack) OnEnded(callback func()) {
	t.mu.Lock()
	t.endedCb = callback
	fire := callback != nil && t.lost && !t.fired
	if fire {
		t.fired = true
	}
	t.mu.Unlock()

	if fire {
		go callback()
	}
}

func (t *captureTrack) ReadFrame(ctx context.Context) (*Frame, error) {
	t.mu.Lock()
	wait := time.Until(t.next)
	t.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.done:
			return nil, ErrTrackEnded
		case <-timer.C:
		}
	}

	select {
	case <-t.done:
		return nil, ErrTrackEnded
	default:
	}

	img, err := t.grab()
	if err != nil {
		t.end()
		return nil, fmt.Errorf("%w: %v", ErrTrackEnded, err)
	}

	t.mu.Lock()
	t.next = time.Now().Add(t.interval)
	t.mu.Unlock()

	return &Frame{
		Image:     img,
		Seq:       t.seq.Add(1),
		Timestamp: time.Since(t.started),
	}, nil
}

// end marks the track ended by its source and fires the ended callback.
func (t *captureTrack) end() {
	t.finish(true)
}

func (t *captureTrack) Stop() {
	t.finish(false)
}

func (t *captureTrack) finish(notify bool) {
	t.once.Do(func() {
		t.state.Store(int32(TrackStateEnded))
		close(t.done)

		t.mu.Lock()
		t.lost = notify
		cb := t.endedCb
		fire := notify && cb != nil
		if fire {
			t.fired = true
		}
		if t.endTimer != nil {
			t.endTimer.Stop()
		}
		t.mu.Unlock()

		if fire {
			go cb()
		}
	})
}

// stream is a MediaStream over a fixed set of video tracks.
type stream struct {
	id     string
	tracks []VideoTrack
}

// NewMediaStream groups tracks into a MediaStream.
func NewMediaStream(tracks ...VideoTrack) MediaStream {
	return &stream{id: uuid.NewString(), tracks: tracks}
}

func (s *stream) ID() string { return s.id }

func (s *stream) Active() bool {
	for _, t := range s.tracks {
		if t.State() == TrackStateLive {
			return true
		}
	}
	return false
}

func (s *stream) GetVideoTracks() []VideoTrack {
	out := make([]VideoTrack, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *stream) Close() error {
	for _, t := range s.tracks {
		t.Stop()
	}
	return nil
}
