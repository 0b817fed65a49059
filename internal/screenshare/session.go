// Package screenshare implements the screen share session: a state
// machine that owns the captured stream, its metadata, and the rules for
// releasing it.
//
// A capture request runs in three steps so the blocking provider call can
// happen off the caller's event loop:
//
//	t := s.Begin()              // release old stream, enter requesting
//	o := s.Acquire(ctx, t)      // blocking provider request
//	s.Apply(o)                  // commit, unless superseded
//
// Every request carries a generation. Begin, Stop and Dispose advance it,
// so an outcome that arrives after any of them is discarded and its stream
// released.
package screenshare

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/screencheck/screencheck/internal/media"
)

// Ticket identifies one capture request.
type Ticket struct {
	Generation uint64
	Options    media.DisplayMediaOptions
}

// Outcome is the provider's answer to a Ticket.
type Outcome struct {
	Generation uint64
	Stream     media.MediaStream
	Err        error
}

// Snapshot is a consistent view of the session.
type Snapshot struct {
	State      State
	Generation uint64
	Metadata   *Metadata
	Stream     media.MediaStream
}

// VideoTrack returns the stream's primary video track, or nil.
func (s Snapshot) VideoTrack() media.VideoTrack {
	return media.PrimaryVideoTrack(s.Stream)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithFrameRate sets the ideal capture frame rate.
func WithFrameRate(fps float64) Option {
	return func(s *Session) {
		if fps > 0 {
			s.opts.Video.FrameRate = fps
		}
	}
}

// Session owns one screen share and its stream.
type Session struct {
	devices media.MediaDevices
	opts    media.DisplayMediaOptions
	log     *log.Logger

	mu        sync.Mutex
	state     State
	gen       uint64
	stream    media.MediaStream
	track     media.VideoTrack
	meta      *Metadata
	disposed  bool
	listeners []func(Snapshot)
}

// New creates an idle session capturing through devices.
func New(devices media.MediaDevices, opts ...Option) *Session {
	s := &Session{
		devices: devices,
		opts:    media.DefaultDisplayMediaOptions(),
		log:     log.New(io.Discard),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OnChange registers fn to receive a snapshot after every transition.
// Callbacks run outside the session lock, on the goroutine that caused the
// transition.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns the current state, generation, metadata and stream.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start runs a full capture request synchronously.
func (s *Session) Start(ctx context.Context) State {
	t := s.Begin()
	s.Apply(s.Acquire(ctx, t))
	return s.State()
}

// Begin releases any held stream, clears metadata and enters requesting.
// On a disposed session it returns a ticket that Apply will reject.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return Ticket{Options: s.opts}
	}
	s.releaseLocked()
	s.gen++
	t := Ticket{Generation: s.gen, Options: s.opts}
	s.setStateLocked(Requesting)
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(snap, listeners)
	return t
}

// Acquire performs the provider request for t. It blocks until the
// provider answers or ctx is done, and never touches session state.
// A ticket from a disposed session is answered without asking the provider.
func (s *Session) Acquire(ctx context.Context, t Ticket) Outcome {
	if t.Generation == 0 {
		return Outcome{Err: context.Canceled}
	}
	stream, err := s.devices.GetDisplayMedia(ctx, t.Options)
	if err == nil && stream == nil {
		err = errors.New("screenshare: provider returned no stream")
	}
	return Outcome{Generation: t.Generation, Stream: stream, Err: err}
}

// Apply commits o if it answers the current request. Superseded outcomes
// are discarded and their stream is closed. Reports whether o was applied.
func (s *Session) Apply(o Outcome) bool {
	s.mu.Lock()
	if s.disposed || o.Generation != s.gen || s.state != Requesting {
		current := s.gen
		s.mu.Unlock()
		s.log.Debug("discarding stale capture outcome", "generation", o.Generation, "current", current, "granted", o.Stream != nil)
		if o.Stream != nil {
			s.closeStream(o.Stream)
		}
		return false
	}

	if o.Err != nil {
		next := Classify(o.Err)
		s.log.Info("capture request failed", "generation", o.Generation, "state", next, "err", o.Err)
		if o.Stream != nil {
			s.closeStream(o.Stream)
		}
		s.setStateLocked(next)
	} else if o.Stream == nil {
		s.log.Warn("capture outcome without stream or error", "generation", o.Generation)
		s.setStateLocked(Error)
	} else if track := media.PrimaryVideoTrack(o.Stream); track == nil {
		s.log.Warn("capture granted without a video track", "generation", o.Generation)
		s.closeStream(o.Stream)
		s.setStateLocked(Error)
	} else {
		meta := metadataFrom(track)
		gen := s.gen
		track.OnEnded(func() { s.trackEnded(gen) })

		s.stream, s.track, s.meta = o.Stream, track, &meta
		s.log.Info("capture granted", "generation", gen, "surface", meta.DisplaySurface, "resolution", meta.Resolution())
		s.setStateLocked(Granted)
	}

	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(snap, listeners)
	return true
}

// Stop ends the share and releases the stream. A pending request is
// invalidated. Idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.endLocked() {
		s.mu.Unlock()
		return
	}
	s.log.Info("capture stopped", "generation", s.gen)
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(snap, listeners)
}

// Dispose releases the stream unconditionally and rejects every later
// outcome. It does not notify listeners.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	s.gen++
	if s.releaseLocked() || s.state == Requesting {
		s.state = Ended
	}
	s.listeners = nil
	s.log.Debug("session disposed", "generation", s.gen)
}

// trackEnded is the termination observer attached at grant time.
func (s *Session) trackEnded(gen uint64) {
	s.mu.Lock()
	if s.disposed || gen != s.gen || s.state != Granted {
		s.mu.Unlock()
		return
	}
	s.endLocked()
	s.log.Info("capture ended outside the application", "generation", gen)
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(snap, listeners)
}

// endLocked moves to Ended and releases the stream. Reports whether
// anything changed.
func (s *Session) endLocked() bool {
	if s.disposed {
		return false
	}
	changed := s.state != Ended
	if s.state == Requesting {
		s.gen++
	}
	if s.releaseLocked() {
		changed = true
	}
	s.setStateLocked(Ended)
	return changed
}

// releaseLocked detaches the observer, stops every track and clears the
// stream and metadata. Reports whether a stream was held.
func (s *Session) releaseLocked() bool {
	s.meta = nil
	if s.stream == nil {
		return false
	}
	if s.track != nil {
		s.track.OnEnded(nil)
	}
	s.closeStream(s.stream)
	s.stream, s.track = nil, nil
	return true
}

func (s *Session) closeStream(st media.MediaStream) {
	if err := st.Close(); err != nil {
		s.log.Warn("releasing capture stream", "stream", st.ID(), "err", err)
	}
}

func (s *Session) setStateLocked(next State) {
	if s.state != next {
		s.log.Debug("transition", "from", s.state, "to", next, "generation", s.gen)
	}
	s.state = next
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Generation: s.gen, Stream: s.stream}
	if s.meta != nil {
		m := *s.meta
		snap.Metadata = &m
	}
	return snap
}

func (s *Session) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), len(s.listeners))
	copy(out, s.listeners)
	return out
}

func (s *Session) notify(snap Snapshot, listeners []func(Snapshot)) {
	for _, fn := range listeners {
		fn(snap)
	}
}
