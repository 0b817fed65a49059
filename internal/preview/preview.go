// Package preview renders a live video track into the terminal.
//
// A Surface binds to at most one track. While bound, a reader goroutine
// pulls frames, scales them to the cell grid and keeps only the latest
// one; the Bubble Tea loop collects it with Next and hands it back with
// Apply. Each two pixel rows become one row of upper half-block cells.
package preview

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/pion/webrtc/v4"
	"golang.org/x/image/draw"

	"github.com/screencheck/screencheck/internal/media"
)

// DefaultMaxFPS caps how often scaled frames are handed to the UI.
const DefaultMaxFPS = 15

// FrameMsg carries one scaled frame from a binding to the update loop.
type FrameMsg struct {
	Binding uint64
	Image   *image.RGBA // already scaled to the cell grid
	Seq     uint64
	FPS     float64
	Err     error
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the surface logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Surface) { s.log = l }
}

// WithMaxFPS caps the delivered frame rate. Values <= 0 keep the default.
func WithMaxFPS(fps float64) Option {
	return func(s *Surface) {
		if fps > 0 {
			s.maxFPS = fps
		}
	}
}

// Surface is the preview pane.
type Surface struct {
	log    *log.Logger
	maxFPS float64

	cols, rows int
	nextID     uint64
	cur        *binding

	img *image.RGBA
	seq uint64
	fps float64
	err error
}

// New creates an unbound surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		log:    log.New(io.Discard),
		maxFPS: DefaultMaxFPS,
		cols:   40,
		rows:   12,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resize sets the cell grid the preview is fitted into.
func (s *Surface) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	s.cols, s.rows = cols, rows
	if s.cur != nil {
		s.cur.resize(cols, rows)
	}
}

// Size returns the cell grid.
func (s *Surface) Size() (cols, rows int) { return s.cols, s.rows }

// Bind attaches the surface to track and returns the binding id. Binding
// the track that is already bound is a no-op; any other binding is
// stopped first. A track whose kind is not video is refused: Bind returns
// 0 and leaves the current binding alone.
func (s *Surface) Bind(track media.VideoTrack) uint64 {
	if track.Kind() != webrtc.RTPCodecTypeVideo {
		s.log.Warn("refusing non-video track", "track", track.ID(), "kind", track.Kind().String())
		return 0
	}
	if s.cur != nil && s.cur.trackID == track.ID() {
		return s.cur.id
	}
	s.Unbind()

	s.nextID++
	b := newBinding(s.nextID, track, s.cols, s.rows, s.maxFPS)
	s.cur = b
	go b.run(s.log)
	s.log.Debug("preview bound", "binding", b.id, "track", track.ID())
	return b.id
}

// Unbind stops the reader and clears the picture.
func (s *Surface) Unbind() {
	if s.cur == nil {
		return
	}
	s.log.Debug("preview unbound", "binding", s.cur.id)
	s.cur.cancel()
	s.cur = nil
	s.img, s.seq, s.fps, s.err = nil, 0, 0, nil
}

// Bound reports whether a track is attached.
func (s *Surface) Bound() bool { return s.cur != nil }

// Binding returns the current binding id, or 0 when unbound.
func (s *Surface) Binding() uint64 {
	if s.cur == nil {
		return 0
	}
	return s.cur.id
}

// Next returns a command that waits for the next frame of the current
// binding. Nil when unbound.
func (s *Surface) Next() tea.Cmd {
	b := s.cur
	if b == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-b.ctx.Done():
			return nil
		case msg := <-b.out:
			return msg
		}
	}
}

// Apply stores msg if it belongs to the current binding and returns the
// command for the next frame. Frames from superseded bindings are dropped.
func (s *Surface) Apply(msg FrameMsg) tea.Cmd {
	if s.cur == nil || msg.Binding != s.cur.id {
		return nil
	}
	if msg.Err != nil {
		s.err = msg.Err
		s.log.Debug("preview source stopped", "binding", msg.Binding, "err", msg.Err)
		return nil
	}
	s.img, s.seq, s.fps = msg.Image, msg.Seq, msg.FPS
	return s.Next()
}

// Stats returns the last frame sequence number and measured rate.
func (s *Surface) Stats() (seq uint64, fps float64) { return s.seq, s.fps }

// Err returns why the bound source stopped delivering, if it did.
func (s *Surface) Err() error { return s.err }

type binding struct {
	id      uint64
	trackID string
	track   media.VideoTrack
	ctx     context.Context
	cancel  context.CancelFunc
	out     chan FrameMsg
	minGap  time.Duration

	size chan [2]int
}

func newBinding(id uint64, track media.VideoTrack, cols, rows int, maxFPS float64) *binding {
	ctx, cancel := context.WithCancel(context.Background())
	b := &binding{
		id:      id,
		trackID: track.ID(),
		track:   track,
		ctx:     ctx,
		cancel:  cancel,
		out:     make(chan FrameMsg, 1),
		minGap:  time.Duration(float64(time.Second) / maxFPS),
		size:    make(chan [2]int, 1),
	}
	b.size <- [2]int{cols, rows}
	return b
}

// resize replaces any pending size with the latest one.
func (b *binding) resize(cols, rows int) {
	select {
	case <-b.size:
	default:
	}
	b.size <- [2]int{cols, rows}
}

// publish keeps only the newest undelivered frame. There is a single
// producer, so the send after draining never blocks.
func (b *binding) publish(msg FrameMsg) {
	select {
	case <-b.out:
	default:
	}
	b.out <- msg
}

func (b *binding) run(logger *log.Logger) {
	var (
		cols, rows int
		last       time.Time
		window     = time.Now()
		count      int
		fps        float64
	)
	for {
		frame, err := b.track.ReadFrame(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			if !errors.Is(err, media.ErrTrackEnded) {
				logger.Warn("reading preview frame", "binding", b.id, "err", err)
			}
			b.publish(FrameMsg{Binding: b.id, Err: err})
			return
		}

		select {
		case sz := <-b.size:
			cols, rows = sz[0], sz[1]
		default:
		}

		now := time.Now()
		if !last.IsZero() && now.Sub(last) < b.minGap {
			continue
		}
		last = now

		count++
		if d := now.Sub(window); d >= time.Second {
			fps = float64(count) / d.Seconds()
			count, window = 0, now
		}

		b.publish(FrameMsg{
			Binding: b.id,
			Image:   Scale(frame.Image, cols, rows),
			Seq:     frame.Seq,
			FPS:     fps,
		})
	}
}

// Fit returns the pixel size that fits a width x height source into a
// grid of cols x rows half-block cells, preserving aspect ratio.
func Fit(width, height, cols, rows int) (int, int) {
	if width <= 0 || height <= 0 || cols <= 0 || rows <= 0 {
		return 0, 0
	}
	maxW, maxH := cols, rows*2
	w := maxW
	h := height * maxW / width
	if h > maxH {
		h = maxH
		w = width * maxH / height
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Scale returns a copy of src fitted into cols x rows cells.
func Scale(src *image.RGBA, cols, rows int) *image.RGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), cols, rows)
	if w == 0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
