package preview

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/screencheck/screencheck/internal/media"
	"github.com/screencheck/screencheck/internal/media/mediatest"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		cols, rows   int
		wantW, wantH int
	}{
		{"wide source limited by width", 1920, 1080, 40, 20, 40, 22},
		{"wide source limited by height", 1920, 1080, 80, 10, 35, 20},
		{"tall source", 600, 1200, 40, 10, 10, 20},
		{"square", 100, 100, 30, 30, 30, 30},
		{"tiny grid", 1920, 1080, 1, 1, 1, 1},
		{"unknown size", 0, 0, 40, 10, 0, 0},
		{"no grid", 100, 100, 0, 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Fit(tt.w, tt.h, tt.cols, tt.rows)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Fit(%d, %d, %d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.cols, tt.rows, w, h, tt.wantW, tt.wantH)
			}
			if w > tt.cols || h > tt.rows*2 {
				t.Errorf("Fit result %dx%d overflows grid %dx%d", w, h, tt.cols, tt.rows*2)
			}
		})
	}
}

func TestScaleKeepsColor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 200, 10, 10, 255
	}
	dst := Scale(src, 8, 4)
	if dst.Bounds().Dx() != 8 || dst.Bounds().Dy() != 4 {
		t.Fatalf("scaled size = %v, want 8x4", dst.Bounds())
	}
	if got := dst.RGBAAt(3, 2); got != (color.RGBA{200, 10, 10, 255}) {
		t.Errorf("scaled pixel = %v, want source color", got)
	}
	if Scale(nil, 8, 4) != nil {
		t.Error("Scale(nil) should be nil")
	}
}

func TestRenderShape(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 3))
	out := Render(img)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("rendered %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		if n := strings.Count(line, halfBlock); n != 5 {
			t.Errorf("line %d has %d cells, want 5", i, n)
		}
	}
}

func waitFrame(t *testing.T, s *Surface) FrameMsg {
	t.Helper()
	cmd := s.Next()
	if cmd == nil {
		t.Fatal("Next() returned nil while bound")
	}
	done := make(chan FrameMsg, 1)
	go func() {
		msg, _ := cmd().(FrameMsg)
		done <- msg
	}()
	select {
	case msg := <-done:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return FrameMsg{}
}

func TestBindDeliversFrames(t *testing.T) {
	track := mediatest.NewTrack(media.VideoTrackSettings{DisplaySurface: media.SurfaceMonitor, Width: 160, Height: 90})
	s := New(WithMaxFPS(1000))
	s.Resize(16, 4)

	id := s.Bind(track)
	if !s.Bound() || s.Binding() != id {
		t.Fatalf("Bound() = %v, Binding() = %d, want %d", s.Bound(), s.Binding(), id)
	}
	if again := s.Bind(track); again != id {
		t.Errorf("rebinding the same track = %d, want %d", again, id)
	}

	msg := waitFrame(t, s)
	if msg.Binding != id || msg.Err != nil {
		t.Fatalf("frame msg = %+v", msg)
	}
	if b := msg.Image.Bounds(); b.Dx() != 14 || b.Dy() != 8 {
		t.Errorf("frame size = %dx%d, want 14x8", b.Dx(), b.Dy())
	}
	if s.Apply(msg) == nil {
		t.Error("Apply should re-arm for the next frame")
	}
	if seq, _ := s.Stats(); seq == 0 {
		t.Error("frame counter should advance")
	}
	if !strings.Contains(s.View(), halfBlock) {
		t.Error("view should draw the frame")
	}
	s.Unbind()
}

func TestStaleFramesDropped(t *testing.T) {
	first := mediatest.NewTrack(media.VideoTrackSettings{Width: 32, Height: 18})
	second := mediatest.NewTrack(media.VideoTrackSettings{Width: 32, Height: 18})
	s := New(WithMaxFPS(1000))

	old := s.Bind(first)
	stale := waitFrame(t, s)
	cur := s.Bind(second)
	if cur == old {
		t.Fatal("new track should get a new binding")
	}

	if s.Apply(stale) != nil {
		t.Error("stale frame should not re-arm")
	}
	if seq, _ := s.Stats(); seq != 0 {
		t.Error("stale frame should not be shown")
	}
	s.Unbind()
}

func TestUnbindClears(t *testing.T) {
	track := mediatest.NewTrack(media.VideoTrackSettings{Width: 32, Height: 18})
	s := New(WithMaxFPS(1000))
	s.Bind(track)
	s.Apply(waitFrame(t, s))

	cmd := s.Next()
	s.Unbind()

	if s.Bound() || s.Binding() != 0 {
		t.Error("surface should be unbound")
	}
	if !strings.Contains(s.View(), "no source") {
		t.Error("unbound view should show the placeholder")
	}
	if s.Caption() != "" {
		t.Error("caption should clear on unbind")
	}
	if s.Next() != nil {
		t.Error("Next() should be nil when unbound")
	}
	// A command armed before Unbind still returns promptly.
	done := make(chan struct{})
	go func() { cmd(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pending Next command did not return after Unbind")
	}
}

func TestTrackEndStopsDelivery(t *testing.T) {
	track := mediatest.NewTrack(media.VideoTrackSettings{Width: 32, Height: 18})
	s := New(WithMaxFPS(1000))
	s.Bind(track)
	track.End()

	var msg FrameMsg
	for i := 0; i < 10; i++ {
		msg = waitFrame(t, s)
		if msg.Err != nil {
			break
		}
		s.Apply(msg)
	}
	if msg.Err == nil {
		t.Fatal("expected an error frame after the track ended")
	}
	if s.Apply(msg) != nil {
		t.Error("error frame should not re-arm")
	}
	if !errors.Is(s.Err(), media.ErrTrackEnded) {
		t.Errorf("Err() = %v, want ErrTrackEnded", s.Err())
	}
	if !strings.Contains(s.View(), "source stopped") {
		t.Error("view should report the stopped source")
	}
	s.Unbind()
}

func TestBindRefusesNonVideoTrack(t *testing.T) {
	video := mediatest.NewTrack(media.VideoTrackSettings{Width: 32, Height: 18})
	audio := mediatest.NewTrack(media.VideoTrackSettings{Width: 32, Height: 18})
	audio.SetKind(webrtc.RTPCodecTypeAudio)

	s := New()
	if id := s.Bind(audio); id != 0 || s.Bound() {
		t.Errorf("Bind(audio) = %d, Bound() = %v; want 0, false", id, s.Bound())
	}

	id := s.Bind(video)
	if id == 0 {
		t.Fatal("video track should bind")
	}
	if got := s.Bind(audio); got != 0 || s.Binding() != id {
		t.Errorf("Bind(audio) = %d, Binding() = %d; want 0, %d", got, s.Binding(), id)
	}
	s.Unbind()
}
