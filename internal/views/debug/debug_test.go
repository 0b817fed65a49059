package debug

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestAddEntry(t *testing.T) {
	m := New()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	m.Addf(KindState, "idle -> %s", "requesting")
	if len(m.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(m.Entries))
	}
	e := m.Entries[0]
	if e.Kind != KindState || e.Message != "idle -> requesting" || !e.Time.Equal(fixed) {
		t.Errorf("entry = %+v", e)
	}
}

func TestMaxEntries(t *testing.T) {
	m := New()
	for i := 0; i < maxEntries+50; i++ {
		m.Add(KindState, "msg")
	}
	if len(m.Entries) != maxEntries {
		t.Errorf("expected %d entries, got %d", maxEntries, len(m.Entries))
	}
}

func TestScroll(t *testing.T) {
	tests := []struct {
		name    string
		entries int
		up      int
		down    int
		want    int
	}{
		{"up", 20, 5, 0, 5},
		{"up then down", 20, 5, 3, 2},
		{"down past bottom", 20, 2, 10, 0},
		{"up capped", 5, 100, 0, 4},
		{"empty", 0, 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			for i := 0; i < tt.entries; i++ {
				m.Add(KindNav, "msg")
			}
			m.ScrollUp(tt.up)
			m.ScrollDown(tt.down)
			if m.Offset != tt.want {
				t.Errorf("Offset = %d, want %d", m.Offset, tt.want)
			}
		})
	}
}

func TestViewEmpty(t *testing.T) {
	if v := New().View(80, 20); !strings.Contains(v, "No events") {
		t.Error("empty view should show 'No events' message")
	}
}

func TestViewWithEntries(t *testing.T) {
	m := New()
	m.Add(KindState, "granted")
	m.Add(KindErr, "NotAllowedError: Permission denied")
	v := m.View(100, 20)
	for _, want := range []string{"granted", "NotAllowedError", "2 entries"} {
		if !strings.Contains(v, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestAddResetsScroll(t *testing.T) {
	m := New()
	for i := 0; i < 10; i++ {
		m.Add(KindNav, "msg")
	}
	m.ScrollUp(5)
	m.Add(KindNav, "new")
	if m.Offset != 0 {
		t.Error("adding entry should reset scroll to 0")
	}
}

func TestViewTruncatesByCell(t *testing.T) {
	m := New()
	m.Add(KindErr, strings.Repeat("é", 300))

	// width 200 leaves 174 cells for the message.
	v := m.View(200, 20)
	if !utf8.ValidString(v) {
		t.Fatal("view contains a split rune")
	}
	if !strings.Contains(v, strings.Repeat("é", 171)+"...") {
		t.Error("long message should be cut to the panel width with an ellipsis")
	}
	if strings.Contains(v, strings.Repeat("é", 172)) {
		t.Error("message should not exceed the panel width")
	}
}
