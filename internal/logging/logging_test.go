package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown", "state", "denied")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "state=denied") {
		t.Errorf("output = %q, want logfmt warn line", out)
	}

	if _, err := New(&buf, "chatty"); err == nil {
		t.Error("unknown level should fail")
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "screencheck.log")

	for _, msg := range []string{"first", "second"} {
		l, c, err := Open(path, "info")
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		l.WithPrefix("session").Info(msg)
		if err := c.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("log file = %q, want both runs", out)
	}
	if !strings.Contains(out, "session") {
		t.Error("prefix should be written")
	}
}
