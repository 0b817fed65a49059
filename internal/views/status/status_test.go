package status

import (
	"strings"
	"testing"
)

func TestViewShowsFields(t *testing.T) {
	m := New("simulated")
	m.Route = "screen-test"
	m.State = "granted"
	m.Generation = 3
	m.Host = "linux / x86_64"
	m.Width = 120

	v := m.View()
	for _, want := range []string{"simulated", "screen-test", "granted", "request #3", "linux / x86_64"} {
		if !strings.Contains(v, want) {
			t.Errorf("status bar missing %q", want)
		}
	}
}

func TestViewOmitsZeroGeneration(t *testing.T) {
	m := New("desktop")
	m.Width = 100
	if strings.Contains(m.View(), "request #") {
		t.Error("generation should be hidden before the first request")
	}
}
