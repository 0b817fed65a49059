package media

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// HostInfo summarises the OS and graphical session capture runs on.
type HostInfo struct {
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Arch            string
	SessionType     string // x11, wayland, tty; empty when unknown
}

// LookupHost gathers host information. Fields gopsutil cannot resolve fall
// back to the Go runtime values.
func LookupHost(ctx context.Context) HostInfo {
	h := HostInfo{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		SessionType: sessionType(),
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return h
	}
	if info.OS != "" {
		h.OS = info.OS
	}
	if info.KernelArch != "" {
		h.Arch = info.KernelArch
	}
	h.Platform = info.Platform
	h.PlatformVersion = info.PlatformVersion
	h.KernelVersion = info.KernelVersion
	return h
}

func (h HostInfo) String() string {
	parts := []string{h.OS}
	if h.Platform != "" {
		p := h.Platform
		if h.PlatformVersion != "" {
			p += " " + h.PlatformVersion
		}
		parts = append(parts, p)
	}
	if h.Arch != "" {
		parts = append(parts, h.Arch)
	}
	if h.SessionType != "" {
		parts = append(parts, fmt.Sprintf("session=%s", h.SessionType))
	}
	return strings.Join(parts, " / ")
}

func sessionType() string {
	if t := os.Getenv("XDG_SESSION_TYPE"); t != "" {
		return strings.ToLower(t)
	}
	switch {
	case os.Getenv("WAYLAND_DISPLAY") != "":
		return "wayland"
	case os.Getenv("DISPLAY") != "":
		return "x11"
	}
	return ""
}

// hasGraphicalSession reports whether a display server is reachable from
// this process. Only Linux and the BSDs depend on environment variables.
func hasGraphicalSession() bool {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	default:
		return true
	}
}
