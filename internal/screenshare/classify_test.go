package screenshare

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/screencheck/screencheck/internal/media"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want State
	}{
		{
			name: "not allowed by user",
			err:  media.NewCaptureError(media.NotAllowedError, media.OriginUser, "anything"),
			want: Cancelled,
		},
		{
			name: "not allowed by system",
			err:  media.NewCaptureError(media.NotAllowedError, media.OriginSystem, "Permission denied by user"),
			want: Denied,
		},
		{
			name: "abort by user",
			err:  media.NewCaptureError(media.AbortError, media.OriginUser, ""),
			want: Cancelled,
		},
		{
			name: "abort by system",
			err:  media.NewCaptureError(media.AbortError, media.OriginSystem, ""),
			want: Denied,
		},
		{
			name: "unknown origin, plain permission denied",
			err:  media.NewCaptureError(media.NotAllowedError, media.OriginUnknown, "Permission denied"),
			want: Cancelled,
		},
		{
			name: "unknown origin, mentions user",
			err:  media.NewCaptureError(media.NotAllowedError, media.OriginUnknown, "The request is not allowed by the user agent"),
			want: Cancelled,
		},
		{
			name: "unknown origin, cancel",
			err:  media.NewCaptureError(media.AbortError, media.OriginUnknown, "Picker cancelled"),
			want: Cancelled,
		},
		{
			name: "unknown origin, system block",
			err:  media.NewCaptureError(media.NotAllowedError, media.OriginUnknown, "Permission denied by system"),
			want: Denied,
		},
		{
			name: "wrapped capture error",
			err:  fmt.Errorf("request: %w", media.NewCaptureError(media.NotAllowedError, media.OriginSystem, "")),
			want: Denied,
		},
		{
			name: "not readable",
			err:  media.NewCaptureError(media.NotReadableError, media.OriginUser, "Could not start video source"),
			want: Error,
		},
		{
			name: "not supported",
			err:  media.NewCaptureError(media.NotSupportedError, media.OriginUnknown, "user"),
			want: Error,
		},
		{
			name: "not found",
			err:  &media.CaptureError{Name: media.NotFoundError, Err: media.ErrNoDisplay},
			want: Error,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: Error,
		},
		{
			name: "context canceled",
			err:  fmt.Errorf("picker: %w", context.Canceled),
			want: Cancelled,
		},
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserDismissal(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"Permission denied", true},
		{"  permission denied  ", true},
		{"Permission denied by user", true},
		{"The user aborted a request.", true},
		{"Screen picker was cancelled", true},
		{"Permission denied by system", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsUserDismissal(tt.msg); got != tt.want {
			t.Errorf("IsUserDismissal(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
