package media

import (
	"errors"
	"fmt"
)

var (
	// ErrTrackEnded is returned by ReadFrame once a track has ended.
	ErrTrackEnded = errors.New("media: track ended")

	// ErrNoDisplay is wrapped by NotFoundError when no display is active.
	ErrNoDisplay = errors.New("media: no active display")
)

// ErrorName is the structured failure code of a capture request. The
// values mirror the DOMException names browsers report.
type ErrorName string

const (
	NotAllowedError      ErrorName = "NotAllowedError"
	AbortError           ErrorName = "AbortError"
	NotFoundError        ErrorName = "NotFoundError"
	NotReadableError     ErrorName = "NotReadableError"
	NotSupportedError    ErrorName = "NotSupportedError"
	OverconstrainedError ErrorName = "OverconstrainedError"
)

// Origin says who refused a capture request, when the provider knows.
type Origin int

const (
	OriginUnknown Origin = iota
	OriginUser           // dismissed in the picker
	OriginSystem         // blocked by OS or policy
)

func (o Origin) String() string {
	switch o {
	case OriginUser:
		return "user"
	case OriginSystem:
		return "system"
	default:
		return "unknown"
	}
}

// CaptureError is a failed capture request.
type CaptureError struct {
	Name    ErrorName
	Origin  Origin
	Message string
	Err     error
}

// NewCaptureError creates a CaptureError.
func NewCaptureError(name ErrorName, origin Origin, message string) *CaptureError {
	return &CaptureError{Name: name, Origin: origin, Message: message}
}

func (e *CaptureError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Name, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CaptureError) Unwrap() error { return e.Err }
