package screenshare

import (
	"context"
	"errors"
	"strings"

	"github.com/screencheck/screencheck/internal/media"
)

type errorKey struct {
	name   media.ErrorName
	origin media.Origin
}

// outcomeTable maps structured capture failures onto session states.
// Anything absent from the table is Error, except the permission-class
// names with an unknown origin, which fall back to IsUserDismissal.
var outcomeTable = map[errorKey]State{
	{media.NotAllowedError, media.OriginUser}:   Cancelled,
	{media.NotAllowedError, media.OriginSystem}: Denied,
	{media.AbortError, media.OriginUser}:        Cancelled,
	{media.AbortError, media.OriginSystem}:      Denied,
}

var permissionClass = map[media.ErrorName]bool{
	media.NotAllowedError: true,
	media.AbortError:      true,
}

// Classify maps a failed capture request onto Cancelled, Denied or Error.
func Classify(err error) State {
	if errors.Is(err, context.Canceled) {
		return Cancelled
	}

	var ce *media.CaptureError
	if !errors.As(err, &ce) {
		return Error
	}
	if s, ok := outcomeTable[errorKey{ce.Name, ce.Origin}]; ok {
		return s
	}
	if permissionClass[ce.Name] {
		if IsUserDismissal(ce.Message) {
			return Cancelled
		}
		return Denied
	}
	return Error
}

// IsUserDismissal guesses from a human-readable message whether a
// permission failure came from the user closing the picker. Browsers say
// "Permission denied" for a dismissed picker and "Permission denied by
// system" for an OS block. Only used when the provider gives no origin.
func IsUserDismissal(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	return strings.Contains(m, "user") ||
		m == "permission denied" ||
		strings.Contains(m, "cancel")
}
