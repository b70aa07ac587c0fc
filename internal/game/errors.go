package game

import (
	"errors"
	"fmt"
)

// Rejection is the error type for malformed or out-of-turn requests: bad
// positions, missing pending cards, closed windows. Rejections are expected,
// non-fatal outcomes surfaced to the player; anything else escaping a command
// is an unexpected fault recorded by the history boundary.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

// Reject builds a Rejection with a formatted reason.
func Reject(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a validation rejection rather than an
// unexpected fault.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
