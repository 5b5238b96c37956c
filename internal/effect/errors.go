package effect

import (
	"errors"
	"fmt"
)

// InvariantError reports a broken scheduler invariant.
//
// These indicate a bug in the scheduler or its caller, not bad input, and
// are raised with panic rather than returned.
type InvariantError struct {
	// Code identifies the invariant.
	Code InvariantCode

	// Message is a human-readable description.
	Message string

	// ID is the cancellation key involved, if any.
	ID CancelID
}

// InvariantCode categorizes invariant violations.
type InvariantCode string

const (
	// ErrCodeStaleFire means a timer fired for a key whose registry entry
	// belongs to different work, without having been cancelled.
	ErrCodeStaleFire InvariantCode = "STALE_FIRE"
)

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s: %s (id=%v)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvariantError reports whether err is or wraps an InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
