package identified

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID means an insert would place a second element with an
	// identity already present. This breaks the collection's uniqueness
	// invariant and indicates a bug in the caller.
	ErrDuplicateID = errors.New("identified: duplicate identity")

	// ErrIdentityChanged means an Update callback altered the element's identity.
	ErrIdentityChanged = errors.New("identified: update changed element identity")

	// ErrOutOfBounds is wrapped by every BoundsError.
	ErrOutOfBounds = errors.New("identified: offset out of bounds")
)

// BoundsError reports an offset outside the collection or view.
type BoundsError struct {
	// Op is the operation that rejected the offset ("insert", "move", "remove", "view").
	Op string

	// Offset is the rejected position.
	Offset int

	// Len is the length the offset was checked against.
	Len int
}

// Error implements the error interface.
func (e *BoundsError) Error() string {
	return fmt.Sprintf("identified: %s offset %d out of bounds for length %d", e.Op, e.Offset, e.Len)
}

// Unwrap lets errors.Is match ErrOutOfBounds.
func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// IsBoundsError reports whether err is or wraps a BoundsError.
func IsBoundsError(err error) bool {
	var be *BoundsError
	return errors.As(err, &be)
}

func duplicateError(id any) error {
	return fmt.Errorf("%w: %v", ErrDuplicateID, id)
}

func identityChangedError(want, got any) error {
	return fmt.Errorf("%w: %v became %v", ErrIdentityChanged, want, got)
}
