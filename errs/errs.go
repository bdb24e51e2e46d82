package errs

import (
	"github.com/pkg/errors"
)

// Sentinel errors of the library. Callers match them with errors.Is; call
// sites attach context with errors.Wrapf.
var (
	// ErrInvalidArgument means a malformed shape or argument was passed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexOutOfRange means an index or coordinate lies outside [0, length).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrTypeMismatch means leaf access was attempted where a sub-array exists,
	// or the other way around.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNoMatchingConstructor means a factory selected a constructor the
	// element type does not expose.
	ErrNoMatchingConstructor = errors.New("no matching constructor")

	// ErrAllocation means the underlying storage allocation failed.
	ErrAllocation = errors.New("allocation failed")

	// ErrIllegalFieldCopy means a shallow copy would overwrite a write-once
	// field without explicit opt-in.
	ErrIllegalFieldCopy = errors.New("illegal field copy")

	// ErrInvalidState means an operation was attempted in a lifecycle state
	// that does not permit it.
	ErrInvalidState = errors.New("invalid state")
)
