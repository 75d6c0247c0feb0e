// Package errdefs defines the errors returned by the containers in this module.
//
// Errors fall into three categories:
//  1. Usage violations, which indicate a bug in the calling code (for example extracting from an empty queue, or using
//     a handle whose element has already left the queue). These all wrap 'ErrUsage'.
//  2. Resource exhaustion, where an allocator refused to grant more capacity. These wrap 'ErrExhausted' and may be
//     transient.
//  3. Lifecycle errors, returned once a container has been destroyed.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage is wrapped by every error which is the result of a caller breaking the contract of an API.
	ErrUsage = errors.New("usage violation")

	// ErrEmpty is returned when attempting to inspect or extract the head of an empty container.
	ErrEmpty = fmt.Errorf("%w: container is empty", ErrUsage)

	// ErrStaleHandle is returned when a handle is used after the element it names has left the container.
	ErrStaleHandle = fmt.Errorf("%w: handle is stale", ErrUsage)

	// ErrForeignHandle is returned when a handle is used with a container other than the one which issued it.
	ErrForeignHandle = fmt.Errorf("%w: handle belongs to another container", ErrUsage)

	// ErrInvalidPriority is returned when a priority which can't be ordered (NaN) is provided.
	ErrInvalidPriority = fmt.Errorf("%w: priority must not be NaN", ErrUsage)

	// ErrExhausted is returned when an allocator refuses to grant the requested capacity.
	ErrExhausted = errors.New("resources exhausted")

	// ErrDestroyed is returned by any operation on a container that has been destroyed.
	ErrDestroyed = errors.New("container has been destroyed")
)

// IsUsage returns a boolean indicating whether the given error is the result of a usage violation.
func IsUsage(err error) bool {
	return errors.Is(err, ErrUsage)
}

// IsExhausted returns a boolean indicating whether the given error is the result of resource exhaustion.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrExhausted)
}

// HandleError is returned when an operation is attempted using an invalid handle, it carries enough information to
// identify the handle whilst debugging.
type HandleError struct {
	Slot       int
	Generation uint64
	Err        error
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("handle (slot %d, generation %d): %v", e.Slot, e.Generation, e.Err)
}

func (e *HandleError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned by allocators when a grant would exceed their limit.
type ExhaustedError struct {
	Requested int
	Limit     int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v: requested capacity %d exceeds limit of %d", ErrExhausted, e.Requested, e.Limit)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrExhausted
}
