package photokit

import (
	"errors"
	"fmt"
)

var (
	ErrFrameworkUnavailable = errors.New("photokit: framework unavailable")
	// ErrRequestTimeout is reserved; no operation enforces a timeout yet.
	ErrRequestTimeout = errors.New("photokit: authorization request timed out")

	ErrListenerNotFound = errors.New("photokit: listener not found")
	// ErrListenerAlreadyExists is reserved; ids are random and never re-used.
	ErrListenerAlreadyExists = errors.New("photokit: listener already exists")
	ErrEventEmitFailed       = errors.New("photokit: event emit failed")

	// ErrLockFailed is reserved. sync.Mutex cannot be poisoned, so no
	// operation currently returns it.
	ErrLockFailed = errors.New("photokit: lock acquisition failed")
	// ErrPlatformNotSupported is reserved; unsupported platforms degrade to
	// fixed values instead of failing.
	ErrPlatformNotSupported = errors.New("photokit: platform not supported")
)

// InvalidAccessLevelError carries an access level tag that is not read,
// readWrite or addOnly.
type InvalidAccessLevelError string

func (e InvalidAccessLevelError) Error() string {
	return fmt.Sprintf("photokit: invalid access level %q (want read, readWrite or addOnly)", string(e))
}

// InvalidAuthorizationStatusError reports a native status outside 0..4.
type InvalidAuthorizationStatusError int

func (e InvalidAuthorizationStatusError) Error() string {
	return fmt.Sprintf("photokit: invalid authorization status: %d", int(e))
}

// RequestFailedError reports a native request that could not complete.
type RequestFailedError struct {
	Detail string
	Err    error
}

func (e *RequestFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("photokit: request failed: %s: %v", e.Detail, e.Err)
	}
	return "photokit: request failed: " + e.Detail
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// Error is returned by Manager operations and wraps the bridge error.
type Error struct {
	Op    string      // e.g. "check authorization status"
	Level AccessLevel // empty when the operation is not level-specific
	Err   error
}

func (e *Error) Error() string {
	if e.Level != "" {
		return fmt.Sprintf("photokit: %s (%s): %v", e.Op, e.Level, e.Err)
	}
	return fmt.Sprintf("photokit: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
