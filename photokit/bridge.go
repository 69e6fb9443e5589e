package photokit

import (
	"fmt"
	"log/slog"
)

// Bridge is the single point of contact with the system photo library
// authority. Implementations carry no state of their own that matters to
// callers; the authority itself is process-global.
type Bridge interface {
	// CheckAuthorizationStatus returns the current status for level.
	CheckAuthorizationStatus(level AccessLevel) (AuthorizationStatus, error)

	// RequestAuthorization asks the system for access, which may show a
	// prompt, and returns the status observed immediately afterwards. The
	// user's eventual answer can arrive later.
	RequestAuthorization(level AccessLevel) (AuthorizationStatus, error)

	// PhotosCount returns the number of image assets in the library.
	// It requires read authorization.
	PhotosCount() (uint64, error)

	// IsFrameworkAvailable is a best-effort check; a true result does not
	// guarantee the next call succeeds.
	IsFrameworkAvailable() bool
}

// DecisionFunc receives the user's answer to an authorization prompt once
// the system delivers it.
type DecisionFunc func(level AccessLevel, status AuthorizationStatus)

// failOpen runs a native status call and converts a panic, or a failure to
// reach the authority, into NotDetermined. Decode errors pass through.
func failOpen(log *slog.Logger, op string, level AccessLevel, call func() (AuthorizationStatus, error)) (status AuthorizationStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("native call panicked, reporting notDetermined",
				"op", op, "level", level, "panic", fmt.Sprint(r))
			status, err = NotDetermined, nil
		}
	}()
	status, err = call()
	if err != nil && isUnreachable(err) {
		log.Warn("native authority unreachable, reporting notDetermined",
			"op", op, "level", level, "err", err)
		return NotDetermined, nil
	}
	return status, err
}

func isUnreachable(err error) bool {
	switch err.(type) {
	case InvalidAuthorizationStatusError, InvalidAccessLevelError:
		return false
	}
	return true
}
