package macperms

import (
	"errors"
	"fmt"
)

// Error is returned when a permission request or a settings pane could not
// be handled. Help, when set, tells the user what to do by hand, usually
// which pane of Privacy & Security to visit.
type Error struct {
	Op   string // "request", "open settings"
	Kind Kind   // empty when no single permission is involved
	Err  error
	Help string
}

func (e *Error) Error() string {
	op := e.Op
	if e.Kind != "" {
		op += " " + string(e.Kind)
	}
	msg := fmt.Sprintf("macperms: %s: %v", op, e.Err)
	if e.Help != "" {
		msg += "\n  hint: " + e.Help
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NeedsSettings reports whether err carries a hint to finish the job in
// System Settings.
func NeedsSettings(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Help != ""
}
