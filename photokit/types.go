package photokit

import (
	"fmt"
	"time"
)

// AccessLevel is the granularity of photo library access being checked or
// requested. The string values are the wire encoding.
type AccessLevel string

const (
	Read      AccessLevel = "read"      // PHAccessLevelRead
	ReadWrite AccessLevel = "readWrite" // PHAccessLevelReadWrite
	AddOnly   AccessLevel = "addOnly"   // PHAccessLevelAddOnly
)

// AccessLevels returns every access level in native order.
func AccessLevels() []AccessLevel {
	return []AccessLevel{Read, ReadWrite, AddOnly}
}

// Valid reports whether l is one of the declared access levels.
func (l AccessLevel) Valid() bool {
	switch l {
	case Read, ReadWrite, AddOnly:
		return true
	}
	return false
}

// Native returns the PHAccessLevel value for l, or 0 if l is not valid.
func (l AccessLevel) Native() int {
	switch l {
	case Read:
		return 1
	case ReadWrite:
		return 2
	case AddOnly:
		return 3
	}
	return 0
}

// AccessLevelFromNative decodes a PHAccessLevel value.
// The second result is false for values outside 1..3.
func AccessLevelFromNative(v int) (AccessLevel, bool) {
	switch v {
	case 1:
		return Read, true
	case 2:
		return ReadWrite, true
	case 3:
		return AddOnly, true
	}
	return "", false
}

// ParseAccessLevel parses a wire tag such as "readWrite".
func ParseAccessLevel(s string) (AccessLevel, error) {
	l := AccessLevel(s)
	if !l.Valid() {
		return "", InvalidAccessLevelError(s)
	}
	return l, nil
}

func (l AccessLevel) String() string { return string(l) }

// UnmarshalText rejects unknown tags instead of storing them.
func (l *AccessLevel) UnmarshalText(b []byte) error {
	v, err := ParseAccessLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// AuthorizationStatus is the system's current decision for an access level.
// The string values are the wire encoding.
type AuthorizationStatus string

const (
	NotDetermined AuthorizationStatus = "notDetermined"
	Restricted    AuthorizationStatus = "restricted"
	Denied        AuthorizationStatus = "denied"
	Authorized    AuthorizationStatus = "authorized"
	Limited       AuthorizationStatus = "limited"
)

// Valid reports whether s is one of the declared statuses.
func (s AuthorizationStatus) Valid() bool {
	_, ok := statusNative[s]
	return ok
}

var statusNative = map[AuthorizationStatus]int{
	NotDetermined: 0,
	Restricted:    1,
	Denied:        2,
	Authorized:    3,
	Limited:       4,
}

// Native returns the PHAuthorizationStatus value for s, or -1 if s is not valid.
func (s AuthorizationStatus) Native() int {
	if v, ok := statusNative[s]; ok {
		return v
	}
	return -1
}

// StatusFromNative decodes a PHAuthorizationStatus value.
// The second result is false for values outside 0..4.
func StatusFromNative(v int) (AuthorizationStatus, bool) {
	switch v {
	case 0:
		return NotDetermined, true
	case 1:
		return Restricted, true
	case 2:
		return Denied, true
	case 3:
		return Authorized, true
	case 4:
		return Limited, true
	}
	return "", false
}

// IsAuthorized is true for Authorized and Limited.
func (s AuthorizationStatus) IsAuthorized() bool {
	return s == Authorized || s == Limited
}

func (s AuthorizationStatus) String() string { return string(s) }

// UnmarshalText rejects unknown tags instead of storing them.
func (s *AuthorizationStatus) UnmarshalText(b []byte) error {
	v := AuthorizationStatus(b)
	if !v.Valid() {
		return fmt.Errorf("photokit: unknown authorization status %q", string(b))
	}
	*s = v
	return nil
}

// ListenerInfo describes one registered interest in status changes.
type ListenerInfo struct {
	ID          string      `json:"id"`
	AccessLevel AccessLevel `json:"access_level"`
	CreatedAt   int64       `json:"created_at"` // unix seconds
	Active      bool        `json:"active"`
}

// ChangeEvent is emitted when the status for a watched access level changes.
type ChangeEvent struct {
	NewStatus   AuthorizationStatus `json:"new_status"`
	AccessLevel AccessLevel         `json:"access_level"`
	Timestamp   int64               `json:"timestamp"` // unix milliseconds
}

// NewChangeEvent stamps an event with t.
func NewChangeEvent(status AuthorizationStatus, level AccessLevel, t time.Time) ChangeEvent {
	return ChangeEvent{
		NewStatus:   status,
		AccessLevel: level,
		Timestamp:   t.UnixMilli(),
	}
}
