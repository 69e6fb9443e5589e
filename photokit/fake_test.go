package photokit

import (
	"errors"
	"sync"
	"time"
)

// fakeBridge counts native calls and returns scripted answers.
type fakeBridge struct {
	mu        sync.Mutex
	status    map[AccessLevel]AuthorizationStatus
	requestTo AuthorizationStatus
	checkErr  error
	count     uint64
	countErr  error
	available bool

	checks   int
	requests int
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{status: make(map[AccessLevel]AuthorizationStatus)}
}

func (f *fakeBridge) set(level AccessLevel, s AuthorizationStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[level] = s
}

func (f *fakeBridge) CheckAuthorizationStatus(level AccessLevel) (AuthorizationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	if f.checkErr != nil {
		return "", f.checkErr
	}
	if s, ok := f.status[level]; ok {
		return s, nil
	}
	return NotDetermined, nil
}

func (f *fakeBridge) RequestAuthorization(level AccessLevel) (AuthorizationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if f.requestTo == "" {
		return "", &RequestFailedError{Detail: "no answer scripted"}
	}
	f.status[level] = f.requestTo
	return f.requestTo, nil
}

func (f *fakeBridge) PhotosCount() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, f.countErr
}

func (f *fakeBridge) IsFrameworkAvailable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeBridge) calls() (checks, requests int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks, f.requests
}

type emitted struct {
	target  string
	event   string
	payload ChangeEvent
}

// recordingSink keeps every event it is given.
type recordingSink struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (s *recordingSink) EmitTo(target, event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	ev, _ := payload.(ChangeEvent)
	s.events = append(s.events, emitted{target: target, event: event, payload: ev})
	return nil
}

func (s *recordingSink) all() []emitted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]emitted(nil), s.events...)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var errSinkClosed = errors.New("sink closed")
