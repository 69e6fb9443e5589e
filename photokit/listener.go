package photokit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventPermissionChanged is the event name used for ChangeEvent payloads.
const EventPermissionChanged = "photokit-permission-changed"

// DefaultEventTarget is the recipient channel events are addressed to.
const DefaultEventTarget = "main"

// EventSink delivers events to the embedding application.
type EventSink interface {
	EmitTo(target, event string, payload any) error
}

// ChangeSource is a platform mechanism that reports status changes as they
// happen. Start is called at most once, when the first listener registers;
// the source must call onChange for every change it observes.
//
// No PhotoKit-backed source exists yet. Without one, changes reach the
// Registry only through an external coordinator such as Watcher.
type ChangeSource interface {
	Start(onChange func(level AccessLevel, status AuthorizationStatus)) error
}

// Registry tracks subscriber interest per access level and fans change
// events out to an EventSink.
type Registry struct {
	sink   EventSink
	target string
	source ChangeSource
	now    func() time.Time
	log    *slog.Logger

	mu        sync.Mutex
	listeners map[string]ListenerInfo

	initMu      sync.Mutex
	initialized bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithEventTarget overrides DefaultEventTarget.
func WithEventTarget(target string) RegistryOption {
	return func(r *Registry) {
		if target != "" {
			r.target = target
		}
	}
}

// WithChangeSource wires a platform change mechanism into the Registry.
func WithChangeSource(src ChangeSource) RegistryOption {
	return func(r *Registry) { r.source = src }
}

// WithRegistryClock overrides time.Now for listener and event timestamps.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithRegistryLogger sets the Registry's logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry returns an empty Registry emitting to sink.
func NewRegistry(sink EventSink, opts ...RegistryOption) *Registry {
	r := &Registry{
		sink:      sink,
		target:    DefaultEventTarget,
		now:       time.Now,
		log:       slog.New(slog.DiscardHandler),
		listeners: make(map[string]ListenerInfo),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterListener records interest in changes for level and returns the
// new listener's id. The change source, if any, is started on first use.
func (r *Registry) RegisterListener(level AccessLevel) (string, error) {
	if !level.Valid() {
		return "", InvalidAccessLevelError(level)
	}
	info := ListenerInfo{
		ID:          uuid.NewString(),
		AccessLevel: level,
		CreatedAt:   r.now().Unix(),
		Active:      true,
	}

	r.mu.Lock()
	r.listeners[info.ID] = info
	r.mu.Unlock()

	if err := r.initNotifications(); err != nil {
		r.mu.Lock()
		delete(r.listeners, info.ID)
		r.mu.Unlock()
		return "", err
	}

	r.log.Debug("photokit listener registered", "id", info.ID, "level", level)
	return info.ID, nil
}

// UnregisterListener removes a listener. Unknown ids are reported with
// ErrListenerNotFound, so a double unregister is an error.
func (r *Registry) UnregisterListener(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listeners[id]; !ok {
		return fmt.Errorf("%w: %s", ErrListenerNotFound, id)
	}
	delete(r.listeners, id)
	r.log.Debug("photokit listener unregistered", "id", id)
	return nil
}

// SetListenerActive pauses (false) or resumes (true) a listener. Paused
// listeners keep their id but receive no events and are not reported by
// ActiveListeners.
func (r *Registry) SetListenerActive(id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.listeners[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrListenerNotFound, id)
	}
	info.Active = active
	r.listeners[id] = info
	return nil
}

// Listener returns the listener with id, paused or not.
func (r *Registry) Listener(id string) (ListenerInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.listeners[id]
	return info, ok
}

// ActiveListeners returns a snapshot of the active listeners.
func (r *Registry) ActiveListeners() []ListenerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ListenerInfo, 0, len(r.listeners))
	for _, info := range r.listeners {
		if info.Active {
			out = append(out, info)
		}
	}
	return out
}

// WatchedLevels returns the access levels with at least one active
// listener, in native order.
func (r *Registry) WatchedLevels() []AccessLevel {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []AccessLevel
	for _, level := range AccessLevels() {
		if r.watchingLocked(level) {
			out = append(out, level)
		}
	}
	return out
}

// ClearAllListeners removes every listener.
func (r *Registry) ClearAllListeners() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.listeners)
}

// HandlePermissionChange emits one ChangeEvent when any active listener
// targets level, however many there are. With no such listener it does
// nothing.
func (r *Registry) HandlePermissionChange(status AuthorizationStatus, level AccessLevel) error {
	r.mu.Lock()
	watching := r.watchingLocked(level)
	r.mu.Unlock()
	if !watching {
		return nil
	}

	ev := NewChangeEvent(status, level, r.now())
	if err := r.sink.EmitTo(r.target, EventPermissionChanged, ev); err != nil {
		r.log.Error("photokit change event not delivered", "level", level, "status", status, "err", err)
		return fmt.Errorf("%w: %w", ErrEventEmitFailed, err)
	}
	return nil
}

func (r *Registry) watchingLocked(level AccessLevel) bool {
	for _, info := range r.listeners {
		if info.Active && info.AccessLevel == level {
			return true
		}
	}
	return false
}

func (r *Registry) initNotifications() error {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	if r.initialized {
		return nil
	}
	if r.source == nil {
		r.log.Debug("no native change source; changes arrive via HandlePermissionChange only")
	} else if err := r.source.Start(r.onNativeChange); err != nil {
		return fmt.Errorf("photokit: start change source: %w", err)
	}
	r.initialized = true
	return nil
}

func (r *Registry) onNativeChange(level AccessLevel, status AuthorizationStatus) {
	if err := r.HandlePermissionChange(status, level); err != nil {
		r.log.Warn("photokit native change dropped", "level", level, "err", err)
	}
}
