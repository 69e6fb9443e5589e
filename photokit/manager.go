package photokit

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultCacheTTL is how long an observed status is served from cache.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	status     AuthorizationStatus
	observedAt time.Time
}

// Manager is a cached, coordinated view over a Bridge. It is the component
// callers should use for photo library permission queries.
//
// The cache lock is never held across a bridge call. Concurrent misses for
// the same level each reach the bridge; the last write wins.
type Manager struct {
	bridge Bridge // nil when the platform has no photo library authority
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger

	mu    sync.Mutex
	cache map[AccessLevel]cacheEntry
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	bridge     Bridge
	hasBridge  bool
	ttl        time.Duration
	now        func() time.Time
	log        *slog.Logger
	onDecision DecisionFunc
}

// WithBridge replaces the platform bridge. Passing nil selects the
// unsupported-platform behaviour.
func WithBridge(b Bridge) ManagerOption {
	return func(c *managerConfig) {
		c.bridge = b
		c.hasBridge = true
	}
}

// WithCacheTTL sets the cache lifetime. Non-positive values are ignored.
func WithCacheTTL(ttl time.Duration) ManagerOption {
	return func(c *managerConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides time.Now for cache ageing.
func WithClock(now func() time.Time) ManagerOption {
	return func(c *managerConfig) { c.now = now }
}

// WithLogger sets the logger used by the Manager and its platform bridge.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(c *managerConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDecisionHandler receives the user's eventual answer to a prompt raised
// by RequestAuthorization. Only the platform bridge honours it.
func WithDecisionHandler(fn DecisionFunc) ManagerOption {
	return func(c *managerConfig) { c.onDecision = fn }
}

// NewManager returns a Manager over the platform bridge unless WithBridge
// is given.
func NewManager(opts ...ManagerOption) *Manager {
	cfg := managerConfig{
		ttl: DefaultCacheTTL,
		now: time.Now,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.hasBridge {
		cfg.bridge = newPlatformBridge(cfg.log, cfg.onDecision)
	}
	return &Manager{
		bridge: cfg.bridge,
		ttl:    cfg.ttl,
		now:    cfg.now,
		log:    cfg.log,
		cache:  make(map[AccessLevel]cacheEntry),
	}
}

// CacheTTL returns the configured cache lifetime.
func (m *Manager) CacheTTL() time.Duration { return m.ttl }

// CheckAuthorizationStatus returns the cached status for level while it is
// younger than the TTL, and otherwise asks the bridge and caches the answer.
func (m *Manager) CheckAuthorizationStatus(level AccessLevel) (AuthorizationStatus, error) {
	if s, ok := m.cached(level); ok {
		m.log.Debug("photokit cache hit", "level", level, "status", s)
		return s, nil
	}
	m.log.Debug("photokit cache miss", "level", level)
	return m.Refresh(level)
}

// Refresh bypasses the cache read, asks the bridge, and stores the result.
func (m *Manager) Refresh(level AccessLevel) (AuthorizationStatus, error) {
	if !level.Valid() {
		return "", &Error{Op: "check authorization status", Level: level, Err: InvalidAccessLevelError(level)}
	}
	if m.bridge == nil {
		return m.store(level, Authorized), nil
	}
	s, err := m.bridge.CheckAuthorizationStatus(level)
	if err != nil {
		return "", &Error{Op: "check authorization status", Level: level, Err: err}
	}
	return m.store(level, s), nil
}

// RequestAuthorization always reaches the bridge, since the intent is to
// raise a fresh prompt, and overwrites the cached entry with the result.
func (m *Manager) RequestAuthorization(level AccessLevel) (AuthorizationStatus, error) {
	if !level.Valid() {
		return "", &Error{Op: "request authorization", Level: level, Err: InvalidAccessLevelError(level)}
	}
	if m.bridge == nil {
		return m.store(level, Authorized), nil
	}
	s, err := m.bridge.RequestAuthorization(level)
	if err != nil {
		return "", &Error{Op: "request authorization", Level: level, Err: err}
	}
	return m.store(level, s), nil
}

// ClearCache drops the entry for *level, or every entry when level is nil.
func (m *Manager) ClearCache(level *AccessLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level == nil {
		clear(m.cache)
		return
	}
	delete(m.cache, *level)
}

// IsFrameworkAvailable reports false on platforms without a photo library
// authority, distinguishing "absent" from "present but nothing authorized".
func (m *Manager) IsFrameworkAvailable() bool {
	if m.bridge == nil {
		return false
	}
	return m.bridge.IsFrameworkAvailable()
}

// PhotosCount returns the number of images in the library. It needs read
// authorization. Platforms without the authority report 0.
func (m *Manager) PhotosCount() (uint64, error) {
	if m.bridge == nil {
		return 0, nil
	}
	n, err := m.bridge.PhotosCount()
	if err != nil {
		return 0, &Error{Op: "count photos", Err: err}
	}
	return n, nil
}

func (m *Manager) cached(level AccessLevel) (AuthorizationStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cache[level]
	if !ok || m.now().Sub(e.observedAt) >= m.ttl {
		return "", false
	}
	return e.status, true
}

func (m *Manager) store(level AccessLevel, s AuthorizationStatus) AuthorizationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[level] = cacheEntry{status: s, observedAt: m.now()}
	return s
}
