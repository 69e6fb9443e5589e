package photokit

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultPollInterval is how often a Watcher re-reads watched levels.
const DefaultPollInterval = 2 * time.Second

// Watcher connects observed status changes to a Registry. It polls the
// Manager for every level the Registry is watching and also accepts
// observations pushed from elsewhere, such as authorization prompt answers.
//
// The first observation of a level only records a baseline; events are
// emitted for transitions after that. A level that loses its last active
// listener is forgotten, so watching it again starts from a new baseline.
type Watcher struct {
	manager  *Manager
	registry *Registry
	interval time.Duration
	log      *slog.Logger

	mu   sync.Mutex
	last map[AccessLevel]AuthorizationStatus
}

// NewWatcher returns a Watcher polling at interval, or DefaultPollInterval
// when interval is not positive.
func NewWatcher(m *Manager, r *Registry, interval time.Duration, log *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		manager:  m,
		registry: r,
		interval: interval,
		log:      log,
		last:     make(map[AccessLevel]AuthorizationStatus),
	}
}

// Run polls until ctx is done and returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Poll()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll refreshes every watched level once.
func (w *Watcher) Poll() {
	levels := w.registry.WatchedLevels()
	w.retain(levels)
	for _, level := range levels {
		status, err := w.manager.Refresh(level)
		if err != nil {
			w.log.Warn("photokit poll failed", "level", level, "err", err)
			continue
		}
		w.Observe(level, status)
	}
}

// Baseline records status for level without comparing it to the previous
// observation.
func (w *Watcher) Baseline(level AccessLevel, status AuthorizationStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last[level] = status
}

// Prune forgets levels that no active listener watches.
func (w *Watcher) Prune() {
	w.retain(w.registry.WatchedLevels())
}

func (w *Watcher) retain(levels []AccessLevel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for level := range w.last {
		if !slices.Contains(levels, level) {
			delete(w.last, level)
		}
	}
}

// Observe records status for level and forwards it to the Registry when it
// differs from the previous observation.
func (w *Watcher) Observe(level AccessLevel, status AuthorizationStatus) {
	w.mu.Lock()
	prev, seen := w.last[level]
	w.last[level] = status
	w.mu.Unlock()

	if !seen || prev == status {
		return
	}
	w.log.Debug("photokit status changed", "level", level, "from", prev, "to", status)
	if err := w.registry.HandlePermissionChange(status, level); err != nil {
		w.log.Warn("photokit change not delivered", "level", level, "err", err)
	}
}
