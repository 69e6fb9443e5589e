// Package commands is the command surface an embedding application calls:
// one method per command, a name-based Dispatcher, and a stream Server.
package commands

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/tmc/macperms"
	"github.com/tmc/macperms/internal/config"
	"github.com/tmc/macperms/photokit"
)

// Service holds the photo library Manager and Registry shared by every
// command, plus the Watcher that feeds observed changes to the Registry.
type Service struct {
	Manager  *photokit.Manager
	Registry *photokit.Registry
	Watcher  *photokit.Watcher

	log     *slog.Logger
	check   func(macperms.Kind) bool
	request func(macperms.Kind) error
}

// Option configures a Service.
type Option func(*options)

type options struct {
	log          *slog.Logger
	cacheTTL     time.Duration
	target       string
	pollInterval time.Duration
	managerOpts  []photokit.ManagerOption
	registryOpts []photokit.RegistryOption
	check        func(macperms.Kind) bool
	request      func(macperms.Kind) error
}

// WithConfig applies cache_ttl, event_target and poll_interval.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cacheTTL = cfg.CacheTTL.Std()
		o.target = cfg.EventTarget
		o.pollInterval = cfg.PollInterval.Std()
	}
}

// WithLogger sets the logger for the Service and its components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithManagerOptions passes extra options to photokit.NewManager.
func WithManagerOptions(opts ...photokit.ManagerOption) Option {
	return func(o *options) { o.managerOpts = append(o.managerOpts, opts...) }
}

// WithRegistryOptions passes extra options to photokit.NewRegistry.
func WithRegistryOptions(opts ...photokit.RegistryOption) Option {
	return func(o *options) { o.registryOpts = append(o.registryOpts, opts...) }
}

// WithPermissionFuncs replaces macperms.Check and macperms.Request.
func WithPermissionFuncs(check func(macperms.Kind) bool, request func(macperms.Kind) error) Option {
	return func(o *options) {
		o.check = check
		o.request = request
	}
}

// NewService wires a Manager, a Registry emitting to sink, and a Watcher.
// Answers to authorization prompts are forwarded to the Watcher.
func NewService(sink photokit.EventSink, opts ...Option) *Service {
	o := options{
		log:     slog.New(slog.DiscardHandler),
		check:   macperms.Check,
		request: macperms.Request,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{log: o.log, check: o.check, request: o.request}

	managerOpts := []photokit.ManagerOption{
		photokit.WithLogger(o.log),
		photokit.WithCacheTTL(o.cacheTTL),
		photokit.WithDecisionHandler(func(level photokit.AccessLevel, status photokit.AuthorizationStatus) {
			s.Watcher.Observe(level, status)
		}),
	}
	s.Manager = photokit.NewManager(append(managerOpts, o.managerOpts...)...)

	registryOpts := []photokit.RegistryOption{
		photokit.WithRegistryLogger(o.log),
		photokit.WithEventTarget(o.target),
	}
	s.Registry = photokit.NewRegistry(sink, append(registryOpts, o.registryOpts...)...)
	s.Watcher = photokit.NewWatcher(s.Manager, s.Registry, o.pollInterval, o.log)
	return s
}

// Run drives the Watcher until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	return s.Watcher.Run(ctx)
}

// CheckPermission reports whether the process holds k.
func (s *Service) CheckPermission(k macperms.Kind) bool {
	return s.check(k)
}

// RequestPermission asks the system for k.
func (s *Service) RequestPermission(k macperms.Kind) error {
	return s.request(k)
}

// CheckPhotoKitPermission never fails: errors are logged and reported as
// NotDetermined.
func (s *Service) CheckPhotoKitPermission(level photokit.AccessLevel) photokit.AuthorizationStatus {
	status, err := s.Manager.CheckAuthorizationStatus(level)
	if err != nil {
		s.log.Warn("photokit check failed, reporting notDetermined", "level", level, "err", err)
		return photokit.NotDetermined
	}
	return status
}

// RequestPhotoKitPermission asks for level and returns the status observed
// right after the request. The result is also recorded with the Watcher, so
// listeners hear about the change once the prompt is answered.
func (s *Service) RequestPhotoKitPermission(level photokit.AccessLevel) (photokit.AuthorizationStatus, error) {
	status, err := s.Manager.RequestAuthorization(level)
	if err != nil {
		return "", err
	}
	s.Watcher.Observe(level, status)
	return status, nil
}

// RegisterPhotoKitListener starts watching level and returns the listener id.
// When no other listener watches level, the current status becomes the
// Watcher's baseline, so the first event reports an actual change.
func (s *Service) RegisterPhotoKitListener(level photokit.AccessLevel) (string, error) {
	watched := slices.Contains(s.Registry.WatchedLevels(), level)
	id, err := s.Registry.RegisterListener(level)
	if err != nil {
		return "", err
	}
	s.startWatching(level, watched)
	return id, nil
}

// UnregisterPhotoKitListener removes a listener.
func (s *Service) UnregisterPhotoKitListener(id string) error {
	if err := s.Registry.UnregisterListener(id); err != nil {
		return err
	}
	s.Watcher.Prune()
	return nil
}

// PausePhotoKitListener stops events for a listener without removing it.
func (s *Service) PausePhotoKitListener(id string) error {
	if err := s.Registry.SetListenerActive(id, false); err != nil {
		return err
	}
	s.Watcher.Prune()
	return nil
}

// ResumePhotoKitListener re-enables a paused listener.
func (s *Service) ResumePhotoKitListener(id string) error {
	info, ok := s.Registry.Listener(id)
	watched := ok && slices.Contains(s.Registry.WatchedLevels(), info.AccessLevel)
	if err := s.Registry.SetListenerActive(id, true); err != nil {
		return err
	}
	s.startWatching(info.AccessLevel, watched)
	return nil
}

// startWatching records the current status of level with the Watcher. A level
// that was already watched is observed normally. A newly watched one gets a
// baseline read past the cache; if that read fails, the next poll sets it.
func (s *Service) startWatching(level photokit.AccessLevel, watched bool) {
	if watched {
		s.Watcher.Observe(level, s.CheckPhotoKitPermission(level))
		return
	}
	status, err := s.Manager.Refresh(level)
	if err != nil {
		s.log.Warn("photokit baseline read failed", "level", level, "err", err)
		return
	}
	s.Watcher.Baseline(level, status)
}

// PhotoKitListeners returns the active listeners.
func (s *Service) PhotoKitListeners() []photokit.ListenerInfo {
	return s.Registry.ActiveListeners()
}

// PhotosCount returns the number of images in the photo library.
func (s *Service) PhotosCount() (uint64, error) {
	return s.Manager.PhotosCount()
}
