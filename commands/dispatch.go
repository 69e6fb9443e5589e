package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tmc/macperms"
	"github.com/tmc/macperms/photokit"
)

// Command names for the photo library commands.
const (
	CmdCheckPhotoKit      = "check_photokit_permission"
	CmdRequestPhotoKit    = "request_photokit_permission"
	CmdRegisterListener   = "register_photokit_permission_listener"
	CmdUnregisterListener = "unregister_photokit_permission_listener"
	CmdPauseListener      = "pause_photokit_permission_listener"
	CmdResumeListener     = "resume_photokit_permission_listener"
	CmdListListeners      = "get_photokit_permission_listeners"
	CmdPhotosCount        = "get_photos_count"
)

// ErrUnknownCommand is returned by Dispatch for unregistered names.
var ErrUnknownCommand = errors.New("unknown command")

// Args decodes a command's arguments into a struct.
type Args interface {
	Decode(v any) error
}

// Handler runs one command.
type Handler func(ctx context.Context, args Args) (any, error)

// AccessLevelArgs carries {"accessLevel": "..."}.
type AccessLevelArgs struct {
	AccessLevel photokit.AccessLevel `json:"accessLevel"`
}

// ListenerArgs carries {"listenerId": "..."}.
type ListenerArgs struct {
	ListenerID string `json:"listenerId"`
}

// Dispatcher maps command names to handlers.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher registers every command of s.
func NewDispatcher(s *Service) *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]Handler)}

	for _, k := range macperms.Kinds() {
		d.handlers["check_"+k.Ident()+"_permission"] = func(context.Context, Args) (any, error) {
			return s.CheckPermission(k), nil
		}
		d.handlers["request_"+k.Ident()+"_permission"] = func(context.Context, Args) (any, error) {
			return nil, s.RequestPermission(k)
		}
	}

	d.handlers[CmdCheckPhotoKit] = func(_ context.Context, args Args) (any, error) {
		var a AccessLevelArgs
		if err := decodeLevel(args, &a); err != nil {
			// A status check never fails.
			return photokit.NotDetermined, nil
		}
		return s.CheckPhotoKitPermission(a.AccessLevel), nil
	}
	d.handlers[CmdRequestPhotoKit] = func(_ context.Context, args Args) (any, error) {
		var a AccessLevelArgs
		if err := decodeLevel(args, &a); err != nil {
			return nil, err
		}
		return s.RequestPhotoKitPermission(a.AccessLevel)
	}
	d.handlers[CmdRegisterListener] = func(_ context.Context, args Args) (any, error) {
		var a AccessLevelArgs
		if err := decodeLevel(args, &a); err != nil {
			return nil, err
		}
		return s.RegisterPhotoKitListener(a.AccessLevel)
	}
	d.handlers[CmdUnregisterListener] = listenerHandler(s.UnregisterPhotoKitListener)
	d.handlers[CmdPauseListener] = listenerHandler(s.PausePhotoKitListener)
	d.handlers[CmdResumeListener] = listenerHandler(s.ResumePhotoKitListener)
	d.handlers[CmdListListeners] = func(context.Context, Args) (any, error) {
		return s.PhotoKitListeners(), nil
	}
	d.handlers[CmdPhotosCount] = func(context.Context, Args) (any, error) {
		return s.PhotosCount()
	}
	return d
}

func listenerHandler(fn func(id string) error) Handler {
	return func(_ context.Context, args Args) (any, error) {
		var a ListenerArgs
		if err := args.Decode(&a); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if a.ListenerID == "" {
			return nil, errors.New("invalid arguments: listenerId is required")
		}
		return nil, fn(a.ListenerID)
	}
}

// decodeLevel decodes and validates accessLevel. Decoders that bypass
// UnmarshalText can leave an unknown tag in place, so it is checked again.
func decodeLevel(args Args, a *AccessLevelArgs) error {
	if err := args.Decode(a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if _, err := photokit.ParseAccessLevel(string(a.AccessLevel)); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// Dispatch runs the named command.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args Args) (any, error) {
	h, ok := d.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if args == nil {
		args = noArgs{}
	}
	return h(ctx, args)
}

// Commands returns the registered command names, sorted.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type noArgs struct{}

func (noArgs) Decode(any) error { return nil }
