package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/tmc/macperms"
	"github.com/tmc/macperms/commands"
	"github.com/tmc/macperms/photokit"
)

type levelStatus struct {
	AccessLevel photokit.AccessLevel         `json:"access_level"`
	Status      photokit.AuthorizationStatus `json:"status"`
}

func newPhotosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Photo library authorization",
	}
	cmd.AddCommand(
		newPhotosStatusCmd(a),
		newPhotosRequestCmd(a),
		newPhotosCountCmd(a),
		newPhotosWatchCmd(a),
	)
	return cmd
}

func (a *app) service(sink photokit.EventSink) *commands.Service {
	return commands.NewService(sink, commands.WithConfig(a.cfg), commands.WithLogger(a.log))
}

func newPhotosStatusCmd(a *app) *cobra.Command {
	levels := newLevelsValue(photokit.AccessLevels()...)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the authorization status per access level",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.service(commands.DiscardSink)
			var results []levelStatus
			for _, l := range levels.Levels() {
				results = append(results, levelStatus{AccessLevel: l, Status: svc.CheckPhotoKitPermission(l)})
			}
			return a.emit(results, func(w io.Writer) {
				if !svc.Manager.IsFrameworkAvailable() {
					fmt.Fprintln(w, "# photo library authority not available; statuses are fallbacks")
				}
				for _, r := range results {
					fmt.Fprintf(w, "%-10s %s\n", r.AccessLevel, r.Status)
				}
			})
		},
	}
	cmd.Flags().Var(levels, "level", "access level: read, readWrite or addOnly (repeatable)")
	return cmd
}

func newPhotosRequestCmd(a *app) *cobra.Command {
	level := newLevelsValue(photokit.ReadWrite)
	var openSettings bool
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Ask for photo library access",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.service(commands.DiscardSink)
			var results []levelStatus
			for _, l := range level.Levels() {
				status, err := svc.RequestPhotoKitPermission(l)
				if err != nil {
					return err
				}
				results = append(results, levelStatus{AccessLevel: l, Status: status})
			}
			denied := false
			for _, r := range results {
				if r.Status == photokit.Denied || r.Status == photokit.Restricted {
					denied = true
				}
			}
			if denied && openSettings {
				if err := macperms.OpenPhotosSettings(); err != nil {
					return err
				}
			}
			return a.emit(results, func(w io.Writer) {
				for _, r := range results {
					fmt.Fprintf(w, "%-10s %s\n", r.AccessLevel, r.Status)
				}
				if denied && !openSettings {
					fmt.Fprintln(w, "access was refused earlier; change it in Privacy & Security > Photos (--open-settings)")
				}
			})
		},
	}
	cmd.Flags().Var(level, "level", "access level to request (repeatable)")
	cmd.Flags().BoolVar(&openSettings, "open-settings", false, "open the Photos settings pane when access is denied")
	return cmd
}

func newPhotosCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count images in the photo library (needs read access)",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.service(commands.DiscardSink).PhotosCount()
			if err != nil {
				return err
			}
			return a.emit(map[string]uint64{"count": n}, func(w io.Writer) {
				fmt.Fprintln(w, n)
			})
		},
	}
}

func newPhotosWatchCmd(a *app) *cobra.Command {
	levels := newLevelsValue(photokit.AccessLevels()...)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print authorization changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			var mu sync.Mutex
			sink := commands.FuncSink(func(target, event string, payload any) error {
				ev, ok := payload.(photokit.ChangeEvent)
				if !ok {
					return fmt.Errorf("unexpected payload %T", payload)
				}
				mu.Lock()
				defer mu.Unlock()
				return a.emit(ev, func(w io.Writer) {
					fmt.Fprintf(w, "%-10s -> %s\n", ev.AccessLevel, ev.NewStatus)
				})
			})
			return a.watch(cmd.Context(), a.service(sink), levels.Levels())
		},
	}
	cmd.Flags().Var(levels, "level", "access level to watch (repeatable)")
	return cmd
}

func (a *app) watch(ctx context.Context, svc *commands.Service, levels []photokit.AccessLevel) error {
	for _, l := range levels {
		id, err := svc.RegisterPhotoKitListener(l)
		if err != nil {
			return err
		}
		a.log.Debug("watching", "level", l, "listener", id)
	}
	defer svc.Registry.ClearAllListeners()

	err := svc.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
