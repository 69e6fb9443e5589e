package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tmc/macperms/internal/tcc"
)

func newTCCCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tcc",
		Short: "Inspect and reset stored privacy decisions",
	}
	cmd.AddCommand(newTCCListCmd(a), newTCCResetCmd(a), newTCCServicesCmd(a))
	return cmd
}

func newTCCListCmd(a *app) *cobra.Command {
	var (
		service string
		client  string
		dbFlag  string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List decisions stored in a TCC database",
		Long: "List decisions stored in a TCC database. Reading the database needs Full Disk Access.\n\n" +
			"--db is user (Photos, Camera, Microphone), system, or a file path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := tccDBPath(dbFlag)
			if err != nil {
				return err
			}
			f := tcc.Filter{Client: client}
			if service != "" {
				s, ok := tcc.LookupService(service)
				if !ok {
					return fmt.Errorf("unknown service %q (see `macperms tcc services`)", service)
				}
				f.Service = s.Name
			}

			db, err := tcc.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := db.ListEntries(cmd.Context(), f)
			if err != nil {
				return err
			}
			a.log.Debug("tcc entries", "db", db.Path(), "count", len(entries))

			if format == "" && a.wantJSON() {
				format = "json"
			}
			out, err := tcc.FormatEntries(entries, format)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, out)
			if !strings.HasSuffix(out, "\n") {
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "service, full or short name (e.g. Photos)")
	cmd.Flags().StringVar(&client, "client", "", "bundle id or executable path")
	cmd.Flags().StringVar(&dbFlag, "db", "user", "database: user, system or a path")
	cmd.Flags().StringVar(&format, "format", "", "output format: table or json")
	return cmd
}

func tccDBPath(flag string) (string, error) {
	switch flag {
	case "", "user":
		return tcc.UserDBPath()
	case "system":
		return tcc.SystemDBPath, nil
	}
	return flag, nil
}

func newTCCResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <service|All> [bundle-id]",
		Short: "Forget stored decisions so the prompt appears again",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bundleID string
			if len(args) == 2 {
				bundleID = args[1]
			}
			if err := tcc.Reset(cmd.Context(), a.log, args[0], bundleID); err != nil {
				return err
			}
			return a.emit(map[string]string{"reset": args[0], "bundle_id": bundleID}, func(w io.Writer) {
				if bundleID == "" {
					fmt.Fprintf(w, "reset %s for all clients\n", args[0])
					return
				}
				fmt.Fprintf(w, "reset %s for %s\n", args[0], bundleID)
			})
		},
	}
}

func newTCCServicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List known TCC services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services := tcc.KnownServices()
			return a.emit(services, func(w io.Writer) {
				for _, s := range services {
					fmt.Fprintf(w, "%-22s %-32s %s\n", s.Short, s.Name, s.Description)
				}
			})
		},
	}
}
