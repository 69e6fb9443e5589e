package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tmc/macperms"
	"github.com/tmc/macperms/internal/tcc"
)

// kindStatus is one line of `macperms check`.
type kindStatus struct {
	Permission macperms.Kind `json:"permission"`
	Granted    bool          `json:"granted"`
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [permission...]",
		Short: "Report whether permissions are granted",
		Long: "Report whether permissions are granted. With no arguments every permission is checked.\n\n" +
			"Permissions: accessibility, full-disk-access, screen-recording, microphone, camera, input-monitoring.",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}
			results := make([]kindStatus, 0, len(kinds))
			for _, k := range kinds {
				results = append(results, kindStatus{Permission: k, Granted: macperms.Check(k)})
			}
			return a.emit(results, func(w io.Writer) {
				for _, r := range results {
					mark := "no"
					if r.Granted {
						mark = "yes"
					}
					fmt.Fprintf(w, "%-18s %s\n", r.Permission, mark)
				}
			})
		},
	}
}

func newRequestCmd(a *app) *cobra.Command {
	var (
		openSettings bool
		resetFor     string
	)
	cmd := &cobra.Command{
		Use:   "request <permission>",
		Short: "Ask the system for a permission",
		Long: "Ask the system for a permission. Full Disk Access and Input Monitoring have no prompt;\n" +
			"their settings pane is opened instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := macperms.ParseKind(args[0])
			if err != nil {
				return err
			}
			if resetFor != "" {
				if err := tcc.Reset(cmd.Context(), a.log, k.TCCService(), resetFor); err != nil {
					return err
				}
			} else if macperms.Check(k) {
				a.log.Debug("already granted", "permission", k)
				return a.emit(kindStatus{Permission: k, Granted: true}, func(w io.Writer) {
					fmt.Fprintf(w, "%s already granted\n", k)
				})
			}
			if openSettings {
				return macperms.OpenSettings(k)
			}
			if err := macperms.Request(k); err != nil {
				return err
			}
			return a.emit(kindStatus{Permission: k, Granted: macperms.Check(k)}, func(w io.Writer) {
				fmt.Fprintf(w, "requested %s; run `macperms check %s` after answering the prompt\n", k, k)
			})
		},
	}
	cmd.Flags().BoolVar(&openSettings, "open-settings", false, "open the settings pane instead of prompting")
	cmd.Flags().StringVar(&resetFor, "reset", "", "forget the stored decision for this bundle id first, so the prompt shows again")
	return cmd
}

func parseKinds(args []string) ([]macperms.Kind, error) {
	if len(args) == 0 {
		return macperms.Kinds(), nil
	}
	kinds := make([]macperms.Kind, 0, len(args))
	for _, arg := range args {
		k, err := macperms.ParseKind(arg)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
