// Command macperms checks, requests and watches macOS privacy permissions.
//
//	macperms check                      # every permission at a glance
//	macperms request screen-recording
//	macperms photos status --level readWrite
//	macperms photos watch               # print changes as they happen
//	macperms serve                      # JSON lines on stdin/stdout
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tmc/macperms"
	"github.com/tmc/macperms/internal/config"
	"github.com/tmc/macperms/internal/logging"
)

// app is the state shared by every subcommand.
type app struct {
	configPath string
	debug      bool
	logJSON    bool
	jsonOut    bool

	cfg *config.Config
	log *slog.Logger
	out io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{out: os.Stdout}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when the user has to finish in System Settings, 1 otherwise.
func exitCode(err error) int {
	if macperms.NeedsSettings(err) {
		return 2
	}
	return 1
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "macperms",
		Short:         "Check and request macOS privacy permissions",
		Long:          "Check, request and watch macOS privacy permissions, including photo library access levels.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $MACPERMS_CONFIG)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&a.logJSON, "log-json", false, "log in JSON")
	flags.BoolVar(&a.jsonOut, "json", false, "print results as JSON (default when stdout is not a terminal)")

	root.AddCommand(
		newCheckCmd(a),
		newRequestCmd(a),
		newPhotosCmd(a),
		newServeCmd(a),
		newTCCCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug = a.debug
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = a.logJSON
	}
	a.cfg = cfg
	a.log = logging.New(cfg.LogOptions())
	a.log.Debug("config loaded", "cache_ttl", cfg.CacheTTL.Std(), "poll_interval", cfg.PollInterval.Std(), "codec", cfg.Codec)
	return nil
}

// wantJSON reports whether results should be printed as JSON.
func (a *app) wantJSON() bool {
	if a.jsonOut {
		return true
	}
	f, ok := a.out.(*os.File)
	return ok && !term.IsTerminal(int(f.Fd()))
}

// emit prints v as one JSON line, or calls text for terminal output.
func (a *app) emit(v any, text func(w io.Writer)) error {
	if a.wantJSON() {
		return json.NewEncoder(a.out).Encode(v)
	}
	text(a.out)
	return nil
}
