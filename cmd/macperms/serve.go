package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmc/macperms/commands"
	"github.com/tmc/macperms/internal/wire"
)

func newServeCmd(a *app) *cobra.Command {
	var codec string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer commands on stdin, write responses and events to stdout",
		Long: `Answer commands on stdin and write responses and events to stdout.

Requests are {"id", "cmd", "args"}; responses are {"id", "result"} or
{"id", "error"}; events are {"event", "target", "payload"}. Messages are JSON
lines, or a CBOR sequence with --codec cbor.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("codec") {
				codec = a.cfg.Codec
			}
			r, err := wire.NewReader(codec, os.Stdin)
			if err != nil {
				return err
			}
			w, err := wire.NewWriter(codec, os.Stdout)
			if err != nil {
				return err
			}
			svc := a.service(commands.NewStreamSink(w))
			a.log.Debug("serving", "codec", codec)

			err = commands.NewServer(svc, r, w, a.log).Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&codec, "codec", wire.JSON, "message framing: json or cbor")
	return cmd
}
