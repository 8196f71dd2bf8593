package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dukerupert/goshop/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and live updates on a loopback address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, a)
		},
	}
	cmd.Flags().String("listen", "", "listen address (default: 127.0.0.1:8080)")
	return cmd
}

func runServer(ctx context.Context, a *app) error {
	srv := server.New(a.svc, a.registry, a.logger)
	return srv.Run(ctx, a.cfg.ListenAddr)
}
