package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-schema-registry/logging"
	"github.com/reglet-dev/reglet-schema-registry/mcpserver"
	"github.com/reglet-dev/reglet-schema-registry/observability"
	"github.com/reglet-dev/reglet-schema-registry/version"
	"github.com/reglet-dev/reglet-schema-registry/watch"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var watchDir bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Watch = watchDir
			}
			return serve(cmd.Context(), a, cmd)
		},
	}
	cmd.Flags().BoolVar(&watchDir, "watch", false, "notify clients when the schema directory changes")
	return cmd
}

func serve(parent context.Context, a *app, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := mcpserver.New(a.handlers, a.inputs, version.String(),
		mcpserver.WithLogger(logging.WithComponent("mcp")),
	)
	if err != nil {
		return err
	}

	if a.cfg.Metrics.Addr != "" {
		obs := observability.NewServer(a.cfg.Metrics.Addr, a.gatherer, logging.WithComponent("observability"))
		obs.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := obs.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn().Err(err).Msg("Observability server shutdown failed")
			}
		}()
	}

	if a.cfg.Watch {
		w := watch.New(a.repo.Root(), func(watch.Change) { srv.NotifyListChanged() },
			watch.WithLogger(logging.WithComponent("watch")),
			watch.WithRecorder(a.metrics),
		)
		go func() {
			if err := w.Run(ctx); err != nil {
				a.logger.Error().Err(err).Msg("Schema watcher stopped")
			}
		}()
	}

	a.logger.Info().
		Str("dir", a.repo.Root()).
		Str("version", version.String()).
		Msg("Starting schema registry")

	err = srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if ctx.Err() != nil {
		return nil
	}
	return err
}
