package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hopqa/internal/server"
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			svc, err := buildServices(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = svc.store.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg.Server, svc.orchestrator, logger)
			return srv.Start(ctx)
		},
	}
}
