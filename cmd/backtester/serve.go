package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atlas-desktop/backtester/internal/api"
	"github.com/atlas-desktop/backtester/internal/batch"
)

func newServeCommand() *cobra.Command {
	var (
		host string
		port string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the status/progress HTTP+WebSocket service for long batch jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger("info")
			defer logger.Sync()

			srv := api.NewServer(logger)
			batch.MustRegister(srv.Registry())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				logger.Info("shutdown signal received")
				cancel()
			}()

			addr := host + ":" + port
			logger.Info("status service listening", zap.String("addr", addr))
			return srv.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "bind host")
	cmd.Flags().StringVar(&port, "port", "8080", "bind port")

	return cmd
}
