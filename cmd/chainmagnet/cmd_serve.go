package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chainmagnet/chainmagnet/internal/app"
	httpapi "github.com/chainmagnet/chainmagnet/internal/interfaces/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Serve scoring, discovery, health and vote endpoints plus Prometheus metrics and the websocket health stream.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := app.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("target_chain", cfg.TargetChain).Msg("starting chainmagnet")
	return httpapi.NewServer(svc, cfg.Server).Start(ctx)
}
