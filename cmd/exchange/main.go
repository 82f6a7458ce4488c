package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/serzhan-kenesbek/order-book/internal/api"
	"github.com/serzhan-kenesbek/order-book/internal/config"
	"github.com/serzhan-kenesbek/order-book/internal/engine"
	"github.com/serzhan-kenesbek/order-book/internal/net"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	log.Logger = logger

	// Wire the matching engine, the order-entry gateway, and the
	// market data API together.
	eng := engine.New(logger, cfg.Symbols...)
	gateway := net.New(cfg.GatewayAddr, cfg.GatewayPort, eng)
	eng.SetReporter(gateway)
	mdAPI := api.New(cfg.HTTPAddr, eng, logger)

	go gateway.Run(ctx)
	go func() {
		if err := mdAPI.Run(ctx, cfg.ShutdownTimeout); err != nil {
			logger.Error().Err(err).Msg("market data api stopped")
			stop()
		}
	}()

	logger.Info().Strs("symbols", cfg.Symbols).Msg("exchange up")
	<-ctx.Done()
}
