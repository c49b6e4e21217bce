package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-catalog-service/internal/adapter/fdsn"
	"github.com/couchcryptid/quake-catalog-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/quake-catalog-service/internal/catalog"
	"github.com/couchcryptid/quake-catalog-service/internal/config"
	"github.com/couchcryptid/quake-catalog-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	depthUnit, err := fdsn.ParseDepthUnit(cfg.FDSNDepthUnit)
	if err != nil {
		logger.Error("invalid depth unit", "error", err)
		os.Exit(1)
	}

	client := fdsn.NewClient(cfg.FDSNTimeout, logger)
	decoder := fdsn.NewDecoder(depthUnit, logger)
	accessor := catalog.New(cfg.FDSNBaseURL, client, decoder, logger, metrics)
	logger.Info("fdsn accessor configured", "base_url", cfg.FDSNBaseURL, "timeout", cfg.FDSNTimeout, "depth_unit", cfg.FDSNDepthUnit)

	srv := httpadapter.NewServer(cfg.HTTPAddr, accessor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
