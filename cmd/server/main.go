package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/enrollview/internal/config"
	"github.com/JonMunkholm/enrollview/internal/core"
	"github.com/JonMunkholm/enrollview/internal/logging"
	"github.com/JonMunkholm/enrollview/internal/metrics"
	"github.com/JonMunkholm/enrollview/internal/tableio"
	"github.com/JonMunkholm/enrollview/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration", "config", cfg.String())

	excluded := cfg.Normalize.Resolve(core.DefaultExcludedDescrs)
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"excluded_descrs", len(excluded),
	)

	m := metrics.New()
	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	service := core.NewService(
		tableio.NewParser(cfg.Upload.MaxFileSize),
		excluded,
		core.WithObserver(m),
		core.WithUploadLimiter(limiter),
	)
	server := web.NewServer(service, cfg, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if active := limiter.ActiveCount(); active > 0 {
			slog.Info("waiting for uploads to complete", "active", active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
