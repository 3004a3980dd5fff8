package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/partlib/internal/config"
	"github.com/JonMunkholm/partlib/internal/core"
	"github.com/JonMunkholm/partlib/internal/logging"
	"github.com/JonMunkholm/partlib/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"database", cfg.Storage.DatabasePath(),
		"backup", cfg.Storage.BackupPath(),
		"mapping", cfg.Storage.MappingPath(),
	)

	service, err := core.NewService(cfg)
	if err != nil {
		slog.Error("failed to open part library", "error", err)
		os.Exit(1)
	}
	defer service.Close()

	ctx := context.Background()
	if err := service.InitializeSchema(ctx); err != nil {
		slog.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	// Writes the default mapping document on first start.
	if _, err := service.Mapping(ctx); err != nil {
		slog.Error("failed to load column mapping", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, cfg.Server)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Let a running import, update or restore finish its transaction.
		if err := service.WaitIdle(shutdownCtx); err != nil {
			slog.Warn("operation did not complete in time", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
