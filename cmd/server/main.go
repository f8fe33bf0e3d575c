package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/inbound/internal/config"
	"github.com/JonMunkholm/inbound/internal/core"
	"github.com/JonMunkholm/inbound/internal/logging"
	"github.com/JonMunkholm/inbound/internal/storage"
	"github.com/JonMunkholm/inbound/internal/web"
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
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	service, err := core.NewService(ctx, store, core.ServiceConfig{
		ExportLabel:     cfg.Export.Label,
		SheetName:       cfg.Export.SheetName,
		TimestampLayout: cfg.Scanner.TimestampLayout,
	})
	if err != nil {
		slog.Error("failed to restore session", "error", err)
		os.Exit(1)
	}

	stats := service.Stats()
	slog.Info("session restored",
		"session_id", service.SessionID(),
		"storage", cfg.Storage.Driver,
		"skus", stats.TotalSkus,
		"scanned", stats.ActualTotal,
	)

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
