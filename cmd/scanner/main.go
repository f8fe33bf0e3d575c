// Command scanner runs a receiving session on the terminal, reading
// barcodes typed by a keyboard-wedge scanner.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/inbound/internal/config"
	"github.com/JonMunkholm/inbound/internal/console"
	"github.com/JonMunkholm/inbound/internal/core"
	"github.com/JonMunkholm/inbound/internal/logging"
	"github.com/JonMunkholm/inbound/internal/storage"
)

func main() {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The terminal UI owns the screen, so logs go to a file.
	logFile, err := os.OpenFile(cfg.Scanner.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "path", cfg.Scanner.LogFile, "error", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logging.SetupWriter(logFile, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = core.WithOrigin(ctx, core.Origin{
		Station:  cfg.Scanner.Station,
		Operator: cfg.Scanner.Operator,
	})

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

	if err := console.Run(ctx, service, cfg.Export.Dir, cfg.Scanner.HighlightDelay); err != nil {
		slog.Error("console stopped", "error", err)
		store.Close()
		os.Exit(1)
	}
	slog.Info("scanner stopped", "session_id", service.SessionID())
}
