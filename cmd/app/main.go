package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chrononews-attachments/internal/app"
	"chrononews-attachments/internal/config"
	"chrononews-attachments/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Aplikasi berhenti dengan error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("konfigurasi tidak valid: %w", err)
	}

	logger, logCloser := logging.New(appCfg)
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("Aplikasi dimulai dengan konfigurasi dari environment variables",
		slog.Group("schedules",
			slog.String("sweep", appCfg.SweepSchedule),
			slog.String("janitor_tracker", appCfg.JanitorSchedule),
		),
		slog.Group("backends",
			slog.String("database", appCfg.DBDriver),
			slog.String("storage", appCfg.StorageMode),
			slog.String("tracker", appCfg.TrackerBackend),
		),
		slog.String("upload_root", appCfg.UploadRoot),
		slog.String("log_level", appCfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, appCfg, logger)
	if err != nil {
		return fmt.Errorf("gagal menyiapkan aplikasi: %w", err)
	}

	return application.Run(ctx)
}
