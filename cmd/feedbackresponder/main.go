package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"FeedbackResponder/internal/app"
	"FeedbackResponder/internal/config"
	"FeedbackResponder/internal/logging"
)

func main() {
	cfg, err := config.LoadBootstrap()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("application stopped")
}
