package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trendradar/internal/config"
	"trendradar/internal/pipeline"

	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := pipeline.RunnerFromConfig(ctx, cfg, os.Stdout)
	if err != nil {
		log.Fatalf("error creating pipeline: %v", err)
	}

	slog.Info("starting digest run", "provider", cfg.LLM.Provider, "models", cfg.LLM.Models, "mail_enabled", cfg.MailEnabled())

	// every outcome is a clean exit; the next scheduled run retries
	runner.Run(ctx)
}
