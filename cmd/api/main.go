package main

import (
	"context"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/justsurfingit/job-finder/internal/app"
	"github.com/justsurfingit/job-finder/internal/config"
	"github.com/justsurfingit/job-finder/pkg/logging"
	"github.com/justsurfingit/job-finder/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	srv, err := app.InitializeServer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize server", "err", err)
		os.Exit(1)
	}

	go shutdown.Graceful(
		[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
		srv,
		10*time.Second,
		logger,
	)

	logger.Info("job finder starting", "addr", cfg.Addr(), "model", cfg.GeminiModel, "scraper_host", cfg.Scraper.Host)

	if err := srv.Run(); err != nil {
		logger.Error("server exited with error", "err", err)
	} else {
		logger.Info("server stopped")
	}
}
