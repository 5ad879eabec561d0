package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/honeycarbs/hhnotify/internal/app"
	"github.com/honeycarbs/hhnotify/internal/config"
	"github.com/honeycarbs/hhnotify/pkg/logging"
	"github.com/honeycarbs/hhnotify/pkg/shutdown"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	a, err := app.InitializeApp(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "err", err)
		os.Exit(1)
	}

	if err := a.Start(context.Background()); err != nil {
		logger.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}

	go shutdown.Graceful(
		[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
		10*time.Second,
		logger,
		a.Scheduler,
		a.Server,
	)

	logger.Info("hhnotify initialized and starting",
		"addr", net.JoinHostPort(cfg.Host, cfg.Port),
		"poll_schedule", cfg.Schedule.Poll,
	)

	if err := a.Server.Run(); err != nil {
		logger.Error("HTTP server exited with error", "err", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}
