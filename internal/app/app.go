package app

import (
	"context"
	"fmt"

	"github.com/honeycarbs/hhnotify/internal/config"
	"github.com/honeycarbs/hhnotify/internal/domain/responses"
	"github.com/honeycarbs/hhnotify/internal/scheduler"
	"github.com/honeycarbs/hhnotify/internal/server"
	"github.com/honeycarbs/hhnotify/pkg/logging"
)

// App holds the long-running parts of the service
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	Server    *server.Server
	Scheduler *scheduler.Scheduler
	Responses *responses.Service
}

func newApp(
	cfg config.Config,
	logger *logging.Logger,
	srv *server.Server,
	sched *scheduler.Scheduler,
	svc *responses.Service,
) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Server:    srv,
		Scheduler: sched,
		Responses: svc,
	}
}

// Start registers the cron jobs, starts them and runs the first poll cycle
func (a *App) Start(ctx context.Context) error {
	if err := a.Scheduler.Add("poll", a.Config.Schedule.Poll, func(ctx context.Context) error {
		_, err := a.Responses.PollAndNotify(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := a.Scheduler.Add("cache-reset", a.Config.Schedule.CacheReset, a.Responses.ResetCache); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.Scheduler.Start()

	go func() {
		if _, err := a.Responses.PollAndNotify(ctx); err != nil {
			a.Logger.Warn("initial poll cycle failed", "err", err)
		}
	}()
	return nil
}
