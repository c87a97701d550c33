package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"CoinBoard/internal/scheduler"
	"CoinBoard/internal/usecase/refresh"
	"CoinBoard/pkg/config"
	xhttp "CoinBoard/pkg/http"
	applogger "CoinBoard/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	controller *refresh.Controller
	scheduler  *scheduler.Scheduler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	controller *refresh.Controller,
	sched *scheduler.Scheduler,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		controller: controller,
		scheduler:  sched,
		httpServer: httpServer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.controller.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error("refresh controller error", applogger.Error(err))
		}
	}()
	a.log.Info("refresh controller started",
		applogger.Strings("assets", a.controller.Selection().Strings()),
		applogger.Duration("interval", a.controller.Policy().Interval),
		applogger.Bool("auto_refresh", a.controller.Policy().Enabled),
	)

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		cancel()
		wg.Wait()
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	cancel()
	wg.Wait()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.scheduler != nil {
		a.scheduler.Stop(shutdownCtx)
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.log.Info("shutdown complete")
	return nil
}
