package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cronhook/cronhook/config"
	"github.com/cronhook/cronhook/internal/engine"
	httpx "github.com/cronhook/cronhook/internal/http"
)

const httpShutdownTimeout = 10 * time.Second

// RunOptions groups everything Run needs to operate the process.
type RunOptions struct {
	Config   config.AppConfig
	Services ServiceContainer
	Engine   *engine.Engine
	Logger   *slog.Logger
}

// Run starts the scheduler engine and the HTTP control plane and blocks
// until SIGINT/SIGTERM or a fatal component error. Shutdown order: stop
// accepting HTTP traffic, then let the engine drain in-flight runs.
func Run(opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr: opts.Config.HTTP.Addr,
		Handler: httpx.NewRouter(httpx.RouterServices{
			Targets:   opts.Services.Targets,
			Schedules: opts.Services.Schedules,
			Runs:      opts.Services.Runs,
			Metrics:   opts.Services.Metrics,
			Logger:    logger,
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := opts.Engine.Run(gctx); err != nil {
			return fmt.Errorf("scheduler engine: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
