package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/cronhook/cronhook/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting cronhook",
		"http_addr", cfg.HTTP.Addr,
		"poll_interval", cfg.Scheduler.PollInterval(),
		"max_concurrent", cfg.Scheduler.MaxConcurrent)

	db, err := bootstrap.ConnectDB(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close database failed", "error", cerr)
		}
	}()

	if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
		return err
	}

	deps := bootstrap.ServiceDeps{
		Config: &cfg,
		DB:     db,
		Logger: logger,
	}

	return bootstrap.Run(bootstrap.RunOptions{
		Config:   cfg,
		Services: bootstrap.BuildServices(deps),
		Engine:   bootstrap.BuildEngine(deps),
		Logger:   logger,
	})
}
