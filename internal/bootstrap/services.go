package bootstrap

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/cronhook/cronhook/config"
	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/dispatch"
	"github.com/cronhook/cronhook/internal/engine"
	"github.com/cronhook/cronhook/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Targets   *service.TargetService
	Schedules *service.ScheduleService
	Runs      *service.RunService
	Metrics   *service.MetricsService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	DB     *sql.DB
	Clock  data.Clock
	Logger *slog.Logger
}

// BuildServices constructs the repositories and services.
func BuildServices(deps ServiceDeps) ServiceContainer {
	clock := deps.Clock
	if clock == nil {
		clock = data.RealClock{}
	}

	targetRepo := data.NewTargetRepo(deps.DB, clock)
	scheduleRepo := data.NewScheduleRepo(deps.DB, clock)
	runRepo := data.NewRunRepo(deps.DB, clock)
	metricsRepo := data.NewMetricsRepo(deps.DB)

	return ServiceContainer{
		Targets: service.MustNewTargetService(service.TargetServiceOptions{
			Repo:   targetRepo,
			Clock:  clock,
			Logger: deps.Logger,
		}),
		Schedules: service.MustNewScheduleService(service.ScheduleServiceOptions{
			Repo:    scheduleRepo,
			Targets: targetRepo,
			Clock:   clock,
			Logger:  deps.Logger,
		}),
		Runs: service.MustNewRunService(service.RunServiceOptions{
			Repo:   runRepo,
			Logger: deps.Logger,
		}),
		Metrics: service.MustNewMetricsService(service.MetricsServiceOptions{
			Repo: metricsRepo,
		}),
	}
}

// BuildEngine constructs the scheduler engine and its executor.
func BuildEngine(deps ServiceDeps) *engine.Engine {
	clock := deps.Clock
	if clock == nil {
		clock = data.RealClock{}
	}

	targetRepo := data.NewTargetRepo(deps.DB, clock)
	scheduleRepo := data.NewScheduleRepo(deps.DB, clock)
	runRepo := data.NewRunRepo(deps.DB, clock)

	dispatcher := dispatch.New(dispatch.Options{
		Client:           &http.Client{},
		MaxResponseBytes: deps.Config.Dispatch.MaxResponseBytes,
		Clock:            clock,
	})
	executor := engine.NewExecutor(engine.ExecutorOptions{
		Targets:    targetRepo,
		Schedules:  scheduleRepo,
		Runs:       runRepo,
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     deps.Logger,
	})

	return engine.New(engine.Options{
		Schedules:     scheduleRepo,
		Runs:          runRepo,
		Executor:      executor,
		Registry:      engine.NewRegistry(deps.Config.Scheduler.MaxConcurrent),
		Clock:         clock,
		Logger:        deps.Logger,
		PollInterval:  deps.Config.Scheduler.PollInterval(),
		ShutdownGrace: deps.Config.Scheduler.ShutdownGrace(),
	})
}
