package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"FeedbackResponder/internal/config"
	"FeedbackResponder/internal/control"
	"FeedbackResponder/internal/infrastructure/httpapi"
	"FeedbackResponder/internal/infrastructure/llm"
	"FeedbackResponder/internal/infrastructure/ozon"
	"FeedbackResponder/internal/infrastructure/scheduler"
	"FeedbackResponder/internal/infrastructure/storage"
	"FeedbackResponder/internal/infrastructure/wildberries"
	"FeedbackResponder/internal/logging"
	"FeedbackResponder/internal/source"
	"FeedbackResponder/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Bootstrap
	logger    *slog.Logger
	repo      *storage.LedgerRepository
	scheduler *usecase.Scheduler
	server    *http.Server
}

// New opens the ledger and builds every component.
func New(ctx context.Context, cfg config.Bootstrap, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.LogLevel, cfg.LogFormat)
	}

	repo, err := storage.Open(ctx, cfg.LedgerDriver, cfg.LedgerDSN)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	ledger := usecase.NewLedger(repo, baseLogger.With("component", "ledger"))
	generator := llm.NewGenerator(baseLogger.With("component", "llm"))

	registry := source.NewRegistry(
		usecase.NewWildberriesSource(usecase.SourceDeps{
			Client:    wildberries.NewClient(cfg.WildberriesBaseURL, nil),
			Generator: generator,
			Ledger:    ledger,
			Logger:    baseLogger.With("component", "source"),
		}),
		usecase.NewOzonSource(usecase.SourceDeps{
			Client:    ozon.NewClient(cfg.OzonBaseURL, nil),
			Generator: generator,
			Ledger:    ledger,
			Logger:    baseLogger.With("component", "source"),
		}),
	)

	state := control.New(cfg.StartRunning)

	loop := usecase.NewScheduler(usecase.SchedulerDeps{
		Registry: registry,
		Settings: config.NewFileProvider(cfg.SettingsPath, baseLogger.With("component", "settings")),
		State:    state,
		Sleeper:  scheduler.TimerSleeper{},
		Logger:   baseLogger.With("component", "scheduler"),
	})

	router := httpapi.NewRouter(httpapi.Config{
		State:     state,
		Dashboard: usecase.NewDashboard(repo),
		Ledger:    repo,
		APIKey:    cfg.APIKey,
		Logger:    baseLogger.With("component", "http"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		repo:      repo,
		scheduler: loop,
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves the HTTP API and drives the scheduler until ctx is cancelled
// or the server fails. The ledger is closed on return.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		if err := a.repo.Close(); err != nil {
			a.logger.Error("close ledger", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.HTTPAddr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = a.scheduler.Run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer stop()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}

	select {
	case <-loopDone:
	case <-shutdownCtx.Done():
		a.logger.Warn("scheduler did not stop before shutdown timeout")
	}

	return runErr
}
