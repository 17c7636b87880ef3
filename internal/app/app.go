package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"BillScanner/internal/config"
	"BillScanner/internal/domain"
	"BillScanner/internal/infrastructure/parser"
	"BillScanner/internal/infrastructure/report"
	"BillScanner/internal/infrastructure/scheduler"
	"BillScanner/internal/infrastructure/storage"
	"BillScanner/internal/infrastructure/telegram"
	"BillScanner/internal/logging"
	"BillScanner/internal/ports"
	"BillScanner/internal/scanner"
	"BillScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	closers  []func() error
}

// New builds a runnable application instance. It fails only when the
// configured bill store cannot be opened.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewMockScanner())
	registry.Register(parser.NewLeginfoScanner(nil))

	source := parser.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))

	application := &Application{cfg: cfg, logger: baseLogger}

	store, err := application.openStore(ctx)
	if err != nil {
		return nil, err
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	application.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Store:    store,
		Summary:  report.NewMarkdownWriter(cfg.Summary.Path, cfg.Scheduler.Location()),
		Notifier: notifier,
		Location: cfg.Scheduler.Location(),
		Logger:   baseLogger.With("component", "pipeline"),
	})
	return application, nil
}

func (a *Application) openStore(ctx context.Context) (ports.BillStore, error) {
	switch a.cfg.Storage.Driver {
	case "", config.DriverJSON:
		return storage.NewJSONStore(a.cfg.Storage.Path), nil
	case config.DriverSQLite, config.DriverPostgres:
		store, err := storage.OpenSQLStore(ctx, a.cfg.Storage.Driver, a.cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open bill store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
	}
}

// Run performs a single scan.
func (a *Application) Run(ctx context.Context) (domain.ScanResult, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.Scan(ctx, now)
}

// Watch scans now and then every configured interval until ctx is done.
func (a *Application) Watch(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval)
	sched := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	a.logger.Info("watching", "interval", a.cfg.Scheduler.Interval.String())
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Tracked returns the persisted bill collection.
func (a *Application) Tracked(ctx context.Context) (domain.Collection, error) {
	return a.pipeline.Tracked(ctx)
}

// Close releases store handles.
func (a *Application) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
