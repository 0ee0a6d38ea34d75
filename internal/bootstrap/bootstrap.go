// Package bootstrap wires configuration into the running print services.
// The server and worker binaries share it so both see the same database,
// object store, queue and notification setup.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/domain/document"
	domainqueue "github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/cache"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/printshop/backend/internal/infrastructure/conversion"
	"github.com/printshop/backend/internal/infrastructure/event"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/infrastructure/notification"
	"github.com/printshop/backend/internal/infrastructure/pdf"
	"github.com/printshop/backend/internal/infrastructure/persistence"
	"github.com/printshop/backend/internal/infrastructure/queue"
	"github.com/printshop/backend/internal/infrastructure/receipt"
	"github.com/printshop/backend/internal/infrastructure/storage"
	"github.com/printshop/backend/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	slowQueryThreshold = 200 * time.Millisecond
	meterName          = "print-backend"
)

// App holds every long-lived dependency of one process
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Telemetry   *telemetry.Providers
	Database    *persistence.Database
	Store       printing.ObjectStore
	Redis       *redis.Client
	Idempotency shared.IdempotencyStore
	EventBus    *event.InMemoryEventBus
	WorkItems   *persistence.GormWorkItemStore
	Coordinator *queue.Coordinator
	Metrics     *telemetry.WorkMetrics

	Drafts    *printing.DraftService
	PrintJobs *printing.PrintJobService
	Shops     *printing.ShopService
	Cleanup   *printing.CleanupService

	closers []func(context.Context) error
}

// Option overrides a dependency New would otherwise build from config
type Option func(*options)

type options struct {
	store     printing.ObjectStore
	converter printing.Converter
	notifier  printing.Notifier
}

// WithStore uses store instead of the configured storage driver
func WithStore(store printing.ObjectStore) Option {
	return func(o *options) { o.store = store }
}

// WithConverter uses c instead of the converter registry
func WithConverter(c printing.Converter) Option {
	return func(o *options) { o.converter = c }
}

// WithNotifier uses n instead of the configured notification drivers
func WithNotifier(n printing.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// NewLogger builds the process logger and telemetry providers. When
// telemetry is enabled log records are also exported over OTLP.
func NewLogger(ctx context.Context, cfg *config.Config) (*zap.Logger, *telemetry.Providers, error) {
	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := telemetry.NewProviders(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	if !providers.IsEnabled() {
		return log, providers, nil
	}

	otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, providers.LoggerProvider(), logger.ParseLevel(cfg.Log.Level))
	bridged, err := logger.New(logCfg, otelCore)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return bridged, providers, nil
}

// StartProfiler starts continuous profiling for one binary. The returned
// profiler is inert when profiling is disabled, so callers always defer Stop.
func StartProfiler(cfg *config.Config, component string, providers *telemetry.Providers, log *zap.Logger) (*telemetry.Profiler, error) {
	p := cfg.Telemetry.Profiling
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           p.Enabled,
		ServerAddress:     p.ServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName + "." + component,
		BasicAuthUser:     p.BasicAuthUser,
		BasicAuthPassword: p.BasicAuthPassword,
		ProfileTypes:      p.ProfileTypes,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize profiler: %w", err)
	}
	if profiler.IsEnabled() && p.SpanProfiles && providers != nil {
		providers.EnableSpanProfiles()
	}
	return profiler, nil
}

// New connects to every configured backend and builds the services. On
// error everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, providers *telemetry.Providers, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg, Logger: log, Telemetry: providers}
	if err := app.init(ctx, o); err != nil {
		_ = app.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context, o options) error {
	cfg, log := a.Config, a.Logger

	settings, err := printing.SettingsFromConfig(cfg)
	if err != nil {
		return err
	}

	if err := a.openDatabase(); err != nil {
		return err
	}

	meter := otelMeter(a.Telemetry)
	a.Metrics, err = telemetry.NewWorkMetrics(meter)
	if err != nil {
		return fmt.Errorf("failed to create work metrics: %w", err)
	}

	a.Store = o.store
	if a.Store == nil {
		a.Store, err = storage.New(ctx, &cfg.Storage, log)
		if err != nil {
			return err
		}
	}

	if cfg.Redis.Enabled {
		a.Redis, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
			a.Redis = nil
		} else {
			a.onClose(func(context.Context) error { return a.Redis.Close() })
		}
	}

	idemOpts := []cache.IdempotencyStoreFactoryOption{cache.WithLogger(log)}
	if a.Redis != nil {
		idemOpts = append(idemOpts, cache.WithClient(a.Redis))
	}
	a.Idempotency, err = cache.NewIdempotencyStoreFactory(cfg.Redis, idemOpts...).CreateStore(ctx)
	if err != nil {
		return err
	}
	a.onClose(func(context.Context) error { return a.Idempotency.Close() })

	notifier := o.notifier
	if notifier == nil {
		multi, err := notification.New(cfg.Notify, a.Redis, a.Metrics, log)
		if err != nil {
			return err
		}
		a.onClose(func(context.Context) error { return multi.Close() })
		notifier = multi
	}

	converter := o.converter
	if converter == nil {
		registry, closeRegistry := conversion.New(cfg.Conversion, log)
		a.onClose(func(context.Context) error { return closeRegistry() })
		converter = registry
	}

	a.EventBus = event.NewInMemoryEventBus(log)
	a.EventBus.Subscribe(event.NewIdempotentHandler(printing.NewNotificationHandler(notifier, log), a.Idempotency, log))
	if err := a.EventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	a.onClose(a.EventBus.Stop)

	db := a.Database.DB
	scope := persistence.NewGormTransactionScope(db)
	drafts := persistence.NewGormDraftRepository(db)
	receipts := persistence.NewGormReceiptRepository(db)
	shops := persistence.NewGormShopRepository(db)
	loader := pdf.NewLoader(log)
	engine := document.NewEngine(log)

	a.WorkItems = persistence.NewGormWorkItemStore(db)
	a.Coordinator = queue.NewCoordinator(
		a.WorkItems,
		queue.ConfigFromSettings(cfg.Queue),
		log,
		queue.WithMetrics(a.Metrics),
	)

	a.Drafts = printing.NewDraftService(drafts, scope, a.Store, loader, engine, a.Coordinator, settings, log)
	a.PrintJobs = printing.NewPrintJobService(
		persistence.NewGormPrintJobRepository(db),
		receipts,
		shops,
		scope, a.Coordinator, a.Idempotency, settings, log,
	)
	receiptTemplates, err := receipt.NewTemplateEngine("")
	if err != nil {
		return err
	}
	a.PrintJobs.SetReceiptRenderer(receipt.NewRenderer(receiptTemplates, converter, log))
	a.Shops = printing.NewShopService(shops, settings, log)
	processor := printing.NewProcessDraftHandler(drafts, a.Store, converter, loader, engine, settings, log)
	finalizer := printing.NewFinalizeHandler(scope, a.Store, settings, log)
	finalizer.SetMetrics(a.Metrics)
	failures := printing.NewWorkFailureHandler(drafts, log)
	failures.SetIdempotencyStore(a.Idempotency)
	a.Cleanup = printing.NewCleanupService(receipts, scope, a.Store, settings, log)
	a.Cleanup.SetMetrics(a.Metrics)

	for _, svc := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{a.Drafts, a.PrintJobs, processor, finalizer, failures} {
		svc.SetEventPublisher(a.EventBus)
	}

	a.Coordinator.Register(domainqueue.KindProcessDraft, processor)
	a.Coordinator.Register(domainqueue.KindFinalizePrintJob, finalizer)
	a.Coordinator.OnExhausted(failures.OnExhausted)
	a.onClose(a.Coordinator.Stop)

	return nil
}

func (a *App) openDatabase() error {
	cfg := a.Config
	gormLog := logger.NewGormLogger(a.Logger, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	a.Database = db
	a.onClose(func(context.Context) error { return db.Close() })

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:   dbSystem(cfg.Database.Driver),
		LogFullSQL: cfg.App.Env == "development",
	}, a.Logger); err != nil {
		return err
	}

	// SQL migrations target postgres; sqlite schemas come from the models
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	a.Logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	return nil
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}

func otelMeter(providers *telemetry.Providers) metric.Meter {
	if providers == nil {
		return otel.GetMeterProvider().Meter(meterName)
	}
	return providers.Meter(meterName)
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of creation
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
