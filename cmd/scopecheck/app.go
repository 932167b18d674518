package main

import (
	"context"
	"fmt"

	appscope "github.com/erp/operatingunit/internal/application/orgscope"
	"github.com/erp/operatingunit/internal/domain/orgscope"
	"github.com/erp/operatingunit/internal/infrastructure/config"
	"github.com/erp/operatingunit/internal/infrastructure/i18n"
	"github.com/erp/operatingunit/internal/infrastructure/logger"
	"github.com/erp/operatingunit/internal/infrastructure/persistence"
	"github.com/erp/operatingunit/internal/infrastructure/persistence/models"
	"github.com/erp/operatingunit/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// app holds everything a command needs, wired from configuration
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *persistence.Database
	reg     *orgscope.Registry
	store   *persistence.Store
	checker *orgscope.Checker
	metrics *telemetry.ScopeMetrics

	tracer *telemetry.TracerProvider
	meter  *telemetry.MeterProvider
	logs   *telemetry.LoggerProvider
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	if err := a.initTelemetry(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.db, err = persistence.NewDatabase(&cfg.Database, a.log,
		logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, a.log)
	if err := tracing.Register(a.db.DB); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("register database tracing: %w", err)
	}

	a.reg, err = models.Catalog()
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	if err := appscope.EnableAutoCheck(a.reg, cfg.Scope.AutoCheckModels); err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.store = persistence.NewStore(a.db.DB, a.reg)

	translator, err := i18n.New(language.Make(cfg.Scope.Language))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.checker = orgscope.NewChecker(orgscope.WithPrinter(translator.Printer))

	a.metrics, err = telemetry.NewScopeMetrics(a.meter.Meter(telemetry.TracerName))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) initTelemetry(ctx context.Context) error {
	t := a.cfg.Telemetry
	var err error
	a.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           t.Enabled,
		CollectorEndpoint: t.CollectorEndpoint,
		SamplingRatio:     t.SamplingRatio,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, a.log)
	if err != nil {
		return err
	}
	a.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           t.Enabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ExportInterval:    t.MetricsInterval,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, a.log)
	if err != nil {
		return err
	}
	a.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           t.Enabled && t.LogsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, a.log)
	if err != nil {
		return err
	}
	level, err := zapcore.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	a.log = a.logs.Bridge(a.log, level)
	return nil
}

// commandContext carries the logger, a request id, the report language and
// the acting user or company into ctx.
func (a *app) commandContext(ctx context.Context, opts *rootOptions, userID, companyID string) (context.Context, error) {
	ctx = logger.WithContext(ctx, a.log)
	ctx, l := logger.WithRequestID(ctx, a.log, uuid.NewString())
	if opts.lang != "" {
		tag, err := language.Parse(opts.lang)
		if err != nil {
			return nil, fmt.Errorf("invalid --lang %q: %w", opts.lang, err)
		}
		ctx = logger.WithLanguage(ctx, tag)
	}
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return nil, fmt.Errorf("invalid --user: %w", err)
		}
		ctx, l = logger.WithUserID(ctx, l, id)
	}
	if companyID != "" {
		id, err := uuid.Parse(companyID)
		if err != nil {
			return nil, fmt.Errorf("invalid --company: %w", err)
		}
		ctx, _ = logger.WithCompanyID(ctx, l, id)
	}
	return ctx, nil
}

// Close releases the database and flushes telemetry
func (a *app) Close(ctx context.Context) {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", zap.Error(err))
		}
	}
	if a.meter != nil {
		_ = a.meter.Shutdown(ctx)
	}
	if a.tracer != nil {
		_ = a.tracer.Shutdown(ctx)
	}
	logger.Sync(a.log)
	if a.logs != nil {
		_ = a.logs.Shutdown(ctx)
	}
}

