// Package bootstrap builds the shared process runtime used by the server and
// worker binaries: logger, telemetry providers and the database.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/omnisync/internal/infrastructure/config"
	"github.com/erp/omnisync/internal/infrastructure/logger"
	"github.com/erp/omnisync/internal/infrastructure/persistence"
	"github.com/erp/omnisync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Runtime owns the long-lived resources of a process
type Runtime struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *persistence.Database
	Meter   *telemetry.MeterProvider
	Metrics *telemetry.EngineMetrics

	closers []func(context.Context) error
}

// Start initializes logging, telemetry and the database for component.
// On error everything opened so far is released.
func Start(ctx context.Context, cfg *config.Config, component string) (*Runtime, error) {
	rt := &Runtime{Config: cfg}
	if err := rt.start(ctx, component); err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) start(ctx context.Context, component string) error {
	cfg := rt.Config

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	}
	baseCore, err := logger.NewCore(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	zapOpts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	rt.Logger = zap.New(baseCore, zapOpts...)

	serviceName := cfg.Telemetry.ServiceName
	if component != "" {
		serviceName += "-" + component
	}

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, rt.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	rt.closers = append(rt.closers, tp.Shutdown)

	rt.Meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, rt.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	rt.closers = append(rt.closers, rt.Meter.Shutdown)

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, rt.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize log export: %w", err)
	}
	rt.closers = append(rt.closers, lp.Shutdown)
	if lp.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    serviceName,
			LoggerProvider: lp,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
		rt.Logger = telemetry.NewBridgedLogger(baseCore, otelCore, zapOpts...)
	}

	rt.Metrics, err = telemetry.NewEngineMetrics(rt.Meter.Meter(telemetry.MeterName))
	if err != nil {
		return fmt.Errorf("failed to register engine metrics: %w", err)
	}

	return rt.openDatabase(ctx)
}

func (rt *Runtime) openDatabase(ctx context.Context) error {
	cfg := rt.Config
	gormLog := logger.NewGormLogger(rt.Logger, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	rt.DB = db
	rt.closers = append(rt.closers, func(context.Context) error { return db.Close() })

	if cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if cfg.Database.Driver == config.DriverSQLite {
			dbSystem = "sqlite"
		}
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem,
		}, rt.Logger)
		if err := plugin.RegisterOtelGorm(db.DB); err != nil {
			return fmt.Errorf("failed to enable database tracing: %w", err)
		}
	}
	if rt.Meter.IsEnabled() {
		if err := telemetry.RegisterDBMetrics(rt.Meter.Meter(telemetry.MeterName), db.DB); err != nil {
			return fmt.Errorf("failed to register database metrics: %w", err)
		}
	}

	// sqlite deployments have no migrate step
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("failed to create sqlite schema: %w", err)
		}
	}

	rt.Logger.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))
	return nil
}

// OnClose registers fn to run on Close before anything opened earlier
func (rt *Runtime) OnClose(fn func(context.Context) error) {
	rt.closers = append(rt.closers, fn)
}

// Close releases resources in reverse order of acquisition and flushes the logger
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	if rt.Logger != nil {
		_ = logger.Sync(rt.Logger)
	}
	return errors.Join(errs...)
}
