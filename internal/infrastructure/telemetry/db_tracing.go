package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database tracing configuration.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables; dev only
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string        // postgresql or sqlite
}

// DBTracingPlugin installs otelgorm plus slow-query span annotations.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a DBTracingPlugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// RegisterOtelGorm installs the plugin on db. It is a no-op when disabled.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartTimeKey, time.Now())
		}
	}

	cb := db.Callback()
	registrations := []struct {
		name     string
		register func() error
	}{
		{"create", func() error {
			if err := cb.Create().Before("gorm:create").Register("omnisync:before_create", before); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register("omnisync:slow_create", p.afterQuery)
		}},
		{"query", func() error {
			if err := cb.Query().Before("gorm:query").Register("omnisync:before_query", before); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register("omnisync:slow_query", p.afterQuery)
		}},
		{"update", func() error {
			if err := cb.Update().Before("gorm:update").Register("omnisync:before_update", before); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register("omnisync:slow_update", p.afterQuery)
		}},
		{"delete", func() error {
			if err := cb.Delete().Before("gorm:delete").Register("omnisync:before_delete", before); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register("omnisync:slow_delete", p.afterQuery)
		}},
	}
	for _, r := range registrations {
		if err := r.register(); err != nil {
			return fmt.Errorf("register %s callbacks: %w", r.name, err)
		}
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) afterQuery(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
