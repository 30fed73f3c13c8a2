package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"
)

// RegisterDBMetrics exposes connection pool statistics of db as observable gauges
func RegisterDBMetrics(meter metric.Meter, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	connections, err := meter.Int64ObservableGauge("omnisync_db_connections",
		metric.WithDescription("Database connections by pool state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return fmt.Errorf("failed to create db connections gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("omnisync_db_wait_count",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return fmt.Errorf("failed to create db wait counter: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(connections, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, connections, waits)
	if err != nil {
		return fmt.Errorf("failed to register db metrics callback: %w", err)
	}
	return nil
}
