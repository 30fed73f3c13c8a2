package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type tracedRow struct {
	ID   int
	Name string
}

func TestDBTracingPlugin(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop())
		assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
		assert.Equal(t, "postgresql", p.config.DBSystem)
	})

	t.Run("disabled leaves callbacks untouched", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, NewDBTracingPlugin(DBTracingConfig{Enabled: false}, zap.NewNop()).RegisterOtelGorm(db))
		assert.Nil(t, db.Callback().Query().Get("omnisync:slow_query"))
	})

	t.Run("enabled registers callbacks and queries still work", func(t *testing.T) {
		db := openTestDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, DBSystem: "sqlite"}, zap.NewNop())
		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.NotNil(t, db.Callback().Query().Get("omnisync:slow_query"))

		require.NoError(t, db.AutoMigrate(&tracedRow{}))
		require.NoError(t, db.WithContext(context.Background()).Create(&tracedRow{ID: 1, Name: "a"}).Error)

		var row tracedRow
		require.NoError(t, db.First(&row, 1).Error)
		assert.Equal(t, "a", row.Name)
	})
}

func TestRegisterDBMetrics(t *testing.T) {
	db := openTestDB(t)
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	require.NoError(t, RegisterDBMetrics(provider.Meter(MeterName), db))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["omnisync_db_connections"])
	assert.True(t, names["omnisync_db_wait_count"])
}
