package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewZapOTELCore_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())

	core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "omnisync", LoggerProvider: lp, Level: zapcore.InfoLevel})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))

	core = NewZapOTELCore(ZapBridgeConfig{ServiceName: "omnisync"})
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	logger := zap.New(core).With(zap.String("component", "ordersync"))
	logger.Info("dropped")
	logger.Warn("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "ordersync", entry.ContextMap()["component"])
}

func TestNewBridgedLogger(t *testing.T) {
	base, baseLogs := observer.New(zapcore.InfoLevel)
	other, otherLogs := observer.New(zapcore.InfoLevel)

	NewBridgedLogger(base, other).Info("order synced")

	assert.Equal(t, 1, baseLogs.Len())
	assert.Equal(t, 1, otherLogs.Len())
}
