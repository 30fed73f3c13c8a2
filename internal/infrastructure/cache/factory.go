package cache

import (
	"fmt"

	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ReplayStoreFactory builds the webhook replay store selected in configuration
type ReplayStoreFactory struct {
	webhookConfig         config.WebhookConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReplayStoreFactoryOption is a functional option for configuring the factory
type ReplayStoreFactoryOption func(*ReplayStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReplayStoreFactoryOption {
	return func(f *ReplayStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is true unless the webhook config requires a
// shared store.
func WithInMemoryFallback(allow bool) ReplayStoreFactoryOption {
	return func(f *ReplayStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReplayStoreFactory creates a new factory
func NewReplayStoreFactory(webhookCfg config.WebhookConfig, redisCfg config.RedisConfig, opts ...ReplayStoreFactoryOption) *ReplayStoreFactory {
	f := &ReplayStoreFactory{
		webhookConfig:         webhookCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: !webhookCfg.RequireSharedStore,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the configured store. "memory" always yields the
// in-memory store; "redis" falls back to it only when fallback is allowed.
func (f *ReplayStoreFactory) CreateStore() (shared.ReplayStore, error) {
	if f.webhookConfig.ReplayStore != "redis" {
		f.logger.Info("using in-memory webhook replay store; replay history is not shared between processes")
		return NewInMemoryReplayStore(), nil
	}

	store, err := NewRedisReplayStore(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis webhook replay store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for webhook replay protection but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory webhook replay store. "+
		"Duplicate deliveries to different processes will not be detected.",
		zap.Error(err),
	)
	return NewInMemoryReplayStore(), nil
}
