package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultReplayKeyPrefix = "omnisync:webhook:replay:"

// RedisReplayStore implements shared.ReplayStore on Redis so that every
// process serving webhooks shares one replay history
type RedisReplayStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisReplayStore connects to Redis and verifies the connection
func NewRedisReplayStore(cfg config.RedisConfig) (*RedisReplayStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisReplayStore{
		client:    client,
		keyPrefix: defaultReplayKeyPrefix,
	}, nil
}

// NewRedisReplayStoreWithClient creates a store on an existing client
func NewRedisReplayStoreWithClient(client *redis.Client, keyPrefix string) *RedisReplayStore {
	if keyPrefix == "" {
		keyPrefix = defaultReplayKeyPrefix
	}
	return &RedisReplayStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Remember uses SET NX with expiry, which is atomic across all clients
func (s *RedisReplayStore) Remember(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remember replay key: %w", err)
	}
	return ok, nil
}

// Seen reports whether key is currently stored
func (s *RedisReplayStore) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check replay key: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis client
func (s *RedisReplayStore) Close() error {
	return s.client.Close()
}

var _ shared.ReplayStore = (*RedisReplayStore)(nil)
