package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/omnisync/internal/domain/shared"
)

// InMemoryReplayStore implements shared.ReplayStore with a process-local map.
// Entries are not shared between processes, so two workers behind a load
// balancer each accept one delivery of the same webhook. Use RedisReplayStore
// when more than one process serves webhooks.
type InMemoryReplayStore struct {
	mu        sync.Mutex
	entries   map[string]time.Time // key -> expiry
	now       func() time.Time
	interval  time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// InMemoryOption configures an InMemoryReplayStore
type InMemoryOption func(*InMemoryReplayStore)

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) InMemoryOption {
	return func(s *InMemoryReplayStore) {
		s.now = now
	}
}

// WithCleanupInterval sets how often expired entries are swept (default 5m)
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(s *InMemoryReplayStore) {
		if d > 0 {
			s.interval = d
		}
	}
}

// NewInMemoryReplayStore creates the store and starts its cleanup goroutine
func NewInMemoryReplayStore(opts ...InMemoryOption) *InMemoryReplayStore {
	s := &InMemoryReplayStore{
		entries:  make(map[string]time.Time),
		now:      time.Now,
		interval: 5 * time.Minute,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Remember records key until now+ttl. It returns false if the key is still
// remembered from an earlier call.
func (s *InMemoryReplayStore) Remember(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, ok := s.entries[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

// Seen reports whether key is remembered and unexpired
func (s *InMemoryReplayStore) Seen(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.entries[key]
	return ok && s.now().Before(expiresAt), nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryReplayStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryReplayStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryReplayStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of entries, expired or not (tests/monitoring)
func (s *InMemoryReplayStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ shared.ReplayStore = (*InMemoryReplayStore)(nil)
