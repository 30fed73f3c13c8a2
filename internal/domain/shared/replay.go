package shared

import (
	"context"
	"time"
)

// ReplayStore remembers keys for a bounded time. Implementations must make
// Remember atomic so that concurrent callers presenting the same key see
// exactly one winner.
type ReplayStore interface {
	// Remember records key for ttl. It returns true if the key was not already
	// present (or had expired), false if it is still remembered.
	Remember(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Seen reports whether key is currently remembered
	Seen(ctx context.Context, key string) (bool, error)

	// Close releases resources held by the store
	Close() error
}
