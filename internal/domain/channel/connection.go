package channel

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Connection links a user account to one sales channel
type Connection struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Channel     Channel
	Credentials Credentials
	Enabled     bool
	CreatedAt   time.Time
}

// ConnectionRepository reads the channel connections the sync pass walks over
type ConnectionRepository interface {
	// ListUserIDs returns every user with at least one enabled connection, ordered by id
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)

	// FindEnabledByUser returns the user's enabled connections ordered by channel
	FindEnabledByUser(ctx context.Context, userID uuid.UUID) ([]Connection, error)

	// Save creates or updates a connection
	Save(ctx context.Context, conn *Connection) error
}
