package models

import (
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/google/uuid"
)

// ConnectionModel is the persistence model for channel.Connection
type ConnectionModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uq_channel_connections_user_channel,priority:1"`
	Channel     string            `gorm:"type:varchar(20);not null;uniqueIndex:uq_channel_connections_user_channel,priority:2"`
	Credentials map[string]string `gorm:"type:jsonb;serializer:json;not null"`
	Enabled     bool              `gorm:"not null"`
	CreatedAt   time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ConnectionModel) TableName() string {
	return "channel_connections"
}

// FromDomain populates the model from a connection
func (m *ConnectionModel) FromDomain(c *channel.Connection) {
	m.ID = c.ID
	m.UserID = c.UserID
	m.Channel = c.Channel.String()
	m.Credentials = map[string]string(c.Credentials)
	if m.Credentials == nil {
		m.Credentials = map[string]string{}
	}
	m.Enabled = c.Enabled
	m.CreatedAt = c.CreatedAt
}

// ToDomain converts the model to a channel.Connection
func (m *ConnectionModel) ToDomain() channel.Connection {
	return channel.Connection{
		ID:          m.ID,
		UserID:      m.UserID,
		Channel:     channel.Channel(m.Channel),
		Credentials: channel.Credentials(m.Credentials),
		Enabled:     m.Enabled,
		CreatedAt:   m.CreatedAt,
	}
}
