package persistence

import (
	"context"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormConnectionRepository implements channel.ConnectionRepository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// ListUserIDs returns the distinct users that have at least one enabled connection
func (r *GormConnectionRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ConnectionModel{}).
		Where("enabled = ?", true).
		Distinct().
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FindEnabledByUser returns the user's enabled connections ordered by channel
func (r *GormConnectionRepository) FindEnabledByUser(ctx context.Context, userID uuid.UUID) ([]channel.Connection, error) {
	var rows []models.ConnectionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND enabled = ?", userID, true).
		Order("channel ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	conns := make([]channel.Connection, len(rows))
	for i := range rows {
		conns[i] = rows[i].ToDomain()
	}
	return conns, nil
}

// Save upserts a connection by (user_id, channel)
func (r *GormConnectionRepository) Save(ctx context.Context, conn *channel.Connection) error {
	if conn.ID == uuid.Nil {
		conn.ID = uuid.New()
	}
	var m models.ConnectionModel
	m.FromDomain(conn)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{"credentials", "enabled"}),
	}).Create(&m).Error
}

// Ensure GormConnectionRepository implements channel.ConnectionRepository
var _ channel.ConnectionRepository = (*GormConnectionRepository)(nil)
