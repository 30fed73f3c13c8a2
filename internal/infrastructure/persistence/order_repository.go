package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/omnisync/internal/domain/order"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByKey finds an order and its lines by (channel, ext_id)
func (r *GormOrderRepository) FindByKey(ctx context.Context, key order.Key) (*order.Record, error) {
	var m models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Where("channel = ? AND ext_id = ?", key.Channel.String(), key.ExtID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// ExistsByKey reports whether an order with the key is stored
func (r *GormOrderRepository) ExistsByKey(ctx context.Context, key order.Key) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("channel = ? AND ext_id = ?", key.Channel.String(), key.ExtID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateIfAbsent inserts the order header with ON CONFLICT DO NOTHING on
// (channel, ext_id). Lines are written only when the header was inserted,
// and both happen in the same transaction.
func (r *GormOrderRepository) CreateIfAbsent(ctx context.Context, rec *order.Record) (bool, error) {
	var m models.OrderModel
	m.FromDomain(rec)
	lines := m.Lines

	inserted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel"}, {Name: "ext_id"}},
			DoNothing: true,
		}).Omit(clause.Associations).Create(&m)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		inserted = true
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("%w: order %s/%s", shared.ErrPersistenceConflict, rec.Channel, rec.ExtID)
		}
		return false, err
	}
	if inserted {
		rec.CreatedAt = m.CreatedAt
	}
	return inserted, nil
}

// Count returns the number of stored orders
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
