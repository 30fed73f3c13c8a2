package persistence

import (
	"context"
	"fmt"

	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReallocationRepository implements inventory.ReallocationRepository using GORM
type GormReallocationRepository struct {
	db *gorm.DB
}

// NewGormReallocationRepository creates a new GormReallocationRepository
func NewGormReallocationRepository(db *gorm.DB) *GormReallocationRepository {
	return &GormReallocationRepository{db: db}
}

// InsertIgnoringConflicts inserts with ON CONFLICT DO NOTHING on the
// (sku, channel_origin, reason) unique key
func (r *GormReallocationRepository) InsertIgnoringConflicts(ctx context.Context, realloc *inventory.Reallocation) (bool, error) {
	var m models.ReallocationModel
	m.FromDomain(realloc)

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}, {Name: "channel_origin"}, {Name: "reason"}},
		DoNothing: true,
	}).Create(&m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Create inserts a reallocation. Duplicate keys return shared.ErrPersistenceConflict.
func (r *GormReallocationRepository) Create(ctx context.Context, realloc *inventory.Reallocation) error {
	var m models.ReallocationModel
	m.FromDomain(realloc)

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reallocation %s", shared.ErrPersistenceConflict, realloc.Key())
		}
		return err
	}
	return nil
}

// ListAll returns every reallocation ordered by added date
func (r *GormReallocationRepository) ListAll(ctx context.Context) ([]inventory.Reallocation, error) {
	var rows []models.ReallocationModel
	if err := r.db.WithContext(ctx).Order("added_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReallocations(rows), nil
}

// ListPaginated returns one page ordered by added date and the total count
func (r *GormReallocationRepository) ListPaginated(ctx context.Context, page shared.PageRequest) ([]inventory.Reallocation, int64, error) {
	page = page.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ReallocationModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReallocationModel
	if err := r.db.WithContext(ctx).
		Order("added_date ASC, id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toReallocations(rows), total, nil
}

// Exists reports whether a reallocation with the key is stored
func (r *GormReallocationRepository) Exists(ctx context.Context, key inventory.CandidateKey) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReallocationModel{}).
		Where("sku = ? AND channel_origin = ? AND reason = ?", key.SKU, key.ChannelOrigin.String(), key.Reason.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func toReallocations(rows []models.ReallocationModel) []inventory.Reallocation {
	out := make([]inventory.Reallocation, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormReallocationRepository implements inventory.ReallocationRepository
var _ inventory.ReallocationRepository = (*GormReallocationRepository)(nil)
