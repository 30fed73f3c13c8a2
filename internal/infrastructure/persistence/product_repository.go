package persistence

import (
	"context"

	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements inventory.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// ListAfter returns the next keyset page of products ordered by sku
func (r *GormProductRepository) ListAfter(ctx context.Context, afterSKU string, limit int) ([]inventory.Product, error) {
	if limit <= 0 {
		limit = 100
	}
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if afterSKU != "" {
		query = query.Where("sku > ?", afterSKU)
	}

	var rows []models.ProductModel
	if err := query.Order("sku ASC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]inventory.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].ToDomain()
	}
	return products, nil
}

// Save upserts a product by sku
func (r *GormProductRepository) Save(ctx context.Context, p *inventory.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	var m models.ProductModel
	m.FromDomain(p)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "channel", "quantity", "status", "listed_date", "updated_at"}),
	}).Create(&m).Error
}

// Ensure GormProductRepository implements inventory.ProductRepository
var _ inventory.ProductRepository = (*GormProductRepository)(nil)
