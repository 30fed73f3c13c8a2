package persistence

import (
	"context"

	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const insightBatchSize = 200

// GormInsightRepository implements inventory.InsightRepository using GORM
type GormInsightRepository struct {
	db *gorm.DB
}

// NewGormInsightRepository creates a new GormInsightRepository
func NewGormInsightRepository(db *gorm.DB) *GormInsightRepository {
	return &GormInsightRepository{db: db}
}

// Append inserts insights in batches
func (r *GormInsightRepository) Append(ctx context.Context, insights []inventory.Insight) error {
	if len(insights) == 0 {
		return nil
	}
	rows := make([]models.InsightModel, len(insights))
	for i, in := range insights {
		rows[i].FromDomain(in)
	}
	return r.db.WithContext(ctx).CreateInBatches(&rows, insightBatchSize).Error
}

// List returns insights newest first, with the total count for the filter
func (r *GormInsightRepository) List(ctx context.Context, filter inventory.InsightFilter, page shared.PageRequest) ([]inventory.Insight, int64, error) {
	page = page.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InsightModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InsightModel
	if err := query.
		Order("generated_date DESC, id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	insights := make([]inventory.Insight, len(rows))
	for i := range rows {
		insights[i] = rows[i].ToDomain()
	}
	return insights, total, nil
}

func (r *GormInsightRepository) applyFilter(query *gorm.DB, filter inventory.InsightFilter) *gorm.DB {
	if filter.SKU != "" {
		query = query.Where("product_sku = ?", filter.SKU)
	}
	if filter.Channel != "" {
		query = query.Where("channel = ?", filter.Channel.String())
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status.String())
	}
	return query
}

// Ensure GormInsightRepository implements inventory.InsightRepository
var _ inventory.InsightRepository = (*GormInsightRepository)(nil)
