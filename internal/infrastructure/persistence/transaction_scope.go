package persistence

import (
	"context"

	appinsight "github.com/erp/omnisync/internal/application/insight"
	"github.com/erp/omnisync/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements appinsight.TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. A returned error rolls back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinsight.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Products() inventory.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormTransactionalRepositories) Insights() inventory.InsightRepository {
	return NewGormInsightRepository(r.tx)
}

func (r *gormTransactionalRepositories) Reallocations() inventory.ReallocationRepository {
	return NewGormReallocationRepository(r.tx)
}

var (
	_ appinsight.TransactionScope          = (*GormTransactionScope)(nil)
	_ appinsight.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
