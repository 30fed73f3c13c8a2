package insight

import (
	"context"

	"github.com/erp/omnisync/internal/domain/inventory"
)

// TransactionScope runs a generation pass atomically. A returned error rolls
// back every insight and candidate written by fn.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are bound to a single transaction
type TransactionalRepositories interface {
	Products() inventory.ProductRepository
	Insights() inventory.InsightRepository
	Reallocations() inventory.ReallocationRepository
}
