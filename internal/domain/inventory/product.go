// Package inventory covers stock-health classification of listed products and
// the reallocation candidates derived from it.
package inventory

import (
	"context"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/google/uuid"
)

// Product is a listed SKU and its on-hand quantity. Product master data is
// authored elsewhere; this engine only reads it.
type Product struct {
	ID         uuid.UUID
	SKU        string
	Name       string
	Channel    channel.Channel
	Quantity   int
	Status     string
	ListedDate time.Time
}

// ProductRepository reads products in a stable order
type ProductRepository interface {
	// ListAfter returns up to limit products with sku > afterSKU ordered by sku.
	// An empty afterSKU starts from the beginning.
	ListAfter(ctx context.Context, afterSKU string, limit int) ([]Product, error)

	// Save creates or updates a product by sku
	Save(ctx context.Context, p *Product) error
}
