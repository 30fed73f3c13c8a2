package inventory

import (
	"context"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultThresholdDays is the listing age after which a stocked product is a slow mover
const DefaultThresholdDays = 30

// InsightStatus is a stock-health classification
type InsightStatus string

const (
	// InsightOutOfStock marks a product with no stock on hand
	InsightOutOfStock InsightStatus = "out-of-stock"
	// InsightSlowMover marks a stocked product listed for longer than the threshold
	InsightSlowMover InsightStatus = "slow-mover"
)

// IsValid returns true if the status is a known classification
func (s InsightStatus) IsValid() bool {
	return s == InsightOutOfStock || s == InsightSlowMover
}

// String returns the string representation of InsightStatus
func (s InsightStatus) String() string {
	return string(s)
}

// Classify returns the stock-health status of p as of now. A zero quantity
// always wins over listing age. ok is false when the product is healthy.
func Classify(p Product, now time.Time, thresholdDays int) (status InsightStatus, ok bool) {
	if p.Quantity == 0 {
		return InsightOutOfStock, true
	}
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}
	cutoff := now.AddDate(0, 0, -thresholdDays)
	if !p.ListedDate.IsZero() && p.ListedDate.Before(cutoff) {
		return InsightSlowMover, true
	}
	return "", false
}

// Insight is an append-only audit fact recording a classification
type Insight struct {
	ID            uuid.UUID
	ProductSKU    string
	Channel       channel.Channel
	Status        InsightStatus
	GeneratedDate time.Time
}

// NewInsight creates an insight for p generated at now
func NewInsight(p Product, status InsightStatus, now time.Time) Insight {
	return Insight{
		ID:            uuid.New(),
		ProductSKU:    p.SKU,
		Channel:       p.Channel,
		Status:        status,
		GeneratedDate: now.UTC(),
	}
}

// InsightFilter narrows insight listings. Zero values match everything.
type InsightFilter struct {
	SKU     string
	Channel channel.Channel
	Status  InsightStatus
}

// InsightRepository stores the insight audit trail
type InsightRepository interface {
	// Append inserts insights; rows are never deduplicated
	Append(ctx context.Context, insights []Insight) error

	// List returns insights newest first
	List(ctx context.Context, filter InsightFilter, page shared.PageRequest) ([]Insight, int64, error)
}
