// Package order holds the durable order record created from channel payloads.
package order

import (
	"context"
	"strings"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one persisted line of an order record
type Line struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Amount returns quantity * unit price
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Record is a persisted order. It is created once per (channel, ext_id) and
// never mutated afterwards.
type Record struct {
	ID        uuid.UUID
	ExtID     string
	Channel   channel.Channel
	PlacedAt  time.Time
	Status    channel.OrderStatus
	Currency  string
	Total     decimal.Decimal
	CreatedAt time.Time
	Lines     []Line
}

// Key returns the natural key of the record
func (r *Record) Key() Key {
	return Key{Channel: r.Channel, ExtID: r.ExtID}
}

// Key is the natural, storage-enforced unique key of an order
type Key struct {
	Channel channel.Channel
	ExtID   string
}

// SkippedLine describes a payload line that was left out of the record
type SkippedLine struct {
	Index  int
	SKU    string
	Reason error
}

// FromPayload builds a record from a payload. Order-level problems return
// channel.ErrMalformedPayload; bad lines are dropped and reported back so the
// caller can log them.
func FromPayload(p *channel.OrderPayload) (*Record, []SkippedLine, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	rec := &Record{
		ID:        uuid.New(),
		ExtID:     strings.TrimSpace(p.ExtID),
		Channel:   p.Channel,
		PlacedAt:  p.PlacedAt.UTC(),
		Status:    p.Status,
		Currency:  strings.ToUpper(p.Currency),
		Total:     p.Total,
		CreatedAt: now,
	}

	var skipped []SkippedLine
	for i, lp := range p.Lines {
		if err := lp.Validate(); err != nil {
			skipped = append(skipped, SkippedLine{Index: i, SKU: lp.SKU, Reason: err})
			continue
		}
		rec.Lines = append(rec.Lines, Line{
			ID:        uuid.New(),
			OrderID:   rec.ID,
			SKU:       strings.TrimSpace(lp.SKU),
			Quantity:  lp.Quantity,
			UnitPrice: lp.UnitPrice.Decimal,
		})
	}
	return rec, skipped, nil
}

// Repository persists order records
type Repository interface {
	// FindByKey returns the record with its lines, or shared.ErrNotFound
	FindByKey(ctx context.Context, key Key) (*Record, error)

	// ExistsByKey reports whether a record exists for the key
	ExistsByKey(ctx context.Context, key Key) (bool, error)

	// CreateIfAbsent inserts the record and its lines in one transaction. It
	// returns false without error when another writer already holds the key.
	CreateIfAbsent(ctx context.Context, rec *Record) (bool, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int64, error)
}
