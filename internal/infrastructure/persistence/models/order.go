package models

import (
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for order.Record
type OrderModel struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Channel   string           `gorm:"type:varchar(20);not null;uniqueIndex:uq_orders_channel_ext_id,priority:1"`
	ExtID     string           `gorm:"type:varchar(128);not null;uniqueIndex:uq_orders_channel_ext_id,priority:2"`
	PlacedAt  time.Time        `gorm:"not null;index"`
	Status    string           `gorm:"type:varchar(20);not null"`
	Currency  string           `gorm:"type:varchar(3);not null"`
	Total     decimal.Decimal  `gorm:"type:numeric(18,4);not null"`
	CreatedAt time.Time        `gorm:"not null"`
	Lines     []OrderLineModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel is the persistence model for order.Line
type OrderLineModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo    int             `gorm:"not null"`
	SKU       string          `gorm:"type:varchar(64);not null;index"`
	Quantity  int             `gorm:"not null;check:chk_order_lines_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// FromDomain populates the model and its lines from a record
func (m *OrderModel) FromDomain(r *order.Record) {
	m.ID = r.ID
	m.Channel = r.Channel.String()
	m.ExtID = r.ExtID
	m.PlacedAt = r.PlacedAt
	m.Status = r.Status.String()
	m.Currency = r.Currency
	m.Total = r.Total
	m.CreatedAt = r.CreatedAt
	m.Lines = make([]OrderLineModel, len(r.Lines))
	for i, l := range r.Lines {
		m.Lines[i] = OrderLineModel{
			ID:        l.ID,
			OrderID:   r.ID,
			LineNo:    i + 1,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
}

// ToDomain converts the model to an order.Record
func (m *OrderModel) ToDomain() *order.Record {
	r := &order.Record{
		ID:        m.ID,
		ExtID:     m.ExtID,
		Channel:   channel.Channel(m.Channel),
		PlacedAt:  m.PlacedAt,
		Status:    channel.OrderStatus(m.Status),
		Currency:  m.Currency,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
		Lines:     make([]order.Line, len(m.Lines)),
	}
	for i, l := range m.Lines {
		r.Lines[i] = order.Line{
			ID:        l.ID,
			OrderID:   l.OrderID,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return r
}
