package models

import (
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/google/uuid"
)

// ProductModel is the persistence model for inventory.Product
type ProductModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SKU        string     `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name       string     `gorm:"type:varchar(255);not null"`
	Channel    string     `gorm:"type:varchar(20);not null"`
	Quantity   int        `gorm:"not null;default:0"`
	Status     string     `gorm:"type:varchar(20);not null;default:'active'"`
	ListedDate *time.Time ``
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// FromDomain populates the model from a product
func (m *ProductModel) FromDomain(p *inventory.Product) {
	m.ID = p.ID
	m.SKU = p.SKU
	m.Name = p.Name
	m.Channel = p.Channel.String()
	m.Quantity = p.Quantity
	m.Status = p.Status
	m.ListedDate = nil
	if !p.ListedDate.IsZero() {
		listed := p.ListedDate
		m.ListedDate = &listed
	}
}

// ToDomain converts the model to an inventory.Product
func (m *ProductModel) ToDomain() inventory.Product {
	p := inventory.Product{
		ID:       m.ID,
		SKU:      m.SKU,
		Name:     m.Name,
		Channel:  channel.Channel(m.Channel),
		Quantity: m.Quantity,
		Status:   m.Status,
	}
	if m.ListedDate != nil {
		p.ListedDate = *m.ListedDate
	}
	return p
}

// InsightModel is the persistence model for inventory.Insight
type InsightModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductSKU    string    `gorm:"type:varchar(64);not null;index"`
	Channel       string    `gorm:"type:varchar(20);not null"`
	Status        string    `gorm:"type:varchar(20);not null"`
	GeneratedDate time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (InsightModel) TableName() string {
	return "insights"
}

// FromDomain populates the model from an insight
func (m *InsightModel) FromDomain(i inventory.Insight) {
	m.ID = i.ID
	m.ProductSKU = i.ProductSKU
	m.Channel = i.Channel.String()
	m.Status = i.Status.String()
	m.GeneratedDate = i.GeneratedDate
}

// ToDomain converts the model to an inventory.Insight
func (m *InsightModel) ToDomain() inventory.Insight {
	return inventory.Insight{
		ID:            m.ID,
		ProductSKU:    m.ProductSKU,
		Channel:       channel.Channel(m.Channel),
		Status:        inventory.InsightStatus(m.Status),
		GeneratedDate: m.GeneratedDate,
	}
}

// ReallocationModel is the persistence model for inventory.Reallocation.
// The unique index on (sku, channel_origin, reason) is what keeps concurrent
// generator passes and manual creation from producing duplicates.
type ReallocationModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SKU           string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_reallocations_key,priority:1"`
	ChannelOrigin string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_reallocations_key,priority:2"`
	Reason        string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_reallocations_key,priority:3"`
	AddedDate     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ReallocationModel) TableName() string {
	return "reallocations"
}

// FromDomain populates the model from a reallocation
func (m *ReallocationModel) FromDomain(r *inventory.Reallocation) {
	m.ID = r.ID
	m.SKU = r.SKU
	m.ChannelOrigin = r.ChannelOrigin.String()
	m.Reason = r.Reason.String()
	m.AddedDate = r.AddedDate
}

// ToDomain converts the model to an inventory.Reallocation
func (m *ReallocationModel) ToDomain() inventory.Reallocation {
	return inventory.Reallocation{
		ID:            m.ID,
		SKU:           m.SKU,
		ChannelOrigin: channel.Channel(m.ChannelOrigin),
		Reason:        inventory.Reason(m.Reason),
		AddedDate:     m.AddedDate,
	}
}
