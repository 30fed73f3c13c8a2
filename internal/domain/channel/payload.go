package channel

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Storage bounds of order fields
const (
	MaxExtIDLength = 128
	MaxSKULength   = 64
	MaxQuantity    = math.MaxInt32
)

// MaxAmount is the exclusive upper bound of totals and unit prices (NUMERIC(18,4))
var MaxAmount = decimal.New(1, 14)

func amountInRange(d decimal.Decimal) bool {
	return d.Abs().LessThan(MaxAmount)
}

// OrderStatus is the canonical order lifecycle state
type OrderStatus string

const (
	// OrderStatusNew is an order that has not shipped yet
	OrderStatusNew OrderStatus = "NEW"
	// OrderStatusShipped is an order that left the warehouse
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusCancelled is an order cancelled by buyer, seller or channel
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid returns true if the status is one of the canonical values
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusShipped, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// ParseOrderStatus maps the loose status vocabulary used by channels and
// webhooks onto the canonical statuses
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new", "pending", "unshipped", "open", "created", "paid":
		return OrderStatusNew, true
	case "shipped", "fulfilled", "delivered", "completed":
		return OrderStatusShipped, true
	case "cancelled", "canceled":
		return OrderStatusCancelled, true
	default:
		return "", false
	}
}

// OrderLinePayload is one line of an incoming order
type OrderLinePayload struct {
	SKU       string
	Quantity  int
	UnitPrice decimal.NullDecimal
}

// Validate checks that the line carries every required field
func (l OrderLinePayload) Validate() error {
	if strings.TrimSpace(l.SKU) == "" {
		return fmt.Errorf("%w: line sku is required", ErrMalformedPayload)
	}
	if utf8.RuneCountInString(strings.TrimSpace(l.SKU)) > MaxSKULength {
		return fmt.Errorf("%w: line sku longer than %d characters", ErrMalformedPayload, MaxSKULength)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("%w: line %s quantity must be positive", ErrMalformedPayload, l.SKU)
	}
	if l.Quantity > MaxQuantity {
		return fmt.Errorf("%w: line %s quantity %d out of range", ErrMalformedPayload, l.SKU, l.Quantity)
	}
	if !l.UnitPrice.Valid {
		return fmt.Errorf("%w: line %s unit price is required", ErrMalformedPayload, l.SKU)
	}
	if l.UnitPrice.Decimal.IsNegative() {
		return fmt.Errorf("%w: line %s unit price cannot be negative", ErrMalformedPayload, l.SKU)
	}
	if !amountInRange(l.UnitPrice.Decimal) {
		return fmt.Errorf("%w: line %s unit price out of range", ErrMalformedPayload, l.SKU)
	}
	return nil
}

// OrderPayload is the canonical, not yet persisted representation of an order
// received from a channel adapter or a webhook.
type OrderPayload struct {
	ExtID    string
	Channel  Channel
	PlacedAt time.Time
	Status   OrderStatus
	Currency string // ISO-4217
	Total    decimal.Decimal
	Lines    []OrderLinePayload
}

// Validate checks the order-level required fields. Lines are checked one by
// one by the synchronizer so that a bad line does not reject the order.
func (p *OrderPayload) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil payload", ErrMalformedPayload)
	}
	if strings.TrimSpace(p.ExtID) == "" {
		return fmt.Errorf("%w: ext_id is required", ErrMalformedPayload)
	}
	if utf8.RuneCountInString(strings.TrimSpace(p.ExtID)) > MaxExtIDLength {
		return fmt.Errorf("%w: ext_id longer than %d characters", ErrMalformedPayload, MaxExtIDLength)
	}
	if !p.Channel.IsValid() {
		return fmt.Errorf("%w: channel %q", ErrMalformedPayload, p.Channel)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: status %q", ErrMalformedPayload, p.Status)
	}
	if len(p.Currency) != 3 {
		return fmt.Errorf("%w: currency %q", ErrMalformedPayload, p.Currency)
	}
	if p.PlacedAt.IsZero() {
		return fmt.Errorf("%w: placed_at is required", ErrMalformedPayload)
	}
	if !amountInRange(p.Total) {
		return fmt.Errorf("%w: total %s out of range", ErrMalformedPayload, p.Total)
	}
	return nil
}
