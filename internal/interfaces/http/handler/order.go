package handler

import (
	"context"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/order"
	"github.com/erp/omnisync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderFinder looks up stored orders by natural key
type OrderFinder interface {
	FindByKey(ctx context.Context, key order.Key) (*order.Record, error)
}

// OrderHandler serves stored order records
type OrderHandler struct {
	BaseHandler
	orders OrderFinder
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderFinder) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// OrderLineResponse is one line of an order
type OrderLineResponse struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order record in API responses
type OrderResponse struct {
	ID        uuid.UUID           `json:"id"`
	Channel   string              `json:"channel"`
	ExtID     string              `json:"ext_id"`
	Status    string              `json:"status"`
	Currency  string              `json:"currency"`
	Total     decimal.Decimal     `json:"total"`
	PlacedAt  time.Time           `json:"placed_at"`
	CreatedAt time.Time           `json:"created_at"`
	Lines     []OrderLineResponse `json:"lines"`
}

func toOrderResponse(r *order.Record) OrderResponse {
	lines := make([]OrderLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = OrderLineResponse{
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
		}
	}
	return OrderResponse{
		ID:        r.ID,
		Channel:   r.Channel.String(),
		ExtID:     r.ExtID,
		Status:    r.Status.String(),
		Currency:  r.Currency,
		Total:     r.Total,
		PlacedAt:  r.PlacedAt,
		CreatedAt: r.CreatedAt,
		Lines:     lines,
	}
}

// Get handles GET /orders/:channel/:ext_id
func (h *OrderHandler) Get(c *gin.Context) {
	ch, err := channel.Parse(c.Param("channel"))
	if err != nil {
		h.ErrorWithCode(c, dto.ErrCodeInvalidChannel, "Unknown channel "+c.Param("channel"))
		return
	}

	rec, err := h.orders.FindByKey(c.Request.Context(), order.Key{Channel: ch, ExtID: c.Param("ext_id")})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toOrderResponse(rec))
}

// RegisterRoutes mounts the order routes on rg
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:channel/:ext_id", h.Get)
}

