package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/order"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderHandler_Get(t *testing.T) {
	orders := new(MockOrderFinder)
	rec := &order.Record{
		ID:       uuid.New(),
		ExtID:    "123",
		Channel:  channel.Amazon,
		PlacedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		Status:   channel.OrderStatusNew,
		Currency: "USD",
		Total:    decimal.RequireFromString("19.98"),
		Lines: []order.Line{
			{SKU: "ABC", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		},
	}
	orders.On("FindByKey", mock.Anything, order.Key{Channel: channel.Amazon, ExtID: "123"}).Return(rec, nil)

	w := serve(t, NewOrderHandler(orders).RegisterRoutes, http.MethodGet, "/api/v1/orders/Amazon/123", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "amazon", data["channel"])
	assert.Equal(t, "NEW", data["status"])
	assert.Equal(t, "19.98", data["total"])
	lines := data["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "19.98", lines[0].(map[string]any)["amount"])
}

func TestOrderHandler_Get_NotFound(t *testing.T) {
	orders := new(MockOrderFinder)
	orders.On("FindByKey", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	w := serve(t, NewOrderHandler(orders).RegisterRoutes, http.MethodGet, "/api/v1/orders/ebay/999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
}

func TestOrderHandler_Get_UnknownChannel(t *testing.T) {
	orders := new(MockOrderFinder)

	w := serve(t, NewOrderHandler(orders).RegisterRoutes, http.MethodGet, "/api/v1/orders/etsy/1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidChannel, decode(t, w).Error.Code)
	orders.AssertNotCalled(t, "FindByKey", mock.Anything, mock.Anything)
}
