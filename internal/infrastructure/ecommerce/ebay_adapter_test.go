package ecommerce

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEbayAdapter_FetchOrders(t *testing.T) {
	server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sell/fulfillment/v1/order", r.URL.Path)
		assert.Equal(t, "Bearer v^1.1#token", r.Header.Get("Authorization"))
		assert.Equal(t, "creationdate:[2025-05-31T12:00:00.000Z..]", r.URL.Query().Get("filter"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		switch r.URL.Query().Get("offset") {
		case "0":
			fmt.Fprint(w, `{"orders":[
				{"orderId":"456","creationDate":"2025-05-31T13:00:00.000Z","orderFulfillmentStatus":"NOT_STARTED",
				 "cancelStatus":{"cancelState":"NONE_REQUESTED"},
				 "pricingSummary":{"total":{"value":"9.99","currency":"USD"}},
				 "lineItems":[{"sku":"ABC","quantity":1,"lineItemCost":{"value":"9.99","currency":"USD"}}]},
				{"orderId":"457","creationDate":"2025-05-31T14:00:00.000Z","orderFulfillmentStatus":"FULFILLED",
				 "cancelStatus":{"cancelState":"NONE_REQUESTED"},
				 "pricingSummary":{"total":{"value":"30.00","currency":"USD"}},
				 "lineItems":[{"sku":"DEF","quantity":3,"lineItemCost":{"value":"30.00","currency":"USD"}}]}
			],"next":"https://api.ebay.com/sell/fulfillment/v1/order?offset=2","total":3,"offset":0,"limit":2}`)
		case "2":
			fmt.Fprint(w, `{"orders":[
				{"orderId":"458","creationDate":"2025-05-31T15:00:00.000Z","orderFulfillmentStatus":"FULFILLED",
				 "cancelStatus":{"cancelState":"CANCELED"},
				 "pricingSummary":{"total":{"value":"0.00","currency":"USD"}},"lineItems":[]}
			],"total":3,"offset":2,"limit":2}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	})

	a, err := NewEbayAdapter(channel.Credentials{CredAccessToken: "v^1.1#token", CredBaseURL: server.URL}, testSettings())
	require.NoError(t, err)

	orders, err := fetchAll(t, a)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, "456", orders[0].ExtID)
	assert.Equal(t, channel.Ebay, orders[0].Channel)
	assert.Equal(t, channel.OrderStatusNew, orders[0].Status)
	assert.NoError(t, orders[0].Validate())

	assert.Equal(t, channel.OrderStatusShipped, orders[1].Status)
	assert.True(t, orders[1].Lines[0].UnitPrice.Decimal.Equal(decimal.NewFromInt(10)))

	assert.Equal(t, channel.OrderStatusCancelled, orders[2].Status)
}

func TestEbayAdapter_StopsWhenConsumerStops(t *testing.T) {
	var requests atomic.Int32
	server := createMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"orders":[{"orderId":"1"},{"orderId":"2"}],"next":"more"}`)
	})
	a, err := NewEbayAdapter(channel.Credentials{CredAccessToken: "t", CredBaseURL: server.URL}, testSettings())
	require.NoError(t, err)

	for p, err := range a.FetchOrders(t.Context()) {
		require.NoError(t, err)
		assert.Equal(t, "1", p.ExtID)
		break
	}
	assert.Equal(t, int32(1), requests.Load())
}

func TestEbayAdapter_RequiresToken(t *testing.T) {
	_, err := NewEbayAdapter(channel.Credentials{}, testSettings())
	assert.ErrorIs(t, err, channel.ErrNotConfigured)
}
