package integration

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/order"
	"github.com/erp/omnisync/internal/infrastructure/persistence"
	"github.com/erp/omnisync/internal/interfaces/http/dto"
	"github.com/erp/omnisync/internal/interfaces/http/handler"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook_StoresOrderOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	ts := NewTestServer(t, tdb)

	payload := []byte(`{"ext_id":"A-1001","channel":"amazon","currency":"USD",` +
		`"items":[{"sku":"ABC","quantity":2,"unit_price":"9.99"},{"sku":"XYZ","quantity":1,"unit_price":"5.00"}]}`)

	w := ts.PostWebhook(t, payload)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	t.Run("same delivery is a replay", func(t *testing.T) {
		w := ts.PostWebhook(t, payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeReplayDetected, decodeResponse(t, w, nil).Error.Code)
	})

	t.Run("redelivery with a new signature is a no-op", func(t *testing.T) {
		// whitespace changes the signature, not the order
		w := ts.PostWebhook(t, append(payload, ' '))
		assert.Equal(t, http.StatusNoContent, w.Code)

		count, err := persistence.NewGormOrderRepository(tdb.DB).Count(t.Context())
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("order is readable with its lines", func(t *testing.T) {
		w := ts.Request(t, http.MethodGet, "/api/v1/orders/amazon/A-1001", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got handler.OrderResponse
		decodeResponse(t, w, &got)
		assert.Equal(t, "A-1001", got.ExtID)
		assert.Equal(t, "NEW", got.Status)
		require.Len(t, got.Lines, 2)
		assert.True(t, decimal.RequireFromString("24.98").Equal(got.Total), got.Total.String())
	})

	t.Run("bad signature writes nothing", func(t *testing.T) {
		other := []byte(`{"ext_id":"A-2002","channel":"amazon","currency":"USD","items":[{"sku":"ABC","quantity":1,"unit_price":"1"}]}`)
		w := ts.Request(t, http.MethodPost, "/api/v1/webhooks/orders", other, map[string]string{
			handler.DefaultSignatureHeader: "00ff",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = ts.Request(t, http.MethodGet, "/api/v1/orders/amazon/A-2002", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestWebhook_MalformedLinesAreSkipped(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	ts := NewTestServer(t, tdb)

	payload := []byte(`{"ext_id":"E-1","channel":"ebay","currency":"USD","items":[` +
		`{"sku":"GOOD","quantity":3,"unit_price":"2.50"},` +
		`{"sku":"","quantity":1,"unit_price":"1.00"},` +
		`{"sku":"ZERO","quantity":0,"unit_price":"1.00"},` +
		`{"sku":"` + strings.Repeat("L", channel.MaxSKULength+1) + `","quantity":1,"unit_price":"1.00"},` +
		`{"sku":"HUGE","quantity":3000000000,"unit_price":"1.00"}]}`)
	w := ts.PostWebhook(t, payload)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = ts.Request(t, http.MethodGet, "/api/v1/orders/ebay/E-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got handler.OrderResponse
	decodeResponse(t, w, &got)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "GOOD", got.Lines[0].SKU)
}

func TestOrderRepository_ConcurrentCreateIfAbsent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	repo := persistence.NewGormOrderRepository(tdb.DB)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
		errs     []error
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := &order.Record{
				ID:       uuid.New(),
				ExtID:    "RACE-1",
				Channel:  channel.Woot,
				Status:   channel.OrderStatusNew,
				Currency: "USD",
				Total:    decimal.NewFromInt(int64(i + 1)),
				Lines: []order.Line{{
					ID:        uuid.New(),
					SKU:       fmt.Sprintf("SKU-%d", i),
					Quantity:  1,
					UnitPrice: decimal.NewFromInt(int64(i + 1)),
				}},
			}
			ok, err := repo.CreateIfAbsent(t.Context(), rec)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				inserted++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, inserted)
	count, err := repo.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var lines int64
	require.NoError(t, tdb.DB.Table("order_lines").Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ts := NewTestServer(t, NewSharedTestDB(t))

	w := ts.Request(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
