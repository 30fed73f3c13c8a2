package ecommerce

import (
	"context"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testSettings() Settings {
	return Settings{
		HTTPTimeout:    2 * time.Second,
		PageSize:       2,
		LookbackWindow: 24 * time.Hour,
		Now:            func() time.Time { return testNow },
	}
}

func createMockServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// collect drains seq, stopping at the first error
func collect(t *testing.T, seq iter.Seq2[*channel.OrderPayload, error]) ([]*channel.OrderPayload, error) {
	t.Helper()
	var out []*channel.OrderPayload
	for p, err := range seq {
		if err != nil {
			return out, err
		}
		require.NotNil(t, p)
		out = append(out, p)
	}
	return out, nil
}

func fetchAll(t *testing.T, a channel.Adapter) ([]*channel.OrderPayload, error) {
	t.Helper()
	return collect(t, a.FetchOrders(context.Background()))
}
