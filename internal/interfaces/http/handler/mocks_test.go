package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/erp/omnisync/internal/application/reallocation"
	appwebhook "github.com/erp/omnisync/internal/application/webhook"
	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/order"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/interfaces/http/dto"
	"github.com/erp/omnisync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockReallocationService is a mock implementation of ReallocationService
type MockReallocationService struct {
	mock.Mock
}

func (m *MockReallocationService) List(ctx context.Context, page shared.PageRequest) (shared.Paginated[reallocation.ReallocationResponse], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(shared.Paginated[reallocation.ReallocationResponse]), args.Error(1)
}

func (m *MockReallocationService) ListAll(ctx context.Context) ([]reallocation.ReallocationResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reallocation.ReallocationResponse), args.Error(1)
}

func (m *MockReallocationService) Exists(ctx context.Context, sku, channelOrigin, reason string) (bool, error) {
	args := m.Called(ctx, sku, channelOrigin, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockReallocationService) Create(ctx context.Context, req reallocation.CreateReallocationRequest) (*reallocation.ReallocationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reallocation.ReallocationResponse), args.Error(1)
}

// MockInsightLister is a mock implementation of InsightLister
type MockInsightLister struct {
	mock.Mock
}

func (m *MockInsightLister) List(ctx context.Context, filter inventory.InsightFilter, page shared.PageRequest) (shared.Paginated[inventory.Insight], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(shared.Paginated[inventory.Insight]), args.Error(1)
}

// MockOrderFinder is a mock implementation of OrderFinder
type MockOrderFinder struct {
	mock.Mock
}

func (m *MockOrderFinder) FindByKey(ctx context.Context, key order.Key) (*order.Record, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Record), args.Error(1)
}

// MockWebhookProcessor is a mock implementation of WebhookProcessor
type MockWebhookProcessor struct {
	mock.Mock
}

func (m *MockWebhookProcessor) Handle(ctx context.Context, payload []byte, signature string) (*appwebhook.Outcome, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appwebhook.Outcome), args.Error(1)
}

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// serve runs req through a router carrying the standard request id middleware
func serve(t *testing.T, register func(rg *gin.RouterGroup), method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Use(middleware.RequestID())
	register(router.Group("/api/v1"))

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
