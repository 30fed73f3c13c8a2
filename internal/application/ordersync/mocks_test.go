package ordersync

import (
	"context"
	"iter"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/order"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByKey(ctx context.Context, key order.Key) (*order.Record, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Record), args.Error(1)
}

func (m *MockOrderRepository) ExistsByKey(ctx context.Context, key order.Key) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CreateIfAbsent(ctx context.Context, rec *order.Record) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockConnectionRepository is a mock implementation of channel.ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockConnectionRepository) FindEnabledByUser(ctx context.Context, userID uuid.UUID) ([]channel.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.Connection), args.Error(1)
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn *channel.Connection) error {
	return m.Called(ctx, conn).Error(0)
}

// MockRegistry is a mock implementation of channel.AdapterRegistry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Register(name string, factory channel.AdapterFactory) error {
	return m.Called(name, factory).Error(0)
}

func (m *MockRegistry) Get(name string, creds channel.Credentials) (channel.Adapter, error) {
	args := m.Called(name, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(channel.Adapter), args.Error(1)
}

func (m *MockRegistry) Registered() []channel.Channel {
	return m.Called().Get(0).([]channel.Channel)
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// stubAdapter yields fixed payloads, then err if set
type stubAdapter struct {
	ch       channel.Channel
	payloads []*channel.OrderPayload
	err      error
}

func (a *stubAdapter) Channel() channel.Channel { return a.ch }

func (a *stubAdapter) FetchOrders(ctx context.Context) iter.Seq2[*channel.OrderPayload, error] {
	return func(yield func(*channel.OrderPayload, error) bool) {
		for _, p := range a.payloads {
			if !yield(p, nil) {
				return
			}
		}
		if a.err != nil {
			yield(nil, a.err)
		}
	}
}
