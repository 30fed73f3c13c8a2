package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/omnisync/internal/application/ordersync"
	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockSyncer struct{ mock.Mock }

func (m *mockSyncer) SyncAllUsers(ctx context.Context) (*ordersync.PassReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.PassReport), args.Error(1)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate(ctx context.Context, thresholdDays int) ([]inventory.Insight, error) {
	args := m.Called(ctx, thresholdDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Insight), args.Error(1)
}

type mockRecorder struct{ mock.Mock }

func (m *mockRecorder) Observe(_ time.Time, err error) {
	m.Called(err)
}

func (m *mockRecorder) SetItems(kind string, n int) {
	m.Called(kind, n)
}

func (m *mockRecorder) Push(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestRunSync(t *testing.T) {
	t.Run("records the pass", func(t *testing.T) {
		svc := new(mockSyncer)
		rec := new(mockRecorder)
		svc.On("SyncAllUsers", mock.Anything).Return(&ordersync.PassReport{Users: 2, Inserted: 5, FailedChannels: 1}, nil)
		rec.On("SetItems", "users", 2).Once()
		rec.On("SetItems", "inserted", 5).Once()
		rec.On("SetItems", "failed_channels", 1).Once()
		rec.On("Observe", nil).Once()
		rec.On("Push", mock.Anything).Return(nil).Once()

		err := runSync(t.Context(), svc, rec, zap.NewNop())

		assert.NoError(t, err)
		rec.AssertExpectations(t)
	})

	t.Run("aborted pass still pushes and returns the error", func(t *testing.T) {
		svc := new(mockSyncer)
		rec := new(mockRecorder)
		svc.On("SyncAllUsers", mock.Anything).Return(&ordersync.PassReport{Users: 1}, shared.ErrStorageUnavailable)
		rec.On("SetItems", mock.Anything, mock.Anything)
		rec.On("Observe", shared.ErrStorageUnavailable).Once()
		rec.On("Push", mock.Anything).Return(nil).Once()

		err := runSync(t.Context(), svc, rec, zap.NewNop())

		assert.ErrorIs(t, err, shared.ErrStorageUnavailable)
		rec.AssertExpectations(t)
	})

	t.Run("push failure does not fail the job", func(t *testing.T) {
		svc := new(mockSyncer)
		rec := new(mockRecorder)
		svc.On("SyncAllUsers", mock.Anything).Return(&ordersync.PassReport{}, nil)
		rec.On("SetItems", mock.Anything, mock.Anything)
		rec.On("Observe", nil)
		rec.On("Push", mock.Anything).Return(errors.New("gateway down"))

		assert.NoError(t, runSync(t.Context(), svc, rec, zap.NewNop()))
	})
}

func TestRunInsights(t *testing.T) {
	t.Run("passes the threshold through", func(t *testing.T) {
		gen := new(mockGenerator)
		rec := new(mockRecorder)
		gen.On("Generate", mock.Anything, 45).Return(make([]inventory.Insight, 3), nil).Once()
		rec.On("SetItems", "insights", 3).Once()
		rec.On("Observe", nil).Once()
		rec.On("Push", mock.Anything).Return(nil).Once()

		assert.NoError(t, runInsights(t.Context(), gen, 45, rec, zap.NewNop()))
		gen.AssertExpectations(t)
		rec.AssertExpectations(t)
	})

	t.Run("failed pass records no items", func(t *testing.T) {
		gen := new(mockGenerator)
		rec := new(mockRecorder)
		gen.On("Generate", mock.Anything, 0).Return(nil, shared.ErrStorageUnavailable)
		rec.On("Observe", shared.ErrStorageUnavailable).Once()
		rec.On("Push", mock.Anything).Return(nil).Once()

		err := runInsights(t.Context(), gen, 0, rec, zap.NewNop())

		assert.ErrorIs(t, err, shared.ErrStorageUnavailable)
		rec.AssertNotCalled(t, "SetItems", mock.Anything, mock.Anything)
		rec.AssertExpectations(t)
	})
}
