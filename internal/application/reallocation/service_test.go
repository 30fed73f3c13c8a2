package reallocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockReallocationRepository is a mock implementation of inventory.ReallocationRepository
type MockReallocationRepository struct {
	mock.Mock
}

func (m *MockReallocationRepository) InsertIgnoringConflicts(ctx context.Context, r *inventory.Reallocation) (bool, error) {
	args := m.Called(ctx, r)
	return args.Bool(0), args.Error(1)
}

func (m *MockReallocationRepository) Create(ctx context.Context, r *inventory.Reallocation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReallocationRepository) ListAll(ctx context.Context) ([]inventory.Reallocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Reallocation), args.Error(1)
}

func (m *MockReallocationRepository) ListPaginated(ctx context.Context, page shared.PageRequest) ([]inventory.Reallocation, int64, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.Reallocation), args.Get(1).(int64), args.Error(2)
}

func (m *MockReallocationRepository) Exists(ctx context.Context, key inventory.CandidateKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo inventory.ReallocationRepository) *Service {
	s := NewService(repo, zap.NewNop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestService_Create(t *testing.T) {
	repo := new(MockReallocationRepository)
	key := inventory.CandidateKey{SKU: "ABC", ChannelOrigin: channel.Amazon, Reason: inventory.InsightOutOfStock}
	repo.On("Exists", mock.Anything, key).Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *inventory.Reallocation) bool {
		return r.Key() == key && r.AddedDate.Equal(fixedNow)
	})).Return(nil)

	resp, err := newTestService(repo).Create(context.Background(), CreateReallocationRequest{
		SKU: " ABC ", ChannelOrigin: "Amazon", Reason: "out-of-stock",
	})

	require.NoError(t, err)
	assert.Equal(t, "ABC", resp.SKU)
	assert.Equal(t, "amazon", resp.ChannelOrigin)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	repo.AssertExpectations(t)
}

func TestService_Create_AlreadyExists(t *testing.T) {
	tests := []struct {
		name      string
		exists    bool
		createErr error
	}{
		{"found by pre-check", true, nil},
		{"lost race to storage constraint", false, shared.ErrPersistenceConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockReallocationRepository)
			repo.On("Exists", mock.Anything, mock.Anything).Return(tt.exists, nil)
			repo.On("Create", mock.Anything, mock.Anything).Return(tt.createErr)

			_, err := newTestService(repo).Create(context.Background(), CreateReallocationRequest{
				SKU: "ABC", ChannelOrigin: "ebay", Reason: "slow-mover",
			})

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "ALREADY_EXISTS", de.Code)
			if tt.exists {
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_Create_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  CreateReallocationRequest
		code string
	}{
		{"unknown channel", CreateReallocationRequest{SKU: "A", ChannelOrigin: "etsy", Reason: "slow-mover"}, "INVALID_CHANNEL"},
		{"unknown reason", CreateReallocationRequest{SKU: "A", ChannelOrigin: "woot", Reason: "overstock"}, "INVALID_REASON"},
		{"empty sku", CreateReallocationRequest{SKU: "  ", ChannelOrigin: "woot", Reason: "slow-mover"}, "INVALID_SKU"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockReallocationRepository)
			_, err := newTestService(repo).Create(context.Background(), tt.req)

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
			repo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Create_StorageError(t *testing.T) {
	repo := new(MockReallocationRepository)
	repo.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := newTestService(repo).Create(context.Background(), CreateReallocationRequest{
		SKU: "ABC", ChannelOrigin: "ebay", Reason: "slow-mover",
	})
	assert.EqualError(t, err, "db down")
}

func TestService_List(t *testing.T) {
	repo := new(MockReallocationRepository)
	items := []inventory.Reallocation{
		{ID: uuid.New(), SKU: "A", ChannelOrigin: channel.Woot, Reason: inventory.InsightSlowMover, AddedDate: fixedNow},
	}
	repo.On("ListPaginated", mock.Anything, shared.PageRequest{Page: 1, PageSize: shared.DefaultPageSize}).
		Return(items, int64(21), nil)

	page, err := newTestService(repo).List(context.Background(), shared.PageRequest{})

	require.NoError(t, err)
	assert.Equal(t, int64(21), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "slow-mover", page.Items[0].Reason)
}

func TestService_ListAll(t *testing.T) {
	repo := new(MockReallocationRepository)
	repo.On("ListAll", mock.Anything).Return([]inventory.Reallocation{
		{SKU: "A", ChannelOrigin: channel.Amazon, Reason: inventory.InsightOutOfStock},
		{SKU: "B", ChannelOrigin: channel.Ebay, Reason: inventory.InsightSlowMover},
	}, nil)

	all, err := newTestService(repo).ListAll(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "B", all[1].SKU)
}

func TestService_Exists(t *testing.T) {
	repo := new(MockReallocationRepository)
	key := inventory.CandidateKey{SKU: "ABC", ChannelOrigin: channel.Ebay, Reason: inventory.InsightSlowMover}
	repo.On("Exists", mock.Anything, key).Return(true, nil)

	ok, err := newTestService(repo).Exists(context.Background(), "ABC", "ebay", "slow-mover")

	require.NoError(t, err)
	assert.True(t, ok)
}
