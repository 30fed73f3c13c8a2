package insight

import (
	"context"

	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of inventory.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListAfter(ctx context.Context, afterSKU string, limit int) ([]inventory.Product, error) {
	args := m.Called(ctx, afterSKU, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *inventory.Product) error {
	return m.Called(ctx, p).Error(0)
}

// MockInsightRepository is a mock implementation of inventory.InsightRepository
type MockInsightRepository struct {
	mock.Mock
}

func (m *MockInsightRepository) Append(ctx context.Context, insights []inventory.Insight) error {
	return m.Called(ctx, insights).Error(0)
}

func (m *MockInsightRepository) List(ctx context.Context, filter inventory.InsightFilter, page shared.PageRequest) ([]inventory.Insight, int64, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventory.Insight), args.Get(1).(int64), args.Error(2)
}

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
	return args.Get(0).([]inventory.Reallocation), args.Error(1)
}

func (m *MockReallocationRepository) ListPaginated(ctx context.Context, page shared.PageRequest) ([]inventory.Reallocation, int64, error) {
	args := m.Called(ctx, page)
	return args.Get(0).([]inventory.Reallocation), args.Get(1).(int64), args.Error(2)
}

func (m *MockReallocationRepository) Exists(ctx context.Context, key inventory.CandidateKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock implementation of CandidateNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyCandidates(ctx context.Context, candidates []inventory.Reallocation) error {
	return m.Called(ctx, candidates).Error(0)
}

// passthroughScope runs fn directly against the mocks; it records whether
// the pass returned an error the way a real transaction would roll back.
type passthroughScope struct {
	products      *MockProductRepository
	insights      *MockInsightRepository
	reallocations *MockReallocationRepository
	rolledBack    bool
}

func newPassthroughScope() *passthroughScope {
	return &passthroughScope{
		products:      new(MockProductRepository),
		insights:      new(MockInsightRepository),
		reallocations: new(MockReallocationRepository),
	}
}

func (s *passthroughScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	err := fn(s)
	s.rolledBack = err != nil
	return err
}

func (s *passthroughScope) Products() inventory.ProductRepository           { return s.products }
func (s *passthroughScope) Insights() inventory.InsightRepository           { return s.insights }
func (s *passthroughScope) Reallocations() inventory.ReallocationRepository { return s.reallocations }
