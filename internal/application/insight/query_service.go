package insight

import (
	"context"

	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
)

// QueryService serves the insight audit trail
type QueryService struct {
	repo inventory.InsightRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(repo inventory.InsightRepository) *QueryService {
	return &QueryService{repo: repo}
}

// List returns one page of insights, newest first
func (s *QueryService) List(ctx context.Context, filter inventory.InsightFilter, page shared.PageRequest) (shared.Paginated[inventory.Insight], error) {
	page = page.Normalize()
	items, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return shared.Paginated[inventory.Insight]{}, err
	}
	return shared.NewPaginated(items, total, page), nil
}
