// Package reallocation serves reallocation candidates to API consumers and
// handles manual creation.
package reallocation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
	"go.uber.org/zap"
)

// Service is the read/query facade over reallocation candidates
type Service struct {
	repo   inventory.ReallocationRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new Service
func NewService(repo inventory.ReallocationRepository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.Named("reallocation"),
		now:    time.Now,
	}
}

// ListAll returns every candidate, oldest first
func (s *Service) ListAll(ctx context.Context) ([]ReallocationResponse, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToReallocationResponses(items), nil
}

// List returns one page of candidates, oldest first
func (s *Service) List(ctx context.Context, page shared.PageRequest) (shared.Paginated[ReallocationResponse], error) {
	page = page.Normalize()
	items, total, err := s.repo.ListPaginated(ctx, page)
	if err != nil {
		return shared.Paginated[ReallocationResponse]{}, err
	}
	return shared.NewPaginated(ToReallocationResponses(items), total, page), nil
}

// Exists reports whether a candidate exists for the given triple
func (s *Service) Exists(ctx context.Context, sku, channelOrigin, reason string) (bool, error) {
	key, err := parseKey(sku, channelOrigin, reason)
	if err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, key)
}

// Create inserts a candidate by hand. An existing triple, whether found by the
// pre-check or by the storage constraint, is ALREADY_EXISTS.
func (s *Service) Create(ctx context.Context, req CreateReallocationRequest) (*ReallocationResponse, error) {
	key, err := parseKey(req.SKU, req.ChannelOrigin, req.Reason)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, alreadyExists()
	}

	r, err := inventory.NewReallocation(key, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, shared.ErrPersistenceConflict) {
			return nil, alreadyExists()
		}
		return nil, err
	}

	s.logger.Info("Reallocation candidate created",
		zap.String("sku", r.SKU),
		zap.String("channel_origin", r.ChannelOrigin.String()),
		zap.String("reason", r.Reason.String()),
	)
	resp := ToReallocationResponse(*r)
	return &resp, nil
}

func parseKey(sku, channelOrigin, reason string) (inventory.CandidateKey, error) {
	ch, err := channel.Parse(channelOrigin)
	if err != nil {
		return inventory.CandidateKey{}, shared.NewDomainError("INVALID_CHANNEL", "Unknown channel: "+channelOrigin)
	}
	key := inventory.CandidateKey{SKU: strings.TrimSpace(sku), ChannelOrigin: ch, Reason: inventory.Reason(reason)}
	if err := key.Validate(); err != nil {
		return inventory.CandidateKey{}, err
	}
	return key, nil
}

func alreadyExists() error {
	return shared.NewDomainError("ALREADY_EXISTS", "Reallocation candidate already exists")
}
