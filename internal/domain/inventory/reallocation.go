package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/google/uuid"
)

// Reason explains why a reallocation candidate was proposed. Its values match
// the insight classifications.
type Reason = InsightStatus

// CandidateKey is the storage-enforced unique key of a reallocation candidate
type CandidateKey struct {
	SKU           string
	ChannelOrigin channel.Channel
	Reason        Reason
}

// String returns "sku/channel/reason"
func (k CandidateKey) String() string {
	return k.SKU + "/" + k.ChannelOrigin.String() + "/" + k.Reason.String()
}

// Validate checks that every part of the key is present and known
func (k CandidateKey) Validate() error {
	if strings.TrimSpace(k.SKU) == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if !k.ChannelOrigin.IsValid() {
		return shared.NewDomainError("INVALID_CHANNEL", fmt.Sprintf("Unknown channel %q", k.ChannelOrigin))
	}
	if !k.Reason.IsValid() {
		return shared.NewDomainError("INVALID_REASON", fmt.Sprintf("Unknown reason %q", k.Reason))
	}
	return nil
}

// Reallocation is a proposal to move stock of a SKU away from a channel. At
// most one exists per CandidateKey. Candidates are never updated or deleted
// here.
type Reallocation struct {
	ID            uuid.UUID
	SKU           string
	ChannelOrigin channel.Channel
	Reason        Reason
	AddedDate     time.Time
}

// NewReallocation creates a candidate for key added at now
func NewReallocation(key CandidateKey, now time.Time) (*Reallocation, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return &Reallocation{
		ID:            uuid.New(),
		SKU:           strings.TrimSpace(key.SKU),
		ChannelOrigin: key.ChannelOrigin,
		Reason:        key.Reason,
		AddedDate:     now.UTC(),
	}, nil
}

// Key returns the unique key of the candidate
func (r *Reallocation) Key() CandidateKey {
	return CandidateKey{SKU: r.SKU, ChannelOrigin: r.ChannelOrigin, Reason: r.Reason}
}

// ReallocationRepository persists reallocation candidates
type ReallocationRepository interface {
	// InsertIgnoringConflicts inserts r unless its key already exists. It
	// reports whether a row was written; an existing key is not an error.
	InsertIgnoringConflicts(ctx context.Context, r *Reallocation) (bool, error)

	// Create is a plain insert. A duplicate key returns shared.ErrPersistenceConflict.
	Create(ctx context.Context, r *Reallocation) error

	// ListAll returns every candidate ordered by added date ascending
	ListAll(ctx context.Context) ([]Reallocation, error)

	// ListPaginated returns one page ordered by added date ascending and the total count
	ListPaginated(ctx context.Context, page shared.PageRequest) ([]Reallocation, int64, error)

	// Exists reports whether a candidate with key exists
	Exists(ctx context.Context, key CandidateKey) (bool, error)
}
