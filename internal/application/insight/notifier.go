package insight

import (
	"context"

	"github.com/erp/omnisync/internal/domain/inventory"
)

// CandidateNotifier is told about reallocation candidates after the pass that
// created them has committed. Failures are logged by the generator and never
// undo the pass.
type CandidateNotifier interface {
	NotifyCandidates(ctx context.Context, candidates []inventory.Reallocation) error
}

// NoopNotifier discards notifications
type NoopNotifier struct{}

// NotifyCandidates implements CandidateNotifier
func (NoopNotifier) NotifyCandidates(context.Context, []inventory.Reallocation) error {
	return nil
}
