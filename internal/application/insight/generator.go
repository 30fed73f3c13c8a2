// Package insight derives stock-health insights from product inventory and
// proposes deduplicated reallocation candidates.
package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultPageSize bounds how many products are held in memory at once
const DefaultPageSize = 200

// Config holds generator settings
type Config struct {
	ThresholdDays int
	PageSize      int
}

// Generator scans products, appends insights and proposes reallocation candidates
type Generator struct {
	scope    TransactionScope
	notifier CandidateNotifier
	metrics  *telemetry.EngineMetrics
	logger   *zap.Logger
	config   Config
	now      func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithNotifier sets the candidate notifier
func WithNotifier(n CandidateNotifier) Option {
	return func(g *Generator) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *telemetry.EngineMetrics) Option {
	return func(g *Generator) {
		g.metrics = m
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a new Generator
func NewGenerator(scope TransactionScope, cfg Config, logger *zap.Logger, opts ...Option) *Generator {
	if cfg.ThresholdDays <= 0 {
		cfg.ThresholdDays = inventory.DefaultThresholdDays
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	g := &Generator{
		scope:    scope,
		notifier: NoopNotifier{},
		logger:   logger.Named("insight"),
		config:   cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate classifies every product against now and returns the insights it
// created. thresholdDays <= 0 uses the configured default. The whole pass is
// one transaction; any storage error rolls it back and wraps
// shared.ErrStorageUnavailable.
func (g *Generator) Generate(ctx context.Context, thresholdDays int) ([]inventory.Insight, error) {
	if thresholdDays <= 0 {
		thresholdDays = g.config.ThresholdDays
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "insight", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrThreshold, thresholdDays))
	defer span.End()

	started := time.Now()
	now := g.now().UTC()

	var (
		created    []inventory.Insight
		candidates []inventory.Reallocation
	)
	err := g.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		created, candidates = nil, nil
		return g.scan(ctx, repos, now, thresholdDays, &created, &candidates)
	})
	g.metrics.RecordPass(ctx, "insights", time.Since(started), err)
	if err != nil {
		telemetry.RecordError(span, err)
		g.logger.Error("Insight generation aborted", zap.Error(err))
		return nil, err
	}

	for _, in := range created {
		g.metrics.RecordInsight(ctx, in.Channel.String(), in.Status.String())
	}
	g.metrics.RecordCandidates(ctx, len(candidates))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInsights, len(created),
		telemetry.SpanAttrCandidates, len(candidates),
	)
	telemetry.SetOK(span)

	g.logger.Info("Insight generation complete",
		zap.Int("insights", len(created)),
		zap.Int("new_candidates", len(candidates)),
		zap.Int("threshold_days", thresholdDays),
		zap.Duration("duration", time.Since(started)),
	)

	if len(candidates) > 0 {
		if err := g.notifier.NotifyCandidates(ctx, candidates); err != nil {
			g.logger.Warn("Failed to notify reallocation candidates",
				zap.Int("count", len(candidates)),
				zap.Error(err),
			)
		}
	}

	return created, nil
}

func (g *Generator) scan(
	ctx context.Context,
	repos TransactionalRepositories,
	now time.Time,
	thresholdDays int,
	created *[]inventory.Insight,
	candidates *[]inventory.Reallocation,
) error {
	after := ""
	for {
		products, err := repos.Products().ListAfter(ctx, after, g.config.PageSize)
		if err != nil {
			return fmt.Errorf("%w: list products: %w", shared.ErrStorageUnavailable, err)
		}
		if len(products) == 0 {
			return nil
		}

		batch := make([]inventory.Insight, 0, len(products))
		for _, p := range products {
			status, ok := inventory.Classify(p, now, thresholdDays)
			if !ok {
				continue
			}
			batch = append(batch, inventory.NewInsight(p, status, now))
		}

		if err := repos.Insights().Append(ctx, batch); err != nil {
			return fmt.Errorf("%w: append insights: %w", shared.ErrStorageUnavailable, err)
		}

		for _, in := range batch {
			key := inventory.CandidateKey{SKU: in.ProductSKU, ChannelOrigin: in.Channel, Reason: in.Status}
			realloc, err := inventory.NewReallocation(key, now)
			if err != nil {
				g.logger.Warn("Skipping reallocation candidate",
					zap.String("sku", in.ProductSKU),
					zap.String("channel", in.Channel.String()),
					zap.Error(err),
				)
				continue
			}
			inserted, err := repos.Reallocations().InsertIgnoringConflicts(ctx, realloc)
			if err != nil {
				return fmt.Errorf("%w: insert reallocation %s: %w", shared.ErrStorageUnavailable, key, err)
			}
			if inserted {
				*candidates = append(*candidates, *realloc)
			}
		}

		*created = append(*created, batch...)
		if len(products) < g.config.PageSize {
			return nil
		}
		after = products[len(products)-1].SKU
	}
}
