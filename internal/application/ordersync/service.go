// Package ordersync turns normalized order payloads into durable, deduplicated
// order records.
package ordersync

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/order"
	"github.com/erp/omnisync/internal/domain/shared"
	"github.com/erp/omnisync/internal/infrastructure/logger"
	"github.com/erp/omnisync/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HealthChecker checks storage after a failed write. A non-nil error means
// storage is unavailable and the pass must stop.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Service synchronizes orders from channel adapters and webhooks
type Service struct {
	orders   order.Repository
	conns    channel.ConnectionRepository
	registry channel.AdapterRegistry
	health   HealthChecker
	metrics  *telemetry.EngineMetrics
	logger   *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithMetrics sets the metrics recorder
func WithMetrics(m *telemetry.EngineMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new Service
func NewService(
	orders order.Repository,
	conns channel.ConnectionRepository,
	registry channel.AdapterRegistry,
	health HealthChecker,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		orders:   orders,
		conns:    conns,
		registry: registry,
		health:   health,
		logger:   logger.Named("ordersync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncOrder persists a single payload. It reports whether a new record was
// written; an existing (channel, ext_id) is a no-op. Errors wrap
// channel.ErrMalformedPayload or shared.ErrStorageUnavailable when they apply.
func (s *Service) SyncOrder(ctx context.Context, p *channel.OrderPayload) (bool, error) {
	inserted, skipped, err := s.syncOrder(ctx, p)
	if p != nil {
		ch := p.Channel.String()
		s.metrics.RecordSkippedLines(ctx, ch, skipped)
		s.metrics.RecordOrders(ctx, ch, outcomeOf(inserted, err), 1)
	}
	return inserted, err
}

// SyncPayloads consumes seq until it ends or yields an error. Malformed and
// individually failed orders are counted and skipped. A sequence error is
// returned as a transient channel error; storage unavailability aborts with
// shared.ErrStorageUnavailable. Orders committed before either stay committed.
func (s *Service) SyncPayloads(ctx context.Context, seq iter.Seq2[*channel.OrderPayload, error]) (*Result, error) {
	res := &Result{}
	var fatal error

	for p, seqErr := range seq {
		if seqErr != nil {
			if !errors.Is(seqErr, channel.ErrTransient) {
				seqErr = fmt.Errorf("%w: %w", channel.ErrTransient, seqErr)
			}
			fatal = seqErr
			break
		}
		if err := ctx.Err(); err != nil {
			fatal = err
			break
		}

		inserted, skipped, err := s.syncOrder(ctx, p)
		res.SkippedLines += skipped
		switch {
		case err == nil && inserted:
			res.Inserted++
		case err == nil:
			res.Duplicates++
		case errors.Is(err, channel.ErrMalformedPayload):
			res.Malformed++
		case errors.Is(err, shared.ErrStorageUnavailable):
			fatal = err
		default:
			res.Failed++
		}
		if fatal != nil {
			break
		}
	}

	return res, fatal
}

func (s *Service) syncOrder(ctx context.Context, p *channel.OrderPayload) (inserted bool, skipped int, err error) {
	log := logger.For(ctx, s.logger)
	if p == nil {
		return false, 0, fmt.Errorf("%w: nil payload", channel.ErrMalformedPayload)
	}

	rec, skippedLines, err := order.FromPayload(p)
	if err != nil {
		log.Warn("Skipping malformed order",
			zap.String("channel", p.Channel.String()),
			zap.String("ext_id", p.ExtID),
			zap.Error(err),
		)
		return false, 0, err
	}
	for _, sl := range skippedLines {
		log.Warn("Skipping malformed order line",
			zap.String("channel", rec.Channel.String()),
			zap.String("ext_id", rec.ExtID),
			zap.Int("line", sl.Index),
			zap.String("sku", sl.SKU),
			zap.Error(sl.Reason),
		)
	}
	skipped = len(skippedLines)

	// advisory only; CreateIfAbsent resolves races on the unique key
	exists, err := s.orders.ExistsByKey(ctx, rec.Key())
	if err != nil {
		return false, skipped, s.storageError(ctx, rec, err)
	}
	if exists {
		return false, skipped, nil
	}

	inserted, err = s.orders.CreateIfAbsent(ctx, rec)
	if err != nil {
		if errors.Is(err, shared.ErrPersistenceConflict) {
			return false, skipped, nil
		}
		return false, skipped, s.storageError(ctx, rec, err)
	}
	if inserted {
		log.Debug("Order stored",
			zap.String("channel", rec.Channel.String()),
			zap.String("ext_id", rec.ExtID),
			zap.Int("lines", len(rec.Lines)),
		)
	}
	return inserted, skipped, nil
}

// storageError decides whether a failed write is fatal for the pass
func (s *Service) storageError(ctx context.Context, rec *order.Record, err error) error {
	if errors.Is(err, shared.ErrStorageUnavailable) {
		return err
	}
	if s.health != nil {
		if pingErr := s.health.Ping(ctx); pingErr != nil {
			if !errors.Is(pingErr, shared.ErrStorageUnavailable) {
				pingErr = fmt.Errorf("%w: %w", shared.ErrStorageUnavailable, pingErr)
			}
			return fmt.Errorf("store order %s/%s: %w", rec.Channel, rec.ExtID, pingErr)
		}
	}
	logger.For(ctx, s.logger).Warn("Failed to store order",
		zap.String("channel", rec.Channel.String()),
		zap.String("ext_id", rec.ExtID),
		zap.Error(err),
	)
	return fmt.Errorf("store order %s/%s: %w", rec.Channel, rec.ExtID, err)
}

// SyncChannel polls one connection and stores what it yields
func (s *Service) SyncChannel(ctx context.Context, conn channel.Connection) (*Result, error) {
	ctx = logger.WithChannel(ctx, conn.Channel.String())
	ctx = logger.WithUserID(ctx, conn.UserID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "ordersync", "sync_channel",
		telemetry.WithAttribute(telemetry.SpanAttrChannel, conn.Channel.String()),
		telemetry.WithAttribute(telemetry.SpanAttrUserID, conn.UserID.String()),
	)
	defer span.End()

	adapter, err := s.registry.Get(conn.Channel.String(), conn.Credentials)
	if err != nil {
		telemetry.RecordError(span, err)
		return &Result{}, err
	}

	res, err := s.SyncPayloads(ctx, adapter.FetchOrders(ctx))

	ch := conn.Channel.String()
	s.metrics.RecordOrders(ctx, ch, "inserted", res.Inserted)
	s.metrics.RecordOrders(ctx, ch, "duplicate", res.Duplicates)
	s.metrics.RecordOrders(ctx, ch, "malformed", res.Malformed)
	s.metrics.RecordOrders(ctx, ch, "failed", res.Failed)
	s.metrics.RecordSkippedLines(ctx, ch, res.SkippedLines)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInserted, res.Inserted,
		telemetry.SpanAttrDuplicates, res.Duplicates,
		telemetry.SpanAttrMalformed, res.Malformed,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return res, err
	}
	telemetry.SetOK(span)
	return res, nil
}

// SyncAllUsers walks every user's enabled connections sequentially. Unknown
// channels, missing credentials and transient failures skip that channel for
// this pass only. Storage unavailability stops the pass.
func (s *Service) SyncAllUsers(ctx context.Context) (*PassReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ordersync", "sync_all_users")
	defer span.End()

	started := time.Now()
	report := &PassReport{}
	err := s.syncAllUsers(ctx, report)
	s.metrics.RecordPass(ctx, "sync", time.Since(started), err)

	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Order sync pass aborted",
			zap.Int("users", report.Users),
			zap.Int("inserted", report.Inserted),
			zap.Error(err),
		)
		return report, err
	}

	telemetry.SetOK(span)
	s.logger.Info("Order sync pass complete",
		zap.Int("users", report.Users),
		zap.Int("channels", len(report.Channels)),
		zap.Int("inserted", report.Inserted),
		zap.Int("failed_channels", report.FailedChannels),
		zap.Duration("duration", time.Since(started)),
	)
	return report, nil
}

func (s *Service) syncAllUsers(ctx context.Context, report *PassReport) error {
	userIDs, err := s.conns.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("%w: list users: %w", shared.ErrStorageUnavailable, err)
	}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		conns, err := s.conns.FindEnabledByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("%w: list connections for %s: %w", shared.ErrStorageUnavailable, userID, err)
		}
		report.Users++

		for _, conn := range conns {
			res, err := s.SyncChannel(ctx, conn)
			report.add(ChannelReport{UserID: userID, Channel: conn.Channel, Result: *res, Err: err})
			if err == nil {
				continue
			}
			if errors.Is(err, shared.ErrStorageUnavailable) {
				return err
			}
			// a cancelled or expired pass is not a channel failure
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			reason := failureReason(err)
			s.metrics.RecordChannelFailure(ctx, conn.Channel.String(), reason)
			telemetry.AddEvent(trace.SpanFromContext(ctx), "channel.skipped",
				telemetry.SpanAttrUserID, userID.String(),
				telemetry.SpanAttrChannel, conn.Channel.String(),
				"reason", reason,
			)
			s.logger.Warn("Channel sync skipped for this pass",
				zap.String("user_id", userID.String()),
				zap.String("channel", conn.Channel.String()),
				zap.String("reason", reason),
				zap.Int("inserted_before_failure", res.Inserted),
				zap.Error(err),
			)
		}
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, channel.ErrUnknownChannel):
		return "unknown_channel"
	case errors.Is(err, channel.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, channel.ErrTransient):
		return "transient"
	default:
		return "other"
	}
}

func outcomeOf(inserted bool, err error) string {
	switch {
	case err == nil && inserted:
		return "inserted"
	case err == nil:
		return "duplicate"
	case errors.Is(err, channel.ErrMalformedPayload):
		return "malformed"
	default:
		return "failed"
	}
}
