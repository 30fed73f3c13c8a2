// Package webhook handles inbound order webhooks: verify, parse, then sync.
package webhook

import (
	"context"
	"errors"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/infrastructure/logger"
	"github.com/erp/omnisync/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Verifier authenticates a raw body against its signature. A nil error means
// the delivery is genuine and has not been seen inside the replay window.
type Verifier interface {
	Check(ctx context.Context, payload []byte, signature string) error
}

// Parser turns a raw body into a canonical order payload
type Parser interface {
	Parse(payload []byte) (*channel.OrderPayload, error)
}

// OrderSyncer persists one payload idempotently
type OrderSyncer interface {
	SyncOrder(ctx context.Context, p *channel.OrderPayload) (bool, error)
}

// Outcome describes an accepted delivery
type Outcome struct {
	Channel  channel.Channel
	ExtID    string
	Inserted bool
}

// Service processes webhook deliveries
type Service struct {
	verifier Verifier
	parser   Parser
	syncer   OrderSyncer
	metrics  *telemetry.EngineMetrics
	logger   *zap.Logger
}

// NewService creates a new Service. metrics may be nil.
func NewService(verifier Verifier, parser Parser, syncer OrderSyncer, metrics *telemetry.EngineMetrics, logger *zap.Logger) *Service {
	return &Service{
		verifier: verifier,
		parser:   parser,
		syncer:   syncer,
		metrics:  metrics,
		logger:   logger.Named("webhook"),
	}
}

// Handle verifies, parses and stores one delivery. Nothing is written when
// verification or parsing fails. Verification errors are returned unchanged
// so the caller can tell a replay from a bad signature.
func (s *Service) Handle(ctx context.Context, payload []byte, signature string) (*Outcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "webhook", "handle")
	defer span.End()
	log := logger.For(ctx, s.logger)

	if err := s.verifier.Check(ctx, payload, signature); err != nil {
		s.metrics.RecordWebhook(ctx, "rejected")
		telemetry.RecordError(span, err)
		log.Info("Webhook rejected", zap.Int("bytes", len(payload)), zap.Error(err))
		return nil, err
	}

	p, err := s.parser.Parse(payload)
	if err != nil {
		s.metrics.RecordWebhook(ctx, "malformed")
		telemetry.RecordError(span, err)
		log.Info("Webhook payload malformed", zap.Error(err))
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrChannel, p.Channel.String(),
		telemetry.SpanAttrExtID, p.ExtID,
	)

	inserted, err := s.syncer.SyncOrder(ctx, p)
	if err != nil {
		outcome := "failed"
		if errors.Is(err, channel.ErrMalformedPayload) {
			outcome = "malformed"
		}
		s.metrics.RecordWebhook(ctx, outcome)
		telemetry.RecordError(span, err)
		return nil, err
	}

	outcome := "accepted"
	if !inserted {
		outcome = "duplicate"
	}
	s.metrics.RecordWebhook(ctx, outcome)
	telemetry.SetOK(span)
	log.Debug("Webhook processed",
		zap.String("channel", p.Channel.String()),
		zap.String("ext_id", p.ExtID),
		zap.Bool("inserted", inserted),
	)
	return &Outcome{Channel: p.Channel, ExtID: p.ExtID, Inserted: inserted}, nil
}
