// Package messaging publishes engine events to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/omnisync/internal/application/insight"
	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventCandidateProposed is the event type carried in the message header
const EventCandidateProposed = "reallocation.candidate.proposed"

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// CandidateEvent is the message body for a newly proposed candidate
type CandidateEvent struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"`
	ChannelOrigin string    `json:"channel_origin"`
	Reason        string    `json:"reason"`
	AddedDate     time.Time `json:"added_date"`
}

// KafkaCandidatePublisher sends each new reallocation candidate to a topic,
// keyed by SKU so every proposal for a SKU lands on one partition
type KafkaCandidatePublisher struct {
	writer       messageWriter
	writeTimeout time.Duration
	logger       *zap.Logger
}

var _ insight.CandidateNotifier = (*KafkaCandidatePublisher)(nil)

// NewKafkaCandidatePublisher creates a publisher for cfg.Topic on cfg.Brokers
func NewKafkaCandidatePublisher(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaCandidatePublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
		WriteTimeout: cfg.WriteTimeout,
	}
	return newKafkaCandidatePublisher(writer, cfg.WriteTimeout, logger), nil
}

func newKafkaCandidatePublisher(w messageWriter, writeTimeout time.Duration, logger *zap.Logger) *KafkaCandidatePublisher {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &KafkaCandidatePublisher{
		writer:       w,
		writeTimeout: writeTimeout,
		logger:       logger.Named("kafka_publisher"),
	}
}

// NotifyCandidates writes one message per candidate in a single batch
func (p *KafkaCandidatePublisher) NotifyCandidates(ctx context.Context, candidates []inventory.Reallocation) error {
	if len(candidates) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(candidates))
	now := time.Now().UTC()
	for _, c := range candidates {
		body, err := json.Marshal(CandidateEvent{
			ID:            c.ID.String(),
			SKU:           c.SKU,
			ChannelOrigin: c.ChannelOrigin.String(),
			Reason:        c.Reason.String(),
			AddedDate:     c.AddedDate,
		})
		if err != nil {
			return fmt.Errorf("marshal candidate %s: %w", c.Key(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(c.SKU),
			Value:   body,
			Time:    now,
			Headers: []kafka.Header{{Key: "event_type", Value: []byte(EventCandidateProposed)}},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d candidates: %w", len(msgs), err)
	}
	p.logger.Debug("Published reallocation candidates", zap.Int("count", len(msgs)))
	return nil
}

// Close flushes and closes the writer
func (p *KafkaCandidatePublisher) Close() error {
	return p.writer.Close()
}
