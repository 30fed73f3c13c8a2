package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/erp/omnisync/internal/domain/inventory"
	"github.com/erp/omnisync/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWriter struct {
	msgs     []kafka.Message
	err      error
	deadline bool
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func candidate(sku string, ch channel.Channel, reason inventory.Reason) inventory.Reallocation {
	return inventory.Reallocation{
		ID:            uuid.New(),
		SKU:           sku,
		ChannelOrigin: ch,
		Reason:        reason,
		AddedDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestKafkaCandidatePublisher_NotifyCandidates(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaCandidatePublisher(w, time.Second, zap.NewNop())

	err := p.NotifyCandidates(context.Background(), []inventory.Reallocation{
		candidate("ABC", channel.Amazon, inventory.InsightOutOfStock),
		candidate("SLOW", channel.Woot, inventory.InsightSlowMover),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.True(t, w.deadline)

	assert.Equal(t, "ABC", string(w.msgs[0].Key))
	assert.Equal(t, EventCandidateProposed, string(w.msgs[0].Headers[0].Value))

	var ev CandidateEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &ev))
	assert.Equal(t, "SLOW", ev.SKU)
	assert.Equal(t, "woot", ev.ChannelOrigin)
	assert.Equal(t, "slow-mover", ev.Reason)
}

func TestKafkaCandidatePublisher_Empty(t *testing.T) {
	w := &recordingWriter{err: errors.New("should not be called")}
	p := newKafkaCandidatePublisher(w, 0, zap.NewNop())

	assert.NoError(t, p.NotifyCandidates(context.Background(), nil))
	assert.Empty(t, w.msgs)
}

func TestKafkaCandidatePublisher_WriteError(t *testing.T) {
	w := &recordingWriter{err: kafka.LeaderNotAvailable}
	p := newKafkaCandidatePublisher(w, time.Second, zap.NewNop())

	err := p.NotifyCandidates(context.Background(), []inventory.Reallocation{
		candidate("ABC", channel.Ebay, inventory.InsightOutOfStock),
	})
	assert.ErrorIs(t, err, kafka.LeaderNotAvailable)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaCandidatePublisher_Validation(t *testing.T) {
	_, err := NewKafkaCandidatePublisher(config.KafkaConfig{Topic: "t"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewKafkaCandidatePublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, zap.NewNop())
	assert.Error(t, err)

	p, err := NewKafkaCandidatePublisher(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
