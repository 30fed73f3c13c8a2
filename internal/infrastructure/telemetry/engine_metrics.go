package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// MeterName is the meter used for engine metrics
const MeterName = "omnisync"

// EngineMetrics records order sync, webhook and insight counters.
// A nil *EngineMetrics is valid and records nothing.
type EngineMetrics struct {
	ordersProcessed    *Counter
	linesSkipped       *Counter
	channelFailures    *Counter
	webhookRequests    *Counter
	insightsCreated    *Counter
	candidatesProposed *Counter
	passDuration       *Histogram
}

// NewEngineMetrics registers the engine instruments on meter
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	var (
		m   EngineMetrics
		err error
	)
	if m.ordersProcessed, err = NewCounter(meter, "omnisync_orders_processed_total",
		"Order payloads processed by outcome (inserted, duplicate, malformed, failed)", "{order}"); err != nil {
		return nil, err
	}
	if m.linesSkipped, err = NewCounter(meter, "omnisync_order_lines_skipped_total",
		"Order lines dropped for missing or invalid fields", "{line}"); err != nil {
		return nil, err
	}
	if m.channelFailures, err = NewCounter(meter, "omnisync_channel_failures_total",
		"Channel syncs aborted for the current pass", "{failure}"); err != nil {
		return nil, err
	}
	if m.webhookRequests, err = NewCounter(meter, "omnisync_webhook_requests_total",
		"Inbound webhook deliveries by outcome", "{request}"); err != nil {
		return nil, err
	}
	if m.insightsCreated, err = NewCounter(meter, "omnisync_insights_created_total",
		"Insight rows appended", "{insight}"); err != nil {
		return nil, err
	}
	if m.candidatesProposed, err = NewCounter(meter, "omnisync_reallocations_created_total",
		"Reallocation candidates newly created", "{candidate}"); err != nil {
		return nil, err
	}
	if m.passDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "omnisync_pass_duration_seconds",
		Description: "Duration of sync and insight passes",
		Unit:        "s",
		Boundaries:  PassDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordOrders adds count payloads for channel with the given outcome
func (m *EngineMetrics) RecordOrders(ctx context.Context, channel, outcome string, count int) {
	if m == nil {
		return
	}
	m.ordersProcessed.Add(ctx, int64(count), AttrChannel.String(channel), AttrOutcome.String(outcome))
}

// RecordSkippedLines adds count dropped lines for channel
func (m *EngineMetrics) RecordSkippedLines(ctx context.Context, channel string, count int) {
	if m == nil {
		return
	}
	m.linesSkipped.Add(ctx, int64(count), AttrChannel.String(channel))
}

// RecordChannelFailure counts one aborted channel sync; reason is unknown_channel, transient or other
func (m *EngineMetrics) RecordChannelFailure(ctx context.Context, channel, reason string) {
	if m == nil {
		return
	}
	m.channelFailures.Inc(ctx, AttrChannel.String(channel), AttrOutcome.String(reason))
}

// RecordWebhook counts one webhook delivery by outcome
func (m *EngineMetrics) RecordWebhook(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.webhookRequests.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordInsight counts one appended insight
func (m *EngineMetrics) RecordInsight(ctx context.Context, channel, status string) {
	if m == nil {
		return
	}
	m.insightsCreated.Inc(ctx, AttrChannel.String(channel), AttrStatus.String(status))
}

// RecordCandidates adds count newly created reallocation candidates
func (m *EngineMetrics) RecordCandidates(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.candidatesProposed.Add(ctx, int64(count))
}

// RecordPass records a pass duration for job ("sync" or "insights")
func (m *EngineMetrics) RecordPass(ctx context.Context, job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.passDuration.RecordDuration(ctx, d, AttrJob.String(job), AttrOutcome.String(outcome))
}
