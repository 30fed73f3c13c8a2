package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

// JobMetrics collects the outcome of one worker invocation and pushes it to a
// Prometheus Pushgateway. One-shot processes exit before any scrape, hence push.
// The task is the push grouping key and must not appear as a metric label.
type JobMetrics struct {
	registry    *prometheus.Registry
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
	items       *prometheus.GaugeVec
	failures    prometheus.Counter

	url    string
	job    string
	task   string
	logger *zap.Logger
}

// NewJobMetrics builds the registry for one run of task. An empty url disables Push.
func NewJobMetrics(url, job, task string, logger *zap.Logger) *JobMetrics {
	m := &JobMetrics{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "omnisync_job_duration_seconds",
			Help: "Duration of the last job run",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "omnisync_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful job run",
		}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "omnisync_job_items",
			Help: "Items produced by the last job run",
		}, []string{"kind"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "omnisync_job_failures_total",
			Help: "Failed job runs",
		}),
		url:    url,
		job:    job,
		task:   task,
		logger: logger,
	}
	m.registry.MustRegister(m.duration, m.lastSuccess, m.items, m.failures)
	return m
}

// Observe records the finished run
func (m *JobMetrics) Observe(started time.Time, err error) {
	m.duration.Set(time.Since(started).Seconds())
	if err != nil {
		m.failures.Inc()
		return
	}
	m.lastSuccess.SetToCurrentTime()
}

// SetItems records how many items of kind the run produced
func (m *JobMetrics) SetItems(kind string, n int) {
	m.items.WithLabelValues(kind).Set(float64(n))
}

// Registry exposes the underlying registry for tests and ad hoc gathering
func (m *JobMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push sends the collected metrics to the gateway, grouped by task
func (m *JobMetrics) Push(ctx context.Context) error {
	if m.url == "" {
		return nil
	}
	err := push.New(m.url, m.job).
		Gatherer(m.registry).
		Grouping("task", m.task).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push job metrics: %w", err)
	}
	m.logger.Debug("Pushed job metrics", zap.String("url", m.url), zap.String("task", m.task))
	return nil
}
