package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels for processed work items
const (
	OutcomeCompleted = "completed"
	OutcomeRetried   = "retried"
	OutcomeDead      = "dead"
)

// WorkMetrics records background work and print-job lifecycle metrics.
// A nil *WorkMetrics is valid and records nothing.
type WorkMetrics struct {
	enqueued        metric.Int64Counter
	processed       metric.Int64Counter
	duration        metric.Float64Histogram
	finalized       metric.Int64Counter
	receiptsExpired metric.Int64Counter
	notifications   metric.Int64Counter
}

// NewWorkMetrics creates the instruments on meter.
func NewWorkMetrics(meter metric.Meter) (*WorkMetrics, error) {
	m := &WorkMetrics{}
	var err error

	if m.enqueued, err = meter.Int64Counter("work_items_enqueued_total",
		metric.WithDescription("Work items submitted to the queue"),
		metric.WithUnit("{item}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create enqueued counter: %w", err)
	}
	if m.processed, err = meter.Int64Counter("work_items_processed_total",
		metric.WithDescription("Work item attempts by outcome"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create processed counter: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("work_item_duration_seconds",
		metric.WithDescription("Handler execution time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	if m.finalized, err = meter.Int64Counter("print_jobs_finalized_total",
		metric.WithDescription("Print jobs moved to paid and queued"),
		metric.WithUnit("{job}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create finalized counter: %w", err)
	}
	if m.receiptsExpired, err = meter.Int64Counter("receipts_expired_total",
		metric.WithDescription("Expired receipts removed by cleanup"),
		metric.WithUnit("{receipt}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create receipts counter: %w", err)
	}
	if m.notifications, err = meter.Int64Counter("notifications_emitted_total",
		metric.WithDescription("Notifications handed to a transport"),
		metric.WithUnit("{message}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create notifications counter: %w", err)
	}
	return m, nil
}

// RecordEnqueued counts a submitted item.
func (m *WorkMetrics) RecordEnqueued(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.enqueued.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordProcessed counts one attempt and its duration.
func (m *WorkMetrics) RecordProcessed(ctx context.Context, kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind), attribute.String("outcome", outcome))
	m.processed.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordFinalized counts a finalized print job.
func (m *WorkMetrics) RecordFinalized(ctx context.Context) {
	if m == nil {
		return
	}
	m.finalized.Add(ctx, 1)
}

// RecordReceiptsExpired counts receipts removed in one cleanup sweep.
func (m *WorkMetrics) RecordReceiptsExpired(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.receiptsExpired.Add(ctx, int64(n))
}

// RecordNotification counts an emitted notification.
func (m *WorkMetrics) RecordNotification(ctx context.Context, audience, event string) {
	if m == nil {
		return
	}
	m.notifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("audience", audience),
		attribute.String("event", event),
	))
}
