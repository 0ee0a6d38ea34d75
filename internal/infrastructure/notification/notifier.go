// Package notification delivers best-effort user and shop notifications
// over Redis pub/sub, RabbitMQ or the application log.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/printshop/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Message is the envelope every transport publishes
type Message struct {
	Event     string          `json:"event"`
	Audience  string          `json:"audience"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// Encode builds the JSON envelope for one notification
func Encode(audience appprinting.Audience, event string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode notification payload: %w", err)
		}
		raw = b
	}
	return json.Marshal(Message{
		Event:     event,
		Audience:  audience.String(),
		Payload:   raw,
		EmittedAt: time.Now().UTC(),
	})
}

// LogNotifier writes notifications to the log. It is the fallback when no
// broker is configured.
type LogNotifier struct {
	logger *zap.Logger
}

var _ appprinting.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Emit implements Notifier
func (n *LogNotifier) Emit(ctx context.Context, audience appprinting.Audience, event string, payload any) error {
	n.logger.Info("Notification",
		zap.String("audience", audience.String()),
		zap.String("event", event),
		zap.Any("payload", payload),
	)
	return nil
}

// MultiNotifier fans a notification out to every transport. A failing
// transport does not stop delivery to the others.
type MultiNotifier struct {
	notifiers []appprinting.Notifier
	metrics   *telemetry.WorkMetrics
	logger    *zap.Logger
}

var _ appprinting.Notifier = (*MultiNotifier)(nil)

// NewMultiNotifier creates a fan-out notifier
func NewMultiNotifier(logger *zap.Logger, metrics *telemetry.WorkMetrics, notifiers ...appprinting.Notifier) *MultiNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MultiNotifier{notifiers: notifiers, metrics: metrics, logger: logger}
}

// Emit implements Notifier
func (m *MultiNotifier) Emit(ctx context.Context, audience appprinting.Audience, event string, payload any) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Emit(ctx, audience, event, payload); err != nil {
			m.logger.Warn("Notification transport failed",
				zap.String("audience", audience.String()),
				zap.String("event", event),
				zap.String("transport", fmt.Sprintf("%T", n)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	if len(errs) < len(m.notifiers) || len(m.notifiers) == 0 {
		m.metrics.RecordNotification(ctx, audience.Kind, event)
	}
	return errors.Join(errs...)
}

// Close closes every transport that holds a connection
func (m *MultiNotifier) Close() error {
	var errs []error
	for _, n := range m.notifiers {
		if c, ok := n.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
