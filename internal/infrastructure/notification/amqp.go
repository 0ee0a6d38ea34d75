package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appprinting "github.com/printshop/backend/internal/application/printing"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

// AMQPNotifier publishes notifications to a topic exchange with the
// audience ("user:<id>" or "shop:<id>") as routing key. Consumers bind
// their own queues, for example with the key "shop:<id>".
type AMQPNotifier struct {
	url      string
	exchange string
	dial     func(url string) (*amqp.Connection, error)
	logger   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ appprinting.Notifier = (*AMQPNotifier)(nil)

// NewAMQPNotifier creates a notifier. The connection is opened on first use
// and re-opened after the broker drops it.
func NewAMQPNotifier(url, exchange string, logger *zap.Logger) *AMQPNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPNotifier{url: url, exchange: exchange, dial: amqp.Dial, logger: logger}
}

// Emit implements Notifier
func (n *AMQPNotifier) Emit(ctx context.Context, audience appprinting.Audience, event string, payload any) error {
	body, err := Encode(audience, event, payload)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ch, err := n.channel()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		n.exchange,        // exchange
		audience.String(), // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Type:         event,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
	if err != nil {
		n.resetLocked()
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// channel returns an open channel, dialing and declaring the exchange when needed.
// Callers hold n.mu.
func (n *AMQPNotifier) channel() (*amqp.Channel, error) {
	if n.ch != nil && !n.ch.IsClosed() && n.conn != nil && !n.conn.IsClosed() {
		return n.ch, nil
	}
	n.resetLocked()

	conn, err := n.dial(n.url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		n.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-delete
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	n.logger.Info("Connected to rabbitmq", zap.String("exchange", n.exchange))
	n.conn, n.ch = conn, ch
	return ch, nil
}

func (n *AMQPNotifier) resetLocked() {
	if n.ch != nil {
		_ = n.ch.Close()
		n.ch = nil
	}
	if n.conn != nil {
		_ = n.conn.Close()
		n.conn = nil
	}
}

// Close closes the broker connection
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	var errs []error
	if n.ch != nil {
		if err := n.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		n.ch = nil
	}
	if n.conn != nil {
		if err := n.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
		n.conn = nil
	}
	return errors.Join(errs...)
}
