package printing

import (
	"context"

	"github.com/printshop/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// eventSource is embedded by services that publish domain events after commit
type eventSource struct {
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *eventSource) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publish hands the pending events of each aggregate to the publisher and
// clears them. Publishing never fails the operation that produced the events.
func (s *eventSource) publish(ctx context.Context, aggregates ...shared.AggregateRoot) {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.TakeDomainEvents()...)
	}
	s.publishEvents(ctx, events...)
}

func (s *eventSource) publishEvents(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
