package shared

import "fmt"

// AggregateRoot is implemented by drafts and print jobs: entities that
// carry a version and buffer the events raised by their state changes
// until the surrounding service has committed them.
type AggregateRoot interface {
	Entity
	GetVersion() int
	RecordChange(event DomainEvent)
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	TakeDomainEvents() []DomainEvent
}

// BaseAggregateRoot holds the version and the pending events.
// Version starts at 1 and grows by one with every recorded change, so a
// client that read version N can tell whether it still sees the latest state.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// GetVersion returns the number of changes recorded since creation, plus one
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// RecordChange bumps the version and update time and queues event, if any
func (a *BaseAggregateRoot) RecordChange(event DomainEvent) {
	a.Touch()
	a.Version++
	if event != nil {
		a.domainEvents = append(a.domainEvents, event)
	}
}

// ExpectVersion returns ConflictError when the aggregate moved past the
// version a caller based its work on
func (a *BaseAggregateRoot) ExpectVersion(entity string, version int) error {
	if a.Version != version {
		return NewConflictError(fmt.Sprintf("%s was modified concurrently (version %d, expected %d), reload and retry",
			entity, a.Version, version))
	}
	return nil
}

// AddDomainEvent queues an event that does not change the aggregate,
// such as the creation event
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the pending events without clearing them
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// TakeDomainEvents returns the pending events and clears them
func (a *BaseAggregateRoot) TakeDomainEvents() []DomainEvent {
	events := a.domainEvents
	a.domainEvents = nil
	return events
}

// NewBaseAggregateRoot creates an aggregate at version 1 with no pending events
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}
