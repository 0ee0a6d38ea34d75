package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseDomainEvent
}

func newTestEvent() *testEvent {
	return &testEvent{BaseDomainEvent: NewBaseDomainEvent("TestEvent", "Draft", uuid.New())}
}

func TestBaseAggregateRoot_RecordChange(t *testing.T) {
	agg := NewBaseAggregateRoot()
	require.Equal(t, 1, agg.GetVersion())
	before := agg.UpdatedAt

	time.Sleep(time.Millisecond)
	agg.RecordChange(newTestEvent())
	agg.RecordChange(nil)

	assert.Equal(t, 3, agg.GetVersion())
	assert.True(t, agg.UpdatedAt.After(before))
	assert.Len(t, agg.GetDomainEvents(), 1)
}

func TestBaseAggregateRoot_TakeDomainEvents(t *testing.T) {
	agg := NewBaseAggregateRoot()
	agg.AddDomainEvent(newTestEvent())
	agg.RecordChange(newTestEvent())

	events := agg.TakeDomainEvents()
	assert.Len(t, events, 2)
	assert.Empty(t, agg.GetDomainEvents())
	assert.Empty(t, agg.TakeDomainEvents())
	assert.Equal(t, 2, agg.GetVersion(), "creation events do not bump the version")
}

func TestBaseAggregateRoot_ExpectVersion(t *testing.T) {
	agg := NewBaseAggregateRoot()
	assert.NoError(t, agg.ExpectVersion("draft", 1))

	agg.RecordChange(nil)
	err := agg.ExpectVersion("draft", 1)
	require.Error(t, err)
	assert.Equal(t, CodeConflict, ErrorCode(err))
	assert.Contains(t, err.Error(), "draft was modified concurrently")
}
