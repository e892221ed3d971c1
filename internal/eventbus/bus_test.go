package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(4)
	defer b.Unsubscribe(id)

	b.PublishNew(TypeTaskCreated, "task-1", map[string]string{"project_id": "p-1"})

	select {
	case ev := <-ch:
		assert.Equal(t, TypeTaskCreated, ev.Type)
		assert.Equal(t, "task-1", ev.ResourceID)
		assert.Equal(t, "p-1", ev.Metadata["project_id"])
		assert.NotEmpty(t, ev.ID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusDropsWhenBufferFull(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)
	defer b.Unsubscribe(id)

	b.PublishNew(TypeTaskCreated, "task-1", nil)
	b.PublishNew(TypeTaskCreated, "task-2", nil)

	ev := <-ch
	require.Equal(t, "task-1", ev.ResourceID)

	select {
	case ev := <-ch:
		t.Fatalf("expected second event to be dropped, got %s", ev.ResourceID)
	default:
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	id, ch := b.Subscribe(1)
	b.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after unsubscribe must not panic.
	b.PublishNew(TypeProjectCreated, "p-1", nil)
}
