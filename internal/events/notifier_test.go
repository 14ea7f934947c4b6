// server/internal/events/notifier_test.go
package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishBothTopics(t *testing.T) {
	n := NewNotifier()

	global := make(chan Event, 1)
	scoped := make(chan Event, 1)
	n.Subscribe("order:save", func(ev Event) { global <- ev })
	n.Subscribe("order:save:abc123", func(ev Event) { scoped <- ev })

	n.Publish("order", OpSave, "abc123", map[string]string{"id": "abc123"})

	ev := waitEvent(t, global)
	assert.Equal(t, "order:save", ev.Topic)
	assert.Equal(t, "order", ev.Entity)
	assert.Equal(t, OpSave, ev.Op)

	ev = waitEvent(t, scoped)
	assert.Equal(t, "order:save:abc123", ev.Topic)
}

func TestPublishScopedTopicIgnoresOtherIDs(t *testing.T) {
	n := NewNotifier()

	scoped := make(chan Event, 1)
	n.Subscribe("order:save:abc123", func(ev Event) { scoped <- ev })

	n.Publish("order", OpSave, "other456", nil)

	select {
	case <-scoped:
		t.Fatal("handler for a different document id should not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeAll(t *testing.T) {
	n := NewNotifier()

	all := make(chan Event, 4)
	n.SubscribeAll(func(ev Event) { all <- ev })

	n.Publish("stock", OpRemove, "id1", nil)

	// Mỗi lần publish phát 2 topic, subscriber all nhận cả hai
	first := waitEvent(t, all)
	second := waitEvent(t, all)
	topics := []string{first.Topic, second.Topic}
	assert.Contains(t, topics, "stock:remove")
	assert.Contains(t, topics, "stock:remove:id1")
}

func TestPublishOnNilNotifier(t *testing.T) {
	var n *Notifier
	require.NotPanics(t, func() {
		n.Publish("order", OpSave, "id", nil)
	})
}

func TestPublishWithNoSubscribers(t *testing.T) {
	n := NewNotifier()
	require.NotPanics(t, func() {
		n.Publish("user", OpSave, "id", nil)
	})
}
