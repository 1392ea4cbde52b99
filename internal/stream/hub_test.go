package stream

import (
	"testing"
	"time"

	"github.com/AI-Models-Telegram-Bot/ai-models-tgbot/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversInOrder(t *testing.T) {
	h := NewHub(time.Minute)
	id := uuid.New()

	events, cancel := h.Subscribe(id)
	defer cancel()

	h.Publish(Event{RequestID: id, Status: domain.StatusStreaming})
	h.Publish(Event{RequestID: id, ContentDelta: "a"})
	h.Publish(Event{RequestID: id, ContentDelta: "b"})
	h.Publish(Event{RequestID: id, Status: domain.StatusCompleted})

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 4)
	assert.Equal(t, domain.StatusStreaming, got[0].Status)
	assert.Equal(t, "a", got[1].ContentDelta)
	assert.Equal(t, "b", got[2].ContentDelta)
	assert.Equal(t, domain.StatusCompleted, got[3].Status)
}

func TestHubLateSubscriberGetsLatestState(t *testing.T) {
	h := NewHub(time.Minute)
	id := uuid.New()

	h.Publish(Event{RequestID: id, Status: domain.StatusStreaming})
	h.Publish(Event{RequestID: id, ContentDelta: "partial"})

	events, cancel := h.Subscribe(id)
	defer cancel()

	ev := <-events
	assert.Equal(t, "partial", ev.ContentDelta, "late subscriber starts from the last known event")
}

func TestHubTerminalEventClosesStream(t *testing.T) {
	h := NewHub(time.Minute)
	id := uuid.New()

	h.Publish(Event{RequestID: id, Status: domain.StatusFailed, Error: "all providers failed"})

	// Subscribing after the terminal event yields it and then closes.
	events, cancel := h.Subscribe(id)
	defer cancel()

	ev, ok := <-events
	require.True(t, ok)
	assert.Equal(t, domain.StatusFailed, ev.Status)

	_, ok = <-events
	assert.False(t, ok)

	// Publishing after terminal is a no-op.
	h.Publish(Event{RequestID: id, ContentDelta: "too late"})
}

func TestHubIndependentRequests(t *testing.T) {
	h := NewHub(time.Minute)
	a, b := uuid.New(), uuid.New()

	eventsA, cancelA := h.Subscribe(a)
	defer cancelA()

	h.Publish(Event{RequestID: b, ContentDelta: "other"})
	h.Publish(Event{RequestID: a, ContentDelta: "mine"})

	ev := <-eventsA
	assert.Equal(t, "mine", ev.ContentDelta)
}

func TestHubCancelIsIdempotent(t *testing.T) {
	h := NewHub(time.Minute)
	id := uuid.New()

	_, cancel := h.Subscribe(id)
	cancel()
	cancel()

	// Publishing to a request whose only subscriber left must not panic.
	h.Publish(Event{RequestID: id, ContentDelta: "x"})
}

func TestHubEvictsFinishedStreams(t *testing.T) {
	h := NewHub(time.Millisecond)
	id := uuid.New()

	h.Publish(Event{RequestID: id, Status: domain.StatusCompleted})
	time.Sleep(5 * time.Millisecond)
	h.evict()

	h.mu.Lock()
	_, ok := h.streams[id]
	h.mu.Unlock()
	assert.False(t, ok)
}
