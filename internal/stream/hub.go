package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const subscriberBuffer = 256

// Hub fans lifecycle events out to per-request subscribers. Publishing
// happens under one lock per hub, so subscribers observe events in
// production order. The hub keeps only the latest event per request —
// a reconnecting client immediately learns the last known state, never
// a replay of the full stream.
type Hub struct {
	mu        sync.Mutex
	streams   map[uuid.UUID]*streamState
	retention time.Duration
}

type streamState struct {
	subs       map[chan Event]struct{}
	last       *Event
	done       bool
	finishedAt time.Time
}

func NewHub(retention time.Duration) *Hub {
	return &Hub{
		streams:   make(map[uuid.UUID]*streamState),
		retention: retention,
	}
}

// Publish delivers an event to all subscribers of its request. A slow
// subscriber whose buffer is full is dropped; it reconnects and picks
// up the latest state. A terminal event closes all subscriptions.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, ok := h.streams[ev.RequestID]
	if !ok {
		st = &streamState{subs: make(map[chan Event]struct{})}
		h.streams[ev.RequestID] = st
	}
	if st.done {
		return
	}

	st.last = &ev
	for ch := range st.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("dropping slow stream subscriber", "request_id", ev.RequestID)
			delete(st.subs, ch)
			close(ch)
		}
	}

	if ev.Terminal() {
		st.done = true
		st.finishedAt = time.Now()
		for ch := range st.subs {
			close(ch)
		}
		st.subs = nil
	}
}

// Subscribe attaches to a request's event stream. If the request has
// already produced events, the latest one is delivered first. The
// returned cancel is idempotent and detaches the subscriber.
func (h *Hub) Subscribe(requestID uuid.UUID) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, ok := h.streams[requestID]
	if !ok {
		st = &streamState{subs: make(map[chan Event]struct{})}
		h.streams[requestID] = st
	}

	ch := make(chan Event, subscriberBuffer)
	if st.last != nil {
		ch <- *st.last
	}
	if st.done {
		close(ch)
		return ch, func() {}
	}

	st.subs[ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, live := st.subs[ch]; live {
				delete(st.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Run evicts finished streams after the retention window. Blocks until
// ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.retention)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.evict()
		}
	}
}

func (h *Hub) evict() {
	h.mu.Lock()
	defer h.mu.Unlock()
	cutoff := time.Now().Add(-h.retention)
	for id, st := range h.streams {
		if st.done && st.finishedAt.Before(cutoff) {
			delete(h.streams, id)
		}
	}
}
