package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBackoffDoublesToCap(t *testing.T) {
	min, max := time.Second, 16*time.Second

	d := min
	var schedule []time.Duration
	for i := 0; i < 6; i++ {
		schedule = append(schedule, d)
		d = nextBackoff(d, max)
	}

	// Reconnect attempts 1..6: 1s, 2s, 4s, 8s (= min(1000*2^3, 16000)),
	// then clamped at the 16s cap.
	assert.Equal(t, []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 16 * time.Second, 16 * time.Second,
	}, schedule)
}

// fakeConn feeds a fixed batch of events, then blocks until closed.
type fakeConn struct {
	events []Event
	closed chan struct{}
	once   sync.Once
	mu     sync.Mutex
	idx    int
}

func newFakeConn(events ...Event) *fakeConn {
	return &fakeConn{events: events, closed: make(chan struct{})}
}

func (c *fakeConn) ReadEvent() (Event, error) {
	c.mu.Lock()
	if c.idx < len(c.events) {
		ev := c.events[c.idx]
		c.idx++
		c.mu.Unlock()
		return ev, nil
	}
	c.mu.Unlock()
	<-c.closed
	return Event{}, errors.New("connection closed")
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func TestClientDeliversEventsAndResetsBackoff(t *testing.T) {
	attempts := make(chan int, 16)
	received := make(chan Event, 16)

	var n int
	var mu sync.Mutex
	dial := func(ctx context.Context) (Conn, error) {
		mu.Lock()
		n++
		cur := n
		mu.Unlock()
		attempts <- cur
		if cur < 3 {
			return nil, errors.New("refused")
		}
		return newFakeConn(Event{RequestID: uuid.New(), ContentDelta: "hi"}), nil
	}

	c := NewClient(ClientConfig{
		MinBackoff: time.Millisecond,
		MaxBackoff: 8 * time.Millisecond,
		OnEvent:    func(ev Event) { received <- ev },
		Dial:       dial,
	})
	c.Start()
	defer c.Close()

	// Two failures, then a successful connection that delivers events.
	select {
	case ev := <-received:
		assert.Equal(t, "hi", ev.ContentDelta)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	require.Eventually(t, func() bool { return c.State() == StateConnected },
		time.Second, time.Millisecond)

	// Backoff reset to the minimum after the successful connect.
	c.mu.Lock()
	delay := c.delay
	c.mu.Unlock()
	assert.Equal(t, time.Millisecond, delay)
}

func TestClientBackoffDoublesAcrossFailures(t *testing.T) {
	var mu sync.Mutex
	var dials int
	dial := func(ctx context.Context) (Conn, error) {
		mu.Lock()
		dials++
		mu.Unlock()
		return nil, errors.New("refused")
	}

	c := NewClient(ClientConfig{
		MinBackoff: time.Millisecond,
		MaxBackoff: 4 * time.Millisecond,
		Dial:       dial,
	})
	c.Start()
	defer c.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return dials >= 3
	}, time.Second, time.Millisecond)

	// After repeated failures the next delay is pinned at the cap.
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.delay == 4*time.Millisecond
	}, time.Second, time.Millisecond)
}

func TestClientCloseStopsPendingReconnect(t *testing.T) {
	var mu sync.Mutex
	var dials int
	dial := func(ctx context.Context) (Conn, error) {
		mu.Lock()
		dials++
		mu.Unlock()
		return nil, errors.New("refused")
	}

	c := NewClient(ClientConfig{
		MinBackoff: 50 * time.Millisecond,
		MaxBackoff: time.Second,
		Dial:       dial,
	})
	c.Start()

	// Let the first dial fail and a reconnect get scheduled.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return dials == 1
	}, time.Second, time.Millisecond)

	c.Close()
	assert.Equal(t, StateDisconnected, c.State())

	// The pending timer was stopped: no further dial happens.
	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, dials)
	mu.Unlock()
}

func TestClientNoEventsAfterClose(t *testing.T) {
	conn := newFakeConn()
	var delivered int
	var mu sync.Mutex

	c := NewClient(ClientConfig{
		MinBackoff: time.Millisecond,
		MaxBackoff: time.Millisecond,
		OnEvent: func(Event) {
			mu.Lock()
			delivered++
			mu.Unlock()
		},
		Dial: func(ctx context.Context) (Conn, error) { return conn, nil },
	})
	c.Start()

	require.Eventually(t, func() bool { return c.State() == StateConnected },
		time.Second, time.Millisecond)

	c.Close()

	mu.Lock()
	after := delivered
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, delivered)
	mu.Unlock()
}

func TestClientStartIsIdempotent(t *testing.T) {
	c := NewClient(ClientConfig{
		MinBackoff: time.Millisecond,
		MaxBackoff: time.Millisecond,
		Dial: func(ctx context.Context) (Conn, error) {
			return newFakeConn(), nil
		},
	})
	c.Start()
	c.Start()
	defer c.Close()

	require.Eventually(t, func() bool { return c.State() == StateConnected },
		time.Second, time.Millisecond)
}
