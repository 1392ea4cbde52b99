package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientState is the connection state of a stream Client.
type ClientState string

const (
	StateDisconnected ClientState = "disconnected"
	StateConnecting   ClientState = "connecting"
	StateConnected    ClientState = "connected"
)

// Conn is one live server connection as seen by the Client.
type Conn interface {
	ReadEvent() (Event, error)
	Close() error
}

// Dialer opens a connection to the streaming endpoint.
type Dialer func(ctx context.Context) (Conn, error)

// ClientConfig configures a stream Client.
type ClientConfig struct {
	// URL of the streaming endpoint, e.g.
	// wss://host/ws/generations/<id>. The auth token must already be
	// in the query string; the transport cannot carry custom headers.
	URL string

	MinBackoff time.Duration
	MaxBackoff time.Duration

	OnEvent func(Event)

	// Dial overrides the websocket dialer; tests use this.
	Dial Dialer
}

// Client consumes a request's event stream with automatic reconnects.
// It is an explicit state machine owning a single pending-timer slot:
// Close stops the timer and the live connection synchronously, and no
// event callback runs after Close returns.
type Client struct {
	cfg  ClientConfig
	dial Dialer

	mu     sync.Mutex
	state  ClientState
	conn   Conn
	timer  *time.Timer
	delay  time.Duration
	closed bool
}

func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		cfg:   cfg,
		dial:  cfg.Dial,
		state: StateDisconnected,
		delay: cfg.MinBackoff,
	}
	if c.dial == nil {
		c.dial = c.dialWebsocket
	}
	return c
}

// Start begins connecting. Events arrive on cfg.OnEvent from a single
// goroutine.
func (c *Client) Start() {
	c.mu.Lock()
	if c.closed || c.state != StateDisconnected || c.timer != nil {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	go c.connect()
}

// State returns the current connection state.
func (c *Client) State() ClientState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears the client down: the pending reconnect timer is stopped
// and the active connection closed before Close returns. Idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.state = StateDisconnected
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) connect() {
	conn, err := c.dial(context.Background())

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.state = StateDisconnected
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		slog.Debug("stream connect failed", "error", err)
		return
	}

	c.conn = conn
	c.state = StateConnected
	c.delay = c.cfg.MinBackoff // successful connection resets backoff
	c.mu.Unlock()

	c.readLoop(conn)
}

func (c *Client) readLoop(conn Conn) {
	for {
		ev, err := conn.ReadEvent()
		if err != nil {
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			c.conn = nil
			c.state = StateDisconnected
			c.scheduleReconnectLocked()
			c.mu.Unlock()
			return
		}

		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		if c.cfg.OnEvent != nil {
			c.cfg.OnEvent(ev)
		}
	}
}

// scheduleReconnectLocked arms the single timer slot with the current
// backoff delay, then doubles it up to the cap. Caller holds c.mu.
func (c *Client) scheduleReconnectLocked() {
	d := c.delay
	c.delay = nextBackoff(c.delay, c.cfg.MaxBackoff)

	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.timer = nil
		c.state = StateConnecting
		c.mu.Unlock()
		c.connect()
	})
}

// nextBackoff doubles the delay up to max.
func nextBackoff(d, max time.Duration) time.Duration {
	d *= 2
	if d > max {
		return max
	}
	return d
}

func (c *Client) dialWebsocket(ctx context.Context) (Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{ws: ws}, nil
}

type wsConn struct {
	ws *websocket.Conn
}

func (c *wsConn) ReadEvent() (Event, error) {
	var ev Event
	err := c.ws.ReadJSON(&ev)
	return ev, err
}

func (c *wsConn) Close() error { return c.ws.Close() }
