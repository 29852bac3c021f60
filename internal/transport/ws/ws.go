package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/transport"
	"github.com/goliatone/go-lfg-client/pkg/retry"
)

// envelope is the wire frame. Every message carries an event name plus an
// opaque JSON payload the subscribed handlers decode themselves.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Config drives the websocket transport.
type Config struct {
	URL    string
	Header http.Header

	DialTimeout  time.Duration
	PingInterval time.Duration

	// Reconnect backoff. Delays grow per the policy after each failed
	// attempt and reset after a successful dial.
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	Backoff      retry.Backoff

	Logger logger.Logger
}

var errURLRequired = errors.New("ws: url is required")

func (c *Config) withDefaults() {
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 25 * time.Second
	}
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = time.Second
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = 30 * time.Second
	}
	if c.Backoff == nil {
		c.Backoff = retry.ExponentialBackoff{Base: c.ReconnectMin, Max: c.ReconnectMax}
	}
	if c.Logger == nil {
		c.Logger = &logger.Nop{}
	}
}

// Transport is a persistent websocket channel. It reconnects on its own and
// replays the established callbacks after every successful dial so callers
// can re-announce identity and room membership.
type Transport struct {
	cfg    Config
	logger logger.Logger

	mu          sync.Mutex
	conn        *websocket.Conn
	handlers    map[string][]transport.Handler
	established []func(ctx context.Context)
	started     bool
	closed      bool
	cancel      context.CancelFunc
	writeMu     sync.Mutex
}

var _ transport.Transport = (*Transport)(nil)

// New builds a transport from the config. Connect starts the connection.
func New(cfg Config) (*Transport, error) {
	if cfg.URL == "" {
		return nil, errURLRequired
	}
	cfg.withDefaults()
	return &Transport{
		cfg:      cfg,
		logger:   cfg.Logger,
		handlers: map[string][]transport.Handler{},
	}, nil
}

// Connect starts the dial/read loop. Calling it again while the loop is
// running is a no-op.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return errors.New("ws: transport closed")
	}
	if t.started {
		t.mu.Unlock()
		return nil
	}
	t.started = true
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(runCtx)
	return nil
}

// Connected reports whether a live connection is up right now.
func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Emit sends an event frame. It fails when no connection is up, it does not
// queue.
func (t *Transport) Emit(ctx context.Context, event string, payload any) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return errors.New("ws: not connected")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame := envelope{Event: event, Data: data}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	} else {
		conn.SetWriteDeadline(time.Now().Add(t.cfg.DialTimeout))
	}
	return conn.WriteJSON(frame)
}

// On registers a handler for the named event.
func (t *Transport) On(event string, h transport.Handler) {
	if h == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = append(t.handlers[event], h)
}

// Off removes every handler for the named event.
func (t *Transport) Off(event string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.handlers, event)
}

// OnEstablished registers a callback that fires after every successful dial,
// including reconnects.
func (t *Transport) OnEstablished(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.established = append(t.established, fn)
}

// Close tears down the connection and stops the reconnect loop.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	cancel := t.cancel
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (t *Transport) run(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := t.dial(ctx)
		if err != nil {
			attempt++
			t.logger.Warn("ws: dial failed", logger.F("url", t.cfg.URL), logger.F("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(t.cfg.Backoff.Next(attempt)):
			}
			continue
		}
		attempt = 0

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			return
		}
		t.conn = conn
		established := append([]func(ctx context.Context){}, t.established...)
		t.mu.Unlock()

		for _, fn := range established {
			fn(ctx)
		}

		pingDone := make(chan struct{})
		go t.pingLoop(ctx, conn, pingDone)

		t.readLoop(ctx, conn)
		close(pingDone)

		t.mu.Lock()
		if t.conn == conn {
			t.conn = nil
		}
		t.mu.Unlock()
		conn.Close()
	}
}

func (t *Transport) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, t.cfg.DialTimeout)
	defer cancel()
	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, t.cfg.URL, t.cfg.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// readLoop delivers frames to handlers in arrival order. Handlers run on
// this goroutine, so delivery for one connection is strictly FIFO.
func (t *Transport) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				t.logger.Warn("ws: read failed", logger.F("error", err.Error()))
			}
			return
		}
		var frame envelope
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
			t.logger.Warn("ws: dropping malformed frame")
			continue
		}
		t.dispatch(ctx, frame)
	}
}

func (t *Transport) dispatch(ctx context.Context, frame envelope) {
	t.mu.Lock()
	handlers := append([]transport.Handler{}, t.handlers[frame.Event]...)
	t.mu.Unlock()
	for _, h := range handlers {
		h(ctx, frame.Data)
	}
}

func (t *Transport) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(t.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			t.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(t.cfg.DialTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			t.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
