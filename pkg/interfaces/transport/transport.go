package transport

import "context"

// Handler consumes the raw payload of a named push event. Payloads are decoded
// by the subscriber; a handler must never panic on malformed data.
type Handler func(ctx context.Context, data []byte)

// Transport is the persistent push channel. Implementations deliver inbound
// events in the order received and must invoke OnEstablished callbacks after
// every successful (re)connect, since server-side session state does not
// survive reconnects.
type Transport interface {
	// Connect opens the channel. It is idempotent: a second call while a
	// connection handle exists is a no-op.
	Connect(ctx context.Context) error
	// Connected reports whether a live connection handle exists.
	Connected() bool
	// Emit sends a named event with a JSON-encoded payload.
	Emit(ctx context.Context, event string, payload any) error
	// On registers a handler for a named event.
	On(event string, h Handler)
	// Off removes every handler registered for the event name.
	Off(event string)
	// OnEstablished registers a callback fired after each (re)connect.
	OnEstablished(fn func(ctx context.Context))
	// Close tears the channel down.
	Close() error
}

// Nop transport drops everything. It stands in when the realtime layer is
// disabled or failed to load; callers degrade to fetch-on-demand behavior.
type Nop struct{}

var _ Transport = (*Nop)(nil)

func (n *Nop) Connect(ctx context.Context) error                   { return nil }
func (n *Nop) Connected() bool                                     { return false }
func (n *Nop) Emit(ctx context.Context, event string, p any) error { return nil }
func (n *Nop) On(event string, h Handler)                          {}
func (n *Nop) Off(event string)                                    {}
func (n *Nop) OnEstablished(fn func(ctx context.Context))          {}
func (n *Nop) Close() error                                        { return nil }
