package bus

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/transport"
	"github.com/google/uuid"
)

// Dependencies wires the transport and diagnostics into the registry.
type Dependencies struct {
	Transport transport.Transport
	Logger    logger.Logger
}

// Registry keys live handlers by (event name, owner token). Registering a
// second handler for the same pair replaces the first, so a view that
// re-activates never stacks duplicate handlers. Dispatch preserves delivery
// order: handlers run synchronously, in registration order, as events arrive.
type Registry struct {
	mu        sync.Mutex
	transport transport.Transport
	logger    logger.Logger
	subs      map[string][]*entry
	attached  map[string]bool
}

type entry struct {
	id      uuid.UUID
	owner   string
	handler transport.Handler
}

// Subscription is a disposable handle for one (event, owner) registration.
type Subscription struct {
	registry *Registry
	event    string
	id       uuid.UUID
}

var (
	errEventRequired = errors.New("bus: event name is required")
	errOwnerRequired = errors.New("bus: owner token is required")
)

// NewRegistry constructs the registry. A nil transport degrades to a Nop
// channel: subscriptions are accepted but nothing ever dispatches.
func NewRegistry(deps Dependencies) *Registry {
	if deps.Transport == nil {
		deps.Transport = &transport.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Registry{
		transport: deps.Transport,
		logger:    deps.Logger,
		subs:      make(map[string][]*entry),
		attached:  make(map[string]bool),
	}
}

// Subscribe registers a handler for the named event on behalf of an owner,
// replacing any handler the same owner already holds for that event.
func (r *Registry) Subscribe(event, owner string, h transport.Handler) (*Subscription, error) {
	event = strings.TrimSpace(event)
	owner = strings.TrimSpace(owner)
	if event == "" {
		return nil, errEventRequired
	}
	if owner == "" {
		return nil, errOwnerRequired
	}
	if h == nil {
		return nil, errors.New("bus: handler is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub := &entry{id: uuid.New(), owner: owner, handler: h}
	replaced := false
	for i, existing := range r.subs[event] {
		if existing.owner == owner {
			r.subs[event][i] = sub
			replaced = true
			break
		}
	}
	if !replaced {
		r.subs[event] = append(r.subs[event], sub)
	}

	if !r.attached[event] {
		r.attached[event] = true
		r.transport.On(event, r.dispatcher(event))
	}

	r.logger.Debug("bus subscription registered",
		logger.Field{Key: "event", Value: event},
		logger.Field{Key: "owner", Value: owner},
		logger.Field{Key: "replaced", Value: replaced},
	)
	return &Subscription{registry: r, event: event, id: sub.id}, nil
}

// Off removes every handler for the event name, regardless of owner. Views
// use it to guarantee idempotent re-subscription across repeated activations.
func (r *Registry) Off(event string) {
	event = strings.TrimSpace(event)
	if event == "" {
		return
	}
	r.mu.Lock()
	delete(r.subs, event)
	r.mu.Unlock()
}

// Cancel removes the single registration the handle refers to. Cancelling a
// handle that was already replaced or removed is a no-op.
func (s *Subscription) Cancel() {
	if s == nil || s.registry == nil {
		return
	}
	r := s.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.subs[s.event]
	for i, existing := range entries {
		if existing.id == s.id {
			r.subs[s.event] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

func (r *Registry) dispatcher(event string) transport.Handler {
	return func(ctx context.Context, data []byte) {
		r.mu.Lock()
		entries := r.subs[event]
		handlers := make([]transport.Handler, len(entries))
		for i, e := range entries {
			handlers[i] = e.handler
		}
		r.mu.Unlock()

		for _, h := range handlers {
			h(ctx, data)
		}
	}
}
