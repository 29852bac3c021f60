package bus

import (
	"errors"

	"github.com/goliatone/go-lfg-client/internal/bus"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/transport"
)

// Re-export the disposable handle so callers don't depend on the internal package.
type Subscription = bus.Subscription

// Bus exposes the typed event subscription registry to consumers.
type Bus struct {
	internal *bus.Registry
}

// Dependencies wires the transport + diagnostics.
type Dependencies struct {
	Transport transport.Transport
	Logger    logger.Logger
}

var errBusNotInitialised = errors.New("bus: not initialised")

// New constructs the façade.
func New(deps Dependencies) *Bus {
	return &Bus{internal: bus.NewRegistry(bus.Dependencies{
		Transport: deps.Transport,
		Logger:    deps.Logger,
	})}
}

// Subscribe registers a handler for the named event on behalf of an owner.
// The same owner re-subscribing replaces its previous handler.
func (b *Bus) Subscribe(event, owner string, h transport.Handler) (*Subscription, error) {
	if b == nil || b.internal == nil {
		return nil, errBusNotInitialised
	}
	return b.internal.Subscribe(event, owner, h)
}

// Off removes every handler for the event name.
func (b *Bus) Off(event string) {
	if b == nil || b.internal == nil {
		return
	}
	b.internal.Off(event)
}
