package connection

import (
	"context"

	"github.com/goliatone/go-lfg-client/internal/connection"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/transport"
)

// IdentitySource resolves the signed-in subject, if any.
type IdentitySource = connection.IdentitySource

// Manager exposes push-channel lifecycle and room membership to consumers.
type Manager struct {
	internal *connection.Manager
}

// Dependencies wires the transport, identity supplier, and diagnostics.
type Dependencies struct {
	Transport transport.Transport
	Identity  IdentitySource
	Logger    logger.Logger
}

// New constructs the façade.
func New(deps Dependencies) *Manager {
	return &Manager{internal: connection.NewManager(connection.Dependencies{
		Transport: deps.Transport,
		Identity:  deps.Identity,
		Logger:    deps.Logger,
	})}
}

// Connect opens the push channel; idempotent.
func (m *Manager) Connect(ctx context.Context) {
	if m == nil || m.internal == nil {
		return
	}
	m.internal.Connect(ctx)
}

// JoinRoom scopes delivery to one entity, leaving any previous room first.
func (m *Manager) JoinRoom(ctx context.Context, roomID string) {
	if m == nil || m.internal == nil {
		return
	}
	m.internal.JoinRoom(ctx, roomID)
}

// LeaveCurrentRoom leaves the held room, if any.
func (m *Manager) LeaveCurrentRoom(ctx context.Context) {
	if m == nil || m.internal == nil {
		return
	}
	m.internal.LeaveCurrentRoom(ctx)
}

// Room returns the currently held room id, empty when none.
func (m *Manager) Room() string {
	if m == nil || m.internal == nil {
		return ""
	}
	return m.internal.Room()
}

// On registers a raw handler for a named event.
func (m *Manager) On(event string, h transport.Handler) {
	if m == nil || m.internal == nil {
		return
	}
	m.internal.On(event, h)
}

// Off removes every handler for the event name.
func (m *Manager) Off(event string) {
	if m == nil || m.internal == nil {
		return
	}
	m.internal.Off(event)
}

// Close tears down the channel.
func (m *Manager) Close() error {
	if m == nil || m.internal == nil {
		return nil
	}
	return m.internal.Close()
}
