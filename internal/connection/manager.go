package connection

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-lfg-client/pkg/domain"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/transport"
)

// IdentitySource resolves the signed-in subject, if any. It is consulted on
// every (re)connect because server-side session state does not survive
// transport reconnects.
type IdentitySource func() (subjectID string, ok bool)

// Dependencies wires the transport and identity supplier into the manager.
type Dependencies struct {
	Transport transport.Transport
	Identity  IdentitySource
	Logger    logger.Logger
}

// Manager owns the single push channel for a client session. It announces
// identity after every connect and enforces single-room membership: joining a
// new room always leaves the previous one first, in the same call.
//
// A nil transport is not an error: every operation degrades to a logged
// no-op so the surrounding application keeps working on fetch-only behavior.
type Manager struct {
	mu        sync.Mutex
	transport transport.Transport
	identity  IdentitySource
	logger    logger.Logger
	room      string
	wired     bool
}

// NewManager constructs the connection manager.
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Identity == nil {
		deps.Identity = func() (string, bool) { return "", false }
	}
	return &Manager{
		transport: deps.Transport,
		identity:  deps.Identity,
		logger:    deps.Logger,
	}
}

// Connect opens the push channel. Safe to call repeatedly; only the first
// call wires the identity announcement.
func (m *Manager) Connect(ctx context.Context) {
	if m.transport == nil {
		m.logger.Warn("connect skipped: no realtime transport available")
		return
	}
	m.mu.Lock()
	if !m.wired {
		m.wired = true
		m.transport.OnEstablished(m.announce)
	}
	m.mu.Unlock()

	if err := m.transport.Connect(ctx); err != nil {
		m.logger.Warn("realtime connect failed", logger.Field{Key: "error", Value: err})
	}
}

// announce sends the identify event when a signed-in subject exists.
// Anonymous sessions skip the announcement; that is not an error.
func (m *Manager) announce(ctx context.Context) {
	subject, ok := m.identity()
	if !ok || strings.TrimSpace(subject) == "" {
		return
	}
	m.logger.Debug("announcing identity", logger.Field{Key: "subject", Value: subject})
	if err := m.transport.Emit(ctx, domain.EventIdentify, subject); err != nil {
		m.logger.Warn("identity announcement failed", logger.Field{Key: "error", Value: err})
	}
}

// JoinRoom scopes event delivery to one entity. Joining the room already held
// or passing an empty id is a no-op.
func (m *Manager) JoinRoom(ctx context.Context, roomID string) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return
	}
	if m.transport == nil {
		m.logger.Warn("join skipped: no realtime transport available",
			logger.Field{Key: "room", Value: roomID})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.room == roomID {
		return
	}
	m.leaveLocked(ctx)
	m.room = roomID
	m.logger.Debug("joining room", logger.Field{Key: "room", Value: roomID})
	if err := m.transport.Emit(ctx, domain.EventJoinGroup, roomID); err != nil {
		m.logger.Warn("join room failed", logger.Field{Key: "error", Value: err})
	}
}

// LeaveCurrentRoom leaves the held room, if any.
func (m *Manager) LeaveCurrentRoom(ctx context.Context) {
	if m.transport == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveLocked(ctx)
}

func (m *Manager) leaveLocked(ctx context.Context) {
	if m.room == "" {
		return
	}
	m.logger.Debug("leaving room", logger.Field{Key: "room", Value: m.room})
	if err := m.transport.Emit(ctx, domain.EventLeaveGroup, m.room); err != nil {
		m.logger.Warn("leave room failed", logger.Field{Key: "error", Value: err})
	}
	m.room = ""
}

// Room returns the currently held room id, empty when none.
func (m *Manager) Room() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.room
}

// On registers a raw transport handler for a named event.
func (m *Manager) On(event string, h transport.Handler) {
	if m.transport == nil {
		m.logger.Warn("subscription skipped: no realtime transport available",
			logger.Field{Key: "event", Value: event})
		return
	}
	m.transport.On(event, h)
}

// Off removes every handler for the event name.
func (m *Manager) Off(event string) {
	if m.transport == nil {
		return
	}
	m.transport.Off(event)
}

// Close tears down the channel at process teardown.
func (m *Manager) Close() error {
	if m.transport == nil {
		return nil
	}
	return m.transport.Close()
}
