package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-lfg-client/internal/commands"
	"github.com/goliatone/go-lfg-client/pkg/connection"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/notifications"
)

// Re-export request types so consumers need not import internal packages.
type (
	MarkAllRead = internalcommands.MarkAllRead
	MarkRead    = internalcommands.MarkRead
	Dismiss     = internalcommands.Dismiss
	DismissAll  = internalcommands.DismissAll
	JoinRoom    = internalcommands.JoinRoom
	LeaveRoom   = internalcommands.LeaveRoom
)

// Registry exposes go-command compatible handlers backed by the client services.
type Registry struct {
	Catalog     *internalcommands.Catalog
	MarkAllRead command.Commander[MarkAllRead]
	MarkRead    command.Commander[MarkRead]
	Dismiss     command.Commander[Dismiss]
	DismissAll  command.Commander[DismissAll]
	JoinRoom    command.Commander[JoinRoom]
	LeaveRoom   command.Commander[LeaveRoom]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Notifications *notifications.Service
	Connection    *connection.Manager
	Logger        logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	catalog, err := internalcommands.NewCatalog(internalcommands.Dependencies{
		Hub:    deps.Notifications,
		Rooms:  deps.Connection,
		Logger: deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:     catalog,
		MarkAllRead: catalog.MarkAllRead,
		MarkRead:    catalog.MarkRead,
		Dismiss:     catalog.Dismiss,
		DismissAll:  catalog.DismissAll,
		JoinRoom:    catalog.JoinRoom,
		LeaveRoom:   catalog.LeaveRoom,
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	return []any{
		r.MarkAllRead,
		r.MarkRead,
		r.Dismiss,
		r.DismissAll,
		r.JoinRoom,
		r.LeaveRoom,
	}
}
