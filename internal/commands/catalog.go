package commands

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
)

// Catalog exposes go-command compatible handlers so host UIs can drive the
// client through message dispatch instead of direct service calls.
type Catalog struct {
	MarkAllRead command.Commander[MarkAllRead]
	MarkRead    command.Commander[MarkRead]
	Dismiss     command.Commander[Dismiss]
	DismissAll  command.Commander[DismissAll]
	JoinRoom    command.Commander[JoinRoom]
	LeaveRoom   command.Commander[LeaveRoom]
}

type hubService interface {
	MarkAllRead(ctx context.Context) error
	MarkRead(ctx context.Context, id string) error
	Dismiss(ctx context.Context, id string) error
	DismissAll(ctx context.Context) error
}

type roomService interface {
	JoinRoom(ctx context.Context, roomID string)
	LeaveCurrentRoom(ctx context.Context)
}

// Dependencies wires services into the command catalog.
type Dependencies struct {
	Hub    hubService
	Rooms  roomService
	Logger logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Hub == nil {
		return nil, errors.New("commands: notification service is required")
	}
	if deps.Rooms == nil {
		return nil, errors.New("commands: connection manager is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		MarkAllRead: markAllReadCommand{svc: deps.Hub},
		MarkRead:    markReadCommand{svc: deps.Hub},
		Dismiss:     dismissCommand{svc: deps.Hub},
		DismissAll:  dismissAllCommand{svc: deps.Hub},
		JoinRoom:    joinRoomCommand{svc: deps.Rooms},
		LeaveRoom:   leaveRoomCommand{svc: deps.Rooms},
	}, nil
}

// MarkAllRead acknowledges every notification in the log.
type MarkAllRead struct{}

type markAllReadCommand struct {
	svc hubService
}

func (c markAllReadCommand) Execute(ctx context.Context, _ MarkAllRead) error {
	return c.svc.MarkAllRead(ctx)
}

// MarkRead acknowledges a single notification.
type MarkRead struct {
	ID string `json:"id"`
}

type markReadCommand struct {
	svc hubService
}

func (c markReadCommand) Execute(ctx context.Context, msg MarkRead) error {
	id := strings.TrimSpace(msg.ID)
	if id == "" {
		return errors.New("commands: notification id is required")
	}
	return c.svc.MarkRead(ctx, id)
}

// Dismiss removes a single notification.
type Dismiss struct {
	ID string `json:"id"`
}

type dismissCommand struct {
	svc hubService
}

func (c dismissCommand) Execute(ctx context.Context, msg Dismiss) error {
	id := strings.TrimSpace(msg.ID)
	if id == "" {
		return errors.New("commands: notification id is required")
	}
	return c.svc.Dismiss(ctx, id)
}

// DismissAll clears the whole log.
type DismissAll struct{}

type dismissAllCommand struct {
	svc hubService
}

func (c dismissAllCommand) Execute(ctx context.Context, _ DismissAll) error {
	return c.svc.DismissAll(ctx)
}

// JoinRoom switches the push channel onto a group's room.
type JoinRoom struct {
	GroupID string `json:"group_id"`
}

type joinRoomCommand struct {
	svc roomService
}

func (c joinRoomCommand) Execute(ctx context.Context, msg JoinRoom) error {
	id := strings.TrimSpace(msg.GroupID)
	if id == "" {
		return errors.New("commands: group id is required")
	}
	c.svc.JoinRoom(ctx, id)
	return nil
}

// LeaveRoom drops the current room membership, if any.
type LeaveRoom struct{}

type leaveRoomCommand struct {
	svc roomService
}

func (c leaveRoomCommand) Execute(ctx context.Context, _ LeaveRoom) error {
	c.svc.LeaveCurrentRoom(ctx)
	return nil
}
