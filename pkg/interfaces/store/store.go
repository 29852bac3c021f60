package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-lfg-client/pkg/domain"
)

// Common sentinel errors surfaced by remote store implementations.
var (
	// ErrNotFound signals the referenced notification no longer exists
	// remotely. Callers treat it as success: local state already removed it.
	ErrNotFound = errors.New("store: not found")
	// ErrUnauthorized signals the credential was rejected.
	ErrUnauthorized = errors.New("store: unauthorized")
	// ErrUnavailable signals the remote store could not be reached.
	ErrUnavailable = errors.New("store: unavailable")
)

// RemoteStore is the request/response side of the notification system. Every
// call is idempotent from the caller's perspective; failures are reported as
// errors and never panic past this boundary. The engine treats all of these
// as best-effort: local optimistic state is the durable truth.
type RemoteStore interface {
	// FetchNotifications returns the subject's notification log,
	// most recent first.
	FetchNotifications(ctx context.Context) ([]domain.Notification, error)
	// MarkAllRead acknowledges every notification.
	MarkAllRead(ctx context.Context) error
	// MarkRead acknowledges a single notification.
	MarkRead(ctx context.Context, id string) error
	// Dismiss deletes a single notification.
	Dismiss(ctx context.Context, id string) error
}

// Nop store serves an empty log and accepts every mutation. Useful for tests
// and for anonymous sessions that have no remote inbox.
type Nop struct{}

var _ RemoteStore = (*Nop)(nil)

func (n *Nop) FetchNotifications(ctx context.Context) ([]domain.Notification, error) {
	return nil, nil
}
func (n *Nop) MarkAllRead(ctx context.Context) error         { return nil }
func (n *Nop) MarkRead(ctx context.Context, id string) error { return nil }
func (n *Nop) Dismiss(ctx context.Context, id string) error  { return nil }
