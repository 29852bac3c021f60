package presenters

import (
	"context"

	"github.com/goliatone/go-lfg-client/pkg/domain"
)

// Permission is the desktop-notification consent state. It is queried fresh
// every session and cached in memory only; it is never persisted.
type Permission string

const (
	PermissionUndetermined Permission = "default"
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
)

// Toast is a transient in-app notice.
type Toast struct {
	Message string
	Type    domain.Type
	Icon    string
}

// ToastPresenter renders transient in-app notices. Presentation failures are
// logged by callers and never interrupt event handling.
type ToastPresenter interface {
	Show(ctx context.Context, toast Toast) error
}

// Note is a native desktop notification. GroupID, when present, is the entity
// the user should land on after clicking through.
type Note struct {
	Tag     string
	Title   string
	Body    string
	Icon    string
	GroupID string
	// OnClick runs when the user activates the note. The presenter closes
	// the native notification afterwards.
	OnClick func()
}

// DesktopPresenter bridges to the platform notification facility.
type DesktopPresenter interface {
	// Permission returns the cached-for-session consent state.
	Permission(ctx context.Context) Permission
	// RequestPermission prompts when the state is undetermined and returns
	// the resolved state.
	RequestPermission(ctx context.Context) (Permission, error)
	// Notify fires a native notification.
	Notify(ctx context.Context, note Note) error
}

// Navigator lets the notification layer steer the host UI: focus the window
// and open a group's detail view. Hosts supply their own implementation.
type Navigator interface {
	Focus()
	OpenGroup(id string)
}

// NavigatorFunc adapts a route function into a Navigator with a no-op Focus.
type NavigatorFunc func(groupID string)

func (f NavigatorFunc) Focus() {}

func (f NavigatorFunc) OpenGroup(id string) {
	if f != nil {
		f(id)
	}
}
