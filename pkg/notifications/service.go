package notifications

import (
	"context"
	"errors"
	"time"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-lfg-client/internal/catalog"
	"github.com/goliatone/go-lfg-client/internal/messages"
	engine "github.com/goliatone/go-lfg-client/internal/notifications"
	"github.com/goliatone/go-lfg-client/pkg/bus"
	"github.com/goliatone/go-lfg-client/pkg/domain"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/store"
	"github.com/goliatone/go-lfg-client/pkg/presenters"
)

// Re-export the dungeon dataset contract so hosts don't import internals.
type (
	Dungeon      = catalog.Dungeon
	DungeonsFunc = catalog.LoaderFunc
)

// DungeonLoader fetches the dungeon dataset used for display names.
type DungeonLoader = catalog.Loader

// Service exposes the notification engine to consumers.
type Service struct {
	internal *engine.Service
}

// Dependencies wires the remote store, push channel, and presentation hooks.
// Only the store and bus are usually supplied; everything else has a working
// default (built-in translator, console-silent presenters, UTC clock).
type Dependencies struct {
	Store     store.RemoteStore
	Bus       *bus.Bus
	Loader    DungeonLoader
	Toast     presenters.ToastPresenter
	Desktop   presenters.DesktopPresenter
	Navigator presenters.Navigator
	Logger    logger.Logger

	// Translator overrides the built-in catalogs from Translations().
	Translator i18n.Translator
	// Locale supplies the current display language; defaults to DefaultLocale.
	Locale        func() string
	DefaultLocale string
	// Visible probes document visibility; desktop notices fire only when
	// it returns false.
	Visible func() bool
	// AppName titles desktop notifications.
	AppName string
	// BadgeLimit caps the rendered badge label ("9+" by default).
	BadgeLimit int

	// Now and NewID let tests pin time and synthesized identifiers.
	Now   func() time.Time
	NewID func() string
}

var errServiceNotInitialised = errors.New("notifications: service not initialised")

// New constructs the façade, wiring the message renderer and engine.
func New(deps Dependencies) (*Service, error) {
	translator := deps.Translator
	if translator == nil {
		defaultLocale := deps.DefaultLocale
		if defaultLocale == "" {
			defaultLocale = "en"
		}
		var err error
		translator, err = i18n.NewSimpleTranslator(
			i18n.NewStaticStore(Translations()),
			i18n.WithTranslatorDefaultLocale(defaultLocale),
		)
		if err != nil {
			return nil, err
		}
	}

	renderer, err := messages.NewService(translator, messages.WithDefaultLocale(deps.DefaultLocale))
	if err != nil {
		return nil, err
	}
	renderer.RegisterMessages(Messages())

	var subscriber engine.Subscriber
	if deps.Bus != nil {
		subscriber = deps.Bus
	}

	internalSvc, err := engine.NewService(engine.Dependencies{
		Store:      deps.Store,
		Bus:        subscriber,
		Catalog:    catalog.NewDirectory(deps.Logger),
		Loader:     deps.Loader,
		Renderer:   renderer,
		Toast:      deps.Toast,
		Desktop:    deps.Desktop,
		Navigator:  deps.Navigator,
		Logger:     deps.Logger,
		Visible:    deps.Visible,
		Locale:     deps.Locale,
		Now:        deps.Now,
		NewID:      deps.NewID,
		AppName:    deps.AppName,
		BadgeLimit: deps.BadgeLimit,
	})
	if err != nil {
		return nil, err
	}
	return &Service{internal: internalSvc}, nil
}

// Initialize resolves desktop consent, preloads display data, bulk fetches
// the log, and subscribes to pushed notifications.
func (s *Service) Initialize(ctx context.Context) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	return s.internal.Initialize(ctx)
}

// Refresh re-fetches the log wholesale from the remote store.
func (s *Service) Refresh(ctx context.Context) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	return s.internal.Refresh(ctx)
}

// Notifications returns a copy of the log, most recent first.
func (s *Service) Notifications() []domain.Notification {
	if s == nil || s.internal == nil {
		return nil
	}
	return s.internal.Notifications()
}

// UnreadCount returns the number of unread notifications.
func (s *Service) UnreadCount() int {
	if s == nil || s.internal == nil {
		return 0
	}
	return s.internal.UnreadCount()
}

// BadgeLabel renders the unread counter, capped visually at "9+".
func (s *Service) BadgeLabel() string {
	if s == nil || s.internal == nil {
		return ""
	}
	return s.internal.BadgeLabel()
}

// BuildMessage renders the localized message for a notification.
func (s *Service) BuildMessage(n domain.Notification) string {
	if s == nil || s.internal == nil {
		return ""
	}
	return s.internal.BuildMessage(n)
}

// Permission returns the cached desktop consent state.
func (s *Service) Permission() presenters.Permission {
	if s == nil || s.internal == nil {
		return presenters.PermissionUndetermined
	}
	return s.internal.Permission()
}

// MarkAllRead optimistically reads everything, then syncs remotely. Remote
// failures are absorbed: the local mutation stands and the affected items are
// flagged sync-pending.
func (s *Service) MarkAllRead(ctx context.Context) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	s.internal.MarkAllRead(ctx)
	return nil
}

// MarkRead optimistically reads one notification, then syncs remotely.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	s.internal.MarkRead(ctx, id)
	return nil
}

// Dismiss removes one notification locally and best-effort remotely.
func (s *Service) Dismiss(ctx context.Context, id string) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	s.internal.Dismiss(ctx, id)
	return nil
}

// DismissAll clears the log locally and best-effort remotely.
func (s *Service) DismissAll(ctx context.Context) error {
	if s == nil || s.internal == nil {
		return errServiceNotInitialised
	}
	s.internal.DismissAll(ctx)
	return nil
}

// TypeIcon returns the toast/list glyph for a notification type.
func TypeIcon(t domain.Type) string {
	return engine.TypeIcon(t)
}

// Age renders a notification's age for list displays.
func Age(createdAt, now time.Time) string {
	return engine.Age(createdAt, now)
}
