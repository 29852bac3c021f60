package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-lfg-client/internal/bus"
	"github.com/goliatone/go-lfg-client/internal/catalog"
	"github.com/goliatone/go-lfg-client/pkg/domain"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/store"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/transport"
	"github.com/goliatone/go-lfg-client/pkg/presenters"
	"github.com/jaytaylor/html2text"
	"github.com/oklog/ulid/v2"
)

// Owner token used for the engine's own push subscription.
const subscriptionOwner = "notification-engine"

// Renderer produces the localized message for a notification type.
type Renderer interface {
	Render(typ domain.Type, locale string, data map[string]any) (string, error)
	DefaultLocale() string
}

// Subscriber registers replace-on-resubscribe handlers for push events.
type Subscriber interface {
	Subscribe(event, owner string, h transport.Handler) (*bus.Subscription, error)
}

// Dependencies wires the remote store, push channel, and presentation hooks
// into the engine.
type Dependencies struct {
	Store     store.RemoteStore
	Bus       Subscriber
	Catalog   *catalog.Directory
	Loader    catalog.Loader
	Renderer  Renderer
	Toast     presenters.ToastPresenter
	Desktop   presenters.DesktopPresenter
	Navigator presenters.Navigator
	Logger    logger.Logger

	// Visible probes whether the document/window currently has the user's
	// attention; desktop notifications are suppressed while it returns true.
	Visible func() bool
	// Locale supplies the current display language.
	Locale func() string
	// Now and NewID exist so tests can pin time and identifiers.
	Now   func() time.Time
	NewID func() string

	// AppName titles desktop notifications.
	AppName string
	// BadgeLimit caps the rendered badge label, past it the label shows
	// "N+". The underlying counter is never capped.
	BadgeLimit int
}

// Service owns the canonical notification log and unread state for one client
// session. All state is in-memory and tab-local; the remote store is only a
// best-effort mirror that local optimistic mutations run ahead of.
type Service struct {
	storeClient store.RemoteStore
	subscriber  Subscriber
	catalog     *catalog.Directory
	loader      catalog.Loader
	renderer    Renderer
	toast       presenters.ToastPresenter
	desktop     presenters.DesktopPresenter
	navigator   presenters.Navigator
	logger      logger.Logger
	visible     func() bool
	locale      func() string
	now         func() time.Time
	newID       func() string
	appName     string
	badgeLimit  int

	mu         sync.Mutex
	items      []*domain.Notification
	permission presenters.Permission
}

var errRendererRequired = errors.New("notifications: renderer is required")

// NewService constructs the engine.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if deps.Store == nil {
		deps.Store = &store.Nop{}
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.NewDirectory(deps.Logger)
	}
	if deps.Toast == nil {
		deps.Toast = &presenters.NopToast{}
	}
	if deps.Desktop == nil {
		deps.Desktop = &presenters.NopDesktop{}
	}
	if deps.Navigator == nil {
		deps.Navigator = &presenters.NopNavigator{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Visible == nil {
		deps.Visible = func() bool { return true }
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.NewID == nil {
		deps.NewID = func() string { return ulid.Make().String() }
	}
	if deps.Locale == nil {
		locale := deps.Renderer.DefaultLocale()
		deps.Locale = func() string { return locale }
	}
	if deps.AppName == "" {
		deps.AppName = "LFG"
	}
	if deps.BadgeLimit <= 0 {
		deps.BadgeLimit = 9
	}
	return &Service{
		storeClient: deps.Store,
		subscriber:  deps.Bus,
		catalog:     deps.Catalog,
		loader:      deps.Loader,
		renderer:    deps.Renderer,
		toast:       deps.Toast,
		desktop:     deps.Desktop,
		navigator:   deps.Navigator,
		logger:      deps.Logger,
		visible:     deps.Visible,
		locale:      deps.Locale,
		now:         deps.Now,
		newID:       deps.NewID,
		appName:     deps.AppName,
		badgeLimit:  deps.BadgeLimit,
		permission:  presenters.PermissionUndetermined,
	}, nil
}

// Initialize resolves desktop consent, preloads the dungeon catalog, bulk
// fetches the existing log, and subscribes to pushed notifications. Repeated
// calls are safe: the push subscription replaces itself.
func (s *Service) Initialize(ctx context.Context) error {
	s.resolvePermission(ctx)
	s.catalog.Load(ctx, s.loader)

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("notification fetch failed", logger.Field{Key: "error", Value: err})
	}

	if s.subscriber != nil {
		if _, err := s.subscriber.Subscribe(domain.EventNewNotification, subscriptionOwner, s.HandlePush); err != nil {
			s.logger.Warn("push subscription failed", logger.Field{Key: "error", Value: err})
		}
	}
	s.logger.Info("notification engine initialized",
		logger.Field{Key: "unread", Value: s.UnreadCount()},
		logger.Field{Key: "desktop", Value: string(s.Permission())},
	)
	return nil
}

func (s *Service) resolvePermission(ctx context.Context) {
	perm := s.desktop.Permission(ctx)
	if perm == presenters.PermissionUndetermined {
		resolved, err := s.desktop.RequestPermission(ctx)
		if err != nil {
			s.logger.Warn("desktop permission request failed", logger.Field{Key: "error", Value: err})
			resolved = presenters.PermissionDenied
		}
		perm = resolved
	}
	s.mu.Lock()
	s.permission = perm
	s.mu.Unlock()
}

// Refresh replaces the log wholesale with the remote store's view. The fetch
// is the only path that can move items backwards (e.g. re-marking something
// unread); pushes and optimistic mutations always run ahead of it.
func (s *Service) Refresh(ctx context.Context) error {
	fetched, err := s.storeClient.FetchNotifications(ctx)
	if err != nil {
		return err
	}
	items := make([]*domain.Notification, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for i := range fetched {
		n := fetched[i]
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		items = append(items, &n)
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// HandlePush ingests one pushed event: synthesize, prepend, count, present.
// Malformed payloads degrade to a generic notification; nothing here throws
// past the engine boundary.
func (s *Service) HandlePush(ctx context.Context, data []byte) {
	var event domain.PushEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn("malformed push payload", logger.Field{Key: "error", Value: err})
		event = domain.PushEvent{}
	}

	typ := event.Type
	if typ == "" {
		typ = domain.TypeGeneric
	}
	id := event.EventID()
	if id == "" {
		id = s.newID()
	}

	notif := &domain.Notification{
		ID:        id,
		Type:      typ,
		Payload:   event.Payload,
		CreatedAt: s.now(),
		Read:      false,
	}

	s.mu.Lock()
	for _, existing := range s.items {
		if existing.ID == id {
			s.mu.Unlock()
			s.logger.Debug("duplicate push suppressed", logger.Field{Key: "id", Value: id})
			return
		}
	}
	s.items = append([]*domain.Notification{notif}, s.items...)
	granted := s.permission == presenters.PermissionGranted
	s.mu.Unlock()

	message := s.BuildMessage(*notif)

	if err := s.toast.Show(ctx, presenters.Toast{
		Message: message,
		Type:    notif.Type,
		Icon:    TypeIcon(notif.Type),
	}); err != nil {
		s.logger.Warn("toast presentation failed", logger.Field{Key: "error", Value: err})
	}

	if granted && !s.visible() {
		s.fireDesktop(ctx, notif, message)
	}
}

func (s *Service) fireDesktop(ctx context.Context, notif *domain.Notification, message string) {
	body, err := html2text.FromString(message, html2text.Options{})
	if err != nil {
		body = message
	}
	note := presenters.Note{
		Tag:     notif.ID,
		Title:   s.appName,
		Body:    body,
		Icon:    notif.Payload.ClassIcon(),
		GroupID: notif.Payload.GroupID,
	}
	groupID := notif.Payload.GroupID
	note.OnClick = func() {
		s.navigator.Focus()
		if groupID != "" {
			s.navigator.OpenGroup(groupID)
		}
	}
	if err := s.desktop.Notify(ctx, note); err != nil {
		s.logger.Warn("desktop notification failed", logger.Field{Key: "error", Value: err})
	}
}

// BuildMessage renders the human-readable message for a notification. It is
// pure: the same notification, locale, and catalog state always yield the
// same string, so callers may invoke it on every re-render.
func (s *Service) BuildMessage(notif domain.Notification) string {
	locale := s.locale()
	data := map[string]any{
		"charName":   notif.Payload.CharacterName,
		"groupTitle": notif.Payload.GroupTitle,
		"dungeon":    s.catalog.DisplayName(notif.Payload, locale),
		"message":    notif.Payload.Message,
		"classIcon":  notif.Payload.ClassIcon(),
	}
	rendered, err := s.renderer.Render(notif.Type, locale, data)
	if err != nil || rendered == "" {
		s.logger.Debug("message render fallback",
			logger.Field{Key: "type", Value: string(notif.Type)},
			logger.Field{Key: "error", Value: err},
		)
		if msg := strings.TrimSpace(notif.Payload.Message); msg != "" {
			return msg
		}
		return "New notification"
	}
	return rendered
}

// Notifications returns a copy of the log, most recent first.
func (s *Service) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.items))
	for i, n := range s.items {
		out[i] = *n
	}
	return out
}

// UnreadCount is always derived from the log, never maintained independently.
func (s *Service) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadLocked()
}

func (s *Service) unreadLocked() int {
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// BadgeLabel renders the unread counter for the bell badge, visually capped
// at the configured limit ("9+" by default). The underlying counter is never
// capped.
func (s *Service) BadgeLabel() string {
	count := s.UnreadCount()
	switch {
	case count <= 0:
		return ""
	case count > s.badgeLimit:
		return strconv.Itoa(s.badgeLimit) + "+"
	default:
		return strconv.Itoa(count)
	}
}

// Permission returns the cached desktop consent state.
func (s *Service) Permission() presenters.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// MarkAllRead flips every notification to read locally, then tells the
// remote store. A remote failure marks the affected items sync-pending but
// never rolls the local mutation back.
func (s *Service) MarkAllRead(ctx context.Context) {
	s.mu.Lock()
	touched := make([]*domain.Notification, 0, len(s.items))
	for _, n := range s.items {
		if !n.Read {
			n.Read = true
			touched = append(touched, n)
		}
	}
	s.mu.Unlock()

	if err := s.storeClient.MarkAllRead(ctx); err != nil {
		s.logger.Warn("mark-all-read sync failed", logger.Field{Key: "error", Value: err})
		s.mu.Lock()
		for _, n := range touched {
			n.Sync = domain.SyncPending
		}
		s.mu.Unlock()
	}
}

// MarkRead flips one notification to read. Unknown or already-read ids are
// local no-ops and issue no remote call.
func (s *Service) MarkRead(ctx context.Context, id string) {
	s.mu.Lock()
	var target *domain.Notification
	for _, n := range s.items {
		if n.ID == id {
			target = n
			break
		}
	}
	if target == nil || target.Read {
		s.mu.Unlock()
		return
	}
	target.Read = true
	s.mu.Unlock()

	if err := s.storeClient.MarkRead(ctx, id); err != nil {
		s.logger.Warn("mark-read sync failed",
			logger.Field{Key: "id", Value: id},
			logger.Field{Key: "error", Value: err},
		)
		s.mu.Lock()
		target.Sync = domain.SyncPending
		s.mu.Unlock()
	}
}

// Dismiss removes one notification from the log. Dismissing an absent id is
// a no-op. Remote deletion is best effort.
func (s *Service) Dismiss(ctx context.Context, id string) {
	s.mu.Lock()
	found := false
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}

	if err := s.storeClient.Dismiss(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("dismiss sync failed",
			logger.Field{Key: "id", Value: id},
			logger.Field{Key: "error", Value: err},
		)
	}
}

// DismissAll clears the log and best-effort deletes every entry remotely.
func (s *Service) DismissAll(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, len(s.items))
	for i, n := range s.items {
		ids[i] = n.ID
	}
	s.items = nil
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.storeClient.Dismiss(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("dismiss sync failed",
				logger.Field{Key: "id", Value: id},
				logger.Field{Key: "error", Value: err},
			)
		}
	}
}
