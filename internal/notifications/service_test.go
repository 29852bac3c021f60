package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-lfg-client/pkg/domain"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/store"
	"github.com/goliatone/go-lfg-client/pkg/presenters"
)

type fakeStore struct {
	store.Nop
	notifications []domain.Notification
	fetchErr      error
	markAllErr    error
	markReadErr   error
	dismissErr    error

	markAllCalls  int
	markReadIDs   []string
	dismissedIDs  []string
	fetchRequests int
}

func (f *fakeStore) FetchNotifications(ctx context.Context) ([]domain.Notification, error) {
	f.fetchRequests++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]domain.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out, nil
}

func (f *fakeStore) MarkAllRead(ctx context.Context) error {
	f.markAllCalls++
	return f.markAllErr
}

func (f *fakeStore) MarkRead(ctx context.Context, id string) error {
	f.markReadIDs = append(f.markReadIDs, id)
	return f.markReadErr
}

func (f *fakeStore) Dismiss(ctx context.Context, id string) error {
	f.dismissedIDs = append(f.dismissedIDs, id)
	return f.dismissErr
}

// echoRenderer renders "type:charName" so assertions stay readable.
type echoRenderer struct{}

func (echoRenderer) Render(typ domain.Type, locale string, data map[string]any) (string, error) {
	name, _ := data["charName"].(string)
	if name == "" {
		return string(typ), nil
	}
	return fmt.Sprintf("%s:%s", typ, name), nil
}

func (echoRenderer) DefaultLocale() string { return "en" }

type failingRenderer struct{}

func (failingRenderer) Render(domain.Type, string, map[string]any) (string, error) {
	return "", errors.New("boom")
}

func (failingRenderer) DefaultLocale() string { return "en" }

type captureToast struct {
	shown []presenters.Toast
}

func (c *captureToast) Show(_ context.Context, toast presenters.Toast) error {
	c.shown = append(c.shown, toast)
	return nil
}

type captureDesktop struct {
	permission presenters.Permission
	requested  int
	notes      []presenters.Note
}

func (c *captureDesktop) Permission(_ context.Context) presenters.Permission {
	return c.permission
}

func (c *captureDesktop) RequestPermission(_ context.Context) (presenters.Permission, error) {
	c.requested++
	c.permission = presenters.PermissionGranted
	return c.permission, nil
}

func (c *captureDesktop) Notify(_ context.Context, note presenters.Note) error {
	c.notes = append(c.notes, note)
	return nil
}

func newEngine(t *testing.T, deps Dependencies) *Service {
	t.Helper()
	if deps.Renderer == nil {
		deps.Renderer = echoRenderer{}
	}
	if deps.Now == nil {
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		deps.Now = func() time.Time { return base }
	}
	if deps.NewID == nil {
		seq := 0
		deps.NewID = func() string {
			seq++
			return fmt.Sprintf("local-%d", seq)
		}
	}
	svc, err := NewService(deps)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRefreshDerivesUnreadFromLog(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{notifications: []domain.Notification{
		{ID: "1", Type: domain.TypeRequestAccepted, Read: true},
		{ID: "2", Type: domain.TypeMemberJoined, Read: false},
	}}
	svc := newEngine(t, Dependencies{Store: st})

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := svc.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}
	if got := svc.BadgeLabel(); got != "1" {
		t.Fatalf("expected badge 1, got %q", got)
	}
}

func TestPushPrependsAndCounts(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{notifications: []domain.Notification{
		{ID: "1", Type: domain.TypeRequestAccepted, Read: true},
		{ID: "2", Type: domain.TypeMemberJoined, Read: false},
	}}
	toast := &captureToast{}
	svc := newEngine(t, Dependencies{Store: st, Toast: toast})
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	svc.HandlePush(ctx, []byte(`{"id":3,"type":"member_joined","characterName":"Iop99","groupId":"g7"}`))

	items := svc.Notifications()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "3" || items[1].ID != "1" || items[2].ID != "2" {
		t.Fatalf("expected newest first [3 1 2], got [%s %s %s]", items[0].ID, items[1].ID, items[2].ID)
	}
	if got := svc.UnreadCount(); got != 2 {
		t.Fatalf("expected 2 unread, got %d", got)
	}
	if len(toast.shown) != 1 || toast.shown[0].Message != "member_joined:Iop99" {
		t.Fatalf("unexpected toast: %+v", toast.shown)
	}
}

func TestPushWithoutIDSynthesizesOne(t *testing.T) {
	ctx := context.Background()
	svc := newEngine(t, Dependencies{Store: &fakeStore{}})

	svc.HandlePush(ctx, []byte(`{"type":"group_closed","groupTitle":"Dragon Pig run"}`))
	items := svc.Notifications()
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].ID != "local-1" {
		t.Fatalf("expected synthesized id, got %q", items[0].ID)
	}
}

func TestMalformedPushDegradesToGeneric(t *testing.T) {
	ctx := context.Background()
	toast := &captureToast{}
	svc := newEngine(t, Dependencies{Store: &fakeStore{}, Toast: toast})

	svc.HandlePush(ctx, []byte(`not json`))
	items := svc.Notifications()
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if items[0].Type != domain.TypeGeneric {
		t.Fatalf("expected generic type, got %q", items[0].Type)
	}
	if len(toast.shown) != 1 {
		t.Fatalf("expected the toast to still fire, got %d", len(toast.shown))
	}
}

func TestDuplicatePushSuppressed(t *testing.T) {
	ctx := context.Background()
	svc := newEngine(t, Dependencies{Store: &fakeStore{}})

	svc.HandlePush(ctx, []byte(`{"id":7,"type":"member_left"}`))
	svc.HandlePush(ctx, []byte(`{"id":7,"type":"member_left"}`))
	if got := len(svc.Notifications()); got != 1 {
		t.Fatalf("expected duplicate suppressed, got %d items", got)
	}
	if got := svc.UnreadCount(); got != 1 {
		t.Fatalf("expected unread 1, got %d", got)
	}
}

func TestStringIDPushKeepsEventIntact(t *testing.T) {
	ctx := context.Background()
	svc := newEngine(t, Dependencies{Store: &fakeStore{}})

	svc.HandlePush(ctx, []byte(`{"id":"01J1ABCD","type":"member_left","characterName":"Iop99"}`))
	items := svc.Notifications()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ID != "01J1ABCD" || items[0].Type != domain.TypeMemberLeft {
		t.Fatalf("unexpected notification: %+v", items[0])
	}
	if items[0].Payload.CharacterName != "Iop99" {
		t.Fatalf("unexpected payload: %+v", items[0].Payload)
	}

	svc.HandlePush(ctx, []byte(`{"id":"01J1ABCD","type":"member_left"}`))
	if got := len(svc.Notifications()); got != 1 {
		t.Fatalf("expected duplicate suppressed, got %d items", got)
	}
}

func TestRefreshReplacesPushState(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{notifications: []domain.Notification{
		{ID: "7", Type: domain.TypeMemberLeft, Read: false},
	}}
	svc := newEngine(t, Dependencies{Store: st})

	svc.HandlePush(ctx, []byte(`{"id":7,"type":"member_left"}`))
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := len(svc.Notifications()); got != 1 {
		t.Fatalf("expected fetch to replace pushed copy, got %d items", got)
	}
}

func TestBadgeLabelCaps(t *testing.T) {
	ctx := context.Background()
	var many []domain.Notification
	for i := 0; i < 12; i++ {
		many = append(many, domain.Notification{ID: fmt.Sprintf("%d", i+1), Type: domain.TypeGeneric})
	}
	svc := newEngine(t, Dependencies{Store: &fakeStore{notifications: many}})
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := svc.BadgeLabel(); got != "9+" {
		t.Fatalf("expected capped badge, got %q", got)
	}
	if got := svc.UnreadCount(); got != 12 {
		t.Fatalf("expected true counter uncapped, got %d", got)
	}
}

func TestMarkAllReadIsOptimistic(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		notifications: []domain.Notification{
			{ID: "1", Type: domain.TypeGeneric, Read: false},
			{ID: "2", Type: domain.TypeGeneric, Read: true},
			{ID: "3", Type: domain.TypeGeneric, Read: false},
		},
		markAllErr: errors.New("offline"),
	}
	svc := newEngine(t, Dependencies{Store: st})
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	svc.MarkAllRead(ctx)
	if got := svc.UnreadCount(); got != 0 {
		t.Fatalf("expected local mutation to survive remote failure, got %d unread", got)
	}
	pending := 0
	for _, n := range svc.Notifications() {
		if n.Sync == domain.SyncPending {
			pending++
		}
	}
	if pending != 2 {
		t.Fatalf("expected 2 sync-pending items (the ones flipped), got %d", pending)
	}
}

func TestMarkReadSkipsAbsentAndAlreadyRead(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{notifications: []domain.Notification{
		{ID: "1", Type: domain.TypeGeneric, Read: true},
		{ID: "2", Type: domain.TypeGeneric, Read: false},
	}}
	svc := newEngine(t, Dependencies{Store: st})
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	svc.MarkRead(ctx, "missing")
	svc.MarkRead(ctx, "1")
	if len(st.markReadIDs) != 0 {
		t.Fatalf("expected no remote calls for no-op marks, got %v", st.markReadIDs)
	}

	svc.MarkRead(ctx, "2")
	if got := svc.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
	if len(st.markReadIDs) != 1 || st.markReadIDs[0] != "2" {
		t.Fatalf("expected one remote call for id 2, got %v", st.markReadIDs)
	}
}

func TestDismissRemovesAndToleratesRemoteAbsence(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{
		notifications: []domain.Notification{
			{ID: "1", Type: domain.TypeGeneric, Read: false},
		},
		dismissErr: store.ErrNotFound,
	}
	svc := newEngine(t, Dependencies{Store: st})
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	svc.Dismiss(ctx, "absent")
	if len(st.dismissedIDs) != 0 {
		t.Fatalf("expected no remote call for absent id, got %v", st.dismissedIDs)
	}

	svc.Dismiss(ctx, "1")
	if got := len(svc.Notifications()); got != 0 {
		t.Fatalf("expected empty log, got %d items", got)
	}
	if got := svc.UnreadCount(); got != 0 {
		t.Fatalf("expected unread to drop with dismissal, got %d", got)
	}
}

func TestDismissAllClearsLog(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{notifications: []domain.Notification{
		{ID: "1", Type: domain.TypeGeneric},
		{ID: "2", Type: domain.TypeGeneric},
	}}
	svc := newEngine(t, Dependencies{Store: st})
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	svc.DismissAll(ctx)
	if got := len(svc.Notifications()); got != 0 {
		t.Fatalf("expected empty log, got %d", got)
	}
	if len(st.dismissedIDs) != 2 {
		t.Fatalf("expected per-id remote deletes, got %v", st.dismissedIDs)
	}
}

func TestDesktopOnlyWhenGrantedAndHidden(t *testing.T) {
	ctx := context.Background()
	desktop := &captureDesktop{permission: presenters.PermissionGranted}
	visible := true
	svc := newEngine(t, Dependencies{
		Store:   &fakeStore{},
		Desktop: desktop,
		Visible: func() bool { return visible },
		AppName: "LFG Finder",
	})
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	svc.HandlePush(ctx, []byte(`{"id":1,"type":"member_joined","characterName":"Iop99","groupId":"g7","classId":3,"gender":1}`))
	if len(desktop.notes) != 0 {
		t.Fatalf("expected no desktop note while visible, got %d", len(desktop.notes))
	}

	visible = false
	svc.HandlePush(ctx, []byte(`{"id":2,"type":"member_joined","characterName":"Iop99","groupId":"g7","classId":3,"gender":1}`))
	if len(desktop.notes) != 1 {
		t.Fatalf("expected one desktop note while hidden, got %d", len(desktop.notes))
	}
	note := desktop.notes[0]
	if note.Title != "LFG Finder" || note.Tag != "2" || note.Icon != "031" {
		t.Fatalf("unexpected note: %+v", note)
	}
}

func TestInitializeRequestsUndeterminedPermission(t *testing.T) {
	ctx := context.Background()
	desktop := &captureDesktop{permission: presenters.PermissionUndetermined}
	svc := newEngine(t, Dependencies{Store: &fakeStore{}, Desktop: desktop})

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if desktop.requested != 1 {
		t.Fatalf("expected one permission request, got %d", desktop.requested)
	}
	if svc.Permission() != presenters.PermissionGranted {
		t.Fatalf("expected cached grant, got %q", svc.Permission())
	}
}

func TestInitializeSurvivesFetchFailure(t *testing.T) {
	ctx := context.Background()
	st := &fakeStore{fetchErr: errors.New("offline")}
	svc := newEngine(t, Dependencies{Store: st})

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("expected initialize to tolerate fetch failure, got %v", err)
	}
	if got := len(svc.Notifications()); got != 0 {
		t.Fatalf("expected empty log, got %d", got)
	}
}

func TestBuildMessageFallsBackToPayloadMessage(t *testing.T) {
	svc := newEngine(t, Dependencies{Store: &fakeStore{}, Renderer: failingRenderer{}})

	msg := svc.BuildMessage(domain.Notification{
		Type:    domain.TypeGeneric,
		Payload: domain.Payload{Message: "Bienvenue"},
	})
	if msg != "Bienvenue" {
		t.Fatalf("expected payload message fallback, got %q", msg)
	}

	msg = svc.BuildMessage(domain.Notification{Type: domain.TypeGeneric})
	if msg != "New notification" {
		t.Fatalf("expected last-resort fallback, got %q", msg)
	}
}
