package views

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-lfg-client/pkg/bus"
	"github.com/goliatone/go-lfg-client/pkg/connection"
	"github.com/goliatone/go-lfg-client/pkg/domain"
	"github.com/goliatone/go-lfg-client/pkg/interfaces/logger"
)

// View is anything that can reload itself from the source of truth. Refresh
// must be idempotent: the push events are hints that state moved, never the
// state itself, so refreshing more often than strictly needed is harmless.
type View interface {
	Refresh(ctx context.Context) error
}

// ViewFunc adapts a function to the View interface.
type ViewFunc func(ctx context.Context) error

func (f ViewFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Dependencies wires a Binder.
type Dependencies struct {
	Bus        *bus.Bus
	Connection *connection.Manager
	Logger     logger.Logger
}

// Binder attaches views to the push events that invalidate them. Each Bind
// call replaces the previous binding for the same view slot, so navigating
// between screens never stacks stale subscriptions.
type Binder struct {
	bus    *bus.Bus
	conn   *connection.Manager
	logger logger.Logger

	detailSubs []*bus.Subscription
}

// NewBinder builds a Binder from its dependencies.
func NewBinder(deps Dependencies) *Binder {
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Binder{bus: deps.Bus, conn: deps.Connection, logger: deps.Logger}
}

const (
	ownerListView   = "view-list"
	ownerDetailView = "view-detail"
	ownerStatsView  = "view-stats"
)

// BindList refreshes the group list whenever the server reports the roster
// of open groups changed.
func (b *Binder) BindList(view View) error {
	if b.bus == nil || view == nil {
		return nil
	}
	_, err := b.bus.Subscribe(domain.EventListUpdate, ownerListView, func(ctx context.Context, _ []byte) {
		b.refresh(ctx, view, domain.EventListUpdate)
	})
	return err
}

// BindDetail joins the group's room and refreshes the detail view on the
// events scoped to that group. A group_update that reports the group closed
// navigates away instead of refreshing, the group no longer exists to show.
func (b *Binder) BindDetail(ctx context.Context, groupID string, view View, onClosed func(ctx context.Context)) error {
	if b.conn != nil {
		b.conn.JoinRoom(ctx, groupID)
	}
	if b.bus == nil || view == nil {
		return nil
	}
	b.detailSubs = nil

	sub, err := b.bus.Subscribe(domain.EventGroupUpdate, ownerDetailView, func(ctx context.Context, data []byte) {
		var update domain.GroupUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			b.logger.Warn("views: dropping malformed group_update")
			return
		}
		if update.Closed() {
			if onClosed != nil {
				onClosed(ctx)
			}
			return
		}
		b.refresh(ctx, view, domain.EventGroupUpdate)
	})
	if err != nil {
		return err
	}
	b.detailSubs = append(b.detailSubs, sub)

	sub, err = b.bus.Subscribe(domain.EventRequestProcessed, ownerDetailView, func(ctx context.Context, data []byte) {
		var processed domain.RequestProcessed
		if err := json.Unmarshal(data, &processed); err != nil {
			b.logger.Warn("views: dropping malformed request_processed")
			return
		}
		if !processed.ForGroup(groupID) {
			return
		}
		b.refresh(ctx, view, domain.EventRequestProcessed)
	})
	if err != nil {
		return err
	}
	b.detailSubs = append(b.detailSubs, sub)

	// Leaders see join requests as notifications. When one lands for the
	// group on screen, the pending-requests panel is stale.
	sub, err = b.bus.Subscribe(domain.EventNewNotification, ownerDetailView, func(ctx context.Context, data []byte) {
		var event domain.PushEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return
		}
		if event.Type != domain.TypeRequestReceived || event.GroupID != groupID {
			return
		}
		b.refresh(ctx, view, domain.EventNewNotification)
	})
	if err != nil {
		return err
	}
	b.detailSubs = append(b.detailSubs, sub)
	return nil
}

// UnbindDetail drops the detail bindings and leaves the room. Call it when
// navigating off a group page. Other subscribers to the same events, the
// notification engine in particular, are untouched.
func (b *Binder) UnbindDetail(ctx context.Context) {
	for _, sub := range b.detailSubs {
		sub.Cancel()
	}
	b.detailSubs = nil
	if b.conn != nil {
		b.conn.LeaveCurrentRoom(ctx)
	}
}

// BindStats forwards live server stats to the display callback.
func (b *Binder) BindStats(display func(domain.Stats)) error {
	if b.bus == nil || display == nil {
		return nil
	}
	_, err := b.bus.Subscribe(domain.EventStats, ownerStatsView, func(_ context.Context, data []byte) {
		var stats domain.Stats
		if err := json.Unmarshal(data, &stats); err != nil {
			b.logger.Warn("views: dropping malformed stats_update")
			return
		}
		display(stats)
	})
	return err
}

func (b *Binder) refresh(ctx context.Context, view View, event string) {
	if err := view.Refresh(ctx); err != nil {
		b.logger.Warn("views: refresh failed", logger.F("event", event), logger.F("error", err.Error()))
	}
}
