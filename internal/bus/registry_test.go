package bus

import (
	"context"
	"testing"

	"github.com/goliatone/go-lfg-client/pkg/interfaces/transport"
)

// fakeChannel records registrations and lets tests push frames through the
// attached dispatchers.
type fakeChannel struct {
	transport.Nop
	handlers map[string][]transport.Handler
	attaches int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: map[string][]transport.Handler{}}
}

func (f *fakeChannel) On(event string, h transport.Handler) {
	f.handlers[event] = append(f.handlers[event], h)
	f.attaches++
}

func (f *fakeChannel) push(event string, data []byte) {
	for _, h := range f.handlers[event] {
		h(context.Background(), data)
	}
}

func TestSubscribeReplacesSameOwner(t *testing.T) {
	channel := newFakeChannel()
	registry := NewRegistry(Dependencies{Transport: channel})

	var got []string
	if _, err := registry.Subscribe("group_update", "detail", func(_ context.Context, _ []byte) {
		got = append(got, "first")
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := registry.Subscribe("group_update", "detail", func(_ context.Context, _ []byte) {
		got = append(got, "second")
	}); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}

	channel.push("group_update", nil)
	if len(got) != 1 || got[0] != "second" {
		t.Fatalf("expected replacement handler only, got %v", got)
	}
	if channel.attaches != 1 {
		t.Fatalf("expected a single transport attach per event, got %d", channel.attaches)
	}
}

func TestDistinctOwnersBothReceiveInOrder(t *testing.T) {
	channel := newFakeChannel()
	registry := NewRegistry(Dependencies{Transport: channel})

	var got []string
	registry.Subscribe("new_notification", "engine", func(_ context.Context, _ []byte) {
		got = append(got, "engine")
	})
	registry.Subscribe("new_notification", "detail", func(_ context.Context, _ []byte) {
		got = append(got, "detail")
	})

	channel.push("new_notification", []byte(`{}`))
	if len(got) != 2 || got[0] != "engine" || got[1] != "detail" {
		t.Fatalf("expected registration-order delivery, got %v", got)
	}
}

func TestOffRemovesAllOwners(t *testing.T) {
	channel := newFakeChannel()
	registry := NewRegistry(Dependencies{Transport: channel})

	fired := 0
	registry.Subscribe("stats_update", "a", func(_ context.Context, _ []byte) { fired++ })
	registry.Subscribe("stats_update", "b", func(_ context.Context, _ []byte) { fired++ })

	registry.Off("stats_update")
	channel.push("stats_update", nil)
	if fired != 0 {
		t.Fatalf("expected no delivery after off, got %d", fired)
	}

	// Re-subscribing after a wholesale off must work again.
	registry.Subscribe("stats_update", "a", func(_ context.Context, _ []byte) { fired++ })
	channel.push("stats_update", nil)
	if fired != 1 {
		t.Fatalf("expected delivery after re-subscribe, got %d", fired)
	}
}

func TestCancelRemovesOnlyOwnHandle(t *testing.T) {
	channel := newFakeChannel()
	registry := NewRegistry(Dependencies{Transport: channel})

	fired := map[string]int{}
	sub, err := registry.Subscribe("group_update", "detail", func(_ context.Context, _ []byte) {
		fired["detail"]++
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	registry.Subscribe("group_update", "engine", func(_ context.Context, _ []byte) {
		fired["engine"]++
	})

	sub.Cancel()
	sub.Cancel() // safe twice
	channel.push("group_update", nil)
	if fired["detail"] != 0 || fired["engine"] != 1 {
		t.Fatalf("expected only the other owner to fire, got %v", fired)
	}
}

func TestCancelOfReplacedHandleIsNoop(t *testing.T) {
	channel := newFakeChannel()
	registry := NewRegistry(Dependencies{Transport: channel})

	fired := 0
	stale, _ := registry.Subscribe("group_update", "detail", func(_ context.Context, _ []byte) {})
	registry.Subscribe("group_update", "detail", func(_ context.Context, _ []byte) { fired++ })

	// The stale handle refers to a registration that was already replaced;
	// cancelling it must not disturb the replacement.
	stale.Cancel()
	channel.push("group_update", nil)
	if fired != 1 {
		t.Fatalf("expected replacement to survive stale cancel, got %d", fired)
	}
}

func TestSubscribeValidation(t *testing.T) {
	registry := NewRegistry(Dependencies{})
	if _, err := registry.Subscribe("", "owner", func(_ context.Context, _ []byte) {}); err == nil {
		t.Fatal("expected error for empty event")
	}
	if _, err := registry.Subscribe("group_update", "", func(_ context.Context, _ []byte) {}); err == nil {
		t.Fatal("expected error for empty owner")
	}
	if _, err := registry.Subscribe("group_update", "owner", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
