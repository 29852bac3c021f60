package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// echoServer upgrades a single connection, forwards server-pushed frames from
// push, and exposes frames the client emitted on received.
func echoServer(t *testing.T) (*httptest.Server, chan envelope, chan envelope) {
	t.Helper()
	push := make(chan envelope, 8)
	received := make(chan envelope, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go func() {
			for frame := range push {
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			}
		}()
		for {
			var frame envelope
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			received <- frame
		}
	}))
	t.Cleanup(server.Close)
	return server, push, received
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func newTestTransport(t *testing.T, url string) *Transport {
	t.Helper()
	tr, err := New(Config{
		URL:          url,
		DialTimeout:  2 * time.Second,
		ReconnectMin: 10 * time.Millisecond,
		ReconnectMax: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	return tr
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestConnectFiresEstablished(t *testing.T) {
	server, _, _ := echoServer(t)
	tr := newTestTransport(t, wsURL(server))

	established := make(chan struct{}, 1)
	tr.OnEstablished(func(ctx context.Context) {
		select {
		case established <- struct{}{}:
		default:
		}
	})

	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	select {
	case <-established:
	case <-time.After(3 * time.Second):
		t.Fatal("established callback never fired")
	}
	waitFor(t, tr.Connected)

	// Second connect while running is a no-op.
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect call: %v", err)
	}
}

func TestInboundFramesReachHandlers(t *testing.T) {
	server, push, _ := echoServer(t)
	tr := newTestTransport(t, wsURL(server))

	got := make(chan []byte, 1)
	tr.On("new_notification", func(_ context.Context, data []byte) {
		got <- data
	})

	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, tr.Connected)

	payload, _ := json.Marshal(map[string]any{"id": 3, "type": "member_joined"})
	push <- envelope{Event: "new_notification", Data: payload}

	select {
	case data := <-got:
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("payload not json: %v", err)
		}
		if decoded["type"] != "member_joined" {
			t.Fatalf("unexpected payload: %v", decoded)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("frame never delivered")
	}
}

func TestMalformedFrameIsDroppedLoopSurvives(t *testing.T) {
	push := make(chan string, 8)
	got := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for raw := range push {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	tr := newTestTransport(t, wsURL(server))
	tr.On("stats_update", func(_ context.Context, data []byte) { got <- data })
	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, tr.Connected)

	push <- `this is not json`
	push <- `{"data":{"orphan":true}}` // no event name
	push <- `{"event":"stats_update","data":{"online":9}}`

	select {
	case data := <-got:
		if !strings.Contains(string(data), "online") {
			t.Fatalf("unexpected payload: %s", data)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("read loop did not survive malformed frames")
	}
}

func TestEmitWritesEnvelope(t *testing.T) {
	server, _, received := echoServer(t)
	tr := newTestTransport(t, wsURL(server))

	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, tr.Connected)

	if err := tr.Emit(context.Background(), "join_group", "group-7"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	select {
	case frame := <-received:
		if frame.Event != "join_group" {
			t.Fatalf("unexpected event: %q", frame.Event)
		}
		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil || room != "group-7" {
			t.Fatalf("unexpected payload: %s (%v)", frame.Data, err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("frame never received")
	}
}

func TestEmitWithoutConnectionFails(t *testing.T) {
	server, _, _ := echoServer(t)
	tr := newTestTransport(t, wsURL(server))
	if err := tr.Emit(context.Background(), "join_group", "g"); err == nil {
		t.Fatal("expected error before connect")
	}
}

func TestReconnectReplaysEstablished(t *testing.T) {
	var serverConns atomic.Int32
	connected := make(chan *websocket.Conn, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns.Add(1)
		connected <- conn
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	tr := newTestTransport(t, wsURL(server))
	establishes := make(chan struct{}, 4)
	tr.OnEstablished(func(ctx context.Context) { establishes <- struct{}{} })

	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	var first *websocket.Conn
	select {
	case first = <-connected:
	case <-time.After(3 * time.Second):
		t.Fatal("no initial connection")
	}
	<-establishes

	// Drop the connection server-side; the transport must dial again and
	// replay the established callback.
	first.Close()
	select {
	case <-establishes:
	case <-time.After(3 * time.Second):
		t.Fatal("established not replayed after reconnect")
	}
	if serverConns.Load() < 2 {
		t.Fatalf("expected a second dial, got %d", serverConns.Load())
	}
}

func TestCloseStopsReconnectLoop(t *testing.T) {
	server, _, _ := echoServer(t)
	tr := newTestTransport(t, wsURL(server))

	if err := tr.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, tr.Connected)

	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if tr.Connected() {
		t.Fatal("expected disconnected after close")
	}
	if err := tr.Connect(context.Background()); err == nil {
		t.Fatal("expected error connecting a closed transport")
	}
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing url")
	}
}
