package monitor

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/supermatter/config"
	"github.com/pthm-cable/supermatter/telemetry"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	h := NewHub(config.MonitorConfig{BroadcastBuffer: 16, SendBuffer: 16}, slog.New(slog.DiscardHandler))
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(func() {
		srv.Close()
		h.Close()
	})
	return h, srv
}

func testSnapshot(tick int32) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		Tick:    tick,
		Reactors: []telemetry.ReactorState{
			{ID: 1, Status: "Normal", Power: 800},
		},
	}
}

func TestReactorsEndpoint(t *testing.T) {
	h, srv := newTestHub(t)

	resp, err := http.Get(srv.URL + "/api/reactors")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status before first snapshot = %d", resp.StatusCode)
	}

	h.PublishSnapshot(testSnapshot(5))

	resp, err = http.Get(srv.URL + "/api/reactors")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got telemetry.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Tick != 5 || len(got.Reactors) != 1 || got.Reactors[0].Power != 800 {
		t.Errorf("snapshot = %+v", got)
	}
}

func TestReactorsEndpoint_RejectsPost(t *testing.T) {
	_, srv := newTestHub(t)
	resp, err := http.Post(srv.URL+"/api/reactors", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocketStream(t *testing.T) {
	h, srv := newTestHub(t)
	h.PublishSnapshot(testSnapshot(1))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// New clients get the latest snapshot first
	msg := readMessage(t, conn)
	if msg.Type != TypeSnapshot || msg.Snapshot == nil || msg.Snapshot.Tick != 1 {
		t.Fatalf("first message = %+v", msg)
	}

	h.PublishEvent(telemetry.Event{Tick: 2, Reactor: 1, Kind: "zap", Count: 3})
	msg = readMessage(t, conn)
	if msg.Type != TypeEvent || msg.Event == nil || msg.Event.Count != 3 {
		t.Fatalf("event message = %+v", msg)
	}

	h.PublishSnapshot(testSnapshot(3))
	msg = readMessage(t, conn)
	if msg.Type != TypeSnapshot || msg.Snapshot.Tick != 3 {
		t.Fatalf("second snapshot = %+v", msg)
	}

	if n := h.ClientCount(); n != 1 {
		t.Errorf("clients = %d", n)
	}
}

func TestHubClose(t *testing.T) {
	h, srv := newTestHub(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	h.Close()
	h.Close()                                // idempotent
	h.PublishEvent(telemetry.Event{Tick: 1}) // no-op after close

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to close")
	}
}
