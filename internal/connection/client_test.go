package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer creates a test WebSocket server; every accepted
// connection is handed to handler.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testConfig(url string) Config {
	return Config{
		URL:                url,
		ReconnectBaseDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:  50 * time.Millisecond,
		PingInterval:       time.Second,
		StaleAfter:         5 * time.Second,
		WriteTimeout:       time.Second,
		QueueSize:          100,
	}
}

func TestClient_StartAndStop(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !client.IsConnected() {
		t.Error("expected IsConnected after Start")
	}

	if err := client.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if client.IsConnected() {
		t.Error("expected not connected after Stop")
	}

	// Stop again is a no-op.
	if err := client.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
}

func TestClient_StartFailsWhenUnreachable(t *testing.T) {
	client := NewClient(testConfig("ws://127.0.0.1:1"), nil)
	if err := client.Start(context.Background()); err == nil {
		t.Fatal("Start should fail when nothing is listening")
	}
}

func TestClient_SendAndReceive(t *testing.T) {
	var mu sync.Mutex
	var received [][]byte

	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Echo one greeting, then record whatever arrives.
		conn.WriteMessage(websocket.TextMessage, []byte("hello"))
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mu.Lock()
			received = append(received, msg)
			mu.Unlock()
		}
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer client.Stop()

	select {
	case msg := <-client.Messages():
		if string(msg.Data) != "hello" {
			t.Errorf("received %q, want hello", msg.Data)
		}
		if msg.ReceivedAt.IsZero() {
			t.Error("ReceivedAt not stamped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("greeting never arrived")
	}

	if err := client.Send([]byte("ping-payload")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("server never received the sent payload")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestClient_SendBeforeStart(t *testing.T) {
	client := NewClient(testConfig("ws://unused"), nil)
	if err := client.Send([]byte("x")); err != ErrNotConnected {
		t.Errorf("Send before Start = %v, want ErrNotConnected", err)
	}
}

func TestClient_ReconnectsAndFiresHook(t *testing.T) {
	var dials atomic.Int32

	server := mockWSServer(t, func(conn *websocket.Conn) {
		n := dials.Add(1)
		if n == 1 {
			// Drop the first connection immediately to force a re-dial.
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte("after-reconnect"))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)

	hookFired := make(chan struct{}, 1)
	client.OnReconnect(func() {
		select {
		case hookFired <- struct{}{}:
		default:
		}
	})

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer client.Stop()

	select {
	case <-hookFired:
	case <-time.After(5 * time.Second):
		t.Fatal("reconnect hook never fired")
	}

	select {
	case msg := <-client.Messages():
		if string(msg.Data) != "after-reconnect" {
			t.Errorf("received %q, want after-reconnect", msg.Data)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no message after reconnect")
	}

	if dials.Load() < 2 {
		t.Errorf("server saw %d dials, want at least 2", dials.Load())
	}
}

func TestClient_StopEndsReconnectLoop(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	client := NewClient(testConfig(wsURL(server)), nil)
	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Kill the server so the client enters its reconnect loop, then
	// Stop must still return promptly.
	server.Close()

	done := make(chan error, 1)
	go func() { done <- client.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Stop returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop hung while the client was reconnecting")
	}

	// Messages closes once the loop has fully wound down.
	for range client.Messages() {
	}
}
