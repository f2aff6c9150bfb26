package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockHandler implements WebSocketHandler for testing.
type mockHandler struct {
	url            string
	onConnectCalls int32
	onMessageCalls int32
}

func (m *mockHandler) GetURL() string { return m.url }
func (m *mockHandler) ID() string     { return "MOCK" }
func (m *mockHandler) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	atomic.AddInt32(&m.onConnectCalls, 1)
	return nil
}
func (m *mockHandler) OnMessage(ctx context.Context, msg []byte) {
	atomic.AddInt32(&m.onMessageCalls, 1)
}

func newMockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
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

func httpToWS(url string) string {
	return strings.Replace(url, "http://", "ws://", 1)
}

func TestBaseWSWorker_ConnectAndReceive(t *testing.T) {
	server := newMockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"ok":true}`))
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	handler := &mockHandler{url: httpToWS(server.URL)}
	worker := NewBaseWSWorker(handler)
	worker.ReadTimeout = 500 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	worker.Start(ctx)
	time.Sleep(200 * time.Millisecond)
	worker.Stop()

	if atomic.LoadInt32(&handler.onConnectCalls) == 0 {
		t.Error("OnConnect was not called")
	}
	if atomic.LoadInt32(&handler.onMessageCalls) == 0 {
		t.Error("OnMessage was not called")
	}
}

func TestBaseWSWorker_ReconnectsAfterRemoteClose(t *testing.T) {
	// Each accepted connection sends one message then closes, forcing the
	// worker back through the connect path.
	server := newMockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"n":1}`))
	})
	defer server.Close()

	handler := &mockHandler{url: httpToWS(server.URL)}
	worker := NewBaseWSWorker(handler)
	worker.ReadTimeout = 500 * time.Millisecond

	worker.Start(context.Background())
	time.Sleep(400 * time.Millisecond)
	worker.Stop()

	if atomic.LoadInt32(&handler.onConnectCalls) < 2 {
		t.Errorf("onConnectCalls = %d, want at least 2 (reconnect)",
			atomic.LoadInt32(&handler.onConnectCalls))
	}
}

func TestBaseWSWorker_FatalAfterMaxRetries(t *testing.T) {
	// No server listening at this address.
	handler := &mockHandler{url: "ws://127.0.0.1:1"}
	worker := NewBaseWSWorker(handler)
	worker.MaxRetries = 1

	worker.Start(context.Background())
	defer worker.Stop()

	select {
	case err := <-worker.Fatal():
		if err == nil {
			t.Error("fatal error should be non-nil")
		}
	case <-time.After(5 * time.Second):
		t.Error("worker never reported fatal condition")
	}
}

func TestBaseWSWorker_StopDoesNotHang(t *testing.T) {
	serverClosed := make(chan struct{})
	server := newMockWSServer(t, func(conn *websocket.Conn) {
		<-serverClosed
	})
	defer server.Close()
	defer close(serverClosed)

	handler := &mockHandler{url: httpToWS(server.URL)}
	worker := NewBaseWSWorker(handler)

	worker.Start(context.Background())
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("Stop did not return within timeout")
	}
}
