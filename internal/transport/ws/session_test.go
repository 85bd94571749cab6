package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatnotify/internal/config"
	"chatnotify/internal/metrics"
	"chatnotify/internal/model"
	"chatnotify/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// chatServer is a minimal backend: it records connections and lets tests
// push frames to the most recent one.
type chatServer struct {
	mu    sync.Mutex
	conns []*websocket.Conn
	srv   *httptest.Server
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	s := &chatServer{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *chatServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *chatServer) conn(t *testing.T, i int) *websocket.Conn {
	t.Helper()
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.conns) > i
	}, 5*time.Second, 10*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns[i]
}

func (s *chatServer) push(t *testing.T, i int, frame string) {
	t.Helper()
	require.NoError(t, s.conn(t, i).WriteMessage(websocket.TextMessage, []byte(frame)))
}

func testFactory(url string) *Factory {
	return NewFactory(&config.Config{
		WSURL:        url,
		ReconnectMin: 50 * time.Millisecond,
		ReconnectMax: time.Second,
	}, metrics.New(prometheus.NewRegistry()), zap.NewNop())
}

func TestSessionDeliversMessages(t *testing.T) {
	server := newChatServer(t)

	connected := make(chan struct{}, 1)
	messages := make(chan model.MessageEvent, 4)
	h := session.Handler{
		OnConnect: func() { connected <- struct{}{} },
		OnMessage: func(ev model.MessageEvent) { messages <- ev },
	}

	sess, err := testFactory(server.url()).Open(context.Background(), 42, h)
	require.NoError(t, err)
	defer sess.Close()

	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("session never connected")
	}
	require.True(t, sess.Connected())

	server.push(t, 0, `{"event":"message:received","data":{"conversation_id":7,"sender_id":9,"content":"hello"}}`)

	select {
	case ev := <-messages:
		require.Equal(t, int64(7), ev.ConversationID)
		require.Equal(t, int64(9), ev.SenderID)
		require.Equal(t, "hello", ev.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("message never delivered")
	}
}

func TestSessionSkipsOtherEventsAndMalformedFrames(t *testing.T) {
	server := newChatServer(t)

	messages := make(chan model.MessageEvent, 4)
	h := session.Handler{
		OnMessage: func(ev model.MessageEvent) { messages <- ev },
	}

	sess, err := testFactory(server.url()).Open(context.Background(), 42, h)
	require.NoError(t, err)
	defer sess.Close()

	server.push(t, 0, `{"event":"typing","data":{"conversation_id":7}}`)
	server.push(t, 0, `not json at all`)
	server.push(t, 0, `{"event":"message:received","data":{"content":"missing ids"}}`)
	server.push(t, 0, `{"event":"message:received","data":{"conversation_id":7,"sender_id":9,"content":"kept"}}`)

	select {
	case ev := <-messages:
		require.Equal(t, "kept", ev.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("valid message never delivered")
	}
	require.Empty(t, messages)
}

func TestSessionReconnects(t *testing.T) {
	server := newChatServer(t)

	connected := make(chan struct{}, 1)
	disconnected := make(chan struct{}, 1)
	reconnected := make(chan struct{}, 1)
	messages := make(chan model.MessageEvent, 4)
	h := session.Handler{
		OnConnect:    func() { connected <- struct{}{} },
		OnDisconnect: func() { disconnected <- struct{}{} },
		OnReconnect:  func() { reconnected <- struct{}{} },
		OnMessage:    func(ev model.MessageEvent) { messages <- ev },
	}

	sess, err := testFactory(server.url()).Open(context.Background(), 42, h)
	require.NoError(t, err)
	defer sess.Close()

	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("session never connected")
	}

	require.NoError(t, server.conn(t, 0).Close())

	select {
	case <-disconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("disconnect never observed")
	}
	select {
	case <-reconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("session never reconnected")
	}

	// The new connection still delivers.
	server.push(t, 1, `{"event":"message:received","data":{"conversation_id":7,"sender_id":9,"content":"back"}}`)
	select {
	case ev := <-messages:
		require.Equal(t, "back", ev.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("message never delivered after reconnect")
	}
}

func TestSessionCloseStopsEvents(t *testing.T) {
	server := newChatServer(t)

	var mu sync.Mutex
	events := 0
	h := session.Handler{
		OnMessage: func(model.MessageEvent) {
			mu.Lock()
			events++
			mu.Unlock()
		},
	}

	sess, err := testFactory(server.url()).Open(context.Background(), 42, h)
	require.NoError(t, err)

	conn := server.conn(t, 0)
	require.NoError(t, sess.Close())
	require.False(t, sess.Connected())

	// Frames written after Close never reach the handler.
	_ = conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"event":"message:received","data":{"conversation_id":7,"sender_id":9,"content":"late"}}`))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Zero(t, events)
}
