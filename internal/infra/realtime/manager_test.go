package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campus/config"
	"campus/internal/domain/entity"
	"campus/internal/errors"
	"campus/internal/infra/credential"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// socketServer upgrades every request, records dials and inbound frames, and
// lets tests push frames to connected clients.
type socketServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	dials   atomic.Int64
	inbound chan []byte

	mu     sync.Mutex
	conns  []*websocket.Conn
	paths  []string
	tokens []string
}

func newSocketServer(t *testing.T) *socketServer {
	t.Helper()

	s := &socketServer{inbound: make(chan []byte, 16)}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.dials.Add(1)
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.paths = append(s.paths, r.URL.Path)
		s.tokens = append(s.tokens, r.URL.Query().Get("token"))
		s.mu.Unlock()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.inbound <- raw
		}
	}))
	t.Cleanup(s.srv.Close)

	return s
}

func (s *socketServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *socketServer) dialInfo(i int) (path, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.paths[i], s.tokens[i]
}

func (s *socketServer) push(t *testing.T, frame any) {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.conns)
	require.NoError(t, s.conns[len(s.conns)-1].WriteJSON(frame))
}

func (s *socketServer) pushRaw(t *testing.T, raw string) {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.conns)
	require.NoError(t, s.conns[len(s.conns)-1].WriteMessage(websocket.TextMessage, []byte(raw)))
}

func (s *socketServer) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
}

func newTestManager(t *testing.T, s *socketServer, typingInterval time.Duration) *Manager {
	t.Helper()

	cfg := &config.Config{}
	cfg.API.BaseURL = "http://api.test"
	cfg.Realtime.BaseURL = s.wsURL()
	cfg.Realtime.HandshakeTimeout = 5 * time.Second
	cfg.Realtime.TypingInterval = typingInterval
	cfg.Credentials.Path = filepath.Join(t.TempDir(), "credentials.json")

	creds, err := credential.NewStore(cfg, newDiscardLogger())
	require.NoError(t, err)
	require.NoError(t, creds.Set(entity.TokenPair{Access: "socket-token", Refresh: "ref"}))

	return NewManager(cfg, creds, newDiscardLogger())
}

func collectEvents() (chan entity.ChatEvent, func(entity.ChatEvent)) {
	events := make(chan entity.ChatEvent, 16)

	return events, func(event entity.ChatEvent) { events <- event }
}

func waitEvent(t *testing.T, events <-chan entity.ChatEvent) entity.ChatEvent {
	t.Helper()

	select {
	case event := <-events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for chat event")

		return entity.ChatEvent{}
	}
}

func waitFrame(t *testing.T, s *socketServer) map[string]any {
	t.Helper()

	select {
	case raw := <-s.inbound:
		frame := map[string]any{}
		require.NoError(t, json.Unmarshal(raw, &frame))

		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound frame")

		return nil
	}
}

func TestSubscribe_SharesOneConnectionPerGroup(t *testing.T) {
	server := newSocketServer(t)
	manager := newTestManager(t, server, time.Second)

	firstEvents, firstHandler := collectEvents()
	secondEvents, secondHandler := collectEvents()

	unsubFirst, err := manager.Subscribe(context.Background(), 42, firstHandler)
	require.NoError(t, err)
	unsubSecond, err := manager.Subscribe(context.Background(), 42, secondHandler)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return server.dials.Load() == 1 }, time.Second, 10*time.Millisecond,
		"second subscriber shares the connection")
	path, token := server.dialInfo(0)
	assert.Equal(t, "/socket/chat/42/", path)
	assert.Equal(t, "socket-token", token)

	server.push(t, map[string]any{
		"action": entity.SocketActionMessage,
		"data":   entity.ChatMessage{ID: 9, Text: "hello", ChatGroup: 42},
	})

	for _, events := range []chan entity.ChatEvent{firstEvents, secondEvents} {
		event := waitEvent(t, events)
		assert.Equal(t, entity.SocketActionMessage, event.Action)
		require.NotNil(t, event.Message)
		assert.Equal(t, int64(9), event.Message.ID)
		assert.Equal(t, "hello", event.Message.Text)
	}

	// The connection survives until the last subscriber leaves.
	unsubFirst()
	require.NoError(t, manager.SendMessage(42, entity.NewMessageRequest{
		Text: "still here", MessageType: entity.MessageTypeText, ChatGroup: 42,
	}))
	waitFrame(t, server)

	unsubSecond()
	unsubSecond() // safe to call twice
	err = manager.SendMessage(42, entity.NewMessageRequest{
		Text: "gone", MessageType: entity.MessageTypeText, ChatGroup: 42,
	})
	assert.True(t, errors.Is(err, ErrNotConnected))
}

func TestSubscribe_SeparateGroupsDialSeparately(t *testing.T) {
	server := newSocketServer(t)
	manager := newTestManager(t, server, time.Second)

	_, handler := collectEvents()
	unsubA, err := manager.Subscribe(context.Background(), 1, handler)
	require.NoError(t, err)
	defer unsubA()
	unsubB, err := manager.Subscribe(context.Background(), 2, handler)
	require.NoError(t, err)
	defer unsubB()

	require.Eventually(t, func() bool { return server.dials.Load() == 2 }, time.Second, 10*time.Millisecond)
}

func TestSubscribe_RequiresCredentials(t *testing.T) {
	server := newSocketServer(t)
	manager := newTestManager(t, server, time.Second)

	cfg := &config.Config{}
	cfg.API.BaseURL = "http://api.test"
	cfg.Credentials.Path = filepath.Join(t.TempDir(), "credentials.json")
	emptyCreds, err := credential.NewStore(cfg, newDiscardLogger())
	require.NoError(t, err)
	manager.creds = emptyCreds

	_, handler := collectEvents()
	_, err = manager.Subscribe(context.Background(), 1, handler)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials")
}

func TestSendMessage_WritesChatMessageFrame(t *testing.T) {
	server := newSocketServer(t)
	manager := newTestManager(t, server, time.Second)

	_, handler := collectEvents()
	unsub, err := manager.Subscribe(context.Background(), 7, handler)
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, manager.SendMessage(7, entity.NewMessageRequest{
		Text:        "hi there",
		MessageType: entity.MessageTypeText,
		ChatGroup:   7,
	}))

	frame := waitFrame(t, server)
	assert.Equal(t, entity.SocketActionMessage, frame["action"])
	data, ok := frame["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hi there", data["text"])
	assert.Equal(t, "text", data["message_type"])
	assert.Equal(t, float64(7), data["chat_group"])
}

func TestSendTyping_ThrottledPerGroup(t *testing.T) {
	server := newSocketServer(t)
	manager := newTestManager(t, server, time.Minute)

	_, handler := collectEvents()
	unsub, err := manager.Subscribe(context.Background(), 7, handler)
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, manager.SendTyping(7))
	require.NoError(t, manager.SendTyping(7), "throttled frames drop without error")

	frame := waitFrame(t, server)
	assert.Equal(t, entity.SocketActionTyping, frame["action"])

	select {
	case <-server.inbound:
		t.Fatal("second typing frame should have been dropped")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSend_WithoutSubscriptionErrors(t *testing.T) {
	server := newSocketServer(t)
	manager := newTestManager(t, server, time.Second)

	err := manager.SendMessage(5, entity.NewMessageRequest{
		Text: "x", MessageType: entity.MessageTypeText, ChatGroup: 5,
	})
	assert.True(t, errors.Is(err, ErrNotConnected))
	assert.True(t, errors.Is(manager.SendTyping(5), ErrNotConnected))
}

func TestReadLoop_DropsMalformedAndUnknownFrames(t *testing.T) {
	server := newSocketServer(t)
	manager := newTestManager(t, server, time.Second)

	events, handler := collectEvents()
	unsub, err := manager.Subscribe(context.Background(), 3, handler)
	require.NoError(t, err)
	defer unsub()

	server.pushRaw(t, `not json at all`)
	server.pushRaw(t, `{"action":"presence_update","data":{}}`)
	server.pushRaw(t, `{"action":"chat_message","data":"not an object"}`)
	server.push(t, map[string]any{
		"action": entity.SocketActionTyping,
		"data":   entity.TypingEvent{User: entity.User{ID: 4, Username: "gopher"}},
	})

	event := waitEvent(t, events)
	assert.Equal(t, entity.SocketActionTyping, event.Action)
	require.NotNil(t, event.Typing)
	assert.Equal(t, "gopher", event.Typing.User.Username)
	assert.Empty(t, events, "bad frames must not reach subscribers")
}

func TestDeadConnection_DetachesAndRedials(t *testing.T) {
	server := newSocketServer(t)
	manager := newTestManager(t, server, time.Second)

	_, handler := collectEvents()
	unsub, err := manager.Subscribe(context.Background(), 11, handler)
	require.NoError(t, err)
	defer unsub()

	server.closeConns()

	// The read loop notices the drop and detaches the channel; a fresh
	// subscription dials again instead of reusing the dead connection.
	require.Eventually(t, func() bool {
		return manager.channel(11) == nil
	}, 2*time.Second, 10*time.Millisecond)

	_, handler2 := collectEvents()
	unsub2, err := manager.Subscribe(context.Background(), 11, handler2)
	require.NoError(t, err)
	defer unsub2()

	require.Eventually(t, func() bool { return server.dials.Load() == 2 }, time.Second, 10*time.Millisecond)
}
