// Package realtime maintains one websocket connection per chat group and
// multiplexes subscribers over it.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"campus/config"
	"campus/internal/domain/entity"
	"campus/internal/domain/service"
	"campus/internal/errors"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// ErrNotConnected is returned by sends when the group's connection is not
// open. Sends are never queued.
var ErrNotConnected = errors.New("realtime: not connected")

// Manager is the process-wide channel registry. Connections are opened
// lazily by the first subscriber of a group and closed when its last
// subscriber leaves. There is no automatic reconnection: a dropped
// connection ends the feed for its current subscriber set.
type Manager struct {
	baseURL     string
	dialer      *websocket.Dialer
	creds       service.CredentialStore
	typingEvery rate.Limit
	logger      *slog.Logger

	mu       sync.Mutex
	channels map[int64]*channel
}

var _ service.RealtimeService = (*Manager)(nil)

// NewManager is the constructor for Manager.
func NewManager(cfg *config.Config, creds service.CredentialStore, logger *slog.Logger) *Manager {
	return &Manager{
		baseURL: strings.TrimSuffix(cfg.Realtime.BaseURL, "/"),
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.Realtime.HandshakeTimeout,
		},
		creds:       creds,
		typingEvery: rate.Every(cfg.Realtime.TypingInterval),
		logger:      logger,
	}
}

// Subscribe registers a handler for the group's live feed. The first
// subscriber dials the group's endpoint; later subscribers share the
// connection. The returned function releases the subscription and closes the
// connection when it was the last one; it is safe to call more than once.
func (m *Manager) Subscribe(ctx context.Context, chatGroupID int64, handler service.ChatEventHandler) (service.Unsubscribe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[chatGroupID]
	if !ok {
		conn, err := m.dial(ctx, chatGroupID)
		if err != nil {
			return nil, err
		}
		ch = newChannel(chatGroupID, conn, m.typingEvery, m.logger)
		if m.channels == nil {
			m.channels = make(map[int64]*channel)
		}
		m.channels[chatGroupID] = ch
		go ch.readLoop(m.drop)
		m.logger.Debug("realtime channel opened", slog.Int64("chat_group_id", chatGroupID))
	}

	subID := ch.addSubscriber(handler)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()

			if ch.removeSubscriber(subID) == 0 {
				ch.close()
				if m.channels[chatGroupID] == ch {
					delete(m.channels, chatGroupID)
				}
				m.logger.Debug("realtime channel closed", slog.Int64("chat_group_id", chatGroupID))
			}
		})
	}

	return unsubscribe, nil
}

// SendMessage writes a chat_message frame to the group's connection.
func (m *Manager) SendMessage(chatGroupID int64, req entity.NewMessageRequest) error {
	ch := m.channel(chatGroupID)
	if ch == nil {
		return errors.WithStack(ErrNotConnected)
	}

	return ch.send(entity.SocketActionMessage, req)
}

// SendTyping writes a chat_typing frame, throttled per group. Frames inside
// the throttle window are dropped without error.
func (m *Manager) SendTyping(chatGroupID int64) error {
	ch := m.channel(chatGroupID)
	if ch == nil {
		return errors.WithStack(ErrNotConnected)
	}
	if !ch.typing.Allow() {
		return nil
	}

	return ch.send(entity.SocketActionTyping, nil)
}

func (m *Manager) channel(chatGroupID int64) *channel {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.channels[chatGroupID]
}

// dial opens the group's endpoint, authenticating through a query-embedded
// access token the way the server expects for socket upgrades.
func (m *Manager) dial(ctx context.Context, chatGroupID int64) (*websocket.Conn, error) {
	pair, ok := m.creds.Get()
	if !ok {
		return nil, errors.New("realtime: no credentials available")
	}

	endpoint := fmt.Sprintf("%s/socket/chat/%d/?token=%s", m.baseURL, chatGroupID, pair.Access)

	conn, resp, err := m.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}

		return nil, errors.Wrapf(err, "dial chat group %d", chatGroupID)
	}
	if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
		conn.Close()

		return nil, errors.Errorf("dial chat group %d: unexpected status %d", chatGroupID, resp.StatusCode)
	}

	return conn, nil
}

// drop removes a channel whose connection died. Existing subscribers stop
// receiving; a later Subscribe dials a fresh connection.
func (m *Manager) drop(ch *channel) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.channels[ch.groupID] == ch {
		delete(m.channels, ch.groupID)
	}
}

// channel is one group's connection plus its subscriber set.
type channel struct {
	groupID int64
	conn    *websocket.Conn
	typing  *rate.Limiter
	logger  *slog.Logger

	mu          sync.Mutex
	subscribers map[int]service.ChatEventHandler
	nextSubID   int
	closed      bool

	writeMu sync.Mutex
}

func newChannel(groupID int64, conn *websocket.Conn, typingEvery rate.Limit, logger *slog.Logger) *channel {
	return &channel{
		groupID:     groupID,
		conn:        conn,
		typing:      rate.NewLimiter(typingEvery, 1),
		logger:      logger,
		subscribers: make(map[int]service.ChatEventHandler),
	}
}

func (ch *channel) addSubscriber(handler service.ChatEventHandler) int {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.nextSubID++
	ch.subscribers[ch.nextSubID] = handler

	return ch.nextSubID
}

func (ch *channel) removeSubscriber(subID int) int {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	delete(ch.subscribers, subID)

	return len(ch.subscribers)
}

func (ch *channel) close() {
	ch.mu.Lock()
	ch.closed = true
	ch.mu.Unlock()

	_ = ch.conn.Close()
}

func (ch *channel) send(action string, data any) error {
	ch.mu.Lock()
	closed := ch.closed
	ch.mu.Unlock()
	if closed {
		return errors.WithStack(ErrNotConnected)
	}

	frame := struct {
		Action string `json:"action"`
		Data   any    `json:"data"`
	}{Action: action, Data: data}

	ch.writeMu.Lock()
	defer ch.writeMu.Unlock()

	if err := ch.conn.WriteJSON(frame); err != nil {
		return errors.Wrapf(err, "send %s to chat group %d", action, ch.groupID)
	}

	return nil
}

// readLoop decodes inbound envelopes and fans them out. Malformed frames and
// unrecognized actions are dropped; a read error ends the loop and detaches
// the channel from the registry.
func (ch *channel) readLoop(onDead func(*channel)) {
	defer func() {
		ch.mu.Lock()
		ch.closed = true
		ch.mu.Unlock()
		_ = ch.conn.Close()
		onDead(ch)
	}()

	for {
		_, raw, err := ch.conn.ReadMessage()
		if err != nil {
			ch.mu.Lock()
			closed := ch.closed
			ch.mu.Unlock()
			if !closed {
				ch.logger.Warn("realtime connection lost",
					slog.Int64("chat_group_id", ch.groupID), slog.Any("error", err))
			}

			return
		}

		event, ok := ch.decode(raw)
		if !ok {
			continue
		}
		ch.dispatch(event)
	}
}

func (ch *channel) decode(raw []byte) (entity.ChatEvent, bool) {
	var envelope entity.SocketEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		ch.logger.Debug("dropping malformed frame",
			slog.Int64("chat_group_id", ch.groupID), slog.Any("error", err))

		return entity.ChatEvent{}, false
	}

	switch envelope.Action {
	case entity.SocketActionMessage:
		var msg entity.ChatMessage
		if err := json.Unmarshal(envelope.Data, &msg); err != nil {
			ch.logger.Debug("dropping malformed chat_message frame",
				slog.Int64("chat_group_id", ch.groupID), slog.Any("error", err))

			return entity.ChatEvent{}, false
		}

		return entity.ChatEvent{Action: envelope.Action, Message: &msg}, true
	case entity.SocketActionTyping:
		var typing entity.TypingEvent
		if err := json.Unmarshal(envelope.Data, &typing); err != nil {
			ch.logger.Debug("dropping malformed chat_typing frame",
				slog.Int64("chat_group_id", ch.groupID), slog.Any("error", err))

			return entity.ChatEvent{}, false
		}

		return entity.ChatEvent{Action: envelope.Action, Typing: &typing}, true
	default:
		return entity.ChatEvent{}, false
	}
}

func (ch *channel) dispatch(event entity.ChatEvent) {
	ch.mu.Lock()
	handlers := make([]service.ChatEventHandler, 0, len(ch.subscribers))
	for _, handler := range ch.subscribers {
		handlers = append(handlers, handler)
	}
	ch.mu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}
