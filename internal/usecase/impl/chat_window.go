package impl

import (
	"log/slog"
	"sync"

	"campus/internal/domain/entity"
	"campus/internal/domain/service"
	"campus/internal/usecase"
)

// chatWindow merges one REST history page with live pushes into a
// newest-first, de-duplicated sequence. Live messages prepend as they
// arrive; the history page, whenever it resolves, slots in behind them.
// Ordering across the REST/live boundary is arrival order, not a total
// order by timestamp.
type chatWindow struct {
	chatGroupID int64
	logger      *slog.Logger
	unsubscribe service.Unsubscribe

	mu       sync.Mutex
	messages []entity.ChatMessage
	seen     map[int64]struct{}
	closed   bool
	loadErr  error

	updates chan struct{}
	typing  chan entity.User
}

var _ usecase.ChatWindow = (*chatWindow)(nil)

func newChatWindow(chatGroupID int64, logger *slog.Logger) *chatWindow {
	return &chatWindow{
		chatGroupID: chatGroupID,
		logger:      logger,
		seen:        make(map[int64]struct{}),
		updates:     make(chan struct{}, 1),
		typing:      make(chan entity.User, 8),
	}
}

// Messages returns a newest-first snapshot of the window.
func (w *chatWindow) Messages() []entity.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]entity.ChatMessage, len(w.messages))
	copy(out, w.messages)

	return out
}

// Updates signals that the window content changed. The signal is coalesced:
// consumers read the snapshot, not the delta.
func (w *chatWindow) Updates() <-chan struct{} {
	return w.updates
}

// Typing is a best-effort feed of users currently composing. Events are
// dropped when the consumer lags.
func (w *chatWindow) Typing() <-chan entity.User {
	return w.typing
}

// Err reports a failed history load, if any.
func (w *chatWindow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.loadErr
}

// Close releases the live subscription. Safe to call more than once.
func (w *chatWindow) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()

		return
	}
	w.closed = true
	unsubscribe := w.unsubscribe
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// onEvent runs on the channel's read loop.
func (w *chatWindow) onEvent(event entity.ChatEvent) {
	switch event.Action {
	case entity.SocketActionMessage:
		w.prepend(*event.Message)
	case entity.SocketActionTyping:
		select {
		case w.typing <- event.Typing.User:
		default:
		}
	}
}

// prepend inserts a live message as the newest item, unless its id is
// already present.
func (w *chatWindow) prepend(msg entity.ChatMessage) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()

		return
	}
	if _, dup := w.seen[msg.ID]; dup {
		w.mu.Unlock()

		return
	}
	w.seen[msg.ID] = struct{}{}
	w.messages = append([]entity.ChatMessage{msg}, w.messages...)
	w.mu.Unlock()

	w.notify()
}

// appendHistory places the REST page behind any live messages that arrived
// first. Ids already in the window keep their existing position. A page
// resolving after Close is discarded.
func (w *chatWindow) appendHistory(page []entity.ChatMessage) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()

		return
	}
	for _, msg := range page {
		if _, dup := w.seen[msg.ID]; dup {
			continue
		}
		w.seen[msg.ID] = struct{}{}
		w.messages = append(w.messages, msg)
	}
	w.mu.Unlock()

	w.notify()
}

func (w *chatWindow) setErr(err error) {
	w.mu.Lock()
	if !w.closed {
		w.loadErr = err
	}
	w.mu.Unlock()

	w.notify()
}

func (w *chatWindow) notify() {
	select {
	case w.updates <- struct{}{}:
	default:
	}
}
