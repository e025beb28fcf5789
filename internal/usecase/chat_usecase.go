package usecase

import (
	"context"

	"campus/internal/domain/entity"
)

// ChatWindow is the materialized message view for one chat group: a REST
// history page merged with live pushes into a newest-first, de-duplicated
// sequence.
type ChatWindow interface {
	// Messages returns a newest-first snapshot of the window.
	Messages() []entity.ChatMessage
	// Updates signals (coalesced) that the window content changed.
	Updates() <-chan struct{}
	// Typing is a best-effort feed of users currently composing.
	Typing() <-chan entity.User
	// Err reports a failed history load, if any.
	Err() error
	// Close releases the live subscription. Safe to call more than once;
	// a history page resolving afterwards is discarded.
	Close()
}

// ChatUsecase combines the REST chat endpoints with the realtime channel.
type ChatUsecase interface {
	Groups(ctx context.Context) (*entity.List[entity.ChatGroup], error)
	// OpenWindow subscribes to the group's live feed and starts loading one
	// page of history. The window is usable immediately; live messages may
	// land before the history resolves.
	OpenWindow(ctx context.Context, courseID, chatGroupID int64) (ChatWindow, error)
	// Send delivers a text message over the group's open connection.
	Send(chatGroupID int64, text string) error
	// NotifyTyping announces the current user is composing.
	NotifyTyping(chatGroupID int64) error
}
