package service

import (
	"context"

	"campus/internal/domain/entity"
)

// ChatEventHandler receives decoded frames from a chat group's channel.
// Handlers run on the channel's read loop and must not block.
type ChatEventHandler func(event entity.ChatEvent)

// Unsubscribe releases one subscription. Safe to call more than once.
type Unsubscribe func()

// RealtimeService multiplexes subscribers over one persistent connection per
// chat group. The connection is opened by the first subscriber and closed
// when the last one leaves.
type RealtimeService interface {
	// Subscribe registers a handler for the group's live feed, dialing the
	// group's endpoint if this is the first subscriber.
	Subscribe(ctx context.Context, chatGroupID int64, handler ChatEventHandler) (Unsubscribe, error)
	// SendMessage writes a chat_message frame. It fails when the group's
	// connection is not open; messages are never queued.
	SendMessage(chatGroupID int64, req entity.NewMessageRequest) error
	// SendTyping writes a throttled chat_typing frame.
	SendTyping(chatGroupID int64) error
}
