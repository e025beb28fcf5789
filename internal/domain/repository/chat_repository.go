package repository

import (
	"context"

	"campus/internal/domain/entity"
)

// ChatRepository covers the REST side of chat: group listings and the
// paginated message history. Live messages arrive through the realtime
// service, not here.
type ChatRepository interface {
	ListGroups(ctx context.Context) (*entity.List[entity.ChatGroup], error)
	// ListMessages returns one page of history, newest first.
	ListMessages(ctx context.Context, courseID, chatGroupID int64, params entity.ListParams) (*entity.List[entity.ChatMessage], error)
}
